package handlers

import (
	"net/http"

	"clementus360/nudge-agent/config"
	"clementus360/nudge-agent/types"
)

func decodeClassifyRequest(w http.ResponseWriter, r *http.Request) (types.ClassifyRequest, bool) {
	var req types.ClassifyRequest
	if err := decodeJSON(r, &req, false); err != nil {
		config.Logger.Error("Failed to decode classify JSON: ", err)
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return req, false
	}
	if req.AppName == "" {
		writeError(w, "Missing app_name", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func (h *Handler) ClassifyHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeClassifyRequest(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, h.agent.Classify(r.Context(), req))
}

func (h *Handler) ClassifyLocalHandler(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeClassifyRequest(w, r)
	if !ok {
		return
	}

	result, err := h.agent.ClassifyLocal(r.Context(), req)
	if err != nil {
		config.Logger.WithError(err).Warn("Local classification failed")
		writeError(w, "Local model unavailable: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
