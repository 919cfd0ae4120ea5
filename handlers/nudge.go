package handlers

import (
	"net/http"
	"strings"

	"clementus360/nudge-agent/config"
	"clementus360/nudge-agent/nudge"
	"clementus360/nudge-agent/types"
)

func (h *Handler) NudgeHandler(w http.ResponseWriter, r *http.Request) {
	var req types.NudgeRequest
	if err := decodeJSON(r, &req, false); err != nil {
		config.Logger.Error("Failed to decode nudge JSON: ", err)
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	req.SenderName = strings.TrimSpace(req.SenderName)
	if req.SenderName == "" {
		writeError(w, "Missing sender_name", http.StatusBadRequest)
		return
	}

	result := h.agent.Nudge(r.Context(), req.SenderName)
	if result.Error != "" {
		writeJSON(w, http.StatusServiceUnavailable, types.NudgeErrorResponse{
			Error:           "Nudge service error: " + result.Error,
			FallbackMessage: nudge.DegradedMessage(req.SenderName),
		})
		return
	}

	writeJSON(w, http.StatusOK, result)
}
