package handlers

import (
	"net/http"

	"clementus360/nudge-agent/config"
	"clementus360/nudge-agent/types"
)

func (h *Handler) GetConfigHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.agent.Runtime().Snapshot())
}

func (h *Handler) UpdateConfigHandler(w http.ResponseWriter, r *http.Request) {
	var patch types.RuntimeConfigPatch
	if err := decodeJSON(r, &patch, true); err != nil {
		config.Logger.Error("Failed to decode config JSON: ", err)
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	updated, err := h.agent.Runtime().Apply(patch)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, types.ConfigResponse{
			Success: false,
			Config:  updated,
			Error:   err.Error(),
		})
		return
	}

	config.Logger.WithField("config", updated).Info("Runtime config updated")
	writeJSON(w, http.StatusOK, types.ConfigResponse{
		Success: true,
		Config:  updated,
	})
}
