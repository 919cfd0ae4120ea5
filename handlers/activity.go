package handlers

import "net/http"

func (h *Handler) ActivitySnapshotHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.agent.Snapshot(r.Context()))
}
