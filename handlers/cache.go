package handlers

import "net/http"

func (h *Handler) CacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.agent.CacheStats())
}
