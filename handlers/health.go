package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"clementus360/nudge-agent/config"
	"clementus360/nudge-agent/types"
)

const localModelProbeTimeout = 2 * time.Second

// LocalModelProbe checks whether the Ollama daemon answers
type LocalModelProbe struct {
	baseURL string
	client  *http.Client
}

func NewLocalModelProbe(baseURL string) *LocalModelProbe {
	return &LocalModelProbe{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: localModelProbeTimeout},
	}
}

func (p *LocalModelProbe) Available(ctx context.Context) bool {
	if p == nil || p.baseURL == "" {
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		config.Logger.WithError(err).Debug("Local model not reachable")
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	local := "unavailable"
	if h.localModel.Available(r.Context()) {
		local = "available"
	}

	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:          "healthy",
		ActivityService: "ready",
		LLMService:      "ready",
		LocalModel:      local,
	})
}
