package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"clementus360/nudge-agent/activity"
	"clementus360/nudge-agent/agent"
	"clementus360/nudge-agent/cache"
	"clementus360/nudge-agent/config"
	"clementus360/nudge-agent/handlers"
	"clementus360/nudge-agent/llm"
	"clementus360/nudge-agent/metrics"
	"clementus360/nudge-agent/supabase"
	"clementus360/nudge-agent/tts"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedProbe struct{}

func (fixedProbe) Probe(context.Context) (string, string) {
	return "VSCode", "main.py"
}

// newServer wires the real components in mock mode behind the mux
func newServer(t *testing.T) (*httptest.Server, *prometheus.Registry) {
	t.Helper()

	settings := config.DefaultSettings()
	settings.MockMode = true

	registry := prometheus.NewRegistry()
	m := metrics.NewProvider(registry)

	tracker := activity.NewTracker(activity.NewHistory(settings.HistoryCapacity), fixedProbe{}, settings.PollInterval,
		activity.WithMetrics(m))
	phrases, err := cache.NewPhraseCache(settings.PhraseCacheSize, m)
	require.NoError(t, err)

	a := agent.New(agent.Deps{
		Tracker:          tracker,
		Probe:            fixedProbe{},
		Runtime:          config.NewRuntime(config.DefaultRuntimeConfig()),
		Classifier:       llm.NewOrchestratorFromSettings(settings, m, nil),
		Phrases:          phrases,
		Synth:            tts.NewFromSettings(settings),
		PauseDuringNudge: true,
		Now:              func() time.Time { return time.Date(2026, 3, 4, 10, 0, 0, 0, time.Local) },
	})

	mux := http.NewServeMux()
	h := handlers.New(a, supabase.NewFeedbackStoreFromSettings(settings), handlers.NewLocalModelProbe(""))
	RegisterAllRoutes(mux, h, registry)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, registry
}

func TestRoutes_Registered(t *testing.T) {
	srv, _ := newServer(t)

	tests := []struct {
		method, path, body string
		want               int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/activity-snapshot", "", http.StatusOK},
		{http.MethodPost, "/classify", `{"app_name":"VSCode","window_title":"main.py"}`, http.StatusOK},
		{http.MethodPost, "/classify-local", `{"app_name":"VSCode","window_title":"main.py"}`, http.StatusOK},
		{http.MethodPost, "/nudge", `{"sender_name":"Sam"}`, http.StatusOK},
		{http.MethodPost, "/feedback", `{"poke_id":"p","user_id":"u","user_feedback":"CORRECT"}`, http.StatusOK},
		{http.MethodGet, "/config", "", http.StatusOK},
		{http.MethodPost, "/config", `{"use_local_model":true}`, http.StatusOK},
		{http.MethodGet, "/cache/stats", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/nudge", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, strings.NewReader(tt.body))
			require.NoError(t, err)
			resp, err := srv.Client().Do(req)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}
