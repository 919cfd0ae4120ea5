package llm

import (
	"strings"

	"clementus360/nudge-agent/config"
	"clementus360/nudge-agent/metrics"
	"clementus360/nudge-agent/types"
)

// LocalAPIBase turns an Ollama root URL into its OpenAI-compatible base
func LocalAPIBase(root string) string {
	return strings.TrimRight(root, "/") + "/v1/"
}

// NewOrchestratorFromSettings picks the backends for every route. In mock
// mode all of them are keyword classifiers so nothing leaves the machine.
func NewOrchestratorFromSettings(s config.Settings, m *metrics.Provider, choose func() types.TaskStatus) *Orchestrator {
	opts := []OrchestratorOption{WithTimeout(s.ClassifyTimeout), WithMetrics(m)}

	if s.MockMode {
		mock := NewMockClassifier(choose)
		opts = append(opts, WithLocal(Route{Name: RouteLocal, Model: "mock", Classifier: mock}))
		config.Logger.Info("Classifier running in mock mode")
		return NewOrchestrator(
			Route{Name: RoutePrimary, Model: "mock", Classifier: mock},
			Route{Name: RouteFallback, Model: "mock", Classifier: mock},
			opts...,
		)
	}

	if s.ClassifierAPIKey == "" {
		config.Logger.Warn("MISTRAL_API_KEY not set, remote classification will fail closed")
	}

	if s.LocalModel != "" && s.LocalBaseURL != "" {
		// Ollama ignores the key but the client insists on one
		local := NewChatClassifier(LocalAPIBase(s.LocalBaseURL), "ollama", s.LocalModel)
		opts = append(opts, WithLocal(Route{Name: RouteLocal, Model: s.LocalModel, Classifier: local}))
	}

	return NewOrchestrator(
		Route{
			Name:       RoutePrimary,
			Model:      s.PrimaryModel,
			Classifier: NewChatClassifier(s.ClassifierBaseURL, s.ClassifierAPIKey, s.PrimaryModel),
		},
		Route{
			Name:       RouteFallback,
			Model:      s.FallbackModel,
			Classifier: NewChatClassifier(s.ClassifierBaseURL, s.ClassifierAPIKey, s.FallbackModel),
		},
		opts...,
	)
}
