package llm

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"

	"clementus360/nudge-agent/types"
)

var (
	mockWorkApps = map[string]bool{
		"VSCode": true, "PyCharm": true, "Slack": true, "Zoom": true,
		"Notion": true, "Terminal": true, "iTerm2": true,
	}
	mockDistractions = []string{"YouTube", "Reddit", "Twitter", "Instagram", "Netflix", "Amazon", "Shopping"}
)

// MockClassifier labels requests with keyword rules and never fails.
// Ambiguous activity is decided by choose.
type MockClassifier struct {
	choose func() types.TaskStatus
}

func NewMockClassifier(choose func() types.TaskStatus) *MockClassifier {
	if choose == nil {
		choose = randomStatus
	}
	return &MockClassifier{choose: choose}
}

func (m *MockClassifier) Classify(_ context.Context, req types.ClassifyRequest) (types.ClassificationResult, error) {
	if mockWorkApps[req.AppName] {
		return types.ClassificationResult{
			Status:     types.OnTask,
			Confidence: 0.95,
			Reasoning:  "Mock: work app detected",
			Model:      "mock",
		}, nil
	}

	title := strings.ToLower(req.WindowTitle)
	for _, kw := range mockDistractions {
		if strings.Contains(title, strings.ToLower(kw)) {
			return types.ClassificationResult{
				Status:     types.OffTask,
				Confidence: 0.88,
				Reasoning:  fmt.Sprintf("Mock: distraction keyword '%s' in title", kw),
				Model:      "mock",
			}, nil
		}
	}

	return types.ClassificationResult{
		Status:     m.choose(),
		Confidence: 0.70,
		Reasoning:  "Mock: ambiguous activity",
		Model:      "mock",
	}, nil
}

func randomStatus() types.TaskStatus {
	if rand.IntN(2) == 0 {
		return types.OnTask
	}
	return types.OffTask
}
