package nudge

import (
	"strings"
	"testing"

	"clementus360/nudge-agent/types"

	"github.com/stretchr/testify/assert"
)

func first(int) int { return 0 }

func TestSelectMessage_LowConfidenceIgnoresStatus(t *testing.T) {
	for _, status := range []types.TaskStatus{types.OnTask, types.OffTask} {
		for _, confidence := range []float64{0, 0.5, 0.7499} {
			got := SelectMessage(types.ClassificationResult{Status: status, Confidence: confidence}, "Sam", 0.75, first)
			assert.Equal(t, "Sam sent you a poke to check in! 👋", got, "%s at %v", status, confidence)
		}
	}
}

func TestSelectMessage_UsesStatusTemplates(t *testing.T) {
	on := SelectMessage(types.ClassificationResult{Status: types.OnTask, Confidence: 0.75}, "Sam", 0.75, first)
	assert.Equal(t, "Sam checked in—you're absolutely crushing it! 💪", on)

	last := func(n int) int { return n - 1 }
	off := SelectMessage(types.ClassificationResult{Status: types.OffTask, Confidence: 0.9}, "Sam", 0.75, last)
	assert.Equal(t, "Sam sent you a nudge. Future you will thank present you! 🌟", off)
}

func TestSelectMessage_OutOfRangeChoiceClamps(t *testing.T) {
	wild := func(n int) int { return n + 10 }
	got := SelectMessage(types.ClassificationResult{Status: types.OffTask, Confidence: 1}, "Sam", 0.75, wild)
	assert.Equal(t, "Hey! Sam noticed you drifted—maybe save that for later? 🎯", got)
}

func TestTemplates_AllNameTheSender(t *testing.T) {
	for _, status := range []types.TaskStatus{types.OnTask, types.OffTask} {
		set := Templates(status)
		assert.NotEmpty(t, set)
		for _, tpl := range set {
			assert.True(t, strings.Contains(tpl, senderPlaceholder), tpl)
		}
	}
	assert.Equal(t, "Sam sent you a poke!", DegradedMessage("Sam"))
}
