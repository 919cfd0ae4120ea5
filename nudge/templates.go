package nudge

import (
	"math/rand/v2"
	"strings"

	"clementus360/nudge-agent/types"
)

// TemplateVersion changes whenever the phrasing below does
const TemplateVersion = 1

const senderPlaceholder = "{sender}"

var offTaskTemplates = []string{
	"Hey! {sender} noticed you drifted—maybe save that for later? 🎯",
	"{sender} is checking in. Looks like a good time to refocus! 💪",
	"Poke from {sender}! You've got this—back to it? 🚀",
	"{sender} says: 'I believe in you!' Time to lock back in. 🔒",
	"Quick check-in from {sender}. You got distracted—wanna reset? ⏱️",
	"Heads up from {sender}! You've got great momentum—keep it going. ✨",
	"{sender} sent you a nudge. Future you will thank present you! 🌟",
}

var onTaskTemplates = []string{
	"{sender} checked in—you're absolutely crushing it! 💪",
	"Poke from {sender}. You're in the zone—keep it up! 🔥",
	"{sender} is proud of you. You're locked in! 🎯",
	"Message from {sender}: you're on fire today! ⚡",
	"{sender} just checked—you're doing amazing. Keep going! 🚀",
}

const (
	lowConfidenceTemplate = "{sender} sent you a poke to check in! 👋"
	degradedTemplate      = "{sender} sent you a poke!"
)

// Chooser picks an index in [0, n)
type Chooser func(n int) int

func randomChooser(n int) int {
	return rand.IntN(n)
}

// Templates returns a copy of the set used for status
func Templates(status types.TaskStatus) []string {
	if status == types.OnTask {
		return append([]string{}, onTaskTemplates...)
	}
	return append([]string{}, offTaskTemplates...)
}

// SelectMessage falls back to the generic check-in whenever confidence is
// under threshold, whatever the status says.
func SelectMessage(c types.ClassificationResult, sender string, threshold float64, choose Chooser) string {
	if c.Confidence < threshold {
		return render(lowConfidenceTemplate, sender)
	}

	set := offTaskTemplates
	if c.Status == types.OnTask {
		set = onTaskTemplates
	}

	i := choose(len(set))
	if i < 0 || i >= len(set) {
		i = 0
	}
	return render(set[i], sender)
}

// DegradedMessage is what the caller shows when the pipeline itself broke
func DegradedMessage(sender string) string {
	return render(degradedTemplate, sender)
}

func render(template, sender string) string {
	return strings.ReplaceAll(template, senderPlaceholder, sender)
}
