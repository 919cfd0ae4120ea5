package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"clementus360/nudge-agent/types"
)

var (
	ErrNoJSON        = errors.New("no JSON object found in model output")
	ErrNonConforming = errors.New("model output does not match the classification schema")
)

var (
	codeBlockRegex     = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	trailingCommaRegex = regexp.MustCompile(`,\s*([}\]])`)
)

type rawClassification struct {
	Status     string   `json:"status"`
	Confidence *float64 `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// ParseClassification pulls the first usable JSON object out of the model
// text and normalises it. Unknown statuses fail closed to OFF_TASK and
// confidence is clamped into [0,1]; a missing confidence is an error.
func ParseClassification(text string) (types.ClassificationResult, error) {
	jsonStr, found := extractJSON(text)
	if !found {
		return types.ClassificationResult{}, fmt.Errorf("%w: %q", ErrNoJSON, truncate(text, 120))
	}

	var raw rawClassification
	if err := json.Unmarshal([]byte(jsonStr), &raw); err != nil {
		return types.ClassificationResult{}, fmt.Errorf("%w: %v", ErrNonConforming, err)
	}
	if raw.Confidence == nil {
		return types.ClassificationResult{}, fmt.Errorf("%w: missing confidence", ErrNonConforming)
	}

	status := types.TaskStatus(strings.ToUpper(strings.TrimSpace(raw.Status)))
	if !status.Valid() {
		status = types.OffTask
	}

	return types.ClassificationResult{
		Status:     status,
		Confidence: clamp(*raw.Confidence),
		Reasoning:  strings.TrimSpace(raw.Reasoning),
	}, nil
}

// extractJSON tries the cheap strategies first and falls back to scanning
// for a balanced object.
func extractJSON(text string) (string, bool) {
	strategies := []func(string) (string, bool){
		extractCompleteJSON,
		extractJSONFromCodeBlock,
		extractJSONWithNestedBraces,
	}
	for _, strategy := range strategies {
		if jsonStr, found := strategy(text); found {
			return jsonStr, true
		}
	}
	return "", false
}

// Strategy 1: the whole reply is the object
func extractCompleteJSON(text string) (string, bool) {
	cleaned := strings.TrimSpace(text)
	if strings.HasPrefix(cleaned, "{") && json.Valid([]byte(cleaned)) {
		return cleaned, true
	}
	return "", false
}

// Strategy 2: ```json ... ``` fences
func extractJSONFromCodeBlock(text string) (string, bool) {
	matches := codeBlockRegex.FindStringSubmatch(text)
	if len(matches) > 1 {
		candidate := fixTrailingCommas(strings.TrimSpace(matches[1]))
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// Strategy 3: walk from each '{' counting braces outside strings
func extractJSONWithNestedBraces(text string) (string, bool) {
	for start := strings.Index(text, "{"); start != -1; {
		braceCount := 0
		inString := false
		escaped := false

		for i := start; i < len(text); i++ {
			char := text[i]

			if escaped {
				escaped = false
				continue
			}
			if char == '\\' && inString {
				escaped = true
				continue
			}
			if char == '"' {
				inString = !inString
				continue
			}
			if inString {
				continue
			}

			if char == '{' {
				braceCount++
			} else if char == '}' {
				braceCount--
				if braceCount == 0 {
					candidate := fixTrailingCommas(text[start : i+1])
					if json.Valid([]byte(candidate)) {
						return candidate, true
					}
					break
				}
			}
		}

		next := strings.Index(text[start+1:], "{")
		if next == -1 {
			break
		}
		start += next + 1
	}
	return "", false
}

func fixTrailingCommas(text string) string {
	return trailingCommaRegex.ReplaceAllString(text, "$1")
}

func clamp(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
