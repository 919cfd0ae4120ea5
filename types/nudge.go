package types

type NudgeRequest struct {
	SenderName string `json:"sender_name"`
}

type NudgeResult struct {
	PokeID                  string     `json:"poke_id"`
	Status                  TaskStatus `json:"status"`
	Confidence              float64    `json:"confidence"`
	MessageText             string     `json:"message_text"`
	AudioBase64             string     `json:"audio_base64,omitempty"`
	DurationSec             float64    `json:"duration_sec"`
	ClassificationReasoning string     `json:"classification_reasoning"`
	Cached                  bool       `json:"cached"`
	Muted                   bool       `json:"muted,omitempty"`
	Error                   string     `json:"error,omitempty"` // only set when the pipeline degraded
}

type NudgeErrorResponse struct {
	Error           string `json:"error"`
	FallbackMessage string `json:"fallback_message"`
}
