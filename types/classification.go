package types

type TaskStatus string

const (
	OnTask  TaskStatus = "ON_TASK"
	OffTask TaskStatus = "OFF_TASK"
)

// Valid reports whether s is one of the two known outcomes
func (s TaskStatus) Valid() bool {
	return s == OnTask || s == OffTask
}

type ClassificationResult struct {
	Status     TaskStatus `json:"status"`
	Confidence float64    `json:"confidence"`
	Reasoning  string     `json:"reasoning"`
	Model      string     `json:"model,omitempty"`
}

type ClassifyRequest struct {
	AppName     string          `json:"app_name"`
	WindowTitle string          `json:"window_title"`
	Context     ActivityContext `json:"context"`
	SenderName  string          `json:"sender_name,omitempty"`
}
