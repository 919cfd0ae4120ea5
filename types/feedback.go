package types

import "time"

type FeedbackVerdict string

const (
	VerdictCorrect      FeedbackVerdict = "CORRECT"
	VerdictWrongOffTask FeedbackVerdict = "WRONG_OFF_TASK"
	VerdictWrongOnTask  FeedbackVerdict = "WRONG_ON_TASK"
)

func (v FeedbackVerdict) Valid() bool {
	switch v {
	case VerdictCorrect, VerdictWrongOffTask, VerdictWrongOnTask:
		return true
	}
	return false
}

type Feedback struct {
	PokeID       string          `json:"poke_id"`
	UserID       string          `json:"user_id"`
	UserFeedback FeedbackVerdict `json:"user_feedback"`
	Comment      *string         `json:"comment"`
	CreatedAt    time.Time       `json:"created_at,omitempty"`
}

type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
