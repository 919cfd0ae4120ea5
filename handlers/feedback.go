package handlers

import (
	"net/http"

	"clementus360/nudge-agent/config"
	"clementus360/nudge-agent/supabase"
	"clementus360/nudge-agent/types"
)

func (h *Handler) FeedbackHandler(w http.ResponseWriter, r *http.Request) {
	var fb types.Feedback
	if err := decodeJSON(r, &fb, false); err != nil {
		config.Logger.Error("Failed to decode feedback JSON: ", err)
		writeError(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	// a signed-in caller is always credited as themselves
	if sub, err := supabase.UserIDFromRequest(r); err == nil {
		fb.UserID = sub
	}

	if fb.PokeID == "" || fb.UserID == "" {
		writeError(w, "Missing poke_id or user_id", http.StatusBadRequest)
		return
	}
	if !fb.UserFeedback.Valid() {
		writeError(w, "user_feedback must be one of CORRECT, WRONG_OFF_TASK, WRONG_ON_TASK", http.StatusBadRequest)
		return
	}

	if !h.feedback.Store(r.Context(), fb) {
		writeJSON(w, http.StatusOK, types.FeedbackResponse{
			Success: false,
			Message: "Failed to save feedback.",
		})
		return
	}

	writeJSON(w, http.StatusOK, types.FeedbackResponse{
		Success: true,
		Message: "Thanks for the feedback!",
	})
}
