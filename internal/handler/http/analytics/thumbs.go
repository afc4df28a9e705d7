package analytics

import (
	"encoding/json"
	"errors"
	"net/http"

	"cinerec/internal/handler/http/respond"
	"cinerec/internal/usecase/modelupdate"
	"cinerec/internal/usecase/tracking"
)

type ThumbsHandler struct {
	Svc *tracking.Service

	// Updates is optional; when set, each thumbs vote counts toward the
	// rebuild threshold.
	Updates *modelupdate.Service
}

// ServeHTTP records a thumbs vote. Direction is "up" or "down"; repeating
// the active direction clears the vote, the opposite direction flips it.
func (h ThumbsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID    int64  `json:"user_id"`
		MovieID   int64  `json:"movie_id"`
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if req.UserID <= 0 || req.MovieID <= 0 {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("user_id and movie_id must be positive"))
		return
	}

	var outcome tracking.Outcome
	switch req.Direction {
	case "up":
		outcome = tracking.OutcomeThumbsUp
	case "down":
		outcome = tracking.OutcomeThumbsDown
	default:
		respond.SafeError(w, http.StatusBadRequest,
			errors.New(`direction must be "up" or "down"`))
		return
	}

	if err := h.Svc.RecordOutcome(r.Context(), req.UserID, req.MovieID, outcome, 0); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	if h.Updates != nil {
		h.Updates.NoteInteraction()
	}
	respond.JSON(w, http.StatusOK, TrackDTO{Status: "recorded"})
}
