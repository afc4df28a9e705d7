package analytics

import (
	"encoding/json"
	"errors"
	"net/http"

	"cinerec/internal/handler/http/respond"
	"cinerec/internal/usecase/tracking"
)

type ClickHandler struct{ Svc *tracking.Service }

// ServeHTTP records a click on an exposed recommendation. A click for a
// (user, movie) pair that was never exposed is accepted and dropped.
func (h ClickHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  int64 `json:"user_id"`
		MovieID int64 `json:"movie_id"`
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

	if err := h.Svc.RecordOutcome(r.Context(), req.UserID, req.MovieID, tracking.OutcomeClick, 0); err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}
	respond.JSON(w, http.StatusOK, TrackDTO{Status: "recorded"})
}
