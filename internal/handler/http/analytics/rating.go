package analytics

import (
	"encoding/json"
	"errors"
	"net/http"

	"cinerec/internal/handler/http/respond"
	"cinerec/internal/usecase/modelupdate"
	"cinerec/internal/usecase/tracking"
)

type RatingHandler struct {
	Svc *tracking.Service

	// Updates is optional; when set, each recorded rating counts toward the
	// rebuild threshold.
	Updates *modelupdate.Service
}

// ServeHTTP records a star rating outcome. Ratings must be on the 0.5 to 5
// scale; re-rating the same exposure replaces the value.
func (h RatingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID  int64   `json:"user_id"`
		MovieID int64   `json:"movie_id"`
		Rating  float64 `json:"rating"`
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

	err := h.Svc.RecordOutcome(r.Context(), req.UserID, req.MovieID, tracking.OutcomeRating, req.Rating)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, tracking.ErrInvalidRating) {
			code = http.StatusBadRequest
		}
		respond.SafeError(w, code, err)
		return
	}

	if h.Updates != nil {
		h.Updates.NoteInteraction()
	}
	respond.JSON(w, http.StatusOK, TrackDTO{Status: "recorded"})
}
