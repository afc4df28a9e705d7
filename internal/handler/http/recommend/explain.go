package recommend

import (
	"errors"
	"net/http"
	"strconv"

	"cinerec/internal/handler/http/respond"
	recUC "cinerec/internal/usecase/recommend"
)

type ExplainHandler struct{ Svc *recUC.Service }

// ServeHTTP explains why one movie would be recommended to one user.
// Query parameters: user_id and movie_id, both required.
func (h ExplainHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	userID, err := strconv.ParseInt(q.Get("user_id"), 10, 64)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("user_id must be an integer"))
		return
	}
	movieID, err := strconv.ParseInt(q.Get("movie_id"), 10, 64)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("movie_id must be an integer"))
		return
	}

	exp, err := h.Svc.Explain(r.Context(), userID, movieID)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, recUC.ErrInvalidUserID), errors.Is(err, recUC.ErrInvalidMovieID):
			code = http.StatusBadRequest
		case errors.Is(err, recUC.ErrMovieNotFound):
			code = http.StatusNotFound
		}
		respond.SafeError(w, code, err)
		return
	}

	respond.JSON(w, http.StatusOK, exp)
}
