package analytics

import (
	"errors"
	"net/http"
	"strconv"

	"cinerec/internal/handler/http/respond"
	"cinerec/internal/usecase/tracking"
)

// defaultWindowDays is the report window used when days is not given.
const defaultWindowDays = 30

type PerformanceHandler struct{ Svc *tracking.Service }

// ServeHTTP serves the per-strategy performance report.
// Query parameters: algorithm (optional filter) and days (default 30).
func (h PerformanceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	algorithm := q.Get("algorithm")

	days := defaultWindowDays
	if raw := q.Get("days"); raw != "" {
		var err error
		days, err = strconv.Atoi(raw)
		if err != nil || days <= 0 {
			respond.SafeError(w, http.StatusBadRequest,
				errors.New("days must be a positive integer"))
			return
		}
	}

	reports, err := h.Svc.Performance(r.Context(), algorithm, days)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, PerformanceDTO{
		Algorithm:  algorithm,
		WindowDays: days,
		Strategies: reports,
	})
}
