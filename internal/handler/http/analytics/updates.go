package analytics

import (
	"errors"
	"net/http"
	"strconv"

	"cinerec/internal/handler/http/respond"
	"cinerec/internal/usecase/modelupdate"
)

type UpdatesHandler struct{ Svc *modelupdate.Service }

// ServeHTTP lists the most recent model rebuild records, newest first.
// Query parameters: limit (default 20).
func (h UpdatesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		var err error
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			respond.SafeError(w, http.StatusBadRequest,
				errors.New("limit must be a positive integer"))
			return
		}
	}

	logs, err := h.Svc.History(r.Context(), limit)
	if err != nil {
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	out := make([]UpdateLogDTO, len(logs))
	for i, log := range logs {
		out[i] = updateLogDTO(log)
	}
	respond.JSON(w, http.StatusOK, map[string][]UpdateLogDTO{"updates": out})
}
