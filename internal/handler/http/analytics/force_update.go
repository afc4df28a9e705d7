package analytics

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"cinerec/internal/engine/latent"
	"cinerec/internal/handler/http/respond"
	"cinerec/internal/usecase/modelupdate"
)

type ForceUpdateHandler struct{ Svc *modelupdate.Service }

// ServeHTTP triggers a synchronous model rebuild and returns its log record.
// The only accepted update_type is "full_rebuild"; an empty body defaults
// to it. Concurrent requests share one rebuild.
func (h ForceUpdateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UpdateType string `json:"update_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respond.SafeError(w, http.StatusBadRequest, err)
		return
	}
	if req.UpdateType != "" && req.UpdateType != modelupdate.UpdateTypeFull {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New(`update_type must be "full_rebuild"`))
		return
	}

	record, err := h.Svc.ForceRebuild(r.Context(), modelupdate.TriggerManual)
	if err != nil {
		if errors.Is(err, latent.ErrUnavailable) {
			respond.SafeErrorV2(w, http.StatusConflict, respond.NewAppError(
				http.StatusConflict, "not enough interactions to build a model", err))
			return
		}
		respond.SafeError(w, http.StatusInternalServerError, err)
		return
	}

	respond.JSON(w, http.StatusOK, updateLogDTO(record))
}
