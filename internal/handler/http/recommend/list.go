package recommend

import (
	"errors"
	"net/http"
	"strconv"

	"cinerec/internal/handler/http/respond"
	recUC "cinerec/internal/usecase/recommend"
)

// maxLimit caps the list size a single request can ask for.
const maxLimit = 50

type ListHandler struct{ Svc *recUC.Service }

// ServeHTTP serves the ranked recommendation list for a user.
// Query parameters: user_id (required), limit (default 10, max 50),
// use_context (default true), use_embeddings and use_graph (default false).
func (h ListHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	userID, err := strconv.ParseInt(q.Get("user_id"), 10, 64)
	if err != nil {
		respond.SafeError(w, http.StatusBadRequest,
			errors.New("user_id must be an integer"))
		return
	}

	limit := recUC.DefaultLimit
	if raw := q.Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			respond.SafeError(w, http.StatusBadRequest,
				errors.New("limit must be a positive integer"))
			return
		}
		if limit > maxLimit {
			limit = maxLimit
		}
	}

	opts := recUC.DefaultOptions()
	flags := []struct {
		name string
		dst  *bool
	}{
		{"use_context", &opts.UseContext},
		{"use_embeddings", &opts.UseEmbeddings},
		{"use_graph", &opts.UseGraph},
	}
	for _, f := range flags {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseBool(raw)
		if err != nil {
			respond.SafeError(w, http.StatusBadRequest,
				errors.New(f.name+" must be a boolean"))
			return
		}
		*f.dst = v
	}

	recs, err := h.Svc.Recommend(r.Context(), userID, limit, opts)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, recUC.ErrInvalidUserID) {
			code = http.StatusBadRequest
		}
		respond.SafeError(w, code, err)
		return
	}

	items := make([]ItemDTO, len(recs))
	for i, rec := range recs {
		items[i] = ItemDTO{
			MovieID:  rec.MovieID,
			Score:    rec.Score,
			Strategy: rec.Strategy,
		}
	}
	respond.JSON(w, http.StatusOK, ListDTO{
		UserID:          userID,
		Count:           len(items),
		Recommendations: items,
	})
}
