package recommend

import (
	"net/http"

	recUC "cinerec/internal/usecase/recommend"
)

// Register registers the recommendation endpoints with the given mux.
func Register(mux *http.ServeMux, svc *recUC.Service) {
	mux.Handle("GET /recommendations", ListHandler{svc})
	mux.Handle("GET /recommendations/explain", ExplainHandler{svc})
}
