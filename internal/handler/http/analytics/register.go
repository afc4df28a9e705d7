package analytics

import (
	"net/http"

	"cinerec/internal/usecase/modelupdate"
	"cinerec/internal/usecase/tracking"
)

// Register registers the analytics and model administration endpoints with
// the given mux.
func Register(mux *http.ServeMux, events *tracking.Service, updates *modelupdate.Service) {
	mux.Handle("POST /analytics/track/click", ClickHandler{events})
	mux.Handle("POST /analytics/track/rating", RatingHandler{Svc: events, Updates: updates})
	mux.Handle("POST /analytics/track/thumbs", ThumbsHandler{Svc: events, Updates: updates})

	mux.Handle("GET /analytics/performance", PerformanceHandler{events})
	mux.Handle("GET /analytics/model/updates", UpdatesHandler{updates})
	mux.Handle("POST /analytics/model/force-update", ForceUpdateHandler{updates})
}
