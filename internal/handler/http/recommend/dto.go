// Package recommend provides HTTP handlers for the recommendation endpoints:
// the ranked list and the per-movie explanation.
package recommend

// ItemDTO is one recommended movie in a served list.
type ItemDTO struct {
	MovieID  int64   `json:"movie_id" example:"603"`
	Score    float64 `json:"score" example:"4.37"`
	Strategy string  `json:"strategy" example:"latent"`
}

// ListDTO is the response body for the recommendation list endpoint.
type ListDTO struct {
	UserID          int64     `json:"user_id" example:"42"`
	Count           int       `json:"count" example:"10"`
	Recommendations []ItemDTO `json:"recommendations"`
}
