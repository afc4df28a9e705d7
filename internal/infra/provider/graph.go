package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"cinerec/internal/domain/entity"
	"cinerec/internal/resilience/circuitbreaker"
	"cinerec/internal/resilience/retry"
	"cinerec/internal/usecase/recommend"
)

const (
	// maxGraphFetch bounds the over-fetch used to absorb client-side
	// exclusion.
	maxGraphFetch = 100

	// maxGraphResponseSize limits how much of the response body is read.
	maxGraphResponseSize = 1 << 20

	defaultGraphTimeout = 10 * time.Second
)

// GraphProvider queries the external graph similarity service over HTTP.
// The service walks a co-engagement graph and returns scored movie IDs for
// a user.
type GraphProvider struct {
	baseURL     string
	apiKey      string
	client      *http.Client
	breaker     *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
}

// NewGraphProvider creates a graph provider for the service at baseURL.
// A nil client gets a default with a conservative timeout; per-call deadlines
// come from the caller's context.
func NewGraphProvider(baseURL, apiKey string, client *http.Client) *GraphProvider {
	if client == nil {
		client = &http.Client{Timeout: defaultGraphTimeout}
	}
	return &GraphProvider{
		baseURL:     strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		client:      client,
		breaker:     circuitbreaker.New(circuitbreaker.GraphProviderConfig()),
		retryConfig: retry.ProviderConfig(),
	}
}

// Name returns the strategy tag this provider serves.
func (p *GraphProvider) Name() string { return entity.StrategyGraph }

// graphScore mirrors one entry of the service's response array.
type graphScore struct {
	MovieID int64   `json:"movie_id"`
	Score   float64 `json:"score"`
}

// Similar fetches scored candidates for the user and filters the excluded
// IDs client-side. The request over-fetches by the exclusion count so the
// filtered list can still fill the limit.
func (p *GraphProvider) Similar(ctx context.Context, userID int64, limit int, exclude []int64) ([]entity.ScoredMovie, error) {
	n := limit + len(exclude)
	if n > maxGraphFetch {
		n = maxGraphFetch
	}

	var scores []graphScore
	retryErr := retry.WithBackoff(ctx, p.retryConfig, func() error {
		result, err := p.breaker.Execute(func() (interface{}, error) {
			return p.fetch(ctx, userID, n)
		})
		if err != nil {
			return err
		}
		scores = result.([]graphScore)
		return nil
	})
	if retryErr != nil {
		if errors.Is(retryErr, gobreaker.ErrOpenState) {
			return nil, fmt.Errorf("graph provider rejected: %w", recommend.ErrProviderUnavailable)
		}
		return nil, retryErr
	}

	skip := make(map[int64]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}
	items := make([]entity.ScoredMovie, 0, limit)
	for _, sc := range scores {
		if skip[sc.MovieID] {
			continue
		}
		items = append(items, entity.ScoredMovie{MovieID: sc.MovieID, Score: sc.Score})
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

// fetch performs one HTTP round trip without retry or breaker.
func (p *GraphProvider) fetch(ctx context.Context, userID int64, n int) ([]graphScore, error) {
	url := fmt.Sprintf("%s/api/users/%d/similar-movies?n=%d", p.baseURL, userID, n)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("X-API-Key", p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("graph request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, &retry.HTTPError{
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("unexpected status: %s", resp.Status),
		}
	}

	var scores []graphScore
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxGraphResponseSize)).Decode(&scores); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return scores, nil
}
