package providers

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/i474232898/climate-tracker/internal/climate"
)

// RateLimitedFetcher wraps a climate.Fetcher with a token-bucket limiter.
type RateLimitedFetcher struct {
	fetcher climate.Fetcher
	limiter *rate.Limiter
	name    string
}

// NewRateLimitedFetcher creates a rate limited fetcher.
// rps is the maximum requests per second allowed (can be fractional for less than 1 request per second)
// burst is the maximum burst size allowed
func NewRateLimitedFetcher(fetcher climate.Fetcher, rps float64, burst int) *RateLimitedFetcher {
	return &RateLimitedFetcher{
		fetcher: fetcher,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
		name:    fmt.Sprintf("%s [Rate Limited]", fetcher.Name()),
	}
}

// FetchDaily waits for the limiter, then forwards to the wrapped fetcher.
func (r *RateLimitedFetcher) FetchDaily(ctx context.Context, coord climate.Coordinates, dr climate.DateRange) ([]climate.DailyRecord, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, &climate.FetchError{
			Provider:    r.name,
			Coordinates: coord,
			Err:         fmt.Errorf("rate limit wait canceled: %w", err),
		}
	}
	return r.fetcher.FetchDaily(ctx, coord, dr)
}

func (r *RateLimitedFetcher) Name() string {
	return r.name
}

var _ climate.Fetcher = (*RateLimitedFetcher)(nil)
