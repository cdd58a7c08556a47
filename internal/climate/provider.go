package climate

import "context"

// Fetcher abstracts a historical weather archive (e.g. Open-Meteo).
// Implementations return records ordered by date and report every failure as *FetchError.
type Fetcher interface {
	Name() string
	FetchDaily(ctx context.Context, coord Coordinates, r DateRange) ([]DailyRecord, error)
}

// Source is the contract the daily-record cache must satisfy.
type Source interface {
	GetOrFetch(ctx context.Context, coord Coordinates) ([]DailyRecord, error)
	Refresh(ctx context.Context, coord Coordinates) error
}
