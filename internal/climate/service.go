package climate

import (
	"context"
	"errors"
	"log"
)

// Status is the outcome of one dashboard analysis.
type Status string

const (
	StatusOK               Status = "ok"
	StatusFetchError       Status = "fetch_error"
	StatusInsufficientData Status = "insufficient_data"
)

// Analysis is everything the display layer needs for one location.
// Years and Metrics are populated whenever the fetch succeeded, even if
// Status is StatusInsufficientData; callers decide what to render.
type Analysis struct {
	Location Location
	Status   Status
	Message  string
	Err      error

	DaysFetched int
	Years       []EnrichedYearlyRecord
	Metrics     Metrics
}

// OK reports whether the analysis can be displayed in full.
func (a Analysis) OK() bool {
	return a.Status == StatusOK
}

// Service runs the fetch, aggregate and metrics pipeline for configured locations.
type Service struct {
	source    Source
	locations []Location
}

// NewService creates a new Service.
func NewService(source Source, locations []Location) *Service {
	return &Service{
		source:    source,
		locations: locations,
	}
}

// Locations returns the configured locations in display order.
func (s *Service) Locations() []Location {
	out := make([]Location, len(s.locations))
	copy(out, s.locations)
	return out
}

// Lookup finds a configured location by name.
func (s *Service) Lookup(name string) (Location, bool) {
	return LookupLocation(s.locations, name)
}

// Analyze fetches (through the cache) and analyses the data for loc.
// It never returns an error; failures are reported through Analysis.Status.
func (s *Service) Analyze(ctx context.Context, loc Location) Analysis {
	a := Analysis{Location: loc}

	daily, err := s.source.GetOrFetch(ctx, loc.Coordinates())
	if err != nil {
		log.Printf("ERROR: fetch failed for %s: %v", loc.Name, err)
		return a.fail(StatusFetchError, err)
	}
	a.DaysFetched = len(daily)

	yearly := YearlyAverage(daily)
	a.Metrics = ComputeMetrics(yearly)
	if len(yearly) == 0 {
		return a.fail(StatusInsufficientData, &EmptyDataError{Location: loc.Name})
	}

	a.Years = Enrich(yearly, a.Metrics.BaselineAverage, RollingWindow)

	if err := a.Metrics.Err(); err != nil {
		log.Printf("INFO: %s: %v", loc.Name, err)
		return a.fail(StatusInsufficientData, err)
	}

	a.Status = StatusOK
	return a
}

func (a Analysis) fail(status Status, err error) Analysis {
	a.Status = status
	a.Err = err
	a.Message = userMessage(err)
	return a
}

func userMessage(err error) string {
	var (
		fetchErr *FetchError
		emptyErr *EmptyDataError
		insufErr *InsufficientDataError
	)
	switch {
	case errors.As(err, &fetchErr) && fetchErr.Err != nil:
		return "Error fetching data: " + fetchErr.Err.Error()
	case errors.As(err, &emptyErr), errors.As(err, &insufErr):
		return err.Error()
	default:
		return "Error fetching data: " + err.Error()
	}
}

// Refresh refetches data for loc, keeping previously cached data if the fetch fails.
func (s *Service) Refresh(ctx context.Context, loc Location) error {
	return s.source.Refresh(ctx, loc.Coordinates())
}
