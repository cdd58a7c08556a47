package store

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/i474232898/climate-tracker/internal/climate"
	"github.com/i474232898/climate-tracker/internal/metrics"
)

var (
	// ErrNotFound is returned when no data is cached for the given coordinates.
	ErrNotFound = errors.New("no climate data cached for coordinates")
)

// Options configure a MemoryStore.
type Options struct {
	// Start is the first day requested from the fetcher.
	Start time.Time
	// TTL bounds how long an entry is served. Zero keeps entries for the
	// lifetime of the process.
	TTL time.Duration
	// Now supplies "today" as the end of every fetched range. Defaults to time.Now.
	Now func() time.Time
	// FetchTimeout bounds one shared upstream fetch, independent of the
	// callers waiting on it. Defaults to DefaultFetchTimeout.
	FetchTimeout time.Duration
	// Recorder receives cache and fetch metrics. May be nil.
	Recorder *metrics.Recorder
}

// DefaultFetchTimeout is used when Options.FetchTimeout is not set.
const DefaultFetchTimeout = 2 * time.Minute

// Stats describes cache usage since creation.
type Stats struct {
	Entries int   `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}

// MemoryStore memoizes daily records per coordinate pair in memory.
// Failed fetches are never cached, and concurrent lookups and refreshes of
// the same key share a single upstream fetch.
type MemoryStore struct {
	fetcher climate.Fetcher
	entries *gocache.Cache
	flights singleflight.Group

	start        time.Time
	now          func() time.Time
	fetchTimeout time.Duration
	recorder     *metrics.Recorder

	hits   atomic.Int64
	misses atomic.Int64
}

// NewMemoryStore creates a MemoryStore in front of fetcher.
func NewMemoryStore(fetcher climate.Fetcher, opts Options) *MemoryStore {
	ttl := gocache.NoExpiration
	var cleanup time.Duration
	if opts.TTL > 0 {
		ttl = opts.TTL
		cleanup = 2 * opts.TTL
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	fetchTimeout := opts.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}

	return &MemoryStore{
		fetcher:      fetcher,
		entries:      gocache.New(ttl, cleanup),
		start:        climate.Day(opts.Start),
		now:          now,
		fetchTimeout: fetchTimeout,
		recorder:     opts.Recorder,
	}
}

// GetOrFetch returns the cached records for coord, fetching them on a miss.
// The returned slice is shared between callers and must not be modified.
//
// Lookups and refreshes of the same key share one upstream fetch. The fetch runs
// detached from ctx, bounded by Options.FetchTimeout, so a caller that gives up
// neither fails the others nor prevents the result from being cached.
func (s *MemoryStore) GetOrFetch(ctx context.Context, coord climate.Coordinates) ([]climate.DailyRecord, error) {
	key := coord.Key()

	if records, ok := s.lookup(key); ok {
		s.countHit()
		return records, nil
	}

	// Written by the flight goroutine only when this call leads the flight;
	// read only after its result has been received.
	var fetched bool
	ch := s.flights.DoChan(key, func() (interface{}, error) {
		// A flight that finished just before this one started may have filled the entry.
		if records, ok := s.lookup(key); ok {
			return records, nil
		}
		fetched = true
		log.Printf("DEBUG: cache miss for %s, fetching from %s", coord, s.fetcher.Name())
		return s.fetchAndStore(ctx, key, coord)
	})

	select {
	case <-ctx.Done():
		s.countMiss()
		return nil, s.abandoned(ctx, coord)
	case res := <-ch:
		if res.Err != nil || fetched {
			s.countMiss()
		} else {
			s.countHit()
		}
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]climate.DailyRecord), nil
	}
}

// Refresh fetches fresh records for coord and replaces the cached entry.
// On failure the previous entry, if any, is left untouched. A lookup that
// misses while a refresh is in flight waits for it instead of fetching again.
func (s *MemoryStore) Refresh(ctx context.Context, coord climate.Coordinates) error {
	key := coord.Key()

	ch := s.flights.DoChan(key, func() (interface{}, error) {
		return s.fetchAndStore(ctx, key, coord)
	})

	var err error
	select {
	case <-ctx.Done():
		err = s.abandoned(ctx, coord)
	case res := <-ch:
		err = res.Err
	}
	if err != nil {
		log.Printf("ERROR: refresh failed for %s; keeping last good data if any: %v", coord, err)
	}
	return err
}

// Get returns cached records without fetching.
func (s *MemoryStore) Get(coord climate.Coordinates) ([]climate.DailyRecord, error) {
	records, ok := s.lookup(coord.Key())
	if !ok {
		return nil, ErrNotFound
	}
	return records, nil
}

// Clear drops every cached entry.
func (s *MemoryStore) Clear() {
	s.entries.Flush()
}

// Stats reports cache usage.
func (s *MemoryStore) Stats() Stats {
	return Stats{
		Entries: s.entries.ItemCount(),
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
	}
}

func (s *MemoryStore) lookup(key string) ([]climate.DailyRecord, bool) {
	v, ok := s.entries.Get(key)
	if !ok {
		return nil, false
	}
	records, ok := v.([]climate.DailyRecord)
	return records, ok
}

func (s *MemoryStore) countHit() {
	s.hits.Add(1)
	s.recorder.CacheHit()
}

func (s *MemoryStore) countMiss() {
	s.misses.Add(1)
	s.recorder.CacheMiss()
}

// fetchAndStore runs one upstream fetch on a context that keeps ctx's values
// but not its cancellation, and caches the result on success.
func (s *MemoryStore) fetchAndStore(ctx context.Context, key string, coord climate.Coordinates) (interface{}, error) {
	fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.fetchTimeout)
	defer cancel()

	records, err := s.fetch(fctx, coord)
	if err != nil {
		return nil, err
	}
	s.entries.Set(key, records, gocache.DefaultExpiration)
	return records, nil
}

// abandoned reports a caller that stopped waiting for a shared fetch.
func (s *MemoryStore) abandoned(ctx context.Context, coord climate.Coordinates) error {
	return &climate.FetchError{Provider: s.fetcher.Name(), Coordinates: coord, Err: ctx.Err()}
}

func (s *MemoryStore) fetch(ctx context.Context, coord climate.Coordinates) ([]climate.DailyRecord, error) {
	dr := climate.DateRange{Start: s.start, End: climate.Day(s.now())}

	began := time.Now()
	records, err := s.fetcher.FetchDaily(ctx, coord, dr)
	s.recorder.ObserveFetch(time.Since(began), err)
	return records, err
}

var _ climate.Source = (*MemoryStore)(nil)
