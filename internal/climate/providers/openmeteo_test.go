package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/climate-tracker/internal/climate"
)

var (
	testCoord = climate.Coordinates{Latitude: -13.9626, Longitude: 33.7741}
	testRange = climate.DateRange{
		Start: time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.May, 31, 0, 0, 0, 0, time.UTC),
	}
	fastBackoff = BackoffConfig{MaxRetries: 2, InitialInterval: time.Millisecond, MaxInterval: 5 * time.Millisecond}
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *OpenMeteoArchiveProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewOpenMeteoArchiveProvider(srv.Client(), srv.URL, fastBackoff)
}

func requireFetchError(t *testing.T, err error) *climate.FetchError {
	t.Helper()
	var fetchErr *climate.FetchError
	require.True(t, errors.As(err, &fetchErr), "expected *climate.FetchError, got %T: %v", err, err)
	assert.Equal(t, testCoord, fetchErr.Coordinates)
	return fetchErr
}

func TestFetchDailySendsArchiveQuery(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "-13.9626", q.Get("latitude"))
		assert.Equal(t, "33.7741", q.Get("longitude"))
		assert.Equal(t, "1950-01-01", q.Get("start_date"))
		assert.Equal(t, "2024-05-31", q.Get("end_date"))
		assert.Equal(t, "temperature_2m_mean", q.Get("daily"))
		assert.Equal(t, "auto", q.Get("timezone"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"latitude": -14.0, "longitude": 33.75,
			"daily_units": {"time": "iso8601", "temperature_2m_mean": "°C"},
			"daily": {
				"time": ["1950-01-01", "1950-01-02", "1950-01-03"],
				"temperature_2m_mean": [21.4, null, 22.1]
			}
		}`))
	})

	records, err := p.FetchDaily(context.Background(), testCoord, testRange)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, time.Date(1950, time.January, 1, 0, 0, 0, 0, time.UTC), records[0].Date)
	require.NotNil(t, records[0].Temperature)
	assert.Equal(t, 21.4, *records[0].Temperature)
	assert.Nil(t, records[1].Temperature)
	assert.Equal(t, 22.1, *records[2].Temperature)
	for _, r := range records {
		assert.Equal(t, testCoord, r.Location)
	}
}

func TestFetchDailyMalformedPayloads(t *testing.T) {
	cases := map[string]string{
		"not json":         `<html>oops</html>`,
		"missing daily":    `{"latitude": 1}`,
		"missing series":   `{"daily": {"time": ["1950-01-01"]}}`,
		"empty arrays":     `{"daily": {"time": [], "temperature_2m_mean": []}}`,
		"length mismatch":  `{"daily": {"time": ["1950-01-01", "1950-01-02"], "temperature_2m_mean": [1]}}`,
		"bad date":         `{"daily": {"time": ["01/01/1950"], "temperature_2m_mean": [1]}}`,
		"duplicate dates":  `{"daily": {"time": ["1950-01-01", "1950-01-01"], "temperature_2m_mean": [1, 2]}}`,
		"descending dates": `{"daily": {"time": ["1950-01-02", "1950-01-01"], "temperature_2m_mean": [1, 2]}}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			records, err := p.FetchDaily(context.Background(), testCoord, testRange)
			assert.Nil(t, records)
			requireFetchError(t, err)
		})
	}
}

func TestFetchDailyClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": true, "reason": "Parameter 'start_date' is out of allowed range"}`))
	})

	_, err := p.FetchDaily(context.Background(), testCoord, testRange)

	fetchErr := requireFetchError(t, err)
	assert.ErrorIs(t, fetchErr, errClientError)
	assert.Contains(t, err.Error(), "out of allowed range")
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClientErrorsDoNotTripBreaker(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)
	p := NewOpenMeteoArchiveProvider(srv.Client(), srv.URL, BackoffConfig{MaxRetries: 0, InitialInterval: time.Millisecond})

	for i := 0; i < 8; i++ {
		_, err := p.FetchDaily(context.Background(), testCoord, testRange)
		fetchErr := requireFetchError(t, err)
		assert.ErrorIs(t, fetchErr, errClientError)
		assert.NotErrorIs(t, fetchErr, errCircuitOpen, "request %d", i+1)
	}
	assert.Equal(t, int32(8), atomic.LoadInt32(&calls))
}

func TestServerErrorsTripBreaker(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	p := NewOpenMeteoArchiveProvider(srv.Client(), srv.URL, BackoffConfig{MaxRetries: 0, InitialInterval: time.Millisecond})

	for i := 0; i < 6; i++ {
		_, err := p.FetchDaily(context.Background(), testCoord, testRange)
		assert.ErrorIs(t, err, errServerError)
	}

	_, err := p.FetchDaily(context.Background(), testCoord, testRange)
	fetchErr := requireFetchError(t, err)
	assert.ErrorIs(t, fetchErr, errCircuitOpen)
	assert.Equal(t, int32(6), atomic.LoadInt32(&calls))
}

func TestFetchDailyRetriesServerErrors(t *testing.T) {
	var calls int32
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"daily": {"time": ["2000-01-01"], "temperature_2m_mean": [20]}}`))
	})

	records, err := p.FetchDaily(context.Background(), testCoord, testRange)

	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchDailyGivesUpAfterRetries(t *testing.T) {
	var calls int32
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := p.FetchDaily(context.Background(), testCoord, testRange)

	fetchErr := requireFetchError(t, err)
	assert.ErrorIs(t, fetchErr, errRateLimited)
	assert.Equal(t, int32(fastBackoff.MaxRetries+1), atomic.LoadInt32(&calls))
}

func TestFetchDailyTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(`{}`))
	}))
	t.Cleanup(srv.Close)

	client := &http.Client{Timeout: 20 * time.Millisecond}
	p := NewOpenMeteoArchiveProvider(client, srv.URL, BackoffConfig{MaxRetries: 0, InitialInterval: time.Millisecond})

	_, err := p.FetchDaily(context.Background(), testCoord, testRange)

	requireFetchError(t, err)
}

func TestFetchDailyRejectsInvertedRange(t *testing.T) {
	var calls int32
	p := newTestProvider(t, func(http.ResponseWriter, *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := p.FetchDaily(context.Background(), testCoord, climate.DateRange{Start: testRange.End, End: testRange.Start})

	requireFetchError(t, err)
	assert.Zero(t, atomic.LoadInt32(&calls))
}

func TestRateLimitedFetcherForwards(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"daily": {"time": ["2000-01-01"], "temperature_2m_mean": [20]}}`))
	})
	limited := NewRateLimitedFetcher(p, 100, 1)

	assert.Equal(t, "openmeteo-archive [Rate Limited]", limited.Name())

	records, err := limited.FetchDaily(context.Background(), testCoord, testRange)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRateLimitedFetcherCanceledWait(t *testing.T) {
	p := newTestProvider(t, func(http.ResponseWriter, *http.Request) {})
	limited := NewRateLimitedFetcher(p, 0.001, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := limited.FetchDaily(ctx, testCoord, testRange)

	requireFetchError(t, err)
}
