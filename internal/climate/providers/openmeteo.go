package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/i474232898/climate-tracker/internal/climate"
	"github.com/sony/gobreaker"
)

// DefaultArchiveURL is the Open-Meteo historical weather endpoint.
const DefaultArchiveURL = "https://archive-api.open-meteo.com/v1/archive"

const dailyVariable = "temperature_2m_mean"

var (
	errMissingDaily = errors.New("response has no daily temperature series")
	errEmptyDaily   = errors.New("response contains no days")
)

// OpenMeteoArchiveProvider implements climate.Fetcher for the Open-Meteo archive API.
type OpenMeteoArchiveProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoArchiveProvider creates a provider. An empty baseURL selects DefaultArchiveURL.
func NewOpenMeteoArchiveProvider(client *http.Client, baseURL string, backoff BackoffConfig) *OpenMeteoArchiveProvider {
	if baseURL == "" {
		baseURL = DefaultArchiveURL
	}
	return &OpenMeteoArchiveProvider{
		name:    "openmeteo-archive",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: newCircuitBreaker("openmeteo-archive"),
	}
}

func (p *OpenMeteoArchiveProvider) Name() string {
	return p.name
}

// FetchDaily downloads the daily mean temperature for coord over r.
func (p *OpenMeteoArchiveProvider) FetchDaily(ctx context.Context, coord climate.Coordinates, r climate.DateRange) ([]climate.DailyRecord, error) {
	if err := r.Validate(); err != nil {
		return nil, p.fail(coord, err)
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(coord.Latitude, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(coord.Longitude, 'f', -1, 64))
		values.Set("start_date", r.Start.Format(climate.DateLayout))
		values.Set("end_date", r.End.Format(climate.DateLayout))
		values.Set("daily", dailyVariable)
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, p.fail(coord, err)
	}
	defer resp.Body.Close()

	var payload archiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, p.fail(coord, fmt.Errorf("decode response: %w", err))
	}

	records, err := parseDaily(coord, payload.Daily)
	if err != nil {
		return nil, p.fail(coord, err)
	}
	return records, nil
}

// archiveResponse is the subset of the archive payload we read.
// Temperatures are pointers because the API reports missing days as null.
type archiveResponse struct {
	Daily *archiveDaily `json:"daily"`
}

type archiveDaily struct {
	Time        []string   `json:"time"`
	Temperature []*float64 `json:"temperature_2m_mean"`
}

func parseDaily(coord climate.Coordinates, daily *archiveDaily) ([]climate.DailyRecord, error) {
	if daily == nil || daily.Time == nil || daily.Temperature == nil {
		return nil, errMissingDaily
	}
	if len(daily.Time) != len(daily.Temperature) {
		return nil, fmt.Errorf("daily series length mismatch: %d dates, %d temperatures", len(daily.Time), len(daily.Temperature))
	}
	if len(daily.Time) == 0 {
		return nil, errEmptyDaily
	}

	records := make([]climate.DailyRecord, 0, len(daily.Time))
	var prev time.Time
	for i, s := range daily.Time {
		d, err := time.Parse(climate.DateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", s, err)
		}
		if i > 0 && !d.After(prev) {
			return nil, fmt.Errorf("dates not strictly ascending at %q", s)
		}
		prev = d

		records = append(records, climate.DailyRecord{
			Date:        d,
			Temperature: daily.Temperature[i],
			Location:    coord,
		})
	}
	return records, nil
}

func (p *OpenMeteoArchiveProvider) fail(coord climate.Coordinates, err error) error {
	return &climate.FetchError{Provider: p.name, Coordinates: coord, Err: err}
}

var _ climate.Fetcher = (*OpenMeteoArchiveProvider)(nil)
