package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/climate-tracker/internal/climate"
	"github.com/i474232898/climate-tracker/internal/climate/providers"
)

type AppConfig struct {
	// ArchiveURL is the historical weather endpoint.
	ArchiveURL  string        `validate:"required,url"`
	HTTPTimeout time.Duration `validate:"gt=0s"`

	// StartDate is the first day of history fetched for every location.
	StartDate time.Time

	// CacheTTL bounds how long fetched data is served (0 = process lifetime).
	CacheTTL time.Duration `validate:"gte=0s"`

	// RefreshInterval controls how often cached data is refetched in the background (0 = never).
	RefreshInterval time.Duration `validate:"gte=0s"`

	// Outbound resilience.
	MaxRetries     int     `validate:"gte=0,lte=10"`
	RateLimitRPS   float64 `validate:"gt=0"`
	RateLimitBurst int     `validate:"gte=1"`

	// Locations to track.
	Locations []climate.Location `validate:"min=1,dive"`

	Port string `validate:"required,numeric"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.ArchiveURL = getenvDefault("OPEN_METEO_ARCHIVE_URL", providers.DefaultArchiveURL)

	var err error
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", "30s"); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getenvDuration("CACHE_TTL", "0s"); err != nil {
		return nil, err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", "24h"); err != nil {
		return nil, err
	}

	startStr := getenvDefault("HISTORY_START_DATE", "1950-01-01")
	start, err := time.Parse(climate.DateLayout, startStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HISTORY_START_DATE: %w", err)
	}
	if !start.Before(time.Now()) {
		return nil, fmt.Errorf("invalid HISTORY_START_DATE: %s is not in the past", startStr)
	}
	cfg.StartDate = start

	cfg.MaxRetries = getenvInt("FETCH_MAX_RETRIES", 3)
	cfg.RateLimitRPS = getenvFloat("FETCH_RATE_LIMIT_RPS", 1)
	cfg.RateLimitBurst = getenvInt("FETCH_RATE_LIMIT_BURST", 3)

	cfg.Locations = climate.DefaultLocations
	cfg.Port = getenvDefault("PORT", "8080")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Backoff returns the retry settings for outbound fetches.
func (c *AppConfig) Backoff() providers.BackoffConfig {
	b := providers.DefaultBackoff
	b.MaxRetries = c.MaxRetries
	return b
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err == nil {
			return f
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
