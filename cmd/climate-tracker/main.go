package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/i474232898/climate-tracker/internal/api/http"
	"github.com/i474232898/climate-tracker/internal/climate"
	"github.com/i474232898/climate-tracker/internal/climate/providers"
	"github.com/i474232898/climate-tracker/internal/config"
	"github.com/i474232898/climate-tracker/internal/metrics"
	"github.com/i474232898/climate-tracker/internal/scheduler"
	"github.com/i474232898/climate-tracker/internal/store"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder(reg)

	// Shared HTTP client for outbound archive calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	// Archive provider with resilience (backoff + circuit breaker) and a rate limit.
	var fetcher climate.Fetcher = providers.NewOpenMeteoArchiveProvider(httpClient, cfg.ArchiveURL, cfg.Backoff())
	fetcher = providers.NewRateLimitedFetcher(fetcher, cfg.RateLimitRPS, cfg.RateLimitBurst)

	// One shared fetch may retry; callers waiting on it can give up sooner.
	fetchTimeout := time.Duration(cfg.MaxRetries+1) * cfg.HTTPTimeout

	// In-memory cache of daily records, keyed by coordinates.
	cache := store.NewMemoryStore(fetcher, store.Options{
		Start:        cfg.StartDate,
		TTL:          cfg.CacheTTL,
		FetchTimeout: fetchTimeout,
		Recorder:     recorder,
	})

	service := climate.NewService(cache, cfg.Locations)

	// Scheduler that keeps cached data current.
	sched := scheduler.New(cfg.Locations, cfg.RefreshInterval, fetchTimeout, service)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "climate-tracker",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2 * cfg.HTTPTimeout,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "climate-tracker",
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	httpapi.RegisterRoutes(app, httpapi.Deps{
		Service:        service,
		Cache:          cache,
		Recorder:       recorder,
		AnalyzeTimeout: 2 * cfg.HTTPTimeout,
	})

	go func() {
		log.Printf("INFO: listening on :%s", cfg.Port)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
