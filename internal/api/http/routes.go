package httpapi

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/climate-tracker/internal/climate"
	"github.com/i474232898/climate-tracker/internal/metrics"
	"github.com/i474232898/climate-tracker/internal/store"
)

var validate = validator.New()

// CacheAdmin exposes cache inspection and eviction to the API.
type CacheAdmin interface {
	Stats() store.Stats
	Clear()
}

// Deps are the collaborators the HTTP handlers need.
type Deps struct {
	Service  *climate.Service
	Cache    CacheAdmin
	Recorder *metrics.Recorder
	// AnalyzeTimeout bounds one request's pipeline run, including any upstream fetch.
	AnalyzeTimeout time.Duration
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.AnalyzeTimeout <= 0 {
		deps.AnalyzeTimeout = time.Minute
	}

	v1 := app.Group("/api/v1")

	v1.Get("/locations", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"locations": deps.Service.Locations(),
		})
	})

	v1.Get("/climate", func(c *fiber.Ctx) error {
		q, err := parseClimateQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc, err := resolveLocation(deps.Service, q.Location)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), deps.AnalyzeTimeout)
		defer cancel()

		analysis := deps.Service.Analyze(ctx, loc)
		deps.Recorder.Analysis(loc.Name, string(analysis.Status))

		return c.Status(statusCode(analysis.Status)).JSON(newAnalysisResponse(analysis))
	})

	if deps.Cache != nil {
		v1.Get("/cache", func(c *fiber.Ctx) error {
			return c.JSON(deps.Cache.Stats())
		})

		v1.Delete("/cache", func(c *fiber.Ctx) error {
			deps.Cache.Clear()
			return c.SendStatus(fiber.StatusNoContent)
		})
	}
}

// climateQuery holds query parameters for the climate endpoint.
type climateQuery struct {
	Location string `validate:"omitempty,max=100,printascii"`
}

func parseClimateQuery(c *fiber.Ctx) (climateQuery, error) {
	q := climateQuery{Location: c.Query("location")}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// resolveLocation maps a requested name to a configured location.
// An empty name selects the first location, like the dashboard's default selection.
func resolveLocation(svc *climate.Service, name string) (climate.Location, error) {
	if name == "" {
		locs := svc.Locations()
		if len(locs) == 0 {
			return climate.Location{}, fiber.NewError(fiber.StatusNotFound, "no locations configured")
		}
		return locs[0], nil
	}

	loc, ok := svc.Lookup(name)
	if !ok {
		return climate.Location{}, fiber.NewError(fiber.StatusNotFound, "unknown location: "+name)
	}
	return loc, nil
}

func statusCode(s climate.Status) int {
	switch s {
	case climate.StatusOK:
		return fiber.StatusOK
	case climate.StatusFetchError:
		return fiber.StatusBadGateway
	case climate.StatusInsufficientData:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}
