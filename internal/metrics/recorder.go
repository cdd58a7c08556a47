package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "climate_tracker"

// Recorder holds the Prometheus collectors for the fetch pipeline.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	CacheHits     prometheus.Counter
	CacheMisses   prometheus.Counter
	FetchDuration *prometheus.HistogramVec
	Analyses      *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Daily-record lookups served from the cache.",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Daily-record lookups that required an upstream fetch.",
		}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "fetch",
			Name:      "duration_seconds",
			Help:      "Duration of upstream archive fetches.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"outcome"}),
		Analyses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analyses_total",
			Help:      "Dashboard analyses by location and status.",
		}, []string{"location", "status"}),
	}

	reg.MustRegister(r.CacheHits, r.CacheMisses, r.FetchDuration, r.Analyses)
	return r
}

func (r *Recorder) CacheHit() {
	if r == nil {
		return
	}
	r.CacheHits.Inc()
}

func (r *Recorder) CacheMiss() {
	if r == nil {
		return
	}
	r.CacheMisses.Inc()
}

// ObserveFetch records how long an upstream fetch took and whether it failed.
func (r *Recorder) ObserveFetch(d time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.FetchDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (r *Recorder) Analysis(location, status string) {
	if r == nil {
		return
	}
	r.Analyses.WithLabelValues(location, status).Inc()
}
