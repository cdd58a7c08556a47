package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.CacheHit()
	r.CacheHit()
	r.CacheMiss()
	r.ObserveFetch(200*time.Millisecond, nil)
	r.ObserveFetch(time.Second, errors.New("boom"))
	r.Analysis("Mzuzu (North)", "ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.CacheHits))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.CacheMisses))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Analyses.WithLabelValues("Mzuzu (North)", "ok")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.FetchDuration))
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder

	assert.NotPanics(t, func() {
		r.CacheHit()
		r.CacheMiss()
		r.ObserveFetch(time.Second, nil)
		r.Analysis("x", "ok")
	})
}
