package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.ObserveResponse("/ok", 200, 5*time.Millisecond)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make(map[string]bool)
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["static_server_requests_total"])
	assert.True(t, names["static_server_request_duration_seconds"])
	assert.True(t, names["static_server_pool_active_jobs"])
}

func TestCollectorObserveResponse(t *testing.T) {
	c := NewCollector(nil)

	c.ObserveResponse("/ok", 200, time.Millisecond)
	c.ObserveResponse("/ok", 200, time.Millisecond)
	c.ObserveResponse("static", 404, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.Requests.WithLabelValues("/ok", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Requests.WithLabelValues("static", "404")))
}

func TestCollectorPoolHooks(t *testing.T) {
	c := NewCollector(nil)

	c.JobSubmitted()
	c.JobSubmitted()
	c.JobStarted()
	c.JobStarted()
	assert.Equal(t, 2.0, testutil.ToFloat64(c.ActiveJobs))

	c.JobFinished(time.Millisecond, nil)
	c.JobFinished(time.Millisecond, errors.New("job panic"))

	assert.Equal(t, 2.0, testutil.ToFloat64(c.JobsSubmitted))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.JobsCompleted))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.JobsPanicked))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.ActiveJobs))
}

func TestCollectorGauges(t *testing.T) {
	c := NewCollector(nil)

	c.AsyncScheduled()
	c.AsyncScheduled()
	c.AsyncDone()
	c.SetResults(8)
	c.ProtocolError()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.AsyncPending))
	assert.Equal(t, 8.0, testutil.ToFloat64(c.ResultsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ProtocolErrors))
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *Collector
	c.ObserveResponse("/ok", 200, time.Millisecond)
	c.ProtocolError()
	c.AsyncScheduled()
	c.AsyncDone()
	c.SetResults(1)
}
