package metrics

import (
	"mpc-coordinator/internal/common"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveCountsOutcomes(t *testing.T) {
	r := New()
	start := time.Now()
	r.Observe("readBarrier", start, nil)
	r.Observe("readBarrier", start, common.NotReady("1 of 2"))
	r.Observe("readBarrier", start, common.NotReady("1 of 2"))

	assert.Equal(t, int64(1), r.Count("readBarrier.ok"))
	assert.Equal(t, int64(2), r.Count("readBarrier.not_ready"))
	assert.Equal(t, int64(0), r.Count("readBarrier.forbidden"))

	snap := r.Snapshot()
	require.Contains(t, snap, "readBarrier.latency")
	assert.EqualValues(t, 3, snap["readBarrier.latency"]["count"])
}

func TestGauge(t *testing.T) {
	r := New()
	r.Gauge("groups", 4)
	assert.EqualValues(t, 4, r.Snapshot()["groups"]["value"])
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	r.Observe("x", time.Now(), nil)
	r.Gauge("g", 1)
	assert.Zero(t, r.Count("x.ok"))
	assert.Empty(t, r.Snapshot())
}

func TestObserveHTTPGroupsStatusClasses(t *testing.T) {
	r := New()
	start := time.Now()
	r.ObserveHTTP("GET /ping", 200, start)
	r.ObserveHTTP("GET /ping", 204, start)
	r.ObserveHTTP("GET /ping", 404, start)

	assert.Equal(t, int64(2), r.Count("http GET /ping.2xx"))
	assert.Equal(t, int64(1), r.Count("http GET /ping.4xx"))
}
