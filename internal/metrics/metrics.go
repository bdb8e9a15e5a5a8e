// Package metrics counts and times coordination operations.
package metrics

import (
	"fmt"
	"mpc-coordinator/internal/common"
	"time"

	gometrics "github.com/rcrowley/go-metrics"
)

// Recorder records per-operation latency and outcome counters into its own
// registry. A nil *Recorder records nothing.
type Recorder struct {
	registry gometrics.Registry
}

// New creates a recorder with a fresh registry.
func New() *Recorder {
	return &Recorder{registry: gometrics.NewRegistry()}
}

// Observe records one call of op that started at start and ended with err.
// Failures are counted per taxonomy code, e.g. "readBarrier.not_ready".
func (r *Recorder) Observe(op string, start time.Time, err error) {
	if r == nil {
		return
	}
	gometrics.GetOrRegisterTimer(op+".latency", r.registry).UpdateSince(start)
	if err != nil {
		gometrics.GetOrRegisterCounter(op+"."+common.Code(err), r.registry).Inc(1)
		return
	}
	gometrics.GetOrRegisterCounter(op+".ok", r.registry).Inc(1)
}

// ObserveHTTP records one request to route, counted by status class
// ("2xx", "4xx", ...).
func (r *Recorder) ObserveHTTP(route string, status int, start time.Time) {
	if r == nil {
		return
	}
	gometrics.GetOrRegisterTimer("http "+route+".latency", r.registry).UpdateSince(start)
	gometrics.GetOrRegisterCounter(fmt.Sprintf("http %s.%dxx", route, status/100), r.registry).Inc(1)
}

// Gauge sets a named level, e.g. the number of groups held.
func (r *Recorder) Gauge(name string, value int64) {
	if r == nil {
		return
	}
	gometrics.GetOrRegisterGauge(name, r.registry).Update(value)
}

// Count returns the value of a counter, zero when it was never incremented.
func (r *Recorder) Count(name string) int64 {
	if r == nil {
		return 0
	}
	if c, ok := r.registry.Get(name).(gometrics.Counter); ok {
		return c.Count()
	}
	return 0
}

// Snapshot returns every metric's current values keyed by metric name.
func (r *Recorder) Snapshot() map[string]map[string]interface{} {
	if r == nil {
		return map[string]map[string]interface{}{}
	}
	return r.registry.GetAll()
}
