package handlers

import (
	"mpc-coordinator/internal/coordinator"
	"mpc-coordinator/internal/metrics"
)

// Handler binds HTTP requests to the coordination service.
type Handler struct {
	svc     *coordinator.Service
	metrics *metrics.Recorder
}

// New creates a handler set. rec may be nil.
func New(svc *coordinator.Service, rec *metrics.Recorder) *Handler {
	return &Handler{svc: svc, metrics: rec}
}
