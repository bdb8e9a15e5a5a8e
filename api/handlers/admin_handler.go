package handlers

import (
	"mpc-coordinator/internal/dto"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Ping reports liveness.
func (h *Handler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// Snapshot dumps the whole store through the configured backend.
func (h *Handler) Snapshot(c *gin.Context) {
	if err := h.svc.Snapshot(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: "saved"})
}

// Restore replaces the whole store with the latest snapshot.
func (h *Handler) Restore(c *gin.Context) {
	if err := h.svc.Restore(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: "restored"})
}

// Metrics dumps operation counters and timers.
func (h *Handler) Metrics(c *gin.Context) {
	c.JSON(http.StatusOK, h.metrics.Snapshot())
}
