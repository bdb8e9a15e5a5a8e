package api

import (
	"mpc-coordinator/api/handlers"
	"mpc-coordinator/internal/config"
	"mpc-coordinator/internal/coordinator"
	"mpc-coordinator/internal/metrics"

	"github.com/gin-gonic/gin"
)

// SetupRouter binds every coordination endpoint to svc.
func SetupRouter(svc *coordinator.Service, rec *metrics.Recorder, cfg config.RateLimitConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), RequestLogger(), gin.Recovery(), Metrics(rec))

	h := handlers.New(svc, rec)

	router.GET("/ping", h.Ping)
	router.GET("/metrics", h.Metrics)

	limited := router.Group("/", RateLimit(cfg.RequestsPerSecond))

	// Content-addressed artifact cache
	limited.POST("/entityInfo", h.StoreEntityInfo)
	limited.GET("/entityInfo", h.GetEntityInfo)

	// Groups and key-generation artifacts
	limited.POST("/groupInfo", h.StoreGroupInfo)
	limited.GET("/groupInfo", h.GetGroupInfo)
	limited.GET("/groupID", h.GetGroupIDs)
	limited.POST("/artifacts/:kind", h.StoreArtifact)
	limited.GET("/artifacts/:kind", h.GetArtifact)

	// Signing sessions
	limited.POST("/sessions", h.Sign)
	limited.POST("/sessions/reset", h.ResetSession)
	limited.GET("/sessions", h.ListSessions)
	limited.POST("/sessions/approve", h.Approve)
	limited.GET("/sessions/parties", h.ListParties)
	limited.GET("/message", h.GetMessage)

	// Round buckets
	limited.POST("/rounds/:bucket", h.PublishRound)
	limited.GET("/rounds/:bucket", h.ReadRound)
	limited.GET("/rounds/:bucket/barrier", h.ReadBarrier)

	admin := router.Group("/admin")
	admin.POST("/snapshot", h.Snapshot)
	admin.POST("/restore", h.Restore)

	return router
}
