package handlers

import (
	"mpc-coordinator/internal/dto"
	"net/http"

	"github.com/gin-gonic/gin"
)

// StoreEntityInfo caches an artifact under its fingerprint.
func (h *Handler) StoreEntityInfo(c *gin.Context) {
	var req dto.StoreEntityInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	h.svc.PutBlob(req.Fingerprint, req.EntityInfo)
	c.JSON(http.StatusOK, dto.StatusResponse{Status: "ok"})
}

// GetEntityInfo returns a cached artifact. An unknown fingerprint is not an
// error: the response says found=false.
func (h *Handler) GetEntityInfo(c *gin.Context) {
	var q dto.FingerprintQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	artifact, ok := h.svc.GetBlob(q.Fingerprint)
	if !ok {
		artifact = []byte{}
	}
	c.JSON(http.StatusOK, dto.EntityInfoResponse{Fingerprint: q.Fingerprint, EntityInfo: artifact, Found: ok})
}
