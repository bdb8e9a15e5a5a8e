package handlers

import (
	"mpc-coordinator/internal/dto"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Sign creates the signing session for a message, or joins it if it exists.
func (h *Handler) Sign(c *gin.Context) {
	var req dto.SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	hash, err := h.svc.CreateOrApproveSession(req.GroupID, req.PubKey, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SignResponse{MessageHash: hash})
}

// ResetSession discards a session's parties and round data.
func (h *Handler) ResetSession(c *gin.Context) {
	var req dto.SignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	hash, err := h.svc.ResetSession(req.GroupID, req.PubKey, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SignResponse{MessageHash: hash})
}

// ListSessions lists a group's sessions with their party counts.
func (h *Handler) ListSessions(c *gin.Context) {
	var q dto.GroupQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	sessions, err := h.svc.ListSessions(q.GroupID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SessionsResponse{GroupID: q.GroupID, Sessions: sessions})
}

// GetMessage returns the raw message for a hash, or found=false.
func (h *Handler) GetMessage(c *gin.Context) {
	var q dto.MessageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	raw, ok := h.svc.GetMessageContent(q.MessageHash)
	if !ok {
		raw = []byte{}
	}
	c.JSON(http.StatusOK, dto.MessageResponse{MessageHash: q.MessageHash, Message: raw, Found: ok})
}

// Approve admits a party into a session.
func (h *Handler) Approve(c *gin.Context) {
	var req dto.ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.Approve(req.GroupID, req.MessageHash, req.PubKey); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: "ok"})
}

// ListParties lists a session's parties in join order.
func (h *Handler) ListParties(c *gin.Context) {
	var q dto.SessionQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	parties, err := h.svc.ListParties(q.GroupID, q.MessageHash)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PartiesResponse{MessageHash: q.MessageHash, Parties: parties})
}
