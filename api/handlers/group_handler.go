package handlers

import (
	"mpc-coordinator/internal/dto"
	"mpc-coordinator/internal/group"
	"net/http"

	"github.com/gin-gonic/gin"
)

// StoreGroupInfo creates a group on first call and records the caller's
// signature on every call.
func (h *Handler) StoreGroupInfo(c *gin.Context) {
	var req dto.StoreGroupInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	created := h.svc.UpsertGroup(req.GroupID, req.GroupInfo, req.PubKey, req.Signature)
	c.JSON(http.StatusOK, dto.StoreGroupInfoResponse{Created: created})
}

// GetGroupInfo returns the group info with the caller's signature.
func (h *Handler) GetGroupInfo(c *gin.Context) {
	var q dto.GroupMemberQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	desc, err := h.svc.GetGroup(q.GroupID, q.PubKey)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GroupInfoResponse{GroupInfo: desc.Info, Signature: desc.Signature})
}

// GetGroupIDs lists the groups a key has joined.
func (h *Handler) GetGroupIDs(c *gin.Context) {
	var q dto.PubKeyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.GroupIDsResponse{PubKey: q.PubKey, GroupIDs: h.svc.ListGroups(q.PubKey)})
}

// StoreArtifact publishes a key-generation artifact of the kind in the path.
func (h *Handler) StoreArtifact(c *gin.Context) {
	kind, err := group.ParseArtifactKind(c.Param("kind"))
	if err != nil {
		respondError(c, err)
		return
	}
	var req dto.StoreArtifactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.UpsertKeyArtifact(req.GroupID, kind, req.PubKey, req.Artifact, req.Signature); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: "ok"})
}

// GetArtifact returns a member's key-generation artifact.
func (h *Handler) GetArtifact(c *gin.Context) {
	kind, err := group.ParseArtifactKind(c.Param("kind"))
	if err != nil {
		respondError(c, err)
		return
	}
	var q dto.GroupMemberQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	a, err := h.svc.GetKeyArtifact(q.GroupID, kind, q.PubKey)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ArtifactResponse{Kind: string(kind), Artifact: a.Value, Signature: a.Signature})
}
