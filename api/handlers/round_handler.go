package handlers

import (
	"mpc-coordinator/internal/common"
	"mpc-coordinator/internal/dto"
	"mpc-coordinator/internal/session"
	"net/http"

	"github.com/gin-gonic/gin"
)

// bucketParam resolves the bucket named in the path. When want is given the
// bucket must be of that kind.
func bucketParam(c *gin.Context, want ...session.BucketKind) (session.BucketName, bool) {
	name := session.BucketName(c.Param("bucket"))
	kind, ok := session.KindOf(name)
	if !ok {
		respondError(c, common.InvalidRequest("unknown bucket %q, want one of %v", name, session.BucketNames()))
		return "", false
	}
	if len(want) > 0 && kind != want[0] {
		respondError(c, common.InvalidRequest("bucket %s is a %s bucket", name, kind))
		return "", false
	}
	return name, true
}

// PublishRound writes the caller's contribution into the bucket in the path.
func (h *Handler) PublishRound(c *gin.Context) {
	bucket, ok := bucketParam(c)
	if !ok {
		return
	}
	var req dto.PublishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if err := h.svc.Publish(req.GroupID, req.MessageHash, req.PubKey, bucket, req.Recipient, req.Payload); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.StatusResponse{Status: "ok"})
}

// ReadRound returns one party's payload from a keyed bucket.
func (h *Handler) ReadRound(c *gin.Context) {
	bucket, ok := bucketParam(c, session.Keyed)
	if !ok {
		return
	}
	var q dto.RoundDataQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	payload, err := h.svc.ReadOne(q.GroupID, q.MessageHash, q.PubKey, bucket)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.RoundDataResponse{Bucket: string(bucket), PubKey: q.PubKey, Payload: payload})
}

// ReadBarrier returns a list bucket's payloads for filterKey once minCount of
// them exist. Until then it answers 404 with error "not_ready".
func (h *Handler) ReadBarrier(c *gin.Context) {
	bucket, ok := bucketParam(c, session.List)
	if !ok {
		return
	}
	var q dto.BarrierQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}
	payloads, err := h.svc.ReadBarrier(q.GroupID, q.MessageHash, bucket, q.FilterKey, *q.MinCount)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]dto.HexBytes, len(payloads))
	for i, p := range payloads {
		out[i] = p
	}
	c.JSON(http.StatusOK, dto.BarrierResponse{Bucket: string(bucket), FilterKey: q.FilterKey, Payloads: out})
}
