package handlers

import (
	"mpc-coordinator/internal/common"
	"mpc-coordinator/internal/coordinator"
	"mpc-coordinator/internal/dto"
	"mpc-coordinator/internal/logger"
	"mpc-coordinator/internal/storage"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

// statusFor maps the error taxonomy onto HTTP. NotReady is reported with the
// same status as NotFound; the body's error code tells them apart.
func statusFor(err error) int {
	switch errors.Cause(err) {
	case common.ErrNotFound, common.ErrNotReady, storage.ErrNoSnapshot:
		return http.StatusNotFound
	case common.ErrForbidden:
		return http.StatusForbidden
	case common.ErrBadRequest:
		return http.StatusBadRequest
	case coordinator.ErrNoBackend:
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	code := common.Code(err)
	if errors.Cause(err) == storage.ErrNoSnapshot {
		code = "not_found"
	}
	if status == http.StatusInternalServerError {
		logger.Log.WithError(err).WithField("path", c.FullPath()).Error("request failed")
	}
	c.JSON(status, dto.ErrorResponse{Error: code, Message: err.Error()})
}

// badRequest reports a malformed request; nothing has been mutated yet.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: common.ErrBadRequest.Error(), Message: err.Error()})
}
