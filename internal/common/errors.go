package common

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound means a referenced group, session or per-party entry does not exist.
	ErrNotFound = errors.New("not_found")

	// ErrNotReady means a barrier threshold has not been met yet. Callers retry.
	ErrNotReady = errors.New("not_ready")

	// ErrForbidden means the caller is not a party of the session it writes to.
	ErrForbidden = errors.New("forbidden")

	// ErrBadRequest means the request itself is malformed.
	ErrBadRequest = errors.New("invalid_request")
)

// NotFound wraps ErrNotFound with a description of what was missing.
func NotFound(format string, args ...interface{}) error {
	return errors.Wrap(ErrNotFound, fmt.Sprintf(format, args...))
}

// NotReady wraps ErrNotReady.
func NotReady(format string, args ...interface{}) error {
	return errors.Wrap(ErrNotReady, fmt.Sprintf(format, args...))
}

// Forbidden wraps ErrForbidden.
func Forbidden(format string, args ...interface{}) error {
	return errors.Wrap(ErrForbidden, fmt.Sprintf(format, args...))
}

// InvalidRequest wraps ErrBadRequest.
func InvalidRequest(format string, args ...interface{}) error {
	return errors.Wrap(ErrBadRequest, fmt.Sprintf(format, args...))
}

// Code returns the taxonomy code of err, or "internal_error" when err does not
// belong to the taxonomy.
func Code(err error) string {
	switch errors.Cause(err) {
	case ErrNotFound, ErrNotReady, ErrForbidden, ErrBadRequest:
		return errors.Cause(err).Error()
	}
	return "internal_error"
}
