package service

import (
	"errors"
	"fmt"
)

// Sentinel errors forming the request error taxonomy. Handlers map these to
// HTTP statuses: ErrValidation 400, ErrInvalidCredentials 401,
// ErrPermissionDenied 403, ErrNotFound 404.
var (
	ErrNotFound           = errors.New("not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrValidation         = errors.New("validation failed")
)

// invalidf wraps a message as a validation error
func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrValidation}, args...)...)
}
