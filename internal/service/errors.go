// Package service implements the request lifecycle: creation under the
// per-municipality daily limit, citizen cancellation, staff status
// updates, and the append-only audit trail recorded alongside every
// mutation.
package service

import (
    "errors"
    "fmt"
)

// ErrNotFound is returned when a lookup by token or internal id finds
// no request.  Handlers translate it into an HTTP 404 response.
var ErrNotFound = errors.New("service request not found")

// BusinessError marks a structurally valid operation that violates a
// domain rule: quota exceeded, an illegal status transition, or a
// cancel on a terminal request.  The message is safe to show to the
// caller.  Handlers translate it into an HTTP 400 response; retrying
// the same input reproduces the same violation.
type BusinessError struct {
    msg string
}

func (e *BusinessError) Error() string { return e.msg }

func businessErrorf(format string, args ...any) *BusinessError {
    return &BusinessError{msg: fmt.Sprintf(format, args...)}
}

// IsBusiness reports whether err is (or wraps) a BusinessError.
func IsBusiness(err error) bool {
    var be *BusinessError
    return errors.As(err, &be)
}
