package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnavailable means the server could not be reached at all.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized covers 401/403-class responses.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound means the target resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict means a conditional write presented a stale
	// entity-version token.
	ErrConflict = errors.New("version conflict")
)

// StatusError carries the raw HTTP status of a failed request. It matches
// the taxonomy sentinels through errors.Is, so callers can branch on
// ErrUnauthorized/ErrNotFound/ErrConflict without losing the code. The
// login path in particular needs the code itself to distinguish wrong
// credentials from a not-yet-activated account.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server returned status %d", e.Code)
}

// Is maps status classes onto the sentinel errors.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden
	case ErrNotFound:
		return e.Code == http.StatusNotFound
	case ErrConflict:
		return e.Code == http.StatusConflict || e.Code == http.StatusPreconditionFailed
	}
	return false
}

// StatusCode extracts the HTTP status carried by err, or 0 if err does not
// wrap a StatusError.
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code
	}
	return 0
}
