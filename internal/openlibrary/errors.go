package openlibrary

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when Open Library answers 404.
	ErrNotFound = errors.New("not found in Open Library")

	// ErrUnavailable is returned for network failures, unexpected status
	// codes, undecodable bodies and an open circuit breaker.
	ErrUnavailable = errors.New("Open Library unavailable")
)

// statusError carries an unexpected HTTP status code.
type statusError struct {
	Code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// temporary reports whether retrying might succeed.
func (e *statusError) temporary() bool {
	return e.Code >= 500
}
