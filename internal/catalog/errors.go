package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/lepinkainen/readersrealm/internal/openlibrary"
)

var (
	// ErrNotFound matches every NotFoundError.
	ErrNotFound = errors.New("not found")

	// ErrUpstream is returned when the primary Open Library fetch fails.
	ErrUpstream = errors.New("upstream catalog unavailable")
)

// NotFoundError carries the client-facing message for a missing resource.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrNotFound) true for any NotFoundError.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func notFound(msg string) error {
	return &NotFoundError{Message: msg}
}

// primaryError maps the error of the primary upstream fetch of a request.
func primaryError(err error, missing string) error {
	switch {
	case errors.Is(err, openlibrary.ErrNotFound):
		return notFound(missing)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrUpstream, err)
	}
}
