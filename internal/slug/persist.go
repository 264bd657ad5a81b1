package slug

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DefaultAttempts is the number of allocate-then-write rounds Persist makes
// when attempts is not positive.
const DefaultAttempts = 3

// Request describes one allocation.
type Request struct {
	DisplayName string
	Kind        Kind
	// ExcludeID is the ID of the record being renamed, or uuid.Nil on create.
	ExcludeID uuid.UUID
}

// Persist allocates a slug for req and hands it to write. When write reports
// ErrTaken (a concurrent allocation won the same slug) the slug is allocated
// again, now observing the winner's row, and the write is retried.
// After attempts rounds the last ErrTaken is returned.
//
// Any other error from Allocate or write is returned immediately.
func Persist[T any](
	ctx context.Context,
	a *Allocator,
	req Request,
	attempts int,
	write func(ctx context.Context, slug string) (T, error),
) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = DefaultAttempts
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		s, err := a.Allocate(ctx, req.DisplayName, req.Kind, req.ExcludeID)
		if err != nil {
			return zero, err
		}

		out, err := write(ctx, s)
		if err == nil {
			return out, nil
		}
		if !errors.Is(err, ErrTaken) {
			return zero, err
		}
		lastErr = err
	}
	return zero, fmt.Errorf("slug.Persist: %d attempts: %w", attempts, lastErr)
}
