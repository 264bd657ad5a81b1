package slug

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Kind names an entity collection. Slugs are unique among records of the
// same Kind only.
type Kind string

const (
	KindProperty Kind = "property"
	KindBlogPost Kind = "blog_post"
)

var (
	// ErrInvalidInput is returned when a display name normalizes to nothing.
	// Callers should reject the originating request as a client error.
	ErrInvalidInput = errors.New("slug: display name has no slug-safe characters")

	// ErrOracleUnavailable wraps a failed existence check. It is never
	// retried by the allocator.
	ErrOracleUnavailable = errors.New("slug: uniqueness check failed")

	// ErrSuffixExhausted is returned when every suffix up to the configured
	// bound is already taken.
	ErrSuffixExhausted = errors.New("slug: no free suffix within bound")

	// ErrTaken is returned by stores when a write hits the unique constraint
	// on slug. Persist treats it as a lost race and re-allocates.
	ErrTaken = errors.New("slug: already taken")
)

// DefaultMaxSuffix bounds the probe loop.
const DefaultMaxSuffix = 10000

// Oracle answers "does a record of kind with this slug exist?".
// A non-nil excludeID is never counted, so a record being renamed does not
// collide with itself.
type Oracle interface {
	Exists(ctx context.Context, kind Kind, candidate string, excludeID uuid.UUID) (bool, error)
}

// OracleFunc adapts a plain function to Oracle.
type OracleFunc func(ctx context.Context, kind Kind, candidate string, excludeID uuid.UUID) (bool, error)

// Exists implements Oracle.
func (f OracleFunc) Exists(ctx context.Context, kind Kind, candidate string, excludeID uuid.UUID) (bool, error) {
	return f(ctx, kind, candidate, excludeID)
}

// Allocator produces slugs that are free at the moment of their last check.
// It holds no per-call state and is safe for concurrent use.
type Allocator struct {
	oracle    Oracle
	maxSuffix int
	onAlloc   func(kind Kind, probes int)
	reserved  map[Kind]map[string]bool
}

// Option configures an Allocator.
type Option func(*Allocator)

// WithMaxSuffix caps the highest numeric suffix tried. Values below 1 are ignored.
func WithMaxSuffix(n int) Option {
	return func(a *Allocator) {
		if n >= 1 {
			a.maxSuffix = n
		}
	}
}

// WithProbeHook registers fn to be called after every successful allocation
// with the number of oracle queries it took.
func WithProbeHook(fn func(kind Kind, probes int)) Option {
	return func(a *Allocator) {
		a.onAlloc = fn
	}
}

// WithReserved marks names as never available for kind, e.g. path segments
// that a route for that kind already claims. Names are matched after
// normalization.
func WithReserved(kind Kind, names ...string) Option {
	return func(a *Allocator) {
		if a.reserved == nil {
			a.reserved = make(map[Kind]map[string]bool)
		}
		if a.reserved[kind] == nil {
			a.reserved[kind] = make(map[string]bool)
		}
		for _, name := range names {
			if s, err := Normalize(name); err == nil {
				a.reserved[kind][s] = true
			}
		}
	}
}

// New returns an Allocator backed by oracle.
func New(oracle Oracle, opts ...Option) *Allocator {
	a := &Allocator{oracle: oracle, maxSuffix: DefaultMaxSuffix}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate normalizes displayName and returns the first of base, base-1,
// base-2, ... that the oracle reports free for kind. Pass uuid.Nil as
// excludeID when creating; pass the record's own ID when renaming it.
//
// Probes are strictly sequential and ascending. Nothing is written.
func (a *Allocator) Allocate(ctx context.Context, displayName string, kind Kind, excludeID uuid.UUID) (string, error) {
	base, err := Normalize(displayName)
	if err != nil {
		return "", err
	}

	candidate := base
	queries := 0
	for n := 0; n <= a.maxSuffix; n++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if n > 0 {
			candidate = base + "-" + strconv.Itoa(n)
		}

		if a.reserved[kind][candidate] {
			continue
		}
		queries++
		taken, err := a.oracle.Exists(ctx, kind, candidate, excludeID)
		if err != nil {
			return "", fmt.Errorf("%w: %s %q: %w", ErrOracleUnavailable, kind, candidate, err)
		}
		if !taken {
			if a.onAlloc != nil {
				a.onAlloc(kind, queries)
			}
			return candidate, nil
		}
	}
	return "", fmt.Errorf("%w: %s %q (max suffix %d)", ErrSuffixExhausted, kind, base, a.maxSuffix)
}
