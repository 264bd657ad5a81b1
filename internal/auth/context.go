package auth

import (
	"context"

	"github.com/pkordes/propnest/internal/domain"
)

type principalKey struct{}

type slotKey struct{}

// slot lets middleware that ran before authentication read the principal
// once the request returns.
type slot struct {
	p  domain.Principal
	ok bool
}

// WithPrincipalSlot returns a copy of ctx in which a later WithPrincipal is
// also visible through ctx itself.
func WithPrincipalSlot(ctx context.Context) context.Context {
	return context.WithValue(ctx, slotKey{}, &slot{})
}

// WithPrincipal returns a copy of ctx carrying p.
func WithPrincipal(ctx context.Context, p domain.Principal) context.Context {
	if s, ok := ctx.Value(slotKey{}).(*slot); ok {
		s.p, s.ok = p, true
	}
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, if any.
func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	if p, ok := ctx.Value(principalKey{}).(domain.Principal); ok {
		return p, true
	}
	if s, ok := ctx.Value(slotKey{}).(*slot); ok && s.ok {
		return s.p, true
	}
	return domain.Principal{}, false
}
