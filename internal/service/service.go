// Package service contains the business logic for the PropNest API.
// Services validate inputs, enforce business rules, and orchestrate repo calls.
// No SQL lives here; services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/mailer"
)

// Geocoder resolves address parts to a coordinate.
type Geocoder interface {
	Geocode(ctx context.Context, parts ...string) (domain.GeoPoint, error)
}

// TokenIssuer mints access tokens for a user.
type TokenIssuer interface {
	Issue(u domain.User) (string, error)
}

// TokenStore keeps login codes and password reset tokens.
type TokenStore interface {
	SaveOTP(ctx context.Context, email, code string) error
	VerifyOTP(ctx context.Context, email, code string) error
	SaveResetToken(ctx context.Context, token string, userID uuid.UUID) error
	ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error)
}

// notifyTimeout bounds a single best-effort notification.
const notifyTimeout = 10 * time.Second

// notify sends msg and logs, rather than returns, any failure. It runs
// detached from ctx cancellation so a client hanging up does not drop mail.
func notify(ctx context.Context, sender mailer.Sender, msg mailer.Message) {
	if sender == nil || len(msg.To) == 0 || msg.To[0] == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
	defer cancel()
	if err := sender.Send(ctx, msg); err != nil {
		slog.WarnContext(ctx, "notification not sent", "to", msg.To, "subject", msg.Subject, "error", err)
	}
}

// normalizeEmail lowercases and trims an address.
func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
