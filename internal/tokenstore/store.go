// Package tokenstore keeps short-lived login codes and password reset tokens
// in Redis. Keys expire on their own; nothing needs sweeping.
package tokenstore

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	// OTPTTL is how long a login code stays valid.
	OTPTTL = 10 * time.Minute
	// OTPMaxAttempts is how many wrong guesses burn a code.
	OTPMaxAttempts = 5
	// ResetTTL is how long a password reset token stays valid.
	ResetTTL = time.Hour
)

var (
	// ErrNotFound means there is no live code or token (never issued,
	// already used, or expired).
	ErrNotFound = errors.New("tokenstore: not found or expired")
	// ErrMismatch means the submitted code was wrong.
	ErrMismatch = errors.New("tokenstore: code mismatch")
	// ErrTooManyAttempts means the code was burned by repeated wrong guesses.
	ErrTooManyAttempts = errors.New("tokenstore: too many attempts")
)

// verifyOTPScript checks a code and counts failures atomically.
// KEYS: [1]=otp key. ARGV: [1]=submitted code, [2]=max attempts.
// Returns 1 on match, 0 when missing, -1 on mismatch, -2 when the code is burned.
var verifyOTPScript = goredis.NewScript(`
local code = redis.call('HGET', KEYS[1], 'code')
if not code then
  return 0
end
if code == ARGV[1] then
  redis.call('DEL', KEYS[1])
  return 1
end
local attempts = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
if attempts >= tonumber(ARGV[2]) then
  redis.call('DEL', KEYS[1])
  return -2
end
return -1
`)

// Store is a Redis-backed token store.
type Store struct {
	rdb *goredis.Client
}

// New returns a Store using rdb.
func New(rdb *goredis.Client) *Store {
	return &Store{rdb: rdb}
}

// SaveOTP stores code for email, replacing any earlier code and resetting
// the attempt counter.
func (s *Store) SaveOTP(ctx context.Context, email, code string) error {
	key := otpKey(email)
	_, err := s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key, "code", code, "attempts", 0)
		p.Expire(ctx, key, OTPTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("tokenstore.SaveOTP: %w", err)
	}
	return nil
}

// VerifyOTP consumes the code for email if it matches.
func (s *Store) VerifyOTP(ctx context.Context, email, code string) error {
	res, err := verifyOTPScript.Run(ctx, s.rdb, []string{otpKey(email)}, code, OTPMaxAttempts).Int()
	if err != nil {
		return fmt.Errorf("tokenstore.VerifyOTP: %w", err)
	}
	switch res {
	case 1:
		return nil
	case 0:
		return ErrNotFound
	case -2:
		return ErrTooManyAttempts
	default:
		return ErrMismatch
	}
}

// SaveResetToken records that token may reset userID's password.
// Only a hash of the token is stored.
func (s *Store) SaveResetToken(ctx context.Context, token string, userID uuid.UUID) error {
	if err := s.rdb.Set(ctx, resetKey(token), userID.String(), ResetTTL).Err(); err != nil {
		return fmt.Errorf("tokenstore.SaveResetToken: %w", err)
	}
	return nil
}

// ConsumeResetToken returns the user the token was issued for and deletes
// it, so a token works once.
func (s *Store) ConsumeResetToken(ctx context.Context, token string) (uuid.UUID, error) {
	v, err := s.rdb.GetDel(ctx, resetKey(token)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return uuid.Nil, ErrNotFound
		}
		return uuid.Nil, fmt.Errorf("tokenstore.ConsumeResetToken: %w", err)
	}
	id, err := uuid.Parse(v)
	if err != nil {
		return uuid.Nil, fmt.Errorf("tokenstore.ConsumeResetToken: %w", err)
	}
	return id, nil
}

func otpKey(email string) string {
	return "otp:" + strings.ToLower(strings.TrimSpace(email))
}

func resetKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "reset:" + hex.EncodeToString(sum[:])
}

// GenerateOTP returns a uniformly random 6-digit code.
func GenerateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("tokenstore.GenerateOTP: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// GenerateResetToken returns 32 random bytes, hex encoded.
func GenerateResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("tokenstore.GenerateResetToken: %w", err)
	}
	return hex.EncodeToString(b), nil
}
