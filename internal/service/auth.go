package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pkordes/propnest/internal/auth"
	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/mailer"
	"github.com/pkordes/propnest/internal/repo"
	"github.com/pkordes/propnest/internal/tokenstore"
)

// SignupInput is a new account request.
type SignupInput struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

// AuthService implements signup, the login paths and password recovery.
type AuthService struct {
	users       repo.UserRepo
	issuer      TokenIssuer
	tokens      TokenStore
	mail        mailer.Sender
	frontendURL string
}

// NewAuthService constructs an AuthService. frontendURL is the base of the
// links sent in password reset mail.
func NewAuthService(users repo.UserRepo, issuer TokenIssuer, tokens TokenStore, mail mailer.Sender, frontendURL string) *AuthService {
	return &AuthService{users: users, issuer: issuer, tokens: tokens, mail: mail, frontendURL: frontendURL}
}

// Signup creates an account and logs it in.
func (s *AuthService) Signup(ctx context.Context, in SignupInput) (domain.AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" {
		return domain.AuthResult{}, fmt.Errorf("%w: name and email are required", domain.ErrValidation)
	}
	if err := validatePassword(in.Password); err != nil {
		return domain.AuthResult{}, err
	}
	phone, err := normalizePhone(in.Phone)
	if err != nil {
		return domain.AuthResult{}, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("service.AuthService.Signup: %w", err)
	}
	u, err := s.users.Create(ctx, domain.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        phone,
		PasswordHash: hash,
		Role:         domain.RoleUser,
	})
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("service.AuthService.Signup: %w", err)
	}
	return s.issue(u)
}

// Login checks an email and password pair. Unknown emails and wrong
// passwords fail the same way.
func (s *AuthService) Login(ctx context.Context, email, password string) (domain.AuthResult, error) {
	u, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, domain.ErrNotFound) {
		return domain.AuthResult{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("service.AuthService.Login: %w", err)
	}
	if !auth.CheckPassword(u.PasswordHash, password) {
		return domain.AuthResult{}, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}
	return s.issue(u)
}

// SendOTP mails a one-time login code to a registered address.
func (s *AuthService) SendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		return fmt.Errorf("service.AuthService.SendOTP: %w", err)
	}
	code, err := tokenstore.GenerateOTP()
	if err != nil {
		return fmt.Errorf("service.AuthService.SendOTP: %w", err)
	}
	if err := s.tokens.SaveOTP(ctx, email, code); err != nil {
		return fmt.Errorf("service.AuthService.SendOTP: %w", err)
	}
	// The code is useless unless it arrives, so a send failure is returned.
	if err := s.mail.Send(ctx, mailer.OTPMessage(email, code)); err != nil {
		return fmt.Errorf("service.AuthService.SendOTP: send: %w", err)
	}
	return nil
}

// VerifyOTP exchanges a valid login code for a token.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (domain.AuthResult, error) {
	email = normalizeEmail(email)
	if err := s.tokens.VerifyOTP(ctx, email, strings.TrimSpace(code)); err != nil {
		return domain.AuthResult{}, otpError(err)
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("service.AuthService.VerifyOTP: %w", err)
	}
	return s.issue(u)
}

// ForgotPassword mails a reset link when the address is registered.
// Unknown addresses succeed silently.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	u, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		slog.InfoContext(ctx, "password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("service.AuthService.ForgotPassword: %w", err)
	}

	token, err := tokenstore.GenerateResetToken()
	if err != nil {
		return fmt.Errorf("service.AuthService.ForgotPassword: %w", err)
	}
	if err := s.tokens.SaveResetToken(ctx, token, u.ID); err != nil {
		return fmt.Errorf("service.AuthService.ForgotPassword: %w", err)
	}
	link := mailer.ResetLink(s.frontendURL, token, u.Email)
	if err := s.mail.Send(ctx, mailer.PasswordResetMessage(u.Email, u.Name, link)); err != nil {
		return fmt.Errorf("service.AuthService.ForgotPassword: send: %w", err)
	}
	return nil
}

// ResetPassword sets a new password using a reset token. The token is
// single-use. Newsletter-only accounts become full accounts.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) (domain.AuthResult, error) {
	if err := validatePassword(password); err != nil {
		return domain.AuthResult{}, err
	}
	userID, err := s.tokens.ConsumeResetToken(ctx, strings.TrimSpace(token))
	if errors.Is(err, tokenstore.ErrNotFound) {
		return domain.AuthResult{}, fmt.Errorf("%w: reset link is invalid or expired", domain.ErrUnauthorized)
	}
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("service.AuthService.ResetPassword: %w", err)
	}

	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("service.AuthService.ResetPassword: %w", err)
	}
	u.PasswordHash, err = auth.HashPassword(password)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("service.AuthService.ResetPassword: %w", err)
	}
	u.NewsletterOnly = false
	u, err = s.users.Update(ctx, u)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("service.AuthService.ResetPassword: %w", err)
	}
	return s.issue(u)
}

func (s *AuthService) issue(u domain.User) (domain.AuthResult, error) {
	token, err := s.issuer.Issue(u)
	if err != nil {
		return domain.AuthResult{}, fmt.Errorf("service.AuthService: issue token: %w", err)
	}
	return domain.AuthResult{Token: token, User: u}, nil
}

func otpError(err error) error {
	switch {
	case errors.Is(err, tokenstore.ErrTooManyAttempts):
		return fmt.Errorf("%w: too many attempts, request a new code", domain.ErrUnauthorized)
	case errors.Is(err, tokenstore.ErrMismatch), errors.Is(err, tokenstore.ErrNotFound):
		return fmt.Errorf("%w: invalid or expired code", domain.ErrUnauthorized)
	}
	return fmt.Errorf("service.AuthService.VerifyOTP: %w", err)
}

func validatePassword(pw string) error {
	if len(pw) < auth.MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, auth.MinPasswordLength)
	}
	return nil
}

// normalizePhone strips spaces, dashes, parentheses and a leading plus,
// then requires 10 to 15 digits. An empty phone is allowed.
func normalizePhone(raw string) (string, error) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '+':
		default:
			return "", fmt.Errorf("%w: phone must contain only digits", domain.ErrValidation)
		}
	}
	digits := b.String()
	if digits != "" && (len(digits) < 10 || len(digits) > 15) {
		return "", fmt.Errorf("%w: phone must have 10 to 15 digits", domain.ErrValidation)
	}
	return digits, nil
}
