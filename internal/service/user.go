package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/propnest/internal/auth"
	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/mailer"
	"github.com/pkordes/propnest/internal/repo"
)

// UserService implements profile management and newsletter signups.
type UserService struct {
	users repo.UserRepo
	mail  mailer.Sender
}

// NewUserService constructs a UserService.
func NewUserService(users repo.UserRepo, mail mailer.Sender) *UserService {
	return &UserService{users: users, mail: mail}
}

// Me returns the caller's account.
func (s *UserService) Me(ctx context.Context, id uuid.UUID) (domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.Me: %w", err)
	}
	return u, nil
}

// UpdateProfile applies dashboard edits. Changing the password requires the
// current one.
func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, upd domain.ProfileUpdate) (domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.UpdateProfile: %w", err)
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return domain.User{}, fmt.Errorf("%w: name must not be empty", domain.ErrValidation)
		}
		u.Name = name
	}
	if upd.Email != nil {
		email := normalizeEmail(*upd.Email)
		if email == "" {
			return domain.User{}, fmt.Errorf("%w: email must not be empty", domain.ErrValidation)
		}
		u.Email = email
	}
	if upd.Phone != nil {
		if u.Phone, err = normalizePhone(*upd.Phone); err != nil {
			return domain.User{}, err
		}
	}
	if upd.NewPassword != "" {
		if upd.CurrentPassword == "" {
			return domain.User{}, fmt.Errorf("%w: current_password is required to change the password", domain.ErrValidation)
		}
		if !auth.CheckPassword(u.PasswordHash, upd.CurrentPassword) {
			return domain.User{}, fmt.Errorf("%w: current password is incorrect", domain.ErrUnauthorized)
		}
		if err := validatePassword(upd.NewPassword); err != nil {
			return domain.User{}, err
		}
		if u.PasswordHash, err = auth.HashPassword(upd.NewPassword); err != nil {
			return domain.User{}, fmt.Errorf("service.UserService.UpdateProfile: %w", err)
		}
	}

	updated, err := s.users.Update(ctx, u)
	if err != nil {
		return domain.User{}, fmt.Errorf("service.UserService.UpdateProfile: %w", err)
	}
	return updated, nil
}

// List returns every account.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.UserService.List: %w", err)
	}
	return users, nil
}

// Subscribe opts an address into the newsletter. Unknown addresses get a
// newsletter-only account with an unusable password. Subscribing twice is
// not an error.
func (s *UserService) Subscribe(ctx context.Context, email, name string) (domain.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return domain.User{}, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	u, err := s.users.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if u.Newsletter {
			return u, nil
		}
		u.Newsletter = true
		if u, err = s.users.Update(ctx, u); err != nil {
			return domain.User{}, fmt.Errorf("service.UserService.Subscribe: %w", err)
		}
	case errors.Is(err, domain.ErrNotFound):
		hash, err := auth.UnusablePasswordHash()
		if err != nil {
			return domain.User{}, fmt.Errorf("service.UserService.Subscribe: %w", err)
		}
		u, err = s.users.Create(ctx, domain.User{
			Name:           strings.TrimSpace(name),
			Email:          email,
			PasswordHash:   hash,
			Role:           domain.RoleUser,
			Newsletter:     true,
			NewsletterOnly: true,
		})
		if err != nil {
			return domain.User{}, fmt.Errorf("service.UserService.Subscribe: %w", err)
		}
	default:
		return domain.User{}, fmt.Errorf("service.UserService.Subscribe: %w", err)
	}

	notify(ctx, s.mail, mailer.NewsletterWelcomeMessage(u.Email, u.Name))
	return u, nil
}
