package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/propnest/internal/domain"
)

// UserRepo defines the persistence operations for user accounts.
type UserRepo interface {
	// Create inserts a user. Returns domain.ErrConflict if the email is taken.
	Create(ctx context.Context, u domain.User) (domain.User, error)

	// GetByID returns domain.ErrNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)

	// GetByEmail matches case-insensitively.
	// Returns domain.ErrNotFound if no user has the email.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// List returns every user, newest first.
	List(ctx context.Context) ([]domain.User, error)

	// Update overwrites the mutable fields of a user.
	// Returns domain.ErrConflict if the new email is taken.
	Update(ctx context.Context, u domain.User) (domain.User, error)
}

type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

const userColumns = `
	id, name, email, phone, password_hash, role, newsletter, newsletter_only,
	created_at, updated_at`

func userArgs(u domain.User) pgx.NamedArgs {
	role := u.Role
	if role == "" {
		role = domain.RoleUser
	}
	return pgx.NamedArgs{
		"id":              u.ID,
		"name":            u.Name,
		"email":           u.Email,
		"phone":           u.Phone,
		"password_hash":   u.PasswordHash,
		"role":            string(role),
		"newsletter":      u.Newsletter,
		"newsletter_only": u.NewsletterOnly,
	}
}

func (r *pgUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	q := `
		INSERT INTO users (name, email, phone, password_hash, role, newsletter, newsletter_only)
		VALUES (@name, @email, @phone, @password_hash, @role, @newsletter, @newsletter_only)
		RETURNING` + userColumns

	result, err := scanUser(r.db.QueryRow(ctx, q, userArgs(u)))
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w: email already registered", domain.ErrConflict)
		}
		return domain.User{}, fmt.Errorf("repo.UserRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	q := `SELECT` + userColumns + ` FROM users WHERE id = @id`

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	q := `SELECT` + userColumns + ` FROM users WHERE lower(email) = lower(@email)`

	result, err := scanUser(r.db.QueryRow(ctx, q, pgx.NamedArgs{"email": email}))
	if err != nil {
		return domain.User{}, fmt.Errorf("repo.UserRepo.GetByEmail: %w", err)
	}
	return result, nil
}

func (r *pgUserRepo) List(ctx context.Context) ([]domain.User, error) {
	q := `SELECT` + userColumns + ` FROM users ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.List: %w", err)
	}
	users, err := collectRows(rows, scanUser)
	if err != nil {
		return nil, fmt.Errorf("repo.UserRepo.List: scan: %w", err)
	}
	return users, nil
}

func (r *pgUserRepo) Update(ctx context.Context, u domain.User) (domain.User, error) {
	q := `
		UPDATE users
		SET name            = @name,
		    email           = @email,
		    phone           = @phone,
		    password_hash   = @password_hash,
		    role            = @role,
		    newsletter      = @newsletter,
		    newsletter_only = @newsletter_only,
		    updated_at      = now()
		WHERE id = @id
		RETURNING` + userColumns

	result, err := scanUser(r.db.QueryRow(ctx, q, userArgs(u)))
	if err != nil {
		if isUniqueViolation(err, "users_email_key") {
			return domain.User{}, fmt.Errorf("repo.UserRepo.Update: %w: email already registered", domain.ErrConflict)
		}
		return domain.User{}, fmt.Errorf("repo.UserRepo.Update: %w", err)
	}
	return result, nil
}

func scanUser(s scanner) (domain.User, error) {
	var (
		u    domain.User
		id   pgtype.UUID
		role string
	)
	err := s.Scan(&id, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &role,
		&u.Newsletter, &u.NewsletterOnly, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrNotFound
		}
		return domain.User{}, err
	}
	u.ID = uuid.UUID(id.Bytes)
	u.Role = domain.Role(role)
	return u, nil
}
