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

// QuoteRepo defines the persistence operations for quote requests.
type QuoteRepo interface {
	// Create stores a quote. Returns domain.ErrNotFound if PropertyID is set
	// but no such property exists.
	Create(ctx context.Context, q domain.Quote) (domain.Quote, error)

	// GetByID returns domain.ErrNotFound if the quote does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Quote, error)

	// List returns every quote, newest first.
	List(ctx context.Context) ([]domain.Quote, error)

	// ListByUser returns the quotes sent by a user, newest first.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Quote, error)

	// Delete returns domain.ErrNotFound if the quote does not exist.
	Delete(ctx context.Context, id uuid.UUID) error
}

// ContactRepo defines the persistence operations for contact enquiries.
type ContactRepo interface {
	Create(ctx context.Context, c domain.Contact) (domain.Contact, error)
	List(ctx context.Context) ([]domain.Contact, error)
}

type pgQuoteRepo struct {
	db db
}

// NewQuoteRepo constructs a QuoteRepo backed by the provided db connection.
func NewQuoteRepo(db db) QuoteRepo {
	return &pgQuoteRepo{db: db}
}

const quoteColumns = `id, property_id, user_id, name, email, contact_number, message, created_at`

func (r *pgQuoteRepo) Create(ctx context.Context, in domain.Quote) (domain.Quote, error) {
	const q = `
		INSERT INTO quotes (property_id, user_id, name, email, contact_number, message)
		VALUES (@property_id, @user_id, @name, @email, @contact_number, @message)
		RETURNING ` + quoteColumns

	args := pgx.NamedArgs{
		"property_id":    in.PropertyID,
		"user_id":        in.UserID,
		"name":           in.Name,
		"email":          in.Email,
		"contact_number": in.ContactNumber,
		"message":        in.Message,
	}
	result, err := scanQuote(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Quote{}, fmt.Errorf("repo.QuoteRepo.Create: %w", domain.ErrNotFound)
		}
		return domain.Quote{}, fmt.Errorf("repo.QuoteRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgQuoteRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Quote, error) {
	const q = `SELECT ` + quoteColumns + ` FROM quotes WHERE id = @id`

	result, err := scanQuote(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Quote{}, fmt.Errorf("repo.QuoteRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgQuoteRepo) List(ctx context.Context) ([]domain.Quote, error) {
	const q = `SELECT ` + quoteColumns + ` FROM quotes ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.QuoteRepo.List: %w", err)
	}
	quotes, err := collectRows(rows, scanQuote)
	if err != nil {
		return nil, fmt.Errorf("repo.QuoteRepo.List: scan: %w", err)
	}
	return quotes, nil
}

func (r *pgQuoteRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Quote, error) {
	const q = `
		SELECT ` + quoteColumns + `
		FROM quotes
		WHERE user_id = @user_id
		ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.QuoteRepo.ListByUser: %w", err)
	}
	quotes, err := collectRows(rows, scanQuote)
	if err != nil {
		return nil, fmt.Errorf("repo.QuoteRepo.ListByUser: scan: %w", err)
	}
	return quotes, nil
}

func (r *pgQuoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM quotes WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.QuoteRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.QuoteRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanQuote(s scanner) (domain.Quote, error) {
	var (
		q                  domain.Quote
		id                 pgtype.UUID
		propertyID, userID pgtype.UUID
	)
	err := s.Scan(&id, &propertyID, &userID, &q.Name, &q.Email, &q.ContactNumber, &q.Message, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Quote{}, domain.ErrNotFound
		}
		return domain.Quote{}, err
	}
	q.ID = uuid.UUID(id.Bytes)
	q.PropertyID = optionalUUID(propertyID)
	q.UserID = optionalUUID(userID)
	return q, nil
}

// optionalUUID converts a nullable column to a *uuid.UUID.
func optionalUUID(v pgtype.UUID) *uuid.UUID {
	if !v.Valid {
		return nil
	}
	id := uuid.UUID(v.Bytes)
	return &id
}

type pgContactRepo struct {
	db db
}

// NewContactRepo constructs a ContactRepo backed by the provided db connection.
func NewContactRepo(db db) ContactRepo {
	return &pgContactRepo{db: db}
}

const contactColumns = `id, name, email, phone, budget, message, created_at`

func (r *pgContactRepo) Create(ctx context.Context, in domain.Contact) (domain.Contact, error) {
	const q = `
		INSERT INTO contacts (name, email, phone, budget, message)
		VALUES (@name, @email, @phone, @budget, @message)
		RETURNING ` + contactColumns

	args := pgx.NamedArgs{
		"name":    in.Name,
		"email":   in.Email,
		"phone":   in.Phone,
		"budget":  in.Budget,
		"message": in.Message,
	}
	result, err := scanContact(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Contact{}, fmt.Errorf("repo.ContactRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgContactRepo) List(ctx context.Context) ([]domain.Contact, error) {
	const q = `SELECT ` + contactColumns + ` FROM contacts ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("repo.ContactRepo.List: %w", err)
	}
	contacts, err := collectRows(rows, scanContact)
	if err != nil {
		return nil, fmt.Errorf("repo.ContactRepo.List: scan: %w", err)
	}
	return contacts, nil
}

func scanContact(s scanner) (domain.Contact, error) {
	var (
		c  domain.Contact
		id pgtype.UUID
	)
	if err := s.Scan(&id, &c.Name, &c.Email, &c.Phone, &c.Budget, &c.Message, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Contact{}, domain.ErrNotFound
		}
		return domain.Contact{}, err
	}
	c.ID = uuid.UUID(id.Bytes)
	return c, nil
}
