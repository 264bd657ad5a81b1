package repo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/pkordes/propnest/internal/domain"
)

// FavoriteRepo defines the persistence operations for a user's saved properties.
type FavoriteRepo interface {
	// Toggle adds the property to the user's favorites, or removes it if it
	// is already there. added reports which happened.
	// Returns domain.ErrNotFound if the user or property does not exist.
	Toggle(ctx context.Context, userID, propertyID uuid.UUID) (added bool, err error)

	// List returns the user's favorite properties, most recently saved first.
	List(ctx context.Context, userID uuid.UUID) ([]domain.Property, error)

	// Clear removes every favorite of the user. Idempotent.
	Clear(ctx context.Context, userID uuid.UUID) error
}

type pgFavoriteRepo struct {
	db db
}

// NewFavoriteRepo constructs a FavoriteRepo backed by the provided db connection.
func NewFavoriteRepo(db db) FavoriteRepo {
	return &pgFavoriteRepo{db: db}
}

// Toggle deletes the pair first; only when nothing was deleted is it inserted.
func (r *pgFavoriteRepo) Toggle(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	args := pgx.NamedArgs{"user_id": userID, "property_id": propertyID}

	tag, err := r.db.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = @user_id AND property_id = @property_id`, args)
	if err != nil {
		return false, fmt.Errorf("repo.FavoriteRepo.Toggle: delete: %w", err)
	}
	if tag.RowsAffected() > 0 {
		return false, nil
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO favorites (user_id, property_id)
		VALUES (@user_id, @property_id)
		ON CONFLICT DO NOTHING`, args)
	if err != nil {
		if isForeignKeyViolation(err) {
			return false, fmt.Errorf("repo.FavoriteRepo.Toggle: %w", domain.ErrNotFound)
		}
		return false, fmt.Errorf("repo.FavoriteRepo.Toggle: insert: %w", err)
	}
	return true, nil
}

func (r *pgFavoriteRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.Property, error) {
	q := `SELECT` + qualifiedPropertyColumns("p") + `
		FROM favorites f
		JOIN properties p ON p.id = f.property_id
		WHERE f.user_id = @user_id
		ORDER BY f.created_at DESC, p.id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.FavoriteRepo.List: %w", err)
	}
	props, err := collectRows(rows, scanProperty)
	if err != nil {
		return nil, fmt.Errorf("repo.FavoriteRepo.List: scan: %w", err)
	}
	return props, nil
}

func (r *pgFavoriteRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM favorites WHERE user_id = @user_id`,
		pgx.NamedArgs{"user_id": userID}); err != nil {
		return fmt.Errorf("repo.FavoriteRepo.Clear: %w", err)
	}
	return nil
}
