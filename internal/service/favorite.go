package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/repo"
)

// FavoriteService manages a user's saved properties.
type FavoriteService struct {
	repo repo.FavoriteRepo
}

// NewFavoriteService constructs a FavoriteService.
func NewFavoriteService(r repo.FavoriteRepo) *FavoriteService {
	return &FavoriteService{repo: r}
}

// List returns the user's favorites.
func (s *FavoriteService) List(ctx context.Context, userID uuid.UUID) ([]domain.Property, error) {
	props, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.FavoriteService.List: %w", err)
	}
	return props, nil
}

// Toggle saves or unsaves a property and returns the updated list.
func (s *FavoriteService) Toggle(ctx context.Context, userID, propertyID uuid.UUID) ([]domain.Property, error) {
	if propertyID == uuid.Nil {
		return nil, fmt.Errorf("%w: property_id is required", domain.ErrValidation)
	}
	if _, err := s.repo.Toggle(ctx, userID, propertyID); err != nil {
		return nil, fmt.Errorf("service.FavoriteService.Toggle: %w", err)
	}
	return s.List(ctx, userID)
}

// Clear removes every favorite of the user.
func (s *FavoriteService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.Clear(ctx, userID); err != nil {
		return fmt.Errorf("service.FavoriteService.Clear: %w", err)
	}
	return nil
}
