package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/media"
	"github.com/pkordes/propnest/internal/repo"
	"github.com/pkordes/propnest/internal/slug"
)

// Listing query bounds.
const (
	PropertyPageDefault = 9
	PropertyPageMax     = 100
	RelatedLimit        = 3
	CompareMin          = 2
	CompareMax          = 4
	NearbyRadiusDefault = 5.0
	NearbyRadiusMax     = 100.0
	nearbyLimit         = 50
)

// PropertyService implements business logic for property listings.
type PropertyService struct {
	repo     repo.PropertyRepo
	slugs    *slug.Allocator
	images   media.Store // nil when uploads are not configured
	geocoder Geocoder    // nil disables geocoding
}

// NewPropertyService constructs a PropertyService. images and geocoder may be nil.
func NewPropertyService(r repo.PropertyRepo, slugs *slug.Allocator, images media.Store, geocoder Geocoder) *PropertyService {
	return &PropertyService{repo: r, slugs: slugs, images: images, geocoder: geocoder}
}

// Create validates p, stores its images, geocodes it when it has no
// coordinates, allocates a slug from the title and persists it.
func (s *PropertyService) Create(ctx context.Context, p domain.Property, uploads []media.Upload) (domain.Property, error) {
	p.Title = strings.TrimSpace(p.Title)
	if err := validateProperty(p); err != nil {
		return domain.Property{}, err
	}
	if err := s.checkUploads(uploads); err != nil {
		return domain.Property{}, err
	}
	if p.ActiveStatus == "" {
		p.ActiveStatus = domain.ActiveStatusDraft
	}
	if p.Location == nil {
		p.Location = s.locate(ctx, p.Address, p.City)
	}

	images, err := s.upload(ctx, uploads)
	if err != nil {
		return domain.Property{}, fmt.Errorf("service.PropertyService.Create: %w", err)
	}
	p.Images = images

	created, err := slug.Persist(ctx, s.slugs,
		slug.Request{DisplayName: p.Title, Kind: slug.KindProperty},
		slug.DefaultAttempts,
		func(ctx context.Context, sl string) (domain.Property, error) {
			p.Slug = sl
			return s.repo.Create(ctx, p)
		})
	if err != nil {
		media.DeleteAll(ctx, s.images, images)
		return domain.Property{}, fmt.Errorf("service.PropertyService.Create: %w", err)
	}
	return created, nil
}

// GetByID returns a single property.
func (s *PropertyService) GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Property{}, fmt.Errorf("service.PropertyService.GetByID: %w", err)
	}
	return p, nil
}

// GetBySlug returns the property with slug.
func (s *PropertyService) GetBySlug(ctx context.Context, sl string) (domain.Property, error) {
	if !slug.Valid(sl) {
		return domain.Property{}, fmt.Errorf("service.PropertyService.GetBySlug: %w", domain.ErrNotFound)
	}
	p, err := s.repo.GetBySlug(ctx, sl)
	if err != nil {
		return domain.Property{}, fmt.Errorf("service.PropertyService.GetBySlug: %w", err)
	}
	return p, nil
}

// List returns one page of properties matching f and the total match count.
func (s *PropertyService) List(ctx context.Context, f domain.PropertyFilter, p domain.PaginationParams) ([]domain.Property, int64, error) {
	if f.PriceMin != nil && f.PriceMax != nil && *f.PriceMin > *f.PriceMax {
		return nil, 0, fmt.Errorf("%w: price_min must not exceed price_max", domain.ErrValidation)
	}
	f.Search = strings.TrimSpace(f.Search)
	props, total, err := s.repo.ListPaged(ctx, f, p)
	if err != nil {
		return nil, 0, fmt.Errorf("service.PropertyService.List: %w", err)
	}
	return props, total, nil
}

// Update applies patch to the property. A changed title re-allocates the
// slug, excluding the property itself; a changed address is re-geocoded.
// New uploads are appended after the kept images.
func (s *PropertyService) Update(ctx context.Context, id uuid.UUID, patch domain.PropertyPatch, uploads []media.Upload) (domain.Property, error) {
	if err := s.checkUploads(uploads); err != nil {
		return domain.Property{}, err
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Property{}, fmt.Errorf("service.PropertyService.Update: %w", err)
	}

	next, addressChanged := applyPropertyPatch(current, patch)
	if err := validateProperty(next); err != nil {
		return domain.Property{}, err
	}
	if patch.Location == nil && addressChanged {
		next.Location = s.locate(ctx, next.Address, next.City)
	}

	kept, removed := splitImages(current.Images, patch.RemovedImages)
	added, err := s.upload(ctx, uploads)
	if err != nil {
		return domain.Property{}, fmt.Errorf("service.PropertyService.Update: %w", err)
	}
	next.Images = append(kept, added...)

	var updated domain.Property
	if next.Title != current.Title {
		updated, err = slug.Persist(ctx, s.slugs,
			slug.Request{DisplayName: next.Title, Kind: slug.KindProperty, ExcludeID: id},
			slug.DefaultAttempts,
			func(ctx context.Context, sl string) (domain.Property, error) {
				next.Slug = sl
				return s.repo.Update(ctx, next)
			})
	} else {
		updated, err = s.repo.Update(ctx, next)
	}
	if err != nil {
		media.DeleteAll(ctx, s.images, added)
		return domain.Property{}, fmt.Errorf("service.PropertyService.Update: %w", err)
	}

	media.DeleteAll(ctx, s.images, removed)
	return updated, nil
}

// Duplicate copies a property under the title "<title> (Copy)" with a
// fresh slug and its own copies of the images.
func (s *PropertyService) Duplicate(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	src, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.Property{}, fmt.Errorf("service.PropertyService.Duplicate: %w", err)
	}

	dup := src
	dup.ID = uuid.Nil
	dup.Title = src.Title + " (Copy)"
	dup.Images = nil
	if len(src.Images) > 0 && s.images != nil {
		dup.Images, err = media.CopyAll(ctx, s.images, media.PrefixProperties, src.Images)
		if err != nil {
			return domain.Property{}, fmt.Errorf("service.PropertyService.Duplicate: %w", err)
		}
	}

	created, err := slug.Persist(ctx, s.slugs,
		slug.Request{DisplayName: dup.Title, Kind: slug.KindProperty},
		slug.DefaultAttempts,
		func(ctx context.Context, sl string) (domain.Property, error) {
			dup.Slug = sl
			return s.repo.Create(ctx, dup)
		})
	if err != nil {
		media.DeleteAll(ctx, s.images, dup.Images)
		return domain.Property{}, fmt.Errorf("service.PropertyService.Duplicate: %w", err)
	}
	return created, nil
}

// Delete removes a property and, best-effort, its images.
func (s *PropertyService) Delete(ctx context.Context, id uuid.UUID) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("service.PropertyService.Delete: %w", err)
	}
	media.DeleteAll(ctx, s.images, deleted.Images)
	return nil
}

// Related returns up to RelatedLimit other properties in the same city.
func (s *PropertyService) Related(ctx context.Context, id uuid.UUID) ([]domain.Property, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("service.PropertyService.Related: %w", err)
	}
	if p.City == "" {
		return []domain.Property{}, nil
	}
	related, err := s.repo.ListRelated(ctx, id, p.City, RelatedLimit)
	if err != nil {
		return nil, fmt.Errorf("service.PropertyService.Related: %w", err)
	}
	return related, nil
}

// Compare returns between CompareMin and CompareMax distinct properties.
func (s *PropertyService) Compare(ctx context.Context, ids []uuid.UUID) ([]domain.Property, error) {
	seen := make(map[uuid.UUID]bool, len(ids))
	unique := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	if len(unique) < CompareMin || len(unique) > CompareMax {
		return nil, fmt.Errorf("%w: compare needs %d to %d distinct ids", domain.ErrValidation, CompareMin, CompareMax)
	}

	props, err := s.repo.ListByIDs(ctx, unique)
	if err != nil {
		return nil, fmt.Errorf("service.PropertyService.Compare: %w", err)
	}
	if len(props) != len(unique) {
		return nil, fmt.Errorf("service.PropertyService.Compare: %w", domain.ErrNotFound)
	}
	return props, nil
}

// Nearby returns geocoded properties within radiusKM of point, nearest first.
// A nil radius uses NearbyRadiusDefault.
func (s *PropertyService) Nearby(ctx context.Context, point domain.GeoPoint, radiusKM *float64) ([]domain.NearbyProperty, error) {
	if !point.Valid() {
		return nil, fmt.Errorf("%w: lat must be within [-90,90] and lng within [-180,180]", domain.ErrValidation)
	}
	radius := NearbyRadiusDefault
	if radiusKM != nil {
		radius = *radiusKM
	}
	if radius <= 0 || radius > NearbyRadiusMax {
		return nil, fmt.Errorf("%w: radius_km must be in (0, %g]", domain.ErrValidation, NearbyRadiusMax)
	}
	out, err := s.repo.Nearby(ctx, point, radius, nearbyLimit)
	if err != nil {
		return nil, fmt.Errorf("service.PropertyService.Nearby: %w", err)
	}
	return out, nil
}

func validateProperty(p domain.Property) error {
	if strings.TrimSpace(p.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if p.ActiveStatus != "" && !p.ActiveStatus.Valid() {
		return fmt.Errorf("%w: active_status must be Draft, Published or Archived", domain.ErrValidation)
	}
	if p.Price != nil && *p.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
	}
	if p.Location != nil && !p.Location.Valid() {
		return fmt.Errorf("%w: location is out of range", domain.ErrValidation)
	}
	for _, n := range []*int{p.Bedrooms, p.Bathrooms} {
		if n != nil && *n < 0 {
			return fmt.Errorf("%w: room counts must not be negative", domain.ErrValidation)
		}
	}
	return nil
}

func (s *PropertyService) checkUploads(uploads []media.Upload) error {
	if len(uploads) > media.MaxImagesPerListing {
		return fmt.Errorf("%w: at most %d images per upload", domain.ErrValidation, media.MaxImagesPerListing)
	}
	if len(uploads) > 0 && s.images == nil {
		return fmt.Errorf("%w: image uploads are not configured", domain.ErrValidation)
	}
	return nil
}

func (s *PropertyService) upload(ctx context.Context, uploads []media.Upload) ([]domain.Image, error) {
	if len(uploads) == 0 {
		return []domain.Image{}, nil
	}
	images, err := media.PutAll(ctx, s.images, media.PrefixProperties, uploads)
	if errors.Is(err, media.ErrInvalidType) || errors.Is(err, media.ErrEmpty) {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	return images, err
}

// locate geocodes the address. Failure leaves the listing without a
// location; it is logged, never returned.
func (s *PropertyService) locate(ctx context.Context, address, city string) *domain.GeoPoint {
	if s.geocoder == nil || strings.TrimSpace(address+city) == "" {
		return nil
	}
	pt, err := s.geocoder.Geocode(ctx, address, city)
	if err != nil {
		slog.WarnContext(ctx, "geocoding failed", "address", address, "city", city, "error", err)
		return nil
	}
	return &pt
}

// applyPropertyPatch returns current with every non-nil patch field applied
// and whether the address or city changed.
func applyPropertyPatch(current domain.Property, patch domain.PropertyPatch) (domain.Property, bool) {
	next := current
	setStr := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	setStr(&next.Title, patch.Title)
	setStr(&next.Description, patch.Description)
	setStr(&next.PropertyType, patch.PropertyType)
	setStr(&next.TransactionType, patch.TransactionType)
	setStr(&next.Status, patch.Status)
	setStr(&next.BHKType, patch.BHKType)
	setStr(&next.Furnishing, patch.Furnishing)
	setStr(&next.SuperBuiltupArea, patch.SuperBuiltupArea)
	setStr(&next.Developer, patch.Developer)
	setStr(&next.Project, patch.Project)
	setStr(&next.ReraID, patch.ReraID)
	setStr(&next.Address, patch.Address)
	setStr(&next.City, patch.City)
	if patch.Bedrooms != nil {
		next.Bedrooms = patch.Bedrooms
	}
	if patch.Bathrooms != nil {
		next.Bathrooms = patch.Bathrooms
	}
	if patch.Price != nil {
		next.Price = patch.Price
	}
	if patch.Location != nil {
		next.Location = patch.Location
	}
	if patch.ActiveStatus != nil {
		next.ActiveStatus = *patch.ActiveStatus
	}
	changed := next.Address != current.Address || next.City != current.City
	return next, changed
}

// splitImages partitions images into those kept and those whose URL is in removed.
func splitImages(images []domain.Image, removed []string) (kept, dropped []domain.Image) {
	drop := make(map[string]bool, len(removed))
	for _, u := range removed {
		drop[u] = true
	}
	kept = make([]domain.Image, 0, len(images))
	for _, img := range images {
		if drop[img.URL] {
			dropped = append(dropped, img)
		} else {
			kept = append(kept, img)
		}
	}
	return kept, dropped
}
