package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/slug"
)

// PropertyRepo defines the persistence operations for Properties.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a mock.
type PropertyRepo interface {
	// Create inserts a new property and returns the persisted record.
	// Returns slug.ErrTaken if another property already holds the slug.
	Create(ctx context.Context, p domain.Property) (domain.Property, error)

	// GetByID retrieves a single property by its UUID primary key.
	// Returns domain.ErrNotFound if no property with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error)

	// GetBySlug retrieves a single property by slug.
	// Returns domain.ErrNotFound if no property has that slug.
	GetBySlug(ctx context.Context, slug string) (domain.Property, error)

	// ListPaged returns one page of properties matching f, newest first,
	// and the total number of matches.
	ListPaged(ctx context.Context, f domain.PropertyFilter, p domain.PaginationParams) ([]domain.Property, int64, error)

	// ListByIDs returns the properties with the given IDs in the order given.
	// Unknown IDs are skipped.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Property, error)

	// ListRelated returns up to limit other properties in city.
	ListRelated(ctx context.Context, id uuid.UUID, city string, limit int) ([]domain.Property, error)

	// Nearby returns geocoded properties within radiusKM of point, nearest first.
	Nearby(ctx context.Context, point domain.GeoPoint, radiusKM float64, limit int) ([]domain.NearbyProperty, error)

	// Update overwrites the mutable fields of a property and returns the
	// updated record. Returns domain.ErrNotFound if it does not exist and
	// slug.ErrTaken if the new slug is held by another property.
	Update(ctx context.Context, p domain.Property) (domain.Property, error)

	// Delete removes a property and returns the deleted row so the caller
	// can clean up its images. Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) (domain.Property, error)
}

// pgPropertyRepo is the Postgres implementation of PropertyRepo.
type pgPropertyRepo struct {
	db db
}

// NewPropertyRepo constructs a PropertyRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPropertyRepo(db db) PropertyRepo {
	return &pgPropertyRepo{db: db}
}

const propertyColumns = `
	id, slug, title, description, property_type, transaction_type, status,
	bhk_type, furnishing, bedrooms, bathrooms, super_builtup_area, developer,
	project, rera_id, price, address, city, latitude, longitude, images,
	active_status, created_at, updated_at`

// qualifiedPropertyColumns prefixes every property column with alias for joins.
func qualifiedPropertyColumns(alias string) string {
	cols := strings.Split(propertyColumns, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return " " + strings.Join(cols, ", ")
}

// imageRow is the JSONB shape of one element of properties.images.
type imageRow struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

func propertyArgs(p domain.Property) pgx.NamedArgs {
	var lat, lng *float64
	if p.Location != nil {
		lat, lng = &p.Location.Lat, &p.Location.Lng
	}
	images := make([]imageRow, len(p.Images))
	for i, img := range p.Images {
		images[i] = imageRow{URL: img.URL, Key: img.Key}
	}
	status := p.ActiveStatus
	if status == "" {
		status = domain.ActiveStatusDraft
	}
	return pgx.NamedArgs{
		"id":                 p.ID,
		"slug":               p.Slug,
		"title":              p.Title,
		"description":        p.Description,
		"property_type":      p.PropertyType,
		"transaction_type":   p.TransactionType,
		"status":             p.Status,
		"bhk_type":           p.BHKType,
		"furnishing":         p.Furnishing,
		"bedrooms":           p.Bedrooms,
		"bathrooms":          p.Bathrooms,
		"super_builtup_area": p.SuperBuiltupArea,
		"developer":          p.Developer,
		"project":            p.Project,
		"rera_id":            p.ReraID,
		"price":              p.Price,
		"address":            p.Address,
		"city":               p.City,
		"latitude":           lat,
		"longitude":          lng,
		"images":             images,
		"active_status":      string(status),
	}
}

// Create inserts a new property row and returns the full persisted record.
func (r *pgPropertyRepo) Create(ctx context.Context, p domain.Property) (domain.Property, error) {
	q := `
		INSERT INTO properties (
			slug, title, description, property_type, transaction_type, status,
			bhk_type, furnishing, bedrooms, bathrooms, super_builtup_area, developer,
			project, rera_id, price, address, city, latitude, longitude, images,
			active_status)
		VALUES (
			@slug, @title, @description, @property_type, @transaction_type, @status,
			@bhk_type, @furnishing, @bedrooms, @bathrooms, @super_builtup_area, @developer,
			@project, @rera_id, @price, @address, @city, @latitude, @longitude, @images,
			@active_status)
		RETURNING` + propertyColumns

	result, err := scanProperty(r.db.QueryRow(ctx, q, propertyArgs(p)))
	if err != nil {
		if isUniqueViolation(err, "properties_slug_key") {
			return domain.Property{}, fmt.Errorf("repo.PropertyRepo.Create: %w", slug.ErrTaken)
		}
		return domain.Property{}, fmt.Errorf("repo.PropertyRepo.Create: %w", err)
	}
	return result, nil
}

// GetByID retrieves a property by primary key.
func (r *pgPropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	q := `SELECT` + propertyColumns + ` FROM properties WHERE id = @id`

	result, err := scanProperty(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Property{}, fmt.Errorf("repo.PropertyRepo.GetByID: %w", err)
	}
	return result, nil
}

// GetBySlug retrieves a property by its slug.
func (r *pgPropertyRepo) GetBySlug(ctx context.Context, s string) (domain.Property, error) {
	q := `SELECT` + propertyColumns + ` FROM properties WHERE slug = @slug`

	result, err := scanProperty(r.db.QueryRow(ctx, q, pgx.NamedArgs{"slug": s}))
	if err != nil {
		return domain.Property{}, fmt.Errorf("repo.PropertyRepo.GetBySlug: %w", err)
	}
	return result, nil
}

// propertyWhere builds the WHERE clause and arguments for a filter.
// Every clause is parameterized; only fixed SQL fragments are concatenated.
func propertyWhere(f domain.PropertyFilter) (string, pgx.NamedArgs) {
	clauses := []string{"TRUE"}
	args := pgx.NamedArgs{}

	eq := func(column, value string) {
		if value != "" {
			clauses = append(clauses, column+" = @"+column)
			args[column] = value
		}
	}

	if f.Search != "" {
		clauses = append(clauses, `title ILIKE '%' || @search || '%'`)
		args["search"] = likeEscaper.Replace(f.Search)
	}
	eq("city", f.City)
	eq("property_type", f.PropertyType)
	eq("bhk_type", f.BHKType)
	eq("furnishing", f.Furnishing)
	eq("status", f.Status)
	eq("transaction_type", f.TransactionType)
	if f.PriceMin != nil {
		clauses = append(clauses, "price >= @price_min")
		args["price_min"] = *f.PriceMin
	}
	if f.PriceMax != nil {
		clauses = append(clauses, "price <= @price_max")
		args["price_max"] = *f.PriceMax
	}
	return strings.Join(clauses, " AND "), args
}

// ListPaged returns one page of matching properties and the total count.
func (r *pgPropertyRepo) ListPaged(ctx context.Context, f domain.PropertyFilter, p domain.PaginationParams) ([]domain.Property, int64, error) {
	where, args := propertyWhere(f)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM properties WHERE `+where, args).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.PropertyRepo.ListPaged: count: %w", err)
	}

	args["limit"] = p.Limit
	args["offset"] = p.Offset()
	q := `SELECT` + propertyColumns + `
		FROM properties
		WHERE ` + where + `
		ORDER BY created_at DESC, id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.PropertyRepo.ListPaged: %w", err)
	}
	props, err := collectRows(rows, scanProperty)
	if err != nil {
		return nil, 0, fmt.Errorf("repo.PropertyRepo.ListPaged: scan: %w", err)
	}
	return props, total, nil
}

// ListByIDs returns properties in the order of ids.
func (r *pgPropertyRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Property, error) {
	q := `SELECT` + propertyColumns + `
		FROM properties
		WHERE id = ANY(@ids::uuid[])
		ORDER BY array_position(@ids::uuid[], id)`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("repo.PropertyRepo.ListByIDs: %w", err)
	}
	props, err := collectRows(rows, scanProperty)
	if err != nil {
		return nil, fmt.Errorf("repo.PropertyRepo.ListByIDs: scan: %w", err)
	}
	return props, nil
}

// ListRelated returns other properties in the same city, newest first.
func (r *pgPropertyRepo) ListRelated(ctx context.Context, id uuid.UUID, city string, limit int) ([]domain.Property, error) {
	q := `SELECT` + propertyColumns + `
		FROM properties
		WHERE city = @city AND id <> @id
		ORDER BY created_at DESC
		LIMIT @limit`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"id": id, "city": city, "limit": limit})
	if err != nil {
		return nil, fmt.Errorf("repo.PropertyRepo.ListRelated: %w", err)
	}
	props, err := collectRows(rows, scanProperty)
	if err != nil {
		return nil, fmt.Errorf("repo.PropertyRepo.ListRelated: scan: %w", err)
	}
	return props, nil
}

// Nearby ranks geocoded properties by great-circle (haversine) distance.
// The bounding-box predicate lets the location index discard far rows
// before the trigonometry runs.
func (r *pgPropertyRepo) Nearby(ctx context.Context, point domain.GeoPoint, radiusKM float64, limit int) ([]domain.NearbyProperty, error) {
	const earthRadiusKM = 6371.0
	const kmPerDegree = 111.32

	q := `
		SELECT` + propertyColumns + `, distance_km
		FROM (
			SELECT *,
				@earth_radius * 2 * asin(sqrt(
					power(sin(radians(latitude - @lat) / 2), 2) +
					cos(radians(@lat)) * cos(radians(latitude)) *
					power(sin(radians(longitude - @lng) / 2), 2)
				)) AS distance_km
			FROM properties
			WHERE latitude IS NOT NULL
			  AND latitude BETWEEN @lat - @dlat AND @lat + @dlat
		) ranked
		WHERE distance_km <= @radius
		ORDER BY distance_km
		LIMIT @limit`

	args := pgx.NamedArgs{
		"earth_radius": earthRadiusKM,
		"lat":          point.Lat,
		"lng":          point.Lng,
		"dlat":         radiusKM / kmPerDegree,
		"radius":       radiusKM,
		"limit":        limit,
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.PropertyRepo.Nearby: %w", err)
	}
	out, err := collectRows(rows, func(s scanner) (domain.NearbyProperty, error) {
		var dist float64
		p, err := scanPropertyWith(s, &dist)
		return domain.NearbyProperty{Property: p, DistanceKM: dist}, err
	})
	if err != nil {
		return nil, fmt.Errorf("repo.PropertyRepo.Nearby: scan: %w", err)
	}
	return out, nil
}

// Update overwrites the mutable fields of a property and returns the updated record.
func (r *pgPropertyRepo) Update(ctx context.Context, p domain.Property) (domain.Property, error) {
	q := `
		UPDATE properties
		SET slug               = @slug,
		    title              = @title,
		    description        = @description,
		    property_type      = @property_type,
		    transaction_type   = @transaction_type,
		    status             = @status,
		    bhk_type           = @bhk_type,
		    furnishing         = @furnishing,
		    bedrooms           = @bedrooms,
		    bathrooms          = @bathrooms,
		    super_builtup_area = @super_builtup_area,
		    developer          = @developer,
		    project            = @project,
		    rera_id            = @rera_id,
		    price              = @price,
		    address            = @address,
		    city               = @city,
		    latitude           = @latitude,
		    longitude          = @longitude,
		    images             = @images,
		    active_status      = @active_status,
		    updated_at         = now()
		WHERE id = @id
		RETURNING` + propertyColumns

	result, err := scanProperty(r.db.QueryRow(ctx, q, propertyArgs(p)))
	if err != nil {
		if isUniqueViolation(err, "properties_slug_key") {
			return domain.Property{}, fmt.Errorf("repo.PropertyRepo.Update: %w", slug.ErrTaken)
		}
		return domain.Property{}, fmt.Errorf("repo.PropertyRepo.Update: %w", err)
	}
	return result, nil
}

// Delete removes a property by primary key and returns the removed row.
func (r *pgPropertyRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	q := `DELETE FROM properties WHERE id = @id RETURNING` + propertyColumns

	result, err := scanProperty(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Property{}, fmt.Errorf("repo.PropertyRepo.Delete: %w", err)
	}
	return result, nil
}

// scanProperty maps a single database row into a domain.Property.
func scanProperty(s scanner) (domain.Property, error) {
	return scanPropertyWith(s)
}

// scanPropertyWith is scanProperty for queries that select extra columns
// after propertyColumns; extra receives them.
func scanPropertyWith(s scanner, extra ...any) (domain.Property, error) {
	var (
		p         domain.Property
		id        pgtype.UUID
		lat, lng  *float64
		images    []imageRow
		activeRaw string
	)

	dest := []any{
		&id, &p.Slug, &p.Title, &p.Description, &p.PropertyType, &p.TransactionType, &p.Status,
		&p.BHKType, &p.Furnishing, &p.Bedrooms, &p.Bathrooms, &p.SuperBuiltupArea, &p.Developer,
		&p.Project, &p.ReraID, &p.Price, &p.Address, &p.City, &lat, &lng, &images,
		&activeRaw, &p.CreatedAt, &p.UpdatedAt,
	}
	if err := s.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Property{}, domain.ErrNotFound
		}
		return domain.Property{}, err
	}

	p.ID = uuid.UUID(id.Bytes)
	p.ActiveStatus = domain.ActiveStatus(activeRaw)
	if lat != nil && lng != nil {
		p.Location = &domain.GeoPoint{Lat: *lat, Lng: *lng}
	}
	p.Images = make([]domain.Image, len(images))
	for i, img := range images {
		p.Images[i] = domain.Image{URL: img.URL, Key: img.Key}
	}
	return p, nil
}
