// Package domain contains the core data types for the PropNest API.
// This package has no dependencies beyond uuid and is imported by every
// other internal package (repo, service, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ActiveStatus controls whether a listing is visible to the public.
type ActiveStatus string

const (
	ActiveStatusDraft     ActiveStatus = "Draft"
	ActiveStatusPublished ActiveStatus = "Published"
	ActiveStatusArchived  ActiveStatus = "Archived"
)

// Valid reports whether s is one of the known statuses.
func (s ActiveStatus) Valid() bool {
	switch s {
	case ActiveStatusDraft, ActiveStatusPublished, ActiveStatusArchived:
		return true
	}
	return false
}

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// Valid reports whether the point lies within WGS84 bounds.
func (g GeoPoint) Valid() bool {
	return g.Lat >= -90 && g.Lat <= 90 && g.Lng >= -180 && g.Lng <= 180
}

// Image is a stored picture. URL is what clients render; Key identifies the
// object in the image host so it can be copied or deleted.
type Image struct {
	URL string
	Key string
}

// Property is a real-estate listing.
// Slug is allocated from Title on create and re-allocated only when the
// title changes.
type Property struct {
	ID               uuid.UUID
	Slug             string
	Title            string
	Description      string
	PropertyType     string
	TransactionType  string
	Status           string
	BHKType          string
	Furnishing       string
	Bedrooms         *int
	Bathrooms        *int
	SuperBuiltupArea string
	Developer        string
	Project          string
	ReraID           string
	Price            *float64
	Address          string
	City             string
	Location         *GeoPoint // nil when the address could not be geocoded
	Images           []Image
	ActiveStatus     ActiveStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PropertyPatch carries a partial update. Nil fields are left unchanged.
type PropertyPatch struct {
	Title            *string
	Description      *string
	PropertyType     *string
	TransactionType  *string
	Status           *string
	BHKType          *string
	Furnishing       *string
	Bedrooms         *int
	Bathrooms        *int
	SuperBuiltupArea *string
	Developer        *string
	Project          *string
	ReraID           *string
	Price            *float64
	Address          *string
	City             *string
	Location         *GeoPoint
	ActiveStatus     *ActiveStatus

	// RemovedImages lists image URLs to drop from the listing.
	RemovedImages []string
}

// PropertyFilter narrows a property listing. Zero values mean "no filter".
type PropertyFilter struct {
	Search          string // case-insensitive substring of the title
	City            string
	PropertyType    string
	BHKType         string
	Furnishing      string
	Status          string
	TransactionType string
	PriceMin        *float64
	PriceMax        *float64
}

// NearbyProperty is a property annotated with its distance from a search point.
type NearbyProperty struct {
	Property
	DistanceKM float64
}
