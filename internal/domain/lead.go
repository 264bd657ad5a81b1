package domain

import (
	"time"

	"github.com/google/uuid"
)

// Quote is a price or visit request, optionally tied to a property and to
// the logged-in user who sent it.
type Quote struct {
	ID            uuid.UUID
	PropertyID    *uuid.UUID
	UserID        *uuid.UUID
	Name          string
	Email         string
	ContactNumber string
	Message       string
	CreatedAt     time.Time
}

// Contact is a general enquiry from the contact-us form.
type Contact struct {
	ID        uuid.UUID
	Name      string
	Email     string
	Phone     string
	Budget    string
	Message   string
	CreatedAt time.Time
}

// LeadKind distinguishes rows in a lead export.
type LeadKind string

const (
	LeadKindQuote   LeadKind = "quote"
	LeadKindContact LeadKind = "contact"
)

// LeadExportRow is a single row in the lead export.
// It is a flat view over quotes and contacts; fields that do not apply to a
// kind are left empty.
type LeadExportRow struct {
	Kind       LeadKind
	ID         string
	Name       string
	Email      string
	Phone      string
	Budget     string // contacts only
	PropertyID string // quotes only; empty when not tied to a property
	Message    string
	CreatedAt  time.Time
}
