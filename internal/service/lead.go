package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/mailer"
	"github.com/pkordes/propnest/internal/repo"
)

// LeadService records quote requests and contact enquiries and notifies the
// site admin about them.
type LeadService struct {
	quotes     repo.QuoteRepo
	contacts   repo.ContactRepo
	properties repo.PropertyRepo
	mail       mailer.Sender
	adminEmail string
}

// NewLeadService constructs a LeadService. An empty adminEmail disables admin
// notifications.
func NewLeadService(quotes repo.QuoteRepo, contacts repo.ContactRepo, properties repo.PropertyRepo, mail mailer.Sender, adminEmail string) *LeadService {
	return &LeadService{quotes: quotes, contacts: contacts, properties: properties, mail: mail, adminEmail: adminEmail}
}

// CreateQuote stores a quote request, then notifies the admin and thanks the
// requester. Mail failures do not fail the request.
func (s *LeadService) CreateQuote(ctx context.Context, q domain.Quote) (domain.Quote, error) {
	q.Name = strings.TrimSpace(q.Name)
	q.Email = normalizeEmail(q.Email)
	q.ContactNumber = strings.TrimSpace(q.ContactNumber)
	q.Message = strings.TrimSpace(q.Message)
	if q.Name == "" || q.Email == "" || q.ContactNumber == "" || q.Message == "" {
		return domain.Quote{}, fmt.Errorf("%w: name, email, contact_number and message are required", domain.ErrValidation)
	}

	created, err := s.quotes.Create(ctx, q)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("service.LeadService.CreateQuote: %w", err)
	}

	title := s.propertyTitle(ctx, created.PropertyID)
	if s.adminEmail != "" {
		notify(ctx, s.mail, mailer.QuoteAdminMessage(s.adminEmail, created, title))
	}
	notify(ctx, s.mail, mailer.QuoteConfirmationMessage(created, title))
	return created, nil
}

// GetQuote returns a single quote.
func (s *LeadService) GetQuote(ctx context.Context, id uuid.UUID) (domain.Quote, error) {
	q, err := s.quotes.GetByID(ctx, id)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("service.LeadService.GetQuote: %w", err)
	}
	return q, nil
}

// ListQuotes returns every quote, newest first.
func (s *LeadService) ListQuotes(ctx context.Context) ([]domain.Quote, error) {
	qs, err := s.quotes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.LeadService.ListQuotes: %w", err)
	}
	return qs, nil
}

// MyQuotes returns the quotes a user sent.
func (s *LeadService) MyQuotes(ctx context.Context, userID uuid.UUID) ([]domain.Quote, error) {
	qs, err := s.quotes.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service.LeadService.MyQuotes: %w", err)
	}
	return qs, nil
}

// DeleteQuote removes a quote.
func (s *LeadService) DeleteQuote(ctx context.Context, id uuid.UUID) error {
	if err := s.quotes.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.LeadService.DeleteQuote: %w", err)
	}
	return nil
}

// CreateContact stores a contact enquiry and notifies the admin.
func (s *LeadService) CreateContact(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = normalizeEmail(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	c.Budget = strings.TrimSpace(c.Budget)
	c.Message = strings.TrimSpace(c.Message)
	if c.Name == "" || c.Email == "" || c.Phone == "" {
		return domain.Contact{}, fmt.Errorf("%w: name, email and phone are required", domain.ErrValidation)
	}

	created, err := s.contacts.Create(ctx, c)
	if err != nil {
		return domain.Contact{}, fmt.Errorf("service.LeadService.CreateContact: %w", err)
	}
	if s.adminEmail != "" {
		notify(ctx, s.mail, mailer.ContactAdminMessage(s.adminEmail, created))
	}
	return created, nil
}

// ListContacts returns every enquiry, newest first.
func (s *LeadService) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	cs, err := s.contacts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.LeadService.ListContacts: %w", err)
	}
	return cs, nil
}

// propertyTitle looks up the title for mail. Lookup failures yield "".
func (s *LeadService) propertyTitle(ctx context.Context, id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	p, err := s.properties.GetByID(ctx, *id)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			slog.WarnContext(ctx, "property lookup for notification failed", "property_id", id.String(), "error", err)
		}
		return ""
	}
	return p.Title
}
