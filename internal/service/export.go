package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/repo"
)

// ExportService assembles a flat export of every quote and contact enquiry.
type ExportService struct {
	quotes   repo.QuoteRepo
	contacts repo.ContactRepo
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(quotes repo.QuoteRepo, contacts repo.ContactRepo) *ExportService {
	return &ExportService{quotes: quotes, contacts: contacts}
}

// Export returns one LeadExportRow per quote and per contact, newest first.
func (s *ExportService) Export(ctx context.Context) ([]domain.LeadExportRow, error) {
	quotes, err := s.quotes.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}
	contacts, err := s.contacts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.ExportService.Export: %w", err)
	}

	rows := make([]domain.LeadExportRow, 0, len(quotes)+len(contacts))
	for _, q := range quotes {
		row := domain.LeadExportRow{
			Kind:      domain.LeadKindQuote,
			ID:        q.ID.String(),
			Name:      q.Name,
			Email:     q.Email,
			Phone:     q.ContactNumber,
			Message:   q.Message,
			CreatedAt: q.CreatedAt,
		}
		if q.PropertyID != nil {
			row.PropertyID = q.PropertyID.String()
		}
		rows = append(rows, row)
	}
	for _, c := range contacts {
		rows = append(rows, domain.LeadExportRow{
			Kind:      domain.LeadKindContact,
			ID:        c.ID.String(),
			Name:      c.Name,
			Email:     c.Email,
			Phone:     c.Phone,
			Budget:    c.Budget,
			Message:   c.Message,
			CreatedAt: c.CreatedAt,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].CreatedAt.After(rows[j].CreatedAt)
	})
	return rows, nil
}
