package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/service"
)

// ---- helpers ---------------------------------------------------------------

func quotesReturning(qs ...domain.Quote) *mockQuoteRepo {
	return &mockQuoteRepo{list: func(_ context.Context) ([]domain.Quote, error) { return qs, nil }}
}

func contactsReturning(cs ...domain.Contact) *mockContactRepo {
	return &mockContactRepo{list: func(_ context.Context) ([]domain.Contact, error) { return cs, nil }}
}

func at(day int) time.Time {
	return time.Date(2025, 6, day, 10, 0, 0, 0, time.UTC)
}

// ---- Export ----------------------------------------------------------------

func TestExportService_Export_QuoteWithProperty(t *testing.T) {
	propID := uuid.New()
	q := domain.Quote{
		ID: uuid.New(), PropertyID: &propID, Name: "Ravi", Email: "ravi@example.com",
		ContactNumber: "9876543210", Message: "Visit?", CreatedAt: at(2),
	}
	svc := service.NewExportService(quotesReturning(q), contactsReturning())

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.LeadKindQuote, rows[0].Kind)
	assert.Equal(t, q.ID.String(), rows[0].ID)
	assert.Equal(t, "9876543210", rows[0].Phone)
	assert.Equal(t, propID.String(), rows[0].PropertyID)
	assert.Empty(t, rows[0].Budget)
}

func TestExportService_Export_ContactRow(t *testing.T) {
	c := domain.Contact{ID: uuid.New(), Name: "Meera", Email: "m@example.com", Phone: "9123456780", Budget: "1Cr", CreatedAt: at(3)}
	svc := service.NewExportService(quotesReturning(), contactsReturning(c))

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.LeadKindContact, rows[0].Kind)
	assert.Equal(t, "1Cr", rows[0].Budget)
	assert.Empty(t, rows[0].PropertyID)
}

func TestExportService_Export_MergedNewestFirst(t *testing.T) {
	svc := service.NewExportService(
		quotesReturning(
			domain.Quote{ID: uuid.New(), Name: "q-new", CreatedAt: at(5)},
			domain.Quote{ID: uuid.New(), Name: "q-old", CreatedAt: at(1)},
		),
		contactsReturning(domain.Contact{ID: uuid.New(), Name: "c-mid", CreatedAt: at(3)}),
	)

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "q-new", rows[0].Name)
	assert.Equal(t, "c-mid", rows[1].Name)
	assert.Equal(t, "q-old", rows[2].Name)
}

func TestExportService_Export_Empty(t *testing.T) {
	svc := service.NewExportService(quotesReturning(), contactsReturning())

	rows, err := svc.Export(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, rows)
	assert.Empty(t, rows)
}

func TestExportService_Export_RepoError(t *testing.T) {
	boom := errors.New("db down")
	svc := service.NewExportService(
		quotesReturning(),
		&mockContactRepo{list: func(_ context.Context) ([]domain.Contact, error) { return nil, boom }},
	)

	_, err := svc.Export(context.Background())

	assert.ErrorIs(t, err, boom)
}
