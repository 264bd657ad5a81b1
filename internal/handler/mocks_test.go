package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/handler"
	"github.com/pkordes/propnest/internal/media"
	"github.com/pkordes/propnest/internal/service"
)

// Each mock is a test double for one servicer interface.
// Set only the method fields your test needs.

type mockPropertyServicer struct {
	create    func(ctx context.Context, p domain.Property, uploads []media.Upload) (domain.Property, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Property, error)
	getBySlug func(ctx context.Context, slug string) (domain.Property, error)
	list      func(ctx context.Context, f domain.PropertyFilter, p domain.PaginationParams) ([]domain.Property, int64, error)
	update    func(ctx context.Context, id uuid.UUID, patch domain.PropertyPatch, uploads []media.Upload) (domain.Property, error)
	duplicate func(ctx context.Context, id uuid.UUID) (domain.Property, error)
	delete    func(ctx context.Context, id uuid.UUID) error
	related   func(ctx context.Context, id uuid.UUID) ([]domain.Property, error)
	compare   func(ctx context.Context, ids []uuid.UUID) ([]domain.Property, error)
	nearby    func(ctx context.Context, point domain.GeoPoint, radiusKM *float64) ([]domain.NearbyProperty, error)
}

func (m *mockPropertyServicer) Create(ctx context.Context, p domain.Property, uploads []media.Upload) (domain.Property, error) {
	return m.create(ctx, p, uploads)
}
func (m *mockPropertyServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	return m.getByID(ctx, id)
}
func (m *mockPropertyServicer) GetBySlug(ctx context.Context, slug string) (domain.Property, error) {
	return m.getBySlug(ctx, slug)
}
func (m *mockPropertyServicer) List(ctx context.Context, f domain.PropertyFilter, p domain.PaginationParams) ([]domain.Property, int64, error) {
	return m.list(ctx, f, p)
}
func (m *mockPropertyServicer) Update(ctx context.Context, id uuid.UUID, patch domain.PropertyPatch, uploads []media.Upload) (domain.Property, error) {
	return m.update(ctx, id, patch, uploads)
}
func (m *mockPropertyServicer) Duplicate(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	return m.duplicate(ctx, id)
}
func (m *mockPropertyServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}
func (m *mockPropertyServicer) Related(ctx context.Context, id uuid.UUID) ([]domain.Property, error) {
	return m.related(ctx, id)
}
func (m *mockPropertyServicer) Compare(ctx context.Context, ids []uuid.UUID) ([]domain.Property, error) {
	return m.compare(ctx, ids)
}
func (m *mockPropertyServicer) Nearby(ctx context.Context, point domain.GeoPoint, radiusKM *float64) ([]domain.NearbyProperty, error) {
	return m.nearby(ctx, point, radiusKM)
}

type mockBlogServicer struct {
	create        func(ctx context.Context, p domain.BlogPost, feature *media.Upload) (domain.BlogPost, error)
	getBySlug     func(ctx context.Context, slug string) (domain.BlogPost, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.BlogPost, error)
	listPublished func(ctx context.Context, p domain.PaginationParams) ([]domain.BlogPost, int64, error)
	update        func(ctx context.Context, id uuid.UUID, patch domain.BlogPatch, feature *media.Upload) (domain.BlogPost, error)
	duplicate     func(ctx context.Context, id uuid.UUID) (domain.BlogPost, error)
	delete        func(ctx context.Context, id uuid.UUID) error
}

func (m *mockBlogServicer) Create(ctx context.Context, p domain.BlogPost, feature *media.Upload) (domain.BlogPost, error) {
	return m.create(ctx, p, feature)
}
func (m *mockBlogServicer) GetBySlug(ctx context.Context, slug string) (domain.BlogPost, error) {
	return m.getBySlug(ctx, slug)
}
func (m *mockBlogServicer) GetByID(ctx context.Context, id uuid.UUID) (domain.BlogPost, error) {
	return m.getByID(ctx, id)
}
func (m *mockBlogServicer) ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.BlogPost, int64, error) {
	return m.listPublished(ctx, p)
}
func (m *mockBlogServicer) Update(ctx context.Context, id uuid.UUID, patch domain.BlogPatch, feature *media.Upload) (domain.BlogPost, error) {
	return m.update(ctx, id, patch, feature)
}
func (m *mockBlogServicer) Duplicate(ctx context.Context, id uuid.UUID) (domain.BlogPost, error) {
	return m.duplicate(ctx, id)
}
func (m *mockBlogServicer) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

type mockAuthServicer struct {
	signup         func(ctx context.Context, in service.SignupInput) (domain.AuthResult, error)
	login          func(ctx context.Context, email, password string) (domain.AuthResult, error)
	sendOTP        func(ctx context.Context, email string) error
	verifyOTP      func(ctx context.Context, email, code string) (domain.AuthResult, error)
	forgotPassword func(ctx context.Context, email string) error
	resetPassword  func(ctx context.Context, token, password string) (domain.AuthResult, error)
}

func (m *mockAuthServicer) Signup(ctx context.Context, in service.SignupInput) (domain.AuthResult, error) {
	return m.signup(ctx, in)
}
func (m *mockAuthServicer) Login(ctx context.Context, email, password string) (domain.AuthResult, error) {
	return m.login(ctx, email, password)
}
func (m *mockAuthServicer) SendOTP(ctx context.Context, email string) error {
	return m.sendOTP(ctx, email)
}
func (m *mockAuthServicer) VerifyOTP(ctx context.Context, email, code string) (domain.AuthResult, error) {
	return m.verifyOTP(ctx, email, code)
}
func (m *mockAuthServicer) ForgotPassword(ctx context.Context, email string) error {
	return m.forgotPassword(ctx, email)
}
func (m *mockAuthServicer) ResetPassword(ctx context.Context, token, password string) (domain.AuthResult, error) {
	return m.resetPassword(ctx, token, password)
}

type mockUserServicer struct {
	me            func(ctx context.Context, id uuid.UUID) (domain.User, error)
	updateProfile func(ctx context.Context, id uuid.UUID, upd domain.ProfileUpdate) (domain.User, error)
	list          func(ctx context.Context) ([]domain.User, error)
	subscribe     func(ctx context.Context, email, name string) (domain.User, error)
}

func (m *mockUserServicer) Me(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.me(ctx, id)
}
func (m *mockUserServicer) UpdateProfile(ctx context.Context, id uuid.UUID, upd domain.ProfileUpdate) (domain.User, error) {
	return m.updateProfile(ctx, id, upd)
}
func (m *mockUserServicer) List(ctx context.Context) ([]domain.User, error) {
	return m.list(ctx)
}
func (m *mockUserServicer) Subscribe(ctx context.Context, email, name string) (domain.User, error) {
	return m.subscribe(ctx, email, name)
}

type mockFavoriteServicer struct {
	list   func(ctx context.Context, userID uuid.UUID) ([]domain.Property, error)
	toggle func(ctx context.Context, userID, propertyID uuid.UUID) ([]domain.Property, error)
	clear  func(ctx context.Context, userID uuid.UUID) error
}

func (m *mockFavoriteServicer) List(ctx context.Context, userID uuid.UUID) ([]domain.Property, error) {
	return m.list(ctx, userID)
}
func (m *mockFavoriteServicer) Toggle(ctx context.Context, userID, propertyID uuid.UUID) ([]domain.Property, error) {
	return m.toggle(ctx, userID, propertyID)
}
func (m *mockFavoriteServicer) Clear(ctx context.Context, userID uuid.UUID) error {
	return m.clear(ctx, userID)
}

type mockLeadServicer struct {
	createQuote   func(ctx context.Context, q domain.Quote) (domain.Quote, error)
	getQuote      func(ctx context.Context, id uuid.UUID) (domain.Quote, error)
	listQuotes    func(ctx context.Context) ([]domain.Quote, error)
	myQuotes      func(ctx context.Context, userID uuid.UUID) ([]domain.Quote, error)
	deleteQuote   func(ctx context.Context, id uuid.UUID) error
	createContact func(ctx context.Context, c domain.Contact) (domain.Contact, error)
	listContacts  func(ctx context.Context) ([]domain.Contact, error)
}

func (m *mockLeadServicer) CreateQuote(ctx context.Context, q domain.Quote) (domain.Quote, error) {
	return m.createQuote(ctx, q)
}
func (m *mockLeadServicer) GetQuote(ctx context.Context, id uuid.UUID) (domain.Quote, error) {
	return m.getQuote(ctx, id)
}
func (m *mockLeadServicer) ListQuotes(ctx context.Context) ([]domain.Quote, error) {
	return m.listQuotes(ctx)
}
func (m *mockLeadServicer) MyQuotes(ctx context.Context, userID uuid.UUID) ([]domain.Quote, error) {
	return m.myQuotes(ctx, userID)
}
func (m *mockLeadServicer) DeleteQuote(ctx context.Context, id uuid.UUID) error {
	return m.deleteQuote(ctx, id)
}
func (m *mockLeadServicer) CreateContact(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	return m.createContact(ctx, c)
}
func (m *mockLeadServicer) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	return m.listContacts(ctx)
}

type mockExportServicer struct {
	export func(ctx context.Context) ([]domain.LeadExportRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context) ([]domain.LeadExportRow, error) {
	return m.export(ctx)
}

// compile-time checks: each mock must satisfy its handler interface.
var (
	_ handler.PropertyServicer = (*mockPropertyServicer)(nil)
	_ handler.BlogServicer     = (*mockBlogServicer)(nil)
	_ handler.AuthServicer     = (*mockAuthServicer)(nil)
	_ handler.UserServicer     = (*mockUserServicer)(nil)
	_ handler.FavoriteServicer = (*mockFavoriteServicer)(nil)
	_ handler.LeadServicer     = (*mockLeadServicer)(nil)
	_ handler.ExportServicer   = (*mockExportServicer)(nil)
)

// ---- auth ------------------------------------------------------------------

const (
	adminToken = "admin-token"
	userToken  = "user-token"
)

var adminID, userID = uuid.New(), uuid.New()

// stubVerifier accepts exactly one token per role.
type stubVerifier struct{}

func (stubVerifier) Verify(token string) (domain.Principal, error) {
	switch token {
	case adminToken:
		return domain.Principal{UserID: adminID, Role: domain.RoleAdmin}, nil
	case userToken:
		return domain.Principal{UserID: userID, Role: domain.RoleUser}, nil
	}
	return domain.Principal{}, errors.New("bad token")
}

// ---- helpers ---------------------------------------------------------------

// newRouter wires a Server with the given mocks into its production route
// tree. Tokens is always the stub verifier.
func newRouter(d handler.Deps) http.Handler {
	d.Tokens = stubVerifier{}
	return handler.NewServer(d).Routes()
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	if v == nil {
		return nil
	}
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// do sends a request through h. token may be empty for anonymous calls.
func do(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, jsonBody(t, body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func ptr[T any](v T) *T { return &v }
