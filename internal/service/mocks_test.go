package service_test

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/mailer"
	"github.com/pkordes/propnest/internal/media"
	"github.com/pkordes/propnest/internal/repo"
	"github.com/pkordes/propnest/internal/slug"
	"github.com/pkordes/propnest/internal/tokenstore"
)

// Hand-written mocks. Each method delegates to a func field so a test sets
// only the behaviour it exercises; an unset field panics on use.

// ---- PropertyRepo -----------------------------------------------------------

type mockPropertyRepo struct {
	create    func(ctx context.Context, p domain.Property) (domain.Property, error)
	getByID   func(ctx context.Context, id uuid.UUID) (domain.Property, error)
	getBySlug func(ctx context.Context, slug string) (domain.Property, error)
	listPaged func(ctx context.Context, f domain.PropertyFilter, p domain.PaginationParams) ([]domain.Property, int64, error)
	listByIDs func(ctx context.Context, ids []uuid.UUID) ([]domain.Property, error)
	related   func(ctx context.Context, id uuid.UUID, city string, limit int) ([]domain.Property, error)
	nearby    func(ctx context.Context, point domain.GeoPoint, radiusKM float64, limit int) ([]domain.NearbyProperty, error)
	update    func(ctx context.Context, p domain.Property) (domain.Property, error)
	delete    func(ctx context.Context, id uuid.UUID) (domain.Property, error)
}

var _ repo.PropertyRepo = (*mockPropertyRepo)(nil)

func (m *mockPropertyRepo) Create(ctx context.Context, p domain.Property) (domain.Property, error) {
	return m.create(ctx, p)
}
func (m *mockPropertyRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	return m.getByID(ctx, id)
}
func (m *mockPropertyRepo) GetBySlug(ctx context.Context, slug string) (domain.Property, error) {
	return m.getBySlug(ctx, slug)
}
func (m *mockPropertyRepo) ListPaged(ctx context.Context, f domain.PropertyFilter, p domain.PaginationParams) ([]domain.Property, int64, error) {
	return m.listPaged(ctx, f, p)
}
func (m *mockPropertyRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Property, error) {
	return m.listByIDs(ctx, ids)
}
func (m *mockPropertyRepo) ListRelated(ctx context.Context, id uuid.UUID, city string, limit int) ([]domain.Property, error) {
	return m.related(ctx, id, city, limit)
}
func (m *mockPropertyRepo) Nearby(ctx context.Context, point domain.GeoPoint, radiusKM float64, limit int) ([]domain.NearbyProperty, error) {
	return m.nearby(ctx, point, radiusKM, limit)
}
func (m *mockPropertyRepo) Update(ctx context.Context, p domain.Property) (domain.Property, error) {
	return m.update(ctx, p)
}
func (m *mockPropertyRepo) Delete(ctx context.Context, id uuid.UUID) (domain.Property, error) {
	return m.delete(ctx, id)
}

// ---- BlogRepo ---------------------------------------------------------------

type mockBlogRepo struct {
	create        func(ctx context.Context, p domain.BlogPost) (domain.BlogPost, error)
	getByID       func(ctx context.Context, id uuid.UUID) (domain.BlogPost, error)
	getBySlug     func(ctx context.Context, slug string) (domain.BlogPost, error)
	listPublished func(ctx context.Context, p domain.PaginationParams) ([]domain.BlogPost, int64, error)
	update        func(ctx context.Context, p domain.BlogPost) (domain.BlogPost, error)
	delete        func(ctx context.Context, id uuid.UUID) (domain.BlogPost, error)
}

var _ repo.BlogRepo = (*mockBlogRepo)(nil)

func (m *mockBlogRepo) Create(ctx context.Context, p domain.BlogPost) (domain.BlogPost, error) {
	return m.create(ctx, p)
}
func (m *mockBlogRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.BlogPost, error) {
	return m.getByID(ctx, id)
}
func (m *mockBlogRepo) GetBySlug(ctx context.Context, slug string) (domain.BlogPost, error) {
	return m.getBySlug(ctx, slug)
}
func (m *mockBlogRepo) ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.BlogPost, int64, error) {
	return m.listPublished(ctx, p)
}
func (m *mockBlogRepo) Update(ctx context.Context, p domain.BlogPost) (domain.BlogPost, error) {
	return m.update(ctx, p)
}
func (m *mockBlogRepo) Delete(ctx context.Context, id uuid.UUID) (domain.BlogPost, error) {
	return m.delete(ctx, id)
}

// ---- UserRepo ---------------------------------------------------------------

type mockUserRepo struct {
	create     func(ctx context.Context, u domain.User) (domain.User, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.User, error)
	getByEmail func(ctx context.Context, email string) (domain.User, error)
	list       func(ctx context.Context) ([]domain.User, error)
	update     func(ctx context.Context, u domain.User) (domain.User, error)
}

var _ repo.UserRepo = (*mockUserRepo)(nil)

func (m *mockUserRepo) Create(ctx context.Context, u domain.User) (domain.User, error) {
	return m.create(ctx, u)
}
func (m *mockUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	return m.getByID(ctx, id)
}
func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return m.getByEmail(ctx, email)
}
func (m *mockUserRepo) List(ctx context.Context) ([]domain.User, error) {
	return m.list(ctx)
}
func (m *mockUserRepo) Update(ctx context.Context, u domain.User) (domain.User, error) {
	return m.update(ctx, u)
}

// ---- FavoriteRepo -----------------------------------------------------------

type mockFavoriteRepo struct {
	toggle func(ctx context.Context, userID, propertyID uuid.UUID) (bool, error)
	list   func(ctx context.Context, userID uuid.UUID) ([]domain.Property, error)
	clear  func(ctx context.Context, userID uuid.UUID) error
}

var _ repo.FavoriteRepo = (*mockFavoriteRepo)(nil)

func (m *mockFavoriteRepo) Toggle(ctx context.Context, userID, propertyID uuid.UUID) (bool, error) {
	return m.toggle(ctx, userID, propertyID)
}
func (m *mockFavoriteRepo) List(ctx context.Context, userID uuid.UUID) ([]domain.Property, error) {
	return m.list(ctx, userID)
}
func (m *mockFavoriteRepo) Clear(ctx context.Context, userID uuid.UUID) error {
	return m.clear(ctx, userID)
}

// ---- QuoteRepo / ContactRepo ------------------------------------------------

type mockQuoteRepo struct {
	create     func(ctx context.Context, q domain.Quote) (domain.Quote, error)
	getByID    func(ctx context.Context, id uuid.UUID) (domain.Quote, error)
	list       func(ctx context.Context) ([]domain.Quote, error)
	listByUser func(ctx context.Context, userID uuid.UUID) ([]domain.Quote, error)
	delete     func(ctx context.Context, id uuid.UUID) error
}

var _ repo.QuoteRepo = (*mockQuoteRepo)(nil)

func (m *mockQuoteRepo) Create(ctx context.Context, q domain.Quote) (domain.Quote, error) {
	return m.create(ctx, q)
}
func (m *mockQuoteRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Quote, error) {
	return m.getByID(ctx, id)
}
func (m *mockQuoteRepo) List(ctx context.Context) ([]domain.Quote, error) {
	return m.list(ctx)
}
func (m *mockQuoteRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Quote, error) {
	return m.listByUser(ctx, userID)
}
func (m *mockQuoteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.delete(ctx, id)
}

type mockContactRepo struct {
	create func(ctx context.Context, c domain.Contact) (domain.Contact, error)
	list   func(ctx context.Context) ([]domain.Contact, error)
}

var _ repo.ContactRepo = (*mockContactRepo)(nil)

func (m *mockContactRepo) Create(ctx context.Context, c domain.Contact) (domain.Contact, error) {
	return m.create(ctx, c)
}
func (m *mockContactRepo) List(ctx context.Context) ([]domain.Contact, error) {
	return m.list(ctx)
}

// ---- collaborators ----------------------------------------------------------

// fakeMedia is an in-memory media.Store that records what it was asked to do.
type fakeMedia struct {
	mu      sync.Mutex
	n       int
	deleted []string
	putErr  error
}

var _ media.Store = (*fakeMedia)(nil)

func (f *fakeMedia) Put(_ context.Context, prefix string, u media.Upload) (domain.Image, error) {
	if f.putErr != nil {
		return domain.Image{}, f.putErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	key := prefix + "/" + u.Filename
	return domain.Image{URL: "https://cdn.test/" + key, Key: key}, nil
}

func (f *fakeMedia) Copy(_ context.Context, prefix string, src domain.Image) (domain.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.n++
	key := prefix + "/copy-of-" + src.Key
	return domain.Image{URL: "https://cdn.test/" + key, Key: key}, nil
}

func (f *fakeMedia) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeGeocoder struct {
	point domain.GeoPoint
	err   error
	calls int
}

func (g *fakeGeocoder) Geocode(_ context.Context, _ ...string) (domain.GeoPoint, error) {
	g.calls++
	return g.point, g.err
}

// fakeSender collects every message it is asked to send.
type fakeSender struct {
	mu   sync.Mutex
	sent []mailer.Message
	err  error
}

func (s *fakeSender) Send(_ context.Context, msg mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, msg)
	return s.err
}

func (s *fakeSender) subjects() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	for i, m := range s.sent {
		out[i] = m.Subject
	}
	return out
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(u domain.User) (string, error) { return "token-" + u.ID.String(), nil }

// fakeTokenStore is an in-memory TokenStore.
type fakeTokenStore struct {
	otps   map[string]string
	resets map[string]uuid.UUID
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{otps: map[string]string{}, resets: map[string]uuid.UUID{}}
}

func (s *fakeTokenStore) SaveOTP(_ context.Context, email, code string) error {
	s.otps[email] = code
	return nil
}
func (s *fakeTokenStore) VerifyOTP(_ context.Context, email, code string) error {
	want, ok := s.otps[email]
	if !ok {
		return tokenstore.ErrNotFound
	}
	if want != code {
		return tokenstore.ErrMismatch
	}
	delete(s.otps, email)
	return nil
}
func (s *fakeTokenStore) SaveResetToken(_ context.Context, token string, userID uuid.UUID) error {
	s.resets[token] = userID
	return nil
}
func (s *fakeTokenStore) ConsumeResetToken(_ context.Context, token string) (uuid.UUID, error) {
	id, ok := s.resets[token]
	if !ok {
		return uuid.Nil, tokenstore.ErrNotFound
	}
	delete(s.resets, token)
	return id, nil
}

// memSlugs returns an allocator whose oracle reports the given slugs as taken.
func memSlugs(taken ...string) *slug.Allocator {
	set := make(map[string]bool, len(taken))
	for _, s := range taken {
		set[s] = true
	}
	return slug.New(slug.OracleFunc(func(_ context.Context, _ slug.Kind, candidate string, _ uuid.UUID) (bool, error) {
		return set[candidate], nil
	}))
}
