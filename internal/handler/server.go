// Package handler implements the HTTP handlers for the PropNest API.
// All handlers are methods on Server. Methods are split into domain-specific
// files (health.go, property.go, etc.) but share the same Server struct so
// they can access its dependencies. Routes wires them into a chi router.
package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/media"
	"github.com/pkordes/propnest/internal/middleware"
	"github.com/pkordes/propnest/internal/service"
)

// The servicer interfaces below define the business operations each group
// of handlers depends on. Defining them here (in the consumer package) lets
// handler tests inject a mock without touching the database or service layer.

// PropertyServicer is implemented by service.PropertyService.
type PropertyServicer interface {
	Create(ctx context.Context, p domain.Property, uploads []media.Upload) (domain.Property, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.Property, error)
	GetBySlug(ctx context.Context, slug string) (domain.Property, error)
	List(ctx context.Context, f domain.PropertyFilter, p domain.PaginationParams) ([]domain.Property, int64, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.PropertyPatch, uploads []media.Upload) (domain.Property, error)
	Duplicate(ctx context.Context, id uuid.UUID) (domain.Property, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Related(ctx context.Context, id uuid.UUID) ([]domain.Property, error)
	Compare(ctx context.Context, ids []uuid.UUID) ([]domain.Property, error)
	Nearby(ctx context.Context, point domain.GeoPoint, radiusKM *float64) ([]domain.NearbyProperty, error)
}

// BlogServicer is implemented by service.BlogService.
type BlogServicer interface {
	Create(ctx context.Context, p domain.BlogPost, feature *media.Upload) (domain.BlogPost, error)
	GetBySlug(ctx context.Context, slug string) (domain.BlogPost, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.BlogPost, error)
	ListPublished(ctx context.Context, p domain.PaginationParams) ([]domain.BlogPost, int64, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.BlogPatch, feature *media.Upload) (domain.BlogPost, error)
	Duplicate(ctx context.Context, id uuid.UUID) (domain.BlogPost, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// AuthServicer is implemented by service.AuthService.
type AuthServicer interface {
	Signup(ctx context.Context, in service.SignupInput) (domain.AuthResult, error)
	Login(ctx context.Context, email, password string) (domain.AuthResult, error)
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) (domain.AuthResult, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) (domain.AuthResult, error)
}

// UserServicer is implemented by service.UserService.
type UserServicer interface {
	Me(ctx context.Context, id uuid.UUID) (domain.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd domain.ProfileUpdate) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	Subscribe(ctx context.Context, email, name string) (domain.User, error)
}

// FavoriteServicer is implemented by service.FavoriteService.
type FavoriteServicer interface {
	List(ctx context.Context, userID uuid.UUID) ([]domain.Property, error)
	Toggle(ctx context.Context, userID, propertyID uuid.UUID) ([]domain.Property, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

// LeadServicer is implemented by service.LeadService.
type LeadServicer interface {
	CreateQuote(ctx context.Context, q domain.Quote) (domain.Quote, error)
	GetQuote(ctx context.Context, id uuid.UUID) (domain.Quote, error)
	ListQuotes(ctx context.Context) ([]domain.Quote, error)
	MyQuotes(ctx context.Context, userID uuid.UUID) ([]domain.Quote, error)
	DeleteQuote(ctx context.Context, id uuid.UUID) error
	CreateContact(ctx context.Context, c domain.Contact) (domain.Contact, error)
	ListContacts(ctx context.Context) ([]domain.Contact, error)
}

// ExportServicer is implemented by service.ExportService.
type ExportServicer interface {
	Export(ctx context.Context) ([]domain.LeadExportRow, error)
}

// Deps lists everything the Server needs. Any servicer may be nil in tests
// that do not exercise its routes.
type Deps struct {
	Properties PropertyServicer
	Blog       BlogServicer
	Auth       AuthServicer
	Users      UserServicer
	Favorites  FavoriteServicer
	Leads      LeadServicer
	Export     ExportServicer

	// Tokens verifies bearer tokens on every /api request.
	Tokens middleware.TokenVerifier
	// RateLimitPerMinute caps auth and lead submissions per client IP.
	// Zero disables limiting.
	RateLimitPerMinute int
}

// Server holds the dependencies shared by all handlers.
type Server struct {
	properties PropertyServicer
	blog       BlogServicer
	auth       AuthServicer
	users      UserServicer
	favorites  FavoriteServicer
	leads      LeadServicer
	export     ExportServicer

	tokens    middleware.TokenVerifier
	rateLimit int
}

// NewServer constructs the Server with all its dependencies.
func NewServer(d Deps) *Server {
	return &Server{
		properties: d.Properties,
		blog:       d.Blog,
		auth:       d.Auth,
		users:      d.Users,
		favorites:  d.Favorites,
		leads:      d.Leads,
		export:     d.Export,
		tokens:     d.Tokens,
		rateLimit:  d.RateLimitPerMinute,
	}
}
