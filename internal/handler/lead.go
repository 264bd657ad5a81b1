package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/propnest/internal/auth"
	"github.com/pkordes/propnest/internal/domain"
)

// Quote is the response shape of a quote request.
type Quote struct {
	ID            uuid.UUID  `json:"id"`
	PropertyID    *uuid.UUID `json:"property_id"`
	UserID        *uuid.UUID `json:"user_id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	ContactNumber string     `json:"contact_number"`
	Message       string     `json:"message"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Contact is the response shape of a contact enquiry.
type Contact struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Budget    string    `json:"budget"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}

// QuoteRequest is the body of POST /api/quotes.
type QuoteRequest struct {
	PropertyID    *uuid.UUID `json:"property_id"`
	Name          string     `json:"name" validate:"required,max=100"`
	Email         string     `json:"email" validate:"required,email"`
	ContactNumber string     `json:"contact_number" validate:"required,max=20"`
	Message       string     `json:"message" validate:"required,max=5000"`
}

// ContactRequest is the body of POST /api/contact.
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,max=20"`
	Budget  string `json:"budget" validate:"omitempty,max=100"`
	Message string `json:"message" validate:"omitempty,max=5000"`
}

// CreateQuote handles POST /api/quotes. A logged-in caller is recorded as
// the quote's owner.
func (s *Server) CreateQuote(w http.ResponseWriter, r *http.Request) {
	var req QuoteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	q := domain.Quote{
		PropertyID:    req.PropertyID,
		Name:          req.Name,
		Email:         req.Email,
		ContactNumber: req.ContactNumber,
		Message:       req.Message,
	}
	if p, ok := auth.PrincipalFrom(r.Context()); ok {
		q.UserID = &p.UserID
	}

	created, err := s.leads.CreateQuote(r.Context(), q)
	if err != nil {
		writeServiceError(w, r, err, "property")
		return
	}
	writeJSON(w, http.StatusCreated, quoteToResponse(created))
}

// MyQuotes handles GET /api/quotes/my.
func (s *Server) MyQuotes(w http.ResponseWriter, r *http.Request) {
	qs, err := s.leads.MyQuotes(r.Context(), principal(r).UserID)
	if err != nil {
		writeServiceError(w, r, err, "quote")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(qs, quoteToResponse))
}

// ListQuotes handles GET /api/quotes.
func (s *Server) ListQuotes(w http.ResponseWriter, r *http.Request) {
	qs, err := s.leads.ListQuotes(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "quote")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(qs, quoteToResponse))
}

// GetQuote handles GET /api/quotes/{id}.
func (s *Server) GetQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "quote")
	if !ok {
		return
	}
	q, err := s.leads.GetQuote(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err, "quote")
		return
	}
	writeJSON(w, http.StatusOK, quoteToResponse(q))
}

// DeleteQuote handles DELETE /api/quotes/{id}.
func (s *Server) DeleteQuote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id", "quote")
	if !ok {
		return
	}
	if err := s.leads.DeleteQuote(r.Context(), id); err != nil {
		writeServiceError(w, r, err, "quote")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateContact handles POST /api/contact.
func (s *Server) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := s.leads.CreateContact(r.Context(), domain.Contact{
		Name: req.Name, Email: req.Email, Phone: req.Phone, Budget: req.Budget, Message: req.Message,
	})
	if err != nil {
		writeServiceError(w, r, err, "contact")
		return
	}
	writeJSON(w, http.StatusCreated, contactToResponse(created))
}

// ListContacts handles GET /api/contact.
func (s *Server) ListContacts(w http.ResponseWriter, r *http.Request) {
	cs, err := s.leads.ListContacts(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "contact")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(cs, contactToResponse))
}

// --- mapping helpers --------------------------------------------------------

func quoteToResponse(q domain.Quote) Quote {
	return Quote{
		ID:            q.ID,
		PropertyID:    q.PropertyID,
		UserID:        q.UserID,
		Name:          q.Name,
		Email:         q.Email,
		ContactNumber: q.ContactNumber,
		Message:       q.Message,
		CreatedAt:     q.CreatedAt,
	}
}

func contactToResponse(c domain.Contact) Contact {
	return Contact{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Budget:    c.Budget,
		Message:   c.Message,
		CreatedAt: c.CreatedAt,
	}
}
