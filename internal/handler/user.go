package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/propnest/internal/auth"
	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/service"
)

// User is the response shape of an account. The password hash never leaves
// the server.
type User struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Role       string    `json:"role"`
	Newsletter bool      `json:"newsletter"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuthResponse is returned by every login path.
type AuthResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// MessageResponse acknowledges an action that has no resource to return.
type MessageResponse struct {
	Message string `json:"message"`
}

// SignupRequest is the body of POST /api/user/signup.
type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Phone    string `json:"phone" validate:"omitempty,max=20"`
}

// LoginRequest is the body of POST /api/user/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// EmailRequest carries only an address.
type EmailRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyOTPRequest is the body of POST /api/user/otp/verify.
type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// ResetPasswordRequest is the body of POST /api/user/reset-password.
type ResetPasswordRequest struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// ProfileRequest is the body of PUT /api/user/dashboard.
type ProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,max=100"`
	Email           *string `json:"email" validate:"omitempty,email"`
	Phone           *string `json:"phone" validate:"omitempty,max=20"`
	CurrentPassword string  `json:"current_password"`
	NewPassword     string  `json:"new_password" validate:"omitempty,min=6,max=72"`
}

// FavoriteRequest is the body of POST /api/user/favorites.
type FavoriteRequest struct {
	PropertyID uuid.UUID `json:"property_id" validate:"required"`
}

// NewsletterRequest is the body of POST /api/user/newsletter.
type NewsletterRequest struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"omitempty,max=100"`
}

// Signup handles POST /api/user/signup.
func (s *Server) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.auth.Signup(r.Context(), service.SignupInput{
		Name: req.Name, Email: req.Email, Password: req.Password, Phone: req.Phone,
	})
	if err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusCreated, authToResponse(res))
}

// Login handles POST /api/user/login.
func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, authToResponse(res))
}

// SendOTP handles POST /api/user/otp/send.
func (s *Server) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.auth.SendOTP(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "login code sent"})
}

// VerifyOTP handles POST /api/user/otp/verify.
func (s *Server) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.auth.VerifyOTP(r.Context(), req.Email, req.Code)
	if err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, authToResponse(res))
}

// ForgotPassword handles POST /api/user/forgot-password. The response is the
// same whether or not the address is registered.
func (s *Server) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req EmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := s.auth.ForgotPassword(r.Context(), req.Email); err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "if the address is registered, a reset link is on its way"})
}

// ResetPassword handles POST /api/user/reset-password.
func (s *Server) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := s.auth.ResetPassword(r.Context(), req.Token, req.Password)
	if err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, authToResponse(res))
}

// Me handles GET /api/user/me. Anonymous callers get null.
func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.PrincipalFrom(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	u, err := s.users.Me(r.Context(), p.UserID)
	if err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(u))
}

// GetDashboard handles GET /api/user/dashboard.
func (s *Server) GetDashboard(w http.ResponseWriter, r *http.Request) {
	u, err := s.users.Me(r.Context(), principal(r).UserID)
	if err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(u))
}

// UpdateDashboard handles PUT /api/user/dashboard.
func (s *Server) UpdateDashboard(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	u, err := s.users.UpdateProfile(r.Context(), principal(r).UserID, domain.ProfileUpdate{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		CurrentPassword: req.CurrentPassword,
		NewPassword:     req.NewPassword,
	})
	if err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, userToResponse(u))
}

// ListFavorites handles GET /api/user/favorites.
func (s *Server) ListFavorites(w http.ResponseWriter, r *http.Request) {
	props, err := s.favorites.List(r.Context(), principal(r).UserID)
	if err != nil {
		writeServiceError(w, r, err, "favorite")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(props, propertyToResponse))
}

// ToggleFavorite handles POST /api/user/favorites.
func (s *Server) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	var req FavoriteRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	props, err := s.favorites.Toggle(r.Context(), principal(r).UserID, req.PropertyID)
	if err != nil {
		writeServiceError(w, r, err, "property")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(props, propertyToResponse))
}

// ClearFavorites handles DELETE /api/user/favorites.
func (s *Server) ClearFavorites(w http.ResponseWriter, r *http.Request) {
	if err := s.favorites.Clear(r.Context(), principal(r).UserID); err != nil {
		writeServiceError(w, r, err, "favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SubscribeNewsletter handles POST /api/user/newsletter.
func (s *Server) SubscribeNewsletter(w http.ResponseWriter, r *http.Request) {
	var req NewsletterRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if _, err := s.users.Subscribe(r.Context(), req.Email, req.Name); err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "subscribed"})
}

// ListUsers handles GET /api/admin/users.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err, "user")
		return
	}
	writeJSON(w, http.StatusOK, mapSlice(users, userToResponse))
}

// --- mapping helpers --------------------------------------------------------

func userToResponse(u domain.User) User {
	return User{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       string(u.Role),
		Newsletter: u.Newsletter,
		CreatedAt:  u.CreatedAt,
	}
}

func authToResponse(res domain.AuthResult) AuthResponse {
	return AuthResponse{Token: res.Token, User: userToResponse(res.User)}
}
