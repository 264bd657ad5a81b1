package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkordes/propnest/internal/middleware"
	"github.com/pkordes/propnest/spec"
)

// Routes returns the full route tree. Static segments such as /compare and
// /slug/{slug} are registered next to /{id}; chi matches static segments
// before parameters, so their order here does not matter.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.GetHealth)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", serveOpenAPI)

	r.Route("/api", func(r chi.Router) {
		if s.tokens != nil {
			r.Use(middleware.NewAuthenticator(s.tokens))
		}
		limited := middleware.NewRateLimiter(s.rateLimit)

		r.Route("/properties", func(r chi.Router) {
			r.Get("/", s.ListProperties)
			r.Get("/compare", s.CompareProperties)
			r.Post("/nearby", s.NearbyProperties)
			r.Get("/slug/{slug}", s.GetPropertyBySlug)
			r.Get("/{id}", s.GetProperty)
			r.Get("/{id}/related", s.RelatedProperties)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", s.CreateProperty)
				r.Put("/{id}", s.UpdateProperty)
				r.Post("/{id}/duplicate", s.DuplicateProperty)
				r.Delete("/{id}", s.DeleteProperty)
			})
		})

		r.Route("/blog", func(r chi.Router) {
			r.Get("/", s.ListBlogPosts)
			r.Get("/id/{id}", s.GetBlogPostByID)
			r.Get("/{slug}", s.GetBlogPost)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Post("/", s.CreateBlogPost)
				r.Put("/{id}", s.UpdateBlogPost)
				r.Post("/{id}/duplicate", s.DuplicateBlogPost)
				r.Delete("/{id}", s.DeleteBlogPost)
			})
		})

		r.Route("/user", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(limited)
				r.Post("/signup", s.Signup)
				r.Post("/login", s.Login)
				r.Post("/otp/send", s.SendOTP)
				r.Post("/otp/verify", s.VerifyOTP)
				r.Post("/forgot-password", s.ForgotPassword)
				r.Post("/reset-password", s.ResetPassword)
				r.Post("/newsletter", s.SubscribeNewsletter)
			})
			r.Get("/me", s.Me)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/dashboard", s.GetDashboard)
				r.Put("/dashboard", s.UpdateDashboard)
				r.Get("/favorites", s.ListFavorites)
				r.Post("/favorites", s.ToggleFavorite)
				r.Delete("/favorites", s.ClearFavorites)
			})
		})

		r.Route("/quotes", func(r chi.Router) {
			r.With(limited).Post("/", s.CreateQuote)
			r.With(middleware.RequireAuth).Get("/my", s.MyQuotes)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/", s.ListQuotes)
				r.Get("/{id}", s.GetQuote)
				r.Delete("/{id}", s.DeleteQuote)
			})
		})

		r.Route("/contact", func(r chi.Router) {
			r.With(limited).Post("/", s.CreateContact)
			r.With(middleware.RequireAdmin).Get("/", s.ListContacts)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin)
			r.Get("/users", s.ListUsers)
			r.Get("/export/leads", s.ExportLeads)
		})
	})

	return r
}

func serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	_, _ = w.Write(spec.OpenAPI)
}
