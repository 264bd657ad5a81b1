// Package main is the entry point for the PropNest API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/pkordes/propnest/internal/auth"
	"github.com/pkordes/propnest/internal/config"
	"github.com/pkordes/propnest/internal/geocode"
	"github.com/pkordes/propnest/internal/handler"
	"github.com/pkordes/propnest/internal/mailer"
	"github.com/pkordes/propnest/internal/media"
	"github.com/pkordes/propnest/internal/metrics"
	"github.com/pkordes/propnest/internal/middleware"
	"github.com/pkordes/propnest/internal/repo"
	"github.com/pkordes/propnest/internal/service"
	"github.com/pkordes/propnest/internal/slug"
	"github.com/pkordes/propnest/internal/tokenstore"
	"github.com/pkordes/propnest/migrations"
)

func main() {
	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use plain stderr before the logger is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// --- Database ---------------------------------------------------------
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	slog.Info("database connection established")

	sqlDB := stdlib.OpenDBFromPool(pool)
	applied, err := migrations.Up(context.Background(), sqlDB)
	_ = sqlDB.Close()
	if err != nil {
		slog.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("migrations applied", "count", applied)

	// --- Redis ------------------------------------------------------------
	redisOpts, err := goredis.ParseURL(cfg.RedisURL)
	if err != nil {
		slog.Error("invalid REDIS_URL", "error", err)
		os.Exit(1)
	}
	rdb := goredis.NewClient(redisOpts)
	defer rdb.Close()
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		slog.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}

	// --- External services ------------------------------------------------
	var images media.Store
	if cfg.S3.Bucket != "" {
		s3Store, err := media.NewS3Store(media.S3Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PublicURL: cfg.S3.PublicURL,
			PathStyle: cfg.S3.PathStyle,
		})
		if err != nil {
			slog.Error("failed to configure image storage", "error", err)
			os.Exit(1)
		}
		images = s3Store
	} else {
		slog.Warn("S3_BUCKET not set; image uploads are disabled")
	}

	mail := newSender(cfg.Mail, logger)
	geocoder := geocode.New(geocode.Config{BaseURL: cfg.GeocoderURL, UserAgent: cfg.GeocoderUserAgent})

	issuer, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL, clockwork.NewRealClock())
	if err != nil {
		slog.Error("failed to configure tokens", "error", err)
		os.Exit(1)
	}

	// --- Layers -----------------------------------------------------------
	slugs := slug.New(repo.NewSlugIndex(pool),
		slug.WithProbeHook(func(k slug.Kind, probes int) {
			metrics.ObserveSlugProbes(string(k), probes)
		}),
		// /api/blog/id/{id} shadows a post whose slug is "id".
		slug.WithReserved(slug.KindBlogPost, "id"),
	)

	users := repo.NewUserRepo(pool)
	properties := repo.NewPropertyRepo(pool)
	quotes := repo.NewQuoteRepo(pool)
	contacts := repo.NewContactRepo(pool)

	srv := handler.NewServer(handler.Deps{
		Properties:         service.NewPropertyService(properties, slugs, images, geocoder),
		Blog:               service.NewBlogService(repo.NewBlogRepo(pool), slugs, images),
		Auth:               service.NewAuthService(users, issuer, tokenstore.New(rdb), mail, cfg.FrontendURL),
		Users:              service.NewUserService(users, mail),
		Favorites:          service.NewFavoriteService(repo.NewFavoriteRepo(pool)),
		Leads:              service.NewLeadService(quotes, contacts, properties, mail, cfg.AdminEmail),
		Export:             service.NewExportService(quotes, contacts),
		Tokens:             issuer,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → CORS → MaxBodySize → Metrics.
	// CORS sits before the body limit so preflight requests are answered
	// without reading a body.
	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))
	r.Use(middleware.NewMetricsHandler())
	r.Mount("/", srv.Routes())

	// --- HTTP Server ------------------------------------------------------
	// Multipart uploads of up to ten images need a longer read window than
	// plain JSON.
	httpSrv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newSender picks the mail provider named in cfg. config.Load has already
// rejected unknown providers and missing credentials.
func newSender(cfg config.MailConfig, logger *slog.Logger) mailer.Sender {
	switch cfg.Provider {
	case config.MailProviderSMTP:
		return mailer.NewSMTPSender(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPass,
			From:     cfg.From,
		})
	case config.MailProviderResend:
		return mailer.NewResendSender(cfg.ResendAPIKey, cfg.From)
	default:
		return mailer.LogSender{Logger: logger}
	}
}
