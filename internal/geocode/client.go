// Package geocode resolves a street address to coordinates using a
// Nominatim-compatible search API behind a circuit breaker.
package geocode

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sony/gobreaker/v2"

	"github.com/pkordes/propnest/internal/domain"
	"github.com/pkordes/propnest/internal/metrics"
)

// DefaultBaseURL is the public OpenStreetMap Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

const breakerName = "geocoder"

var (
	// ErrNoResult means the geocoder found nothing for the query.
	ErrNoResult = errors.New("geocode: no result")
	// ErrUnavailable means the geocoder failed or the breaker is open.
	ErrUnavailable = errors.New("geocode: unavailable")
)

// Config configures a Client.
type Config struct {
	BaseURL   string
	UserAgent string // Nominatim's usage policy requires an identifying agent
	Timeout   time.Duration
}

// Client geocodes addresses.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	cb        *gobreaker.CircuitBreaker[domain.GeoPoint]
}

// New returns a Client for cfg.
// The breaker opens after 5 consecutive failures and probes again after 30s.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "propnest-api"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)
	cb := gobreaker.NewCircuitBreaker[domain.GeoPoint](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// A query with no match is an answer, not an outage.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrNoResult)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state change", "name", name, "from", from.String(), "to", to.String())
			metrics.CircuitBreakerState.WithLabelValues(name).Set(float64(to))
		},
	})

	return &Client{
		http:      &http.Client{Timeout: cfg.Timeout},
		baseURL:   strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent: cfg.UserAgent,
		cb:        cb,
	}
}

// Geocode returns the best match for the query built from parts
// (typically address and city). Empty parts are skipped.
func (c *Client) Geocode(ctx context.Context, parts ...string) (domain.GeoPoint, error) {
	var nonEmpty []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	if len(nonEmpty) == 0 {
		return domain.GeoPoint{}, ErrNoResult
	}
	query := strings.Join(nonEmpty, ", ")

	pt, err := c.cb.Execute(func() (domain.GeoPoint, error) {
		return c.search(ctx, query)
	})
	switch {
	case err == nil:
		metrics.ExternalCalls.WithLabelValues(breakerName, "ok").Inc()
		return pt, nil
	case errors.Is(err, ErrNoResult):
		metrics.ExternalCalls.WithLabelValues(breakerName, "no_result").Inc()
		return domain.GeoPoint{}, err
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.ExternalCalls.WithLabelValues(breakerName, "rejected").Inc()
		return domain.GeoPoint{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	default:
		metrics.ExternalCalls.WithLabelValues(breakerName, "error").Inc()
		return domain.GeoPoint{}, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
}

type searchResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

func (c *Client) search(ctx context.Context, query string) (domain.GeoPoint, error) {
	q := url.Values{"q": {query}, "format": {"json"}, "limit": {"1"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+q.Encode(), nil)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("geocode.search: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("geocode.search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return domain.GeoPoint{}, fmt.Errorf("geocode.search: status %d", resp.StatusCode)
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return domain.GeoPoint{}, fmt.Errorf("geocode.search: decode: %w", err)
	}
	if len(results) == 0 {
		return domain.GeoPoint{}, ErrNoResult
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("geocode.search: lat: %w", err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return domain.GeoPoint{}, fmt.Errorf("geocode.search: lon: %w", err)
	}
	pt := domain.GeoPoint{Lat: lat, Lng: lng}
	if !pt.Valid() {
		return domain.GeoPoint{}, fmt.Errorf("geocode.search: out of range: %v", pt)
	}
	return pt, nil
}
