package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/pkordes/propnest/internal/metrics"
	"github.com/pkordes/propnest/internal/middleware"
)

// TestMetricsHandler_LabelsByRoutePattern verifies that two requests for
// different IDs land on the same series.
func TestMetricsHandler_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.NewMetricsHandler())
	r.Get("/api/properties/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	counter := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "/api/properties/{id}", "200")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/properties/"+id, nil))
	}

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

// TestMetricsHandler_Unmatched needs at least one route: a chi Mux with no
// routes skips its middleware stack and answers 404 directly.
func TestMetricsHandler_Unmatched(t *testing.T) {
	r := chi.NewRouter()
	r.Use(middleware.NewMetricsHandler())
	r.Get("/api/properties", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	counter := metrics.HTTPRequests.WithLabelValues(http.MethodGet, "unmatched", "404")
	before := testutil.ToFloat64(counter)

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}
