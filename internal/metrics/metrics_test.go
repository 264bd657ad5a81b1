package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/pkordes/propnest/internal/metrics"
)

func TestObserveHTTP(t *testing.T) {
	before := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/api/properties/", "200"))

	metrics.ObserveHTTP("GET", "/api/properties/", 200, 15*time.Millisecond)

	after := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("GET", "/api/properties/", "200"))
	assert.Equal(t, before+1, after)
}

func TestObserveSlugProbes(t *testing.T) {
	before := testutil.CollectAndCount(metrics.SlugProbes)

	metrics.ObserveSlugProbes("metrics_test_kind", 3)

	assert.Equal(t, before+1, testutil.CollectAndCount(metrics.SlugProbes))
}
