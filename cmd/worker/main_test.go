package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ekklesia-erp/ekklesia/internal/observability"
	_ "github.com/ekklesia-erp/ekklesia/testing"
)

func TestMainSkipsStartupInTestMode(t *testing.T) {
	main()
}

func TestMetricsRouterServesScrapeEndpoint(t *testing.T) {
	metrics := observability.NewMetrics()
	metrics.Jobs().CacheBumped()

	rr := httptest.NewRecorder()
	metricsRouter(metrics).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/internal/prometheus", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ekklesia_cache_bumps_total 1")
}
