package analytichttp

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/ekklesia-erp/ekklesia/internal/platform/httpx"
)

// ExportRate limits export requests per client per minute.
const ExportRate = 10

// MountRoutes registers the metrics endpoints onto the router.
func (h *Handler) MountRoutes(r chi.Router) {
	if h == nil {
		return
	}
	limiter := httprate.Limit(ExportRate, time.Minute,
		httprate.WithKeyFuncs(rateLimitKey),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			httpx.Problem(w, http.StatusTooManyRequests, http.StatusText(http.StatusTooManyRequests), "export rate limit exceeded")
		}),
	)

	r.Get("/api/dashboard", h.handleDashboard)
	r.Get("/api/metrics", h.handleSearchTypes)
	r.Group(func(gr chi.Router) {
		gr.Use(limiter)
		gr.Get("/api/metrics/net-result.csv", h.handleNetResultCSV)
		gr.Get("/api/metrics/net-result.xlsx", h.handleNetResultXLSX)
		gr.Get("/api/metrics/net-result.svg", h.handleNetResultSVG)
	})
	r.Get("/api/metrics/{searchType}", h.handleQuery)
}

func rateLimitKey(r *http.Request) (string, error) {
	key, err := httprate.KeyByIP(r)
	if err != nil {
		return "", err
	}
	return "ip:" + key, nil
}
