package analytichttp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ekklesia-erp/ekklesia/internal/analytics"
	"github.com/ekklesia-erp/ekklesia/internal/analytics/export"
	"github.com/ekklesia-erp/ekklesia/internal/analytics/svg"
	"github.com/ekklesia-erp/ekklesia/internal/metrics"
	"github.com/ekklesia-erp/ekklesia/internal/offering"
	"github.com/ekklesia-erp/ekklesia/internal/platform/httpx"
)

const requestTimeout = 5 * time.Second

// AnalyticsService defines the report contract used by the handler.
type AnalyticsService interface {
	Query(ctx context.Context, q analytics.Query) (json.RawMessage, error)
	Dashboard(ctx context.Context, filter analytics.DashboardFilter) (analytics.Dashboard, error)
	NetResult(ctx context.Context, churchID uuid.UUID, year int, currency offering.Currency) (metrics.NetResultComparison, error)
}

// Handler serves metrics queries, the dashboard and exports.
type Handler struct {
	logger  *slog.Logger
	service AnalyticsService
	bufPool sync.Pool
	now     func() time.Time
}

// NewHandler constructs the analytics HTTP handler.
func NewHandler(logger *slog.Logger, service AnalyticsService) *Handler {
	h := &Handler{
		logger:  logger,
		service: service,
		now:     time.Now,
	}
	h.bufPool.New = func() any { return new(bytes.Buffer) }
	return h
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

func (h *Handler) handleSearchTypes(w http.ResponseWriter, r *http.Request) {
	types := analytics.SearchTypes()
	names := make([]string, 0, len(types))
	for _, st := range types {
		names = append(names, string(st))
	}
	sort.Strings(names)
	httpx.JSON(w, http.StatusOK, map[string][]string{"search_types": names})
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	st, err := analytics.ParseSearchType(chi.URLParam(r, "searchType"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	q, err := h.parseQuery(r, st)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	payload, err := h.service.Query(ctx, q)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.RawJSON(w, http.StatusOK, payload)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	filter, err := h.parseDashboardFilter(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	dashboard, err := h.service.Dashboard(ctx, filter)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dashboard)
}

func (h *Handler) handleNetResultCSV(w http.ResponseWriter, r *http.Request) {
	h.exportNetResult(w, r, "csv", "text/csv; charset=utf-8", func(buf *bytes.Buffer, cmp metrics.NetResultComparison) error {
		return export.WriteNetResultCSV(buf, cmp)
	})
}

func (h *Handler) handleNetResultXLSX(w http.ResponseWriter, r *http.Request) {
	h.exportNetResult(w, r, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", func(buf *bytes.Buffer, cmp metrics.NetResultComparison) error {
		return export.WriteNetResultXLSX(buf, cmp)
	})
}

func (h *Handler) handleNetResultSVG(w http.ResponseWriter, r *http.Request) {
	chart := strings.TrimSpace(r.URL.Query().Get("chart"))
	if chart != "" && chart != "line" && chart != "bars" {
		h.respondError(w, r, validationError{field: "chart"})
		return
	}
	h.exportNetResult(w, r, "", "image/svg+xml", func(buf *bytes.Buffer, cmp metrics.NetResultComparison) error {
		var (
			out template.HTML
			err error
		)
		if chart == "bars" {
			out, err = svg.IncomeExpenseBars(cmp.Current, string(cmp.Currency))
		} else {
			out, err = svg.NetResultLine(cmp)
		}
		if err != nil {
			return err
		}
		_, err = buf.WriteString(string(out))
		return err
	})
}

// exportNetResult loads the comparison and streams it through write. An
// empty ext serves the body inline.
func (h *Handler) exportNetResult(w http.ResponseWriter, r *http.Request, ext, contentType string, write func(*bytes.Buffer, metrics.NetResultComparison) error) {
	q, err := h.parseQuery(r, analytics.IncomeAndExpensesComparative)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	cmp, err := h.service.NetResult(ctx, q.ChurchID, q.Year, q.Currency)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	buf := h.bufPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer func() {
		buf.Reset()
		h.bufPool.Put(buf)
	}()
	if err := write(buf, cmp); err != nil {
		h.handleServerError(w, "write net result "+contentType, err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	if ext != "" {
		filename := fmt.Sprintf("resultado-neto-%d-%s.%s", q.Year, strings.ToLower(string(q.Currency)), ext)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logError("stream export", err)
	}
}

func (h *Handler) parseQuery(r *http.Request, st analytics.SearchType) (analytics.Query, error) {
	values := r.URL.Query()
	churchID, err := parseChurchID(values.Get("church_id"))
	if err != nil {
		return analytics.Query{}, err
	}
	year := h.now().UTC().Year()
	if raw := strings.TrimSpace(values.Get("year")); raw != "" {
		if year, err = strconv.Atoi(raw); err != nil {
			return analytics.Query{}, validationError{field: "year"}
		}
	}
	limit, err := parseOptionalInt(values.Get("limit"), "limit")
	if err != nil {
		return analytics.Query{}, err
	}
	q := analytics.Query{
		SearchType: st,
		ChurchID:   churchID,
		Year:       year,
		StartMonth: strings.TrimSpace(values.Get("start_month")),
		EndMonth:   strings.TrimSpace(values.Get("end_month")),
		Order:      metrics.PopulationOrder(strings.ToLower(strings.TrimSpace(values.Get("order")))),
		Limit:      limit,
	}
	if raw := strings.TrimSpace(values.Get("currency")); raw != "" {
		currency, ok := offering.ParseCurrency(raw)
		if !ok {
			return analytics.Query{}, validationError{field: "currency"}
		}
		q.Currency = currency
	}
	return q, nil
}

func (h *Handler) parseDashboardFilter(r *http.Request) (analytics.DashboardFilter, error) {
	values := r.URL.Query()
	churchID, err := parseChurchID(values.Get("church_id"))
	if err != nil {
		return analytics.DashboardFilter{}, err
	}
	filter := analytics.DashboardFilter{ChurchID: churchID, AsOf: h.now().UTC()}
	if raw := strings.TrimSpace(values.Get("as_of")); raw != "" {
		asOf, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return analytics.DashboardFilter{}, validationError{field: "as_of"}
		}
		filter.AsOf = asOf
	}
	if filter.Sundays, err = parseOptionalInt(values.Get("sundays"), "sundays"); err != nil {
		return analytics.DashboardFilter{}, err
	}
	if filter.Limit, err = parseOptionalInt(values.Get("limit"), "limit"); err != nil {
		return analytics.DashboardFilter{}, err
	}
	return filter, nil
}

func parseChurchID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, validationError{field: "church_id"}
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, validationError{field: "church_id"}
	}
	return id, nil
}

func parseOptionalInt(raw, field string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, validationError{field: field}
	}
	return v, nil
}

// respondError maps service errors onto problem responses.
func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr validationError
	switch {
	case errors.As(err, &vErr),
		errors.Is(err, analytics.ErrInvalidQuery),
		errors.Is(err, metrics.ErrInvalidMonthName):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, err.Error()))
	case errors.Is(err, analytics.ErrUnknownSearchType),
		errors.Is(err, analytics.ErrChurchNotFound):
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrNotFound, err.Error()))
	case errors.Is(err, context.DeadlineExceeded):
		h.logError("request timeout", err, slog.String("path", r.URL.Path))
		httpx.RespondError(w, httpx.ErrUnavailable)
	default:
		h.logError("analytics request", err, slog.String("path", r.URL.Path))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) handleServerError(w http.ResponseWriter, context string, err error) {
	h.logError(context, err)
	httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
}

func (h *Handler) logError(context string, err error, attrs ...any) {
	if h.logger != nil {
		h.logger.Error(context, append([]any{slog.Any("error", err)}, attrs...)...)
	}
}

type validationError struct {
	field string
}

func (v validationError) Error() string {
	return fmt.Sprintf("invalid %s", v.field)
}
