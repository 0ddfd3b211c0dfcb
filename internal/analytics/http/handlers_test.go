package analytichttp

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ekklesia-erp/ekklesia/internal/analytics"
	"github.com/ekklesia-erp/ekklesia/internal/metrics"
	"github.com/ekklesia-erp/ekklesia/internal/offering"
	"github.com/ekklesia-erp/ekklesia/internal/platform/httpx"
)

const churchID = "6f1d8a52-3b0e-4a8c-a7c1-2e9b5d4f6a10"

type stubService struct {
	lastQuery  analytics.Query
	lastFilter analytics.DashboardFilter
	payload    json.RawMessage
	queryErr   error
	dashboard  analytics.Dashboard
	netResult  metrics.NetResultComparison
	netErr     error
	netCalls   int
}

func (s *stubService) Query(ctx context.Context, q analytics.Query) (json.RawMessage, error) {
	s.lastQuery = q
	return s.payload, s.queryErr
}

func (s *stubService) Dashboard(ctx context.Context, filter analytics.DashboardFilter) (analytics.Dashboard, error) {
	s.lastFilter = filter
	return s.dashboard, nil
}

func (s *stubService) NetResult(ctx context.Context, churchID uuid.UUID, year int, currency offering.Currency) (metrics.NetResultComparison, error) {
	s.netCalls++
	return s.netResult, s.netErr
}

func sampleNetResult() metrics.NetResultComparison {
	year := func(y int, net string) metrics.YearNetResult {
		out := metrics.YearNetResult{Year: y}
		for _, name := range metrics.MonthNames {
			out.Months = append(out.Months, metrics.MonthlyNetResult{
				Month:     name,
				Currency:  offering.CurrencyPEN,
				NetResult: decimal.RequireFromString(net),
			})
		}
		return out
	}
	return metrics.NetResultComparison{Currency: offering.CurrencyPEN, Previous: year(2024, "10"), Current: year(2025, "70")}
}

func newTestRouter(t *testing.T, service *stubService) http.Handler {
	t.Helper()
	handler := NewHandler(nil, service)
	handler.WithNow(func() time.Time { return time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC) })
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func do(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	req.RemoteAddr = "10.0.0.7:4321"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestQueryPassesParameters(t *testing.T) {
	service := &stubService{payload: json.RawMessage(`{"total":3}`)}
	router := newTestRouter(t, service)

	rr := do(t, router, "/api/metrics/offering_income_by_proportion?church_id="+churchID+"&year=2024&start_month=Marzo&end_month=Junio&currency=usd&limit=5")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if rr.Body.String() != `{"total":3}` {
		t.Fatalf("unexpected body %s", rr.Body.String())
	}
	q := service.lastQuery
	if q.SearchType != analytics.IncomeByProportion || q.Year != 2024 || q.Limit != 5 {
		t.Fatalf("unexpected query %+v", q)
	}
	if q.StartMonth != "Marzo" || q.EndMonth != "Junio" || q.Currency != offering.CurrencyUSD {
		t.Fatalf("unexpected months or currency %+v", q)
	}
	if q.ChurchID.String() != churchID {
		t.Fatalf("unexpected church %s", q.ChurchID)
	}
}

func TestQueryDefaultsYearToNow(t *testing.T) {
	service := &stubService{payload: json.RawMessage(`[]`)}
	router := newTestRouter(t, service)
	rr := do(t, router, "/api/metrics/members_by_category?church_id="+churchID)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if service.lastQuery.Year != 2025 {
		t.Fatalf("expected year 2025, got %d", service.lastQuery.Year)
	}
}

func TestQueryErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		target string
		err    error
		status int
	}{
		{"unknown search type", "/api/metrics/members_by_shoe_size?church_id=" + churchID, nil, http.StatusNotFound},
		{"missing church", "/api/metrics/members_by_category", nil, http.StatusBadRequest},
		{"bad church", "/api/metrics/members_by_category?church_id=abc", nil, http.StatusBadRequest},
		{"bad year", "/api/metrics/members_by_category?church_id=" + churchID + "&year=two", nil, http.StatusBadRequest},
		{"bad currency", "/api/metrics/members_by_category?church_id=" + churchID + "&currency=BTC", nil, http.StatusBadRequest},
		{"invalid month", "/api/metrics/members_by_category?church_id=" + churchID, fmt.Errorf("%w: %q", metrics.ErrInvalidMonthName, "Brumario"), http.StatusBadRequest},
		{"invalid query", "/api/metrics/members_by_category?church_id=" + churchID, fmt.Errorf("%w: year failed min", analytics.ErrInvalidQuery), http.StatusBadRequest},
		{"church not found", "/api/metrics/members_by_category?church_id=" + churchID, analytics.ErrChurchNotFound, http.StatusNotFound},
		{"timeout", "/api/metrics/members_by_category?church_id=" + churchID, context.DeadlineExceeded, http.StatusServiceUnavailable},
		{"internal", "/api/metrics/members_by_category?church_id=" + churchID, errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newTestRouter(t, &stubService{queryErr: tc.err})
			rr := do(t, router, tc.target)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rr.Code, rr.Body.String())
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/problem+json" {
				t.Fatalf("expected problem content type, got %q", ct)
			}
			var problem httpx.ProblemDetail
			if err := json.NewDecoder(rr.Body).Decode(&problem); err != nil {
				t.Fatalf("decode problem: %v", err)
			}
			if problem.Status != tc.status {
				t.Fatalf("problem status %d", problem.Status)
			}
			if tc.status == http.StatusInternalServerError && problem.Detail != "" {
				t.Fatalf("internal errors must not leak details: %q", problem.Detail)
			}
		})
	}
}

func TestDashboardParsesFilter(t *testing.T) {
	id := uuid.MustParse(churchID)
	service := &stubService{dashboard: analytics.Dashboard{ChurchID: id, AsOf: "2025-03-02"}}
	router := newTestRouter(t, service)

	rr := do(t, router, "/api/dashboard?church_id="+churchID+"&as_of=2025-03-02&sundays=4&limit=3")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	f := service.lastFilter
	if f.Sundays != 4 || f.Limit != 3 || !f.AsOf.Equal(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected filter %+v", f)
	}
	var body analytics.Dashboard
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.AsOf != "2025-03-02" || body.ChurchID != id {
		t.Fatalf("unexpected dashboard %+v", body)
	}

	rr = do(t, router, "/api/dashboard?church_id="+churchID+"&as_of=02/03/2025")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed date, got %d", rr.Code)
	}
}

func TestNetResultCSVExport(t *testing.T) {
	service := &stubService{netResult: sampleNetResult()}
	router := newTestRouter(t, service)

	rr := do(t, router, "/api/metrics/net-result.csv?church_id="+churchID+"&year=2025&currency=PEN")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if ct := rr.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type %q", ct)
	}
	if cd := rr.Header().Get("Content-Disposition"); !strings.Contains(cd, "resultado-neto-2025-pen.csv") {
		t.Fatalf("unexpected disposition %q", cd)
	}
	records, err := csv.NewReader(rr.Body).ReadAll()
	if err != nil {
		t.Fatalf("csv read error: %v", err)
	}
	if len(records) != 25 {
		t.Fatalf("expected header plus 24 months, got %d", len(records))
	}
}

func TestNetResultXLSXAndSVG(t *testing.T) {
	service := &stubService{netResult: sampleNetResult()}
	router := newTestRouter(t, service)

	rr := do(t, router, "/api/metrics/net-result.xlsx?church_id="+churchID+"&currency=PEN")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	// XLSX files are zip archives.
	if !strings.HasPrefix(rr.Body.String(), "PK") {
		t.Fatalf("expected zip payload")
	}

	rr = do(t, router, "/api/metrics/net-result.svg?church_id="+churchID+"&currency=PEN&chart=bars")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if !strings.HasPrefix(rr.Body.String(), "<svg") {
		t.Fatalf("expected svg body")
	}

	rr = do(t, router, "/api/metrics/net-result.svg?church_id="+churchID+"&currency=PEN&chart=pie")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown chart, got %d", rr.Code)
	}
}

func TestExportsAreRateLimited(t *testing.T) {
	service := &stubService{netResult: sampleNetResult()}
	router := newTestRouter(t, service)
	target := "/api/metrics/net-result.csv?church_id=" + churchID + "&currency=PEN"
	for i := 0; i < ExportRate; i++ {
		if rr := do(t, router, target); rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
	}
	if rr := do(t, router, target); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if service.netCalls != ExportRate {
		t.Fatalf("expected %d service calls, got %d", ExportRate, service.netCalls)
	}
}

func TestSearchTypesListing(t *testing.T) {
	router := newTestRouter(t, &stubService{})
	rr := do(t, router, "/api/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var body map[string][]string
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body["search_types"]) != len(analytics.SearchTypes()) {
		t.Fatalf("unexpected listing %v", body)
	}
}
