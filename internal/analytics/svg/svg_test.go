package svg

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ekklesia-erp/ekklesia/internal/metrics"
)

func TestLineProducesOnePathPerSeries(t *testing.T) {
	html, err := Line(400, 200, []string{"Ene", "Feb", "Mar"}, []Series{
		{Label: "2024", Values: []float64{100, -50, 150}},
		{Label: "2025", Values: []float64{120, 80, 90}},
	}, Opts{Title: "Resultado neto", ShowDots: true})
	if err != nil {
		t.Fatalf("line renderer error: %v", err)
	}
	output := string(html)
	if !strings.HasPrefix(output, "<svg") {
		t.Fatalf("expected svg output, got %s", output)
	}
	if got := strings.Count(output, "<path"); got != 2 {
		t.Fatalf("expected 2 paths, got %d", got)
	}
	if got := strings.Count(output, "<circle"); got != 6 {
		t.Fatalf("expected 6 dots, got %d", got)
	}
	if !strings.Contains(output, `aria-labelledby="resultado-neto-line-title resultado-neto-line-desc"`) {
		t.Fatalf("expected accessibility attributes in %s", output)
	}
}

func TestBarsProducesOneRectPerValue(t *testing.T) {
	html, err := Bars(420, 220, []string{"Ene", "Feb"}, []Series{
		{Label: "Ingresos", Values: []float64{500, 600}},
		{Label: "Salidas", Values: []float64{300, -20}},
	}, Opts{Title: "Flujo"})
	if err != nil {
		t.Fatalf("bars renderer error: %v", err)
	}
	output := string(html)
	// Four bars plus two legend swatches.
	if got := strings.Count(output, "<rect"); got != 6 {
		t.Fatalf("expected 6 rects, got %d", got)
	}
	if !strings.Contains(output, "Ingresos") {
		t.Fatalf("expected legend label")
	}
}

func TestChartsRejectMismatchedSeries(t *testing.T) {
	_, err := Line(0, 0, []string{"Ene"}, []Series{{Label: "x", Values: []float64{1, 2}}}, Opts{})
	if !errors.Is(err, errSeriesShape) {
		t.Fatalf("expected shape error, got %v", err)
	}
	if _, err := Bars(0, 0, nil, []Series{{Label: "x"}}, Opts{}); !errors.Is(err, errNoLabels) {
		t.Fatalf("expected labels error, got %v", err)
	}
	if _, err := Line(0, 0, []string{"Ene"}, nil, Opts{}); !errors.Is(err, errNoSeries) {
		t.Fatalf("expected series error, got %v", err)
	}
	if _, err := Line(40, 40, []string{"Ene"}, []Series{{Values: []float64{1}}}, Opts{}); !errors.Is(err, errTooSmall) {
		t.Fatalf("expected viewport error, got %v", err)
	}
}

func TestNetResultCharts(t *testing.T) {
	year := func(y int, net string) metrics.YearNetResult {
		out := metrics.YearNetResult{Year: y}
		for _, name := range []string{"Enero", "Febrero"} {
			out.Months = append(out.Months, metrics.MonthlyNetResult{
				Month:         name,
				TotalIncome:   decimal.RequireFromString("100"),
				TotalExpenses: decimal.RequireFromString("40"),
				NetResult:     decimal.RequireFromString(net),
			})
		}
		return out
	}
	cmp := metrics.NetResultComparison{Currency: "PEN", Previous: year(2024, "10"), Current: year(2025, "70")}

	line, err := NetResultLine(cmp)
	if err != nil {
		t.Fatalf("net result line: %v", err)
	}
	if !strings.Contains(string(line), "Resultado neto PEN") || !strings.Contains(string(line), ">Ene<") {
		t.Fatalf("unexpected line chart %s", line)
	}

	bars, err := IncomeExpenseBars(cmp.Current, "PEN")
	if err != nil {
		t.Fatalf("income expense bars: %v", err)
	}
	if !strings.Contains(string(bars), "Salidas") {
		t.Fatalf("expected expenses legend")
	}
}
