package svg

import (
	"fmt"
	"html/template"

	"github.com/ekklesia-erp/ekklesia/internal/metrics"
)

// NetResultLine plots the monthly net result of both years of a comparison.
func NetResultLine(cmp metrics.NetResultComparison) (template.HTML, error) {
	labels, previous := netSeries(cmp.Previous, func(m metrics.MonthlyNetResult) float64 { return m.NetResult.InexactFloat64() })
	_, current := netSeries(cmp.Current, func(m metrics.MonthlyNetResult) float64 { return m.NetResult.InexactFloat64() })
	if len(previous) != len(current) {
		return "", fmt.Errorf("svg: years have %d and %d months", len(previous), len(current))
	}
	return Line(DefaultWidth, DefaultHeight, labels, []Series{
		{Label: fmt.Sprint(cmp.Previous.Year), Values: previous, Color: "#94a3b8"},
		{Label: fmt.Sprint(cmp.Current.Year), Values: current},
	}, Opts{
		Title:       fmt.Sprintf("Resultado neto %s", cmp.Currency),
		Description: fmt.Sprintf("Resultado neto mensual %d frente a %d", cmp.Current.Year, cmp.Previous.Year),
		ShowDots:    true,
	})
}

// IncomeExpenseBars compares monthly income with monthly expenses of one year.
func IncomeExpenseBars(year metrics.YearNetResult, currency string) (template.HTML, error) {
	labels, income := netSeries(year, func(m metrics.MonthlyNetResult) float64 { return m.TotalIncome.InexactFloat64() })
	_, expenses := netSeries(year, func(m metrics.MonthlyNetResult) float64 { return m.TotalExpenses.InexactFloat64() })
	return Bars(DefaultWidth, DefaultHeight, labels, []Series{
		{Label: "Ingresos", Values: income, Color: "#16a34a"},
		{Label: "Salidas", Values: expenses, Color: "#dc2626"},
	}, Opts{
		Title:       fmt.Sprintf("Ingresos y salidas %d %s", year.Year, currency),
		Description: "Ingresos y salidas por mes",
	})
}

func netSeries(year metrics.YearNetResult, value func(metrics.MonthlyNetResult) float64) ([]string, []float64) {
	labels := make([]string, 0, len(year.Months))
	values := make([]float64, 0, len(year.Months))
	for _, m := range year.Months {
		labels = append(labels, abbreviate(m.Month))
		values = append(values, value(m))
	}
	return labels, values
}

func abbreviate(month string) string {
	r := []rune(month)
	if len(r) <= 3 {
		return month
	}
	return string(r[:3])
}
