// Package export writes aggregate reports to downloadable formats.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/ekklesia-erp/ekklesia/internal/metrics"
)

var netResultHeader = []string{
	"Año", "Mes", "Moneda", "Ingresos", "Salidas", "Resultado anterior", "Resultado neto",
}

// WriteNetResultCSV writes the previous year followed by the current year,
// one row per month.
func WriteNetResultCSV(w io.Writer, cmp metrics.NetResultComparison) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write(netResultHeader); err != nil {
		return err
	}
	for _, year := range []metrics.YearNetResult{cmp.Previous, cmp.Current} {
		for _, row := range netResultRows(year) {
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTypeTotalsCSV writes comparative rows with one column per currency.
func WriteTypeTotalsCSV(w io.Writer, rows []metrics.TypeTotals) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()
	if err := writer.Write([]string{"Mes", "Tipo", "Subtipo", "PEN", "USD", "EUR", "Registros"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write([]string{
			r.Month,
			r.Type,
			r.SubType,
			r.Totals.PEN.StringFixed(2),
			r.Totals.USD.StringFixed(2),
			r.Totals.EUR.StringFixed(2),
			strconv.Itoa(r.RecordsCount),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func netResultRows(year metrics.YearNetResult) [][]string {
	rows := make([][]string, 0, len(year.Months))
	for _, m := range year.Months {
		rows = append(rows, []string{
			strconv.Itoa(year.Year),
			m.Month,
			string(m.Currency),
			m.TotalIncome.StringFixed(2),
			m.TotalExpenses.StringFixed(2),
			m.NetResultPrevious.StringFixed(2),
			m.NetResult.StringFixed(2),
		})
	}
	return rows
}
