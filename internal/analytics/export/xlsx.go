package export

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/ekklesia-erp/ekklesia/internal/metrics"
)

// moneyFormat is the built-in "#,##0.00" number format.
const moneyFormat = 4

// WriteNetResultXLSX writes one sheet per year plus a summary sheet holding
// each year's closing net result.
func WriteNetResultXLSX(w io.Writer, cmp metrics.NetResultComparison) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
	if err != nil {
		return fmt.Errorf("export: money style: %w", err)
	}

	const summary = "Resumen"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return fmt.Errorf("export: rename sheet: %w", err)
	}
	if err := f.SetSheetRow(summary, "A1", &[]any{"Año", "Moneda", "Cierre"}); err != nil {
		return err
	}
	for i, year := range []metrics.YearNetResult{cmp.Previous, cmp.Current} {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(summary, cell, &[]any{year.Year, string(cmp.Currency), year.Closing().InexactFloat64()}); err != nil {
			return err
		}
		if err := writeYearSheet(f, year, header, money); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(summary, "A1", "C1", header); err != nil {
		return err
	}
	if err := f.SetCellStyle(summary, "C2", "C3", money); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write xlsx: %w", err)
	}
	return nil
}

func writeYearSheet(f *excelize.File, year metrics.YearNetResult, header, money int) error {
	sheet := strconv.Itoa(year.Year)
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("export: sheet %s: %w", sheet, err)
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{"Mes", "Moneda", "Ingresos", "Salidas", "Resultado anterior", "Resultado neto"}); err != nil {
		return err
	}
	for i, m := range year.Months {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []any{
			m.Month,
			string(m.Currency),
			m.TotalIncome.InexactFloat64(),
			m.TotalExpenses.InexactFloat64(),
			m.NetResultPrevious.InexactFloat64(),
			m.NetResult.InexactFloat64(),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", header); err != nil {
		return err
	}
	if len(year.Months) > 0 {
		last, _ := excelize.CoordinatesToCellName(6, len(year.Months)+1)
		if err := f.SetCellStyle(sheet, "C2", last, money); err != nil {
			return err
		}
	}
	return f.SetColWidth(sheet, "A", "F", 18)
}
