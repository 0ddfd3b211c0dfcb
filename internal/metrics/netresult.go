package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/ekklesia-erp/ekklesia/internal/offering"
)

// MonthTotals is the income and expense of one month in one currency.
type MonthTotals struct {
	Income   decimal.Decimal
	Expenses decimal.Decimal
}

// MonthlyNetResult is one row of a net result series.
type MonthlyNetResult struct {
	Month             string            `json:"month"`
	Currency          offering.Currency `json:"currency"`
	TotalIncome       decimal.Decimal   `json:"total_income"`
	TotalExpenses     decimal.Decimal   `json:"total_expenses"`
	NetResultPrevious decimal.Decimal   `json:"net_result_previous"`
	NetResult         decimal.Decimal   `json:"net_result"`
	Church            ChurchContext     `json:"church"`
}

// YearNetResult is the twelve-month series of one year.
type YearNetResult struct {
	Year   int                `json:"year"`
	Months []MonthlyNetResult `json:"months"`
}

// Closing returns December's net result.
func (y YearNetResult) Closing() decimal.Decimal {
	if len(y.Months) == 0 {
		return decimal.Zero
	}
	return y.Months[len(y.Months)-1].NetResult
}

// NetResultQuery selects the years and currency of a comparison.
type NetResultQuery struct {
	CurrentYear  int
	PreviousYear int
	Currency     offering.Currency
	// Opening seeds January of the previous year.
	Opening decimal.Decimal
}

// NetResultComparison chains the previous year into the current one.
type NetResultComparison struct {
	Currency offering.Currency `json:"currency"`
	Previous YearNetResult     `json:"previous"`
	Current  YearNetResult     `json:"current"`
}

// BucketMovements splits movements of one currency into twelve months.
// Income is every movement of type offering or income adjustment; every
// other type is an expense. Movements in other currencies are ignored.
func BucketMovements(movements []offering.Movement, currency offering.Currency) [12]MonthTotals {
	var months [12]MonthTotals
	for _, m := range movements {
		if m.Currency != currency {
			continue
		}
		idx := MonthIndex(m.Date)
		if offering.IsIncomeType(m.Type) {
			months[idx].Income = months[idx].Income.Add(m.Amount)
			continue
		}
		months[idx].Expenses = months[idx].Expenses.Add(m.Amount)
	}
	return months
}

// netCarry is the state threaded through the fold.
type netCarry struct {
	previousNet decimal.Decimal
}

func (c netCarry) step(totals MonthTotals) (MonthlyNetResult, netCarry) {
	net := totals.Income.Add(c.previousNet).Sub(totals.Expenses)
	row := MonthlyNetResult{
		TotalIncome:       totals.Income,
		TotalExpenses:     totals.Expenses,
		NetResultPrevious: c.previousNet,
		NetResult:         net,
	}
	return row, netCarry{previousNet: net}
}

// FoldNetResult scans the months in calendar order. Each month's previous
// net result is the net result of the month before it; January starts
// from opening.
func FoldNetResult(opening decimal.Decimal, months [12]MonthTotals, currency offering.Currency, church ChurchContext) []MonthlyNetResult {
	out := make([]MonthlyNetResult, 0, len(months))
	carry := netCarry{previousNet: opening}
	for i, totals := range months {
		var row MonthlyNetResult
		row, carry = carry.step(totals)
		row.Month = MonthNames[i]
		row.Currency = currency
		row.Church = church
		out = append(out, row)
	}
	return out
}

// NetResultSeries builds both years' series. The previous year is folded
// from q.Opening and its December closes into January of the current year.
func NetResultSeries(q NetResultQuery, current, previous []offering.Movement) NetResultComparison {
	church := firstMovementChurch(current)
	if church == (ChurchContext{}) {
		church = firstMovementChurch(previous)
	}
	prev := YearNetResult{
		Year:   q.PreviousYear,
		Months: FoldNetResult(q.Opening, BucketMovements(previous, q.Currency), q.Currency, church),
	}
	curr := YearNetResult{
		Year:   q.CurrentYear,
		Months: FoldNetResult(prev.Closing(), BucketMovements(current, q.Currency), q.Currency, church),
	}
	return NetResultComparison{Currency: q.Currency, Previous: prev, Current: curr}
}

func firstMovementChurch(movements []offering.Movement) ChurchContext {
	for _, m := range movements {
		if m.Church != nil {
			return churchContext(m.Church)
		}
	}
	return ChurchContext{}
}
