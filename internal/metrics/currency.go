package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/ekklesia-erp/ekklesia/internal/offering"
)

// CurrencyTotals accumulates amounts per currency. PEN, USD and EUR are
// kept apart; Total is the raw sum of the three buckets and must never be
// presented as money.
type CurrencyTotals struct {
	PEN   decimal.Decimal `json:"accumulated_pen"`
	USD   decimal.Decimal `json:"accumulated_usd"`
	EUR   decimal.Decimal `json:"accumulated_eur"`
	Total decimal.Decimal `json:"total_amount"`
}

// Add folds one amount into the bucket of its currency. Unknown or missing
// currencies contribute nothing.
func (t *CurrencyTotals) Add(amount decimal.Decimal, currency offering.Currency) {
	switch currency {
	case offering.CurrencyPEN:
		t.PEN = t.PEN.Add(amount)
	case offering.CurrencyUSD:
		t.USD = t.USD.Add(amount)
	case offering.CurrencyEUR:
		t.EUR = t.EUR.Add(amount)
	default:
		return
	}
	t.Total = t.Total.Add(amount)
}

// Merge adds every field of other into t.
func (t *CurrencyTotals) Merge(other CurrencyTotals) {
	t.PEN = t.PEN.Add(other.PEN)
	t.USD = t.USD.Add(other.USD)
	t.EUR = t.EUR.Add(other.EUR)
	t.Total = t.Total.Add(other.Total)
}

// Of returns the accumulated amount for one currency.
func (t CurrencyTotals) Of(currency offering.Currency) decimal.Decimal {
	switch currency {
	case offering.CurrencyPEN:
		return t.PEN
	case offering.CurrencyUSD:
		return t.USD
	case offering.CurrencyEUR:
		return t.EUR
	}
	return decimal.Zero
}

// Combined sums the three currency buckets without conversion. It is a
// ranking heuristic only.
func (t CurrencyTotals) Combined() decimal.Decimal {
	return t.PEN.Add(t.USD).Add(t.EUR)
}

// Accumulate sums a batch of ledger records.
func Accumulate[L offering.Ledger](records []L) CurrencyTotals {
	var totals CurrencyTotals
	for _, r := range records {
		totals.Add(r.Money())
	}
	return totals
}
