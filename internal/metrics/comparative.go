package metrics

import (
	"github.com/ekklesia-erp/ekklesia/internal/offering"
)

// TypeTotals is a per-currency accumulation for one comparative key.
type TypeTotals struct {
	Month        string         `json:"month,omitempty"`
	Type         string         `json:"type,omitempty"`
	SubType      string         `json:"sub_type,omitempty"`
	Totals       CurrencyTotals `json:"totals"`
	RecordsCount int            `json:"records_count"`
	Church       ChurchContext  `json:"church"`
}

type typeKey struct {
	month   int
	kind    string
	subType string
}

func comparative[L offering.Ledger](records []L, key func(L) typeKey, label func(L) TypeTotals) []TypeTotals {
	groups := Group(records, key,
		func(r L) TypeTotals {
			agg := label(r)
			agg.Church = churchContext(r.OwningChurch())
			agg.Totals.Add(r.Money())
			agg.RecordsCount = 1
			return agg
		},
		func(agg *TypeTotals, r L) {
			agg.Totals.Add(r.Money())
			agg.RecordsCount++
		},
	)
	return groups.Values()
}

// GeneralComparative accumulates records per type, in first-seen order.
func GeneralComparative[L offering.Ledger](records []L) []TypeTotals {
	return comparative(records,
		func(r L) typeKey { return typeKey{kind: r.LedgerType()} },
		func(r L) TypeTotals { return TypeTotals{Type: r.LedgerType()} },
	)
}

// ComparativeByType accumulates records per type and sub-type.
func ComparativeByType[L offering.Ledger](records []L) []TypeTotals {
	return comparative(records,
		func(r L) typeKey { return typeKey{kind: r.LedgerType(), subType: r.LedgerSubType()} },
		func(r L) TypeTotals { return TypeTotals{Type: r.LedgerType(), SubType: r.LedgerSubType()} },
	)
}

// ComparativeByMonthAndType accumulates records per month and type,
// ordered chronologically.
func ComparativeByMonthAndType[L offering.Ledger](records []L) []TypeTotals {
	out := comparative(records,
		func(r L) typeKey { return typeKey{month: MonthIndex(r.OccurredOn()), kind: r.LedgerType()} },
		func(r L) TypeTotals {
			return TypeTotals{Month: MonthNameOf(r.OccurredOn()), Type: r.LedgerType()}
		},
	)
	SortByMonth(out, func(t TypeTotals) string { return t.Month })
	return out
}

// ComparativeByMonthAndSubType accumulates records per month and
// sub-type, ordered chronologically.
func ComparativeByMonthAndSubType[L offering.Ledger](records []L) []TypeTotals {
	out := comparative(records,
		func(r L) typeKey { return typeKey{month: MonthIndex(r.OccurredOn()), subType: r.LedgerSubType()} },
		func(r L) TypeTotals {
			return TypeTotals{Month: MonthNameOf(r.OccurredOn()), Type: r.LedgerType(), SubType: r.LedgerSubType()}
		},
	)
	SortByMonth(out, func(t TypeTotals) string { return t.Month })
	return out
}
