package metrics

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ekklesia-erp/ekklesia/internal/offering"
)

// DateTotals accumulates the records of one calendar date.
type DateTotals struct {
	Date         string         `json:"date"`
	Totals       CurrencyTotals `json:"totals"`
	RecordsCount int            `json:"records_count"`
	Church       ChurchContext  `json:"church"`

	at time.Time
}

// IncomeByDate totals records per exact date in chronological order.
func IncomeByDate[L offering.Ledger](records []L) []DateTotals {
	out := Group(records,
		func(r L) string { return r.OccurredOn().UTC().Format(dateLayout) },
		func(r L) DateTotals {
			day := r.OccurredOn().UTC().Truncate(24 * time.Hour)
			agg := DateTotals{Date: day.Format(dateLayout), RecordsCount: 1, Church: churchContext(r.OwningChurch()), at: day}
			agg.Totals.Add(r.Money())
			return agg
		},
		func(agg *DateTotals, r L) {
			agg.Totals.Add(r.Money())
			agg.RecordsCount++
		},
	).Values()
	sort.SliceStable(out, func(i, j int) bool { return out[i].at.Before(out[j].at) })
	return out
}

// IncomeByFamilyGroup totals incomes per family group ordered by code.
// Incomes without a family group are left out.
func IncomeByFamilyGroup(incomes []offering.Income) []FamilyGroupOfferings {
	out := groupIncomesByFamilyGroup(incomes)
	sortByCode(out, func(f FamilyGroupOfferings) string { return f.FamilyGroupCode })
	return out
}

// ZoneOfferings is the income of one zone, used for fasting and vigils.
type ZoneOfferings struct {
	Zone       string         `json:"zone"`
	Copastor   string         `json:"copastor"`
	Supervisor string         `json:"supervisor"`
	Totals     CurrencyTotals `json:"totals"`
	LastDate   time.Time      `json:"last_date"`
	Church     ChurchContext  `json:"church"`
}

// IncomeByZone totals incomes per zone. Incomes without a zone share the
// no-zone bucket.
func IncomeByZone(incomes []offering.Income) []ZoneOfferings {
	merge := func(agg *ZoneOfferings, inc offering.Income) {
		agg.Totals.Add(inc.Amount, inc.Currency)
		if inc.Date.After(agg.LastDate) {
			agg.LastDate = inc.Date
		}
	}
	return Group(incomes,
		func(inc offering.Income) string { return zoneName(inc.Zone) },
		func(inc offering.Income) ZoneOfferings {
			agg := ZoneOfferings{
				Zone:       zoneName(inc.Zone),
				Copastor:   zoneCopastor(inc.Zone),
				Supervisor: zoneSupervisor(inc.Zone),
				LastDate:   inc.Date,
				Church:     churchContext(inc.Church),
			}
			agg.Totals.Add(inc.Amount, inc.Currency)
			return agg
		},
		merge,
	).Values()
}

// ContributorKind tells members and external donors apart.
type ContributorKind string

const (
	ContributorMember ContributorKind = "member"
	ContributorDonor  ContributorKind = "external_donor"
)

// ContributorOfferings is the income given by one person.
type ContributorOfferings struct {
	ContributorID uuid.UUID       `json:"contributor_id"`
	Kind          ContributorKind `json:"kind"`
	Name          string          `json:"name"`
	Role          string          `json:"role,omitempty"`
	Totals        CurrencyTotals  `json:"totals"`
	LastDate      time.Time       `json:"last_date"`
	Church        ChurchContext   `json:"church"`
}

type contributorKey struct {
	kind ContributorKind
	id   uuid.UUID
}

// IncomeByContributor totals incomes per member or external donor, largest
// combined amount first. Incomes attributed to neither are left out.
func IncomeByContributor(incomes []offering.Income) []ContributorOfferings {
	attributed := make([]offering.Income, 0, len(incomes))
	for _, inc := range incomes {
		if inc.Member != nil || inc.ExternalDonor != nil {
			attributed = append(attributed, inc)
		}
	}
	keyOf := func(inc offering.Income) contributorKey {
		if inc.Member != nil {
			return contributorKey{kind: ContributorMember, id: inc.Member.ID}
		}
		return contributorKey{kind: ContributorDonor, id: inc.ExternalDonor.ID}
	}
	out := Group(attributed, keyOf,
		func(inc offering.Income) ContributorOfferings {
			k := keyOf(inc)
			agg := ContributorOfferings{
				ContributorID: k.id,
				Kind:          k.kind,
				LastDate:      inc.Date,
				Church:        churchContext(inc.Church),
			}
			if inc.Member != nil {
				agg.Name = inc.Member.FullName()
				if inc.MemberRole != 0 {
					agg.Role = inc.MemberRole.String()
				}
			} else {
				agg.Name = inc.ExternalDonor.FullName()
			}
			agg.Totals.Add(inc.Amount, inc.Currency)
			return agg
		},
		func(agg *ContributorOfferings, inc offering.Income) {
			agg.Totals.Add(inc.Amount, inc.Currency)
			if inc.Date.After(agg.LastDate) {
				agg.LastDate = inc.Date
			}
		},
	).Values()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Totals.Combined().GreaterThan(out[j].Totals.Combined())
	})
	return out
}

// SubTypeTotals is the expense of one sub-type over a period.
type SubTypeTotals struct {
	SubType      string         `json:"sub_type"`
	Totals       CurrencyTotals `json:"totals"`
	RecordsCount int            `json:"records_count"`
	Church       ChurchContext  `json:"church"`
}

// ExpensesBySubType totals expenses per sub-type in first-seen order.
func ExpensesBySubType(expenses []offering.Expense) []SubTypeTotals {
	return Group(expenses,
		func(e offering.Expense) string { return e.SubType },
		func(e offering.Expense) SubTypeTotals {
			agg := SubTypeTotals{SubType: e.SubType, RecordsCount: 1, Church: churchContext(e.Church)}
			agg.Totals.Add(e.Amount, e.Currency)
			return agg
		},
		func(agg *SubTypeTotals, e offering.Expense) {
			agg.Totals.Add(e.Amount, e.Currency)
			agg.RecordsCount++
		},
	).Values()
}

// FilterIncomes keeps incomes of the given sub-types; no sub-types keeps
// everything.
func FilterIncomes(incomes []offering.Income, subTypes ...string) []offering.Income {
	if len(subTypes) == 0 {
		return incomes
	}
	keep := make(map[string]struct{}, len(subTypes))
	for _, s := range subTypes {
		keep[s] = struct{}{}
	}
	out := make([]offering.Income, 0, len(incomes))
	for _, inc := range incomes {
		if _, ok := keep[inc.SubType]; ok {
			out = append(out, inc)
		}
	}
	return out
}

// ActiveOnly keeps records whose status is active.
func ActiveOnly[L offering.Ledger](records []L) []L {
	out := make([]L, 0, len(records))
	for _, r := range records {
		if r.Status().Active() {
			out = append(out, r)
		}
	}
	return out
}
