package metrics

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ekklesia-erp/ekklesia/internal/membership"
	"github.com/ekklesia-erp/ekklesia/internal/offering"
)

// TopFamilyGroupsLimit bounds the family group ranking.
const TopFamilyGroupsLimit = 10

// FamilyGroupOfferings accumulates the offerings of one family group.
type FamilyGroupOfferings struct {
	FamilyGroupID   uuid.UUID      `json:"family_group_id"`
	FamilyGroupCode string         `json:"family_group_code"`
	FamilyGroupName string         `json:"family_group_name"`
	Zone            string         `json:"zone"`
	Totals          CurrencyTotals `json:"totals"`
	LastDate        time.Time      `json:"last_date"`
	Church          ChurchContext  `json:"church"`

	group *membership.FamilyGroup
}

func groupIncomesByFamilyGroup(incomes []offering.Income) []FamilyGroupOfferings {
	attributed := make([]offering.Income, 0, len(incomes))
	for _, inc := range incomes {
		if inc.FamilyGroup != nil {
			attributed = append(attributed, inc)
		}
	}
	groups := Group(attributed,
		func(inc offering.Income) uuid.UUID { return inc.FamilyGroup.ID },
		func(inc offering.Income) FamilyGroupOfferings {
			fg := inc.FamilyGroup
			agg := FamilyGroupOfferings{
				FamilyGroupID:   fg.ID,
				FamilyGroupCode: fg.FamilyGroupCode,
				FamilyGroupName: fg.FamilyGroupName,
				Zone:            zoneName(fg.Zone),
				LastDate:        inc.Date,
				Church:          churchContext(fg.Church),
				group:           fg,
			}
			if fg.Church == nil {
				agg.Church = churchContext(inc.Church)
			}
			agg.Totals.Add(inc.Amount, inc.Currency)
			return agg
		},
		func(agg *FamilyGroupOfferings, inc offering.Income) {
			agg.Totals.Add(inc.Amount, inc.Currency)
			if inc.Date.After(agg.LastDate) {
				agg.LastDate = inc.Date
			}
		},
	)
	return groups.Values()
}

// RankFamilyGroupOfferings orders family groups by the unconverted sum of
// their PEN, USD and EUR offerings, descending, and keeps the first
// TopFamilyGroupsLimit. Equal sums keep their input order. The sort key
// mixes currencies and is a display heuristic, not a financial figure.
func RankFamilyGroupOfferings(incomes []offering.Income) []FamilyGroupOfferings {
	ranked := groupIncomesByFamilyGroup(incomes)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Totals.Combined().GreaterThan(ranked[j].Totals.Combined())
	})
	if len(ranked) > TopFamilyGroupsLimit {
		ranked = ranked[:TopFamilyGroupsLimit]
	}
	return ranked
}
