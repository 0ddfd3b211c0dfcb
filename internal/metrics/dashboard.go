package metrics

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/ekklesia-erp/ekklesia/internal/membership"
	"github.com/ekklesia-erp/ekklesia/internal/offering"
)

const dateLayout = "2006-01-02"

// ShiftOfferings splits a day's offerings by service shift.
type ShiftOfferings struct {
	Date      string         `json:"date"`
	Day       CurrencyTotals `json:"day"`
	Afternoon CurrencyTotals `json:"afternoon"`
	Church    ChurchContext  `json:"church"`

	at time.Time
}

// LastSundaysOfferings groups incomes by their exact date and splits each
// date by shift and currency. Dates come out in chronological order; when
// limit is positive only the latest limit dates are kept. Incomes without
// an afternoon shift are counted in the day shift.
func LastSundaysOfferings(incomes []offering.Income, limit int) []ShiftOfferings {
	addShift := func(agg *ShiftOfferings, inc offering.Income) {
		if inc.Shift == offering.ShiftAfternoon {
			agg.Afternoon.Add(inc.Amount, inc.Currency)
			return
		}
		agg.Day.Add(inc.Amount, inc.Currency)
	}
	groups := Group(incomes,
		func(inc offering.Income) string { return inc.Date.UTC().Format(dateLayout) },
		func(inc offering.Income) ShiftOfferings {
			day := inc.Date.UTC().Truncate(24 * time.Hour)
			agg := ShiftOfferings{Date: day.Format(dateLayout), Church: churchContext(inc.Church), at: day}
			addShift(&agg, inc)
			return agg
		},
		addShift,
	)
	out := groups.Values()
	sort.SliceStable(out, func(i, j int) bool { return out[i].at.Before(out[j].at) })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// TopFamilyGroupOffering is a ranking row with display fields.
type TopFamilyGroupOffering struct {
	FamilyGroupOfferings
	Preacher       string `json:"preacher"`
	DisciplesCount int    `json:"disciples_count"`
}

// TopFamilyGroupsOfferings decorates RankFamilyGroupOfferings with the
// preacher name and the number of pure disciples in each group.
func TopFamilyGroupsOfferings(incomes []offering.Income) []TopFamilyGroupOffering {
	ranked := RankFamilyGroupOfferings(incomes)
	out := make([]TopFamilyGroupOffering, 0, len(ranked))
	for _, row := range ranked {
		item := TopFamilyGroupOffering{FamilyGroupOfferings: row, Preacher: NoPreacherLabel}
		if row.group != nil {
			item.Preacher = leaderName(row.group.Preacher, NoPreacherLabel)
			item.DisciplesCount = len(membership.PureDisciples(row.group.Disciples))
		}
		out = append(out, item)
	}
	return out
}

// PopulationOrder selects most or least populated family groups.
type PopulationOrder string

const (
	MostPopulated  PopulationOrder = "most"
	LeastPopulated PopulationOrder = "least"
)

// FamilyGroupPopulation is a family group with its disciple count.
type FamilyGroupPopulation struct {
	FamilyGroupID   uuid.UUID     `json:"family_group_id"`
	FamilyGroupCode string        `json:"family_group_code"`
	FamilyGroupName string        `json:"family_group_name"`
	Preacher        string        `json:"preacher"`
	DisciplesCount  int           `json:"disciples_count"`
	CreatedAt       time.Time     `json:"created_at"`
	Church          ChurchContext `json:"church"`
}

// FamilyGroupsByPopulation ranks family groups by pure disciple count.
// Ties keep their input order. A non-positive limit keeps every group.
func FamilyGroupsByPopulation(groups []membership.FamilyGroup, order PopulationOrder, limit int) []FamilyGroupPopulation {
	out := make([]FamilyGroupPopulation, 0, len(groups))
	for _, g := range groups {
		out = append(out, FamilyGroupPopulation{
			FamilyGroupID:   g.ID,
			FamilyGroupCode: g.FamilyGroupCode,
			FamilyGroupName: g.FamilyGroupName,
			Preacher:        leaderName(g.Preacher, NoPreacherLabel),
			DisciplesCount:  len(membership.PureDisciples(g.Disciples)),
			CreatedAt:       g.CreatedAt,
			Church:          churchContext(g.Church),
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order == LeastPopulated {
			return out[i].DisciplesCount < out[j].DisciplesCount
		}
		return out[i].DisciplesCount > out[j].DisciplesCount
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
