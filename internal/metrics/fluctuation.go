package metrics

import (
	"time"

	"github.com/ekklesia-erp/ekklesia/internal/membership"
)

// MonthlyFluctuation is one month of new versus inactivated records.
type MonthlyFluctuation struct {
	Month         string        `json:"month"`
	NewCount      int           `json:"new_count"`
	InactiveCount int           `json:"inactive_count"`
	Church        ChurchContext `json:"church"`
}

// MemberFluctuation buckets members created in a year and members
// inactivated in that year into twelve months. A record present in both
// inputs counts in both tallies.
func MemberFluctuation(created, inactivated []membership.Member) []MonthlyFluctuation {
	church := firstChurch(created, memberChurch)
	if len(created) == 0 {
		church = firstChurch(inactivated, memberChurch)
	}
	return fluctuation(created, inactivated,
		func(m membership.Member) time.Time { return m.CreatedAt },
		func(m membership.Member) *time.Time { return m.InactivatedAt },
		church,
	)
}

// FamilyGroupFluctuation is MemberFluctuation for family groups.
func FamilyGroupFluctuation(created, inactivated []membership.FamilyGroup) []MonthlyFluctuation {
	church := firstChurch(created, familyGroupChurch)
	if len(created) == 0 {
		church = firstChurch(inactivated, familyGroupChurch)
	}
	return fluctuation(created, inactivated,
		func(g membership.FamilyGroup) time.Time { return g.CreatedAt },
		func(g membership.FamilyGroup) *time.Time { return g.InactivatedAt },
		church,
	)
}

func fluctuation[T any](created, inactivated []T, createdAt func(T) time.Time, inactivatedAt func(T) *time.Time, church ChurchContext) []MonthlyFluctuation {
	out := make([]MonthlyFluctuation, len(MonthNames))
	for i, name := range MonthNames {
		out[i] = MonthlyFluctuation{Month: name, Church: church}
	}
	for _, r := range created {
		out[MonthIndex(createdAt(r))].NewCount++
	}
	for _, r := range inactivated {
		at := inactivatedAt(r)
		if at == nil {
			continue
		}
		out[MonthIndex(*at)].InactiveCount++
	}
	return out
}
