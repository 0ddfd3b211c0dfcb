package metrics

import (
	"github.com/shopspring/decimal"

	"github.com/ekklesia-erp/ekklesia/internal/membership"
)

// GenderCount splits a tally by gender.
type GenderCount struct {
	Men   int `json:"men"`
	Women int `json:"women"`
}

func (g *GenderCount) add(gender membership.Gender) {
	switch gender {
	case membership.GenderMale:
		g.Men++
	case membership.GenderFemale:
		g.Women++
	}
}

// Total returns men plus women.
func (g GenderCount) Total() int { return g.Men + g.Women }

// CategoryCounts is the age band tally of a member set.
type CategoryCounts struct {
	AgeBandCounts
	Church ChurchContext `json:"church"`
}

// MembersByCategory counts members per age band. Members without an age
// are left out.
func MembersByCategory(members []membership.Member) CategoryCounts {
	out := CategoryCounts{Church: firstChurch(members, memberChurch)}
	for _, m := range members {
		if band, ok := Classify(m.Person.Age); ok {
			out.add(band)
		}
	}
	return out
}

// CategoryGender is one age band split by gender.
type CategoryGender struct {
	Band AgeBand `json:"band"`
	GenderCount
}

// CategoryGenderCounts lists every band in age order.
type CategoryGenderCounts struct {
	Bands  []CategoryGender `json:"bands"`
	Church ChurchContext    `json:"church"`
}

// MembersByCategoryAndGender splits each age band by gender.
func MembersByCategoryAndGender(members []membership.Member) CategoryGenderCounts {
	bands := make([]CategoryGender, len(AgeBands))
	index := make(map[AgeBand]int, len(AgeBands))
	for i, b := range AgeBands {
		bands[i] = CategoryGender{Band: b}
		index[b] = i
	}
	for _, m := range members {
		band, ok := Classify(m.Person.Age)
		if !ok {
			continue
		}
		bands[index[band]].add(m.Person.Gender)
	}
	return CategoryGenderCounts{Bands: bands, Church: firstChurch(members, memberChurch)}
}

// RoleGender is one role split by gender.
type RoleGender struct {
	Role membership.Role `json:"-"`
	Name string          `json:"role"`
	GenderCount
}

// RoleGenderCounts lists roles from pastor down to disciple.
type RoleGenderCounts struct {
	Roles  []RoleGender  `json:"roles"`
	Church ChurchContext `json:"church"`
}

var reportedRoles = []membership.Role{
	membership.RolePastor,
	membership.RoleCopastor,
	membership.RoleSupervisor,
	membership.RolePreacher,
	membership.RoleDisciple,
}

// MembersByRoleAndGender counts each member once, under their primary role.
// Members whose primary role is treasurer are not reported.
func MembersByRoleAndGender(members []membership.Member) RoleGenderCounts {
	rows := make([]RoleGender, len(reportedRoles))
	for i, r := range reportedRoles {
		rows[i] = RoleGender{Role: r, Name: r.String()}
	}
	for _, m := range members {
		for i, r := range reportedRoles {
			if m.Roles.HoldsExclusively(r) {
				rows[i].add(m.Person.Gender)
				break
			}
		}
	}
	return RoleGenderCounts{Roles: rows, Church: firstChurch(members, memberChurch)}
}

// MaritalStatusCount is the tally of one civil state.
type MaritalStatusCount struct {
	Status membership.MaritalStatus `json:"marital_status"`
	Count  int                      `json:"count"`
	Church ChurchContext            `json:"church"`
}

// MembersByMaritalStatus counts members per civil state in first-seen order.
func MembersByMaritalStatus(members []membership.Member) []MaritalStatusCount {
	groups := Group(members,
		func(m membership.Member) membership.MaritalStatus { return m.Person.MaritalStatus },
		func(m membership.Member) MaritalStatusCount {
			return MaritalStatusCount{Status: m.Person.MaritalStatus, Count: 1, Church: churchContext(m.Church)}
		},
		func(agg *MaritalStatusCount, _ membership.Member) { agg.Count++ },
	)
	return groups.Values()
}

// BirthMonthCount is the members born in one month and their mean age.
type BirthMonthCount struct {
	Month      string          `json:"month"`
	Count      int             `json:"count"`
	AverageAge decimal.Decimal `json:"average_age"`
	Church     ChurchContext   `json:"church"`
}

// MembersByBirthMonth returns twelve buckets keyed by the shifted birth
// month. The average is taken over members with a known age and rounded to
// two decimals.
func MembersByBirthMonth(members []membership.Member) []BirthMonthCount {
	church := firstChurch(members, memberChurch)
	out := make([]BirthMonthCount, len(MonthNames))
	ageSum := make([]int, len(MonthNames))
	aged := make([]int, len(MonthNames))
	for i, name := range MonthNames {
		out[i] = BirthMonthCount{Month: name, AverageAge: decimal.Zero, Church: church}
	}
	for _, m := range members {
		if m.Person.BirthDate.IsZero() {
			continue
		}
		idx := MonthIndex(m.Person.BirthDate)
		out[idx].Count++
		if m.Person.Age != nil && *m.Person.Age >= 0 {
			ageSum[idx] += *m.Person.Age
			aged[idx]++
		}
	}
	for i := range out {
		if aged[i] > 0 {
			out[i].AverageAge = decimal.NewFromInt(int64(ageSum[i])).
				Div(decimal.NewFromInt(int64(aged[i]))).
				Round(2)
		}
	}
	return out
}

// ZoneGender is the member tally of one zone.
type ZoneGender struct {
	Zone       string `json:"zone"`
	Copastor   string `json:"copastor"`
	Supervisor string `json:"supervisor"`
	GenderCount
	Church ChurchContext `json:"church"`
}

// MembersByZoneAndGender counts members per zone. Members without a zone
// are grouped under the no-zone label.
func MembersByZoneAndGender(members []membership.Member) []ZoneGender {
	groups := Group(members,
		func(m membership.Member) string { return zoneName(m.Zone) },
		func(m membership.Member) ZoneGender {
			agg := ZoneGender{
				Zone:       zoneName(m.Zone),
				Copastor:   zoneCopastor(m.Zone),
				Supervisor: zoneSupervisor(m.Zone),
				Church:     churchContext(m.Church),
			}
			agg.add(m.Person.Gender)
			return agg
		},
		func(agg *ZoneGender, m membership.Member) { agg.add(m.Person.Gender) },
	)
	return groups.Values()
}

// DistrictGender is the member tally of one urban sector.
type DistrictGender struct {
	District    string `json:"district"`
	UrbanSector string `json:"urban_sector"`
	GenderCount
	Church ChurchContext `json:"church"`
}

// MembersByDistrictAndGender counts members per urban sector.
func MembersByDistrictAndGender(members []membership.Member) []DistrictGender {
	groups := Group(members,
		func(m membership.Member) string { return m.Person.UrbanSector },
		func(m membership.Member) DistrictGender {
			agg := DistrictGender{
				District:    m.Person.District,
				UrbanSector: m.Person.UrbanSector,
				Church:      churchContext(m.Church),
			}
			agg.add(m.Person.Gender)
			return agg
		},
		func(agg *DistrictGender, m membership.Member) { agg.add(m.Person.Gender) },
	)
	return groups.Values()
}

// RoleStatus is the active and inactive tally of one role.
type RoleStatus struct {
	Role     string `json:"role"`
	Active   int    `json:"active"`
	Inactive int    `json:"inactive"`
}

// RoleStatusCounts lists roles from pastor down to disciple.
type RoleStatusCounts struct {
	Roles  []RoleStatus  `json:"roles"`
	Church ChurchContext `json:"church"`
}

// MembersByRecordStatus counts active and inactive members per primary role.
func MembersByRecordStatus(members []membership.Member) RoleStatusCounts {
	rows := make([]RoleStatus, len(reportedRoles))
	for i, r := range reportedRoles {
		rows[i] = RoleStatus{Role: r.String()}
	}
	for _, m := range members {
		for i, r := range reportedRoles {
			if !m.Roles.HoldsExclusively(r) {
				continue
			}
			switch m.RecordStatus {
			case membership.StatusActive:
				rows[i].Active++
			case membership.StatusInactive:
				rows[i].Inactive++
			}
			break
		}
	}
	return RoleStatusCounts{Roles: rows, Church: firstChurch(members, memberChurch)}
}
