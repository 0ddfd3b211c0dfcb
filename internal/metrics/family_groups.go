package metrics

import (
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/ekklesia-erp/ekklesia/internal/membership"
)

// CompareFamilyGroupCodes orders codes such as "ZONA-2" before "ZONA-10":
// the alphabetic prefix compares lexically and the trailing number
// compares numerically. It returns -1, 0 or 1.
func CompareFamilyGroupCodes(a, b string) int {
	pa, na, oka := splitCode(a)
	pb, nb, okb := splitCode(b)
	if c := strings.Compare(pa, pb); c != 0 {
		return c
	}
	switch {
	case oka && okb && na != nb:
		if na < nb {
			return -1
		}
		return 1
	case oka != okb:
		if !oka {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

func splitCode(code string) (string, int, bool) {
	end := len(code)
	start := end
	for start > 0 && unicode.IsDigit(rune(code[start-1])) {
		start--
	}
	if start == end {
		return code, 0, false
	}
	n, err := strconv.Atoi(code[start:end])
	if err != nil {
		return code, 0, false
	}
	return code[:start], n, true
}

func sortByCode[T any](items []T, code func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		return CompareFamilyGroupCodes(code(items[i]), code(items[j])) < 0
	})
}

// FamilyGroupDisciples is the pure disciple tally of one family group.
type FamilyGroupDisciples struct {
	FamilyGroupID   uuid.UUID `json:"family_group_id"`
	FamilyGroupCode string    `json:"family_group_code"`
	FamilyGroupName string    `json:"family_group_name"`
	Preacher        string    `json:"preacher"`
	Supervisor      string    `json:"supervisor"`
	Zone            string    `json:"zone"`
	GenderCount
	Church ChurchContext `json:"church"`
}

func disciplesOf(g membership.FamilyGroup) FamilyGroupDisciples {
	out := FamilyGroupDisciples{
		FamilyGroupID:   g.ID,
		FamilyGroupCode: g.FamilyGroupCode,
		FamilyGroupName: g.FamilyGroupName,
		Preacher:        leaderName(g.Preacher, NoPreacherLabel),
		Supervisor:      leaderName(g.Supervisor, NoSupervisorLabel),
		Zone:            zoneName(g.Zone),
		Church:          churchContext(g.Church),
	}
	for _, d := range membership.PureDisciples(g.Disciples) {
		out.add(d.Person.Gender)
	}
	return out
}

// FamilyGroupsByZone lists the family groups of a zone with their pure
// disciples split by gender, ordered by family group code.
func FamilyGroupsByZone(groups []membership.FamilyGroup) []FamilyGroupDisciples {
	out := make([]FamilyGroupDisciples, 0, len(groups))
	for _, g := range groups {
		out = append(out, disciplesOf(g))
	}
	sortByCode(out, func(f FamilyGroupDisciples) string { return f.FamilyGroupCode })
	return out
}

// ZoneFamilyGroups is the family group and disciple tally of one zone.
type ZoneFamilyGroups struct {
	Zone             string `json:"zone"`
	Copastor         string `json:"copastor"`
	Supervisor       string `json:"supervisor"`
	FamilyGroupCount int    `json:"family_group_count"`
	GenderCount
	Church ChurchContext `json:"church"`
}

// FamilyGroupsByCopastorAndZone tallies family groups and their pure
// disciples per zone, labelling each zone with its co-pastor and
// supervisor.
func FamilyGroupsByCopastorAndZone(groups []membership.FamilyGroup) []ZoneFamilyGroups {
	merge := func(agg *ZoneFamilyGroups, g membership.FamilyGroup) {
		agg.FamilyGroupCount++
		for _, d := range membership.PureDisciples(g.Disciples) {
			agg.add(d.Person.Gender)
		}
	}
	out := Group(groups,
		func(g membership.FamilyGroup) string { return zoneName(g.Zone) },
		func(g membership.FamilyGroup) ZoneFamilyGroups {
			agg := ZoneFamilyGroups{
				Zone:       zoneName(g.Zone),
				Copastor:   zoneCopastor(g.Zone),
				Supervisor: zoneSupervisor(g.Zone),
				Church:     churchContext(g.Church),
			}
			if agg.Copastor == NoCopastorLabel {
				agg.Copastor = leaderName(g.Copastor, NoCopastorLabel)
			}
			merge(&agg, g)
			return agg
		},
		merge,
	).Values()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Zone < out[j].Zone })
	return out
}

// DistrictFamilyGroups is the family group tally of one urban sector.
type DistrictFamilyGroups struct {
	District         string        `json:"district"`
	UrbanSector      string        `json:"urban_sector"`
	FamilyGroupCount int           `json:"family_group_count"`
	Church           ChurchContext `json:"church"`
}

// FamilyGroupsByDistrict tallies family groups per urban sector.
func FamilyGroupsByDistrict(groups []membership.FamilyGroup) []DistrictFamilyGroups {
	return Group(groups,
		func(g membership.FamilyGroup) string { return g.UrbanSector },
		func(g membership.FamilyGroup) DistrictFamilyGroups {
			return DistrictFamilyGroups{
				District:         g.District,
				UrbanSector:      g.UrbanSector,
				FamilyGroupCount: 1,
				Church:           churchContext(g.Church),
			}
		},
		func(agg *DistrictFamilyGroups, _ membership.FamilyGroup) { agg.FamilyGroupCount++ },
	).Values()
}

// ServiceTimeFamilyGroups is the family group tally of one service time.
type ServiceTimeFamilyGroups struct {
	ServiceTime      string        `json:"service_time"`
	FamilyGroupCount int           `json:"family_group_count"`
	Church           ChurchContext `json:"church"`
}

const serviceTimeLayout = "15:04"

// FamilyGroupsByServiceTime tallies family groups per service time, from
// earliest to latest. Times that do not parse as HH:MM sort after the
// rest, lexically.
func FamilyGroupsByServiceTime(groups []membership.FamilyGroup) []ServiceTimeFamilyGroups {
	out := Group(groups,
		func(g membership.FamilyGroup) string { return g.ServiceTime },
		func(g membership.FamilyGroup) ServiceTimeFamilyGroups {
			return ServiceTimeFamilyGroups{ServiceTime: g.ServiceTime, FamilyGroupCount: 1, Church: churchContext(g.Church)}
		},
		func(agg *ServiceTimeFamilyGroups, _ membership.FamilyGroup) { agg.FamilyGroupCount++ },
	).Values()
	sort.SliceStable(out, func(i, j int) bool {
		ti, erri := time.Parse(serviceTimeLayout, out[i].ServiceTime)
		tj, errj := time.Parse(serviceTimeLayout, out[j].ServiceTime)
		switch {
		case erri == nil && errj == nil:
			return ti.Before(tj)
		case erri == nil:
			return true
		case errj == nil:
			return false
		}
		return out[i].ServiceTime < out[j].ServiceTime
	})
	return out
}

// ZoneStatus is the active and inactive family groups of one zone.
type ZoneStatus struct {
	Zone     string        `json:"zone"`
	Active   int           `json:"active"`
	Inactive int           `json:"inactive"`
	Church   ChurchContext `json:"church"`
}

// FamilyGroupsByRecordStatus counts active and inactive family groups per
// zone.
func FamilyGroupsByRecordStatus(groups []membership.FamilyGroup) []ZoneStatus {
	merge := func(agg *ZoneStatus, g membership.FamilyGroup) {
		switch g.RecordStatus {
		case membership.StatusActive:
			agg.Active++
		case membership.StatusInactive:
			agg.Inactive++
		}
	}
	return Group(groups,
		func(g membership.FamilyGroup) string { return zoneName(g.Zone) },
		func(g membership.FamilyGroup) ZoneStatus {
			agg := ZoneStatus{Zone: zoneName(g.Zone), Church: churchContext(g.Church)}
			merge(&agg, g)
			return agg
		},
		merge,
	).Values()
}
