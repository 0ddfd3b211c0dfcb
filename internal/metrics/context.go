package metrics

import "github.com/ekklesia-erp/ekklesia/internal/membership"

// ChurchContext labels an output group with its owning church.
type ChurchContext struct {
	IsAnexe               bool   `json:"is_anexe"`
	AbbreviatedChurchName string `json:"abbreviated_church_name"`
}

func churchContext(c *membership.Church) ChurchContext {
	if c == nil {
		return ChurchContext{}
	}
	return ChurchContext{IsAnexe: c.IsAnexe, AbbreviatedChurchName: c.AbbreviatedChurchName}
}

// firstChurch reads the church of the first record. A first record
// without a church yields an empty context.
func firstChurch[T any](records []T, church func(T) *membership.Church) ChurchContext {
	if len(records) == 0 {
		return ChurchContext{}
	}
	return churchContext(church(records[0]))
}

func memberChurch(m membership.Member) *membership.Church { return m.Church }

func familyGroupChurch(g membership.FamilyGroup) *membership.Church { return g.Church }

func leaderName(l *membership.Leader, placeholder string) string {
	if name := l.FullName(); name != "" {
		return name
	}
	return placeholder
}

func zoneName(z *membership.Zone) string {
	if z == nil || z.ZoneName == "" {
		return NoZoneLabel
	}
	return z.ZoneName
}

func zoneCopastor(z *membership.Zone) string {
	if z == nil {
		return NoCopastorLabel
	}
	return leaderName(z.Copastor, NoCopastorLabel)
}

func zoneSupervisor(z *membership.Zone) string {
	if z == nil {
		return NoSupervisorLabel
	}
	return leaderName(z.Supervisor, NoSupervisorLabel)
}
