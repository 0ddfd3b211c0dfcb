package metrics

import (
	"github.com/ekklesia-erp/ekklesia/internal/membership"
	"github.com/ekklesia-erp/ekklesia/internal/offering"
)

// Proportion counts records by record status.
type Proportion struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// MemberProportion adds a gender split to the status counts.
type MemberProportion struct {
	Proportion
	Male   int `json:"male"`
	Female int `json:"female"`
}

func statusProportion[T any](records []T, status func(T) membership.RecordStatus) Proportion {
	p := Proportion{Total: len(records)}
	for _, r := range records {
		switch status(r) {
		case membership.StatusActive:
			p.Active++
		case membership.StatusInactive:
			p.Inactive++
		}
	}
	return p
}

// MemberProportions counts members by status and gender.
func MemberProportions(members []membership.Member) MemberProportion {
	out := MemberProportion{
		Proportion: statusProportion(members, func(m membership.Member) membership.RecordStatus { return m.RecordStatus }),
	}
	for _, m := range members {
		switch m.Person.Gender {
		case membership.GenderMale:
			out.Male++
		case membership.GenderFemale:
			out.Female++
		}
	}
	return out
}

// FamilyGroupProportions counts family groups by status.
func FamilyGroupProportions(groups []membership.FamilyGroup) Proportion {
	return statusProportion(groups, func(g membership.FamilyGroup) membership.RecordStatus { return g.RecordStatus })
}

// IncomeProportions counts offering incomes by status.
func IncomeProportions(incomes []offering.Income) Proportion {
	return statusProportion(incomes, func(i offering.Income) membership.RecordStatus { return i.Status() })
}

// ExpenseProportions counts offering expenses by status.
func ExpenseProportions(expenses []offering.Expense) Proportion {
	return statusProportion(expenses, func(e offering.Expense) membership.RecordStatus { return e.Status() })
}
