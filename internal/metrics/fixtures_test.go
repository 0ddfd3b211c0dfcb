package metrics

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ekklesia-erp/ekklesia/internal/membership"
	"github.com/ekklesia-erp/ekklesia/internal/offering"
)

var testChurch = &membership.Church{
	ID:                    uuid.MustParse("0b7c2f6e-5d1a-4c1e-9f59-8d3a3c6f2a01"),
	ChurchName:            "Iglesia Central",
	AbbreviatedChurchName: "IC",
	RecordStatus:          membership.StatusActive,
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func age(n int) *int { return &n }

func income(amount string, currency offering.Currency, at time.Time) offering.Income {
	return offering.Income{
		ID:           uuid.New(),
		Type:         offering.TypeOffering,
		SubType:      offering.SubTypeSundayService,
		Amount:       dec(amount),
		Currency:     currency,
		Date:         at,
		RecordStatus: membership.StatusActive,
		Church:       testChurch,
	}
}

func expense(amount string, currency offering.Currency, at time.Time) offering.Expense {
	return offering.Expense{
		ID:           uuid.New(),
		Type:         offering.ExpenseOperational,
		SubType:      "utilities",
		Amount:       dec(amount),
		Currency:     currency,
		Date:         at,
		RecordStatus: membership.StatusActive,
		Church:       testChurch,
	}
}

func member(gender membership.Gender, years *int, roles ...membership.Role) membership.Member {
	return membership.Member{
		ID:           uuid.New(),
		Person:       membership.Person{FirstNames: "Ana", LastNames: "Quispe", Gender: gender, Age: years},
		Roles:        membership.NewRoleSet(roles...),
		RecordStatus: membership.StatusActive,
		Church:       testChurch,
	}
}

func familyGroup(code string, disciples ...membership.Member) *membership.FamilyGroup {
	return &membership.FamilyGroup{
		ID:              uuid.New(),
		FamilyGroupName: "Grupo " + code,
		FamilyGroupCode: code,
		RecordStatus:    membership.StatusActive,
		Disciples:       disciples,
		Church:          testChurch,
	}
}
