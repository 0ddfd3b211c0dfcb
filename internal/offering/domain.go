package offering

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ekklesia-erp/ekklesia/internal/membership"
)

// Currency is the ISO code an amount was recorded in. Amounts are never
// converted between currencies.
type Currency string

const (
	CurrencyPEN Currency = "PEN"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Currencies lists the supported currencies in display order.
var Currencies = []Currency{CurrencyPEN, CurrencyUSD, CurrencyEUR}

// ParseCurrency normalises a currency code; unknown codes return false.
func ParseCurrency(s string) (Currency, bool) {
	c := Currency(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case CurrencyPEN, CurrencyUSD, CurrencyEUR:
		return c, true
	}
	return "", false
}

// Income types.
const (
	TypeOffering         = "offering"
	TypeIncomeAdjustment = "income_adjustment"
)

// Income sub-types.
const (
	SubTypeSundayService  = "sunday_service"
	SubTypeFamilyGroup    = "family_group"
	SubTypeSundaySchool   = "sunday_school"
	SubTypeGeneralFasting = "general_fasting"
	SubTypeGeneralVigil   = "general_vigil"
	SubTypeZonalFasting   = "zonal_fasting"
	SubTypeZonalVigil     = "zonal_vigil"
	SubTypeYouthService   = "youth_service"
	SubTypeUnitedService  = "united_service"
	SubTypeActivities     = "activities"
	SubTypeChurchGround   = "church_ground"
	SubTypeSpecial        = "special"
)

// Expense types.
const (
	ExpenseOperational            = "operational_expenses"
	ExpenseMaintenanceAndRepair   = "maintenance_and_repair_expenses"
	ExpenseDecoration             = "decoration_expenses"
	ExpenseEquipmentAndTechnology = "equipment_and_technology_expenses"
	ExpenseSupplies               = "supplies_expenses"
	ExpensePlanningEvents         = "planning_events_expenses"
	ExpenseOther                  = "other_expenses"
	ExpenseAdjustment             = "expenses_adjustment"
)

// Shift splits sunday-service-like offerings into morning and afternoon.
type Shift string

const (
	ShiftDay       Shift = "day"
	ShiftAfternoon Shift = "afternoon"
)

// IsIncomeType reports whether t counts as income in net result series.
func IsIncomeType(t string) bool {
	return t == TypeOffering || t == TypeIncomeAdjustment
}

// ExternalDonor is a donor outside the membership hierarchy.
type ExternalDonor struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Country   string
}

// FullName joins the donor names.
func (d *ExternalDonor) FullName() string {
	if d == nil {
		return ""
	}
	return strings.TrimSpace(strings.TrimSpace(d.FirstName) + " " + strings.TrimSpace(d.LastName))
}

// Income is a single offering income record.
type Income struct {
	ID           uuid.UUID
	Type         string
	SubType      string
	Category     string
	Shift        Shift
	Amount       decimal.Decimal
	Currency     Currency
	Date         time.Time
	RecordStatus membership.RecordStatus
	// ExchangeRate and ExchangeCurrencyTypes are reclassification metadata only.
	ExchangeRate          *decimal.Decimal
	ExchangeCurrencyTypes string
	FamilyGroup           *membership.FamilyGroup
	Zone                  *membership.Zone
	Church                *membership.Church
	Member                *membership.Leader
	MemberRole            membership.Role
	ExternalDonor         *ExternalDonor
	CreatedAt             time.Time
}

// Expense is a single offering expense record.
type Expense struct {
	ID                    uuid.UUID
	Type                  string
	SubType               string
	Amount                decimal.Decimal
	Currency              Currency
	Date                  time.Time
	RecordStatus          membership.RecordStatus
	ExchangeRate          *decimal.Decimal
	ExchangeCurrencyTypes string
	Church                *membership.Church
	CreatedAt             time.Time
}

// Ledger is the read view shared by incomes and expenses.
type Ledger interface {
	LedgerType() string
	LedgerSubType() string
	Money() (decimal.Decimal, Currency)
	OccurredOn() time.Time
	OwningChurch() *membership.Church
	Status() membership.RecordStatus
}

func (i Income) LedgerType() string {
	return i.Type
}

func (i Income) LedgerSubType() string {
	return i.SubType
}

func (i Income) Money() (decimal.Decimal, Currency) {
	return i.Amount, i.Currency
}

func (i Income) OccurredOn() time.Time {
	return i.Date
}

func (i Income) OwningChurch() *membership.Church {
	return i.Church
}

func (i Income) Status() membership.RecordStatus {
	return i.RecordStatus
}

func (e Expense) LedgerType() string {
	return e.Type
}

func (e Expense) LedgerSubType() string {
	return e.SubType
}

func (e Expense) Money() (decimal.Decimal, Currency) {
	return e.Amount, e.Currency
}

func (e Expense) OccurredOn() time.Time {
	return e.Date
}

func (e Expense) OwningChurch() *membership.Church {
	return e.Church
}

func (e Expense) Status() membership.RecordStatus {
	return e.RecordStatus
}

// Movement is the minimal projection used by net result series.
type Movement struct {
	Type     string
	Amount   decimal.Decimal
	Currency Currency
	Date     time.Time
	Church   *membership.Church
}

// MovementsOf projects ledger records into movements.
func MovementsOf[L Ledger](records []L) []Movement {
	out := make([]Movement, 0, len(records))
	for _, r := range records {
		amount, currency := r.Money()
		out = append(out, Movement{
			Type:     r.LedgerType(),
			Amount:   amount,
			Currency: currency,
			Date:     r.OccurredOn(),
			Church:   r.OwningChurch(),
		})
	}
	return out
}
