package analytics

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ekklesia-erp/ekklesia/internal/metrics"
	"github.com/ekklesia-erp/ekklesia/internal/offering"
)

var (
	// ErrUnknownSearchType is returned for search types without a formatter.
	ErrUnknownSearchType = errors.New("analytics: unknown search type")
	// ErrInvalidQuery wraps query validation failures.
	ErrInvalidQuery = errors.New("analytics: invalid query")
	// ErrChurchNotFound is returned when the church id matches no record.
	ErrChurchNotFound = errors.New("analytics: church not found")
)

// SearchType names one metrics report.
type SearchType string

const (
	MembersByProportion          SearchType = "members_by_proportion"
	MembersFluctuationByYear     SearchType = "members_fluctuation_by_year"
	MembersByBirthMonth          SearchType = "members_by_birth_month"
	MembersByCategory            SearchType = "members_by_category"
	MembersByCategoryAndGender   SearchType = "members_by_category_and_gender"
	MembersByRoleAndGender       SearchType = "members_by_role_and_gender"
	MembersByMaritalStatus       SearchType = "members_by_marital_status"
	MembersByZoneAndGender       SearchType = "members_by_zone_and_gender"
	MembersByDistrictAndGender   SearchType = "members_by_district_and_gender"
	MembersByRecordStatus        SearchType = "members_by_record_status"
	FamilyGroupsByProportion     SearchType = "family_groups_by_proportion"
	FamilyGroupsFluctuation      SearchType = "family_groups_fluctuation_by_year"
	FamilyGroupsByZone           SearchType = "family_groups_by_zone"
	FamilyGroupsByCopastorZone   SearchType = "family_groups_by_copastor_and_zone"
	FamilyGroupsByDistrict       SearchType = "family_groups_by_district"
	FamilyGroupsByServiceTime    SearchType = "family_groups_by_service_time"
	FamilyGroupsByRecordStatus   SearchType = "family_groups_by_record_status"
	FamilyGroupsByPopulation     SearchType = "family_groups_by_population"
	IncomeByProportion           SearchType = "offering_income_by_proportion"
	IncomeBySundayService        SearchType = "offering_income_by_sunday_service"
	IncomeByFamilyGroup          SearchType = "offering_income_by_family_group"
	IncomeBySundaySchool         SearchType = "offering_income_by_sunday_school"
	IncomeByFastingAndVigil      SearchType = "offering_income_by_fasting_and_vigil"
	IncomeByYouthService         SearchType = "offering_income_by_youth_service"
	IncomeByUnitedService        SearchType = "offering_income_by_united_service"
	IncomeBySpecialOffering      SearchType = "offering_income_by_special_offering"
	IncomeByChurchGround         SearchType = "offering_income_by_church_ground"
	IncomeByActivities           SearchType = "offering_income_by_activities"
	IncomeByAdjustment           SearchType = "offering_income_by_income_adjustment"
	IncomeByContributor          SearchType = "offering_income_by_contributor"
	ExpensesByProportion         SearchType = "offering_expenses_by_proportion"
	ExpensesBySubType            SearchType = "offering_expenses_by_sub_type"
	IncomeAndExpensesComparative SearchType = "income_and_expenses_comparative"
	GeneralIncomeComparative     SearchType = "general_comparative_offering_income"
	IncomeComparativeByType      SearchType = "comparative_offering_income_by_type"
	IncomeComparativeBySubType   SearchType = "comparative_offering_income_by_sub_type"
	IncomeTotalsByType           SearchType = "offering_income_by_type_and_sub_type"
	GeneralExpensesComparative   SearchType = "general_comparative_offering_expenses"
	ExpensesComparativeByType    SearchType = "comparative_offering_expenses_by_type"
	ExpensesComparativeBySubType SearchType = "comparative_offering_expenses_by_sub_type"
	TopFamilyGroupsOfferings     SearchType = "top_family_groups_offerings"
	LastSundaysOfferings         SearchType = "last_sundays_offerings"
)

// ParseSearchType resolves a search type name.
func ParseSearchType(s string) (SearchType, error) {
	st := SearchType(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := searches[st]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownSearchType, s)
	}
	return st, nil
}

// SearchTypes lists every registered search type.
func SearchTypes() []SearchType {
	out := make([]SearchType, 0, len(searches))
	for st := range searches {
		out = append(out, st)
	}
	return out
}

// Query selects one report for one church.
type Query struct {
	SearchType SearchType              `validate:"required"`
	ChurchID   uuid.UUID               `validate:"required"`
	Year       int                     `validate:"required,min=1900,max=2999"`
	StartMonth string                  `validate:"omitempty,max=32"`
	EndMonth   string                  `validate:"omitempty,max=32"`
	Currency   offering.Currency       `validate:"omitempty,oneof=PEN USD EUR"`
	Order      metrics.PopulationOrder `validate:"omitempty,oneof=most least"`
	Limit      int                     `validate:"min=0,max=100"`
}

// resolved is a validated query with parsed months.
type resolved struct {
	Query
	start time.Month
	end   time.Month
}

func (s *Service) resolve(q Query) (resolved, error) {
	if err := s.validate.Struct(q); err != nil {
		return resolved{}, fmt.Errorf("%w: %s", ErrInvalidQuery, describeValidation(err))
	}
	if _, ok := searches[q.SearchType]; !ok {
		return resolved{}, fmt.Errorf("%w: %q", ErrUnknownSearchType, q.SearchType)
	}
	if q.SearchType == IncomeAndExpensesComparative && q.Currency == "" {
		return resolved{}, fmt.Errorf("%w: currency is required for %s", ErrInvalidQuery, q.SearchType)
	}
	r := resolved{Query: q, start: time.January, end: time.December}
	if q.StartMonth != "" {
		m, err := metrics.ParseMonth(q.StartMonth)
		if err != nil {
			return resolved{}, err
		}
		r.start = m
	}
	if q.EndMonth != "" {
		m, err := metrics.ParseMonth(q.EndMonth)
		if err != nil {
			return resolved{}, err
		}
		r.end = m
	}
	if r.start > r.end {
		return resolved{}, fmt.Errorf("%w: start month %s is after end month %s", ErrInvalidQuery, metrics.MonthName(r.start), metrics.MonthName(r.end))
	}
	return r, nil
}

// window returns the stored-date range [from, to) covering the selected
// months. Stored dates run one day behind the calendar, so the window is
// shifted back by a day.
func (r resolved) window() (time.Time, time.Time) {
	return ledgerWindow(r.Year, r.start, r.end)
}

func ledgerWindow(year int, start, end time.Month) (time.Time, time.Time) {
	from := time.Date(year, start, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	to := time.Date(year, end+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return from, to
}

func (r resolved) cacheParts() []string {
	return []string{
		"metrics",
		string(r.SearchType),
		r.ChurchID.String(),
		strconv.Itoa(r.Year),
		strconv.Itoa(int(r.start)),
		strconv.Itoa(int(r.end)),
		string(r.Currency),
		string(r.Order),
		strconv.Itoa(r.Limit),
	}
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}
	return strings.Join(parts, ", ")
}
