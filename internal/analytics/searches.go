package analytics

import (
	"context"
	"time"

	"github.com/ekklesia-erp/ekklesia/internal/membership"
	"github.com/ekklesia-erp/ekklesia/internal/metrics"
	"github.com/ekklesia-erp/ekklesia/internal/offering"
)

type searchFunc func(ctx context.Context, s *Service, r resolved) (any, error)

var searches = map[SearchType]searchFunc{
	MembersByProportion: memberSearch(true, func(_ resolved, m []membership.Member) any {
		return metrics.MemberProportions(m)
	}),
	MembersFluctuationByYear: membersFluctuation,
	MembersByBirthMonth: memberSearch(false, func(_ resolved, m []membership.Member) any {
		return metrics.MembersByBirthMonth(m)
	}),
	MembersByCategory: memberSearch(false, func(_ resolved, m []membership.Member) any {
		return metrics.MembersByCategory(m)
	}),
	MembersByCategoryAndGender: memberSearch(false, func(_ resolved, m []membership.Member) any {
		return metrics.MembersByCategoryAndGender(m)
	}),
	MembersByRoleAndGender: memberSearch(false, func(_ resolved, m []membership.Member) any {
		return metrics.MembersByRoleAndGender(m)
	}),
	MembersByMaritalStatus: memberSearch(false, func(_ resolved, m []membership.Member) any {
		return metrics.MembersByMaritalStatus(m)
	}),
	MembersByZoneAndGender: memberSearch(false, func(_ resolved, m []membership.Member) any {
		return metrics.MembersByZoneAndGender(m)
	}),
	MembersByDistrictAndGender: memberSearch(false, func(_ resolved, m []membership.Member) any {
		return metrics.MembersByDistrictAndGender(m)
	}),
	MembersByRecordStatus: memberSearch(true, func(_ resolved, m []membership.Member) any {
		return metrics.MembersByRecordStatus(m)
	}),

	FamilyGroupsByProportion: familyGroupSearch(true, func(_ resolved, g []membership.FamilyGroup) any {
		return metrics.FamilyGroupProportions(g)
	}),
	FamilyGroupsFluctuation: familyGroupsFluctuation,
	FamilyGroupsByZone: familyGroupSearch(false, func(_ resolved, g []membership.FamilyGroup) any {
		return metrics.FamilyGroupsByZone(g)
	}),
	FamilyGroupsByCopastorZone: familyGroupSearch(false, func(_ resolved, g []membership.FamilyGroup) any {
		return metrics.FamilyGroupsByCopastorAndZone(g)
	}),
	FamilyGroupsByDistrict: familyGroupSearch(false, func(_ resolved, g []membership.FamilyGroup) any {
		return metrics.FamilyGroupsByDistrict(g)
	}),
	FamilyGroupsByServiceTime: familyGroupSearch(false, func(_ resolved, g []membership.FamilyGroup) any {
		return metrics.FamilyGroupsByServiceTime(g)
	}),
	FamilyGroupsByRecordStatus: familyGroupSearch(true, func(_ resolved, g []membership.FamilyGroup) any {
		return metrics.FamilyGroupsByRecordStatus(g)
	}),
	FamilyGroupsByPopulation: familyGroupSearch(false, func(r resolved, g []membership.FamilyGroup) any {
		order := r.Order
		if order == "" {
			order = metrics.MostPopulated
		}
		return metrics.FamilyGroupsByPopulation(g, order, r.Limit)
	}),

	IncomeByProportion: incomeSearch(true, nil, func(_ resolved, inc []offering.Income) any {
		return metrics.IncomeProportions(inc)
	}),
	IncomeBySundayService: incomeSearch(false, []string{offering.SubTypeSundayService}, func(r resolved, inc []offering.Income) any {
		return metrics.LastSundaysOfferings(inc, r.Limit)
	}),
	IncomeByFamilyGroup: incomeSearch(false, []string{offering.SubTypeFamilyGroup}, func(_ resolved, inc []offering.Income) any {
		return metrics.IncomeByFamilyGroup(inc)
	}),
	IncomeBySundaySchool:    incomeByDate(offering.SubTypeSundaySchool),
	IncomeByYouthService:    incomeByDate(offering.SubTypeYouthService),
	IncomeByUnitedService:   incomeByDate(offering.SubTypeUnitedService),
	IncomeBySpecialOffering: incomeByDate(offering.SubTypeSpecial),
	IncomeByChurchGround:    incomeByDate(offering.SubTypeChurchGround),
	IncomeByActivities:      incomeByDate(offering.SubTypeActivities),
	IncomeByFastingAndVigil: incomeSearch(false, []string{
		offering.SubTypeGeneralFasting,
		offering.SubTypeGeneralVigil,
		offering.SubTypeZonalFasting,
		offering.SubTypeZonalVigil,
	}, func(_ resolved, inc []offering.Income) any {
		return metrics.IncomeByZone(inc)
	}),
	IncomeByAdjustment: incomeSearch(false, nil, func(_ resolved, inc []offering.Income) any {
		adjustments := make([]offering.Income, 0, len(inc))
		for _, i := range inc {
			if i.Type == offering.TypeIncomeAdjustment {
				adjustments = append(adjustments, i)
			}
		}
		return metrics.IncomeByDate(adjustments)
	}),
	IncomeByContributor: incomeSearch(false, nil, func(_ resolved, inc []offering.Income) any {
		return metrics.IncomeByContributor(inc)
	}),
	TopFamilyGroupsOfferings: incomeSearch(false, []string{offering.SubTypeFamilyGroup}, func(_ resolved, inc []offering.Income) any {
		return metrics.TopFamilyGroupsOfferings(inc)
	}),
	LastSundaysOfferings: incomeSearch(false, []string{offering.SubTypeSundayService}, func(r resolved, inc []offering.Income) any {
		return metrics.LastSundaysOfferings(inc, r.Limit)
	}),
	GeneralIncomeComparative: incomeSearch(false, nil, func(_ resolved, inc []offering.Income) any {
		return metrics.GeneralComparative(inc)
	}),
	IncomeComparativeByType: incomeSearch(false, nil, func(_ resolved, inc []offering.Income) any {
		return metrics.ComparativeByMonthAndType(inc)
	}),
	IncomeComparativeBySubType: incomeSearch(false, nil, func(_ resolved, inc []offering.Income) any {
		return metrics.ComparativeByMonthAndSubType(inc)
	}),
	IncomeTotalsByType: incomeSearch(false, nil, func(_ resolved, inc []offering.Income) any {
		return metrics.ComparativeByType(inc)
	}),

	ExpensesByProportion: expenseSearch(true, func(_ resolved, exp []offering.Expense) any {
		return metrics.ExpenseProportions(exp)
	}),
	ExpensesBySubType: expenseSearch(false, func(_ resolved, exp []offering.Expense) any {
		return metrics.ExpensesBySubType(exp)
	}),
	GeneralExpensesComparative: expenseSearch(false, func(_ resolved, exp []offering.Expense) any {
		return metrics.GeneralComparative(exp)
	}),
	ExpensesComparativeByType: expenseSearch(false, func(_ resolved, exp []offering.Expense) any {
		return metrics.ComparativeByMonthAndType(exp)
	}),
	ExpensesComparativeBySubType: expenseSearch(false, func(_ resolved, exp []offering.Expense) any {
		return metrics.ComparativeByMonthAndSubType(exp)
	}),

	IncomeAndExpensesComparative: func(ctx context.Context, s *Service, r resolved) (any, error) {
		return s.netResult(ctx, r)
	},
}

// memberSearch loads the flattened roster. Unless allStatuses is set only
// active members reach the formatter.
func memberSearch(allStatuses bool, format func(resolved, []membership.Member) any) searchFunc {
	return func(ctx context.Context, s *Service, r resolved) (any, error) {
		roster, err := s.roster(ctx, r.ChurchID)
		if err != nil {
			return nil, err
		}
		members := membership.Flatten(roster)
		if !allStatuses {
			members = activeMembers(members)
		}
		return format(r, members), nil
	}
}

func familyGroupSearch(allStatuses bool, format func(resolved, []membership.FamilyGroup) any) searchFunc {
	return func(ctx context.Context, s *Service, r resolved) (any, error) {
		groups, err := s.familyGroups(ctx, r.ChurchID)
		if err != nil {
			return nil, err
		}
		if !allStatuses {
			groups = activeFamilyGroups(groups)
		}
		return format(r, groups), nil
	}
}

func incomeSearch(allStatuses bool, subTypes []string, format func(resolved, []offering.Income) any) searchFunc {
	return func(ctx context.Context, s *Service, r resolved) (any, error) {
		from, to := r.window()
		incomes, err := s.incomes(ctx, LedgerFilter{ChurchID: r.ChurchID, From: from, To: to, IncludeInactive: allStatuses})
		if err != nil {
			return nil, err
		}
		if !allStatuses {
			incomes = metrics.ActiveOnly(incomes)
		}
		return format(r, metrics.FilterIncomes(incomes, subTypes...)), nil
	}
}

func incomeByDate(subType string) searchFunc {
	return incomeSearch(false, []string{subType}, func(_ resolved, inc []offering.Income) any {
		return metrics.IncomeByDate(inc)
	})
}

func expenseSearch(allStatuses bool, format func(resolved, []offering.Expense) any) searchFunc {
	return func(ctx context.Context, s *Service, r resolved) (any, error) {
		from, to := r.window()
		expenses, err := s.expenses(ctx, LedgerFilter{ChurchID: r.ChurchID, From: from, To: to, IncludeInactive: allStatuses})
		if err != nil {
			return nil, err
		}
		if !allStatuses {
			expenses = metrics.ActiveOnly(expenses)
		}
		return format(r, expenses), nil
	}
}

func membersFluctuation(ctx context.Context, s *Service, r resolved) (any, error) {
	roster, err := s.roster(ctx, r.ChurchID)
	if err != nil {
		return nil, err
	}
	var created, inactivated []membership.Member
	for _, m := range membership.Flatten(roster) {
		if metrics.YearOf(m.CreatedAt) == r.Year {
			created = append(created, m)
		}
		if m.InactivatedAt != nil && metrics.YearOf(*m.InactivatedAt) == r.Year {
			inactivated = append(inactivated, m)
		}
	}
	return metrics.MemberFluctuation(created, inactivated), nil
}

func familyGroupsFluctuation(ctx context.Context, s *Service, r resolved) (any, error) {
	groups, err := s.familyGroups(ctx, r.ChurchID)
	if err != nil {
		return nil, err
	}
	var created, inactivated []membership.FamilyGroup
	for _, g := range groups {
		if metrics.YearOf(g.CreatedAt) == r.Year {
			created = append(created, g)
		}
		if g.InactivatedAt != nil && metrics.YearOf(*g.InactivatedAt) == r.Year {
			inactivated = append(inactivated, g)
		}
	}
	return metrics.FamilyGroupFluctuation(created, inactivated), nil
}

// netResult loads both years in full and folds them into one comparison.
// The month range of the query is ignored: the carry needs every month of
// the previous year.
func (s *Service) netResult(ctx context.Context, r resolved) (metrics.NetResultComparison, error) {
	load := func(year int) ([]offering.Movement, error) {
		from, to := ledgerWindow(year, time.January, time.December)
		filter := LedgerFilter{ChurchID: r.ChurchID, From: from, To: to}
		incomes, err := s.incomes(ctx, filter)
		if err != nil {
			return nil, err
		}
		expenses, err := s.expenses(ctx, filter)
		if err != nil {
			return nil, err
		}
		movements := offering.MovementsOf(metrics.ActiveOnly(incomes))
		return append(movements, offering.MovementsOf(metrics.ActiveOnly(expenses))...), nil
	}
	current, err := load(r.Year)
	if err != nil {
		return metrics.NetResultComparison{}, err
	}
	previous, err := load(r.Year - 1)
	if err != nil {
		return metrics.NetResultComparison{}, err
	}
	return metrics.NetResultSeries(metrics.NetResultQuery{
		CurrentYear:  r.Year,
		PreviousYear: r.Year - 1,
		Currency:     r.Currency,
	}, current, previous), nil
}

func activeMembers(members []membership.Member) []membership.Member {
	out := make([]membership.Member, 0, len(members))
	for _, m := range members {
		if m.Active() {
			out = append(out, m)
		}
	}
	return out
}

func activeFamilyGroups(groups []membership.FamilyGroup) []membership.FamilyGroup {
	out := make([]membership.FamilyGroup, 0, len(groups))
	for _, g := range groups {
		if g.RecordStatus.Active() {
			out = append(out, g)
		}
	}
	return out
}
