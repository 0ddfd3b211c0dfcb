package metrics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekklesia-erp/ekklesia/internal/membership"
	"github.com/ekklesia-erp/ekklesia/internal/offering"
)

func TestCompareFamilyGroupCodes(t *testing.T) {
	assert.Equal(t, -1, CompareFamilyGroupCodes("ZONA-2", "ZONA-10"))
	assert.Equal(t, 1, CompareFamilyGroupCodes("ZONA-10", "ZONA-9"))
	assert.Equal(t, -1, CompareFamilyGroupCodes("ALFA-9", "BETA-1"))
	assert.Equal(t, 0, CompareFamilyGroupCodes("ZONA-3", "ZONA-3"))
	assert.Equal(t, -1, CompareFamilyGroupCodes("ZONA-", "ZONA-1"))
}

func TestMembersByRoleAndGenderUsesPrimaryRole(t *testing.T) {
	members := []membership.Member{
		member(membership.GenderMale, age(50), membership.RolePastor),
		member(membership.GenderFemale, age(40), membership.RoleCopastor, membership.RoleDisciple),
		member(membership.GenderMale, age(30), membership.RolePreacher, membership.RoleDisciple),
		member(membership.GenderFemale, age(20), membership.RoleDisciple),
		member(membership.GenderMale, age(25), membership.RoleTreasurer, membership.RoleDisciple),
	}
	got := MembersByRoleAndGender(members)
	require.Len(t, got.Roles, 5)
	counts := map[string]GenderCount{}
	total := 0
	for _, row := range got.Roles {
		counts[row.Name] = row.GenderCount
		total += row.Total()
	}
	assert.Equal(t, GenderCount{Men: 1}, counts["pastor"])
	assert.Equal(t, GenderCount{Women: 1}, counts["copastor"])
	assert.Equal(t, GenderCount{Men: 1}, counts["preacher"])
	assert.Equal(t, GenderCount{Women: 1}, counts["disciple"])
	assert.Equal(t, 4, total)
}

func TestMembersByRecordStatus(t *testing.T) {
	gone := member(membership.GenderMale, age(33), membership.RoleDisciple)
	gone.RecordStatus = membership.StatusInactive
	got := MembersByRecordStatus([]membership.Member{
		gone,
		member(membership.GenderFemale, age(33), membership.RoleDisciple),
		member(membership.GenderFemale, age(33), membership.RoleSupervisor),
	})
	assert.Equal(t, RoleStatus{Role: "supervisor", Active: 1}, got.Roles[2])
	assert.Equal(t, RoleStatus{Role: "disciple", Active: 1, Inactive: 1}, got.Roles[4])
}

func TestMembersByBirthMonthAveragesKnownAges(t *testing.T) {
	a := member(membership.GenderMale, age(20), membership.RoleDisciple)
	a.Person.BirthDate = day(2004, time.April, 10)
	b := member(membership.GenderFemale, age(25), membership.RoleDisciple)
	b.Person.BirthDate = day(1999, time.April, 2)
	c := member(membership.GenderFemale, nil, membership.RoleDisciple)
	c.Person.BirthDate = day(1990, time.April, 30)
	d := member(membership.GenderMale, age(31), membership.RoleDisciple)
	d.Person.BirthDate = day(1993, time.March, 31)

	got := MembersByBirthMonth([]membership.Member{a, b, c, d})
	require.Len(t, got, 12)
	assert.Equal(t, 3, got[3].Count)
	assert.Equal(t, "25.33", got[3].AverageAge.String())
	assert.Equal(t, 1, got[4].Count)
	assert.Equal(t, "0", got[4].AverageAge.String())
	assert.Equal(t, 0, got[2].Count)
}

func TestMembersByZoneAndGenderPlaceholders(t *testing.T) {
	zone := &membership.Zone{ZoneName: "Norte", Copastor: &membership.Leader{FirstName: "Rosa", LastName: "Mamani"}}
	a := member(membership.GenderMale, age(20), membership.RoleDisciple)
	a.Zone = zone
	b := member(membership.GenderFemale, age(20), membership.RoleDisciple)

	got := MembersByZoneAndGender([]membership.Member{a, b})
	require.Len(t, got, 2)
	assert.Equal(t, "Rosa Mamani", got[0].Copastor)
	assert.Equal(t, NoSupervisorLabel, got[0].Supervisor)
	assert.Equal(t, NoZoneLabel, got[1].Zone)
	assert.Equal(t, NoCopastorLabel, got[1].Copastor)
}

func TestFamilyGroupsByZoneSortsByCode(t *testing.T) {
	preacher := member(membership.GenderMale, age(40), membership.RolePreacher, membership.RoleDisciple)
	groups := []membership.FamilyGroup{
		*familyGroup("NORTE-10", member(membership.GenderFemale, age(20), membership.RoleDisciple)),
		*familyGroup("NORTE-2", preacher, member(membership.GenderMale, age(20), membership.RoleDisciple)),
		*familyGroup("NORTE-1"),
	}
	got := FamilyGroupsByZone(groups)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"NORTE-1", "NORTE-2", "NORTE-10"}, []string{got[0].FamilyGroupCode, got[1].FamilyGroupCode, got[2].FamilyGroupCode})
	assert.Equal(t, GenderCount{Men: 1}, got[1].GenderCount)
	assert.Equal(t, NoPreacherLabel, got[0].Preacher)
}

func TestFamilyGroupsByServiceTime(t *testing.T) {
	at := func(code, clock string) membership.FamilyGroup {
		g := familyGroup(code)
		g.ServiceTime = clock
		return *g
	}
	got := FamilyGroupsByServiceTime([]membership.FamilyGroup{
		at("A-1", "19:00"), at("A-2", "08:30"), at("A-3", "tarde"), at("A-4", "19:00"),
	})
	require.Len(t, got, 3)
	assert.Equal(t, "08:30", got[0].ServiceTime)
	assert.Equal(t, 2, got[1].FamilyGroupCount)
	assert.Equal(t, "tarde", got[2].ServiceTime)
}

func TestIncomeByContributor(t *testing.T) {
	giver := &membership.Leader{ID: uuid.New(), FirstName: "Eva", LastName: "Soto"}
	donor := &offering.ExternalDonor{ID: uuid.New(), FirstName: "Tom", LastName: "Gray"}

	fromMember := income("20", offering.CurrencyPEN, day(2024, time.June, 1))
	fromMember.Member, fromMember.MemberRole = giver, membership.RoleDisciple
	again := income("15", offering.CurrencyPEN, day(2024, time.June, 8))
	again.Member = giver
	fromDonor := income("50", offering.CurrencyUSD, day(2024, time.June, 2))
	fromDonor.ExternalDonor = donor
	anonymous := income("99", offering.CurrencyPEN, day(2024, time.June, 3))

	got := IncomeByContributor([]offering.Income{fromMember, fromDonor, anonymous, again})
	require.Len(t, got, 2)
	assert.Equal(t, ContributorDonor, got[0].Kind)
	assert.Equal(t, "Tom Gray", got[0].Name)
	assert.Equal(t, "Eva Soto", got[1].Name)
	assert.Equal(t, "disciple", got[1].Role)
	assert.Equal(t, "35", got[1].Totals.PEN.String())
	assert.Equal(t, day(2024, time.June, 8), got[1].LastDate)
}

func TestIncomeByDateAndExpensesBySubType(t *testing.T) {
	byDate := IncomeByDate([]offering.Income{
		income("5", offering.CurrencyPEN, day(2024, time.July, 14)),
		income("3", offering.CurrencyEUR, day(2024, time.July, 7)),
		income("2", offering.CurrencyPEN, day(2024, time.July, 14)),
	})
	require.Len(t, byDate, 2)
	assert.Equal(t, "2024-07-07", byDate[0].Date)
	assert.Equal(t, "7", byDate[1].Totals.PEN.String())
	assert.Equal(t, 2, byDate[1].RecordsCount)

	repair := expense("8", offering.CurrencyPEN, day(2024, time.July, 1))
	repair.SubType = "plumbing"
	bySub := ExpensesBySubType([]offering.Expense{
		expense("4", offering.CurrencyPEN, day(2024, time.July, 1)),
		repair,
		expense("6", offering.CurrencyUSD, day(2024, time.July, 2)),
	})
	require.Len(t, bySub, 2)
	assert.Equal(t, "utilities", bySub[0].SubType)
	assert.Equal(t, "4", bySub[0].Totals.PEN.String())
	assert.Equal(t, "6", bySub[0].Totals.USD.String())
}

func TestIncomeByZone(t *testing.T) {
	zone := &membership.Zone{ZoneName: "Sur"}
	a := income("10", offering.CurrencyPEN, day(2024, time.August, 1))
	a.SubType, a.Zone = offering.SubTypeZonalFasting, zone
	b := income("5", offering.CurrencyPEN, day(2024, time.August, 9))
	b.SubType, b.Zone = offering.SubTypeZonalVigil, zone

	got := IncomeByZone(FilterIncomes([]offering.Income{a, b}, offering.SubTypeZonalFasting))
	require.Len(t, got, 1)
	assert.Equal(t, "10", got[0].Totals.PEN.String())
	assert.Equal(t, NoCopastorLabel, got[0].Copastor)

	both := IncomeByZone([]offering.Income{a, b})
	assert.Equal(t, "15", both[0].Totals.PEN.String())
	assert.Equal(t, day(2024, time.August, 9), both[0].LastDate)
}

func TestActiveOnlyRequiresActiveStatus(t *testing.T) {
	active := income("10", offering.CurrencyPEN, day(2025, time.March, 2))
	inactive := income("20", offering.CurrencyPEN, day(2025, time.March, 2))
	inactive.RecordStatus = membership.StatusInactive
	blank := income("30", offering.CurrencyPEN, day(2025, time.March, 2))
	blank.RecordStatus = ""

	got := ActiveOnly([]offering.Income{active, inactive, blank})
	require.Len(t, got, 1)
	assert.Equal(t, active.ID, got[0].ID)

	spent := expense("5", offering.CurrencyPEN, day(2025, time.March, 2))
	spent.RecordStatus = ""
	assert.Empty(t, ActiveOnly([]offering.Expense{spent}))
}
