package analytics

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ekklesia-erp/ekklesia/internal/membership"
	"github.com/ekklesia-erp/ekklesia/internal/metrics"
	"github.com/ekklesia-erp/ekklesia/internal/offering"
)

// DashboardFilter scopes the dashboard to one church as of one day.
type DashboardFilter struct {
	ChurchID uuid.UUID `validate:"required"`
	AsOf     time.Time
	Sundays  int `validate:"min=0,max=104"`
	Limit    int `validate:"min=0,max=100"`
}

// Dashboard is the landing page summary of one church.
type Dashboard struct {
	ChurchID        uuid.UUID                        `json:"church_id"`
	AsOf            string                           `json:"as_of"`
	LastSundays     []metrics.ShiftOfferings         `json:"last_sundays_offerings"`
	TopFamilyGroups []metrics.TopFamilyGroupOffering `json:"top_family_groups_offerings"`
	MostPopulated   []metrics.FamilyGroupPopulation  `json:"most_populated_family_groups"`
	LeastPopulated  []metrics.FamilyGroupPopulation  `json:"least_populated_family_groups"`
	Members         metrics.MemberProportion         `json:"members_proportion"`
	FamilyGroups    metrics.Proportion               `json:"family_groups_proportion"`
}

// Dashboard computes every dashboard block concurrently. Each block is
// cached on its own so a bump refreshes them independently.
func (s *Service) Dashboard(ctx context.Context, filter DashboardFilter) (Dashboard, error) {
	if err := s.validate.Struct(filter); err != nil {
		return Dashboard{}, fmt.Errorf("%w: %s", ErrInvalidQuery, describeValidation(err))
	}
	if filter.AsOf.IsZero() {
		filter.AsOf = time.Now()
	}
	asOf := filter.AsOf.UTC().Truncate(24 * time.Hour)
	if filter.Sundays == 0 {
		filter.Sundays = s.defaults.Sundays
	}
	if filter.Limit == 0 {
		filter.Limit = s.defaults.PopulationLimit
	}
	base := []string{"dashboard", filter.ChurchID.String(), asOf.Format("2006-01-02"), strconv.Itoa(filter.Sundays), strconv.Itoa(filter.Limit)}
	part := func(name string) []string { return append(append([]string{}, base...), name) }

	out := Dashboard{ChurchID: filter.ChurchID, AsOf: asOf.Format("2006-01-02")}
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		v, err := cached(ctx, s, part("sundays"), func(ctx context.Context) ([]metrics.ShiftOfferings, error) {
			incomes, err := s.incomes(ctx, LedgerFilter{
				ChurchID: filter.ChurchID,
				From:     asOf.AddDate(0, 0, -7*filter.Sundays),
				To:       asOf.AddDate(0, 0, 1),
			})
			if err != nil {
				return nil, err
			}
			incomes = metrics.FilterIncomes(metrics.ActiveOnly(incomes), offering.SubTypeSundayService)
			return timedValue(s, "dashboard_last_sundays", func() []metrics.ShiftOfferings {
				return metrics.LastSundaysOfferings(incomes, filter.Sundays)
			}), nil
		})
		out.LastSundays = v
		return err
	})

	g.Go(func() error {
		v, err := cached(ctx, s, part("top_family_groups"), func(ctx context.Context) ([]metrics.TopFamilyGroupOffering, error) {
			from, to := ledgerWindow(metrics.YearOf(asOf), time.January, time.December)
			incomes, err := s.incomes(ctx, LedgerFilter{ChurchID: filter.ChurchID, From: from, To: to})
			if err != nil {
				return nil, err
			}
			incomes = metrics.FilterIncomes(metrics.ActiveOnly(incomes), offering.SubTypeFamilyGroup)
			return timedValue(s, "dashboard_top_family_groups", func() []metrics.TopFamilyGroupOffering {
				return metrics.TopFamilyGroupsOfferings(incomes)
			}), nil
		})
		out.TopFamilyGroups = v
		return err
	})

	g.Go(func() error {
		type population struct {
			Most       []metrics.FamilyGroupPopulation `json:"most"`
			Least      []metrics.FamilyGroupPopulation `json:"least"`
			Proportion metrics.Proportion              `json:"proportion"`
		}
		v, err := cached(ctx, s, part("family_groups"), func(ctx context.Context) (population, error) {
			groups, err := s.familyGroups(ctx, filter.ChurchID)
			if err != nil {
				return population{}, err
			}
			active := activeFamilyGroups(groups)
			return population{
				Most:       metrics.FamilyGroupsByPopulation(active, metrics.MostPopulated, filter.Limit),
				Least:      metrics.FamilyGroupsByPopulation(active, metrics.LeastPopulated, filter.Limit),
				Proportion: metrics.FamilyGroupProportions(groups),
			}, nil
		})
		out.MostPopulated, out.LeastPopulated, out.FamilyGroups = v.Most, v.Least, v.Proportion
		return err
	})

	g.Go(func() error {
		v, err := cached(ctx, s, part("members"), func(ctx context.Context) (metrics.MemberProportion, error) {
			roster, err := s.roster(ctx, filter.ChurchID)
			if err != nil {
				return metrics.MemberProportion{}, err
			}
			return metrics.MemberProportions(membership.Flatten(roster)), nil
		})
		out.Members = v
		return err
	})

	if err := g.Wait(); err != nil {
		return Dashboard{}, fmt.Errorf("analytics: dashboard: %w", err)
	}
	return out, nil
}

// NetResult returns the typed year-over-year comparison used by exports.
func (s *Service) NetResult(ctx context.Context, churchID uuid.UUID, year int, currency offering.Currency) (metrics.NetResultComparison, error) {
	r, err := s.resolve(Query{
		SearchType: IncomeAndExpensesComparative,
		ChurchID:   churchID,
		Year:       year,
		Currency:   currency,
	})
	if err != nil {
		return metrics.NetResultComparison{}, err
	}
	parts := append(r.cacheParts(), "typed")
	return cached(ctx, s, parts, func(ctx context.Context) (metrics.NetResultComparison, error) {
		start := time.Now()
		out, err := s.netResult(ctx, r)
		if err != nil {
			return metrics.NetResultComparison{}, fmt.Errorf("analytics: net result: %w", err)
		}
		s.observe(string(r.SearchType), time.Since(start))
		return out, nil
	})
}

func timedValue[T any](s *Service, name string, fn func() T) T {
	start := time.Now()
	v := fn()
	s.observe(name, time.Since(start))
	return v
}
