package analytics

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ekklesia-erp/ekklesia/internal/membership"
	"github.com/ekklesia-erp/ekklesia/internal/offering"
)

// LedgerFilter scopes offering records to one church and a stored-date
// range [From, To).
type LedgerFilter struct {
	ChurchID        uuid.UUID
	From            time.Time
	To              time.Time
	IncludeInactive bool
}

// Repository loads the records the formatters work on.
type Repository interface {
	LoadRoster(ctx context.Context, churchID uuid.UUID) (membership.Roster, error)
	ListFamilyGroups(ctx context.Context, churchID uuid.UUID) ([]membership.FamilyGroup, error)
	ListOfferingIncomes(ctx context.Context, filter LedgerFilter) ([]offering.Income, error)
	ListOfferingExpenses(ctx context.Context, filter LedgerFilter) ([]offering.Expense, error)
	ListActiveChurches(ctx context.Context) ([]membership.Church, error)
}

// FormatterObserver records how long each report takes to build.
type FormatterObserver interface {
	ObserveFormatter(name string, elapsed time.Duration)
}

// Service coordinates report execution with the cache layer.
type Service struct {
	repo     Repository
	cache    *Cache
	validate *validator.Validate
	observer FormatterObserver
	logger   *slog.Logger
	defaults Defaults
}

// Defaults holds the limits used when a request leaves them unset.
type Defaults struct {
	TopLimit        int
	Sundays         int
	PopulationLimit int
}

// Option customises a Service.
type Option func(*Service)

// WithObserver attaches formatter timing.
func WithObserver(o FormatterObserver) Option {
	return func(s *Service) { s.observer = o }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaults overrides the dashboard limits.
func WithDefaults(d Defaults) Option {
	return func(s *Service) {
		if d.Sundays > 0 {
			s.defaults.Sundays = d.Sundays
		}
		if d.PopulationLimit > 0 {
			s.defaults.PopulationLimit = d.PopulationLimit
		}
		if d.TopLimit > 0 {
			s.defaults.TopLimit = d.TopLimit
		}
	}
}

// NewService wires a Repository with a Cache helper.
func NewService(repo Repository, cache *Cache, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		cache:    cache,
		validate: validator.New(),
		logger:   slog.Default(),
		defaults: Defaults{TopLimit: 10, Sundays: 14, PopulationLimit: 7},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cache exposes the cache helper for invalidation wiring.
func (s *Service) Cache() *Cache {
	return s.cache
}

// Query builds the report named by q.SearchType and returns it as JSON.
func (s *Service) Query(ctx context.Context, q Query) (json.RawMessage, error) {
	r, err := s.resolve(q)
	if err != nil {
		return nil, err
	}
	search := searches[r.SearchType]
	return cached(ctx, s, r.cacheParts(), func(ctx context.Context) (json.RawMessage, error) {
		start := time.Now()
		value, err := search(ctx, s, r)
		if err != nil {
			return nil, fmt.Errorf("analytics: %s: %w", r.SearchType, err)
		}
		s.observe(string(r.SearchType), time.Since(start))
		return json.Marshal(value)
	})
}

func (s *Service) observe(name string, elapsed time.Duration) {
	if s.observer != nil {
		s.observer.ObserveFormatter(name, elapsed)
	}
}

func (s *Service) roster(ctx context.Context, churchID uuid.UUID) (membership.Roster, error) {
	roster, err := s.repo.LoadRoster(ctx, churchID)
	if err != nil {
		return membership.Roster{}, fmt.Errorf("load roster: %w", err)
	}
	return roster, nil
}

func (s *Service) familyGroups(ctx context.Context, churchID uuid.UUID) ([]membership.FamilyGroup, error) {
	groups, err := s.repo.ListFamilyGroups(ctx, churchID)
	if err != nil {
		return nil, fmt.Errorf("list family groups: %w", err)
	}
	return groups, nil
}

func (s *Service) incomes(ctx context.Context, filter LedgerFilter) ([]offering.Income, error) {
	incomes, err := s.repo.ListOfferingIncomes(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list offering incomes: %w", err)
	}
	return incomes, nil
}

func (s *Service) expenses(ctx context.Context, filter LedgerFilter) ([]offering.Expense, error) {
	expenses, err := s.repo.ListOfferingExpenses(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list offering expenses: %w", err)
	}
	return expenses, nil
}

// ActiveChurches lists the churches the warmup job iterates.
func (s *Service) ActiveChurches(ctx context.Context) ([]membership.Church, error) {
	churches, err := s.repo.ListActiveChurches(ctx)
	if err != nil {
		return nil, fmt.Errorf("analytics: list active churches: %w", err)
	}
	return churches, nil
}
