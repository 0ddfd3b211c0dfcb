package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/ekklesia-erp/ekklesia/internal/membership"
	"github.com/ekklesia-erp/ekklesia/internal/offering"
	"github.com/ekklesia-erp/ekklesia/internal/platform/db"
)

// PGRepository reads church records from Postgres.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewPGRepository constructs a Postgres backed repository.
func NewPGRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// snapshot is every hierarchy record of one church, linked in memory.
type snapshot struct {
	church  *membership.Church
	roster  membership.Roster
	groups  []membership.FamilyGroup
	zones   map[uuid.UUID]*membership.Zone
	byGroup map[uuid.UUID]*membership.FamilyGroup
	leaders map[uuid.UUID]*membership.Leader
}

// roleTables maps each role collection to its table. Table names are
// constants and never come from input.
var roleTables = []struct {
	table string
	dest  func(*membership.Roster) *[]membership.Member
}{
	{"pastors", func(r *membership.Roster) *[]membership.Member { return &r.Pastors }},
	{"copastors", func(r *membership.Roster) *[]membership.Member { return &r.Copastors }},
	{"supervisors", func(r *membership.Roster) *[]membership.Member { return &r.Supervisors }},
	{"preachers", func(r *membership.Roster) *[]membership.Member { return &r.Preachers }},
	{"disciples", func(r *membership.Roster) *[]membership.Member { return &r.Disciples }},
}

// LoadRoster reads the five role tables of one church.
func (r *PGRepository) LoadRoster(ctx context.Context, churchID uuid.UUID) (membership.Roster, error) {
	snap, err := r.loadSnapshot(ctx, churchID)
	if err != nil {
		return membership.Roster{}, err
	}
	return snap.roster, nil
}

// ListFamilyGroups returns the family groups of one church with their
// disciples and leaders attached.
func (r *PGRepository) ListFamilyGroups(ctx context.Context, churchID uuid.UUID) ([]membership.FamilyGroup, error) {
	snap, err := r.loadSnapshot(ctx, churchID)
	if err != nil {
		return nil, err
	}
	return snap.groups, nil
}

func (r *PGRepository) loadSnapshot(ctx context.Context, churchID uuid.UUID) (*snapshot, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("analytics repo not initialised")
	}
	snap := &snapshot{
		zones:   map[uuid.UUID]*membership.Zone{},
		byGroup: map[uuid.UUID]*membership.FamilyGroup{},
		leaders: map[uuid.UUID]*membership.Leader{},
	}
	var (
		zoneLeaders  map[uuid.UUID][2]pgtype.UUID
		groupLinks   map[uuid.UUID]groupLink
		memberLinks  []linkedMember
		memberGroups = map[uuid.UUID][]membership.Member{}
	)
	err := db.WithSnapshot(ctx, r.pool, func(tx pgx.Tx) error {
		church, err := loadChurch(ctx, tx, churchID)
		if err != nil {
			return err
		}
		snap.church = church
		if zoneLeaders, err = loadZones(ctx, tx, snap); err != nil {
			return err
		}
		if groupLinks, err = loadFamilyGroups(ctx, tx, snap); err != nil {
			return err
		}
		for _, rt := range roleTables {
			members, links, err := loadMembers(ctx, tx, rt.table, snap.church)
			if err != nil {
				return err
			}
			*rt.dest(&snap.roster) = members
			dest := *rt.dest(&snap.roster)
			for i := range dest {
				memberLinks = append(memberLinks, linkedMember{member: &dest[i], link: links[i]})
				snap.leaders[dest[i].ID] = &membership.Leader{
					ID:        dest[i].ID,
					FirstName: dest[i].Person.FirstNames,
					LastName:  dest[i].Person.LastNames,
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", churchID, err)
	}

	for id, ids := range zoneLeaders {
		z := snap.zones[id]
		z.Copastor = snap.leader(ids[0])
		z.Supervisor = snap.leader(ids[1])
	}
	for i := range snap.groups {
		g := &snap.groups[i]
		link := groupLinks[g.ID]
		g.Zone = snap.zone(link.zone)
		g.Preacher = snap.leader(link.preacher)
		g.Supervisor = snap.leader(link.supervisor)
		g.Copastor = snap.leader(link.copastor)
	}
	for _, ml := range memberLinks {
		m, link := ml.member, ml.link
		m.Zone = snap.zone(link.zone)
		m.FamilyGroup = snap.group(link.group)
		m.Pastor = snap.leader(link.pastor)
		m.Copastor = snap.leader(link.copastor)
		m.Supervisor = snap.leader(link.supervisor)
		m.Preacher = snap.leader(link.preacher)
		if link.group.Valid {
			id := uuid.UUID(link.group.Bytes)
			memberGroups[id] = append(memberGroups[id], *m)
		}
	}
	for i := range snap.groups {
		snap.groups[i].Disciples = memberGroups[snap.groups[i].ID]
	}
	return snap, nil
}

func (s *snapshot) leader(id pgtype.UUID) *membership.Leader {
	if !id.Valid {
		return nil
	}
	return s.leaders[uuid.UUID(id.Bytes)]
}

func (s *snapshot) zone(id pgtype.UUID) *membership.Zone {
	if !id.Valid {
		return nil
	}
	return s.zones[uuid.UUID(id.Bytes)]
}

func (s *snapshot) group(id pgtype.UUID) *membership.FamilyGroup {
	if !id.Valid {
		return nil
	}
	return s.byGroup[uuid.UUID(id.Bytes)]
}

func loadChurch(ctx context.Context, q querier, churchID uuid.UUID) (*membership.Church, error) {
	const query = `
SELECT id, church_name, abbreviated_church_name, is_anexe, district, urban_sector, record_status
FROM churches
WHERE id = $1`
	rows, err := q.Query(ctx, query, churchID)
	if err != nil {
		return nil, err
	}
	churches, err := scanChurches(rows)
	if err != nil {
		return nil, err
	}
	if len(churches) == 0 {
		return nil, ErrChurchNotFound
	}
	return &churches[0], nil
}

// ListActiveChurches returns every active church ordered by name.
func (r *PGRepository) ListActiveChurches(ctx context.Context) ([]membership.Church, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("analytics repo not initialised")
	}
	const query = `
SELECT id, church_name, abbreviated_church_name, is_anexe, district, urban_sector, record_status
FROM churches
WHERE record_status = 'active'
ORDER BY church_name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	return scanChurches(rows)
}

func scanChurches(rows pgx.Rows) ([]membership.Church, error) {
	defer rows.Close()
	var out []membership.Church
	for rows.Next() {
		var c membership.Church
		var status string
		if err := rows.Scan(&c.ID, &c.ChurchName, &c.AbbreviatedChurchName, &c.IsAnexe, &c.District, &c.UrbanSector, &status); err != nil {
			return nil, err
		}
		c.RecordStatus = membership.RecordStatus(status)
		out = append(out, c)
	}
	return out, rows.Err()
}

func loadZones(ctx context.Context, q querier, snap *snapshot) (map[uuid.UUID][2]pgtype.UUID, error) {
	const query = `
SELECT id, zone_name, department, province, district, record_status, copastor_id, supervisor_id
FROM zones
WHERE church_id = $1
ORDER BY zone_name`
	rows, err := q.Query(ctx, query, snap.church.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	leaders := map[uuid.UUID][2]pgtype.UUID{}
	for rows.Next() {
		z := &membership.Zone{Church: snap.church}
		var status string
		var copastor, supervisor pgtype.UUID
		if err := rows.Scan(&z.ID, &z.ZoneName, &z.Department, &z.Province, &z.District, &status, &copastor, &supervisor); err != nil {
			return nil, err
		}
		z.RecordStatus = membership.RecordStatus(status)
		snap.zones[z.ID] = z
		leaders[z.ID] = [2]pgtype.UUID{copastor, supervisor}
	}
	return leaders, rows.Err()
}

type groupLink struct {
	zone, preacher, supervisor, copastor pgtype.UUID
}

func loadFamilyGroups(ctx context.Context, q querier, snap *snapshot) (map[uuid.UUID]groupLink, error) {
	const query = `
SELECT id, family_group_name, family_group_code, service_time, district, urban_sector, address,
       record_status, created_at, inactivated_at, zone_id, preacher_id, supervisor_id, copastor_id
FROM family_groups
WHERE church_id = $1
ORDER BY family_group_code`
	rows, err := q.Query(ctx, query, snap.church.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	links := map[uuid.UUID]groupLink{}
	for rows.Next() {
		g := membership.FamilyGroup{Church: snap.church}
		var status string
		var link groupLink
		if err := rows.Scan(&g.ID, &g.FamilyGroupName, &g.FamilyGroupCode, &g.ServiceTime, &g.District, &g.UrbanSector, &g.Address,
			&status, &g.CreatedAt, &g.InactivatedAt, &link.zone, &link.preacher, &link.supervisor, &link.copastor); err != nil {
			return nil, err
		}
		g.RecordStatus = membership.RecordStatus(status)
		snap.groups = append(snap.groups, g)
		links[g.ID] = link
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range snap.groups {
		snap.byGroup[snap.groups[i].ID] = &snap.groups[i]
	}
	return links, nil
}

type memberLink struct {
	zone, group, pastor, copastor, supervisor, preacher pgtype.UUID
}

type linkedMember struct {
	member *membership.Member
	link   memberLink
}

const memberColumns = `
id, first_names, last_names, gender, birth_date,
CASE WHEN birth_date IS NULL THEN NULL ELSE date_part('year', age(birth_date))::int END,
marital_status, country, department, province, district, urban_sector, address, conversion_date,
roles, record_status, created_at, inactivated_at,
zone_id, family_group_id, pastor_id, copastor_id, supervisor_id, preacher_id`

func loadMembers(ctx context.Context, q querier, table string, church *membership.Church) ([]membership.Member, []memberLink, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE church_id = $1 ORDER BY created_at, id`, memberColumns, table)
	rows, err := q.Query(ctx, query, church.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", table, err)
	}
	defer rows.Close()
	var (
		members []membership.Member
		links   []memberLink
	)
	for rows.Next() {
		m := membership.Member{Church: church}
		var (
			gender, marital, status string
			birth                   *time.Time
			roles                   []string
			link                    memberLink
		)
		p := &m.Person
		if err := rows.Scan(&m.ID, &p.FirstNames, &p.LastNames, &gender, &birth, &p.Age,
			&marital, &p.Country, &p.Department, &p.Province, &p.District, &p.UrbanSector, &p.Address, &p.ConversionDate,
			&roles, &status, &m.CreatedAt, &m.InactivatedAt,
			&link.zone, &link.group, &link.pastor, &link.copastor, &link.supervisor, &link.preacher); err != nil {
			return nil, nil, fmt.Errorf("%s: %w", table, err)
		}
		if birth != nil {
			p.BirthDate = *birth
		}
		p.Gender = membership.Gender(gender)
		p.MaritalStatus = membership.MaritalStatus(marital)
		m.RecordStatus = membership.RecordStatus(status)
		for _, name := range roles {
			role, err := membership.ParseRole(name)
			if err != nil {
				return nil, nil, fmt.Errorf("%s %s: %w", table, m.ID, err)
			}
			m.Roles = m.Roles.With(role)
		}
		members = append(members, m)
		links = append(links, link)
	}
	return members, links, rows.Err()
}

// ListOfferingIncomes returns the incomes of one church dated in
// [filter.From, filter.To), oldest first.
func (r *PGRepository) ListOfferingIncomes(ctx context.Context, filter LedgerFilter) ([]offering.Income, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("analytics repo not initialised")
	}
	const query = `
SELECT i.id, i.type, i.sub_type, i.category, i.shift, i.amount::text, i.currency, i.date, i.record_status,
       i.exchange_rate::text, i.exchange_currency_types, i.created_at,
       i.family_group_id, i.zone_id, i.member_id, i.member_type,
       d.id, d.first_names, d.last_names, d.country
FROM offering_incomes i
LEFT JOIN external_donors d ON d.id = i.external_donor_id
WHERE i.church_id = $1 AND i.date >= $2 AND i.date < $3
  AND ($4 OR i.record_status = 'active')
ORDER BY i.date, i.created_at`
	rows, err := r.pool.Query(ctx, query, filter.ChurchID, filter.From, filter.To, filter.IncludeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type incomeLink struct {
		group, zone, member pgtype.UUID
		memberRole          *string
	}
	var (
		incomes []offering.Income
		links   []incomeLink
		linked  bool
	)
	for rows.Next() {
		var (
			inc                         offering.Income
			link                        incomeLink
			amount, currency, status    string
			shift, category, rate, exch *string
			donorID                     pgtype.UUID
			donorFirst, donorLast       *string
			donorCountry                *string
		)
		if err := rows.Scan(&inc.ID, &inc.Type, &inc.SubType, &category, &shift, &amount, &currency, &inc.Date, &status,
			&rate, &exch, &inc.CreatedAt,
			&link.group, &link.zone, &link.member, &link.memberRole,
			&donorID, &donorFirst, &donorLast, &donorCountry); err != nil {
			return nil, err
		}
		if inc.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("income %s amount: %w", inc.ID, err)
		}
		if rate != nil {
			v, err := decimal.NewFromString(*rate)
			if err != nil {
				return nil, fmt.Errorf("income %s exchange rate: %w", inc.ID, err)
			}
			inc.ExchangeRate = &v
		}
		inc.Currency = offering.Currency(currency)
		inc.RecordStatus = membership.RecordStatus(status)
		inc.Category = deref(category)
		inc.Shift = offering.Shift(deref(shift))
		inc.ExchangeCurrencyTypes = deref(exch)
		if donorID.Valid {
			inc.ExternalDonor = &offering.ExternalDonor{
				ID:        uuid.UUID(donorID.Bytes),
				FirstName: deref(donorFirst),
				LastName:  deref(donorLast),
				Country:   deref(donorCountry),
			}
		}
		if link.group.Valid || link.zone.Valid || link.member.Valid {
			linked = true
		}
		incomes = append(incomes, inc)
		links = append(links, link)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	church, err := loadChurch(ctx, r.pool, filter.ChurchID)
	if err != nil {
		return nil, err
	}
	var snap *snapshot
	if linked {
		if snap, err = r.loadSnapshot(ctx, filter.ChurchID); err != nil {
			return nil, err
		}
		church = snap.church
	}
	for i := range incomes {
		inc := &incomes[i]
		inc.Church = church
		if snap == nil {
			continue
		}
		link := links[i]
		inc.FamilyGroup = snap.group(link.group)
		inc.Zone = snap.zone(link.zone)
		if inc.Zone == nil && inc.FamilyGroup != nil {
			inc.Zone = inc.FamilyGroup.Zone
		}
		inc.Member = snap.leader(link.member)
		if link.memberRole != nil {
			if role, err := membership.ParseRole(*link.memberRole); err == nil {
				inc.MemberRole = role
			}
		}
	}
	return incomes, nil
}

// ListOfferingExpenses returns the expenses of one church dated in
// [filter.From, filter.To), oldest first.
func (r *PGRepository) ListOfferingExpenses(ctx context.Context, filter LedgerFilter) ([]offering.Expense, error) {
	if r == nil || r.pool == nil {
		return nil, fmt.Errorf("analytics repo not initialised")
	}
	church, err := loadChurch(ctx, r.pool, filter.ChurchID)
	if err != nil {
		return nil, err
	}
	const query = `
SELECT id, type, sub_type, amount::text, currency, date, record_status,
       exchange_rate::text, exchange_currency_types, created_at
FROM offering_expenses
WHERE church_id = $1 AND date >= $2 AND date < $3
  AND ($4 OR record_status = 'active')
ORDER BY date, created_at`
	rows, err := r.pool.Query(ctx, query, filter.ChurchID, filter.From, filter.To, filter.IncludeInactive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var expenses []offering.Expense
	for rows.Next() {
		var (
			exp                      offering.Expense
			amount, currency, status string
			subType, rate, exch      *string
		)
		if err := rows.Scan(&exp.ID, &exp.Type, &subType, &amount, &currency, &exp.Date, &status,
			&rate, &exch, &exp.CreatedAt); err != nil {
			return nil, err
		}
		if exp.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("expense %s amount: %w", exp.ID, err)
		}
		if rate != nil {
			v, err := decimal.NewFromString(*rate)
			if err != nil {
				return nil, fmt.Errorf("expense %s exchange rate: %w", exp.ID, err)
			}
			exp.ExchangeRate = &v
		}
		exp.SubType = deref(subType)
		exp.Currency = offering.Currency(currency)
		exp.RecordStatus = membership.RecordStatus(status)
		exp.ExchangeCurrencyTypes = deref(exch)
		exp.Church = church
		expenses = append(expenses, exp)
	}
	return expenses, rows.Err()
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
