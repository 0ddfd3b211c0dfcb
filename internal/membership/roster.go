package membership

// Roster carries the five role collections as loaded from storage.
type Roster struct {
	Pastors     []Member
	Copastors   []Member
	Supervisors []Member
	Preachers   []Member
	Disciples   []Member
}

// Len returns the number of records across every collection.
func (r Roster) Len() int {
	return len(r.Pastors) + len(r.Copastors) + len(r.Supervisors) + len(r.Preachers) + len(r.Disciples)
}

// Flatten concatenates the collections, pastors first and disciples last.
// Formatters read the first element for shared context, so the order is fixed.
func Flatten(r Roster) []Member {
	out := make([]Member, 0, r.Len())
	out = append(out, r.Pastors...)
	out = append(out, r.Copastors...)
	out = append(out, r.Supervisors...)
	out = append(out, r.Preachers...)
	out = append(out, r.Disciples...)
	return out
}

// FilterByRole keeps the members whose highest role is role. For
// RoleDisciple this is the pure disciple predicate.
func FilterByRole(members []Member, role Role) []Member {
	out := make([]Member, 0, len(members))
	for _, m := range members {
		if m.Roles.HoldsExclusively(role) {
			out = append(out, m)
		}
	}
	return out
}

// PureDisciples keeps members for which IsPureDisciple holds.
func PureDisciples(members []Member) []Member {
	return FilterByRole(members, RoleDisciple)
}
