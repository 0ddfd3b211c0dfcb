package membership

import (
	"fmt"
	"strings"
)

// Role is a single ministry role.
type Role uint8

const (
	RolePastor Role = 1 << iota
	RoleCopastor
	RoleSupervisor
	RolePreacher
	RoleTreasurer
	RoleDisciple
)

// rankedRoles lists roles from highest to lowest.
var rankedRoles = []Role{RolePastor, RoleCopastor, RoleSupervisor, RolePreacher, RoleTreasurer, RoleDisciple}

// higherThanDisciple is every role that disqualifies a pure disciple.
const higherThanDisciple = RoleSet(RolePastor | RoleCopastor | RoleSupervisor | RolePreacher | RoleTreasurer)

var roleNames = map[Role]string{
	RolePastor:     "pastor",
	RoleCopastor:   "copastor",
	RoleSupervisor: "supervisor",
	RolePreacher:   "preacher",
	RoleTreasurer:  "treasurer",
	RoleDisciple:   "disciple",
}

// String returns the lower-case role label.
func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", uint8(r))
}

// ParseRole resolves a role label.
func ParseRole(s string) (Role, error) {
	needle := strings.ToLower(strings.TrimSpace(s))
	for role, name := range roleNames {
		if name == needle {
			return role, nil
		}
	}
	return 0, fmt.Errorf("membership: unknown role %q", s)
}

// RoleSet is a bitset of roles held by one person.
type RoleSet uint8

// NewRoleSet builds a set from the given roles.
func NewRoleSet(roles ...Role) RoleSet {
	var set RoleSet
	for _, r := range roles {
		set |= RoleSet(r)
	}
	return set
}

// Has reports whether the set contains role.
func (s RoleSet) Has(role Role) bool {
	return s&RoleSet(role) != 0
}

// With returns a copy of the set including role.
func (s RoleSet) With(role Role) RoleSet {
	return s | RoleSet(role)
}

// PrimaryRole returns the highest ranked role in the set, or 0 when empty.
func (s RoleSet) PrimaryRole() Role {
	for _, r := range rankedRoles {
		if s.Has(r) {
			return r
		}
	}
	return 0
}

// HoldsExclusively reports whether role is the highest role held.
func (s RoleSet) HoldsExclusively(role Role) bool {
	if role == RoleDisciple {
		return s.Has(RoleDisciple) && s&higherThanDisciple == 0
	}
	return s.Has(role) && s.PrimaryRole() == role
}

// Roles lists the roles in rank order.
func (s RoleSet) Roles() []Role {
	out := make([]Role, 0, len(rankedRoles))
	for _, r := range rankedRoles {
		if s.Has(r) {
			out = append(out, r)
		}
	}
	return out
}

// IsPureDisciple is true for disciples that hold no pastor, copastor,
// supervisor, preacher or treasurer role.
func IsPureDisciple(m Member) bool {
	return m.Roles.HoldsExclusively(RoleDisciple)
}
