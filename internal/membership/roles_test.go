package membership

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleSetPrimaryRole(t *testing.T) {
	set := NewRoleSet(RoleDisciple, RolePreacher)
	assert.Equal(t, RolePreacher, set.PrimaryRole())
	assert.True(t, set.Has(RoleDisciple))
	assert.False(t, set.HoldsExclusively(RoleDisciple))
	assert.True(t, set.HoldsExclusively(RolePreacher))
	assert.Equal(t, []Role{RolePreacher, RoleDisciple}, set.Roles())
	assert.Equal(t, Role(0), RoleSet(0).PrimaryRole())
}

func TestIsPureDiscipleExcludesHigherRoles(t *testing.T) {
	cases := []struct {
		name  string
		roles RoleSet
		want  bool
	}{
		{"disciple only", NewRoleSet(RoleDisciple), true},
		{"disciple and preacher", NewRoleSet(RoleDisciple, RolePreacher), false},
		{"disciple and treasurer", NewRoleSet(RoleDisciple, RoleTreasurer), false},
		{"disciple and pastor", NewRoleSet(RoleDisciple, RolePastor), false},
		{"preacher only", NewRoleSet(RolePreacher), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsPureDisciple(Member{Roles: tc.roles}))
		})
	}
}

func TestFlattenKeepsCollectionOrder(t *testing.T) {
	roster := Roster{
		Pastors:   []Member{{Person: Person{FirstNames: "P"}, Roles: NewRoleSet(RolePastor)}},
		Preachers: []Member{{Person: Person{FirstNames: "Pr"}, Roles: NewRoleSet(RolePreacher, RoleDisciple)}},
		Disciples: []Member{
			{Person: Person{FirstNames: "D1"}, Roles: NewRoleSet(RoleDisciple)},
			{Person: Person{FirstNames: "D2"}, Roles: NewRoleSet(RoleDisciple, RolePreacher)},
		},
	}
	flat := Flatten(roster)
	require.Len(t, flat, 4)
	assert.Equal(t, "P", flat[0].Person.FirstNames)
	assert.Equal(t, "D2", flat[3].Person.FirstNames)

	pure := PureDisciples(flat)
	require.Len(t, pure, 1)
	assert.Equal(t, "D1", pure[0].Person.FirstNames)
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Supervisor ")
	require.NoError(t, err)
	assert.Equal(t, RoleSupervisor, role)
	assert.Equal(t, "supervisor", role.String())

	_, err = ParseRole("bishop")
	assert.Error(t, err)
}

func TestRecordStatusActive(t *testing.T) {
	assert.True(t, StatusActive.Active())
	assert.False(t, StatusInactive.Active())
	assert.False(t, RecordStatus("").Active())

	m := Member{RecordStatus: ""}
	assert.False(t, m.Active())
	m.RecordStatus = StatusActive
	require.True(t, m.Active())
}
