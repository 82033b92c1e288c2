package employee

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRoleLevel(t *testing.T) {
	for input, want := range map[string]RoleLevel{
		"manager":  RoleManager,
		"Director": RoleDirector,
		" SVP ":    RoleSVP,
	} {
		got, err := ParseRoleLevel(input)
		require.NoError(t, err, input)
		require.Equal(t, want, got)
	}

	_, err := ParseRoleLevel("vp")
	require.Error(t, err)
}

func TestRoleLevelRankOrdering(t *testing.T) {
	require.Less(t, RoleManager.Rank(), RoleDirector.Rank())
	require.Less(t, RoleDirector.Rank(), RoleSVP.Rank())
	require.Zero(t, RoleLevel("cfo").Rank())
}

func TestEmployeeManagerID(t *testing.T) {
	boss := int64(3)
	e := New(7, &boss, "e@example.com", RoleManager, "EMEA")

	id, ok := e.ManagerID()
	require.True(t, ok)
	require.Equal(t, boss, id)

	root := New(1, nil, "svp@example.com", RoleSVP, "EMEA")
	_, ok = root.ManagerID()
	require.False(t, ok)
	require.True(t, root.IsActive())
}
