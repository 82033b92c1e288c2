package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orgsight/orgsight/modules/access/domain/entities/filter"
	"github.com/orgsight/orgsight/modules/access/domain/entities/scope"
	"github.com/orgsight/orgsight/modules/directory/domain/aggregates/employee"
	"github.com/orgsight/orgsight/pkg/serrors"
)

func managerScope(ids []int64, region string) scope.DataScope {
	return scope.New(employee.RoleManager, ids, []string{region}, 1)
}

func directorScope(regions ...string) scope.DataScope {
	return scope.New(employee.RoleDirector, []int64{10, 11, 12}, regions, 1)
}

func TestCompile_ManagerUsesEmployeeIDColumn(t *testing.T) {
	s := managerScope([]int64{42, 7, 42, 13}, "EMEA")

	artifact, err := Compile(s, filter.TargetPowerBI)
	require.NoError(t, err)
	require.NotNil(t, artifact.PowerBI)
	require.Equal(t, "employees", artifact.PowerBI.Table)
	require.Equal(t, filter.ColumnEmployeeID, artifact.PowerBI.Column)
	require.Equal(t, "In", artifact.PowerBI.Operator)
	// Scope construction sorts and dedupes; values follow that order.
	require.Equal(t, []string{"7", "13", "42"}, artifact.PowerBI.Values)
}

func TestCompile_DirectorUsesRegionColumn(t *testing.T) {
	s := directorScope("EMEA")

	artifact, err := Compile(s, filter.TargetCatalog)
	require.NoError(t, err)
	require.NotNil(t, artifact.Catalog)
	require.Equal(t, filter.ColumnRegion, artifact.Catalog.Column)
	require.Equal(t, "region IN ($1)", artifact.Catalog.Expression)
	require.Equal(t, []string{"EMEA"}, artifact.Catalog.Args)
}

func TestCompile_CatalogPlaceholdersArePositional(t *testing.T) {
	s := scope.New(employee.RoleSVP, []int64{1, 2, 3}, []string{"APAC", "EMEA", "NA"}, 1)

	artifact, err := Compile(s, filter.TargetCatalog)
	require.NoError(t, err)
	require.Equal(t, "region IN ($1, $2, $3)", artifact.Catalog.Expression)
	require.Equal(t, []string{"APAC", "EMEA", "NA"}, artifact.Catalog.Args)
}

func TestCompile_AssistantContext(t *testing.T) {
	s := managerScope([]int64{5, 6}, "NA")

	artifact, err := Compile(s, filter.TargetAssistant)
	require.NoError(t, err)
	require.NotNil(t, artifact.Assistant)
	require.Equal(t, "manager", artifact.Assistant.ScopeLevel)
	require.Equal(t, []int64{5, 6}, artifact.Assistant.MemberIDs)
	require.Equal(t, []string{"NA"}, artifact.Assistant.Regions)

	d, err := Compile(directorScope("EMEA"), filter.TargetAssistant)
	require.NoError(t, err)
	// Member enumeration stays out of non-manager contexts; the region is
	// the boundary there.
	require.Empty(t, d.Assistant.MemberIDs)
	require.Equal(t, []string{"EMEA"}, d.Assistant.Regions)
}

func TestCompile_RejectsMalformedRegion(t *testing.T) {
	for _, region := range []string{
		"emea",
		"EMEA'; DROP TABLE employees; --",
		"EMEA OR 1=1",
		"",
		"E MEA",
	} {
		s := scope.New(employee.RoleDirector, []int64{1}, []string{region}, 1)
		_, err := Compile(s, filter.TargetCatalog)
		require.Error(t, err, "region %q must be rejected", region)
		require.True(t, serrors.IsCode(err, "ACCESS_INVALID_SCOPE_VALUE"))
	}
}

func TestCompile_RejectsEmptyRegionSet(t *testing.T) {
	// scope.New drops empty region strings during normalization, so a
	// director scope built from only blank regions reaches the compiler
	// with no regions at all. It must not compile to "region IN ()".
	for _, regions := range [][]string{nil, {}, {""}} {
		s := scope.New(employee.RoleDirector, []int64{1}, regions, 1)
		for _, target := range filter.Targets() {
			_, err := Compile(s, target)
			require.Error(t, err, "regions %v must not compile for %s", regions, target)
			require.True(t, serrors.IsCode(err, "ACCESS_INVALID_SCOPE_VALUE"))
		}
	}
}

func TestCompile_RejectsNonPositiveMemberID(t *testing.T) {
	s := managerScope([]int64{12, -4}, "EMEA")
	_, err := Compile(s, filter.TargetPowerBI)
	require.Error(t, err)
	require.True(t, serrors.IsCode(err, "ACCESS_INVALID_SCOPE_VALUE"))
}

func TestCompile_UnknownTarget(t *testing.T) {
	_, err := Compile(managerScope([]int64{1}, "EMEA"), filter.Target("tableau"))
	require.Error(t, err)
	require.True(t, serrors.IsCode(err, "ACCESS_UNKNOWN_TARGET"))
}

func TestCompileAll_CoversEveryTarget(t *testing.T) {
	artifacts, err := CompileAll(managerScope([]int64{1, 2}, "EMEA"))
	require.NoError(t, err)
	require.Len(t, artifacts, 3)
	for _, target := range filter.Targets() {
		require.Contains(t, artifacts, target)
		require.Equal(t, target, artifacts[target].Target)
	}
}
