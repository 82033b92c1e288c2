package snapshot

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/orgsight/orgsight/modules/directory/domain/aggregates/employee"
)

func ptr(v int64) *int64 { return &v }

func TestBuild_DetectsManagerCycle(t *testing.T) {
	records := []employee.Employee{
		employee.Hydrate(1, ptr(2), "a@example.com", employee.RoleManager, "EMEA", "", "", "", employee.StatusActive),
		employee.Hydrate(2, ptr(1), "b@example.com", employee.RoleManager, "EMEA", "", "", "", employee.StatusActive),
	}
	s, err := Build(1, time.Now(), records)
	require.Nil(t, s)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrIntegrity))
}

func TestBuild_RejectsSelfManager(t *testing.T) {
	records := []employee.Employee{
		employee.Hydrate(1, ptr(1), "a@example.com", employee.RoleManager, "EMEA", "", "", "", employee.StatusActive),
	}
	_, err := Build(1, time.Now(), records)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrIntegrity))
}

func TestBuild_RejectsDuplicateID(t *testing.T) {
	records := []employee.Employee{
		employee.Hydrate(7, nil, "a@example.com", employee.RoleManager, "EMEA", "", "", "", employee.StatusActive),
		employee.Hydrate(7, nil, "b@example.com", employee.RoleManager, "EMEA", "", "", "", employee.StatusActive),
	}
	_, err := Build(1, time.Now(), records)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrIntegrity))
}

func TestBuild_DanglingManagerBecomesRoot(t *testing.T) {
	records := []employee.Employee{
		employee.Hydrate(1, ptr(999), "a@example.com", employee.RoleManager, "EMEA", "", "", "", employee.StatusActive),
	}
	s, err := Build(1, time.Now(), records)
	require.NoError(t, err)
	require.Equal(t, 1, s.Size())
}

func TestSnapshot_DirectReportsFiltersInactive(t *testing.T) {
	records := []employee.Employee{
		employee.Hydrate(1, nil, "boss@example.com", employee.RoleManager, "EMEA", "", "", "", employee.StatusActive),
		employee.Hydrate(2, ptr(1), "r1@example.com", employee.RoleManager, "EMEA", "", "", "", employee.StatusActive),
		employee.Hydrate(3, ptr(1), "r2@example.com", employee.RoleManager, "EMEA", "", "", "", employee.StatusInactive),
	}
	s, err := Build(1, time.Now(), records)
	require.NoError(t, err)

	reports := s.DirectReports(1)
	require.Len(t, reports, 1)
	require.Equal(t, int64(2), reports[0].ID())
}

func TestSnapshot_RegionsAndLookups(t *testing.T) {
	records := []employee.Employee{
		employee.Hydrate(1, nil, "a@example.com", employee.RoleDirector, "EMEA", "", "", "", employee.StatusActive),
		employee.Hydrate(2, ptr(1), "b@example.com", employee.RoleManager, "APAC", "", "", "", employee.StatusActive),
		employee.Hydrate(3, ptr(1), "c@example.com", employee.RoleManager, "EMEA", "", "", "", employee.StatusInactive),
	}
	s, err := Build(42, time.Now(), records)
	require.NoError(t, err)
	require.Equal(t, uint64(42), s.Version())
	require.Equal(t, []string{"APAC", "EMEA"}, s.Regions())

	emea := s.InRegion("EMEA")
	require.Len(t, emea, 1, "inactive employees are excluded from region sets")
	require.Equal(t, int64(1), emea[0].ID())

	e, ok := s.FindByID(3)
	require.True(t, ok, "inactive employees remain addressable by id")
	require.False(t, e.IsActive())

	_, ok = s.FindByID(99)
	require.False(t, ok)

	require.Len(t, s.ActiveEmployees(), 2)
}
