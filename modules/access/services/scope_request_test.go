package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orgsight/orgsight/modules/access/domain/entities/filter"
	"github.com/orgsight/orgsight/modules/access/domain/entities/scope"
	"github.com/orgsight/orgsight/modules/directory/domain/aggregates/employee"
)

func TestScopeRequest_HappyPathTransitions(t *testing.T) {
	req := newScopeRequest(1)
	require.Equal(t, StateRequested, req.State())

	require.NoError(t, req.transition(StateResolving))
	require.NoError(t, req.transition(StateCompiled))
	require.NoError(t, req.transition(StateActive))
	require.Equal(t, StateActive, req.State())
}

func TestScopeRequest_IllegalTransitions(t *testing.T) {
	req := newScopeRequest(1)

	require.Error(t, req.transition(StateCompiled))
	require.Error(t, req.transition(StateActive))

	require.NoError(t, req.transition(StateResolving))
	require.Error(t, req.transition(StateActive))
}

func TestScopeRequest_InvalidatedIsTerminal(t *testing.T) {
	req := newScopeRequest(1)
	require.NoError(t, req.transition(StateResolving))

	req.Invalidate()
	require.True(t, req.Invalidated())
	require.Error(t, req.transition(StateCompiled))

	// Idempotent.
	req.Invalidate()
	require.Equal(t, StateInvalidated, req.State())
}

func TestScopeRequest_ResultOnlyWhenActive(t *testing.T) {
	req := newScopeRequest(1)
	_, _, err := req.Result()
	require.Error(t, err)

	s := scope.New(employee.RoleManager, []int64{2, 3}, []string{"EMEA"}, 1)
	artifacts, err := CompileAll(s)
	require.NoError(t, err)

	require.NoError(t, req.transition(StateResolving))
	require.NoError(t, req.transition(StateCompiled))
	req.setResult(s, artifacts)
	require.NoError(t, req.transition(StateActive))

	gotScope, gotArtifacts, err := req.Result()
	require.NoError(t, err)
	require.Equal(t, s, gotScope)
	require.Len(t, gotArtifacts, len(filter.Targets()))

	req.Invalidate()
	_, _, err = req.Result()
	require.Error(t, err)
}

func TestRequestTracker_LastRequestWins(t *testing.T) {
	tracker := NewRequestTracker()

	first := tracker.Begin(7)
	require.NoError(t, first.transition(StateResolving))

	second := tracker.Begin(7)
	require.True(t, first.Invalidated(), "superseded request must be invalidated")
	require.False(t, second.Invalidated())

	current, ok := tracker.Current(7)
	require.True(t, ok)
	require.Equal(t, second.ID(), current.ID())
}

func TestRequestTracker_InvalidateAll(t *testing.T) {
	tracker := NewRequestTracker()
	a := tracker.Begin(1)
	b := tracker.Begin(2)

	tracker.InvalidateAll()
	require.True(t, a.Invalidated())
	require.True(t, b.Invalidated())
}

func TestRequestTracker_InvalidatePrincipal(t *testing.T) {
	tracker := NewRequestTracker()
	a := tracker.Begin(1)
	b := tracker.Begin(2)

	tracker.InvalidatePrincipal(1)
	require.True(t, a.Invalidated())
	require.False(t, b.Invalidated())
}
