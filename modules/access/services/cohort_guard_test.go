package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orgsight/orgsight/modules/access/domain/entities/scope"
)

func TestEvaluateAggregate_SuppressesSmallCohorts(t *testing.T) {
	for count := 0; count < MinimumCohortSize; count++ {
		decision := EvaluateAggregate(scope.CohortAggregate{
			Name:        "attrition_rate",
			MemberCount: count,
			Value:       12.5,
			Unit:        "%",
		})
		require.False(t, decision.Displayable, "count %d must be suppressed", count)
		require.Nil(t, decision.Aggregate, "suppressed decision must carry no value")
		require.Equal(t, "insufficient data — privacy protection, minimum 6 required", decision.Reason)
	}
}

func TestEvaluateAggregate_DisplaysAtThreshold(t *testing.T) {
	aggregate := scope.CohortAggregate{
		Name:        "completion_rate",
		MemberCount: MinimumCohortSize,
		Value:       72.3,
		Unit:        "%",
	}
	decision := EvaluateAggregate(aggregate)
	require.True(t, decision.Displayable)
	require.NotNil(t, decision.Aggregate)
	require.Equal(t, aggregate, *decision.Aggregate)
	require.Empty(t, decision.Reason)
}

func TestEvaluateAggregate_ManagerTeamScenarios(t *testing.T) {
	// A manager with four direct reports sees nothing, one with seven sees
	// the computed value.
	small := EvaluateAggregate(scope.CohortAggregate{Name: "engagement", MemberCount: 4, Value: 3.9})
	require.False(t, small.Displayable)

	large := EvaluateAggregate(scope.CohortAggregate{Name: "completion_rate", MemberCount: 7, Value: 72.3, Unit: "%"})
	require.True(t, large.Displayable)
	require.InDelta(t, 72.3, large.Aggregate.Value, 0.001)
}

func TestEvaluateAggregates_PreservesOrderAndMixedOutcomes(t *testing.T) {
	decisions := EvaluateAggregates([]scope.CohortAggregate{
		{Name: "a", MemberCount: 12, Value: 1},
		{Name: "b", MemberCount: 5, Value: 2},
		{Name: "c", MemberCount: 6, Value: 3},
	})
	require.Len(t, decisions, 3)
	require.True(t, decisions[0].Displayable)
	require.Equal(t, "a", decisions[0].Aggregate.Name)
	require.False(t, decisions[1].Displayable)
	require.True(t, decisions[2].Displayable)
}
