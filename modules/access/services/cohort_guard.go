package services

import (
	"github.com/orgsight/orgsight/modules/access/domain/entities/scope"
)

// MinimumCohortSize is the privacy floor: aggregates summarizing fewer
// employees are suppressed on every surface. Not configurable; weakening the
// floor on one surface would defeat it everywhere.
const MinimumCohortSize = 6

const suppressionReason = "insufficient data — privacy protection, minimum 6 required"

// Decision is the outcome of the cohort privacy check. Suppressed decisions
// carry no aggregate value at all.
type Decision struct {
	Displayable bool                   `json:"displayable"`
	Aggregate   *scope.CohortAggregate `json:"aggregate,omitempty"`
	Reason      string                 `json:"reason,omitempty"`
}

// EvaluateAggregate applies the privacy floor. It is the single chokepoint for
// every display surface: dashboard tiles, chat answers, and API responses all
// pass through here so no surface can leak what another withholds.
func EvaluateAggregate(aggregate scope.CohortAggregate) Decision {
	if aggregate.MemberCount < MinimumCohortSize {
		cohortSuppressions.Inc()
		return Decision{
			Displayable: false,
			Reason:      suppressionReason,
		}
	}
	return Decision{
		Displayable: true,
		Aggregate:   &aggregate,
	}
}

// EvaluateAggregates guards a batch, preserving order.
func EvaluateAggregates(aggregates []scope.CohortAggregate) []Decision {
	out := make([]Decision, 0, len(aggregates))
	for _, aggregate := range aggregates {
		out = append(out, EvaluateAggregate(aggregate))
	}
	return out
}
