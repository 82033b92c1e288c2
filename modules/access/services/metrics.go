package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scopeResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "access",
		Subsystem: "scope",
		Name:      "resolutions_total",
		Help:      "Scope resolutions broken down by effective level.",
	}, []string{"level"})

	cohortSuppressions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "access",
		Subsystem: "cohort",
		Name:      "suppressions_total",
		Help:      "Aggregates withheld by the minimum-cohort privacy floor.",
	})

	overrideDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "access",
		Subsystem: "override",
		Name:      "decisions_total",
		Help:      "Role override requests broken down by outcome.",
	}, []string{"outcome"})
)
