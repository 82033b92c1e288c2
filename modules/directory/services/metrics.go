package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var directoryRefreshFailures = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "directory",
	Subsystem: "snapshot",
	Name:      "refresh_failures_total",
	Help:      "Number of exhausted directory refresh attempts; the previous snapshot stayed current.",
})
