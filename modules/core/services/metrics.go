package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "core",
	Subsystem: "session",
	Name:      "active_sessions",
	Help:      "Number of live sessions.",
})

var sessionRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "core",
	Subsystem: "session",
	Name:      "token_refreshes_total",
	Help:      "Token refresh outcomes, labeled by result.",
}, []string{"result"})
