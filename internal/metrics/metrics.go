package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/stitts-dev/fanta-optimizer/internal/optimizer"
)

// Optimization outcomes
const (
	OutcomeSuccess        = "success"
	OutcomeDegraded       = "degraded"
	OutcomeInvalidConfig  = "invalid_config"
	OutcomeRoleInfeasible = "role_infeasible"
	OutcomeBudgetExceeded = "budget_exceeded"
	OutcomeError          = "error"
)

var (
	OptimizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_optimizations_total",
			Help: "Total number of roster builds by outcome",
		},
		[]string{"outcome"},
	)

	OptimizationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "roster_optimization_duration_seconds",
			Help:    "Duration of roster builds in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		},
	)

	RoleTierTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_role_tier_total",
			Help: "Selection tier reached per role",
		},
		[]string{"role", "tier"},
	)

	WarningsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_warnings_total",
			Help: "Warnings attached to successful builds",
		},
		[]string{"code"},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "roster_cache_requests_total",
			Help: "Result cache lookups by result",
		},
		[]string{"result"},
	)
)

// ObserveBuild records one finished build
func ObserveBuild(result *optimizer.BuildResult, outcome string, elapsed time.Duration) {
	OptimizationsTotal.WithLabelValues(outcome).Inc()
	OptimizationDuration.Observe(elapsed.Seconds())
	if result == nil {
		return
	}
	for _, r := range optimizer.AllRoles {
		RoleTierTotal.WithLabelValues(string(r), string(result.ByRole[r].Tier)).Inc()
	}
	for _, w := range result.Warnings {
		WarningsTotal.WithLabelValues(w.Code).Inc()
	}
}
