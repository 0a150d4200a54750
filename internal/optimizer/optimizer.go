package optimizer

import (
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Optimizer builds the best roster for a player pool and a build config.
// It keeps no state between calls and is safe for concurrent use.
type Optimizer struct {
	opts   Options
	logger *logrus.Entry
}

// New creates an optimizer. A nil logger falls back to the logrus standard logger.
func New(opts Options, logger *logrus.Logger) *Optimizer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Optimizer{
		opts:   opts.withDefaults(),
		logger: logger.WithField("component", "roster_optimizer"),
	}
}

// Options returns the effective options
func (o *Optimizer) Options() Options {
	return o.opts
}

// BuildBestSquad runs a build with the default options
func BuildBestSquad(players []Player, cfg BuildConfig, acquired []Acquired) (*BuildResult, error) {
	return New(DefaultOptions(), nil).Build(players, cfg, acquired)
}

// Build computes the highest-scoring roster honoring budgets, locks and the starter minimum.
func (o *Optimizer) Build(players []Player, cfg BuildConfig, acquired []Acquired) (*BuildResult, error) {
	startTime := time.Now()
	o.logger.WithFields(logrus.Fields{
		"total_players": len(players),
		"total_budget":  cfg.TotalBudget,
		"acquired":      len(acquired),
		"parallel":      o.opts.Parallel,
	}).Debug("Starting roster build")

	if err := validateConfig(players, cfg); err != nil {
		return nil, err
	}
	sc := newScorer(cfg)
	pool, err := resolveConstraints(players, cfg, acquired, sc)
	if err != nil {
		return nil, err
	}

	initial := InitialBudgets(cfg.TotalBudget, cfg.RolePercentages)
	remainingCounts := make(map[Role]int, len(AllRoles))
	remainingBudgets := make(map[Role]float64, len(AllRoles))
	for _, r := range AllRoles {
		remainingCounts[r] = cfg.RoleCounts[r] - len(pool.locks[r])
		remainingBudgets[r] = float64(initial[r] - sumCost(pool.locks[r]))
	}
	working := Redistribute(initial, remainingCounts, remainingBudgets)

	solutions := make([]RoleSolution, len(AllRoles))
	errs := make([]error, len(AllRoles))
	solve := func(i int, r Role) error {
		sol, err := o.solveRoleWithLocks(r, pool, cfg, remainingCounts[r], creditsFor(working[r]))
		solutions[i], errs[i] = sol, err
		return err
	}
	if o.opts.Parallel {
		var g errgroup.Group
		for i, r := range AllRoles {
			i, r := i, r
			g.Go(func() error { return solve(i, r) })
		}
		_ = g.Wait()
	} else {
		for i, r := range AllRoles {
			if solve(i, r) != nil {
				break
			}
		}
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	result := &BuildResult{
		ByRole:         make(map[Role]RoleSolution, len(AllRoles)),
		InitialBudgets: initial,
		Warnings:       append([]Warning(nil), pool.warnings...),
	}
	open := make(map[Role]bool, len(AllRoles))
	for i, r := range AllRoles {
		sol := solutions[i]
		result.ByRole[r] = sol
		result.TotalCost += sol.TotalCost
		result.TotalScore += sol.TotalScore
		open[r] = remainingCounts[r] > 0
		if w, ok := tierWarning(r, sol, cfg, creditsFor(working[r])); ok {
			o.logger.WithFields(logrus.Fields{
				"role": r,
				"tier": sol.Tier,
				"code": w.Code,
			}).Warn(w.Message)
			result.Warnings = append(result.Warnings, w)
		}
	}

	tolerance := float64(cfg.TotalBudget) * o.opts.BudgetTolerance
	maxAllowed := float64(cfg.TotalBudget) + tolerance
	if float64(result.TotalCost) > maxAllowed {
		o.logger.WithFields(logrus.Fields{
			"total_cost":   result.TotalCost,
			"total_budget": cfg.TotalBudget,
			"max_allowed":  maxAllowed,
		}).Warn("Roster cost beyond budget tolerance")
		return nil, fmt.Errorf("%w: total cost %d > %.2f (budget %d + tolerance %.2f)",
			ErrBudgetExceeded, result.TotalCost, maxAllowed, cfg.TotalBudget, tolerance)
	}
	if result.TotalCost > cfg.TotalBudget {
		over := result.TotalCost - cfg.TotalBudget
		result.Warnings = append(result.Warnings, Warning{
			Code: WarnBudgetExceeded,
			Message: fmt.Sprintf("total cost %d exceeds budget %d by %d credits (%.1f%%), within tolerance",
				result.TotalCost, cfg.TotalBudget, over, float64(over)/float64(cfg.TotalBudget)*100),
			Required: cfg.TotalBudget,
			Achieved: result.TotalCost,
		})
		o.logger.WithField("over", over).Warn("Roster cost over budget within tolerance")
	}

	result.Budgets = PlannedBudgets(initial, open, o.opts.BudgetView)

	o.logger.WithFields(logrus.Fields{
		"total_cost":     result.TotalCost,
		"total_score":    result.TotalScore,
		"warnings":       len(result.Warnings),
		"execution_time": time.Since(startTime),
	}).Info("Roster build completed")
	return result, nil
}

// solveRoleWithLocks combines the locked players of a role with the search over its pool
func (o *Optimizer) solveRoleWithLocks(r Role, pool *resolvedPool, cfg BuildConfig, remaining, budget int) (RoleSolution, error) {
	locks := pool.locks[r]
	sol := RoleSolution{
		Chosen:        make([]Player, 0, cfg.RoleCounts[r]),
		TotalCost:     sumCost(locks),
		StartersCount: countStarters(locks),
		Strategy:      StrategyLocked,
		Tier:          TierPrimary,
	}
	for _, c := range locks {
		sol.Chosen = append(sol.Chosen, c.Player)
		sol.TotalScore += c.score
	}
	if remaining == 0 && len(locks) == 0 {
		sol.Strategy = StrategyExact
	}

	if remaining > 0 {
		required := minStartersRequired(cfg.RoleCounts[r], cfg.MinStarterPct) - sol.StartersCount
		out, err := o.searchStarterPartition(r, pool.candidates[r], remaining, budget, required, cfg.TotalBudget-sol.TotalCost)
		if err != nil {
			return RoleSolution{}, err
		}
		for _, c := range out.chosen {
			sol.Chosen = append(sol.Chosen, c.Player)
		}
		sol.TotalCost += out.cost
		sol.TotalScore += out.score
		sol.StartersCount += out.starters
		sol.Strategy = out.strategy
		sol.Tier = out.tier
	}

	sort.SliceStable(sol.Chosen, func(i, j int) bool {
		if sol.Chosen[i].Cost != sol.Chosen[j].Cost {
			return sol.Chosen[i].Cost > sol.Chosen[j].Cost
		}
		return sol.Chosen[i].ID < sol.Chosen[j].ID
	})
	return sol, nil
}

func tierWarning(r Role, sol RoleSolution, cfg BuildConfig, budget int) (Warning, bool) {
	required := minStartersRequired(cfg.RoleCounts[r], cfg.MinStarterPct)
	switch sol.Tier {
	case TierRelaxed:
		return Warning{
			Code:     WarnConstraintRelaxed,
			Role:     r,
			Message:  fmt.Sprintf("role %s: %d starters required, %d achieved", r, required, sol.StartersCount),
			Required: required,
			Achieved: sol.StartersCount,
		}, true
	case TierEmergency:
		return Warning{
			Code:     WarnEmergencyFallback,
			Role:     r,
			Message:  fmt.Sprintf("role %s filled by emergency selection ignoring starter status (%d starters)", r, sol.StartersCount),
			Required: required,
			Achieved: sol.StartersCount,
		}, true
	case TierEmergencyOverBudget:
		return Warning{
			Code:     WarnEmergencyOverBudget,
			Role:     r,
			Message:  fmt.Sprintf("role %s filled above its budget of %d credits (cost %d)", r, budget, sol.TotalCost),
			Required: required,
			Achieved: sol.StartersCount,
		}, true
	}
	return Warning{}, false
}

func sumCost(cs []candidate) int {
	total := 0
	for _, c := range cs {
		total += c.Cost
	}
	return total
}
