package optimizer

import (
	"github.com/sirupsen/logrus"
)

// roleOutcome is the selection of the non-locked slots of one role
type roleOutcome struct {
	chosen   []candidate
	cost     int
	score    float64
	starters int
	strategy Strategy
	tier     Tier
}

// searchStarterPartition fills count slots within budget with at least requiredStarters
// starters, degrading to fewer starters and then to the emergency selection.
// spendCap is what the role may still spend under EmergencyCapTotal, locks already deducted.
func (o *Optimizer) searchStarterPartition(role Role, cands []candidate, count, budget, requiredStarters, spendCap int) (roleOutcome, error) {
	log := o.logger.WithFields(logrus.Fields{
		"role":              role,
		"count":             count,
		"budget":            budget,
		"required_starters": requiredStarters,
		"candidates":        len(cands),
	})

	starters := make([]candidate, 0, len(cands))
	nonStarters := make([]candidate, 0, len(cands))
	for _, c := range cands {
		if c.Starter {
			starters = append(starters, c)
		} else {
			nonStarters = append(nonStarters, c)
		}
	}

	trySplit := func(s int) (roleOutcome, bool) {
		a, ok := o.solveRole(starters, s, budget)
		if !ok {
			return roleOutcome{}, false
		}
		b, ok := o.solveRole(nonStarters, count-s, budget-a.cost)
		if !ok {
			return roleOutcome{}, false
		}
		out := roleOutcome{
			chosen:   make([]candidate, 0, count),
			cost:     a.cost + b.cost,
			score:    a.score + b.score,
			starters: s,
			strategy: combineStrategies(a.strategy, b.strategy),
		}
		for _, i := range a.picks {
			out.chosen = append(out.chosen, starters[i])
		}
		for _, i := range b.picks {
			out.chosen = append(out.chosen, nonStarters[i])
		}
		return out, true
	}

	if requiredStarters < 0 {
		requiredStarters = 0
	}
	hi := count
	if len(starters) < hi {
		hi = len(starters)
	}

	var best *roleOutcome
	for s := requiredStarters; s <= hi; s++ {
		if out, ok := trySplit(s); ok && (best == nil || out.score > best.score) {
			found := out
			best = &found
		}
	}
	if best != nil {
		best.tier = TierPrimary
		return *best, nil
	}

	if requiredStarters > 0 {
		start := requiredStarters - 1
		if start > hi {
			start = hi
		}
		for s := start; s >= 0; s-- {
			if out, ok := trySplit(s); ok && (best == nil || out.score > best.score) {
				found := out
				best = &found
			}
		}
		if best != nil {
			best.tier = TierRelaxed
			log.WithField("achieved_starters", best.starters).Warn("Minimum starters not reachable, relaxed starter constraint")
			return *best, nil
		}
	}

	overCap := -1
	if o.opts.EmergencyCap == EmergencyCapTotal {
		overCap = max(spendCap, 0)
	}
	sel, ok := greedySelect(cands, count, budget, true, overCap)
	if !ok {
		log.Error("Emergency selection could not fill the role")
		return roleOutcome{}, roleInfeasible(role, "cannot fill %d slots from %d candidates within budget %d", count, len(cands), budget)
	}

	out := roleOutcome{
		chosen:   make([]candidate, 0, count),
		cost:     sel.cost,
		score:    sel.score,
		starters: sel.starters(cands),
		strategy: StrategyGreedy,
		tier:     TierEmergency,
	}
	for _, i := range sel.picks {
		out.chosen = append(out.chosen, cands[i])
	}
	if sel.overBudget {
		out.tier = TierEmergencyOverBudget
	}
	log.WithFields(logrus.Fields{
		"tier":       out.tier,
		"total_cost": out.cost,
	}).Warn("Starter partition infeasible, used emergency selection")
	return out, nil
}

func combineStrategies(a, b Strategy) Strategy {
	switch {
	case a == "":
		return b
	case b == "", a == b:
		return a
	}
	return StrategyMixed
}
