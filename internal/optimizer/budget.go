package optimizer

import (
	"math"
	"sort"
)

// InitialBudgets splits total into per-role budgets from percentages.
// Shares are floored and the leftover units go to the largest fractional remainders,
// so the result always sums to total.
func InitialBudgets(total int, percentages map[Role]float64) map[Role]int {
	raw := make(map[Role]float64, len(AllRoles))
	for _, r := range AllRoles {
		raw[r] = float64(total) * percentages[r] / 100
	}
	return apportion(total, raw, AllRoles)
}

// Redistribute pools the leftover (or overshoot) of roles with nothing left to pick and
// spreads it over the roles still picking, weighted by their initial budgets.
// remainingBudgets is not modified.
func Redistribute(initial map[Role]int, remainingCounts map[Role]int, remainingBudgets map[Role]float64) map[Role]float64 {
	out := make(map[Role]float64, len(AllRoles))
	totalDelta := 0.0
	active := make([]Role, 0, len(AllRoles))
	for _, r := range AllRoles {
		if remainingCounts[r] == 0 {
			totalDelta += remainingBudgets[r]
			out[r] = 0
			continue
		}
		out[r] = remainingBudgets[r]
		active = append(active, r)
	}
	if len(active) == 0 {
		return out
	}

	weightSum := 0.0
	for _, r := range active {
		weightSum += float64(initial[r])
	}
	if weightSum == 0 {
		share := totalDelta / float64(len(active))
		for _, r := range active {
			out[r] += share
		}
		return out
	}
	for _, r := range active {
		out[r] += totalDelta * float64(initial[r]) / weightSum
	}
	return out
}

// PlannedBudgets is the "how much was planned per role" view: closed roles get nothing
// and their initial share moves to the open roles according to view.
func PlannedBudgets(initial map[Role]int, open map[Role]bool, view BudgetView) map[Role]int {
	planned := make(map[Role]int, len(AllRoles))
	saved := 0
	openRoles := make([]Role, 0, len(AllRoles))
	for _, r := range AllRoles {
		if open[r] {
			planned[r] = initial[r]
			openRoles = append(openRoles, r)
			continue
		}
		planned[r] = 0
		saved += initial[r]
	}
	if saved == 0 || len(openRoles) == 0 {
		return planned
	}

	var extra map[Role]int
	weightSum := 0
	for _, r := range openRoles {
		weightSum += initial[r]
	}
	if view == BudgetViewEven || weightSum <= 0 {
		extra = evenSplit(saved, openRoles)
	} else {
		raw := make(map[Role]float64, len(openRoles))
		for _, r := range openRoles {
			raw[r] = float64(saved) * float64(initial[r]) / float64(weightSum)
		}
		extra = apportion(saved, raw, openRoles)
	}
	for r, v := range extra {
		planned[r] += v
	}
	return planned
}

// apportion floors raw shares and hands the difference to target one unit at a time:
// surplus to the largest fractional parts, deficit from the smallest, ties in role order.
func apportion(target int, raw map[Role]float64, roles []Role) map[Role]int {
	out := make(map[Role]int, len(roles))
	type frac struct {
		role Role
		frac float64
	}
	fracs := make([]frac, 0, len(roles))
	sum := 0
	for _, r := range roles {
		fl := math.Floor(raw[r])
		out[r] = int(fl)
		sum += int(fl)
		fracs = append(fracs, frac{role: r, frac: raw[r] - fl})
	}
	remainder := target - sum
	if remainder == 0 || len(fracs) == 0 {
		return out
	}

	if remainder > 0 {
		sort.SliceStable(fracs, func(i, j int) bool { return fracs[i].frac > fracs[j].frac })
		for i := 0; remainder > 0; i++ {
			out[fracs[i%len(fracs)].role]++
			remainder--
		}
		return out
	}

	sort.SliceStable(fracs, func(i, j int) bool { return fracs[i].frac < fracs[j].frac })
	for i := 0; remainder < 0; i++ {
		out[fracs[i%len(fracs)].role]--
		remainder++
	}
	return out
}

func evenSplit(amount int, roles []Role) map[Role]int {
	out := make(map[Role]int, len(roles))
	per := amount / len(roles)
	rem := amount % len(roles)
	for i, r := range roles {
		out[r] = per
		if i < rem {
			out[r]++
		}
	}
	return out
}

// creditsFor converts a real-valued working budget into spendable credits
func creditsFor(budget float64) int {
	return int(math.Floor(budget + 1e-9))
}
