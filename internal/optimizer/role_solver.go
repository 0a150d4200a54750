package optimizer

import (
	"math"
	"sort"
)

// selection is a set of picks from one candidate slice
type selection struct {
	picks      []int // indices into the candidate slice
	cost       int
	score      float64
	strategy   Strategy
	overBudget bool
}

func (s selection) starters(cands []candidate) int {
	n := 0
	for _, i := range s.picks {
		if cands[i].Starter {
			n++
		}
	}
	return n
}

// solveRole picks exactly k candidates within budget maximizing the total score.
// The second return value is false when no such selection exists.
func (o *Optimizer) solveRole(cands []candidate, k, budget int) (selection, bool) {
	switch {
	case k == 0:
		return selection{}, true
	case k < 0 || k > len(cands) || budget < 0:
		return selection{}, false
	case k == 1:
		return pickBest(cands, budget)
	}

	if o.useExact(len(cands), k, budget) {
		return solveExact(cands, k, budget)
	}
	sel, ok := greedySelect(cands, k, budget, false, -1)
	if !ok || sel.overBudget {
		return selection{}, false
	}
	return sel, true
}

// useExact decides between the DP and the greedy heuristic from the table size
func (o *Optimizer) useExact(n, k, budget int) bool {
	if k > o.opts.ExactMaxCount {
		return false
	}
	// n*(k+1)*(budget+1) <= limit, without overflowing on huge budgets
	perCredit := int64(n) * int64(k+1)
	if perCredit <= 0 {
		return true
	}
	return int64(budget) < int64(o.opts.ExactCellLimit)/perCredit
}

// pickBest returns the single affordable candidate with the highest score
func pickBest(cands []candidate, budget int) (selection, bool) {
	best := -1
	for i, c := range cands {
		if c.Cost > budget {
			continue
		}
		if best < 0 || c.score > cands[best].score {
			best = i
		}
	}
	if best < 0 {
		return selection{}, false
	}
	return selection{
		picks:    []int{best},
		cost:     cands[best].Cost,
		score:    cands[best].score,
		strategy: StrategyExact,
	}, true
}

// solveExact is the exactly-k 0/1 selection DP over (count, spend).
// Updates need a strict improvement, so the first selection found wins ties.
func solveExact(cands []candidate, k, budget int) (selection, bool) {
	n := len(cands)
	width := budget + 1
	layer := (k + 1) * width

	best := make([]float64, layer)
	for i := range best {
		best[i] = math.Inf(-1)
	}
	best[0] = 0
	keep := make([]bool, n*layer)

	for i, c := range cands {
		if c.Cost > budget {
			continue
		}
		top := k
		if i+1 < top {
			top = i + 1
		}
		for cnt := top; cnt >= 1; cnt-- {
			for s := budget; s >= c.Cost; s-- {
				prev := best[(cnt-1)*width+s-c.Cost]
				if math.IsInf(prev, -1) {
					continue
				}
				if cand := prev + c.score; cand > best[cnt*width+s] {
					best[cnt*width+s] = cand
					keep[i*layer+cnt*width+s] = true
				}
			}
		}
	}

	spend := -1
	for s := 0; s <= budget; s++ {
		v := best[k*width+s]
		if math.IsInf(v, -1) {
			continue
		}
		if spend < 0 || v > best[k*width+spend] {
			spend = s
		}
	}
	if spend < 0 {
		return selection{}, false
	}

	sel := selection{score: best[k*width+spend], strategy: StrategyExact}
	cnt, s := k, spend
	for i := n - 1; i >= 0 && cnt > 0; i-- {
		if keep[i*layer+cnt*width+s] {
			sel.picks = append(sel.picks, i)
			s -= cands[i].Cost
			cnt--
		}
	}
	sort.Ints(sel.picks)
	for _, i := range sel.picks {
		sel.cost += cands[i].Cost
	}
	return sel, true
}

// greedySelect takes candidates by descending score while the budget still leaves room
// for the cheapest completion, repairs by ascending cost, and, when allowOverBudget is
// set, fills whatever is left with the cheapest players regardless of budget. A
// non-negative overCap bounds the total cost of the over-budget phase.
func greedySelect(cands []candidate, k, budget int, allowOverBudget bool, overCap int) (selection, bool) {
	if k == 0 {
		return selection{strategy: StrategyGreedy}, true
	}
	if k > len(cands) {
		return selection{}, false
	}

	byScore := make([]int, len(cands))
	for i := range byScore {
		byScore[i] = i
	}
	byCost := append([]int(nil), byScore...)
	sort.SliceStable(byScore, func(a, b int) bool { return cands[byScore[a]].score > cands[byScore[b]].score })
	sort.SliceStable(byCost, func(a, b int) bool {
		ca, cb := cands[byCost[a]], cands[byCost[b]]
		if ca.Cost != cb.Cost {
			return ca.Cost < cb.Cost
		}
		return ca.score > cb.score
	})

	used := make([]bool, len(cands))
	sel := selection{strategy: StrategyGreedy}
	take := func(i int) {
		used[i] = true
		sel.picks = append(sel.picks, i)
		sel.cost += cands[i].Cost
		sel.score += cands[i].score
	}

	// cheapest completion of m slots excluding skip and used candidates
	reserve := func(m, skip int) int {
		total := 0
		for _, j := range byCost {
			if m == 0 {
				break
			}
			if used[j] || j == skip {
				continue
			}
			total += cands[j].Cost
			m--
		}
		return total
	}

	for _, i := range byScore {
		if len(sel.picks) == k {
			break
		}
		left := k - len(sel.picks) - 1
		if sel.cost+cands[i].Cost+reserve(left, i) <= budget {
			take(i)
		}
	}

	for _, i := range byCost {
		if len(sel.picks) == k {
			break
		}
		if !used[i] && sel.cost+cands[i].Cost <= budget {
			take(i)
		}
	}

	if len(sel.picks) < k && allowOverBudget {
		for _, i := range byCost {
			if len(sel.picks) == k {
				break
			}
			if used[i] {
				continue
			}
			if overCap >= 0 && sel.cost+cands[i].Cost > overCap {
				break
			}
			take(i)
			sel.overBudget = true
		}
	}

	if len(sel.picks) < k {
		return selection{}, false
	}
	sort.Ints(sel.picks)
	return sel, true
}
