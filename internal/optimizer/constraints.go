package optimizer

import (
	"fmt"
	"math"
	"strings"
)

// scorer computes the effective selection score of a player
type scorer struct {
	starterBoost float64
	preferIDs    map[string]bool
	preferTeams  map[string]bool
	preferBonus  float64
}

func newScorer(cfg BuildConfig) scorer {
	s := scorer{
		starterBoost: cfg.StarterBoost,
		preferIDs:    make(map[string]bool),
		preferTeams:  make(map[string]bool),
	}
	if cfg.Constraints != nil {
		for _, id := range cfg.Constraints.PreferIDs {
			s.preferIDs[id] = true
		}
		for _, team := range cfg.Constraints.PreferTeams {
			s.preferTeams[strings.ToLower(team)] = true
		}
		s.preferBonus = cfg.Constraints.PreferBonus
	}
	return s
}

func (s scorer) bonus(p Player) float64 {
	b := 0.0
	if s.preferIDs[p.ID] {
		b += s.preferBonus
	}
	if s.preferTeams[strings.ToLower(p.Team)] {
		b += s.preferBonus
	}
	return b
}

func (s scorer) score(p Player) float64 {
	score := p.Rating + s.bonus(p)
	if p.Starter {
		score += s.starterBoost
	}
	return score
}

// candidate is a player paired with its effective score
type candidate struct {
	Player
	score float64
}

// resolvedPool is the outcome of constraint resolution
type resolvedPool struct {
	// candidates holds non-locked, non-excluded players per role in input order
	candidates map[Role][]candidate
	// locks holds acquired players (at paid price) then explicit locks, per role
	locks    map[Role][]candidate
	warnings []Warning
}

func validateConfig(players []Player, cfg BuildConfig) error {
	if cfg.TotalBudget <= 0 {
		return invalidConfig("totalBudget must be positive, got %d", cfg.TotalBudget)
	}
	if cfg.MinStarterPct < 0 || cfg.MinStarterPct > 100 || math.IsNaN(cfg.MinStarterPct) {
		return invalidConfig("minStarterPct must be within 0..100, got %v", cfg.MinStarterPct)
	}
	for r, pct := range cfg.RolePercentages {
		if !r.IsValid() {
			return invalidConfig("unknown role %q in rolePercentages", r)
		}
		if pct < 0 || math.IsNaN(pct) {
			return invalidConfig("rolePercentages[%s] must not be negative, got %v", r, pct)
		}
	}
	for r, n := range cfg.RoleCounts {
		if !r.IsValid() {
			return invalidConfig("unknown role %q in roleCounts", r)
		}
		if n < 0 {
			return invalidConfig("roleCounts[%s] must not be negative, got %d", r, n)
		}
	}

	seen := make(map[string]bool, len(players))
	for _, p := range players {
		if p.ID == "" {
			return invalidConfig("player with empty id")
		}
		if seen[p.ID] {
			return invalidConfig("duplicate player id %s", p.ID)
		}
		seen[p.ID] = true
		if !p.Role.IsValid() {
			return invalidConfig("player %s has unknown role %q", p.ID, p.Role)
		}
		if p.Cost < 0 {
			return invalidConfig("player %s has negative cost %d", p.ID, p.Cost)
		}
		if p.Rating < 0 || p.Rating > 100 || math.IsNaN(p.Rating) {
			return invalidConfig("player %s rating %v outside 0..100", p.ID, p.Rating)
		}
	}
	return nil
}

// resolveConstraints merges acquired players and the lock/exclude lists into the
// per-role candidate pools and mandatory picks.
func resolveConstraints(players []Player, cfg BuildConfig, acquired []Acquired, sc scorer) (*resolvedPool, error) {
	byID := make(map[string]Player, len(players))
	for _, p := range players {
		byID[p.ID] = p
	}

	var cons Constraints
	if cfg.Constraints != nil {
		cons = *cfg.Constraints
	}
	excludes := make(map[string]bool, len(cons.Excludes))
	for _, id := range cons.Excludes {
		excludes[id] = true
	}

	locked := make(map[string]bool)
	lockOrder := make([]Player, 0, len(acquired)+len(cons.Locks))
	for _, a := range acquired {
		p, ok := byID[a.ID]
		if !ok {
			return nil, invalidConfig("acquired player %s not found in pool", a.ID)
		}
		if locked[a.ID] {
			return nil, invalidConfig("player %s acquired more than once", a.ID)
		}
		if a.Price < 0 {
			return nil, invalidConfig("acquired player %s has negative price %d", a.ID, a.Price)
		}
		p.Cost = a.Price
		locked[a.ID] = true
		lockOrder = append(lockOrder, p)
	}
	for _, id := range cons.Locks {
		if locked[id] {
			continue
		}
		p, ok := byID[id]
		if !ok {
			return nil, invalidConfig("locked player %s not found in pool", id)
		}
		if excludes[id] {
			return nil, invalidConfig("player %s is both locked and excluded", id)
		}
		locked[id] = true
		lockOrder = append(lockOrder, p)
	}

	pool := &resolvedPool{
		candidates: make(map[Role][]candidate, len(AllRoles)),
		locks:      make(map[Role][]candidate, len(AllRoles)),
	}
	for _, p := range lockOrder {
		pool.locks[p.Role] = append(pool.locks[p.Role], candidate{Player: p, score: sc.score(p)})
	}
	for _, r := range AllRoles {
		if n := len(pool.locks[r]); n > cfg.RoleCounts[r] {
			return nil, invalidConfig("too many locks for role %s: %d > required %d", r, n, cfg.RoleCounts[r])
		}
	}

	for _, p := range players {
		if locked[p.ID] || excludes[p.ID] {
			continue
		}
		pool.candidates[p.Role] = append(pool.candidates[p.Role], candidate{Player: p, score: sc.score(p)})
	}

	pool.warnings = poolShortages(pool, cfg)
	return pool, nil
}

// poolShortages reports roles whose pool cannot cover the required players or starters
func poolShortages(pool *resolvedPool, cfg BuildConfig) []Warning {
	var warnings []Warning
	for _, r := range AllRoles {
		required := cfg.RoleCounts[r]
		remaining := required - len(pool.locks[r])
		if remaining <= 0 {
			continue
		}
		if have := len(pool.candidates[r]); have < remaining {
			warnings = append(warnings, Warning{
				Code:     WarnPoolShortage,
				Role:     r,
				Message:  fmt.Sprintf("role %s needs %d more players but only %d are available", r, remaining, have),
				Required: remaining,
				Achieved: have,
			})
		}
		needStarters := minStartersRequired(required, cfg.MinStarterPct) - countStarters(pool.locks[r])
		if needStarters <= 0 {
			continue
		}
		if have := countStarters(pool.candidates[r]); have < needStarters {
			warnings = append(warnings, Warning{
				Code:     WarnPoolShortage,
				Role:     r,
				Message:  fmt.Sprintf("role %s needs %d more starters but only %d are available", r, needStarters, have),
				Required: needStarters,
				Achieved: have,
			})
		}
	}
	return warnings
}

func minStartersRequired(count int, pct float64) int {
	return int(math.Ceil(float64(count)*pct/100 - 1e-9))
}

func countStarters(cs []candidate) int {
	n := 0
	for _, c := range cs {
		if c.Starter {
			n++
		}
	}
	return n
}
