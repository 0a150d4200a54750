package optimizer

// Role is one of the four positional categories of a roster
type Role string

const (
	RoleGoalkeeper Role = "P"
	RoleDefender   Role = "D"
	RoleMidfielder Role = "C"
	RoleForward    Role = "A"
)

// AllRoles lists roles in declared order. Every role-level tie-break follows it.
var AllRoles = []Role{RoleGoalkeeper, RoleDefender, RoleMidfielder, RoleForward}

// IsValid reports whether r is one of the declared roles
func (r Role) IsValid() bool {
	switch r {
	case RoleGoalkeeper, RoleDefender, RoleMidfielder, RoleForward:
		return true
	}
	return false
}

// Player is a candidate for the roster. Cost is in credits.
type Player struct {
	ID      string  `json:"id" yaml:"id"`
	Name    string  `json:"name" yaml:"name"`
	Team    string  `json:"team" yaml:"team"`
	Role    Role    `json:"role" yaml:"role"`
	Cost    int     `json:"cost" yaml:"cost"`
	Rating  float64 `json:"rating" yaml:"rating"`
	Starter bool    `json:"starter" yaml:"starter"`
}

// Constraints holds the optional lock/exclude/prefer lists of a build
type Constraints struct {
	Locks       []string `json:"locks,omitempty" yaml:"locks"`
	Excludes    []string `json:"excludes,omitempty" yaml:"excludes"`
	PreferIDs   []string `json:"preferIds,omitempty" yaml:"preferIds"`
	PreferTeams []string `json:"preferTeams,omitempty" yaml:"preferTeams"`
	PreferBonus float64  `json:"preferBonus,omitempty" yaml:"preferBonus"`
}

// BuildConfig describes the roster to build
type BuildConfig struct {
	TotalBudget     int              `json:"totalBudget" yaml:"totalBudget"`
	RolePercentages map[Role]float64 `json:"rolePercentages" yaml:"rolePercentages"`
	RoleCounts      map[Role]int     `json:"roleCounts" yaml:"roleCounts"`
	MinStarterPct   float64          `json:"minStarterPct" yaml:"minStarterPct"`
	StarterBoost    float64          `json:"starterBoost,omitempty" yaml:"starterBoost"`
	Constraints     *Constraints     `json:"constraints,omitempty" yaml:"constraints"`
}

// Acquired is a player already won at auction for Price credits
type Acquired struct {
	ID    string `json:"id" yaml:"id"`
	Price int    `json:"price" yaml:"price"`
}

// Strategy names how a role selection was computed
type Strategy string

const (
	StrategyLocked Strategy = "locked"
	StrategyExact  Strategy = "exact"
	StrategyGreedy Strategy = "greedy"
	StrategyMixed  Strategy = "mixed"
)

// Tier names the selection tier a role ended up in. Anything but TierPrimary is a degrade.
type Tier string

const (
	TierPrimary             Tier = "primary"
	TierRelaxed             Tier = "relaxed"
	TierEmergency           Tier = "emergency"
	TierEmergencyOverBudget Tier = "emergency_over_budget"
)

// IsDegraded reports whether the tier relaxed any constraint
func (t Tier) IsDegraded() bool {
	return t != TierPrimary && t != ""
}

// RoleSolution is the selection for a single role
type RoleSolution struct {
	Chosen        []Player `json:"chosen"`
	TotalCost     int      `json:"totalCost"`
	TotalScore    float64  `json:"totalScore"`
	StartersCount int      `json:"startersCount"`
	Strategy      Strategy `json:"strategy"`
	Tier          Tier     `json:"tier"`
}

// BuildResult is the full roster with the budget views used to compute it
type BuildResult struct {
	ByRole         map[Role]RoleSolution `json:"byRole"`
	TotalCost      int                   `json:"totalCost"`
	TotalScore     float64               `json:"totalScore"`
	Budgets        map[Role]int          `json:"budgets"`
	InitialBudgets map[Role]int          `json:"initialBudgets"`
	Warnings       []Warning             `json:"warnings,omitempty"`
}

// Degraded reports whether any role fell back below the primary tier
func (r *BuildResult) Degraded() bool {
	for _, sol := range r.ByRole {
		if sol.Tier.IsDegraded() {
			return true
		}
	}
	return false
}

// PlayerIDs returns every chosen id in role order
func (r *BuildResult) PlayerIDs() []string {
	ids := make([]string, 0)
	for _, role := range AllRoles {
		for _, p := range r.ByRole[role].Chosen {
			ids = append(ids, p.ID)
		}
	}
	return ids
}
