package optimizer

import (
	"fmt"
	"strings"
)

// BudgetView selects how the planned per-role budget view redistributes closed roles
type BudgetView string

const (
	// BudgetViewProportional weights open roles by their initial share
	BudgetViewProportional BudgetView = "proportional"
	// BudgetViewEven splits the savings evenly, remainder to the first open roles
	BudgetViewEven BudgetView = "even"
)

// EmergencyCap bounds over-budget picks made by the emergency tier
type EmergencyCap string

const (
	// EmergencyCapNone accepts the cheapest remaining players whatever they cost
	EmergencyCapNone EmergencyCap = "none"
	// EmergencyCapTotal refuses an over-budget pick that would push the role past the total budget
	EmergencyCapTotal EmergencyCap = "total"
)

// Options tunes the optimizer. Zero fields are completed from DefaultOptions,
// except BudgetTolerance where zero means no overrun is tolerated.
type Options struct {
	// ExactMaxCount is the largest pick count solved by the exact DP
	ExactMaxCount int `json:"exact_max_count"`
	// ExactCellLimit caps candidates*(count+1)*(budget+1) for the exact DP
	ExactCellLimit int `json:"exact_cell_limit"`
	// BudgetTolerance is the fraction of the total budget a roster may overrun with a warning
	BudgetTolerance float64      `json:"budget_tolerance"`
	BudgetView      BudgetView   `json:"budget_view"`
	EmergencyCap    EmergencyCap `json:"emergency_cap"`
	// Parallel solves roles concurrently once budgets are redistributed
	Parallel bool `json:"parallel"`
}

// DefaultOptions returns the production defaults
func DefaultOptions() Options {
	return Options{
		ExactMaxCount:   10,
		ExactCellLimit:  4_000_000,
		BudgetTolerance: 0.10,
		BudgetView:      BudgetViewProportional,
		EmergencyCap:    EmergencyCapNone,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.ExactMaxCount <= 0 {
		o.ExactMaxCount = def.ExactMaxCount
	}
	if o.ExactCellLimit <= 0 {
		o.ExactCellLimit = def.ExactCellLimit
	}
	if o.BudgetTolerance < 0 {
		o.BudgetTolerance = def.BudgetTolerance
	}
	if o.BudgetView == "" {
		o.BudgetView = def.BudgetView
	}
	if o.EmergencyCap == "" {
		o.EmergencyCap = def.EmergencyCap
	}
	return o
}

// ParseBudgetView converts a config string to a BudgetView
func ParseBudgetView(s string) (BudgetView, error) {
	switch BudgetView(strings.ToLower(strings.TrimSpace(s))) {
	case "", BudgetViewProportional:
		return BudgetViewProportional, nil
	case BudgetViewEven:
		return BudgetViewEven, nil
	}
	return "", fmt.Errorf("unknown budget view %q", s)
}

// ParseEmergencyCap converts a config string to an EmergencyCap
func ParseEmergencyCap(s string) (EmergencyCap, error) {
	switch EmergencyCap(strings.ToLower(strings.TrimSpace(s))) {
	case "", EmergencyCapNone:
		return EmergencyCapNone, nil
	case EmergencyCapTotal:
		return EmergencyCapTotal, nil
	}
	return "", fmt.Errorf("unknown emergency cap %q", s)
}
