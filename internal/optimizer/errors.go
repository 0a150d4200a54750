package optimizer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfig marks malformed or self-contradictory input
	ErrInvalidConfig = errors.New("invalid config")
	// ErrRoleInfeasible marks a role that cannot be filled even by the emergency tier
	ErrRoleInfeasible = errors.New("role infeasible")
	// ErrBudgetExceeded marks a roster whose cost is beyond the budget tolerance
	ErrBudgetExceeded = errors.New("budget exceeded")
)

// Warning codes attached to successful results
const (
	WarnConstraintRelaxed   = "CONSTRAINT_RELAXED"
	WarnEmergencyFallback   = "EMERGENCY_FALLBACK"
	WarnEmergencyOverBudget = "EMERGENCY_OVER_BUDGET"
	WarnBudgetExceeded      = "BUDGET_EXCEEDED"
	WarnPoolShortage        = "POOL_SHORTAGE"
)

// Warning is a machine-readable, recoverable condition of a build
type Warning struct {
	Code     string `json:"code"`
	Role     Role   `json:"role,omitempty"`
	Message  string `json:"message"`
	Required int    `json:"required"`
	Achieved int    `json:"achieved"`
}

func invalidConfig(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func roleInfeasible(role Role, format string, args ...interface{}) error {
	return fmt.Errorf("%w: role %s: %s", ErrRoleInfeasible, role, fmt.Sprintf(format, args...))
}
