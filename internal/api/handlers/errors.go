package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/stitts-dev/fanta-optimizer/internal/metrics"
	"github.com/stitts-dev/fanta-optimizer/internal/optimizer"
	"github.com/stitts-dev/fanta-optimizer/pkg/utils"
)

// mapBuildError converts an optimizer error to a status, an API error and a metrics outcome
func mapBuildError(err error) (int, *utils.AppError, string) {
	switch {
	case errors.Is(err, optimizer.ErrInvalidConfig):
		return http.StatusBadRequest,
			utils.NewAppError(utils.ErrCodeInvalidConfig, "Invalid build configuration", err.Error()),
			metrics.OutcomeInvalidConfig
	case errors.Is(err, optimizer.ErrRoleInfeasible):
		return http.StatusUnprocessableEntity,
			utils.NewAppError(utils.ErrCodeRoleInfeasible, "A role cannot be filled", err.Error()),
			metrics.OutcomeRoleInfeasible
	case errors.Is(err, optimizer.ErrBudgetExceeded):
		return http.StatusUnprocessableEntity,
			utils.NewAppError(utils.ErrCodeBudgetExceeded, "Roster exceeds the budget tolerance", err.Error()),
			metrics.OutcomeBudgetExceeded
	}
	return http.StatusInternalServerError,
		utils.NewAppError(utils.ErrCodeInternal, "Optimization failed", err.Error()),
		metrics.OutcomeError
}

func joinDetails(details []string) string {
	return strings.Join(details, "; ")
}
