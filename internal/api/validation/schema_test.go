package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/fanta-optimizer/internal/optimizer"
)

const validBody = `{
  "players": [
    {"id": "p1", "name": "Sommer", "team": "Inter", "role": "P", "cost": 12, "rating": 70, "starter": true},
    {"id": "d1", "name": "Bastoni", "team": "Inter", "role": "D", "cost": 20, "rating": 75, "starter": true}
  ],
  "config": {
    "totalBudget": 500,
    "rolePercentages": {"P": 10, "D": 25, "C": 35, "A": 30},
    "roleCounts": {"P": 3, "D": 8, "C": 8, "A": 6},
    "minStarterPct": 50,
    "constraints": {"locks": ["p1"], "preferTeams": ["inter"], "preferBonus": 2}
  }
}`

func TestParseOptimizeRequest_Valid(t *testing.T) {
	req, err := ParseOptimizeRequest([]byte(validBody))
	require.NoError(t, err)

	assert.Len(t, req.Players, 2)
	assert.Equal(t, optimizer.RoleDefender, req.Players[1].Role)
	assert.Equal(t, 500, req.Config.TotalBudget)
	assert.Equal(t, 8, req.Config.RoleCounts[optimizer.RoleMidfielder])
	assert.Equal(t, []string{"p1"}, req.Config.Constraints.Locks)
	assert.NotNil(t, req.Acquired)
	assert.Empty(t, req.Acquired)
}

func TestParseOptimizeRequest_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"malformed json", `{"players": [`, "Malformed request body"},
		{"missing config", `{"players": [{"id": "a", "name": "a", "team": "t", "role": "P", "cost": 1, "rating": 1, "starter": true}]}`, "Invalid request body"},
		{"empty players", strings.Replace(validBody, `"players": [`, `"players": [], "x": [`, 1), "Invalid request body"},
		{"unknown role", strings.Replace(validBody, `"role": "D"`, `"role": "GK"`, 1), "Invalid request body"},
		{"fractional cost", strings.Replace(validBody, `"cost": 12`, `"cost": 12.5`, 1), "Invalid request body"},
		{"rating over 100", strings.Replace(validBody, `"rating": 70`, `"rating": 170`, 1), "Invalid request body"},
		{"zero role count", strings.Replace(validBody, `"P": 3`, `"P": 0`, 1), "Invalid request body"},
		{"percentages off", strings.Replace(validBody, `"A": 30}`, `"A": 31}`, 1), "rolePercentages must sum to 100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseOptimizeRequest([]byte(tt.body))
			require.Error(t, err)

			var vErr *Error
			require.True(t, errors.As(err, &vErr))
			assert.Equal(t, tt.message, vErr.Message)
		})
	}
}

func TestParseOptimizeRequest_NegativeAcquiredPrice(t *testing.T) {
	body := strings.Replace(validBody, `"config": {`, `"acquired": [{"id": "p1", "price": -3}], "config": {`, 1)
	_, err := ParseOptimizeRequest([]byte(body))

	var vErr *Error
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "Invalid request body", vErr.Message)
	assert.NotEmpty(t, vErr.Details)
}

func TestParseOptimizeRequest_PercentageTolerance(t *testing.T) {
	body := strings.Replace(validBody, `"A": 30}`, `"A": 30.0000000001}`, 1)
	_, err := ParseOptimizeRequest([]byte(body))
	assert.NoError(t, err)
}

func TestSchemaComponents(t *testing.T) {
	components, err := SchemaComponents()
	require.NoError(t, err)

	for _, name := range []string{"OptimizeRequest", "player", "config", "acquired", "role"} {
		assert.Contains(t, components, name)
	}
	assert.NotContains(t, string(components["OptimizeRequest"]), "definitions")
	assert.Contains(t, string(components["OptimizeRequest"]), "#/components/schemas/player")
	assert.Contains(t, string(components["config"]), "#/components/schemas/percentages")
}
