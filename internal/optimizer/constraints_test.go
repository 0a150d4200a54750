package optimizer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateConfig(t *testing.T) {
	valid := func() ([]Player, BuildConfig) {
		players := []Player{
			{ID: "p1", Role: RoleGoalkeeper, Cost: 10, Rating: 60},
			{ID: "d1", Role: RoleDefender, Cost: 12, Rating: 70, Starter: true},
		}
		return players, singleRoleConfig(RoleGoalkeeper, 100, 1)
	}

	tests := []struct {
		name   string
		mutate func(players []Player, cfg *BuildConfig) []Player
	}{
		{"zero budget", func(p []Player, c *BuildConfig) []Player { c.TotalBudget = 0; return p }},
		{"starter pct above 100", func(p []Player, c *BuildConfig) []Player { c.MinStarterPct = 101; return p }},
		{"unknown role percentage", func(p []Player, c *BuildConfig) []Player { c.RolePercentages["X"] = 10; return p }},
		{"negative percentage", func(p []Player, c *BuildConfig) []Player { c.RolePercentages[RoleDefender] = -5; return p }},
		{"negative count", func(p []Player, c *BuildConfig) []Player { c.RoleCounts[RoleForward] = -1; return p }},
		{"empty id", func(p []Player, c *BuildConfig) []Player { p[0].ID = ""; return p }},
		{"duplicate id", func(p []Player, c *BuildConfig) []Player { p[1].ID = "p1"; return p }},
		{"unknown player role", func(p []Player, c *BuildConfig) []Player { p[0].Role = "GK"; return p }},
		{"negative cost", func(p []Player, c *BuildConfig) []Player { p[0].Cost = -1; return p }},
		{"rating out of range", func(p []Player, c *BuildConfig) []Player { p[1].Rating = 120; return p }},
	}

	players, cfg := valid()
	require.NoError(t, validateConfig(players, cfg))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			players, cfg := valid()
			players = tt.mutate(players, &cfg)
			err := validateConfig(players, cfg)
			assert.True(t, errors.Is(err, ErrInvalidConfig), "got %v", err)
		})
	}
}

func TestScorer(t *testing.T) {
	cfg := BuildConfig{
		StarterBoost: 5,
		Constraints: &Constraints{
			PreferIDs:   []string{"a"},
			PreferTeams: []string{"MILAN"},
			PreferBonus: 3,
		},
	}
	sc := newScorer(cfg)

	assert.Equal(t, 50.0, sc.score(Player{ID: "x", Team: "Inter", Rating: 50}))
	assert.Equal(t, 55.0, sc.score(Player{ID: "x", Team: "Inter", Rating: 50, Starter: true}))
	assert.Equal(t, 53.0, sc.score(Player{ID: "x", Team: "milan", Rating: 50}))
	assert.Equal(t, 61.0, sc.score(Player{ID: "a", Team: "Milan", Rating: 50, Starter: true}))

	bare := newScorer(BuildConfig{})
	assert.Equal(t, 42.0, bare.score(Player{ID: "a", Rating: 42, Starter: true}))
}

func TestResolveConstraints(t *testing.T) {
	players := []Player{
		{ID: "p1", Role: RoleGoalkeeper, Cost: 10, Rating: 60, Starter: true},
		{ID: "p2", Role: RoleGoalkeeper, Cost: 8, Rating: 55},
		{ID: "d1", Role: RoleDefender, Cost: 20, Rating: 80, Starter: true},
		{ID: "d2", Role: RoleDefender, Cost: 15, Rating: 70},
		{ID: "d3", Role: RoleDefender, Cost: 5, Rating: 40},
	}
	cfg := BuildConfig{
		TotalBudget:     100,
		RolePercentages: map[Role]float64{RoleGoalkeeper: 20, RoleDefender: 80},
		RoleCounts:      map[Role]int{RoleGoalkeeper: 1, RoleDefender: 2},
	}

	t.Run("acquired cost override and excludes", func(t *testing.T) {
		c := cfg
		c.Constraints = &Constraints{Locks: []string{"d2"}, Excludes: []string{"d3", "p1"}}
		pool, err := resolveConstraints(players, c, []Acquired{{ID: "p1", Price: 3}}, newScorer(c))
		require.NoError(t, err)

		require.Len(t, pool.locks[RoleGoalkeeper], 1)
		assert.Equal(t, "p1", pool.locks[RoleGoalkeeper][0].ID)
		assert.Equal(t, 3, pool.locks[RoleGoalkeeper][0].Cost)
		assert.Equal(t, 10, players[0].Cost, "caller's pool must not change")

		require.Len(t, pool.locks[RoleDefender], 1)
		assert.Equal(t, "d2", pool.locks[RoleDefender][0].ID)

		assert.Equal(t, []string{"p2"}, candidateIDs(pool.candidates[RoleGoalkeeper]))
		assert.Equal(t, []string{"d1"}, candidateIDs(pool.candidates[RoleDefender]))
	})

	t.Run("missing lock", func(t *testing.T) {
		c := cfg
		c.Constraints = &Constraints{Locks: []string{"ghost"}}
		_, err := resolveConstraints(players, c, nil, newScorer(c))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("missing acquired", func(t *testing.T) {
		_, err := resolveConstraints(players, cfg, []Acquired{{ID: "ghost", Price: 1}}, newScorer(cfg))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("duplicate acquired", func(t *testing.T) {
		_, err := resolveConstraints(players, cfg, []Acquired{{ID: "d1", Price: 1}, {ID: "d1", Price: 2}}, newScorer(cfg))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("locked and excluded", func(t *testing.T) {
		c := cfg
		c.Constraints = &Constraints{Locks: []string{"d1"}, Excludes: []string{"d1"}}
		_, err := resolveConstraints(players, c, nil, newScorer(c))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("too many locks for a role", func(t *testing.T) {
		c := cfg
		c.Constraints = &Constraints{Locks: []string{"p1", "p2"}}
		_, err := resolveConstraints(players, c, nil, newScorer(c))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("pool shortage warnings", func(t *testing.T) {
		c := cfg
		c.RoleCounts = map[Role]int{RoleGoalkeeper: 3, RoleDefender: 2}
		c.MinStarterPct = 100
		pool, err := resolveConstraints(players, c, nil, newScorer(c))
		require.NoError(t, err)

		require.Len(t, pool.warnings, 3)
		for _, w := range pool.warnings {
			assert.Equal(t, WarnPoolShortage, w.Code)
		}
		assert.Equal(t, RoleGoalkeeper, pool.warnings[0].Role)
		assert.Equal(t, 3, pool.warnings[0].Required)
		assert.Equal(t, 2, pool.warnings[0].Achieved)
		assert.Equal(t, RoleDefender, pool.warnings[2].Role)
	})
}

func TestMinStartersRequired(t *testing.T) {
	assert.Equal(t, 0, minStartersRequired(5, 0))
	assert.Equal(t, 3, minStartersRequired(5, 50))
	assert.Equal(t, 2, minStartersRequired(3, 60))
	assert.Equal(t, 3, minStartersRequired(3, 100))
	assert.Equal(t, 0, minStartersRequired(0, 100))
}

func candidateIDs(cs []candidate) []string {
	ids := make([]string, 0, len(cs))
	for _, c := range cs {
		ids = append(ids, c.ID)
	}
	return ids
}
