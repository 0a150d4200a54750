package optimizer

// Request is the full input of one build as accepted by the HTTP API and the CLI
type Request struct {
	Players  []Player    `json:"players" yaml:"players"`
	Config   BuildConfig `json:"config" yaml:"config"`
	Acquired []Acquired  `json:"acquired" yaml:"acquired"`
}

// BuildRequest runs the optimizer on a decoded request
func (o *Optimizer) BuildRequest(req *Request) (*BuildResult, error) {
	return o.Build(req.Players, req.Config, req.Acquired)
}

// Check runs input validation and constraint resolution without solving.
// It returns the pool shortage warnings a build would carry.
func (req *Request) Check() ([]Warning, error) {
	if err := validateConfig(req.Players, req.Config); err != nil {
		return nil, err
	}
	pool, err := resolveConstraints(req.Players, req.Config, req.Acquired, newScorer(req.Config))
	if err != nil {
		return nil, err
	}
	return pool.warnings, nil
}

// PoolSummary counts the players of a request per role
type PoolSummary struct {
	Players  map[Role]int `json:"players"`
	Starters map[Role]int `json:"starters"`
	Required map[Role]int `json:"required"`
	Budgets  map[Role]int `json:"initialBudgets"`
}

// Summarize reports pool sizes and the initial budget split without solving
func (req *Request) Summarize() PoolSummary {
	s := PoolSummary{
		Players:  make(map[Role]int, len(AllRoles)),
		Starters: make(map[Role]int, len(AllRoles)),
		Required: make(map[Role]int, len(AllRoles)),
		Budgets:  InitialBudgets(req.Config.TotalBudget, req.Config.RolePercentages),
	}
	for _, r := range AllRoles {
		s.Players[r] = 0
		s.Starters[r] = 0
		s.Required[r] = req.Config.RoleCounts[r]
	}
	for _, p := range req.Players {
		s.Players[p.Role]++
		if p.Starter {
			s.Starters[p.Role]++
		}
	}
	return s
}
