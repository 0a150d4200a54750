package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/stitts-dev/fanta-optimizer/internal/optimizer"
)

type Config struct {
	// Server
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis
	RedisURL string        `mapstructure:"REDIS_URL"`
	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// Build history
	HistoryRetention  time.Duration `mapstructure:"HISTORY_RETENTION"`
	RetentionSchedule string        `mapstructure:"RETENTION_SCHEDULE"`

	// Request limits
	RateLimitRPS    float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst  int     `mapstructure:"RATE_LIMIT_BURST"`
	RequestMaxBytes int64   `mapstructure:"REQUEST_MAX_BYTES"`

	// Optimizer
	ExactMaxCount   int     `mapstructure:"OPTIMIZER_EXACT_MAX_COUNT"`
	ExactCellLimit  int     `mapstructure:"OPTIMIZER_EXACT_CELL_LIMIT"`
	BudgetTolerance float64 `mapstructure:"OPTIMIZER_BUDGET_TOLERANCE"`
	BudgetView      string  `mapstructure:"OPTIMIZER_BUDGET_VIEW"`
	EmergencyCap    string  `mapstructure:"OPTIMIZER_EMERGENCY_CAP"`
	Parallel        bool    `mapstructure:"OPTIMIZER_PARALLEL"`

	// Resilience
	CircuitBreakerThreshold int           `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`
	ExternalAPITimeout      time.Duration `mapstructure:"EXTERNAL_API_TIMEOUT"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	// Set defaults
	viper.SetDefault("PORT", "8083")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	// Empty URLs disable build history and the result cache
	viper.SetDefault("DATABASE_URL", "")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("CACHE_TTL", "24h")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")
	viper.SetDefault("HISTORY_RETENTION", "720h") // 30 days
	viper.SetDefault("RETENTION_SCHEDULE", "@daily")
	viper.SetDefault("RATE_LIMIT_RPS", 5)
	viper.SetDefault("RATE_LIMIT_BURST", 10)
	viper.SetDefault("REQUEST_MAX_BYTES", 4<<20)

	optDefaults := optimizer.DefaultOptions()
	viper.SetDefault("OPTIMIZER_EXACT_MAX_COUNT", optDefaults.ExactMaxCount)
	viper.SetDefault("OPTIMIZER_EXACT_CELL_LIMIT", optDefaults.ExactCellLimit)
	viper.SetDefault("OPTIMIZER_BUDGET_TOLERANCE", optDefaults.BudgetTolerance)
	viper.SetDefault("OPTIMIZER_BUDGET_VIEW", string(optDefaults.BudgetView))
	viper.SetDefault("OPTIMIZER_EMERGENCY_CAP", string(optDefaults.EmergencyCap))
	viper.SetDefault("OPTIMIZER_PARALLEL", false)

	viper.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5) // Open after 5 consecutive failures
	viper.SetDefault("EXTERNAL_API_TIMEOUT", "10s")

	// Read from environment
	viper.AutomaticEnv()

	// Read config file if exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Parse CORS origins from comma-separated string
	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	if _, err := config.OptimizerOptions(); err != nil {
		return nil, err
	}

	return &config, nil
}

// OptimizerOptions maps the OPTIMIZER_* settings onto optimizer options
func (c *Config) OptimizerOptions() (optimizer.Options, error) {
	view, err := optimizer.ParseBudgetView(c.BudgetView)
	if err != nil {
		return optimizer.Options{}, fmt.Errorf("OPTIMIZER_BUDGET_VIEW: %w", err)
	}
	emergencyCap, err := optimizer.ParseEmergencyCap(c.EmergencyCap)
	if err != nil {
		return optimizer.Options{}, fmt.Errorf("OPTIMIZER_EMERGENCY_CAP: %w", err)
	}
	if c.BudgetTolerance < 0 {
		return optimizer.Options{}, fmt.Errorf("OPTIMIZER_BUDGET_TOLERANCE must not be negative, got %v", c.BudgetTolerance)
	}
	return optimizer.Options{
		ExactMaxCount:   c.ExactMaxCount,
		ExactCellLimit:  c.ExactCellLimit,
		BudgetTolerance: c.BudgetTolerance,
		BudgetView:      view,
		EmergencyCap:    emergencyCap,
		Parallel:        c.Parallel,
	}, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
