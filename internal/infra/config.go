package infra

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL"`
	PGHost      string `env:"PGHOST" envDefault:"localhost"`
	PGPort      int    `env:"PGPORT" envDefault:"5432"`
	PGUser      string `env:"PGUSER" envDefault:"league"`
	PGPassword  string `env:"PGPASSWORD" envDefault:"league"`
	PGDatabase  string `env:"PGDATABASE" envDefault:"league"`
	DBMaxConns  int    `env:"DB_MAX_CONNS" envDefault:"20"`

	// When true the API runs entirely on the in-memory store, no
	// postgres or kafka required. Useful for demos and local dev.
	InMemory bool `env:"IN_MEMORY" envDefault:"false"`

	// Server
	APIPort int `env:"API_PORT" envDefault:"3100"`

	// Kafka
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled bool   `env:"KAFKA_ENABLED" envDefault:"false"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Simulation tuning. A zero seed draws one from the seed provider at
	// startup.
	RandomOrgKey      string  `env:"RANDOM_ORG_KEY"`
	SimSeed           int64   `env:"SIM_SEED" envDefault:"0"`
	SimMaxDuration    int     `env:"SIM_MAX_DURATION" envDefault:"120"`
	SimHomeAdvantage  float64 `env:"SIM_HOME_ADVANTAGE" envDefault:"1.08"`
	SimProbabilityCap float64 `env:"SIM_PROBABILITY_CAP" envDefault:"0.25"`
	SimBlowoutEnabled bool    `env:"SIM_BLOWOUT_ENABLED" envDefault:"false"`
	SimBlowoutGap     int     `env:"SIM_BLOWOUT_GAP" envDefault:"300"`
	SimBlowoutMinute  int     `env:"SIM_BLOWOUT_MINUTE" envDefault:"60"`
}

// LoadConfig parses environment variables into a Config struct.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate rejects tuning values the simulator cannot run with.
func (c *Config) Validate() error {
	if c.SimMaxDuration <= 0 {
		return fmt.Errorf("SIM_MAX_DURATION must be positive, got %d", c.SimMaxDuration)
	}
	if c.SimProbabilityCap <= 0 || c.SimProbabilityCap > 1 {
		return fmt.Errorf("SIM_PROBABILITY_CAP must be in (0,1], got %g", c.SimProbabilityCap)
	}
	if c.SimHomeAdvantage < 1 {
		return fmt.Errorf("SIM_HOME_ADVANTAGE must be at least 1, got %g", c.SimHomeAdvantage)
	}
	if c.SimBlowoutEnabled && c.SimBlowoutGap <= 0 {
		return fmt.Errorf("SIM_BLOWOUT_GAP must be positive when the blowout rule is on")
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
