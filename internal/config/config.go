package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Team store backends selectable through TEAM_STORE.
const (
	TeamStorePostgres = "postgres"
	TeamStoreMongo    = "mongo"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	Port                int           `envconfig:"PORT" default:"8080"`
	LogLevel            string        `envconfig:"LOG_LEVEL" default:"info"`
	DatabaseURL         string        `envconfig:"DATABASE_URL" required:"true"`
	DatabaseMaxConns    int32         `envconfig:"DATABASE_MAX_CONNS" default:"10"`
	TeamStore           string        `envconfig:"TEAM_STORE" default:"postgres"`
	MongoURI            string        `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
	MongoDatabase       string        `envconfig:"MONGO_DATABASE" default:"workflex"`
	JWTSecret           string        `envconfig:"JWT_SECRET" required:"true"`
	JWTExpiry           time.Duration `envconfig:"JWT_EXPIRY" default:"24h"`
	BcryptCost          int           `envconfig:"BCRYPT_COST" default:"12"`
	InviteTTL           time.Duration `envconfig:"INVITE_TTL" default:"168h"`
	InviteSweepInterval int           `envconfig:"INVITE_SWEEP_INTERVAL" default:"60"`
	Version             string        `envconfig:"VERSION" default:"dev"`
}

// Load reads an optional .env file, then configuration from environment
// variables into a Config struct. Variables already set in the environment
// win over the .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.TeamStore {
	case TeamStorePostgres, TeamStoreMongo:
	default:
		return fmt.Errorf("TEAM_STORE must be %q or %q, got %q", TeamStorePostgres, TeamStoreMongo, c.TeamStore)
	}
	if c.InviteSweepInterval <= 0 {
		return errors.New("INVITE_SWEEP_INTERVAL must be positive")
	}
	if c.DatabaseMaxConns < 0 {
		return errors.New("DATABASE_MAX_CONNS must not be negative")
	}
	if c.InviteTTL <= 0 {
		return errors.New("INVITE_TTL must be positive")
	}
	return nil
}
