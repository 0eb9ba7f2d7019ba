// Package config loads service configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/talentpad/presale/internal/db"
)

// Config is the full service configuration.
type Config struct {
	Port              string        `env:"PORT" envDefault:"8080"`
	LogLevel          string        `env:"LOG_LEVEL" envDefault:"info"`
	CORSAllowOrigins  string        `env:"CORS_ALLOW_ORIGINS" envDefault:"*"`
	FinalizerInterval time.Duration `env:"FINALIZER_INTERVAL" envDefault:"1m"`

	DB      DB
	Solana  Solana
	Deposit Deposit
}

// DB holds the Postgres connection settings.
type DB struct {
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"postgres"`
	Password string `env:"DB_PASSWORD" envDefault:"postgres"`
	Name     string `env:"DB_NAME" envDefault:"presale"`
	SSLMode  string `env:"DB_SSL_MODE" envDefault:"disable"`

	// AutoMigrate lets gorm create the tables; disable it when cmd/migrate owns the schema
	AutoMigrate bool `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

// Solana holds the chain RPC settings.
type Solana struct {
	RPCURL     string  `env:"SOLANA_RPC_URL" envDefault:"https://api.mainnet-beta.solana.com"`
	Commitment string  `env:"SOLANA_COMMITMENT" envDefault:"confirmed"`
	RPS        float64 `env:"SOLANA_RPC_RPS" envDefault:"10"`
	Burst      int     `env:"SOLANA_RPC_BURST" envDefault:"20"`
}

// Deposit holds the on-chain amount verification parameters.
type Deposit struct {
	FeeEstimateLamports int64 `env:"DEPOSIT_FEE_ESTIMATE_LAMPORTS" envDefault:"5000"`
	ToleranceLamports   int64 `env:"DEPOSIT_TOLERANCE_LAMPORTS" envDefault:"10000"`
}

// Load reads .env (when present) into the process environment and parses it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return Parse()
}

// Parse parses the current environment without touching .env.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch strings.ToLower(c.Solana.Commitment) {
	case "processed", "confirmed", "finalized":
	default:
		return fmt.Errorf("invalid SOLANA_COMMITMENT %q", c.Solana.Commitment)
	}
	if c.Deposit.FeeEstimateLamports < 0 || c.Deposit.ToleranceLamports < 0 {
		return errors.New("deposit fee estimate and tolerance must not be negative")
	}
	if c.FinalizerInterval <= 0 {
		return errors.New("FINALIZER_INTERVAL must be positive")
	}
	return nil
}

// DBOptions converts the DB settings to connection options.
func (c Config) DBOptions() db.Options {
	ssl := c.DB.SSLMode != "" && c.DB.SSLMode != "disable"
	return db.Options{
		Host:       c.DB.Host,
		Port:       c.DB.Port,
		User:       c.DB.User,
		Password:   c.DB.Password,
		DBName:     c.DB.Name,
		SSLEnabled: &ssl,

		SkipAutoMigrate: !c.DB.AutoMigrate,
	}
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
