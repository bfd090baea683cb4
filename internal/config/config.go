package config

import (
	"errors"
	"os"

	"blackjack-server/internal/util"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// Config provides configuration for the blackjack server
type Config struct {
	loaded         bool
	PGDSN          string `yaml:"pgDsn" envconfig:"pg_dsn"`
	MigrationsPath string `yaml:"migrationsPath" envconfig:"migrations_path"`
	JWT            struct {
		PublicKey  string `yaml:"publicKey" envconfig:"public_key"`
		PrivateKey string `yaml:"privateKey" envconfig:"private_key"`
	} `yaml:"jwt"`
	Log struct {
		Level             string `yaml:"level"`
		Format            string `yaml:"format"`
		DisableAccessLogs bool   `yaml:"disableAccessLogs" envconfig:"disable_access_logs"`
	} `yaml:"log"`
	Table struct {
		// MinBet and MaxBet are decimal strings; an empty MaxBet means no limit
		MinBet          string `yaml:"minBet" envconfig:"min_bet"`
		MaxBet          string `yaml:"maxBet" envconfig:"max_bet"`
		StartingBalance string `yaml:"startingBalance" envconfig:"starting_balance"`
	} `yaml:"table"`
	RateLimit struct {
		RequestsPerMinute int `yaml:"requestsPerMinute" envconfig:"requests_per_minute"`
	} `yaml:"rateLimit"`
	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins" envconfig:"allowed_origins"`
	} `yaml:"cors"`
}

// Limits returns the parsed table limits
func (c Config) Limits() (minBet, maxBet decimal.Decimal, err error) {
	if c.Table.MinBet != "" {
		if minBet, err = decimal.NewFromString(c.Table.MinBet); err != nil {
			return
		}
	}

	if c.Table.MaxBet != "" {
		if maxBet, err = decimal.NewFromString(c.Table.MaxBet); err != nil {
			return
		}
	}

	if maxBet.IsPositive() && minBet.GreaterThan(maxBet) {
		err = errors.New("minBet cannot be greater than maxBet")
	}

	return
}

// StartingBalance returns the balance a new user starts with
func (c Config) StartingBalance() (decimal.Decimal, error) {
	if c.Table.StartingBalance == "" {
		return decimal.Zero, nil
	}

	return decimal.NewFromString(c.Table.StartingBalance)
}

var config Config

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	c := Config{
		PGDSN:          "postgres://postgres@localhost:5432/postgres?sslmode=disable",
		MigrationsPath: "./sql",
	}

	c.JWT.PublicKey = ".jwt/public.pem"
	c.JWT.PrivateKey = ".jwt/private.key"
	c.Log.Level = "info"
	c.Table.MinBet = "1"
	c.Table.MaxBet = "500"
	c.Table.StartingBalance = "1000"
	c.RateLimit.RequestsPerMinute = 120
	c.CORS.AllowedOrigins = []string{"*"}

	return c
}

// Instance returns a singleton instance
// If the config hasn't been loaded, it will be loaded
func Instance() Config {
	if !config.loaded {
		if err := Load(); err != nil {
			panic(err)
		}
	}

	return config
}

// Load will load the configuration
// Values from the YAML file override the defaults, and environment variables override both
func Load() error {
	cfg := DefaultConfig()

	configFile := util.Getenv("BJ_CONFIG_FILE", "config.yaml")
	file, err := os.Open(configFile)
	if err != nil {
		if !os.IsNotExist(err) {
			return err
		}
	} else {
		defer file.Close()

		if err := yaml.NewDecoder(file).Decode(&cfg); err != nil {
			return err
		}
	}

	if err := envconfig.Process("bj", &cfg); err != nil {
		return err
	}

	if _, _, err := cfg.Limits(); err != nil {
		return err
	}

	if _, err := cfg.StartingBalance(); err != nil {
		return err
	}

	config = cfg
	config.loaded = true
	return nil
}
