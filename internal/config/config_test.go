package config

import (
	"os"
	"testing"

	"blackjack-server/internal/util"
	"github.com/stretchr/testify/assert"
)

func TestInstance(t *testing.T) {
	clear1 := util.SetEnv("BJ_CONFIG_FILE", "testdata/config.yaml")
	defer clear1()
	clear2 := util.SetEnv("BJ_JWT_PRIVATE_KEY", "private2.key")
	defer clear2()
	config = Config{}

	a := assert.New(t)
	cfg := Instance()
	a.Equal("postgres://blackjack@db:5432/blackjack?sslmode=disable", cfg.PGDSN)
	a.Equal("public.pem", cfg.JWT.PublicKey)
	a.Equal("private2.key", cfg.JWT.PrivateKey)
	a.Equal("debug", cfg.Log.Level)

	// defaults survive when the file does not set them
	a.Equal("./sql", cfg.MigrationsPath)
	a.Equal(120, cfg.RateLimit.RequestsPerMinute)

	minBet, maxBet, err := cfg.Limits()
	a.NoError(err)
	a.Equal("5", minBet.String())
	a.Equal("250.5", maxBet.String())

	// ensure that it's only loaded once
	_ = os.Setenv("BJ_JWT_PRIVATE_KEY", "private3.key")
	// ensure we aren't using a pointer
	cfg.JWT.PrivateKey = "bad"
	cfg = Instance()
	a.Equal("private2.key", cfg.JWT.PrivateKey)
}

func TestDefaults(t *testing.T) {
	clear1 := util.SetEnv("BJ_CONFIG_FILE", "testdata/does-not-exist.yaml")
	defer clear1()

	assert.NoError(t, Load())
	cfg := Instance()
	assert.Equal(t, "1", cfg.Table.MinBet)

	balance, err := cfg.StartingBalance()
	assert.NoError(t, err)
	assert.Equal(t, "1000", balance.String())
}

func TestLoad_badLimits(t *testing.T) {
	clear1 := util.SetEnv("BJ_CONFIG_FILE", "testdata/bad_limits.yaml")
	defer clear1()

	assert.EqualError(t, Load(), "minBet cannot be greater than maxBet")
}

func TestLoad_env(t *testing.T) {
	clear1 := util.SetEnv("BJ_CONFIG_FILE", "testdata/does-not-exist.yaml")
	defer clear1()
	clear2 := util.SetEnv("BJ_TABLE_MAX_BET", "")
	defer clear2()
	clear3 := util.SetEnv("BJ_RATELIMIT_REQUESTS_PER_MINUTE", "5")
	defer clear3()

	assert.NoError(t, Load())
	assert.Equal(t, 5, Instance().RateLimit.RequestsPerMinute)
}
