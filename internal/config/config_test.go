package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		AppEnv:             "development",
		Port:               "8080",
		StoreTimeout:       5 * time.Second,
		QuantifyCacheTTL:   30 * time.Second,
		RateLimitPerSecond: 20,
		RateLimitBurst:     40,
	}
}

func TestValidate_DevelopmentWithoutMongo(t *testing.T) {
	require.NoError(t, validate(validConfig()))
}

func TestValidate_ProductionRequiresMongo(t *testing.T) {
	cfg := validConfig()
	cfg.AppEnv = "production"
	err := validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MONGO_URL")

	cfg.MongoURL = "mongodb://localhost:27017"
	require.NoError(t, validate(cfg))
}

func TestValidate_RejectsNonPositiveDurations(t *testing.T) {
	cfg := validConfig()
	cfg.StoreTimeout = 0
	assert.Error(t, validate(cfg))

	cfg = validConfig()
	cfg.QuantifyCacheTTL = -time.Second
	assert.Error(t, validate(cfg))
}

func TestValidate_RejectsNonPositiveRateLimits(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimitPerSecond = 0
	assert.Error(t, validate(cfg))

	cfg = validConfig()
	cfg.RateLimitBurst = 0
	assert.Error(t, validate(cfg))
}
