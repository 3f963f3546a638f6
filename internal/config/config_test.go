package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseConfig(environment string) *Config {
	return &Config{
		Port:           "8080",
		Environment:    environment,
		GoogleClientID: "client-id-123",
		SessionTTL:     7 * 24 * time.Hour,
	}
}

func TestValidate_RequiresGoogleClientID(t *testing.T) {
	cfg := baseConfig(EnvDevelopment)
	cfg.GoogleClientID = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_CLIENT_ID")
}

func TestValidate_ProductionRequiresJWTSecret(t *testing.T) {
	cfg := baseConfig(EnvProduction)
	cfg.DatabaseURL = "postgres://app@db:5432/cleem"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestValidate_ProductionRejectsDevSecret(t *testing.T) {
	cfg := baseConfig(EnvProduction)
	cfg.JWTSecret = DevJWTSecret
	cfg.DatabaseURL = "postgres://app@db:5432/cleem"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "development default")
}

func TestValidate_ProductionRequiresDatabaseURL(t *testing.T) {
	cfg := baseConfig(EnvProduction)
	cfg.JWTSecret = "a-real-secret"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
}

func TestValidate_ProductionComplete(t *testing.T) {
	cfg := baseConfig(EnvProduction)
	cfg.JWTSecret = "a-real-secret"
	cfg.DatabaseURL = "postgres://app@db:5432/cleem"

	assert.NoError(t, cfg.Validate())
}

func TestValidate_DevelopmentFillsDefaults(t *testing.T) {
	cfg := baseConfig(EnvDevelopment)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, DevJWTSecret, cfg.JWTSecret)
	assert.NotEmpty(t, cfg.DatabaseURL)
}

func TestValidate_DevelopmentKeepsExplicitSecret(t *testing.T) {
	cfg := baseConfig(EnvDevelopment)
	cfg.JWTSecret = "my-local-secret"

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "my-local-secret", cfg.JWTSecret)
}

func TestValidate_RejectsNonPositiveTTL(t *testing.T) {
	cfg := baseConfig(EnvDevelopment)
	cfg.SessionTTL = 0

	assert.Error(t, cfg.Validate())
}

func TestLoad_DefaultsFromEnvironment(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "client-id-123")
	t.Setenv("ENVIRONMENT", EnvDevelopment)
	t.Setenv("PORT", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("JWT_EXPIRATION_MINUTES", "")
	t.Setenv("ALLOWED_ORIGINS", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionTTL, "sessions default to seven days")
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:5173"}, cfg.AllowedOrigins)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_SessionTTLOverride(t *testing.T) {
	t.Setenv("GOOGLE_CLIENT_ID", "client-id-123")
	t.Setenv("ENVIRONMENT", EnvDevelopment)
	t.Setenv("JWT_EXPIRATION_MINUTES", "30")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
}

func TestParseOrigins(t *testing.T) {
	assert.Equal(t,
		[]string{"https://app.example.com", "http://localhost:3000"},
		parseOrigins(" https://app.example.com , http://localhost:3000 ,"))
	assert.Empty(t, parseOrigins(""))
}
