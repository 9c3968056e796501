package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadConfig(t *testing.T) {
	tests := []struct {
		name        string
		envVars     map[string]string
		expectError bool
	}{
		{
			name:        "defaults are valid in development",
			envVars:     map[string]string{},
			expectError: false,
		},
		{
			name: "production requires a gemini key",
			envVars: map[string]string{
				"SERVER_ENVIRONMENT": "production",
			},
			expectError: true,
		},
		{
			name: "production with key",
			envVars: map[string]string{
				"SERVER_ENVIRONMENT": "production",
				"GEMINI_API_KEY":     "AIzaTestKey123456",
			},
			expectError: false,
		},
		{
			name: "unknown environment",
			envVars: map[string]string{
				"SERVER_ENVIRONMENT": "staging",
			},
			expectError: true,
		},
		{
			name: "non positive max turns",
			envVars: map[string]string{
				"LLM_MAX_TURNS": "0",
			},
			expectError: true,
		},
		{
			name: "storage enabled without bucket",
			envVars: map[string]string{
				"STORAGE_ENABLED": "true",
			},
			expectError: true,
		},
		{
			name: "wallet issuer without key file",
			envVars: map[string]string{
				"WALLET_ISSUER_ID": "3388000000000000000",
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := LoadConfig()
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
		})
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DefaultMaxTurns, cfg.LLM.MaxTurns)
	assert.Equal(t, 0.0, cfg.LLM.Temperature)
	assert.Equal(t, "gemini-2.0-flash", cfg.LLM.ChatModel)
	assert.Equal(t, 30, cfg.RateLimit.QueryRequestsPerMinute)
	assert.False(t, cfg.Wallet.Enabled())
	assert.True(t, cfg.Database.AutoMigrate)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raseed.yaml")
	content := []byte(`
server:
  port: "9090"
llm:
  chat_model: gemini-2.5-flash
  max_turns: 3
rate_limit:
  query_requests_per_minute: 5
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.ChatModel)
	assert.Equal(t, 3, cfg.LLM.MaxTurns)
	assert.Equal(t, 5, cfg.RateLimit.QueryRequestsPerMinute)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "raseed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("llm:\n  max_turns: 3\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LLM_MAX_TURNS", "7")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.LLM.MaxTurns)
}

func TestValidateConfigOrigins(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.AllowedOrigins = []string{"not a url"}
	assert.Error(t, validateConfig(cfg, zap.NewNop().Sugar()))

	cfg.Server.AllowedOrigins = []string{"https://raseed.app"}
	assert.NoError(t, validateConfig(cfg, zap.NewNop().Sugar()))
}

func TestValidateLLMTemperature(t *testing.T) {
	cfg := validBaseConfig()
	cfg.LLM.Temperature = 2.5
	assert.Error(t, validateConfig(cfg, zap.NewNop().Sugar()))
}

func validBaseConfig() *Config {
	return &Config{
		Server:   ServerConfig{Environment: EnvDevelopment, Port: "8080", AllowedOrigins: []string{"*"}},
		Database: DatabaseConfig{Host: "localhost", User: "postgres", Name: "raseed"},
		Redis:    RedisConfig{Address: "localhost:6379"},
		LLM: LLMConfig{
			BaseURL:        "https://generativelanguage.googleapis.com/v1beta",
			ChatModel:      "gemini-2.0-flash",
			MaxTurns:       5,
			TimeoutSeconds: 60,
		},
		Cache:     CacheConfig{Enabled: true, TTLSeconds: 60},
		RateLimit: RateLimitConfig{QueryRequestsPerMinute: 10, WindowSeconds: 60},
	}
}
