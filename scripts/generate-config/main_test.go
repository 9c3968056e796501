package main

import (
	"testing"

	"github.com/raseed-labs/raseed-backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRenderRedactsSecrets(t *testing.T) {
	cfg := &config.Config{
		Server:   config.ServerConfig{Environment: config.EnvDevelopment, Port: "8080"},
		Database: config.DatabaseConfig{Host: "db", User: "raseed", Password: "hunter2"},
		LLM:      config.LLMConfig{APIKey: "AIza-secret", ChatModel: "gemini-2.0-flash"},
	}
	redactSecrets(cfg)

	data, err := render(cfg)
	require.NoError(t, err)

	var doc map[string]map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, redacted, doc["database"]["password"])
	assert.Equal(t, redacted, doc["llm"]["api_key"])
	assert.Equal(t, "gemini-2.0-flash", doc["llm"]["chat_model"])
	assert.Equal(t, "8080", doc["server"]["port"])
	// Empty secrets stay empty.
	assert.Equal(t, "", doc["redis"]["password"])
	assert.NotContains(t, string(data), "hunter2")
}
