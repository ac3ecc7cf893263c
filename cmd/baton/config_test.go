package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")
	t.Setenv("BATON_MODEL", "claude-sonnet-4-5")
	t.Setenv("BATON_CONCURRENCY", "8")
	t.Setenv("BATON_TIMEOUT", "30s")
	t.Setenv("BATON_BUILTIN_TOOLS", "false")
	t.Setenv("BATON_MAX_HANDOFF_DEPTH", "not-a-number")
	t.Setenv("BATON_HTTP_HOSTS", "api.example.com, ,docs.example.com")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-5", cfg.Model)
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.False(t, cfg.EnableBuiltinTools)
	assert.Equal(t, 8, cfg.MaxHandoffDepth)
	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, "agents.yaml", cfg.AgentsFile)
	assert.Equal(t, []string{"api.example.com", "docs.example.com"}, cfg.HTTPHosts)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			LogLevel:        "info",
			LogFormat:       "text",
			OpenAIKey:       "sk-test",
			MaxHandoffDepth: 8,
			Concurrency:     4,
			RunRetries:      1,
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		modify func(*Config)
		want   string
	}{
		{"no keys", func(c *Config) { c.OpenAIKey = "" }, "API_KEY"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "log format"},
		{"depth", func(c *Config) { c.MaxHandoffDepth = 0 }, "BATON_MAX_HANDOFF_DEPTH"},
		{"concurrency", func(c *Config) { c.Concurrency = 0 }, "BATON_CONCURRENCY"},
		{"retries", func(c *Config) { c.RunRetries = 0 }, "BATON_RUN_RETRIES"},
		{"two MCP servers", func(c *Config) { c.MCPCommand = "srv"; c.MCPURL = "http://x" }, "mutually exclusive"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.modify(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&Config{LogLevel: "warn", LogFormat: "json"}, &buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.True(t, strings.HasPrefix(out, "{"))
	assert.Contains(t, out, `"k":"v"`)
}
