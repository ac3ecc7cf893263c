package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the command configuration loaded from environment variables.
type Config struct {
	// Server
	Port      string
	LogLevel  string // debug, info, warn, error
	LogFormat string // text or json

	// Model selection
	Model     string
	MaxTokens int

	// API Keys
	AnthropicKey string
	OpenAIKey    string
	GoogleKey    string

	// Agents
	AgentsFile      string
	DefaultAgent    string
	MaxHandoffDepth int
	Timeout         time.Duration

	// Gateway retries for a single model call.
	GatewayRetries int

	// Batch runs
	Concurrency int
	RunRetries  int

	// Transcript store. Empty RedisAddr keeps transcripts in memory.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTTL      time.Duration

	// Tracing. Empty endpoint disables export.
	OTLPEndpoint string
	OTLPInsecure bool

	// MCP servers whose tools are installed into the tool registry.
	MCPCommand string
	MCPURL     string

	EnableBuiltinTools bool

	// Workspace enables read_file and search_files under this directory.
	Workspace string
	// HTTPHosts enables http_request for these hosts; "*" allows any.
	HTTPHosts []string
}

// LoadConfig loads configuration from environment variables.
// It loads a .env file if present (silent fail if not found).
func LoadConfig() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Port:               getEnvOrDefault("BATON_PORT", "8000"),
		LogLevel:           getEnvOrDefault("BATON_LOG_LEVEL", "info"),
		LogFormat:          getEnvOrDefault("BATON_LOG_FORMAT", "text"),
		Model:              os.Getenv("BATON_MODEL"),
		MaxTokens:          getEnvIntOrDefault("BATON_MAX_TOKENS", 0),
		AnthropicKey:       os.Getenv("ANTHROPIC_API_KEY"),
		OpenAIKey:          os.Getenv("OPENAI_API_KEY"),
		GoogleKey:          os.Getenv("GOOGLE_API_KEY"),
		AgentsFile:         getEnvOrDefault("BATON_AGENTS_FILE", "agents.yaml"),
		DefaultAgent:       os.Getenv("BATON_DEFAULT_AGENT"),
		MaxHandoffDepth:    getEnvIntOrDefault("BATON_MAX_HANDOFF_DEPTH", 8),
		Timeout:            getEnvDurationOrDefault("BATON_TIMEOUT", 5*time.Minute),
		GatewayRetries:     getEnvIntOrDefault("BATON_GATEWAY_RETRIES", 3),
		Concurrency:        getEnvIntOrDefault("BATON_CONCURRENCY", 4),
		RunRetries:         getEnvIntOrDefault("BATON_RUN_RETRIES", 1),
		RedisAddr:          os.Getenv("BATON_REDIS_ADDR"),
		RedisPassword:      os.Getenv("BATON_REDIS_PASSWORD"),
		RedisDB:            getEnvIntOrDefault("BATON_REDIS_DB", 0),
		RedisTTL:           getEnvDurationOrDefault("BATON_REDIS_TTL", 0),
		OTLPEndpoint:       os.Getenv("BATON_OTLP_ENDPOINT"),
		OTLPInsecure:       getEnvBoolOrDefault("BATON_OTLP_INSECURE", false),
		MCPCommand:         os.Getenv("BATON_MCP_COMMAND"),
		MCPURL:             os.Getenv("BATON_MCP_URL"),
		EnableBuiltinTools: getEnvBoolOrDefault("BATON_BUILTIN_TOOLS", true),
		Workspace:          os.Getenv("BATON_WORKSPACE"),
		HTTPHosts:          getEnvListOrDefault("BATON_HTTP_HOSTS", nil),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is usable. API keys are checked
// lazily by the gateway, per provider, when a model first needs one.
func (c *Config) Validate() error {
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %s (must be text or json)", c.LogFormat)
	}
	if c.AnthropicKey == "" && c.OpenAIKey == "" && c.GoogleKey == "" {
		return fmt.Errorf("at least one of ANTHROPIC_API_KEY, OPENAI_API_KEY or GOOGLE_API_KEY is required")
	}
	if c.MaxHandoffDepth < 1 {
		return fmt.Errorf("BATON_MAX_HANDOFF_DEPTH must be at least 1")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("BATON_CONCURRENCY must be at least 1")
	}
	if c.RunRetries < 1 {
		return fmt.Errorf("BATON_RUN_RETRIES must be at least 1")
	}
	if c.MCPCommand != "" && c.MCPURL != "" {
		return fmt.Errorf("BATON_MCP_COMMAND and BATON_MCP_URL are mutually exclusive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
