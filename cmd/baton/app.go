package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/spetersoncode/baton/agent"
	"github.com/spetersoncode/baton/event"
	"github.com/spetersoncode/baton/gateway"
	"github.com/spetersoncode/baton/internal/retry"
	"github.com/spetersoncode/baton/mcp"
	"github.com/spetersoncode/baton/store"
	"github.com/spetersoncode/baton/tool"
	"github.com/spetersoncode/baton/tracing"
)

const tracerName = "github.com/spetersoncode/baton"

// App holds everything a command needs to run agents.
type App struct {
	cfg         *Config
	logger      *slog.Logger
	runner      *agent.Runner
	transcripts *store.Transcripts
	collector   event.Collector

	closers []func(context.Context) error
}

// newLogger builds the process logger from the configured level and format.
func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.LogLevel) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewApp wires the gateway, tools, agents, store and tracing from cfg. The
// returned App must be closed.
func NewApp(ctx context.Context, cfg *Config, logger *slog.Logger) (_ *App, err error) {
	app := &App{cfg: cfg, logger: logger}
	defer func() {
		if err != nil {
			app.Close(context.Background())
		}
	}()

	agents, err := agent.LoadFile(cfg.AgentsFile)
	if err != nil {
		return nil, err
	}

	tools := tool.NewRegistry()
	if cfg.EnableBuiltinTools {
		tools.Add(tool.Builtin()...)
	}
	if cfg.Workspace != "" {
		tools.Add(tool.Workspace(cfg.Workspace)...)
	}
	if len(cfg.HTTPHosts) > 0 {
		var opts []tool.HTTPToolOption
		if !slices.Contains(cfg.HTTPHosts, "*") {
			opts = append(opts, tool.WithAllowedHosts(cfg.HTTPHosts...))
		}
		tools.Add(tool.HTTPTool(opts...))
	}
	if err := app.installMCP(ctx, tools); err != nil {
		return nil, err
	}
	if err := agents.Validate(tools); err != nil {
		logger.Warn("agent configuration has problems", "error", err)
	}

	gwRetry := retry.DefaultConfig()
	gwRetry.MaxAttempts = max(cfg.GatewayRetries, 1)
	gw := gateway.New(gateway.Config{
		APIKeys: gateway.APIKeys{
			Anthropic: cfg.AnthropicKey,
			OpenAI:    cfg.OpenAIKey,
			Google:    cfg.GoogleKey,
		},
		DefaultModel: cfg.Model,
		MaxTokens:    cfg.MaxTokens,
		Retry:        &gwRetry,
		Logger:       logger,
	})

	collectors := event.Multi{event.NewLogger(logger)}
	if cfg.OTLPEndpoint != "" {
		tp, err := tracing.NewProvider(ctx, tracing.Config{
			Endpoint: cfg.OTLPEndpoint,
			Insecure: cfg.OTLPInsecure,
		})
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, tp.Shutdown)
		collectors = append(collectors, tracing.NewCollector(tp.Tracer(tracerName)))
	}
	app.collector = collectors

	app.runner, err = agent.NewRunner(gw, tools, agents,
		agent.WithLogger(logger),
		agent.WithMaxHandoffDepth(cfg.MaxHandoffDepth),
	)
	if err != nil {
		return nil, err
	}

	if err := app.openStore(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

// installMCP connects to the configured MCP server, if any, and installs
// its tools under the "mcp_" prefix.
func (a *App) installMCP(ctx context.Context, tools *tool.Registry) error {
	var (
		remote *mcp.RemoteRegistry
		err    error
	)
	switch {
	case a.cfg.MCPCommand != "":
		fields := strings.Fields(a.cfg.MCPCommand)
		remote, err = mcp.NewRemoteRegistry(ctx, fields[0], nil, fields[1:]...)
	case a.cfg.MCPURL != "":
		remote, err = mcp.NewRemoteRegistrySSE(ctx, a.cfg.MCPURL)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("connect MCP server: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return remote.Close() })

	if err := remote.Install(tools, "mcp_"); err != nil {
		return err
	}
	a.logger.Info("installed MCP tools", "count", remote.Len(), "names", remote.Names())
	return nil
}

// openStore picks Redis when an address is configured, memory otherwise.
func (a *App) openStore(ctx context.Context) error {
	if a.cfg.RedisAddr == "" {
		a.transcripts = store.NewTranscripts(store.NewMemoryAdapter())
		return nil
	}
	adapter, err := store.NewRedisAdapter(ctx, store.RedisConfig{
		Address:  a.cfg.RedisAddr,
		Password: a.cfg.RedisPassword,
		DB:       a.cfg.RedisDB,
		TTL:      a.cfg.RedisTTL,
	})
	if err != nil {
		return err
	}
	a.closers = append(a.closers, func(context.Context) error { return adapter.Close() })
	a.transcripts = store.NewTranscripts(adapter)
	return nil
}

// Runner returns the shared agent runner.
func (a *App) Runner() *agent.Runner { return a.runner }

// Transcripts returns the transcript store.
func (a *App) Transcripts() *store.Transcripts { return a.transcripts }

// RunOptions returns the options every run gets, with extra collectors
// appended to the app's own.
func (a *App) RunOptions(extra ...event.Collector) []agent.Option {
	collectors := event.Multi{a.collector}
	collectors = append(collectors, extra...)
	return []agent.Option{agent.WithCollector(collectors)}
}

// Close releases connections in reverse order of creation.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
