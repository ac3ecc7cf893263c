package batch

import (
	"log/slog"
	"time"

	"github.com/spetersoncode/baton/agent"
	"github.com/spetersoncode/baton/internal/retry"
	"github.com/spetersoncode/baton/store"
)

// DefaultConcurrency is the number of runs in flight when unset.
const DefaultConcurrency = 4

// Option configures a Pool.
type Option func(*Pool)

// WithConcurrency bounds how many runs execute at once.
func WithConcurrency(n int) Option {
	return func(p *Pool) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithRetry retries a whole run up to maxAttempts times when it fails on a
// transient model error, waiting initialDelay before the first retry and
// doubling after that. maxAttempts of 1 disables retries.
func WithRetry(maxAttempts int, initialDelay time.Duration) Option {
	return func(p *Pool) {
		cfg := retry.DefaultConfig()
		cfg.MaxAttempts = max(maxAttempts, 1)
		if initialDelay > 0 {
			cfg.InitialDelay = initialDelay
		}
		p.retry = cfg
	}
}

// WithStore persists every finished run.
func WithStore(t *store.Transcripts) Option {
	return func(p *Pool) {
		p.store = t
	}
}

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Pool) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithRunOptions passes options to every run.
func WithRunOptions(opts ...agent.Option) Option {
	return func(p *Pool) {
		p.runOptions = append(p.runOptions, opts...)
	}
}
