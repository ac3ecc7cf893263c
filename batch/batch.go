// Package batch runs many independent agent runs with bounded concurrency.
package batch

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/spetersoncode/baton/agent"
	"github.com/spetersoncode/baton/internal/retry"
	"github.com/spetersoncode/baton/store"
	"github.com/spetersoncode/baton/transcript"
)

// Job is one run to execute.
type Job struct {
	// ID becomes the run ID. Empty generates one.
	ID      string          `json:"id,omitempty"`
	Agent   string          `json:"agent"`
	Input   string          `json:"input,omitempty"`
	Args    json.RawMessage `json:"args,omitempty"`
	Context string          `json:"context,omitempty"`
}

func (j Job) input() agent.Input {
	in := agent.Input{Args: j.Args, Context: j.Context}
	if j.Input != "" {
		in.Messages = []transcript.Message{transcript.User{Text: j.Input}}
	}
	return in
}

// Result is the outcome of one Job.
type Result struct {
	Job      Job
	Run      *agent.RunResult
	Attempts int

	// Err is set when the run could not start or could not be stored.
	Err error
}

// Pool executes jobs on an agent.Runner.
type Pool struct {
	runner      *agent.Runner
	concurrency int
	retry       retry.Config
	store       *store.Transcripts
	logger      *slog.Logger
	runOptions  []agent.Option
}

// New creates a pool. Runs are not retried unless WithRetry is given.
func New(r *agent.Runner, opts ...Option) *Pool {
	p := &Pool{
		runner:      r,
		concurrency: DefaultConcurrency,
		retry:       retry.Disabled(),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes every job and returns results in job order. It returns an
// error only when ctx ends before all jobs finish; results of jobs that
// did finish are still returned.
func (p *Pool) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	var failed atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(p.concurrency)
	for i, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = p.runOne(ctx, job)
			if r := results[i]; r.Err != nil || !r.Run.Succeeded() {
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	p.logger.Info("batch finished", "jobs", len(jobs), "failed", failed.Load())
	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("batch interrupted: %w", err)
	}
	return results, nil
}

func (p *Pool) runOne(ctx context.Context, job Job) Result {
	res := Result{Job: job}
	logger := p.logger.With("job", job.ID, "agent", job.Agent)

	opts := p.runOptions
	if job.ID != "" {
		opts = append(opts[:len(opts):len(opts)], agent.WithRunID(job.ID))
	}

	notify := func(e retry.Event) {
		logger.Warn("retrying run", "attempt", e.Attempt, "max_attempts", e.MaxAttempts, "delay", e.Delay, "error", e.Err)
	}
	_, err := retry.DoNotify(ctx, p.retry, notify, func() (*agent.RunResult, error) {
		res.Attempts++
		run, err := p.runner.Run(ctx, job.Agent, job.input(), opts...)
		res.Run = run
		if err != nil {
			return run, permanent{err}
		}
		if run.Status == agent.StatusError && retry.IsTransient(run.Err) {
			return run, run.Err
		}
		return run, nil
	})

	var perm permanent
	switch {
	case errors.As(err, &perm):
		res.Err = perm.err
		logger.Error("run refused", "error", perm.err)
		return res
	case err != nil && !retry.IsTransient(err):
		res.Err = err
	}

	if p.store != nil && res.Run != nil {
		if _, serr := p.store.Save(ctx, res.Run); serr != nil {
			res.Err = errors.Join(res.Err, serr)
			logger.Error("store run", "error", serr)
		}
	}
	if res.Run != nil {
		logger.Info("run done", "run_id", res.Run.RunID, "status", res.Run.Status, "attempts", res.Attempts)
	}
	return res
}

// permanent stops retries for configuration errors.
type permanent struct{ err error }

func (p permanent) Error() string { return p.err.Error() }
func (p permanent) Unwrap() error { return p.err }

// ReadJobs reads one JSON Job per line. Blank lines and lines starting
// with # are skipped.
func ReadJobs(r io.Reader) ([]Job, error) {
	var jobs []Job
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		var job Job
		if err := json.Unmarshal([]byte(text), &job); err != nil {
			return nil, fmt.Errorf("jobs line %d: %w", line, err)
		}
		if job.Agent == "" {
			return nil, fmt.Errorf("jobs line %d: agent is required", line)
		}
		jobs = append(jobs, job)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read jobs: %w", err)
	}
	return jobs, nil
}
