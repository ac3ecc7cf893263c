package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/baton/batch"
)

var batchCmd = &cobra.Command{
	Use:   "batch <jobs.jsonl>",
	Short: "Run every job in a JSONL file and print one result line per job",
	Long: `Each input line is a job: {"id":"..","agent":"..","input":"..","args":{..},"context":".."}.
Use "-" to read jobs from stdin. Results are written in input order.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

// batchLine is one line of batch output.
type batchLine struct {
	ID         string `json:"id,omitempty"`
	RunID      string `json:"runId,omitempty"`
	Agent      string `json:"agent"`
	Status     string `json:"status"`
	Output     string `json:"output,omitempty"`
	Error      string `json:"error,omitempty"`
	Attempts   int    `json:"attempts"`
	Iterations int    `json:"iterations"`
}

func lineOf(r batch.Result) batchLine {
	l := batchLine{ID: r.Job.ID, Agent: r.Job.Agent, Attempts: r.Attempts}
	if r.Run != nil {
		l.RunID = r.Run.RunID
		l.Agent = r.Run.Agent
		l.Status = string(r.Run.Status)
		l.Output = r.Run.Output
		l.Error = r.Run.ErrorText
		l.Iterations = r.Run.Iterations
	}
	if r.Err != nil {
		l.Error = r.Err.Error()
		if l.Status == "" {
			l.Status = "error"
		}
	}
	return l
}

func runBatch(cmd *cobra.Command, args []string) error {
	var in io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	jobs, err := batch.ReadJobs(in)
	if err != nil {
		return err
	}

	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(app)

	pool := batch.New(app.Runner(),
		batch.WithConcurrency(app.cfg.Concurrency),
		batch.WithRetry(app.cfg.RunRetries, time.Second),
		batch.WithStore(app.Transcripts()),
		batch.WithLogger(app.logger),
		batch.WithRunOptions(app.RunOptions()...),
	)

	results, runErr := pool.Run(cmd.Context(), jobs)

	enc := json.NewEncoder(cmd.OutOrStdout())
	failed := 0
	for _, r := range results {
		if r.Run == nil && r.Err == nil {
			continue
		}
		if r.Err != nil || !r.Run.Succeeded() {
			failed++
		}
		if err := enc.Encode(lineOf(r)); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d jobs failed", failed, len(jobs))
	}
	return nil
}
