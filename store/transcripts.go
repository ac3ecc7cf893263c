package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	ai "github.com/spetersoncode/baton"
	"github.com/spetersoncode/baton/agent"
	"github.com/spetersoncode/baton/transcript"
)

// RunKeyPrefix prefixes the key of every stored run.
const RunKeyPrefix = "run:"

// Record is the stored form of a finished run.
type Record struct {
	RunID             string                  `json:"runId"`
	Agent             string                  `json:"agent"`
	Status            agent.Status            `json:"status"`
	TerminationReason agent.TerminationReason `json:"terminationReason,omitempty"`
	Output            string                  `json:"output,omitempty"`
	Error             string                  `json:"error,omitempty"`
	Iterations        int                     `json:"iterations"`
	Args              json.RawMessage         `json:"args,omitempty"`
	Usage             ai.Usage                `json:"usage"`
	HandoffChain      []string                `json:"handoffChain,omitempty"`
	Messages          *transcript.Log         `json:"messages"`
	FinishedAt        time.Time               `json:"finishedAt"`
}

// RecordOf converts a run result into a Record finished at t.
func RecordOf(res *agent.RunResult, t time.Time) Record {
	return Record{
		RunID:             res.RunID,
		Agent:             res.Agent,
		Status:            res.Status,
		TerminationReason: res.TerminationReason,
		Output:            res.Output,
		Error:             res.ErrorText,
		Iterations:        res.Iterations,
		Args:              res.Args,
		Usage:             res.Usage,
		HandoffChain:      res.HandoffChain,
		Messages:          res.Messages,
		FinishedAt:        t.UTC(),
	}
}

// Transcripts stores run records in an Adapter, keyed by run ID.
type Transcripts struct {
	adapter Adapter
	now     func() time.Time
}

// NewTranscripts creates a transcript store. A nil adapter uses a
// MemoryAdapter.
func NewTranscripts(a Adapter) *Transcripts {
	if a == nil {
		a = NewMemoryAdapter()
	}
	return &Transcripts{adapter: a, now: time.Now}
}

// Save stores the result of a run and returns the stored record.
func (t *Transcripts) Save(ctx context.Context, res *agent.RunResult) (Record, error) {
	if res == nil || res.RunID == "" {
		return Record{}, errors.New("store: run result without run ID")
	}
	rec := RecordOf(res, t.now())
	if err := t.Put(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Put stores rec, replacing any record with the same run ID.
func (t *Transcripts) Put(ctx context.Context, rec Record) error {
	if rec.RunID == "" {
		return errors.New("store: record without run ID")
	}
	return SetJSON(ctx, t.adapter, RunKeyPrefix+rec.RunID, rec)
}

// Load returns the record of runID, or ErrNotFound.
func (t *Transcripts) Load(ctx context.Context, runID string) (Record, error) {
	rec, err := GetJSON[Record](ctx, t.adapter, RunKeyPrefix+runID)
	if err != nil {
		return Record{}, fmt.Errorf("load run %s: %w", runID, err)
	}
	if rec.Messages == nil {
		rec.Messages = transcript.NewLog()
	}
	return rec, nil
}

// List returns the stored run IDs, sorted.
func (t *Transcripts) List(ctx context.Context) ([]string, error) {
	keys, err := t.adapter.Keys(ctx, RunKeyPrefix)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(keys))
	for i, k := range keys {
		ids[i] = strings.TrimPrefix(k, RunKeyPrefix)
	}
	return ids, nil
}

// Delete removes the record of runID.
func (t *Transcripts) Delete(ctx context.Context, runID string) error {
	return t.adapter.Delete(ctx, RunKeyPrefix+runID)
}
