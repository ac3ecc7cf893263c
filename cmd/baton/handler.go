package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	aguievents "github.com/ag-ui-protocol/ag-ui/sdks/community/go/pkg/core/events"

	"github.com/spetersoncode/baton/agent"
	"github.com/spetersoncode/baton/agui"
	"github.com/spetersoncode/baton/event"
	"github.com/spetersoncode/baton/store"
)

// streamBuffer is the AG-UI event channel size per request.
const streamBuffer = 64

// AgentHandler runs agents for AG-UI requests and streams events over SSE.
type AgentHandler struct {
	runner       *agent.Runner
	transcripts  *store.Transcripts
	collector    event.Collector
	defaultAgent string
	timeout      time.Duration
	logger       *slog.Logger
}

// NewAgentHandler creates a handler. collector receives every run event in
// addition to the SSE stream; transcripts, when set, stores every result.
func NewAgentHandler(r *agent.Runner, t *store.Transcripts, c event.Collector, defaultAgent string, timeout time.Duration, logger *slog.Logger) *AgentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AgentHandler{
		runner:       r,
		transcripts:  t,
		collector:    c,
		defaultAgent: defaultAgent,
		timeout:      timeout,
		logger:       logger,
	}
}

// ServeHTTP handles POST requests to run an agent and stream events via SSE.
func (h *AgentHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if r.Method != http.MethodPost {
		h.logger.Warn("method not allowed", "method", r.Method, "path", r.URL.Path)
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var input agui.RunAgentInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", "error", err)
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	log := h.logger.With(
		"run_id", input.RunID,
		"thread_id", input.ThreadID,
	)

	prepared, err := input.Prepare()
	if err != nil {
		log.Warn("invalid input", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	name := prepared.Agent
	if name == "" {
		name = h.defaultAgent
	}
	if name == "" {
		http.Error(w, "no agent named in forwarded_props.agent and no default agent", http.StatusBadRequest)
		return
	}
	if !h.runner.Agents().Has(name) {
		http.Error(w, fmt.Sprintf("agent not found: %s", name), http.StatusNotFound)
		return
	}
	if err := h.runner.Agents().ValidateReachable(name, h.runner.Tools()); err != nil {
		log.Error("agent misconfigured", "agent", name, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	log = log.With("agent", name)

	if len(input.Tools) > 0 {
		log.Debug("ignoring frontend tools", "count", len(input.Tools))
	}
	log.Info("request started", "message_count", len(prepared.Messages))

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("streaming not supported")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	mapper := agui.NewMapper(prepared.ThreadID, prepared.RunID)
	stream := agui.NewStream(mapper, streamBuffer)

	ctx := r.Context()
	if h.timeout > 0 {
		var cancel func()
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	done := make(chan *agent.RunResult, 1)
	go func() {
		defer stream.Close()
		res, _ := h.runner.Run(ctx, name, prepared.Input(),
			agent.WithCollector(event.Multi{h.collector, stream}),
			agent.WithRunID(mapper.RunID()),
		)
		done <- res
	}()

	var eventCount int
	var lastError error
	for ev := range stream.Events() {
		if lastError != nil {
			continue
		}
		eventCount++
		log.Debug("sending SSE event",
			"event_type", ev.Type(),
			"event_num", eventCount,
		)
		if err := writeSSE(w, flusher, ev); err != nil {
			log.Error("failed to write SSE event", "error", err, "event_type", ev.Type())
			lastError = err
		}
	}

	res := <-done
	if h.transcripts != nil {
		if _, err := h.transcripts.Save(context.WithoutCancel(ctx), res); err != nil {
			log.Warn("failed to save transcript", "error", err)
		}
	}

	duration := time.Since(start)
	if lastError != nil {
		log.Error("request failed",
			"duration_ms", duration.Milliseconds(),
			"events_sent", eventCount,
			"error", lastError,
		)
		return
	}
	log.Info("request completed",
		"duration_ms", duration.Milliseconds(),
		"events_sent", eventCount,
		"status", res.Status,
	)
}

// writeSSE writes an AG-UI event in SSE format.
func writeSSE(w http.ResponseWriter, flusher http.Flusher, ev aguievents.Event) error {
	data, err := ev.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to serialize event: %w", err)
	}

	// event: TYPE\ndata: {json}\n\n
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type(), string(data)); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	flusher.Flush()
	return nil
}

// RunsHandler serves stored run records.
type RunsHandler struct {
	transcripts *store.Transcripts
}

// NewRunsHandler creates a handler over t.
func NewRunsHandler(t *store.Transcripts) *RunsHandler {
	return &RunsHandler{transcripts: t}
}

// List handles GET /api/runs.
func (h *RunsHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.transcripts.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"runs": ids})
}

// Get handles GET /api/runs/{id}. With ?format=agui the transcript is
// returned as AG-UI messages.
func (h *RunsHandler) Get(w http.ResponseWriter, r *http.Request) {
	rec, err := h.transcripts.Load(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if r.URL.Query().Get("format") == "agui" {
		writeJSON(w, map[string]any{
			"runId":    rec.RunID,
			"messages": agui.FromTranscript(rec.Messages.Messages()),
		})
		return
	}
	writeJSON(w, rec)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// corsMiddleware adds CORS headers for cross-origin frontend requests.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// healthHandler returns a simple health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// newMux routes the server's endpoints.
func newMux(agents *AgentHandler, runs *RunsHandler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/api/agent", corsMiddleware(agents))
	mux.HandleFunc("GET /api/runs", runs.List)
	mux.HandleFunc("GET /api/runs/{id}", runs.Get)
	mux.HandleFunc("/health", healthHandler)
	return mux
}
