package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve agents to AG-UI frontends over SSE",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(app)

	agents := NewAgentHandler(app.Runner(), app.Transcripts(), app.collector,
		app.cfg.DefaultAgent, app.cfg.Timeout, app.logger)

	server := &http.Server{
		Addr:         ":" + app.cfg.Port,
		Handler:      newMux(agents, NewRunsHandler(app.Transcripts())),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 0, // SSE needs no write timeout
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		app.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			app.logger.Error("shutdown error", "error", err)
		}
	}()

	app.logger.Info("server starting",
		"addr", server.Addr,
		"agents", app.Runner().Agents().Names(),
		"tools", app.Runner().Tools().Len(),
	)
	if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	app.logger.Info("server stopped")
	return nil
}
