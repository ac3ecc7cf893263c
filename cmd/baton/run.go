package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/baton/agent"
	"github.com/spetersoncode/baton/transcript"
)

var (
	runArgsFlag    string
	runContextFlag string
	runJSONFlag    bool
)

var runCmd = &cobra.Command{
	Use:   "run [agent] <message>",
	Short: "Run one agent to completion and print its answer",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runAgent,
}

func init() {
	runCmd.Flags().StringVar(&runArgsFlag, "args", "", "Task arguments as a JSON object")
	runCmd.Flags().StringVar(&runContextFlag, "context", "", "Extra context for the system prompt")
	runCmd.Flags().BoolVar(&runJSONFlag, "json", false, "Print the full run result as JSON")
}

func runAgent(cmd *cobra.Command, args []string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(app)

	name, message := app.cfg.DefaultAgent, args[0]
	if len(args) == 2 {
		name, message = args[0], args[1]
	}
	if name == "" {
		return fmt.Errorf("no agent named and BATON_DEFAULT_AGENT is not set")
	}

	in := agent.Input{
		Messages: []transcript.Message{transcript.User{Text: message}},
		Context:  runContextFlag,
	}
	if runArgsFlag != "" {
		if !json.Valid([]byte(runArgsFlag)) {
			return fmt.Errorf("--args is not valid JSON")
		}
		in.Args = json.RawMessage(runArgsFlag)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), app.cfg.Timeout)
	defer cancel()

	res, err := app.Runner().Run(ctx, name, in, app.RunOptions()...)
	if err != nil {
		return err
	}
	if _, err := app.Transcripts().Save(ctx, res); err != nil {
		app.logger.Warn("failed to save transcript", "run_id", res.RunID, "error", err)
	}

	out := cmd.OutOrStdout()
	if runJSONFlag {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	if !res.Succeeded() {
		return fmt.Errorf("run %s ended with status %s: %s", res.RunID, res.Status, res.ErrorText)
	}
	fmt.Fprintln(out, strings.TrimSpace(res.Output))
	return nil
}
