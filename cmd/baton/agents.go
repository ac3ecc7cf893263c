package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spetersoncode/baton/agent"
	"github.com/spetersoncode/baton/tool"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the agents in the definitions file and check their configuration",
	Long: `Lists every agent with its tools and handoff rules. Only built-in tools are
known offline, so agents using MCP tools are reported as unresolved rather
than failing.`,
	Args: cobra.NoArgs,
	RunE: runAgents,
}

func runAgents(cmd *cobra.Command, _ []string) error {
	path := agentsFileFlag
	if path == "" {
		path = getEnvOrDefault("BATON_AGENTS_FILE", "agents.yaml")
	}
	reg, err := agent.LoadFile(path)
	if err != nil {
		return err
	}
	return listAgents(cmd, reg, tool.NewRegistry().Add(tool.Builtin()...))
}

func listAgents(cmd *cobra.Command, reg *agent.Registry, tools *tool.Registry) error {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "AGENT\tTOOLS\tHANDOFFS\tSTATUS")

	problems := 0
	for _, name := range reg.Names() {
		def, _ := reg.Get(name)

		toolNames := "(none)"
		if len(def.ToolNames) > 0 {
			toolNames = strings.Join(def.ToolNames, ",")
		}

		var rules []string
		for _, rule := range def.HandoffRules {
			rules = append(rules, fmt.Sprintf("%s(%s)", rule.Target, rule.Trigger))
		}
		handoffs := "-"
		if len(rules) > 0 {
			handoffs = strings.Join(rules, ",")
		}

		status := "ok"
		if err := reg.ValidateReachable(name, tools); err != nil {
			status = err.Error()
			problems++
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", name, toolNames, handoffs, status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if problems > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d agents have unresolved references\n", problems, reg.Len())
	}
	return nil
}
