package main

import (
	"github.com/spf13/cobra"

	"github.com/spetersoncode/baton/mcp"
)

var mcpAgentPrefix string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the tool registry and every agent as MCP tools over stdio",
	Long: `Starts an MCP server on stdin/stdout. Registered tools keep their names;
each agent is exposed as a tool named <prefix><agent> that runs it.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpAgentPrefix, "agent-prefix", "agent_", "Name prefix for agent tools")
}

func runMCP(cmd *cobra.Command, _ []string) error {
	app, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer closeApp(app)

	return mcp.ServeStdio(app.Runner().Tools(),
		mcp.WithName("baton"),
		mcp.WithVersion("1.0.0"),
		mcp.WithAgents(app.Runner(), mcpAgentPrefix),
	)
}
