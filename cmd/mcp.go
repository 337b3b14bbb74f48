/*
Copyright © 2025 Joseph Goksu josephgoksu@gmail.com
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/josephgoksu/cascade/internal/app"
	mcppresenter "github.com/josephgoksu/cascade/internal/mcp"
	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server for AI tool integration",
	Long: `Start a Model Context Protocol (MCP) server over stdio so AI assistants
can run cascades, request deep dives and read stored sessions.

Tools:
  run_cascade   Create a session and generate its full cascade
  deep_dive     Explore selected effects of a session
  show_session  Show one session, or list all of them

The server will run until the client disconnects.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runMCPServer(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// mcpMarkdownResponse wraps Markdown content in an MCP tool result.
func mcpMarkdownResponse(markdown string) (*mcpsdk.CallToolResultFor[any], error) {
	return &mcpsdk.CallToolResultFor[any]{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: markdown}},
	}, nil
}

// mcpFormattedErrorResponse wraps pre-formatted error text with IsError=true.
// Tool errors belong in the result, not the protocol, so the model can see them.
func mcpFormattedErrorResponse(formattedError string) (*mcpsdk.CallToolResultFor[any], error) {
	return &mcpsdk.CallToolResultFor[any]{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: formattedError}},
		IsError: true,
	}, nil
}

// mcpToolResponse converts a handler result into an MCP tool result.
func mcpToolResponse(result *mcppresenter.ToolResult, err error) (*mcpsdk.CallToolResultFor[any], error) {
	if err != nil {
		return nil, err
	}
	if result.Error != "" {
		return mcpFormattedErrorResponse(mcppresenter.FormatError(result.Error))
	}
	return mcpMarkdownResponse(result.Content)
}

func runMCPServer(ctx context.Context) error {
	// stdout carries JSON-RPC; status output goes to stderr.
	fmt.Fprintln(os.Stderr, "Cascade MCP Server starting...")

	a, _, err := openServingApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()

	server := newMCPServer(a.CascadeApp)
	if err := server.Run(ctx, mcpsdk.NewStdioTransport()); err != nil && ctx.Err() == nil {
		return fmt.Errorf("mcp server: %w", err)
	}
	return nil
}

func newMCPServer(a *app.CascadeApp) *mcpsdk.Server {
	impl := &mcpsdk.Implementation{
		Name:    "cascade-mcp",
		Version: version,
	}
	serverOpts := &mcpsdk.ServerOptions{
		InitializedHandler: func(context.Context, *mcpsdk.ServerSession, *mcpsdk.InitializedParams) {
			fmt.Fprintf(os.Stderr, "✓ MCP connection established\n")
			if viper.GetBool("verbose") {
				fmt.Fprintf(os.Stderr, "[DEBUG] Client initialized\n")
			}
		},
	}
	server := mcpsdk.NewServer(impl, serverOpts)

	runTool := &mcpsdk.Tool{
		Name: "run_cascade",
		Description: `Trace the first, second and third-order effects of adopting catalog concepts, patterns or practices.
Runs three LLM stages (first-order effects, higher-order effects with threshold leaps, strategy synthesis) and stores the result as a session.
At least one of concepts, patterns or practices is required. Use the returned session id with deep_dive.`,
	}
	mcpsdk.AddTool(server, runTool, func(ctx context.Context, _ *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[mcppresenter.RunCascadeParams]) (*mcpsdk.CallToolResultFor[any], error) {
		return mcpToolResponse(mcppresenter.HandleRunCascade(ctx, a, params.Arguments))
	})

	diveTool := &mcpsdk.Tool{
		Name: "deep_dive",
		Description: `Explore selected effects of a stored session.
level=secondary (default) finds hidden risks, cross-connections and an implementation plan.
level=tertiary adds failure modes, runbooks and quantitative projections.
REQUIRED: session_id, node_ids.`,
	}
	mcpsdk.AddTool(server, diveTool, func(ctx context.Context, _ *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[mcppresenter.DeepDiveParams]) (*mcpsdk.CallToolResultFor[any], error) {
		return mcpToolResponse(mcppresenter.HandleDeepDive(ctx, a, params.Arguments))
	})

	showTool := &mcpsdk.Tool{
		Name:        "show_session",
		Description: "Show a stored session with its deep dives as Markdown. Omit session_id to list every session.",
	}
	mcpsdk.AddTool(server, showTool, func(ctx context.Context, _ *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[mcppresenter.ShowSessionParams]) (*mcpsdk.CallToolResultFor[any], error) {
		return mcpToolResponse(mcppresenter.HandleShowSession(ctx, a, params.Arguments))
	})

	return server
}
