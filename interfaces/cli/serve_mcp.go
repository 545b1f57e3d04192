package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/deckster/chartgen/infrastructure/mcp"
)

// serveMCPOptions holds options for the serve-mcp command.
type serveMCPOptions struct {
	configPath string
	httpAddr   string
}

// newServeMCPCmd creates the serve-mcp command.
func (a *App) newServeMCPCmd() *cobra.Command {
	opts := &serveMCPOptions{}

	cmd := &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the pipeline as an MCP server",
		Long: `Expose chart generation as MCP tools (generate_chart, generate_batch)
so a deck-building agent can request charts as tool calls.

By default the server speaks the stdio transport; pass --http to serve
over HTTP with SSE instead.

Examples:
  chartgen serve-mcp -c config.yaml
  chartgen serve-mcp -c config.yaml --http :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runServeMCP(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to pipeline configuration file")
	cmd.Flags().StringVar(&opts.httpAddr, "http", "", "Serve over HTTP with SSE on this address")

	return cmd
}

// runServeMCP builds the engine and serves until the context ends.
func (a *App) runServeMCP(cmd *cobra.Command, opts *serveMCPOptions) error {
	engine, cleanup, err := a.buildEngine(opts.configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	srv, err := mcp.NewServer(mcp.ServerConfig{
		Name:    "chartgen",
		Version: Version,
		Engine:  engine,
		Instructions: "Call generate_chart with a free-text description (plus optional " +
			"data rows, chart_type, and theme) to receive chart markup or plotting " +
			"code with dataset statistics. Use generate_batch for whole decks.",
	})
	if err != nil {
		return fmt.Errorf("building MCP server: %w", err)
	}

	ctx := cmd.Context()
	if opts.httpAddr != "" {
		fmt.Fprintf(a.stderr, "serving MCP over HTTP on %s\n", opts.httpAddr)
		return srv.ServeHTTP(ctx, opts.httpAddr)
	}
	return srv.ServeStdio(ctx)
}
