package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "github.com/matburt/meeting-notes-handler/internal/adapters/driving/mcp"
)

var mcpHTTPAddr string

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve series and diff tools over the Model Context Protocol",
	Long: `Runs an MCP server exposing the tracked series, occurrence diffs
and cache statistics to AI assistants. Speaks stdio by default;
--http serves the streamable HTTP transport instead.`,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpHTTPAddr, "http", "", "serve over HTTP on this address instead of stdio")
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, _ []string) error {
	server, err := mcpserver.NewServer(&mcpserver.Ports{
		Resolver: resolver,
		Cache:    sigCache,
		Notes:    notesStore,
	}, diffEngine())
	if err != nil {
		return fmt.Errorf("mcp server: %w", err)
	}

	if mcpHTTPAddr != "" {
		cmd.Printf("MCP server listening on %s\n", mcpHTTPAddr)
		return server.RunHTTP(cmd.Context(), mcpHTTPAddr)
	}
	return server.Run(cmd.Context())
}
