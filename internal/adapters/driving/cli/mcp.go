package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/lectern/internal/adapters/driving/mcp"
	"github.com/custodia-labs/lectern/internal/core/services"
	"github.com/custodia-labs/lectern/internal/logger"
)

var (
	mcpPort   int
	mcpHTTP   bool
	mcpWarmUp bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
questions about stored documents.

By default, the server communicates over stdio using JSON-RPC.

Use --port or --http to start a streamable HTTP server instead. With --http
and no port, the first free port from 8765 to 8799 is used. The HTTP server
also exposes Prometheus metrics on /metrics.

Examples:
  # Stdio mode (default)
  lectern mcp serve

  # HTTP mode on a fixed port
  lectern mcp serve --port 8080

  # HTTP mode on the first free port
  lectern mcp serve --http

Client configuration:
  {
    "mcpServers": {
      "lectern": {
        "command": "/path/to/lectern",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().BoolVar(&mcpHTTP, "http", false, "Serve over HTTP on the first free port")
	mcpServeCmd.Flags().BoolVar(&mcpWarmUp, "warmup", false, "Load the language model before accepting requests")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	if askService == nil {
		return errNotConfigured("ask")
	}
	if indexService == nil {
		return errNotConfigured("index")
	}

	server, err := mcp.NewServer(&mcp.Ports{
		Ask:      askService,
		Index:    indexService,
		Document: documentService,
	})
	if err != nil {
		return err
	}
	server.SetMetricsHandler(metricsHandler)

	if mcpWarmUp {
		if err := askService.WarmUp(cmd.Context()); err != nil {
			logger.Warn("warm-up failed: %v", err)
		}
	}

	port := mcpPort
	if port == 0 && mcpHTTP {
		port, err = services.FindAvailablePort("localhost", services.DefaultMCPPortStart, services.DefaultMCPPortEnd)
		if err != nil {
			return fmt.Errorf("finding port: %w", err)
		}
	}

	if port > 0 {
		return server.RunHTTP(cmd.Context(), fmt.Sprintf("localhost:%d", port))
	}

	return server.Run(cmd.Context())
}
