package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mcpserver "github.com/ttutta/dcma/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing the catalog, impact and search tools to AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		mcpserver.Version = Version

		// Stdout carries the protocol; everything else goes to stderr.
		fmt.Fprintln(os.Stderr, "dcma MCP server started on stdio")

		srv := mcpserver.NewServer(a.domains, a.conventions, a.impact, a.search)
		return srv.Serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
