// Package cmd implements the dcma command line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ttutta/dcma/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dcma",
	Short: "Versioned domain and convention catalogs for AI agents",
	Long: `DCMA manages two versioned catalogs — domain specifications and project
conventions — with impact analysis and semantic search, exposed to AI
agents over MCP and to everything else over an HTTP JSON API.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultPath, "config file path")
}
