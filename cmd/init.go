package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ttutta/dcma/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize dcma configuration with an interactive wizard",
	Long:  `Runs an interactive wizard to configure dcma and generates a .dcma.yml file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := config.RunWizard()
		return err
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
