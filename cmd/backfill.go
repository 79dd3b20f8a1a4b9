package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ttutta/dcma/internal/progress"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Generate embeddings for records that are missing them",
	Long: `Scans both catalogs for live records without an embedding, computes the
missing vectors and stores them. Individual failures are logged and
skipped; the run always reports how many records succeeded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		var reporter progress.Reporter
		stats, err := a.search.Backfill(context.Background(), func(processed, total int) {
			if reporter == nil {
				reporter = progress.NewReporter()
				reporter.Start(total)
			}
			reporter.Update(processed, "Generating embeddings")
		})
		if reporter != nil {
			reporter.Finish()
		}
		if err != nil {
			return err
		}

		fmt.Printf("Backfill complete: %d processed, %d succeeded, %d failed\n",
			stats.Processed, stats.Succeeded, stats.Failed)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(backfillCmd)
}
