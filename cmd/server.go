package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ttutta/dcma/internal/conventions"
	"github.com/ttutta/dcma/internal/domains"
	"github.com/ttutta/dcma/internal/impact"
	"github.com/ttutta/dcma/internal/search"
	"github.com/ttutta/dcma/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP API server",
	Long:  `Starts the dcma HTTP server exposing the catalog, impact and search APIs.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		port := a.cfg.Port
		if serverPort > 0 {
			port = serverPort
		}

		srv := server.New(server.Config{
			Port:     port,
			AllowAll: a.cfg.AllowAllOrigins,
		})

		r := srv.Router()
		domains.RegisterRoutes(r, a.domains)
		conventions.RegisterRoutes(r, a.conventions)
		impact.RegisterRoutes(r, a.impact)
		search.RegisterRoutes(r, a.search)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "dcma server v%s starting on port %d\n", Version, port)
		return srv.Start()
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
