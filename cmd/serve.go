package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evepupil/onaho-crawler/internal/api"
)

// newServeCmd creates the 'serve' subcommand: the read-only status API.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve task status and metrics over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			server := api.NewServer(a.Tasks, a.Logger)
			return server.ListenAndServe(ctx, a.Cfg.Server.Port)
		},
	}
}
