package main

import (
	"github.com/smallbiznis/netbill/internal/migration"
	"github.com/smallbiznis/netbill/internal/scheduler"
	"github.com/smallbiznis/netbill/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the cron daemon and the ops HTTP server",
	Long: `Start the billing (00:00 UTC) and payment (01:00 UTC) cron slots plus
the ops server exposing /healthz, /metrics and /ops endpoints.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := []fx.Option{
			coreModules(),
			fx.WithLogger(fxLogger),
			scheduler.DaemonModule,
			server.Module,
		}
		if skip, _ := cmd.Flags().GetBool("no-migrate"); !skip {
			opts = append(opts, migration.Module)
		}
		fx.New(opts...).Run()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
