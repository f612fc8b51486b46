package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/billingevent"
	"github.com/smallbiznis/netbill/internal/billingoverview"
	"github.com/smallbiznis/netbill/internal/catalog"
	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/config"
	"github.com/smallbiznis/netbill/internal/connectionrequest"
	"github.com/smallbiznis/netbill/internal/contract"
	"github.com/smallbiznis/netbill/internal/customer"
	"github.com/smallbiznis/netbill/internal/equipment"
	"github.com/smallbiznis/netbill/internal/invoice"
	"github.com/smallbiznis/netbill/internal/lock"
	"github.com/smallbiznis/netbill/internal/migration"
	"github.com/smallbiznis/netbill/internal/notification"
	"github.com/smallbiznis/netbill/internal/observability"
	"github.com/smallbiznis/netbill/internal/payment"
	"github.com/smallbiznis/netbill/internal/providers"
	"github.com/smallbiznis/netbill/internal/scheduler"
	"github.com/smallbiznis/netbill/internal/status"
	"github.com/smallbiznis/netbill/internal/supportticket"
	"github.com/smallbiznis/netbill/pkg/db"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

const commandTimeout = 15 * time.Minute

var rootCmd = &cobra.Command{
	Use:   "netbill",
	Short: "ISP billing and contract lifecycle engine",
	Long: `netbill runs monthly contract billing, allocates customer balances to
open invoices and manages the connection request lifecycle.

Examples:
  netbill serve
  netbill billing run
  netbill payments allocate
  netbill requests approve 1790212345678901234 --start-date 2024-03-01`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().Bool("no-migrate", false, "skip schema migrations on startup")
}

// coreModules wires every domain service without any background trigger.
func coreModules() fx.Option {
	return fx.Options(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		lock.Module,
		billingevent.Module,

		status.Module,
		customer.Module,
		catalog.Module,
		equipment.Module,
		contract.Module,
		invoice.Module,
		payment.Module,
		connectionrequest.Module,
		supportticket.Module,
		billingoverview.Module,

		providers.Module,
		notification.Module,
		scheduler.Module,
	)
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}

func fxLogger(log *zap.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{Logger: log.Named("fx")}
}

// runCommand builds a short-lived app, populates targets and hands control
// to fn between start and stop.
func runCommand(cmd *cobra.Command, fn func(ctx context.Context) error, targets ...interface{}) error {
	opts := []fx.Option{
		coreModules(),
		fx.WithLogger(fxLogger),
		fx.Populate(targets...),
	}
	if skip, _ := cmd.Flags().GetBool("no-migrate"); !skip {
		opts = append(opts, migration.Module)
	}

	app := fx.New(opts...)
	if err := app.Err(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		return err
	}
	runErr := fn(ctx)

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil && runErr == nil {
		return err
	}
	return runErr
}

func parseID(arg string) (snowflake.ID, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return snowflake.ID(id), nil
}
