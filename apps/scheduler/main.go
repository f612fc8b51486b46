package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/billingevent"
	"github.com/smallbiznis/netbill/internal/catalog"
	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/config"
	"github.com/smallbiznis/netbill/internal/contract"
	"github.com/smallbiznis/netbill/internal/customer"
	"github.com/smallbiznis/netbill/internal/invoice"
	"github.com/smallbiznis/netbill/internal/lock"
	"github.com/smallbiznis/netbill/internal/notification"
	"github.com/smallbiznis/netbill/internal/observability"
	"github.com/smallbiznis/netbill/internal/providers"
	"github.com/smallbiznis/netbill/internal/scheduler"
	"github.com/smallbiznis/netbill/internal/status"
	"github.com/smallbiznis/netbill/pkg/db"
	"go.uber.org/fx"
)

// Cron-only worker. Migrations and the ops server belong to `netbill serve`.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		lock.Module,
		billingevent.Module,

		// Domain services required by scheduler
		status.Module,
		customer.Module,
		catalog.Module,
		contract.Module,
		invoice.Module,
		providers.Module,
		notification.Module,

		scheduler.Module,
		scheduler.DaemonModule,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
