package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/smallbiznis/netbill/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
)

// DaemonModule adds the cron trigger on top of Module.
var DaemonModule = fx.Module("scheduler.daemon",
	fx.Invoke(NewCron),
)

// NewCron registers the billing and payment slots on a UTC cron and ties
// it to the fx lifecycle.
func NewCron(lc fx.Lifecycle, cfg config.Config, schedCfg Config, sched *Scheduler, log *zap.Logger) error {
	if !cfg.Scheduler.Enabled {
		log.Info("scheduler disabled")
		return nil
	}

	c := cron.New(cron.WithLocation(time.UTC))
	ctx, cancel := context.WithCancel(context.Background())

	if _, err := c.AddFunc(schedCfg.BillingSchedule, func() {
		if err := sched.RunBillingSlot(ctx); err != nil {
			log.Warn("billing slot failed", zap.Error(err))
		}
	}); err != nil {
		cancel()
		return err
	}
	if _, err := c.AddFunc(schedCfg.PaymentSweepSchedule, func() {
		if err := sched.RunPaymentSlot(ctx); err != nil {
			log.Warn("payment slot failed", zap.Error(err))
		}
	}); err != nil {
		cancel()
		return err
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			c.Start()
			log.Info("scheduler started",
				zap.String("billing_schedule", schedCfg.BillingSchedule),
				zap.String("payment_schedule", schedCfg.PaymentSweepSchedule),
			)
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			done := c.Stop()
			select {
			case <-done.Done():
			case <-stopCtx.Done():
			}
			return nil
		},
	})
	return nil
}
