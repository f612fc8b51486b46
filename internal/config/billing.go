package config

import (
	"errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// BillingConfig holds the tunable billing policy. It is hot-reloaded from billing.yml.
type BillingConfig struct {
	ApprovalInvoiceDueDays int           `mapstructure:"approvalInvoiceDueDays"`
	NotifierTimeout        time.Duration `mapstructure:"notifierTimeout"`
	AllocatorConcurrency   int           `mapstructure:"allocatorConcurrency"`
	CustomerLockTTL        time.Duration `mapstructure:"customerLockTTL"`
	StatusCacheTTL         time.Duration `mapstructure:"statusCacheTTL"`
}

func DefaultBillingConfig() BillingConfig {
	return BillingConfig{
		ApprovalInvoiceDueDays: 30,
		NotifierTimeout:        15 * time.Second,
		AllocatorConcurrency:   8,
		CustomerLockTTL:        time.Minute,
		StatusCacheTTL:         5 * time.Minute,
	}
}

type BillingConfigHolder struct {
	current atomic.Value // holds BillingConfig
}

// NewStaticBillingConfigHolder returns a holder that never reloads.
func NewStaticBillingConfigHolder(cfg BillingConfig) *BillingConfigHolder {
	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func NewBillingConfigHolder() (*BillingConfigHolder, error) {
	return newBillingConfigHolder(
		"/var/lib/netbill/config", // Volume-mounted config
		"/etc/netbill",            // System config
		".",                       // Current directory (dev mode)
	)
}

func newBillingConfigHolder(paths ...string) (*BillingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("billing")
	v.SetConfigType("yml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetEnvPrefix("NETBILL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultBillingConfig()
	v.SetDefault("billing.approvalInvoiceDueDays", defaults.ApprovalInvoiceDueDays)
	v.SetDefault("billing.notifierTimeout", defaults.NotifierTimeout)
	v.SetDefault("billing.allocatorConcurrency", defaults.AllocatorConcurrency)
	v.SetDefault("billing.customerLockTTL", defaults.CustomerLockTTL)
	v.SetDefault("billing.statusCacheTTL", defaults.StatusCacheTTL)

	found := true
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		found = false
	}

	cfg, err := decodeBillingConfig(v)
	if err != nil {
		return nil, err
	}
	if err := validateBillingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &BillingConfigHolder{}
	holder.current.Store(cfg)

	if !found {
		return holder, nil
	}

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		log := zap.L().Named("billing.config")
		updated, err := decodeBillingConfig(v)
		if err != nil {
			log.Warn("reload failed", zap.Error(err))
			return
		}
		if err := validateBillingConfig(updated); err != nil {
			log.Warn("invalid config ignored", zap.Error(err))
			return
		}
		holder.current.Store(updated)
		log.Info("reloaded", zap.String("file", e.Name))
	})

	return holder, nil
}

// decodeBillingConfig goes through AllSettings so per-key defaults survive a partial file.
func decodeBillingConfig(v *viper.Viper) (BillingConfig, error) {
	var wrapper struct {
		Billing BillingConfig `mapstructure:"billing"`
	}
	if err := v.Unmarshal(&wrapper); err != nil {
		return BillingConfig{}, err
	}
	return wrapper.Billing, nil
}

func (h *BillingConfigHolder) Get() BillingConfig {
	return h.current.Load().(BillingConfig)
}

func validateBillingConfig(cfg BillingConfig) error {
	if cfg.ApprovalInvoiceDueDays <= 0 {
		return errors.New("billing.approvalInvoiceDueDays must be positive")
	}
	if cfg.NotifierTimeout <= 0 {
		return errors.New("billing.notifierTimeout must be positive")
	}
	if cfg.AllocatorConcurrency <= 0 {
		return errors.New("billing.allocatorConcurrency must be positive")
	}
	if cfg.CustomerLockTTL <= 0 {
		return errors.New("billing.customerLockTTL must be positive")
	}
	return nil
}
