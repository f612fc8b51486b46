package sms

import (
	"strings"

	"github.com/smallbiznis/netbill/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("providers.sms",
	fx.Provide(NewFromConfig),
)

func NewFromConfig(cfg config.Config, log *zap.Logger) Provider {
	if strings.TrimSpace(cfg.SMS.GatewayURL) == "" {
		log.Warn("sms gateway not configured, sms notifications disabled")
		return &NoOpProvider{}
	}
	return NewGateway(Config{
		URL:     cfg.SMS.GatewayURL,
		APIKey:  cfg.SMS.APIKey,
		Sender:  cfg.SMS.Sender,
		Timeout: cfg.SMS.Timeout,
	})
}
