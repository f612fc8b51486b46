package providers

import (
	"github.com/smallbiznis/netbill/internal/providers/email"
	"github.com/smallbiznis/netbill/internal/providers/sms"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	email.Module,
	sms.Module,
)
