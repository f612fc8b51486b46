package status

import (
	"github.com/smallbiznis/netbill/internal/status/repository"
	"github.com/smallbiznis/netbill/internal/status/service"
	"go.uber.org/fx"
)

var Module = fx.Module("status.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
