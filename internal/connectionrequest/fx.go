package connectionrequest

import (
	"github.com/smallbiznis/netbill/internal/connectionrequest/repository"
	"github.com/smallbiznis/netbill/internal/connectionrequest/service"
	"go.uber.org/fx"
)

var Module = fx.Module("connectionrequest.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
