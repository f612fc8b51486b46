package supportticket

import (
	"github.com/smallbiznis/netbill/internal/supportticket/repository"
	"github.com/smallbiznis/netbill/internal/supportticket/service"
	"go.uber.org/fx"
)

var Module = fx.Module("supportticket.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
