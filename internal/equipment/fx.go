package equipment

import (
	"github.com/smallbiznis/netbill/internal/equipment/repository"
	"github.com/smallbiznis/netbill/internal/equipment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("equipment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
