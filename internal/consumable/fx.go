package consumable

import (
	"github.com/quotahub/quotad/internal/consumable/repository"
	"github.com/quotahub/quotad/internal/consumable/service"
	"go.uber.org/fx"
)

var Module = fx.Module("consumable.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
