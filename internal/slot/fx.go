package slot

import (
	"github.com/quotahub/quotad/internal/slot/repository"
	"github.com/quotahub/quotad/internal/slot/service"
	"go.uber.org/fx"
)

var Module = fx.Module("slot.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
