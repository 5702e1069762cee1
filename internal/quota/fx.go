package quota

import (
	"github.com/quotahub/quotad/internal/quota/service"
	"go.uber.org/fx"
)

var Module = fx.Module("quota.service",
	fx.Provide(service.New),
)
