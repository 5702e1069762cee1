package feature

import (
	"github.com/quotahub/quotad/internal/feature/repository"
	"github.com/quotahub/quotad/internal/feature/service"
	"go.uber.org/fx"
)

var Module = fx.Module("feature.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
