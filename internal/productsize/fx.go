package productsize

import (
	"github.com/smallbiznis/pistache/internal/productsize/repository"
	"github.com/smallbiznis/pistache/internal/productsize/service"
	"go.uber.org/fx"
)

var Module = fx.Module("productsize.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
