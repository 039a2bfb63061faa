package category

import (
	"github.com/smallbiznis/pistache/internal/category/repository"
	"github.com/smallbiznis/pistache/internal/category/service"
	"go.uber.org/fx"
)

var Module = fx.Module("category.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
