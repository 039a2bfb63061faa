package systemlog

import (
	"github.com/smallbiznis/pistache/internal/systemlog/repository"
	"github.com/smallbiznis/pistache/internal/systemlog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("systemlog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
