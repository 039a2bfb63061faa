package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/pistache/internal/clock"
	"github.com/smallbiznis/pistache/internal/config"
	"github.com/smallbiznis/pistache/internal/migration"
	"github.com/smallbiznis/pistache/internal/observability"
	"github.com/smallbiznis/pistache/internal/server"
	"github.com/smallbiznis/pistache/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		migration.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.SnowflakeNode)
}
