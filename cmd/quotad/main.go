package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/quotahub/quotad/internal/clock"
	"github.com/quotahub/quotad/internal/config"
	"github.com/quotahub/quotad/internal/keylock"
	"github.com/quotahub/quotad/internal/logger"
	"github.com/quotahub/quotad/internal/metrics"
	"github.com/quotahub/quotad/internal/migration"
	"github.com/quotahub/quotad/internal/server"
	"github.com/quotahub/quotad/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,
		keylock.Module,
		metrics.Module,
		migration.Module,
		server.Module,
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
