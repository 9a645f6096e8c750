// Command rentora runs the API server and the recurrence scheduler in a
// single binary, the default for self-hosted deployments.
package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentora/internal/clock"
	"github.com/smallbiznis/rentora/internal/config"
	"github.com/smallbiznis/rentora/internal/directory"
	"github.com/smallbiznis/rentora/internal/invoice"
	"github.com/smallbiznis/rentora/internal/ledger"
	"github.com/smallbiznis/rentora/internal/metrics"
	"github.com/smallbiznis/rentora/internal/migration"
	"github.com/smallbiznis/rentora/internal/scheduler"
	"github.com/smallbiznis/rentora/internal/server"
	"github.com/smallbiznis/rentora/internal/settings"
	"github.com/smallbiznis/rentora/pkg/db"
	"github.com/smallbiznis/rentora/pkg/log"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		config.Module,
		log.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		migration.Module,
		clock.Module,
		metrics.Module,

		directory.Module,
		invoice.Module,
		ledger.Module,
		settings.Module,
		scheduler.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
