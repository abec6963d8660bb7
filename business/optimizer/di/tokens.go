// Package di contains dependency injection tokens for the optimizer context.
package di

import (
	"github.com/fd1az/optimal-input-radar/business/optimizer/app"
	"github.com/fd1az/optimal-input-radar/business/optimizer/infra"
	"github.com/fd1az/optimal-input-radar/internal/di"
	"github.com/fd1az/optimal-input-radar/internal/wsconn"
)

// Public service tokens - exposed to other modules
var (
	Radar = di.NewToken[*app.Radar]("optimizer.Radar")
	Feed  = di.NewToken[*wsconn.Hub]("optimizer.Feed")
)

// Private dependency tokens - internal to optimizer module
var (
	Metrics  = di.NewToken[*app.Metrics]("optimizer:metrics")
	Console  = di.NewToken[*infra.ConsoleReporter]("optimizer:console")
	Reporter = di.NewToken[app.Reporter]("optimizer:reporter")
)

// Helper functions for type-safe access
func GetRadar(c di.ServiceRegistry) *app.Radar {
	return di.GetToken(c, Radar)
}

func GetFeed(c di.ServiceRegistry) *wsconn.Hub {
	return di.GetToken(c, Feed)
}

func GetMetrics(c di.ServiceRegistry) *app.Metrics {
	return di.GetToken(c, Metrics)
}

func GetConsole(c di.ServiceRegistry) *infra.ConsoleReporter {
	return di.GetToken(c, Console)
}

func GetReporter(c di.ServiceRegistry) app.Reporter {
	return di.GetToken(c, Reporter)
}
