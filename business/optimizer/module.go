// Package optimizer implements the optimizer bounded context: one scanning
// surface per configured pair, each searching for the most profitable
// round-trip input size.
package optimizer

import (
	"context"
	"time"

	"github.com/fd1az/optimal-input-radar/business/optimizer/app"
	optimizerDI "github.com/fd1az/optimal-input-radar/business/optimizer/di"
	"github.com/fd1az/optimal-input-radar/business/optimizer/infra"
	quotingDI "github.com/fd1az/optimal-input-radar/business/quoting/di"
	"github.com/fd1az/optimal-input-radar/internal/config"
	"github.com/fd1az/optimal-input-radar/internal/di"
	"github.com/fd1az/optimal-input-radar/internal/logger"
	"github.com/fd1az/optimal-input-radar/internal/monolith"
	"github.com/fd1az/optimal-input-radar/internal/wsconn"
)

// StallLimit is how long a scan may run before the health check fails.
const StallLimit = 10 * time.Minute

// Module implements the optimizer bounded context.
type Module struct{}

// RegisterServices registers all optimizer services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// Scan metrics (private)
	di.RegisterToken(c, optimizerDI.Metrics, func(sr di.ServiceRegistry) *app.Metrics {
		metrics, err := app.NewMetrics()
		if err != nil {
			panic("failed to create optimizer metrics: " + err.Error())
		}
		return metrics
	})

	// Event feed for WebSocket clients (public)
	di.RegisterToken(c, optimizerDI.Feed, func(sr di.ServiceRegistry) *wsconn.Hub {
		return wsconn.NewHub(wsconn.DefaultConfig())
	})

	// CLI output (private)
	di.RegisterToken(c, optimizerDI.Console, func(sr di.ServiceRegistry) *infra.ConsoleReporter {
		return infra.NewConsoleReporter(nil)
	})

	// Reporters: feed plus TUI or console (private)
	di.RegisterToken(c, optimizerDI.Reporter, func(sr di.ServiceRegistry) app.Reporter {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		reporters := app.Reporters{infra.NewFeedReporter(optimizerDI.GetFeed(sr), log)}
		if cfg.App.TUIMode {
			reporters = append(reporters, infra.NewTUIReporter(nil))
		} else {
			reporters = append(reporters, optimizerDI.GetConsole(sr))
		}
		return reporters
	})

	// Register Radar (public - exposed to main)
	di.RegisterToken(c, optimizerDI.Radar, func(sr di.ServiceRegistry) *app.Radar {
		mono := sr.Get("monolith").(monolith.Monolith)
		cfg := mono.Config()

		plans, err := BuildPlans(cfg, mono.AssetRegistry())
		if err != nil {
			panic("failed to build surfaces: " + err.Error())
		}

		opts := app.SurfaceOptions{
			Oracle:      quotingDI.GetQuotingService(sr),
			SettleDelay: cfg.Aggregator.SettleDelay,
			Reporter:    optimizerDI.GetReporter(sr),
			Logger:      mono.Logger(),
			Metrics:     optimizerDI.GetMetrics(sr),
		}
		surfaces := make([]*app.Surface, 0, len(plans))
		for _, p := range plans {
			surfaces = append(surfaces, app.NewSurface(p, opts))
		}

		radar, err := app.NewRadar(mono.Logger(), surfaces...)
		if err != nil {
			panic("failed to create radar: " + err.Error())
		}
		return radar
	})

	return nil
}

// Startup mounts the control API and the surface health check. Scanning
// starts when main calls Radar.Start.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	radar := optimizerDI.GetRadar(mono.Services())

	mono.Mux().RegisterCheck("surfaces", func(context.Context) (bool, string) {
		return radar.Check(StallLimit)
	})
	infra.NewControlAPI(radar, optimizerDI.GetFeed(mono.Services()), log).Register(mono.Mux())

	if !mono.Config().App.TUIMode {
		optimizerDI.GetConsole(mono.Services()).Start(len(radar.Surfaces()))
	}

	log.Info(ctx, "optimizer module started", "surfaces", len(radar.Surfaces()))
	return nil
}
