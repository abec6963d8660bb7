// Package main is the entry point for the Optimal Input Radar.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/fd1az/optimal-input-radar/business/blockchain"
	"github.com/fd1az/optimal-input-radar/business/optimizer"
	optimizerApp "github.com/fd1az/optimal-input-radar/business/optimizer/app"
	optimizerDI "github.com/fd1az/optimal-input-radar/business/optimizer/di"
	"github.com/fd1az/optimal-input-radar/business/quoting"
	"github.com/fd1az/optimal-input-radar/internal/apm"
	"github.com/fd1az/optimal-input-radar/internal/config"
	"github.com/fd1az/optimal-input-radar/internal/health"
	"github.com/fd1az/optimal-input-radar/internal/logger"
	"github.com/fd1az/optimal-input-radar/internal/metrics"
	"github.com/fd1az/optimal-input-radar/internal/monolith"
	"github.com/fd1az/optimal-input-radar/pkg/ui"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Parse flags
	configPath := flag.String("config", "", "Path to configuration file")
	cliMode := flag.Bool("cli", false, "Run in CLI mode with logs (no TUI)")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("optimal-input-radar %s (commit: %s, built: %s)\n", version, commit, buildDate)
		os.Exit(0)
	}

	// TUI is the default, CLI is for debugging
	tuiMode := !*cliMode

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath, tuiMode); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string, tuiMode bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Set TUI mode in config so modules pick their reporter
	cfg.App.TUIMode = tuiMode

	log := newLogger(cfg, tuiMode)
	log.Info(ctx, "starting optimal input radar",
		"version", version,
		"environment", cfg.App.Environment,
		"surfaces", len(cfg.Surfaces),
	)

	traceProvider, err := setupTelemetry(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer traceProvider.Stop()

	// One server for health, metrics, the control API and the feed
	server := health.NewServer(cfg.HTTP.Port, version)
	server.Handle("GET /metrics", metrics.Handler())
	serveErr, err := server.Start()
	if err != nil {
		return err
	}
	log.Info(ctx, "http server started", "port", cfg.HTTP.Port)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Stop(shutdownCtx)
	}()

	mono := monolith.New(cfg, log, server)
	defer mono.Close()

	// Define modules in dependency order
	modules := []monolith.Module{
		&blockchain.Module{}, // gas prices for the aggregator
		&quoting.Module{},    // depends on blockchain for RPC clients
		&optimizer.Module{},  // depends on quoting
	}

	if err := mono.RegisterModules(modules...); err != nil {
		return fmt.Errorf("failed to register modules: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case err, ok := <-serveErr:
			if ok && err != nil {
				return fmt.Errorf("http server: %w", err)
			}
		case <-ctx.Done():
		}
		return nil
	})

	start := func() (*optimizerApp.Radar, error) {
		if err := mono.StartModules(ctx, modules...); err != nil {
			return nil, fmt.Errorf("failed to start modules: %w", err)
		}
		radar := optimizerDI.GetRadar(mono.Services())
		radar.Start(ctx)
		return radar, nil
	}
	shutdown := func(radar *optimizerApp.Radar) {
		radar.Stop()
		optimizerDI.GetFeed(mono.Services()).Close()
		if !tuiMode {
			optimizerDI.GetConsole(mono.Services()).Stop()
		}
	}

	if tuiMode {
		g.Go(func() error {
			return runTUI(ctx, cancel, start, shutdown)
		})
	} else {
		g.Go(func() error {
			return runCLI(ctx, start, shutdown, log)
		})
	}

	return g.Wait()
}

func newLogger(cfg *config.Config, tuiMode bool) *logger.Logger {
	var out io.Writer = os.Stderr
	switch {
	case cfg.App.LogFile != "":
		out = &lumberjack.Logger{
			Filename:   cfg.App.LogFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     14, // days
		}
	case tuiMode:
		// stderr would corrupt the TUI
		out = io.Discard
	}
	return logger.New(out, logger.ParseLevel(cfg.App.LogLevel), cfg.App.Name, nil)
}

func setupTelemetry(ctx context.Context, cfg *config.Config, log *logger.Logger) (apm.TraceProvider, error) {
	opts := []metrics.OptionFn{metrics.WithServiceName(cfg.Telemetry.ServiceName), metrics.WithPrometheus()}
	if cfg.Telemetry.Enabled && cfg.Telemetry.OTLPEndpoint != "" {
		opts = append(opts, metrics.WithProviderConfig(metrics.NewOtelCollectorConfig(
			cfg.Telemetry.OTLPEndpoint, nil, metrics.InsecureOtel)))
	}
	if _, err := metrics.NewMetricProvider(opts...); err != nil {
		return nil, fmt.Errorf("failed to init metrics: %w", err)
	}

	provider := apm.EmptyProvider
	if cfg.Telemetry.Enabled {
		provider = apm.Provider(cfg.Telemetry.Exporter)
	}
	tp, err := apm.NewTraceProvider(log, apm.Config{
		ServiceName: cfg.Telemetry.ServiceName,
		Provider:    provider,
		Endpoint:    cfg.Telemetry.OTLPEndpoint,
		Headers:     cfg.Telemetry.OTLPHeaders,
		SampleRate:  cfg.Telemetry.SampleRate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init tracing: %w", err)
	}
	log.Info(ctx, "telemetry initialized", "enabled", cfg.Telemetry.Enabled, "exporter", provider)
	return tp, nil
}

func runCLI(ctx context.Context, start func() (*optimizerApp.Radar, error), shutdown func(*optimizerApp.Radar), log *logger.Logger) error {
	radar, err := start()
	if err != nil {
		return err
	}
	log.Info(ctx, "all modules started, scanning")

	// Wait for shutdown
	<-ctx.Done()

	log.Info(context.Background(), "shutting down")
	shutdown(radar)
	return nil
}

func runTUI(ctx context.Context, cancel context.CancelFunc, start func() (*optimizerApp.Radar, error), shutdown func(*optimizerApp.Radar)) error {
	// Channel to receive StartModulesMsg signal
	startSignal := make(chan struct{}, 1)
	ui.OnStartModules = func() {
		select {
		case startSignal <- struct{}{}:
		default:
		}
	}

	// Create and start the TUI program IMMEDIATELY (shows welcome screen)
	p := tea.NewProgram(ui.New(), tea.WithAltScreen(), tea.WithContext(ctx))
	ui.Program = p

	errCh := make(chan error, 1)
	go func() {
		// Wait for welcome screen to complete (StartModulesMsg signal)
		select {
		case <-startSignal:
		case <-ctx.Done():
			errCh <- nil
			return
		}

		ui.Send(ui.StartupMsg{Step: "config", Status: "connected"})
		ui.Send(ui.StartupMsg{Step: "modules", Status: "connecting"})

		radar, err := start()
		if err != nil {
			ui.Send(ui.StartupMsg{Step: "modules", Status: "failed", Message: err.Error()})
			ui.Send(ui.ErrorMsg{Error: err})
			errCh <- err
			return
		}
		ui.Send(ui.StartupMsg{Step: "modules", Status: "connected"})
		ui.Send(ui.StartupMsg{Step: "radar", Status: "connected"})
		ui.Send(ui.ReadyMsg{Radar: radar})

		<-ctx.Done()
		shutdown(radar)
		errCh <- nil
	}()

	// Run TUI (blocking) - shows immediately with welcome screen
	_, runErr := p.Run()

	// Quitting the TUI stops the radar too
	cancel()
	err := <-errCh
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("TUI error: %w", runErr)
	}
	return err
}
