// Package ethereum implements blockchain ports on top of go-ethereum RPC clients.
package ethereum

import (
	"context"
	"math/big"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/optimal-input-radar/business/blockchain/app"
	"github.com/fd1az/optimal-input-radar/business/blockchain/domain"
	"github.com/fd1az/optimal-input-radar/internal/apperror"
	"github.com/fd1az/optimal-input-radar/internal/cache"
	"github.com/fd1az/optimal-input-radar/internal/circuitbreaker"
	"github.com/fd1az/optimal-input-radar/internal/logger"
)

const (
	tracerName = "github.com/fd1az/optimal-input-radar/business/blockchain/infra/ethereum"
	meterName  = "github.com/fd1az/optimal-input-radar/business/blockchain/infra/ethereum"
)

// GasOracleConfig holds configuration for the gas oracle.
type GasOracleConfig struct {
	Chain       string
	CacheTTL    time.Duration // How long to cache gas prices
	MaxGasPrice *big.Int      // Maximum acceptable gas price (safety)
	Breaker     circuitbreaker.Config
}

// DefaultGasOracleConfig returns sensible defaults.
func DefaultGasOracleConfig(chain string) GasOracleConfig {
	maxGas := new(big.Int)
	maxGas.SetString("500000000000", 10) // 500 gwei max

	return GasOracleConfig{
		Chain:       chain,
		CacheTTL:    12 * time.Second, // ~1 block
		MaxGasPrice: maxGas,
		Breaker:     circuitbreaker.DefaultConfig("gas-oracle-" + chain),
	}
}

// gasOracleMetrics holds OTEL metric instruments.
type gasOracleMetrics struct {
	gasPriceFetches metric.Int64Counter
	gasPriceGwei    metric.Float64Gauge
	cacheHits       metric.Int64Counter
}

// GasOracle serves a chain's gas price with caching and a circuit breaker.
type GasOracle struct {
	config GasOracleConfig
	logger logger.LoggerInterface
	source app.PriceSource

	priceCache *cache.Cache[string, *domain.GasPrice]
	cb         *circuitbreaker.CircuitBreaker[*big.Int]
	now        func() time.Time

	tracer  trace.Tracer
	metrics *gasOracleMetrics
	attrs   metric.MeasurementOption
}

var _ app.GasOracle = (*GasOracle)(nil)

// NewGasOracle creates a new gas oracle instance.
func NewGasOracle(cfg GasOracleConfig, source app.PriceSource, log logger.LoggerInterface) (*GasOracle, error) {
	g := &GasOracle{
		config:     cfg,
		logger:     log,
		source:     source,
		priceCache: cache.New[string, *domain.GasPrice](0),
		cb:         circuitbreaker.New[*big.Int](cfg.Breaker),
		now:        time.Now,
		tracer:     otel.Tracer(tracerName),
		attrs:      metric.WithAttributes(attribute.String("chain", cfg.Chain)),
	}

	if err := g.initMetrics(); err != nil {
		return nil, err
	}

	return g, nil
}

func (g *GasOracle) initMetrics() error {
	meter := otel.Meter(meterName)
	var err error

	g.metrics = &gasOracleMetrics{}

	g.metrics.gasPriceFetches, err = meter.Int64Counter(
		"gas_price_fetches_total",
		metric.WithDescription("Total gas price fetch attempts"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return err
	}

	g.metrics.gasPriceGwei, err = meter.Float64Gauge(
		"gas_price_gwei",
		metric.WithDescription("Current gas price in gwei"),
		metric.WithUnit("gwei"),
	)
	if err != nil {
		return err
	}

	g.metrics.cacheHits, err = meter.Int64Counter(
		"gas_cache_hits_total",
		metric.WithDescription("Gas price cache hits"),
		metric.WithUnit("{hit}"),
	)
	return err
}

// Chain returns the chain key this oracle serves.
func (g *GasOracle) Chain() string {
	return g.config.Chain
}

// GetGasPrice retrieves the current gas price with caching.
func (g *GasOracle) GetGasPrice(ctx context.Context) (*domain.GasPrice, error) {
	ctx, span := g.tracer.Start(ctx, "gas.get_price",
		trace.WithAttributes(attribute.String("chain", g.config.Chain)))
	defer span.End()

	if price, found := g.priceCache.Get(ctx, g.config.Chain); found {
		g.metrics.cacheHits.Add(ctx, 1, g.attrs)
		span.AddEvent("cache_hit")
		return price, nil
	}

	g.metrics.gasPriceFetches.Add(ctx, 1, g.attrs)

	wei, err := g.cb.Execute(func() (*big.Int, error) {
		return g.source.SuggestGasPrice(ctx)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		code := apperror.CodeEthereumRPCError
		if err == circuitbreaker.ErrOpenState || err == circuitbreaker.ErrTooManyRequests {
			code = apperror.CodeCircuitOpen
		}
		return nil, apperror.New(code,
			apperror.WithCause(err),
			apperror.WithContext("failed to get gas price on "+g.config.Chain))
	}

	price := domain.NewGasPrice(g.config.Chain, wei, g.now())
	if capped := price.Capped(g.config.MaxGasPrice); capped != price {
		g.logger.Warn(ctx, "gas price exceeds max", "chain", g.config.Chain, "wei", wei.String())
		price = capped
	}

	g.priceCache.Set(ctx, g.config.Chain, price, g.config.CacheTTL)
	g.metrics.gasPriceGwei.Record(ctx, price.Gwei(), g.attrs)

	span.SetAttributes(attribute.Float64("gwei", price.Gwei()))
	span.SetStatus(codes.Ok, "fetched")

	return price, nil
}

// Close releases the cache.
func (g *GasOracle) Close() error {
	g.priceCache.Close()
	return nil
}
