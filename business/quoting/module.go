// Package quoting implements the quoting bounded context: one uniform
// Quote call over on-chain routers, quoter contracts and the aggregator API.
package quoting

import (
	"context"
	"fmt"
	"math/big"

	"go.opentelemetry.io/otel"

	blockchainDI "github.com/fd1az/optimal-input-radar/business/blockchain/di"
	"github.com/fd1az/optimal-input-radar/business/quoting/app"
	quotingDI "github.com/fd1az/optimal-input-radar/business/quoting/di"
	"github.com/fd1az/optimal-input-radar/business/quoting/domain"
	"github.com/fd1az/optimal-input-radar/business/quoting/infra/onchain"
	"github.com/fd1az/optimal-input-radar/business/quoting/infra/openocean"
	"github.com/fd1az/optimal-input-radar/internal/apperror"
	"github.com/fd1az/optimal-input-radar/internal/config"
	"github.com/fd1az/optimal-input-radar/internal/di"
	"github.com/fd1az/optimal-input-radar/internal/httpclient"
	"github.com/fd1az/optimal-input-radar/internal/logger"
	"github.com/fd1az/optimal-input-radar/internal/monolith"
)

// Module implements the quoting bounded context.
type Module struct{}

// RegisterServices registers all quoting services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// On-chain quoter (private)
	di.RegisterToken(c, quotingDI.OnChainQuoter, func(sr di.ServiceRegistry) *onchain.Quoter {
		mono := sr.Get("monolith").(monolith.Monolith)
		cfg := mono.Config()

		qCfg := onchain.DefaultConfig()
		if cfg.OnChain.CallTimeout > 0 {
			qCfg.CallTimeout = cfg.OnChain.CallTimeout
		}
		if cfg.OnChain.BreakerFailures > 0 {
			qCfg.Breaker.ConsecutiveFailures = cfg.OnChain.BreakerFailures
		}
		if cfg.OnChain.BreakerTimeout > 0 {
			qCfg.Breaker.Timeout = cfg.OnChain.BreakerTimeout
		}

		q, err := onchain.NewQuoter(callerResolver(mono), qCfg, mono.Logger())
		if err != nil {
			panic("failed to create on-chain quoter: " + err.Error())
		}
		return q
	})

	// Aggregator client (private)
	di.RegisterToken(c, quotingDI.AggregatorQuote, func(sr di.ServiceRegistry) *openocean.Client {
		cfg := sr.Get("config").(*config.Config)
		log := sr.Get("logger").(logger.LoggerInterface)

		gas := &chainGasPricer{
			keys: apiNameToChain(cfg),
			svc:  blockchainDI.GetBlockchainService(sr),
		}

		opts := []httpclient.ClientOption{httpclient.WithMeterProvider(otel.GetMeterProvider())}
		if cfg.Aggregator.TraceResponses {
			opts = append(opts, httpclient.WithResponseTracing(otel.Tracer("openocean-http")))
		}

		return openocean.NewClient(openocean.Config{
			Timeout:         cfg.Aggregator.Timeout,
			RateLimitRPM:    cfg.Aggregator.RateLimitRPM,
			DefaultGasPrice: cfg.Aggregator.DefaultGasPriceDecimal().BigInt(),
		}, gas, log, opts...)
	})

	// Register QuotingService (public - exposed to other modules)
	di.RegisterToken(c, quotingDI.QuotingService, func(sr di.ServiceRegistry) *app.QuotingService {
		log := sr.Get("logger").(logger.LoggerInterface)

		svc, err := app.NewQuotingService(log)
		if err != nil {
			panic("failed to create quoting service: " + err.Error())
		}
		svc.Register(quotingDI.GetOnChainQuoter(sr), domain.KindV2, domain.KindV3, domain.KindCV3, domain.KindPCV3)
		svc.Register(quotingDI.GetAggregator(sr), domain.KindAggregator)
		return svc
	})

	return nil
}

// Startup initializes the quoting module.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	quotingDI.GetQuotingService(mono.Services())
	mono.Logger().Info(ctx, "quoting module started")
	return nil
}

// callerResolver maps a token's chain id onto the configured chain's shared
// RPC client.
func callerResolver(mono monolith.Monolith) onchain.CallerResolver {
	return func(chainID uint64) (onchain.ContractCaller, error) {
		for key, cc := range mono.Config().Chains {
			if cc.ChainID != chainID {
				continue
			}
			client, err := mono.EthClient(key)
			if err != nil {
				return nil, err
			}
			return client, nil
		}
		return nil, apperror.New(apperror.CodeChainNotConfigured,
			apperror.WithContext(fmt.Sprintf("chain id %d", chainID)))
	}
}

func apiNameToChain(cfg *config.Config) map[string]string {
	out := make(map[string]string, len(cfg.Chains))
	for key, cc := range cfg.Chains {
		out[cc.APIName] = key
	}
	return out
}

var _ app.GasPricer = (*chainGasPricer)(nil)

// chainGasPricer resolves aggregator chain names to configured chains
// before asking the blockchain context for a price.
type chainGasPricer struct {
	keys map[string]string
	svc  interface {
		GasPriceWei(ctx context.Context, chain string) (*big.Int, error)
	}
}

func (g *chainGasPricer) GasPriceWei(ctx context.Context, apiName string) (*big.Int, error) {
	chain, ok := g.keys[apiName]
	if !ok {
		chain = apiName
	}
	return g.svc.GasPriceWei(ctx, chain)
}
