// Package blockchain implements the blockchain bounded context: per-chain
// gas prices read over JSON-RPC.
package blockchain

import (
	"context"
	"sort"

	"github.com/fd1az/optimal-input-radar/business/blockchain/app"
	blockchainDI "github.com/fd1az/optimal-input-radar/business/blockchain/di"
	"github.com/fd1az/optimal-input-radar/business/blockchain/infra/ethereum"
	"github.com/fd1az/optimal-input-radar/internal/di"
	"github.com/fd1az/optimal-input-radar/internal/logger"
	"github.com/fd1az/optimal-input-radar/internal/monolith"
)

// Module implements the blockchain bounded context.
type Module struct{}

// RegisterServices registers all blockchain services with the DI container.
func (m *Module) RegisterServices(c di.Container) error {
	// One oracle per chain flagged with gas_oracle (private)
	di.RegisterToken(c, blockchainDI.GasOracles, func(sr di.ServiceRegistry) []app.GasOracle {
		mono := sr.Get("monolith").(monolith.Monolith)
		log := sr.Get("logger").(logger.LoggerInterface)

		chains := make([]string, 0, len(mono.Config().Chains))
		for key, cc := range mono.Config().Chains {
			if cc.GasOracle {
				chains = append(chains, key)
			}
		}
		sort.Strings(chains)

		oracles := make([]app.GasOracle, 0, len(chains))
		for _, chain := range chains {
			client, err := mono.EthClient(chain)
			if err != nil {
				log.Warn(context.Background(), "gas oracle disabled", "chain", chain, "error", err)
				continue
			}
			oracle, err := ethereum.NewGasOracle(ethereum.DefaultGasOracleConfig(chain), client, log)
			if err != nil {
				panic("failed to create gas oracle: " + err.Error())
			}
			oracles = append(oracles, oracle)
		}
		return oracles
	})

	// Register BlockchainService (public - exposed to other modules)
	di.RegisterToken(c, blockchainDI.BlockchainService, func(sr di.ServiceRegistry) *app.BlockchainService {
		return app.NewBlockchainService(blockchainDI.GetGasOracles(sr)...)
	})

	return nil
}

// Startup wires RPC health checks for every chain with a gas oracle.
func (m *Module) Startup(ctx context.Context, mono monolith.Monolith) error {
	log := mono.Logger()
	svc := blockchainDI.GetBlockchainService(mono.Services())

	for _, chain := range svc.Chains() {
		chain := chain
		mono.Mux().RegisterCheck("rpc:"+chain, func(ctx context.Context) (bool, string) {
			return svc.Check(ctx, chain)
		})
	}

	log.Info(ctx, "blockchain module started", "gas_oracles", len(svc.Chains()))
	return nil
}
