// Package di contains dependency injection tokens for the blockchain context.
package di

import (
	"github.com/fd1az/optimal-input-radar/business/blockchain/app"
	"github.com/fd1az/optimal-input-radar/internal/di"
)

// Public service tokens - exposed to other modules
var (
	BlockchainService = di.NewToken[*app.BlockchainService]("blockchain.BlockchainService")
)

// Private dependency tokens - internal to blockchain module
var (
	GasOracles = di.NewToken[[]app.GasOracle]("blockchain:gasOracles")
)

// Helper functions for type-safe access
func GetBlockchainService(c di.ServiceRegistry) *app.BlockchainService {
	return di.GetToken(c, BlockchainService)
}

func GetGasOracles(c di.ServiceRegistry) []app.GasOracle {
	return di.GetToken(c, GasOracles)
}
