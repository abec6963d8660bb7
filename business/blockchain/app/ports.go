// Package app contains application services and port definitions for the blockchain context.
package app

import (
	"context"
	"math/big"

	"github.com/fd1az/optimal-input-radar/business/blockchain/domain"
)

// PriceSource is the RPC surface a gas oracle needs. *ethclient.Client
// satisfies it.
type PriceSource interface {
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
}

// GasOracle provides the current gas price of one chain.
type GasOracle interface {
	Chain() string
	GetGasPrice(ctx context.Context) (*domain.GasPrice, error)
}
