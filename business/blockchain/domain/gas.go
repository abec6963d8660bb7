// Package domain contains the core domain types for the blockchain context.
package domain

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// GasPrice is a chain's suggested gas price at a point in time.
type GasPrice struct {
	Chain     string
	Wei       *big.Int
	Timestamp time.Time
}

// NewGasPrice creates a GasPrice from wei.
func NewGasPrice(chain string, wei *big.Int, at time.Time) *GasPrice {
	return &GasPrice{
		Chain:     chain,
		Wei:       new(big.Int).Set(wei),
		Timestamp: at,
	}
}

// Gwei returns the price in gwei.
func (g *GasPrice) Gwei() float64 {
	f, _ := decimal.NewFromBigInt(g.Wei, -9).Float64()
	return f
}

// Capped returns a copy limited to max. A nil max leaves the price as is.
func (g *GasPrice) Capped(max *big.Int) *GasPrice {
	if max == nil || g.Wei.Cmp(max) <= 0 {
		return g
	}
	return NewGasPrice(g.Chain, max, g.Timestamp)
}
