// Package app contains the quoting service and its ports.
package app

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"

	"github.com/fd1az/optimal-input-radar/business/quoting/domain"
	"github.com/fd1az/optimal-input-radar/internal/asset"
)

// Quoter returns how much tokenOut a venue gives for amountIn of tokenIn.
// Amounts are in human units. Implementations bind every transport call to
// ctx so cancellation aborts in-flight requests.
type Quoter interface {
	Quote(ctx context.Context, venue domain.Venue, tokenIn, tokenOut *asset.Asset, amountIn decimal.Decimal) (decimal.Decimal, error)
}

// GasPricer supplies a chain's current gas price to venues that take one.
type GasPricer interface {
	GasPriceWei(ctx context.Context, chain string) (*big.Int, error)
}
