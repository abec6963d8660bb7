package app

import (
	"context"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/optimal-input-radar/business/optimizer/domain"
	quoting "github.com/fd1az/optimal-input-radar/business/quoting/domain"
	"github.com/fd1az/optimal-input-radar/internal/asset"
)

// DefaultSettleDelay follows every aggregator quote.
const DefaultSettleDelay = time.Second

// NewRoundTrip composes the two legs of rt into a profit function. Legs run
// sequentially; a non-positive leg output yields -Inf without further calls.
// Aggregator legs are followed by settle, waited out cooperatively.
func NewRoundTrip(oracle QuoteOracle, rt domain.RoundTrip, settle time.Duration) ProfitFunc {
	return func(ctx context.Context, x float64) (float64, error) {
		in, err := asset.RoundFloat(x, rt.Out.Venue.Precision(rt.Out.In))
		if err != nil || !in.IsPositive() {
			return math.Inf(-1), nil
		}

		mid, err := quoteLeg(ctx, oracle, rt.Out, in, settle)
		if err != nil {
			return 0, err
		}
		if !mid.IsPositive() {
			return math.Inf(-1), nil
		}

		mid = asset.Round(mid, rt.Back.Venue.Precision(rt.Back.In))
		final, err := quoteLeg(ctx, oracle, rt.Back, mid, settle)
		if err != nil {
			return 0, err
		}
		if !final.IsPositive() {
			return math.Inf(-1), nil
		}

		profit, _ := final.Sub(in).Float64()
		return profit, nil
	}
}

func quoteLeg(ctx context.Context, oracle QuoteOracle, leg domain.Leg, amount decimal.Decimal, settle time.Duration) (decimal.Decimal, error) {
	out, err := oracle.Quote(ctx, leg.Venue, leg.In, leg.Out, amount)
	if err != nil {
		return decimal.Zero, err
	}
	if leg.Venue.Kind == quoting.KindAggregator && settle > 0 {
		if err := sleep(ctx, settle); err != nil {
			return decimal.Zero, err
		}
	}
	return out, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
