package app

import (
	"context"
	"math"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/fd1az/optimal-input-radar/business/optimizer/domain"
	quoting "github.com/fd1az/optimal-input-radar/business/quoting/domain"
	"github.com/fd1az/optimal-input-radar/internal/asset"
)

var (
	usdt = asset.NewAsset(asset.ChainIDBSC, common.HexToAddress("0x55d398326f99059fF775485246999027B3197955"), "USDT", 18)
	usdc = asset.NewAsset(asset.ChainIDBSC, common.HexToAddress("0x8AC76a51cc950d9822D68b83fE1Ad97B32Cd580d"), "USDC", 18)
	usdc6 = asset.NewAsset(asset.ChainIDEthereum, common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"), "USDC", 6)
	wbnb = asset.NewAsset(asset.ChainIDBSC, common.HexToAddress("0xbb4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"), "WBNB", 18)

	pancake = quoting.Venue{Kind: quoting.KindV2, Address: common.HexToAddress("0x10ED43C718714eb63d5aA57B78B54704E256024E"), Label: "pancake"}
	uniV3   = quoting.Venue{Kind: quoting.KindV3, Address: common.HexToAddress("0x78D78E420Da98ad378D7799bE8f4AF69033EB077"), Fee: 100, Label: "uni"}
	ocean   = quoting.Venue{Kind: quoting.KindAggregator, BaseURL: "http://127.0.0.1:1/v3", Chain: "bsc", MaxPrecision: 6, Label: "ocean"}
)

type quoteCall struct {
	venue  string
	in     string
	out    string
	amount decimal.Decimal
}

// fakeOracle answers with quote and records every call.
type fakeOracle struct {
	quote func(ctx context.Context, venue quoting.Venue, in *asset.Asset, amount decimal.Decimal) (decimal.Decimal, error)

	mu    sync.Mutex
	calls []quoteCall
}

func (f *fakeOracle) Quote(ctx context.Context, venue quoting.Venue, in, out *asset.Asset, amount decimal.Decimal) (decimal.Decimal, error) {
	f.mu.Lock()
	f.calls = append(f.calls, quoteCall{venue: venue.Label, in: in.Symbol(), out: out.Symbol(), amount: amount})
	f.mu.Unlock()
	return f.quote(ctx, venue, in, amount)
}

func (f *fakeOracle) Calls() []quoteCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]quoteCall(nil), f.calls...)
}

// curveOracle makes the round trip profit follow curve: the first leg is
// 1:1 and the second leg adds curve(x).
func curveOracle(curve func(float64) float64) *fakeOracle {
	return &fakeOracle{quote: func(ctx context.Context, venue quoting.Venue, in *asset.Asset, amount decimal.Decimal) (decimal.Decimal, error) {
		if err := ctx.Err(); err != nil {
			return decimal.Zero, err
		}
		if in.Equals(usdt) {
			return amount, nil
		}
		x, _ := amount.Float64()
		return amount.Add(decimal.NewFromFloat(curve(x))), nil
	}}
}

// recorder collects reported events.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) Report(ev Event) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func (r *recorder) Count(t EventType) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func pairPlan(key string) domain.Plan {
	rng := domain.ScanRange{Min: 100, Max: 1000}
	return domain.Plan{
		Key:       key,
		Name:      "USDT/USDC",
		Chain:     "bsc",
		Token0:    usdt,
		Token1:    usdc,
		VenueA:    pancake,
		VenueB:    uniV3,
		Direction: domain.Forward,
		Base:      domain.BaseToken0,
		Range:     &rng,
		Mode:      domain.ModeThorough,
		Params:    domain.ThoroughParams(),
	}
}

// peakAt250 peaks at x=250 with profit 7.5.
func peakAt250(x float64) float64 {
	return 0.1*x - 0.0002*x*x - 5
}

func negInf() float64 { return math.Inf(-1) }
