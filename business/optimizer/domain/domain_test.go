package domain

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	quoting "github.com/fd1az/optimal-input-radar/business/quoting/domain"
	"github.com/fd1az/optimal-input-radar/internal/apperror"
	"github.com/fd1az/optimal-input-radar/internal/asset"
)

var (
	weth = asset.NewAsset(asset.ChainIDArbitrum, common.HexToAddress("0x82aF49447D8a07e3bd95BD0d56f35241523fBab1"), "WETH", 18)
	usdc = asset.NewAsset(asset.ChainIDArbitrum, common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"), "USDC", 6)

	venueA = quoting.Venue{Kind: quoting.KindV3, Address: common.HexToAddress("0x61fFE014bA17989E743c5F6cB21bF9697530B21e"), Fee: 500, Label: "A"}
	venueB = quoting.Venue{Kind: quoting.KindV2, Address: common.HexToAddress("0x1b02dA8Cb0d097eB8D57A175b88c7D8b47997506"), Label: "B"}
)

func TestNewScanRange(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		want     ScanRange
		wantErr  bool
	}{
		{name: "valid", min: 1, max: 10, want: ScanRange{Min: 1, Max: 10}},
		{name: "swapped", min: 10, max: 1, want: ScanRange{Min: 1, Max: 10}},
		{name: "zero", min: 0, max: 10, wantErr: true},
		{name: "negative", min: -1, max: 10, wantErr: true},
		{name: "degenerate", min: 5, max: 5, wantErr: true},
		{name: "nan", min: math.NaN(), max: 5, wantErr: true},
		{name: "inf", min: 1, max: math.Inf(1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewScanRange(tt.min, tt.max)
			if tt.wantErr {
				assert.True(t, apperror.HasCode(err, apperror.CodeInvalidScanRange), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Less(t, got.Min, got.Max)
		})
	}
}

func TestScanRange_Points(t *testing.T) {
	pts := ScanRange{Min: 1000, Max: 5000}.Points(8)
	require.Len(t, pts, 9)
	assert.Equal(t, 1000.0, pts[0])
	assert.Equal(t, 1500.0, pts[1])
	assert.Equal(t, 5000.0, pts[8])
}

func TestSearchParams_Presets(t *testing.T) {
	thorough := ParamsFor(ModeThorough)
	assert.Equal(t, 14, thorough.IterationCap)
	assert.False(t, thorough.ExpandBoundary)
	assert.Equal(t, 0.0, thorough.ProfitThreshold)
	require.NoError(t, thorough.Validate())

	fast := ParamsFor(ModeFast)
	assert.Equal(t, 2, fast.IterationCap)
	assert.True(t, fast.ExpandBoundary)
	assert.Equal(t, 3, fast.MaxExpansionDepth)
	assert.Equal(t, 0.1, fast.ProfitThreshold)
	require.NoError(t, fast.Validate())

	bad := fast
	bad.Tolerance = 0
	assert.True(t, apperror.HasCode(bad.Validate(), apperror.CodeInvalidSearch))
}

func TestSearchParams_MaterialMargin(t *testing.T) {
	p := FastParams()
	assert.Equal(t, 0.5, p.MaterialMargin(100))

	p.MaterialImprovementPct = 0.01
	assert.Equal(t, 0.5, p.MaterialMargin(10))
	assert.InDelta(t, 2.0, p.MaterialMargin(-200), 1e-12)
	assert.Equal(t, 0.5, p.MaterialMargin(math.Inf(-1)))
}

func TestPlan_RoundTrip(t *testing.T) {
	plan := Plan{Key: "k", Token0: weth, Token1: usdc, VenueA: venueA, VenueB: venueB, Params: ThoroughParams()}

	tests := []struct {
		dir       Direction
		base      Base
		wantFirst string
		wantBase  string
	}{
		{Forward, BaseToken0, "A", "WETH"},
		{Reverse, BaseToken0, "B", "WETH"},
		{Forward, BaseToken1, "A", "USDC"},
		{Reverse, BaseToken1, "B", "USDC"},
	}

	for _, tt := range tests {
		t.Run(string(tt.dir)+"/"+string(tt.base), func(t *testing.T) {
			plan.Direction, plan.Base = tt.dir, tt.base
			rt := plan.RoundTrip()
			assert.Equal(t, tt.wantFirst, rt.Out.Venue.Label)
			assert.Equal(t, tt.wantBase, rt.BaseToken().Symbol())
			assert.Equal(t, rt.Out.Out, rt.Back.In)
			assert.Equal(t, rt.Out.In, rt.Back.Out)
			assert.NotEqual(t, rt.Out.Venue.Label, rt.Back.Venue.Label)
		})
	}
}

func TestPlan_ValidateSameToken(t *testing.T) {
	lower := asset.NewAsset(asset.ChainIDArbitrum, weth.Address(), "weth", 18)
	plan := Plan{Key: "k", Token0: weth, Token1: lower, VenueA: venueA, VenueB: venueB, Params: ThoroughParams()}

	err := plan.Validate()
	assert.True(t, apperror.HasCode(err, apperror.CodeSameToken), "got %v", err)
	assert.True(t, apperror.IsConfiguration(err))
}

func TestPlan_ScanRange(t *testing.T) {
	agg := quoting.Venue{Kind: quoting.KindAggregator, BaseURL: "https://api", Chain: "bsc"}

	explicit := ScanRange{Min: 2, Max: 3}
	assert.Equal(t, explicit, Plan{Range: &explicit}.ScanRange())

	assert.Equal(t, ScanRange{Min: 100, Max: 100000},
		Plan{Chain: "bsc", Token0: weth, Token1: usdc, VenueA: agg, VenueB: agg}.ScanRange())

	pair := Plan{Chain: "arbitrum", Token0: weth, Token1: usdc, VenueA: venueA, VenueB: venueB}
	assert.Equal(t, ScanRange{Min: 0.5, Max: 100}, pair.ScanRange())

	pair.Base = BaseToken1
	assert.Equal(t, ScanRange{Min: 1000, Max: 200000}, pair.ScanRange())
}

func TestPlan_ZeroBaseMatchesRoundTrip(t *testing.T) {
	p := Plan{Chain: "arbitrum", Token0: weth, Token1: usdc, VenueA: venueA, VenueB: venueB}
	assert.Equal(t, weth, p.RoundTrip().BaseToken())
	assert.Equal(t, ScanRange{Min: 0.5, Max: 100}, p.ScanRange())

	p.Base = BaseToken0
	assert.Equal(t, ScanRange{Min: 0.5, Max: 100}, p.ScanRange())
}

func TestAutoRange_VolatileToken1(t *testing.T) {
	assert.Equal(t, ScanRange{Min: 0.1, Max: 50}, AutoRange(weth, false))
}

func TestParseDirection(t *testing.T) {
	d, err := ParseDirection("B->A")
	require.NoError(t, err)
	assert.Equal(t, Reverse, d)
	assert.Equal(t, Forward, d.Flip())

	_, err = ParseDirection("sideways")
	assert.Error(t, err)
}

func TestScanResult_JSONInfinity(t *testing.T) {
	b, err := json.Marshal(ScanResult{BestInput: 5, BestProfit: math.Inf(-1)})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"best_profit":null`)

	b, err = json.Marshal(EvaluationPoint{Input: 1, Profit: 2.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"input":1,"profit":2.5}`, string(b))
}
