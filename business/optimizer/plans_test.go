package optimizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/optimal-input-radar/business/optimizer/domain"
	quoting "github.com/fd1az/optimal-input-radar/business/quoting/domain"
	"github.com/fd1az/optimal-input-radar/internal/apperror"
	"github.com/fd1az/optimal-input-radar/internal/asset"
	"github.com/fd1az/optimal-input-radar/internal/config"
)

func testConfig(surfaces ...config.SurfaceConfig) *config.Config {
	return &config.Config{
		Chains: map[string]config.ChainConfig{
			"bsc": {RPCURL: "http://127.0.0.1:1", ChainID: asset.ChainIDBSC, APIName: "bsc"},
		},
		Aggregator: config.AggregatorConfig{
			BaseURL:         "https://open-api.openocean.finance/v3",
			AmountPrecision: 6,
		},
		Surfaces: surfaces,
	}
}

func pairSurface() config.SurfaceConfig {
	return config.SurfaceConfig{
		Key:    "usdt-usdc",
		Name:   "USDT/USDC",
		Chain:  "bsc",
		Token0: config.TokenConfig{Symbol: "USDT"},
		Token1: config.TokenConfig{Symbol: "USDC"},
		Venues: []config.VenueConfig{
			{Kind: "v2", Address: "0x10ED43C718714eb63d5aA57B78B54704E256024E", Label: "pancake"},
			{Kind: "v3", Address: "0x78D78E420Da98ad378D7799bE8f4AF69033EB077", Fee: 100, Label: "uni"},
		},
		Direction:      "reverse",
		Base:           "token0",
		Mode:           "thorough",
		Min:            5000,
		Max:            1000,
		RescanInterval: 90 * time.Second,
	}
}

func TestBuildPlans_PairSurface(t *testing.T) {
	plans, err := BuildPlans(testConfig(pairSurface()), asset.DefaultRegistry())
	require.NoError(t, err)
	require.Len(t, plans, 1)

	p := plans[0]
	require.NoError(t, p.Validate())
	assert.Equal(t, "USDT", p.Token0.Symbol())
	assert.Equal(t, "USDC", p.Token1.Symbol())
	assert.Equal(t, quoting.KindV2, p.VenueA.Kind)
	assert.Equal(t, uint32(100), p.VenueB.Fee)
	assert.Equal(t, domain.Reverse, p.Direction)
	assert.Equal(t, domain.ScanRange{Min: 1000, Max: 5000}, p.ScanRange())
	assert.Equal(t, domain.ThoroughParams(), p.Params)
	assert.Equal(t, "uni", p.RoundTrip().Out.Venue.Label)
}

func TestBuildPlans_AggregatorSurface(t *testing.T) {
	capThree := 3
	cfg := testConfig(config.SurfaceConfig{
		Key:    "ocean",
		Chain:  "bsc",
		Token0: config.TokenConfig{Symbol: "USDT"},
		Token1: config.TokenConfig{Address: "0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82", Decimals: intPtr(18)},
		Venues: []config.VenueConfig{{Kind: "aggregator", Label: "ocean"}},
		Mode:   "fast",
	})
	cfg.Search.Fast.IterationCap = &capThree

	plans, err := BuildPlans(cfg, asset.DefaultRegistry())
	require.NoError(t, err)

	p := plans[0]
	require.NoError(t, p.Validate())
	assert.True(t, p.IsAggregator())
	assert.Equal(t, p.VenueA, p.VenueB)
	assert.Equal(t, "bsc", p.VenueA.Chain)
	assert.Equal(t, int32(6), p.VenueA.MaxPrecision)
	assert.Equal(t, "0x0E09Fa", p.Token1.Symbol())
	assert.Nil(t, p.Range)
	assert.Equal(t, domain.ScanRange{Min: 100, Max: 100000}, p.ScanRange())
	assert.Equal(t, 3, p.Params.IterationCap)
	assert.True(t, p.Params.ExpandBoundary)
}

func TestBuildPlans_Errors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.SurfaceConfig)
		code   apperror.Code
	}{
		{
			name:   "unknown symbol",
			modify: func(s *config.SurfaceConfig) { s.Token1 = config.TokenConfig{Symbol: "NOPE"} },
			code:   apperror.CodeUnknownToken,
		},
		{
			name: "address without decimals",
			modify: func(s *config.SurfaceConfig) {
				s.Token1 = config.TokenConfig{Address: "0x000000000000000000000000000000000000dEaD"}
			},
			code: apperror.CodeUnknownToken,
		},
		{
			name:   "unknown chain",
			modify: func(s *config.SurfaceConfig) { s.Chain = "eth" },
			code:   apperror.CodeChainNotConfigured,
		},
		{
			name:   "bad venue kind",
			modify: func(s *config.SurfaceConfig) { s.Venues[0].Kind = "v9" },
			code:   apperror.CodeInvalidVenue,
		},
		{
			name:   "bad venue address",
			modify: func(s *config.SurfaceConfig) { s.Venues[1].Address = "uni" },
			code:   apperror.CodeInvalidVenue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := pairSurface()
			tt.modify(&sc)

			_, err := BuildPlans(testConfig(sc), asset.DefaultRegistry())
			require.Error(t, err)
			assert.True(t, apperror.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestParamsFor_Overrides(t *testing.T) {
	tol := 1e-6
	threshold := 2.5
	expand := true
	search := config.SearchConfig{Thorough: config.PresetConfig{
		Tolerance:       &tol,
		ProfitThreshold: &threshold,
		ExpandBoundary:  &expand,
	}}

	p := paramsFor(search, domain.ModeThorough)
	assert.Equal(t, 1e-6, p.Tolerance)
	assert.Equal(t, 2.5, p.ProfitThreshold)
	assert.True(t, p.ExpandBoundary)
	assert.Equal(t, domain.ThoroughParams().IterationCap, p.IterationCap)

	assert.Equal(t, domain.FastParams(), paramsFor(search, domain.ModeFast))
}

func intPtr(v int) *int { return &v }
