package optimizer

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/optimal-input-radar/business/optimizer/domain"
	quoting "github.com/fd1az/optimal-input-radar/business/quoting/domain"
	"github.com/fd1az/optimal-input-radar/internal/apperror"
	"github.com/fd1az/optimal-input-radar/internal/asset"
	"github.com/fd1az/optimal-input-radar/internal/config"
)

// BuildPlans turns the configured surfaces into plans. Tokens are resolved
// against reg unless given inline.
func BuildPlans(cfg *config.Config, reg *asset.Registry) ([]domain.Plan, error) {
	plans := make([]domain.Plan, 0, len(cfg.Surfaces))
	for _, sc := range cfg.Surfaces {
		p, err := buildPlan(cfg, sc, reg)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, nil
}

func buildPlan(cfg *config.Config, sc config.SurfaceConfig, reg *asset.Registry) (domain.Plan, error) {
	chain, ok := cfg.Chains[sc.Chain]
	if !ok {
		return domain.Plan{}, apperror.New(apperror.CodeChainNotConfigured,
			apperror.WithContext(fmt.Sprintf("surface %s: chain %s", sc.Key, sc.Chain)))
	}

	t0, err := resolveToken(sc.Token0, chain.ChainID, reg)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("surface %s: %w", sc.Key, err)
	}
	t1, err := resolveToken(sc.Token1, chain.ChainID, reg)
	if err != nil {
		return domain.Plan{}, fmt.Errorf("surface %s: %w", sc.Key, err)
	}

	venues := make([]quoting.Venue, 0, 2)
	for _, vc := range sc.Venues {
		v, err := buildVenue(cfg, vc, chain.APIName)
		if err != nil {
			return domain.Plan{}, fmt.Errorf("surface %s: %w", sc.Key, err)
		}
		venues = append(venues, v)
	}
	if len(venues) == 1 {
		venues = append(venues, venues[0])
	}

	direction, err := domain.ParseDirection(sc.Direction)
	if err != nil {
		return domain.Plan{}, err
	}
	base, err := domain.ParseBase(sc.Base)
	if err != nil {
		return domain.Plan{}, err
	}
	mode, err := domain.ParseMode(sc.Mode)
	if err != nil {
		return domain.Plan{}, err
	}

	plan := domain.Plan{
		Key:            sc.Key,
		Name:           sc.Name,
		Chain:          sc.Chain,
		Token0:         t0,
		Token1:         t1,
		VenueA:         venues[0],
		VenueB:         venues[1],
		Direction:      direction,
		Base:           base,
		Mode:           mode,
		Params:         paramsFor(cfg.Search, mode),
		RescanInterval: sc.RescanInterval,
	}
	if sc.HasRange() {
		rng, err := domain.NewScanRange(sc.Min, sc.Max)
		if err != nil {
			return domain.Plan{}, err
		}
		plan.Range = &rng
	}
	return plan, nil
}

func resolveToken(tc config.TokenConfig, chainID uint64, reg *asset.Registry) (*asset.Asset, error) {
	if tc.Inline() {
		symbol := tc.Symbol
		if symbol == "" {
			symbol = tc.Address[:8]
		}
		a, err := asset.Parse(chainID, tc.Address, symbol, *tc.Decimals)
		if err != nil {
			return nil, apperror.New(apperror.CodeUnknownToken, apperror.WithCause(err))
		}
		return a, nil
	}
	if tc.Address != "" {
		if a, ok := reg.GetToken(chainID, common.HexToAddress(tc.Address)); ok {
			return a, nil
		}
		return nil, apperror.New(apperror.CodeUnknownToken,
			apperror.WithContext(fmt.Sprintf("%s on chain %d needs decimals", tc.Address, chainID)))
	}
	if a, ok := reg.GetBySymbolAndChain(tc.Symbol, chainID); ok {
		return a, nil
	}
	return nil, apperror.New(apperror.CodeUnknownToken,
		apperror.WithContext(fmt.Sprintf("%s on chain %d", tc.Symbol, chainID)))
}

func buildVenue(cfg *config.Config, vc config.VenueConfig, apiName string) (quoting.Venue, error) {
	kind, err := quoting.ParseKind(vc.Kind)
	if err != nil {
		return quoting.Venue{}, err
	}
	v := quoting.Venue{Kind: kind, Fee: vc.Fee, Label: vc.Label}
	if kind == quoting.KindAggregator {
		v.BaseURL = cfg.Aggregator.BaseURL
		v.Chain = apiName
		v.MaxPrecision = cfg.Aggregator.AmountPrecision
		return v, nil
	}
	if !common.IsHexAddress(vc.Address) {
		return quoting.Venue{}, apperror.New(apperror.CodeInvalidVenue,
			apperror.WithContext(fmt.Sprintf("%s venue address %q", kind, vc.Address)))
	}
	v.Address = common.HexToAddress(vc.Address)
	return v, nil
}

// paramsFor applies the configured overrides to the mode's preset.
func paramsFor(sc config.SearchConfig, mode domain.Mode) domain.SearchParams {
	p := domain.ParamsFor(mode)
	o := sc.Thorough
	if mode == domain.ModeFast {
		o = sc.Fast
	}
	if o.IterationCap != nil {
		p.IterationCap = *o.IterationCap
	}
	if o.Tolerance != nil {
		p.Tolerance = *o.Tolerance
	}
	if o.ExpandBoundary != nil {
		p.ExpandBoundary = *o.ExpandBoundary
	}
	if o.MaxExpansionDepth != nil {
		p.MaxExpansionDepth = *o.MaxExpansionDepth
	}
	if o.MaterialImprovement != nil {
		p.MaterialImprovement = *o.MaterialImprovement
	}
	if o.MaterialImprovementPct != nil {
		p.MaterialImprovementPct = *o.MaterialImprovementPct
	}
	if o.LowerClamp != nil {
		p.LowerClamp = *o.LowerClamp
	}
	if o.CoarseSteps != nil {
		p.CoarseSteps = *o.CoarseSteps
	}
	if o.ProfitThreshold != nil {
		p.ProfitThreshold = *o.ProfitThreshold
	}
	return p
}
