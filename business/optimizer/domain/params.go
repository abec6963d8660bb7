package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/fd1az/optimal-input-radar/internal/apperror"
)

// Mode names a search preset.
type Mode string

const (
	// ModeThorough runs a long refinement without boundary expansion.
	ModeThorough Mode = "thorough"
	// ModeFast runs a short refinement and expands past the bracket when a
	// probe beats it.
	ModeFast Mode = "fast"
)

// ParseMode parses a mode name, case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeThorough, ModeFast:
		return m, nil
	}
	return "", apperror.New(apperror.CodeInvalidSearch,
		apperror.WithContext(fmt.Sprintf("unknown search mode %q", s)))
}

// Default search constants.
const (
	DefaultTolerance           = 1e-4
	DefaultLowerClamp          = 0.01
	DefaultCoarseSteps         = 8
	DefaultMaterialImprovement = 0.5
)

// SearchParams tunes the refiner and the scan pipeline.
type SearchParams struct {
	// IterationCap bounds golden-section iterations per bracket.
	IterationCap int `json:"iteration_cap"`
	// Tolerance stops refinement once the bracket is narrower.
	Tolerance float64 `json:"tolerance"`

	ExpandBoundary    bool `json:"expand_boundary"`
	MaxExpansionDepth int  `json:"max_expansion_depth"`
	// A probe must beat the best by more than
	// max(MaterialImprovement, MaterialImprovementPct*|best|) to expand.
	MaterialImprovement    float64 `json:"material_improvement"`
	MaterialImprovementPct float64 `json:"material_improvement_pct"`
	// LowerClamp floors the left probe so trade sizes stay positive.
	LowerClamp float64 `json:"lower_clamp"`

	CoarseSteps int `json:"coarse_steps"`
	// ProfitThreshold: a result is profitable when BestProfit exceeds it.
	ProfitThreshold float64 `json:"profit_threshold"`
}

// ThoroughParams is the pair-surface preset.
func ThoroughParams() SearchParams {
	return SearchParams{
		IterationCap:        14,
		Tolerance:           DefaultTolerance,
		ExpandBoundary:      false,
		MaxExpansionDepth:   0,
		MaterialImprovement: DefaultMaterialImprovement,
		LowerClamp:          DefaultLowerClamp,
		CoarseSteps:         DefaultCoarseSteps,
		ProfitThreshold:     0,
	}
}

// FastParams is the aggregator-surface preset.
func FastParams() SearchParams {
	return SearchParams{
		IterationCap:        2,
		Tolerance:           DefaultTolerance,
		ExpandBoundary:      true,
		MaxExpansionDepth:   3,
		MaterialImprovement: DefaultMaterialImprovement,
		LowerClamp:          DefaultLowerClamp,
		CoarseSteps:         DefaultCoarseSteps,
		ProfitThreshold:     0.1,
	}
}

// ParamsFor returns the preset for mode.
func ParamsFor(mode Mode) SearchParams {
	if mode == ModeFast {
		return FastParams()
	}
	return ThoroughParams()
}

// Validate rejects parameters the refiner can't run with.
func (p SearchParams) Validate() error {
	invalid := func(msg string) error {
		return apperror.New(apperror.CodeInvalidSearch, apperror.WithContext(msg))
	}
	switch {
	case p.IterationCap < 0:
		return invalid("iteration cap must not be negative")
	case !(p.Tolerance > 0) || math.IsInf(p.Tolerance, 0):
		return invalid("tolerance must be positive")
	case p.MaxExpansionDepth < 0:
		return invalid("expansion depth must not be negative")
	case p.MaterialImprovement < 0 || p.MaterialImprovementPct < 0:
		return invalid("material improvement must not be negative")
	case !(p.LowerClamp > 0):
		return invalid("lower clamp must be positive")
	case p.CoarseSteps < 1:
		return invalid("coarse steps must be at least 1")
	case math.IsNaN(p.ProfitThreshold):
		return invalid("profit threshold is NaN")
	}
	return nil
}

// MaterialMargin is how much a probe must beat best by to trigger expansion.
func (p SearchParams) MaterialMargin(best float64) float64 {
	if math.IsInf(best, 0) {
		return p.MaterialImprovement
	}
	return math.Max(p.MaterialImprovement, p.MaterialImprovementPct*math.Abs(best))
}
