package app

import (
	"context"
	"time"

	"github.com/fd1az/optimal-input-radar/business/optimizer/domain"
)

// Outcome is everything a completed scan produced.
type Outcome struct {
	Result domain.ScanResult
	Points []domain.EvaluationPoint
}

// Scanner runs the scan pipeline: a coarse pass over the range for the
// curve, then refinement seeded with the full range.
type Scanner struct {
	Params domain.SearchParams
	// OnPoint receives each coarse sample. Optional.
	OnPoint func(domain.EvaluationPoint)

	now func() time.Time
}

// NewScanner creates a scanner with params.
func NewScanner(params domain.SearchParams) *Scanner {
	return &Scanner{Params: params, now: time.Now}
}

// Run scans rng with fn. Errors are cancellation, rate limiting or
// invalid input; no result exists in those cases.
func (s *Scanner) Run(ctx context.Context, rng domain.ScanRange, fn ProfitFunc, onProgress ProgressFunc) (Outcome, error) {
	if err := rng.Validate(); err != nil {
		return Outcome{}, err
	}
	if err := s.Params.Validate(); err != nil {
		return Outcome{}, err
	}
	if onProgress == nil {
		onProgress = func(int) {}
	}

	points, err := CoarseScan(ctx, rng, s.Params.CoarseSteps, fn, s.OnPoint, onProgress)
	if err != nil {
		return Outcome{Points: points}, err
	}

	refiner := NewRefiner(s.Params, fn, onProgress)
	best, err := refiner.Maximize(ctx, rng.Min, rng.Max)
	if err != nil {
		return Outcome{Points: points}, err
	}
	if err := ctx.Err(); err != nil {
		return Outcome{Points: points}, err
	}

	now := time.Now
	if s.now != nil {
		now = s.now
	}
	return Outcome{
		Result: domain.ScanResult{
			BestInput:   best.Input,
			BestProfit:  best.Profit,
			Profitable:  best.Profit > s.Params.ProfitThreshold,
			Evaluations: len(points) + refiner.Evaluations(),
			CompletedAt: now(),
		},
		Points: points,
	}, nil
}
