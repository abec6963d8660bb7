package app

import (
	"context"
	"runtime"

	"github.com/fd1az/optimal-input-radar/business/optimizer/domain"
)

// CoarseScan samples fn at steps+1 evenly spaced inputs across rng, one at
// a time. Progress covers 0-50. onPoint, when set, sees every sample.
// Cancellation stops the loop and discards the remaining samples.
func CoarseScan(ctx context.Context, rng domain.ScanRange, steps int, fn ProfitFunc,
	onPoint func(domain.EvaluationPoint), onProgress ProgressFunc) ([]domain.EvaluationPoint, error) {
	xs := rng.Points(steps)
	points := make([]domain.EvaluationPoint, 0, len(xs))

	for i, x := range xs {
		if err := ctx.Err(); err != nil {
			return points, err
		}

		y, err := fn(ctx, x)
		if err != nil {
			return points, err
		}

		pt := domain.EvaluationPoint{Input: x, Profit: y}
		points = append(points, pt)
		if onPoint != nil {
			onPoint(pt)
		}
		if onProgress != nil {
			onProgress((i + 1) * 50 / len(xs))
		}

		runtime.Gosched()
	}

	return points, ctx.Err()
}
