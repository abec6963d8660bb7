package app

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/optimal-input-radar/business/optimizer/domain"
)

func pure(f func(float64) float64) ProfitFunc {
	return func(_ context.Context, x float64) (float64, error) { return f(x), nil }
}

func TestRefiner_ConvergesOnUnimodal(t *testing.T) {
	params := domain.ThoroughParams()
	params.IterationCap = 100

	r := NewRefiner(params, pure(func(x float64) float64 { return -(x - 3.7) * (x - 3.7) }), nil)
	best, err := r.Maximize(context.Background(), 0, 10)
	require.NoError(t, err)

	assert.InDelta(t, 3.7, best.Input, 1e-4)
	assert.InDelta(t, 0, best.Profit, 1e-8)
	assert.Equal(t, 27, r.Evaluations())
}

func TestRefiner_IterationCapBoundsEvaluations(t *testing.T) {
	params := domain.ThoroughParams()

	r := NewRefiner(params, pure(peakAt250), nil)
	best, err := r.Maximize(context.Background(), 1000, 50000)
	require.NoError(t, err)

	// two interior points, one per iteration, one midpoint
	assert.Equal(t, 17, r.Evaluations())
	assert.InDelta(t, 1029.06, best.Input, 0.01)
	assert.Less(t, best.Profit, 0.0)
}

func TestRefiner_TiesMoveRight(t *testing.T) {
	params := domain.ThoroughParams()
	params.IterationCap = 1

	r := NewRefiner(params, pure(func(float64) float64 { return 1 }), nil)
	best, err := r.Maximize(context.Background(), 0, 10)
	require.NoError(t, err)

	assert.InDelta(t, 6.90983, best.Input, 1e-5)
	assert.Equal(t, 4, r.Evaluations())
}

func TestRefiner_BoundaryExpansion(t *testing.T) {
	peak := func(x float64) float64 { return -(x - 150) * (x - 150) }

	tests := []struct {
		name    string
		params  func() domain.SearchParams
		wantMin float64
		wantMax float64
	}{
		{
			name: "expansion escapes the range",
			params: func() domain.SearchParams {
				p := domain.FastParams()
				return p
			},
			wantMin: 149.999,
			wantMax: 150.001,
		},
		{
			name: "no expansion stays at the edge",
			params: func() domain.SearchParams {
				p := domain.ThoroughParams()
				p.IterationCap = 40
				return p
			},
			wantMin: 99.9,
			wantMax: 100,
		},
		{
			name:    "no expansion with a tight cap",
			params:  domain.ThoroughParams,
			wantMin: 80,
			wantMax: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRefiner(tt.params(), pure(peak), nil)
			best, err := r.Maximize(context.Background(), 0, 100)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, best.Input, tt.wantMin)
			assert.LessOrEqual(t, best.Input, tt.wantMax)
		})
	}
}

func TestRefiner_UnquotableRegion(t *testing.T) {
	params := domain.ThoroughParams()
	params.IterationCap = 60

	f := func(x float64) float64 {
		if x < 5 {
			return math.Inf(-1)
		}
		return -(x - 7) * (x - 7)
	}
	best, err := NewRefiner(params, pure(f), nil).Maximize(context.Background(), 0, 10)
	require.NoError(t, err)
	assert.InDelta(t, 7, best.Input, 1e-3)
}

func TestRefiner_NothingQuotable(t *testing.T) {
	r := NewRefiner(domain.FastParams(), pure(func(float64) float64 { return negInf() }), nil)
	best, err := r.Maximize(context.Background(), 1, 10)
	require.NoError(t, err)

	assert.True(t, math.IsInf(best.Profit, -1))
	assert.GreaterOrEqual(t, best.Input, 1.0)
	assert.LessOrEqual(t, best.Input, 10.0)
}

func TestRefiner_ProgressStaysInRefineBand(t *testing.T) {
	var progress []int
	params := domain.ThoroughParams()
	params.IterationCap = 100

	r := NewRefiner(params, pure(func(x float64) float64 { return -x * x }), func(p int) {
		progress = append(progress, p)
	})
	_, err := r.Maximize(context.Background(), 0, 10)
	require.NoError(t, err)

	require.Len(t, progress, r.Evaluations())
	assert.IsNonDecreasing(t, progress)
	for _, p := range progress {
		assert.GreaterOrEqual(t, p, 50)
		assert.LessOrEqual(t, p, 99)
	}
}

func TestRefiner_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	fn := func(_ context.Context, x float64) (float64, error) {
		calls++
		if calls == 5 {
			cancel()
		}
		return -x * x, nil
	}

	_, err := NewRefiner(domain.ThoroughParams(), fn, nil).Maximize(ctx, 0, 10)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 5, calls)
}
