package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/optimal-input-radar/business/optimizer/domain"
)

func TestCoarseScan_SamplesAndProgress(t *testing.T) {
	rng := domain.ScanRange{Min: 1000, Max: 50000}
	var (
		seen     []domain.EvaluationPoint
		progress []int
	)

	points, err := CoarseScan(context.Background(), rng, 8,
		func(_ context.Context, x float64) (float64, error) { return x / 1000, nil },
		func(pt domain.EvaluationPoint) { seen = append(seen, pt) },
		func(p int) { progress = append(progress, p) })
	require.NoError(t, err)

	require.Len(t, points, 9)
	assert.Equal(t, points, seen)
	assert.Equal(t, 1000.0, points[0].Input)
	assert.Equal(t, 50000.0, points[8].Input)
	assert.InDelta(t, 7125.0, points[1].Input, 1e-9)
	assert.InDelta(t, 7.125, points[1].Profit, 1e-9)
	assert.Equal(t, []int{5, 11, 16, 22, 27, 33, 38, 44, 50}, progress)
}

func TestCoarseScan_CancelStopsLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	calls := 0
	points, err := CoarseScan(ctx, domain.ScanRange{Min: 1, Max: 9}, 8,
		func(_ context.Context, x float64) (float64, error) {
			calls++
			if calls == 3 {
				cancel()
			}
			return x, nil
		}, nil, nil)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, points, 3)
	assert.Equal(t, 3, calls)
}

func TestCoarseScan_ErrorStopsLoop(t *testing.T) {
	boom := assert.AnError
	points, err := CoarseScan(context.Background(), domain.ScanRange{Min: 1, Max: 9}, 4,
		func(_ context.Context, x float64) (float64, error) {
			if x > 4 {
				return 0, boom
			}
			return x, nil
		}, nil, nil)

	assert.ErrorIs(t, err, boom)
	assert.Len(t, points, 2)
}
