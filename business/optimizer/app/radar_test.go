package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/optimal-input-radar/internal/apperror"
)

func TestNewRadar_DuplicateKeys(t *testing.T) {
	a, _ := newTestSurface(pairPlan("dup"), nil)
	b, _ := newTestSurface(pairPlan("dup"), nil)

	_, err := NewRadar(testLogger(), a, b)
	assert.True(t, apperror.HasCode(err, apperror.CodeConfigurationError))
}

func TestRadar_Lifecycle(t *testing.T) {
	oracle := curveOracle(peakAt250)
	a, _ := newTestSurface(pairPlan("a"), oracle)
	b, _ := newTestSurface(pairPlan("b"), oracle)

	r, err := NewRadar(testLogger(), a, b)
	require.NoError(t, err)

	_, err = r.Surface("missing")
	assert.True(t, apperror.HasCode(err, apperror.CodeSurfaceNotFound))
	assert.Error(t, r.Cancel("missing"))

	r.Start(context.Background())
	defer r.Stop()

	assert.Eventually(t, func() bool {
		return a.Result() != nil && b.Result() != nil
	}, 5*time.Second, 5*time.Millisecond)

	snaps := r.Snapshot()
	require.Len(t, snaps, 2)
	assert.Equal(t, "a", snaps[0].Key)
	assert.Equal(t, "b", snaps[1].Key)

	h, err := r.Restart("b")
	require.NoError(t, err)
	require.NoError(t, h.Wait())

	ok, _ := r.Check(time.Minute)
	assert.True(t, ok)

	r.Stop()
	assert.False(t, a.Scanning())
	assert.False(t, b.Scanning())
}
