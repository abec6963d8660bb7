package app

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/optimal-input-radar/business/optimizer/domain"
	"github.com/fd1az/optimal-input-radar/internal/apperror"
	"github.com/fd1az/optimal-input-radar/internal/logger"
)

func testLogger() logger.LoggerInterface {
	return logger.New(&bytes.Buffer{}, logger.LevelError, "test", nil)
}

func blocking(ctx context.Context, _ float64) (float64, error) {
	<-ctx.Done()
	return 0, ctx.Err()
}

func newTestSurface(plan domain.Plan, oracle QuoteOracle) (*Surface, *recorder) {
	rec := &recorder{}
	return NewSurface(plan, SurfaceOptions{Oracle: oracle, Reporter: rec, Logger: testLogger()}), rec
}

func publish(t *testing.T, s *Surface) *domain.ScanResult {
	t.Helper()
	h := s.Start(domain.ScanRange{Min: 1000, Max: 50000}, pure(peakAt250), nil)
	require.NoError(t, h.Wait())
	require.NotNil(t, h.Result())
	return h.Result()
}

func TestSurface_Publishes(t *testing.T) {
	s, rec := newTestSurface(pairPlan("p"), nil)

	var progress []int
	h := s.Start(domain.ScanRange{Min: 1000, Max: 50000}, pure(peakAt250), func(p int) {
		progress = append(progress, p)
	})
	require.NoError(t, h.Wait())

	res := s.Result()
	require.NotNil(t, res)
	assert.Equal(t, h.Result(), res)
	assert.Equal(t, 26, res.Evaluations)
	assert.False(t, s.Scanning())

	snap := s.Snapshot()
	assert.Equal(t, StateDone, snap.State)
	assert.Equal(t, 100, snap.Progress)
	assert.Len(t, snap.Points, 9)
	assert.Equal(t, h.ID(), snap.Session)
	assert.Equal(t, "USDT", snap.Base)
	assert.Equal(t, "pancake", snap.First)

	assert.Equal(t, 100, progress[len(progress)-1])
	assert.IsIncreasing(t, progress)
	assert.Equal(t, 1, rec.Count(EventScanStarted))
	assert.Equal(t, 1, rec.Count(EventResult))
	assert.Equal(t, 9, rec.Count(EventEvaluation))
}

func TestSurface_CancelKeepsPreviousResult(t *testing.T) {
	s, rec := newTestSurface(pairPlan("p"), nil)
	first := publish(t, s)

	h := s.Start(domain.ScanRange{Min: 1000, Max: 50000}, blocking, nil)
	assert.True(t, s.Scanning())
	s.Cancel()

	assert.ErrorIs(t, h.Wait(), context.Canceled)
	assert.Nil(t, h.Result())
	assert.Equal(t, first, s.Result())
	assert.Equal(t, StateCancelled, s.Snapshot().State)
	assert.False(t, s.Scanning())
	assert.Equal(t, 1, rec.Count(EventCancelled))
	assert.Equal(t, 1, rec.Count(EventResult))
}

func TestSurface_NewSessionSupersedesOld(t *testing.T) {
	s, rec := newTestSurface(pairPlan("p"), nil)

	old := s.Start(domain.ScanRange{Min: 1000, Max: 50000}, blocking, nil)
	next := s.Start(domain.ScanRange{Min: 1000, Max: 50000}, pure(peakAt250), nil)

	// Start waits for the old session before creating the new one
	select {
	case <-old.Done():
	default:
		t.Fatal("old session still running")
	}
	assert.ErrorIs(t, old.Wait(), context.Canceled)
	assert.Nil(t, old.Result())

	require.NoError(t, next.Wait())
	assert.Equal(t, next.Result(), s.Result())
	assert.Same(t, next, s.Active())
	assert.Equal(t, 1, rec.Count(EventResult))
}

func TestSurface_RateLimitKeepsPreviousResult(t *testing.T) {
	s, rec := newTestSurface(pairPlan("p"), nil)
	first := publish(t, s)

	h := s.Start(domain.ScanRange{Min: 1000, Max: 50000}, func(context.Context, float64) (float64, error) {
		return 0, apperror.RateLimited("test", errors.New("429"))
	}, nil)

	assert.True(t, apperror.IsRateLimited(h.Wait()))
	assert.Nil(t, h.Result())
	assert.Equal(t, first, s.Result())

	snap := s.Snapshot()
	assert.Equal(t, StateRateLimited, snap.State)
	assert.NotEmpty(t, snap.LastError)
	assert.Equal(t, 1, rec.Count(EventRateLimited))
}

func TestSurface_SameTokenBlocksScan(t *testing.T) {
	plan := pairPlan("p")
	plan.Token1 = usdt
	oracle := curveOracle(peakAt250)
	s, rec := newTestSurface(plan, oracle)

	h, err := s.Scan()
	assert.Nil(t, h)
	assert.True(t, apperror.HasCode(err, apperror.CodeSameToken))
	assert.Nil(t, s.Active())
	assert.Empty(t, oracle.Calls())
	assert.Equal(t, StateFailed, s.Snapshot().State)
	assert.Equal(t, 1, rec.Count(EventFailed))
	assert.Zero(t, rec.Count(EventScanStarted))
}

func TestSurface_ScanThroughOracle(t *testing.T) {
	oracle := curveOracle(peakAt250)
	s, _ := newTestSurface(pairPlan("p"), oracle)

	h, err := s.Scan()
	require.NoError(t, err)
	require.NoError(t, h.Wait())

	res := s.Result()
	require.NotNil(t, res)
	assert.InDelta(t, 250, res.BestInput, 1)
	assert.InDelta(t, 7.5, res.BestProfit, 0.01)
	assert.True(t, res.Profitable)
	assert.Equal(t, 26, res.Evaluations)
	assert.Len(t, oracle.Calls(), 2*res.Evaluations)
}

func TestSurface_Reconfigure(t *testing.T) {
	oracle := curveOracle(peakAt250)
	s, _ := newTestSurface(pairPlan("p"), oracle)

	h, err := s.SetDirection(domain.Reverse)
	require.NoError(t, err)
	require.NoError(t, h.Wait())
	assert.Equal(t, domain.Reverse, s.Plan().Direction)
	assert.Equal(t, "uni", oracle.Calls()[0].venue)

	_, err = s.SetRange(5, 5)
	assert.True(t, apperror.HasCode(err, apperror.CodeInvalidScanRange))

	_, err = s.Reconfigure(func(p *domain.Plan) { p.Token0 = p.Token1 })
	assert.True(t, apperror.HasCode(err, apperror.CodeSameToken))
	assert.Equal(t, "USDT", s.Plan().Token0.Symbol(), "invalid change rolled back")

	h, err = s.SetRange(2000, 500)
	require.NoError(t, err)
	require.NoError(t, h.Wait())
	assert.Equal(t, domain.ScanRange{Min: 500, Max: 2000}, s.Snapshot().Range)
}

func TestSurface_SchedulerRescans(t *testing.T) {
	plan := pairPlan("p")
	plan.RescanInterval = 20 * time.Millisecond
	s, rec := newTestSurface(plan, curveOracle(peakAt250))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return rec.Count(EventResult) >= 2 }, 5*time.Second, 5*time.Millisecond)
	assert.False(t, s.Snapshot().NextScan.IsZero())

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.False(t, s.Scanning())
}

func TestSurface_RefusesScansAfterSchedulerExit(t *testing.T) {
	s, rec := newTestSurface(pairPlan("p"), curveOracle(peakAt250))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	assert.Eventually(t, func() bool { return rec.Count(EventResult) >= 1 }, 5*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	last := s.Active()

	h, err := s.Restart()
	assert.Nil(t, h)
	assert.True(t, apperror.HasCode(err, apperror.CodeSurfaceStopped), "got %v", err)
	assert.Same(t, last, s.Active(), "no new session after stop")
	assert.False(t, s.Scanning())

	// a new scheduler run accepts scans again
	ctx, cancel = context.WithCancel(context.Background())
	go func() { done <- s.Run(ctx) }()
	assert.Eventually(t, func() bool { return rec.Count(EventResult) >= 2 }, 5*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

func TestSurface_CheckFlagsLongScan(t *testing.T) {
	s, _ := newTestSurface(pairPlan("p"), nil)
	ok, _ := s.Check(0)
	assert.True(t, ok, "idle surface is healthy")

	h := s.Start(domain.ScanRange{Min: 1, Max: 2}, blocking, nil)
	defer h.Cancel()
	time.Sleep(2 * time.Millisecond)

	ok, msg := s.Check(time.Millisecond)
	assert.False(t, ok)
	assert.Contains(t, msg, "scan running")

	ok, _ = s.Check(time.Hour)
	assert.True(t, ok)
}
