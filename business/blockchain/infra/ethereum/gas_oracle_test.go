package ethereum

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fd1az/optimal-input-radar/internal/apperror"
	"github.com/fd1az/optimal-input-radar/internal/logger"
)

type fakeSource struct {
	wei   *big.Int
	err   error
	calls atomic.Int32
}

func (f *fakeSource) SuggestGasPrice(context.Context) (*big.Int, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.wei, nil
}

func newTestOracle(t *testing.T, src *fakeSource) *GasOracle {
	t.Helper()
	log := logger.New(&bytes.Buffer{}, logger.LevelError, "test", nil)
	o, err := NewGasOracle(DefaultGasOracleConfig("eth"), src, log)
	if err != nil {
		t.Fatalf("NewGasOracle: %v", err)
	}
	t.Cleanup(func() { o.Close() })
	return o
}

func TestGasOracle_CachesPrice(t *testing.T) {
	src := &fakeSource{wei: big.NewInt(20_000_000_000)}
	o := newTestOracle(t, src)

	for i := 0; i < 3; i++ {
		p, err := o.GetGasPrice(context.Background())
		if err != nil {
			t.Fatalf("GetGasPrice: %v", err)
		}
		if p.Gwei() != 20 {
			t.Errorf("gwei = %v, want 20", p.Gwei())
		}
	}
	if got := src.calls.Load(); got != 1 {
		t.Errorf("source called %d times, want 1", got)
	}
}

func TestGasOracle_CapsPrice(t *testing.T) {
	src := &fakeSource{wei: big.NewInt(0).Mul(big.NewInt(900), big.NewInt(1_000_000_000))}
	o := newTestOracle(t, src)

	p, err := o.GetGasPrice(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if p.Gwei() != 500 {
		t.Errorf("gwei = %v, want capped 500", p.Gwei())
	}
}

func TestGasOracle_SourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	o := newTestOracle(t, src)

	_, err := o.GetGasPrice(context.Background())
	if !apperror.HasCode(err, apperror.CodeEthereumRPCError) {
		t.Errorf("expected rpc error, got %v", err)
	}
}

func TestGasOracle_CacheExpires(t *testing.T) {
	src := &fakeSource{wei: big.NewInt(1_000_000_000)}
	o := newTestOracle(t, src)
	o.config.CacheTTL = time.Millisecond

	if _, err := o.GetGasPrice(context.Background()); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := o.GetGasPrice(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := src.calls.Load(); got != 2 {
		t.Errorf("source called %d times, want 2", got)
	}
}
