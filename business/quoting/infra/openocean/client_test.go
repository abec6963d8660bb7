package openocean

import (
	"bytes"
	"context"
	"math/big"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fd1az/optimal-input-radar/business/quoting/domain"
	"github.com/fd1az/optimal-input-radar/internal/apperror"
	"github.com/fd1az/optimal-input-radar/internal/asset"
	"github.com/fd1az/optimal-input-radar/internal/logger"
)

var (
	usdt = asset.NewAsset(asset.ChainIDBSC, common.HexToAddress("0x55d398326f99059fF775485246999027B3197955"), "USDT", 18)
	cake = asset.NewAsset(asset.ChainIDBSC, common.HexToAddress("0x0E09FaBB73Bd3Ade0a17ECC321fD13a19e81cE82"), "CAKE", 18)
)

type staticGas struct{ wei *big.Int }

func (s staticGas) GasPriceWei(context.Context, string) (*big.Int, error) { return s.wei, nil }

func newTestClient(gas *staticGas) *Client {
	cfg := DefaultConfig()
	cfg.RateLimitRPM = 0
	log := logger.New(&bytes.Buffer{}, logger.LevelError, "test", nil)
	if gas == nil {
		return NewClient(cfg, nil, log)
	}
	return NewClient(cfg, gas, log)
}

func venueFor(srv *httptest.Server) domain.Venue {
	return domain.Venue{Kind: domain.KindAggregator, BaseURL: srv.URL + "/v3", Chain: "bsc", MaxPrecision: 6}
}

func TestClient_Quote(t *testing.T) {
	var got url.Values
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"code":200,"data":{"inAmount":"1234567891000000000000","outAmount":"512250000000000000000"}}`))
	}))
	defer srv.Close()

	c := newTestClient(nil)
	out, err := c.Quote(context.Background(), venueFor(srv), usdt, cake, decimal.RequireFromString("1234.5678912345"))
	require.NoError(t, err)

	assert.Equal(t, "512.25", out.String())
	assert.Equal(t, "/v3/bsc/quote", gotPath)
	assert.Equal(t, "1234.567891", got.Get("amount"))
	assert.Equal(t, usdt.AddressHex(), got.Get("inTokenAddress"))
	assert.Equal(t, cake.AddressHex(), got.Get("outTokenAddress"))
	assert.Equal(t, "5000000000", got.Get("gasPrice"))
}

func TestClient_GasPriceFromPricer(t *testing.T) {
	var gas string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gas = r.URL.Query().Get("gasPrice")
		w.Write([]byte(`{"data":{"outAmount":1000}}`))
	}))
	defer srv.Close()

	c := newTestClient(&staticGas{wei: big.NewInt(3_000_000_000)})
	out, err := c.Quote(context.Background(), venueFor(srv), usdt, cake, decimal.NewFromInt(1))
	require.NoError(t, err)

	assert.Equal(t, "3000000000", gas)
	assert.Equal(t, "0.000000000000001", out.String())
}

func TestClient_RateLimited(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(nil)
	_, err := c.Quote(context.Background(), venueFor(srv), usdt, cake, decimal.NewFromInt(1))

	assert.True(t, apperror.IsRateLimited(err), "got %v", err)
	assert.Equal(t, int32(1), hits.Load(), "no automatic retry")
}

func TestClient_SoftFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `{"code":500}`},
		{name: "missing data", status: http.StatusOK, body: `{"code":201,"error":"no route"}`},
		{name: "missing outAmount", status: http.StatusOK, body: `{"data":{}}`},
		{name: "garbage amount", status: http.StatusOK, body: `{"data":{"outAmount":"abc"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(nil)
			_, err := c.Quote(context.Background(), venueFor(srv), usdt, cake, decimal.NewFromInt(1))
			require.Error(t, err)
			assert.False(t, apperror.IsRateLimited(err))
			assert.True(t, apperror.HasCode(err, apperror.CodeInvalidQuote), "got %v", err)
		})
	}
}

func TestClient_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(nil)
	_, err := c.Quote(ctx, venueFor(srv), usdt, cake, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, context.Canceled)
}
