// Package onchain quotes constant-product routers and concentrated-liquidity
// quoter contracts with eth_call.
package onchain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/optimal-input-radar/business/quoting/app"
	"github.com/fd1az/optimal-input-radar/business/quoting/domain"
	"github.com/fd1az/optimal-input-radar/internal/apperror"
	"github.com/fd1az/optimal-input-radar/internal/asset"
	"github.com/fd1az/optimal-input-radar/internal/circuitbreaker"
	"github.com/fd1az/optimal-input-radar/internal/logger"
)

const tracerName = "github.com/fd1az/optimal-input-radar/business/quoting/infra/onchain"

var _ app.Quoter = (*Quoter)(nil)

// ContractCaller is the eth_call surface of *ethclient.Client.
type ContractCaller interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// CallerResolver returns the RPC client for a chain id.
type CallerResolver func(chainID uint64) (ContractCaller, error)

// Config holds on-chain quoting settings.
type Config struct {
	CallTimeout time.Duration
	Breaker     circuitbreaker.Config
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	cb := circuitbreaker.DefaultConfig("onchain-quoter")
	cb.IsSuccessful = healthyCallResult
	return Config{
		CallTimeout: 8 * time.Second,
		Breaker:     cb,
	}
}

// Quoter implements app.Quoter for every on-chain venue kind.
type Quoter struct {
	resolve CallerResolver
	cfg     Config
	logger  logger.LoggerInterface
	tracer  trace.Tracer

	// one breaker per chain so an outage on one RPC leaves the others quoting
	mu       sync.Mutex
	breakers map[uint64]*circuitbreaker.CircuitBreaker[[]byte]

	routerV2   abi.ABI
	quoterV1   abi.ABI
	quoterCV3  abi.ABI
	quoterPCV3 abi.ABI
}

// NewQuoter parses the contract ABIs and builds the quoter.
func NewQuoter(resolve CallerResolver, cfg Config, log logger.LoggerInterface) (*Quoter, error) {
	q := &Quoter{
		resolve:  resolve,
		cfg:      cfg,
		logger:   log,
		tracer:   otel.Tracer(tracerName),
		breakers: make(map[uint64]*circuitbreaker.CircuitBreaker[[]byte]),
	}

	for _, p := range []struct {
		dst  *abi.ABI
		json string
	}{
		{&q.routerV2, RouterV2ABI},
		{&q.quoterV1, QuoterV1ABI},
		{&q.quoterCV3, QuoterTupleABI},
		{&q.quoterPCV3, QuoterV2ABI},
	} {
		parsed, err := abi.JSON(strings.NewReader(p.json))
		if err != nil {
			return nil, fmt.Errorf("failed to parse quoter ABI: %w", err)
		}
		*p.dst = parsed
	}

	return q, nil
}

// Quote converts amountIn to raw units, calls the venue contract and
// converts the answer back to human units of tokenOut.
func (q *Quoter) Quote(ctx context.Context, venue domain.Venue, tokenIn, tokenOut *asset.Asset, amountIn decimal.Decimal) (decimal.Decimal, error) {
	ctx, span := q.tracer.Start(ctx, "onchain.quote",
		trace.WithAttributes(
			attribute.String("venue", venue.String()),
			attribute.String("kind", string(venue.Kind)),
			attribute.String("token_in", tokenIn.Symbol()),
			attribute.String("token_out", tokenOut.Symbol()),
			attribute.String("amount_in", amountIn.String()),
		),
	)
	defer span.End()

	in, err := asset.ParseDecimal(tokenIn, asset.Round(amountIn, venue.Precision(tokenIn)))
	if err != nil {
		return decimal.Zero, err
	}

	callData, abiDef, err := q.pack(venue, tokenIn.Address(), tokenOut.Address(), in.Raw())
	if err != nil {
		return decimal.Zero, err
	}

	caller, err := q.resolve(tokenIn.ChainID())
	if err != nil {
		return decimal.Zero, err
	}

	callCtx := ctx
	if q.cfg.CallTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, q.cfg.CallTimeout)
		defer cancel()
	}

	result, err := q.breaker(tokenIn.ChainID()).Execute(func() ([]byte, error) {
		return caller.CallContract(callCtx, ethereum.CallMsg{
			To:   &venue.Address,
			Data: callData,
		}, nil)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "call failed")
		return decimal.Zero, apperror.New(apperror.CodeContractCallFailed,
			apperror.WithCause(err),
			apperror.WithContext(venue.String()))
	}

	rawOut, err := q.unpack(venue.Kind, abiDef, result)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "decode failed")
		return decimal.Zero, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithCause(err),
			apperror.WithContext(venue.String()))
	}

	out := asset.NewAmount(tokenOut, rawOut).ToDecimal()
	span.SetAttributes(attribute.String("amount_out", out.String()))
	span.SetStatus(codes.Ok, "quote received")

	return out, nil
}

func (q *Quoter) breaker(chainID uint64) *circuitbreaker.CircuitBreaker[[]byte] {
	q.mu.Lock()
	defer q.mu.Unlock()

	if cb, ok := q.breakers[chainID]; ok {
		return cb
	}
	cfg := q.cfg.Breaker
	cfg.Name = fmt.Sprintf("%s-%d", cfg.Name, chainID)
	cb := circuitbreaker.New[[]byte](cfg)
	q.breakers[chainID] = cb
	return cb
}

func (q *Quoter) pack(venue domain.Venue, tokenIn, tokenOut common.Address, amountIn *big.Int) ([]byte, *abi.ABI, error) {
	fee := new(big.Int).SetUint64(uint64(venue.Fee))
	noLimit := big.NewInt(0)

	var (
		data []byte
		def  *abi.ABI
		err  error
	)
	switch venue.Kind {
	case domain.KindV2:
		def = &q.routerV2
		data, err = def.Pack("getAmountsOut", amountIn, []common.Address{tokenIn, tokenOut})
	case domain.KindV3:
		def = &q.quoterV1
		data, err = def.Pack(methodQuoteExactInputSingle, tokenIn, tokenOut, fee, amountIn, noLimit)
	case domain.KindCV3:
		def = &q.quoterCV3
		data, err = def.Pack(methodQuoteExactInputSingle, tokenIn, tokenOut, fee, amountIn, noLimit)
	case domain.KindPCV3:
		def = &q.quoterPCV3
		data, err = def.Pack(methodQuoteExactInputSingle, QuoteExactInputSingleParams{
			TokenIn:           tokenIn,
			TokenOut:          tokenOut,
			AmountIn:          amountIn,
			Fee:               fee,
			SqrtPriceLimitX96: noLimit,
		})
	default:
		return nil, nil, apperror.New(apperror.CodeUnsupportedVenue,
			apperror.WithContext(fmt.Sprintf("%s is not an on-chain venue", venue.Kind)))
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode call: %w", err)
	}
	return data, def, nil
}

func (q *Quoter) unpack(kind domain.Kind, def *abi.ABI, result []byte) (*big.Int, error) {
	if kind == domain.KindV2 {
		outputs, err := def.Unpack("getAmountsOut", result)
		if err != nil {
			return nil, err
		}
		amounts, ok := outputs[0].([]*big.Int)
		if !ok || len(amounts) < 2 {
			return nil, fmt.Errorf("unexpected getAmountsOut result")
		}
		return amounts[1], nil
	}

	outputs, err := def.Unpack(methodQuoteExactInputSingle, result)
	if err != nil {
		return nil, err
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("empty quoter result")
	}
	amountOut, ok := outputs[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected amountOut type %T", outputs[0])
	}
	return amountOut, nil
}

// healthyCallResult keeps reverts and caller cancellation from tripping the
// breaker.
func healthyCallResult(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var dataErr rpc.DataError
	if errors.As(err, &dataErr) {
		return true
	}
	return strings.Contains(err.Error(), "execution reverted")
}
