// Package openocean quotes swaps through the OpenOcean aggregator HTTP API.
package openocean

import (
	"context"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fd1az/optimal-input-radar/business/quoting/app"
	"github.com/fd1az/optimal-input-radar/business/quoting/domain"
	"github.com/fd1az/optimal-input-radar/internal/apperror"
	"github.com/fd1az/optimal-input-radar/internal/asset"
	"github.com/fd1az/optimal-input-radar/internal/httpclient"
	"github.com/fd1az/optimal-input-radar/internal/logger"
	"github.com/fd1az/optimal-input-radar/internal/ratelimit"
)

const (
	tracerName = "github.com/fd1az/optimal-input-radar/business/quoting/infra/openocean"

	// DefaultBaseURL is the public v3 API.
	DefaultBaseURL = "https://open-api.openocean.finance/v3"

	quoteEndpoint = "/%s/quote"
	httpTimeout   = 10 * time.Second
)

var _ app.Quoter = (*Client)(nil)

// Config holds configuration for the OpenOcean client.
type Config struct {
	Timeout time.Duration
	// RateLimitRPM throttles requests client side; zero disables it.
	RateLimitRPM int
	// DefaultGasPrice (wei) is sent when no gas pricer knows the chain.
	DefaultGasPrice *big.Int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:         httpTimeout,
		RateLimitRPM:    60,
		DefaultGasPrice: big.NewInt(5_000_000_000),
	}
}

// Client implements app.Quoter for aggregator venues.
type Client struct {
	config Config
	gas    app.GasPricer
	logger logger.LoggerInterface
	tracer trace.Tracer

	limiter *ratelimit.Limiter
	opts    []httpclient.ClientOption

	// one HTTP client per base URL, built lazily
	mu      sync.Mutex
	clients map[string]httpclient.Client
}

// NewClient creates a new OpenOcean client. gas may be nil.
func NewClient(cfg Config, gas app.GasPricer, log logger.LoggerInterface, opts ...httpclient.ClientOption) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = httpTimeout
	}
	if cfg.DefaultGasPrice == nil {
		cfg.DefaultGasPrice = big.NewInt(5_000_000_000)
	}

	return &Client{
		config:  cfg,
		gas:     gas,
		logger:  log,
		tracer:  otel.Tracer(tracerName),
		limiter: ratelimit.New(cfg.RateLimitRPM),
		opts:    opts,
		clients: make(map[string]httpclient.Client),
	}
}

func (c *Client) httpClient(baseURL string) (httpclient.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if hc, ok := c.clients[baseURL]; ok {
		return hc, nil
	}

	opts := append([]httpclient.ClientOption{
		httpclient.WithProviderName("openocean"),
		httpclient.WithBaseURL(baseURL),
		httpclient.WithRequestTimeout(c.config.Timeout),
		httpclient.WithRateLimiter(c.limiter),
		httpclient.WithHeaders(map[string]string{
			"Accept": "application/json",
		}),
	}, c.opts...)

	hc, err := httpclient.NewInstrumentedClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}
	c.clients[baseURL] = hc
	return hc, nil
}

// Quote asks the aggregator for the output of amountIn. The amount goes out
// in human units with venue.Precision(tokenIn) fractional digits; outAmount
// comes back raw.
func (c *Client) Quote(ctx context.Context, venue domain.Venue, tokenIn, tokenOut *asset.Asset, amountIn decimal.Decimal) (decimal.Decimal, error) {
	ctx, span := c.tracer.Start(ctx, "openocean.quote",
		trace.WithAttributes(
			attribute.String("chain", venue.Chain),
			attribute.String("token_in", tokenIn.Symbol()),
			attribute.String("token_out", tokenOut.Symbol()),
			attribute.String("amount_in", amountIn.String()),
		),
	)
	defer span.End()

	if venue.Kind != domain.KindAggregator {
		return decimal.Zero, apperror.New(apperror.CodeUnsupportedVenue,
			apperror.WithContext(fmt.Sprintf("%s is not an aggregator venue", venue.Kind)))
	}

	hc, err := c.httpClient(venue.BaseURL)
	if err != nil {
		return decimal.Zero, err
	}

	places := venue.Precision(tokenIn)
	amount := asset.Round(amountIn, places).StringFixed(places)

	var result QuoteResponse
	resp, err := hc.NewRequestWithOptions(
		httpclient.WithLabels(
			httpclient.NewLabel("endpoint", "quote"),
			httpclient.NewLabel("chain", venue.Chain),
		),
		httpclient.WithResponseErrorHandler(quoteErrorHandler),
	).
		SetQueryParam("inTokenAddress", tokenIn.AddressHex()).
		SetQueryParam("outTokenAddress", tokenOut.AddressHex()).
		SetQueryParam("amount", amount).
		SetQueryParam("gasPrice", c.gasPrice(ctx, venue.Chain)).
		SetResult(&result).
		Get(ctx, fmt.Sprintf(quoteEndpoint, venue.Chain))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request failed")
		if apperror.IsRateLimited(err) {
			return decimal.Zero, err
		}
		if ctx.Err() != nil {
			return decimal.Zero, ctx.Err()
		}
		return decimal.Zero, apperror.New(apperror.CodeAggregatorAPIError,
			apperror.WithCause(err),
			apperror.WithContext("quote request failed"))
	}

	if resp.IsError() || result.Data == nil || result.Data.OutAmount == "" {
		span.SetStatus(codes.Error, "no quote")
		return decimal.Zero, apperror.New(apperror.CodeInvalidQuote,
			apperror.WithContext(fmt.Sprintf("HTTP %d: missing outAmount", resp.StatusCode)))
	}

	out, err := asset.FromRaw(tokenOut, string(result.Data.OutAmount))
	if err != nil {
		return decimal.Zero, apperror.New(apperror.CodeInvalidQuote, apperror.WithCause(err))
	}

	span.SetAttributes(attribute.String("amount_out", out.ToDecimal().String()))
	span.SetStatus(codes.Ok, "quote received")

	return out.ToDecimal(), nil
}

// gasPrice returns the wei price sent with the quote: the live price when a
// pricer knows the chain, the configured default otherwise.
func (c *Client) gasPrice(ctx context.Context, chain string) string {
	if c.gas != nil {
		if wei, err := c.gas.GasPriceWei(ctx, chain); err == nil && wei != nil && wei.Sign() > 0 {
			return wei.String()
		}
	}
	return c.config.DefaultGasPrice.String()
}

// quoteErrorHandler maps throttling onto the rate limit code. Other statuses
// are left to the caller.
func quoteErrorHandler(statusCode int, body []byte) error {
	if statusCode == http.StatusTooManyRequests {
		return apperror.RateLimited("openocean quote", fmt.Errorf("HTTP 429: %s", string(body)))
	}
	return nil
}
