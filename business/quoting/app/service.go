package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/fd1az/optimal-input-radar/business/quoting/domain"
	"github.com/fd1az/optimal-input-radar/internal/apperror"
	"github.com/fd1az/optimal-input-radar/internal/asset"
	"github.com/fd1az/optimal-input-radar/internal/logger"
)

const meterName = "github.com/fd1az/optimal-input-radar/business/quoting/app"

// Outcome labels recorded on the quotes counter.
const (
	outcomeOK          = "ok"
	outcomeSoft        = "soft_failure"
	outcomeRateLimited = "rate_limited"
	outcomeCancelled   = "cancelled"
)

type serviceMetrics struct {
	quotes  metric.Int64Counter
	latency metric.Float64Histogram
}

// QuotingService dispatches quotes to the adapter registered for a venue's
// kind and classifies their failures. Cancellation and rate limiting reach
// the caller unchanged; every other failure resolves to a zero output.
type QuotingService struct {
	quoters map[domain.Kind]Quoter
	logger  logger.LoggerInterface
	metrics *serviceMetrics
}

// NewQuotingService creates an empty service. Adapters are added with Register.
func NewQuotingService(log logger.LoggerInterface) (*QuotingService, error) {
	s := &QuotingService{
		quoters: make(map[domain.Kind]Quoter),
		logger:  log,
	}

	meter := otel.Meter(meterName)
	quotes, err := meter.Int64Counter(
		"quotes_total",
		metric.WithDescription("Quote requests by venue kind and outcome"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"quote_latency_ms",
		metric.WithDescription("Quote latency in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}
	s.metrics = &serviceMetrics{quotes: quotes, latency: latency}

	return s, nil
}

// Register routes the given kinds to q.
func (s *QuotingService) Register(q Quoter, kinds ...domain.Kind) {
	for _, k := range kinds {
		s.quoters[k] = q
	}
}

// Supports reports whether an adapter is registered for kind.
func (s *QuotingService) Supports(kind domain.Kind) bool {
	_, ok := s.quoters[kind]
	return ok
}

// Quote returns the output of swapping amountIn through venue. A zero or
// negative input is answered with zero without calling the venue.
func (s *QuotingService) Quote(ctx context.Context, venue domain.Venue, tokenIn, tokenOut *asset.Asset, amountIn decimal.Decimal) (decimal.Decimal, error) {
	q, ok := s.quoters[venue.Kind]
	if !ok {
		return decimal.Zero, apperror.New(apperror.CodeUnsupportedVenue,
			apperror.WithContext(fmt.Sprintf("no quoter for %s", venue.Kind)))
	}
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	if !amountIn.IsPositive() {
		return decimal.Zero, nil
	}

	start := time.Now()
	out, err := q.Quote(ctx, venue, tokenIn, tokenOut, amountIn)
	outcome := outcomeOK

	switch {
	case ctx.Err() != nil:
		// The caller gave up; whatever the adapter returned is irrelevant.
		outcome = outcomeCancelled
		out, err = decimal.Zero, ctx.Err()
	case err != nil && apperror.IsRateLimited(err):
		outcome = outcomeRateLimited
		out = decimal.Zero
	case err != nil:
		outcome = outcomeSoft
		s.logger.Debug(ctx, "quote failed, treating as zero output",
			"venue", venue.String(),
			"token_in", tokenIn.Symbol(),
			"token_out", tokenOut.Symbol(),
			"amount_in", amountIn.String(),
			"error", err)
		out, err = decimal.Zero, nil
	case out.IsNegative():
		outcome = outcomeSoft
		out = decimal.Zero
	}

	attrs := metric.WithAttributes(
		attribute.String("kind", string(venue.Kind)),
		attribute.String("outcome", outcome),
	)
	s.metrics.quotes.Add(ctx, 1, attrs)
	s.metrics.latency.Record(ctx, float64(time.Since(start).Milliseconds()), attrs)

	return out, err
}
