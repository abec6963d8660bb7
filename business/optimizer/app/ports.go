// Package app runs optimal-input scans: the profit function, the coarse
// scanner, the golden-section refiner and the per-surface orchestration.
package app

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fd1az/optimal-input-radar/business/optimizer/domain"
	quoting "github.com/fd1az/optimal-input-radar/business/quoting/domain"
	"github.com/fd1az/optimal-input-radar/internal/asset"
)

// QuoteOracle quotes one swap in human units. Errors it returns are either
// cancellation or a rate limit; soft failures come back as a zero output.
type QuoteOracle interface {
	Quote(ctx context.Context, venue quoting.Venue, tokenIn, tokenOut *asset.Asset, amountIn decimal.Decimal) (decimal.Decimal, error)
}

// ProfitFunc returns the round-trip profit for input x in base-token units.
// -Inf marks a point that could not be quoted.
type ProfitFunc func(ctx context.Context, x float64) (float64, error)

// ProgressFunc receives overall scan progress in percent.
type ProgressFunc func(percent int)

// EventType names a scan lifecycle event.
type EventType string

const (
	EventScanStarted EventType = "scan_started"
	EventProgress    EventType = "progress"
	EventEvaluation  EventType = "evaluation"
	EventResult      EventType = "result"
	EventCancelled   EventType = "cancelled"
	EventRateLimited EventType = "rate_limited"
	EventFailed      EventType = "failed"
)

// Event is what reporters receive from surfaces.
type Event struct {
	Type     EventType               `json:"type"`
	Surface  string                  `json:"surface"`
	Session  string                  `json:"session,omitempty"`
	Progress int                     `json:"progress,omitempty"`
	Point    *domain.EvaluationPoint `json:"point,omitempty"`
	Result   *domain.ScanResult      `json:"result,omitempty"`
	Error    string                  `json:"error,omitempty"`
	At       time.Time               `json:"at"`
}

// Reporter displays scan events. Implementations must not block.
type Reporter interface {
	Report(ev Event)
}

// Reporters fans events out to several reporters.
type Reporters []Reporter

// Report forwards ev to every reporter.
func (rs Reporters) Report(ev Event) {
	for _, r := range rs {
		r.Report(ev)
	}
}
