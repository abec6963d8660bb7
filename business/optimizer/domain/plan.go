package domain

import (
	"fmt"
	"strings"
	"time"

	quoting "github.com/fd1az/optimal-input-radar/business/quoting/domain"
	"github.com/fd1az/optimal-input-radar/internal/apperror"
	"github.com/fd1az/optimal-input-radar/internal/asset"
)

// Direction orders the two venues of a pair surface.
type Direction string

const (
	// Forward buys on venue A and sells on venue B.
	Forward Direction = "forward"
	// Reverse buys on venue B and sells on venue A.
	Reverse Direction = "reverse"
)

// ParseDirection parses a direction. "a->b" and "b->a" are accepted too.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "forward", "a->b", "a→b":
		return Forward, nil
	case "reverse", "b->a", "b→a":
		return Reverse, nil
	}
	return "", apperror.New(apperror.CodeConfigurationError,
		apperror.WithContext(fmt.Sprintf("unknown direction %q", s)))
}

// Flip returns the other direction.
func (d Direction) Flip() Direction {
	if d == Reverse {
		return Forward
	}
	return Reverse
}

// Base selects which token of a surface is the trade input.
type Base string

const (
	BaseToken0 Base = "token0"
	BaseToken1 Base = "token1"
)

// ParseBase parses a base selector.
func ParseBase(s string) (Base, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "token0":
		return BaseToken0, nil
	case "token1":
		return BaseToken1, nil
	}
	return "", apperror.New(apperror.CodeConfigurationError,
		apperror.WithContext(fmt.Sprintf("unknown base %q", s)))
}

// Flip returns the other base.
func (b Base) Flip() Base {
	if b == BaseToken1 {
		return BaseToken0
	}
	return BaseToken1
}

// Plan is one scanning surface: two tokens, two venues (the same aggregator
// venue twice for an aggregator hop) and the current selections.
type Plan struct {
	Key    string
	Name   string
	Chain  string
	Token0 *asset.Asset
	Token1 *asset.Asset
	VenueA quoting.Venue
	VenueB quoting.Venue

	Direction Direction
	Base      Base
	// Range is nil when bounds come from DefaultRange or AutoRange.
	Range *ScanRange

	Mode           Mode
	Params         SearchParams
	RescanInterval time.Duration
}

// Leg is one quote of a round trip.
type Leg struct {
	Venue quoting.Venue
	In    *asset.Asset
	Out   *asset.Asset
}

// RoundTrip is the resolved pair of legs for the current selections.
type RoundTrip struct {
	Out  Leg
	Back Leg
}

// BaseToken returns the input token.
func (rt RoundTrip) BaseToken() *asset.Asset { return rt.Out.In }

// CounterToken returns the intermediate token.
func (rt RoundTrip) CounterToken() *asset.Asset { return rt.Out.Out }

// Validate checks the configuration errors that must block a scan.
func (p Plan) Validate() error {
	if p.Token0 == nil || p.Token1 == nil {
		return apperror.New(apperror.CodeConfigurationError,
			apperror.WithContext(p.Key+": both tokens are required"))
	}
	if asset.SameAddress(p.Token0.AddressHex(), p.Token1.AddressHex()) {
		return apperror.New(apperror.CodeSameToken,
			apperror.WithContext(fmt.Sprintf("%s: %s and %s are the same token", p.Key, p.Token0.Symbol(), p.Token1.Symbol())))
	}
	if err := p.VenueA.Validate(); err != nil {
		return err
	}
	if err := p.VenueB.Validate(); err != nil {
		return err
	}
	if p.Range != nil {
		if err := p.Range.Validate(); err != nil {
			return err
		}
	}
	return p.Params.Validate()
}

// RoundTrip resolves the legs for the plan's direction and base.
func (p Plan) RoundTrip() RoundTrip {
	base, counter := p.Token0, p.Token1
	if p.Base == BaseToken1 {
		base, counter = counter, base
	}
	first, second := p.VenueA, p.VenueB
	if p.Direction == Reverse {
		first, second = second, first
	}
	return RoundTrip{
		Out:  Leg{Venue: first, In: base, Out: counter},
		Back: Leg{Venue: second, In: counter, Out: base},
	}
}

// ScanRange returns the configured range, or a default for the surface.
func (p Plan) ScanRange() ScanRange {
	if p.Range != nil {
		return *p.Range
	}
	if p.VenueA.Kind == quoting.KindAggregator && p.VenueB.Kind == quoting.KindAggregator {
		if r, ok := DefaultRange(p.Chain); ok {
			return r
		}
	}
	return AutoRange(p.RoundTrip().BaseToken(), p.Base != BaseToken1)
}

// IsAggregator reports whether both legs go through the aggregator.
func (p Plan) IsAggregator() bool {
	return p.VenueA.Kind == quoting.KindAggregator && p.VenueB.Kind == quoting.KindAggregator
}
