// Package domain contains the venue model for the quoting context.
package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/fd1az/optimal-input-radar/internal/apperror"
	"github.com/fd1az/optimal-input-radar/internal/asset"
)

// Kind selects how a venue is quoted.
type Kind string

const (
	// KindV2 is a constant-product router answering getAmountsOut.
	KindV2 Kind = "v2"
	// KindV3 is a concentrated-liquidity quoter returning a single amount.
	KindV3 Kind = "v3"
	// KindCV3 is a concentrated-liquidity quoter returning (amountOut, uint16).
	KindCV3 Kind = "cv3"
	// KindPCV3 is a QuoterV2-style contract taking a params struct.
	KindPCV3 Kind = "pcv3"
	// KindAggregator is an HTTP quote API.
	KindAggregator Kind = "aggregator"
)

// ParseKind parses a venue kind, case-insensitively.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindV2, KindV3, KindCV3, KindPCV3, KindAggregator:
		return k, nil
	}
	return "", apperror.New(apperror.CodeInvalidVenue,
		apperror.WithContext(fmt.Sprintf("unknown venue kind %q", s)))
}

// Concentrated reports whether the kind needs a fee tier.
func (k Kind) Concentrated() bool {
	return k == KindV3 || k == KindCV3 || k == KindPCV3
}

// OnChain reports whether the kind is quoted by a contract call.
func (k Kind) OnChain() bool {
	return k == KindV2 || k.Concentrated()
}

// Venue describes one quoting source. For on-chain kinds Address is the
// router (v2) or quoter contract; the aggregator uses BaseURL and Chain.
type Venue struct {
	Kind    Kind
	Address common.Address
	Fee     uint32 // hundredths of a bip
	BaseURL string
	Chain   string
	Label   string

	// MaxPrecision caps the fractional digits of amounts sent to the
	// venue. Zero means the token's own decimals.
	MaxPrecision int32
}

// Validate checks the kind specific invariants.
func (v Venue) Validate() error {
	invalid := func(msg string) error {
		return apperror.New(apperror.CodeInvalidVenue,
			apperror.WithContext(fmt.Sprintf("%s: %s", v, msg)))
	}

	switch {
	case v.Kind.OnChain():
		if v.Address == (common.Address{}) {
			return invalid("contract address is required")
		}
		if v.Kind.Concentrated() && v.Fee == 0 {
			return invalid("fee tier is required")
		}
		if !v.Kind.Concentrated() && v.Fee != 0 {
			return invalid("fee tier only applies to concentrated liquidity")
		}
	case v.Kind == KindAggregator:
		if v.BaseURL == "" || v.Chain == "" {
			return invalid("aggregator needs a base url and chain")
		}
		if v.Fee != 0 {
			return invalid("fee tier only applies to concentrated liquidity")
		}
	default:
		return invalid("unknown kind")
	}
	return nil
}

// Precision returns the number of fractional digits an amount of a must be
// rounded to before it is sent to this venue.
func (v Venue) Precision(a *asset.Asset) int32 {
	return asset.Precision(a, v.MaxPrecision)
}

func (v Venue) String() string {
	if v.Label != "" {
		return v.Label
	}
	if v.Kind == KindAggregator {
		return fmt.Sprintf("aggregator/%s", v.Chain)
	}
	if v.Kind.Concentrated() {
		return fmt.Sprintf("%s@%s/%d", v.Kind, v.Address.Hex(), v.Fee)
	}
	return fmt.Sprintf("%s@%s", v.Kind, v.Address.Hex())
}
