package domain

import (
	"github.com/fd1az/optimal-input-radar/internal/asset"
)

// per-chain aggregator ranges, in base-token units
var defaultRanges = map[string]ScanRange{
	"eth":      {Min: 10, Max: 3000},
	"bsc":      {Min: 100, Max: 100000},
	"arbitrum": {Min: 100, Max: 80000},
	"optimism": {Min: 100, Max: 80000},
	"polygon":  {Min: 100, Max: 100000},
	"base":     {Min: 100, Max: 60000},
}

// DefaultRange returns the aggregator range for a chain key.
func DefaultRange(chain string) (ScanRange, bool) {
	if c, ok := asset.LookupChain(chain); ok {
		chain = c.Key
	}
	r, ok := defaultRanges[chain]
	return r, ok
}

// AutoRange picks bounds for a pair surface without explicit ones: stable
// bases scan in dollars, volatile bases in whole tokens.
func AutoRange(base *asset.Asset, baseIsToken0 bool) ScanRange {
	switch {
	case base != nil && asset.IsStable(base.Symbol()):
		return ScanRange{Min: 1000, Max: 200000}
	case baseIsToken0:
		return ScanRange{Min: 0.5, Max: 100}
	default:
		return ScanRange{Min: 0.1, Max: 50}
	}
}
