// Package domain contains the optimizer's value types: scan ranges, search
// parameters, surface plans and scan results.
package domain

import (
	"fmt"
	"math"

	"github.com/fd1az/optimal-input-radar/internal/apperror"
)

// ScanRange is the input bracket of a scan in base-token units.
// Invariant: 0 < Min < Max, both finite.
type ScanRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// NewScanRange validates the bounds. Swapped bounds are normalized.
func NewScanRange(min, max float64) (ScanRange, error) {
	for _, v := range []float64{min, max} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return ScanRange{}, apperror.New(apperror.CodeInvalidScanRange,
				apperror.WithContext(fmt.Sprintf("bounds must be positive and finite, got [%g, %g]", min, max)))
		}
	}
	if min > max {
		min, max = max, min
	}
	if min == max {
		return ScanRange{}, apperror.New(apperror.CodeInvalidScanRange,
			apperror.WithContext(fmt.Sprintf("empty range [%g, %g]", min, max)))
	}
	return ScanRange{Min: min, Max: max}, nil
}

// Validate re-checks the invariant for ranges built as literals.
func (r ScanRange) Validate() error {
	_, err := NewScanRange(r.Min, r.Max)
	if err == nil && r.Min > r.Max {
		return apperror.New(apperror.CodeInvalidScanRange, apperror.WithContext("min above max"))
	}
	return err
}

// Width returns Max - Min.
func (r ScanRange) Width() float64 {
	return r.Max - r.Min
}

// Points returns steps+1 evenly spaced inputs from Min to Max inclusive.
func (r ScanRange) Points(steps int) []float64 {
	if steps < 1 {
		steps = 1
	}
	out := make([]float64, steps+1)
	step := r.Width() / float64(steps)
	for i := range out {
		out[i] = r.Min + float64(i)*step
	}
	out[steps] = r.Max
	return out
}

func (r ScanRange) String() string {
	return fmt.Sprintf("[%g, %g]", r.Min, r.Max)
}
