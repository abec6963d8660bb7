package asset

import (
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

// Common errors
var (
	ErrNilAsset        = errors.New("asset: nil asset")
	ErrNilRaw          = errors.New("asset: nil raw value")
	ErrNegativeAmount  = errors.New("asset: negative amount")
	ErrTooManyDecimals = errors.New("asset: too many decimal places for asset")
	ErrNotFinite       = errors.New("asset: amount is not a finite number")
)

// Amount is an immutable Value Object representing a quantity of an asset.
// The raw value is always in the smallest unit.
type Amount struct {
	raw   *big.Int
	asset *Asset
}

// NewAmount creates a new Amount from a raw big.Int value.
func NewAmount(asset *Asset, raw *big.Int) Amount {
	if asset == nil {
		panic(ErrNilAsset)
	}
	if raw == nil {
		panic(ErrNilRaw)
	}
	if raw.Sign() < 0 {
		panic(ErrNegativeAmount)
	}

	return Amount{
		raw:   new(big.Int).Set(raw),
		asset: asset,
	}
}

// Zero creates a zero Amount for the given asset.
func Zero(asset *Asset) Amount {
	return NewAmount(asset, big.NewInt(0))
}

// Raw returns a copy of the raw big.Int value.
func (a Amount) Raw() *big.Int {
	if a.raw == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(a.raw)
}

// Asset returns the asset this amount is denominated in.
func (a Amount) Asset() *Asset {
	return a.asset
}

// IsZero returns true if the amount is zero.
func (a Amount) IsZero() bool {
	return a.raw == nil || a.raw.Sign() == 0
}

// ToDecimal converts the raw amount into human units.
func (a Amount) ToDecimal() decimal.Decimal {
	if a.raw == nil || a.asset == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.raw, -int32(a.asset.Decimals()))
}

// String returns a human-readable representation (e.g., "1.5 WETH").
func (a Amount) String() string {
	if a.asset == nil {
		return "0 ???"
	}
	return fmt.Sprintf("%s %s", a.ToDecimal().String(), a.asset.Symbol())
}

// ParseDecimal creates an Amount from a human-unit decimal. It refuses values
// with more fractional digits than the asset supports; call Round first.
func ParseDecimal(asset *Asset, d decimal.Decimal) (Amount, error) {
	if asset == nil {
		return Amount{}, ErrNilAsset
	}
	if d.IsNegative() {
		return Amount{}, ErrNegativeAmount
	}

	scaled := d.Shift(int32(asset.Decimals()))
	if !scaled.Equal(scaled.Truncate(0)) {
		return Amount{}, ErrTooManyDecimals
	}

	return NewAmount(asset, scaled.BigInt()), nil
}

// FromRaw converts a raw integer string (as returned by HTTP APIs) into an Amount.
func FromRaw(asset *Asset, raw string) (Amount, error) {
	if asset == nil {
		return Amount{}, ErrNilAsset
	}
	v, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		return Amount{}, fmt.Errorf("asset: invalid raw amount %q", raw)
	}
	if v.Sign() < 0 {
		return Amount{}, ErrNegativeAmount
	}
	return NewAmount(asset, v), nil
}

// Precision returns the number of fractional digits used when sending amounts
// of this asset to a venue, capped at maxPlaces when positive.
func Precision(asset *Asset, maxPlaces int32) int32 {
	places := int32(asset.Decimals())
	if maxPlaces > 0 && places > maxPlaces {
		return maxPlaces
	}
	return places
}

// Round rounds a human-unit value to places fractional digits (half away
// from zero). Rounding an already rounded value is a no-op.
func Round(d decimal.Decimal, places int32) decimal.Decimal {
	return d.Round(places)
}

// RoundFloat converts a float input size into a decimal rounded to places.
func RoundFloat(x float64, places int32) (decimal.Decimal, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return decimal.Zero, ErrNotFinite
	}
	return Round(decimal.NewFromFloat(x), places), nil
}
