// Package asset models ERC20 token metadata and amounts.
package asset

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// MaxDecimals guards against misconfigured token precision.
const MaxDecimals = 30

// Asset is an ERC20 token on a specific chain.
// The symbol is NOT identity - just metadata for display.
type Asset struct {
	chainID  uint64
	address  common.Address
	symbol   string
	decimals uint8
}

// NewAsset creates a new Asset with the given parameters.
func NewAsset(chainID uint64, address common.Address, symbol string, decimals uint8) *Asset {
	if symbol == "" {
		panic("asset: empty symbol")
	}
	if decimals > MaxDecimals {
		panic("asset: suspicious decimals (>30)")
	}

	return &Asset{
		chainID:  chainID,
		address:  address,
		symbol:   symbol,
		decimals: decimals,
	}
}

// Parse builds an Asset from configuration values, validating the address
// and precision instead of panicking.
func Parse(chainID uint64, address, symbol string, decimals int) (*Asset, error) {
	if symbol == "" {
		return nil, fmt.Errorf("asset: empty symbol for %s", address)
	}
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("asset: invalid address %q for %s", address, symbol)
	}
	if decimals < 0 || decimals > MaxDecimals {
		return nil, fmt.Errorf("asset: invalid decimals %d for %s", decimals, symbol)
	}
	return NewAsset(chainID, common.HexToAddress(address), symbol, uint8(decimals)), nil
}

// Symbol returns the ticker symbol (e.g., "WETH", "USDC").
func (a *Asset) Symbol() string {
	return a.symbol
}

// Decimals returns the number of decimal places.
func (a *Asset) Decimals() uint8 {
	return a.decimals
}

// ChainID returns the chain the token lives on.
func (a *Asset) ChainID() uint64 {
	return a.chainID
}

// Address returns the token contract address.
func (a *Asset) Address() common.Address {
	return a.address
}

// AddressHex returns the lower-case hex address used in HTTP queries.
func (a *Asset) AddressHex() string {
	return strings.ToLower(a.address.Hex())
}

// String returns a human-readable representation.
func (a *Asset) String() string {
	return a.symbol
}

// Equals compares two assets by chain and address. Addresses are parsed into
// bytes, so hex casing never matters.
func (a *Asset) Equals(other *Asset) bool {
	if a == nil || other == nil {
		return a == other
	}
	return a.chainID == other.chainID && a.address == other.address
}

// SameAddress reports whether two hex strings denote the same address.
func SameAddress(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
