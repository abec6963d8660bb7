package app

import (
	"context"
	"math/big"
	"sort"

	"github.com/fd1az/optimal-input-radar/internal/apperror"
)

// BlockchainService routes gas price lookups to the per-chain oracles.
type BlockchainService struct {
	oracles map[string]GasOracle
}

// NewBlockchainService creates a new BlockchainService.
func NewBlockchainService(oracles ...GasOracle) *BlockchainService {
	m := make(map[string]GasOracle, len(oracles))
	for _, o := range oracles {
		m[o.Chain()] = o
	}
	return &BlockchainService{oracles: m}
}

// GasPriceWei returns the current gas price of chain in wei. Chains without
// an oracle yield CodeChainNotConfigured so callers can fall back to a
// static price.
func (s *BlockchainService) GasPriceWei(ctx context.Context, chain string) (*big.Int, error) {
	o, ok := s.oracles[chain]
	if !ok {
		return nil, apperror.New(apperror.CodeChainNotConfigured,
			apperror.WithContext("no gas oracle for "+chain))
	}
	price, err := o.GetGasPrice(ctx)
	if err != nil {
		return nil, err
	}
	return price.Wei, nil
}

// Chains lists the chains with a gas oracle, sorted.
func (s *BlockchainService) Chains() []string {
	out := make([]string, 0, len(s.oracles))
	for c := range s.oracles {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Check reports whether chain's RPC answers, for health endpoints.
func (s *BlockchainService) Check(ctx context.Context, chain string) (bool, string) {
	if _, err := s.GasPriceWei(ctx, chain); err != nil {
		return false, err.Error()
	}
	return true, ""
}
