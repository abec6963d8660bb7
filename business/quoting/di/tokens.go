// Package di contains dependency injection tokens for the quoting context.
package di

import (
	"github.com/fd1az/optimal-input-radar/business/quoting/app"
	"github.com/fd1az/optimal-input-radar/business/quoting/infra/onchain"
	"github.com/fd1az/optimal-input-radar/business/quoting/infra/openocean"
	"github.com/fd1az/optimal-input-radar/internal/di"
)

// Public service tokens - exposed to other modules
var (
	QuotingService = di.NewToken[*app.QuotingService]("quoting.QuotingService")
)

// Private dependency tokens - internal to quoting module
var (
	OnChainQuoter   = di.NewToken[*onchain.Quoter]("quoting:onchainQuoter")
	AggregatorQuote = di.NewToken[*openocean.Client]("quoting:aggregator")
)

// Helper functions for type-safe access
func GetQuotingService(c di.ServiceRegistry) *app.QuotingService {
	return di.GetToken(c, QuotingService)
}

func GetOnChainQuoter(c di.ServiceRegistry) *onchain.Quoter {
	return di.GetToken(c, OnChainQuoter)
}

func GetAggregator(c di.ServiceRegistry) *openocean.Client {
	return di.GetToken(c, AggregatorQuote)
}
