package asset

import (
	"fmt"
	"strings"
)

// Chain IDs
const (
	ChainIDEthereum = 1
	ChainIDOptimism = 10
	ChainIDBSC      = 56
	ChainIDPolygon  = 137
	ChainIDBase     = 8453
	ChainIDArbitrum = 42161
)

// Chain describes a network the radar can scan. Key is the short name used
// in configuration and by the aggregator API path.
type Chain struct {
	Key     string
	Name    string
	APIName string
	ID      uint64
}

var chains = []Chain{
	{Key: "eth", Name: "Ethereum", APIName: "eth", ID: ChainIDEthereum},
	{Key: "bsc", Name: "BNB Chain", APIName: "bsc", ID: ChainIDBSC},
	{Key: "arbitrum", Name: "Arbitrum", APIName: "arbitrum", ID: ChainIDArbitrum},
	{Key: "optimism", Name: "Optimism", APIName: "optimism", ID: ChainIDOptimism},
	{Key: "polygon", Name: "Polygon", APIName: "polygon", ID: ChainIDPolygon},
	{Key: "base", Name: "Base", APIName: "base", ID: ChainIDBase},
}

// Chains returns the well-known chains in display order.
func Chains() []Chain {
	out := make([]Chain, len(chains))
	copy(out, chains)
	return out
}

// LookupChain finds a well-known chain by key ("eth", "ethereum", "bnb" and
// "bsc" are all accepted).
func LookupChain(key string) (Chain, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	switch k {
	case "ethereum", "mainnet":
		k = "eth"
	case "bnb":
		k = "bsc"
	}
	for _, c := range chains {
		if c.Key == k {
			return c, true
		}
	}
	return Chain{}, false
}

type tokenDef struct {
	symbol   string
	address  string
	decimals int
}

var tokenLists = map[uint64][]tokenDef{
	ChainIDEthereum: {
		{"USDT", "0xdac17f958d2ee523a2206206994597c13d831ec7", 6},
		{"USDC", "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48", 6},
		{"DAI", "0x6b175474e89094c44da98b954eedeac495271d0f", 18},
		{"WETH", "0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2", 18},
		{"WBTC", "0x2260fac5e5542a773aa44fbcfedf7c193bc2c599", 8},
		{"LINK", "0x514910771af9ca656af840dff83e8264ecf986ca", 18},
		{"UNI", "0x1f9840a85d5af5bf1d1762f925bdaddc4201f984", 18},
		{"AAVE", "0x7fc66500c84a76ad7e9c93437bfc5ac33e2ddae9", 18},
	},
	ChainIDBSC: {
		{"USDT", "0x55d398326f99059ff775485246999027b3197955", 18},
		{"USDC", "0x8ac76a51cc950d9822d68b83fe1ad97b32cd580d", 18},
		{"BUSD", "0xe9e7cea3dedca5984780bafc599bd69add087d56", 18},
		{"WBNB", "0xbb4cdb9cbd36b01bd1cbaebf2de08d9173bc095c", 18},
		{"BTCB", "0x7130d2a12b9bcbfae4f2634d864a1ee1ce3ead9c", 18},
		{"ETH", "0x2170ed0880ac9a755fd29b2688956bd959f933f8", 18},
		{"CAKE", "0x0e09fabb73bd3ade0a17ecc321fd13a19e81ce82", 18},
		{"XVS", "0xcf6bb5389c92bdad6a151c7b6d2e631ee6024d4f", 18},
	},
	ChainIDArbitrum: {
		{"USDT", "0xfd086bc7cd5c481dcc9c85ebe478a1c0b69fcbb9", 6},
		{"USDC", "0xaf88d065e77c8cc2239327c5edb3a432268e5831", 6},
		{"DAI", "0xda10009cbd5d07dd0cecc66161fc93d7c9000da1", 18},
		{"WETH", "0x82af49447d8a07e3bd95bd0d56f35241523fbab1", 18},
		{"ARB", "0x912ce59144191c1204e64559fe8253a0e49e6548", 18},
		{"GMX", "0xfc5a1a6eb076a2c7ad06ed22c90d7e710e35ad0a", 18},
		{"LINK", "0xf97f4df75117a78c1a5a0dbb814af92458539fb4", 18},
	},
	ChainIDOptimism: {
		{"USDT", "0x94b008aa00579c1307b0ef2c499ad98a8ce58e58", 6},
		{"USDC", "0x0b2c639c533813f4aa9d7837caf62653d097ff85", 6},
		{"DAI", "0xda10009cbd5d07dd0cecc66161fc93d7c9000da1", 18},
		{"WETH", "0x4200000000000000000000000000000000000006", 18},
		{"OP", "0x4200000000000000000000000000000000000042", 18},
	},
	ChainIDPolygon: {
		{"USDT", "0xc2132d05d31c914a87c6611c10748aeb04b58e8f", 6},
		{"USDC", "0x3c499c542cef5e3811e1192ce70d8cc03d5c3359", 6},
		{"DAI", "0x8f3cf7ad23cd3cadbd9735aff958023239c6a063", 18},
		{"WMATIC", "0x0d500b1d8e8ef31e21c99d1db9a6444d3adf1270", 18},
		{"WETH", "0x7ceb23fd6bc0add59e62ac25578270cff1b9f619", 18},
		{"LINK", "0xb0897686c545045afc77cf20ec7a532e3120e0f1", 18},
		{"UNI", "0xb33eaad8d922b1083446dc23f610c2567fb5180f", 18},
	},
	ChainIDBase: {
		{"USDC", "0x833589fcd6edb6e08f4c7c32d4f71b54bda02913", 6},
		{"USDT", "0xfde4C96c8593536E31F229EA8f37b2ADa2699bb2", 6},
		{"USDbC", "0xd9aaec86b65d86f6a7b5b1b0c42ffa531710b6ca", 6},
		{"DAI", "0x50c5725949a6f0c72e6c4a641f24049a917db0cb", 18},
		{"WETH", "0x4200000000000000000000000000000000000006", 18},
		{"cbETH", "0x2Ae3F1Ec7F1F5012CFEab0185bfc7aa3cf0DEc22", 18},
		{"DEGEN", "0x4ed4E862860beD51a9570b96d89aF5E1B0Efefed", 18},
	},
}

// stableSymbols are bases whose profit is already in dollar terms.
var stableSymbols = map[string]struct{}{
	"USDC":   {},
	"DAI":    {},
	"USDT":   {},
	"USDe":   {},
	"crvUSD": {},
}

// IsStable reports whether the symbol is a dollar stablecoin.
func IsStable(symbol string) bool {
	_, ok := stableSymbols[symbol]
	return ok
}

// DefaultRegistry returns a registry pre-populated with the well-known tokens
// of every well-known chain.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for chainID, defs := range tokenLists {
		for _, d := range defs {
			a, err := Parse(chainID, d.address, d.symbol, d.decimals)
			if err != nil {
				panic(fmt.Sprintf("asset: bad well-known token: %v", err))
			}
			r.Register(a)
		}
	}
	return r
}
