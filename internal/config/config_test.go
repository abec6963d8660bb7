package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const sampleYAML = `
app:
  log_level: debug
chains:
  eth:
    rpc_url: https://eth.example.org
    chain_id: 1
    gas_oracle: true
  arbitrum:
    rpc_url: https://arb.example.org
    chain_id: 42161
search:
  fast:
    material_improvement_pct: 0.01
surfaces:
  - key: weth-usdc-uni-sushi
    chain: ETH
    token0: { symbol: WETH }
    token1: { symbol: USDC }
    venues:
      - { kind: v3, address: "0x61fFE014bA17989E743c5F6cB21bF9697530B21e", fee: 500, label: "Uniswap V3 0.05%" }
      - { kind: v2, address: "0xd9e1cE17f2641f24aE83637ab66a2cca9C378B9F", label: "SushiSwap" }
    base: token1
    min: 1000
    max: 50000
  - key: arb-usdc-weth
    chain: arbitrum
    token0: { symbol: USDC }
    token1: { symbol: WETH }
    venues:
      - { kind: aggregator }
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_Sample(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.App.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.App.LogLevel)
	}
	if cfg.Aggregator.SettleDelay != time.Second {
		t.Errorf("settle delay = %v, want 1s", cfg.Aggregator.SettleDelay)
	}
	if got := cfg.Aggregator.DefaultGasPriceDecimal().String(); got != "5000000000" {
		t.Errorf("default gas price = %s", got)
	}
	if cfg.Chains["arbitrum"].APIName != "arbitrum" {
		t.Errorf("api name should default to chain key, got %q", cfg.Chains["arbitrum"].APIName)
	}
	if len(cfg.Surfaces) != 2 {
		t.Fatalf("surfaces = %d, want 2", len(cfg.Surfaces))
	}

	pair := cfg.Surfaces[0]
	if pair.Chain != "eth" || pair.Mode != "thorough" || pair.Direction != "forward" {
		t.Errorf("pair defaults wrong: %+v", pair)
	}
	if pair.RescanInterval != 90*time.Second {
		t.Errorf("rescan interval = %v", pair.RescanInterval)
	}
	if pair.Venues[0].Fee != 500 {
		t.Errorf("fee = %d", pair.Venues[0].Fee)
	}

	agg := cfg.Surfaces[1]
	if agg.Mode != "fast" {
		t.Errorf("aggregator surface mode = %q, want fast", agg.Mode)
	}
	if agg.HasRange() {
		t.Error("aggregator surface should not have an explicit range")
	}

	if cfg.Search.Fast.MaterialImprovementPct == nil || *cfg.Search.Fast.MaterialImprovementPct != 0.01 {
		t.Error("fast preset override not decoded")
	}
	if cfg.Search.Fast.IterationCap != nil {
		t.Error("unset override should stay nil")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "no surfaces",
			body:    "chains: {eth: {rpc_url: x}}\n",
			wantErr: "at least one surface",
		},
		{
			name: "unknown chain",
			body: `
surfaces:
  - key: a
    chain: solana
    token0: { symbol: USDC }
    token1: { symbol: WETH }
    venues: [{ kind: aggregator }]
`,
			wantErr: "not configured",
		},
		{
			name: "single onchain venue",
			body: `
chains: {eth: {rpc_url: x}}
surfaces:
  - key: a
    chain: eth
    token0: { symbol: USDC }
    token1: { symbol: WETH }
    venues: [{ kind: v2, address: "0xd9e1cE17f2641f24aE83637ab66a2cca9C378B9F" }]
`,
			wantErr: "must be of kind aggregator",
		},
		{
			name: "bad direction",
			body: `
chains: {eth: {rpc_url: x}}
surfaces:
  - key: a
    chain: eth
    token0: { symbol: USDC }
    token1: { symbol: WETH }
    direction: sideways
    venues: [{ kind: aggregator }]
`,
			wantErr: "direction",
		},
		{
			name: "negative range",
			body: `
chains: {eth: {rpc_url: x}}
surfaces:
  - key: a
    chain: eth
    token0: { symbol: USDC }
    token1: { symbol: WETH }
    min: -5
    max: 10
    venues: [{ kind: aggregator }]
`,
			wantErr: "positive",
		},
		{
			name: "duplicate keys",
			body: `
chains: {eth: {rpc_url: x}}
surfaces:
  - { key: a, chain: eth, token0: { symbol: USDC }, token1: { symbol: WETH }, venues: [{ kind: aggregator }] }
  - { key: a, chain: eth, token0: { symbol: USDC }, token1: { symbol: DAI }, venues: [{ kind: aggregator }] }
`,
			wantErr: "duplicate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
