// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	App        AppConfig              `mapstructure:"app"`
	Chains     map[string]ChainConfig `mapstructure:"chains"`
	Aggregator AggregatorConfig       `mapstructure:"aggregator"`
	OnChain    OnChainConfig          `mapstructure:"onchain"`
	Search     SearchConfig           `mapstructure:"search"`
	Surfaces   []SurfaceConfig        `mapstructure:"surfaces"`
	HTTP       HTTPConfig             `mapstructure:"http"`
	Telemetry  TelemetryConfig        `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
	LogFile     string `mapstructure:"log_file"`
	TUIMode     bool   `mapstructure:"-"` // Set at runtime, not from config file
}

// ChainConfig holds per-chain RPC settings. The map key is the chain key
// used by surfaces ("eth", "arbitrum", ...).
type ChainConfig struct {
	RPCURL    string `mapstructure:"rpc_url"`
	ChainID   uint64 `mapstructure:"chain_id"`
	APIName   string `mapstructure:"api_name"`
	GasOracle bool   `mapstructure:"gas_oracle"`
}

// AggregatorConfig holds the HTTP quote aggregator settings.
type AggregatorConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	DefaultGasPrice string        `mapstructure:"default_gas_price"`
	SettleDelay     time.Duration `mapstructure:"settle_delay"`
	RateLimitRPM    int           `mapstructure:"rate_limit_rpm"`
	Timeout         time.Duration `mapstructure:"timeout"`
	AmountPrecision int32         `mapstructure:"amount_precision"`
	// TraceResponses records aggregator response bodies on request spans.
	TraceResponses  bool          `mapstructure:"trace_responses"`
}

// DefaultGasPriceDecimal returns the fallback gas price in wei.
func (c *AggregatorConfig) DefaultGasPriceDecimal() decimal.Decimal {
	d, err := decimal.NewFromString(c.DefaultGasPrice)
	if err != nil {
		return decimal.NewFromInt(5_000_000_000)
	}
	return d
}

// OnChainConfig holds settings for direct contract quotes.
type OnChainConfig struct {
	CallTimeout     time.Duration `mapstructure:"call_timeout"`
	BreakerFailures uint32        `mapstructure:"breaker_failures"`
	BreakerTimeout  time.Duration `mapstructure:"breaker_timeout"`
}

// SearchConfig holds overrides for the named search presets.
type SearchConfig struct {
	Thorough PresetConfig `mapstructure:"thorough"`
	Fast     PresetConfig `mapstructure:"fast"`
}

// PresetConfig overrides individual search parameters. Nil fields keep the
// preset default.
type PresetConfig struct {
	IterationCap           *int     `mapstructure:"iteration_cap"`
	Tolerance              *float64 `mapstructure:"tolerance"`
	ExpandBoundary         *bool    `mapstructure:"expand_boundary"`
	MaxExpansionDepth      *int     `mapstructure:"max_expansion_depth"`
	MaterialImprovement    *float64 `mapstructure:"material_improvement"`
	MaterialImprovementPct *float64 `mapstructure:"material_improvement_pct"`
	LowerClamp             *float64 `mapstructure:"lower_clamp"`
	CoarseSteps            *int     `mapstructure:"coarse_steps"`
	ProfitThreshold        *float64 `mapstructure:"profit_threshold"`
}

// SurfaceConfig describes one scanning surface: a token pair, the venues to
// round-trip through and the range to search.
type SurfaceConfig struct {
	Key            string        `mapstructure:"key"`
	Name           string        `mapstructure:"name"`
	Chain          string        `mapstructure:"chain"`
	Token0         TokenConfig   `mapstructure:"token0"`
	Token1         TokenConfig   `mapstructure:"token1"`
	Venues         []VenueConfig `mapstructure:"venues"`
	Direction      string        `mapstructure:"direction"`
	Base           string        `mapstructure:"base"`
	Min            float64       `mapstructure:"min"`
	Max            float64       `mapstructure:"max"`
	Mode           string        `mapstructure:"mode"`
	RescanInterval time.Duration `mapstructure:"rescan_interval"`
}

// HasRange reports whether explicit scan bounds were configured.
func (s *SurfaceConfig) HasRange() bool {
	return s.Min != 0 || s.Max != 0
}

// TokenConfig references a token either by symbol (resolved through the
// well-known registry) or inline.
type TokenConfig struct {
	Symbol   string `mapstructure:"symbol"`
	Address  string `mapstructure:"address"`
	Decimals *int   `mapstructure:"decimals"`
}

// Inline reports whether the token carries its own address and precision.
func (t TokenConfig) Inline() bool {
	return t.Address != "" && t.Decimals != nil
}

// VenueConfig describes one liquidity source.
type VenueConfig struct {
	Kind    string `mapstructure:"kind"`
	Address string `mapstructure:"address"`
	Fee     uint32 `mapstructure:"fee"`
	Label   string `mapstructure:"label"`
}

// HTTPConfig holds the control/health server settings.
type HTTPConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	ServiceName    string  `mapstructure:"service_name"`
	Exporter       string  `mapstructure:"exporter"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string  `mapstructure:"otlp_headers"`
	SampleRate     float64 `mapstructure:"sample_rate"`
	PrometheusPort int     `mapstructure:"prometheus_port"`
}

// Load loads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables
	v.SetEnvPrefix("RADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	bindEnvVars(v)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "RADAR_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "RADAR_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "RADAR_LOG_LEVEL", "LOG_LEVEL")
	v.BindEnv("app.log_file", "RADAR_LOG_FILE")

	// Aggregator
	v.BindEnv("aggregator.base_url", "RADAR_AGGREGATOR_URL")
	v.BindEnv("aggregator.settle_delay", "RADAR_SETTLE_DELAY")
	v.BindEnv("aggregator.rate_limit_rpm", "RADAR_RATE_LIMIT_RPM")

	// HTTP
	v.BindEnv("http.port", "RADAR_HTTP_PORT", "PORT")

	// Telemetry
	v.BindEnv("telemetry.enabled", "RADAR_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.service_name", "RADAR_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "RADAR_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "optimal-input-radar")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Aggregator defaults (OpenOcean v3 public API)
	v.SetDefault("aggregator.base_url", "https://open-api.openocean.finance/v3")
	v.SetDefault("aggregator.default_gas_price", "5000000000")
	v.SetDefault("aggregator.settle_delay", "1s")
	v.SetDefault("aggregator.rate_limit_rpm", 60)
	v.SetDefault("aggregator.timeout", "10s")
	v.SetDefault("aggregator.amount_precision", 6)
	v.SetDefault("aggregator.trace_responses", false)

	// On-chain defaults
	v.SetDefault("onchain.call_timeout", "8s")
	v.SetDefault("onchain.breaker_failures", 5)
	v.SetDefault("onchain.breaker_timeout", "30s")

	// HTTP defaults
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.read_timeout", "10s")
	v.SetDefault("http.write_timeout", "10s")

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "optimal-input-radar")
	v.SetDefault("telemetry.exporter", "otlp-grpc")
	v.SetDefault("telemetry.sample_rate", 1.0)
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// normalize fills per-surface defaults that depend on other fields.
func (c *Config) normalize() {
	for k, ch := range c.Chains {
		if ch.APIName == "" {
			ch.APIName = k
		}
		c.Chains[k] = ch
	}
	for i := range c.Surfaces {
		s := &c.Surfaces[i]
		s.Chain = strings.ToLower(s.Chain)
		if s.Name == "" {
			s.Name = s.Key
		}
		if s.Direction == "" {
			s.Direction = "forward"
		}
		if s.Base == "" {
			s.Base = "token0"
		}
		if s.Mode == "" {
			s.Mode = "thorough"
			if len(s.Venues) == 1 && s.Venues[0].Kind == "aggregator" {
				s.Mode = "fast"
			}
		}
		if s.RescanInterval == 0 {
			s.RescanInterval = 90 * time.Second
		}
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if len(c.Surfaces) == 0 {
		return fmt.Errorf("at least one surface is required")
	}
	if c.Aggregator.SettleDelay < 0 {
		return fmt.Errorf("aggregator.settle_delay cannot be negative")
	}
	if c.Aggregator.AmountPrecision < 0 {
		return fmt.Errorf("aggregator.amount_precision cannot be negative")
	}

	seen := make(map[string]struct{}, len(c.Surfaces))
	for i, s := range c.Surfaces {
		if s.Key == "" {
			return fmt.Errorf("surfaces[%d].key is required", i)
		}
		if _, dup := seen[s.Key]; dup {
			return fmt.Errorf("duplicate surface key %q", s.Key)
		}
		seen[s.Key] = struct{}{}

		if err := c.validateSurface(s); err != nil {
			return fmt.Errorf("surface %q: %w", s.Key, err)
		}
	}
	return nil
}

func (c *Config) validateSurface(s SurfaceConfig) error {
	if _, ok := c.Chains[s.Chain]; !ok {
		return fmt.Errorf("chain %q is not configured", s.Chain)
	}
	for _, tok := range []TokenConfig{s.Token0, s.Token1} {
		if tok.Symbol == "" && tok.Address == "" {
			return fmt.Errorf("token requires a symbol or an address")
		}
		if tok.Address != "" && !common.IsHexAddress(tok.Address) {
			return fmt.Errorf("invalid token address: %s", tok.Address)
		}
	}
	if len(s.Venues) < 1 || len(s.Venues) > 2 {
		return fmt.Errorf("expected one aggregator venue or two venues, got %d", len(s.Venues))
	}
	if len(s.Venues) == 1 && s.Venues[0].Kind != "aggregator" {
		return fmt.Errorf("a single venue must be of kind aggregator")
	}
	if s.Direction != "forward" && s.Direction != "reverse" {
		return fmt.Errorf("direction must be forward or reverse, got %q", s.Direction)
	}
	if s.Base != "token0" && s.Base != "token1" {
		return fmt.Errorf("base must be token0 or token1, got %q", s.Base)
	}
	if s.Mode != "thorough" && s.Mode != "fast" {
		return fmt.Errorf("mode must be thorough or fast, got %q", s.Mode)
	}
	if s.HasRange() {
		if math.IsNaN(s.Min) || math.IsNaN(s.Max) || s.Min <= 0 || s.Max <= 0 {
			return fmt.Errorf("range bounds must be positive (min=%v max=%v)", s.Min, s.Max)
		}
	}
	if s.RescanInterval < 0 {
		return fmt.Errorf("rescan_interval cannot be negative")
	}
	return nil
}
