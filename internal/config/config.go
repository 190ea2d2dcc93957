// Package config loads and validates the gateway configuration. Values
// come from a YAML file; secrets can be overridden from the environment
// so credentials never need to live on disk.
package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/fairview-lab/terminal-gateway/internal/types"
	"github.com/fairview-lab/terminal-gateway/pkg/errors"
)

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Address string `yaml:"address" json:"address" jsonschema:"title=Listen Address,description=host:port the HTTP server binds to" validate:"required"`
	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" json:"shutdown_timeout" jsonschema:"title=Shutdown Timeout"`
}

// ProviderConfig selects and configures the market data provider.
type ProviderConfig struct {
	// Type is the provider backend: polygon or synthetic.
	Type string `yaml:"type" json:"type" jsonschema:"title=Provider Type,enum=polygon,enum=synthetic" validate:"required,oneof=polygon synthetic"`
	// APIKey authenticates against the remote provider. Overridable via
	// POLYGON_API_KEY.
	APIKey string `yaml:"api_key" json:"api_key" jsonschema:"title=API Key"`
	// SyntheticSeed seeds the synthetic generator. Zero means a
	// time-derived seed.
	SyntheticSeed int64 `yaml:"synthetic_seed" json:"synthetic_seed" jsonschema:"title=Synthetic Seed"`
	// FallbackToSynthetic serves synthetic data when the remote provider
	// fails.
	FallbackToSynthetic bool `yaml:"fallback_to_synthetic" json:"fallback_to_synthetic" jsonschema:"title=Fallback To Synthetic"`
}

// BrokerConfig selects and configures the execution backend.
type BrokerConfig struct {
	// Type is the broker backend: binance or paper.
	Type string `yaml:"type" json:"type" jsonschema:"title=Broker Type,enum=binance,enum=paper" validate:"required,oneof=binance paper"`
	// APIKey and SecretKey authenticate against Binance. Overridable via
	// BINANCE_API_KEY / BINANCE_SECRET_KEY.
	APIKey     string `yaml:"api_key" json:"api_key" jsonschema:"title=API Key"`
	SecretKey  string `yaml:"secret_key" json:"secret_key" jsonschema:"title=Secret Key"`
	BaseURL    string `yaml:"base_url" json:"base_url" jsonschema:"title=Base URL"`
	UseTestnet bool   `yaml:"use_testnet" json:"use_testnet" jsonschema:"title=Use Testnet"`
	// PaperStartingCash seeds the paper broker.
	PaperStartingCash float64 `yaml:"paper_starting_cash" json:"paper_starting_cash" jsonschema:"title=Paper Starting Cash"`
}

// SettlementConfig configures the transaction settlement backend.
type SettlementConfig struct {
	// Endpoint is the settlement service URL. Empty routes settlements
	// to the paper broker.
	Endpoint string `yaml:"endpoint" json:"endpoint" jsonschema:"title=Settlement Endpoint"`
	// APIKey is overridable via SETTLEMENT_API_KEY.
	APIKey  string        `yaml:"api_key" json:"api_key" jsonschema:"title=API Key"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"title=Request Timeout"`
}

// OrdersConfig configures the pre-trade check chain.
type OrdersConfig struct {
	// EnforceMarketHours gates orders on the US equity session.
	EnforceMarketHours bool `yaml:"enforce_market_hours" json:"enforce_market_hours" jsonschema:"title=Enforce Market Hours"`
	// RestrictedTickers are blocked for this account.
	RestrictedTickers []string `yaml:"restricted_tickers" json:"restricted_tickers" jsonschema:"title=Restricted Tickers"`
	// MaxNotional caps the estimated order value; zero disables the cap.
	MaxNotional float64 `yaml:"max_notional" json:"max_notional" jsonschema:"title=Max Notional"`
}

// Config is the root gateway configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server" json:"server"`
	Provider   ProviderConfig   `yaml:"provider" json:"provider"`
	Broker     BrokerConfig     `yaml:"broker" json:"broker"`
	Settlement SettlementConfig `yaml:"settlement" json:"settlement"`
	Orders     OrdersConfig     `yaml:"orders" json:"orders"`
	// YieldCurve maps tenors to the tickers serving them. Empty uses the
	// default US treasury curve.
	YieldCurve map[string]string `yaml:"yield_curve" json:"yield_curve" jsonschema:"title=Yield Curve"`
	// MoversUniverse is the ticker set ranked by the top-movers endpoint.
	MoversUniverse []string `yaml:"movers_universe" json:"movers_universe" jsonschema:"title=Movers Universe"`
}

// Default returns the configuration used when no file is supplied:
// synthetic provider, paper broker, and the standard US treasury curve.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Provider: ProviderConfig{
			Type:                "synthetic",
			FallbackToSynthetic: true,
		},
		Broker: BrokerConfig{
			Type:              "paper",
			PaperStartingCash: 100000,
		},
		Orders: OrdersConfig{
			EnforceMarketHours: false,
		},
		YieldCurve:     defaultYieldCurve(),
		MoversUniverse: []string{"SPY", "AGG", "TIP", "MUB", "AGZ", "EURUSD", "GBPUSD"},
	}
}

func defaultYieldCurve() map[string]string {
	return map[string]string{
		string(types.Tenor1M):  "US1M",
		string(types.Tenor3M):  "US3M",
		string(types.Tenor6M):  "US6M",
		string(types.Tenor1Y):  "US1Y",
		string(types.Tenor2Y):  "US2Y",
		string(types.Tenor5Y):  "US5Y",
		string(types.Tenor10Y): "US10Y",
		string(types.Tenor30Y): "US30Y",
	}
}

// Load reads the YAML file at path, applies environment overrides and
// defaults, and validates the result. An empty path returns the default
// configuration with environment overrides applied.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(errors.KindValidation, "failed to read config file", err)
		}

		// Decode into a zero Config so yaml does not merge file-supplied
		// maps into the defaults; the file's curve must replace it whole.
		cfg = Config{}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrap(errors.KindValidation, "failed to parse config file", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		c.Provider.APIKey = v
	}

	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		c.Broker.APIKey = v
	}

	if v := os.Getenv("BINANCE_SECRET_KEY"); v != "" {
		c.Broker.SecretKey = v
	}

	if v := os.Getenv("SETTLEMENT_API_KEY"); v != "" {
		c.Settlement.APIKey = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = ":8080"
	}

	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}

	if c.Provider.Type == "" {
		c.Provider.Type = "synthetic"
	}

	if c.Broker.Type == "" {
		c.Broker.Type = "paper"
	}

	if len(c.YieldCurve) == 0 {
		c.YieldCurve = defaultYieldCurve()
	}

	if len(c.MoversUniverse) == 0 {
		c.MoversUniverse = Default().MoversUniverse
	}

	if c.Broker.Type == "paper" && c.Broker.PaperStartingCash == 0 {
		c.Broker.PaperStartingCash = 100000
	}
}

// Validate checks the configuration beyond struct tags: provider and
// curve consistency that the validator cannot express.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.KindValidation, "invalid configuration", err)
	}

	if c.Provider.Type == "polygon" && c.Provider.APIKey == "" {
		return errors.New(errors.KindValidation, "polygon provider requires an api key")
	}

	if c.Broker.Type == "binance" && (c.Broker.APIKey == "" || c.Broker.SecretKey == "") {
		return errors.New(errors.KindValidation, "binance broker requires api credentials")
	}

	for tenor := range c.YieldCurve {
		if types.TenorRank(types.Tenor(tenor)) >= len(types.CurveTenors) {
			return errors.Newf(errors.KindValidation, "unknown yield curve tenor %q", tenor)
		}
	}

	return nil
}

// CurveTickers converts the configured curve into typed tenors.
func (c *Config) CurveTickers() map[types.Tenor]string {
	curve := make(map[types.Tenor]string, len(c.YieldCurve))
	for tenor, ticker := range c.YieldCurve {
		curve[types.Tenor(tenor)] = ticker
	}

	return curve
}
