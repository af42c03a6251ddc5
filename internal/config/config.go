// Package config loads the engine's runtime configuration from
// environment variables and an optional config file, grounded on the
// teacher's viper-based Load/setDefaults pattern.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the arbitrage engine.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Chain   ChainConfig   `mapstructure:"chain"`
	Venues  VenuesConfig  `mapstructure:"venues"`
	Loop    LoopConfig    `mapstructure:"loop"`
	Breaker BreakerConfig `mapstructure:"breaker"`
}

// ServerConfig contains the status/health/metrics HTTP server settings.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// ChainConfig holds node connection and signing settings.
type ChainConfig struct {
	RPCURL          string `mapstructure:"rpc_url"`          // RPC_URL
	WSURL           string `mapstructure:"ws_url"`           // WS_URL
	PrivateKey      string `mapstructure:"private_key"`      // PRIVATE_KEY, never logged
	OperatorAddress string `mapstructure:"operator_address"` // OPERATOR_ADDRESS, balance-query handle
	PackageID       string `mapstructure:"package_id"`       // PACKAGE_ID
	AdminCapID      string `mapstructure:"admin_cap_id"`     // ADMIN_CAP_ID
	PauseFlagID     string `mapstructure:"pause_flag_id"`    // PAUSE_FLAG_ID
	UseWebSocket    bool   `mapstructure:"use_websocket"`    // USE_WEBSOCKET
	WSMode          string `mapstructure:"ws_mode"`          // WS_MODE: "supplement" or "primary"
}

// MonitoredPool names one pool the collector polls/subscribes to.
type MonitoredPool struct {
	Venue string `mapstructure:"venue"`
	Pool  string `mapstructure:"pool"`
	Base  string `mapstructure:"base"`
	Quote string `mapstructure:"quote"`
}

// VenuesConfig holds the set of pools to watch and venue-specific
// collateral handles.
type VenuesConfig struct {
	MonitoredPools []MonitoredPool  `mapstructure:"monitored_pools"`  // MONITORED_POOLS
	DeepFeeCoinID  string           `mapstructure:"deep_fee_coin_id"` // DEEP_FEE_COIN_ID
	AssetDecimals  map[string]uint8 `mapstructure:"asset_decimals"`   // ASSET_DECIMALS
}

// LoopConfig tunes the orchestrator's tick behavior.
type LoopConfig struct {
	MinProfit          int64         `mapstructure:"min_profit"`            // MIN_PROFIT
	PollIntervalMS      int          `mapstructure:"poll_interval_ms"`      // POLL_INTERVAL_MS
	MaxGasBudget        uint64        `mapstructure:"max_gas_budget"`        // MAX_GAS_BUDGET
	DryRunBeforeSubmit  bool          `mapstructure:"dry_run_before_submit"` // DRY_RUN_BEFORE_SUBMIT
}

// BreakerConfig holds circuit breaker and gas monitor thresholds.
type BreakerConfig struct {
	MaxConsecutiveFailures int    `mapstructure:"cb_max_consecutive_failures"` // CB_MAX_CONSECUTIVE_FAILURES
	MaxCumulativeLoss      int64  `mapstructure:"cb_max_cumulative_loss"`      // CB_MAX_CUMULATIVE_LOSS
	CooldownMS             int    `mapstructure:"cb_cooldown_ms"`              // CB_COOLDOWN_MS
	MinGasBalance          int64  `mapstructure:"min_gas_balance"`             // MIN_GAS_BALANCE
}

// Load loads configuration from file and environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvPrefix("")
	viper.AutomaticEnv()
	bindEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// bindEnv wires the spec's flat environment variable names onto their
// nested mapstructure keys, since viper's AutomaticEnv alone only
// matches keys it has already seen via SetDefault or a config file.
func bindEnv() {
	binding := map[string]string{
		"chain.rpc_url":       "RPC_URL",
		"chain.ws_url":        "WS_URL",
		"chain.private_key":      "PRIVATE_KEY",
		"chain.operator_address": "OPERATOR_ADDRESS",
		"chain.package_id":    "PACKAGE_ID",
		"chain.admin_cap_id":  "ADMIN_CAP_ID",
		"chain.pause_flag_id": "PAUSE_FLAG_ID",
		"chain.use_websocket": "USE_WEBSOCKET",
		"chain.ws_mode":       "WS_MODE",

		"venues.deep_fee_coin_id": "DEEP_FEE_COIN_ID",

		"loop.min_profit":            "MIN_PROFIT",
		"loop.poll_interval_ms":      "POLL_INTERVAL_MS",
		"loop.max_gas_budget":        "MAX_GAS_BUDGET",
		"loop.dry_run_before_submit": "DRY_RUN_BEFORE_SUBMIT",

		"breaker.cb_max_consecutive_failures": "CB_MAX_CONSECUTIVE_FAILURES",
		"breaker.cb_max_cumulative_loss":      "CB_MAX_CUMULATIVE_LOSS",
		"breaker.cb_cooldown_ms":              "CB_COOLDOWN_MS",
		"breaker.min_gas_balance":             "MIN_GAS_BALANCE",
	}
	for key, env := range binding {
		_ = viper.BindEnv(key, env)
	}
}

// setDefaults sets default configuration values.
func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("chain.use_websocket", true)
	viper.SetDefault("chain.ws_mode", "supplement")

	viper.SetDefault("loop.poll_interval_ms", 500)
	viper.SetDefault("loop.max_gas_budget", uint64(260_000))
	viper.SetDefault("loop.dry_run_before_submit", true)

	viper.SetDefault("breaker.cb_max_consecutive_failures", 5)
	viper.SetDefault("breaker.cb_max_cumulative_loss", int64(1_000_000_000))
	viper.SetDefault("breaker.cb_cooldown_ms", 30_000)
	viper.SetDefault("breaker.min_gas_balance", int64(100_000_000))
}
