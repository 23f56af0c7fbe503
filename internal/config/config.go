// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/fd1az/swapquote/internal/apperror"
)

// Commit interval bounds for the snapshot buffer.
const (
	MinCommitInterval = 250 * time.Millisecond
	MaxCommitInterval = 8 * time.Second
)

// MaxDecimalExponent is the largest chain exponent accepted.
const MaxDecimalExponent = 36

// Config holds all application configuration.
type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Chain     ChainConfig     `mapstructure:"chain"`
	Fee       FeeConfig       `mapstructure:"fee"`
	Quote     QuoteConfig     `mapstructure:"quote"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Health    HealthConfig    `mapstructure:"health"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// AppConfig holds general application settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

// ChainConfig describes the connected chain.
type ChainConfig struct {
	Name            string   `mapstructure:"name"`
	DecimalExponent int      `mapstructure:"decimal_exponent"`
	EnabledPairs    []string `mapstructure:"enabled_pairs"` // canonical order, e.g. "KAR/KUSD"
}

// FeeConfig is the pool trading fee as a ratio.
type FeeConfig struct {
	Numerator   uint64 `mapstructure:"numerator"`
	Denominator uint64 `mapstructure:"denominator"`
}

// QuoteConfig holds quoting and display defaults.
type QuoteConfig struct {
	DisplayPrecision int    `mapstructure:"display_precision"`
	SlippageBps      int    `mapstructure:"slippage_bps"`
	PrecisionPolicy  string `mapstructure:"precision_policy"` // reject | truncate
	Abbreviate       bool   `mapstructure:"abbreviate"`
}

// SnapshotConfig controls how often new chain state is committed.
type SnapshotConfig struct {
	CommitInterval time.Duration `mapstructure:"commit_interval"`
	StaleAfter     time.Duration `mapstructure:"stale_after"`
}

// HealthConfig holds the health server settings.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// TelemetryConfig holds observability configuration.
type TelemetryConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	Provider       string `mapstructure:"provider"` // console | zipkin | otlp-grpc | otlp-http | none
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPHeaders    string `mapstructure:"otlp_headers"`
	PrometheusPort int    `mapstructure:"prometheus_port"`
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
	v.SetEnvPrefix("SWAPQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Bind env vars to config keys
	bindEnvVars(v)

	// Set defaults
	setDefaults(v)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, apperror.Wrap(err, apperror.CodeConfigurationError, "failed to read config")
		}
		// Config file not found is OK, use env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeConfigurationError, "failed to unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "SWAPQ_APP_NAME", "SERVICE_NAME")
	v.BindEnv("app.environment", "SWAPQ_ENVIRONMENT", "ENVIRONMENT")
	v.BindEnv("app.log_level", "SWAPQ_LOG_LEVEL", "LOG_LEVEL")

	// Chain
	v.BindEnv("chain.name", "SWAPQ_CHAIN_NAME")
	v.BindEnv("chain.decimal_exponent", "SWAPQ_DECIMAL_EXPONENT")
	v.BindEnv("chain.enabled_pairs", "SWAPQ_ENABLED_PAIRS")

	// Fee
	v.BindEnv("fee.numerator", "SWAPQ_FEE_NUMERATOR")
	v.BindEnv("fee.denominator", "SWAPQ_FEE_DENOMINATOR")

	// Quote
	v.BindEnv("quote.slippage_bps", "SWAPQ_SLIPPAGE_BPS")
	v.BindEnv("quote.precision_policy", "SWAPQ_PRECISION_POLICY")

	// Snapshot
	v.BindEnv("snapshot.commit_interval", "SWAPQ_COMMIT_INTERVAL")
	v.BindEnv("snapshot.stale_after", "SWAPQ_STALE_AFTER")

	// Health
	v.BindEnv("health.enabled", "SWAPQ_HEALTH_ENABLED")
	v.BindEnv("health.port", "SWAPQ_HEALTH_PORT")

	// Telemetry
	v.BindEnv("telemetry.enabled", "SWAPQ_OTEL_ENABLED", "OTEL_ENABLED")
	v.BindEnv("telemetry.provider", "SWAPQ_OTEL_PROVIDER")
	v.BindEnv("telemetry.prometheus_port", "SWAPQ_PROMETHEUS_PORT")
	v.BindEnv("telemetry.service_name", "SWAPQ_OTEL_SERVICE_NAME", "OTEL_SERVICE_NAME")
	v.BindEnv("telemetry.otlp_endpoint", "SWAPQ_OTEL_ENDPOINT", "OTEL_EXPORTER_OTLP_ENDPOINT")
	v.BindEnv("telemetry.otlp_headers", "SWAPQ_OTEL_HEADERS", "OTEL_EXPORTER_OTLP_HEADERS")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "swapquote")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	// Chain defaults
	v.SetDefault("chain.name", "karura")
	v.SetDefault("chain.decimal_exponent", 12)
	v.SetDefault("chain.enabled_pairs", []string{"KAR/KUSD"})

	// Fee defaults: 0.3%
	v.SetDefault("fee.numerator", 3)
	v.SetDefault("fee.denominator", 1000)

	// Quote defaults
	v.SetDefault("quote.display_precision", 6)
	v.SetDefault("quote.slippage_bps", 50)
	v.SetDefault("quote.precision_policy", "reject")
	v.SetDefault("quote.abbreviate", false)

	// Snapshot defaults
	v.SetDefault("snapshot.commit_interval", "250ms")
	v.SetDefault("snapshot.stale_after", "30s")

	// Health defaults
	v.SetDefault("health.enabled", true)
	v.SetDefault("health.port", 8081)

	// Telemetry defaults
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "swapquote")
	v.SetDefault("telemetry.provider", "console")
	v.SetDefault("telemetry.prometheus_port", 9090)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch {
	case c.Chain.DecimalExponent < 0 || c.Chain.DecimalExponent > MaxDecimalExponent:
		return invalid("chain.decimal_exponent %d outside [0, %d]", c.Chain.DecimalExponent, MaxDecimalExponent)
	case len(c.Chain.EnabledPairs) == 0:
		return invalid("chain.enabled_pairs cannot be empty")
	case c.Fee.Denominator == 0:
		return invalid("fee.denominator cannot be zero")
	case c.Fee.Numerator >= c.Fee.Denominator:
		return invalid("fee %d/%d must be below 1", c.Fee.Numerator, c.Fee.Denominator)
	case c.Quote.DisplayPrecision < 0:
		return invalid("quote.display_precision cannot be negative")
	case c.Quote.SlippageBps < 0 || c.Quote.SlippageBps > 10000:
		return invalid("quote.slippage_bps %d outside [0, 10000]", c.Quote.SlippageBps)
	case c.Snapshot.CommitInterval < MinCommitInterval || c.Snapshot.CommitInterval > MaxCommitInterval:
		return invalid("snapshot.commit_interval %s outside [%s, %s]",
			c.Snapshot.CommitInterval, MinCommitInterval, MaxCommitInterval)
	case c.Snapshot.StaleAfter < 0:
		return invalid("snapshot.stale_after cannot be negative")
	}

	switch c.Quote.PrecisionPolicy {
	case "", "reject", "truncate":
	default:
		return invalid("quote.precision_policy %q: expected reject or truncate", c.Quote.PrecisionPolicy)
	}

	switch c.Telemetry.Provider {
	case "", "none", "console", "zipkin", "otlp-grpc", "otlp-http":
	default:
		return invalid("telemetry.provider %q", c.Telemetry.Provider)
	}
	return nil
}

func invalid(format string, args ...any) error {
	return apperror.New(apperror.CodeConfigurationError, apperror.WithContext(fmt.Sprintf(format, args...)))
}
