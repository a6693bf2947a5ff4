// Package config provides configuration loading and validation for the
// redblack command line.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidOrder     = errors.New("invalid traversal order")
	ErrInvalidFormat    = errors.New("invalid output format")
	ErrInvalidCodec     = errors.New("invalid snapshot codec")
	ErrInvalidThreshold = errors.New("hibernation threshold must not be negative")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidLogFormat = errors.New("invalid log format")
	ErrInvalidRatio     = errors.New("sample ratio must be within [0, 1]")
)

// Output formats.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Default configuration values.
const (
	envPrefix      = "REDBLACK"
	configName     = ".redblack"
	configType     = "yaml"
	defaultOrder   = "inorder"
	defaultCodec   = "json"
	defaultLevel   = "info"
	defaultLogFmt  = "text"
	defaultHibSize = 1 << 16
)

var (
	validOrders     = []string{"inorder", "preorder", "postorder"}
	validFormats    = []string{FormatText, FormatTable, FormatJSON, FormatYAML}
	validCodecs     = []string{"json", "gob"}
	validLogFormats = []string{"text", "json"}
)

// Config holds all configuration for the redblack command line.
type Config struct {
	Tree      TreeConfig      `mapstructure:"tree"`
	Output    OutputConfig    `mapstructure:"output"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// TreeConfig holds tree-specific configuration.
type TreeConfig struct {
	Order string `mapstructure:"order"`
}

// OutputConfig controls how commands render results.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Color  bool   `mapstructure:"color"`
}

// SnapshotConfig controls snapshot files and arena hibernation.
type SnapshotConfig struct {
	Codec                string `mapstructure:"codec"`
	Compress             bool   `mapstructure:"compress"`
	HibernationThreshold int    `mapstructure:"hibernation_threshold"`
}

// LoggingConfig holds logging-specific configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	MetricsFile  string  `mapstructure:"metrics_file"`
}

// LoadConfig loads configuration from file and environment variables.
// An empty configPath searches for .redblack.yaml in the working directory
// and then in the home directory; a missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.SetConfigType(configType)
		viperCfg.AddConfigPath(".")

		if home, err := os.UserHomeDir(); err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	normalize(&config)

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Tree:     TreeConfig{Order: defaultOrder},
		Output:   OutputConfig{Format: FormatText, Color: true},
		Snapshot: SnapshotConfig{Codec: defaultCodec, HibernationThreshold: defaultHibSize},
		Logging:  LoggingConfig{Level: defaultLevel, Format: defaultLogFmt},
	}
}

// SlogLevel maps Logging.Level to a slog level. It is valid after LoadConfig.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level

	if err := level.UnmarshalText([]byte(c.Logging.Level)); err != nil {
		return slog.LevelInfo
	}

	return level
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	defaults := Default()

	viperCfg.SetDefault("tree.order", defaults.Tree.Order)

	viperCfg.SetDefault("output.format", defaults.Output.Format)
	viperCfg.SetDefault("output.color", defaults.Output.Color)

	viperCfg.SetDefault("snapshot.codec", defaults.Snapshot.Codec)
	viperCfg.SetDefault("snapshot.compress", defaults.Snapshot.Compress)
	viperCfg.SetDefault("snapshot.hibernation_threshold", defaults.Snapshot.HibernationThreshold)

	viperCfg.SetDefault("logging.level", defaults.Logging.Level)
	viperCfg.SetDefault("logging.format", defaults.Logging.Format)

	// Registered so AutomaticEnv can see them during Unmarshal.
	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.sample_ratio", 0.0)
	viperCfg.SetDefault("telemetry.metrics_file", "")
}

func normalize(config *Config) {
	config.Tree.Order = strings.ToLower(strings.TrimSpace(config.Tree.Order))
	config.Output.Format = strings.ToLower(strings.TrimSpace(config.Output.Format))
	config.Snapshot.Codec = strings.ToLower(strings.TrimSpace(config.Snapshot.Codec))
	config.Logging.Level = strings.ToLower(strings.TrimSpace(config.Logging.Level))
	config.Logging.Format = strings.ToLower(strings.TrimSpace(config.Logging.Format))
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if !slices.Contains(validOrders, config.Tree.Order) {
		return fmt.Errorf("%w: %q", ErrInvalidOrder, config.Tree.Order)
	}

	if !slices.Contains(validFormats, config.Output.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, config.Output.Format)
	}

	if !slices.Contains(validCodecs, config.Snapshot.Codec) {
		return fmt.Errorf("%w: %q", ErrInvalidCodec, config.Snapshot.Codec)
	}

	if config.Snapshot.HibernationThreshold < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidThreshold, config.Snapshot.HibernationThreshold)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(config.Logging.Level)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	if !slices.Contains(validLogFormats, config.Logging.Format) {
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	if config.Telemetry.SampleRatio < 0 || config.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidRatio, config.Telemetry.SampleRatio)
	}

	return nil
}
