package config

import (
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Codec    CodecConfig    `mapstructure:"codec"`
	Analog   AnalogConfig   `mapstructure:"analog"`
	Limits   LimitsConfig   `mapstructure:"limits"`
	Web      WebConfig      `mapstructure:"web"`
	Database DatabaseConfig `mapstructure:"database"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// ServerConfig holds service identification
type ServerConfig struct {
	Name        string `mapstructure:"name"`
	Description string `mapstructure:"description"`
}

// CodecConfig holds the line coding configuration
type CodecConfig struct {
	SamplesPerBit int `mapstructure:"samples_per_bit"` // Even, >= 2
}

// AnalogConfig holds the analog front-end defaults
type AnalogConfig struct {
	PCMBits        int `mapstructure:"pcm_bits"`        // Quantizer bit depth
	DefaultSamples int `mapstructure:"default_samples"` // Samples when the request omits a count
	MaxSamples     int `mapstructure:"max_samples"`     // Cap on requested sample counts
}

// LimitsConfig holds request size policies. The codec itself is unbounded;
// these caps are service policy.
type LimitsConfig struct {
	MaxSamples int `mapstructure:"max_samples"` // Max waveform samples per encode, 0 disables
}

// WebConfig holds web dashboard configuration
type WebConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Host    string `mapstructure:"host"`
	Port    int    `mapstructure:"port"`
}

// DatabaseConfig holds run-history storage configuration
type DatabaseConfig struct {
	Enabled                bool   `mapstructure:"enabled"`
	Path                   string `mapstructure:"path"`
	RetentionDays          int    `mapstructure:"retention_days"`
	CleanupIntervalMinutes int    `mapstructure:"cleanup_interval_minutes"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled    bool             `mapstructure:"enabled"`
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig holds Prometheus metrics configuration
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

// Load loads configuration from file and environment variables
func Load(configFile string) (*Config, error) {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath("/etc/linelab")
	}

	viper.SetEnvPrefix("LINELAB")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found is OK, use defaults
		} else if os.IsNotExist(err) {
			// File explicitly specified but doesn't exist - that's also OK
		} else {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.name", "LineLab")
	viper.SetDefault("server.description", "Line coding studio")

	// Codec defaults
	viper.SetDefault("codec.samples_per_bit", 4)

	// Analog defaults
	viper.SetDefault("analog.pcm_bits", 8)
	viper.SetDefault("analog.default_samples", 50)
	viper.SetDefault("analog.max_samples", 4096)

	// Limits defaults
	viper.SetDefault("limits.max_samples", 20000)

	// Web defaults
	viper.SetDefault("web.enabled", true)
	viper.SetDefault("web.host", "0.0.0.0")
	viper.SetDefault("web.port", 8080)

	// Database defaults
	viper.SetDefault("database.enabled", true)
	viper.SetDefault("database.path", "linelab.db")
	viper.SetDefault("database.retention_days", 30)
	viper.SetDefault("database.cleanup_interval_minutes", 60)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	// Metrics defaults
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.prometheus.enabled", true)
	viper.SetDefault("metrics.prometheus.port", 9091)
	viper.SetDefault("metrics.prometheus.path", "/metrics")
}
