package config

import (
	"fmt"
	"strings"
)

// validate validates the configuration. The samples-per-bit check mirrors
// linecode.NewEncoder so a bad rate fails at startup, before any encode.
func validate(cfg *Config) error {
	// Validate codec config
	if cfg.Codec.SamplesPerBit < 2 || cfg.Codec.SamplesPerBit%2 != 0 {
		return fmt.Errorf("codec.samples_per_bit must be an even number >= 2, got %d", cfg.Codec.SamplesPerBit)
	}

	// Validate analog config
	if cfg.Analog.PCMBits <= 0 || cfg.Analog.PCMBits > 16 {
		return fmt.Errorf("analog.pcm_bits must be between 1 and 16, got %d", cfg.Analog.PCMBits)
	}
	if cfg.Analog.DefaultSamples <= 0 {
		return fmt.Errorf("analog.default_samples must be positive")
	}
	if cfg.Analog.MaxSamples > 0 && cfg.Analog.DefaultSamples > cfg.Analog.MaxSamples {
		return fmt.Errorf("analog.default_samples (%d) exceeds analog.max_samples (%d)",
			cfg.Analog.DefaultSamples, cfg.Analog.MaxSamples)
	}

	// Validate limits
	if cfg.Limits.MaxSamples < 0 {
		return fmt.Errorf("limits.max_samples must be >= 0 (0 disables the cap)")
	}

	// Validate web config
	if cfg.Web.Enabled {
		if cfg.Web.Port <= 0 || cfg.Web.Port > 65535 {
			return fmt.Errorf("web.port must be between 1 and 65535")
		}
	}

	// Validate database config
	if cfg.Database.Enabled {
		if cfg.Database.Path == "" {
			return fmt.Errorf("database.path is required when database is enabled")
		}
		if cfg.Database.RetentionDays < 0 {
			return fmt.Errorf("database.retention_days must be >= 0 (0 disables retention)")
		}
		if cfg.Database.CleanupIntervalMinutes <= 0 {
			return fmt.Errorf("database.cleanup_interval_minutes must be positive")
		}
	}

	// Validate logging config
	switch strings.ToLower(cfg.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", cfg.Logging.Level)
	}

	// Validate metrics config
	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		if cfg.Metrics.Prometheus.Port <= 0 || cfg.Metrics.Prometheus.Port > 65535 {
			return fmt.Errorf("metrics.prometheus.port must be between 1 and 65535")
		}
		if !strings.HasPrefix(cfg.Metrics.Prometheus.Path, "/") {
			return fmt.Errorf("metrics.prometheus.path must start with /")
		}
	}

	return nil
}
