package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestLoad_UsesDefaults_WhenNoFile(t *testing.T) {
	// Reset viper to avoid cross-test pollution
	viper.Reset()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	// Spot-check a few defaults
	if cfg.Codec.SamplesPerBit != 4 {
		t.Errorf("expected Codec.SamplesPerBit default 4, got %d", cfg.Codec.SamplesPerBit)
	}
	if cfg.Analog.PCMBits != 8 {
		t.Errorf("expected Analog.PCMBits default 8, got %d", cfg.Analog.PCMBits)
	}
	if cfg.Limits.MaxSamples != 20000 {
		t.Errorf("expected Limits.MaxSamples default 20000, got %d", cfg.Limits.MaxSamples)
	}
	if cfg.Web.Enabled != true {
		t.Errorf("expected Web.Enabled default true, got %v", cfg.Web.Enabled)
	}
	if cfg.Web.Port != 8080 {
		t.Errorf("expected Web.Port default 8080, got %d", cfg.Web.Port)
	}
	if cfg.Database.Path != "linelab.db" {
		t.Errorf("expected Database.Path default linelab.db, got %q", cfg.Database.Path)
	}
	if cfg.Logging.Level == "" {
		t.Errorf("expected Logging.Level to be set (default info)")
	}
	if cfg.Metrics.Prometheus.Port != 9091 {
		t.Errorf("expected Prometheus.Port default 9091, got %d", cfg.Metrics.Prometheus.Port)
	}
}

func TestLoad_ReadsYAMLFile(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
codec:
  samples_per_bit: 8
web:
  port: 9000
database:
  enabled: false
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Codec.SamplesPerBit != 8 {
		t.Errorf("expected samples_per_bit 8 from file, got %d", cfg.Codec.SamplesPerBit)
	}
	if cfg.Web.Port != 9000 {
		t.Errorf("expected web.port 9000 from file, got %d", cfg.Web.Port)
	}
	if cfg.Database.Enabled {
		t.Errorf("expected database disabled from file")
	}
	// Untouched keys keep their defaults
	if cfg.Server.Name != "LineLab" {
		t.Errorf("expected server.name default, got %q", cfg.Server.Name)
	}
}

func TestLoad_RejectsOddSamplesPerBit(t *testing.T) {
	viper.Reset()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("codec:\n  samples_per_bit: 3\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for odd samples_per_bit")
	}
}

func TestValidate_Errors(t *testing.T) {
	base := func() *Config {
		return &Config{
			Codec:  CodecConfig{SamplesPerBit: 4},
			Analog: AnalogConfig{PCMBits: 8, DefaultSamples: 50, MaxSamples: 4096},
			Database: DatabaseConfig{
				Enabled: true, Path: "x.db", RetentionDays: 30, CleanupIntervalMinutes: 60,
			},
			Logging: LoggingConfig{Level: "info"},
		}
	}

	t.Run("zero samples per bit", func(t *testing.T) {
		cfg := base()
		cfg.Codec.SamplesPerBit = 0
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for samples_per_bit 0")
		}
	})

	t.Run("odd samples per bit", func(t *testing.T) {
		cfg := base()
		cfg.Codec.SamplesPerBit = 5
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for odd samples_per_bit")
		}
	})

	t.Run("invalid web port when enabled", func(t *testing.T) {
		cfg := base()
		cfg.Web = WebConfig{Enabled: true, Port: 70000}
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for web.port out of range")
		}
	})

	t.Run("pcm bits out of range", func(t *testing.T) {
		cfg := base()
		cfg.Analog.PCMBits = 24
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for pcm_bits > 16")
		}
	})

	t.Run("default samples above cap", func(t *testing.T) {
		cfg := base()
		cfg.Analog.DefaultSamples = 9000
		cfg.Analog.MaxSamples = 100
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for default_samples > max_samples")
		}
	})

	t.Run("database enabled without path", func(t *testing.T) {
		cfg := base()
		cfg.Database.Path = ""
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for empty database.path")
		}
	})

	t.Run("unknown log level", func(t *testing.T) {
		cfg := base()
		cfg.Logging.Level = "loud"
		if err := validate(cfg); err == nil {
			t.Fatal("expected error for unknown logging.level")
		}
	})
}
