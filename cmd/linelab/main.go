package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/linelab/linelab/pkg/config"
	"github.com/linelab/linelab/pkg/database"
	"github.com/linelab/linelab/pkg/logger"
	"github.com/linelab/linelab/pkg/metrics"
	"github.com/linelab/linelab/pkg/studio"
	"github.com/linelab/linelab/pkg/web"
)

var (
	version   = "dev"
	gitCommit = "unknown"
	buildTime = "unknown"
)

func main() {
	// Parse command line flags
	configFile := flag.String("config", "config.yaml", "Path to configuration file")
	showVersion := flag.Bool("version", false, "Show version information")
	validate := flag.Bool("validate", false, "Validate configuration and exit")
	flag.Parse()

	// Show version
	if *showVersion {
		fmt.Printf("LineLab %s (commit %s, built %s)\n", version, gitCommit, buildTime)
		os.Exit(0)
	}

	// Load .env before anything reads the environment
	_ = godotenv.Load()

	// Initialize basic logger for startup
	log := logger.New(logger.Config{
		Level:  "info",
		Format: "text",
	})

	log.Info("Starting LineLab",
		logger.String("version", version),
		logger.String("build_time", buildTime))

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Error("Failed to load configuration", logger.Error(err))
		os.Exit(1)
	}

	// Validate only mode
	if *validate {
		log.Info("Configuration is valid")
		os.Exit(0)
	}

	// Reconfigure logging per config
	log = logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	log.Info("Configuration loaded successfully",
		logger.String("config_file", *configFile),
		logger.Int("samples_per_bit", cfg.Codec.SamplesPerBit))

	web.SetVersionInfo(version, gitCommit, buildTime)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Set up signal handling
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	// Initialize metrics collector
	metricsCollector := metrics.NewCollector()

	// Start Prometheus metrics server if enabled
	if cfg.Metrics.Enabled && cfg.Metrics.Prometheus.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metricsServer := metrics.NewPrometheusServer(
				metrics.PrometheusConfig{
					Enabled: cfg.Metrics.Prometheus.Enabled,
					Port:    cfg.Metrics.Prometheus.Port,
					Path:    cfg.Metrics.Prometheus.Path,
				},
				metricsCollector,
				log.WithComponent("metrics"),
			)
			if err := metricsServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Prometheus metrics server error", logger.Error(err))
			}
		}()
	}

	// Open the run history database if enabled
	var repo *database.RunRepository
	if cfg.Database.Enabled {
		db, err := database.NewDB(database.Config{Path: cfg.Database.Path}, log.WithComponent("database"))
		if err != nil {
			log.Error("Failed to open database", logger.Error(err))
			os.Exit(1)
		}
		defer func() { _ = db.Close() }()
		repo = database.NewRunRepository(db.GetDB())

		// Retention janitor
		janitor := database.NewJanitor(
			repo,
			log.WithComponent("janitor"),
			time.Duration(cfg.Database.RetentionDays)*24*time.Hour,
			time.Duration(cfg.Database.CleanupIntervalMinutes)*time.Minute,
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			janitor.Start(ctx)
		}()
	}

	// Start web server (and its websocket hub) if enabled
	var publisher studio.EventPublisher
	var webServer *web.Server
	analogDefaults := studio.AnalogDefaults{
		PCMBits:        cfg.Analog.PCMBits,
		DefaultSamples: cfg.Analog.DefaultSamples,
		MaxSamples:     cfg.Analog.MaxSamples,
	}

	// The studio service is constructed before the web server so both share
	// one codec configuration; the hub is wired in afterwards.
	service, err := studio.NewService(
		studio.Config{
			SamplesPerBit: cfg.Codec.SamplesPerBit,
			MaxSamples:    cfg.Limits.MaxSamples,
		},
		repo,
		metricsCollector,
		nil,
		log,
	)
	if err != nil {
		log.Error("Failed to construct codec service", logger.Error(err))
		os.Exit(1)
	}

	if cfg.Web.Enabled {
		webServer = web.NewServer(cfg.Web, service, repo, analogDefaults, log.WithComponent("web"))
		publisher = webServer.GetHub()
		service.SetPublisher(publisher)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := webServer.Start(ctx); err != nil && err != context.Canceled {
				log.Error("Web server error", logger.Error(err))
			}
		}()
	}

	log.Info("LineLab initialized",
		logger.String("server_name", cfg.Server.Name))

	// Wait for shutdown signal
	sig := <-sigChan
	log.Info("Received shutdown signal",
		logger.String("signal", sig.String()))

	cancel()
	wg.Wait()

	log.Info("LineLab stopped")
}
