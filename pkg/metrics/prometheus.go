package metrics

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/linelab/linelab/pkg/logger"
)

// PrometheusConfig holds Prometheus server configuration
type PrometheusConfig struct {
	Enabled bool
	Port    int
	Path    string
}

// PrometheusHandler handles Prometheus metrics HTTP requests
type PrometheusHandler struct {
	collector *Collector
}

// NewPrometheusHandler creates a new Prometheus handler
func NewPrometheusHandler(collector *Collector) *PrometheusHandler {
	return &PrometheusHandler{
		collector: collector,
	}
}

// ServeHTTP handles HTTP requests for metrics
func (h *PrometheusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	var output strings.Builder

	writeLabeled(&output, "linelab_encodes_total",
		"Total encodes by scheme", "counter", "scheme", h.collector.GetEncodes())
	writeLabeled(&output, "linelab_decodes_total",
		"Total decodes by scheme", "counter", "scheme", h.collector.GetDecodes())
	writeLabeled(&output, "linelab_substitutions_reverted_total",
		"Total scrambling substitution windows reverted by scheme", "counter", "scheme",
		h.collector.GetSubstitutions())
	writeLabeled(&output, "linelab_analog_conversions_total",
		"Total analog-to-bits conversions by kind", "counter", "kind",
		h.collector.GetAnalogConversions())

	output.WriteString("# HELP linelab_samples_generated_total Total waveform samples produced\n")
	output.WriteString("# TYPE linelab_samples_generated_total counter\n")
	output.WriteString(fmt.Sprintf("linelab_samples_generated_total %d\n", h.collector.GetSamplesGenerated()))

	output.WriteString("# HELP linelab_bits_encoded_total Total bits encoded\n")
	output.WriteString("# TYPE linelab_bits_encoded_total counter\n")
	output.WriteString(fmt.Sprintf("linelab_bits_encoded_total %d\n", h.collector.GetBitsEncoded()))

	output.WriteString("# HELP linelab_decode_sentinels_total Total decodes returning a placeholder result\n")
	output.WriteString("# TYPE linelab_decode_sentinels_total counter\n")
	output.WriteString(fmt.Sprintf("linelab_decode_sentinels_total %d\n", h.collector.GetDecodeSentinels()))

	output.WriteString("# HELP linelab_invalid_inputs_total Total requests rejected before encoding\n")
	output.WriteString("# TYPE linelab_invalid_inputs_total counter\n")
	output.WriteString(fmt.Sprintf("linelab_invalid_inputs_total %d\n", h.collector.GetInvalidInputs()))

	output.WriteString("# HELP linelab_runs_stored_total Total runs persisted\n")
	output.WriteString("# TYPE linelab_runs_stored_total counter\n")
	output.WriteString(fmt.Sprintf("linelab_runs_stored_total %d\n", h.collector.GetRunsStored()))

	w.Write([]byte(output.String()))
}

// writeLabeled emits one metric family with a single label dimension,
// label values sorted for stable output.
func writeLabeled(out *strings.Builder, name, help, typ, label string, counts map[string]uint64) {
	out.WriteString(fmt.Sprintf("# HELP %s %s\n", name, help))
	out.WriteString(fmt.Sprintf("# TYPE %s %s\n", name, typ))
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out.WriteString(fmt.Sprintf("%s{%s=%q} %d\n", name, label, k, counts[k]))
	}
}

// PrometheusServer is an HTTP server for Prometheus metrics
type PrometheusServer struct {
	config    PrometheusConfig
	collector *Collector
	log       *logger.Logger
	server    *http.Server
}

// NewPrometheusServer creates a new Prometheus metrics server
func NewPrometheusServer(config PrometheusConfig, collector *Collector, log *logger.Logger) *PrometheusServer {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}

	return &PrometheusServer{
		config:    config,
		collector: collector,
		log:       log.WithComponent("metrics"),
	}
}

// Start starts the Prometheus metrics server
func (s *PrometheusServer) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.log.Info("Prometheus metrics server disabled")
		return nil
	}

	handler := NewPrometheusHandler(s.collector)
	mux := http.NewServeMux()
	mux.Handle(s.config.Path, handler)

	// Use a listener to get the actual port (useful for testing with port 0)
	addr := fmt.Sprintf(":%d", s.config.Port)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	actualPort := listener.Addr().(*net.TCPAddr).Port

	s.server = &http.Server{
		Handler: mux,
	}

	s.log.Info("Starting Prometheus metrics server",
		logger.Int("port", actualPort),
		logger.String("path", s.config.Path))

	errChan := make(chan error, 1)
	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.log.Info("Shutting down Prometheus metrics server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown error: %w", err)
		}
		return ctx.Err()
	case err := <-errChan:
		return err
	}
}

// Stop stops the Prometheus metrics server
func (s *PrometheusServer) Stop() {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.server.Shutdown(ctx)
	}
}
