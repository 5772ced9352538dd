// Package studio orchestrates the codec for the service surface: input
// normalization, size limits, analysis, persistence, metrics and event
// publication. The codec itself stays pure; everything with a side effect
// lives here.
package studio

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/linelab/linelab/pkg/analysis"
	"github.com/linelab/linelab/pkg/database"
	"github.com/linelab/linelab/pkg/linecode"
	"github.com/linelab/linelab/pkg/logger"
	"github.com/linelab/linelab/pkg/metrics"
)

// EventPublisher receives run events for live dashboard updates
type EventPublisher interface {
	Publish(eventType string, data map[string]interface{})
}

// Config holds the service policies that are not the codec's concern
type Config struct {
	SamplesPerBit int
	MaxSamples    int // Cap on waveform samples per encode, 0 disables
}

// Service bundles the codec with the service-side collaborators. Repo,
// metrics and publisher may each be nil; the corresponding side effect is
// then skipped.
type Service struct {
	encoder   *linecode.Encoder
	cfg       Config
	repo      *database.RunRepository
	collector *metrics.Collector
	publisher EventPublisher
	logger    *logger.Logger
}

// NewService constructs the studio service. Fails when the configured
// samples-per-bit cannot construct an encoder.
func NewService(cfg Config, repo *database.RunRepository, collector *metrics.Collector, publisher EventPublisher, log *logger.Logger) (*Service, error) {
	encoder, err := linecode.NewEncoder(cfg.SamplesPerBit)
	if err != nil {
		return nil, fmt.Errorf("studio: %w", err)
	}
	if log == nil {
		log = logger.New(logger.Config{Level: "info"})
	}
	return &Service{
		encoder:   encoder,
		cfg:       cfg,
		repo:      repo,
		collector: collector,
		publisher: publisher,
		logger:    log.WithComponent("studio"),
	}, nil
}

// SamplesPerBit returns the configured codec rate
func (s *Service) SamplesPerBit() int {
	return s.encoder.SamplesPerBit()
}

// SetPublisher wires the event publisher after construction. Intended for
// startup only, before the service handles requests; the hub cannot exist
// before the service it serves.
func (s *Service) SetPublisher(p EventPublisher) {
	s.publisher = p
}

// EncodeRequest is one encode invocation
type EncodeRequest struct {
	Bits   string `json:"bits"`
	Scheme string `json:"scheme"`
	Decode bool   `json:"decode"` // Also run the decoder and report its output
	Source string `json:"source"` // digital (default), pcm, dm
}

// EncodeResult is the complete outcome of an encode
type EncodeResult struct {
	RunID         string            `json:"run_id"`
	Bits          string            `json:"bits"`
	Scheme        linecode.Scheme   `json:"scheme"`
	SamplesPerBit int               `json:"samples_per_bit"`
	Waveform      linecode.Waveform `json:"waveform"`
	Decoded       string            `json:"decoded,omitempty"`
	Palindrome    string            `json:"palindrome"`
	Stats         analysis.BitStats `json:"stats"`
	Substitutions int               `json:"substitutions"`
}

// Encode validates, encodes and records one bitstream
func (s *Service) Encode(req EncodeRequest) (*EncodeResult, error) {
	start := time.Now()

	scheme, err := linecode.ParseScheme(req.Scheme)
	if err != nil {
		s.countInvalid()
		return nil, err
	}

	bits := linecode.NormalizeBits(req.Bits)
	if err := linecode.ValidateBits(bits); err != nil {
		s.countInvalid()
		return nil, err
	}

	spb := s.encoder.SamplesPerBit()
	if s.cfg.MaxSamples > 0 && len(bits)*spb > s.cfg.MaxSamples {
		s.countInvalid()
		return nil, &linecode.InvalidInputError{
			Reason: fmt.Sprintf("%d bits at %d samples per bit exceeds the %d sample limit",
				len(bits), spb, s.cfg.MaxSamples),
		}
	}

	waveform, err := s.encoder.Encode(bits, scheme)
	if err != nil {
		s.countInvalid()
		return nil, err
	}
	if len(waveform) != len(bits)*spb {
		// The codec guarantees this; a mismatch is a bug worth failing loudly on
		return nil, fmt.Errorf("studio: waveform length %d != %d bits * %d samples",
			len(waveform), len(bits), spb)
	}

	result := &EncodeResult{
		RunID:         uuid.New().String(),
		Bits:          bits,
		Scheme:        scheme,
		SamplesPerBit: spb,
		Waveform:      waveform,
		Palindrome:    analysis.LongestPalindrome(bits),
		Stats:         analysis.Stats(bits),
	}
	if req.Decode {
		decoded, subs := linecode.DecodeWithStats(scheme, waveform, spb)
		result.Decoded = decoded
		result.Substitutions = subs
	}

	if s.collector != nil {
		s.collector.EncodeCompleted(scheme.String(), len(bits), len(waveform))
		if result.Substitutions > 0 {
			s.collector.SubstitutionsReverted(scheme.String(), result.Substitutions)
		}
	}

	source := req.Source
	if source == "" {
		source = database.SourceDigital
	}
	s.record(&database.SignalRun{
		RunID:          result.RunID,
		Kind:           database.KindEncode,
		Scheme:         scheme.String(),
		Source:         source,
		Bits:           bits,
		BitCount:       len(bits),
		SampleCount:    len(waveform),
		Decoded:        result.Decoded,
		Palindrome:     result.Palindrome,
		LongestZeroRun: result.Stats.LongestZeroRun,
		Substitutions:  result.Substitutions,
		DurationMicros: time.Since(start).Microseconds(),
	})

	s.publish("run_completed", map[string]interface{}{
		"run_id":           result.RunID,
		"kind":             database.KindEncode,
		"scheme":           scheme.String(),
		"source":           source,
		"bit_count":        len(bits),
		"sample_count":     len(waveform),
		"longest_zero_run": result.Stats.LongestZeroRun,
	})

	return result, nil
}

// DecodeRequest is one decode invocation
type DecodeRequest struct {
	Waveform      linecode.Waveform `json:"waveform"`
	Scheme        string            `json:"scheme"`
	SamplesPerBit int               `json:"samples_per_bit"`
}

// DecodeResult carries the recovered bits or a sentinel
type DecodeResult struct {
	RunID         string `json:"run_id"`
	Bits          string `json:"bits"`
	Sentinel      bool   `json:"sentinel"`
	Substitutions int    `json:"substitutions"`
}

// Decode runs the best-effort decoder. It never fails: an unparseable
// scheme or bad waveform comes back as a sentinel result, matching the
// decoder's own contract.
func (s *Service) Decode(req DecodeRequest) DecodeResult {
	start := time.Now()

	spb := req.SamplesPerBit
	if spb == 0 {
		spb = s.encoder.SamplesPerBit()
	}

	// An unknown scheme name maps onto the decoder's own sentinel path
	scheme, err := linecode.ParseScheme(req.Scheme)
	if err != nil {
		scheme = linecode.Scheme(req.Scheme)
	}

	bits, subs := linecode.DecodeWithStats(scheme, req.Waveform, spb)

	result := DecodeResult{
		RunID:         uuid.New().String(),
		Bits:          bits,
		Sentinel:      linecode.IsSentinel(bits),
		Substitutions: subs,
	}

	if s.collector != nil {
		if result.Sentinel {
			s.collector.DecodeSentinel()
		} else {
			s.collector.DecodeCompleted(scheme.String())
			s.collector.SubstitutionsReverted(scheme.String(), subs)
		}
	}

	if !result.Sentinel {
		s.record(&database.SignalRun{
			RunID:          result.RunID,
			Kind:           database.KindDecode,
			Scheme:         scheme.String(),
			Source:         database.SourceDigital,
			Bits:           bits,
			BitCount:       len(bits),
			SampleCount:    len(req.Waveform),
			Substitutions:  subs,
			DurationMicros: time.Since(start).Microseconds(),
		})
		s.publish("run_completed", map[string]interface{}{
			"run_id":       result.RunID,
			"kind":         database.KindDecode,
			"scheme":       scheme.String(),
			"bit_count":    len(bits),
			"sample_count": len(req.Waveform),
		})
	}

	return result
}

// record persists a run when a repository is wired. Persistence failures
// degrade to a logged warning; the codec result already went back to the
// caller.
func (s *Service) record(run *database.SignalRun) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Create(run); err != nil {
		s.logger.Warn("Failed to record run",
			logger.String("run_id", run.RunID),
			logger.Error(err))
		return
	}
	if s.collector != nil {
		s.collector.RunStored()
	}
}

func (s *Service) publish(eventType string, data map[string]interface{}) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(eventType, data)
}

func (s *Service) countInvalid() {
	if s.collector != nil {
		s.collector.InvalidInput()
	}
}
