package studio

import (
	"fmt"

	"github.com/linelab/linelab/pkg/analog"
	"github.com/linelab/linelab/pkg/database"
	"github.com/linelab/linelab/pkg/linecode"
)

// Analog conversion kinds
const (
	AnalogPCM = "pcm"
	AnalogDM  = "dm"
)

// AnalogRequest converts a sine wave to bits, optionally encoding them.
// Omitted (zero) freq, amp and duration default to 1.
type AnalogRequest struct {
	Kind     string  `json:"kind"` // pcm or dm
	Freq     float64 `json:"freq"`
	Amp      float64 `json:"amp"`
	Duration float64 `json:"duration"`
	Samples  int     `json:"samples"`
	PCMBits  int     `json:"pcm_bits"` // PCM quantizer depth; service default when 0
	Step     float64 `json:"step"`     // Delta modulation step; amp/16 when 0

	Scheme string `json:"scheme,omitempty"` // When set with Encode, feed the bits onward
	Encode bool   `json:"encode"`
}

// AnalogDefaults are the service-configured fallbacks for omitted fields
type AnalogDefaults struct {
	PCMBits        int
	DefaultSamples int
	MaxSamples     int // Cap on requested sample counts, 0 disables
}

// AnalogResult is the outcome of an analog conversion
type AnalogResult struct {
	Kind         string         `json:"kind"`
	Bits         string         `json:"bits"`
	SineSeries   []analog.Point `json:"sine_series"`
	QuantSeries  []analog.Point `json:"quant_series,omitempty"`
	EncodeResult *EncodeResult  `json:"encode_result,omitempty"`
}

// Analog converts a sine wave into a bitstream via PCM or delta modulation
// and, when requested, runs the result through the encode path.
func (s *Service) Analog(req AnalogRequest, defaults AnalogDefaults) (*AnalogResult, error) {
	if req.Freq == 0 {
		req.Freq = 1
	}
	if req.Amp == 0 {
		req.Amp = 1
	}
	if req.Duration == 0 {
		req.Duration = 1
	}
	if req.Samples == 0 {
		req.Samples = defaults.DefaultSamples
	}
	if defaults.MaxSamples > 0 && req.Samples > defaults.MaxSamples {
		s.countInvalid()
		return nil, &linecode.InvalidInputError{
			Reason: fmt.Sprintf("sample count %d exceeds the %d sample limit", req.Samples, defaults.MaxSamples),
		}
	}

	params := analog.SineParams{
		Freq:     req.Freq,
		Amp:      req.Amp,
		Duration: req.Duration,
		Samples:  req.Samples,
	}

	result := &AnalogResult{Kind: req.Kind}
	switch req.Kind {
	case AnalogPCM:
		nbits := req.PCMBits
		if nbits == 0 {
			nbits = defaults.PCMBits
		}
		bits, err := analog.PCM(params, nbits)
		if err != nil {
			s.countInvalid()
			return nil, err
		}
		result.Bits = bits
		result.SineSeries = analog.SinePoints(params, 4*req.Samples)
		result.QuantSeries, _ = analog.PCMStaircase(params, nbits)

	case AnalogDM:
		step := req.Step
		if step == 0 {
			step = analog.DefaultStep(req.Amp)
		}
		bits, err := analog.DeltaMod(params, step)
		if err != nil {
			s.countInvalid()
			return nil, err
		}
		result.Bits = bits
		result.SineSeries = analog.SinePoints(params, 4*req.Samples)

	default:
		s.countInvalid()
		return nil, &linecode.InvalidInputError{
			Reason: fmt.Sprintf("analog kind must be %q or %q, got %q", AnalogPCM, AnalogDM, req.Kind),
		}
	}

	if s.collector != nil {
		s.collector.AnalogConverted(req.Kind)
	}

	if req.Encode && req.Scheme != "" {
		source := database.SourcePCM
		if req.Kind == AnalogDM {
			source = database.SourceDM
		}
		enc, err := s.Encode(EncodeRequest{
			Bits:   result.Bits,
			Scheme: req.Scheme,
			Decode: true,
			Source: source,
		})
		if err != nil {
			return nil, err
		}
		result.EncodeResult = enc
	}

	return result, nil
}
