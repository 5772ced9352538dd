// Package analog turns a sampled sine wave into bitstreams via PCM or
// delta modulation, and produces the plot series for both. The resulting
// bits feed the line encoders like any hand-typed bitstream.
package analog

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/linelab/linelab/pkg/linecode"
)

// SineParams describes the source sine wave and how densely to sample it
type SineParams struct {
	Freq     float64 `json:"freq"`
	Amp      float64 `json:"amp"`
	Duration float64 `json:"duration"`
	Samples  int     `json:"samples"`
}

// Validate rejects non-positive parameters
func (p SineParams) Validate() error {
	if p.Freq <= 0 {
		return &linecode.InvalidInputError{Reason: fmt.Sprintf("frequency must be > 0, got %g", p.Freq)}
	}
	if p.Amp <= 0 {
		return &linecode.InvalidInputError{Reason: fmt.Sprintf("amplitude must be > 0, got %g", p.Amp)}
	}
	if p.Duration <= 0 {
		return &linecode.InvalidInputError{Reason: fmt.Sprintf("duration must be > 0, got %g", p.Duration)}
	}
	if p.Samples <= 0 {
		return &linecode.InvalidInputError{Reason: fmt.Sprintf("sample count must be > 0, got %d", p.Samples)}
	}
	return nil
}

// value returns the sine wave at sample i for rate fs
func (p SineParams) value(i int, fs float64) float64 {
	t := float64(i) / fs
	return p.Amp * math.Sin(2*math.Pi*p.Freq*t)
}

// DefaultStep is the delta modulation step used when none is given
func DefaultStep(amp float64) float64 {
	return amp / 16.0
}

// PCM quantizes the sine wave into nbits-wide uniform levels and returns
// the concatenated big-endian binary codes, nbits per sample.
func PCM(p SineParams, nbits int) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	if nbits <= 0 {
		return "", &linecode.InvalidInputError{Reason: fmt.Sprintf("PCM bit depth must be > 0, got %d", nbits)}
	}

	fs := float64(p.Samples) / p.Duration
	levels := 1 << nbits
	step := (2 * p.Amp) / float64(levels-1)

	var sb strings.Builder
	sb.Grow(p.Samples * nbits)
	for i := 0; i < p.Samples; i++ {
		idx := quantize(p.value(i, fs), p.Amp, step, levels)
		code := strconv.FormatInt(int64(idx), 2)
		for pad := nbits - len(code); pad > 0; pad-- {
			sb.WriteByte('0')
		}
		sb.WriteString(code)
	}
	return sb.String(), nil
}

// quantize maps v in [-amp, amp] to a level index in [0, levels-1]
func quantize(v, amp, step float64, levels int) int {
	idx := int(math.Round((v + amp) / step))
	if idx < 0 {
		idx = 0
	}
	if idx > levels-1 {
		idx = levels - 1
	}
	return idx
}

// DeltaMod emits one bit per sample: 1 when the wave is at or above the
// running staircase estimate (which then steps up), 0 otherwise (steps
// down). The estimate is clamped to the wave's amplitude.
func DeltaMod(p SineParams, step float64) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	if step <= 0 {
		return "", &linecode.InvalidInputError{Reason: fmt.Sprintf("delta modulation step must be > 0, got %g", step)}
	}

	fs := float64(p.Samples) / p.Duration
	estimate := 0.0
	var sb strings.Builder
	sb.Grow(p.Samples)
	for i := 0; i < p.Samples; i++ {
		v := p.value(i, fs)
		if v >= estimate {
			sb.WriteByte('1')
			estimate += step
		} else {
			sb.WriteByte('0')
			estimate -= step
		}
		estimate = math.Max(-p.Amp, math.Min(p.Amp, estimate))
	}
	return sb.String(), nil
}

// Point is one (time, value) sample of a plot series
type Point struct {
	T float64 `json:"t"`
	V float64 `json:"v"`
}

// SinePoints samples the sine wave at numPoints evenly spaced instants
// across the duration, endpoints included. numPoints below 2 is coerced
// to 2.
func SinePoints(p SineParams, numPoints int) []Point {
	if numPoints < 2 {
		numPoints = 2
	}
	timeStep := p.Duration / float64(numPoints-1)
	points := make([]Point, 0, numPoints)
	for i := 0; i < numPoints; i++ {
		t := float64(i) * timeStep
		points = append(points, Point{T: t, V: p.Amp * math.Sin(2*math.Pi*p.Freq*t)})
	}
	return points
}

// PCMStaircase returns the quantized sample-and-hold series: each sample
// contributes a pair of points holding its quantized level for one sample
// period.
func PCMStaircase(p SineParams, nbits int) ([]Point, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if nbits <= 0 {
		return nil, &linecode.InvalidInputError{Reason: fmt.Sprintf("PCM bit depth must be > 0, got %d", nbits)}
	}

	fs := float64(p.Samples) / p.Duration
	levels := 1 << nbits
	step := (2 * p.Amp) / float64(levels-1)

	points := make([]Point, 0, p.Samples*2)
	for i := 0; i < p.Samples; i++ {
		t := float64(i) / fs
		idx := quantize(p.value(i, fs), p.Amp, step, levels)
		q := -p.Amp + float64(idx)*step
		points = append(points, Point{T: t, V: q}, Point{T: t + 1/fs, V: q})
	}
	return points, nil
}
