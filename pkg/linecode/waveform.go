package linecode

import (
	"fmt"
	"strings"
)

// Signal levels shared by every scheme. Levels are float64 rather than a
// three-valued enum so that scaled or noisy foreign waveforms flow through
// the same type on the decode path.
const (
	High = 1.0
	Low  = -1.0
	Zero = 0.0
)

// Waveform is a sampled signal, partitioned into cells of samplesPerBit
// samples, one cell per encoded bit.
type Waveform []float64

// NumCells returns the number of complete cells at the given rate.
// Trailing partial cells are not counted.
func (w Waveform) NumCells(samplesPerBit int) int {
	if samplesPerBit <= 0 {
		return 0
	}
	return len(w) / samplesPerBit
}

// MaxAbs returns the largest absolute sample value, 0 for an empty waveform
func (w Waveform) MaxAbs() float64 {
	maxAbs := 0.0
	for _, v := range w {
		if v < 0 {
			v = -v
		}
		if v > maxAbs {
			maxAbs = v
		}
	}
	return maxAbs
}

// cellMean returns the mean of the cell starting at sample offset start.
// The caller guarantees start+n <= len(w).
func (w Waveform) cellMean(start, n int) float64 {
	sum := 0.0
	for i := start; i < start+n; i++ {
		sum += w[i]
	}
	return sum / float64(n)
}

// ValidateBits checks that bits contains only '0' and '1' characters.
// The empty string is valid.
func ValidateBits(bits string) error {
	for i := 0; i < len(bits); i++ {
		if c := bits[i]; c != '0' && c != '1' {
			return &InvalidInputError{
				Reason: fmt.Sprintf("character %q at position %d, want '0' or '1'", c, i),
			}
		}
	}
	return nil
}

// NormalizeBits strips the separators tolerated in hand-typed input
// (spaces, tabs, newlines, commas). It does not validate the remainder.
func NormalizeBits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case ' ', '\t', '\r', '\n', ',':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
