package linecode

import (
	"math"
	"strings"
)

// Sentinel results returned by Decode in place of an error. Decoding is
// best-effort: malformed input yields a marker string the caller can show,
// not a failure.
const (
	SentinelEmptyWaveform = "(empty waveform)"
	SentinelInvalidRate   = "(invalid samples per bit)"
	SentinelUnsupported   = "(unsupported decoding)"
)

// IsSentinel reports whether a decode result is one of the placeholder
// strings rather than recovered bits
func IsSentinel(result string) bool {
	switch result {
	case SentinelEmptyWaveform, SentinelInvalidRate, SentinelUnsupported:
		return true
	}
	return false
}

// Decode recovers the bitstream encoded in w. It never fails; precondition
// problems return one of the Sentinel constants. samplesPerBit does not
// have to match the encoder's rate type-wise, only its value.
func Decode(scheme Scheme, w Waveform, samplesPerBit int) string {
	bits, _ := DecodeWithStats(scheme, w, samplesPerBit)
	return bits
}

// DecodeWithStats is Decode plus the number of scrambling substitution
// windows reverted, which is always zero for the unscrambled schemes.
func DecodeWithStats(scheme Scheme, w Waveform, samplesPerBit int) (string, int) {
	if len(w) == 0 {
		return SentinelEmptyWaveform, 0
	}
	if samplesPerBit <= 0 {
		return SentinelInvalidRate, 0
	}

	// One threshold per call keeps every amplitude decision consistent and
	// tolerates uniformly scaled input.
	threshold := math.Max(0.05, w.MaxAbs()*0.25)

	switch scheme {
	case SchemeNRZL:
		return decodeNRZL(w, samplesPerBit), 0
	case SchemeNRZI:
		return decodeNRZI(w, samplesPerBit), 0
	case SchemeManchester:
		return decodeManchester(w, samplesPerBit, threshold), 0
	case SchemeDiffManchester:
		return decodeDiffManchester(w, samplesPerBit), 0
	case SchemeAMI:
		return decodeAMI(w, samplesPerBit, threshold), 0
	case SchemeAMIB8ZS:
		prelim := decodeAMI(w, samplesPerBit, threshold)
		return unscrambleB8ZS(prelim, w, samplesPerBit, threshold)
	case SchemeAMIHDB3:
		prelim := decodeAMI(w, samplesPerBit, threshold)
		return unscrambleHDB3(prelim, w, samplesPerBit, threshold)
	}
	return SentinelUnsupported, 0
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func decodeNRZL(w Waveform, spb int) string {
	var sb strings.Builder
	for i := 0; i+spb <= len(w); i += spb {
		// Near-zero averages read as 0, the conservative choice
		if w.cellMean(i, spb) > 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func decodeNRZI(w Waveform, spb int) string {
	if len(w) < spb {
		return ""
	}
	var sb strings.Builder
	// The first bit has no prior reference level; emit the convention
	// default rather than inventing a side channel.
	sb.WriteByte('0')
	prevSign := sign(w.cellMean(0, spb))
	for i := spb; i+spb <= len(w); i += spb {
		currSign := sign(w.cellMean(i, spb))
		if currSign != 0 && prevSign != 0 && currSign != prevSign {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
		if currSign != 0 {
			prevSign = currSign
		}
	}
	return sb.String()
}

func decodeManchester(w Waveform, spb int, threshold float64) string {
	// Each half needs at least one sample
	if spb < 2 {
		return ""
	}
	half := spb / 2
	var sb strings.Builder
	for i := 0; i+spb <= len(w); i += spb {
		first := w.cellMean(i, half)
		second := w.cellMean(i+half, spb-half)
		diff := second - first
		switch {
		case math.Abs(diff) <= threshold:
			// Halves too close to call; fall back to the whole cell's sign
			if w.cellMean(i, spb) > 0 {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		case diff > 0:
			// LOW->HIGH mid-cell transition is a 1
			sb.WriteByte('1')
		default:
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

func decodeDiffManchester(w Waveform, spb int) string {
	if spb < 2 || len(w) < spb {
		return ""
	}
	half := spb / 2
	var sb strings.Builder
	// First bit: no preceding cell to compare against, convention default
	sb.WriteByte('0')
	prevEnd := w.cellMean(half, spb-half)
	for i := spb; i+spb <= len(w); i += spb {
		firstHalf := w.cellMean(i, half)
		// No transition at the cell boundary means 1
		if sign(firstHalf) == sign(prevEnd) {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
		prevEnd = w.cellMean(i+half, spb-half)
	}
	return sb.String()
}

func decodeAMI(w Waveform, spb int, threshold float64) string {
	var sb strings.Builder
	for i := 0; i+spb <= len(w); i += spb {
		// Amplitude alone decides; polarity only matters to the unscramblers
		if math.Abs(w.cellMean(i, spb)) > threshold {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}
