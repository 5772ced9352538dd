package linecode

// Encoder turns bitstreams into waveforms at a fixed sample rate.
// The rate is validated once at construction; a constructed Encoder is
// immutable and safe for concurrent use.
type Encoder struct {
	spb int
}

// NewEncoder returns an Encoder emitting samplesPerBit samples per bit.
// The rate must be an even number >= 2 (Manchester variants split each
// cell into two equal halves).
func NewEncoder(samplesPerBit int) (*Encoder, error) {
	if samplesPerBit < 2 || samplesPerBit%2 != 0 {
		return nil, &ConfigError{SamplesPerBit: samplesPerBit}
	}
	return &Encoder{spb: samplesPerBit}, nil
}

// SamplesPerBit returns the configured rate
func (e *Encoder) SamplesPerBit() int {
	return e.spb
}

// Encode produces the waveform for bits under the given scheme.
// Empty bits yield an empty waveform. The result always satisfies
// len(waveform) == len(bits) * samplesPerBit.
func (e *Encoder) Encode(bits string, scheme Scheme) (Waveform, error) {
	if err := ValidateBits(bits); err != nil {
		return nil, err
	}
	switch scheme {
	case SchemeNRZL:
		return e.encodeNRZL(bits), nil
	case SchemeNRZI:
		return e.encodeNRZI(bits), nil
	case SchemeManchester:
		return e.encodeManchester(bits), nil
	case SchemeDiffManchester:
		return e.encodeDiffManchester(bits), nil
	case SchemeAMI:
		return e.encodeAMI(bits), nil
	case SchemeAMIB8ZS:
		return e.encodeB8ZS(bits), nil
	case SchemeAMIHDB3:
		return e.encodeHDB3(bits), nil
	}
	return nil, &UnsupportedSchemeError{Name: string(scheme)}
}

// appendCell appends n samples at the given level
func appendCell(w Waveform, level float64, n int) Waveform {
	for i := 0; i < n; i++ {
		w = append(w, level)
	}
	return w
}

// fillCell overwrites n samples starting at offset with the given level.
// Used by the scramblers to rewrite already-emitted cells.
func fillCell(w Waveform, offset int, level float64, n int) {
	for i := 0; i < n; i++ {
		w[offset+i] = level
	}
}

func (e *Encoder) encodeNRZL(bits string) Waveform {
	w := make(Waveform, 0, len(bits)*e.spb)
	for _, bit := range bits {
		if bit == '1' {
			w = appendCell(w, High, e.spb)
		} else {
			w = appendCell(w, Low, e.spb)
		}
	}
	return w
}

func (e *Encoder) encodeNRZI(bits string) Waveform {
	w := make(Waveform, 0, len(bits)*e.spb)
	level := Low // initial level convention, not recoverable by a decoder
	for _, bit := range bits {
		if bit == '1' {
			level = -level
		}
		w = appendCell(w, level, e.spb)
	}
	return w
}

func (e *Encoder) encodeManchester(bits string) Waveform {
	w := make(Waveform, 0, len(bits)*e.spb)
	half := e.spb / 2
	for _, bit := range bits {
		// IEEE convention: 1 is a LOW->HIGH mid-cell transition
		if bit == '1' {
			w = appendCell(w, Low, half)
			w = appendCell(w, High, half)
		} else {
			w = appendCell(w, High, half)
			w = appendCell(w, Low, half)
		}
	}
	return w
}

func (e *Encoder) encodeDiffManchester(bits string) Waveform {
	w := make(Waveform, 0, len(bits)*e.spb)
	half := e.spb / 2
	level := Low // initial level convention
	for _, bit := range bits {
		// Transition at the cell boundary encodes 0
		if bit == '0' {
			level = -level
		}
		w = appendCell(w, level, half)
		// Mid-cell transition is unconditional
		level = -level
		w = appendCell(w, level, half)
	}
	return w
}

func (e *Encoder) encodeAMI(bits string) Waveform {
	w := make(Waveform, 0, len(bits)*e.spb)
	polarity := High // flipped before every mark, so the first mark is Low
	for _, bit := range bits {
		if bit == '1' {
			polarity = -polarity
			w = appendCell(w, polarity, e.spb)
		} else {
			w = appendCell(w, Zero, e.spb)
		}
	}
	return w
}

// encodeB8ZS is AMI with every run of 8 zeros rewritten in place as
// 000VB0VB. With p the polarity of the pulse preceding the run, the four
// pulses are V=p, B=-p, V=p, B=-p: the violations at positions 3 and 6
// repeat p, which is the signature the unscrambler verifies.
func (e *Encoder) encodeB8ZS(bits string) Waveform {
	w := make(Waveform, 0, len(bits)*e.spb)
	polarity := High // flipped before every mark, as in plain AMI
	lastPulse := Low // assumed prior pulse when a run precedes any mark
	zeros := 0
	for _, bit := range bits {
		if bit == '1' {
			zeros = 0
			polarity = -polarity
			lastPulse = polarity
			w = appendCell(w, polarity, e.spb)
			continue
		}
		zeros++
		w = appendCell(w, Zero, e.spb)
		if zeros < 8 {
			continue
		}
		// Rewrite the trailing eight cells
		start := len(w) - 8*e.spb
		v := lastPulse
		b := -lastPulse
		fillCell(w, start+3*e.spb, v, e.spb)
		fillCell(w, start+4*e.spb, b, e.spb)
		fillCell(w, start+6*e.spb, v, e.spb)
		fillCell(w, start+7*e.spb, b, e.spb)
		// The last pulse on the line is now the closing B
		lastPulse = b
		polarity = b
		zeros = 0
	}
	return w
}

// encodeHDB3 is AMI with every run of 4 zeros substituted. The template
// depends on the number of real pulses since the previous substitution:
// even -> B00V (B=-p restores alternation, V=B violates it), odd -> 000V
// (V=p, the violation alone). Alternating templates keeps the line
// DC-balanced across repeated substitutions.
func (e *Encoder) encodeHDB3(bits string) Waveform {
	w := make(Waveform, 0, len(bits)*e.spb)
	polarity := High
	lastPulse := Low
	zeros := 0
	pulses := 0 // real pulses since the last substitution
	for _, bit := range bits {
		if bit == '1' {
			zeros = 0
			polarity = -polarity
			lastPulse = polarity
			w = appendCell(w, polarity, e.spb)
			pulses++
			continue
		}
		zeros++
		w = appendCell(w, Zero, e.spb)
		if zeros < 4 {
			continue
		}
		start := len(w) - 4*e.spb
		var v float64
		if pulses%2 == 0 {
			b := -lastPulse
			v = b
			fillCell(w, start, b, e.spb)
			fillCell(w, start+3*e.spb, v, e.spb)
		} else {
			v = lastPulse
			fillCell(w, start+3*e.spb, v, e.spb)
		}
		lastPulse = v
		polarity = v
		zeros = 0
		pulses = 0
	}
	return w
}
