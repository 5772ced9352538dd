package linecode

import "math"

// The scramblers hide zero runs behind pulse patterns that a plain AMI
// decode reads as ones. The pulse positions alone cannot reveal a
// substitution; the polarity violations in the raw waveform can, so the
// unscramblers re-check candidate windows against the samples.
//
// The scan is greedy: the first window that matches is reverted and the
// scan resumes after it, so an adversarial alignment could in principle
// shadow a later valid window. Real encoder output never produces
// overlapping candidates.

// unscrambleB8ZS reverts B8ZS substitutions in the preliminary AMI decode.
// A window is eight cells shaped 000VB0VB whose four pulses read
// +ref,-ref,+ref,-ref against the most recent pulse before the window.
func unscrambleB8ZS(prelim string, w Waveform, spb int, threshold float64) (string, int) {
	n := len(prelim)
	if n == 0 {
		return prelim, 0
	}
	out := []byte(prelim)
	reverted := 0
	for b := 0; b+8 <= n; b++ {
		var av [8]float64
		for k := 0; k < 8; k++ {
			av[k] = w.cellMean((b+k)*spb, spb)
		}

		// Shape first: zero cells at 0,1,2,5 and pulses at 3,4,6,7
		shapeOK := math.Abs(av[3]) > threshold && math.Abs(av[4]) > threshold &&
			math.Abs(av[6]) > threshold && math.Abs(av[7]) > threshold &&
			math.Abs(av[0]) <= threshold && math.Abs(av[1]) <= threshold &&
			math.Abs(av[2]) <= threshold && math.Abs(av[5]) <= threshold
		if !shapeOK {
			continue
		}

		// A window with no pulse anywhere before it cannot be verified
		ref := lookbackSign(w, b-1, spb, threshold)
		if ref == 0 {
			continue
		}

		if sign(av[3]) == ref && sign(av[4]) == -ref &&
			sign(av[6]) == ref && sign(av[7]) == -ref {
			for k := 0; k < 8; k++ {
				out[b+k] = '0'
			}
			reverted++
			b += 7
		}
	}
	return string(out), reverted
}

// unscrambleHDB3 reverts HDB3 substitutions. Two window templates: 000V,
// where the violation at position 3 repeats the reference polarity, and
// B00V, where the balancing pulse at position 0 opposes the reference and
// the violation at position 3 matches the balancing pulse.
func unscrambleHDB3(prelim string, w Waveform, spb int, threshold float64) (string, int) {
	n := len(prelim)
	if n == 0 {
		return prelim, 0
	}
	out := []byte(prelim)
	reverted := 0
	for b := 0; b+4 <= n; b++ {
		var av [4]float64
		for k := 0; k < 4; k++ {
			av[k] = w.cellMean((b+k)*spb, spb)
		}

		zeroHead := math.Abs(av[0]) <= threshold && math.Abs(av[1]) <= threshold &&
			math.Abs(av[2]) <= threshold && math.Abs(av[3]) > threshold
		if zeroHead {
			ref := lookbackSign(w, b-1, spb, threshold)
			if ref != 0 && sign(av[3]) == ref {
				for k := 0; k < 4; k++ {
					out[b+k] = '0'
				}
				reverted++
				b += 3
				continue
			}
		}

		pulseHead := math.Abs(av[0]) > threshold && math.Abs(av[1]) <= threshold &&
			math.Abs(av[2]) <= threshold && math.Abs(av[3]) > threshold
		if pulseHead {
			s0, s3 := sign(av[0]), sign(av[3])
			if s0 != 0 && s0 == s3 {
				ref := lookbackSign(w, b-1, spb, threshold)
				if ref != 0 && s0 == -ref {
					for k := 0; k < 4; k++ {
						out[b+k] = '0'
					}
					reverted++
					b += 3
				}
			}
		}
	}
	return string(out), reverted
}

// lookbackSign scans cells fromCell down to 0 for the most recent cell
// whose mean magnitude clears the threshold and returns its sign, 0 when
// no such cell exists.
func lookbackSign(w Waveform, fromCell, spb int, threshold float64) int {
	for i := fromCell; i >= 0; i-- {
		if a := w.cellMean(i*spb, spb); math.Abs(a) > threshold {
			return sign(a)
		}
	}
	return 0
}
