package analog

import (
	"errors"
	"math"
	"testing"

	"github.com/linelab/linelab/pkg/linecode"
)

func TestSineParamsValidate(t *testing.T) {
	good := SineParams{Freq: 1, Amp: 1, Duration: 1, Samples: 50}
	if err := good.Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}

	tests := []struct {
		name string
		p    SineParams
	}{
		{"zero freq", SineParams{Freq: 0, Amp: 1, Duration: 1, Samples: 50}},
		{"negative amp", SineParams{Freq: 1, Amp: -1, Duration: 1, Samples: 50}},
		{"zero duration", SineParams{Freq: 1, Amp: 1, Duration: 0, Samples: 50}},
		{"zero samples", SineParams{Freq: 1, Amp: 1, Duration: 1, Samples: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			var invErr *linecode.InvalidInputError
			if !errors.As(err, &invErr) {
				t.Errorf("error type = %T, want *linecode.InvalidInputError", err)
			}
		})
	}
}

func TestPCM(t *testing.T) {
	p := SineParams{Freq: 1, Amp: 1, Duration: 1, Samples: 4}

	// One-bit PCM of a unit sine sampled at 0, 0.25, 0.5, 0.75:
	// values 0, 1, ~0, -1 quantize to 1, 1, 1, 0
	got, err := PCM(p, 1)
	if err != nil {
		t.Fatalf("PCM failed: %v", err)
	}
	if got != "1110" {
		t.Errorf("PCM 1-bit = %q, want %q", got, "1110")
	}

	// Two-bit PCM of the same samples: indices 2, 3, 2, 0
	got, err = PCM(p, 2)
	if err != nil {
		t.Fatalf("PCM failed: %v", err)
	}
	if got != "10111000" {
		t.Errorf("PCM 2-bit = %q, want %q", got, "10111000")
	}
}

func TestPCM_OutputLength(t *testing.T) {
	p := SineParams{Freq: 3, Amp: 2, Duration: 0.5, Samples: 37}
	for _, nbits := range []int{1, 4, 8} {
		got, err := PCM(p, nbits)
		if err != nil {
			t.Fatalf("PCM(%d bits) failed: %v", nbits, err)
		}
		if len(got) != 37*nbits {
			t.Errorf("PCM(%d bits) length = %d, want %d", nbits, len(got), 37*nbits)
		}
		if err := linecode.ValidateBits(got); err != nil {
			t.Errorf("PCM(%d bits) output is not binary: %v", nbits, err)
		}
	}
}

func TestPCM_InvalidBitDepth(t *testing.T) {
	p := SineParams{Freq: 1, Amp: 1, Duration: 1, Samples: 4}
	if _, err := PCM(p, 0); err == nil {
		t.Error("PCM with zero bit depth succeeded")
	}
}

func TestDeltaMod(t *testing.T) {
	p := SineParams{Freq: 1, Amp: 1, Duration: 1, Samples: 4}

	// Estimate walk: 0 -> 0.25 -> 0.5 -> 0.25 -> 0 against samples
	// 0, 1, ~0, -1
	got, err := DeltaMod(p, 0.25)
	if err != nil {
		t.Fatalf("DeltaMod failed: %v", err)
	}
	if got != "1100" {
		t.Errorf("DeltaMod = %q, want %q", got, "1100")
	}
}

func TestDeltaMod_DefaultStep(t *testing.T) {
	if got := DefaultStep(1.0); got != 0.0625 {
		t.Errorf("DefaultStep(1) = %v, want 0.0625", got)
	}

	p := SineParams{Freq: 2, Amp: 1, Duration: 1, Samples: 64}
	got, err := DeltaMod(p, DefaultStep(p.Amp))
	if err != nil {
		t.Fatalf("DeltaMod failed: %v", err)
	}
	if len(got) != 64 {
		t.Errorf("DeltaMod length = %d, want 64", len(got))
	}
	if err := linecode.ValidateBits(got); err != nil {
		t.Errorf("DeltaMod output is not binary: %v", err)
	}
}

func TestDeltaMod_InvalidStep(t *testing.T) {
	p := SineParams{Freq: 1, Amp: 1, Duration: 1, Samples: 4}
	for _, step := range []float64{0, -0.5} {
		if _, err := DeltaMod(p, step); err == nil {
			t.Errorf("DeltaMod with step %g succeeded", step)
		}
	}
}

func TestSinePoints(t *testing.T) {
	p := SineParams{Freq: 1, Amp: 1, Duration: 1, Samples: 50}

	points := SinePoints(p, 5)
	if len(points) != 5 {
		t.Fatalf("SinePoints returned %d points, want 5", len(points))
	}
	if points[0].T != 0 {
		t.Errorf("first point t = %v, want 0", points[0].T)
	}
	if points[4].T != 1 {
		t.Errorf("last point t = %v, want 1", points[4].T)
	}
	// Quarter-period peak
	if math.Abs(points[1].V-1.0) > 1e-9 {
		t.Errorf("peak value = %v, want 1", points[1].V)
	}

	// Degenerate point counts are coerced to a two-point span
	if got := SinePoints(p, 1); len(got) != 2 {
		t.Errorf("SinePoints(1) returned %d points, want 2", len(got))
	}
}

func TestPCMStaircase(t *testing.T) {
	p := SineParams{Freq: 1, Amp: 1, Duration: 1, Samples: 2}
	points, err := PCMStaircase(p, 1)
	if err != nil {
		t.Fatalf("PCMStaircase failed: %v", err)
	}
	if len(points) != 4 {
		t.Fatalf("PCMStaircase returned %d points, want 4", len(points))
	}
	// Both samples (at t=0 and t=0.5) quantize to the upper of the two
	// 1-bit levels, +amp
	for i, pt := range points {
		if pt.V != 1.0 {
			t.Errorf("point %d level = %v, want 1.0", i, pt.V)
		}
	}
	if points[1].T != 0.5 {
		t.Errorf("hold point t = %v, want 0.5", points[1].T)
	}
}
