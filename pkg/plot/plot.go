// Package plot compresses waveforms into step series for display. The
// codec's waveform is complete and order-correct; plotting only needs the
// corner points of the staircase, not every sample.
package plot

import "github.com/linelab/linelab/pkg/linecode"

// Point is one display point. X is in bit units (sample index divided by
// the sample rate) so the axis lines up with bit boundaries.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// WaveformSteps reduces a waveform to its step outline: the starting
// point, a pair of points at every level transition, and the closing
// point. Runs of equal samples contribute no interior points. An empty
// waveform yields an empty series.
func WaveformSteps(w linecode.Waveform, samplesPerBit int) []Point {
	if len(w) == 0 || samplesPerBit <= 0 {
		return []Point{}
	}

	spb := float64(samplesPerBit)
	points := make([]Point, 0, 8)
	points = append(points, Point{X: 0, Y: w[0]})

	for i := 1; i < len(w); i++ {
		if w[i] == w[i-1] {
			continue
		}
		x := float64(i) / spb
		points = append(points, Point{X: x, Y: w[i-1]}, Point{X: x, Y: w[i]})
	}

	points = append(points, Point{X: float64(len(w)) / spb, Y: w[len(w)-1]})
	return points
}
