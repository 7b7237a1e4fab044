// Package filter provides the band-pass collaborator: a Butterworth
// band-pass applied zero-phase, with parameter validation against the
// Nyquist frequency, and the persisted filter configuration.
package filter

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Default cutoffs and order match the persisted configuration defaults.
const (
	DefaultLowCut  = 1.0
	DefaultHighCut = 20.0
	DefaultOrder   = 4
)

// ValidateParams checks filter parameters and returns the cutoffs
// normalized to the Nyquist frequency, clipped to (0, 1).
func ValidateParams(fs, lowCut, highCut float64, order int) (low, high float64, err error) {
	if fs <= 0 {
		return 0, 0, fmt.Errorf("sampling frequency must be positive, got %g", fs)
	}
	if order < 1 {
		return 0, 0, fmt.Errorf("filter order must be at least 1, got %d", order)
	}
	if lowCut <= 0 || highCut <= 0 {
		return 0, 0, fmt.Errorf("cutoff frequencies must be positive, got lowcut=%g, highcut=%g", lowCut, highCut)
	}

	nyq := 0.5 * fs
	if lowCut >= nyq || highCut >= nyq {
		return 0, 0, fmt.Errorf("cutoff frequencies must be below Nyquist frequency (%gHz)", nyq)
	}

	low = clip(lowCut/nyq, 0.001, 0.99)
	high = clip(highCut/nyq, 0.001, 0.99)

	if low >= high {
		return 0, 0, fmt.Errorf("low cutoff must be less than high cutoff, got %gHz and %gHz", lowCut, highCut)
	}
	return low, high, nil
}

// Bandpass applies a zero-phase Butterworth band-pass to the signal and
// rescales the output to the input's amplitude. The input is not mutated.
func Bandpass(samples []float64, fs, lowCut, highCut float64, order int) ([]float64, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("empty input signal")
	}

	low, high, err := ValidateParams(fs, lowCut, highCut, order)
	if err != nil {
		return nil, err
	}

	// Band-pass as a high-pass at the low cutoff cascaded with a low-pass
	// at the high cutoff, each built from Butterworth biquad sections.
	sections := butterworthSections(order, math.Pi*low, highpass)
	sections = append(sections, butterworthSections(order, math.Pi*high, lowpass)...)

	filtered := filtfilt(samples, sections)

	// Match the input amplitude so filtered and raw traces overlay cleanly.
	inputStd := stat.PopStdDev(samples, nil)
	filteredStd := stat.PopStdDev(filtered, nil)
	if inputStd > 0 && filteredStd > 0 {
		scale := inputStd / filteredStd
		for i := range filtered {
			filtered[i] *= scale
		}
	}

	return filtered, nil
}

type sectionKind int

const (
	lowpass sectionKind = iota
	highpass
)

// biquad holds normalized second-order section coefficients. First-order
// sections set b2 and a2 to zero.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// butterworthSections builds the cascade for an order-n Butterworth filter
// at digital frequency w0 (radians/sample, half the normalized cutoff
// times pi). Even orders are pure biquad pairs; odd orders add one
// first-order section for the real pole.
func butterworthSections(order int, w0 float64, kind sectionKind) []biquad {
	pairs := order / 2
	sections := make([]biquad, 0, pairs+order%2)

	for k := 0; k < pairs; k++ {
		theta := math.Pi * float64(2*k+1) / float64(2*order)
		q := 1 / (2 * math.Sin(theta))
		sections = append(sections, secondOrder(w0, q, kind))
	}
	if order%2 == 1 {
		sections = append(sections, firstOrder(w0, kind))
	}
	return sections
}

func secondOrder(w0, q float64, kind sectionKind) biquad {
	cosw := math.Cos(w0)
	sinw := math.Sin(w0)
	alpha := sinw / (2 * q)
	a0 := 1 + alpha

	s := biquad{
		a1: -2 * cosw / a0,
		a2: (1 - alpha) / a0,
	}
	switch kind {
	case lowpass:
		s.b0 = (1 - cosw) / 2 / a0
		s.b1 = (1 - cosw) / a0
		s.b2 = (1 - cosw) / 2 / a0
	case highpass:
		s.b0 = (1 + cosw) / 2 / a0
		s.b1 = -(1 + cosw) / a0
		s.b2 = (1 + cosw) / 2 / a0
	}
	return s
}

func firstOrder(w0 float64, kind sectionKind) biquad {
	k := math.Tan(w0 / 2)

	s := biquad{a1: (k - 1) / (k + 1)}
	switch kind {
	case lowpass:
		s.b0 = k / (k + 1)
		s.b1 = k / (k + 1)
	case highpass:
		s.b0 = 1 / (k + 1)
		s.b1 = -1 / (k + 1)
	}
	return s
}

// filtfilt runs the cascade forward and then backward over the signal,
// cancelling the phase distortion of a single pass.
func filtfilt(samples []float64, sections []biquad) []float64 {
	out := make([]float64, len(samples))
	copy(out, samples)

	applySections(out, sections)
	reverse(out)
	applySections(out, sections)
	reverse(out)

	return out
}

func applySections(x []float64, sections []biquad) {
	for _, s := range sections {
		var z1, z2 float64
		for i, v := range x {
			y := s.b0*v + z1
			z1 = s.b1*v - s.a1*y + z2
			z2 = s.b2*v - s.a2*y
			x[i] = y
		}
	}
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

func clip(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
