// Package metrics computes signal-quality figures around a P-wave arrival
// point: peak amplitude, signal-to-noise ratio and pre/post arrival energy.
package metrics

import (
	"math"

	"github.com/montanaflynn/stats"
)

// WindowSamples is the fixed length of the noise and signal windows on
// either side of the arrival sample. Windows shrink near the trace edges,
// they never error.
const WindowSamples = 500

// Metrics holds the computed figures. SNRdB, EnergyBefore and EnergyAfter
// are present iff a reference arrival time was supplied; they are genuinely
// omitted otherwise, not zeroed.
type Metrics struct {
	MaxAmplitude float64
	SNRdB        *float64 // +Inf when the noise window is silent
	EnergyBefore *float64
	EnergyAfter  *float64
}

// EnergyRatio returns EnergyAfter / EnergyBefore. The second return is
// false when the ratio is undefined: no arrival reference, or zero energy
// before the arrival. Callers must check it before using the ratio.
func (m Metrics) EnergyRatio() (float64, bool) {
	if m.EnergyBefore == nil || m.EnergyAfter == nil || *m.EnergyBefore <= 0 {
		return 0, false
	}
	return *m.EnergyAfter / *m.EnergyBefore, true
}

// Compute derives signal metrics from a sample sequence. referenceTime is
// the arrival point in seconds from trace start; pass nil when no arrival
// is available, in which case only MaxAmplitude is computed.
func Compute(samples []float64, referenceTime *float64, samplingRate float64) Metrics {
	var m Metrics

	abs := make([]float64, len(samples))
	for i, v := range samples {
		abs[i] = math.Abs(v)
	}
	if peak, err := stats.Max(abs); err == nil {
		m.MaxAmplitude = peak
	}

	if referenceTime == nil {
		return m
	}

	pSample := int(math.Floor(*referenceTime * samplingRate))
	split := min(max(pSample, 0), len(samples))

	noise := samples[min(split, max(0, pSample-WindowSamples)):split]
	signal := samples[split:max(split, min(len(samples), pSample+WindowSamples))]

	noisePower := meanSquare(noise)
	signalPower := meanSquare(signal)

	snr := math.Inf(1) // a silent pre-arrival window means effectively infinite SNR
	if noisePower > 0 {
		snr = 10 * math.Log10(signalPower/noisePower)
	}
	m.SNRdB = &snr

	energyBefore := sumSquare(noise)
	energyAfter := sumSquare(signal)
	m.EnergyBefore = &energyBefore
	m.EnergyAfter = &energyAfter

	return m
}

func meanSquare(window []float64) float64 {
	mean, err := stats.Mean(squares(window))
	if err != nil {
		return 0 // empty window
	}
	return mean
}

func sumSquare(window []float64) float64 {
	sum, err := stats.Sum(squares(window))
	if err != nil {
		return 0 // empty window
	}
	return sum
}

func squares(window []float64) []float64 {
	sq := make([]float64, len(window))
	for i, v := range window {
		sq[i] = v * v
	}
	return sq
}
