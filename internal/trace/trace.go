package trace

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"
)

// Raw holds a decoded trace exactly as it came off the wire: the sample
// sequence, the sampling rate and the absolute timestamp of the first sample.
type Raw struct {
	Samples      []float64 // Ordered amplitude samples
	SamplingRate float64   // Samples per second, must be > 0
	StartTime    time.Time // Absolute time of the first sample
}

// Trace is an analysis-ready seismic trace. It is immutable once loaded:
// a new file selection produces a new Trace, never a mutation.
type Trace struct {
	Samples      []float64 // Raw amplitude samples
	Normalized   []float64 // Zero-mean samples, unit variance where defined
	Times        []float64 // Seconds from trace start, times[i] = i / rate
	SamplingRate float64   // Samples per second
	StartTime    time.Time // Absolute time of the first sample
}

// Duration returns the trace length in seconds.
func (t *Trace) Duration() float64 {
	return float64(len(t.Samples)) / t.SamplingRate
}

// EndTime returns the absolute time of the end of the trace.
func (t *Trace) EndTime() time.Time {
	return t.StartTime.Add(time.Duration(t.Duration() * float64(time.Second)))
}

// MalformedTraceError is returned when a decoded trace cannot be analyzed:
// no samples, or a non-positive sampling rate. It is fatal to that single
// file only, a batch run converts it into a skip.
type MalformedTraceError struct {
	Reason string
	Err    error
}

func (e *MalformedTraceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed trace: %s: %s", e.Reason, e.Err)
	}
	return fmt.Sprintf("malformed trace: %s", e.Reason)
}

func (e *MalformedTraceError) Unwrap() error {
	return e.Err
}

// Load turns a decoded raw trace into an analysis-ready Trace. The input is
// not mutated. Normalization is zero-mean, unit-variance; a flat trace with
// zero variance is only centered so that division by zero never happens.
func Load(raw Raw) (*Trace, error) {
	if len(raw.Samples) == 0 {
		return nil, &MalformedTraceError{Reason: "empty trace data"}
	}
	if raw.SamplingRate <= 0 {
		return nil, &MalformedTraceError{Reason: fmt.Sprintf("invalid sampling rate: %g", raw.SamplingRate)}
	}

	mean := stat.Mean(raw.Samples, nil)
	std := stat.PopStdDev(raw.Samples, nil)

	normalized := make([]float64, len(raw.Samples))
	for i, v := range raw.Samples {
		if std != 0 {
			normalized[i] = (v - mean) / std
		} else {
			normalized[i] = v - mean
		}
	}

	times := make([]float64, len(raw.Samples))
	for i := range times {
		times[i] = float64(i) / raw.SamplingRate
	}

	samples := make([]float64, len(raw.Samples))
	copy(samples, raw.Samples)

	return &Trace{
		Samples:      samples,
		Normalized:   normalized,
		Times:        times,
		SamplingRate: raw.SamplingRate,
		StartTime:    raw.StartTime,
	}, nil
}
