package trace

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestLoad_Normalization(t *testing.T) {
	raw := Raw{
		Samples:      []float64{1, 2, 3, 4, 5, 6, 7, 8},
		SamplingRate: 2,
		StartTime:    time.Unix(1_700_000_000, 0).UTC(),
	}

	tr, err := Load(raw)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	var mean float64
	for _, v := range tr.Normalized {
		mean += v
	}
	mean /= float64(len(tr.Normalized))

	var variance float64
	for _, v := range tr.Normalized {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(tr.Normalized))

	if math.Abs(mean) > 1e-12 {
		t.Errorf("Expected zero mean, got %g", mean)
	}
	if math.Abs(variance-1) > 1e-12 {
		t.Errorf("Expected unit variance, got %g", variance)
	}

	if got := tr.Duration(); got != 4 {
		t.Errorf("Expected duration 4s, got %gs", got)
	}

	for i, want := range []float64{0, 0.5, 1, 1.5} {
		if tr.Times[i] != want {
			t.Errorf("Times[%d]: expected %g, got %g", i, want, tr.Times[i])
		}
	}
}

func TestLoad_ZeroVariance(t *testing.T) {
	raw := Raw{
		Samples:      []float64{5, 5, 5, 5},
		SamplingRate: 100,
	}

	tr, err := Load(raw)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for i, v := range tr.Normalized {
		if v != 0 {
			t.Errorf("Normalized[%d]: expected 0 for a flat trace, got %g", i, v)
		}
	}
}

func TestLoad_Malformed(t *testing.T) {
	testCases := []struct {
		name string
		raw  Raw
	}{
		{"empty samples", Raw{SamplingRate: 100}},
		{"zero sampling rate", Raw{Samples: []float64{1, 2}, SamplingRate: 0}},
		{"negative sampling rate", Raw{Samples: []float64{1, 2}, SamplingRate: -50}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(tc.raw)
			if err == nil {
				t.Fatal("Expected error for malformed trace")
			}

			var malformed *MalformedTraceError
			if !errors.As(err, &malformed) {
				t.Errorf("Expected MalformedTraceError, got %T", err)
			}
		})
	}
}

func TestLoad_DoesNotMutateInput(t *testing.T) {
	samples := []float64{1, 2, 3}
	raw := Raw{Samples: samples, SamplingRate: 1}

	if _, err := Load(raw); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	for i, want := range []float64{1, 2, 3} {
		if samples[i] != want {
			t.Errorf("Input mutated at %d: expected %g, got %g", i, want, samples[i])
		}
	}
}
