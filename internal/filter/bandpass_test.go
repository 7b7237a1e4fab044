package filter

import (
	"math"
	"testing"
)

func TestValidateParams(t *testing.T) {
	testCases := []struct {
		name    string
		fs      float64
		lowCut  float64
		highCut float64
		order   int
		wantErr bool
	}{
		{"valid", 100, 1, 20, 4, false},
		{"zero sampling frequency", 0, 1, 20, 4, true},
		{"zero order", 100, 1, 20, 0, true},
		{"zero low cutoff", 100, 0, 20, 4, true},
		{"negative high cutoff", 100, 1, -5, 4, true},
		{"high cutoff at Nyquist", 100, 1, 50, 4, true},
		{"low above high", 100, 20, 1, 4, true},
		{"equal cutoffs", 100, 10, 10, 4, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			low, high, err := ValidateParams(tc.fs, tc.lowCut, tc.highCut, tc.order)
			if tc.wantErr {
				if err == nil {
					t.Fatal("Expected a validation error")
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateParams failed: %v", err)
			}

			if math.Abs(low-0.02) > 1e-12 {
				t.Errorf("Expected normalized low cutoff 0.02, got %g", low)
			}
			if math.Abs(high-0.4) > 1e-12 {
				t.Errorf("Expected normalized high cutoff 0.4, got %g", high)
			}
		})
	}
}

func TestBandpass_Errors(t *testing.T) {
	if _, err := Bandpass(nil, 100, 1, 20, 4); err == nil {
		t.Error("Expected error for empty input")
	}
	if _, err := Bandpass([]float64{1, 2, 3}, 100, 20, 1, 4); err == nil {
		t.Error("Expected error for inverted cutoffs")
	}
}

func TestBandpass_PreservesLength(t *testing.T) {
	samples := make([]float64, 2000)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 5 * float64(i) / 100)
	}

	filtered, err := Bandpass(samples, 100, 1, 20, 4)
	if err != nil {
		t.Fatalf("Bandpass failed: %v", err)
	}

	if len(filtered) != len(samples) {
		t.Errorf("Expected %d output samples, got %d", len(samples), len(filtered))
	}
}

func TestBandpass_RemovesDC(t *testing.T) {
	// A constant signal carries only the 0 Hz component, well below the 1 Hz
	// low cutoff. Away from the edge transients the output must be near zero.
	samples := make([]float64, 2000)
	for i := range samples {
		samples[i] = 1
	}

	filtered, err := Bandpass(samples, 100, 1, 20, 4)
	if err != nil {
		t.Fatalf("Bandpass failed: %v", err)
	}

	for i := 500; i < 1500; i++ {
		if math.Abs(filtered[i]) > 0.05 {
			t.Fatalf("Expected DC to be rejected, got %g at sample %d", filtered[i], i)
		}
	}
}

func TestBandpass_DoesNotMutateInput(t *testing.T) {
	samples := []float64{1, -1, 1, -1, 1, -1, 1, -1}
	original := make([]float64, len(samples))
	copy(original, samples)

	if _, err := Bandpass(samples, 100, 1, 20, 4); err != nil {
		t.Fatalf("Bandpass failed: %v", err)
	}

	for i := range original {
		if samples[i] != original[i] {
			t.Errorf("Input mutated at %d: expected %g, got %g", i, original[i], samples[i])
		}
	}
}

func TestBandpass_OddOrder(t *testing.T) {
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * 10 * float64(i) / 100)
	}

	filtered, err := Bandpass(samples, 100, 1, 20, 3)
	if err != nil {
		t.Fatalf("Bandpass failed: %v", err)
	}

	for i, v := range filtered {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("Expected finite output, got %g at sample %d", v, i)
		}
	}
}
