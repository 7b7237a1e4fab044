package trace

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRawDecoder_RoundTrip(t *testing.T) {
	want := Raw{
		Samples:      []float64{1.5, -2.25, 0, 0.125},
		SamplingRate: 100,
		StartTime:    time.Unix(1_700_000_000, 500_000_000).UTC(),
	}

	var buf bytes.Buffer
	if err := Encode(&buf, want); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	got, err := RawDecoder{}.Decode(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got.SamplingRate != want.SamplingRate {
		t.Errorf("Expected sampling rate %g, got %g", want.SamplingRate, got.SamplingRate)
	}

	if diff := got.StartTime.Sub(want.StartTime); diff < -time.Microsecond || diff > time.Microsecond {
		t.Errorf("Expected start time %v, got %v", want.StartTime, got.StartTime)
	}

	if len(got.Samples) != len(want.Samples) {
		t.Fatalf("Expected %d samples, got %d", len(want.Samples), len(got.Samples))
	}
	for i := range want.Samples {
		if got.Samples[i] != want.Samples[i] {
			t.Errorf("Samples[%d]: expected %g, got %g", i, want.Samples[i], got.Samples[i])
		}
	}
}

func TestRawDecoder_Malformed(t *testing.T) {
	var valid bytes.Buffer
	if err := Encode(&valid, Raw{
		Samples:      []float64{1, 2, 3},
		SamplingRate: 50,
	}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	testCases := []struct {
		name string
		data []byte
	}{
		{"empty input", nil},
		{"bad magic", append([]byte("NOPE"), valid.Bytes()[4:]...)},
		{"truncated header", valid.Bytes()[:10]},
		{"truncated samples", valid.Bytes()[:len(valid.Bytes())-2]},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := (RawDecoder{}).Decode(bytes.NewReader(tc.data)); err == nil {
				t.Error("Expected decode error")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0042.trc")

	var buf bytes.Buffer
	if err := Encode(&buf, Raw{
		Samples:      []float64{0, 1, 0, -1},
		SamplingRate: 2,
	}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	tr, err := LoadFile(RawDecoder{}, path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if got := tr.Duration(); math.Abs(got-2) > 1e-12 {
		t.Errorf("Expected duration 2s, got %gs", got)
	}
}

func TestLoadFile_DecodeFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "0042.trc")
	if err := os.WriteFile(path, []byte("garbage"), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	_, err := LoadFile(RawDecoder{}, path)
	if err == nil {
		t.Fatal("Expected error for a corrupt file")
	}

	var malformed *MalformedTraceError
	if !errors.As(err, &malformed) {
		t.Errorf("Expected MalformedTraceError, got %T", err)
	}
}
