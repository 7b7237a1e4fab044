package filter

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "filter", "config.json")
	want := Config{LowCut: 2.5, HighCut: 15, Order: 6}

	if err := SaveConfigFile(path, want); err != nil {
		t.Fatalf("SaveConfigFile failed: %v", err)
	}

	got, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("LoadConfigFile failed: %v", err)
	}
	if got != want {
		t.Errorf("Expected config %+v, got %+v", want, got)
	}
}

func TestLoadConfigFile_Fallback(t *testing.T) {
	dir := t.TempDir()

	writeConfig := func(t *testing.T, name, content string) string {
		t.Helper()
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write config: %v", err)
		}
		return path
	}

	testCases := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "nope.json")},
		{"malformed JSON", writeConfig(t, "bad.json", "{nope")},
		{"implausible values", writeConfig(t, "implausible.json", `{"low_cut":0,"high_cut":20,"order":4}`)},
		{"inverted cutoffs", writeConfig(t, "inverted.json", `{"low_cut":20,"high_cut":1,"order":4}`)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := LoadConfigFile(tc.path)
			if err == nil {
				t.Error("Expected an error describing the fallback")
			}
			if got != DefaultConfig() {
				t.Errorf("Expected the default config, got %+v", got)
			}
		})
	}
}
