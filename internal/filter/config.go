package filter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the persisted band-pass configuration blob.
type Config struct {
	LowCut  float64 `json:"low_cut"`
	HighCut float64 `json:"high_cut"`
	Order   int     `json:"order"`
}

// DefaultConfig returns the stock band-pass settings.
func DefaultConfig() Config {
	return Config{
		LowCut:  DefaultLowCut,
		HighCut: DefaultHighCut,
		Order:   DefaultOrder,
	}
}

// LoadConfigFile reads a persisted filter configuration. Malformed or
// implausible settings are recovered by falling back to the defaults: the
// returned Config is always usable, and the error only reports what was
// wrong so the caller can log it.
func LoadConfigFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("reading filter config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("parsing filter config: %w", err)
	}

	if cfg.LowCut <= 0 || cfg.HighCut <= cfg.LowCut || cfg.Order < 1 {
		return DefaultConfig(), fmt.Errorf("implausible filter config: lowcut=%g, highcut=%g, order=%d",
			cfg.LowCut, cfg.HighCut, cfg.Order)
	}
	return cfg, nil
}

// SaveConfigFile persists the filter configuration, creating the parent
// directory when needed.
func SaveConfigFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling filter config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing filter config: %w", err)
	}
	return nil
}
