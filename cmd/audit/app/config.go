package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultExtension = ".trc"
	defaultWorkers   = 1
)

// Config represents the main application configuration
type Config struct {
	Settings Settings      `yaml:"settings"`
	Data     DataConfig    `yaml:"data"`
	Labels   LabelsConfig  `yaml:"labels"`
	Batch    BatchConfig   `yaml:"batch"`
	Storage  StorageConfig `yaml:"storage"`
	Export   ExportConfig  `yaml:"export"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// Level parses the configured log level, defaulting to info.
func (s Settings) Level() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DataConfig locates the trace files to audit
type DataConfig struct {
	Directory string `yaml:"directory"`
	Extension string `yaml:"extension"`
}

// LabelsConfig locates the P-wave arrival label table
type LabelsConfig struct {
	Path          string `yaml:"path"`
	IDColumn      string `yaml:"idColumn"`
	ArrivalColumn string `yaml:"arrivalColumn"`
}

// BatchConfig governs the validation run
type BatchConfig struct {
	Workers  int `yaml:"workers"`
	MaxFiles int `yaml:"maxFiles"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
}

// ExportConfig sets the optional results export
type ExportConfig struct {
	CSVPath     string `yaml:"csvPath"`
	InvalidOnly bool   `yaml:"invalidOnly"`
}

// LoadConfig reads and validates the YAML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading configuration: %w", err)
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if config.Data.Directory == "" {
		return nil, fmt.Errorf("no data directory specified in configuration")
	}
	if config.Data.Extension == "" {
		config.Data.Extension = defaultExtension
	}
	if config.Batch.Workers <= 0 {
		config.Batch.Workers = defaultWorkers
	}

	return &config, nil
}
