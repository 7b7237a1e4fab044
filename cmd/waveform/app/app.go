package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"

	"github.com/seislab/pwave-audit/internal/arrival"
	"github.com/seislab/pwave-audit/internal/filter"
	"github.com/seislab/pwave-audit/internal/metrics"
	"github.com/seislab/pwave-audit/internal/trace"
	"github.com/seislab/pwave-audit/internal/validate"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	path, err := arrival.ResolvePath(config.DataDir, config.Extension, config.FileID)
	if err != nil {
		return err
	}

	tr, err := trace.LoadFile(trace.RawDecoder{}, path)
	if err != nil {
		return err
	}

	table := loadLabelTable(config, logger)
	verdict := validate.Validate(config.FileID, tr, table)

	switch {
	case !verdict.IsValid:
		logger.Warn("label validation failed", slog.String("reason", verdict.Error))
	case !verdict.Details.HasPArrival:
		logger.Info(verdict.Error, slog.Int("fileID", config.FileID))
	default:
		logger.Info("label validated",
			slog.Int("fileID", config.FileID),
			slog.String("relativePTime", fmt.Sprintf("%.2fs", *verdict.Details.RelativePTime)))
	}

	// A manual arrival override takes precedence over the labeled one, so
	// an external prediction can be compared against the recorded signal.
	relative := verdict.Details.RelativePTime
	if config.Arrival != nil {
		relative = config.Arrival
	}

	var filtered []float64
	if config.Filter {
		cfg := loadFilterConfig(config, logger)
		filtered, err = filter.Bandpass(tr.Normalized, tr.SamplingRate, cfg.LowCut, cfg.HighCut, cfg.Order)
		if err != nil {
			return fmt.Errorf("applying band-pass filter: %w", err)
		}
	}

	m := metrics.Compute(tr.Normalized, relative, tr.SamplingRate)
	logMetrics(logger, tr, m)

	renderer, err := NewWaveformRenderer(RenderConfig{
		FontPath:      config.FontPath,
		NoAnnotations: config.NoAnnotations,
	})
	if err != nil {
		return fmt.Errorf("creating waveform renderer: %w", err)
	}

	img, err := renderer.Render(&Plot{
		FileID:       config.FileID,
		Samples:      tr.Normalized,
		Filtered:     filtered,
		SamplingRate: tr.SamplingRate,
		StartTime:    tr.StartTime,
		Duration:     tr.Duration(),
		Arrival:      relative,
		Metrics:      m,
	})
	if err != nil {
		return fmt.Errorf("rendering waveform: %w", err)
	}

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImagePNG:
		err = png.Encode(out, img)

	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{
			Quality: 98,
		})
	}
	return err
}

func loadLabelTable(config *Config, logger *slog.Logger) *arrival.Table {
	if config.LabelPath == "" {
		return arrival.NewTable()
	}

	table, err := arrival.LoadTable(config.LabelPath)
	if err != nil {
		logger.Warn(fmt.Sprintf("failed to load label table: %s", err.Error()),
			slog.String("path", config.LabelPath))
		return arrival.NewTable()
	}
	return table
}

// loadFilterConfig assembles the band-pass settings: persisted config if
// given (falling back to defaults when malformed), then CLI overrides.
func loadFilterConfig(config *Config, logger *slog.Logger) filter.Config {
	cfg := filter.DefaultConfig()

	if config.FilterConfigPath != "" {
		loaded, err := filter.LoadConfigFile(config.FilterConfigPath)
		if err != nil {
			logger.Warn(fmt.Sprintf("using default filter settings: %s", err.Error()),
				slog.String("path", config.FilterConfigPath))
		}
		cfg = loaded
	}

	if config.LowCut != nil {
		cfg.LowCut = *config.LowCut
	}
	if config.HighCut != nil {
		cfg.HighCut = *config.HighCut
	}
	if config.Order != nil {
		cfg.Order = *config.Order
	}
	return cfg
}

func logMetrics(logger *slog.Logger, tr *trace.Trace, m metrics.Metrics) {
	attrs := []any{
		slog.String("samples", humanize.Comma(int64(len(tr.Samples)))),
		slog.String("duration", fmt.Sprintf("%.2fs", tr.Duration())),
		slog.String("maxAmplitude", fmt.Sprintf("%.2f", m.MaxAmplitude)),
	}

	if m.SNRdB != nil {
		attrs = append(attrs, slog.String("snr", fmt.Sprintf("%.2fdB", *m.SNRdB)))
	}
	if ratio, ok := m.EnergyRatio(); ok {
		attrs = append(attrs, slog.String("energyRatio", fmt.Sprintf("%.2f", ratio)))
	}

	logger.Info("signal metrics", attrs...)
}
