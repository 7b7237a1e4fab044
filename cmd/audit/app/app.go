package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/seislab/pwave-audit/internal/arrival"
	"github.com/seislab/pwave-audit/internal/batch"
	"github.com/seislab/pwave-audit/internal/storage"
	"github.com/seislab/pwave-audit/internal/trace"
)

const storageDir = "data"

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	table := loadLabelTable(config, logger)

	fileIDs, err := arrival.ScanDir(config.Data.Directory, config.Data.Extension)
	if err != nil {
		return fmt.Errorf("scanning data directory: %w", err)
	}
	if len(fileIDs) == 0 {
		return fmt.Errorf("no %s trace files found in %s", config.Data.Extension, config.Data.Directory)
	}

	logger.Info("starting label validation",
		slog.String("dataDir", config.Data.Directory),
		slog.String("files", humanize.Comma(int64(len(fileIDs)))),
		slog.String("labels", humanize.Comma(int64(table.Len()))))

	store, err := createStorage(&config.Storage)
	if err != nil {
		return fmt.Errorf("creating storage: %w", err)
	}
	defer store.Close()

	runID, err := store.CreateRun(ctx, config.Data.Directory, config.Labels.Path)
	if err != nil {
		return fmt.Errorf("creating run: %w", err)
	}

	source := batch.DirSource{
		Root:      config.Data.Directory,
		Extension: config.Data.Extension,
		Decoder:   trace.RawDecoder{},
	}

	runner := batch.NewRunner(source, table,
		batch.WithLogger(logger),
		batch.WithWorkers(config.Batch.Workers),
		batch.WithMaxFiles(config.Batch.MaxFiles))

	report, err := runner.Run(ctx, fileIDs)
	if err != nil {
		return fmt.Errorf("running validation: %w", err)
	}

	if err = store.StoreResults(ctx, runID, report.Results); err != nil {
		return fmt.Errorf("storing results: %w", err)
	}
	if err = store.FinalizeRun(ctx, runID, report.Total, report.InvalidCount, report.Skipped); err != nil {
		return fmt.Errorf("finalizing run: %w", err)
	}

	for _, result := range report.Invalid() {
		logger.Warn("invalid label",
			slog.Int("fileID", result.FileID),
			slog.String("reason", result.Error))
	}

	logger.Info("validation complete",
		slog.Group("summary",
			slog.Int64("runID", runID),
			slog.String("analyzed", humanize.Comma(int64(report.Total))),
			slog.String("invalid", humanize.Comma(int64(report.InvalidCount))),
			slog.String("skipped", humanize.Comma(int64(report.Skipped))),
			slog.String("invalidShare", fmt.Sprintf("%.1f%%", report.InvalidPercent())),
		))

	if config.Export.CSVPath != "" {
		results := report.Results
		if config.Export.InvalidOnly {
			results = report.Invalid()
		}
		if err = writeResultsCSV(config.Export.CSVPath, results); err != nil {
			return fmt.Errorf("exporting results: %w", err)
		}
		logger.Info("results exported", slog.String("path", config.Export.CSVPath))
	}

	return nil
}

// loadLabelTable loads the configured label table. A missing or broken
// table is not fatal: validation proceeds with an empty table and every
// file reports "no P arrival available".
func loadLabelTable(config *Config, logger *slog.Logger) *arrival.Table {
	if config.Labels.Path == "" {
		logger.Warn("no label table specified, validating without ground truth")
		return arrival.NewTable()
	}

	var options []arrival.TableOption
	if config.Labels.IDColumn != "" {
		options = append(options, arrival.WithIDColumn(config.Labels.IDColumn))
	}
	if config.Labels.ArrivalColumn != "" {
		options = append(options, arrival.WithArrivalColumn(config.Labels.ArrivalColumn))
	}

	table, err := arrival.LoadTable(config.Labels.Path, options...)
	if err != nil {
		logger.Warn(fmt.Sprintf("failed to load label table: %s", err.Error()),
			slog.String("path", config.Labels.Path))
		return arrival.NewTable()
	}
	return table
}

func createStorage(config *StorageConfig) (*storage.Store, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	var dbPath string
	if config.DataDirectory != "" {
		dbPath = filepath.Join(wd, config.DataDirectory)
	} else {
		dbPath = filepath.Join(wd, storageDir)
	}

	stat, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dbPath, err)
		}
		return nil, fmt.Errorf("checking storage directory '%s': %w", dbPath, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dbPath)
	}

	dbPath = filepath.Join(dbPath, fmt.Sprintf("label_audit_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return storage.New(dbPath), nil
}
