// Package batch runs label validation across a collection of trace files
// and aggregates the pass/fail statistics.
package batch

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/seislab/pwave-audit/internal/arrival"
	"github.com/seislab/pwave-audit/internal/trace"
	"github.com/seislab/pwave-audit/internal/validate"
)

// Loader loads an analysis-ready trace for a file ID. It is the runner's
// only view of the underlying data set.
type Loader interface {
	LoadTrace(fileID int) (*trace.Trace, error)
}

// DirSource resolves file IDs against a data directory and decodes the
// matching trace files.
type DirSource struct {
	Root      string
	Extension string
	Decoder   trace.Decoder
}

func (s DirSource) LoadTrace(fileID int) (*trace.Trace, error) {
	path, err := arrival.ResolvePath(s.Root, s.Extension, fileID)
	if err != nil {
		return nil, err
	}
	return trace.LoadFile(s.Decoder, path)
}

// WithLogger sets the logger for per-file skip reporting.
func WithLogger(logger *slog.Logger) func(*Runner) {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithWorkers bounds the number of files analyzed concurrently.
// The default of 1 preserves strictly sequential processing.
func WithWorkers(n int) func(*Runner) {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithMaxFiles bounds how many files a run examines. Zero means no limit.
func WithMaxFiles(n int) func(*Runner) {
	return func(r *Runner) {
		r.maxFiles = n
	}
}

// Runner applies arrival lookup, trace loading and label validation to a
// sequence of file IDs. The label table is treated as immutable for the
// duration of a run.
type Runner struct {
	loader Loader
	table  *arrival.Table

	logger   *slog.Logger
	workers  int
	maxFiles int
}

// NewRunner creates a batch validation runner over the given trace source
// and label table.
func NewRunner(loader Loader, table *arrival.Table, options ...func(*Runner)) *Runner {
	r := Runner{
		loader:  loader,
		table:   table,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers: 1,
	}

	for _, option := range options {
		option(&r)
	}

	return &r
}

// Report aggregates the results of a batch run. Results preserves the
// input file-ID order and contains only successfully analyzed files;
// missing or undecodable files are counted in Skipped.
type Report struct {
	Results      []validate.Result
	Total        int // Files successfully analyzed
	InvalidCount int
	Skipped      int
}

// Invalid returns the subset of results that failed validation.
func (r *Report) Invalid() []validate.Result {
	var invalid []validate.Result
	for _, res := range r.Results {
		if !res.IsValid {
			invalid = append(invalid, res)
		}
	}
	return invalid
}

// InvalidPercent returns the share of analyzed files with invalid labels.
func (r *Report) InvalidPercent() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.InvalidCount) / float64(r.Total) * 100
}

// Run validates every file ID in the order given. A single bad file never
// aborts the batch: decode failures are logged and skipped. Run returns
// early with the partial report when the context is cancelled.
func (r *Runner) Run(ctx context.Context, fileIDs []int) (*Report, error) {
	if r.maxFiles > 0 && len(fileIDs) > r.maxFiles {
		fileIDs = fileIDs[:r.maxFiles]
	}

	slots := make([]*validate.Result, len(fileIDs))
	var skipped atomic.Int64

	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, fileID := range fileIDs {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			tr, err := r.loader.LoadTrace(fileID)
			if err != nil {
				skipped.Add(1)
				r.logger.Warn("skipping file",
					slog.Int("fileID", fileID),
					slog.String("reason", err.Error()))
				return nil
			}

			result := validate.Validate(fileID, tr, r.table)
			slots[i] = &result
			return nil
		})
	}

	_ = g.Wait() // workers convert their own failures into skips

	report := Report{Skipped: int(skipped.Load())}
	for _, slot := range slots {
		if slot == nil {
			continue
		}

		report.Results = append(report.Results, *slot)
		report.Total++
		if !slot.IsValid {
			report.InvalidCount++
		}
	}

	return &report, ctx.Err()
}
