package batch

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/seislab/pwave-audit/internal/arrival"
	"github.com/seislab/pwave-audit/internal/trace"
	"github.com/seislab/pwave-audit/internal/validate"
)

var runStart = time.Unix(1_700_000_000, 0).UTC()

type fakeLoader struct {
	traces map[int]*trace.Trace
}

func (l fakeLoader) LoadTrace(fileID int) (*trace.Trace, error) {
	tr, ok := l.traces[fileID]
	if !ok {
		return nil, fmt.Errorf("loading file %d: %w", fileID, arrival.ErrTraceNotFound)
	}
	return tr, nil
}

// newTestLoader builds 20 second traces at 100 Hz for the given file IDs.
func newTestLoader(t *testing.T, fileIDs ...int) fakeLoader {
	t.Helper()

	samples := make([]float64, 2000)
	for i := range samples {
		samples[i] = math.Sin(float64(i) / 7)
	}

	loader := fakeLoader{traces: make(map[int]*trace.Trace)}
	for _, id := range fileIDs {
		tr, err := trace.Load(trace.Raw{
			Samples:      samples,
			SamplingRate: 100,
			StartTime:    runStart,
		})
		if err != nil {
			t.Fatalf("Failed to load trace: %v", err)
		}
		loader.traces[id] = tr
	}
	return loader
}

// newTestTable labels file 1 in-window, file 2 out-of-window and leaves
// file 3 unlabeled.
func newTestTable(t *testing.T) *arrival.Table {
	t.Helper()

	csvData := strings.Join([]string{
		"archivo,lec_p",
		"1,1700000005", // 5s in, valid
		"2,1700000100", // 100s in, outside the 20s window
	}, "\n")

	table, err := arrival.ReadTable(strings.NewReader(csvData))
	if err != nil {
		t.Fatalf("Failed to read label table: %v", err)
	}
	return table
}

func TestRunner_Run(t *testing.T) {
	loader := newTestLoader(t, 1, 2, 3)
	runner := NewRunner(loader, newTestTable(t))

	report, err := runner.Run(context.Background(), []int{3, 1, 2})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Total != 3 {
		t.Errorf("Expected 3 analyzed files, got %d", report.Total)
	}
	if report.Skipped != 0 {
		t.Errorf("Expected no skipped files, got %d", report.Skipped)
	}
	if report.InvalidCount != 1 {
		t.Errorf("Expected 1 invalid label, got %d", report.InvalidCount)
	}

	// Results keep the input order.
	for i, want := range []int{3, 1, 2} {
		if report.Results[i].FileID != want {
			t.Errorf("Results[%d]: expected file %d, got %d", i, want, report.Results[i].FileID)
		}
	}

	if got := report.InvalidPercent(); math.Abs(got-100.0/3) > 1e-9 {
		t.Errorf("Expected invalid share of one third, got %g%%", got)
	}

	invalid := report.Invalid()
	if len(invalid) != 1 || invalid[0].FileID != 2 {
		t.Errorf("Expected file 2 as the only invalid result, got %v", invalid)
	}

	unlabeled := report.Results[0]
	if !unlabeled.IsValid || unlabeled.Error != validate.MissingLabelMessage {
		t.Errorf("Expected file 3 to pass with the missing-label note, got %+v", unlabeled)
	}
}

func TestRunner_SkipsMissingFiles(t *testing.T) {
	loader := newTestLoader(t, 1)
	runner := NewRunner(loader, newTestTable(t))

	report, err := runner.Run(context.Background(), []int{1, 99})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Total != 1 {
		t.Errorf("Expected 1 analyzed file, got %d", report.Total)
	}
	if report.Skipped != 1 {
		t.Errorf("Expected 1 skipped file, got %d", report.Skipped)
	}
	for _, res := range report.Results {
		if res.FileID == 99 {
			t.Error("Expected the skipped file to be absent from the results")
		}
	}
}

func TestRunner_ConcurrentMatchesSequential(t *testing.T) {
	fileIDs := []int{5, 1, 3, 2, 4, 6, 7}
	loader := newTestLoader(t, fileIDs...)
	table := newTestTable(t)

	sequential, err := NewRunner(loader, table).Run(context.Background(), fileIDs)
	if err != nil {
		t.Fatalf("Sequential run failed: %v", err)
	}

	concurrent, err := NewRunner(loader, table, WithWorkers(4)).Run(context.Background(), fileIDs)
	if err != nil {
		t.Fatalf("Concurrent run failed: %v", err)
	}

	if concurrent.Total != sequential.Total || concurrent.InvalidCount != sequential.InvalidCount {
		t.Errorf("Expected identical reports, got sequential %+v and concurrent %+v",
			sequential, concurrent)
	}
	for i := range sequential.Results {
		if concurrent.Results[i].FileID != sequential.Results[i].FileID {
			t.Errorf("Results[%d]: expected file %d, got %d",
				i, sequential.Results[i].FileID, concurrent.Results[i].FileID)
		}
	}
}

func TestRunner_MaxFiles(t *testing.T) {
	fileIDs := []int{1, 2, 3, 4, 5}
	loader := newTestLoader(t, fileIDs...)

	runner := NewRunner(loader, newTestTable(t), WithMaxFiles(2))
	report, err := runner.Run(context.Background(), fileIDs)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Total != 2 {
		t.Errorf("Expected the run to stop after 2 files, got %d", report.Total)
	}
}

func TestRunner_CancelledContext(t *testing.T) {
	loader := newTestLoader(t, 1, 2)
	runner := NewRunner(loader, newTestTable(t))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := runner.Run(ctx, []int{1, 2})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if report == nil {
		t.Fatal("Expected a partial report even when cancelled")
	}
	if report.Total != 0 {
		t.Errorf("Expected no files analyzed after immediate cancellation, got %d", report.Total)
	}
}

func TestReport_InvalidPercent_Empty(t *testing.T) {
	var report Report
	if got := report.InvalidPercent(); got != 0 {
		t.Errorf("Expected 0%% for an empty report, got %g%%", got)
	}
}
