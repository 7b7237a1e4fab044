package app

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/seislab/pwave-audit/internal/validate"
)

// writeResultsCSV exports validation results in the same shape the
// original analysis tooling consumed: one row per analyzed file with the
// verdict, duration and relative arrival time.
func writeResultsCSV(path string, results []validate.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer func() {
		if cErr := f.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	w := csv.NewWriter(f)
	defer w.Flush()

	header := []string{"file_id", "is_valid", "duration_s", "relative_p_time_s", "error"}
	if err = w.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for _, result := range results {
		relative := ""
		if result.Details.RelativePTime != nil {
			relative = strconv.FormatFloat(*result.Details.RelativePTime, 'f', 2, 64)
		}

		row := []string{
			strconv.Itoa(result.FileID),
			strconv.FormatBool(result.IsValid),
			strconv.FormatFloat(result.Details.Duration, 'f', 2, 64),
			relative,
			result.Error,
		}
		if err = w.Write(row); err != nil {
			return fmt.Errorf("writing result row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
