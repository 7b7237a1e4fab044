// Package validate decides whether a P-wave arrival label is temporally
// consistent with the trace it annotates.
package validate

import (
	"fmt"
	"time"

	"github.com/seislab/pwave-audit/internal/arrival"
	"github.com/seislab/pwave-audit/internal/trace"
)

// MissingLabelMessage is the informational reason attached to traces that
// have no ground-truth arrival. Absence of a label is a distinct state
// from "validated and failed", not an error.
const MissingLabelMessage = "No P arrival time available"

// Details carries the derived quantities behind a verdict.
// RelativePTime is present iff HasPArrival is true.
type Details struct {
	FileID        int
	Duration      float64    // Trace length in seconds
	PArrival      *time.Time // Absolute arrival timestamp, nil without a label
	RelativePTime *float64   // Seconds from trace start, nil without a label
	HasPArrival   bool
}

// Result is the verdict for a single file. It is a value, never an
// exception: an out-of-window arrival yields IsValid=false with a
// descriptive reason, and a missing label yields IsValid=true with the
// informational MissingLabelMessage.
type Result struct {
	FileID  int
	IsValid bool
	Error   string // Reason when invalid, MissingLabelMessage when unlabeled, empty otherwise
	Details Details
}

// Validate checks the arrival label for a file against the loaded trace
// window. It is a pure function of its inputs: calling it twice with the
// same arguments yields the same verdict.
func Validate(fileID int, tr *trace.Trace, table *arrival.Table) Result {
	duration := tr.Duration()

	result := Result{
		FileID:  fileID,
		IsValid: true,
		Details: Details{
			FileID:   fileID,
			Duration: duration,
		},
	}

	pArrival, ok := table.Lookup(fileID)
	if !ok {
		result.Error = MissingLabelMessage
		return result
	}

	relative := pArrival.Sub(tr.StartTime).Seconds()
	result.Details.PArrival = &pArrival
	result.Details.RelativePTime = &relative
	result.Details.HasPArrival = true

	// Window bounds are inclusive: an arrival exactly at the first or the
	// last sample time is valid.
	if relative < 0 || relative > duration {
		result.IsValid = false
		result.Error = fmt.Sprintf("P arrival time (%.2fs) outside signal duration (0 to %.2fs)", relative, duration)
	}

	return result
}
