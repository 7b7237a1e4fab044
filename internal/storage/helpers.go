package storage

import (
	"database/sql"
	"errors"
	"math"
	"time"

	"github.com/seislab/pwave-audit/internal/validate"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

// rollbackWithError rolls the transaction back unless it was committed.
func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && !errors.Is(cErr, sql.ErrTxDone) && *err == nil {
		*err = cErr
	}
}

func toResultData(runID int64, r validate.Result) *resultData {
	data := resultData{
		RunID:       runID,
		FileID:      int64(r.FileID),
		IsValid:     r.IsValid,
		Duration:    r.Details.Duration,
		HasPArrival: r.Details.HasPArrival,
	}

	if r.Details.PArrival != nil {
		data.PArrival = sql.NullFloat64{
			Float64: float64(r.Details.PArrival.UnixNano()) / float64(time.Second),
			Valid:   true,
		}
	}
	if r.Details.RelativePTime != nil {
		data.RelativePTime = sql.NullFloat64{
			Float64: *r.Details.RelativePTime,
			Valid:   true,
		}
	}
	if r.Error != "" {
		data.Error = sql.NullString{
			String: r.Error,
			Valid:  true,
		}
	}

	return &data
}

func fromResultData(data *resultData) validate.Result {
	result := validate.Result{
		FileID:  int(data.FileID),
		IsValid: data.IsValid,
		Details: validate.Details{
			FileID:      int(data.FileID),
			Duration:    data.Duration,
			HasPArrival: data.HasPArrival,
		},
	}

	if data.PArrival.Valid {
		sec, frac := math.Modf(data.PArrival.Float64)
		ts := time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC()
		result.Details.PArrival = &ts
	}
	if data.RelativePTime.Valid {
		rel := data.RelativePTime.Float64
		result.Details.RelativePTime = &rel
	}
	if data.Error.Valid {
		result.Error = data.Error.String
	}

	return result
}
