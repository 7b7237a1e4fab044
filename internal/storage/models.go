package storage

import (
	"database/sql"
	"time"
)

// Run represents a single batch validation run.
type Run struct {
	ID           int64
	CreatedAt    time.Time
	DataDir      string
	LabelPath    *string
	Total        int
	InvalidCount int
	Skipped      int
}

// resultData is the database shape of a validation result.
type resultData struct {
	RunID         int64
	FileID        int64
	IsValid       bool
	Duration      float64
	PArrival      sql.NullFloat64 // epoch seconds
	RelativePTime sql.NullFloat64
	HasPArrival   bool
	Error         sql.NullString
}
