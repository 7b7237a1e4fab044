// Package storage persists batch validation runs and their per-file
// results in an embedded SQLite database.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/seislab/pwave-audit/internal/validate"
)

const maxBatchSize = 100

// Store handles database operations. Connections are opened lazily: a
// write connection with WAL journaling that initializes the schema, and a
// separate read-only connection.
type Store struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// New creates a store backed by the SQLite database at dbPath.
func New(dbPath string) *Store {
	return &Store{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *Store) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, schemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *Store) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

// CreateRun records a new validation run and returns its ID.
func (s *Store) CreateRun(ctx context.Context, dataDir, labelPath string) (runID int64, err error) {
	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	var labels sql.NullString
	if labelPath != "" {
		labels = sql.NullString{String: labelPath, Valid: true}
	}

	stmt, err := db.PrepareContext(ctx, insertRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, dataDir, labels)
	if err != nil {
		err = fmt.Errorf("inserting run: %w", err)
		return
	}

	runID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting run ID: %w", err)
	}
	return
}

// FinalizeRun stores the summary counts for a completed run.
func (s *Store) FinalizeRun(ctx context.Context, runID int64, total, invalidCount, skipped int) (err error) {
	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	stmt, err := db.PrepareContext(ctx, finalizeRunSQL)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer closeWithError(stmt, &err)

	if _, err = stmt.ExecContext(ctx, total, invalidCount, skipped, runID); err != nil {
		return fmt.Errorf("finalizing run: %w", err)
	}
	return
}

// StoreResults batch-inserts validation results for a run.
func (s *Store) StoreResults(ctx context.Context, runID int64, results []validate.Result) error {
	for chunk := range slices.Chunk(results, maxBatchSize) {
		if err := s.storeResultsChunk(ctx, runID, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) storeResultsChunk(ctx context.Context, runID int64, results []validate.Result) (err error) {
	if len(results) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	values := make([]any, 0, len(results)*8)

	var sb strings.Builder
	sb.WriteString(insertResultSQL)

	for i, result := range results {
		data := toResultData(runID, result)
		values = append(values,
			data.RunID,
			data.FileID,
			data.IsValid,
			data.Duration,
			data.PArrival,
			data.RelativePTime,
			data.HasPArrival,
			data.Error,
		)

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?, ?, ?, ?, ?, ?)")
	}

	if _, err = tx.ExecContext(ctx, sb.String(), values...); err != nil {
		return fmt.Errorf("batch inserting results: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Run returns a run by its ID.
func (s *Store) Run(ctx context.Context, id int64) (run *Run, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectRunSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var r Run
	var labels sql.NullString
	if err = stmt.QueryRowContext(ctx, id).Scan(&r.ID, &r.CreatedAt, &r.DataDir, &labels, &r.Total, &r.InvalidCount, &r.Skipped); err != nil {
		err = fmt.Errorf("scanning run: %w", err)
		return
	}
	if labels.Valid {
		r.LabelPath = &labels.String
	}

	return &r, nil
}

// Runs returns all recorded validation runs.
func (s *Store) Runs(ctx context.Context) (runs []*Run, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectRunsSQL)
	if err != nil {
		err = fmt.Errorf("querying runs: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var r Run
		var labels sql.NullString
		if err = rows.Scan(&r.ID, &r.CreatedAt, &r.DataDir, &labels, &r.Total, &r.InvalidCount, &r.Skipped); err != nil {
			err = fmt.Errorf("scanning run: %w", err)
			return
		}
		if labels.Valid {
			r.LabelPath = &labels.String
		}
		runs = append(runs, &r)
	}
	return
}

// Results returns the validation results of a run in insertion order.
func (s *Store) Results(ctx context.Context, runID int64) (results []validate.Result, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectResultsSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	rows, err := stmt.QueryContext(ctx, runID)
	if err != nil {
		err = fmt.Errorf("querying results: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var data resultData
		if err = rows.Scan(&data.FileID, &data.IsValid, &data.Duration, &data.PArrival, &data.RelativePTime, &data.HasPArrival, &data.Error); err != nil {
			err = fmt.Errorf("scanning result: %w", err)
			return
		}
		results = append(results, fromResultData(&data))
	}
	return
}

// Close closes the database connections.
func (s *Store) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}
