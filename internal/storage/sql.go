package storage

import (
	_ "embed"
)

const (
	insertRunSQL = `
INSERT INTO runs (
                  created_at,
                  data_dir,
                  label_path)
VALUES (CURRENT_TIMESTAMP, ?, ?)`

	finalizeRunSQL = `
UPDATE runs
SET
    total = ?,
    invalid_count = ?,
    skipped = ?
WHERE
    id = ?`

	selectRunSQL = `
SELECT
    id,
    created_at,
    data_dir,
    label_path,
    total,
    invalid_count,
    skipped
FROM runs
WHERE
    id = ?`

	selectRunsSQL = `
SELECT
    id,
    created_at,
    data_dir,
    label_path,
    total,
    invalid_count,
    skipped
FROM runs`

	insertResultSQL = `
INSERT INTO results (run_id,
                     file_id,
                     is_valid,
                     duration,
                     p_arrival,
                     relative_p_time,
                     has_p_arrival,
                     error)
VALUES `

	selectResultsSQL = `
SELECT
    file_id,
    is_valid,
    duration,
    p_arrival,
    relative_p_time,
    has_p_arrival,
    error
FROM results
WHERE
    run_id = ?
ORDER BY id`
)

//go:embed schema.sql
var schemaSQL string
