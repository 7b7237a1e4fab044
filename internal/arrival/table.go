package arrival

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultIDColumn      = "archivo"
	defaultArrivalColumn = "lec_p"
)

// TableOption configures label table loading.
type TableOption func(*tableOptions)

// WithIDColumn overrides the CSV column holding the file identifier.
func WithIDColumn(name string) TableOption {
	return func(o *tableOptions) {
		o.idColumn = name
	}
}

// WithArrivalColumn overrides the CSV column holding the arrival timestamp.
func WithArrivalColumn(name string) TableOption {
	return func(o *tableOptions) {
		o.arrivalColumn = name
	}
}

type tableOptions struct {
	idColumn      string
	arrivalColumn string
}

// Table maps integer file IDs to ground-truth P-wave arrival timestamps.
// It is immutable once loaded and replaced wholesale when a new label
// source is selected. A nil Table behaves as an empty one.
type Table struct {
	arrivals map[int]time.Time
}

// NewTable returns an empty label table.
func NewTable() *Table {
	return &Table{arrivals: make(map[int]time.Time)}
}

// Lookup resolves a file ID to its P-wave arrival timestamp. A miss is a
// normal, expected outcome: no table, no entry, and non-numeric source
// cells all report absent, never an error.
func (t *Table) Lookup(fileID int) (time.Time, bool) {
	if t == nil || t.arrivals == nil {
		return time.Time{}, false
	}
	ts, ok := t.arrivals[fileID]
	return ts, ok
}

// Len returns the number of labeled entries.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.arrivals)
}

// LoadTable reads a label table from a CSV file. The file must have a
// header row naming the ID and arrival columns. Arrival cells that do not
// parse as epoch seconds become absent entries, not load failures.
func LoadTable(path string, options ...TableOption) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening label table: %w", err)
	}
	defer f.Close()

	return ReadTable(f, options...)
}

// ReadTable reads a label table in CSV form.
func ReadTable(r io.Reader, options ...TableOption) (*Table, error) {
	opts := tableOptions{
		idColumn:      defaultIDColumn,
		arrivalColumn: defaultArrivalColumn,
	}
	for _, option := range options {
		option(&opts)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("reading label table header: %w", err)
	}

	idIdx, arrivalIdx := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case opts.idColumn:
			idIdx = i
		case opts.arrivalColumn:
			arrivalIdx = i
		}
	}
	if idIdx < 0 || arrivalIdx < 0 {
		return nil, fmt.Errorf("label table is missing %q or %q column", opts.idColumn, opts.arrivalColumn)
	}

	table := NewTable()
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading label table row: %w", err)
		}
		if idIdx >= len(record) || arrivalIdx >= len(record) {
			continue
		}

		id, err := parseTableID(record[idIdx])
		if err != nil {
			continue
		}

		epoch, err := strconv.ParseFloat(strings.TrimSpace(record[arrivalIdx]), 64)
		if err != nil || math.IsNaN(epoch) {
			continue // non-numeric cell means "no label"
		}

		table.arrivals[id] = epochToTime(epoch)
	}

	return table, nil
}

func parseTableID(cell string) (int, error) {
	cell = strings.TrimSpace(cell)
	trimmed := strings.TrimLeft(cell, "0")
	if trimmed == "" {
		return 0, fmt.Errorf("no file ID in %q", cell)
	}
	return strconv.Atoi(trimmed)
}

func epochToTime(sec float64) time.Time {
	s, frac := math.Modf(sec)
	return time.Unix(int64(s), int64(frac*1e9)).UTC()
}
