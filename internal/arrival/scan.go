package arrival

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"strings"
)

// ErrTraceNotFound is returned when a file ID cannot be resolved to a
// trace file under the data directory.
var ErrTraceNotFound = errors.New("trace file not found")

// ScanDir walks the data directory and returns the sorted set of distinct
// file IDs found in trace file names with the given extension. Names that
// carry no usable ID are skipped.
func ScanDir(root, ext string) ([]int, error) {
	seen := make(map[int]struct{})

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}

		id, err := ParseFileID(d.Name())
		if err != nil {
			return nil
		}

		seen[id] = struct{}{}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

// ResolvePath finds the trace file for a file ID under the data directory,
// matching zero-padded and augmented file names. The first match in walk
// order wins. A miss is an explicit ErrTraceNotFound, never a guessed path.
func ResolvePath(root, ext string, fileID int) (string, error) {
	var found string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if found != "" || d.IsDir() || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}

		id, err := ParseFileID(d.Name())
		if err != nil || id != fileID {
			return nil
		}

		found = path
		return fs.SkipAll
	})
	if err != nil {
		return "", fmt.Errorf("resolving file %d: %w", fileID, err)
	}
	if found == "" {
		return "", fmt.Errorf("resolving file %d: %w", fileID, ErrTraceNotFound)
	}
	return found, nil
}
