package arrival

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ParseFileID extracts the integer file ID from a trace file name.
// Data sets zero-pad their identifiers and mark augmented copies with an
// "_aug" suffix, so "0042.trc", "42.trc" and "0042_aug3.trc" all resolve
// to ID 42. A name without a usable numeric ID returns an error.
func ParseFileID(name string) (int, error) {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))

	if i := strings.Index(base, "_aug"); i >= 0 {
		base = base[:i]
	}

	trimmed := strings.TrimLeft(base, "0")
	if trimmed == "" {
		return 0, fmt.Errorf("no file ID in %q", name)
	}

	id, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("parsing file ID from %q: %w", name, err)
	}
	return id, nil
}
