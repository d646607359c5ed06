package frontend

import (
	"fmt"
	"os"

	"trscan/internal/record"
)

// FileLocations resolves precise locations after the units themselves have
// been closed, re-reading files on demand and caching their line offset
// tables. Only dropped-candidate diagnostics ever resolve, so the cost
// stays off the hot path. Not safe for concurrent use; finalization is
// single-threaded.
type FileLocations struct {
	offsets map[string][]int
}

// NewFileLocations returns an empty resolver.
func NewFileLocations() *FileLocations {
	return &FileLocations{offsets: make(map[string][]int)}
}

// ResolveLocation implements record.LocationResolver over files on disk.
func (r *FileLocations) ResolveLocation(file string, line, column int) (record.Location, error) {
	offsets, ok := r.offsets[file]
	if !ok {
		content, err := os.ReadFile(file)
		if err != nil {
			return record.Location{}, fmt.Errorf("reread unit: %w", err)
		}
		offsets = buildLineOffsets(content)
		r.offsets[file] = offsets
	}

	if line < 1 || line > len(offsets) {
		return record.Location{}, fmt.Errorf("line %d out of range for %s", line, file)
	}
	offset := offsets[line-1] + column - 1
	if offset < 0 {
		return record.Location{}, fmt.Errorf("column %d out of range at %s:%d", column, file, line)
	}
	return record.Location{File: file, Line: line, Column: column, Offset: offset}, nil
}
