package filewalker

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog/log"
)

// SupportedExtensions lists the translation unit types handled by the tool.
var SupportedExtensions = map[string]bool{
	".cpp": true,
	".cc":  true,
	".cxx": true,
	".c":   true,
	".h":   true,
	".hpp": true,
	".hxx": true,
}

// Walker discovers C/C++ translation units under a root directory.
type Walker struct {
	// Include, when non-empty, is a doublestar glob matched against the
	// path relative to the root (e.g. "src/**/*.cpp").
	Include string
}

// NewWalker creates a Walker that accepts every supported extension.
func NewWalker() *Walker {
	return &Walker{}
}

// Walk returns the paths of all matching translation units under root.
func (w *Walker) Walk(root string) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root path: %w", err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root is not a directory: %s", root)
	}

	if w.Include != "" {
		if !doublestar.ValidatePattern(w.Include) {
			return nil, fmt.Errorf("invalid include pattern: %s", w.Include)
		}
	}

	var paths []string
	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("Error walking path")
			return nil
		}
		if info.IsDir() {
			return nil
		}

		ext := strings.ToLower(filepath.Ext(path))
		if !SupportedExtensions[ext] {
			return nil
		}

		if w.Include != "" {
			rel, relErr := filepath.Rel(root, path)
			if relErr != nil {
				return nil
			}
			matched, _ := doublestar.Match(w.Include, filepath.ToSlash(rel))
			if !matched {
				return nil
			}
		}

		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk directory: %w", err)
	}

	log.Info().Int("count", len(paths)).Str("root", root).Msg("Discovered translation units")
	return paths, nil
}
