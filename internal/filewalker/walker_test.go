package filewalker

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, root string, rel string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("int x;\n"), 0o644))
}

func relative(t *testing.T, root string, paths []string) []string {
	t.Helper()
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		rel, err := filepath.Rel(root, p)
		require.NoError(t, err)
		out = append(out, filepath.ToSlash(rel))
	}
	return out
}

func TestWalkFindsSupportedExtensions(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "main.cpp")
	touch(t, root, "util.cc")
	touch(t, root, "api.h")
	touch(t, root, "deep/nested/impl.cxx")
	touch(t, root, "README.md")
	touch(t, root, "notes.txt")

	paths, err := NewWalker().Walk(root)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"main.cpp", "util.cc", "api.h", "deep/nested/impl.cxx"},
		relative(t, root, paths))
}

func TestWalkIncludePattern(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "src/app.cpp")
	touch(t, root, "src/ui/dialog.cpp")
	touch(t, root, "tests/app_test.cpp")

	w := &Walker{Include: "src/**/*.cpp"}
	paths, err := w.Walk(root)
	require.NoError(t, err)
	assert.ElementsMatch(t,
		[]string{"src/app.cpp", "src/ui/dialog.cpp"},
		relative(t, root, paths))
}

func TestWalkInvalidPattern(t *testing.T) {
	w := &Walker{Include: "src/[/*.cpp"}
	_, err := w.Walk(t.TempDir())
	assert.Error(t, err)
}

func TestWalkRejectsNonDirectory(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "main.cpp")

	_, err := NewWalker().Walk(filepath.Join(root, "main.cpp"))
	assert.Error(t, err)
}

func TestWalkMissingRoot(t *testing.T) {
	_, err := NewWalker().Walk(filepath.Join(t.TempDir(), "absent"))
	assert.Error(t, err)
}
