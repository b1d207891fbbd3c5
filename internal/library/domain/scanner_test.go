package domain

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayiahmedia/ayiah/pkg/logger"
)

func TestParseTitleYear(t *testing.T) {
	tests := []struct {
		stem  string
		title string
		year  *int
	}{
		{"Arrival (2016)", "Arrival", intPtr(2016)},
		{"Blade Runner 2049 (2017)", "Blade Runner 2049", intPtr(2017)},
		{"Foo (199)", "Foo (199)", nil},
		{"Foo (19999)", "Foo (19999)", nil},
		{"Foo", "Foo", nil},
		{"(2016)", "(2016)", nil},
		{"Arrival (2016) ", "Arrival", intPtr(2016)},
	}

	for _, tt := range tests {
		title, year := ParseTitleYear(tt.stem)
		assert.Equal(t, tt.title, title, "stem %q", tt.stem)
		if tt.year == nil {
			assert.Nil(t, year, "stem %q", tt.stem)
		} else {
			require.NotNil(t, year, "stem %q", tt.stem)
			assert.Equal(t, *tt.year, *year, "stem %q", tt.stem)
		}
	}
}

func TestExtensionsFor(t *testing.T) {
	assert.Contains(t, ExtensionsFor(MediaKindMovie), ".mkv")
	assert.Equal(t, ExtensionsFor(MediaKindMovie), ExtensionsFor(MediaKindTV))
	assert.Contains(t, ExtensionsFor(MediaKindBook), ".epub")
	assert.Contains(t, ExtensionsFor(MediaKindComic), ".cbz")
	assert.Nil(t, ExtensionsFor(MediaKind("bogus")))
}

func TestScannerDiscover(t *testing.T) {
	// Arrange: a movie tree with nested folders, hidden entries, and
	// files the kind does not cover.
	root := t.TempDir()
	writeFile(t, root, "Arrival (2016).mkv")
	writeFile(t, root, "notes.txt")
	writeFile(t, root, ".hidden.mkv")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Dune (2021)"), 0o755))
	writeFile(t, filepath.Join(root, "Dune (2021)"), "Dune (2021).MP4")
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".cache"), 0o755))
	writeFile(t, filepath.Join(root, ".cache"), "stale.mkv")

	scanner := NewScanner(logger.NewNoopLogger(), 4)

	// Act
	files, failures, err := scanner.Discover(context.Background(), root, MediaKindMovie)

	// Assert
	require.NoError(t, err)
	assert.Zero(t, failures)
	require.Len(t, files, 2)

	sort.Slice(files, func(i, j int) bool { return files[i].Title < files[j].Title })
	assert.Equal(t, "Arrival (2016)", files[0].Title)
	assert.Equal(t, filepath.Join(root, "Arrival (2016).mkv"), files[0].Path)
	// Extension matching is case-insensitive; the stem keeps its case.
	assert.Equal(t, "Dune (2021)", files[1].Title)
}

func TestScannerDiscoverMissingRoot(t *testing.T) {
	scanner := NewScanner(logger.NewNoopLogger(), 4)

	_, _, err := scanner.Discover(context.Background(), filepath.Join(t.TempDir(), "nope"), MediaKindMovie)

	assert.ErrorIs(t, err, ErrPathNotFound)
}

func TestScannerDiscoverFileRoot(t *testing.T) {
	root := t.TempDir()
	file := writeFile(t, root, "lonely.mkv")

	scanner := NewScanner(logger.NewNoopLogger(), 4)

	_, _, err := scanner.Discover(context.Background(), file, MediaKindMovie)

	assert.ErrorIs(t, err, ErrNotADirectory)
}

func TestScannerDiscoverFollowsSymlinkedDirs(t *testing.T) {
	root := t.TempDir()
	outside := t.TempDir()
	writeFile(t, outside, "Linked (2020).mkv")
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "linked")))

	scanner := NewScanner(logger.NewNoopLogger(), 4)

	files, _, err := scanner.Discover(context.Background(), root, MediaKindMovie)

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "Linked (2020)", files[0].Title)
}

func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))
	return path
}

func intPtr(v int) *int { return &v }
