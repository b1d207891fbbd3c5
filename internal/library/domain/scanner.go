package domain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ayiahmedia/ayiah/pkg/interfaces"
)

// Supported file extensions per media kind. Movie and TV folders share
// the video set.
var (
	videoExtensions = []string{
		".mkv", ".mp4", ".avi", ".mov", ".wmv", ".flv",
		".webm", ".m4v", ".mpg", ".mpeg", ".m2ts", ".ts",
	}
	comicExtensions = []string{".cbz", ".cbr", ".cb7", ".cbt", ".pdf"}
	bookExtensions  = []string{".epub", ".mobi", ".azw3", ".pdf"}
)

// titleYearPattern matches titles written as "Name (2016)".
var titleYearPattern = regexp.MustCompile(`^(.+?)\s*\((\d{4})\)\s*$`)

// ExtensionsFor returns the valid file extensions for a media kind,
// lowercased and dot-prefixed.
func ExtensionsFor(kind MediaKind) []string {
	switch kind {
	case MediaKindMovie, MediaKindTV:
		return videoExtensions
	case MediaKindComic:
		return comicExtensions
	case MediaKindBook:
		return bookExtensions
	default:
		return nil
	}
}

// ParseTitleYear splits a file stem into a display title and a year when
// the stem ends in a parenthesized four-digit year. Stems without one
// come back unchanged with a nil year.
func ParseTitleYear(stem string) (string, *int) {
	match := titleYearPattern.FindStringSubmatch(stem)
	if match == nil {
		return stem, nil
	}
	year, err := strconv.Atoi(match[2])
	if err != nil {
		return stem, nil
	}
	return match[1], &year
}

// MediaFile is one discovered media file.
type MediaFile struct {
	Path  string
	Size  int64
	Title string
}

// Scanner discovers media files under library folders. Discovery follows
// symlinks and walks subdirectories in parallel.
type Scanner struct {
	logger        interfaces.Logger
	maxConcurrent int
}

// NewScanner creates a scanner. A non-positive limit falls back to twice
// the CPU count.
func NewScanner(logger interfaces.Logger, maxConcurrent int) *Scanner {
	if maxConcurrent <= 0 {
		maxConcurrent = 2 * runtime.NumCPU()
	}
	return &Scanner{
		logger:        logger,
		maxConcurrent: maxConcurrent,
	}
}

// Discover walks the folder tree and returns every regular file whose
// extension matches the kind, plus the number of entries that could not
// be read. Unreadable entries are logged and skipped, never fatal.
func (s *Scanner) Discover(ctx context.Context, root string, kind MediaKind) ([]MediaFile, int, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, 0, fmt.Errorf("resolving %s: %w", root, err)
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %s", ErrPathNotFound, root)
	}
	if !info.IsDir() {
		return nil, 0, fmt.Errorf("%w: %s", ErrNotADirectory, root)
	}

	exts := make(map[string]bool)
	for _, ext := range ExtensionsFor(kind) {
		exts[ext] = true
	}

	var (
		mu       sync.Mutex
		files    []MediaFile
		failures int
		visited  = make(map[string]bool)
	)

	markVisited := func(dir string) bool {
		resolved, err := filepath.EvalSymlinks(dir)
		if err != nil {
			resolved = dir
		}
		mu.Lock()
		defer mu.Unlock()
		if visited[resolved] {
			return false
		}
		visited[resolved] = true
		return true
	}
	markVisited(root)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.maxConcurrent)

	var walk func(dir string) error
	walk = func(dir string) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			s.logger.Warn("Failed to read directory",
				interfaces.String("path", dir),
				interfaces.Error(err))
			mu.Lock()
			failures++
			mu.Unlock()
			return nil
		}

		for _, entry := range entries {
			name := entry.Name()
			if strings.HasPrefix(name, ".") {
				continue
			}
			full := filepath.Join(dir, name)

			// Stat, not Lstat: symlinked files and directories are
			// followed.
			info, err := os.Stat(full)
			if err != nil {
				s.logger.Warn("Failed to stat entry",
					interfaces.String("path", full),
					interfaces.Error(err))
				mu.Lock()
				failures++
				mu.Unlock()
				continue
			}

			switch {
			case info.IsDir():
				if !markVisited(full) {
					continue
				}
				sub := full
				if !g.TryGo(func() error { return walk(sub) }) {
					// Worker pool saturated; descend in place.
					if err := walk(sub); err != nil {
						return err
					}
				}
			case info.Mode().IsRegular() && exts[strings.ToLower(filepath.Ext(name))]:
				stem := strings.TrimSuffix(name, filepath.Ext(name))
				mu.Lock()
				files = append(files, MediaFile{
					Path:  full,
					Size:  info.Size(),
					Title: stem,
				})
				mu.Unlock()
			}
		}
		return nil
	}

	g.Go(func() error { return walk(root) })
	if err := g.Wait(); err != nil {
		return nil, failures, err
	}

	return files, failures, nil
}
