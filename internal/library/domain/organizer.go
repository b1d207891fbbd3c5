package domain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ayiahmedia/ayiah/internal/scraper"
	"github.com/ayiahmedia/ayiah/pkg/interfaces"
)

// OrganizeMethod selects how a file is placed into the library tree.
type OrganizeMethod string

const (
	OrganizeSoftLink OrganizeMethod = "soft_link"
	OrganizeHardLink OrganizeMethod = "hard_link"
	OrganizeCopy     OrganizeMethod = "copy"
	OrganizeMove     OrganizeMethod = "move"
)

// ParseOrganizeMethod parses a method name. Hyphenated spellings and the
// "cut" alias for move are accepted.
func ParseOrganizeMethod(s string) (OrganizeMethod, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "soft_link", "softlink", "symlink":
		return OrganizeSoftLink, nil
	case "hard_link", "hardlink":
		return OrganizeHardLink, nil
	case "copy":
		return OrganizeCopy, nil
	case "move", "cut":
		return OrganizeMove, nil
	default:
		return "", fmt.Errorf("unknown organize method %q", s)
	}
}

// PlacementCategory selects which library subtree a file belongs to.
type PlacementCategory string

const (
	PlacementVideo PlacementCategory = "video"
	PlacementBook  PlacementCategory = "book"
	PlacementMusic PlacementCategory = "music"
	PlacementComic PlacementCategory = "comic"
)

// PlacementDetails carries the metadata fields that shape a library path.
// Only the fields belonging to the category are consulted.
type PlacementDetails struct {
	Category    PlacementCategory
	Title       string
	ReleaseDate string // YYYY-MM-DD; the leading component becomes the year folder
	Season      *int

	Authors   []string
	Artists   []string
	Album     string
	Series    string
	Publisher string
	Volume    *int
}

// PlacementFromDetails maps a fetched metadata record onto the fields the
// organizer consults.
func PlacementFromDetails(d *scraper.Details) PlacementDetails {
	switch d.Type {
	case scraper.MediaTypeMovie:
		return PlacementDetails{
			Category:    PlacementVideo,
			Title:       d.Movie.Title,
			ReleaseDate: d.Movie.ReleaseDate,
		}
	case scraper.MediaTypeTV:
		return PlacementDetails{
			Category:    PlacementVideo,
			Title:       d.TV.Name,
			ReleaseDate: d.TV.FirstAirDate,
		}
	case scraper.MediaTypeAnime:
		return PlacementDetails{
			Category:    PlacementVideo,
			Title:       d.Anime.Title,
			ReleaseDate: d.Anime.StartDate,
		}
	}
	return PlacementDetails{Category: PlacementVideo}
}

// OrganizerConfig tunes file placement.
type OrganizerConfig struct {
	TargetDir    string
	Method       OrganizeMethod
	RetryCount   int
	DryRun       bool
	SkipExisting bool
}

// Organizer places media files into a canonical library layout under the
// target directory by linking, copying, or moving them.
type Organizer struct {
	targetDir    string
	method       OrganizeMethod
	retryCount   int
	dryRun       bool
	skipExisting bool
	logger       interfaces.Logger
}

// NewOrganizer creates an organizer. Retry count defaults to 3 and the
// method to hard links.
func NewOrganizer(cfg OrganizerConfig, logger interfaces.Logger) *Organizer {
	if cfg.RetryCount <= 0 {
		cfg.RetryCount = 3
	}
	if cfg.Method == "" {
		cfg.Method = OrganizeHardLink
	}
	return &Organizer{
		targetDir:    cfg.TargetDir,
		method:       cfg.Method,
		retryCount:   cfg.RetryCount,
		dryRun:       cfg.DryRun,
		skipExisting: cfg.SkipExisting,
		logger:       logger,
	}
}

// TargetPath derives where the source file belongs in the library tree.
func (o *Organizer) TargetPath(details PlacementDetails, sourcePath string) string {
	filename := filepath.Base(sourcePath)

	var parts []string
	switch details.Category {
	case PlacementBook:
		parts = []string{"Books", firstOr(details.Authors, "Unknown Author")}
		if details.Series != "" {
			parts = append(parts, details.Series)
		}
	case PlacementMusic:
		parts = []string{"Music", firstOr(details.Artists, "Unknown Artist")}
		if details.Album != "" {
			parts = append(parts, details.Album)
		}
	case PlacementComic:
		parts = []string{"Comics"}
		if details.Publisher != "" {
			parts = append(parts, details.Publisher)
		}
		if details.Series != "" {
			parts = append(parts, details.Series)
			if details.Volume != nil {
				parts = append(parts, fmt.Sprintf("Volume %d", *details.Volume))
			}
		}
	default:
		title := details.Title
		if title == "" {
			title = "Unknown"
		}
		year := "Unknown"
		if head, _, _ := strings.Cut(details.ReleaseDate, "-"); head != "" {
			year = head
		}
		parts = []string{"Videos", fmt.Sprintf("%s (%s)", title, year)}
		if details.Season != nil {
			parts = append(parts, fmt.Sprintf("Season %d", *details.Season))
		}
	}

	parts = append(parts, filename)
	return filepath.Join(append([]string{o.targetDir}, parts...)...)
}

// Organize derives the target path and materializes it. The returned path
// is absolute within the target directory. Placement failures are retried
// with linear backoff; an existing target without skip-existing fails
// immediately with ErrPathExists.
func (o *Organizer) Organize(ctx context.Context, sourcePath string, details PlacementDetails) (string, error) {
	target := o.TargetPath(details, sourcePath)

	if o.dryRun {
		o.logger.Info("Dry run: skipping placement",
			interfaces.String("source", sourcePath),
			interfaces.String("target", target),
			interfaces.String("method", string(o.method)))
		return target, nil
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", classifyPlacement(err, ErrDirectoryCreation)
	}

	if _, err := os.Stat(target); err == nil {
		if o.skipExisting {
			o.logger.Debug("Target already exists, skipping",
				interfaces.String("target", target))
			return target, nil
		}
		return "", fmt.Errorf("%w: %s", ErrPathExists, target)
	}

	var err error
	for attempt := 1; attempt <= o.retryCount; attempt++ {
		err = o.place(sourcePath, target)
		if err == nil {
			o.logger.Debug("Placed media file",
				interfaces.String("source", sourcePath),
				interfaces.String("target", target),
				interfaces.String("method", string(o.method)))
			return target, nil
		}
		if errors.Is(err, ErrPathExists) {
			break
		}
		if attempt < o.retryCount {
			o.logger.Warn("Placement failed, retrying",
				interfaces.String("target", target),
				interfaces.Int("attempt", attempt),
				interfaces.Error(err))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}
	}
	return "", err
}

func (o *Organizer) place(source, target string) error {
	switch o.method {
	case OrganizeSoftLink:
		if err := os.Symlink(source, target); err != nil {
			return classifyPlacement(err, ErrSymlink)
		}
	case OrganizeHardLink:
		if err := os.Link(source, target); err != nil {
			return classifyPlacement(err, ErrHardLink)
		}
	case OrganizeCopy:
		if err := copyFile(source, target); err != nil {
			return classifyPlacement(err, ErrCopy)
		}
	case OrganizeMove:
		if err := moveFile(source, target); err != nil {
			return classifyPlacement(err, ErrMove)
		}
	default:
		return fmt.Errorf("unknown organize method %q", o.method)
	}
	return nil
}

// classifyPlacement wraps a filesystem error with its placement class.
// Permission and existence failures take precedence over the method class.
func classifyPlacement(err, class error) error {
	switch {
	case errors.Is(err, os.ErrPermission):
		class = ErrPermissionDenied
	case errors.Is(err, os.ErrExist):
		class = ErrPathExists
	}
	return fmt.Errorf("%w: %v", class, err)
}

// copyFile copies source to target through a dot-prefixed temp file in
// the target directory, so a crashed copy never surfaces as media.
func copyFile(source, target string) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), "."+filepath.Base(target)+".*")
	if err != nil {
		return err
	}
	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, in); err != nil {
		return err
	}
	if err := tmp.Chmod(info.Mode().Perm()); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}

// moveFile renames source to target, falling back to copy-then-remove
// when the paths sit on different filesystems.
func moveFile(source, target string) error {
	err := os.Rename(source, target)
	if err == nil {
		return nil
	}

	var linkErr *os.LinkError
	if errors.As(err, &linkErr) && errors.Is(linkErr.Err, syscall.EXDEV) {
		if err := copyFile(source, target); err != nil {
			return err
		}
		return os.Remove(source)
	}
	return err
}

func firstOr(values []string, fallback string) string {
	if len(values) > 0 && values[0] != "" {
		return values[0]
	}
	return fallback
}
