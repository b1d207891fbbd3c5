package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ayiahmedia/ayiah/internal/library/domain"
)

// NewTestDB creates a new in-memory SQLite database with the full schema
// and foreign keys enabled.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// One connection keeps every session on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&domain.LibraryFolder{},
		&domain.MediaItem{},
		&domain.VideoMetadata{},
	)
	require.NoError(t, err)

	return db
}

// CreateTestFolder creates a library folder fixture rooted at path.
func CreateTestFolder(path string, kind domain.MediaKind) *domain.LibraryFolder {
	return &domain.LibraryFolder{
		Name:      filepath.Base(path),
		Path:      path,
		MediaKind: kind,
		Enabled:   true,
	}
}

// CreateTestItem creates a media item fixture belonging to the folder.
func CreateTestItem(folder *domain.LibraryFolder, title, filePath string) *domain.MediaItem {
	return &domain.MediaItem{
		LibraryFolderID: folder.ID,
		MediaKind:       folder.MediaKind,
		Title:           title,
		FilePath:        filePath,
		FileSize:        1024,
	}
}

// CreateTestMetadata creates a metadata fixture for the item.
func CreateTestMetadata(itemID uint, tmdbID int) *domain.VideoMetadata {
	metadata := &domain.VideoMetadata{
		MediaItemID: itemID,
		TmdbID:      &tmdbID,
		Overview:    "test overview",
		ReleaseDate: "2016-11-10",
	}
	metadata.SetGenres([]string{"Drama", "Science Fiction"})
	return metadata
}

// WriteMediaFile creates a file with some content under dir, creating
// intermediate directories as needed, and returns its absolute path.
func WriteMediaFile(t *testing.T, dir, name string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("media content"), 0o644))
	return path
}

// WaitFor polls the condition until it holds or the timeout elapses.
func WaitFor(t *testing.T, timeout time.Duration, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met within timeout")
}
