package service

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ayiahmedia/ayiah/internal/library/domain"
	"github.com/ayiahmedia/ayiah/internal/library/repository"
	"github.com/ayiahmedia/ayiah/pkg/errors"
	"github.com/ayiahmedia/ayiah/pkg/interfaces"
)

// LibraryService handles library folder and media item business logic
type LibraryService struct {
	repo     repository.Repository
	eventBus interfaces.EventBus
	cache    interfaces.Cache
	logger   interfaces.Logger
	scanner  *domain.Scanner
}

// NewLibraryService creates a new library service
func NewLibraryService(
	repo repository.Repository,
	eventBus interfaces.EventBus,
	cache interfaces.Cache,
	logger interfaces.Logger,
	scanner *domain.Scanner,
) *LibraryService {
	return &LibraryService{
		repo:     repo,
		eventBus: eventBus,
		cache:    cache,
		logger:   logger,
		scanner:  scanner,
	}
}

// CreateFolder registers a new library folder
func (s *LibraryService) CreateFolder(ctx context.Context, folder *domain.LibraryFolder) error {
	// Validate input
	if folder.Name == "" || folder.Path == "" {
		return errors.BadRequest("folder name and path are required")
	}
	if !folder.MediaKind.Valid() {
		return errors.BadRequest("unknown media kind " + strconv.Quote(string(folder.MediaKind)))
	}
	if !filepath.IsAbs(folder.Path) {
		return errors.BadRequest("folder path must be absolute")
	}

	// The path must exist and be a directory
	info, err := os.Stat(folder.Path)
	if err != nil {
		return errors.BadRequest("folder path does not exist")
	}
	if !info.IsDir() {
		return errors.BadRequest("folder path is not a directory")
	}

	// Check if path is already registered
	existing, _ := s.repo.GetFolderByPath(ctx, folder.Path)
	if existing != nil {
		return errors.Conflict("folder path already registered")
	}

	if err := s.repo.CreateFolder(ctx, folder); err != nil {
		s.logger.Error("Failed to create library folder", interfaces.Error(err))
		return err
	}

	// Publish event
	s.eventBus.PublishAsync(ctx, domain.NewFolderCreatedEvent(folder))

	s.logger.Info("Library folder created",
		interfaces.Uint("id", folder.ID),
		interfaces.String("name", folder.Name),
		interfaces.String("path", folder.Path),
		interfaces.String("media_kind", string(folder.MediaKind)))

	return nil
}

// GetFolder retrieves a library folder by ID
func (s *LibraryService) GetFolder(ctx context.Context, id uint) (*domain.LibraryFolder, error) {
	// Check cache first
	cacheKey := "folder:" + strconv.FormatUint(uint64(id), 10)
	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != nil {
		if folder, ok := cached.(*domain.LibraryFolder); ok {
			return folder, nil
		}
	}

	folder, err := s.repo.GetFolder(ctx, id)
	if err != nil {
		return nil, err
	}

	// Cache the result
	s.cache.Set(ctx, cacheKey, folder, 5*time.Minute)

	return folder, nil
}

// ListFolders lists library folders, optionally filtered by enabled state
func (s *LibraryService) ListFolders(ctx context.Context, enabled *bool) ([]*domain.LibraryFolder, error) {
	return s.repo.ListFolders(ctx, enabled)
}

// UpdateFolder updates a library folder's name or enabled flag
func (s *LibraryService) UpdateFolder(ctx context.Context, id uint, updates map[string]interface{}) (*domain.LibraryFolder, error) {
	folder, err := s.repo.GetFolder(ctx, id)
	if err != nil {
		return nil, err
	}

	// Apply updates; the path and kind are fixed at registration
	if name, ok := updates["name"].(string); ok && name != "" {
		folder.Name = name
	}
	if enabled, ok := updates["enabled"].(bool); ok {
		folder.Enabled = enabled
	}

	if err := s.repo.UpdateFolder(ctx, folder); err != nil {
		return nil, err
	}

	// Invalidate cache
	s.cache.Delete(ctx, "folder:"+strconv.FormatUint(uint64(id), 10))

	return folder, nil
}

// DeleteFolder removes a library folder and its items
func (s *LibraryService) DeleteFolder(ctx context.Context, id uint) error {
	folder, err := s.repo.GetFolder(ctx, id)
	if err != nil {
		return err
	}

	// Delete folder (cascades to media items and their metadata)
	if err := s.repo.DeleteFolder(ctx, id); err != nil {
		return err
	}

	// Invalidate cache
	s.cache.Delete(ctx, "folder:"+strconv.FormatUint(uint64(id), 10))

	// Publish event
	s.eventBus.PublishAsync(ctx, domain.NewFolderDeletedEvent(id))

	s.logger.Info("Library folder deleted",
		interfaces.Uint("id", id),
		interfaces.String("name", folder.Name))

	return nil
}

// ScanFolder scans one library folder and records discovered files
func (s *LibraryService) ScanFolder(ctx context.Context, id uint) (*domain.ScanResult, error) {
	folder, err := s.repo.GetFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.performScan(ctx, folder)
}

// ScanAllFolders scans every enabled folder. A folder's failure is
// recorded in its own result and never aborts the remaining folders.
func (s *LibraryService) ScanAllFolders(ctx context.Context) ([]domain.FolderScanResult, error) {
	enabled := true
	folders, err := s.repo.ListFolders(ctx, &enabled)
	if err != nil {
		return nil, err
	}

	results := make([]domain.FolderScanResult, 0, len(folders))
	for _, folder := range folders {
		entry := domain.FolderScanResult{
			LibraryFolderID: folder.ID,
			FolderName:      folder.Name,
		}

		result, err := s.performScan(ctx, folder)
		if err != nil {
			s.logger.Error("Folder scan failed",
				interfaces.Uint("folder_id", folder.ID),
				interfaces.String("path", folder.Path),
				interfaces.Error(err))
			entry.Errors = 1
		} else {
			entry.ScanResult = *result
		}

		results = append(results, entry)
	}
	return results, nil
}

// performScan walks the folder and reconciles discovered files against
// the store.
func (s *LibraryService) performScan(ctx context.Context, folder *domain.LibraryFolder) (*domain.ScanResult, error) {
	s.logger.Info("Starting folder scan",
		interfaces.Uint("folder_id", folder.ID),
		interfaces.String("path", folder.Path),
		interfaces.String("media_kind", string(folder.MediaKind)))

	started := time.Now()

	files, walkFailures, err := s.scanner.Discover(ctx, folder.Path, folder.MediaKind)
	if err != nil {
		return nil, err
	}

	result := &domain.ScanResult{
		TotalFiles: len(files),
		Errors:     walkFailures,
	}

	for _, file := range files {
		existing, err := s.repo.GetItemByPath(ctx, file.Path)
		if err == nil && existing != nil {
			result.ExistingItems++
			continue
		}
		if err != nil && !errors.IsNotFound(err) {
			s.logger.Error("Failed to look up media item",
				interfaces.String("path", file.Path),
				interfaces.Error(err))
			result.Errors++
			continue
		}

		item := &domain.MediaItem{
			LibraryFolderID: folder.ID,
			MediaKind:       folder.MediaKind,
			Title:           file.Title,
			FilePath:        file.Path,
			FileSize:        file.Size,
		}
		if err := s.repo.CreateItem(ctx, item); err != nil {
			// A concurrent scan may have inserted the same path.
			if errors.IsConflict(err) {
				result.ExistingItems++
				continue
			}
			s.logger.Error("Failed to create media item",
				interfaces.String("path", file.Path),
				interfaces.Error(err))
			result.Errors++
			continue
		}

		// Publish event
		s.eventBus.PublishAsync(ctx, domain.NewMediaAddedEvent(item))
		result.NewItems++
	}

	s.logger.Info("Folder scan completed",
		interfaces.Uint("folder_id", folder.ID),
		interfaces.Int("total_files", result.TotalFiles),
		interfaces.Int("new_items", result.NewItems),
		interfaces.Int("existing_items", result.ExistingItems),
		interfaces.Int("errors", result.Errors),
		interfaces.Duration("duration", time.Since(started)))

	// Publish scan completed event
	s.eventBus.PublishAsync(ctx, domain.NewScanCompletedEvent(folder, *result))

	return result, nil
}

// GetItem retrieves a media item with its metadata view
func (s *LibraryService) GetItem(ctx context.Context, id uint) (*domain.MediaItemWithMetadata, error) {
	item, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	return withMetadata(item), nil
}

// ListItemsByKind lists media items of one kind with their metadata views
func (s *LibraryService) ListItemsByKind(ctx context.Context, kind domain.MediaKind, limit, offset int) ([]*domain.MediaItemWithMetadata, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}

	items, err := s.repo.ListItemsByKind(ctx, kind, limit, offset)
	if err != nil {
		return nil, err
	}

	views := make([]*domain.MediaItemWithMetadata, 0, len(items))
	for _, item := range items {
		views = append(views, withMetadata(item))
	}
	return views, nil
}

func withMetadata(item *domain.MediaItem) *domain.MediaItemWithMetadata {
	return &domain.MediaItemWithMetadata{
		MediaItem: *item,
		Metadata:  domain.NewMetadataView(item.Metadata),
	}
}
