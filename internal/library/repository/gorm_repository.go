package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ayiahmedia/ayiah/internal/library/domain"
	pkgerrors "github.com/ayiahmedia/ayiah/pkg/errors"
	"github.com/ayiahmedia/ayiah/pkg/repository"
)

// GormRepository implements the repository interfaces using GORM.
type GormRepository struct {
	db *gorm.DB
}

// NewGormRepository creates a new GORM repository.
func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

// CreateFolder creates a new library folder.
func (r *GormRepository) CreateFolder(ctx context.Context, folder *domain.LibraryFolder) error {
	return repository.Create(ctx, r.db, folder)
}

// GetFolder retrieves a library folder by ID.
func (r *GormRepository) GetFolder(ctx context.Context, id uint) (*domain.LibraryFolder, error) {
	return repository.FindByID[domain.LibraryFolder](ctx, r.db, id)
}

// GetFolderByPath retrieves a library folder by path.
func (r *GormRepository) GetFolderByPath(ctx context.Context, path string) (*domain.LibraryFolder, error) {
	return repository.FindOneBy[domain.LibraryFolder](ctx, r.db, "path = ?", path)
}

// UpdateFolder updates a library folder.
func (r *GormRepository) UpdateFolder(ctx context.Context, folder *domain.LibraryFolder) error {
	return repository.Update(ctx, r.db, folder)
}

// DeleteFolder deletes a library folder and, through the foreign key
// constraint, its items and their metadata.
func (r *GormRepository) DeleteFolder(ctx context.Context, id uint) error {
	return repository.Delete[domain.LibraryFolder](ctx, r.db, id)
}

// ListFolders lists library folders, optionally filtered by enabled state.
func (r *GormRepository) ListFolders(ctx context.Context, enabled *bool) ([]*domain.LibraryFolder, error) {
	query := r.db.WithContext(ctx)
	if enabled != nil {
		query = query.Where("enabled = ?", *enabled)
	}

	var folders []*domain.LibraryFolder
	if err := query.Order("name").Find(&folders).Error; err != nil {
		return nil, fmt.Errorf("failed to list library folders: %w", err)
	}
	return folders, nil
}

// CreateItem creates a new media item.
func (r *GormRepository) CreateItem(ctx context.Context, item *domain.MediaItem) error {
	return repository.Create(ctx, r.db, item)
}

// GetItem retrieves a media item by ID with its metadata row.
func (r *GormRepository) GetItem(ctx context.Context, id uint) (*domain.MediaItem, error) {
	return repository.FindByID[domain.MediaItem](ctx, r.db, id, "Metadata")
}

// GetItemByPath retrieves a media item by file path.
func (r *GormRepository) GetItemByPath(ctx context.Context, path string) (*domain.MediaItem, error) {
	return repository.FindOneBy[domain.MediaItem](ctx, r.db, "file_path = ?", path)
}

// ListItemsByKind lists media items of one kind with their metadata rows.
func (r *GormRepository) ListItemsByKind(ctx context.Context, kind domain.MediaKind, limit, offset int) ([]*domain.MediaItem, error) {
	query := r.db.WithContext(ctx).
		Where("media_kind = ?", kind).
		Preload("Metadata").
		Order("title")
	if limit > 0 {
		query = query.Limit(limit).Offset(offset)
	}

	var items []*domain.MediaItem
	if err := query.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list media items: %w", err)
	}
	return items, nil
}

// ListItemsWithoutMetadata lists the items of one folder that have no
// metadata row yet.
func (r *GormRepository) ListItemsWithoutMetadata(ctx context.Context, folderID uint) ([]*domain.MediaItem, error) {
	subquery := r.db.Model(&domain.VideoMetadata{}).Select("media_item_id")

	var items []*domain.MediaItem
	err := r.db.WithContext(ctx).
		Where("library_folder_id = ?", folderID).
		Where("id NOT IN (?)", subquery).
		Order("id").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list items without metadata: %w", err)
	}
	return items, nil
}

// CountItemsByFolder counts the media items of one folder.
func (r *GormRepository) CountItemsByFolder(ctx context.Context, folderID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.MediaItem{}).
		Where("library_folder_id = ?", folderID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count media items: %w", err)
	}
	return count, nil
}

// DeleteItem deletes a media item.
func (r *GormRepository) DeleteItem(ctx context.Context, id uint) error {
	return repository.Delete[domain.MediaItem](ctx, r.db, id)
}

// UpsertMetadata inserts a metadata row or, when the item already has
// one, replaces every column and refreshes updated_at.
func (r *GormRepository) UpsertMetadata(ctx context.Context, metadata *domain.VideoMetadata) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "media_item_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"tmdb_id", "tvdb_id", "imdb_id", "overview",
			"poster_path", "backdrop_path", "release_date", "runtime",
			"vote_average", "vote_count", "genres", "updated_at",
		}),
	}).Create(metadata).Error
	if err != nil {
		return fmt.Errorf("failed to upsert metadata: %w", err)
	}
	return nil
}

// GetMetadataByItem retrieves the metadata row for a media item.
func (r *GormRepository) GetMetadataByItem(ctx context.Context, mediaItemID uint) (*domain.VideoMetadata, error) {
	var metadata domain.VideoMetadata
	if err := r.db.WithContext(ctx).Where("media_item_id = ?", mediaItemID).First(&metadata).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("metadata not found")
		}
		return nil, err
	}
	return &metadata, nil
}
