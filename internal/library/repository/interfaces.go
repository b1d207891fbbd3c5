package repository

import (
	"context"

	"github.com/ayiahmedia/ayiah/internal/library/domain"
)

// FolderRepository defines the interface for library folder data access.
type FolderRepository interface {
	CreateFolder(ctx context.Context, folder *domain.LibraryFolder) error
	GetFolder(ctx context.Context, id uint) (*domain.LibraryFolder, error)
	GetFolderByPath(ctx context.Context, path string) (*domain.LibraryFolder, error)
	UpdateFolder(ctx context.Context, folder *domain.LibraryFolder) error
	DeleteFolder(ctx context.Context, id uint) error
	ListFolders(ctx context.Context, enabled *bool) ([]*domain.LibraryFolder, error)
}

// ItemRepository defines the interface for media item data access.
type ItemRepository interface {
	CreateItem(ctx context.Context, item *domain.MediaItem) error
	GetItem(ctx context.Context, id uint) (*domain.MediaItem, error)
	GetItemByPath(ctx context.Context, path string) (*domain.MediaItem, error)
	ListItemsByKind(ctx context.Context, kind domain.MediaKind, limit, offset int) ([]*domain.MediaItem, error)
	ListItemsWithoutMetadata(ctx context.Context, folderID uint) ([]*domain.MediaItem, error)
	CountItemsByFolder(ctx context.Context, folderID uint) (int64, error)
	DeleteItem(ctx context.Context, id uint) error
}

// MetadataRepository defines the interface for video metadata data access.
type MetadataRepository interface {
	UpsertMetadata(ctx context.Context, metadata *domain.VideoMetadata) error
	GetMetadataByItem(ctx context.Context, mediaItemID uint) (*domain.VideoMetadata, error)
}

// Repository aggregates all repository interfaces.
type Repository interface {
	FolderRepository
	ItemRepository
	MetadataRepository
}
