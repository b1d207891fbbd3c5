package service

import (
	"context"

	"github.com/ayiahmedia/ayiah/internal/library/domain"
	"github.com/ayiahmedia/ayiah/internal/scraper"
)

// LibraryServiceInterface defines the library service contract
type LibraryServiceInterface interface {
	// Folder operations
	CreateFolder(ctx context.Context, folder *domain.LibraryFolder) error
	GetFolder(ctx context.Context, id uint) (*domain.LibraryFolder, error)
	ListFolders(ctx context.Context, enabled *bool) ([]*domain.LibraryFolder, error)
	UpdateFolder(ctx context.Context, id uint, updates map[string]interface{}) (*domain.LibraryFolder, error)
	DeleteFolder(ctx context.Context, id uint) error

	// Scan operations
	ScanFolder(ctx context.Context, id uint) (*domain.ScanResult, error)
	ScanAllFolders(ctx context.Context) ([]domain.FolderScanResult, error)

	// Item operations
	GetItem(ctx context.Context, id uint) (*domain.MediaItemWithMetadata, error)
	ListItemsByKind(ctx context.Context, kind domain.MediaKind, limit, offset int) ([]*domain.MediaItemWithMetadata, error)
}

// MetadataSource is the slice of the provider aggregator the ingestion
// pipeline consumes.
type MetadataSource interface {
	Search(ctx context.Context, query string, year *int) ([]scraper.SearchResult, error)
	Details(ctx context.Context, result scraper.SearchResult) (*scraper.Details, error)
}

// IngestServiceInterface defines the ingestion orchestrator contract
type IngestServiceInterface interface {
	// ScanAndIngest scans one folder synchronously and fetches metadata
	// for the discovered items in the background.
	ScanAndIngest(ctx context.Context, folderID uint) (*domain.ScanResult, error)

	// ScanAndIngestAll does the same for every enabled folder.
	ScanAndIngestAll(ctx context.Context) ([]domain.FolderScanResult, error)

	// IngestFolder runs the full scan → fetch → organize pass for one
	// folder and blocks until it completes.
	IngestFolder(ctx context.Context, folderID uint) (*Progress, error)

	// IngestAll runs IngestFolder sequentially over every enabled folder.
	IngestAll(ctx context.Context) ([]FolderIngestResult, error)

	// RefreshMetadata refetches and stores metadata for one item.
	RefreshMetadata(ctx context.Context, itemID uint) (*domain.MediaItemWithMetadata, error)

	// ManualMatch stores metadata for an item from a provider record
	// the user picked by hand.
	ManualMatch(ctx context.Context, req ManualMatchRequest) (*domain.MediaItemWithMetadata, error)
}

// Interface assertions
var _ LibraryServiceInterface = (*LibraryService)(nil)
var _ IngestServiceInterface = (*IngestService)(nil)
var _ MetadataSource = (*scraper.Manager)(nil)
