package service

import (
	"context"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/ayiahmedia/ayiah/internal/library/domain"
	"github.com/ayiahmedia/ayiah/internal/library/repository"
	"github.com/ayiahmedia/ayiah/internal/scraper"
	"github.com/ayiahmedia/ayiah/pkg/errors"
	"github.com/ayiahmedia/ayiah/pkg/interfaces"
)

// DefaultItemDelay is the minimum pause between two metadata fetches,
// on top of the provider rate limits.
const DefaultItemDelay = 250 * time.Millisecond

// Progress accumulates the outcome counters of one ingestion run.
type Progress struct {
	Total      int `json:"total"`
	Processed  int `json:"processed"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

// FolderIngestResult pairs a folder with the progress of its run. A
// folder-level failure is recorded in Error and never aborts the
// remaining folders.
type FolderIngestResult struct {
	LibraryFolderID uint     `json:"library_folder_id"`
	FolderName      string   `json:"folder_name"`
	Progress        Progress `json:"progress"`
	Error           string   `json:"error,omitempty"`
}

// ManualMatchRequest ties a media item to a provider record chosen by
// the user.
type ManualMatchRequest struct {
	MediaItemID uint              `json:"media_item_id"`
	MediaType   scraper.MediaType `json:"media_type"`
	MediaID     string            `json:"media_id"`
	Provider    string            `json:"provider"`
	Organize    bool              `json:"organize"`
}

// IngestService drives the scan → fetch → organize pipeline
type IngestService struct {
	base      context.Context
	repo      repository.Repository
	library   LibraryServiceInterface
	source    MetadataSource
	organizer *domain.Organizer
	eventBus  interfaces.EventBus
	logger    interfaces.Logger
	itemDelay time.Duration
}

// NewIngestService creates a new ingestion orchestrator. base is the
// lifecycle root for background runs; cancelling it stops any run
// spawned by ScanAndIngest. organizer may be nil, which disables the
// placement step.
func NewIngestService(
	base context.Context,
	repo repository.Repository,
	library LibraryServiceInterface,
	source MetadataSource,
	organizer *domain.Organizer,
	eventBus interfaces.EventBus,
	logger interfaces.Logger,
	itemDelay time.Duration,
) *IngestService {
	if itemDelay < DefaultItemDelay {
		itemDelay = DefaultItemDelay
	}
	return &IngestService{
		base:      base,
		repo:      repo,
		library:   library,
		source:    source,
		organizer: organizer,
		eventBus:  eventBus,
		logger:    logger,
		itemDelay: itemDelay,
	}
}

// ScanAndIngest scans the folder synchronously and returns the scan
// result; metadata fetching for the discovered items continues in the
// background.
func (s *IngestService) ScanAndIngest(ctx context.Context, folderID uint) (*domain.ScanResult, error) {
	result, err := s.library.ScanFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	go s.backgroundPass(folderID)

	return result, nil
}

// ScanAndIngestAll scans every enabled folder synchronously; one
// background run then fetches metadata folder by folder.
func (s *IngestService) ScanAndIngestAll(ctx context.Context) ([]domain.FolderScanResult, error) {
	results, err := s.library.ScanAllFolders(ctx)
	if err != nil {
		return nil, err
	}

	go func() {
		for _, result := range results {
			if result.Errors > 0 && result.TotalFiles == 0 {
				continue
			}
			s.backgroundPass(result.LibraryFolderID)
		}
	}()

	return results, nil
}

func (s *IngestService) backgroundPass(folderID uint) {
	folder, err := s.repo.GetFolder(s.base, folderID)
	if err != nil {
		s.logger.Error("Failed to load folder for metadata pass",
			interfaces.Uint("folder_id", folderID),
			interfaces.Error(err))
		return
	}
	if _, err := s.metadataPass(s.base, folder); err != nil {
		s.logger.Error("Metadata pass aborted",
			interfaces.Uint("folder_id", folderID),
			interfaces.Error(err))
	}
}

// IngestFolder runs the full pipeline for one folder and blocks until
// every discovered item has been processed.
func (s *IngestService) IngestFolder(ctx context.Context, folderID uint) (*Progress, error) {
	folder, err := s.repo.GetFolder(ctx, folderID)
	if err != nil {
		return nil, err
	}

	if _, err := s.library.ScanFolder(ctx, folderID); err != nil {
		return nil, err
	}

	return s.metadataPass(ctx, folder)
}

// IngestAll runs the full pipeline sequentially over every enabled
// folder.
func (s *IngestService) IngestAll(ctx context.Context) ([]FolderIngestResult, error) {
	enabled := true
	folders, err := s.repo.ListFolders(ctx, &enabled)
	if err != nil {
		return nil, err
	}

	results := make([]FolderIngestResult, 0, len(folders))
	for _, folder := range folders {
		entry := FolderIngestResult{
			LibraryFolderID: folder.ID,
			FolderName:      folder.Name,
		}

		progress, err := s.IngestFolder(ctx, folder.ID)
		if err != nil {
			if ctx.Err() != nil {
				return results, ctx.Err()
			}
			entry.Error = err.Error()
		} else {
			entry.Progress = *progress
		}

		results = append(results, entry)
	}
	return results, nil
}

// metadataPass fetches and stores metadata for every item of the folder
// that has none yet.
func (s *IngestService) metadataPass(ctx context.Context, folder *domain.LibraryFolder) (*Progress, error) {
	jobID := uuid.New()
	log := s.logger.WithFields(
		interfaces.String("job_id", jobID.String()),
		interfaces.Uint("folder_id", folder.ID))

	items, err := s.repo.ListItemsWithoutMetadata(ctx, folder.ID)
	if err != nil {
		return nil, err
	}

	progress := &Progress{Total: len(items)}
	if len(items) == 0 {
		return progress, nil
	}

	log.Info("Starting metadata ingestion", interfaces.Int("items", len(items)))

	// Outcomes funnel through a channel so the counters stay in one
	// place even if item processing ever fans out.
	outcomes := make(chan bool)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for ok := range outcomes {
			progress.Processed++
			if ok {
				progress.Successful++
			} else {
				progress.Failed++
			}
			if progress.Processed%10 == 0 {
				log.Info("Ingestion progress",
					interfaces.Int("total", progress.Total),
					interfaces.Int("processed", progress.Processed),
					interfaces.Int("successful", progress.Successful),
					interfaces.Int("failed", progress.Failed))
			}
		}
	}()

	for _, item := range items {
		if ctx.Err() != nil {
			break
		}

		err := s.ingestItem(ctx, item)
		if err != nil {
			log.Warn("Failed to ingest media item",
				interfaces.Uint("item_id", item.ID),
				interfaces.String("title", item.Title),
				interfaces.Error(err))
		}
		outcomes <- err == nil

		// Be gentle with the catalogs beyond their rate limits.
		select {
		case <-ctx.Done():
		case <-time.After(s.itemDelay):
		}
	}
	close(outcomes)
	<-collected

	log.Info("Metadata ingestion completed",
		interfaces.Int("total", progress.Total),
		interfaces.Int("processed", progress.Processed),
		interfaces.Int("successful", progress.Successful),
		interfaces.Int("failed", progress.Failed))

	return progress, ctx.Err()
}

// ingestItem resolves metadata for one item: search, pick the result
// matching the item's kind, fetch details, store, optionally organize.
func (s *IngestService) ingestItem(ctx context.Context, item *domain.MediaItem) error {
	want, ok := scrapeType(item.MediaKind)
	if !ok {
		// No provider covers comics or books; searching would only
		// burn quota for the same outcome.
		return scraper.ErrNoMatchingResults
	}

	title, year := domain.ParseTitleYear(item.Title)

	results, err := s.source.Search(ctx, title, year)
	if err != nil {
		return err
	}

	result, ok := scraper.SelectByType(results, want)
	if !ok {
		return scraper.ErrNoMatchingResults
	}

	s.logger.Debug("Matched media item",
		interfaces.Uint("item_id", item.ID),
		interfaces.String("title", result.Title()),
		interfaces.String("provider", result.Provider()))

	details, err := s.source.Details(ctx, result)
	if err != nil {
		return err
	}

	if err := s.storeMetadata(ctx, item, details); err != nil {
		return err
	}

	if s.organizer != nil {
		if _, err := s.organizer.Organize(ctx, item.FilePath, domain.PlacementFromDetails(details)); err != nil {
			return err
		}
	}

	return nil
}

// RefreshMetadata refetches metadata for one item regardless of an
// existing row and returns the refreshed read model.
func (s *IngestService) RefreshMetadata(ctx context.Context, itemID uint) (*domain.MediaItemWithMetadata, error) {
	view, err := s.library.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if err := s.ingestItem(ctx, &view.MediaItem); err != nil {
		return nil, translateScrapeError(err)
	}

	return s.library.GetItem(ctx, itemID)
}

// ManualMatch stores metadata for an item from a provider record the
// user picked by hand, bypassing search.
func (s *IngestService) ManualMatch(ctx context.Context, req ManualMatchRequest) (*domain.MediaItemWithMetadata, error) {
	if req.MediaID == "" || req.Provider == "" {
		return nil, errors.BadRequest("media id and provider are required")
	}

	view, err := s.library.GetItem(ctx, req.MediaItemID)
	if err != nil {
		return nil, err
	}

	var result scraper.SearchResult
	switch req.MediaType {
	case scraper.MediaTypeMovie:
		result = scraper.NewMovieResult(scraper.MovieSearchResult{ID: req.MediaID, Provider: req.Provider})
	case scraper.MediaTypeTV:
		result = scraper.NewTvResult(scraper.TvSearchResult{ID: req.MediaID, Provider: req.Provider})
	case scraper.MediaTypeAnime:
		result = scraper.NewAnimeResult(scraper.AnimeSearchResult{ID: req.MediaID, Provider: req.Provider})
	default:
		return nil, errors.BadRequest("unknown media type " + strconv.Quote(string(req.MediaType)))
	}

	details, err := s.source.Details(ctx, result)
	if err != nil {
		return nil, translateScrapeError(err)
	}

	if err := s.storeMetadata(ctx, &view.MediaItem, details); err != nil {
		return nil, translateScrapeError(err)
	}

	if req.Organize && s.organizer != nil {
		if _, err := s.organizer.Organize(ctx, view.FilePath, domain.PlacementFromDetails(details)); err != nil {
			return nil, errors.Wrap(errors.ErrorTypeInternal, "failed to organize file", err)
		}
	}

	return s.library.GetItem(ctx, req.MediaItemID)
}

// storeMetadata converts details to a metadata row, upserts it, and
// announces the update.
func (s *IngestService) storeMetadata(ctx context.Context, item *domain.MediaItem, details *scraper.Details) error {
	metadata, err := metadataFromDetails(item.ID, details)
	if err != nil {
		return err
	}

	if err := s.repo.UpsertMetadata(ctx, metadata); err != nil {
		return err
	}

	s.eventBus.PublishAsync(ctx, domain.NewMetadataUpdatedEvent(item.ID, details.Provider()))

	s.logger.Info("Stored metadata for media item",
		interfaces.Uint("item_id", item.ID),
		interfaces.String("title", item.Title),
		interfaces.String("provider", details.Provider()))

	return nil
}

// metadataFromDetails flattens a details record into the metadata row.
// Anime records have no home in the video metadata schema yet.
func metadataFromDetails(mediaItemID uint, details *scraper.Details) (*domain.VideoMetadata, error) {
	metadata := &domain.VideoMetadata{MediaItemID: mediaItemID}

	switch details.Type {
	case scraper.MediaTypeMovie:
		movie := details.Movie
		metadata.TmdbID = numericID(movie.ExternalIDs.TmdbID)
		metadata.TvdbID = numericID(movie.ExternalIDs.TvdbID)
		metadata.ImdbID = optional(movie.ExternalIDs.ImdbID)
		metadata.Overview = movie.Overview
		metadata.PosterPath = movie.PosterPath
		metadata.BackdropPath = movie.BackdropPath
		metadata.ReleaseDate = movie.ReleaseDate
		metadata.Runtime = movie.Runtime
		metadata.VoteAverage = movie.VoteAverage
		metadata.VoteCount = movie.VoteCount
		metadata.SetGenres(movie.Genres)
	case scraper.MediaTypeTV:
		tv := details.TV
		metadata.TmdbID = numericID(tv.ExternalIDs.TmdbID)
		metadata.TvdbID = numericID(tv.ExternalIDs.TvdbID)
		metadata.ImdbID = optional(tv.ExternalIDs.ImdbID)
		metadata.Overview = tv.Overview
		metadata.PosterPath = tv.PosterPath
		metadata.BackdropPath = tv.BackdropPath
		metadata.ReleaseDate = tv.FirstAirDate
		if len(tv.EpisodeRunTime) > 0 {
			runtime := tv.EpisodeRunTime[0]
			metadata.Runtime = &runtime
		}
		metadata.VoteAverage = tv.VoteAverage
		metadata.VoteCount = tv.VoteCount
		metadata.SetGenres(tv.Genres)
	default:
		return nil, fmt.Errorf("%w: anime metadata cannot be stored", scraper.ErrUnsupportedMediaType)
	}

	return metadata, nil
}

// scrapeType maps a library kind to the provider media type it can
// match. Comics and books have no covering provider.
func scrapeType(kind domain.MediaKind) (scraper.MediaType, bool) {
	switch kind {
	case domain.MediaKindMovie:
		return scraper.MediaTypeMovie, true
	case domain.MediaKindTV:
		return scraper.MediaTypeTV, true
	}
	return "", false
}

// translateScrapeError maps pipeline errors to the application error
// taxonomy for the HTTP boundary.
func translateScrapeError(err error) error {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return err
	}

	switch {
	case scraper.IsNotFound(err) || stderrors.Is(err, scraper.ErrNoMatchingResults):
		return errors.NotFound(err.Error())
	case stderrors.Is(err, scraper.ErrUnsupportedMediaType):
		return errors.BadRequest(err.Error())
	case scraper.IsConfig(err):
		return errors.BadRequest(err.Error())
	default:
		return errors.Unavailable("metadata provider request failed: " + err.Error())
	}
}

func numericID(id string) *int {
	if id == "" {
		return nil
	}
	n, err := strconv.Atoi(id)
	if err != nil {
		return nil
	}
	return &n
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
