package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ayiahmedia/ayiah/internal/api"
	"github.com/ayiahmedia/ayiah/internal/config"
	"github.com/ayiahmedia/ayiah/internal/library/domain"
	"github.com/ayiahmedia/ayiah/internal/library/repository"
	"github.com/ayiahmedia/ayiah/internal/library/service"
	"github.com/ayiahmedia/ayiah/internal/scraper"
	"github.com/ayiahmedia/ayiah/internal/scraper/provider"
	"github.com/ayiahmedia/ayiah/pkg/database"
	"github.com/ayiahmedia/ayiah/pkg/events"
	"github.com/ayiahmedia/ayiah/pkg/interfaces"
	"github.com/ayiahmedia/ayiah/pkg/logger"
	"github.com/ayiahmedia/ayiah/pkg/utils"
)

const shutdownTimeout = 30 * time.Second

func main() {
	// Load .env before anything reads the environment
	_ = godotenv.Load()

	// Load configuration
	cfgManager, err := config.NewManager(os.Getenv("AYIAH_CONFIG_PATH"))
	if err != nil {
		panic(err)
	}
	cfg := cfgManager.Get()

	// Initialize logger
	log, err := logger.NewWithOptions(cfg.Logging.Level, cfg.Logging.FilePath)
	if err != nil {
		panic(err)
	}

	log.Info("Ayiah starting",
		interfaces.String("config", cfgManager.Path()),
		interfaces.String("data_dir", config.DataDir()))

	// Connect to database
	dbConfig := database.DefaultConfig(cfg.Database.Path)
	dbConfig.Driver = cfg.Database.Driver
	dbConfig.Host = cfg.Database.Host
	dbConfig.Port = cfg.Database.Port
	dbConfig.User = cfg.Database.User
	dbConfig.Password = cfg.Database.Password
	dbConfig.Name = cfg.Database.Name

	if dbConfig.Driver != database.DriverPostgres {
		if err := os.MkdirAll(config.DataDir(), 0o755); err != nil {
			log.Fatal("Failed to create data directory", interfaces.Error(err))
		}
	}

	db, err := database.Open(dbConfig)
	if err != nil {
		log.Fatal("Failed to connect to database", interfaces.Error(err))
	}

	// Run migrations
	if err := database.Migrate(db,
		&domain.LibraryFolder{},
		&domain.MediaItem{},
		&domain.VideoMetadata{},
	); err != nil {
		log.Fatal("Failed to run migrations", interfaces.Error(err))
	}

	// Initialize shared components
	repo := repository.NewGormRepository(db)
	entityCache := utils.NewInMemoryCache()
	responseStore := utils.NewInMemoryCacheWithCapacity(cfg.Scraper.CacheCapacity)
	eventBus := events.NewInMemoryEventBus(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := eventBus.Start(ctx); err != nil {
		log.Fatal("Failed to start event bus", interfaces.Error(err))
	}

	// Audit trail: log every domain event published on the bus
	if err := events.SubscribeLogging(eventBus, log,
		domain.EventTypeFolderCreated,
		domain.EventTypeFolderDeleted,
		domain.EventTypeMediaAdded,
		domain.EventTypeScanCompleted,
		domain.EventTypeMetadataUpdated,
	); err != nil {
		log.Fatal("Failed to subscribe event handlers", interfaces.Error(err))
	}

	// Metadata provider registry: shared limiter and response cache,
	// providers registered in the configured preference order
	limiter := scraper.NewLimiter(scraper.RateLimitConfig{
		MaxConcurrent: cfg.Scraper.MaxConcurrent,
		MaxRequests:   cfg.Scraper.MaxRequests,
		WindowSeconds: cfg.Scraper.WindowSeconds,
	})
	responseCache := scraper.NewResponseCache(responseStore,
		time.Duration(cfg.Scraper.CacheTTLSeconds)*time.Second)

	scraperManager := scraper.NewManager(log)
	registerProviders(scraperManager, &cfg, limiter, responseCache, log)

	// Initialize services
	scanner := domain.NewScanner(log, cfg.Ingest.MaxConcurrentTasks)
	libraryService := service.NewLibraryService(repo, eventBus, entityCache, log, scanner)

	var organizer *domain.Organizer
	if cfg.Organizer.TargetDir != "" {
		method, err := domain.ParseOrganizeMethod(cfg.Scrape.DefaultOrganizeMethod)
		if err != nil {
			log.Fatal("Invalid organize method", interfaces.Error(err))
		}
		organizer = domain.NewOrganizer(domain.OrganizerConfig{
			TargetDir:    cfg.Organizer.TargetDir,
			Method:       method,
			RetryCount:   cfg.Organizer.RetryCount,
			DryRun:       cfg.Organizer.DryRun,
			SkipExisting: cfg.Organizer.SkipExisting,
		}, log)
	}

	ingestService := service.NewIngestService(
		ctx,
		repo,
		libraryService,
		scraperManager,
		organizer,
		eventBus,
		log,
		time.Duration(cfg.Ingest.ItemDelayMs)*time.Millisecond,
	)

	// HTTP server
	router := api.NewRouter(api.Deps{
		Library: libraryService,
		Ingest:  ingestService,
		Scraper: scraperManager,
		Config:  cfgManager,
		DB:      db,
		Logger:  log,
	})

	server := &http.Server{
		Addr:              cfgManager.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("HTTP server starting", interfaces.String("address", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", interfaces.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Info("Shutting down...")

	// Stop background ingestion before draining the server
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", interfaces.Error(err))
	}

	eventBus.Stop()
	entityCache.Stop()
	responseStore.Stop()

	sqlDB, _ := db.DB()
	if sqlDB != nil {
		sqlDB.Close()
	}

	log.Info("Ayiah stopped")
}

// registerProviders builds the provider registry in the configured
// preference order. Providers missing a required API key are skipped.
func registerProviders(
	manager *scraper.Manager,
	cfg *config.AppConfig,
	limiter *scraper.Limiter,
	cache *scraper.ResponseCache,
	log interfaces.Logger,
) {
	for _, name := range cfg.Scrape.Providers() {
		switch name {
		case "tmdb":
			if cfg.Scraper.TmdbAPIKey == "" {
				log.Warn("Skipping TMDB provider: no API key configured")
				continue
			}
			manager.Register(provider.NewTMDB(cfg.Scraper.TmdbAPIKey, limiter, cache))
		case "tvdb":
			if cfg.Scraper.TvdbAPIKey == "" {
				log.Warn("Skipping TVDB provider: no API key configured")
				continue
			}
			manager.Register(provider.NewTVDB(cfg.Scraper.TvdbAPIKey, limiter, cache))
		case "anilist":
			manager.Register(provider.NewAniList(limiter, cache))
		case "bangumi":
			manager.Register(provider.NewBangumi(limiter, cache))
		default:
			log.Warn("Unknown metadata provider in configuration",
				interfaces.String("provider", name))
		}
	}
}
