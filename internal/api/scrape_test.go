package api

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ayiahmedia/ayiah/internal/config"
	"github.com/ayiahmedia/ayiah/internal/library/service"
	"github.com/ayiahmedia/ayiah/internal/scraper"
	"github.com/ayiahmedia/ayiah/pkg/errors"
)

func newScrapeRouter(t *testing.T, ingest *mockIngestService) (http.Handler, *config.Manager) {
	t.Helper()

	manager, err := config.NewManager(filepath.Join(t.TempDir(), "ayiah.toml"))
	require.NoError(t, err)

	handler := NewScrapeHandler(manager, ingest, testLogger())
	return newTestRouter(handler.RegisterRoutes), manager
}

func TestScrapeGetConfig(t *testing.T) {
	router, _ := newScrapeRouter(t, new(mockIngestService))

	recorder := perform(t, router, http.MethodGet, "/scrape/config", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	_, _, data := decodeEnvelope(t, recorder)

	var cfg config.ScrapeConfig
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Equal(t, "tmdb", cfg.DefaultProvider)
	assert.Equal(t, "hard_link", cfg.DefaultOrganizeMethod)
}

func TestScrapeUpdateConfigPersists(t *testing.T) {
	router, manager := newScrapeRouter(t, new(mockIngestService))

	recorder := perform(t, router, http.MethodPost, "/scrape/config", config.ScrapeConfig{
		DefaultProvider:       "tvdb",
		FallbackProviders:     []string{"tmdb"},
		DefaultOrganizeMethod: "copy",
	})

	assert.Equal(t, http.StatusOK, recorder.Code)

	// The running config and the file both carry the update.
	assert.Equal(t, "tvdb", manager.Get().Scrape.DefaultProvider)
	require.NoError(t, manager.Reload())
	assert.Equal(t, "copy", manager.Get().Scrape.DefaultOrganizeMethod)
	assert.Equal(t, []string{"tmdb"}, manager.Get().Scrape.FallbackProviders)
}

func TestScrapeUpdateConfigRejectsUnknownMethod(t *testing.T) {
	router, manager := newScrapeRouter(t, new(mockIngestService))

	recorder := perform(t, router, http.MethodPost, "/scrape/config", config.ScrapeConfig{
		DefaultOrganizeMethod: "teleport",
	})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, "hard_link", manager.Get().Scrape.DefaultOrganizeMethod)
}

func TestScrapeManualMatch(t *testing.T) {
	ingest := new(mockIngestService)
	ingest.On("ManualMatch", mock.Anything, service.ManualMatchRequest{
		MediaItemID: 9,
		MediaType:   scraper.MediaTypeMovie,
		MediaID:     "329865",
		Provider:    "tmdb",
	}).Return(movieView(9, "Arrival (2016)"), nil)
	router, _ := newScrapeRouter(t, ingest)

	recorder := perform(t, router, http.MethodPost, "/scrape/manual-match", service.ManualMatchRequest{
		MediaItemID: 9,
		MediaType:   scraper.MediaTypeMovie,
		MediaID:     "329865",
		Provider:    "tmdb",
	})

	assert.Equal(t, http.StatusOK, recorder.Code)
	ingest.AssertExpectations(t)
}

func TestScrapeManualMatchValidationError(t *testing.T) {
	ingest := new(mockIngestService)
	ingest.On("ManualMatch", mock.Anything, mock.Anything).
		Return(nil, errors.BadRequest("media id and provider are required"))
	router, _ := newScrapeRouter(t, ingest)

	recorder := perform(t, router, http.MethodPost, "/scrape/manual-match", service.ManualMatchRequest{MediaItemID: 9})

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	_, message, _ := decodeEnvelope(t, recorder)
	assert.Equal(t, "media id and provider are required", message)
}
