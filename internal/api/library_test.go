package api

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ayiahmedia/ayiah/internal/library/domain"
	"github.com/ayiahmedia/ayiah/pkg/errors"
)

func newLibraryRouter(library *mockLibraryService, ingest *mockIngestService) http.Handler {
	handler := NewLibraryHandler(library, ingest, testLogger())
	return newTestRouter(handler.RegisterRoutes)
}

func movieView(id uint, title string) *domain.MediaItemWithMetadata {
	return &domain.MediaItemWithMetadata{
		MediaItem: domain.MediaItem{ID: id, MediaKind: domain.MediaKindMovie, Title: title},
	}
}

func TestLibraryListMovies(t *testing.T) {
	library := new(mockLibraryService)
	library.On("ListItemsByKind", mock.Anything, domain.MediaKindMovie, 0, 0).
		Return([]*domain.MediaItemWithMetadata{movieView(1, "Arrival (2016)")}, nil)
	router := newLibraryRouter(library, new(mockIngestService))

	recorder := perform(t, router, http.MethodGet, "/library/movies", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	_, _, data := decodeEnvelope(t, recorder)

	var resp LibraryResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, 1, resp.Total)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Arrival (2016)", resp.Items[0].Title)
}

func TestLibraryListTVForwardsPagination(t *testing.T) {
	library := new(mockLibraryService)
	library.On("ListItemsByKind", mock.Anything, domain.MediaKindTV, 25, 50).
		Return([]*domain.MediaItemWithMetadata{}, nil)
	router := newLibraryRouter(library, new(mockIngestService))

	recorder := perform(t, router, http.MethodGet, "/library/tv?limit=25&offset=50", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	library.AssertExpectations(t)
}

func TestLibraryGetItem(t *testing.T) {
	library := new(mockLibraryService)
	library.On("GetItem", mock.Anything, uint(9)).Return(movieView(9, "Arrival (2016)"), nil)
	router := newLibraryRouter(library, new(mockIngestService))

	recorder := perform(t, router, http.MethodGet, "/library/items/9", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestLibraryGetItemNotFound(t *testing.T) {
	library := new(mockLibraryService)
	library.On("GetItem", mock.Anything, uint(9)).Return(nil, errors.NotFound("entity not found"))
	router := newLibraryRouter(library, new(mockIngestService))

	recorder := perform(t, router, http.MethodGet, "/library/items/9", nil)

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestLibraryRefreshItem(t *testing.T) {
	ingest := new(mockIngestService)
	ingest.On("RefreshMetadata", mock.Anything, uint(9)).Return(movieView(9, "Arrival (2016)"), nil)
	router := newLibraryRouter(new(mockLibraryService), ingest)

	recorder := perform(t, router, http.MethodGet, "/library/items/9/refresh", nil)

	assert.Equal(t, http.StatusOK, recorder.Code)
	ingest.AssertExpectations(t)
}

func TestLibraryRefreshItemUnavailable(t *testing.T) {
	ingest := new(mockIngestService)
	ingest.On("RefreshMetadata", mock.Anything, uint(9)).
		Return(nil, errors.Unavailable("metadata provider request failed"))
	router := newLibraryRouter(new(mockLibraryService), ingest)

	recorder := perform(t, router, http.MethodGet, "/library/items/9/refresh", nil)

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
}
