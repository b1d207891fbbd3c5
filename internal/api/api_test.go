package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ayiahmedia/ayiah/internal/library/domain"
	"github.com/ayiahmedia/ayiah/internal/library/service"
	"github.com/ayiahmedia/ayiah/pkg/interfaces"
	"github.com/ayiahmedia/ayiah/pkg/logger"
)

// mockLibraryService mocks service.LibraryServiceInterface.
type mockLibraryService struct {
	mock.Mock
}

func (m *mockLibraryService) CreateFolder(ctx context.Context, folder *domain.LibraryFolder) error {
	args := m.Called(ctx, folder)
	return args.Error(0)
}

func (m *mockLibraryService) GetFolder(ctx context.Context, id uint) (*domain.LibraryFolder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LibraryFolder), args.Error(1)
}

func (m *mockLibraryService) ListFolders(ctx context.Context, enabled *bool) ([]*domain.LibraryFolder, error) {
	args := m.Called(ctx, enabled)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LibraryFolder), args.Error(1)
}

func (m *mockLibraryService) UpdateFolder(ctx context.Context, id uint, updates map[string]interface{}) (*domain.LibraryFolder, error) {
	args := m.Called(ctx, id, updates)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LibraryFolder), args.Error(1)
}

func (m *mockLibraryService) DeleteFolder(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockLibraryService) ScanFolder(ctx context.Context, id uint) (*domain.ScanResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScanResult), args.Error(1)
}

func (m *mockLibraryService) ScanAllFolders(ctx context.Context) ([]domain.FolderScanResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FolderScanResult), args.Error(1)
}

func (m *mockLibraryService) GetItem(ctx context.Context, id uint) (*domain.MediaItemWithMetadata, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaItemWithMetadata), args.Error(1)
}

func (m *mockLibraryService) ListItemsByKind(ctx context.Context, kind domain.MediaKind, limit, offset int) ([]*domain.MediaItemWithMetadata, error) {
	args := m.Called(ctx, kind, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.MediaItemWithMetadata), args.Error(1)
}

// mockIngestService mocks service.IngestServiceInterface.
type mockIngestService struct {
	mock.Mock
}

func (m *mockIngestService) ScanAndIngest(ctx context.Context, folderID uint) (*domain.ScanResult, error) {
	args := m.Called(ctx, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScanResult), args.Error(1)
}

func (m *mockIngestService) ScanAndIngestAll(ctx context.Context) ([]domain.FolderScanResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FolderScanResult), args.Error(1)
}

func (m *mockIngestService) IngestFolder(ctx context.Context, folderID uint) (*service.Progress, error) {
	args := m.Called(ctx, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Progress), args.Error(1)
}

func (m *mockIngestService) IngestAll(ctx context.Context) ([]service.FolderIngestResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.FolderIngestResult), args.Error(1)
}

func (m *mockIngestService) RefreshMetadata(ctx context.Context, itemID uint) (*domain.MediaItemWithMetadata, error) {
	args := m.Called(ctx, itemID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaItemWithMetadata), args.Error(1)
}

func (m *mockIngestService) ManualMatch(ctx context.Context, req service.ManualMatchRequest) (*domain.MediaItemWithMetadata, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MediaItemWithMetadata), args.Error(1)
}

// Interface assertions
var _ service.LibraryServiceInterface = (*mockLibraryService)(nil)
var _ service.IngestServiceInterface = (*mockIngestService)(nil)

// newTestRouter mounts one handler's routes on a fresh router.
func newTestRouter(register func(chi.Router)) *chi.Mux {
	r := chi.NewRouter()
	register(r)
	return r
}

// perform runs one request through the router and returns the recorder.
func perform(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

// decodeEnvelope parses the response envelope, leaving Data raw.
func decodeEnvelope(t *testing.T, recorder *httptest.ResponseRecorder) (int, string, json.RawMessage) {
	t.Helper()

	var envelope struct {
		Code    int             `json:"code"`
		Message string          `json:"message"`
		Data    json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &envelope))
	return envelope.Code, envelope.Message, envelope.Data
}

func testLogger() interfaces.Logger {
	return logger.NewNoopLogger()
}
