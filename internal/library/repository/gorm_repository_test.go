package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/ayiahmedia/ayiah/internal/library/domain"
	pkgerrors "github.com/ayiahmedia/ayiah/pkg/errors"
	"github.com/ayiahmedia/ayiah/test/testutil"
)

type GormRepositoryTestSuite struct {
	suite.Suite
	db   *gorm.DB
	repo *GormRepository
	ctx  context.Context
}

func (s *GormRepositoryTestSuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = NewGormRepository(s.db)
	s.ctx = context.Background()
}

func TestGormRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(GormRepositoryTestSuite))
}

func (s *GormRepositoryTestSuite) TestFolderLifecycle() {
	// Arrange
	folder := testutil.CreateTestFolder("/media/movies", domain.MediaKindMovie)

	// Act
	err := s.repo.CreateFolder(s.ctx, folder)

	// Assert
	s.NoError(err)
	s.NotZero(folder.ID)

	loaded, err := s.repo.GetFolder(s.ctx, folder.ID)
	s.NoError(err)
	s.Equal("/media/movies", loaded.Path)
	s.Equal(domain.MediaKindMovie, loaded.MediaKind)
	s.True(loaded.Enabled)

	loaded.Enabled = false
	s.NoError(s.repo.UpdateFolder(s.ctx, loaded))

	reloaded, err := s.repo.GetFolderByPath(s.ctx, "/media/movies")
	s.NoError(err)
	s.False(reloaded.Enabled)

	s.NoError(s.repo.DeleteFolder(s.ctx, folder.ID))
	_, err = s.repo.GetFolder(s.ctx, folder.ID)
	s.True(pkgerrors.IsNotFound(err))
}

func (s *GormRepositoryTestSuite) TestCreateFolderDuplicatePath() {
	folder := testutil.CreateTestFolder("/media/movies", domain.MediaKindMovie)
	s.NoError(s.repo.CreateFolder(s.ctx, folder))

	dup := testutil.CreateTestFolder("/media/movies", domain.MediaKindTV)
	err := s.repo.CreateFolder(s.ctx, dup)

	s.True(pkgerrors.IsConflict(err))
}

func (s *GormRepositoryTestSuite) TestListFoldersFiltersByEnabled() {
	active := testutil.CreateTestFolder("/media/a", domain.MediaKindMovie)
	s.NoError(s.repo.CreateFolder(s.ctx, active))

	disabled := testutil.CreateTestFolder("/media/b", domain.MediaKindTV)
	disabled.Enabled = false
	s.NoError(s.repo.CreateFolder(s.ctx, disabled))

	all, err := s.repo.ListFolders(s.ctx, nil)
	s.NoError(err)
	s.Len(all, 2)

	enabled := true
	onlyEnabled, err := s.repo.ListFolders(s.ctx, &enabled)
	s.NoError(err)
	s.Require().Len(onlyEnabled, 1)
	s.Equal("/media/a", onlyEnabled[0].Path)
}

func (s *GormRepositoryTestSuite) TestItemLifecycle() {
	folder := testutil.CreateTestFolder("/media/movies", domain.MediaKindMovie)
	s.NoError(s.repo.CreateFolder(s.ctx, folder))

	item := testutil.CreateTestItem(folder, "Arrival (2016)", "/media/movies/Arrival (2016).mkv")
	s.NoError(s.repo.CreateItem(s.ctx, item))
	s.NotZero(item.ID)

	byPath, err := s.repo.GetItemByPath(s.ctx, item.FilePath)
	s.NoError(err)
	s.Equal(item.ID, byPath.ID)

	count, err := s.repo.CountItemsByFolder(s.ctx, folder.ID)
	s.NoError(err)
	s.EqualValues(1, count)

	items, err := s.repo.ListItemsByKind(s.ctx, domain.MediaKindMovie, 0, 0)
	s.NoError(err)
	s.Len(items, 1)

	s.NoError(s.repo.DeleteItem(s.ctx, item.ID))
	_, err = s.repo.GetItem(s.ctx, item.ID)
	s.True(pkgerrors.IsNotFound(err))
}

func (s *GormRepositoryTestSuite) TestListItemsWithoutMetadata() {
	folder := testutil.CreateTestFolder("/media/movies", domain.MediaKindMovie)
	s.NoError(s.repo.CreateFolder(s.ctx, folder))

	matched := testutil.CreateTestItem(folder, "Arrival (2016)", "/media/movies/a.mkv")
	s.NoError(s.repo.CreateItem(s.ctx, matched))
	s.NoError(s.repo.UpsertMetadata(s.ctx, testutil.CreateTestMetadata(matched.ID, 329865)))

	pending := testutil.CreateTestItem(folder, "Dune (2021)", "/media/movies/b.mkv")
	s.NoError(s.repo.CreateItem(s.ctx, pending))

	items, err := s.repo.ListItemsWithoutMetadata(s.ctx, folder.ID)

	s.NoError(err)
	s.Require().Len(items, 1)
	s.Equal(pending.ID, items[0].ID)
}

func (s *GormRepositoryTestSuite) TestUpsertMetadataReplacesExistingRow() {
	folder := testutil.CreateTestFolder("/media/movies", domain.MediaKindMovie)
	s.NoError(s.repo.CreateFolder(s.ctx, folder))
	item := testutil.CreateTestItem(folder, "Arrival (2016)", "/media/movies/a.mkv")
	s.NoError(s.repo.CreateItem(s.ctx, item))

	first := testutil.CreateTestMetadata(item.ID, 111)
	s.NoError(s.repo.UpsertMetadata(s.ctx, first))

	stored, err := s.repo.GetMetadataByItem(s.ctx, item.ID)
	s.NoError(err)
	firstUpdated := stored.UpdatedAt

	time.Sleep(10 * time.Millisecond)

	second := testutil.CreateTestMetadata(item.ID, 222)
	second.Overview = "replaced"
	s.NoError(s.repo.UpsertMetadata(s.ctx, second))

	stored, err = s.repo.GetMetadataByItem(s.ctx, item.ID)
	s.NoError(err)
	s.Require().NotNil(stored.TmdbID)
	s.Equal(222, *stored.TmdbID)
	s.Equal("replaced", stored.Overview)
	s.Equal([]string{"Drama", "Science Fiction"}, stored.GenresList())

	// One row per item, and the upsert refreshes the timestamp.
	var rows int64
	s.NoError(s.db.Model(&domain.VideoMetadata{}).Where("media_item_id = ?", item.ID).Count(&rows).Error)
	s.EqualValues(1, rows)
	s.False(stored.UpdatedAt.Before(firstUpdated))
}

func (s *GormRepositoryTestSuite) TestDeleteFolderCascades() {
	folder := testutil.CreateTestFolder("/media/movies", domain.MediaKindMovie)
	s.NoError(s.repo.CreateFolder(s.ctx, folder))
	item := testutil.CreateTestItem(folder, "Arrival (2016)", "/media/movies/a.mkv")
	s.NoError(s.repo.CreateItem(s.ctx, item))
	s.NoError(s.repo.UpsertMetadata(s.ctx, testutil.CreateTestMetadata(item.ID, 329865)))

	s.NoError(s.repo.DeleteFolder(s.ctx, folder.ID))

	var items, metadata int64
	s.NoError(s.db.Model(&domain.MediaItem{}).Count(&items).Error)
	s.NoError(s.db.Model(&domain.VideoMetadata{}).Count(&metadata).Error)
	s.Zero(items)
	s.Zero(metadata)
}

func (s *GormRepositoryTestSuite) TestGetMetadataByItemMissing() {
	_, err := s.repo.GetMetadataByItem(s.ctx, 12345)
	s.True(pkgerrors.IsNotFound(err))
}
