package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"gameplex/internal/http-api/models"
	"gameplex/internal/http-api/repository"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Game{},
		&models.Genre{},
		&models.Screenshot{},
		&models.InstallFile{},
		&models.Collection{},
		&models.UserGameData{},
	))
	return db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGameService(t *testing.T, db *gorm.DB, libraryRoot string) GameService {
	t.Helper()
	gameRepo := repository.NewGameRepo(db)
	userRepo := repository.NewUserDataRepository(db)
	return NewGameService(gameRepo, userRepo, libraryRoot, discardLogger())
}

func TestSlugify(t *testing.T) {
	cases := []struct {
		title string
		want  string
	}{
		{"Doom", "doom"},
		{"Baldur's Gate II", "baldurs-gate-ii"},
		{"  Heroes of Might & Magic III  ", "heroes-of-might-magic-iii"},
		{"SimCity 2000", "simcity-2000"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, slugify(tc.title), "title %q", tc.title)
	}
}

func TestCreateGameBuildsFolderSkeleton(t *testing.T) {
	db := newTestDB(t)
	root := t.TempDir()
	svc := newTestGameService(t, db, root)

	g := models.Game{Title: "Baldur's Gate"}
	require.NoError(t, svc.CreateGame(context.Background(), &g))

	assert.Equal(t, "baldurs-gate", g.FolderName)
	for _, sub := range []string{"artwork", "bonus", "dlc", "install", "patches", "updates"} {
		info, err := os.Stat(filepath.Join(root, "baldurs-gate", sub))
		require.NoError(t, err, "missing subdir %s", sub)
		assert.True(t, info.IsDir())
	}
}

func TestCreateGameRequiresTitle(t *testing.T) {
	db := newTestDB(t)
	svc := newTestGameService(t, db, t.TempDir())

	g := models.Game{Title: "   "}
	assert.ErrorIs(t, svc.CreateGame(context.Background(), &g), ErrTitleRequired)
}

func TestCreateGameDisambiguatesFolderNames(t *testing.T) {
	db := newTestDB(t)
	svc := newTestGameService(t, db, t.TempDir())
	ctx := context.Background()

	first := models.Game{Title: "Doom"}
	require.NoError(t, svc.CreateGame(ctx, &first))
	second := models.Game{Title: "Doom"}
	require.NoError(t, svc.CreateGame(ctx, &second))
	third := models.Game{Title: "Doom"}
	require.NoError(t, svc.CreateGame(ctx, &third))

	assert.Equal(t, "doom", first.FolderName)
	assert.Equal(t, "doom-1", second.FolderName)
	assert.Equal(t, "doom-2", third.FolderName)
}

func TestUpdateGameNoFields(t *testing.T) {
	db := newTestDB(t)
	svc := newTestGameService(t, db, t.TempDir())

	err := svc.UpdateGame(context.Background(), 1, map[string]interface{}{})
	assert.ErrorIs(t, err, ErrNoFields)
}

func TestUpdateGameNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newTestGameService(t, db, t.TempDir())

	err := svc.UpdateGame(context.Background(), 9999, map[string]interface{}{"title": "x"})
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestDeleteGameRemovesRowAndFolder(t *testing.T) {
	db := newTestDB(t)
	root := t.TempDir()
	svc := newTestGameService(t, db, root)
	ctx := context.Background()

	g := models.Game{Title: "Doom"}
	require.NoError(t, svc.CreateGame(ctx, &g))
	gameDir := filepath.Join(root, g.FolderName)
	_, err := os.Stat(gameDir)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGame(ctx, g.ID))

	_, err = svc.GetByID(ctx, g.ID)
	assert.ErrorIs(t, err, ErrGameNotFound)
	_, err = os.Stat(gameDir)
	assert.True(t, os.IsNotExist(err))
}

func TestDeleteGameNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := newTestGameService(t, db, t.TempDir())

	assert.ErrorIs(t, svc.DeleteGame(context.Background(), 9999), ErrGameNotFound)
}

func TestUpdatePosterWritesImageAndArtPath(t *testing.T) {
	db := newTestDB(t)
	root := t.TempDir()
	svc := newTestGameService(t, db, root)
	ctx := context.Background()

	g := models.Game{Title: "Doom"}
	require.NoError(t, svc.CreateGame(ctx, &g))

	webPath, err := svc.UpdatePoster(ctx, g.ID, []byte("jpeg bytes"))
	require.NoError(t, err)
	assert.Equal(t, "/gamelibrary/doom/artwork/poster.jpg", webPath)

	data, err := os.ReadFile(filepath.Join(root, "doom", "artwork", "poster.jpg"))
	require.NoError(t, err)
	assert.Equal(t, []byte("jpeg bytes"), data)

	got, err := svc.GetByID(ctx, g.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ArtPath)
	assert.Equal(t, webPath, *got.ArtPath)
}

func TestUpdatePosterRejectsEmptyBody(t *testing.T) {
	db := newTestDB(t)
	svc := newTestGameService(t, db, t.TempDir())

	_, err := svc.UpdatePoster(context.Background(), 1, nil)
	assert.ErrorIs(t, err, ErrEmptyUpload)
}

func TestUpdatePosterUnknownGame(t *testing.T) {
	db := newTestDB(t)
	svc := newTestGameService(t, db, t.TempDir())

	_, err := svc.UpdatePoster(context.Background(), 9999, []byte("jpeg bytes"))
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestSaveUploadStoresFileAndRecordsInstall(t *testing.T) {
	db := newTestDB(t)
	root := t.TempDir()
	svc := newTestGameService(t, db, root)
	ctx := context.Background()

	g := models.Game{Title: "Doom"}
	require.NoError(t, svc.CreateGame(ctx, &g))

	require.NoError(t, svc.SaveUpload(ctx, g.ID, "install", "setup.exe", []byte("setup")))
	_, err := os.Stat(filepath.Join(root, "doom", "install", "setup.exe"))
	require.NoError(t, err)

	// Re-uploading the same archive does not duplicate the catalog row.
	require.NoError(t, svc.SaveUpload(ctx, g.ID, "install", "setup.exe", []byte("setup v2")))

	var count int64
	require.NoError(t, db.Model(&models.InstallFile{}).Where("game_id = ?", g.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	// Non-install categories leave the install file listing alone.
	require.NoError(t, svc.SaveUpload(ctx, g.ID, "patches", "patch-1.1.zip", []byte("patch")))
	_, err = os.Stat(filepath.Join(root, "doom", "patches", "patch-1.1.zip"))
	require.NoError(t, err)
	require.NoError(t, db.Model(&models.InstallFile{}).Where("game_id = ?", g.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestSaveUploadRejectsBadCategory(t *testing.T) {
	db := newTestDB(t)
	svc := newTestGameService(t, db, t.TempDir())

	err := svc.SaveUpload(context.Background(), 1, "secrets", "x.zip", []byte("x"))
	assert.ErrorIs(t, err, ErrBadCategory)
}

func TestSaveUploadStripsPathTraversal(t *testing.T) {
	db := newTestDB(t)
	root := t.TempDir()
	svc := newTestGameService(t, db, root)
	ctx := context.Background()

	g := models.Game{Title: "Doom"}
	require.NoError(t, svc.CreateGame(ctx, &g))

	require.NoError(t, svc.SaveUpload(ctx, g.ID, "install", "../../evil.exe", []byte("x")))

	// Only the base name lands, inside the install folder.
	_, err := os.Stat(filepath.Join(root, "doom", "install", "evil.exe"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(root, "evil.exe"))
	assert.True(t, os.IsNotExist(err))
}

func TestListPaginatedAttachesUserData(t *testing.T) {
	db := newTestDB(t)
	svc := newTestGameService(t, db, t.TempDir())
	userRepo := repository.NewUserDataRepository(db)
	ctx := context.Background()

	g := models.Game{Title: "Doom"}
	require.NoError(t, svc.CreateGame(ctx, &g))
	require.NoError(t, userRepo.UpsertStatus(ctx, "user_1", g.ID, "m1", "installed"))

	list, total, err := svc.ListPaginated(ctx, repository.GameFilter{
		UserID: "user_1", MachineID: "m1", Sort: repository.SortTitleAsc, Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].UserData)
	assert.Equal(t, "installed", list[0].UserData.Status)

	// A machine with no record gets nil user data, not an error.
	list, _, err = svc.ListPaginated(ctx, repository.GameFilter{
		UserID: "user_1", MachineID: "m2", Sort: repository.SortTitleAsc, Page: 1, Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].UserData)
}
