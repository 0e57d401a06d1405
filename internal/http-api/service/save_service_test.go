package service

import (
	"context"
	"os"
	"testing"

	"gameplex/internal/http-api/models"
	"gameplex/internal/http-api/repository"
	"gameplex/internal/saves"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestSaveService(t *testing.T, db *gorm.DB, limit int) SaveService {
	t.Helper()
	store := saves.NewStore(t.TempDir(), limit, discardLogger())
	return NewSaveService(store, repository.NewGameRepo(db))
}

func seedCatalogGame(t *testing.T, db *gorm.DB) *models.Game {
	t.Helper()
	g := &models.Game{Title: "Doom", FolderName: "doom"}
	require.NoError(t, db.Create(g).Error)
	return g
}

func TestUploadAndDownloadRoundTrip(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSaveService(t, db, 6)
	g := seedCatalogGame(t, db)
	ctx := context.Background()

	payload := []byte("zip bytes")
	entry, err := svc.Upload(ctx, "user_1", g.ID, payload)
	require.NoError(t, err)
	assert.Equal(t, 1, entry.Version)

	path, got, err := svc.Download(ctx, "user_1", g.ID, entry.Version)
	require.NoError(t, err)
	assert.Equal(t, entry.Version, got.Version)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)
}

func TestUploadRejectsEmptyPayload(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSaveService(t, db, 6)
	g := seedCatalogGame(t, db)

	_, err := svc.Upload(context.Background(), "user_1", g.ID, nil)
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestUploadUnknownGame(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSaveService(t, db, 6)

	_, err := svc.Upload(context.Background(), "user_1", 9999, []byte("x"))
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestDownloadNeverIssuedVersion(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSaveService(t, db, 6)
	g := seedCatalogGame(t, db)

	_, _, err := svc.Download(context.Background(), "user_1", g.ID, 7)
	assert.ErrorIs(t, err, ErrSaveNotFound)
}

func TestDownloadMissingBackingFile(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSaveService(t, db, 6)
	g := seedCatalogGame(t, db)
	ctx := context.Background()

	entry, err := svc.Upload(ctx, "user_1", g.ID, []byte("x"))
	require.NoError(t, err)

	path, _, err := svc.Download(ctx, "user_1", g.ID, entry.Version)
	require.NoError(t, err)
	require.NoError(t, os.Remove(path))

	_, _, err = svc.Download(ctx, "user_1", g.ID, entry.Version)
	assert.ErrorIs(t, err, ErrSaveNotFound)
}

func TestDeleteSave(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSaveService(t, db, 6)
	g := seedCatalogGame(t, db)
	ctx := context.Background()

	entry, err := svc.Upload(ctx, "user_1", g.ID, []byte("x"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "user_1", g.ID, entry.Version))
	assert.ErrorIs(t, svc.Delete(ctx, "user_1", g.ID, entry.Version), ErrSaveNotFound)
}

func TestListIsolatedPerUser(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSaveService(t, db, 6)
	g := seedCatalogGame(t, db)
	ctx := context.Background()

	_, err := svc.Upload(ctx, "user_1", g.ID, []byte("a"))
	require.NoError(t, err)

	mine, err := svc.List(ctx, "user_1", g.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := svc.List(ctx, "user_2", g.ID)
	require.NoError(t, err)
	assert.Empty(t, theirs)
}

func TestRotationKeepsNewestVersions(t *testing.T) {
	db := newTestDB(t)
	svc := newTestSaveService(t, db, 2)
	g := seedCatalogGame(t, db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Upload(ctx, "user_1", g.ID, []byte{byte('a' + i)})
		require.NoError(t, err)
	}

	entries, err := svc.List(ctx, "user_1", g.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, 3, entries[0].Version)
	assert.Equal(t, 2, entries[1].Version)

	_, _, err = svc.Download(ctx, "user_1", g.ID, 1)
	assert.ErrorIs(t, err, ErrSaveNotFound)
}

func TestInfoReportsLegacySave(t *testing.T) {
	db := newTestDB(t)
	g := seedCatalogGame(t, db)
	root := t.TempDir()
	store := saves.NewStore(root, 6, discardLogger())
	svc := NewSaveService(store, repository.NewGameRepo(db))
	ctx := context.Background()

	info, err := svc.Info(ctx, "user_1", g.ID)
	require.NoError(t, err)
	assert.False(t, info.Exists)
	assert.Nil(t, info.LastModified)

	dir := root + "/user_1/doom"
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(dir+"/save.zip", []byte("legacy"), 0o644))

	info, err = svc.Info(ctx, "user_1", g.ID)
	require.NoError(t, err)
	assert.True(t, info.Exists)
	require.NotNil(t, info.LastModified)
	assert.Positive(t, *info.LastModified)
}
