package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"gameplex/internal/http-api/models"
	"gameplex/internal/http-api/repository"
	"gameplex/internal/http-api/service"
	"gameplex/internal/saves"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newSaveTestRouter(t *testing.T) (*gin.Engine, *models.Game) {
	t.Helper()
	gin.SetMode(gin.TestMode)

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

	game := &models.Game{Title: "Doom", FolderName: "doom"}
	require.NoError(t, db.Create(game).Error)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := saves.NewStore(t.TempDir(), 2, logger)
	svc := service.NewSaveService(store, repository.NewGameRepo(db))

	router := gin.New()
	api := router.Group("/api")
	NewSaveHandler(svc).RegisterRoutes(api)
	return router, game
}

func uploadSave(t *testing.T, router *gin.Engine, url string, payload []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("userId", "user_1"))
	part, err := writer.CreateFormFile("fileData", "save.zip")
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func gameSavesURL(g *models.Game) string {
	return "/api/games/" + strconv.FormatInt(g.ID, 10) + "/saves"
}

func TestUploadCreatesVersion(t *testing.T) {
	router, game := newSaveTestRouter(t)

	w := uploadSave(t, router, gameSavesURL(game), []byte("zip bytes"))
	require.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Save    struct {
			Version  int    `json:"version"`
			Filename string `json:"filename"`
		} `json:"save"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Save.Version)
	assert.Equal(t, "save_v1.zip", resp.Save.Filename)
}

func TestUploadMissingFileField(t *testing.T) {
	router, game := newSaveTestRouter(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	require.NoError(t, writer.WriteField("userId", "user_1"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, gameSavesURL(game), &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListAndRotation(t *testing.T) {
	router, game := newSaveTestRouter(t)

	// Store limit is 2; three uploads roll the first version out.
	for _, payload := range []string{"a", "b", "c"} {
		w := uploadSave(t, router, gameSavesURL(game), []byte(payload))
		require.Equal(t, http.StatusCreated, w.Code)
	}

	req := httptest.NewRequest(http.MethodGet, gameSavesURL(game)+"?userId=user_1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Saves []struct {
			Version int `json:"version"`
		} `json:"saves"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Saves, 2)
	assert.Equal(t, 3, resp.Saves[0].Version)
	assert.Equal(t, 2, resp.Saves[1].Version)
}

func TestDownloadRoundTrip(t *testing.T) {
	router, game := newSaveTestRouter(t)

	payload := []byte("zip bytes")
	w := uploadSave(t, router, gameSavesURL(game), payload)
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, gameSavesURL(game)+"/1?userId=user_1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, payload, w.Body.Bytes())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "save_v1.zip")
}

func TestDownloadNeverIssuedVersion(t *testing.T) {
	router, game := newSaveTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, gameSavesURL(game)+"/7?userId=user_1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadUnknownGame(t *testing.T) {
	router, _ := newSaveTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/games/9999/saves/1?userId=user_1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteSaveVersion(t *testing.T) {
	router, game := newSaveTestRouter(t)

	w := uploadSave(t, router, gameSavesURL(game), []byte("x"))
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodDelete, gameSavesURL(game)+"/1?userId=user_1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodDelete, gameSavesURL(game)+"/1?userId=user_1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInfoPathReportsLegacySave(t *testing.T) {
	router, game := newSaveTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, gameSavesURL(game)+"/info?userId=user_1", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var info struct {
		Exists bool `json:"exists"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.False(t, info.Exists)
}

func TestSavesIsolatedPerUser(t *testing.T) {
	router, game := newSaveTestRouter(t)

	w := uploadSave(t, router, gameSavesURL(game), []byte("mine"))
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, gameSavesURL(game)+"/1?userId=user_2", nil)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusNotFound, w2.Code)
}
