package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"gameplex/internal/http-api/dto"
	"gameplex/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type SaveHandler struct {
	svc service.SaveService
}

func NewSaveHandler(svc service.SaveService) *SaveHandler {
	return &SaveHandler{svc: svc}
}

func (h *SaveHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/games/:id/saves", h.Upload)
	api.GET("/games/:id/saves", h.List)
	// "info" shares the :version slot so the legacy probe and the versioned
	// download can live under the same path prefix.
	api.GET("/games/:id/saves/:version", h.Download)
	api.DELETE("/games/:id/saves/:version", h.Delete)
}

func (h *SaveHandler) saveError(c *gin.Context, err error) {
	switch err {
	case service.ErrEmptyPayload:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case service.ErrGameNotFound, service.ErrSaveNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Upload accepts a multipart form with the save archive under "fileData" and
// an optional "userId" field, and records it as the next version.
func (h *SaveHandler) Upload(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}
	userID := userOrDefault(c.PostForm("userId"))

	fileHeader, err := c.FormFile("fileData")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing fileData form field"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	payload, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	entry, err := h.svc.Upload(ctx, userID, gameID, payload)
	if err != nil {
		h.saveError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"save":    dto.FromSaveEntry(entry),
	})
}

func (h *SaveHandler) List(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}
	userID := userOrDefault(c.Query("userId"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entries, err := h.svc.List(ctx, userID, gameID)
	if err != nil {
		h.saveError(c, err)
		return
	}

	items := make([]dto.SaveEntryResponse, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.FromSaveEntry(e))
	}
	c.JSON(http.StatusOK, gin.H{"saves": items})
}

func (h *SaveHandler) Download(c *gin.Context) {
	if c.Param("version") == "info" {
		h.Info(c)
		return
	}

	gameID, ok := parseGameID(c)
	if !ok {
		return
	}
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid save version"})
		return
	}
	userID := userOrDefault(c.Query("userId"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	path, entry, err := h.svc.Download(ctx, userID, gameID, version)
	if err != nil {
		h.saveError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+entry.Filename+`"`)
	c.Header("Content-Type", "application/zip")
	c.File(path)
}

func (h *SaveHandler) Delete(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}
	version, err := strconv.Atoi(c.Param("version"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid save version"})
		return
	}
	userID := userOrDefault(c.Query("userId"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, userID, gameID, version); err != nil {
		h.saveError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Info reports whether the legacy single-file save exists and when it was
// last written.
func (h *SaveHandler) Info(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}
	userID := userOrDefault(c.Query("userId"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	info, err := h.svc.Info(ctx, userID, gameID)
	if err != nil {
		h.saveError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
