package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"gameplex/internal/http-api/dto"
	"gameplex/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

type CollectionHandler struct {
	svc service.CollectionService
}

func NewCollectionHandler(svc service.CollectionService) *CollectionHandler {
	return &CollectionHandler{svc: svc}
}

func (h *CollectionHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/collections", h.List)
	api.POST("/collections", h.Create)
	api.DELETE("/collections/:id", h.Delete)
	api.POST("/collections/:id/games", h.AddGame)
	api.DELETE("/collections/:id/games/:gameId", h.RemoveGame)

	api.GET("/games/:id/collections", h.ForGame)
}

func parseCollectionID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid collection id"})
		return 0, false
	}
	return id, true
}

func (h *CollectionHandler) collectionError(c *gin.Context, err error) {
	switch err {
	case service.ErrCollectionName:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case service.ErrCollectionNotFound, service.ErrGameNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case service.ErrDuplicateCollection, service.ErrAlreadyInCollection:
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func (h *CollectionHandler) List(c *gin.Context) {
	userID := userOrDefault(c.Query("userId"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	collections, err := h.svc.List(ctx, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]dto.CollectionResponse, 0, len(collections))
	for _, col := range collections {
		items = append(items, dto.CollectionResponse{ID: col.ID, Name: col.Name})
	}
	c.JSON(http.StatusOK, items)
}

func (h *CollectionHandler) Create(c *gin.Context) {
	var req dto.CreateCollectionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	col, err := h.svc.Create(ctx, userOrDefault(req.UserID), req.Name)
	if err != nil {
		h.collectionError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CollectionResponse{ID: col.ID, Name: col.Name})
}

func (h *CollectionHandler) Delete(c *gin.Context) {
	id, ok := parseCollectionID(c)
	if !ok {
		return
	}
	userID := userOrDefault(c.Query("userId"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.Delete(ctx, id, userID); err != nil {
		h.collectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CollectionHandler) AddGame(c *gin.Context) {
	id, ok := parseCollectionID(c)
	if !ok {
		return
	}

	var req dto.CollectionActionDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.AddGame(ctx, id, userOrDefault(req.UserID), req.GameID); err != nil {
		h.collectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *CollectionHandler) RemoveGame(c *gin.Context) {
	id, ok := parseCollectionID(c)
	if !ok {
		return
	}
	gameID, err := strconv.ParseInt(c.Param("gameId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}
	userID := userOrDefault(c.Query("userId"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.RemoveGame(ctx, id, userID, gameID); err != nil {
		h.collectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ForGame lists all of the user's collections flagged with whether the game
// is a member, for the "add to collection" picker.
func (h *CollectionHandler) ForGame(c *gin.Context) {
	gameID, ok := parseGameID(c)
	if !ok {
		return
	}
	userID := userOrDefault(c.Query("userId"))

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	memberships, err := h.svc.MembershipsForGame(ctx, gameID, userID)
	if err != nil {
		h.collectionError(c, err)
		return
	}
	c.JSON(http.StatusOK, memberships)
}
