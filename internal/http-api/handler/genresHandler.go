package handler

import (
	"context"
	"net/http"
	"time"

	"gameplex/internal/http-api/repository"

	"github.com/gin-gonic/gin"
)

type GenreHandler struct {
	repo *repository.GenreRepo
}

func NewGenreHandler(repo *repository.GenreRepo) *GenreHandler {
	return &GenreHandler{repo: repo}
}

func (h *GenreHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/genres", h.List)
}

// List returns all genre names sorted alphabetically.
func (h *GenreHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	genres, err := h.repo.GetAll(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	c.JSON(http.StatusOK, names)
}
