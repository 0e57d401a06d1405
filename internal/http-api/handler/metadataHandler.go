package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"gameplex/internal/ingestion/rawg"

	"github.com/gin-gonic/gin"
)

// searchPageSize caps how many hits the interactive metadata picker shows.
const searchPageSize = 10

// MetadataClient is the slice of the RAWG client the proxy endpoints need.
type MetadataClient interface {
	SearchList(ctx context.Context, term string, limit int) ([]rawg.SearchResult, error)
	Details(ctx context.Context, id int64) (*rawg.GameDetails, error)
}

// MetadataHandler proxies title searches and record lookups to the metadata
// service so the editor UI never holds the API key.
type MetadataHandler struct {
	client MetadataClient
}

func NewMetadataHandler(client MetadataClient) *MetadataHandler {
	return &MetadataHandler{client: client}
}

func (h *MetadataHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/search/rawg", h.Search)
	api.GET("/lookup/rawg/:id", h.Lookup)
}

func (h *MetadataHandler) Search(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing search query."})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	results, err := h.client.SearchList(ctx, query, searchPageSize)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	if results == nil {
		results = []rawg.SearchResult{}
	}
	c.JSON(http.StatusOK, results)
}

func (h *MetadataHandler) Lookup(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	details, err := h.client.Details(ctx, id)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, details)
}
