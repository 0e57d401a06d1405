package handler

import (
	"context"
	"errors"
	"net/http"

	"gameplex/internal/ingestion/scanner"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LibraryScanner walks the game library root and ingests unknown folders. It
// can also re-resolve a single catalogued game under a corrected title.
type LibraryScanner interface {
	Scan(ctx context.Context) (scanner.Report, error)
	Rescan(ctx context.Context, gameID int64, newTitle string) error
}

type LibraryHandler struct {
	scanner LibraryScanner
}

func NewLibraryHandler(s LibraryScanner) *LibraryHandler {
	return &LibraryHandler{scanner: s}
}

func (h *LibraryHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/library/scan", h.Scan)
	api.POST("/editor/games/:id/rescan", h.Rescan)
}

// Scan runs synchronously; metadata lookups can take a while on a large
// library, so no per-request timeout is applied beyond the client's own.
func (h *LibraryHandler) Scan(c *gin.Context) {
	report, err := h.scanner.Scan(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Library scan complete",
		"report":  report,
	})
}

// Rescan refreshes one game's metadata under a corrected search title.
func (h *LibraryHandler) Rescan(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	var body struct {
		NewTitle string `json:"newTitle"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.NewTitle == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "newTitle is required"})
		return
	}

	if err := h.scanner.Rescan(c.Request.Context(), id, body.NewTitle); err != nil {
		switch {
		case errors.Is(err, scanner.ErrNoMetadataMatch):
			c.JSON(http.StatusNotFound, gin.H{"error": "no metadata match for that title"})
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "game not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Rescan complete"})
}
