package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"gameplex/internal/http-api/dto"
	"gameplex/internal/http-api/repository"
	"gameplex/internal/http-api/service"

	"github.com/gin-gonic/gin"
)

const defaultUserID = "user_1"

// userOrDefault falls back to the fixed single-user id the launcher used
// before multi-user support. The user string is trusted as given.
func userOrDefault(userID string) string {
	if userID == "" {
		return defaultUserID
	}
	return userID
}

type GameHandler struct {
	svc     service.GameService
	userSvc service.UserDataService
}

func NewGameHandler(svc service.GameService, userSvc service.UserDataService) *GameHandler {
	return &GameHandler{svc: svc, userSvc: userSvc}
}

func (h *GameHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.GET("/games", h.List)
	api.GET("/recently_played", h.RecentlyPlayed)
	api.GET("/newly_added", h.NewlyAdded)
	api.GET("/top_rated", h.TopRated)
	api.GET("/worst_rated", h.WorstRated)
	api.GET("/most_downloaded", h.MostDownloaded)

	api.POST("/games/:id/status", h.UpdateStatus)
	api.POST("/games/:id/settings", h.UpdateSettings)
	api.POST("/games/:id/playtime", h.UpdatePlaytime)
	api.POST("/games/:id/favorite", h.UpdateFavorite)

	api.GET("/editor/games", h.EditorList)
	api.POST("/editor/games", h.EditorCreate)
	api.GET("/editor/games/:id", h.EditorDetails)
	api.POST("/editor/games/:id", h.EditorUpdate)
	api.DELETE("/editor/games/:id", h.EditorDelete)
	api.POST("/editor/games/:id/poster", h.UploadPoster)
	api.POST("/editor/games/:id/upload/:category", h.UploadFiles)
}

func parseGameID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return 0, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			return parsed
		}
	}
	return fallback
}

// List games with pagination and the enumerated filter set
func (h *GameHandler) List(c *gin.Context) {
	filter := repository.GameFilter{
		UserID:        userOrDefault(c.Query("userId")),
		MachineID:     c.Query("machineId"),
		InstalledOnly: c.Query("status") == "installed",
		FavoritesOnly: c.Query("favorites") == "true",
		Genre:         c.Query("genre"),
		Collection:    c.Query("collection"),
		Search:        c.Query("search"),
		Sort:          repository.GameSort(c.DefaultQuery("sort", string(repository.SortTitleAsc))),
		Page:          queryInt(c, "page", 1),
		Limit:         queryInt(c, "limit", 50),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	games, total, err := h.svc.ListPaginated(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]dto.GameResponse, 0, len(games))
	for _, g := range games {
		items = append(items, dto.FromGameToResponse(g, filter.UserID))
	}

	totalPages := (total + int64(filter.Limit) - 1) / int64(filter.Limit)
	c.JSON(http.StatusOK, dto.GameListResponse{
		Games: items,
		Pagination: dto.Pagination{
			Page:       filter.Page,
			Limit:      filter.Limit,
			TotalGames: total,
			TotalPages: totalPages,
		},
	})
}

type shelfQuery func(ctx context.Context, userID, machineID string, limit int) ([]service.GameWithUserData, error)

func (h *GameHandler) shelf(c *gin.Context, defaultLimit int, query shelfQuery) {
	userID := userOrDefault(c.Query("userId"))
	machineID := c.Query("machineId")
	limit := queryInt(c, "limit", defaultLimit)

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	games, err := query(ctx, userID, machineID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]dto.GameResponse, 0, len(games))
	for _, g := range games {
		items = append(items, dto.FromGameToResponse(g, userID))
	}
	c.JSON(http.StatusOK, items)
}

func (h *GameHandler) RecentlyPlayed(c *gin.Context) { h.shelf(c, 5, h.svc.RecentlyPlayed) }
func (h *GameHandler) NewlyAdded(c *gin.Context)     { h.shelf(c, 10, h.svc.NewlyAdded) }
func (h *GameHandler) TopRated(c *gin.Context)       { h.shelf(c, 10, h.svc.TopRated) }
func (h *GameHandler) WorstRated(c *gin.Context)     { h.shelf(c, 10, h.svc.WorstRated) }
func (h *GameHandler) MostDownloaded(c *gin.Context) { h.shelf(c, 10, h.svc.MostDownloaded) }

func (h *GameHandler) userDataError(c *gin.Context, err error) {
	switch err {
	case service.ErrMissingMachineID, service.ErrMissingStatus:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case service.ErrGameNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Update install status for (user, game, machine)
func (h *GameHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	var req dto.UpdateStatusDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.userSvc.UpdateStatus(ctx, userOrDefault(req.UserID), id, req.MachineID, req.Status); err != nil {
		h.userDataError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) UpdateSettings(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	var req dto.UpdateSettingsDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	err := h.userSvc.UpdateSettings(ctx, userOrDefault(req.UserID), id, req.MachineID,
		req.Settings.ExecutablePath, req.Settings.LaunchArgs)
	if err != nil {
		h.userDataError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) UpdatePlaytime(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	var req dto.UpdatePlaytimeDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.userSvc.RecordPlaytime(ctx, userOrDefault(req.UserID), id, req.MachineID, req.DurationMs); err != nil {
		h.userDataError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *GameHandler) UpdateFavorite(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	var req dto.UpdateFavoriteDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.userSvc.UpdateFavorite(ctx, userOrDefault(req.UserID), id, req.MachineID, req.Favorite); err != nil {
		h.userDataError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Editor endpoints

func (h *GameHandler) EditorList(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	games, err := h.svc.ListEditor(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	items := make([]dto.EditorGameResponse, 0, len(games))
	for _, g := range games {
		items = append(items, dto.EditorGameResponse{ID: g.ID, Title: g.Title, CreatedAt: g.CreatedAt})
	}
	c.JSON(http.StatusOK, items)
}

func (h *GameHandler) EditorCreate(c *gin.Context) {
	var req dto.CreateGameDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	game := req.ToModel()
	if err := h.svc.CreateGame(ctx, &game); err != nil {
		if err == service.ErrTitleRequired {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":     "Game added successfully",
		"new_id":      game.ID,
		"folder_name": game.FolderName,
	})
}

func (h *GameHandler) EditorDetails(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	game, err := h.svc.GetByID(ctx, id)
	if err != nil {
		if err == service.ErrGameNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, game)
}

func (h *GameHandler) EditorUpdate(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	var req dto.UpdateGameDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.UpdateGame(ctx, id, req.ToFields()); err != nil {
		switch err {
		case service.ErrNoFields:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case service.ErrGameNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully updated game details!"})
}

// UploadPoster accepts the raw image body and replaces the game's cover.
func (h *GameHandler) UploadPoster(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	image, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	webPath, err := h.svc.UpdatePoster(ctx, id, image)
	if err != nil {
		switch err {
		case service.ErrEmptyUpload:
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case service.ErrGameNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "new_path": webPath})
}

// UploadFiles stores multipart file parts under the game's category folder.
func (h *GameHandler) UploadFiles(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}
	category := c.Param("category")

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 60*time.Second)
	defer cancel()

	var saved []string
	for _, headers := range form.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}

			if err := h.svc.SaveUpload(ctx, id, category, fh.Filename, data); err != nil {
				switch err {
				case service.ErrBadCategory, service.ErrEmptyUpload:
					c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				case service.ErrGameNotFound:
					c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				default:
					c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				}
				return
			}
			saved = append(saved, filepath.Base(fh.Filename))
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": fmt.Sprintf("%d file(s) uploaded to %s.", len(saved), category),
		"files":   saved,
	})
}

func (h *GameHandler) EditorDelete(c *gin.Context) {
	id, ok := parseGameID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.svc.DeleteGame(ctx, id); err != nil {
		if err == service.ErrGameNotFound {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Game and its files have been deleted."})
}
