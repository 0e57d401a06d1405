package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gameplex/internal/http-api/models"
	"gameplex/internal/http-api/repository"

	"gorm.io/gorm"
)

var (
	ErrGameNotFound  = errors.New("game not found")
	ErrTitleRequired = errors.New("title is a required field")
	ErrNoFields      = errors.New("no valid fields to update")
	ErrBadCategory   = errors.New("invalid upload category")
	ErrEmptyUpload   = errors.New("upload body is empty")
)

// subdirs created for every game folder added through the editor; also the
// categories manual uploads may target
var gameSubdirs = []string{"artwork", "bonus", "dlc", "install", "patches", "updates"}

var (
	slugStrip    = regexp.MustCompile(`[^\w\s-]`)
	slugCollapse = regexp.MustCompile(`[-\s]+`)
)

// GameWithUserData pairs a catalog row with the requesting user's
// machine-scoped state, which may be nil.
type GameWithUserData struct {
	Game     models.Game
	UserData *models.UserGameData
}

type GameService interface {
	ListPaginated(ctx context.Context, f repository.GameFilter) ([]GameWithUserData, int64, error)
	GetByID(ctx context.Context, id int64) (*models.Game, error)
	RecentlyPlayed(ctx context.Context, userID, machineID string, limit int) ([]GameWithUserData, error)
	NewlyAdded(ctx context.Context, userID, machineID string, limit int) ([]GameWithUserData, error)
	TopRated(ctx context.Context, userID, machineID string, limit int) ([]GameWithUserData, error)
	WorstRated(ctx context.Context, userID, machineID string, limit int) ([]GameWithUserData, error)
	MostDownloaded(ctx context.Context, userID, machineID string, limit int) ([]GameWithUserData, error)
	ListEditor(ctx context.Context) ([]models.Game, error)
	CreateGame(ctx context.Context, g *models.Game) error
	UpdateGame(ctx context.Context, id int64, fields map[string]interface{}) error
	DeleteGame(ctx context.Context, id int64) error
	UpdatePoster(ctx context.Context, id int64, image []byte) (string, error)
	SaveUpload(ctx context.Context, id int64, category, filename string, data []byte) error
}

type gameService struct {
	repo        *repository.GameRepo
	userRepo    repository.UserDataRepository
	libraryRoot string
	logger      *slog.Logger
}

func NewGameService(repo *repository.GameRepo, userRepo repository.UserDataRepository, libraryRoot string, logger *slog.Logger) GameService {
	return &gameService{
		repo:        repo,
		userRepo:    userRepo,
		libraryRoot: libraryRoot,
		logger:      logger,
	}
}

func (s *gameService) attachUserData(ctx context.Context, games []models.Game, userID, machineID string) ([]GameWithUserData, error) {
	out := make([]GameWithUserData, 0, len(games))
	for _, g := range games {
		data, err := s.userRepo.Get(ctx, userID, g.ID, machineID)
		if err != nil {
			return nil, err
		}
		out = append(out, GameWithUserData{Game: g, UserData: data})
	}
	return out, nil
}

func (s *gameService) ListPaginated(ctx context.Context, f repository.GameFilter) ([]GameWithUserData, int64, error) {
	games, total, err := s.repo.ListPaginated(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	list, err := s.attachUserData(ctx, games, f.UserID, f.MachineID)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

func (s *gameService) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return g, nil
}

func (s *gameService) RecentlyPlayed(ctx context.Context, userID, machineID string, limit int) ([]GameWithUserData, error) {
	games, err := s.repo.RecentlyPlayed(ctx, userID, machineID, limit)
	if err != nil {
		return nil, err
	}
	return s.attachUserData(ctx, games, userID, machineID)
}

func (s *gameService) NewlyAdded(ctx context.Context, userID, machineID string, limit int) ([]GameWithUserData, error) {
	games, err := s.repo.NewlyAdded(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.attachUserData(ctx, games, userID, machineID)
}

func (s *gameService) TopRated(ctx context.Context, userID, machineID string, limit int) ([]GameWithUserData, error) {
	games, err := s.repo.TopRated(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.attachUserData(ctx, games, userID, machineID)
}

func (s *gameService) WorstRated(ctx context.Context, userID, machineID string, limit int) ([]GameWithUserData, error) {
	games, err := s.repo.WorstRated(ctx, limit)
	if err != nil {
		return nil, err
	}
	return s.attachUserData(ctx, games, userID, machineID)
}

func (s *gameService) MostDownloaded(ctx context.Context, userID, machineID string, limit int) ([]GameWithUserData, error) {
	games, err := s.repo.MostDownloaded(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	return s.attachUserData(ctx, games, userID, machineID)
}

func (s *gameService) ListEditor(ctx context.Context) ([]models.Game, error) {
	return s.repo.ListEditor(ctx)
}

// UpdatePoster replaces the game's cover image with an uploaded one and
// returns its web path.
func (s *gameService) UpdatePoster(ctx context.Context, id int64, image []byte) (string, error) {
	if len(image) == 0 {
		return "", ErrEmptyUpload
	}

	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrGameNotFound
		}
		return "", err
	}

	posterDir := filepath.Join(s.libraryRoot, g.FolderName, "artwork")
	if err := os.MkdirAll(posterDir, 0o755); err != nil {
		return "", fmt.Errorf("create artwork dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(posterDir, "poster.jpg"), image, 0o644); err != nil {
		return "", fmt.Errorf("write poster: %w", err)
	}

	webPath := fmt.Sprintf("/gamelibrary/%s/artwork/poster.jpg", url.PathEscape(g.FolderName))
	if err := s.repo.UpdateFields(ctx, id, map[string]interface{}{"art_path": webPath}); err != nil {
		return "", err
	}
	return webPath, nil
}

// SaveUpload stores a manually uploaded file under the game's category
// subfolder. Install archives are also recorded in the catalog.
func (s *gameService) SaveUpload(ctx context.Context, id int64, category, filename string, data []byte) error {
	valid := false
	for _, sub := range gameSubdirs {
		if sub == category {
			valid = true
			break
		}
	}
	if !valid {
		return ErrBadCategory
	}
	filename = filepath.Base(filename)
	if filename == "" || filename == "." || filename == ".." || filename == string(filepath.Separator) {
		return ErrEmptyUpload
	}

	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGameNotFound
		}
		return err
	}

	targetDir := filepath.Join(s.libraryRoot, g.FolderName, category)
	if err := os.MkdirAll(targetDir, 0o755); err != nil {
		return fmt.Errorf("create %s dir: %w", category, err)
	}
	if err := os.WriteFile(filepath.Join(targetDir, filename), data, 0o644); err != nil {
		return fmt.Errorf("write upload: %w", err)
	}

	if category == "install" {
		if err := s.repo.AddInstallFile(ctx, id, filename); err != nil {
			return err
		}
	}
	return nil
}

// CreateGame adds a manually entered game: derives a unique folder slug from
// the title, creates the on-disk folder skeleton, then inserts the row.
func (s *gameService) CreateGame(ctx context.Context, g *models.Game) error {
	if strings.TrimSpace(g.Title) == "" {
		return ErrTitleRequired
	}

	slug, err := s.uniqueFolderName(ctx, slugify(g.Title))
	if err != nil {
		return err
	}
	g.FolderName = slug

	gameDir := filepath.Join(s.libraryRoot, slug)
	for _, sub := range gameSubdirs {
		if err := os.MkdirAll(filepath.Join(gameDir, sub), 0o755); err != nil {
			return fmt.Errorf("create game dirs: %w", err)
		}
	}

	return s.repo.Create(ctx, g)
}

func (s *gameService) uniqueFolderName(ctx context.Context, base string) (string, error) {
	name := base
	for counter := 1; ; counter++ {
		exists, err := s.repo.FolderNameExists(ctx, name)
		if err != nil {
			return "", err
		}
		if !exists {
			return name, nil
		}
		name = fmt.Sprintf("%s-%d", base, counter)
	}
}

func (s *gameService) UpdateGame(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return ErrNoFields
	}
	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGameNotFound
		}
		return err
	}
	return nil
}

// DeleteGame removes the catalog row (cascading to genres associations,
// screenshots, install files, collection memberships, user data) and the
// game's on-disk folder.
func (s *gameService) DeleteGame(ctx context.Context, id int64) error {
	g, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGameNotFound
		}
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	gameDir := filepath.Join(s.libraryRoot, g.FolderName)
	if err := os.RemoveAll(gameDir); err != nil {
		// The catalog row is already gone; a leftover folder is logged,
		// not surfaced.
		s.logger.Warn("failed to remove game folder", "dir", gameDir, "error", err)
	}

	s.logger.Info("game deleted", "id", id, "folder", g.FolderName)
	return nil
}

// slugify turns a title into a filesystem-safe folder name.
func slugify(title string) string {
	slug := slugStrip.ReplaceAllString(title, "")
	slug = strings.ToLower(strings.TrimSpace(slug))
	return slugCollapse.ReplaceAllString(slug, "-")
}
