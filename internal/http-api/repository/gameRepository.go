package repository

import (
	"context"
	"fmt"

	"gameplex/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameSort enumerates the sort keys the listing endpoint accepts. Anything
// else falls back to SortTitleAsc; order-by clauses are never built from raw
// request strings.
type GameSort string

const (
	SortTitleAsc        GameSort = "title_asc"
	SortTitleDesc       GameSort = "title_desc"
	SortRatingDesc      GameSort = "rating_desc"
	SortReleaseDateDesc GameSort = "release_date_desc"
)

var sortClauses = map[GameSort]string{
	SortTitleAsc:        "games.title ASC",
	SortTitleDesc:       "games.title DESC",
	SortRatingDesc:      "games.rating DESC",
	SortReleaseDateDesc: "games.release_date DESC",
}

// GameFilter is the typed predicate set for paginated listing.
type GameFilter struct {
	UserID        string
	MachineID     string
	InstalledOnly bool
	FavoritesOnly bool
	Genre         string
	Collection    string
	Search        string
	Sort          GameSort
	Page          int
	Limit         int
}

type GameRepo struct {
	db *gorm.DB
}

func NewGameRepo(db *gorm.DB) *GameRepo {
	return &GameRepo{db: db}
}

func (r *GameRepo) GetByID(ctx context.Context, id int64) (*models.Game, error) {
	var g models.Game
	if err := r.db.WithContext(ctx).
		Preload("Genres").
		Preload("Screenshots").
		Preload("InstallFiles").
		Preload("Collections").
		First(&g, id).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GameRepo) FolderNameExists(ctx context.Context, folderName string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Game{}).
		Where("folder_name = ?", folderName).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GameRepo) Create(ctx context.Context, g *models.Game) error {
	if err := r.db.WithContext(ctx).Create(g).Error; err != nil {
		return fmt.Errorf("create game: %w", err)
	}
	return nil
}

// UpdateFields applies a partial update of editor-editable columns.
func (r *GameRepo) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	result := r.db.WithContext(ctx).Model(&models.Game{}).
		Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update game: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a game row; genre associations, screenshots, install files,
// collection memberships and user data go with it via cascading deletes.
func (r *GameRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var g models.Game
		if err := tx.First(&g, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&g).Association("Genres").Clear(); err != nil {
			return fmt.Errorf("clear genre associations: %w", err)
		}
		if err := tx.Model(&g).Association("Collections").Clear(); err != nil {
			return fmt.Errorf("clear collection memberships: %w", err)
		}
		if err := tx.Where("game_id = ?", id).Delete(&models.Screenshot{}).Error; err != nil {
			return fmt.Errorf("delete screenshots: %w", err)
		}
		if err := tx.Where("game_id = ?", id).Delete(&models.InstallFile{}).Error; err != nil {
			return fmt.Errorf("delete install files: %w", err)
		}
		if err := tx.Where("game_id = ?", id).Delete(&models.UserGameData{}).Error; err != nil {
			return fmt.Errorf("delete user game data: %w", err)
		}
		if err := tx.Delete(&models.Game{}, id).Error; err != nil {
			return fmt.Errorf("delete game: %w", err)
		}
		return nil
	})
}

// AddInstallFile records an uploaded install archive, ignoring a filename the
// game already lists.
func (r *GameRepo) AddInstallFile(ctx context.Context, gameID int64, filename string) error {
	file := models.InstallFile{GameID: gameID, Filename: filename}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&file).Error; err != nil {
		return fmt.Errorf("add install file: %w", err)
	}
	return nil
}

// ListEditor returns the lean list used by the editor index view.
func (r *GameRepo) ListEditor(ctx context.Context) ([]models.Game, error) {
	var list []models.Game
	if err := r.db.WithContext(ctx).
		Select("id", "title", "created_at").
		Order("title asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list editor games: %w", err)
	}
	return list, nil
}

// ListPaginated composes the enumerated filter predicates into one
// parameterized query and returns the matching page plus the total count.
func (r *GameRepo) ListPaginated(ctx context.Context, f GameFilter) ([]models.Game, int64, error) {
	base := r.db.WithContext(ctx).Model(&models.Game{})

	if f.InstalledOnly || f.FavoritesOnly {
		base = base.Joins(
			"JOIN user_game_data ugd ON ugd.game_id = games.id AND ugd.user_id = ? AND ugd.machine_id = ?",
			f.UserID, f.MachineID,
		)
		if f.InstalledOnly {
			base = base.Where("ugd.status = ?", "installed")
		}
		if f.FavoritesOnly {
			base = base.Where("ugd.is_favorite = ?", true)
		}
	}
	if f.Search != "" {
		base = base.Where("games.title LIKE ?", "%"+f.Search+"%")
	}
	if f.Genre != "" && f.Genre != "all" {
		base = base.
			Joins("JOIN game_genres gg ON gg.game_id = games.id").
			Joins("JOIN genres ON genres.id = gg.genre_id").
			Where("genres.name = ?", f.Genre)
	}
	if f.Collection != "" {
		base = base.
			Joins("JOIN game_collections gc ON gc.game_id = games.id").
			Joins("JOIN collections c ON c.id = gc.collection_id").
			Where("c.name = ? AND c.user_id = ?", f.Collection, f.UserID)
	}

	var total int64
	if err := base.Distinct("games.id").Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count games: %w", err)
	}

	order, ok := sortClauses[f.Sort]
	if !ok {
		order = sortClauses[SortTitleAsc]
	}

	offset := (f.Page - 1) * f.Limit

	var list []models.Game
	if err := base.
		Distinct("games.*").
		Preload("Genres").
		Preload("Screenshots").
		Preload("InstallFiles").
		Preload("Collections").
		Order(order).
		Limit(f.Limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, fmt.Errorf("list games: %w", err)
	}

	return list, total, nil
}

// RecentlyPlayed returns games the user has played on this machine, most
// recent first.
func (r *GameRepo) RecentlyPlayed(ctx context.Context, userID, machineID string, limit int) ([]models.Game, error) {
	var list []models.Game
	if err := r.db.WithContext(ctx).Model(&models.Game{}).
		Joins(
			"JOIN user_game_data ugd ON ugd.game_id = games.id AND ugd.user_id = ? AND ugd.machine_id = ?",
			userID, machineID,
		).
		Where("ugd.last_played IS NOT NULL").
		Preload("Genres").
		Order("ugd.last_played DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("recently played: %w", err)
	}
	return list, nil
}

// NewlyAdded returns the most recently catalogued games.
func (r *GameRepo) NewlyAdded(ctx context.Context, limit int) ([]models.Game, error) {
	var list []models.Game
	if err := r.db.WithContext(ctx).
		Preload("Genres").
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("newly added: %w", err)
	}
	return list, nil
}

// TopRated returns rated games best first; WorstRated returns rated (>0)
// games worst first.
func (r *GameRepo) TopRated(ctx context.Context, limit int) ([]models.Game, error) {
	var list []models.Game
	if err := r.db.WithContext(ctx).
		Where("rating IS NOT NULL").
		Preload("Genres").
		Order("rating DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("top rated: %w", err)
	}
	return list, nil
}

// MostDownloaded orders games by how many machines have them installed for
// this user.
func (r *GameRepo) MostDownloaded(ctx context.Context, userID string, limit int) ([]models.Game, error) {
	var list []models.Game
	if err := r.db.WithContext(ctx).Model(&models.Game{}).
		Select("games.*, (?) AS install_count",
			r.db.Model(&models.UserGameData{}).
				Select("COUNT(*)").
				Where("user_game_data.game_id = games.id AND user_game_data.status = ? AND user_game_data.user_id = ?",
					"installed", userID),
		).
		Preload("Genres").
		Order("install_count DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("most downloaded: %w", err)
	}
	return list, nil
}

func (r *GameRepo) WorstRated(ctx context.Context, limit int) ([]models.Game, error) {
	var list []models.Game
	if err := r.db.WithContext(ctx).
		Where("rating IS NOT NULL AND rating > 0").
		Preload("Genres").
		Order("rating ASC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("worst rated: %w", err)
	}
	return list, nil
}
