package repository

import (
	"context"
	"fmt"
	"time"

	"gameplex/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var userDataConflict = clause.OnConflict{
	Columns: []clause.Column{{Name: "user_id"}, {Name: "game_id"}, {Name: "machine_id"}},
}

type UserDataRepository interface {
	Get(ctx context.Context, userID string, gameID int64, machineID string) (*models.UserGameData, error)
	UpsertStatus(ctx context.Context, userID string, gameID int64, machineID, status string) error
	UpsertSettings(ctx context.Context, userID string, gameID int64, machineID string, execPath, launchArgs *string) error
	UpsertFavorite(ctx context.Context, userID string, gameID int64, machineID string, favorite bool) error
	AddPlaytime(ctx context.Context, userID string, gameID int64, machineID string, durationMs int64) error
}

type userDataRepository struct {
	db *gorm.DB
}

func NewUserDataRepository(db *gorm.DB) UserDataRepository {
	return &userDataRepository{db: db}
}

func (r *userDataRepository) Get(ctx context.Context, userID string, gameID int64, machineID string) (*models.UserGameData, error) {
	var data models.UserGameData
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND game_id = ? AND machine_id = ?", userID, gameID, machineID).
		First(&data).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil // no record yet
		}
		return nil, fmt.Errorf("get user game data: %w", err)
	}
	return &data, nil
}

func (r *userDataRepository) UpsertStatus(ctx context.Context, userID string, gameID int64, machineID, status string) error {
	conflict := userDataConflict
	conflict.DoUpdates = clause.AssignmentColumns([]string{"status"})

	data := models.UserGameData{UserID: userID, GameID: gameID, MachineID: machineID, Status: status}
	if err := r.db.WithContext(ctx).Clauses(conflict).Create(&data).Error; err != nil {
		return fmt.Errorf("upsert status: %w", err)
	}
	return nil
}

func (r *userDataRepository) UpsertSettings(ctx context.Context, userID string, gameID int64, machineID string, execPath, launchArgs *string) error {
	conflict := userDataConflict
	conflict.DoUpdates = clause.AssignmentColumns([]string{"custom_executable_path", "custom_launch_args"})

	data := models.UserGameData{
		UserID:               userID,
		GameID:               gameID,
		MachineID:            machineID,
		CustomExecutablePath: execPath,
		CustomLaunchArgs:     launchArgs,
	}
	if err := r.db.WithContext(ctx).Clauses(conflict).Create(&data).Error; err != nil {
		return fmt.Errorf("upsert settings: %w", err)
	}
	return nil
}

func (r *userDataRepository) UpsertFavorite(ctx context.Context, userID string, gameID int64, machineID string, favorite bool) error {
	conflict := userDataConflict
	conflict.DoUpdates = clause.AssignmentColumns([]string{"is_favorite"})

	data := models.UserGameData{UserID: userID, GameID: gameID, MachineID: machineID, IsFavorite: favorite}
	if err := r.db.WithContext(ctx).Clauses(conflict).Create(&data).Error; err != nil {
		return fmt.Errorf("upsert favorite: %w", err)
	}
	return nil
}

// AddPlaytime accumulates playtime and stamps last_played. On conflict the
// duration is added to the existing total, not overwritten.
func (r *userDataRepository) AddPlaytime(ctx context.Context, userID string, gameID int64, machineID string, durationMs int64) error {
	now := time.Now()
	conflict := userDataConflict
	conflict.DoUpdates = clause.Assignments(map[string]interface{}{
		"total_playtime": gorm.Expr("total_playtime + ?", durationMs),
		"last_played":    now,
	})

	data := models.UserGameData{
		UserID:        userID,
		GameID:        gameID,
		MachineID:     machineID,
		TotalPlaytime: durationMs,
		LastPlayed:    &now,
	}
	if err := r.db.WithContext(ctx).Clauses(conflict).Create(&data).Error; err != nil {
		return fmt.Errorf("add playtime: %w", err)
	}
	return nil
}
