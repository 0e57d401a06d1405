package models

import "time"

// UserGameData carries per-(user, game, machine) state: install status,
// playtime, favorite flag and per-machine launch overrides. Upserted on every
// status/settings/playtime/favorite event.
type UserGameData struct {
	UserID               string     `json:"user_id" gorm:"primaryKey;index:idx_user_game"`
	GameID               int64      `json:"game_id" gorm:"primaryKey;index:idx_user_game"`
	MachineID            string     `json:"machine_id" gorm:"primaryKey"`
	Status               string     `json:"status" gorm:"default:not_installed"`
	TotalPlaytime        int64      `json:"total_playtime" gorm:"default:0"`
	IsFavorite           bool       `json:"is_favorite" gorm:"default:false"`
	LastPlayed           *time.Time `json:"last_played,omitempty"`
	CustomExecutablePath *string    `json:"custom_executable_path,omitempty"`
	CustomLaunchArgs     *string    `json:"custom_launch_args,omitempty"`
}

func (UserGameData) TableName() string {
	return "user_game_data"
}
