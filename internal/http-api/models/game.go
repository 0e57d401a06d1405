package models

import "time"

type Game struct {
	ID             int64      `json:"id" gorm:"primaryKey;autoIncrement"`
	RawgID         *int64     `json:"rawg_id,omitempty" gorm:"uniqueIndex"`
	Title          string     `json:"title" gorm:"not null"`
	FolderName     string     `json:"folder_name" gorm:"uniqueIndex;not null;size:200"`
	Developer      *string    `json:"developer,omitempty"`
	ReleaseDate    *string    `json:"release_date,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Rating         *float64   `json:"rating,omitempty" gorm:"type:decimal(4,2)"`
	ArtPath        *string    `json:"art,omitempty"`
	ExecutablePath *string    `json:"executablePath,omitempty"`
	LaunchArgs     *string    `json:"launchArgs,omitempty"`
	CustomSavePath *string    `json:"custom_save_path,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`

	// associations
	Genres       []Genre        `json:"genres,omitempty" gorm:"many2many:game_genres;constraint:OnDelete:CASCADE;"`
	Screenshots  []Screenshot   `json:"screenshots,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
	InstallFiles []InstallFile  `json:"install_files,omitempty" gorm:"constraint:OnDelete:CASCADE;"`
	Collections  []Collection   `json:"collections,omitempty" gorm:"many2many:game_collections;constraint:OnDelete:CASCADE;"`
	UserData     []UserGameData `json:"-" gorm:"constraint:OnDelete:CASCADE;"`
}

func (Game) TableName() string {
	return "games"
}
