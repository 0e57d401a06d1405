package models

// InstallFile records a filename found under a game's install subfolder at
// ingestion time. It is not kept in sync with the disk afterwards.
type InstallFile struct {
	ID       int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	GameID   int64  `json:"game_id" gorm:"not null;uniqueIndex:idx_game_install_file"`
	Filename string `json:"filename" gorm:"not null;uniqueIndex:idx_game_install_file"`
}

func (InstallFile) TableName() string {
	return "install_files"
}
