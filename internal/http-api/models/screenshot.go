package models

type Screenshot struct {
	ID     int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	GameID int64  `json:"game_id" gorm:"index;not null"`
	Path   string `json:"path" gorm:"not null"`
}

func (Screenshot) TableName() string {
	return "screenshots"
}
