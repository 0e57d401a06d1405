package models

// Collection is a user-scoped named set of games. The membership join has no
// user scoping of its own; collections themselves are unique per (user, name).
type Collection struct {
	ID     int64  `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID string `json:"user_id" gorm:"not null;uniqueIndex:idx_user_collection"`
	Name   string `json:"name" gorm:"not null;uniqueIndex:idx_user_collection"`

	Games []Game `json:"games,omitempty" gorm:"many2many:game_collections;constraint:OnDelete:CASCADE;"`
}

func (Collection) TableName() string {
	return "collections"
}
