package dto

// CreateCollectionDTO used for POST /api/collections
type CreateCollectionDTO struct {
	UserID string `json:"userId"`
	Name   string `json:"name" binding:"required"`
}

// CollectionActionDTO carries the user scope for collection mutations.
type CollectionActionDTO struct {
	UserID string `json:"userId"`
	GameID int64  `json:"gameId"`
}

// CollectionResponse is one collection row.
type CollectionResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
