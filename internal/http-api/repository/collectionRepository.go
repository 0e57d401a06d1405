package repository

import (
	"context"
	"fmt"

	"gameplex/internal/http-api/models"

	"gorm.io/gorm"
)

type CollectionRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Collection, error)
	GetForUser(ctx context.Context, id int64, userID string) (*models.Collection, error)
	NameExists(ctx context.Context, userID, name string) (bool, error)
	Create(ctx context.Context, c *models.Collection) error
	Delete(ctx context.Context, id int64, userID string) error
	AddGame(ctx context.Context, collectionID, gameID int64) error
	RemoveGame(ctx context.Context, collectionID, gameID int64) error
	HasGame(ctx context.Context, collectionID, gameID int64) (bool, error)
	MemberCollectionIDs(ctx context.Context, gameID int64) (map[int64]bool, error)
}

type collectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

func (r *collectionRepository) ListByUser(ctx context.Context, userID string) ([]models.Collection, error) {
	var list []models.Collection
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name asc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return list, nil
}

func (r *collectionRepository) GetForUser(ctx context.Context, id int64, userID string) (*models.Collection, error) {
	var c models.Collection
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *collectionRepository) NameExists(ctx context.Context, userID, name string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Collection{}).
		Where("user_id = ? AND name = ?", userID, name).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *collectionRepository) Create(ctx context.Context, c *models.Collection) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	return nil
}

func (r *collectionRepository) Delete(ctx context.Context, id int64, userID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c models.Collection
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&c).Error; err != nil {
			return err
		}
		if err := tx.Model(&c).Association("Games").Clear(); err != nil {
			return fmt.Errorf("clear collection games: %w", err)
		}
		if err := tx.Delete(&c).Error; err != nil {
			return fmt.Errorf("delete collection: %w", err)
		}
		return nil
	})
}

func (r *collectionRepository) AddGame(ctx context.Context, collectionID, gameID int64) error {
	c := models.Collection{ID: collectionID}
	if err := r.db.WithContext(ctx).Model(&c).
		Association("Games").Append(&models.Game{ID: gameID}); err != nil {
		return fmt.Errorf("add game to collection: %w", err)
	}
	return nil
}

func (r *collectionRepository) RemoveGame(ctx context.Context, collectionID, gameID int64) error {
	c := models.Collection{ID: collectionID}
	if err := r.db.WithContext(ctx).Model(&c).
		Association("Games").Delete(&models.Game{ID: gameID}); err != nil {
		return fmt.Errorf("remove game from collection: %w", err)
	}
	return nil
}

func (r *collectionRepository) HasGame(ctx context.Context, collectionID, gameID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Table("game_collections").
		Where("collection_id = ? AND game_id = ?", collectionID, gameID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// MemberCollectionIDs returns the set of collection ids a game belongs to.
func (r *collectionRepository) MemberCollectionIDs(ctx context.Context, gameID int64) (map[int64]bool, error) {
	var ids []int64
	if err := r.db.WithContext(ctx).
		Table("game_collections").
		Where("game_id = ?", gameID).
		Pluck("collection_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("member collections: %w", err)
	}
	members := make(map[int64]bool, len(ids))
	for _, id := range ids {
		members[id] = true
	}
	return members, nil
}
