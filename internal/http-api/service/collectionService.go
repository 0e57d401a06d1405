package service

import (
	"context"
	"errors"

	"gameplex/internal/http-api/models"
	"gameplex/internal/http-api/repository"

	"gorm.io/gorm"
)

var (
	ErrCollectionNotFound  = errors.New("collection not found")
	ErrCollectionName      = errors.New("collection name is required")
	ErrDuplicateCollection = errors.New("a collection with this name already exists")
	ErrAlreadyInCollection = errors.New("game already in this collection")
)

// CollectionMembership is one of the user's collections plus whether a given
// game belongs to it.
type CollectionMembership struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsMember bool   `json:"is_member"`
}

type CollectionService interface {
	List(ctx context.Context, userID string) ([]models.Collection, error)
	Create(ctx context.Context, userID, name string) (*models.Collection, error)
	Delete(ctx context.Context, id int64, userID string) error
	AddGame(ctx context.Context, collectionID int64, userID string, gameID int64) error
	RemoveGame(ctx context.Context, collectionID int64, userID string, gameID int64) error
	MembershipsForGame(ctx context.Context, gameID int64, userID string) ([]CollectionMembership, error)
}

type collectionService struct {
	repo     repository.CollectionRepository
	gameRepo *repository.GameRepo
}

func NewCollectionService(repo repository.CollectionRepository, gameRepo *repository.GameRepo) CollectionService {
	return &collectionService{repo: repo, gameRepo: gameRepo}
}

func (s *collectionService) List(ctx context.Context, userID string) ([]models.Collection, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *collectionService) Create(ctx context.Context, userID, name string) (*models.Collection, error) {
	if name == "" {
		return nil, ErrCollectionName
	}

	exists, err := s.repo.NameExists(ctx, userID, name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateCollection
	}

	c := &models.Collection{UserID: userID, Name: name}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *collectionService) Delete(ctx context.Context, id int64, userID string) error {
	if err := s.repo.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCollectionNotFound
		}
		return err
	}
	return nil
}

func (s *collectionService) AddGame(ctx context.Context, collectionID int64, userID string, gameID int64) error {
	if _, err := s.repo.GetForUser(ctx, collectionID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCollectionNotFound
		}
		return err
	}
	if _, err := s.gameRepo.GetByID(ctx, gameID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGameNotFound
		}
		return err
	}

	member, err := s.repo.HasGame(ctx, collectionID, gameID)
	if err != nil {
		return err
	}
	if member {
		return ErrAlreadyInCollection
	}

	return s.repo.AddGame(ctx, collectionID, gameID)
}

func (s *collectionService) RemoveGame(ctx context.Context, collectionID int64, userID string, gameID int64) error {
	if _, err := s.repo.GetForUser(ctx, collectionID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCollectionNotFound
		}
		return err
	}
	return s.repo.RemoveGame(ctx, collectionID, gameID)
}

func (s *collectionService) MembershipsForGame(ctx context.Context, gameID int64, userID string) ([]CollectionMembership, error) {
	collections, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	members, err := s.repo.MemberCollectionIDs(ctx, gameID)
	if err != nil {
		return nil, err
	}

	result := make([]CollectionMembership, 0, len(collections))
	for _, c := range collections {
		result = append(result, CollectionMembership{
			ID:       c.ID,
			Name:     c.Name,
			IsMember: members[c.ID],
		})
	}
	return result, nil
}
