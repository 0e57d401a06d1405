package service

import (
	"context"
	"errors"
	"os"

	"gameplex/internal/http-api/repository"
	"gameplex/internal/saves"

	"gorm.io/gorm"
)

var (
	ErrSaveNotFound = errors.New("save version not found")
	ErrEmptyPayload = errors.New("save payload is empty")
)

// SaveInfo describes the legacy non-versioned save file.
type SaveInfo struct {
	Exists       bool   `json:"exists"`
	LastModified *int64 `json:"lastModified,omitempty"` // unix milliseconds
}

// SaveService is thin orchestration over the manifest store and raw file
// transfer: it resolves a catalog game id to its folder name and delegates.
type SaveService interface {
	Upload(ctx context.Context, userID string, gameID int64, payload []byte) (saves.Entry, error)
	List(ctx context.Context, userID string, gameID int64) ([]saves.Entry, error)
	Download(ctx context.Context, userID string, gameID int64, version int) (string, saves.Entry, error)
	Delete(ctx context.Context, userID string, gameID int64, version int) error
	Info(ctx context.Context, userID string, gameID int64) (SaveInfo, error)
}

type saveService struct {
	store    *saves.Store
	gameRepo *repository.GameRepo
}

func NewSaveService(store *saves.Store, gameRepo *repository.GameRepo) SaveService {
	return &saveService{store: store, gameRepo: gameRepo}
}

func (s *saveService) folderFor(ctx context.Context, gameID int64) (string, error) {
	g, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrGameNotFound
		}
		return "", err
	}
	return g.FolderName, nil
}

func (s *saveService) Upload(ctx context.Context, userID string, gameID int64, payload []byte) (saves.Entry, error) {
	if len(payload) == 0 {
		return saves.Entry{}, ErrEmptyPayload
	}
	folder, err := s.folderFor(ctx, gameID)
	if err != nil {
		return saves.Entry{}, err
	}
	return s.store.AddEntry(userID, folder, payload)
}

func (s *saveService) List(ctx context.Context, userID string, gameID int64) ([]saves.Entry, error) {
	folder, err := s.folderFor(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return s.store.ListEntries(userID, folder)
}

// Download resolves a version to its on-disk path. A version that was never
// issued, or whose backing file is missing, reports not found rather than
// serving an empty payload.
func (s *saveService) Download(ctx context.Context, userID string, gameID int64, version int) (string, saves.Entry, error) {
	folder, err := s.folderFor(ctx, gameID)
	if err != nil {
		return "", saves.Entry{}, err
	}

	entry, err := s.store.GetEntry(userID, folder, version)
	if err != nil {
		if errors.Is(err, saves.ErrEntryNotFound) {
			return "", saves.Entry{}, ErrSaveNotFound
		}
		return "", saves.Entry{}, err
	}

	path := s.store.EntryPath(userID, folder, entry)
	if _, err := os.Stat(path); err != nil {
		return "", saves.Entry{}, ErrSaveNotFound
	}
	return path, entry, nil
}

func (s *saveService) Delete(ctx context.Context, userID string, gameID int64, version int) error {
	folder, err := s.folderFor(ctx, gameID)
	if err != nil {
		return err
	}
	if err := s.store.RemoveEntry(userID, folder, version); err != nil {
		if errors.Is(err, saves.ErrEntryNotFound) {
			return ErrSaveNotFound
		}
		return err
	}
	return nil
}

func (s *saveService) Info(ctx context.Context, userID string, gameID int64) (SaveInfo, error) {
	folder, err := s.folderFor(ctx, gameID)
	if err != nil {
		return SaveInfo{}, err
	}

	exists, modTime, err := s.store.LegacyInfo(userID, folder)
	if err != nil {
		return SaveInfo{}, err
	}
	info := SaveInfo{Exists: exists}
	if exists {
		ms := modTime.UnixMilli()
		info.LastModified = &ms
	}
	return info, nil
}
