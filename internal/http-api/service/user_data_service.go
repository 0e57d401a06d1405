package service

import (
	"context"
	"errors"

	"gameplex/internal/http-api/repository"
)

var (
	ErrMissingMachineID = errors.New("machineId is required")
	ErrMissingStatus    = errors.New("status is required")
)

// UserDataService upserts machine-scoped per-user game state. A blank
// machine id is rejected rather than merged into some default record.
type UserDataService interface {
	UpdateStatus(ctx context.Context, userID string, gameID int64, machineID, status string) error
	UpdateSettings(ctx context.Context, userID string, gameID int64, machineID string, execPath, launchArgs *string) error
	UpdateFavorite(ctx context.Context, userID string, gameID int64, machineID string, favorite bool) error
	RecordPlaytime(ctx context.Context, userID string, gameID int64, machineID string, durationMs int64) error
}

type userDataService struct {
	repo     repository.UserDataRepository
	gameRepo *repository.GameRepo
}

func NewUserDataService(repo repository.UserDataRepository, gameRepo *repository.GameRepo) UserDataService {
	return &userDataService{repo: repo, gameRepo: gameRepo}
}

func (s *userDataService) checkArgs(ctx context.Context, gameID int64, machineID string) error {
	if machineID == "" {
		return ErrMissingMachineID
	}
	if _, err := s.gameRepo.GetByID(ctx, gameID); err != nil {
		return ErrGameNotFound
	}
	return nil
}

func (s *userDataService) UpdateStatus(ctx context.Context, userID string, gameID int64, machineID, status string) error {
	if status == "" {
		return ErrMissingStatus
	}
	if err := s.checkArgs(ctx, gameID, machineID); err != nil {
		return err
	}
	return s.repo.UpsertStatus(ctx, userID, gameID, machineID, status)
}

func (s *userDataService) UpdateSettings(ctx context.Context, userID string, gameID int64, machineID string, execPath, launchArgs *string) error {
	if err := s.checkArgs(ctx, gameID, machineID); err != nil {
		return err
	}
	return s.repo.UpsertSettings(ctx, userID, gameID, machineID, execPath, launchArgs)
}

func (s *userDataService) UpdateFavorite(ctx context.Context, userID string, gameID int64, machineID string, favorite bool) error {
	if err := s.checkArgs(ctx, gameID, machineID); err != nil {
		return err
	}
	return s.repo.UpsertFavorite(ctx, userID, gameID, machineID, favorite)
}

func (s *userDataService) RecordPlaytime(ctx context.Context, userID string, gameID int64, machineID string, durationMs int64) error {
	if err := s.checkArgs(ctx, gameID, machineID); err != nil {
		return err
	}
	return s.repo.AddPlaytime(ctx, userID, gameID, machineID, durationMs)
}
