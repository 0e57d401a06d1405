package dto

import (
	"time"

	"gameplex/internal/http-api/models"
	"gameplex/internal/http-api/service"
)

// CreateGameDTO used for POST /api/editor/games
type CreateGameDTO struct {
	Title          string   `json:"title" binding:"required"`
	Developer      *string  `json:"developer,omitempty"`
	ReleaseDate    *string  `json:"release_date,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	ExecutablePath *string  `json:"executablePath,omitempty"`
	LaunchArgs     *string  `json:"launchArgs,omitempty"`
}

// UpdateGameDTO used for POST /api/editor/games/:id (partial updates allowed)
type UpdateGameDTO struct {
	Title          *string  `json:"title,omitempty"`
	Developer      *string  `json:"developer,omitempty"`
	ReleaseDate    *string  `json:"release_date,omitempty"`
	Description    *string  `json:"description,omitempty"`
	Rating         *float64 `json:"rating,omitempty"`
	ExecutablePath *string  `json:"executable_path,omitempty"`
	LaunchArgs     *string  `json:"launch_args,omitempty"`
	CustomSavePath *string  `json:"custom_save_path,omitempty"`
}

// UserSettings carries the per-machine overrides attached to a listing row.
type UserSettings struct {
	TotalPlaytime  int64   `json:"totalPlaytime"`
	ExecutablePath *string `json:"executablePath,omitempty"`
	LaunchArgs     *string `json:"launchArgs,omitempty"`
}

// GameResponse is the full listing shape the launcher frontend consumes.
type GameResponse struct {
	ID             int64        `json:"id"`
	RawgID         *int64       `json:"rawg_id,omitempty"`
	Title          string       `json:"title"`
	FolderName     string       `json:"folder_name"`
	Developer      *string      `json:"developer,omitempty"`
	ReleaseDate    *string      `json:"release_date,omitempty"`
	Description    *string      `json:"description,omitempty"`
	Rating         *float64     `json:"rating,omitempty"`
	Art            *string      `json:"art,omitempty"`
	ExecutablePath *string      `json:"executablePath,omitempty"`
	LaunchArgs     *string      `json:"launchArgs,omitempty"`
	CustomSavePath *string      `json:"custom_save_path,omitempty"`
	CreatedAt      *time.Time   `json:"created_at,omitempty"`
	Genres         []string     `json:"genres"`
	Screenshots    []string     `json:"screenshots"`
	InstallFiles   []string     `json:"install_files"`
	Collections    []string     `json:"collections"`
	Status         string       `json:"status"`
	IsFavorite     bool         `json:"is_favorite"`
	UserSettings   UserSettings `json:"user_settings"`
}

// EditorGameResponse is the lean row for the editor index.
type EditorGameResponse struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// Converters

func (d CreateGameDTO) ToModel() models.Game {
	return models.Game{
		Title:          d.Title,
		Developer:      d.Developer,
		ReleaseDate:    d.ReleaseDate,
		Description:    d.Description,
		Rating:         d.Rating,
		ExecutablePath: d.ExecutablePath,
		LaunchArgs:     d.LaunchArgs,
	}
}

// ToFields maps set members onto catalog column updates.
func (d UpdateGameDTO) ToFields() map[string]interface{} {
	fields := map[string]interface{}{}
	if d.Title != nil {
		fields["title"] = *d.Title
	}
	if d.Developer != nil {
		fields["developer"] = *d.Developer
	}
	if d.ReleaseDate != nil {
		fields["release_date"] = *d.ReleaseDate
	}
	if d.Description != nil {
		fields["description"] = *d.Description
	}
	if d.Rating != nil {
		fields["rating"] = *d.Rating
	}
	if d.ExecutablePath != nil {
		fields["executable_path"] = *d.ExecutablePath
	}
	if d.LaunchArgs != nil {
		fields["launch_args"] = *d.LaunchArgs
	}
	if d.CustomSavePath != nil {
		fields["custom_save_path"] = *d.CustomSavePath
	}
	return fields
}

// FromGameToResponse flattens a catalog row plus the user's machine state
// into the response shape. Collection names are filtered to the requesting
// user's collections.
func FromGameToResponse(item service.GameWithUserData, userID string) GameResponse {
	g := item.Game

	resp := GameResponse{
		ID:             g.ID,
		RawgID:         g.RawgID,
		Title:          g.Title,
		FolderName:     g.FolderName,
		Developer:      g.Developer,
		ReleaseDate:    g.ReleaseDate,
		Description:    g.Description,
		Rating:         g.Rating,
		Art:            g.ArtPath,
		ExecutablePath: g.ExecutablePath,
		LaunchArgs:     g.LaunchArgs,
		CustomSavePath: g.CustomSavePath,
		CreatedAt:      g.CreatedAt,
		Genres:         make([]string, 0, len(g.Genres)),
		Screenshots:    make([]string, 0, len(g.Screenshots)),
		InstallFiles:   make([]string, 0, len(g.InstallFiles)),
		Collections:    []string{},
		Status:         "not_installed",
	}

	for _, genre := range g.Genres {
		resp.Genres = append(resp.Genres, genre.Name)
	}
	for _, shot := range g.Screenshots {
		resp.Screenshots = append(resp.Screenshots, shot.Path)
	}
	for _, file := range g.InstallFiles {
		resp.InstallFiles = append(resp.InstallFiles, file.Filename)
	}
	for _, c := range g.Collections {
		if c.UserID == userID {
			resp.Collections = append(resp.Collections, c.Name)
		}
	}

	if data := item.UserData; data != nil {
		if data.Status != "" {
			resp.Status = data.Status
		}
		resp.IsFavorite = data.IsFavorite
		resp.UserSettings = UserSettings{
			TotalPlaytime:  data.TotalPlaytime,
			ExecutablePath: data.CustomExecutablePath,
			LaunchArgs:     data.CustomLaunchArgs,
		}
	}

	return resp
}
