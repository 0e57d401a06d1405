package dto

// UpdateStatusDTO used for POST /api/games/:id/status
type UpdateStatusDTO struct {
	UserID    string `json:"userId"`
	MachineID string `json:"machineId"`
	Status    string `json:"status"`
}

// UpdateSettingsDTO used for POST /api/games/:id/settings
type UpdateSettingsDTO struct {
	UserID    string `json:"userId"`
	MachineID string `json:"machineId"`
	Settings  struct {
		ExecutablePath *string `json:"executablePath,omitempty"`
		LaunchArgs     *string `json:"launchArgs,omitempty"`
	} `json:"settings"`
}

// UpdatePlaytimeDTO used for POST /api/games/:id/playtime
type UpdatePlaytimeDTO struct {
	UserID     string `json:"userId"`
	MachineID  string `json:"machineId"`
	DurationMs int64  `json:"durationMs"`
}

// UpdateFavoriteDTO used for POST /api/games/:id/favorite
type UpdateFavoriteDTO struct {
	UserID    string `json:"userId"`
	MachineID string `json:"machineId"`
	Favorite  bool   `json:"favorite"`
}
