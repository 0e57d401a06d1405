package dto

import "gameplex/internal/saves"

// SaveEntryResponse is one retained save version.
type SaveEntryResponse struct {
	Version   int    `json:"version"`
	Timestamp int64  `json:"timestamp"`
	Filename  string `json:"filename"`
}

func FromSaveEntry(e saves.Entry) SaveEntryResponse {
	return SaveEntryResponse{
		Version:   e.Version,
		Timestamp: e.Timestamp,
		Filename:  e.Filename,
	}
}
