package dto

// Pagination describes the page window returned by the games listing.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalGames int64 `json:"totalGames"`
	TotalPages int64 `json:"totalPages"`
}

// GameListResponse wraps a page of games with its pagination block.
type GameListResponse struct {
	Games      []GameResponse `json:"games"`
	Pagination Pagination     `json:"pagination"`
}
