package rawg

// SearchResponse is the envelope returned by /games?search=...
type SearchResponse struct {
	Count   int            `json:"count"`
	Results []SearchResult `json:"results"`
}

// SearchResult is one hit from a title search.
type SearchResult struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Released string  `json:"released"`
	Rating   float64 `json:"rating"`
}

// GameDetails is the descriptive record for a single game.
type GameDetails struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Released        string     `json:"released"`
	DescriptionRaw  string     `json:"description_raw"`
	Rating          float64    `json:"rating"`
	BackgroundImage string     `json:"background_image"`
	Developers      []NamedRef `json:"developers"`
	Genres          []NamedRef `json:"genres"`
	Screenshots     []string   `json:"-"`
}

// NamedRef is the {id, name} shape RAWG uses for developers and genres.
type NamedRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// ScreenshotsResponse is the envelope returned by /games/{id}/screenshots
type ScreenshotsResponse struct {
	Count   int          `json:"count"`
	Results []Screenshot `json:"results"`
}

type Screenshot struct {
	ID    int64  `json:"id"`
	Image string `json:"image"`
}
