package request

// CreateGuestRequest is the request body for creating a guest player
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// NewGameRequest is the request body for starting a single-player game
type NewGameRequest struct {
	Difficulty string `json:"difficulty,omitempty"`
}

// Tile is one tile placement. Letter is only read for blanks.
type Tile struct {
	ID     string `json:"id"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Letter string `json:"letter,omitempty"`
}

// PlaceRequest is the request body for staging or submitting tiles.
// Submitting with no tiles plays whatever is pending.
type PlaceRequest struct {
	Tiles []Tile `json:"tiles"`
}

// ExchangeRequest is the request body for exchanging rack tiles
type ExchangeRequest struct {
	TileIDs []string `json:"tile_ids"`
}
