package model

// Tile is a single letter tile. Letter is empty for a blank until it is placed.
type Tile struct {
	ID      string
	Letter  string
	Value   int
	IsBlank bool
}

// PlacedTile is a tile bound to a board coordinate
type PlacedTile struct {
	Tile
	Row int
	Col int
}

// Position returns the board coordinate of the placed tile
func (p PlacedTile) Position() Position {
	return Position{Row: p.Row, Col: p.Col}
}

// RackSize is the number of tiles a rack is topped up to
const RackSize = 7

// BingoBonus is awarded for placing all seven rack tiles in one move
const BingoBonus = 50

// TileSpec describes how many copies of a letter the bag holds and what each is worth
type TileSpec struct {
	Letter string // empty for blank
	Count  int
	Value  int
}

// TileDistribution is the fixed letter distribution, 100 tiles in total
var TileDistribution = []TileSpec{
	{"A", 9, 1}, {"B", 2, 3}, {"C", 2, 3}, {"D", 4, 2}, {"E", 12, 1},
	{"F", 2, 4}, {"G", 3, 2}, {"H", 2, 4}, {"I", 9, 1}, {"J", 1, 8},
	{"K", 1, 5}, {"L", 4, 1}, {"M", 2, 3}, {"N", 6, 1}, {"O", 8, 1},
	{"P", 2, 3}, {"Q", 1, 10}, {"R", 6, 1}, {"S", 4, 1}, {"T", 6, 1},
	{"U", 4, 1}, {"V", 2, 4}, {"W", 2, 4}, {"X", 1, 8}, {"Y", 2, 4},
	{"Z", 1, 10}, {"", 2, 0},
}

// TotalTiles is the size of a full bag
const TotalTiles = 100

// LetterValue returns the point value of a letter, 0 for unknown letters
func LetterValue(letter string) int {
	for _, spec := range TileDistribution {
		if spec.Letter != "" && spec.Letter == letter {
			return spec.Value
		}
	}
	return 0
}

// Bag is the pool of undrawn tiles for one game
type Bag struct {
	Tiles []Tile
}

// Len returns the number of tiles left in the bag
func (b *Bag) Len() int {
	return len(b.Tiles)
}

// Rack is a player's hand
type Rack []Tile

// Find returns the index of the tile with the given id, or -1
func (r Rack) Find(id string) int {
	for i, t := range r {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// Without returns a copy of the rack with the given tile ids removed
func (r Rack) Without(ids ...string) Rack {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	out := make(Rack, 0, len(r))
	for _, t := range r {
		if _, ok := drop[t.ID]; !ok {
			out = append(out, t)
		}
	}
	return out
}

// Value returns the sum of the tile values on the rack
func (r Rack) Value() int {
	total := 0
	for _, t := range r {
		total += t.Value
	}
	return total
}
