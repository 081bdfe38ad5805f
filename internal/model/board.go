package model

// BoardSize is the grid dimension
const BoardSize = 15

// Center is the cell every first move must cover
var Center = Position{Row: 7, Col: 7}

// Position identifies a cell on the board
type Position struct {
	Row int // 0-indexed from top
	Col int // 0-indexed from left
}

// Premium classifies a board cell for scoring
type Premium string

const (
	PremiumNone         Premium = "none"
	PremiumDoubleLetter Premium = "double_letter"
	PremiumTripleLetter Premium = "triple_letter"
	PremiumDoubleWord   Premium = "double_word"
	PremiumTripleWord   Premium = "triple_word"
	PremiumCenter       Premium = "center" // scores as double word
)

// LetterMultiplier returns the letter multiplier the premium applies to a new tile
func (p Premium) LetterMultiplier() int {
	switch p {
	case PremiumDoubleLetter:
		return 2
	case PremiumTripleLetter:
		return 3
	default:
		return 1
	}
}

// WordMultiplier returns the word multiplier the premium applies to a new tile
func (p Premium) WordMultiplier() int {
	switch p {
	case PremiumDoubleWord, PremiumCenter:
		return 2
	case PremiumTripleWord:
		return 3
	default:
		return 1
	}
}

var premiumLayout = buildPremiumLayout()

func buildPremiumLayout() map[Position]Premium {
	layout := make(map[Position]Premium)
	set := func(p Premium, cells [][2]int) {
		for _, c := range cells {
			layout[Position{Row: c[0], Col: c[1]}] = p
		}
	}
	set(PremiumTripleWord, [][2]int{
		{0, 0}, {0, 7}, {0, 14}, {7, 0}, {7, 14}, {14, 0}, {14, 7}, {14, 14},
	})
	set(PremiumDoubleWord, [][2]int{
		{1, 1}, {2, 2}, {3, 3}, {4, 4}, {1, 13}, {2, 12}, {3, 11}, {4, 10},
		{13, 1}, {12, 2}, {11, 3}, {10, 4}, {13, 13}, {12, 12}, {11, 11}, {10, 10},
	})
	set(PremiumTripleLetter, [][2]int{
		{1, 5}, {1, 9}, {5, 1}, {5, 5}, {5, 9}, {5, 13},
		{9, 1}, {9, 5}, {9, 9}, {9, 13}, {13, 5}, {13, 9},
	})
	set(PremiumDoubleLetter, [][2]int{
		{0, 3}, {0, 11}, {2, 6}, {2, 8}, {3, 0}, {3, 7}, {3, 14}, {6, 2},
		{6, 6}, {6, 8}, {6, 12}, {7, 3}, {7, 11}, {8, 2}, {8, 6}, {8, 8},
		{8, 12}, {11, 0}, {11, 7}, {11, 14}, {12, 6}, {12, 8}, {14, 3}, {14, 11},
	})
	layout[Center] = PremiumCenter
	return layout
}

// PremiumAt returns the premium classification of a cell
func PremiumAt(pos Position) Premium {
	if p, ok := premiumLayout[pos]; ok {
		return p
	}
	return PremiumNone
}

// Board holds the committed tiles of a game
type Board struct {
	Cells [BoardSize][BoardSize]*Tile // Row-major: Cells[row][col], nil means empty
}

// NewBoard creates an empty board
func NewBoard() *Board {
	return &Board{}
}

// Get returns the tile at the given position, or nil if empty or out of bounds
func (b *Board) Get(pos Position) *Tile {
	if !b.IsValidPosition(pos) {
		return nil
	}
	return b.Cells[pos.Row][pos.Col]
}

// Set places a tile at the given position
func (b *Board) Set(pos Position, tile Tile) {
	if b.IsValidPosition(pos) {
		b.Cells[pos.Row][pos.Col] = &tile
	}
}

// IsEmpty returns true if the cell at the given position is empty
func (b *Board) IsEmpty(pos Position) bool {
	return b.Get(pos) == nil
}

// IsValidPosition returns true if the position is within bounds
func (b *Board) IsValidPosition(pos Position) bool {
	return pos.Row >= 0 && pos.Row < BoardSize && pos.Col >= 0 && pos.Col < BoardSize
}

// HasNeighbour returns true if any orthogonal neighbour of pos is occupied
func (b *Board) HasNeighbour(pos Position) bool {
	for _, d := range []Position{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		if !b.IsEmpty(Position{Row: pos.Row + d.Row, Col: pos.Col + d.Col}) {
			return true
		}
	}
	return false
}

// Occupied returns the positions of every occupied cell in row-major order
func (b *Board) Occupied() []Position {
	var out []Position
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if b.Cells[row][col] != nil {
				out = append(out, Position{Row: row, Col: col})
			}
		}
	}
	return out
}

// TileCount returns the number of tiles on the board
func (b *Board) TileCount() int {
	return len(b.Occupied())
}

// Clone returns a copy that can be mutated without touching b
func (b *Board) Clone() *Board {
	c := &Board{}
	for row := 0; row < BoardSize; row++ {
		for col := 0; col < BoardSize; col++ {
			if t := b.Cells[row][col]; t != nil {
				cp := *t
				c.Cells[row][col] = &cp
			}
		}
	}
	return c
}

// Apply commits placed tiles to the board
func (b *Board) Apply(placed []PlacedTile) {
	for _, p := range placed {
		b.Set(p.Position(), p.Tile)
	}
}
