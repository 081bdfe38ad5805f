package board

import (
	"github.com/mcoot/wordgame-go/internal/model"
)

// Service checks the geometry of candidate placements
type Service struct{}

// New creates a new BoardService
func New() *Service {
	return &Service{}
}

// Validate checks a placement against the board. Rules run in a fixed order and
// the first failure is returned. The board is never modified.
func (s *Service) Validate(board *model.Board, placed []model.PlacedTile, isFirstMove bool) error {
	if len(placed) == 0 {
		return model.ErrNoTilesPlaced
	}

	horizontal, ok := Orientation(placed)
	if !ok {
		return model.ErrNotInLine
	}

	seen := make(map[model.Position]struct{}, len(placed))
	for _, p := range placed {
		pos := p.Position()
		if !board.IsValidPosition(pos) {
			return model.ErrInvalidPosition
		}
		if !board.IsEmpty(pos) {
			return model.ErrCellOccupied
		}
		if _, dup := seen[pos]; dup {
			return model.ErrCellOccupied
		}
		seen[pos] = struct{}{}
	}

	if isFirstMove {
		if _, ok := seen[model.Center]; !ok {
			return model.ErrFirstMoveCenter
		}
		if len(placed) < 2 {
			return model.ErrFirstMoveTooShort
		}
	} else if !touchesBoard(board, placed) {
		return model.ErrNotConnected
	}

	if hasGap(board, placed, seen, horizontal) {
		return model.ErrPlacementGap
	}
	return nil
}

// Orientation reports whether a placement runs horizontally. A single tile counts
// as horizontal. ok is false when the tiles share neither a row nor a column.
func Orientation(placed []model.PlacedTile) (horizontal bool, ok bool) {
	if len(placed) <= 1 {
		return true, true
	}
	sameRow, sameCol := true, true
	for _, p := range placed[1:] {
		if p.Row != placed[0].Row {
			sameRow = false
		}
		if p.Col != placed[0].Col {
			sameCol = false
		}
	}
	switch {
	case sameRow:
		return true, true
	case sameCol:
		return false, true
	default:
		return false, false
	}
}

func touchesBoard(board *model.Board, placed []model.PlacedTile) bool {
	for _, p := range placed {
		if board.HasNeighbour(p.Position()) {
			return true
		}
	}
	return false
}

func hasGap(board *model.Board, placed []model.PlacedTile, newCells map[model.Position]struct{}, horizontal bool) bool {
	lo, hi := lineBounds(placed, horizontal)
	for i := lo; i <= hi; i++ {
		pos := model.Position{Row: placed[0].Row, Col: i}
		if !horizontal {
			pos = model.Position{Row: i, Col: placed[0].Col}
		}
		if _, ok := newCells[pos]; ok {
			continue
		}
		if board.IsEmpty(pos) {
			return true
		}
	}
	return false
}

func lineBounds(placed []model.PlacedTile, horizontal bool) (int, int) {
	coord := func(p model.PlacedTile) int {
		if horizontal {
			return p.Col
		}
		return p.Row
	}
	lo, hi := coord(placed[0]), coord(placed[0])
	for _, p := range placed[1:] {
		lo = min(lo, coord(p))
		hi = max(hi, coord(p))
	}
	return lo, hi
}

// Interface for dependency injection
type ServiceInterface interface {
	Validate(board *model.Board, placed []model.PlacedTile, isFirstMove bool) error
}

var _ ServiceInterface = (*Service)(nil)
