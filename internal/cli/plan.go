package cli

import (
	"fmt"
	"strings"
	"unicode"
)

// rackTile is the part of a rack tile needed to plan a move
type rackTile struct {
	ID      string
	Letter  string
	IsBlank bool
}

// TileRequest is one tile placement sent to the server
type TileRequest struct {
	ID     string `json:"id"`
	Row    int    `json:"row"`
	Col    int    `json:"col"`
	Letter string `json:"letter,omitempty"`
}

// parseDirection accepts h/across and v/down
func parseDirection(s string) (horizontal bool, err error) {
	switch strings.ToLower(s) {
	case "h", "a", "across", "horizontal":
		return true, nil
	case "v", "d", "down", "vertical":
		return false, nil
	}
	return false, fmt.Errorf("direction must be across (h) or down (v), got %q", s)
}

// planPlacement lays word out from (row, col), skipping squares whose letter is
// already on the board and taking the rest from the rack. A letter with no
// matching tile is played with a blank.
func planPlacement(rack []rackTile, occupied func(row, col int) (string, bool), row, col int, horizontal bool, word string) ([]TileRequest, error) {
	word = strings.ToUpper(strings.TrimSpace(word))
	if word == "" {
		return nil, fmt.Errorf("word is required")
	}

	used := make(map[string]bool, len(rack))
	take := func(match func(rackTile) bool) (rackTile, bool) {
		for _, t := range rack {
			if !used[t.ID] && match(t) {
				used[t.ID] = true
				return t, true
			}
		}
		return rackTile{}, false
	}

	var out []TileRequest
	for i, r := range word {
		if !unicode.IsLetter(r) || r > unicode.MaxASCII {
			return nil, fmt.Errorf("word may only contain letters A-Z")
		}
		letter := string(r)
		rr, cc := row, col+i
		if !horizontal {
			rr, cc = row+i, col
		}

		if existing, ok := occupied(rr, cc); ok {
			if existing != letter {
				return nil, fmt.Errorf("square (%d,%d) already holds %s", rr, cc, existing)
			}
			continue
		}

		if t, ok := take(func(t rackTile) bool { return !t.IsBlank && t.Letter == letter }); ok {
			out = append(out, TileRequest{ID: t.ID, Row: rr, Col: cc})
			continue
		}
		if t, ok := take(func(t rackTile) bool { return t.IsBlank }); ok {
			out = append(out, TileRequest{ID: t.ID, Row: rr, Col: cc, Letter: letter})
			continue
		}
		return nil, fmt.Errorf("no %s in your rack", letter)
	}

	if len(out) == 0 {
		return nil, fmt.Errorf("%s is already on the board", word)
	}
	return out, nil
}

// pickTiles selects rack tiles by letter; "?" selects a blank
func pickTiles(rack []rackTile, letters string) ([]string, error) {
	used := make(map[string]bool, len(rack))
	var ids []string
	for _, r := range strings.ToUpper(letters) {
		if unicode.IsSpace(r) || r == ',' {
			continue
		}
		found := false
		for _, t := range rack {
			if used[t.ID] {
				continue
			}
			if (r == '?' && t.IsBlank) || (!t.IsBlank && t.Letter == string(r)) {
				used[t.ID] = true
				ids = append(ids, t.ID)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("no %c in your rack", r)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no tiles selected")
	}
	return ids, nil
}

// gameRack lists the player's tiles including any staged on the board, since
// the server recalls pending tiles before applying a new placement
func gameRack(g Game) []rackTile {
	out := make([]rackTile, 0, len(g.Rack)+len(g.Pending))
	for _, t := range append(append([]Tile{}, g.Rack...), g.Pending...) {
		letter := t.Letter
		if t.IsBlank {
			letter = ""
		}
		out = append(out, rackTile{ID: t.ID, Letter: letter, IsBlank: t.IsBlank})
	}
	return out
}

func boardLookup(board [][]*Cell) func(row, col int) (string, bool) {
	return func(row, col int) (string, bool) {
		if row < 0 || row >= len(board) || col < 0 || col >= len(board[row]) || board[row][col] == nil {
			return "", false
		}
		return board[row][col].Letter, true
	}
}
