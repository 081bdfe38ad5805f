package protocol

import (
	"github.com/samber/lo"

	"github.com/mcoot/wordgame-go/internal/model"
)

// Cell is an occupied board square
type Cell struct {
	Letter  string `json:"letter"`
	Value   int    `json:"value"`
	IsBlank bool   `json:"isBlank"`
}

// HistoryEntry is one move as shown to players
type HistoryEntry struct {
	Player string   `json:"player"`
	Type   string   `json:"type"`
	Word   string   `json:"word,omitempty"`
	Words  []string `json:"words,omitempty"`
	Score  int      `json:"score"`
}

// GameState is a player-scoped snapshot of a room. The opponent's rack is
// reduced to a count.
type GameState struct {
	Code              string         `json:"code"`
	Board             [][]*Cell      `json:"board"`
	YourName          string         `json:"yourName"`
	YourRack          []Tile         `json:"yourRack"`
	YourScore         int            `json:"yourScore"`
	OpponentName      string         `json:"opponentName"`
	OpponentScore     int            `json:"opponentScore"`
	OpponentRackCount int            `json:"opponentRackCount"`
	IsYourTurn        bool           `json:"isYourTurn"`
	IsFirstMove       bool           `json:"isFirstMove"`
	TilesLeft         int            `json:"tilesLeft"`
	Started           bool           `json:"started"`
	PlayerCount       int            `json:"playerCount"`
	GameOver          bool           `json:"gameOver"`
	Winner            string         `json:"winner"`
	MoveHistory       []HistoryEntry `json:"moveHistory"`
}

// NewGameState builds the snapshot of room seen by the seat at index seat
func NewGameState(room *model.Room, seat int) GameState {
	me := room.Seats[seat]
	state := GameState{
		Code:        string(room.Code),
		Board:       BoardCells(room.Board),
		YourName:    me.Name,
		YourRack:    RackTiles(me.Rack),
		YourScore:   me.Score,
		IsYourTurn:  room.State == model.RoomStateStarted && room.CurrentTurn == seat,
		IsFirstMove: room.IsFirstMove,
		TilesLeft:   room.Bag.Len(),
		Started:     room.State != model.RoomStateCreated,
		PlayerCount: len(room.Seats),
		GameOver:    room.IsOver(),
		Winner:      room.Winner,
		MoveHistory: History(room.History),
	}
	for i, other := range room.Seats {
		if i == seat {
			continue
		}
		state.OpponentName = other.Name
		state.OpponentScore = other.Score
		state.OpponentRackCount = len(other.Rack)
	}
	return state
}

// BoardCells converts a board to rows of cells, nil where empty
func BoardCells(b *model.Board) [][]*Cell {
	rows := make([][]*Cell, model.BoardSize)
	for r := range rows {
		rows[r] = make([]*Cell, model.BoardSize)
		for c := range rows[r] {
			if t := b.Get(model.Position{Row: r, Col: c}); t != nil {
				rows[r][c] = &Cell{Letter: t.Letter, Value: t.Value, IsBlank: t.IsBlank}
			}
		}
	}
	return rows
}

// RackTiles converts a rack for the wire
func RackTiles(rack model.Rack) []Tile {
	return lo.Map(rack, func(t model.Tile, _ int) Tile {
		return Tile{ID: t.ID, Letter: t.Letter, Value: t.Value, IsBlank: t.IsBlank}
	})
}

// History converts move records for the wire
func History(records []model.MoveRecord) []HistoryEntry {
	return lo.Map(records, func(m model.MoveRecord, _ int) HistoryEntry {
		return HistoryEntry{Player: m.PlayerName, Type: string(m.Type), Word: m.Word, Words: m.Words, Score: m.Score}
	})
}

// Placements converts submitted wire tiles to placements. Letters and values
// are re-read from the rack by the caller; only blank letters are taken from here.
func Placements(tiles []Tile) []model.PlacedTile {
	return lo.Map(tiles, func(t Tile, _ int) model.PlacedTile {
		return model.PlacedTile{
			Tile: model.Tile{ID: t.ID, Letter: t.Letter, Value: t.Value, IsBlank: t.IsBlank},
			Row:  t.Row,
			Col:  t.Col,
		}
	})
}
