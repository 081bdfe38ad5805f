package response

import (
	"time"

	"github.com/samber/lo"

	"github.com/mcoot/wordgame-go/internal/model"
	"github.com/mcoot/wordgame-go/internal/services/auth"
)

// Player represents a player in API responses
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p *model.Player) Player {
	return Player{
		ID:          string(p.ID),
		DisplayName: p.DisplayName,
		IsGuest:     p.IsGuest,
	}
}

// AuthResponse is the response for authentication endpoints
type AuthResponse struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// AuthResponseFromSession creates an AuthResponse from a session
func AuthResponseFromSession(s *auth.Session) AuthResponse {
	return AuthResponse{
		Player:       PlayerFromModel(&s.Player),
		SessionToken: s.Token,
		ExpiresAt:    s.ExpiresAt,
	}
}

// Tile is a rack or board tile. Row and Col are set for pending tiles.
type Tile struct {
	ID      string `json:"id"`
	Letter  string `json:"letter"`
	Value   int    `json:"value"`
	IsBlank bool   `json:"is_blank,omitempty"`
	Row     *int   `json:"row,omitempty"`
	Col     *int   `json:"col,omitempty"`
}

func tileFromModel(t model.Tile) Tile {
	return Tile{ID: t.ID, Letter: t.Letter, Value: t.Value, IsBlank: t.IsBlank}
}

func placedFromModel(p model.PlacedTile) Tile {
	t := tileFromModel(p.Tile)
	t.Row, t.Col = &p.Row, &p.Col
	return t
}

// Cell is an occupied board square
type Cell struct {
	Letter  string `json:"letter"`
	Value   int    `json:"value"`
	IsBlank bool   `json:"is_blank,omitempty"`
}

// BoardFromModel converts a board to rows of cells, null where empty
func BoardFromModel(b *model.Board) [][]*Cell {
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

// Move is a move history entry
type Move struct {
	Player    string    `json:"player"`
	Type      string    `json:"type"`
	Word      string    `json:"word,omitempty"`
	Words     []string  `json:"words,omitempty"`
	Score     int       `json:"score"`
	TileCount int       `json:"tile_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Game is the owner's view of a single-player game. The AI rack is reduced to a count.
type Game struct {
	ID                string    `json:"id"`
	Difficulty        string    `json:"difficulty"`
	Phase             string    `json:"phase"`
	PlayerName        string    `json:"player_name"`
	Board             [][]*Cell `json:"board"`
	Rack              []Tile    `json:"rack"`
	Pending           []Tile    `json:"pending"`
	PlayerScore       int       `json:"player_score"`
	AIScore           int       `json:"ai_score"`
	AIRackCount       int       `json:"ai_rack_count"`
	TilesLeft         int       `json:"tiles_left"`
	IsFirstMove       bool      `json:"is_first_move"`
	ConsecutivePasses int       `json:"consecutive_passes"`
	History           []Move    `json:"history"`
	GameOver          bool      `json:"game_over"`
	Winner            *string   `json:"winner"`
}

// GameFromModel converts model.Game
func GameFromModel(g *model.Game) Game {
	var winner *string
	if g.Winner != "" {
		w := g.Winner
		winner = &w
	}
	return Game{
		ID:                string(g.ID),
		Difficulty:        string(g.Difficulty),
		Phase:             string(g.Phase),
		PlayerName:        g.PlayerName,
		Board:             BoardFromModel(g.Board),
		Rack:              lo.Map(g.PlayerRack, func(t model.Tile, _ int) Tile { return tileFromModel(t) }),
		Pending:           lo.Map(g.Pending, func(p model.PlacedTile, _ int) Tile { return placedFromModel(p) }),
		PlayerScore:       g.PlayerScore,
		AIScore:           g.AIScore,
		AIRackCount:       len(g.AIRack),
		TilesLeft:         g.Bag.Len(),
		IsFirstMove:       g.IsFirstMove,
		ConsecutivePasses: g.ConsecutivePasses,
		History: lo.Map(g.History, func(m model.MoveRecord, _ int) Move {
			return Move{
				Player:    m.PlayerName,
				Type:      string(m.Type),
				Word:      m.Word,
				Words:     m.Words,
				Score:     m.Score,
				TileCount: m.TileCount,
				CreatedAt: m.CreatedAt,
			}
		}),
		GameOver: g.IsOver(),
		Winner:   winner,
	}
}

// RoomSummary is a room as listed publicly, without racks or seat details
type RoomSummary struct {
	Code        string    `json:"code"`
	State       string    `json:"state"`
	PlayerCount int       `json:"player_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoomSummaryFromModel converts model.Room
func RoomSummaryFromModel(r *model.Room) RoomSummary {
	return RoomSummary{
		Code:        string(r.Code),
		State:       string(r.State),
		PlayerCount: len(r.Seats),
		CreatedAt:   r.CreatedAt,
	}
}

// RoomList is the response for GET /api/v1/rooms
type RoomList struct {
	Rooms []RoomSummary `json:"rooms"`
}

// ResultEntry is one side of a finished game
type ResultEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Result is an archived finished game
type Result struct {
	Mode       string        `json:"mode"`
	Reference  string        `json:"reference"`
	Players    []ResultEntry `json:"players"`
	Winner     string        `json:"winner"`
	Moves      int           `json:"moves"`
	FinishedAt time.Time     `json:"finished_at"`
}

// ResultFromModel converts model.GameResult
func ResultFromModel(r model.GameResult) Result {
	return Result{
		Mode:      string(r.Mode),
		Reference: r.Reference,
		Players: lo.Map(r.Players, func(e model.ResultEntry, _ int) ResultEntry {
			return ResultEntry{Name: e.Name, Score: e.Score}
		}),
		Winner:     r.Winner,
		Moves:      r.Moves,
		FinishedAt: r.FinishedAt,
	}
}

// ResultList is the response for GET /api/v1/results
type ResultList struct {
	Results []Result `json:"results"`
}
