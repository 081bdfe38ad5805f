package model

import "time"

// GameID uniquely identifies a single-player game
type GameID string

// GamePhase is the single-player turn state
type GamePhase string

const (
	PhaseAwaitingPlayer      GamePhase = "awaiting_player"
	PhasePlayerMoveSubmitted GamePhase = "player_move_submitted" // transitional, never persisted
	PhaseAIThinking          GamePhase = "ai_thinking"
	PhaseAIMoveApplied       GamePhase = "ai_move_applied" // transitional, never persisted
	PhaseGameOver            GamePhase = "game_over"
)

// Winner values for a single-player game
const (
	WinnerPlayer = "player"
	WinnerAI     = "ai"
	WinnerTie    = "tie"
)

// MaxConsecutivePasses ends a game once reached
const MaxConsecutivePasses = 4

// Game is a single-player game against the AI
type Game struct {
	ID         GameID
	PlayerID   PlayerID
	PlayerName string
	Difficulty Difficulty
	Phase      GamePhase

	Board *Board
	Bag   *Bag

	PlayerRack Rack
	AIRack     Rack
	Pending    []PlacedTile // tiles staged on the board but not submitted, absent from PlayerRack

	PlayerScore int
	AIScore     int

	IsFirstMove       bool
	ConsecutivePasses int
	History           []MoveRecord
	Winner            string // empty until game over

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOver returns true once the game has been settled
func (g *Game) IsOver() bool {
	return g.Phase == PhaseGameOver
}

// TileCount counts every tile the game owns, which is always TotalTiles
func (g *Game) TileCount() int {
	return g.Bag.Len() + len(g.PlayerRack) + len(g.AIRack) + len(g.Pending) + g.Board.TileCount()
}

// MoveType distinguishes entries in the move history
type MoveType string

const (
	MoveTypePlay     MoveType = "play"
	MoveTypePass     MoveType = "pass"
	MoveTypeExchange MoveType = "exchange"
)

// MoveRecord is an append-only history entry
type MoveRecord struct {
	PlayerID   PlayerID
	PlayerName string
	Type       MoveType
	Word       string // main word for plays, empty otherwise
	Words      []string
	Score      int
	Tiles      []PlacedTile // tiles placed by a play
	TileCount  int          // tiles placed or exchanged
	CreatedAt  time.Time
}

// GameMode identifies where a finished game came from
type GameMode string

const (
	GameModeSinglePlayer GameMode = "single"
	GameModeRoom         GameMode = "room"
)

// ResultEntry is one side's final score
type ResultEntry struct {
	Name  string
	Score int
}

// GameResult is a lightweight record of a completed game
type GameResult struct {
	Mode       GameMode
	Reference  string // game id or room code
	Players    []ResultEntry
	Winner     string // name of the winner, WinnerTie on a draw
	Moves      int
	FinishedAt time.Time
}
