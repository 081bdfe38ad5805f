package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Fprintln(o.w, string(data))
	} else {
		fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case Player:
		o.printPlayer(v)
	case AuthResult:
		o.printAuthResult(v)
	case Game:
		o.printGame(v)
	case RoomList:
		o.printRooms(v)
	case ResultList:
		o.printResults(v)
	case HealthResult:
		fmt.Fprintf(o.w, "Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// Player response type (matches API)
type Player struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	IsGuest     bool   `json:"is_guest"`
}

// AuthResult combines player and token
type AuthResult struct {
	Player       Player    `json:"player"`
	SessionToken string    `json:"session_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// Tile response type. Row and Col are only set on pending tiles.
type Tile struct {
	ID      string `json:"id"`
	Letter  string `json:"letter"`
	Value   int    `json:"value"`
	IsBlank bool   `json:"is_blank,omitempty"`
	Row     *int   `json:"row,omitempty"`
	Col     *int   `json:"col,omitempty"`
}

// Cell is an occupied board square
type Cell struct {
	Letter  string `json:"letter"`
	Value   int    `json:"value"`
	IsBlank bool   `json:"is_blank,omitempty"`
}

// Move response type
type Move struct {
	Player    string   `json:"player"`
	Type      string   `json:"type"`
	Word      string   `json:"word,omitempty"`
	Words     []string `json:"words,omitempty"`
	Score     int      `json:"score"`
	TileCount int      `json:"tile_count"`
}

// Game response type
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

// RoomSummary response type
type RoomSummary struct {
	Code        string    `json:"code"`
	State       string    `json:"state"`
	PlayerCount int       `json:"player_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// RoomList response type
type RoomList struct {
	Rooms []RoomSummary `json:"rooms"`
}

// ResultEntry response type
type ResultEntry struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Result response type
type Result struct {
	Mode       string        `json:"mode"`
	Reference  string        `json:"reference"`
	Players    []ResultEntry `json:"players"`
	Winner     string        `json:"winner"`
	Moves      int           `json:"moves"`
	FinishedAt time.Time     `json:"finished_at"`
}

// ResultList response type
type ResultList struct {
	Results []Result `json:"results"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func (o *Output) printPlayer(p Player) {
	guestStr := "no"
	if p.IsGuest {
		guestStr = "yes"
	}
	fmt.Fprintf(o.w, "Player: %s (%s)\n", p.DisplayName, p.ID)
	fmt.Fprintf(o.w, "Guest: %s\n", guestStr)
}

func (o *Output) printAuthResult(a AuthResult) {
	o.printPlayer(a.Player)
	fmt.Fprintf(o.w, "Token: %s\n", a.SessionToken)
}

func (o *Output) printGame(g Game) {
	fmt.Fprintf(o.w, "Game: %s (%s)\n", g.ID, g.Difficulty)
	fmt.Fprintf(o.w, "Phase: %s\n", g.Phase)
	fmt.Fprintf(o.w, "Score: %s %d - AI %d\n", g.PlayerName, g.PlayerScore, g.AIScore)
	fmt.Fprintf(o.w, "Tiles left: %d (AI holds %d)\n", g.TilesLeft, g.AIRackCount)
	fmt.Fprintln(o.w)

	overlay := make(map[[2]int]Tile, len(g.Pending))
	for _, t := range g.Pending {
		if t.Row != nil && t.Col != nil {
			overlay[[2]int{*t.Row, *t.Col}] = t
		}
	}
	printBoard(o.w, g.Board, func(row, col int) (string, bool) {
		t, ok := overlay[[2]int{row, col}]
		return strings.ToLower(t.Letter), ok
	})

	fmt.Fprintln(o.w)
	fmt.Fprintf(o.w, "Rack: %s\n", rackString(g.Rack))
	if len(g.Pending) > 0 {
		fmt.Fprintf(o.w, "Pending: %s\n", rackString(g.Pending))
	}

	if n := len(g.History); n > 0 {
		fmt.Fprintln(o.w, "\nRecent moves:")
		for _, m := range g.History[max(0, n-5):] {
			fmt.Fprintf(o.w, "  %s\n", describeMove(m.Player, m.Type, m.Word, m.Score, m.TileCount))
		}
	}

	if g.GameOver && g.Winner != nil {
		fmt.Fprintf(o.w, "\nGame over. Winner: %s\n", *g.Winner)
	}
}

func (o *Output) printRooms(l RoomList) {
	if len(l.Rooms) == 0 {
		fmt.Fprintln(o.w, "No open rooms")
		return
	}
	for _, r := range l.Rooms {
		fmt.Fprintf(o.w, "%s  %-9s  %d/2  %s\n", r.Code, r.State, r.PlayerCount, r.CreatedAt.Format(time.RFC3339))
	}
}

func (o *Output) printResults(l ResultList) {
	if len(l.Results) == 0 {
		fmt.Fprintln(o.w, "No finished games")
		return
	}
	for _, r := range l.Results {
		scores := make([]string, len(r.Players))
		for i, p := range r.Players {
			scores[i] = fmt.Sprintf("%s %d", p.Name, p.Score)
		}
		fmt.Fprintf(o.w, "%s  %-6s  %s  winner: %s\n",
			r.FinishedAt.Format(time.RFC3339), r.Mode, strings.Join(scores, " - "), r.Winner)
	}
}

// printBoard draws a board grid. extra may supply a letter for an empty cell.
func printBoard(w io.Writer, board [][]*Cell, extra func(row, col int) (string, bool)) {
	size := len(board)
	if size == 0 {
		return
	}

	fmt.Fprint(w, "    ")
	for col := 0; col < size; col++ {
		fmt.Fprintf(w, "%2d ", col)
	}
	fmt.Fprintln(w)

	for row := 0; row < size; row++ {
		fmt.Fprintf(w, " %2d ", row)
		for col := 0; col < size; col++ {
			switch cell := board[row][col]; {
			case cell != nil:
				fmt.Fprintf(w, " %s ", cell.Letter)
			default:
				if letter, ok := extra(row, col); ok {
					fmt.Fprintf(w, " %s ", letter)
				} else {
					fmt.Fprint(w, " . ")
				}
			}
		}
		fmt.Fprintln(w)
	}
}

func rackString(tiles []Tile) string {
	letters := make([]string, len(tiles))
	for i, t := range tiles {
		switch {
		case t.IsBlank && t.Letter == "":
			letters[i] = "?"
		default:
			letters[i] = t.Letter
		}
	}
	return strings.Join(letters, " ")
}

func describeMove(player, kind, word string, score, tiles int) string {
	switch kind {
	case "play":
		return fmt.Sprintf("%s played %s for %d", player, word, score)
	case "exchange":
		return fmt.Sprintf("%s exchanged %d tiles", player, tiles)
	default:
		return fmt.Sprintf("%s passed", player)
	}
}
