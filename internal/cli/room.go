package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/mcoot/wordgame-go/internal/protocol"
)

const roomHelp = `Commands:
  place <row> <col> <across|down> <word>   play a word (letters on the board are skipped)
  pass                                     pass your turn
  exchange <letters>                       swap tiles, ? selects a blank
  board                                    redraw the board
  quit                                     leave the room`

// roomOptions selects how room play enters a room
type roomOptions struct {
	Create bool
	Code   string
	Name   string
	Token  string
}

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Two-player rooms over a websocket",
	}
	cmd.AddCommand(newRoomPlayCmd())
	return cmd
}

func newRoomPlayCmd() *cobra.Command {
	var opts roomOptions

	cmd := &cobra.Command{
		Use:   "play (--create | --join CODE) --name NAME",
		Short: "Create or join a room and play interactively",
		Long: `Connect to the server, create or join a room, then read commands from
stdin while printing the board and server messages.

` + roomHelp,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Create == (opts.Code != "") {
				return errors.New("exactly one of --create or --join is required")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return playRoom(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().BoolVar(&opts.Create, "create", false, "Create a new room")
	cmd.Flags().StringVar(&opts.Code, "join", "", "Join the room with this code")
	cmd.Flags().StringVar(&opts.Name, "name", "", "Display name (required)")
	cmd.Flags().StringVar(&opts.Token, "seat-token", "", "Seat token from an earlier session, to reclaim your seat")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// roomSession is one websocket connection plus the latest state it was sent
type roomSession struct {
	conn *websocket.Conn
	out  io.Writer
	json bool

	writeMu sync.Mutex
	mu      sync.Mutex
	state   *protocol.GameState
}

func playRoom(ctx context.Context, in io.Reader, out io.Writer, opts roomOptions) error {
	wsURL, err := cfg.WebsocketURL()
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("connect %s: %w", wsURL, err)
	}
	defer conn.Close()

	s := &roomSession{conn: conn, out: out, json: cfg.Output == "json"}

	var hello protocol.ClientMessage = protocol.CreateRoom{Name: opts.Name}
	if !opts.Create {
		hello = protocol.JoinRoom{Code: opts.Code, Name: opts.Name, Token: opts.Token}
	}
	if err := s.send(hello); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() { done <- s.readLoop() }()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.close()
			return nil
		case err := <-done:
			return err
		case line, ok := <-lines:
			if !ok {
				s.close()
				return <-done
			}
			quit, err := s.command(line)
			if err != nil {
				fmt.Fprintf(out, "! %s\n", err)
			}
			if quit {
				s.close()
				return <-done
			}
		}
	}
}

// readLoop prints server messages until the connection closes
func (s *roomSession) readLoop() error {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		}
		msg, err := protocol.DecodeServer(data)
		if err != nil {
			continue
		}
		if s.json {
			fmt.Fprintln(s.out, string(data))
		}
		s.handle(msg)
	}
}

func (s *roomSession) handle(msg protocol.ServerMessage) {
	if st, ok := msg.(protocol.GameState); ok {
		s.mu.Lock()
		s.state = &st
		s.mu.Unlock()
	}
	if s.json {
		return
	}

	switch m := msg.(type) {
	case protocol.RoomCreated:
		fmt.Fprintf(s.out, "Room %s created. Waiting for an opponent...\n", m.Code)
		fmt.Fprintf(s.out, "Seat token: %s (pass --seat-token to reclaim your seat)\n", m.Token)
	case protocol.RoomJoined:
		fmt.Fprintf(s.out, "Joined room %s\n", m.Code)
		fmt.Fprintf(s.out, "Seat token: %s (pass --seat-token to reclaim your seat)\n", m.Token)
	case protocol.Reconnected:
		fmt.Fprintln(s.out, "Reconnected to your seat")
	case protocol.GameStarted:
		fmt.Fprintln(s.out, "Game started!")
	case protocol.GameState:
		renderRoomState(s.out, m)
	case protocol.MoveMade:
		fmt.Fprintf(s.out, "%s played %s for %d\n", m.Player, m.Word, m.Score)
	case protocol.MoveRejected:
		fmt.Fprintf(s.out, "Move rejected: %s\n", m.Error)
	case protocol.OpponentDisconnected:
		fmt.Fprintln(s.out, "Your opponent disconnected")
	case protocol.Error:
		fmt.Fprintf(s.out, "Error: %s\n", m.Message)
	}
}

// command runs one stdin line; quit is true when the session should end
func (s *roomSession) command(line string) (quit bool, err error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch strings.ToLower(fields[0]) {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		fmt.Fprintln(s.out, roomHelp)
		return false, nil
	case "board":
		st := s.current()
		if st == nil {
			return false, errors.New("no game state yet")
		}
		renderRoomState(s.out, *st)
		return false, nil
	case "pass":
		return false, s.send(protocol.PassTurn{})
	case "exchange":
		if len(fields) < 2 {
			return false, errors.New("usage: exchange <letters>")
		}
		st := s.current()
		if st == nil {
			return false, errors.New("no game state yet")
		}
		ids, err := pickTiles(wireRack(st.YourRack), strings.Join(fields[1:], ""))
		if err != nil {
			return false, err
		}
		return false, s.send(protocol.ExchangeTiles{TileIDs: ids})
	case "place", "play":
		if len(fields) != 5 {
			return false, errors.New("usage: place <row> <col> <across|down> <word>")
		}
		tiles, err := s.plan(fields[1:])
		if err != nil {
			return false, err
		}
		return false, s.send(protocol.PlaceTiles{Tiles: tiles})
	}
	return false, fmt.Errorf("unknown command %q, try help", fields[0])
}

func (s *roomSession) plan(args []string) ([]protocol.Tile, error) {
	row, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, errors.New("row must be a number")
	}
	col, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, errors.New("col must be a number")
	}
	horizontal, err := parseDirection(args[2])
	if err != nil {
		return nil, err
	}
	st := s.current()
	if st == nil {
		return nil, errors.New("no game state yet")
	}

	planned, err := planPlacement(wireRack(st.YourRack), boardLookup(wireBoard(st.Board)), row, col, horizontal, args[3])
	if err != nil {
		return nil, err
	}
	out := make([]protocol.Tile, len(planned))
	for i, p := range planned {
		out[i] = protocol.Tile{ID: p.ID, Letter: p.Letter, IsBlank: p.Letter != "", Row: p.Row, Col: p.Col}
	}
	return out, nil
}

func (s *roomSession) current() *protocol.GameState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *roomSession) send(msg protocol.ClientMessage) error {
	data, err := protocol.Encode(msg)
	if err != nil {
		return err
	}
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *roomSession) close() {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	_ = s.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"), time.Now().Add(time.Second))
}

func renderRoomState(w io.Writer, st protocol.GameState) {
	fmt.Fprintln(w)
	printBoard(w, wireBoard(st.Board), func(int, int) (string, bool) { return "", false })
	fmt.Fprintln(w)
	opponent := st.OpponentName
	if opponent == "" {
		opponent = "(waiting)"
	}
	fmt.Fprintf(w, "Room %s  %s %d - %s %d  tiles left: %d\n",
		st.Code, st.YourName, st.YourScore, opponent, st.OpponentScore, st.TilesLeft)
	tiles := make([]Tile, len(st.YourRack))
	for i, t := range st.YourRack {
		tiles[i] = Tile{ID: t.ID, Letter: t.Letter, IsBlank: t.IsBlank}
	}
	fmt.Fprintf(w, "Rack: %s\n", rackString(tiles))

	switch {
	case st.GameOver:
		fmt.Fprintf(w, "Game over. Winner: %s\n", roomWinner(st))
	case !st.Started:
		fmt.Fprintln(w, "Waiting for an opponent to join")
	case st.IsYourTurn:
		fmt.Fprintln(w, "Your turn")
	default:
		fmt.Fprintf(w, "Waiting for %s\n", opponent)
	}
}

func roomWinner(st protocol.GameState) string {
	switch {
	case st.Winner == "tie":
		return "tie"
	case st.YourScore > st.OpponentScore:
		return st.YourName
	case st.OpponentScore > st.YourScore:
		return st.OpponentName
	}
	return st.Winner
}

func wireRack(tiles []protocol.Tile) []rackTile {
	out := make([]rackTile, len(tiles))
	for i, t := range tiles {
		letter := t.Letter
		if t.IsBlank {
			letter = ""
		}
		out[i] = rackTile{ID: t.ID, Letter: letter, IsBlank: t.IsBlank}
	}
	return out
}

func wireBoard(board [][]*protocol.Cell) [][]*Cell {
	out := make([][]*Cell, len(board))
	for r, row := range board {
		out[r] = make([]*Cell, len(row))
		for c, cell := range row {
			if cell != nil {
				out[r][c] = &Cell{Letter: cell.Letter, Value: cell.Value, IsBlank: cell.IsBlank}
			}
		}
	}
	return out
}
