package room

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/wordgame-go/internal/dependencies/clock"
	"github.com/mcoot/wordgame-go/internal/dependencies/random"
	"github.com/mcoot/wordgame-go/internal/keylock"
	"github.com/mcoot/wordgame-go/internal/model"
	"github.com/mcoot/wordgame-go/internal/protocol"
	"github.com/mcoot/wordgame-go/internal/services/auth"
	"github.com/mcoot/wordgame-go/internal/services/scoring"
	"github.com/mcoot/wordgame-go/internal/services/tilebag"
	"github.com/mcoot/wordgame-go/internal/storage"
)

const (
	// CodeLength is the length of generated room codes
	CodeLength = 6
	// CodeAlphabet is the characters used in room codes (avoid confusing chars)
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
)

// Config controls room expiry
type Config struct {
	// DisconnectGrace is how long a room survives once every seat has dropped
	DisconnectGrace time.Duration
	// MaxAge is the absolute lifetime of a room
	MaxAge time.Duration
}

// DefaultConfig returns the default room expiry settings
func DefaultConfig() Config {
	return Config{
		DisconnectGrace: 5 * time.Minute,
		MaxAge:          time.Hour,
	}
}

// Controller coordinates two-player rooms
type Controller struct {
	storage  storage.Storage
	archive  storage.Archive
	scoring  scoring.ServiceInterface
	tiles    *tilebag.Service
	tokens   TokenIssuer
	notifier Notifier
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
	locks    *keylock.Locker
	config   Config
}

// NewController creates a new room Controller. archive may be nil.
func NewController(
	storage storage.Storage,
	archive storage.Archive,
	scoringService scoring.ServiceInterface,
	tiles *tilebag.Service,
	tokens TokenIssuer,
	notifier Notifier,
	clock clock.Clock,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Controller {
	defaults := DefaultConfig()
	if cfg.DisconnectGrace <= 0 {
		cfg.DisconnectGrace = defaults.DisconnectGrace
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = defaults.MaxAge
	}
	return &Controller{
		storage:  storage,
		archive:  archive,
		scoring:  scoringService,
		tiles:    tiles,
		tokens:   tokens,
		notifier: notifier,
		clock:    clock,
		random:   random,
		logger:   logger.With(slog.String("component", "room-controller")),
		locks:    keylock.New(),
		config:   cfg,
	}
}

// CreateRoom opens a room with the caller in the first seat
func (c *Controller) CreateRoom(ctx context.Context, conn Conn, name string) (*model.Room, model.PlayerID, error) {
	name, err := auth.NormalizeName(name)
	if err != nil {
		return nil, "", err
	}

	// the code's lock is held from the collision check until the room is saved
	var code model.RoomCode
	var unlock func()
	for {
		code = model.RoomCode(c.random.String(CodeLength, CodeAlphabet))
		unlock = c.locks.Lock(string(code))
		exists, err := c.storage.RoomExists(ctx, code)
		if err != nil {
			unlock()
			return nil, "", err
		}
		if !exists {
			break
		}
		unlock()
	}
	defer unlock()

	now := c.clock.Now()
	room := &model.Room{
		Code:        code,
		State:       model.RoomStateCreated,
		Board:       model.NewBoard(),
		Bag:         c.tiles.NewBag(),
		IsFirstMove: true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	seat, token, err := c.newSeat(room, name)
	if err != nil {
		return nil, "", err
	}
	room.Seats = append(room.Seats, seat)

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, "", err
	}

	c.notifier.Attach(code, seat.PlayerID, conn)
	conn.Send(protocol.RoomCreated{Code: string(code), PlayerID: string(seat.PlayerID), Token: token})
	conn.Send(protocol.NewGameState(room, 0))

	c.logger.Info("room created",
		slog.String("room_code", string(code)),
		slog.String("player_id", string(seat.PlayerID)),
	)
	return room, seat.PlayerID, nil
}

// JoinRoom seats the caller. A valid seat token reclaims that seat. An open room
// seats the caller second; a full room hands over a disconnected seat if it has one.
func (c *Controller) JoinRoom(ctx context.Context, conn Conn, code model.RoomCode, name, token string) (*model.Room, model.PlayerID, error) {
	code = NormalizeCode(code)
	unlock := c.locks.Lock(string(code))
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, "", err
	}

	if idx := c.seatForToken(room, token); idx >= 0 {
		return c.reconnect(ctx, conn, room, idx)
	}
	if room.IsFull() {
		if idx := room.DisconnectedSeat(); idx >= 0 {
			return c.reconnect(ctx, conn, room, idx)
		}
		return nil, "", model.ErrRoomFull
	}

	name, err = auth.NormalizeName(name)
	if err != nil {
		return nil, "", err
	}
	seat, seatToken, err := c.newSeat(room, name)
	if err != nil {
		return nil, "", err
	}
	room.Seats = append(room.Seats, seat)
	room.State = model.RoomStateStarted
	room.ExpiresAt = nil
	if err := c.save(ctx, room); err != nil {
		return nil, "", err
	}

	c.notifier.Attach(code, seat.PlayerID, conn)
	conn.Send(protocol.RoomJoined{Code: string(code), PlayerID: string(seat.PlayerID), Token: seatToken})
	c.broadcast(room, protocol.GameStarted{})
	c.broadcastState(room)

	c.logger.Info("room started",
		slog.String("room_code", string(code)),
		slog.String("player_id", string(seat.PlayerID)),
	)
	return room, seat.PlayerID, nil
}

func (c *Controller) seatForToken(room *model.Room, token string) int {
	if token == "" {
		return -1
	}
	for i := range room.Seats {
		if c.tokens.Verify(room.Seats[i].TokenHash, token) {
			return i
		}
	}
	return -1
}

// reconnect hands seat idx to conn, keeping its id, rack and score
func (c *Controller) reconnect(ctx context.Context, conn Conn, room *model.Room, idx int) (*model.Room, model.PlayerID, error) {
	seat := &room.Seats[idx]
	seat.Connected = true
	room.ExpiresAt = nil
	if err := c.save(ctx, room); err != nil {
		return nil, "", err
	}

	c.notifier.Attach(room.Code, seat.PlayerID, conn)
	conn.Send(protocol.Reconnected{PlayerID: string(seat.PlayerID)})
	c.broadcastState(room)

	c.logger.Info("player reconnected",
		slog.String("room_code", string(room.Code)),
		slog.String("player_id", string(seat.PlayerID)),
	)
	return room, seat.PlayerID, nil
}

func (c *Controller) newSeat(room *model.Room, name string) (model.Seat, string, error) {
	token, hash, err := c.tokens.Issue()
	if err != nil {
		return model.Seat{}, "", err
	}
	return model.Seat{
		PlayerID:  model.PlayerID("p_" + uuid.NewString()),
		Name:      name,
		Rack:      tilebag.Draw(room.Bag, model.RackSize),
		Connected: true,
		TokenHash: hash,
		JoinedAt:  c.clock.Now(),
	}, token, nil
}

// GetRoom retrieves a room by code
func (c *Controller) GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error) {
	return c.storage.GetRoom(ctx, NormalizeCode(code))
}

// ListRooms returns every live room
func (c *Controller) ListRooms(ctx context.Context) ([]*model.Room, error) {
	return c.storage.ListRooms(ctx)
}

// PlaceTiles plays a word for the player whose turn it is
func (c *Controller) PlaceTiles(ctx context.Context, code model.RoomCode, playerID model.PlayerID, tiles []model.PlacedTile) error {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	room, idx, err := c.playerTurn(ctx, code, playerID)
	if err != nil {
		return err
	}
	seat := &room.Seats[idx]

	placed, err := tilebag.Resolve(seat.Rack, tiles)
	if err != nil {
		return err
	}
	result, err := c.scoring.Evaluate(room.Board, placed, room.IsFirstMove)
	if err != nil {
		return err
	}

	room.Board.Apply(result.Placed)
	seat.Rack = tilebag.Refill(room.Bag, seat.Rack.Without(placedIDs(result.Placed)...))
	seat.Score += result.Score
	room.IsFirstMove = false
	room.ConsecutivePasses = 0
	room.History = append(room.History, model.MoveRecord{
		PlayerID:   seat.PlayerID,
		PlayerName: seat.Name,
		Type:       model.MoveTypePlay,
		Word:       result.MainWord(),
		Words:      result.WordList(),
		Score:      result.Score,
		Tiles:      result.Placed,
		TileCount:  len(result.Placed),
		CreatedAt:  c.clock.Now(),
	})

	if len(seat.Rack) == 0 && room.Bag.Len() == 0 {
		c.finish(ctx, room, func(s []scoring.Standing) { scoring.SettleRackOut(s, idx) })
	} else {
		room.CurrentTurn = (idx + 1) % len(room.Seats)
	}
	if err := c.save(ctx, room); err != nil {
		return err
	}

	c.logger.Info("move committed",
		slog.String("room_code", string(code)),
		slog.String("player_id", string(playerID)),
		slog.String("word", result.MainWord()),
		slog.Int("score", result.Score),
	)
	c.broadcast(room, protocol.MoveMade{Player: seat.Name, Word: result.MainWord(), Score: result.Score})
	c.broadcastState(room)
	return nil
}

// PassTurn gives up the player's turn
func (c *Controller) PassTurn(ctx context.Context, code model.RoomCode, playerID model.PlayerID) error {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	room, idx, err := c.playerTurn(ctx, code, playerID)
	if err != nil {
		return err
	}

	room.ConsecutivePasses++
	room.History = append(room.History, model.MoveRecord{
		PlayerID:   playerID,
		PlayerName: room.Seats[idx].Name,
		Type:       model.MoveTypePass,
		CreatedAt:  c.clock.Now(),
	})
	if room.ConsecutivePasses >= model.MaxConsecutivePasses {
		c.finish(ctx, room, scoring.SettlePasses)
	} else {
		room.CurrentTurn = (idx + 1) % len(room.Seats)
	}
	if err := c.save(ctx, room); err != nil {
		return err
	}
	c.broadcastState(room)
	return nil
}

// ExchangeTiles swaps rack tiles for fresh draws, using the player's turn
func (c *Controller) ExchangeTiles(ctx context.Context, code model.RoomCode, playerID model.PlayerID, ids []string) error {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	room, idx, err := c.playerTurn(ctx, code, playerID)
	if err != nil {
		return err
	}
	seat := &room.Seats[idx]

	rack, swapped, err := c.tiles.Exchange(room.Bag, seat.Rack, ids)
	if err != nil {
		return err
	}
	seat.Rack = rack
	room.ConsecutivePasses = 0
	room.CurrentTurn = (idx + 1) % len(room.Seats)
	room.History = append(room.History, model.MoveRecord{
		PlayerID:   playerID,
		PlayerName: seat.Name,
		Type:       model.MoveTypeExchange,
		TileCount:  swapped,
		CreatedAt:  c.clock.Now(),
	})
	if err := c.save(ctx, room); err != nil {
		return err
	}
	c.broadcastState(room)
	return nil
}

// Disconnect marks the player's seat as dropped. Stale connections that have
// already been replaced are ignored.
func (c *Controller) Disconnect(ctx context.Context, code model.RoomCode, playerID model.PlayerID, conn Conn) error {
	if !c.notifier.Detach(code, playerID, conn) {
		return nil
	}

	unlock := c.locks.Lock(string(code))
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return err
	}
	idx := room.SeatIndex(playerID)
	if idx < 0 {
		return nil
	}

	room.Seats[idx].Connected = false
	if room.AllDisconnected() {
		expires := c.clock.Now().Add(c.config.DisconnectGrace)
		room.ExpiresAt = &expires
	}
	if err := c.save(ctx, room); err != nil {
		return err
	}

	for i, seat := range room.Seats {
		if i != idx {
			c.notifier.Send(code, seat.PlayerID, protocol.OpponentDisconnected{})
		}
	}
	c.logger.Info("player disconnected",
		slog.String("room_code", string(code)),
		slog.String("player_id", string(playerID)),
		slog.Bool("room_abandoned", room.ExpiresAt != nil),
	)
	return nil
}

// playerTurn loads the room and checks that it is the player's move
func (c *Controller) playerTurn(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (*model.Room, int, error) {
	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, -1, err
	}
	idx := room.SeatIndex(playerID)
	switch {
	case idx < 0:
		return nil, -1, model.ErrNotInRoom
	case room.IsOver():
		return nil, -1, model.ErrGameOver
	case room.State != model.RoomStateStarted:
		return nil, -1, model.ErrRoomNotReady
	case room.CurrentTurn != idx:
		return nil, -1, model.ErrNotPlayerTurn
	}
	return room, idx, nil
}

// finish settles final scores, ends the game and archives the result
func (c *Controller) finish(ctx context.Context, room *model.Room, settle func([]scoring.Standing)) {
	standings := make([]scoring.Standing, len(room.Seats))
	for i, seat := range room.Seats {
		standings[i] = scoring.Standing{ID: string(seat.PlayerID), Score: seat.Score, Rack: seat.Rack}
	}
	settle(standings)
	for i := range room.Seats {
		room.Seats[i].Score = standings[i].Score
	}

	room.Winner = scoring.DetermineWinner(standings)
	winnerName := model.WinnerTie
	if room.Winner == "" {
		room.Winner = model.WinnerTie
	} else if idx := room.SeatIndex(model.PlayerID(room.Winner)); idx >= 0 {
		winnerName = room.Seats[idx].Name
	}
	room.State = model.RoomStateGameOver

	c.logger.Info("room game over",
		slog.String("room_code", string(room.Code)),
		slog.String("winner", room.Winner),
	)

	if c.archive == nil {
		return
	}
	result := &model.GameResult{
		Mode:       model.GameModeRoom,
		Reference:  string(room.Code),
		Winner:     winnerName,
		Moves:      len(room.History),
		FinishedAt: c.clock.Now(),
	}
	for _, seat := range room.Seats {
		result.Players = append(result.Players, model.ResultEntry{Name: seat.Name, Score: seat.Score})
	}
	if err := c.archive.RecordResult(ctx, result); err != nil {
		c.logger.Error("failed to archive result",
			slog.String("room_code", string(room.Code)),
			slog.String("error", err.Error()),
		)
	}
}

func (c *Controller) broadcast(room *model.Room, msg protocol.ServerMessage) {
	for _, seat := range room.Seats {
		c.notifier.Send(room.Code, seat.PlayerID, msg)
	}
}

// broadcastState sends each seat its own snapshot
func (c *Controller) broadcastState(room *model.Room) {
	for i, seat := range room.Seats {
		c.notifier.Send(room.Code, seat.PlayerID, protocol.NewGameState(room, i))
	}
}

func (c *Controller) save(ctx context.Context, room *model.Room) error {
	room.UpdatedAt = c.clock.Now()
	return c.storage.SaveRoom(ctx, room)
}

// NormalizeCode canonicalises a user-entered room code
func NormalizeCode(code model.RoomCode) model.RoomCode {
	return model.RoomCode(strings.ToUpper(strings.TrimSpace(string(code))))
}

func placedIDs(placed []model.PlacedTile) []string {
	ids := make([]string, len(placed))
	for i, p := range placed {
		ids[i] = p.ID
	}
	return ids
}

// Interface for dependency injection
type ControllerInterface interface {
	CreateRoom(ctx context.Context, conn Conn, name string) (*model.Room, model.PlayerID, error)
	JoinRoom(ctx context.Context, conn Conn, code model.RoomCode, name, token string) (*model.Room, model.PlayerID, error)
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	ListRooms(ctx context.Context) ([]*model.Room, error)
	PlaceTiles(ctx context.Context, code model.RoomCode, playerID model.PlayerID, tiles []model.PlacedTile) error
	PassTurn(ctx context.Context, code model.RoomCode, playerID model.PlayerID) error
	ExchangeTiles(ctx context.Context, code model.RoomCode, playerID model.PlayerID, ids []string) error
	Disconnect(ctx context.Context, code model.RoomCode, playerID model.PlayerID, conn Conn) error
	Sweep(ctx context.Context) (int, error)
	RunSweeper(ctx context.Context, interval time.Duration) error
}

var _ ControllerInterface = (*Controller)(nil)
