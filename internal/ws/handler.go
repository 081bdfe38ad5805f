// Package ws serves multiplayer rooms over websockets.
package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gorilla/websocket"

	"github.com/mcoot/wordgame-go/internal/model"
	"github.com/mcoot/wordgame-go/internal/protocol"
	"github.com/mcoot/wordgame-go/internal/services/room"
)

// operationTimeout bounds the handling of one client message
const operationTimeout = 5 * time.Second

var errAlreadySeated = errors.New("already in a room")

// RoomService is the part of the room controller the handler drives
type RoomService interface {
	CreateRoom(ctx context.Context, conn room.Conn, name string) (*model.Room, model.PlayerID, error)
	JoinRoom(ctx context.Context, conn room.Conn, code model.RoomCode, name, token string) (*model.Room, model.PlayerID, error)
	PlaceTiles(ctx context.Context, code model.RoomCode, playerID model.PlayerID, tiles []model.PlacedTile) error
	PassTurn(ctx context.Context, code model.RoomCode, playerID model.PlayerID) error
	ExchangeTiles(ctx context.Context, code model.RoomCode, playerID model.PlayerID, ids []string) error
	Disconnect(ctx context.Context, code model.RoomCode, playerID model.PlayerID, conn room.Conn) error
}

// Handler upgrades HTTP requests and runs one session per connection
type Handler struct {
	rooms    RoomService
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a Handler. allowedOrigins may contain "*"; when empty only
// same-origin browsers (and clients sending no Origin) are accepted.
func NewHandler(rooms RoomService, allowedOrigins []string, logger *slog.Logger) *Handler {
	h := &Handler{
		rooms:  rooms,
		logger: logger.With(slog.String("component", "ws-handler")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	if len(allowedOrigins) > 0 {
		h.upgrader.CheckOrigin = originChecker(allowedOrigins)
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	hosts := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		hosts[strings.ToLower(strings.TrimSuffix(o, "/"))] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return hosts[strings.ToLower(u.Scheme+"://"+u.Host)]
	}
}

// ServeHTTP handles the websocket endpoint
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		h.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := newClient(conn, h.logger)
	sess := &session{handler: h, client: client}
	go client.writePump()

	client.readPump(func(data []byte) { sess.handle(r.Context(), data) })

	client.Close()
	sess.disconnect()
	h.logger.Debug("ws session ended", slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

// session is the seat a connection holds, if any
type session struct {
	handler *Handler
	client  *Client

	mu       sync.Mutex
	code     model.RoomCode
	playerID model.PlayerID
}

func (s *session) seat() (model.RoomCode, model.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code, s.playerID
}

func (s *session) bind(code model.RoomCode, playerID model.PlayerID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.code, s.playerID = code, playerID
}

// handle dispatches one frame. Malformed frames are ignored; failures are
// reported to this client only.
func (s *session) handle(parent context.Context, data []byte) {
	logger := s.handler.logger
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic handling ws message", slog.Any("panic", rec))
			s.client.Send(protocol.Error{Message: "Internal server error"})
		}
	}()

	msg, err := protocol.DecodeClient(data)
	if err != nil {
		logger.Debug("ignoring malformed ws message", slog.String("error", err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(parent, operationTimeout)
	defer cancel()

	if err := s.dispatch(ctx, msg); err != nil {
		code, player := s.seat()
		logger.Info("ws request rejected",
			slog.String("type", msg.MessageType()),
			slog.String("room_code", string(code)),
			slog.String("player_id", string(player)),
			slog.String("error", err.Error()),
		)
		s.client.Send(Classify(err))
	}
}

func (s *session) dispatch(ctx context.Context, msg protocol.ClientMessage) error {
	rooms := s.handler.rooms
	code, player := s.seat()

	switch m := msg.(type) {
	case protocol.CreateRoom:
		if player != "" {
			return errAlreadySeated
		}
		r, id, err := rooms.CreateRoom(ctx, s.client, m.Name)
		if err != nil {
			return err
		}
		s.bind(r.Code, id)
	case protocol.JoinRoom:
		if player != "" {
			return errAlreadySeated
		}
		r, id, err := rooms.JoinRoom(ctx, s.client, model.RoomCode(m.Code), m.Name, m.Token)
		if err != nil {
			return err
		}
		s.bind(r.Code, id)
	case protocol.PlaceTiles:
		if player == "" {
			return model.ErrNotInRoom
		}
		return rooms.PlaceTiles(ctx, code, player, protocol.Placements(m.Tiles))
	case protocol.PassTurn:
		if player == "" {
			return model.ErrNotInRoom
		}
		return rooms.PassTurn(ctx, code, player)
	case protocol.ExchangeTiles:
		if player == "" {
			return model.ErrNotInRoom
		}
		return rooms.ExchangeTiles(ctx, code, player, m.TileIDs)
	}
	return nil
}

func (s *session) disconnect() {
	code, player := s.seat()
	if player == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()
	if err := s.handler.rooms.Disconnect(ctx, code, player, s.client); err != nil && !errors.Is(err, model.ErrRoomNotFound) {
		s.handler.logger.Error("failed to record disconnect",
			slog.String("room_code", string(code)),
			slog.String("player_id", string(player)),
			slog.String("error", err.Error()),
		)
	}
}

// Classify turns a room error into the message the client sees. Placement and
// word failures reject the move; everything else is a plain error.
func Classify(err error) protocol.ServerMessage {
	text := capitalize(err.Error())
	if model.IsPlacementError(err) {
		return protocol.MoveRejected{Error: text}
	}
	var known bool
	for _, target := range []error{
		model.ErrNotPlayerTurn, model.ErrTileNotInRack, model.ErrBagTooSmall, model.ErrNoTilesToExchange,
		model.ErrGameOver, model.ErrRoomNotFound, model.ErrRoomFull, model.ErrNotInRoom,
		model.ErrRoomNotReady, model.ErrInvalidName, errAlreadySeated,
	} {
		if errors.Is(err, target) {
			known = true
			break
		}
	}
	if !known {
		text = "Internal server error"
	}
	return protocol.Error{Message: text}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
