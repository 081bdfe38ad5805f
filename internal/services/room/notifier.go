package room

import (
	"github.com/mcoot/wordgame-go/internal/model"
	"github.com/mcoot/wordgame-go/internal/protocol"
)

// Conn is one client connection. Send must not block.
type Conn interface {
	Send(msg protocol.ServerMessage)
}

// Notifier routes messages to the live connection of each seat
type Notifier interface {
	// Attach makes conn the seat's current connection, replacing any previous one
	Attach(code model.RoomCode, playerID model.PlayerID, conn Conn)
	// Detach forgets conn and reports whether it was still the seat's current connection
	Detach(code model.RoomCode, playerID model.PlayerID, conn Conn) bool
	// Send delivers msg to the seat's connection, if any
	Send(code model.RoomCode, playerID model.PlayerID, msg protocol.ServerMessage)
	// Close forgets every connection of a room
	Close(code model.RoomCode)
}

// TokenIssuer creates and checks seat reconnect tokens
type TokenIssuer interface {
	Issue() (token, hash string, err error)
	Verify(hash, token string) bool
}
