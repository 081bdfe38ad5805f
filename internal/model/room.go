package model

import "time"

// RoomCode is a human-readable identifier for joining rooms
type RoomCode string

// RoomState represents the lifecycle of a multiplayer room
type RoomState string

const (
	RoomStateCreated  RoomState = "created"   // one player seated
	RoomStateStarted  RoomState = "started"   // two players seated, game in progress
	RoomStateGameOver RoomState = "game_over" // finished, idle until swept
)

// MaxSeats is the number of players in a room
const MaxSeats = 2

// Seat is one player's slot in a room
type Seat struct {
	PlayerID  PlayerID
	Name      string
	Rack      Rack
	Score     int
	Connected bool
	TokenHash string // bcrypt hash of the seat reconnect token
	JoinedAt  time.Time
}

// Room is a two-player game owned by the server
type Room struct {
	Code  RoomCode
	State RoomState
	Seats []Seat

	Board *Board
	Bag   *Bag

	CurrentTurn       int // index into Seats
	IsFirstMove       bool
	ConsecutivePasses int
	History           []MoveRecord
	Winner            string // winning player id, WinnerTie, or empty

	CreatedAt time.Time
	UpdatedAt time.Time
	ExpiresAt *time.Time // set once every seat is disconnected
}

// SeatIndex returns the seat index of the player, or -1
func (r *Room) SeatIndex(playerID PlayerID) int {
	for i := range r.Seats {
		if r.Seats[i].PlayerID == playerID {
			return i
		}
	}
	return -1
}

// IsFull returns true when both seats are taken
func (r *Room) IsFull() bool {
	return len(r.Seats) >= MaxSeats
}

// IsOver returns true once the room's game has been settled
func (r *Room) IsOver() bool {
	return r.State == RoomStateGameOver
}

// CurrentPlayer returns the id of the player whose turn it is
func (r *Room) CurrentPlayer() PlayerID {
	if r.CurrentTurn < 0 || r.CurrentTurn >= len(r.Seats) {
		return ""
	}
	return r.Seats[r.CurrentTurn].PlayerID
}

// DisconnectedSeat returns the index of the first disconnected seat, or -1
func (r *Room) DisconnectedSeat() int {
	for i := range r.Seats {
		if !r.Seats[i].Connected {
			return i
		}
	}
	return -1
}

// AllDisconnected returns true when no seat has a live connection
func (r *Room) AllDisconnected() bool {
	for i := range r.Seats {
		if r.Seats[i].Connected {
			return false
		}
	}
	return true
}

// TileCount counts every tile the room owns, which is always TotalTiles
func (r *Room) TileCount() int {
	n := r.Bag.Len() + r.Board.TileCount()
	for _, s := range r.Seats {
		n += len(s.Rack)
	}
	return n
}
