// Package protocol defines the JSON messages exchanged with room clients over a
// websocket. Every message is an object with a "type" discriminator.
package protocol

// Message types
const (
	TypeCreateRoom    = "create_room"
	TypeJoinRoom      = "join_room"
	TypePlaceTiles    = "place_tiles"
	TypePassTurn      = "pass_turn"
	TypeExchangeTiles = "exchange_tiles"

	TypeRoomCreated          = "room_created"
	TypeRoomJoined           = "room_joined"
	TypeReconnected          = "reconnected"
	TypeGameStarted          = "game_started"
	TypeGameState            = "game_state"
	TypeMoveMade             = "move_made"
	TypeMoveRejected         = "move_rejected"
	TypeOpponentDisconnected = "opponent_disconnected"
	TypeError                = "error"
)

// Message is any protocol message
type Message interface {
	MessageType() string
}

// ClientMessage is a message sent by a client
type ClientMessage interface {
	Message
	clientMessage()
}

// ServerMessage is a message sent by the server
type ServerMessage interface {
	Message
	serverMessage()
}

// Tile is a tile as seen on the wire. Row and Col are only meaningful in placements.
type Tile struct {
	ID      string `json:"id"`
	Letter  string `json:"letter"`
	Value   int    `json:"value"`
	IsBlank bool   `json:"isBlank"`
	Row     int    `json:"row"`
	Col     int    `json:"col"`
}

// Client messages

type CreateRoom struct {
	Name string `json:"name"`
}

type JoinRoom struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

type PlaceTiles struct {
	Tiles []Tile `json:"tiles"`
}

type PassTurn struct{}

type ExchangeTiles struct {
	TileIDs []string `json:"tileIds"`
}

func (CreateRoom) MessageType() string    { return TypeCreateRoom }
func (JoinRoom) MessageType() string      { return TypeJoinRoom }
func (PlaceTiles) MessageType() string    { return TypePlaceTiles }
func (PassTurn) MessageType() string      { return TypePassTurn }
func (ExchangeTiles) MessageType() string { return TypeExchangeTiles }

func (CreateRoom) clientMessage()    {}
func (JoinRoom) clientMessage()      {}
func (PlaceTiles) clientMessage()    {}
func (PassTurn) clientMessage()      {}
func (ExchangeTiles) clientMessage() {}

// Server messages

// RoomCreated answers create_room. Token reclaims the seat on a later join_room.
type RoomCreated struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
}

type RoomJoined struct {
	Code     string `json:"code"`
	PlayerID string `json:"playerId"`
	Token    string `json:"token"`
}

type Reconnected struct {
	PlayerID string `json:"playerId"`
}

type GameStarted struct{}

type MoveMade struct {
	Player string `json:"player"`
	Word   string `json:"word"`
	Score  int    `json:"score"`
}

type MoveRejected struct {
	Error string `json:"error"`
}

type OpponentDisconnected struct{}

type Error struct {
	Message string `json:"message"`
}

func (RoomCreated) MessageType() string          { return TypeRoomCreated }
func (RoomJoined) MessageType() string           { return TypeRoomJoined }
func (Reconnected) MessageType() string          { return TypeReconnected }
func (GameStarted) MessageType() string          { return TypeGameStarted }
func (GameState) MessageType() string            { return TypeGameState }
func (MoveMade) MessageType() string             { return TypeMoveMade }
func (MoveRejected) MessageType() string         { return TypeMoveRejected }
func (OpponentDisconnected) MessageType() string { return TypeOpponentDisconnected }
func (Error) MessageType() string                { return TypeError }

func (RoomCreated) serverMessage()          {}
func (RoomJoined) serverMessage()           {}
func (Reconnected) serverMessage()          {}
func (GameStarted) serverMessage()          {}
func (GameState) serverMessage()            {}
func (MoveMade) serverMessage()             {}
func (MoveRejected) serverMessage()         {}
func (OpponentDisconnected) serverMessage() {}
func (Error) serverMessage()                {}
