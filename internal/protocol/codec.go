package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnknownMessage is returned for a well-formed message with an unrecognised type
var ErrUnknownMessage = errors.New("unknown message type")

type envelope struct {
	Type string `json:"type"`
}

// Encode marshals a message with its type discriminator as the first field
func Encode(msg Message) ([]byte, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("message %s does not encode as an object", msg.MessageType())
	}

	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	typ, _ := json.Marshal(msg.MessageType())
	buf.Write(typ)
	if rest := body[1:]; len(rest) > 1 {
		buf.WriteByte(',')
		buf.Write(rest)
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

// DecodeClient parses a client message
func DecodeClient(data []byte) (ClientMessage, error) {
	typ, err := peekType(data)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeCreateRoom:
		return decodeAs[CreateRoom](data)
	case TypeJoinRoom:
		return decodeAs[JoinRoom](data)
	case TypePlaceTiles:
		return decodeAs[PlaceTiles](data)
	case TypePassTurn:
		return PassTurn{}, nil
	case TypeExchangeTiles:
		return decodeAs[ExchangeTiles](data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, typ)
}

// DecodeServer parses a server message
func DecodeServer(data []byte) (ServerMessage, error) {
	typ, err := peekType(data)
	if err != nil {
		return nil, err
	}
	switch typ {
	case TypeRoomCreated:
		return decodeAs[RoomCreated](data)
	case TypeRoomJoined:
		return decodeAs[RoomJoined](data)
	case TypeReconnected:
		return decodeAs[Reconnected](data)
	case TypeGameStarted:
		return GameStarted{}, nil
	case TypeGameState:
		return decodeAs[GameState](data)
	case TypeMoveMade:
		return decodeAs[MoveMade](data)
	case TypeMoveRejected:
		return decodeAs[MoveRejected](data)
	case TypeOpponentDisconnected:
		return OpponentDisconnected{}, nil
	case TypeError:
		return decodeAs[Error](data)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, typ)
}

func peekType(data []byte) (string, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return "", err
	}
	if env.Type == "" {
		return "", fmt.Errorf("%w: missing type", ErrUnknownMessage)
	}
	return env.Type, nil
}

func decodeAs[T any](data []byte) (T, error) {
	var msg T
	err := json.Unmarshal(data, &msg)
	return msg, err
}
