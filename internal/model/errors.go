package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound = errors.New("player not found")
	ErrInvalidSession = errors.New("invalid or expired session")
	ErrInvalidName    = errors.New("display name must be 1-20 characters")

	// Room errors
	ErrRoomNotFound = errors.New("room not found")
	ErrRoomFull     = errors.New("room is full")
	ErrNotInRoom    = errors.New("not in a room")
	ErrRoomNotReady = errors.New("waiting for an opponent")

	// Game errors
	ErrGameNotFound      = errors.New("game not found")
	ErrNotGameOwner      = errors.New("player does not own this game")
	ErrNotPlayerTurn     = errors.New("not your turn")
	ErrGameOver          = errors.New("game is over")
	ErrTileNotInRack     = errors.New("tile not in rack")
	ErrInvalidBlank      = errors.New("blank tiles must be assigned a letter A-Z")
	ErrBagTooSmall       = errors.New("not enough tiles in bag to exchange")
	ErrNoTilesToExchange = errors.New("no tiles selected for exchange")
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	// Placement errors, in validation order
	ErrNoTilesPlaced     = errors.New("no tiles placed")
	ErrNotInLine         = errors.New("tiles must be in a single row or column")
	ErrInvalidPosition   = errors.New("tile is off the board")
	ErrCellOccupied      = errors.New("cell is already occupied")
	ErrFirstMoveCenter   = errors.New("first word must cover the center square")
	ErrFirstMoveTooShort = errors.New("first word must be at least 2 letters")
	ErrNotConnected      = errors.New("tiles must connect to existing tiles")
	ErrPlacementGap      = errors.New("tiles must not have gaps")

	// Word errors
	ErrInvalidWord  = errors.New("invalid word")
	ErrNoWordFormed = errors.New("placement must form a word of at least 2 letters")

	// Dictionary errors
	ErrDictionaryNotLoaded = errors.New("dictionary not loaded")
)

// IsPlacementError returns true for errors a client should see as a rejected move
func IsPlacementError(err error) bool {
	for _, target := range []error{
		ErrNoTilesPlaced, ErrNotInLine, ErrInvalidPosition, ErrCellOccupied,
		ErrFirstMoveCenter, ErrFirstMoveTooShort, ErrNotConnected, ErrPlacementGap,
		ErrInvalidWord, ErrNoWordFormed, ErrInvalidBlank,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
