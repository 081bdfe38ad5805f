package redis

import (
	"fmt"

	"github.com/mcoot/wordgame-go/internal/model"
)

// roomKey returns the Redis key for a Room
func (s *Storage) roomKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:room:%s", s.cfg.KeyPrefix, code)
}

// roomIndexKey returns the Redis key for the SET of live room codes
func (s *Storage) roomIndexKey() string {
	return fmt.Sprintf("%s:idx:rooms", s.cfg.KeyPrefix)
}

// gameKey returns the Redis key for a Game
func (s *Storage) gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", s.cfg.KeyPrefix, id)
}

// dictionaryKey returns the Redis key for the dictionary word set
func (s *Storage) dictionaryKey() string {
	return fmt.Sprintf("%s:dictionary", s.cfg.KeyPrefix)
}
