package auth

import (
	"encoding/base64"

	"golang.org/x/crypto/bcrypt"
	"lukechampine.com/frand"
)

// SeatTokens issues the secrets that let a player reclaim a room seat.
// Only the bcrypt hash is stored with the room.
type SeatTokens struct {
	cost int
}

// NewSeatTokens creates a SeatTokens hashing at the given bcrypt cost;
// zero uses bcrypt.DefaultCost
func NewSeatTokens(cost int) *SeatTokens {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &SeatTokens{cost: cost}
}

// Issue returns a new token and the hash to store
func (t *SeatTokens) Issue() (token, hash string, err error) {
	token = base64.RawURLEncoding.EncodeToString(frand.Bytes(18))
	h, err := bcrypt.GenerateFromPassword([]byte(token), t.cost)
	if err != nil {
		return "", "", err
	}
	return token, string(h), nil
}

// Verify reports whether token matches hash
func (t *SeatTokens) Verify(hash, token string) bool {
	if hash == "" || token == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}
