package auth

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"lukechampine.com/frand"

	"github.com/mcoot/wordgame-go/internal/dependencies/clock"
	"github.com/mcoot/wordgame-go/internal/model"
)

// MaxNameLength bounds display names
const MaxNameLength = 20

const issuer = "wordgame"

// Session is a validated guest session
type Session struct {
	Token     string
	Player    model.Player
	ExpiresAt time.Time
}

// Config holds configuration for the auth service
type Config struct {
	// Secret signs session tokens. A random secret is generated when empty,
	// which invalidates sessions on restart.
	Secret          string
	SessionDuration time.Duration
}

// DefaultConfig returns default auth configuration
func DefaultConfig() Config {
	return Config{
		SessionDuration: 24 * time.Hour,
	}
}

type sessionClaims struct {
	Name string `json:"name"`
	jwt.RegisteredClaims
}

// Service issues and validates stateless guest sessions
type Service struct {
	clock           clock.Clock
	secret          []byte
	sessionDuration time.Duration
}

// New creates a new AuthService
func New(clock clock.Clock, cfg Config) *Service {
	if cfg.SessionDuration == 0 {
		cfg.SessionDuration = DefaultConfig().SessionDuration
	}
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = frand.Bytes(32)
	}
	return &Service{
		clock:           clock,
		secret:          secret,
		sessionDuration: cfg.SessionDuration,
	}
}

// NormalizeName trims a display name and checks its length
func NormalizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", model.ErrInvalidName
	}
	return name, nil
}

// CreateGuest creates an anonymous player and signs a session token for it
func (s *Service) CreateGuest(displayName string) (*Session, error) {
	name, err := NormalizeName(displayName)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	player := model.Player{
		ID:          model.PlayerID("p_" + uuid.NewString()),
		DisplayName: name,
		IsGuest:     true,
		CreatedAt:   now.Truncate(time.Second),
	}
	expires := now.Add(s.sessionDuration).Truncate(time.Second)

	claims := sessionClaims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   string(player.ID),
			IssuedAt:  jwt.NewNumericDate(player.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, err
	}

	return &Session{Token: token, Player: player, ExpiresAt: expires}, nil
}

// ValidateSession checks a session token and returns the session it carries
func (s *Service) ValidateSession(token string) (*Session, error) {
	if token == "" {
		return nil, model.ErrInvalidSession
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" {
		return nil, errors.Join(model.ErrInvalidSession, err)
	}

	session := &Session{
		Token: token,
		Player: model.Player{
			ID:          model.PlayerID(claims.Subject),
			DisplayName: claims.Name,
			IsGuest:     true,
		},
		ExpiresAt: claims.ExpiresAt.Time.UTC(),
	}
	if claims.IssuedAt != nil {
		session.Player.CreatedAt = claims.IssuedAt.Time.UTC()
	}
	return session, nil
}

// GetPlayer returns the player for a session token
func (s *Service) GetPlayer(token string) (*model.Player, error) {
	session, err := s.ValidateSession(token)
	if err != nil {
		return nil, err
	}
	return &session.Player, nil
}

// Interface for dependency injection
type ServiceInterface interface {
	CreateGuest(displayName string) (*Session, error)
	ValidateSession(token string) (*Session, error)
	GetPlayer(token string) (*model.Player, error)
}

var _ ServiceInterface = (*Service)(nil)
