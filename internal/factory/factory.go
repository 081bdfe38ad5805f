package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/wordgame-go/internal/config"
	"github.com/mcoot/wordgame-go/internal/dependencies/clock"
	"github.com/mcoot/wordgame-go/internal/dependencies/random"
	"github.com/mcoot/wordgame-go/internal/dependencies/scheduler"
	"github.com/mcoot/wordgame-go/internal/services/auth"
	"github.com/mcoot/wordgame-go/internal/services/board"
	"github.com/mcoot/wordgame-go/internal/services/bot"
	"github.com/mcoot/wordgame-go/internal/services/dictionary"
	"github.com/mcoot/wordgame-go/internal/services/game"
	"github.com/mcoot/wordgame-go/internal/services/room"
	"github.com/mcoot/wordgame-go/internal/services/scoring"
	"github.com/mcoot/wordgame-go/internal/services/tilebag"
	"github.com/mcoot/wordgame-go/internal/storage"
	"github.com/mcoot/wordgame-go/internal/storage/memory"
	redisstorage "github.com/mcoot/wordgame-go/internal/storage/redis"
	"github.com/mcoot/wordgame-go/internal/storage/sqlite"
	"github.com/mcoot/wordgame-go/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = config.StorageMemory
	StorageTypeRedis  = config.StorageRedis
)

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage
	Archive storage.Archive

	// External dependencies
	Clock     clock.Clock
	Random    random.Random
	Scheduler scheduler.Scheduler

	// Services
	DictionaryService *dictionary.Service
	BoardService      *board.Service
	ScoringService    *scoring.Service
	TileBagService    *tilebag.Service
	BotService        *bot.Service
	GameController    *game.Controller
	RoomController    *room.Controller
	AuthService       *auth.Service
	HubManager        *ws.HubManager
	WSHandler         *ws.Handler

	closers []io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// DictionaryPath is the path to the dictionary file (optional)
	// If empty, words saved in storage or the embedded list are used
	DictionaryPath string
	// AuthConfig holds configuration for the auth service (optional)
	// If zero value, defaults to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// ArchivePath is the sqlite results database; empty keeps results in memory
	ArchivePath string
	// GameConfig sets the AI thinking delay. The zero value plays the AI immediately.
	GameConfig     game.Config
	RoomConfig     room.Config
	BotConfig      bot.Config
	AllowedOrigins []string
}

// FromSettings maps loaded server settings onto a factory Config
func FromSettings(s *config.Config, logger *slog.Logger) Config {
	cfg := Config{
		DictionaryPath: s.DictionaryPath,
		AuthConfig:     auth.Config{Secret: s.SessionSecret, SessionDuration: s.SessionDuration},
		Logger:         logger,
		StorageType:    s.StorageType,
		ArchivePath:    s.ArchivePath,
		GameConfig:     game.Config{ThinkMin: s.AIThinkMin, ThinkMax: s.AIThinkMax},
		RoomConfig:     room.Config{DisconnectGrace: s.DisconnectGrace, MaxAge: s.RoomMaxAge},
		BotConfig:      bot.Config{MaxNewTiles: s.AIMaxNewTiles},
		AllowedOrigins: s.AllowedOrigins,
	}
	if s.StorageType == StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = s.RedisURL
		redisCfg.KeyPrefix = s.RedisKeyPrefix
		// Rooms outlive their max age only until the sweeper catches them
		redisCfg.RoomTTL = s.RoomMaxAge + s.SweepInterval
		cfg.RedisConfig = &redisCfg
	}
	return cfg
}

// New creates a new application with all dependencies wired and the dictionary loaded
func New(ctx context.Context, cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var closers []io.Closer

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		store = redisStore
		closers = append(closers, redisStore)
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	var archive storage.Archive
	if cfg.ArchivePath == "" {
		archive = memory.NewArchive()
	} else {
		db, err := sqlite.Open(ctx, cfg.ArchivePath)
		if err != nil {
			closeAll(closers)
			return nil, fmt.Errorf("open archive: %w", err)
		}
		archive = db
		closers = append(closers, db)
	}

	authCfg := cfg.AuthConfig
	if authCfg.SessionDuration == 0 {
		authCfg.SessionDuration = auth.DefaultConfig().SessionDuration
	}

	app := newWithDependencies(dependencies{
		storage:        store,
		archive:        archive,
		clock:          clock.New(),
		random:         random.New(),
		scheduler:      scheduler.New(),
		authConfig:     authCfg,
		gameConfig:     cfg.GameConfig,
		roomConfig:     cfg.RoomConfig,
		botConfig:      cfg.BotConfig,
		allowedOrigins: cfg.AllowedOrigins,
		logger:         logger,
	})
	app.closers = closers

	if err := app.DictionaryService.Load(ctx, cfg.DictionaryPath); err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("load dictionary: %w", err)
	}

	return app, nil
}

// Close releases storage connections
func (a *App) Close() error {
	return closeAll(a.closers)
}

func closeAll(closers []io.Closer) error {
	var errs []error
	for _, c := range closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

type dependencies struct {
	storage        storage.Storage
	archive        storage.Archive
	clock          clock.Clock
	random         random.Random
	scheduler      scheduler.Scheduler
	authConfig     auth.Config
	gameConfig     game.Config
	roomConfig     room.Config
	botConfig      bot.Config
	seatTokenCost  int
	allowedOrigins []string
	logger         *slog.Logger
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(d dependencies) *App {
	dictService := dictionary.New(d.storage)
	boardService := board.New()
	scoringService := scoring.New(dictService, boardService)
	tileBag := tilebag.New(d.random)
	botService := bot.NewService(scoringService, dictService, bot.DefaultStrategies(d.random), d.botConfig, d.logger)
	gameController := game.NewController(
		d.storage, d.archive, scoringService, tileBag, botService,
		d.scheduler, d.clock, d.random, d.gameConfig, d.logger,
	)
	hubManager := ws.NewHubManager(d.logger)
	roomController := room.NewController(
		d.storage, d.archive, scoringService, tileBag, auth.NewSeatTokens(d.seatTokenCost),
		hubManager, d.clock, d.random, d.roomConfig, d.logger,
	)
	authService := auth.New(d.clock, d.authConfig)

	return &App{
		Storage:           d.storage,
		Archive:           d.archive,
		Clock:             d.clock,
		Random:            d.random,
		Scheduler:         d.scheduler,
		DictionaryService: dictService,
		BoardService:      boardService,
		ScoringService:    scoringService,
		TileBagService:    tileBag,
		BotService:        botService,
		GameController:    gameController,
		RoomController:    roomController,
		AuthService:       authService,
		HubManager:        hubManager,
		WSHandler:         ws.NewHandler(roomController, d.allowedOrigins, d.logger),
	}
}
