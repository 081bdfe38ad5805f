package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/wordgame-go/internal/api/handler"
	"github.com/mcoot/wordgame-go/internal/api/middleware"
	"github.com/mcoot/wordgame-go/internal/services/auth"
	"github.com/mcoot/wordgame-go/internal/services/game"
	"github.com/mcoot/wordgame-go/internal/services/room"
	"github.com/mcoot/wordgame-go/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger         *slog.Logger
	AuthService    auth.ServiceInterface
	GameController game.ControllerInterface
	RoomController room.ControllerInterface
	Archive        storage.Archive
	// WSHandler serves /ws; the route is omitted when nil
	WSHandler http.Handler
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	playerHandler := handler.NewPlayerHandler(cfg.AuthService)
	gameHandler := handler.NewGameHandler(cfg.GameController)
	roomHandler := handler.NewRoomHandler(cfg.RoomController, cfg.Archive)

	authMiddleware := middleware.Auth(cfg.AuthService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)

	r.HandleFunc("/health", healthHandler).Methods(http.MethodGet)
	if cfg.WSHandler != nil {
		r.Handle("/ws", cfg.WSHandler).Methods(http.MethodGet)
	}

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/health", healthHandler).Methods(http.MethodGet)

	// Player routes (no auth required for creating a guest)
	api.HandleFunc("/players/guest", playerHandler.CreateGuest).Methods(http.MethodPost)

	playerProtected := api.PathPrefix("/players").Subrouter()
	playerProtected.Use(authMiddleware)
	playerProtected.HandleFunc("/me", playerHandler.GetMe).Methods(http.MethodGet)

	// Single-player games (all require auth)
	games := api.PathPrefix("/games").Subrouter()
	games.Use(authMiddleware)
	games.HandleFunc("", gameHandler.Create).Methods(http.MethodPost)
	games.HandleFunc("/{id}", gameHandler.Get).Methods(http.MethodGet)
	games.HandleFunc("/{id}/pending", gameHandler.SetPending).Methods(http.MethodPut)
	games.HandleFunc("/{id}/pending", gameHandler.RecallPending).Methods(http.MethodDelete)
	games.HandleFunc("/{id}/moves", gameHandler.Submit).Methods(http.MethodPost)
	games.HandleFunc("/{id}/pass", gameHandler.Pass).Methods(http.MethodPost)
	games.HandleFunc("/{id}/exchange", gameHandler.Exchange).Methods(http.MethodPost)

	// Public listings
	api.HandleFunc("/rooms", roomHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/results", roomHandler.Results).Methods(http.MethodGet)

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
