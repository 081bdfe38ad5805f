package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/samber/lo"

	"github.com/mcoot/wordgame-go/internal/api/apierr"
	"github.com/mcoot/wordgame-go/internal/api/middleware"
	"github.com/mcoot/wordgame-go/internal/api/request"
	"github.com/mcoot/wordgame-go/internal/api/response"
	"github.com/mcoot/wordgame-go/internal/model"
	"github.com/mcoot/wordgame-go/internal/services/game"
)

// GameHandler handles single-player game endpoints
type GameHandler struct {
	gameController game.ControllerInterface
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameController game.ControllerInterface) *GameHandler {
	return &GameHandler{
		gameController: gameController,
	}
}

// Create handles POST /api/v1/games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.NewGameRequest
	if err := decodeOptional(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	g, err := h.gameController.NewGame(r.Context(), player, model.Difficulty(req.Difficulty))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.GameFromModel(g))
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	g, err := h.gameController.GetGame(r.Context(), gameID(r))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	if g.PlayerID != player.ID {
		apierr.WriteError(w, model.ErrNotGameOwner)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// SetPending handles PUT /api/v1/games/{id}/pending
func (h *GameHandler) SetPending(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.PlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	g, err := h.gameController.SetPending(r.Context(), gameID(r), player.ID, placements(req.Tiles))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// RecallPending handles DELETE /api/v1/games/{id}/pending
func (h *GameHandler) RecallPending(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	g, err := h.gameController.RecallPending(r.Context(), gameID(r), player.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Submit handles POST /api/v1/games/{id}/moves
func (h *GameHandler) Submit(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.PlaceRequest
	if err := decodeOptional(r, &req); err != nil {
		apierr.WriteError(w, err)
		return
	}

	g, err := h.gameController.SubmitMove(r.Context(), gameID(r), player.ID, placements(req.Tiles))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Pass handles POST /api/v1/games/{id}/pass
func (h *GameHandler) Pass(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	g, err := h.gameController.Pass(r.Context(), gameID(r), player.ID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

// Exchange handles POST /api/v1/games/{id}/exchange
func (h *GameHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	player := middleware.MustGetPlayer(r.Context())

	var req request.ExchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	g, err := h.gameController.Exchange(r.Context(), gameID(r), player.ID, req.TileIDs)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.GameFromModel(g))
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}

// decodeOptional decodes a JSON body, treating an empty body as the zero value
func decodeOptional(r *http.Request, dst any) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err != nil && !errors.Is(err, io.EOF) {
		return apierr.NewInvalidRequestError("invalid request body")
	}
	return nil
}

func placements(tiles []request.Tile) []model.PlacedTile {
	return lo.Map(tiles, func(t request.Tile, _ int) model.PlacedTile {
		return model.PlacedTile{Tile: model.Tile{ID: t.ID, Letter: t.Letter}, Row: t.Row, Col: t.Col}
	})
}
