package handler

import (
	"net/http"
	"strconv"

	"github.com/samber/lo"

	"github.com/mcoot/wordgame-go/internal/api/apierr"
	"github.com/mcoot/wordgame-go/internal/api/response"
	"github.com/mcoot/wordgame-go/internal/model"
	"github.com/mcoot/wordgame-go/internal/services/room"
	"github.com/mcoot/wordgame-go/internal/storage"
)

// DefaultResultLimit and MaxResultLimit bound GET /api/v1/results
const (
	DefaultResultLimit = 20
	MaxResultLimit     = 100
)

// RoomHandler serves the read-only room listing and results archive
type RoomHandler struct {
	rooms   room.ControllerInterface
	archive storage.Archive
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(rooms room.ControllerInterface, archive storage.Archive) *RoomHandler {
	return &RoomHandler{
		rooms:   rooms,
		archive: archive,
	}
}

// List handles GET /api/v1/rooms
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.rooms.ListRooms(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomList{
		Rooms: lo.Map(rooms, func(rm *model.Room, _ int) response.RoomSummary {
			return response.RoomSummaryFromModel(rm)
		}),
	})
}

// Results handles GET /api/v1/results?limit=N
func (h *RoomHandler) Results(w http.ResponseWriter, r *http.Request) {
	limit := DefaultResultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			apierr.WriteError(w, apierr.NewInvalidRequestError("limit must be a positive integer"))
			return
		}
		limit = min(n, MaxResultLimit)
	}

	results, err := h.archive.RecentResults(r.Context(), limit)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ResultList{
		Results: lo.Map(results, func(res model.GameResult, _ int) response.Result {
			return response.ResultFromModel(res)
		}),
	})
}
