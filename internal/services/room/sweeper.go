package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mcoot/wordgame-go/internal/dependencies/clock"
	"github.com/mcoot/wordgame-go/internal/model"
)

// DefaultSweepInterval is how often RunSweeper looks for dead rooms
const DefaultSweepInterval = time.Minute

// Sweep deletes rooms whose disconnect grace has run out, and rooms older than
// MaxAge whether or not anyone is still connected
func (c *Controller) Sweep(ctx context.Context) (int, error) {
	rooms, err := c.storage.ListRooms(ctx)
	if err != nil {
		return 0, err
	}

	swept := 0
	for _, r := range rooms {
		removed, err := c.sweepRoom(ctx, r.Code)
		if err != nil {
			c.logger.Error("failed to sweep room",
				slog.String("room_code", string(r.Code)),
				slog.String("error", err.Error()),
			)
			continue
		}
		if removed {
			swept++
		}
	}
	return swept, nil
}

func (c *Controller) sweepRoom(ctx context.Context, code model.RoomCode) (bool, error) {
	unlock := c.locks.Lock(string(code))
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if errors.Is(err, model.ErrRoomNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	abandoned := clock.Reached(c.clock, room.ExpiresAt)
	stale := clock.Elapsed(c.clock, room.CreatedAt) >= c.config.MaxAge
	if !abandoned && !stale {
		return false, nil
	}

	if err := c.storage.DeleteRoom(ctx, code); err != nil {
		return false, err
	}
	c.notifier.Close(code)
	c.logger.Info("room swept",
		slog.String("room_code", string(code)),
		slog.Bool("abandoned", abandoned),
		slog.Bool("stale", stale),
	)
	return true, nil
}

// RunSweeper sweeps every interval until ctx is cancelled
func (c *Controller) RunSweeper(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	c.logger.Info("room sweeper started", slog.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("room sweeper stopped")
			return nil
		case <-ticker.C:
			if _, err := c.Sweep(ctx); err != nil {
				c.logger.Error("room sweep failed", slog.String("error", err.Error()))
			}
		}
	}
}
