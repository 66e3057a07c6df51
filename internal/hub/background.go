package hub

import (
	"context"
	"ctchen222/tictactoe-web/internal/room"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
)

// Run sweeps idle sessions until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	if h.cfg.IdleTimeout <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(h.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("Hub sweeper stopping.")
			return
		case now := <-ticker.C:
			h.sweepIdle(ctx, now)
		}
	}
}

// sweepIdle closes sessions with no attached clients that have not been used for
// longer than the idle timeout. Rooms are inspected without holding the hub lock so
// a stalled room cannot block lookups of other sessions.
func (h *Hub) sweepIdle(ctx context.Context, now time.Time) int {
	ctx, span := tracer.Start(ctx, "hub.sweepIdle")
	defer span.End()

	h.mu.RLock()
	rooms := make([]*room.Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.RUnlock()

	var expired []*room.Room
	for _, r := range rooms {
		if r.PlayerCount() > 0 || now.Sub(r.LastActive()) <= h.cfg.IdleTimeout {
			continue
		}
		h.mu.Lock()
		if current, ok := h.rooms[r.ID]; ok && current == r {
			delete(h.rooms, r.ID)
			expired = append(expired, r)
		}
		h.mu.Unlock()
	}

	for _, r := range expired {
		slog.InfoContext(ctx, "Room exceeded idle timeout. Closing.", "room.id", r.ID)
		h.closeRoom(ctx, r)
	}
	span.SetAttributes(attribute.Int("rooms.expired", len(expired)))
	return len(expired)
}
