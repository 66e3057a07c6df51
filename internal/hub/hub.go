package hub

import (
	"context"
	"ctchen222/tictactoe-web/internal/events"
	"ctchen222/tictactoe-web/internal/game"
	"ctchen222/tictactoe-web/internal/repository"
	"ctchen222/tictactoe-web/internal/room"
	"ctchen222/tictactoe-web/internal/telemetry"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hub")

// ErrSessionNotFound is returned for unknown or expired session IDs.
var ErrSessionNotFound = errors.New("session not found")

// Config tunes the hub.
type Config struct {
	ComputerDelay time.Duration
	PongWait      time.Duration
	IdleTimeout   time.Duration
	SweepInterval time.Duration
}

// Hub manages all the rooms, one per browser session.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room.Room

	cfg            Config
	moveCalculator room.MoveCalculator
	publisher      events.Publisher
	history        repository.HistoryRepository
	metrics        *telemetry.GameMetrics
}

// NewHub creates a new hub. history and metrics may be nil.
func NewHub(cfg Config, calculator room.MoveCalculator, publisher events.Publisher, history repository.HistoryRepository, metrics *telemetry.GameMetrics) *Hub {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return &Hub{
		rooms:          make(map[string]*room.Room),
		cfg:            cfg,
		moveCalculator: calculator,
		publisher:      publisher,
		history:        history,
		metrics:        metrics,
	}
}

// Create opens a new session in mode.
func (h *Hub) Create(ctx context.Context, mode game.Mode) *room.Room {
	ctx, span := tracer.Start(ctx, "hub.Create", trace.WithAttributes(
		attribute.String("game.mode", string(mode)),
	))
	defer span.End()

	roomID := uuid.New().String()
	newRoom := room.NewRoom(roomID, mode, room.Options{
		MoveCalculator: h.moveCalculator,
		ComputerDelay:  h.cfg.ComputerDelay,
		PongWait:       h.cfg.PongWait,
		Publisher:      h.publisher,
		History:        h.history,
		Metrics:        h.metrics,
	})

	h.mu.Lock()
	h.rooms[roomID] = newRoom
	h.mu.Unlock()

	h.metrics.SessionOpened(ctx)
	span.SetAttributes(attribute.String("room.id", roomID))
	slog.InfoContext(ctx, "Room created", "room.id", roomID, "game.mode", mode)
	return newRoom
}

// Get looks up a session.
func (h *Hub) Get(id string) (*room.Room, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.rooms[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return r, nil
}

// Remove closes a session and forgets its history.
func (h *Hub) Remove(ctx context.Context, id string) error {
	h.mu.Lock()
	r, ok := h.rooms[id]
	if ok {
		delete(h.rooms, id)
	}
	h.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	h.closeRoom(ctx, r)
	return nil
}

// Len returns the number of open sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms)
}

// Shutdown closes every session.
func (h *Hub) Shutdown(ctx context.Context) {
	h.mu.Lock()
	rooms := h.rooms
	h.rooms = make(map[string]*room.Room)
	h.mu.Unlock()

	for _, r := range rooms {
		h.closeRoom(ctx, r)
	}
	slog.InfoContext(ctx, "Hub shut down", "rooms.closed", len(rooms))
}

func (h *Hub) closeRoom(ctx context.Context, r *room.Room) {
	r.Close()
	h.metrics.SessionClosed(ctx)

	if h.history != nil {
		if err := h.history.DeleteBySession(ctx, r.ID); err != nil {
			slog.ErrorContext(ctx, "failed to delete session history", "room.id", r.ID, "error", err)
		}
	}
	slog.InfoContext(ctx, "Room closed", "room.id", r.ID)
}
