package room

import (
	"context"
	"ctchen222/tictactoe-web/internal/events"
	"ctchen222/tictactoe-web/internal/game"
	"ctchen222/tictactoe-web/internal/player"
	"ctchen222/tictactoe-web/internal/repository"
	"ctchen222/tictactoe-web/internal/telemetry"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DefaultComputerDelay paces the computer's reply.
	DefaultComputerDelay = 600 * time.Millisecond
	// DefaultPongWait is how long a client may stay silent before it is detached.
	DefaultPongWait = 30 * time.Second

	writeWait = 10 * time.Second
)

var tracer = otel.Tracer("room")

// MoveCalculator defines an interface for an agent that can calculate a game move.
type MoveCalculator interface {
	CalculateNextMove(board game.Board) (int, bool)
}

// Options carries the collaborators of a Room. Nil fields are optional except
// MoveCalculator, which is required for vs-computer games.
type Options struct {
	MoveCalculator MoveCalculator
	ComputerDelay  time.Duration
	PongWait       time.Duration
	Publisher      events.Publisher
	History        repository.HistoryRepository
	Metrics        *telemetry.GameMetrics
}

// Room represents one browser session: a game plus the clients watching it.
// Every mutation happens under mu, so moves, resets and the computer's reply are
// applied one at a time.
type Room struct {
	ID string

	mu         sync.Mutex
	game       *game.Game
	players    map[string]*player.Player
	lastActive time.Time
	closed     bool

	moveCalculator MoveCalculator
	computerDelay  time.Duration
	pendingMove    *time.Timer
	generation     uint64

	pongWait   time.Duration
	pingPeriod time.Duration

	publisher events.Publisher
	history   repository.HistoryRepository
	metrics   *telemetry.GameMetrics

	Done chan struct{}
}

// NewRoom creates a new game room.
func NewRoom(id string, mode game.Mode, opts Options) *Room {
	if opts.ComputerDelay <= 0 {
		opts.ComputerDelay = DefaultComputerDelay
	}
	if opts.PongWait <= 0 {
		opts.PongWait = DefaultPongWait
	}
	if opts.Publisher == nil {
		opts.Publisher = events.NewNopPublisher()
	}
	r := &Room{
		ID:             id,
		game:           game.NewGame(mode),
		players:        make(map[string]*player.Player),
		lastActive:     time.Now(),
		moveCalculator: opts.MoveCalculator,
		computerDelay:  opts.ComputerDelay,
		pongWait:       opts.PongWait,
		pingPeriod:     opts.PongWait / 2,
		publisher:      opts.Publisher,
		history:        opts.History,
		metrics:        opts.Metrics,
		Done:           make(chan struct{}),
	}
	go r.heartbeat()
	return r
}

// State returns a snapshot of the game.
func (r *Room) State() game.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.game.State()
}

// HandleMove applies a human move. It is ignored when the game is over, the cell is
// taken, or the computer is due to play.
func (r *Room) HandleMove(ctx context.Context, index int) bool {
	ctx, span := tracer.Start(ctx, "room.HandleMove", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.Int("move.index", index),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	if r.game.IsComputerTurn() {
		slog.DebugContext(ctx, "ignoring move during computer's turn", "room.id", r.ID, "move.index", index)
		span.SetAttributes(attribute.Bool("move.valid", false))
		return false
	}

	accepted := r.applyMoveLocked(ctx, index, false)
	span.SetAttributes(attribute.Bool("move.valid", accepted))
	return accepted
}

// Reset starts a new game. An empty mode keeps the current one; a different mode
// also zeroes the score. Any pending computer move is cancelled.
func (r *Room) Reset(ctx context.Context, mode game.Mode) game.State {
	ctx, span := tracer.Start(ctx, "room.Reset", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("game.mode", string(mode)),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	previous := r.game.Mode()
	if mode == "" {
		mode = previous
	}

	r.cancelComputerMoveLocked()
	r.game.Reset(mode)
	r.lastActive = time.Now()

	eventType := events.TypeGameReset
	if mode != previous {
		eventType = events.TypeModeChanged
	}
	r.publishLocked(ctx, eventType, events.GameResetPayload{
		SessionID:    r.ID,
		PreviousMode: previous,
		Mode:         mode,
	})
	slog.InfoContext(ctx, "Game reset", "room.id", r.ID, "game.mode", mode, "game.previous_mode", previous)

	r.afterChangeLocked(ctx)
	return r.game.State()
}

// Touch marks the session as used without changing the game.
func (r *Room) Touch() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastActive = time.Now()
}

// LastActive reports when the session was last played, read or joined.
func (r *Room) LastActive() time.Time {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastActive
}

// HasPendingComputerMove reports whether a computer reply is scheduled.
func (r *Room) HasPendingComputerMove() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pendingMove != nil
}

// Close cancels the pending computer move, stops the heartbeat and disconnects
// every client.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.cancelComputerMoveLocked()
	for id, p := range r.players {
		p.Conn.Close()
		delete(r.players, id)
	}
	close(r.Done)
}

// applyMoveLocked writes the current turn's mark and runs the post-move pipeline.
func (r *Room) applyMoveLocked(ctx context.Context, index int, computer bool) bool {
	if !r.game.Move(index) {
		return false
	}

	r.lastActive = time.Now()
	r.cancelComputerMoveLocked()
	r.metrics.MoveApplied(ctx, computer)

	if r.game.IsOver() {
		r.finishGameLocked(ctx)
	}
	r.afterChangeLocked(ctx)
	return true
}

// afterChangeLocked schedules the computer if it is due and pushes the new state.
func (r *Room) afterChangeLocked(ctx context.Context) {
	if r.game.IsComputerTurn() {
		r.scheduleComputerMoveLocked()
	}
	r.broadcastLocked(ctx)
}
