package room

import (
	"context"
	"ctchen222/tictactoe-web/internal/events"
	"ctchen222/tictactoe-web/internal/repository"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// scheduleComputerMoveLocked arms the delayed computer reply. The generation stamp
// lets a timer that already fired notice it was superseded.
func (r *Room) scheduleComputerMoveLocked() {
	if r.moveCalculator == nil {
		slog.Warn("vs-computer game without a move calculator", "room.id", r.ID)
		return
	}
	r.generation++
	gen := r.generation
	r.pendingMove = time.AfterFunc(r.computerDelay, func() {
		r.playComputerMove(gen)
	})
}

// cancelComputerMoveLocked drops the pending computer reply, if any.
func (r *Room) cancelComputerMoveLocked() {
	if r.pendingMove != nil {
		r.pendingMove.Stop()
		r.pendingMove = nil
	}
	r.generation++
}

// playComputerMove runs one choose-and-apply cycle for the computer.
func (r *Room) playComputerMove(gen uint64) {
	ctx, span := tracer.Start(context.Background(), "room.playComputerMove", trace.WithAttributes(
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed || gen != r.generation {
		span.SetAttributes(attribute.Bool("move.superseded", true))
		return
	}
	r.pendingMove = nil

	if !r.game.IsComputerTurn() {
		return
	}

	index, ok := r.moveCalculator.CalculateNextMove(r.game.Board())
	if !ok {
		return
	}
	span.SetAttributes(attribute.Int("move.index", index))

	if !r.applyMoveLocked(ctx, index, true) {
		slog.ErrorContext(ctx, "computer produced a rejected move", "room.id", r.ID, "move.index", index)
		span.SetStatus(codes.Error, "Computer move rejected")
		return
	}
	slog.DebugContext(ctx, "Computer moved", "room.id", r.ID, "move.index", index)
}

// finishGameLocked runs once per finished game: the score is already updated by
// the game itself, this publishes the result and stores it.
func (r *Room) finishGameLocked(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "room.finishGame", trace.WithAttributes(
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	state := r.game.State()
	span.SetAttributes(attribute.String("game.outcome", string(state.Outcome)))
	slog.InfoContext(ctx, "Game over", "room.id", r.ID, "game.outcome", state.Outcome, "game.mode", state.Mode)

	r.metrics.GameCompleted(ctx, state.Mode, state.Outcome)

	r.publishLocked(ctx, events.TypeGameOver, events.GameOverPayload{
		SessionID:   r.ID,
		Mode:        state.Mode,
		Outcome:     state.Outcome,
		WinningLine: state.WinningLine,
		Score:       state.Score,
	})

	if r.history == nil {
		return
	}
	record := &repository.GameRecord{
		SessionID:   r.ID,
		Mode:        state.Mode,
		Outcome:     state.Outcome,
		WinningLine: state.WinningLine,
		Moves:       state.Moves,
	}
	if err := r.history.Save(ctx, record); err != nil {
		slog.ErrorContext(ctx, "failed to save game record", "room.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to save game record")
	}
}
