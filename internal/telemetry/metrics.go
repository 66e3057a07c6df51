package telemetry

import (
	"context"
	"ctchen222/tictactoe-web/internal/game"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// GameMetrics holds the counters recorded by rooms.
type GameMetrics struct {
	movesApplied   metric.Int64Counter
	gamesCompleted metric.Int64Counter
	activeSessions metric.Int64UpDownCounter
}

// NewGameMetrics creates the game instruments on the global meter provider.
func NewGameMetrics() (*GameMetrics, error) {
	meter := otel.Meter("tictactoe")

	movesApplied, err := meter.Int64Counter("tictactoe.moves.applied",
		metric.WithDescription("Accepted moves, by player kind."))
	if err != nil {
		return nil, fmt.Errorf("failed to create moves counter: %w", err)
	}
	gamesCompleted, err := meter.Int64Counter("tictactoe.games.completed",
		metric.WithDescription("Finished games, by mode and outcome."))
	if err != nil {
		return nil, fmt.Errorf("failed to create games counter: %w", err)
	}
	activeSessions, err := meter.Int64UpDownCounter("tictactoe.sessions.active",
		metric.WithDescription("Sessions currently held by the hub."))
	if err != nil {
		return nil, fmt.Errorf("failed to create sessions counter: %w", err)
	}

	return &GameMetrics{
		movesApplied:   movesApplied,
		gamesCompleted: gamesCompleted,
		activeSessions: activeSessions,
	}, nil
}

// MoveApplied counts one accepted move.
func (m *GameMetrics) MoveApplied(ctx context.Context, computer bool) {
	if m == nil {
		return
	}
	m.movesApplied.Add(ctx, 1, metric.WithAttributes(attribute.Bool("move.computer", computer)))
}

// GameCompleted counts one finished game.
func (m *GameMetrics) GameCompleted(ctx context.Context, mode game.Mode, outcome game.Outcome) {
	if m == nil {
		return
	}
	m.gamesCompleted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("game.mode", string(mode)),
		attribute.String("game.outcome", string(outcome)),
	))
}

// SessionOpened and SessionClosed track the number of live sessions.
func (m *GameMetrics) SessionOpened(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeSessions.Add(ctx, 1)
}

func (m *GameMetrics) SessionClosed(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeSessions.Add(ctx, -1)
}
