package room

import (
	"context"
	"ctchen222/tictactoe-web/internal/events"
	"log/slog"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// publishLocked sends a session event. Failures are logged, never returned: a
// missing listener must not stop the game.
func (r *Room) publishLocked(ctx context.Context, eventType string, payload any) {
	span := trace.SpanFromContext(ctx)

	event, err := events.New(eventType, payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build event", "room.id", r.ID, "event.type", eventType, "error", err)
		span.RecordError(err)
		return
	}
	if err := r.publisher.Publish(ctx, event); err != nil {
		slog.ErrorContext(ctx, "failed to publish event", "room.id", r.ID, "event.type", eventType, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to publish "+eventType+" event")
	}
}
