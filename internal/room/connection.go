package room

import (
	"context"
	"ctchen222/tictactoe-web/internal/player"
	"ctchen222/tictactoe-web/pkg/proto"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// AddPlayer attaches a client to the room and sends it the current state.
func (r *Room) AddPlayer(ctx context.Context, p *player.Player) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}
	r.players[p.ID] = p
	r.lastActive = time.Now()
	slog.InfoContext(ctx, "Player joined room", "player.id", p.ID, "room.id", r.ID)

	r.sendLocked(ctx, p, proto.NewUpdateMessage(r.ID, r.game.State()))
	return true
}

// RemovePlayer detaches a client. The game itself is kept until the hub expires it.
func (r *Room) RemovePlayer(ctx context.Context, playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.players[playerID]; !ok {
		return
	}
	delete(r.players, playerID)
	r.lastActive = time.Now()
	slog.InfoContext(ctx, "Player left room", "player.id", playerID, "room.id", r.ID)
}

// PlayerCount returns the number of attached clients.
func (r *Room) PlayerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// broadcastLocked sends the current state to every attached client.
func (r *Room) broadcastLocked(ctx context.Context) {
	message := proto.NewUpdateMessage(r.ID, r.game.State())

	_, span := tracer.Start(ctx, "room.Broadcast", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("message.type", message.Type),
		attribute.Int("room.players", len(r.players)),
	))
	defer span.End()

	for _, p := range r.players {
		r.sendLocked(ctx, p, message)
	}
}

func (r *Room) sendLocked(ctx context.Context, p *player.Player, message *proto.ServerToClientMessage) {
	span := trace.SpanFromContext(ctx)

	data, err := json.Marshal(message)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Error marshalling message")
		return
	}
	if err := p.Conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		slog.WarnContext(ctx, "error setting write deadline", "player.id", p.ID, "room.id", r.ID, "error", err)
	}
	if err := p.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
		// The connection is unusable after a failed write; closing it ends ReadPump.
		slog.WarnContext(ctx, "error writing message to player", "player.id", p.ID, "room.id", r.ID, "error", err)
		span.RecordError(err)
		p.Conn.Close()
	}
}

// heartbeat pings every attached client until the room is closed. Clients that
// stop answering miss their read deadline in ReadPump and get detached.
func (r *Room) heartbeat() {
	pingTicker := time.NewTicker(r.pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case <-r.Done:
			slog.Debug("Room heartbeat stopping.", "room.id", r.ID)
			return
		case <-pingTicker.C:
			r.mu.Lock()
			players := make([]*player.Player, 0, len(r.players))
			for _, p := range r.players {
				players = append(players, p)
			}
			r.mu.Unlock()

			for _, p := range players {
				if err := p.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					slog.Warn("Failed to send ping to player, assuming disconnect", "player.id", p.ID, "room.id", r.ID, "error", err)
					p.Conn.Close()
				}
			}
		}
	}
}

// ReadPump reads client messages until the connection fails, then detaches the client.
func (r *Room) ReadPump(p *player.Player) {
	ctx, span := tracer.Start(context.Background(), "room.ReadPump", trace.WithAttributes(
		attribute.String("player.id", p.ID),
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	defer func() {
		p.Conn.Close()
		r.RemovePlayer(ctx, p.ID)
	}()

	extendDeadline := func() error {
		return p.Conn.SetReadDeadline(time.Now().Add(r.pongWait))
	}
	if err := extendDeadline(); err != nil {
		slog.WarnContext(ctx, "error setting read deadline", "player.id", p.ID, "error", err)
		return
	}
	p.Conn.SetPongHandler(func(string) error {
		return extendDeadline()
	})

	for {
		_, msg, err := p.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "Player connection error", "player.id", p.ID, "room.id", r.ID, "error", err)
				span.RecordError(err)
			}
			return
		}
		if err := extendDeadline(); err != nil {
			return
		}
		r.HandleMessage(ctx, p, msg)
	}
}
