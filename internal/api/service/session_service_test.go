package service

import (
	"context"
	"ctchen222/tictactoe-web/internal/events"
	"ctchen222/tictactoe-web/internal/game"
	"ctchen222/tictactoe-web/internal/hub"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firstEmpty struct{}

func (firstEmpty) CalculateNextMove(board game.Board) (int, bool) {
	cells := game.EmptyCells(board)
	if len(cells) == 0 {
		return -1, false
	}
	return cells[0], true
}

func newTestService(t *testing.T) (SessionService, *hub.Hub) {
	t.Helper()
	h := hub.NewHub(hub.Config{IdleTimeout: time.Hour}, firstEmpty{}, events.NewNopPublisher(), nil, nil)
	t.Cleanup(func() { h.Shutdown(context.Background()) })
	return NewSessionService(h, NewTokenIssuer("test-secret", time.Hour), nil, game.ModeTwoPlayer), h
}

func TestSessionService_ReadsKeepSessionActive(t *testing.T) {
	svc, h := newTestService(t)
	ctx := context.Background()

	session, err := svc.Create(ctx, "")
	require.NoError(t, err)
	r, err := h.Get(session.SessionID)
	require.NoError(t, err)

	before := r.LastActive()
	time.Sleep(5 * time.Millisecond)
	_, err = svc.State(ctx, session.SessionID)
	require.NoError(t, err)
	afterState := r.LastActive()
	assert.True(t, afterState.After(before))

	time.Sleep(5 * time.Millisecond)
	_, err = svc.History(ctx, session.SessionID, 10)
	require.NoError(t, err)
	assert.True(t, r.LastActive().After(afterState))
}

func TestSessionService_AuthenticateAndMove(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	session, err := svc.Create(ctx, game.ModeTwoPlayer)
	require.NoError(t, err)

	sessionID, err := svc.Authenticate(session.Token)
	require.NoError(t, err)
	assert.Equal(t, session.SessionID, sessionID)

	res, err := svc.Move(ctx, sessionID, 4)
	require.NoError(t, err)
	assert.True(t, res.Accepted)

	res, err = svc.Move(ctx, sessionID, 4)
	require.NoError(t, err)
	assert.False(t, res.Accepted)

	require.NoError(t, svc.Close(ctx, sessionID))
	_, err = svc.State(ctx, sessionID)
	assert.ErrorIs(t, err, hub.ErrSessionNotFound)
}
