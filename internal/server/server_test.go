package server

import (
	"context"
	"ctchen222/tictactoe-web/internal/api/controller"
	"ctchen222/tictactoe-web/internal/api/service"
	"ctchen222/tictactoe-web/internal/events"
	"ctchen222/tictactoe-web/internal/game"
	"ctchen222/tictactoe-web/internal/hub"
	"ctchen222/tictactoe-web/pkg/proto"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firstEmpty struct{}

func (firstEmpty) CalculateNextMove(board game.Board) (int, bool) {
	for i, cell := range board {
		if cell == game.None {
			return i, true
		}
	}
	return -1, false
}

func newTestServer(t *testing.T, webDir string) (*httptest.Server, service.SessionService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := hub.NewHub(hub.Config{ComputerDelay: 10 * time.Millisecond, IdleTimeout: time.Hour}, firstEmpty{}, events.NewNopPublisher(), nil, nil)
	svc := service.NewSessionService(h, service.NewTokenIssuer("test-secret", time.Hour), nil, game.ModeTwoPlayer)
	srv := NewServer(h, svc, controller.NewSessionController(svc), webDir)

	ts := httptest.NewServer(srv.Engine())
	t.Cleanup(func() {
		ts.Close()
		h.Shutdown(context.Background())
	})
	return ts, svc
}

func readUpdate(t *testing.T, conn *websocket.Conn) proto.ServerToClientMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg proto.ServerToClientMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestServer_Healthz(t *testing.T) {
	ts, _ := newTestServer(t, "")

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestServer_WebSocketRejectsBadToken(t *testing.T) {
	ts, _ := newTestServer(t, "")

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=nope"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestServer_WebSocketPlaysMoves(t *testing.T) {
	ts, svc := newTestServer(t, "")

	session, err := svc.Create(context.Background(), game.ModeTwoPlayer)
	require.NoError(t, err)

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?token=" + session.Token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	initial := readUpdate(t, conn)
	assert.Equal(t, proto.TypeUpdate, initial.Type)
	assert.Equal(t, session.SessionID, initial.SessionID)
	assert.Equal(t, game.PlayerX, initial.Next)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "move", "position": 4}))
	update := readUpdate(t, conn)
	assert.Equal(t, game.PlayerX, update.Board[4])
	assert.Equal(t, game.PlayerO, update.Next)

	state, err := svc.State(context.Background(), session.SessionID)
	require.NoError(t, err)
	assert.Equal(t, game.PlayerX, state.Board[4])
}

func TestServer_ServesStaticFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>board</html>"), 0o644))
	ts, _ := newTestServer(t, dir)

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
