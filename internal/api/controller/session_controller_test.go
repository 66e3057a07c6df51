package controller

import (
	"bytes"
	"context"
	"ctchen222/tictactoe-web/internal/api/models"
	"ctchen222/tictactoe-web/internal/api/service"
	"ctchen222/tictactoe-web/internal/events"
	"ctchen222/tictactoe-web/internal/game"
	"ctchen222/tictactoe-web/internal/hub"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope[T any] struct {
	Success bool `json:"success"`
	Code    int  `json:"code"`
	Extras  T    `json:"extras"`
}

type firstEmpty struct{}

func (firstEmpty) CalculateNextMove(board game.Board) (int, bool) {
	for i, cell := range board {
		if cell == game.None {
			return i, true
		}
	}
	return -1, false
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	h := hub.NewHub(hub.Config{ComputerDelay: 10 * time.Millisecond, IdleTimeout: time.Hour}, firstEmpty{}, events.NewNopPublisher(), nil, nil)
	t.Cleanup(func() { h.Shutdown(context.Background()) })

	svc := service.NewSessionService(h, service.NewTokenIssuer("test-secret", time.Hour), nil, game.ModeTwoPlayer)
	sc := NewSessionController(svc)

	r := gin.New()
	r.POST("/api/sessions", sc.Create)
	g := r.Group("/api/session", sc.RequireSession)
	g.GET("", sc.State)
	g.POST("/moves", sc.Move)
	g.POST("/reset", sc.Reset)
	g.GET("/history", sc.History)
	g.DELETE("", sc.Close)
	return r
}

func do(r *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, r *gin.Engine, body any) models.SessionResponse {
	t.Helper()
	w := do(r, http.MethodPost, "/api/sessions", "", body)
	require.Equal(t, http.StatusCreated, w.Code)

	var res envelope[models.SessionResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(t, res.Success)
	return res.Extras
}

func TestSessionController_CreateDefaultsToTwoPlayer(t *testing.T) {
	r := setupRouter(t)

	session := createSession(t, r, nil)
	assert.NotEmpty(t, session.SessionID)
	assert.NotEmpty(t, session.Token)
	assert.Equal(t, game.ModeTwoPlayer, session.State.Mode)
	assert.Equal(t, game.PlayerX, session.State.Next)
	assert.Len(t, session.State.Board, game.BoardSize)
}

func TestSessionController_CreateRejectsUnknownMode(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodPost, "/api/sessions", "", map[string]string{"mode": "ranked"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionController_RequiresToken(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodGet, "/api/session", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/api/session", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSessionController_MoveFlow(t *testing.T) {
	r := setupRouter(t)
	session := createSession(t, r, nil)

	w := do(r, http.MethodPost, "/api/session/moves", session.Token, map[string]int{"index": 4})
	require.Equal(t, http.StatusOK, w.Code)
	var res envelope[models.MoveResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Extras.Accepted)
	assert.Equal(t, game.PlayerX, res.Extras.State.Board[4])
	assert.Equal(t, game.PlayerO, res.Extras.State.Next)

	// occupied cell
	w = do(r, http.MethodPost, "/api/session/moves", session.Token, map[string]int{"index": 4})
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.False(t, res.Extras.Accepted)
	assert.Equal(t, game.PlayerO, res.Extras.State.Next)

	w = do(r, http.MethodPost, "/api/session/moves", session.Token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionController_MoveIndexZero(t *testing.T) {
	r := setupRouter(t)
	session := createSession(t, r, nil)

	w := do(r, http.MethodPost, "/api/session/moves", session.Token, map[string]int{"index": 0})
	require.Equal(t, http.StatusOK, w.Code)
	var res envelope[models.MoveResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.True(t, res.Extras.Accepted)
}

func TestSessionController_ResetSwitchesMode(t *testing.T) {
	r := setupRouter(t)
	session := createSession(t, r, nil)

	w := do(r, http.MethodPost, "/api/session/reset", session.Token, map[string]string{"mode": "vs_computer"})
	require.Equal(t, http.StatusOK, w.Code)
	var res envelope[models.GameState]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, game.ModeVsComputer, res.Extras.Mode)
	assert.Equal(t, game.Score{}, res.Extras.Score)

	w = do(r, http.MethodPost, "/api/session/reset", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, game.ModeVsComputer, res.Extras.Mode)
}

func TestSessionController_HistoryWithoutStore(t *testing.T) {
	r := setupRouter(t)
	session := createSession(t, r, nil)

	w := do(r, http.MethodGet, "/api/session/history?limit=5", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res envelope[models.HistoryResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Empty(t, res.Extras.Games)

	w = do(r, http.MethodGet, "/api/session/history?limit=zero", session.Token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSessionController_ClosedSessionIsNotFound(t *testing.T) {
	r := setupRouter(t)
	session := createSession(t, r, nil)

	w := do(r, http.MethodDelete, "/api/session", session.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/api/session", session.Token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
