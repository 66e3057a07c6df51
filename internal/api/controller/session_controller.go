package controller

import (
	"ctchen222/tictactoe-web/internal/api/models"
	"ctchen222/tictactoe-web/internal/api/response"
	"ctchen222/tictactoe-web/internal/api/service"
	"ctchen222/tictactoe-web/internal/game"
	"ctchen222/tictactoe-web/internal/hub"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// SessionIDKey is the gin context key set by RequireSession.
const SessionIDKey = "session_id"

// SessionController handles session-related HTTP requests.
type SessionController struct {
	sessionService service.SessionService
}

// NewSessionController creates a new SessionController.
func NewSessionController(sessionService service.SessionService) *SessionController {
	return &SessionController{
		sessionService: sessionService,
	}
}

// RequireSession resolves the Bearer token into a session ID.
func (sc *SessionController) RequireSession(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		response.AbortWithError(c, http.StatusUnauthorized, "missing session token")
		return
	}

	sessionID, err := sc.sessionService.Authenticate(token)
	if err != nil {
		response.AbortWithError(c, http.StatusUnauthorized, err.Error())
		return
	}

	c.Set(SessionIDKey, sessionID)
	c.Next()
}

// Create handles opening a session.
func (sc *SessionController) Create(c *gin.Context) {
	var req models.CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	res, err := sc.sessionService.Create(c.Request.Context(), game.Mode(req.Mode))
	if err != nil {
		response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	c.JSON(http.StatusCreated, response.NewResponse(true, http.StatusCreated, res))
}

// State returns the current game.
func (sc *SessionController) State(c *gin.Context) {
	state, err := sc.sessionService.State(c.Request.Context(), c.GetString(SessionIDKey))
	if err != nil {
		sc.handleError(c, err)
		return
	}
	response.SuccessResponse(c, state)
}

// Move plays a cell for the player whose turn it is.
func (sc *SessionController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := sc.sessionService.Move(c.Request.Context(), c.GetString(SessionIDKey), *req.Index)
	if err != nil {
		sc.handleError(c, err)
		return
	}
	response.SuccessResponse(c, res)
}

// Reset restarts the game, optionally in another mode.
func (sc *SessionController) Reset(c *gin.Context) {
	var req models.ResetRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	state, err := sc.sessionService.Reset(c.Request.Context(), c.GetString(SessionIDKey), game.Mode(req.Mode))
	if err != nil {
		sc.handleError(c, err)
		return
	}
	response.SuccessResponse(c, state)
}

// History lists finished games of the session.
func (sc *SessionController) History(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		response.ErrorResponse(c, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	res, err := sc.sessionService.History(c.Request.Context(), c.GetString(SessionIDKey), limit)
	if err != nil {
		sc.handleError(c, err)
		return
	}
	response.SuccessResponse(c, res)
}

// Close ends the session.
func (sc *SessionController) Close(c *gin.Context) {
	if err := sc.sessionService.Close(c.Request.Context(), c.GetString(SessionIDKey)); err != nil {
		sc.handleError(c, err)
		return
	}
	response.SuccessResponseContent(c, "session closed")
}

func (sc *SessionController) handleError(c *gin.Context, err error) {
	if errors.Is(err, hub.ErrSessionNotFound) {
		response.ErrorResponse(c, http.StatusNotFound, err.Error())
		return
	}
	response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
}
