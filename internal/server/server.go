package server

import (
	"ctchen222/tictactoe-web/internal/api/controller"
	"ctchen222/tictactoe-web/internal/api/response"
	"ctchen222/tictactoe-web/internal/api/service"
	"ctchen222/tictactoe-web/internal/hub"
	"ctchen222/tictactoe-web/internal/player"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

type Server struct {
	hub               *hub.Hub
	sessionService    service.SessionService
	sessionController *controller.SessionController
	webDir            string
	upgrader          websocket.Upgrader
}

func NewServer(h *hub.Hub, sessionService service.SessionService, sessionController *controller.SessionController, webDir string) *Server {
	return &Server{
		hub:               h,
		sessionService:    sessionService,
		sessionController: sessionController,
		webDir:            webDir,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Engine builds the router.
func (s *Server) Engine() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"sessions": s.hub.Len()})
	})
	r.GET("/ws", s.handleWebSocket)

	api := r.Group("/api")
	api.POST("/sessions", s.sessionController.Create)

	session := api.Group("/session", s.sessionController.RequireSession)
	session.GET("", s.sessionController.State)
	session.DELETE("", s.sessionController.Close)
	session.POST("/moves", s.sessionController.Move)
	session.POST("/reset", s.sessionController.Reset)
	session.GET("/history", s.sessionController.History)

	if s.webDir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(s.webDir))))
	}
	return r
}

// handleWebSocket attaches a live view to an existing session. The token
// travels in the query string since browsers cannot set headers on upgrade.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.Path),
		attribute.String("http.method", c.Request.Method),
	))
	defer span.End()

	sessionID, err := s.sessionService.Authenticate(c.Query("token"))
	if err != nil {
		span.SetStatus(codes.Error, "Invalid session token")
		response.ErrorResponse(c, http.StatusUnauthorized, err.Error())
		return
	}
	r, err := s.hub.Get(sessionID)
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, hub.ErrSessionNotFound) {
			code = http.StatusNotFound
		}
		response.ErrorResponse(c, code, err.Error())
		return
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.WarnContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}

	p := player.NewPlayer(uuid.New().String(), conn)
	span.SetAttributes(attribute.String("player.id", p.ID), attribute.String("room.id", r.ID))

	if !r.AddPlayer(ctx, p) {
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "session closed"))
		conn.Close()
		return
	}
	go r.ReadPump(p)
}
