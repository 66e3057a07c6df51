package main

import (
	"context"
	"ctchen222/tictactoe-web/internal/api/controller"
	"ctchen222/tictactoe-web/internal/api/service"
	"ctchen222/tictactoe-web/internal/bot"
	"ctchen222/tictactoe-web/internal/config"
	"ctchen222/tictactoe-web/internal/db"
	"ctchen222/tictactoe-web/internal/events"
	"ctchen222/tictactoe-web/internal/game"
	"ctchen222/tictactoe-web/internal/hub"
	"ctchen222/tictactoe-web/internal/logger"
	"ctchen222/tictactoe-web/internal/repository"
	"ctchen222/tictactoe-web/internal/server"
	"ctchen222/tictactoe-web/internal/telemetry"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry before the logger so slog can bridge into it
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		slog.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("Error shutting down telemetry", "error", err)
		}
	}()

	logger.Init(cfg.LogLevel)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics, err := telemetry.NewGameMetrics()
	if err != nil {
		slog.Error("failed to create metrics", "error", err)
		os.Exit(1)
	}

	// Initialize SQLite DB
	DB, err := db.Connect(ctx, cfg.SQLite.DSN)
	if err != nil {
		slog.Error("failed to connect sqlite db", "error", err)
		os.Exit(1)
	}
	defer DB.Close()
	if err := db.InitializeDB(ctx, DB); err != nil {
		slog.Error("failed to initialize sqlite db", "error", err)
		os.Exit(1)
	}
	historyRepo := repository.NewHistoryRepository(DB)

	// Redis is optional; without it events are dropped
	publisher := events.NewNopPublisher()
	if cfg.Redis.Addr != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			slog.Error("failed to initialize redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		publisher = events.NewRedisPublisher(rdb)
	}

	// Create hub
	h := hub.NewHub(hub.Config{
		ComputerDelay: cfg.Game.ComputerMoveDelay,
		PongWait:      cfg.Session.PongWait,
		IdleTimeout:   cfg.Session.IdleTimeout,
	}, bot.NewBotMoveCalculator(nil), publisher, historyRepo, metrics)
	go h.Run(ctx)

	// Create services and controllers
	tokens := service.NewTokenIssuer(cfg.Session.Secret, cfg.Session.TokenTTL)
	sessionService := service.NewSessionService(h, tokens, historyRepo, game.Mode(cfg.Game.DefaultMode))
	sessionController := controller.NewSessionController(sessionService)

	srv := server.NewServer(h, sessionService, sessionController, cfg.HTTP.WebDir)

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: srv.Engine(),
	}

	go func() {
		slog.Info("http server started", "addr", cfg.HTTP.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ListenAndServe failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	slog.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	h.Shutdown(shutdownCtx)

	slog.Info("Server exiting")
}
