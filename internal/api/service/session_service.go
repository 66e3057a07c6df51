package service

import (
	"context"
	"ctchen222/tictactoe-web/internal/api/models"
	"ctchen222/tictactoe-web/internal/game"
	"ctchen222/tictactoe-web/internal/repository"
	"ctchen222/tictactoe-web/internal/room"
	"ctchen222/tictactoe-web/pkg/proto"
	"fmt"
)

// SessionStore is the part of the hub the service needs.
type SessionStore interface {
	Create(ctx context.Context, mode game.Mode) *room.Room
	Get(id string) (*room.Room, error)
	Remove(ctx context.Context, id string) error
}

// SessionService defines the interface for session-related business logic.
type SessionService interface {
	Create(ctx context.Context, mode game.Mode) (*models.SessionResponse, error)
	State(ctx context.Context, sessionID string) (*models.GameState, error)
	Move(ctx context.Context, sessionID string, index int) (*models.MoveResponse, error)
	Reset(ctx context.Context, sessionID string, mode game.Mode) (*models.GameState, error)
	History(ctx context.Context, sessionID string, limit int) (*models.HistoryResponse, error)
	Close(ctx context.Context, sessionID string) error
	Authenticate(token string) (string, error)
}

type sessionService struct {
	store       SessionStore
	tokens      *TokenIssuer
	history     repository.HistoryRepository
	defaultMode game.Mode
}

// NewSessionService creates a new SessionService. history may be nil.
func NewSessionService(store SessionStore, tokens *TokenIssuer, history repository.HistoryRepository, defaultMode game.Mode) SessionService {
	if !defaultMode.Valid() {
		defaultMode = game.ModeTwoPlayer
	}
	return &sessionService{
		store:       store,
		tokens:      tokens,
		history:     history,
		defaultMode: defaultMode,
	}
}

// Create opens a session and signs a token for it.
func (s *sessionService) Create(ctx context.Context, mode game.Mode) (*models.SessionResponse, error) {
	if mode == "" {
		mode = s.defaultMode
	}
	r := s.store.Create(ctx, mode)

	token, err := s.tokens.Issue(r.ID)
	if err != nil {
		if removeErr := s.store.Remove(ctx, r.ID); removeErr != nil {
			return nil, fmt.Errorf("%w (cleanup: %v)", err, removeErr)
		}
		return nil, err
	}

	return &models.SessionResponse{
		SessionID: r.ID,
		Token:     token,
		State:     ToGameState(r.State()),
	}, nil
}

// State returns the current state of a session. Reading counts as activity.
func (s *sessionService) State(ctx context.Context, sessionID string) (*models.GameState, error) {
	r, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	r.Touch()
	state := ToGameState(r.State())
	return &state, nil
}

// Move plays a human move. A rejected move is not an error.
func (s *sessionService) Move(ctx context.Context, sessionID string, index int) (*models.MoveResponse, error) {
	r, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	accepted := r.HandleMove(ctx, index)
	return &models.MoveResponse{
		Accepted: accepted,
		State:    ToGameState(r.State()),
	}, nil
}

// Reset restarts the game, switching mode when one is given.
func (s *sessionService) Reset(ctx context.Context, sessionID string, mode game.Mode) (*models.GameState, error) {
	r, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	state := ToGameState(r.Reset(ctx, mode))
	return &state, nil
}

// History lists the finished games of a session.
func (s *sessionService) History(ctx context.Context, sessionID string, limit int) (*models.HistoryResponse, error) {
	r, err := s.store.Get(sessionID)
	if err != nil {
		return nil, err
	}
	r.Touch()
	if s.history == nil {
		return &models.HistoryResponse{Games: []repository.GameRecord{}}, nil
	}
	records, err := s.history.ListBySession(ctx, sessionID, limit)
	if err != nil {
		return nil, err
	}
	return &models.HistoryResponse{Games: records}, nil
}

// Close ends a session.
func (s *sessionService) Close(ctx context.Context, sessionID string) error {
	return s.store.Remove(ctx, sessionID)
}

// Authenticate maps a session token to its session ID.
func (s *sessionService) Authenticate(token string) (string, error) {
	return s.tokens.Parse(token)
}

// ToGameState converts a game snapshot to its JSON view.
func ToGameState(state game.State) models.GameState {
	return models.GameState{
		Board:       game.BoardAsSlice(state.Board),
		Next:        state.Turn,
		Mode:        state.Mode,
		Outcome:     state.Outcome,
		Winner:      state.Outcome.Winner(),
		WinningLine: state.WinningLine,
		Score:       state.Score,
		Status:      proto.StatusText(state),
	}
}
