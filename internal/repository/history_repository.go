package repository

import (
	"context"
	"ctchen222/tictactoe-web/internal/game"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repository.history")

const defaultHistoryLimit = 20

// GameRecord is one finished game.
type GameRecord struct {
	ID          int64        `json:"id"`
	SessionID   string       `json:"session_id"`
	Mode        game.Mode    `json:"mode"`
	Outcome     game.Outcome `json:"outcome"`
	WinningLine []int        `json:"winning_line,omitempty"`
	Moves       []int        `json:"moves"`
	FinishedAt  time.Time    `json:"finished_at"`
}

type gameRecordRow struct {
	ID          int64  `db:"id"`
	SessionID   string `db:"session_id"`
	Mode        string `db:"mode"`
	Outcome     string `db:"outcome"`
	WinningLine string `db:"winning_line"`
	Moves       string `db:"moves"`
	FinishedAt  int64  `db:"finished_at"`
}

// HistoryRepository defines the interface for finished-game storage.
type HistoryRepository interface {
	Save(ctx context.Context, record *GameRecord) error
	ListBySession(ctx context.Context, sessionID string, limit int) ([]GameRecord, error)
	DeleteBySession(ctx context.Context, sessionID string) error
}

type sqliteHistoryRepository struct {
	db *sqlx.DB
}

// NewHistoryRepository creates a new SQLite-based HistoryRepository.
func NewHistoryRepository(db *sqlx.DB) HistoryRepository {
	return &sqliteHistoryRepository{db: db}
}

// Save inserts record and fills in its ID.
func (r *sqliteHistoryRepository) Save(ctx context.Context, record *GameRecord) error {
	ctx, span := tracer.Start(ctx, "HistoryRepository.Save", trace.WithAttributes(
		attribute.String("session.id", record.SessionID),
		attribute.String("game.outcome", string(record.Outcome)),
	))
	defer span.End()

	moves, err := json.Marshal(record.Moves)
	if err != nil {
		return fmt.Errorf("failed to marshal moves: %w", err)
	}
	if record.FinishedAt.IsZero() {
		record.FinishedAt = time.Now()
	}

	query := `INSERT INTO game_records (session_id, mode, outcome, winning_line, moves, finished_at) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		record.SessionID,
		string(record.Mode),
		string(record.Outcome),
		formatLine(record.WinningLine),
		string(moves),
		record.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save game record: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read game record id: %w", err)
	}
	record.ID = id
	return nil
}

// ListBySession returns the most recent games of a session, newest first.
func (r *sqliteHistoryRepository) ListBySession(ctx context.Context, sessionID string, limit int) ([]GameRecord, error) {
	ctx, span := tracer.Start(ctx, "HistoryRepository.ListBySession", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer span.End()

	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	var rows []gameRecordRow
	query := `SELECT id, session_id, mode, outcome, winning_line, moves, finished_at
		FROM game_records WHERE session_id = ? ORDER BY id DESC LIMIT ?`
	if err := r.db.SelectContext(ctx, &rows, query, sessionID, limit); err != nil {
		return nil, fmt.Errorf("failed to list game records: %w", err)
	}

	records := make([]GameRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toRecord()
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// DeleteBySession drops the history of a closed session.
func (r *sqliteHistoryRepository) DeleteBySession(ctx context.Context, sessionID string) error {
	ctx, span := tracer.Start(ctx, "HistoryRepository.DeleteBySession", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer span.End()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM game_records WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("failed to delete game records: %w", err)
	}
	return nil
}

func (row gameRecordRow) toRecord() (GameRecord, error) {
	var moves []int
	if err := json.Unmarshal([]byte(row.Moves), &moves); err != nil {
		return GameRecord{}, fmt.Errorf("failed to unmarshal moves of record %d: %w", row.ID, err)
	}
	line, err := parseLine(row.WinningLine)
	if err != nil {
		return GameRecord{}, fmt.Errorf("failed to parse winning line of record %d: %w", row.ID, err)
	}
	return GameRecord{
		ID:          row.ID,
		SessionID:   row.SessionID,
		Mode:        game.Mode(row.Mode),
		Outcome:     game.Outcome(row.Outcome),
		WinningLine: line,
		Moves:       moves,
		FinishedAt:  time.UnixMilli(row.FinishedAt),
	}, nil
}

// formatLine stores a winning line as "0,1,2"; no line is the empty string.
func formatLine(line []int) string {
	parts := make([]string, len(line))
	for i, idx := range line {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ",")
}

func parseLine(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	line := make([]int, len(parts))
	for i, p := range parts {
		idx, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		line[i] = idx
	}
	return line, nil
}
