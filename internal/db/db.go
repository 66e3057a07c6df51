package db

import (
	"context"
	"fmt"
	"log/slog"

	_ "github.com/glebarez/go-sqlite"
	"github.com/jmoiron/sqlx"
)

const driverName = "sqlite"

const historySchema = `
	CREATE TABLE IF NOT EXISTS game_records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		mode TEXT NOT NULL,
		outcome TEXT NOT NULL,
		winning_line TEXT NOT NULL DEFAULT '',
		moves TEXT NOT NULL,
		finished_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_game_records_session ON game_records (session_id, id);`

// Connect opens the SQLite database at dsn. A single connection is kept so that
// in-memory databases are shared by every query.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	pool, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	pool.SetMaxOpenConns(1)

	if err := pool.PingContext(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}
	slog.InfoContext(ctx, "Connected to sqlite database", "dsn", dsn)
	return pool, nil
}

// InitializeDB creates the schema if it doesn't exist.
func InitializeDB(ctx context.Context, DB *sqlx.DB) error {
	if _, err := DB.ExecContext(ctx, historySchema); err != nil {
		return fmt.Errorf("failed to create game_records table: %w", err)
	}

	slog.InfoContext(ctx, "DB connection initialized and schema verified.")
	return nil
}
