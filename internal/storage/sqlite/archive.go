package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mcoot/wordgame-go/internal/model"
	"github.com/mcoot/wordgame-go/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS results (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	mode        TEXT    NOT NULL,
	reference   TEXT    NOT NULL,
	players     TEXT    NOT NULL,
	winner      TEXT    NOT NULL,
	moves       INTEGER NOT NULL,
	finished_at TEXT    NOT NULL
);
CREATE INDEX IF NOT EXISTS results_finished_at ON results (finished_at);
`

// Archive stores finished games in a SQLite database
type Archive struct {
	db *sql.DB
}

var _ storage.Archive = (*Archive)(nil)

// Open opens (and creates if missing) the archive at path. ":memory:" gives a
// private in-memory database.
func Open(ctx context.Context, path string) (*Archive, error) {
	dsn := path
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
		dsn = path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single connection keeps ":memory:" one database and serializes writers
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Archive{db: db}, nil
}

// Close closes the database
func (a *Archive) Close() error {
	return a.db.Close()
}

// RecordResult inserts a finished game
func (a *Archive) RecordResult(ctx context.Context, result *model.GameResult) error {
	players, err := json.Marshal(result.Players)
	if err != nil {
		return err
	}
	_, err = a.db.ExecContext(ctx, `
		INSERT INTO results (mode, reference, players, winner, moves, finished_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(result.Mode), result.Reference, string(players), result.Winner, result.Moves,
		result.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	return err
}

// RecentResults returns up to limit results, newest first
func (a *Archive) RecentResults(ctx context.Context, limit int) ([]model.GameResult, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := a.db.QueryContext(ctx, `
		SELECT mode, reference, players, winner, moves, finished_at
		FROM results
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.GameResult, 0, limit)
	for rows.Next() {
		var (
			r          model.GameResult
			mode       string
			players    string
			finishedAt string
		)
		if err := rows.Scan(&mode, &r.Reference, &players, &r.Winner, &r.Moves, &finishedAt); err != nil {
			return nil, err
		}
		r.Mode = model.GameMode(mode)
		if err := json.Unmarshal([]byte(players), &r.Players); err != nil {
			return nil, fmt.Errorf("decode players: %w", err)
		}
		if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt); err != nil {
			return nil, fmt.Errorf("decode finished_at: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
