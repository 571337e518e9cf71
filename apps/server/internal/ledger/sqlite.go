package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteService struct {
	db          *sql.DB
	recentLimit int
}

// NewSQLiteService opens (and migrates) a SQLite ledger. ":memory:" is
// accepted for tests.
func NewSQLiteService(dbPath string, recentLimit int) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	// One connection: ":memory:" databases are per connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	pragmas := []string{
		`PRAGMA busy_timeout = 5000;`,
		`PRAGMA journal_mode = WAL;`,
	}
	for _, stmt := range pragmas {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	if err := ensureSQLiteLedgerSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}
	return &SQLiteService{db: db, recentLimit: recentLimit}, nil
}

func (s *SQLiteService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteService) RecordRound(ctx context.Context, rec RoundRecord) error {
	if strings.TrimSpace(rec.RoundID) == "" {
		return fmt.Errorf("round id is required")
	}
	if rec.SettledAt.IsZero() {
		rec.SettledAt = time.Now().UTC()
	}
	summaryRaw, recordB64, err := encodeRecord(rec)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
INSERT INTO gate_round_history (
    round_id, table_id, round, settled_at_ms, summary_json, record_b64
)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (round_id) DO UPDATE
SET
    settled_at_ms = excluded.settled_at_ms,
    summary_json = excluded.summary_json,
    record_b64 = excluded.record_b64
`, rec.RoundID, rec.TableID, int64(rec.Round), rec.SettledAt.UnixMilli(), summaryRaw, recordB64); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
DELETE FROM gate_round_history
WHERE id IN (
    SELECT id
    FROM gate_round_history
    ORDER BY settled_at_ms DESC, id DESC
    LIMIT -1 OFFSET ?
)
`, s.recentLimit); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteService) ListRecent(ctx context.Context, limit int) ([]RoundSummary, error) {
	limit = clampLimit(limit)
	rows, err := s.db.QueryContext(ctx, `
SELECT round_id, table_id, round, settled_at_ms, summary_json
FROM gate_round_history
ORDER BY settled_at_ms DESC, id DESC
LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	return collectSummaries(rows, limit)
}

func (s *SQLiteService) GetRound(ctx context.Context, roundID string) (*RoundRecord, error) {
	var recordB64 string
	err := s.db.QueryRowContext(ctx, `
SELECT record_b64
FROM gate_round_history
WHERE round_id = ?
`, strings.TrimSpace(roundID)).Scan(&recordB64)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(recordB64)
}

func ensureSQLiteLedgerSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS gate_round_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    round_id TEXT NOT NULL UNIQUE,
    table_id TEXT NOT NULL,
    round INTEGER NOT NULL,
    settled_at_ms INTEGER NOT NULL,
    summary_json TEXT NOT NULL DEFAULT '{}',
    record_b64 TEXT NOT NULL DEFAULT ''
)`,
		`CREATE INDEX IF NOT EXISTS idx_gate_round_history_settled_at ON gate_round_history(settled_at_ms DESC, id DESC)`,
	}
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
