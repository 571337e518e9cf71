package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

type PostgresService struct {
	db          *sql.DB
	recentLimit int
}

func NewPostgresService(dsn string, recentLimit int) (*PostgresService, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, fmt.Errorf("empty postgres dsn")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensurePostgresLedgerSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if recentLimit <= 0 {
		recentLimit = defaultRecentLimit
	}
	return &PostgresService{db: db, recentLimit: recentLimit}, nil
}

func (s *PostgresService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresService) RecordRound(ctx context.Context, rec RoundRecord) error {
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
VALUES ($1, $2, $3, $4, $5::jsonb, $6)
ON CONFLICT (round_id) DO UPDATE
SET
    settled_at_ms = EXCLUDED.settled_at_ms,
    summary_json = EXCLUDED.summary_json,
    record_b64 = EXCLUDED.record_b64
`, rec.RoundID, rec.TableID, int64(rec.Round), rec.SettledAt.UnixMilli(), summaryRaw, recordB64); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `
DELETE FROM gate_round_history
WHERE id IN (
    SELECT id
    FROM gate_round_history
    ORDER BY settled_at_ms DESC, id DESC
    OFFSET $1
)
`, s.recentLimit); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *PostgresService) ListRecent(ctx context.Context, limit int) ([]RoundSummary, error) {
	limit = clampLimit(limit)
	rows, err := s.db.QueryContext(ctx, `
SELECT round_id, table_id, round, settled_at_ms, summary_json::text
FROM gate_round_history
ORDER BY settled_at_ms DESC, id DESC
LIMIT $1
`, limit)
	if err != nil {
		return nil, err
	}
	return collectSummaries(rows, limit)
}

func (s *PostgresService) GetRound(ctx context.Context, roundID string) (*RoundRecord, error) {
	var recordB64 string
	err := s.db.QueryRowContext(ctx, `
SELECT record_b64
FROM gate_round_history
WHERE round_id = $1
`, strings.TrimSpace(roundID)).Scan(&recordB64)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRecord(recordB64)
}

func ensurePostgresLedgerSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS gate_round_history (
    id BIGSERIAL PRIMARY KEY,
    round_id TEXT NOT NULL UNIQUE,
    table_id TEXT NOT NULL,
    round BIGINT NOT NULL,
    settled_at_ms BIGINT NOT NULL,
    summary_json JSONB NOT NULL DEFAULT '{}'::jsonb,
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
