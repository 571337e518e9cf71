package ledger

import (
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultRecentLimit = 200
	defaultListLimit   = 20
	maxListLimit       = 100
)

var ErrNotFound = errors.New("not found")

//go:generate mockgen -package=mocks -destination=mocks/mock_service.go gate-lite/apps/server/internal/ledger Service

// Service stores settled rounds for audit. It is write-mostly: game state is
// never rebuilt from it.
type Service interface {
	Close() error
	RecordRound(ctx context.Context, rec RoundRecord) error
	ListRecent(ctx context.Context, limit int) ([]RoundSummary, error)
	GetRound(ctx context.Context, roundID string) (*RoundRecord, error)
}

// RoundSummary is a list entry: the identifying fields plus summary_json.
type RoundSummary struct {
	RoundID   string         `json:"round_id"`
	TableID   string         `json:"table_id"`
	Round     uint64         `json:"round"`
	SettledAt time.Time      `json:"settled_at"`
	Summary   map[string]any `json:"summary"`
}

type Options struct {
	Mode        string
	SQLitePath  string
	DatabaseDSN string
	RecentLimit int
	Logger      logrus.FieldLogger
}

// NewService opens the backend named by opts.Mode and returns it with a
// printable mode label.
func NewService(opts Options) (Service, string, error) {
	if opts.RecentLimit <= 0 {
		opts.RecentLimit = defaultRecentLimit
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	switch strings.ToLower(strings.TrimSpace(opts.Mode)) {
	case "", "memory":
		return &noopService{}, "memory-noop", nil
	case "sqlite", "local":
		service, err := NewSQLiteService(opts.SQLitePath, opts.RecentLimit)
		if err != nil {
			return nil, "", err
		}
		return service, "sqlite", nil
	case "postgres":
		service, err := NewPostgresService(opts.DatabaseDSN, opts.RecentLimit)
		if err != nil {
			return nil, "", err
		}
		return service, "postgres", nil
	default:
		return nil, "", fmt.Errorf("unknown ledger mode %q", opts.Mode)
	}
}

type noopService struct{}

func (n *noopService) Close() error { return nil }

func (n *noopService) RecordRound(_ context.Context, _ RoundRecord) error { return nil }

func (n *noopService) ListRecent(_ context.Context, _ int) ([]RoundSummary, error) {
	return []RoundSummary{}, nil
}

func (n *noopService) GetRound(_ context.Context, _ string) (*RoundRecord, error) {
	return nil, ErrNotFound
}

// Pseudonym maps a session id to the stable token stored in the ledger.
func Pseudonym(sessionID string) string {
	sum := blake2b.Sum256([]byte(sessionID))
	return hex.EncodeToString(sum[:8])
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

// encodeRecord returns summary_json and the base64 protobuf Struct blob.
func encodeRecord(rec RoundRecord) (string, string, error) {
	summaryRaw, err := json.Marshal(rec.Summary())
	if err != nil {
		return "", "", fmt.Errorf("marshal summary: %w", err)
	}
	full, err := json.Marshal(rec)
	if err != nil {
		return "", "", fmt.Errorf("marshal record: %w", err)
	}
	var st structpb.Struct
	if err := protojson.Unmarshal(full, &st); err != nil {
		return "", "", fmt.Errorf("transcode record: %w", err)
	}
	blob, err := proto.Marshal(&st)
	if err != nil {
		return "", "", fmt.Errorf("encode record: %w", err)
	}
	return string(summaryRaw), base64.StdEncoding.EncodeToString(blob), nil
}

func decodeRecord(recordB64 string) (*RoundRecord, error) {
	blob, err := base64.StdEncoding.DecodeString(recordB64)
	if err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	var st structpb.Struct
	if err := proto.Unmarshal(blob, &st); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	raw, err := protojson.Marshal(&st)
	if err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	var rec RoundRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSummary(row rowScanner) (RoundSummary, error) {
	var item RoundSummary
	var round int64
	var settledAtMs int64
	var summaryRaw []byte
	if err := row.Scan(&item.RoundID, &item.TableID, &round, &settledAtMs, &summaryRaw); err != nil {
		return RoundSummary{}, err
	}
	item.Round = uint64(round)
	item.SettledAt = time.UnixMilli(settledAtMs).UTC()
	item.Summary = map[string]any{}
	if len(summaryRaw) > 0 {
		if err := json.Unmarshal(summaryRaw, &item.Summary); err != nil {
			return RoundSummary{}, err
		}
	}
	return item, nil
}

func collectSummaries(rows *sql.Rows, capacity int) ([]RoundSummary, error) {
	defer rows.Close()
	items := make([]RoundSummary, 0, capacity)
	for rows.Next() {
		item, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
