package ledger

import (
	"context"
	"testing"
	"time"

	"gate-lite/card"
	"gate-lite/gate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var settledAt = time.Date(2026, 5, 1, 20, 30, 0, 0, time.UTC)

func sampleSettlement(round uint64) *gate.Settlement {
	return &gate.Settlement{
		Round:       round,
		PotBefore:   20,
		PotAfter:    50,
		TotalWanted: 70,
		Results: []gate.ParticipantResult{
			{
				ID:      "session-a",
				Name:    "Alice",
				Hand:    gate.Hand{Left: card.MustParse("3s"), Right: card.MustParse("9h"), Result: card.MustParse("3d")},
				Bet:     50,
				Outcome: gate.OutcomeHitPost,
				Delta:   -100,
			},
			{
				ID:      "session-b",
				Name:    "Bob",
				Hand:    gate.Hand{Left: card.MustParse("7s"), Right: card.MustParse("7h"), Result: card.MustParse("Kd")},
				Choice:  gate.ChoiceHigh,
				Bet:     70,
				Outcome: gate.OutcomeWin,
				Delta:   70,
			},
		},
	}
}

func newTestSQLite(t *testing.T, recentLimit int) *SQLiteService {
	t.Helper()
	svc, err := NewSQLiteService(":memory:", recentLimit)
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestNewRoundRecord(t *testing.T) {
	s := sampleSettlement(4)
	s.Redistribution = &gate.Redistribution{Pot: 10, Share: 3, Remainder: 1, Recipients: 3}
	rec := NewRoundRecord("tbl_1", s, settledAt)

	assert.Equal(t, "tbl_1_r4", rec.RoundID)
	require.Len(t, rec.Results, 2)
	assert.Equal(t, Pseudonym("session-a"), rec.Results[0].Participant)
	assert.NotContains(t, rec.Results[0].Participant, "session")
	assert.Equal(t, "hit_post", rec.Results[0].Outcome)
	assert.Equal(t, "♠3", rec.Results[0].Left)
	assert.Equal(t, "", rec.Results[0].Choice)
	assert.Equal(t, "high", rec.Results[1].Choice)
	require.NotNil(t, rec.Redistribution)
	assert.Equal(t, int64(3), rec.Redistribution.Share)

	summary := rec.Summary()
	assert.Equal(t, 1, summary["winners"])
	assert.Equal(t, int64(70), summary["paid_out"])
	assert.Equal(t, int64(100), summary["collected"])
	assert.Equal(t, true, summary["redistributed"])
}

func TestPseudonym_Stable(t *testing.T) {
	assert.Equal(t, Pseudonym("x"), Pseudonym("x"))
	assert.NotEqual(t, Pseudonym("x"), Pseudonym("y"))
	assert.Len(t, Pseudonym("x"), 16)
}

func TestSQLite_RecordAndGet(t *testing.T) {
	svc := newTestSQLite(t, 10)
	ctx := context.Background()
	rec := NewRoundRecord("tbl_1", sampleSettlement(1), settledAt)

	require.NoError(t, svc.RecordRound(ctx, rec))

	got, err := svc.GetRound(ctx, "tbl_1_r1")
	require.NoError(t, err)
	assert.Equal(t, rec.RoundID, got.RoundID)
	assert.Equal(t, rec.Round, got.Round)
	assert.True(t, rec.SettledAt.Equal(got.SettledAt))
	assert.Equal(t, rec.Results, got.Results)
	assert.Nil(t, got.Redistribution)

	_, err = svc.GetRound(ctx, "tbl_1_r99")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_RecordIsIdempotentPerRound(t *testing.T) {
	svc := newTestSQLite(t, 10)
	ctx := context.Background()
	rec := NewRoundRecord("tbl_1", sampleSettlement(1), settledAt)

	require.NoError(t, svc.RecordRound(ctx, rec))
	require.NoError(t, svc.RecordRound(ctx, rec))

	items, err := svc.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSQLite_ListRecentNewestFirstAndTrimmed(t *testing.T) {
	svc := newTestSQLite(t, 3)
	ctx := context.Background()
	for round := uint64(1); round <= 5; round++ {
		rec := NewRoundRecord("tbl_1", sampleSettlement(round), settledAt.Add(time.Duration(round)*time.Second))
		require.NoError(t, svc.RecordRound(ctx, rec))
	}

	items, err := svc.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "tbl_1_r5", items[0].RoundID)
	assert.Equal(t, "tbl_1_r3", items[2].RoundID)
	assert.Equal(t, uint64(5), items[0].Round)
	assert.Equal(t, float64(2), items[0].Summary["bettors"])

	items, err = svc.ListRecent(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.GetRound(ctx, "tbl_1_r1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_RejectsMissingRoundID(t *testing.T) {
	svc := newTestSQLite(t, 10)
	assert.Error(t, svc.RecordRound(context.Background(), RoundRecord{}))
}

func TestNewService_Memory(t *testing.T) {
	svc, mode, err := NewService(Options{Mode: "memory"})
	require.NoError(t, err)
	assert.Equal(t, "memory-noop", mode)
	assert.NoError(t, svc.RecordRound(context.Background(), RoundRecord{RoundID: "x"}))
	items, err := svc.ListRecent(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, items)
	_, err = svc.GetRound(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotFound)

	_, _, err = NewService(Options{Mode: "etcd"})
	assert.Error(t, err)
}

func TestNewService_SQLite(t *testing.T) {
	svc, mode, err := NewService(Options{Mode: "sqlite", SQLitePath: ":memory:"})
	require.NoError(t, err)
	defer svc.Close()
	assert.Equal(t, "sqlite", mode)
}
