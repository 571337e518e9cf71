package lobby

import (
	"context"

	"gate-lite/apps/server/internal/ledger"
	"gate-lite/apps/server/internal/table"

	"github.com/sirupsen/logrus"
)

// recordRound runs as a table settlement hook. Ledger failures are logged
// and never reach the game.
func (l *Lobby) recordRound(info table.SettlementInfo) {
	if info.Settlement == nil {
		return
	}
	rec := ledger.NewRoundRecord(info.TableID, info.Settlement, info.SettledAt)

	ctx, cancel := context.WithTimeout(context.Background(), l.recordTimeout)
	defer cancel()
	fields := logrus.Fields{
		"round_id": rec.RoundID,
		"bettors":  len(rec.Results),
	}
	if err := l.ledger.RecordRound(ctx, rec); err != nil {
		l.log.WithError(err).WithFields(fields).Warn("record round failed")
		return
	}
	l.log.WithFields(fields).Debug("round recorded")
}
