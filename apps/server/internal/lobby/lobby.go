package lobby

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"gate-lite/apps/server/internal/common/clock"
	"gate-lite/apps/server/internal/common/uuid"
	"gate-lite/apps/server/internal/ledger"
	"gate-lite/apps/server/internal/table"

	"github.com/sirupsen/logrus"
)

var ErrLobbyClosed = errors.New("lobby closed")

// Lobby owns the tables. Every session is routed to one shared table, which
// is created on first use and replaced if it has been stopped.
type Lobby struct {
	mu     sync.RWMutex
	tables map[string]*table.Table
	shared string
	closed bool

	defaultConfig table.Config
	ledger        ledger.Service
	ids           uuid.UUID
	clock         clock.Clock
	base          logrus.FieldLogger
	log           logrus.FieldLogger

	recordTimeout time.Duration
}

// New creates a lobby. A nil ledger disables round recording.
func New(cfg table.Config, ledgerService ledger.Service, ids uuid.UUID, clk clock.Clock, logger logrus.FieldLogger) *Lobby {
	if ids == nil {
		ids = uuid.New()
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Lobby{
		tables:        make(map[string]*table.Table),
		defaultConfig: cfg,
		ledger:        ledgerService,
		ids:           ids,
		clock:         clk,
		base:          logger,
		log:           logger.WithField("component", "lobby"),
		recordTimeout: 3 * time.Second,
	}
}

// QuickStart returns the shared table for a session.
func (l *Lobby) QuickStart(sessionID string) (*table.Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, ErrLobbyClosed
	}
	if t := l.tables[l.shared]; t != nil && !t.IsClosed() {
		return t, nil
	}
	delete(l.tables, l.shared)

	tableID := l.newTableID()
	t, err := table.New(tableID, l.defaultConfig, l.clock, l.base)
	if err != nil {
		return nil, fmt.Errorf("create table: %w", err)
	}
	if l.ledger != nil {
		t.AddSettlementHook(l.recordRound)
	}
	l.tables[tableID] = t
	l.shared = tableID

	l.log.WithFields(logrus.Fields{
		"session": sessionID,
		"table":   tableID,
	}).Info("shared table created")
	return t, nil
}

func (l *Lobby) newTableID() string {
	id := l.ids.NewUUID()
	if len(id) > 8 {
		id = id[:8]
	}
	return "tbl_" + id
}

// GetTable returns a table by ID
func (l *Lobby) GetTable(tableID string) *table.Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tables[tableID]
}

// ListTables returns all table IDs
func (l *Lobby) ListTables() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	ids := make([]string, 0, len(l.tables))
	for id := range l.tables {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close stops every table. QuickStart fails afterwards.
func (l *Lobby) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = true
	for id, t := range l.tables {
		t.Stop()
		delete(l.tables, id)
	}
}
