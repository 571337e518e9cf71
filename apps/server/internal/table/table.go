package table

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"gate-lite/apps/server/internal/codec"
	"gate-lite/apps/server/internal/common/clock"
	"gate-lite/gate"

	"github.com/sirupsen/logrus"
)

const (
	phaseInRound   = gate.TablePhaseInRound
	phaseCountdown = gate.TablePhaseCountdown
)

// Table owns one gate game and serializes everything that touches it through
// a single actor goroutine: client events, timer firings and broadcast
// flushes all arrive on the events channel.
type Table struct {
	ID  string
	cfg Config

	clock clock.Clock
	log   logrus.FieldLogger

	mu       sync.RWMutex
	game     *gate.Game
	closed   bool
	stopOnce sync.Once

	subscribers map[string]Subscriber // session id -> delivery
	lastSent    map[string]uint64     // session id -> last delivered update id

	events chan Event
	done   chan struct{}

	timerSeq       uint64
	decisionTimer  *timerHandle
	countdownTimer *timerHandle
	countdownLeft  int
	flushTimer     *timerHandle

	settleHooks []SettlementHook
}

// Config contains table settings
type Config struct {
	Game gate.Config
	// Interval between countdown ticks.
	CountdownStep time.Duration
	// Coalescing window for broadcasts caused by client events. Zero flushes
	// after every event.
	BroadcastDebounce time.Duration
}

func DefaultConfig() Config {
	return Config{
		Game:              gate.DefaultConfig(),
		CountdownStep:     time.Second,
		BroadcastDebounce: 50 * time.Millisecond,
	}
}

// Event types for the actor message queue
type EventType int

const (
	EventJoin EventType = iota
	EventAction
	EventLeave
	EventTimer
	EventClose
)

// Event represents a message to the table actor
type Event struct {
	Type      EventType
	SessionID string
	Name      string
	Ante      int64
	Action    gate.ActionType
	Amount    int64
	Choice    gate.Choice
	// Subscriber is registered on EventJoin.
	Subscriber Subscriber
	Response   chan error

	timer *timerHandle
}

// SettlementInfo is emitted once per resolved round.
type SettlementInfo struct {
	TableID    string
	Settlement *gate.Settlement
	SettledAt  time.Time
}

// SettlementHook is a post-resolution callback. Hooks run on their own
// goroutine and must not call back into the table synchronously.
type SettlementHook func(info SettlementInfo)

var (
	ErrTableClosed   = errors.New("table closed")
	ErrUnknownAction = errors.New("unknown action")
)

// New creates a table and starts its actor.
func New(id string, cfg Config, clk clock.Clock, logger logrus.FieldLogger) (*Table, error) {
	if cfg.CountdownStep <= 0 {
		cfg.CountdownStep = time.Second
	}
	game, err := gate.NewGame(cfg.Game)
	if err != nil {
		return nil, fmt.Errorf("create game: %w", err)
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	t := &Table{
		ID:          id,
		cfg:         cfg,
		clock:       clk,
		log:         logger.WithField("table", id),
		game:        game,
		subscribers: make(map[string]Subscriber),
		lastSent:    make(map[string]uint64),
		events:      make(chan Event, 256),
		done:        make(chan struct{}),
	}
	go t.run()

	t.log.WithFields(logrus.Fields{
		"ante":             cfg.Game.Ante,
		"decision_timeout": cfg.Game.DecisionTimeout,
		"countdown":        cfg.Game.CountdownSeconds,
	}).Info("table created")
	return t, nil
}

// run is the main actor loop
func (t *Table) run() {
	for {
		select {
		case event := <-t.events:
			err := t.handleEvent(event)
			if event.Response != nil {
				event.Response <- err
			}
		case <-t.done:
			t.log.Info("actor stopped")
			return
		}
	}
}

// handleEvent applies one event, then re-syncs timers and broadcasts if the
// update id moved.
func (t *Table) handleEvent(e Event) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed && e.Type != EventClose {
		return ErrTableClosed
	}

	before := t.game.UpdateID()
	immediate := false
	var err error
	switch e.Type {
	case EventJoin:
		err = t.handleJoin(e)
	case EventAction:
		err = t.handleAction(e)
	case EventLeave:
		t.handleLeave(e.SessionID)
		immediate = true
	case EventTimer:
		t.handleTimer(e.timer)
		immediate = true
	case EventClose:
		t.stopLocked()
		return nil
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}

	t.syncTimersLocked()
	if t.game.UpdateID() != before {
		t.requestBroadcastLocked(immediate)
	}
	return err
}

func (t *Table) handleJoin(e Event) error {
	p, created := t.game.Join(e.SessionID, e.Name)
	t.game.SetAnte(e.Ante)
	t.subscribeLocked(e.SessionID, e.Subscriber)
	if e.Subscriber != nil {
		e.Subscriber.Send(codec.Welcome(p.ID))
	}
	if created {
		t.log.WithFields(logrus.Fields{
			"session": e.SessionID,
			"name":    p.Name,
			"players": t.game.ParticipantCount(),
		}).Info("player joined")
	}
	return nil
}

func (t *Table) handleAction(e Event) error {
	var (
		settled *gate.Settlement
		err     error
	)
	switch e.Action {
	case gate.ActionDeal:
		settled, err = t.game.Deal(t.clock.Now())
		if err == nil {
			t.log.WithField("round", t.game.Round()).Info("round dealt")
		}
	case gate.ActionShoot:
		settled, err = t.game.PlaceBet(e.SessionID, e.Amount, gate.ChoiceNone)
	case gate.ActionShootSpecial:
		settled, err = t.game.PlaceBet(e.SessionID, e.Amount, e.Choice)
	case gate.ActionPass:
		settled, err = t.game.Pass(e.SessionID)
	default:
		err = ErrUnknownAction
	}
	if err != nil {
		t.log.WithError(err).WithFields(logrus.Fields{
			"session": e.SessionID,
			"action":  e.Action,
		}).Debug("action ignored")
		return err
	}
	t.settledLocked(settled)
	return nil
}

func (t *Table) handleLeave(sessionID string) {
	t.unsubscribeLocked(sessionID)
	settled, ok := t.game.Leave(sessionID)
	if !ok {
		return
	}
	t.log.WithFields(logrus.Fields{
		"session": sessionID,
		"players": t.game.ParticipantCount(),
	}).Info("player left")
	t.settledLocked(settled)
}

func (t *Table) settledLocked(s *gate.Settlement) {
	if s == nil {
		return
	}
	t.log.WithFields(logrus.Fields{
		"round":      s.Round,
		"bettors":    len(s.Results),
		"pot_before": s.PotBefore,
		"pot_after":  s.PotAfter,
		"split":      s.Split,
	}).Info("round resolved")
	if s.Redistribution != nil {
		t.log.WithField("share", s.Redistribution.Share).Info("pot redistributed")
	}
	t.dispatchSettlementHooks(s)
}

func (t *Table) dispatchSettlementHooks(s *gate.Settlement) {
	if len(t.settleHooks) == 0 {
		return
	}
	info := SettlementInfo{
		TableID:    t.ID,
		Settlement: s,
		SettledAt:  t.clock.Now(),
	}
	hooks := append([]SettlementHook(nil), t.settleHooks...)
	for _, hook := range hooks {
		go func(cb SettlementHook) {
			defer func() {
				if r := recover(); r != nil {
					t.log.WithField("panic", r).Error("settlement hook panic")
				}
			}()
			cb(info)
		}(hook)
	}
}

// post enqueues an event without waiting for it to be handled. It gives up
// once the table has stopped.
func (t *Table) post(e Event) {
	select {
	case t.events <- e:
	case <-t.done:
	}
}

// SubmitEvent sends an event to the actor and waits for its result.
func (t *Table) SubmitEvent(e Event) error {
	if e.Response == nil {
		e.Response = make(chan error, 1)
	}

	t.mu.RLock()
	closed := t.closed
	t.mu.RUnlock()
	if closed {
		return ErrTableClosed
	}

	select {
	case t.events <- e:
	case <-t.done:
		return ErrTableClosed
	}

	select {
	case err := <-e.Response:
		return err
	case <-t.done:
		return ErrTableClosed
	}
}

// Stop shuts down the table actor
func (t *Table) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Table) stopLocked() {
	t.closed = true
	t.cancelTimersLocked()
	t.stopOnce.Do(func() {
		close(t.done)
	})
}

func (t *Table) IsClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

// View returns the personalized snapshot for a session (thread-safe).
func (t *Table) View(sessionID string) gate.View {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.game.View(sessionID)
}

func (t *Table) ParticipantCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.game.ParticipantCount()
}

// AddSettlementHook registers a post-resolution callback.
func (t *Table) AddSettlementHook(hook SettlementHook) {
	if hook == nil {
		return
	}
	t.mu.Lock()
	t.settleHooks = append(t.settleHooks, hook)
	t.mu.Unlock()
}
