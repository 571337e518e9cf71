package table

import "time"

type timerKind byte

const (
	timerDecision  timerKind = 1
	timerCountdown timerKind = 2
	timerFlush     timerKind = 3
)

func (k timerKind) String() string {
	switch k {
	case timerDecision:
		return "decision"
	case timerCountdown:
		return "countdown"
	case timerFlush:
		return "flush"
	}
	return "unknown"
}

// timerHandle is one armed timer. When it fires it posts an EventTimer
// carrying itself into the actor queue; the actor only acts on it if it is
// still the table's current handle of that kind.
type timerHandle struct {
	id    uint64
	kind  timerKind
	round uint64
	t     *time.Timer
}

// cancel is idempotent and safe after the timer has fired.
func (h *timerHandle) cancel() {
	if h == nil || h.t == nil {
		return
	}
	h.t.Stop()
}

// schedule arms a timer for the current round (caller must hold t.mu).
func (t *Table) schedule(kind timerKind, d time.Duration) *timerHandle {
	t.timerSeq++
	h := &timerHandle{id: t.timerSeq, kind: kind, round: t.game.Round()}
	h.t = time.AfterFunc(d, func() {
		t.post(Event{Type: EventTimer, timer: h})
	})
	return h
}

// syncTimersLocked arms or cancels the decision and countdown timers so they
// match the game phase: one decision timer per dealt round while IN_ROUND,
// one countdown chain per resolved round while COUNTDOWN, none otherwise.
func (t *Table) syncTimersLocked() {
	phase, round := t.game.Phase(), t.game.Round()

	if phase == phaseInRound {
		if t.decisionTimer == nil || t.decisionTimer.round != round {
			t.decisionTimer.cancel()
			t.decisionTimer = t.schedule(timerDecision, t.cfg.Game.DecisionTimeout)
		}
	} else if t.decisionTimer != nil {
		t.decisionTimer.cancel()
		t.decisionTimer = nil
	}

	if phase == phaseCountdown {
		if t.countdownTimer == nil || t.countdownTimer.round != round {
			t.countdownTimer.cancel()
			t.countdownLeft = t.cfg.Game.CountdownSeconds
			t.countdownTimer = t.schedule(timerCountdown, 0)
		}
	} else if t.countdownTimer != nil {
		t.countdownTimer.cancel()
		t.countdownTimer = nil
	}
}

func (t *Table) cancelTimersLocked() {
	t.decisionTimer.cancel()
	t.decisionTimer = nil
	t.countdownTimer.cancel()
	t.countdownTimer = nil
	t.flushTimer.cancel()
	t.flushTimer = nil
}

func (t *Table) handleTimer(h *timerHandle) {
	if h == nil {
		return
	}
	switch h.kind {
	case timerDecision:
		if t.decisionTimer != h {
			return
		}
		t.decisionTimer = nil
		if t.game.Phase() != phaseInRound || t.game.Round() != h.round {
			return
		}
		t.log.WithField("round", h.round).Debug("decision window expired")
		settled, err := t.game.ExpireDecisions()
		if err != nil {
			t.log.WithError(err).Debug("expire decisions rejected")
			return
		}
		t.settledLocked(settled)

	case timerCountdown:
		if t.countdownTimer != h {
			return
		}
		t.countdownTimer = nil
		if t.game.Phase() != phaseCountdown || t.game.Round() != h.round {
			return
		}
		if t.countdownLeft > 0 {
			if err := t.game.CountdownTick(t.countdownLeft); err != nil {
				return
			}
			t.countdownLeft--
			t.countdownTimer = t.schedule(timerCountdown, t.cfg.CountdownStep)
			return
		}
		settled, err := t.game.FinishCountdown(t.clock.Now())
		if err != nil {
			t.log.WithError(err).Debug("auto-deal skipped")
			return
		}
		t.log.WithField("round", t.game.Round()).Info("auto-dealt next round")
		t.settledLocked(settled)

	case timerFlush:
		if t.flushTimer != h {
			return
		}
		t.flushTimer = nil
		t.flushLocked()
	}
}
