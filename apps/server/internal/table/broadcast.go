package table

import "gate-lite/apps/server/internal/codec"

// Subscriber receives the table's personalized messages. Send must not
// block; it reports whether the message was queued for delivery.
type Subscriber interface {
	Send(env codec.Envelope) bool
}

func (t *Table) subscribeLocked(sessionID string, sub Subscriber) {
	if sub == nil {
		return
	}
	t.subscribers[sessionID] = sub
}

func (t *Table) unsubscribeLocked(sessionID string) {
	delete(t.subscribers, sessionID)
	delete(t.lastSent, sessionID)
}

// requestBroadcastLocked schedules a state flush. Client events are
// coalesced over the debounce window; immediate flushes (timers, leaves)
// go out right away and absorb any pending debounced flush.
func (t *Table) requestBroadcastLocked(immediate bool) {
	if immediate || t.cfg.BroadcastDebounce <= 0 {
		t.flushTimer.cancel()
		t.flushTimer = nil
		t.flushLocked()
		return
	}
	if t.flushTimer != nil {
		return
	}
	t.flushTimer = t.schedule(timerFlush, t.cfg.BroadcastDebounce)
}

// flushLocked sends every subscriber its own view unless it already holds
// the current update id. A failed send leaves the entry stale so the next
// flush retries.
func (t *Table) flushLocked() {
	updateID := t.game.UpdateID()
	for sessionID, sub := range t.subscribers {
		if last, ok := t.lastSent[sessionID]; ok && last == updateID {
			continue
		}
		if sub.Send(codec.State(t.game.View(sessionID))) {
			t.lastSent[sessionID] = updateID
		} else {
			t.log.WithField("session", sessionID).Debug("state dropped: outbound queue full")
		}
	}
}
