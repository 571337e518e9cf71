package gate

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gate-lite/card"
)

// Game is the table state: participants, pot, phase and the round state
// machine driving them. Every exported method is one atomic step.
//
// Game is not safe for concurrent use. The owning table actor serializes
// all calls, timers included.
type Game struct {
	cfg  Config
	deck *card.Deck

	participants []*Participant // join order, display only
	byID         map[string]*Participant

	pot       int64
	ante      int64
	phase     TablePhase
	round     uint64
	updateID  uint64
	message   string
	deadline  time.Time
	countdown int

	minted    int64
	withdrawn int64
}

func NewGame(cfg Config) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Game{
		cfg:     cfg,
		deck:    card.NewDeck(cfg.Seed),
		byID:    make(map[string]*Participant),
		ante:    cfg.Ante,
		phase:   TablePhaseWaiting,
		message: msgWaiting,
	}, nil
}

func (g *Game) bump() {
	g.updateID++
}

// Join registers a participant. Joining again with a known id returns the
// existing participant untouched and reports created=false.
func (g *Game) Join(id, name string) (p *Participant, created bool) {
	if existing := g.byID[id]; existing != nil {
		return existing, false
	}
	p = &Participant{
		ID:      id,
		Name:    normalizeName(name),
		balance: g.cfg.StartingBalance,
		phase:   DecisionIdle,
		hand:    Hand{Left: card.CardInvalid, Right: card.CardInvalid, Result: card.CardInvalid},
	}
	g.participants = append(g.participants, p)
	g.byID[id] = p
	g.minted += p.balance
	g.message = fmt.Sprintf(msgJoined, p.Name)
	g.bump()
	// Mid-round joiners stay IDLE until the next deal.
	g.checkCompletion()
	return p, true
}

// SetAnte updates the shared ante applied from the next deal on. Values
// below 1 are raised to 1. Reports whether the ante changed.
func (g *Game) SetAnte(ante int64) bool {
	if ante < 1 {
		ante = 1
	}
	if ante == g.ante {
		return false
	}
	g.ante = ante
	g.bump()
	return true
}

// Leave removes a participant. A departing undecided participant cannot
// block the round: removal runs the completion check, which may resolve it.
func (g *Game) Leave(id string) (*Settlement, bool) {
	p := g.byID[id]
	if p == nil {
		return nil, false
	}
	delete(g.byID, id)
	g.withdrawn += p.balance
	for i, cur := range g.participants {
		if cur == p {
			g.participants = append(g.participants[:i], g.participants[i+1:]...)
			break
		}
	}
	g.message = fmt.Sprintf(msgLeft, p.Name)
	g.bump()

	var settled *Settlement
	if g.phase == TablePhaseInRound {
		settled = g.checkCompletion()
	}
	if g.phase == TablePhaseCountdown && len(g.participants) == 0 {
		g.cancelCountdown()
	}
	return settled, true
}

// Deal starts a round from WAITING. The returned settlement is non-nil when
// every hand auto-passed and the round resolved immediately.
func (g *Game) Deal(now time.Time) (*Settlement, error) {
	if g.phase != TablePhaseWaiting {
		return nil, ErrOutOfPhase
	}
	if len(g.participants) == 0 {
		return nil, ErrNoParticipants
	}
	return g.deal(now), nil
}

func (g *Game) deal(now time.Time) *Settlement {
	// Participants who cannot cover the ante are still dealt in.
	for _, p := range g.participants {
		if p.balance >= g.ante {
			p.balance -= g.ante
			g.pot += g.ante
		}
	}
	for _, p := range g.participants {
		left := g.deck.Draw()
		right := g.deck.Draw()
		p.resetForDeal(left, right)
	}

	g.round++
	g.phase = TablePhaseInRound
	g.countdown = 0
	g.message = fmt.Sprintf(msgDealt, int(g.cfg.DecisionTimeout/time.Second))
	g.deadline = now.Add(g.cfg.DecisionTimeout)
	g.bump()

	return g.checkCompletion()
}

// PlaceBet records a bet. SHOOT bets (ChoiceNone) are only valid on an
// ordinary gate, SHOOT_SPECIAL bets need high/low on a pair gate.
func (g *Game) PlaceBet(id string, amount int64, choice Choice) (*Settlement, error) {
	p := g.byID[id]
	if p == nil {
		return nil, ErrUnknownParticipant
	}
	if g.phase != TablePhaseInRound {
		return nil, ErrOutOfPhase
	}
	switch p.phase {
	case DecisionShooting:
		if choice != ChoiceNone {
			return nil, ErrInvalidChoice
		}
	case DecisionShootingSpecial:
		if choice != ChoiceHigh && choice != ChoiceLow {
			return nil, ErrInvalidChoice
		}
	default:
		return nil, ErrOutOfPhase
	}
	if amount <= 0 {
		return nil, ErrInvalidBet
	}

	p.bet = amount
	p.choice = choice
	p.phase = DecisionBetPlaced
	p.resultMsg = resultBetPlaced
	g.bump()
	return g.checkCompletion(), nil
}

// Pass folds the participant's gate for this round.
func (g *Game) Pass(id string) (*Settlement, error) {
	p := g.byID[id]
	if p == nil {
		return nil, ErrUnknownParticipant
	}
	if g.phase != TablePhaseInRound || !p.phase.Pending() {
		return nil, ErrOutOfPhase
	}
	p.bet = 0
	p.settle(resultPassed)
	g.bump()
	return g.checkCompletion(), nil
}

// ExpireDecisions auto-passes everyone still deciding. It is what the
// decision timer does when it fires.
func (g *Game) ExpireDecisions() (*Settlement, error) {
	if g.phase != TablePhaseInRound {
		return nil, ErrOutOfPhase
	}
	for _, p := range g.participants {
		if p.phase.Pending() {
			p.bet = 0
			p.settle(resultTimeUp)
		}
	}
	g.bump()
	return g.checkCompletion(), nil
}

// CountdownTick publishes the seconds left before the next deal.
func (g *Game) CountdownTick(remaining int) error {
	if g.phase != TablePhaseCountdown {
		return ErrOutOfPhase
	}
	g.countdown = remaining
	g.message = fmt.Sprintf(msgCountdown, remaining)
	g.bump()
	return nil
}

// FinishCountdown deals the next round. With nobody seated the countdown is
// cancelled instead and ErrNoParticipants is returned.
func (g *Game) FinishCountdown(now time.Time) (*Settlement, error) {
	if g.phase != TablePhaseCountdown {
		return nil, ErrOutOfPhase
	}
	if len(g.participants) == 0 {
		g.cancelCountdown()
		return nil, ErrNoParticipants
	}
	return g.deal(now), nil
}

// CancelCountdown reverts a pending auto-deal to WAITING.
func (g *Game) CancelCountdown() bool {
	if g.phase != TablePhaseCountdown {
		return false
	}
	g.cancelCountdown()
	return true
}

func (g *Game) cancelCountdown() {
	g.phase = TablePhaseWaiting
	g.countdown = 0
	g.message = msgCountdownAborted
	g.bump()
}

// checkCompletion resolves the round once nobody dealt in still owes a
// decision. Outside IN_ROUND it does nothing, which makes resolution
// at-most-once per deal.
func (g *Game) checkCompletion() *Settlement {
	if g.phase != TablePhaseInRound {
		return nil
	}
	for _, p := range g.participants {
		if p.phase.Pending() {
			return nil
		}
	}
	return g.resolve()
}

func normalizeName(raw string) string {
	name := strings.TrimSpace(raw)
	if name == "" {
		return defaultName
	}
	if utf8.RuneCountInString(name) > maxNameRunes {
		name = string([]rune(name)[:maxNameRunes])
	}
	return name
}

// --- read accessors ---

func (g *Game) Phase() TablePhase { return g.phase }
func (g *Game) Pot() int64        { return g.pot }
func (g *Game) Ante() int64       { return g.ante }
func (g *Game) Round() uint64     { return g.round }
func (g *Game) UpdateID() uint64  { return g.updateID }
func (g *Game) Message() string   { return g.message }
func (g *Game) Countdown() int    { return g.countdown }
func (g *Game) Config() Config    { return g.cfg }


// Deadline is the decision deadline, zero outside IN_ROUND.
func (g *Game) Deadline() time.Time {
	if g.phase != TablePhaseInRound {
		return time.Time{}
	}
	return g.deadline
}

func (g *Game) Participant(id string) *Participant {
	return g.byID[id]
}

func (g *Game) ParticipantCount() int {
	return len(g.participants)
}

// Totals is pot + sum of seated balances.
func (g *Game) Totals() int64 {
	total := g.pot
	for _, p := range g.participants {
		total += p.balance
	}
	return total
}

// Minted is the money created by joins. Totals()+Withdrawn() always equals
// Minted().
func (g *Game) Minted() int64 { return g.minted }

// Withdrawn is the balance carried away by participants who left.
func (g *Game) Withdrawn() int64 { return g.withdrawn }
