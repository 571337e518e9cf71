package gate

import "gate-lite/card"

// Hand holds the two dealt posts and the result card, if one was drawn.
// Unset cards are card.CardInvalid.
type Hand struct {
	Left   card.Card
	Right  card.Card
	Result card.Card
}

func (h Hand) Dealt() bool {
	return h.Left != card.CardInvalid && h.Right != card.CardInvalid
}

// IsPair reports a pair gate (both posts share a rank).
func (h Hand) IsPair() bool {
	return h.Dealt() && h.Left.Rank() == h.Right.Rank()
}

// Gap is |rank(left) - rank(right)|.
func (h Hand) Gap() int {
	d := int(h.Left.Rank()) - int(h.Right.Rank())
	if d < 0 {
		return -d
	}
	return d
}

// Participant is a seated player. Identity fields are fixed at join; the
// balance and round fields are only mutated by Game.
type Participant struct {
	ID   string
	Name string

	balance int64

	hand      Hand
	phase     DecisionPhase
	bet       int64
	choice    Choice
	resultMsg string
}

func (p *Participant) Balance() int64        { return p.balance }
func (p *Participant) Hand() Hand            { return p.hand }
func (p *Participant) Phase() DecisionPhase  { return p.phase }
func (p *Participant) Bet() int64            { return p.bet }
func (p *Participant) Choice() Choice        { return p.choice }
func (p *Participant) ResultMessage() string { return p.resultMsg }

// resetForDeal installs a fresh hand and classifies it.
func (p *Participant) resetForDeal(left, right card.Card) {
	p.hand = Hand{Left: left, Right: right, Result: card.CardInvalid}
	p.bet = 0
	p.choice = ChoiceNone
	p.resultMsg = ""

	switch p.hand.Gap() {
	case 0:
		p.phase = DecisionShootingSpecial
	case 1:
		p.phase = DecisionDone
		p.resultMsg = resultConsecutive
	default:
		p.phase = DecisionShooting
	}
}

func (p *Participant) settle(msg string) {
	p.resultMsg = msg
	p.phase = DecisionDone
}
