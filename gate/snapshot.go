package gate

import (
	"time"

	"gate-lite/card"
)

// PublicParticipant is what everyone at the table may see about a player.
type PublicParticipant struct {
	ID        string
	Name      string
	Balance   int64
	Phase     DecisionPhase
	ResultMsg string
}

// View is a snapshot personalized for one viewer: the public table plus the
// viewer's own cards. Other participants' cards are never included.
type View struct {
	Participants []PublicParticipant

	Pot        int64
	Ante       int64
	RoundPhase TablePhase
	Round      uint64
	Message    string
	UpdateID   uint64
	Countdown  int

	// Zero outside IN_ROUND.
	DecisionDeadline time.Time

	MyCards     Hand
	MyPhase     DecisionPhase
	MyResultMsg string
}

var emptyHand = Hand{Left: card.CardInvalid, Right: card.CardInvalid, Result: card.CardInvalid}

// View renders the snapshot for viewerID. Unknown viewers get the public
// table with an empty IDLE seat.
func (g *Game) View(viewerID string) View {
	v := View{
		Participants:     make([]PublicParticipant, 0, len(g.participants)),
		Pot:              g.pot,
		Ante:             g.ante,
		RoundPhase:       g.phase,
		Round:            g.round,
		Message:          g.message,
		UpdateID:         g.updateID,
		Countdown:        g.countdown,
		DecisionDeadline: g.Deadline(),
		MyCards:          emptyHand,
		MyPhase:          DecisionIdle,
	}
	for _, p := range g.participants {
		v.Participants = append(v.Participants, PublicParticipant{
			ID:        p.ID,
			Name:      p.Name,
			Balance:   p.balance,
			Phase:     p.phase,
			ResultMsg: p.resultMsg,
		})
	}
	if me := g.byID[viewerID]; me != nil {
		v.MyCards = me.hand
		v.MyPhase = me.phase
		v.MyResultMsg = me.resultMsg
	}
	return v
}
