package codec

import (
	"gate-lite/card"
	"gate-lite/gate"
)

type CardPayload struct {
	Val     int    `json:"val"`
	Display string `json:"display"`
	Suit    string `json:"suit"`
	Color   string `json:"color"`
}

// HandPayload fields are null until the card exists.
type HandPayload struct {
	Left   *CardPayload `json:"left"`
	Right  *CardPayload `json:"right"`
	Result *CardPayload `json:"result"`
}

type PlayerPayload struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Balance   int64  `json:"balance"`
	Phase     string `json:"phase"`
	ResultMsg string `json:"result_msg"`
}

type StatePayload struct {
	Players     []PlayerPayload `json:"players"`
	Pot         int64           `json:"pot"`
	RoundPhase  string          `json:"round_phase"`
	MyCards     HandPayload     `json:"my_cards"`
	MyPhase     string          `json:"my_phase"`
	MyResultMsg string          `json:"my_result_msg"`
	Message     string          `json:"message"`
	Ante        int64           `json:"ante"`
	UpdateID    uint64          `json:"update_id"`
	Countdown   int             `json:"countdown"`
	// Unix seconds; 0 outside IN_ROUND.
	DecisionDeadline float64 `json:"decision_deadline"`
}

func cardToPayload(c card.Card) *CardPayload {
	if !c.IsValid() {
		return nil
	}
	return &CardPayload{
		Val:     int(c.Rank()),
		Display: c.Display(),
		Suit:    c.Suit().String(),
		Color:   c.Color().String(),
	}
}

// StateFromView converts a personalized engine view to its wire form.
func StateFromView(v gate.View) *StatePayload {
	st := &StatePayload{
		Players:    make([]PlayerPayload, 0, len(v.Participants)),
		Pot:        v.Pot,
		RoundPhase: v.RoundPhase.String(),
		MyCards: HandPayload{
			Left:   cardToPayload(v.MyCards.Left),
			Right:  cardToPayload(v.MyCards.Right),
			Result: cardToPayload(v.MyCards.Result),
		},
		MyPhase:     v.MyPhase.String(),
		MyResultMsg: v.MyResultMsg,
		Message:     v.Message,
		Ante:        v.Ante,
		UpdateID:    v.UpdateID,
		Countdown:   v.Countdown,
	}
	if !v.DecisionDeadline.IsZero() {
		st.DecisionDeadline = float64(v.DecisionDeadline.UnixMilli()) / 1000
	}
	for _, p := range v.Participants {
		st.Players = append(st.Players, PlayerPayload{
			ID:        p.ID,
			Name:      p.Name,
			Balance:   p.Balance,
			Phase:     p.Phase.String(),
			ResultMsg: p.ResultMsg,
		})
	}
	return st
}
