package ledger

import (
	"fmt"
	"time"

	"gate-lite/card"
	"gate-lite/gate"
)

// RoundRecord is the audit entry for one resolved round. Participant ids are
// stored as pseudonyms.
type RoundRecord struct {
	RoundID        string              `json:"round_id"`
	TableID        string              `json:"table_id"`
	Round          uint64              `json:"round"`
	SettledAt      time.Time           `json:"settled_at"`
	PotBefore      int64               `json:"pot_before"`
	PotAfter       int64               `json:"pot_after"`
	TotalWanted    int64               `json:"total_wanted"`
	Split          bool                `json:"split"`
	Results        []ResultItem        `json:"results"`
	Redistribution *RedistributionItem `json:"redistribution,omitempty"`
}

type ResultItem struct {
	Participant string `json:"participant"`
	Name        string `json:"name"`
	Left        string `json:"left"`
	Right       string `json:"right"`
	Result      string `json:"result"`
	Choice      string `json:"choice,omitempty"`
	Bet         int64  `json:"bet"`
	Outcome     string `json:"outcome"`
	Delta       int64  `json:"delta"`
	Split       bool   `json:"split"`
}

type RedistributionItem struct {
	Pot        int64 `json:"pot"`
	Share      int64 `json:"share"`
	Remainder  int64 `json:"remainder"`
	Recipients int   `json:"recipients"`
}

func RoundID(tableID string, round uint64) string {
	return fmt.Sprintf("%s_r%d", tableID, round)
}

// NewRoundRecord converts an engine settlement.
func NewRoundRecord(tableID string, s *gate.Settlement, settledAt time.Time) RoundRecord {
	rec := RoundRecord{
		RoundID:     RoundID(tableID, s.Round),
		TableID:     tableID,
		Round:       s.Round,
		SettledAt:   settledAt.UTC(),
		PotBefore:   s.PotBefore,
		PotAfter:    s.PotAfter,
		TotalWanted: s.TotalWanted,
		Split:       s.Split,
		Results:     make([]ResultItem, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		rec.Results = append(rec.Results, ResultItem{
			Participant: Pseudonym(r.ID),
			Name:        r.Name,
			Left:        cardLabel(r.Hand.Left),
			Right:       cardLabel(r.Hand.Right),
			Result:      cardLabel(r.Hand.Result),
			Choice:      r.Choice.String(),
			Bet:         r.Bet,
			Outcome:     r.Outcome.String(),
			Delta:       r.Delta,
			Split:       r.Split,
		})
	}
	if rd := s.Redistribution; rd != nil {
		rec.Redistribution = &RedistributionItem{
			Pot:        rd.Pot,
			Share:      rd.Share,
			Remainder:  rd.Remainder,
			Recipients: rd.Recipients,
		}
	}
	return rec
}

// Summary is the small document stored in summary_json and returned by the
// recent-rounds listing.
func (r RoundRecord) Summary() map[string]any {
	var paidOut, collected int64
	winners := 0
	for _, res := range r.Results {
		if res.Delta > 0 {
			paidOut += res.Delta
			winners++
		} else {
			collected -= res.Delta
		}
	}
	return map[string]any{
		"pot_before":    r.PotBefore,
		"pot_after":     r.PotAfter,
		"bettors":       len(r.Results),
		"winners":       winners,
		"paid_out":      paidOut,
		"collected":     collected,
		"split":         r.Split,
		"redistributed": r.Redistribution != nil,
	}
}

func cardLabel(c card.Card) string {
	if !c.IsValid() {
		return ""
	}
	return c.String()
}
