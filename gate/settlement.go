package gate

import (
	"fmt"
	"math"
	"math/big"
)

// ParticipantResult is one bettor's line in a settlement.
type ParticipantResult struct {
	ID      string
	Name    string
	Hand    Hand
	Choice  Choice
	Bet     int64
	Outcome Outcome
	// Delta is the balance change from this settlement, before any
	// redistribution: negative for losses, payout for wins.
	Delta int64
	Split bool
}

// Redistribution records a broke-player pot split.
type Redistribution struct {
	Pot        int64
	Share      int64
	Remainder  int64
	Recipients int
}

// Settlement describes one resolved round.
type Settlement struct {
	Round       uint64
	PotBefore   int64
	PotAfter    int64
	TotalWanted int64
	Split       bool
	Results     []ParticipantResult

	Redistribution *Redistribution
}

// JudgeGate classifies an ordinary gate: strictly inside wins, matching a
// post is a hit, anything else misses.
func JudgeGate(left, right, result byte) Outcome {
	lo, hi := left, right
	if lo > hi {
		lo, hi = hi, lo
	}
	switch {
	case result > lo && result < hi:
		return OutcomeWin
	case result == lo || result == hi:
		return OutcomeHitPost
	default:
		return OutcomeMiss
	}
}

// JudgePair classifies a pair gate of rank g.
func JudgePair(g, result byte, choice Choice) Outcome {
	if result == g {
		return OutcomeTriplePost
	}
	if (choice == ChoiceHigh && result > g) || (choice == ChoiceLow && result < g) {
		return OutcomeWin
	}
	return OutcomeLoss
}

func judge(h Hand, choice Choice) Outcome {
	if h.IsPair() {
		return JudgePair(h.Left.Rank(), h.Result.Rank(), choice)
	}
	return JudgeGate(h.Left.Rank(), h.Right.Rank(), h.Result.Rank())
}

// SplitPot computes winner payouts. If the pot covers every bet each winner
// is paid in full (full=true); otherwise payout_i = floor(pot*bet_i/total).
// The proportional payouts may sum to less than pot; the remainder is not
// handed out here. Bets are unbounded, so the sums run in big.Int.
func SplitPot(pot int64, bets []int64) (payouts []int64, full bool) {
	payouts = make([]int64, len(bets))
	total := new(big.Int)
	for _, b := range bets {
		total.Add(total, big.NewInt(b))
	}
	if total.Cmp(big.NewInt(pot)) <= 0 {
		copy(payouts, bets)
		return payouts, true
	}
	share := new(big.Int)
	for i, b := range bets {
		share.Mul(big.NewInt(pot), big.NewInt(b))
		share.Quo(share, total)
		payouts[i] = share.Int64()
	}
	return payouts, false
}

// addCapped adds non-negative amounts, pinning the sum at math.MaxInt64.
func addCapped(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

// SplitEvenly divides pot across n recipients, returning each share and the
// leftover.
func SplitEvenly(pot int64, n int) (share, remainder int64) {
	if n <= 0 || pot <= 0 {
		return 0, pot
	}
	share = pot / int64(n)
	return share, pot - share*int64(n)
}

// lossFor is what a losing bettor pays: 2x bet for a penalty, 1x otherwise,
// never more than the balance.
func lossFor(o Outcome, bet, balance int64) int64 {
	if bet <= 0 || balance <= 0 {
		return 0
	}
	if o.IsPenalty() {
		if bet > balance/2 {
			return balance
		}
		return bet * 2
	}
	return min(bet, balance)
}

// resolve settles every BET_PLACED participant: losers pay into the pot
// first, then winners are paid out of it, then the broke check runs.
func (g *Game) resolve() *Settlement {
	s := &Settlement{Round: g.round, PotBefore: g.pot}

	bettors := make([]*Participant, 0, len(g.participants))
	for _, p := range g.participants {
		if p.phase != DecisionBetPlaced {
			continue
		}
		p.hand.Result = g.deck.Draw()
		bettors = append(bettors, p)
		s.Results = append(s.Results, ParticipantResult{
			ID:      p.ID,
			Name:    p.Name,
			Hand:    p.hand,
			Choice:  p.choice,
			Bet:     p.bet,
			Outcome: judge(p.hand, p.choice),
		})
	}

	winners := make([]int, 0, len(bettors))
	for i, p := range bettors {
		res := &s.Results[i]
		if res.Outcome == OutcomeWin {
			winners = append(winners, i)
			continue
		}
		loss := lossFor(res.Outcome, p.bet, p.balance)
		p.balance -= loss
		g.pot += loss
		res.Delta = -loss
		p.settle(fmt.Sprintf(resultLost, res.Outcome.label(), loss))
	}

	if len(winners) > 0 {
		bets := make([]int64, len(winners))
		for k, i := range winners {
			bets[k] = bettors[i].bet
			s.TotalWanted = addCapped(s.TotalWanted, bets[k])
		}
		payouts, full := SplitPot(g.pot, bets)
		s.Split = !full
		for k, i := range winners {
			p, res := bettors[i], &s.Results[i]
			p.balance += payouts[k]
			g.pot -= payouts[k]
			res.Delta = payouts[k]
			res.Split = !full
			if full {
				p.settle(fmt.Sprintf(resultWon, payouts[k]))
			} else {
				p.settle(fmt.Sprintf(resultWonSplit, payouts[k]))
			}
		}
	}

	g.phase = TablePhaseCountdown
	g.countdown = g.cfg.CountdownSeconds
	g.message = fmt.Sprintf(msgRoundComplete, g.cfg.CountdownSeconds)
	g.bump()

	s.Redistribution = g.redistributeIfBroke()
	s.PotAfter = g.pot
	return s
}

// redistributeIfBroke splits the whole pot evenly across everyone seated
// when any balance is at or below zero. An empty pot is left alone.
// TODO: decide how a table with a broke participant and an empty pot
// recovers; today it just keeps dealing them in without an ante.
func (g *Game) redistributeIfBroke() *Redistribution {
	if len(g.participants) == 0 || g.pot <= 0 {
		return nil
	}
	broke := false
	for _, p := range g.participants {
		if p.balance <= 0 {
			broke = true
			break
		}
	}
	if !broke {
		return nil
	}

	total := g.pot
	share, remainder := SplitEvenly(total, len(g.participants))
	for _, p := range g.participants {
		p.balance += share
	}
	g.pot = remainder
	g.message = fmt.Sprintf(msgRedistributed, total, share)
	g.bump()
	return &Redistribution{Pot: total, Share: share, Remainder: remainder, Recipients: len(g.participants)}
}
