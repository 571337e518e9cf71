package card

import (
	"math/rand"
	"time"
)

// Deck is a shuffled supply of cards that never runs dry: once the stock is
// exhausted a fresh 52-card set is built and reshuffled before the next draw.
// Dealt cards are not tracked, so repeats across a reshuffle are possible.
//
// Deck is not safe for concurrent use.
type Deck struct {
	rng       *rand.Rand
	stock     CardList
	reshuffle int
}

// NewDeck returns a shuffled deck. A zero seed picks a time based one.
func NewDeck(seed int64) *Deck {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	d := &Deck{rng: rand.New(rand.NewSource(seed))}
	d.refill()
	return d
}

// NewStackedDeck returns a deck whose next draws are exactly cards, in order.
// After they run out it behaves like NewDeck(seed).
func NewStackedDeck(seed int64, cards ...Card) *Deck {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	d := &Deck{rng: rand.New(rand.NewSource(seed))}
	d.stock = make(CardList, 0, len(cards))
	for i := len(cards) - 1; i >= 0; i-- {
		d.stock = append(d.stock, cards[i])
	}
	return d
}

// Draw pops the next card, rebuilding and reshuffling the full set first if
// the stock is empty.
func (d *Deck) Draw() Card {
	if d.stock.Count() == 0 {
		d.refill()
		d.reshuffle++
	}
	return d.stock.PopCard()
}

// Remaining is the number of cards left before the next reshuffle.
func (d *Deck) Remaining() int {
	return d.stock.Count()
}

// Reshuffles counts refills triggered by exhaustion.
func (d *Deck) Reshuffles() int {
	return d.reshuffle
}

func (d *Deck) refill() {
	d.stock = FullSet()
	d.stock.Shuffle(d.rng)
}
