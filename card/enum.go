package card

const (
	CardInvalid Card = 0
	CardRear    Card = 0xFF
)

// RanksPerSuit and DeckSize describe a standard 52-card set.
const (
	RanksPerSuit = 13
	DeckSize     = RanksPerSuit * 4
)

// FullSet returns all 52 cards in suit-major order.
func FullSet() CardList {
	cards := make(CardList, 0, DeckSize)
	for _, s := range Suits {
		for rank := byte(1); rank <= RanksPerSuit; rank++ {
			cards = append(cards, Make(s, rank))
		}
	}
	return cards
}
