package card

type Suit byte

const (
	Spade Suit = iota
	Heart
	Club
	Diamond
)

var Suits = []Suit{Spade, Heart, Club, Diamond}

func (s Suit) String() string {
	switch s {
	case Diamond:
		return "♦"
	case Club:
		return "♣"
	case Heart:
		return "♥"
	case Spade:
		return "♠"
	}
	return "?"
}

// Color is derived from the suit and only used for display.
type Color byte

const (
	Black Color = iota
	Red
)

func (s Suit) Color() Color {
	if s == Heart || s == Diamond {
		return Red
	}
	return Black
}

func (c Color) String() string {
	if c == Red {
		return "red"
	}
	return "black"
}
