package card

import (
	"fmt"
	"strings"
)

// Card is a single playing card.
//
// Encoding:
// - high 4 bits: suit (0:Spade, 1:Heart, 2:Club, 3:Diamond)
// - low 4 bits: rank (1:A, 2..9, 10:T, 11:J, 12:Q, 13:K)
type Card byte

// Make builds a card from a suit and a rank in 1..13. Out of range ranks
// yield CardInvalid.
func Make(s Suit, rank byte) Card {
	if rank < 1 || rank > 13 || s > Diamond {
		return CardInvalid
	}
	return Card(byte(s)<<4 | rank)
}

func (c Card) String() string {
	if c == CardInvalid {
		return "Invalid"
	}
	if c == CardRear {
		return "Rear"
	}
	return fmt.Sprintf("%s%s", c.Suit(), c.Display())
}

// Rank returns the face value 1-13 (A=1, K=13). Aces are always low.
func (c Card) Rank() byte {
	if c == CardInvalid || c == CardRear {
		return 0
	}
	return byte(c & 0x0F)
}

func (c Card) Suit() Suit {
	return Suit(c >> 4)
}

func (c Card) Color() Color {
	return c.Suit().Color()
}

func (c Card) IsValid() bool {
	r := c.Rank()
	return r >= 1 && r <= 13 && c.Suit() <= Diamond
}

// Display is the face label shown to players: A, 2..10, J, Q, K.
func (c Card) Display() string {
	switch r := c.Rank(); r {
	case 0:
		return ""
	case 1:
		return "A"
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	default:
		return fmt.Sprintf("%d", r)
	}
}

// Parse converts strings such as "As", "Td", "10h" or "7c" into a Card.
func Parse(cardStr string) (Card, error) {
	if len(cardStr) < 2 {
		return CardInvalid, fmt.Errorf("invalid card string: %s", cardStr)
	}

	var suit Suit
	switch suitChar := cardStr[len(cardStr)-1]; suitChar {
	case 's', 'S':
		suit = Spade
	case 'h', 'H':
		suit = Heart
	case 'c', 'C':
		suit = Club
	case 'd', 'D':
		suit = Diamond
	default:
		return CardInvalid, fmt.Errorf("invalid suit: %c", suitChar)
	}

	var rank byte
	switch rankStr := strings.ToUpper(cardStr[:len(cardStr)-1]); rankStr {
	case "A", "1":
		rank = 1
	case "2", "3", "4", "5", "6", "7", "8", "9":
		rank = rankStr[0] - '0'
	case "T", "10":
		rank = 10
	case "J":
		rank = 11
	case "Q":
		rank = 12
	case "K":
		rank = 13
	default:
		return CardInvalid, fmt.Errorf("invalid rank: %s", rankStr)
	}

	return Make(suit, rank), nil
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(cardStr string) Card {
	c, err := Parse(cardStr)
	if err != nil {
		panic(err)
	}
	return c
}
