package card

import "testing"

func TestParse_RoundTripsDisplay(t *testing.T) {
	cases := map[string]struct {
		rank    byte
		display string
		suit    Suit
		color   Color
	}{
		"As":  {1, "A", Spade, Black},
		"10h": {10, "10", Heart, Red},
		"Td":  {10, "10", Diamond, Red},
		"Kc":  {13, "K", Club, Black},
		"7d":  {7, "7", Diamond, Red},
	}
	for in, want := range cases {
		c, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) err: %v", in, err)
		}
		if c.Rank() != want.rank {
			t.Fatalf("Parse(%q) rank=%d, want %d", in, c.Rank(), want.rank)
		}
		if c.Display() != want.display {
			t.Fatalf("Parse(%q) display=%q, want %q", in, c.Display(), want.display)
		}
		if c.Suit() != want.suit || c.Color() != want.color {
			t.Fatalf("Parse(%q) suit/color=%v/%v, want %v/%v", in, c.Suit(), c.Color(), want.suit, want.color)
		}
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "A", "Ax", "1s1", "Zs", "14h"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q) expected error", in)
		}
	}
}

func TestMake_OutOfRange(t *testing.T) {
	if Make(Spade, 0) != CardInvalid || Make(Heart, 14) != CardInvalid {
		t.Fatalf("expected invalid card for out of range rank")
	}
	if CardInvalid.Rank() != 0 || CardRear.Rank() != 0 {
		t.Fatalf("sentinel cards must have rank 0")
	}
}

func TestFullSet_HasEveryCardOnce(t *testing.T) {
	set := FullSet()
	if set.Count() != DeckSize {
		t.Fatalf("expected %d cards, got %d", DeckSize, set.Count())
	}
	seen := make(map[Card]bool, DeckSize)
	for _, c := range set {
		if !c.IsValid() {
			t.Fatalf("invalid card in full set: %v", c)
		}
		if seen[c] {
			t.Fatalf("duplicate card %v", c)
		}
		seen[c] = true
	}
}
