package card

import "testing"

func TestDeck_DrawsFullSetWithoutRepeats(t *testing.T) {
	d := NewDeck(42)
	seen := make(map[Card]bool, DeckSize)
	for i := 0; i < DeckSize; i++ {
		c := d.Draw()
		if !c.IsValid() {
			t.Fatalf("draw %d returned invalid card", i)
		}
		if seen[c] {
			t.Fatalf("draw %d repeated %v before exhaustion", i, c)
		}
		seen[c] = true
	}
	if d.Remaining() != 0 {
		t.Fatalf("expected empty stock after %d draws, got %d", DeckSize, d.Remaining())
	}
	if d.Reshuffles() != 0 {
		t.Fatalf("expected no reshuffle yet, got %d", d.Reshuffles())
	}
}

func TestDeck_ReshufflesOnExhaustion(t *testing.T) {
	d := NewDeck(7)
	for i := 0; i < DeckSize; i++ {
		d.Draw()
	}
	c := d.Draw()
	if !c.IsValid() {
		t.Fatalf("53rd draw returned invalid card")
	}
	if d.Reshuffles() != 1 {
		t.Fatalf("expected 1 reshuffle, got %d", d.Reshuffles())
	}
	if d.Remaining() != DeckSize-1 {
		t.Fatalf("expected %d remaining after reshuffle, got %d", DeckSize-1, d.Remaining())
	}
}

func TestStackedDeck_DrawsInOrderThenRefills(t *testing.T) {
	stacked := []Card{MustParse("3s"), MustParse("9h"), MustParse("6d")}
	d := NewStackedDeck(1, stacked...)
	for i, want := range stacked {
		if got := d.Draw(); got != want {
			t.Fatalf("draw %d: got %v want %v", i, got, want)
		}
	}
	if c := d.Draw(); !c.IsValid() {
		t.Fatalf("expected refill after stacked cards, got %v", c)
	}
	if d.Reshuffles() != 1 {
		t.Fatalf("expected refill to count as reshuffle, got %d", d.Reshuffles())
	}
}

func TestDeck_SameSeedSameOrder(t *testing.T) {
	a, b := NewDeck(99), NewDeck(99)
	for i := 0; i < DeckSize*2; i++ {
		if x, y := a.Draw(), b.Draw(); x != y {
			t.Fatalf("draw %d diverged: %v vs %v", i, x, y)
		}
	}
}
