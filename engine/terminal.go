package engine

import "fmt"

// WinReason names the condition that ended the game.
type WinReason uint8

const (
	WinNone  WinReason = iota
	WinSets            // collected the full set count
	WinSeven           // collected the 7s
	WinPair            // collected two numbers summing to 7 or 7 apart
)

func (w WinReason) String() string {
	switch w {
	case WinNone:
		return "none"
	case WinSets:
		return "sets"
	case WinSeven:
		return "seven"
	case WinPair:
		return "pair"
	}
	return fmt.Sprintf("win(%d)", uint8(w))
}

// WinReasonFor evaluates the win conditions for a set of collected numbers.
// The first matching condition is reported.
func WinReasonFor(collected NumberSet, rules RuleSet) WinReason {
	if rules.SetsToWin > 0 && collected.Len() >= int(rules.SetsToWin) {
		return WinSets
	}
	if collected.Has(7) {
		return WinSeven
	}
	for _, pair := range rules.WinPairs() {
		if collected.Has(pair[0]) && collected.Has(pair[1]) {
			return WinPair
		}
	}
	return WinNone
}

// IsWinningCollection reports whether collected satisfies any win condition.
func IsWinningCollection(collected NumberSet, rules RuleSet) bool {
	return WinReasonFor(collected, rules) != WinNone
}

// NumberCounts returns, per number, the physical cards still accounted for in
// hands, the public area and collections.
func (g *GameState) NumberCounts() [MaxNumber + 1]int {
	var counts [MaxNumber + 1]int
	add := func(c Card) {
		if c.Number <= MaxNumber {
			counts[c.Number]++
		}
	}
	for _, p := range g.Players {
		for _, c := range p.Hand {
			add(c)
		}
		for _, c := range p.Collection {
			add(c)
		}
	}
	for _, s := range g.Public {
		if !s.Purged {
			add(s.Card)
		}
	}
	for _, c := range g.Deck {
		add(c)
	}
	return counts
}

// CheckConservation verifies that no number has more than three physical
// cards in play and that every hand is sorted.
func (g *GameState) CheckConservation() error {
	counts := g.NumberCounts()
	for n := MinNumber; n <= MaxNumber; n++ {
		if counts[n] > CopiesPerNumber {
			return fmt.Errorf("number %d: %d cards in play", n, counts[n])
		}
	}
	for _, p := range g.Players {
		for i := 1; i < len(p.Hand); i++ {
			if p.Hand[i-1].Number > p.Hand[i].Number {
				return fmt.Errorf("seat %d: hand not sorted at %d", p.Seat, i)
			}
		}
	}
	return nil
}
