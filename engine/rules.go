package engine

import "fmt"

// NumberRange is the inclusive range of card numbers in play.
type NumberRange struct {
	Min uint8 `json:"min"`
	Max uint8 `json:"max"`
}

// Contains reports whether n lies in the range.
func (r NumberRange) Contains(n uint8) bool { return n >= r.Min && n <= r.Max }

// Len returns the count of distinct numbers.
func (r NumberRange) Len() int {
	if r.Max < r.Min {
		return 0
	}
	return int(r.Max-r.Min) + 1
}

// RuleSet is the fixed configuration for one player count.
type RuleSet struct {
	Players    uint8       `json:"players"`
	Numbers    NumberRange `json:"numbers"`
	HandSize   uint8       `json:"handSize"`   // cards dealt to each player
	PublicSize uint8       `json:"publicSize"` // cards dealt face down to the public area
	SetsToWin  uint8       `json:"setsToWin"`  // distinct triples that win outright
}

// ruleTable is indexed by player count minus MinPlayers. Two players drop
// numbers 11 and 12; three players drop 12.
var ruleTable = [...]RuleSet{
	{Players: 2, Numbers: NumberRange{1, 10}, HandSize: 10, PublicSize: 10, SetsToWin: 3},
	{Players: 3, Numbers: NumberRange{1, 11}, HandSize: 8, PublicSize: 9, SetsToWin: 3},
	{Players: 4, Numbers: NumberRange{1, 12}, HandSize: 7, PublicSize: 8, SetsToWin: 3},
	{Players: 5, Numbers: NumberRange{1, 12}, HandSize: 6, PublicSize: 6, SetsToWin: 3},
	{Players: 6, Numbers: NumberRange{1, 12}, HandSize: 5, PublicSize: 6, SetsToWin: 3},
}

// RulesFor returns the rule set for the given player count.
func RulesFor(players int) (RuleSet, error) {
	if players < MinPlayers || players > MaxPlayers {
		return RuleSet{}, fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidPlayerCount, players, MinPlayers, MaxPlayers)
	}
	return ruleTable[players-MinPlayers], nil
}

// DefaultRules returns the two-player rule set.
func DefaultRules() RuleSet { return ruleTable[0] }

// DeckSize returns the number of physical cards in the deck.
func (r RuleSet) DeckSize() int { return r.Numbers.Len() * CopiesPerNumber }

// WinPairs enumerates the unordered pairs a<b within the active range whose
// sum or difference is 7.
func (r RuleSet) WinPairs() [][2]uint8 {
	var out [][2]uint8
	for a := r.Numbers.Min; a <= r.Numbers.Max; a++ {
		for b := a + 1; b <= r.Numbers.Max; b++ {
			if a+b == 7 || b-a == 7 {
				out = append(out, [2]uint8{a, b})
			}
		}
	}
	return out
}

// Complements returns the in-range numbers that form a winning pair with n.
func (r RuleSet) Complements(n uint8) NumberSet { return r.Numbers.Complements(n) }

// Complements returns the numbers in r whose sum with n is 7 or that lie
// exactly 7 away from n.
func (r NumberRange) Complements(n uint8) NumberSet {
	var out NumberSet
	if n > 0 && n < 7 {
		out = out.With(7 - n)
	}
	if n > 7 {
		out = out.With(n - 7)
	}
	out = out.With(n + 7)
	var in NumberSet
	for _, m := range out.Numbers() {
		if r.Contains(m) {
			in = in.With(m)
		}
	}
	return in
}
