package engine

import (
	"fmt"
	"math/bits"
	"strings"
)

// Deck composition constants.
const (
	MinNumber       uint8 = 1
	MaxNumber       uint8 = 12
	CopiesPerNumber       = 3
	MinPlayers            = 2
	MaxPlayers            = 6
)

// Unknown is the Number of a card whose value is hidden from the holder of
// the value (redacted views, unknown belief slots).
const Unknown uint8 = 0

// CardID is the stable identity of a physical card. It is assigned in
// shuffled deal order and carries no information about the card's number.
type CardID uint8

// Card is one physical card.
type Card struct {
	ID       CardID `json:"id"`
	Number   uint8  `json:"number"`
	Revealed bool   `json:"revealed,omitempty"`
}

// Known reports whether the card's number is visible in this value.
func (c Card) Known() bool { return c.Number != Unknown }

func (c Card) String() string {
	if !c.Known() {
		return fmt.Sprintf("#%d(?)", c.ID)
	}
	return fmt.Sprintf("#%d(%d)", c.ID, c.Number)
}

// ---------------------------------------------------------------------------
// NumberSet
// ---------------------------------------------------------------------------

// NumberSet is a bitmask over card numbers 1..12; bit n is number n.
type NumberSet uint16

// NumberSetOf builds a set from the given numbers. Out-of-range numbers are
// ignored.
func NumberSetOf(numbers ...uint8) NumberSet {
	var s NumberSet
	for _, n := range numbers {
		s = s.With(n)
	}
	return s
}

// Has reports whether n is in the set.
func (s NumberSet) Has(n uint8) bool {
	return n >= MinNumber && n <= MaxNumber && s&(1<<n) != 0
}

// With returns the set with n added.
func (s NumberSet) With(n uint8) NumberSet {
	if n < MinNumber || n > MaxNumber {
		return s
	}
	return s | 1<<n
}

// Len returns the number of members.
func (s NumberSet) Len() int { return bits.OnesCount16(uint16(s)) }

// Numbers returns the members in ascending order.
func (s NumberSet) Numbers() []uint8 {
	out := make([]uint8, 0, s.Len())
	for n := MinNumber; n <= MaxNumber; n++ {
		if s.Has(n) {
			out = append(out, n)
		}
	}
	return out
}

func (s NumberSet) String() string {
	parts := make([]string, 0, s.Len())
	for _, n := range s.Numbers() {
		parts = append(parts, fmt.Sprint(n))
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// ---------------------------------------------------------------------------
// Players and the public area
// ---------------------------------------------------------------------------

// Player is one seat at the table. Hand is always sorted ascending by number.
type Player struct {
	Seat       uint8  `json:"seat"`
	Name       string `json:"name"`
	IsHost     bool   `json:"isHost,omitempty"`
	IsPlaying  bool   `json:"isPlaying,omitempty"`
	IsWinner   bool   `json:"isWinner,omitempty"`
	Hand       []Card `json:"hand"`
	Collection []Card `json:"collection"`
}

// ExtremeIndex returns the hand index of the current minimum or maximum
// unrevealed card. Because the hand is sorted, that is the first or last
// unrevealed position.
func (p *Player) ExtremeIndex(e Extreme) (int, bool) {
	switch e {
	case ExtremeMin:
		for i := range p.Hand {
			if !p.Hand[i].Revealed {
				return i, true
			}
		}
	case ExtremeMax:
		for i := len(p.Hand) - 1; i >= 0; i-- {
			if !p.Hand[i].Revealed {
				return i, true
			}
		}
	}
	return -1, false
}

// Unrevealed returns the number of face-down cards in the hand.
func (p *Player) Unrevealed() int {
	n := 0
	for _, c := range p.Hand {
		if !c.Revealed {
			n++
		}
	}
	return n
}

// CollectedNumbers returns the distinct numbers in the player's collection.
func (p *Player) CollectedNumbers() NumberSet {
	var s NumberSet
	for _, c := range p.Collection {
		s = s.With(c.Number)
	}
	return s
}

// PublicSlot is one position of the public area. A purged slot stays in
// place so slot indices are stable for the whole game.
type PublicSlot struct {
	Card   Card `json:"card"`
	Purged bool `json:"purged,omitempty"`
}

// Available reports whether the slot holds a face-down card.
func (s PublicSlot) Available() bool { return !s.Purged && !s.Card.Revealed }

// ---------------------------------------------------------------------------
// Phase
// ---------------------------------------------------------------------------

// Phase is the turn/challenge state.
type Phase uint8

const (
	PhaseAwaitingFirstReveal Phase = iota
	PhaseAwaitingSecondReveal
	PhaseAwaitingThirdReveal
	PhaseResolvingSuccess
	PhaseResolvingFailure
	PhaseGameOver
)

var phaseNames = [...]string{
	PhaseAwaitingFirstReveal:  "awaiting_first_reveal",
	PhaseAwaitingSecondReveal: "awaiting_second_reveal",
	PhaseAwaitingThirdReveal:  "awaiting_third_reveal",
	PhaseResolvingSuccess:     "resolving_success",
	PhaseResolvingFailure:     "resolving_failure",
	PhaseGameOver:             "game_over",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// Awaiting reports whether the phase accepts a reveal.
func (p Phase) Awaiting() bool { return p <= PhaseAwaitingThirdReveal }

// Resolving reports whether a chain has resolved and awaits settlement.
func (p Phase) Resolving() bool {
	return p == PhaseResolvingSuccess || p == PhaseResolvingFailure
}
