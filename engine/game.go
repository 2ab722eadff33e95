// Package engine implements the rules of a turn-based hidden-information
// card-matching game.
//
// Players reveal cards from the extremes of sorted hands or from a shared
// public area, trying to expose three cards of the same number before
// exposing a mismatch. GameState is a plain value; Reveal and Settle are
// pure transitions that return a new state and leave the receiver intact.
package engine

import (
	"fmt"
	"sort"
)

// GameState holds the complete, self-contained state of one game.
type GameState struct {
	Rules      RuleSet      `json:"rules"`
	Players    []Player     `json:"players"`
	Public     []PublicSlot `json:"public"`
	Deck       []Card       `json:"deck,omitempty"` // leftover after dealing
	Phase      Phase        `json:"phase"`
	Current    uint8        `json:"current"`
	Chain      []Card       `json:"chain,omitempty"` // cards revealed this turn, in order
	TurnNumber uint16       `json:"turnNumber"`
	Winner     int8         `json:"winner"`
	Dealt      bool         `json:"dealt"`
	LastAction LastAction   `json:"lastAction"`
	RNG        uint64       `json:"rng"`
}

// ---------------------------------------------------------------------------
// xorshift64 RNG
// ---------------------------------------------------------------------------

func (g *GameState) nextRand() uint64 {
	x := g.RNG
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	g.RNG = x
	return x
}

// randN returns a random number in [0, n).
func (g *GameState) randN(n uint64) uint64 {
	return g.nextRand() % n
}

// ---------------------------------------------------------------------------
// NewGame and Deal
// ---------------------------------------------------------------------------

// NewGame seats one player per name using the rule set for that player
// count. Seat 0 is the host. The game must be dealt before play.
func NewGame(seed uint64, names []string) (GameState, error) {
	rules, err := RulesFor(len(names))
	if err != nil {
		return GameState{}, err
	}
	if seed == 0 {
		seed = 1 // xorshift is stuck at zero
	}
	g := GameState{
		Rules:   rules,
		Players: make([]Player, len(names)),
		Winner:  -1,
		RNG:     seed,
	}
	for i, name := range names {
		g.Players[i] = Player{Seat: uint8(i), Name: name, IsHost: i == 0}
	}
	return g, nil
}

// Deal shuffles a fresh deck, deals every hand round-robin, then the public
// area, and makes seat 0 the active player.
func (g *GameState) Deal() {
	r := g.Rules
	numbers := make([]uint8, 0, r.DeckSize())
	for n := r.Numbers.Min; n <= r.Numbers.Max; n++ {
		for c := 0; c < CopiesPerNumber; c++ {
			numbers = append(numbers, n)
		}
	}

	// Fisher-Yates shuffle.
	for i := len(numbers) - 1; i > 0; i-- {
		j := int(g.randN(uint64(i + 1)))
		numbers[i], numbers[j] = numbers[j], numbers[i]
	}

	deck := make([]Card, len(numbers))
	for i, n := range numbers {
		deck[i] = Card{ID: CardID(i), Number: n}
	}

	np := len(g.Players)
	for i := range g.Players {
		g.Players[i].Hand = make([]Card, 0, r.HandSize)
		g.Players[i].Collection = nil
		g.Players[i].IsPlaying = false
		g.Players[i].IsWinner = false
	}
	pos := 0
	for round := 0; round < int(r.HandSize); round++ {
		for p := 0; p < np && pos < len(deck); p++ {
			g.Players[p].Hand = append(g.Players[p].Hand, deck[pos])
			pos++
		}
	}
	g.Public = make([]PublicSlot, 0, r.PublicSize)
	for i := 0; i < int(r.PublicSize) && pos < len(deck); i++ {
		g.Public = append(g.Public, PublicSlot{Card: deck[pos]})
		pos++
	}
	g.Deck = append([]Card(nil), deck[pos:]...)

	g.begin()
}

// FromDeal rebuilds a freshly dealt game from a known layout, e.g. a deal
// persisted by the service. Card ids are assigned hand by hand, then public
// slot by slot. Hands are sorted.
func FromDeal(names []string, hands [][]uint8, public []uint8) (GameState, error) {
	g, err := NewGame(1, names)
	if err != nil {
		return GameState{}, err
	}
	if len(hands) != len(names) {
		return GameState{}, fmt.Errorf("%w: %d hands for %d players", ErrInvalidDeal, len(hands), len(names))
	}
	var counts [MaxNumber + 1]int
	next := CardID(0)
	mk := func(n uint8) (Card, error) {
		if !g.Rules.Numbers.Contains(n) {
			return Card{}, fmt.Errorf("%w: number %d outside %d-%d", ErrInvalidDeal, n, g.Rules.Numbers.Min, g.Rules.Numbers.Max)
		}
		counts[n]++
		if counts[n] > CopiesPerNumber {
			return Card{}, fmt.Errorf("%w: more than %d copies of %d", ErrInvalidDeal, CopiesPerNumber, n)
		}
		c := Card{ID: next, Number: n}
		next++
		return c, nil
	}
	for i, hand := range hands {
		g.Players[i].Hand = make([]Card, 0, len(hand))
		for _, n := range hand {
			c, err := mk(n)
			if err != nil {
				return GameState{}, err
			}
			g.Players[i].Hand = append(g.Players[i].Hand, c)
		}
	}
	g.Public = make([]PublicSlot, 0, len(public))
	for _, n := range public {
		c, err := mk(n)
		if err != nil {
			return GameState{}, err
		}
		g.Public = append(g.Public, PublicSlot{Card: c})
	}
	g.begin()
	return g, nil
}

// begin sorts hands and puts the game in its initial phase.
func (g *GameState) begin() {
	for i := range g.Players {
		sortHand(g.Players[i].Hand)
	}
	g.Phase = PhaseAwaitingFirstReveal
	g.Current = 0
	g.Players[0].IsPlaying = true
	g.Chain = nil
	g.TurnNumber = 0
	g.Winner = -1
	g.Dealt = true
	g.LastAction = LastAction{Kind: ActionDeal}
}

func sortHand(h []Card) {
	sort.Slice(h, func(i, j int) bool {
		if h[i].Number != h[j].Number {
			return h[i].Number < h[j].Number
		}
		return h[i].ID < h[j].ID
	})
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// NumPlayers returns the seat count.
func (g *GameState) NumPlayers() int { return len(g.Players) }

// ActingPlayer returns the seat whose turn it is.
func (g *GameState) ActingPlayer() uint8 { return g.Current }

// NextPlayer returns the seat after current in cyclic seat order.
func (g *GameState) NextPlayer(current uint8) uint8 {
	return uint8((int(current) + 1) % len(g.Players))
}

// HandLen returns the number of cards in a seat's hand.
func (g *GameState) HandLen(seat uint8) int {
	if int(seat) >= len(g.Players) {
		return 0
	}
	return len(g.Players[seat].Hand)
}

// IsTerminal reports whether the game has ended.
func (g *GameState) IsTerminal() bool { return g.Phase == PhaseGameOver }

// WinnerSeat returns the winning seat once the game is over.
func (g *GameState) WinnerSeat() (uint8, bool) {
	if g.Winner < 0 {
		return 0, false
	}
	return uint8(g.Winner), true
}

// ChainTarget returns the number every further card in the chain must match.
func (g *GameState) ChainTarget() (uint8, bool) {
	if len(g.Chain) == 0 {
		return 0, false
	}
	return g.Chain[0].Number, true
}

// Clone returns a deep copy that shares no slices with g.
func (g GameState) Clone() GameState {
	out := g
	if g.Players != nil {
		out.Players = make([]Player, len(g.Players))
		for i, p := range g.Players {
			p.Hand = cloneCards(p.Hand)
			p.Collection = cloneCards(p.Collection)
			out.Players[i] = p
		}
	}
	if g.Public != nil {
		out.Public = make([]PublicSlot, len(g.Public))
		copy(out.Public, g.Public)
	}
	out.Deck = cloneCards(g.Deck)
	out.Chain = cloneCards(g.Chain)
	return out
}

func cloneCards(c []Card) []Card {
	if c == nil {
		return nil
	}
	out := make([]Card, len(c))
	copy(out, c)
	return out
}

// FindCard locates a card by id in the hands and the public area. seat is -1
// for a public card, in which case index is the slot.
func (g *GameState) FindCard(id CardID) (seat, index int, ok bool) {
	for s := range g.Players {
		for i, c := range g.Players[s].Hand {
			if c.ID == id {
				return s, i, true
			}
		}
	}
	for i, slot := range g.Public {
		if !slot.Purged && slot.Card.ID == id {
			return -1, i, true
		}
	}
	return 0, 0, false
}
