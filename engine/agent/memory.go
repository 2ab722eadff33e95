// Package agent implements belief tracking and move selection for
// autonomous players.
//
// A Memory is one agent's private knowledge of which hidden card holds which
// number. Every update returns a new Memory; values are never mutated in
// place, so they can be snapshotted, replayed and shared freely.
package agent

import (
	engine "github.com/Cyronlee/nana-card-game/engine"
)

// Slot is one remembered card position, identified by card id.
type Slot struct {
	ID     engine.CardID `json:"id"`
	Number uint8         `json:"number,omitempty"` // engine.Unknown if not known
}

// Known reports whether the slot's number has been seen.
func (s Slot) Known() bool { return s.Number != engine.Unknown }

// Memory is an immutable belief state. The zero value is empty and usable.
type Memory struct {
	self      uint8
	numbers   engine.NumberRange
	hands     [][]Slot // by seat; hands[self] is fully known
	public    []Slot
	collected map[uint8][]uint8
}

// NewMemory builds the initial belief state of seat self: its own hand from
// ground truth, every other hand and the public area unknown except for
// cards already face up.
func NewMemory(self uint8, hand []engine.Card, players []engine.Player, public []engine.PublicSlot, numbers engine.NumberRange) Memory {
	m := Memory{
		self:      self,
		numbers:   numbers,
		hands:     make([][]Slot, len(players)),
		collected: make(map[uint8][]uint8),
	}
	for seat, p := range players {
		if uint8(seat) == self {
			continue
		}
		slots := make([]Slot, len(p.Hand))
		for i, c := range p.Hand {
			slots[i] = Slot{ID: c.ID}
			if c.Revealed {
				slots[i].Number = c.Number
			}
		}
		m.hands[seat] = slots
		for _, c := range p.Collection {
			m.recordCollected(uint8(seat), c.Number)
		}
	}
	if int(self) < len(m.hands) {
		own := make([]Slot, len(hand))
		for i, c := range hand {
			own[i] = Slot{ID: c.ID, Number: c.Number}
		}
		m.hands[self] = own
		for _, c := range players[self].Collection {
			m.recordCollected(self, c.Number)
		}
	}
	for _, s := range public {
		if s.Purged {
			continue
		}
		slot := Slot{ID: s.Card.ID}
		if s.Card.Revealed {
			slot.Number = s.Card.Number
		}
		m.public = append(m.public, slot)
	}
	return m
}

// ForSeat builds the initial memory of seat from a dealt game.
func ForSeat(g *engine.GameState, seat uint8) Memory {
	return NewMemory(seat, g.Players[seat].Hand, g.Players, g.Public, g.Rules.Numbers)
}

func (m *Memory) recordCollected(seat, number uint8) {
	for _, n := range m.collected[seat] {
		if n == number {
			return
		}
	}
	m.collected[seat] = append(m.collected[seat], number)
}

// clone returns a deep copy.
func (m Memory) clone() Memory {
	out := m
	out.hands = make([][]Slot, len(m.hands))
	for i, h := range m.hands {
		out.hands[i] = append([]Slot(nil), h...)
	}
	out.public = append([]Slot(nil), m.public...)
	out.collected = make(map[uint8][]uint8, len(m.collected))
	for k, v := range m.collected {
		out.collected[k] = append([]uint8(nil), v...)
	}
	return out
}

// ---------------------------------------------------------------------------
// Updates
// ---------------------------------------------------------------------------

// OnReveal returns a memory in which card id is known to hold number. src
// says where the card sat; if the card is not found there, every list is
// searched.
func (m Memory) OnReveal(id engine.CardID, number uint8, src engine.Source) Memory {
	out := m.clone()
	switch s := src.(type) {
	case engine.PlayerSource:
		if int(s.Seat) < len(out.hands) && setSlot(out.hands[s.Seat], id, number) {
			return out
		}
	case engine.PublicSource:
		if setSlot(out.public, id, number) {
			return out
		}
	}
	for seat := range out.hands {
		if setSlot(out.hands[seat], id, number) {
			return out
		}
	}
	setSlot(out.public, id, number)
	return out
}

func setSlot(slots []Slot, id engine.CardID, number uint8) bool {
	for i := range slots {
		if slots[i].ID == id {
			slots[i].Number = number
			return true
		}
	}
	return false
}

// OnCollect returns a memory in which collector has collected number and
// every slot known to hold number is gone.
func (m Memory) OnCollect(collector, number uint8) Memory {
	out := m.clone()
	out.recordCollected(collector, number)
	for seat := range out.hands {
		out.hands[seat] = dropNumber(out.hands[seat], number)
	}
	out.public = dropNumber(out.public, number)
	return out
}

func dropNumber(slots []Slot, number uint8) []Slot {
	kept := slots[:0]
	for _, s := range slots {
		if s.Number != number {
			kept = append(kept, s)
		}
	}
	return kept
}

// Observe folds the most recent transition of g into the memory, so an
// agent can follow a game by calling it after every Reveal and Settle.
func (m Memory) Observe(g *engine.GameState) Memory {
	last := g.LastAction
	switch last.Kind {
	case engine.ActionReveal:
		src, err := last.Source.Source()
		if err != nil {
			src = nil
		}
		return m.OnReveal(last.Card.ID, last.Card.Number, src)
	case engine.ActionCollect:
		return m.OnCollect(last.Actor, last.Number)
	}
	return m
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Self returns the seat this memory belongs to.
func (m Memory) Self() uint8 { return m.self }

// Numbers returns the number range in play.
func (m Memory) Numbers() engine.NumberRange { return m.numbers }

// Hand returns a copy of the remembered slots of seat.
func (m Memory) Hand(seat uint8) []Slot {
	if int(seat) >= len(m.hands) {
		return nil
	}
	return append([]Slot(nil), m.hands[seat]...)
}

// Public returns a copy of the remembered public slots.
func (m Memory) Public() []Slot { return append([]Slot(nil), m.public...) }

// CollectedBy returns the numbers seat is known to have collected.
func (m Memory) CollectedBy(seat uint8) []uint8 {
	return append([]uint8(nil), m.collected[seat]...)
}

// Collected returns every collected number, by anyone.
func (m Memory) Collected() engine.NumberSet {
	var s engine.NumberSet
	for _, ns := range m.collected {
		for _, n := range ns {
			s = s.With(n)
		}
	}
	return s
}

// HandSize returns the remembered hand size of seat, 0 for an unknown seat.
func (m Memory) HandSize(seat uint8) int {
	if int(seat) >= len(m.hands) {
		return 0
	}
	return len(m.hands[seat])
}

// KnownHead returns the remembered value of seat's first slot.
func (m Memory) KnownHead(seat uint8) (uint8, bool) {
	if int(seat) >= len(m.hands) || len(m.hands[seat]) == 0 {
		return 0, false
	}
	s := m.hands[seat][0]
	return s.Number, s.Known()
}

// KnownTail returns the remembered value of seat's last slot.
func (m Memory) KnownTail(seat uint8) (uint8, bool) {
	if int(seat) >= len(m.hands) || len(m.hands[seat]) == 0 {
		return 0, false
	}
	h := m.hands[seat]
	s := h[len(h)-1]
	return s.Number, s.Known()
}

// ValueOf returns the remembered number of card id.
func (m Memory) ValueOf(id engine.CardID) (uint8, bool) {
	if ref, ok := m.find(id); ok {
		s := m.slot(ref)
		return s.Number, s.Known()
	}
	return 0, false
}

// GlobalRemaining returns how many copies of number are still at unknown
// locations: 3 minus every known occurrence, or 0 once anyone collected it.
func (m Memory) GlobalRemaining(number uint8) int {
	if !m.numbers.Contains(number) || m.Collected().Has(number) {
		return 0
	}
	known := 0
	for _, h := range m.hands {
		known += countNumber(h, number)
	}
	known += countNumber(m.public, number)
	if known >= engine.CopiesPerNumber {
		return 0
	}
	return engine.CopiesPerNumber - known
}

func countNumber(slots []Slot, number uint8) int {
	n := 0
	for _, s := range slots {
		if s.Number == number {
			n++
		}
	}
	return n
}

// Excluded returns the numbers seat cannot hold: everything below its known
// head and above its known tail.
func (m Memory) Excluded(seat uint8) engine.NumberSet {
	var out engine.NumberSet
	if head, ok := m.KnownHead(seat); ok {
		for n := m.numbers.Min; n < head; n++ {
			out = out.With(n)
		}
	}
	if tail, ok := m.KnownTail(seat); ok {
		for n := tail + 1; n <= m.numbers.Max; n++ {
			out = out.With(n)
		}
	}
	return out
}

// UnknownPublicCount returns the public slots whose number is not known.
func (m Memory) UnknownPublicCount() int {
	n := 0
	for _, s := range m.public {
		if !s.Known() {
			n++
		}
	}
	return n
}

// KnownPublicCount returns the public slots known to hold number.
func (m Memory) KnownPublicCount(number uint8) int { return countNumber(m.public, number) }
