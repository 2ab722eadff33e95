package agent

import engine "github.com/Cyronlee/nana-card-game/engine"

// SlotRef addresses a remembered slot: a hand position of Seat, or a public
// position when Public is set.
type SlotRef struct {
	Public bool
	Seat   uint8
	Index  int
}

// find locates card id in the memory.
func (m Memory) find(id engine.CardID) (SlotRef, bool) {
	for seat, h := range m.hands {
		for i, s := range h {
			if s.ID == id {
				return SlotRef{Seat: uint8(seat), Index: i}, true
			}
		}
	}
	for i, s := range m.public {
		if s.ID == id {
			return SlotRef{Public: true, Index: i}, true
		}
	}
	return SlotRef{}, false
}

func (m Memory) slot(ref SlotRef) Slot {
	if ref.Public {
		return m.public[ref.Index]
	}
	return m.hands[ref.Seat][ref.Index]
}

func (m Memory) valid(ref SlotRef) bool {
	if ref.Index < 0 {
		return false
	}
	if ref.Public {
		return ref.Index < len(m.public)
	}
	return int(ref.Seat) < len(m.hands) && ref.Index < len(m.hands[ref.Seat])
}

// SlotProbability estimates the chance that the slot at ref holds target.
// A known slot is 1 or 0. An unknown hand slot is 0 when the sorted hand
// rules target out, otherwise the ratio of target's remaining copies to the
// number of values the slot could still hold. An unknown public slot is the
// remaining copies less the known public ones, spread over the unknown
// public slots.
func (m Memory) SlotProbability(target uint8, ref SlotRef) float64 {
	if !m.valid(ref) {
		return 0
	}
	s := m.slot(ref)
	if s.Known() {
		if s.Number == target {
			return 1
		}
		return 0
	}
	remaining := m.GlobalRemaining(target)
	if remaining == 0 {
		return 0
	}

	if ref.Public {
		unknown := m.UnknownPublicCount()
		if unknown == 0 {
			return 0
		}
		return clamp01(float64(remaining-m.KnownPublicCount(target)) / float64(unknown))
	}

	lo, hi := m.slotBounds(ref)
	if target < lo || target > hi || m.Excluded(ref.Seat).Has(target) {
		return 0
	}
	possible := 0
	for n := lo; n <= hi; n++ {
		if m.GlobalRemaining(n) > 0 {
			possible++
		}
	}
	if possible == 0 {
		return 0
	}
	return clamp01(float64(remaining) / float64(possible))
}

// CardProbability is SlotProbability for the slot holding card id; an
// untracked card is 0.
func (m Memory) CardProbability(target uint8, id engine.CardID) float64 {
	ref, ok := m.find(id)
	if !ok {
		return 0
	}
	return m.SlotProbability(target, ref)
}

// possible reports whether card id could show target. Unlike the
// probability it keeps an unknown public card open while any copy of target
// is unaccounted for, since the public estimate can round down to zero.
func (m Memory) possible(target uint8, id engine.CardID) bool {
	ref, ok := m.find(id)
	if !ok {
		return false
	}
	s := m.slot(ref)
	switch {
	case s.Known():
		return s.Number == target
	case ref.Public:
		return m.GlobalRemaining(target) > 0
	}
	return m.SlotProbability(target, ref) > 0
}

// slotBounds narrows the values a hand slot can hold using the nearest known
// slots on either side; hands are sorted so a slot lies between them.
func (m Memory) slotBounds(ref SlotRef) (lo, hi uint8) {
	lo, hi = m.numbers.Min, m.numbers.Max
	h := m.hands[ref.Seat]
	for i := ref.Index - 1; i >= 0; i-- {
		if h[i].Known() {
			lo = h[i].Number
			break
		}
	}
	for i := ref.Index + 1; i < len(h); i++ {
		if h[i].Known() {
			hi = h[i].Number
			break
		}
	}
	return lo, hi
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	}
	return x
}
