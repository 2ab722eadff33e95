package agent

import (
	"sort"

	engine "github.com/Cyronlee/nana-card-game/engine"
)

// Registry maps agent seats to their memories. It is immutable: With and
// Observe return a new registry and never touch the receiver's map.
type Registry struct {
	byAgent map[uint8]Memory
}

// NewRegistry returns an empty registry.
func NewRegistry() Registry { return Registry{} }

// With returns a registry in which seat maps to m.
func (r Registry) With(seat uint8, m Memory) Registry {
	next := make(map[uint8]Memory, len(r.byAgent)+1)
	for k, v := range r.byAgent {
		next[k] = v
	}
	next[seat] = m
	return Registry{byAgent: next}
}

// Get returns the memory of seat.
func (r Registry) Get(seat uint8) (Memory, bool) {
	m, ok := r.byAgent[seat]
	return m, ok
}

// Len returns the number of agents.
func (r Registry) Len() int { return len(r.byAgent) }

// Seats returns the agent seats in ascending order.
func (r Registry) Seats() []uint8 {
	out := make([]uint8, 0, len(r.byAgent))
	for k := range r.byAgent {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Observe folds g's most recent transition into every memory.
func (r Registry) Observe(g *engine.GameState) Registry {
	if len(r.byAgent) == 0 {
		return r
	}
	next := make(map[uint8]Memory, len(r.byAgent))
	for k, m := range r.byAgent {
		next[k] = m.Observe(g)
	}
	return Registry{byAgent: next}
}

// NumberRangeFor returns the number range used with the given player count.
func NumberRangeFor(players int) (engine.NumberRange, error) {
	rules, err := engine.RulesFor(players)
	if err != nil {
		return engine.NumberRange{}, err
	}
	return rules.Numbers, nil
}
