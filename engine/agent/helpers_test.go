package agent

import (
	"errors"
	"math"
	"testing"

	engine "github.com/Cyronlee/nana-card-game/engine"
)

// newTable builds a dealt game from a fixed layout.
func newTable(t *testing.T, hands [][]uint8, public []uint8) engine.GameState {
	t.Helper()
	names := make([]string, len(hands))
	for i := range names {
		names[i] = string(rune('A' + i))
	}
	g, err := engine.FromDeal(names, hands, public)
	if err != nil {
		t.Fatalf("FromDeal: %v", err)
	}
	return g
}

// threeSeats is shared by most memory tests; seat 0 is the agent.
func threeSeats(t *testing.T) engine.GameState {
	return newTable(t,
		[][]uint8{{3, 6, 9}, {1, 4, 8}, {2, 5, 10}},
		[]uint8{7, 7, 11},
	)
}

func head(g engine.GameState, seat int) engine.Card { return g.Players[seat].Hand[0] }
func tail(g engine.GameState, seat int) engine.Card {
	h := g.Players[seat].Hand
	return h[len(h)-1]
}

func playerSrc(seat uint8, e engine.Extreme) engine.Source {
	return engine.PlayerSource{Seat: seat, Extreme: e}
}

// learn makes m remember the current head or tail of seat.
func learn(m Memory, g engine.GameState, seat uint8, e engine.Extreme) Memory {
	idx, _ := g.Players[seat].ExtremeIndex(e)
	c := g.Players[seat].Hand[idx]
	return m.OnReveal(c.ID, c.Number, playerSrc(seat, e))
}

// revealOrFatal reveals src for the current player and fails the test on error.
func revealOrFatal(t *testing.T, g engine.GameState, src engine.Source) engine.GameState {
	t.Helper()
	next, err := g.Reveal(g.Current, src)
	if err != nil {
		t.Fatalf("Reveal(%d, %s): %v", g.Current, src, err)
	}
	return next
}

func settleOrFatal(t *testing.T, g engine.GameState) engine.GameState {
	t.Helper()
	next, err := g.Settle()
	if err != nil {
		t.Fatalf("Settle in phase %s: %v", g.Phase, err)
	}
	return next
}

// decide runs the default decider and checks the result is legal.
func decide(t *testing.T, m Memory, g engine.GameState) Action {
	t.Helper()
	a, err := Decide(m, g.Chain, g.Players, g.Public)
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if err := g.IsLegal(g.Current, a.Source); err != nil {
		t.Fatalf("decision %s is illegal: %v", a, err)
	}
	return a
}

func wantErr(t *testing.T, got, want error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Errorf("error: want %v, got %v", want, got)
	}
}

func wantProb(t *testing.T, what string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s: want %.4f, got %.4f", what, want, got)
	}
}
