package engine

import (
	"errors"
	"testing"
)

// newDealtGame creates a shuffled, dealt game for the given player count.
func newDealtGame(t *testing.T, players int) *GameState {
	t.Helper()
	g, err := NewGame(42, seatNames(players))
	if err != nil {
		t.Fatalf("NewGame(%d): %v", players, err)
	}
	g.Deal()
	return &g
}

// newFixedGame builds a dealt game from an explicit layout.
func newFixedGame(t *testing.T, hands [][]uint8, public []uint8) GameState {
	t.Helper()
	g, err := FromDeal(seatNames(len(hands)), hands, public)
	if err != nil {
		t.Fatalf("FromDeal: %v", err)
	}
	return g
}

func seatNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = string(rune('A' + i))
	}
	return names
}

// revealOrFatal applies a reveal and fails the test on error.
func revealOrFatal(t *testing.T, g GameState, actor uint8, src Source) GameState {
	t.Helper()
	next, err := g.Reveal(actor, src)
	if err != nil {
		t.Fatalf("Reveal(%d, %s): %v", actor, src, err)
	}
	return next
}

// settleOrFatal settles the resolved chain and fails the test on error.
func settleOrFatal(t *testing.T, g GameState) GameState {
	t.Helper()
	next, err := g.Settle()
	if err != nil {
		t.Fatalf("Settle in phase %s: %v", g.Phase, err)
	}
	return next
}

func wantErr(t *testing.T, got, want error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Errorf("error: want %v, got %v", want, got)
	}
}

func headOf(seat uint8) Source { return PlayerSource{Seat: seat, Extreme: ExtremeMin} }
func tailOf(seat uint8) Source { return PlayerSource{Seat: seat, Extreme: ExtremeMax} }
func slotOf(slot uint8) Source { return PublicSource{Slot: slot} }
