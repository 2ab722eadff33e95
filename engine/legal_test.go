package engine

import (
	"reflect"
	"testing"
)

func TestLegalSourcesAtStart(t *testing.T) {
	for players := MinPlayers; players <= MaxPlayers; players++ {
		g := newDealtGame(t, players)
		got := len(g.LegalSources())
		want := 2*players + int(g.Rules.PublicSize)
		if got != want {
			t.Errorf("players %d: %d legal sources, want %d", players, got, want)
		}
		for _, src := range g.LegalSources() {
			if err := g.IsLegal(g.Current, src); err != nil {
				t.Errorf("players %d: listed source %s rejected: %v", players, src, err)
			}
		}
	}
}

func TestLegalSourcesShrinkAsCardsFlip(t *testing.T) {
	g := newFixedGame(t, [][]uint8{{1}, {2, 5}}, []uint8{3, 6})
	g = revealOrFatal(t, g, 0, slotOf(0))

	var sawSeat0, sawSlot0 bool
	for _, src := range g.LegalSources() {
		switch s := src.(type) {
		case PlayerSource:
			if s.Seat == 0 {
				sawSeat0 = true
			}
		case PublicSource:
			if s.Slot == 0 {
				sawSlot0 = true
			}
		}
	}
	if !sawSeat0 {
		t.Error("single-card hand should still be legal")
	}
	if sawSlot0 {
		t.Error("face-up slot listed as legal")
	}

	// Both extremes of a one-card hand address the same card.
	a := revealOrFatal(t, g, 0, headOf(0))
	b := revealOrFatal(t, g, 0, tailOf(0))
	if a.LastAction.Card != b.LastAction.Card {
		t.Errorf("min/max of one card differ: %s vs %s", a.LastAction.Card, b.LastAction.Card)
	}
}

func TestNoLegalSourcesWhileResolving(t *testing.T) {
	g := newFixedGame(t, [][]uint8{{1, 4}, {2, 5}}, nil)
	g = revealOrFatal(t, g, 0, headOf(0))
	g = revealOrFatal(t, g, 0, headOf(1))
	if src := g.LegalSources(); src != nil {
		t.Errorf("resolving phase lists %v", src)
	}
}

func TestIsLegalDoesNotMutate(t *testing.T) {
	g := newDealtGame(t, 3)
	before := g.Clone()
	_ = g.IsLegal(0, headOf(1))
	if !reflect.DeepEqual(*g, before) {
		t.Error("IsLegal changed the state")
	}
}

func TestRedacted(t *testing.T) {
	g := newFixedGame(t, [][]uint8{{1, 4}, {2, 5}}, []uint8{3, 6})
	g = revealOrFatal(t, g, 0, headOf(1))

	v := g.Redacted(0)
	if v.Players[0].Hand[0].Number != 1 || v.Players[0].Hand[1].Number != 4 {
		t.Error("observer's own hand redacted")
	}
	if v.Players[1].Hand[0].Number != 2 {
		t.Error("face-up card redacted")
	}
	if v.Players[1].Hand[1].Number != Unknown {
		t.Error("hidden card leaked")
	}
	for i, s := range v.Public {
		if s.Card.Number != Unknown {
			t.Errorf("public slot %d leaked", i)
		}
	}
	if g.Players[1].Hand[1].Number != 5 {
		t.Error("Redacted modified the source state")
	}
}

func TestStandingsAndUtility(t *testing.T) {
	g := newFixedGame(t, [][]uint8{{1}, {2}, {3}}, nil)
	g.Players[2].Collection = []Card{{Number: 4}, {Number: 4}, {Number: 4}}
	g.Players[1].Collection = []Card{{Number: 7}, {Number: 7}, {Number: 7}}
	g.Players[1].IsWinner = true
	g.Winner = 1
	g.Phase = PhaseGameOver

	st := g.Standings()
	order := []uint8{st[0].Seat, st[1].Seat, st[2].Seat}
	if !reflect.DeepEqual(order, []uint8{1, 2, 0}) {
		t.Errorf("standings order: %v", order)
	}
	if st[1].Sets != 1 || !st[1].Collected.Has(4) {
		t.Errorf("seat 2 standing: %+v", st[1])
	}
	if u := g.GetUtility(); !reflect.DeepEqual(u, []float32{-1, 1, -1}) {
		t.Errorf("utility: %v", u)
	}
}
