package engine

import (
	"errors"
	"reflect"
	"testing"
)

func TestRulesFor(t *testing.T) {
	tests := []struct {
		players    int
		numbers    NumberRange
		hand, pubN uint8
	}{
		{2, NumberRange{1, 10}, 10, 10},
		{3, NumberRange{1, 11}, 8, 9},
		{4, NumberRange{1, 12}, 7, 8},
		{5, NumberRange{1, 12}, 6, 6},
		{6, NumberRange{1, 12}, 5, 6},
	}
	for _, tt := range tests {
		r, err := RulesFor(tt.players)
		if err != nil {
			t.Fatalf("RulesFor(%d): %v", tt.players, err)
		}
		if r.Numbers != tt.numbers || r.HandSize != tt.hand || r.PublicSize != tt.pubN {
			t.Errorf("RulesFor(%d) = %+v", tt.players, r)
		}
		dealt := int(r.HandSize)*tt.players + int(r.PublicSize)
		if dealt != r.DeckSize() {
			t.Errorf("players %d: deal uses %d cards, deck has %d", tt.players, dealt, r.DeckSize())
		}
	}

	for _, n := range []int{0, 1, 7} {
		if _, err := RulesFor(n); !errors.Is(err, ErrInvalidPlayerCount) {
			t.Errorf("RulesFor(%d): want ErrInvalidPlayerCount, got %v", n, err)
		}
	}
}

func TestWinPairs(t *testing.T) {
	two, _ := RulesFor(2)
	want := [][2]uint8{{1, 6}, {1, 8}, {2, 5}, {2, 9}, {3, 4}, {3, 10}}
	if got := two.WinPairs(); !reflect.DeepEqual(got, want) {
		t.Errorf("2-player pairs: want %v, got %v", want, got)
	}

	four, _ := RulesFor(4)
	if got := len(four.WinPairs()); got != 8 {
		t.Errorf("4-player pairs: want 8, got %d (%v)", got, four.WinPairs())
	}
	if got := four.Complements(4); got != NumberSetOf(3, 11) {
		t.Errorf("Complements(4): want {3,11}, got %s", got)
	}
	if got := two.Complements(4); got != NumberSetOf(3) {
		t.Errorf("2-player Complements(4): want {3}, got %s", got)
	}
	if got := four.Complements(7); got != 0 {
		t.Errorf("Complements(7): want empty, got %s", got)
	}
}

func TestNewGameInvalidPlayerCount(t *testing.T) {
	if _, err := NewGame(1, []string{"solo"}); !errors.Is(err, ErrInvalidPlayerCount) {
		t.Errorf("want ErrInvalidPlayerCount, got %v", err)
	}
	if _, err := NewGame(1, seatNames(7)); !errors.Is(err, ErrInvalidPlayerCount) {
		t.Errorf("want ErrInvalidPlayerCount, got %v", err)
	}
}

func TestDeal(t *testing.T) {
	for players := MinPlayers; players <= MaxPlayers; players++ {
		g := newDealtGame(t, players)
		r := g.Rules

		if !g.Dealt || g.Phase != PhaseAwaitingFirstReveal {
			t.Fatalf("players %d: dealt=%v phase=%s", players, g.Dealt, g.Phase)
		}
		if g.Current != 0 || !g.Players[0].IsPlaying || !g.Players[0].IsHost {
			t.Errorf("players %d: seat 0 should be the playing host", players)
		}
		seen := make(map[CardID]bool)
		for _, p := range g.Players {
			if len(p.Hand) != int(r.HandSize) {
				t.Errorf("players %d seat %d: hand %d, want %d", players, p.Seat, len(p.Hand), r.HandSize)
			}
			if p.Seat != 0 && p.IsPlaying {
				t.Errorf("players %d: seat %d also playing", players, p.Seat)
			}
			for _, c := range p.Hand {
				if seen[c.ID] {
					t.Errorf("duplicate card id %d", c.ID)
				}
				seen[c.ID] = true
			}
		}
		if len(g.Public) != int(r.PublicSize) {
			t.Errorf("players %d: public %d, want %d", players, len(g.Public), r.PublicSize)
		}
		if len(g.Deck) != 0 {
			t.Errorf("players %d: %d cards left undealt", players, len(g.Deck))
		}
		counts := g.NumberCounts()
		for n := r.Numbers.Min; n <= r.Numbers.Max; n++ {
			if counts[n] != CopiesPerNumber {
				t.Errorf("players %d: number %d has %d copies", players, n, counts[n])
			}
		}
		if err := g.CheckConservation(); err != nil {
			t.Errorf("players %d: %v", players, err)
		}
	}
}

func TestDealDeterministic(t *testing.T) {
	deal := func(seed uint64) GameState {
		g, err := NewGame(seed, seatNames(3))
		if err != nil {
			t.Fatal(err)
		}
		g.Deal()
		return g
	}
	a, b := deal(7), deal(7)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different deals")
	}
	c := deal(8)
	if reflect.DeepEqual(a.Players, c.Players) {
		t.Error("different seeds produced identical hands")
	}
	z := deal(0)
	if z.RNG == 0 {
		t.Error("seed 0 left the RNG stuck at zero")
	}
}

func TestFromDeal(t *testing.T) {
	g := newFixedGame(t, [][]uint8{{9, 1, 4}, {8, 2, 5}}, []uint8{3, 6})
	if got := g.Players[0].Hand[0].Number; got != 1 {
		t.Errorf("hand not sorted: head %d", got)
	}
	if got := g.Players[1].Hand[2].Number; got != 8 {
		t.Errorf("hand not sorted: tail %d", got)
	}

	_, err := FromDeal(seatNames(2), [][]uint8{{1, 1, 1}, {1}}, nil)
	if !errors.Is(err, ErrInvalidDeal) {
		t.Errorf("four copies: want ErrInvalidDeal, got %v", err)
	}
	_, err = FromDeal(seatNames(2), [][]uint8{{11}, {1}}, nil)
	if !errors.Is(err, ErrInvalidDeal) {
		t.Errorf("out of range: want ErrInvalidDeal, got %v", err)
	}
	_, err = FromDeal(seatNames(2), [][]uint8{{1}}, nil)
	if !errors.Is(err, ErrInvalidDeal) {
		t.Errorf("missing hand: want ErrInvalidDeal, got %v", err)
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := newDealtGame(t, 2)
	c := g.Clone()
	c.Players[0].Hand[0].Revealed = true
	c.Public[0].Purged = true
	if g.Players[0].Hand[0].Revealed || g.Public[0].Purged {
		t.Error("Clone shares slices with the original")
	}
}

func TestNextPlayerCycles(t *testing.T) {
	g := newDealtGame(t, 4)
	want := []uint8{1, 2, 3, 0}
	for seat := uint8(0); seat < 4; seat++ {
		if got := g.NextPlayer(seat); got != want[seat] {
			t.Errorf("NextPlayer(%d): want %d, got %d", seat, want[seat], got)
		}
	}
}
