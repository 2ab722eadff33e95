package engine

import (
	"reflect"
	"testing"
)

// TestRevealExtremes verifies that player sources resolve to the smallest or
// largest face-down card, skipping cards already face up.
func TestRevealExtremes(t *testing.T) {
	g := newFixedGame(t, [][]uint8{{1, 1, 4, 9}, {2, 5, 8}}, []uint8{3, 6})

	g = revealOrFatal(t, g, 0, headOf(0))
	if got := g.LastAction.Card.Number; got != 1 {
		t.Errorf("first min: want 1, got %d", got)
	}
	g = revealOrFatal(t, g, 0, headOf(0))
	if got := g.LastAction.Card.Number; got != 1 {
		t.Errorf("second min: want 1, got %d", got)
	}
	if g.Phase != PhaseAwaitingThirdReveal {
		t.Fatalf("phase: want %s, got %s", PhaseAwaitingThirdReveal, g.Phase)
	}

	h := newFixedGame(t, [][]uint8{{1, 4, 9}, {2, 5, 8}}, []uint8{3, 6})
	h = revealOrFatal(t, h, 0, tailOf(1))
	if got := h.LastAction.Card.Number; got != 8 {
		t.Errorf("max of seat 1: want 8, got %d", got)
	}
	if !h.Players[1].Hand[2].Revealed {
		t.Error("revealed card not flagged in hand")
	}
	if h.Phase != PhaseAwaitingSecondReveal {
		t.Errorf("phase: want %s, got %s", PhaseAwaitingSecondReveal, h.Phase)
	}
}

func TestRevealErrors(t *testing.T) {
	base := newFixedGame(t, [][]uint8{{1, 4}, {2, 5, 8}}, []uint8{3, 6})

	faceUp := revealOrFatal(t, base, 0, slotOf(0))

	purged := base.Clone()
	purged.Public[1] = PublicSlot{Purged: true}

	drained := base.Clone()
	for i := range drained.Players[0].Hand {
		drained.Players[0].Hand[i].Revealed = true
	}

	settling := revealOrFatal(t, faceUp, 0, headOf(1)) // 3 then 2

	over := base.Clone()
	over.Phase = PhaseGameOver

	var undealt GameState

	tests := []struct {
		name  string
		g     GameState
		actor uint8
		src   Source
		want  error
	}{
		{"wrong seat", base, 1, headOf(0), ErrNotYourTurn},
		{"seat out of range", base, 0, headOf(5), ErrInvalidSource},
		{"bad extreme", base, 0, PlayerSource{Seat: 0, Extreme: 9}, ErrInvalidSource},
		{"slot out of range", base, 0, slotOf(9), ErrInvalidSource},
		{"nil source", base, 0, nil, ErrInvalidSource},
		{"public face up", faceUp, 0, slotOf(0), ErrCardAlreadyRevealed},
		{"public purged", purged, 0, slotOf(1), ErrNoCardAvailable},
		{"hand exhausted", drained, 0, tailOf(0), ErrNoCardAvailable},
		{"settling", settling, 0, headOf(0), ErrRoundSettling},
		{"game over", over, 0, headOf(0), ErrGameAlreadyOver},
		{"not dealt", undealt, 0, headOf(0), ErrNotDealt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.g.Clone()
			got, err := tt.g.Reveal(tt.actor, tt.src)
			wantErr(t, err, tt.want)
			if !reflect.DeepEqual(got, before) {
				t.Error("failed reveal changed the state")
			}
		})
	}

	wantErr(t, purged.IsLegal(0, slotOf(1)), ErrSlotPurged)
}

func TestRevealIsPure(t *testing.T) {
	g := newFixedGame(t, [][]uint8{{1, 4}, {2, 5}}, []uint8{3, 6})
	before := g.Clone()
	next := revealOrFatal(t, g, 0, headOf(0))
	if !reflect.DeepEqual(g, before) {
		t.Error("Reveal modified its receiver")
	}
	if len(next.Chain) != 1 || reflect.DeepEqual(next, before) {
		t.Error("Reveal did not produce a new state")
	}
}

func TestChainOfTwoMismatchFails(t *testing.T) {
	g := newFixedGame(t, [][]uint8{{1, 4}, {2, 5}}, []uint8{3, 6})
	g = revealOrFatal(t, g, 0, headOf(0))
	g = revealOrFatal(t, g, 0, slotOf(1))
	if g.Phase != PhaseResolvingFailure {
		t.Fatalf("phase: want %s, got %s", PhaseResolvingFailure, g.Phase)
	}

	g = settleOrFatal(t, g)
	if g.Phase != PhaseAwaitingFirstReveal {
		t.Errorf("phase after failure: %s", g.Phase)
	}
	if g.Current != 1 || g.Players[0].IsPlaying || !g.Players[1].IsPlaying {
		t.Errorf("turn not passed: current=%d flags=%v/%v", g.Current, g.Players[0].IsPlaying, g.Players[1].IsPlaying)
	}
	if g.TurnNumber != 1 || len(g.Chain) != 0 {
		t.Errorf("turn=%d chain=%d", g.TurnNumber, len(g.Chain))
	}
	if g.LastAction.Kind != ActionFail || g.LastAction.Actor != 0 {
		t.Errorf("last action: %+v", g.LastAction)
	}
	if g.FaceDownCount() != 6 {
		t.Errorf("cards not concealed: %d face down", g.FaceDownCount())
	}
}

func TestChainOfThreeMismatchFails(t *testing.T) {
	g := newFixedGame(t, [][]uint8{{4, 4, 9}, {2, 4, 5}}, []uint8{3, 6})
	g = revealOrFatal(t, g, 0, headOf(0))
	g = revealOrFatal(t, g, 0, headOf(0))
	if g.Phase != PhaseAwaitingThirdReveal {
		t.Fatalf("phase: want %s, got %s", PhaseAwaitingThirdReveal, g.Phase)
	}
	g = revealOrFatal(t, g, 0, headOf(1))
	if g.Phase != PhaseResolvingFailure {
		t.Fatalf("phase: want %s, got %s", PhaseResolvingFailure, g.Phase)
	}
}

func TestFailureWrapsToFirstSeat(t *testing.T) {
	g := newFixedGame(t, [][]uint8{{1, 4}, {2, 5}, {3, 6}}, nil)
	for _, seat := range []uint8{0, 1, 2} {
		g = revealOrFatal(t, g, seat, headOf(0))
		g = revealOrFatal(t, g, seat, tailOf(0))
		g = settleOrFatal(t, g)
	}
	if g.Current != 0 || !g.Players[0].IsPlaying {
		t.Errorf("want seat 0 after a full cycle, got %d", g.Current)
	}
}

func TestChainOfThreeCollects(t *testing.T) {
	g := newFixedGame(t, [][]uint8{{2, 2, 9}, {2, 5, 8}}, []uint8{3, 6})
	g = revealOrFatal(t, g, 0, headOf(0))
	g = revealOrFatal(t, g, 0, headOf(0))
	g = revealOrFatal(t, g, 0, headOf(1))
	if g.Phase != PhaseResolvingSuccess {
		t.Fatalf("phase: want %s, got %s", PhaseResolvingSuccess, g.Phase)
	}

	g = settleOrFatal(t, g)
	if g.Phase != PhaseAwaitingFirstReveal || g.Current != 0 {
		t.Errorf("collector should continue: phase=%s current=%d", g.Phase, g.Current)
	}
	if got := len(g.Players[0].Collection); got != 3 {
		t.Errorf("collection size: want 3, got %d", got)
	}
	if g.LastAction.Kind != ActionCollect || g.LastAction.Number != 2 || g.LastAction.Win != WinNone {
		t.Errorf("last action: %+v", g.LastAction)
	}
	counts := g.NumberCounts()
	inPlay := 0
	for _, p := range g.Players {
		for _, c := range p.Hand {
			if c.Number == 2 {
				inPlay++
			}
		}
	}
	if inPlay != 0 || counts[2] != 3 {
		t.Errorf("number 2: %d left in hands, %d accounted in total", inPlay, counts[2])
	}
	if g.FaceDownCount() != 5 {
		t.Errorf("remaining cards not concealed: %d face down", g.FaceDownCount())
	}
	if err := g.CheckConservation(); err != nil {
		t.Error(err)
	}
}

func TestCollectPurgesPublicSlot(t *testing.T) {
	g := newFixedGame(t, [][]uint8{{3, 9}, {3, 5}}, []uint8{1, 3, 6})
	g = revealOrFatal(t, g, 0, headOf(0))
	g = revealOrFatal(t, g, 0, slotOf(1))
	g = revealOrFatal(t, g, 0, headOf(1))
	g = settleOrFatal(t, g)

	if !g.Public[1].Purged {
		t.Fatal("public slot 1 should be purged")
	}
	if len(g.Public) != 3 || g.Public[2].Card.Number != 6 {
		t.Error("public slots shifted after purge")
	}
	_, err := g.Reveal(0, slotOf(1))
	wantErr(t, err, ErrNoCardAvailable)
}

func TestCollectSevenWins(t *testing.T) {
	g := newFixedGame(t, [][]uint8{{7, 7, 9}, {2, 5, 7}}, []uint8{3})
	g = revealOrFatal(t, g, 0, headOf(0))
	g = revealOrFatal(t, g, 0, headOf(0))
	g = revealOrFatal(t, g, 0, tailOf(1))
	g = settleOrFatal(t, g)

	if g.Phase != PhaseGameOver || !g.IsTerminal() {
		t.Fatalf("phase: want %s, got %s", PhaseGameOver, g.Phase)
	}
	if w, ok := g.WinnerSeat(); !ok || w != 0 || !g.Players[0].IsWinner {
		t.Errorf("winner: %d %v", w, ok)
	}
	if g.LastAction.Win != WinSeven {
		t.Errorf("win reason: want seven, got %s", g.LastAction.Win)
	}

	_, err := g.Reveal(0, headOf(1))
	wantErr(t, err, ErrGameAlreadyOver)
	_, err = g.Settle()
	wantErr(t, err, ErrGameAlreadyOver)
}

func TestSettleWithoutResolvedChain(t *testing.T) {
	g := newFixedGame(t, [][]uint8{{1, 4}, {2, 5}}, nil)
	_, err := g.Settle()
	wantErr(t, err, ErrNothingToSettle)
	g = revealOrFatal(t, g, 0, headOf(0))
	_, err = g.Settle()
	wantErr(t, err, ErrNothingToSettle)
}
