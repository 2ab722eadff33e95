package engine

import "fmt"

// ActionKind identifies the most recent transition.
type ActionKind uint8

const (
	ActionNone ActionKind = iota
	ActionDeal
	ActionReveal
	ActionFail    // failed chain settled, turn passed on
	ActionCollect // successful chain settled, triple collected
)

var actionNames = [...]string{
	ActionNone:    "none",
	ActionDeal:    "deal",
	ActionReveal:  "reveal",
	ActionFail:    "fail",
	ActionCollect: "collect",
}

func (k ActionKind) String() string {
	if int(k) < len(actionNames) {
		return actionNames[k]
	}
	return fmt.Sprintf("action(%d)", uint8(k))
}

// LastAction records the most recent transition so observers can update
// their own view without diffing states.
type LastAction struct {
	Kind   ActionKind   `json:"kind"`
	Actor  uint8        `json:"actor"`
	Source SourceRecord `json:"source,omitempty"` // ActionReveal
	Card   Card         `json:"card,omitempty"`   // ActionReveal: the card turned face up
	Number uint8        `json:"number,omitempty"` // ActionCollect: collected number
	Win    WinReason    `json:"win,omitempty"`    // ActionCollect: set when the collection won
}

// ---------------------------------------------------------------------------
// Reveal
// ---------------------------------------------------------------------------

// Reveal returns the state after actor reveals the card at src. The
// receiver is not modified; on error it is returned as is.
func (g GameState) Reveal(actor uint8, src Source) (GameState, error) {
	next := g.Clone()
	if err := next.ApplyReveal(actor, src); err != nil {
		return g, err
	}
	return next, nil
}

// ApplyReveal is the in-place form of Reveal. On error g is unchanged.
func (g *GameState) ApplyReveal(actor uint8, src Source) error {
	switch {
	case !g.Dealt:
		return ErrNotDealt
	case g.Phase == PhaseGameOver:
		return ErrGameAlreadyOver
	case g.Phase.Resolving():
		return ErrRoundSettling
	case actor != g.Current:
		return fmt.Errorf("%w: seat %d acted, seat %d is playing", ErrNotYourTurn, actor, g.Current)
	}

	card, err := g.locate(src)
	if err != nil {
		return err
	}
	card.Revealed = true
	g.Chain = append(g.Chain, *card)
	g.Phase = g.evaluateChain()
	g.LastAction = LastAction{Kind: ActionReveal, Actor: actor, Source: RecordOf(src), Card: *card}
	return nil
}

// locate resolves src to the face-down card it addresses.
func (g *GameState) locate(src Source) (*Card, error) {
	switch s := src.(type) {
	case PlayerSource:
		if int(s.Seat) >= len(g.Players) || !s.Extreme.valid() {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSource, s)
		}
		p := &g.Players[s.Seat]
		idx, ok := p.ExtremeIndex(s.Extreme)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoCardAvailable, s)
		}
		return &p.Hand[idx], nil
	case PublicSource:
		if int(s.Slot) >= len(g.Public) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidSource, s)
		}
		slot := &g.Public[s.Slot]
		if slot.Purged {
			return nil, fmt.Errorf("%w: %s", ErrSlotPurged, s)
		}
		if slot.Card.Revealed {
			return nil, fmt.Errorf("%w: %s", ErrCardAlreadyRevealed, s)
		}
		return &slot.Card, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrInvalidSource, src)
}

// evaluateChain maps the current chain to the next phase.
func (g *GameState) evaluateChain() Phase {
	switch len(g.Chain) {
	case 0:
		return PhaseAwaitingFirstReveal
	case 1:
		return PhaseAwaitingSecondReveal
	case 2:
		if g.Chain[0].Number != g.Chain[1].Number {
			return PhaseResolvingFailure
		}
		return PhaseAwaitingThirdReveal
	}
	target := g.Chain[0].Number
	for _, c := range g.Chain[1:] {
		if c.Number != target {
			return PhaseResolvingFailure
		}
	}
	return PhaseResolvingSuccess
}

// ---------------------------------------------------------------------------
// Settle
// ---------------------------------------------------------------------------

// Settle returns the state after the resolved chain takes effect. The
// receiver is not modified; on error it is returned as is.
func (g GameState) Settle() (GameState, error) {
	next := g.Clone()
	if err := next.ApplySettle(); err != nil {
		return g, err
	}
	return next, nil
}

// ApplySettle is the in-place form of Settle.
func (g *GameState) ApplySettle() error {
	switch g.Phase {
	case PhaseGameOver:
		return ErrGameAlreadyOver
	case PhaseResolvingFailure:
		g.settleFailure()
		return nil
	case PhaseResolvingSuccess:
		g.settleSuccess()
		return nil
	}
	return fmt.Errorf("%w: phase %s", ErrNothingToSettle, g.Phase)
}

// settleFailure conceals everything and passes the turn to the next seat.
func (g *GameState) settleFailure() {
	actor := g.Current
	g.concealAll()
	g.Players[actor].IsPlaying = false
	g.Current = g.NextPlayer(actor)
	g.Players[g.Current].IsPlaying = true
	g.Chain = nil
	g.Phase = PhaseAwaitingFirstReveal
	g.TurnNumber++
	g.LastAction = LastAction{Kind: ActionFail, Actor: actor}
}

// settleSuccess moves the chain into the active player's collection, purges
// the number from play and checks for a winner. Without a winner the same
// player continues.
func (g *GameState) settleSuccess() {
	actor := g.Current
	number := g.Chain[0].Number
	collector := &g.Players[actor]
	for _, c := range g.Chain {
		c.Revealed = true
		collector.Collection = append(collector.Collection, c)
	}
	g.Chain = nil
	g.purge(number)

	reason := WinReasonFor(collector.CollectedNumbers(), g.Rules)
	g.LastAction = LastAction{Kind: ActionCollect, Actor: actor, Number: number, Win: reason}
	if reason != WinNone {
		collector.IsWinner = true
		g.Winner = int8(actor)
		g.Phase = PhaseGameOver
		return
	}
	g.concealAll()
	g.Phase = PhaseAwaitingFirstReveal
}

// purge removes every card of number from all hands and the public area.
func (g *GameState) purge(number uint8) {
	for i := range g.Players {
		p := &g.Players[i]
		kept := p.Hand[:0]
		for _, c := range p.Hand {
			if c.Number != number {
				kept = append(kept, c)
			}
		}
		p.Hand = kept
	}
	for i := range g.Public {
		if !g.Public[i].Purged && g.Public[i].Card.Number == number {
			g.Public[i] = PublicSlot{Purged: true}
		}
	}
}

// concealAll turns every card in the hands and the public area face down.
func (g *GameState) concealAll() {
	for i := range g.Players {
		for j := range g.Players[i].Hand {
			g.Players[i].Hand[j].Revealed = false
		}
	}
	for i := range g.Public {
		g.Public[i].Card.Revealed = false
	}
}
