package engine

// LegalSources lists every source the active player could reveal right now:
// the min and max of each hand that still has a face-down card, then each
// available public slot. A hand with one face-down card yields both extremes.
func (g *GameState) LegalSources() []Source {
	if !g.Dealt || !g.Phase.Awaiting() {
		return nil
	}
	var out []Source
	for s := range g.Players {
		if g.Players[s].Unrevealed() == 0 {
			continue
		}
		out = append(out,
			PlayerSource{Seat: uint8(s), Extreme: ExtremeMin},
			PlayerSource{Seat: uint8(s), Extreme: ExtremeMax},
		)
	}
	for i, slot := range g.Public {
		if slot.Available() {
			out = append(out, PublicSource{Slot: uint8(i)})
		}
	}
	return out
}

// IsLegal reports the error Reveal would return for actor and src, without
// changing g.
func (g *GameState) IsLegal(actor uint8, src Source) error {
	trial := g.Clone()
	return trial.ApplyReveal(actor, src)
}

// FaceDownCount returns the number of face-down cards left in play.
func (g *GameState) FaceDownCount() int {
	n := 0
	for i := range g.Players {
		n += g.Players[i].Unrevealed()
	}
	for _, slot := range g.Public {
		if slot.Available() {
			n++
		}
	}
	return n
}
