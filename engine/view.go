package engine

// Redacted returns a copy of g as observer sees it: the observer's own hand
// is intact, every other face-down card has its number replaced by Unknown.
// Face-up cards, collections and the chain stay visible.
func (g *GameState) Redacted(observer uint8) GameState {
	out := g.Clone()
	for s := range out.Players {
		if uint8(s) == observer {
			continue
		}
		for i := range out.Players[s].Hand {
			if !out.Players[s].Hand[i].Revealed {
				out.Players[s].Hand[i].Number = Unknown
			}
		}
	}
	for i := range out.Public {
		if !out.Public[i].Card.Revealed {
			out.Public[i].Card.Number = Unknown
		}
	}
	for i := range out.Deck {
		out.Deck[i].Number = Unknown
	}
	out.RNG = 0
	return out
}
