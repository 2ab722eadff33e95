package engine

import "sort"

// Standing summarises one seat's result.
type Standing struct {
	Seat      uint8     `json:"seat"`
	Name      string    `json:"name"`
	Sets      int       `json:"sets"`
	Collected NumberSet `json:"collected"`
	Winner    bool      `json:"winner"`
}

// Standings ranks seats: the winner first, then by collected sets, then by
// seat order.
func (g *GameState) Standings() []Standing {
	out := make([]Standing, len(g.Players))
	for i := range g.Players {
		p := &g.Players[i]
		set := p.CollectedNumbers()
		out[i] = Standing{
			Seat:      p.Seat,
			Name:      p.Name,
			Sets:      set.Len(),
			Collected: set,
			Winner:    p.IsWinner,
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Winner != out[j].Winner {
			return out[i].Winner
		}
		if out[i].Sets != out[j].Sets {
			return out[i].Sets > out[j].Sets
		}
		return out[i].Seat < out[j].Seat
	})
	return out
}

// GetUtility returns +1 for the winner and -1 for every other seat once the
// game is over, and all zeros before that.
func (g *GameState) GetUtility() []float32 {
	u := make([]float32, len(g.Players))
	w, ok := g.WinnerSeat()
	if !ok {
		return u
	}
	for i := range u {
		u[i] = -1
	}
	u[w] = 1
	return u
}
