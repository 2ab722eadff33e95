// internal/sim/runner.go
package sim

import (
	"errors"
	"fmt"
	"time"

	engine "github.com/Cyronlee/nana-card-game/engine"
	"github.com/Cyronlee/nana-card-game/engine/agent"
)

// MaxSteps bounds the transitions of one simulated game.
const MaxSteps = 20000

// ErrStalled is returned when a game does not finish within MaxSteps.
var ErrStalled = errors.New("game did not finish")

// Result holds the outcome of a single game.
type Result struct {
	Seed      uint64
	Players   int
	Winner    int // seat, -1 when nobody won
	Reason    engine.WinReason
	Turns     int // failed chains, i.e. turn hand-overs
	Reveals   int
	Collects  int
	Duration  time.Duration
	Standings []engine.Standing
	Initial   engine.GameState // the deal
	Final     engine.GameState
}

// PlayGame plays one complete game with an agent in every seat.
func PlayGame(seed uint64, players int) (Result, error) {
	return PlayGameWith(agent.NewDecider(), seed, players)
}

// PlayGameWith plays one complete game where every seat uses d.
func PlayGameWith(d agent.Decider, seed uint64, players int) (Result, error) {
	start := time.Now()
	names := make([]string, players)
	for i := range names {
		names[i] = fmt.Sprintf("Agent %d", i+1)
	}
	g, err := engine.NewGame(seed, names)
	if err != nil {
		return Result{}, fmt.Errorf("new game: %w", err)
	}
	g.Deal()

	res := Result{Seed: seed, Players: players, Winner: -1, Initial: g.Clone()}
	reg := agent.NewRegistry()
	for s := 0; s < players; s++ {
		reg = reg.With(uint8(s), agent.ForSeat(&g, uint8(s)))
	}

	for step := 0; step < MaxSteps && !g.IsTerminal(); step++ {
		if g.Phase.Resolving() {
			if err := g.ApplySettle(); err != nil {
				return res, fmt.Errorf("seed %d step %d: %w", seed, step, err)
			}
			switch g.LastAction.Kind {
			case engine.ActionCollect:
				res.Collects++
			case engine.ActionFail:
				res.Turns++
			}
		} else {
			m, _ := reg.Get(g.Current)
			view := g.Redacted(g.Current)
			a, err := d.Decide(m, view.Chain, view.Players, view.Public)
			if err != nil {
				return res, fmt.Errorf("seed %d step %d: seat %d: %w", seed, step, g.Current, err)
			}
			if err := g.ApplyReveal(g.Current, a.Source); err != nil {
				return res, fmt.Errorf("seed %d step %d: %s: %w", seed, step, a.Source, err)
			}
			res.Reveals++
		}
		if err := g.CheckConservation(); err != nil {
			return res, fmt.Errorf("seed %d step %d: %w", seed, step, err)
		}
		reg = reg.Observe(&g)
	}

	res.Duration = time.Since(start)
	res.Final = g
	res.Standings = g.Standings()
	if !g.IsTerminal() {
		return res, fmt.Errorf("%w: seed %d after %d steps", ErrStalled, seed, MaxSteps)
	}
	if w, ok := g.WinnerSeat(); ok {
		res.Winner = int(w)
		res.Reason = g.LastAction.Win
	}
	return res, nil
}
