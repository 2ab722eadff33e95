// internal/sim/batch.go
package sim

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	engine "github.com/Cyronlee/nana-card-game/engine"
	"github.com/Cyronlee/nana-card-game/engine/agent"
)

// BatchConfig describes a batch of simulated games. Game i uses seed
// FirstSeed+i, so a batch is reproducible.
type BatchConfig struct {
	Games     int
	Players   int
	FirstSeed uint64
	Workers   int           // 0 uses runtime.NumCPU
	Decider   *agent.Decider // nil uses the default weights

	// OnResult, if set, is called from the worker goroutine after each
	// finished game. A returned error cancels the batch.
	OnResult func(ctx context.Context, r Result) error
}

// Stats summarises a batch.
type Stats struct {
	Games       int
	Wins        []int // per seat
	Reasons     map[engine.WinReason]int
	AvgTurns    float64
	MedianTurns int
	MaxTurns    int
	AvgReveals  float64
	Duration    time.Duration
}

// RunBatch plays cfg.Games games on a bounded worker pool. The first error
// stops the batch and is returned; results are in seed order.
func RunBatch(ctx context.Context, cfg BatchConfig) ([]Result, Stats, error) {
	if cfg.Games < 1 {
		return nil, Stats{}, fmt.Errorf("batch needs at least one game, got %d", cfg.Games)
	}
	if _, err := engine.RulesFor(cfg.Players); err != nil {
		return nil, Stats{}, err
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	d := agent.NewDecider()
	if cfg.Decider != nil {
		d = *cfg.Decider
	}

	start := time.Now()
	results := make([]Result, cfg.Games)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i := 0; i < cfg.Games; i++ {
		if ctx.Err() != nil {
			break
		}
		i := i
		seed := cfg.FirstSeed + uint64(i)
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := PlayGameWith(d, seed, cfg.Players)
			if err != nil {
				return err
			}
			results[i] = r
			log.WithFields(log.Fields{
				"seed":   seed,
				"winner": r.Winner,
				"reason": r.Reason.String(),
				"turns":  r.Turns,
			}).Debug("game finished")
			if cfg.OnResult != nil {
				return cfg.OnResult(ctx, r)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, Stats{}, err
	}

	stats := Aggregate(results)
	stats.Duration = time.Since(start)
	return results, stats, nil
}

// Aggregate computes summary statistics over finished games.
func Aggregate(results []Result) Stats {
	stats := Stats{Games: len(results), Reasons: make(map[engine.WinReason]int)}
	if len(results) == 0 {
		return stats
	}
	stats.Wins = make([]int, results[0].Players)

	turns := make([]int, 0, len(results))
	reveals := 0
	for _, r := range results {
		if r.Winner >= 0 && r.Winner < len(stats.Wins) {
			stats.Wins[r.Winner]++
		}
		stats.Reasons[r.Reason]++
		turns = append(turns, r.Turns)
		reveals += r.Reveals
		if r.Turns > stats.MaxTurns {
			stats.MaxTurns = r.Turns
		}
	}

	sum := 0
	for _, t := range turns {
		sum += t
	}
	stats.AvgTurns = float64(sum) / float64(len(turns))
	stats.AvgReveals = float64(reveals) / float64(len(results))
	sort.Ints(turns)
	stats.MedianTurns = turns[len(turns)/2]
	return stats
}
