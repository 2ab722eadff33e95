// Package main provides the nana-sim CLI, which plays agent-vs-agent games
// and reports win statistics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	engine "github.com/Cyronlee/nana-card-game/engine"
	"github.com/Cyronlee/nana-card-game/internal/cache"
	"github.com/Cyronlee/nana-card-game/internal/config"
	"github.com/Cyronlee/nana-card-game/internal/database"
	"github.com/Cyronlee/nana-card-game/internal/sim"
)

// CLI flags
var (
	games   int
	players int
	seed    uint64
	workers int
	persist bool
	verbose bool
)

func init() {
	flag.IntVar(&games, "games", 100, "Number of games to play")
	flag.IntVar(&players, "players", 3, "Seats per game (2-6)")
	flag.Uint64Var(&seed, "seed", 0, "Seed of the first game (0 = use current time)")
	flag.IntVar(&workers, "workers", 0, "Worker goroutines (0 = SIM_WORKERS)")
	flag.BoolVar(&persist, "persist", false, "Store results in Redis and Postgres when configured")
	flag.BoolVar(&verbose, "verbose", false, "Log every finished game")
}

func main() {
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		cfg.LogLevel = log.DebugLevel
	}
	cfg.ApplyLogging()

	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	if workers <= 0 {
		workers = cfg.SimWorkers
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	batch := sim.BatchConfig{Games: games, Players: players, FirstSeed: seed, Workers: workers}
	if persist {
		onResult, cleanup, err := connectSinks(ctx, cfg)
		if err != nil {
			log.Fatalf("connect: %v", err)
		}
		defer cleanup()
		batch.OnResult = onResult
	}

	log.WithFields(log.Fields{"games": games, "players": players, "seed": seed, "workers": workers}).Info("starting simulation")
	_, stats, err := sim.RunBatch(ctx, batch)
	if err != nil {
		log.Fatalf("simulation failed: %v", err)
	}
	printStats(stats)
}

// connectSinks connects the configured stores and returns a callback that
// records each finished game in them.
func connectSinks(ctx context.Context, cfg config.Config) (func(context.Context, sim.Result) error, func(), error) {
	var (
		store   *cache.RedisStore
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if cfg.RedisURL != "" {
		if err := cache.ConnectRedis(ctx, cfg.RedisURL); err != nil {
			return nil, cleanup, err
		}
		store = cache.NewRedisStore(cache.Rdb, cfg.StateTTL)
		closers = append(closers, func() { _ = cache.Rdb.Close() })
	}
	if cfg.DatabaseURL != "" {
		if err := database.ConnectDB(ctx, cfg.DatabaseURL); err != nil {
			cleanup()
			return nil, func() {}, err
		}
		closers = append(closers, database.DB.Close)
		if err := database.Migrate(ctx); err != nil {
			cleanup()
			return nil, func() {}, err
		}
	}
	if store == nil && database.DB == nil {
		log.Warn("-persist set but neither REDIS_URL nor DATABASE_URL is configured")
	}

	record := func(ctx context.Context, r sim.Result) error {
		gameID := uuid.New()
		seats := make([]uuid.UUID, r.Players)
		for i := range seats {
			seats[i] = uuid.New()
		}

		if store != nil {
			if err := store.Replace(ctx, gameID, r.Final); err != nil {
				return err
			}
			if err := cache.PublishGameAction(ctx, cache.GameActionRecord{
				GameID:     gameID,
				ActionType: "sim_result",
				Timestamp:  time.Now().UnixMilli(),
			}); err != nil {
				return err
			}
		}
		if database.DB != nil {
			if err := database.UpsertInitialGameState(ctx, gameID, r.Players, r.Initial); err != nil {
				return err
			}
			if err := database.RecordGameResult(ctx, resultRow(gameID, seats, r)); err != nil {
				return err
			}
		}
		return nil
	}
	return record, cleanup, nil
}

func resultRow(gameID uuid.UUID, seats []uuid.UUID, r sim.Result) database.GameResult {
	row := database.GameResult{
		GameID:     gameID,
		WinReason:  r.Reason.String(),
		Turns:      r.Turns,
		FinalState: r.Final,
	}
	if r.Winner >= 0 {
		row.WinnerID = seats[r.Winner]
	}
	for _, s := range r.Standings {
		row.Standings = append(row.Standings, database.StandingRow{
			PlayerID:  seats[s.Seat],
			Seat:      s.Seat,
			Name:      s.Name,
			Sets:      s.Sets,
			Collected: s.Collected.Numbers(),
			Winner:    s.Winner,
		})
	}
	return row
}

func printStats(s sim.Stats) {
	fmt.Printf("Games:        %d (%s)\n", s.Games, s.Duration.Round(time.Millisecond))
	for seat, w := range s.Wins {
		fmt.Printf("Seat %d wins:  %d (%.1f%%)\n", seat, w, 100*float64(w)/float64(s.Games))
	}
	reasons := make([]engine.WinReason, 0, len(s.Reasons))
	for r := range s.Reasons {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	for _, r := range reasons {
		fmt.Printf("Won by %-6s %d\n", r.String()+":", s.Reasons[r])
	}
	fmt.Printf("Turns:        avg %.1f, median %d, max %d\n", s.AvgTurns, s.MedianTurns, s.MaxTurns)
	fmt.Printf("Reveals/game: %.1f\n", s.AvgReveals)
}
