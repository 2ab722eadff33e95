// internal/database/database.go
package database

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

//go:embed schema.sql
var schema string

// DB is the shared pool. It stays nil when no database is configured, in
// which case games are not persisted.
var DB *pgxpool.Pool

var ErrNotConnected = errors.New("database: pool not configured")

// ConnectDB opens a pool on dsn, pings it and installs it as DB.
func ConnectDB(ctx context.Context, dsn string) error {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping database: %w", err)
	}
	DB = pool
	log.Info("connected to database")
	return nil
}

// Migrate creates the tables if they do not exist.
func Migrate(ctx context.Context) error {
	if DB == nil {
		return ErrNotConnected
	}
	if _, err := DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// UpsertInitialGameState stores the dealt layout of a game. Restarted games
// with the same id overwrite the previous deal.
func UpsertInitialGameState(ctx context.Context, gameID uuid.UUID, players int, state any) error {
	if DB == nil {
		return ErrNotConnected
	}
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode initial state of game %s: %w", gameID, err)
	}
	_, err = DB.Exec(ctx, `
		INSERT INTO games (id, players, initial_state)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		  SET players = EXCLUDED.players,
		      initial_state = EXCLUDED.initial_state,
		      created_at = now()
	`, gameID, players, b)
	if err != nil {
		return fmt.Errorf("upsert initial state of game %s: %w", gameID, err)
	}
	return nil
}

// StandingRow is one seat's final result.
type StandingRow struct {
	PlayerID  uuid.UUID
	Seat      uint8
	Name      string
	Sets      int
	Collected []uint8
	Winner    bool
}

// GameResult is everything persisted when a game ends.
type GameResult struct {
	GameID     uuid.UUID
	WinnerID   uuid.UUID // uuid.Nil when nobody won
	WinReason  string
	Turns      int
	FinalState any
	Standings  []StandingRow
}

// RecordGameResult writes the result and the standings of a finished game
// in one transaction.
func RecordGameResult(ctx context.Context, res GameResult) error {
	if DB == nil {
		return ErrNotConnected
	}
	final, err := json.Marshal(res.FinalState)
	if err != nil {
		return fmt.Errorf("encode final state of game %s: %w", res.GameID, err)
	}
	err = pgx.BeginFunc(ctx, DB, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO game_results (game_id, winner_id, win_reason, turns, final_state)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (game_id) DO UPDATE
			  SET winner_id = EXCLUDED.winner_id,
			      win_reason = EXCLUDED.win_reason,
			      turns = EXCLUDED.turns,
			      final_state = EXCLUDED.final_state,
			      finished_at = now()
		`, res.GameID, nullableID(res.WinnerID), res.WinReason, res.Turns, final); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for _, s := range res.Standings {
			batch.Queue(`
				INSERT INTO game_standings (game_id, player_id, seat, name, sets, collected, winner)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				ON CONFLICT (game_id, player_id) DO UPDATE
				  SET seat = EXCLUDED.seat,
				      name = EXCLUDED.name,
				      sets = EXCLUDED.sets,
				      collected = EXCLUDED.collected,
				      winner = EXCLUDED.winner
			`, res.GameID, s.PlayerID, int16(s.Seat), s.Name, int16(s.Sets), smallints(s.Collected), s.Winner)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return fmt.Errorf("record result of game %s: %w", res.GameID, err)
	}
	return nil
}

// WinCount returns how many recorded games player has won.
func WinCount(ctx context.Context, playerID uuid.UUID) (int, error) {
	if DB == nil {
		return 0, ErrNotConnected
	}
	var n int
	err := DB.QueryRow(ctx, `
		SELECT count(*) FROM game_standings WHERE player_id = $1 AND winner
	`, playerID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count wins of %s: %w", playerID, err)
	}
	return n, nil
}

func nullableID(id uuid.UUID) any {
	if id == uuid.Nil {
		return nil
	}
	return id
}

// smallints converts numbers for a SMALLINT[] column; a []uint8 would be
// sent as bytea.
func smallints(ns []uint8) []int16 {
	out := make([]int16, len(ns))
	for i, n := range ns {
		out[i] = int16(n)
	}
	return out
}
