// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"

	engine "github.com/Cyronlee/nana-card-game/engine"
)

// ObfCard represents a card's state for client synchronization. Number is
// zero when the observer may not see it.
type ObfCard struct {
	ID       uuid.UUID `json:"id"`
	Known    bool      `json:"known"`
	Number   int       `json:"number,omitempty"`
	Revealed bool      `json:"revealed,omitempty"`
	Purged   bool      `json:"purged,omitempty"` // public slot emptied by a collection
	Idx      *int      `json:"idx,omitempty"`
}

// ObfPlayerState represents one seat as seen by the observer.
type ObfPlayerState struct {
	PlayerID      uuid.UUID `json:"playerId"`
	Name          string    `json:"name"`
	Seat          int       `json:"seat"`
	IsHost        bool      `json:"isHost,omitempty"`
	IsBot         bool      `json:"isBot,omitempty"`
	Connected     bool      `json:"connected"`
	IsCurrentTurn bool      `json:"isCurrentTurn"`
	IsWinner      bool      `json:"isWinner,omitempty"`
	HandSize      int       `json:"handSize"`
	Hand          []ObfCard `json:"hand,omitempty"`
	Collection    []ObfCard `json:"collection,omitempty"`
	Collected     []uint8   `json:"collected,omitempty"`
}

// ObfGameState represents the overall game state for one observer.
type ObfGameState struct {
	GameID          uuid.UUID        `json:"gameId"`
	Started         bool             `json:"started"`
	GameOver        bool             `json:"gameOver"`
	Phase           string           `json:"phase,omitempty"`
	CurrentPlayerID uuid.UUID        `json:"currentPlayerId"`
	TurnID          int              `json:"turnId"`
	Public          []ObfCard        `json:"public,omitempty"`
	Chain           []ObfCard        `json:"chain,omitempty"`
	Players         []ObfPlayerState `json:"players"`
	WinnerID        uuid.UUID        `json:"winnerId,omitempty"`
	WinReason       string           `json:"winReason,omitempty"`
}

// GetObfuscatedState returns the game as forUser sees it: their own hand,
// every face-up card, collections, phase and the active player. Spectators
// and unknown ids see no hidden number at all.
func (g *NanaGame) GetObfuscatedState(forUser uuid.UUID) ObfGameState {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.obfuscatedState(forUser)
}

// obfuscatedState assumes lock is held by caller.
func (g *NanaGame) obfuscatedState(forUser uuid.UUID) ObfGameState {
	obf := ObfGameState{
		GameID:   g.ID,
		Started:  g.Started,
		GameOver: g.GameOver,
	}
	if !g.Started || !g.Engine.Dealt {
		obf.Players = make([]ObfPlayerState, len(g.Players))
		for i, p := range g.Players {
			obf.Players[i] = ObfPlayerState{
				PlayerID:  p.ID,
				Name:      p.Name,
				Seat:      i,
				IsHost:    p.IsHost,
				IsBot:     p.IsBot,
				Connected: p.Connected,
			}
		}
		return obf
	}

	// Seats beyond the table redact every hand.
	observer := uint8(engine.MaxPlayers)
	if seat, ok := g.seatOf(forUser); ok {
		observer = seat
	}
	view := g.Engine.Redacted(observer)

	obf.Phase = view.Phase.String()
	obf.TurnID = int(view.TurnNumber)
	if !obf.GameOver {
		obf.CurrentPlayerID = g.playerAt(view.Current)
	}
	if seat, ok := view.WinnerSeat(); ok {
		obf.WinnerID = g.playerAt(seat)
		obf.WinReason = view.LastAction.Win.String()
	}

	obf.Public = make([]ObfCard, len(view.Public))
	for i, s := range view.Public {
		idx := i
		if s.Purged {
			obf.Public[i] = ObfCard{Purged: true, Idx: &idx}
			continue
		}
		obf.Public[i] = g.obfCard(s.Card, &idx)
	}
	for _, c := range view.Chain {
		obf.Chain = append(obf.Chain, g.obfCard(c, nil))
	}

	obf.Players = make([]ObfPlayerState, len(view.Players))
	for i, vp := range view.Players {
		id := g.playerAt(uint8(i))
		ps := ObfPlayerState{
			PlayerID:      id,
			Name:          vp.Name,
			Seat:          i,
			IsHost:        vp.IsHost,
			IsCurrentTurn: !obf.GameOver && vp.IsPlaying,
			IsWinner:      vp.IsWinner,
			HandSize:      len(vp.Hand),
			Collected:     vp.CollectedNumbers().Numbers(),
		}
		if p := g.getPlayerByID(id); p != nil {
			ps.IsBot = p.IsBot
			ps.Connected = p.Connected
		}
		for j, c := range vp.Hand {
			idx := j
			ps.Hand = append(ps.Hand, g.obfCard(c, &idx))
		}
		for _, c := range vp.Collection {
			ps.Collection = append(ps.Collection, g.obfCard(c, nil))
		}
		obf.Players[i] = ps
	}
	return obf
}

// obfCard assumes lock is held by caller.
func (g *NanaGame) obfCard(c engine.Card, idx *int) ObfCard {
	return ObfCard{
		ID:       g.Cards.UUIDOf(c.ID),
		Known:    c.Known(),
		Number:   int(c.Number),
		Revealed: c.Revealed,
		Idx:      idx,
	}
}

// sendSyncState sends the obfuscated state to one player.
// Assumes lock is held by caller.
func (g *NanaGame) sendSyncState(playerID uuid.UUID) {
	state := g.obfuscatedState(playerID)
	g.fireEventToPlayer(playerID, GameEvent{Type: EventPrivateSyncState, State: &state})
}

// broadcastSyncStateToAll sends each connected player their own view.
// Assumes lock is held by caller.
func (g *NanaGame) broadcastSyncStateToAll() {
	if g.BroadcastToPlayerFn == nil {
		return
	}
	for _, p := range g.Players {
		if p.Connected && !p.IsBot {
			g.sendSyncState(p.ID)
		}
	}
}
