// internal/game/events.go
package game

import (
	"github.com/google/uuid"

	"github.com/Cyronlee/nana-card-game/internal/models"
)

// GameEventType represents the type of a game event sent to clients.
type GameEventType string

const (
	EventPlayerJoined     GameEventType = "player_joined"      // Public: a player or bot took a seat in the lobby.
	EventPlayerLeft       GameEventType = "player_left"        // Public: a player disconnected.
	EventGameStart        GameEventType = "game_start"         // Public: cards were dealt.
	EventPrivateHand      GameEventType = "private_hand"       // Private: the recipient's own hand with numbers.
	EventGamePlayerTurn   GameEventType = "game_player_turn"   // Public: whose turn it is.
	EventPlayerReveal     GameEventType = "player_reveal"      // Public: a card was turned face up.
	EventChainResolved    GameEventType = "chain_resolved"     // Public: the chain matched or broke; settlement is pending.
	EventChainCollected   GameEventType = "chain_collected"    // Public: a triple moved into a collection.
	EventChainFailed      GameEventType = "chain_failed"       // Public: the chain was turned back face down.
	EventPrivateSyncState GameEventType = "private_sync_state" // Private: full state as the recipient sees it.
	EventGameEnd          GameEventType = "game_end"           // Public: final standings.
	EventGameRestart      GameEventType = "game_restart"       // Public: back to the lobby with the same roster.
)

// EventUser identifies a user within a GameEvent.
type EventUser struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name,omitempty"`
	Bot  bool      `json:"bot,omitempty"`
}

// RevealPayload describes one reveal.
type RevealPayload struct {
	Card   models.Card `json:"card"`
	Owner  uuid.UUID   `json:"owner,omitempty"` // hand owner; Nil for the public area
	Slot   *int        `json:"slot,omitempty"`  // public slot
	Chain  int         `json:"chain"`           // cards in the chain after this reveal
	Target int         `json:"target"`          // number of the first chain card
}

// ChainPayload describes a resolved or settled chain.
type ChainPayload struct {
	Success bool          `json:"success"`
	Number  int           `json:"number,omitempty"`
	Cards   []models.Card `json:"cards"`
	Delay   int64         `json:"delayMs,omitempty"` // until settlement, on chain_resolved
}

// TurnPayload identifies the active player.
type TurnPayload struct {
	TurnID int       `json:"turnId"`
	Player uuid.UUID `json:"player"`
}

// StandingPayload is one line of the final standings.
type StandingPayload struct {
	Player    uuid.UUID `json:"player"`
	Name      string    `json:"name"`
	Sets      int       `json:"sets"`
	Collected []uint8   `json:"collected"`
	Winner    bool      `json:"winner"`
}

// EndPayload carries the final result.
type EndPayload struct {
	Winner    uuid.UUID         `json:"winner"`
	Reason    string            `json:"reason"`
	Standings []StandingPayload `json:"standings"`
}

// GameEvent is the envelope for every event. Only the payload matching Type
// is set.
type GameEvent struct {
	Type   GameEventType  `json:"type"`
	GameID uuid.UUID      `json:"gameId"`
	User   *EventUser     `json:"user,omitempty"`
	Reveal *RevealPayload `json:"reveal,omitempty"`
	Chain  *ChainPayload  `json:"chain,omitempty"`
	Turn   *TurnPayload   `json:"turn,omitempty"`
	Hand   []models.Card  `json:"hand,omitempty"`
	End    *EndPayload    `json:"end,omitempty"`
	State  *ObfGameState  `json:"state,omitempty"`
}
