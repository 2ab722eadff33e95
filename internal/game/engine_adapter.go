// internal/game/engine_adapter.go
package game

import (
	"fmt"

	"github.com/google/uuid"

	engine "github.com/Cyronlee/nana-card-game/engine"
	"github.com/Cyronlee/nana-card-game/internal/models"
)

// CardUUIDTracker gives every engine card a UUID for client communication.
// Engine card ids are stable for a whole game, so the mapping is built once
// per deal.
type CardUUIDTracker struct {
	byEngine []uuid.UUID
	byUUID   map[uuid.UUID]engine.CardID
}

// newCardTracker assigns a fresh UUID to every card of g.
func newCardTracker(g *engine.GameState) CardUUIDTracker {
	var cards []engine.Card
	for _, p := range g.Players {
		cards = append(cards, p.Hand...)
		cards = append(cards, p.Collection...)
	}
	for _, s := range g.Public {
		if !s.Purged {
			cards = append(cards, s.Card)
		}
	}
	cards = append(cards, g.Deck...)

	size := 0
	for _, c := range cards {
		if int(c.ID)+1 > size {
			size = int(c.ID) + 1
		}
	}
	t := CardUUIDTracker{
		byEngine: make([]uuid.UUID, size),
		byUUID:   make(map[uuid.UUID]engine.CardID, len(cards)),
	}
	for _, c := range cards {
		id := uuid.New()
		t.byEngine[c.ID] = id
		t.byUUID[id] = c.ID
	}
	return t
}

// UUIDOf returns the client id of engine card id, or uuid.Nil.
func (t *CardUUIDTracker) UUIDOf(id engine.CardID) uuid.UUID {
	if int(id) >= len(t.byEngine) {
		return uuid.Nil
	}
	return t.byEngine[id]
}

// CardOf returns the engine card id behind a client id.
func (t *CardUUIDTracker) CardOf(id uuid.UUID) (engine.CardID, bool) {
	c, ok := t.byUUID[id]
	return c, ok
}

// toModelCard converts an engine card for clients. Numbers of cards the
// recipient may not see must already be engine.Unknown.
func (t *CardUUIDTracker) toModelCard(c engine.Card) models.Card {
	return models.Card{ID: t.UUIDOf(c.ID), Number: int(c.Number), Revealed: c.Revealed}
}

// seatOf returns the engine seat of a service player.
// Assumes lock is held by caller.
func (g *NanaGame) seatOf(playerID uuid.UUID) (uint8, bool) {
	seat, ok := g.PlayerToEngine[playerID]
	return seat, ok
}

// playerAt returns the service player sitting at seat, or uuid.Nil.
// Assumes lock is held by caller.
func (g *NanaGame) playerAt(seat uint8) uuid.UUID {
	if int(seat) >= len(g.EngineToPlayer) {
		return uuid.Nil
	}
	return g.EngineToPlayer[seat]
}

// currentPlayerID returns the UUID of the active player.
// Assumes lock is held by caller.
func (g *NanaGame) currentPlayerID() uuid.UUID {
	if !g.Engine.Dealt {
		return uuid.Nil
	}
	return g.playerAt(g.Engine.Current)
}

// RevealRequest is a client's reveal. Exactly one addressing form is used:
// a card id, a hand extreme (Owner and Extreme), or a public slot.
type RevealRequest struct {
	CardID  uuid.UUID       `json:"cardId,omitempty"`
	Owner   uuid.UUID       `json:"owner,omitempty"`
	Extreme *engine.Extreme `json:"extreme,omitempty"`
	Slot    *int            `json:"slot,omitempty"`
}

// sourceFor translates req into an engine source.
// Assumes lock is held by caller.
func (g *NanaGame) sourceFor(req RevealRequest) (engine.Source, error) {
	forms := 0
	if req.CardID != uuid.Nil {
		forms++
	}
	if req.Owner != uuid.Nil || req.Extreme != nil {
		forms++
	}
	if req.Slot != nil {
		forms++
	}
	if forms != 1 {
		return nil, fmt.Errorf("%w: exactly one of cardId, owner/extreme or slot is required", ErrInvalidRequest)
	}

	switch {
	case req.CardID != uuid.Nil:
		return g.sourceForCard(req.CardID)
	case req.Slot != nil:
		return engine.NewPublicSource(*req.Slot)
	}
	if req.Extreme == nil {
		return nil, fmt.Errorf("%w: extreme is required with owner", ErrInvalidRequest)
	}
	seat, ok := g.seatOf(req.Owner)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, req.Owner)
	}
	return engine.NewPlayerSource(seat, *req.Extreme)
}

// sourceForCard finds the source that currently reveals card id. A hand
// card is only addressable while it is the head or tail of its hand.
func (g *NanaGame) sourceForCard(id uuid.UUID) (engine.Source, error) {
	cid, ok := g.Cards.CardOf(id)
	if !ok {
		return nil, fmt.Errorf("%w: unknown card %s", ErrInvalidRequest, id)
	}
	seat, idx, ok := g.Engine.FindCard(cid)
	if !ok {
		return nil, fmt.Errorf("%w: card %s is not on the table", ErrInvalidRequest, id)
	}
	if seat < 0 {
		return engine.PublicSource{Slot: uint8(idx)}, nil
	}
	p := &g.Engine.Players[seat]
	for _, e := range []engine.Extreme{engine.ExtremeMin, engine.ExtremeMax} {
		if at, ok := p.ExtremeIndex(e); ok && at == idx {
			return engine.PlayerSource{Seat: uint8(seat), Extreme: e}, nil
		}
	}
	if p.Hand[idx].Revealed {
		return nil, fmt.Errorf("%w: card %s", engine.ErrCardAlreadyRevealed, id)
	}
	return nil, fmt.Errorf("%w: card %s is not at either end of the hand", ErrInvalidRequest, id)
}
