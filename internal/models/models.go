// internal/models/models.go
package models

import (
	"github.com/google/uuid"
)

// Player is a participant of one game as the service sees it. Seat is the
// engine index assigned when the game starts.
type Player struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Seat      uint8     `json:"seat"`
	IsHost    bool      `json:"isHost,omitempty"`
	IsBot     bool      `json:"isBot,omitempty"`
	Connected bool      `json:"connected"`
}

// Card is a card as sent to clients. Number is zero when the card is hidden
// from the recipient.
type Card struct {
	ID       uuid.UUID `json:"id"`
	Number   int       `json:"number,omitempty"`
	Revealed bool      `json:"revealed,omitempty"`
}

// Known reports whether the card's number is visible to the recipient.
func (c Card) Known() bool { return c.Number != 0 }
