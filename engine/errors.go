package engine

import (
	"errors"
	"fmt"
)

// Validation errors returned by the state machine. None of them mutate state.
var (
	ErrNotYourTurn         = errors.New("not your turn")
	ErrCardAlreadyRevealed = errors.New("card already revealed")
	ErrNoCardAvailable     = errors.New("no card available")
	ErrRoundSettling       = errors.New("round is settling")
	ErrInvalidPlayerCount  = errors.New("invalid player count")
	ErrGameAlreadyOver     = errors.New("game already over")
	ErrInvalidSource       = errors.New("invalid reveal source")
	ErrNothingToSettle     = errors.New("no resolved chain to settle")
	ErrNotDealt            = errors.New("game has not been dealt")
	ErrInvalidDeal         = errors.New("invalid deal")
)

// ErrSlotPurged is returned for a public slot emptied by a collection.
var ErrSlotPurged = fmt.Errorf("public slot purged: %w", ErrNoCardAvailable)
