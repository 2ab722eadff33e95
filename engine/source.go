package engine

import (
	"encoding/json"
	"fmt"
)

// Extreme selects the head (minimum) or tail (maximum) unrevealed card of a
// sorted hand.
type Extreme uint8

const (
	ExtremeMin Extreme = iota
	ExtremeMax
)

func (e Extreme) String() string {
	switch e {
	case ExtremeMin:
		return "min"
	case ExtremeMax:
		return "max"
	}
	return fmt.Sprintf("extreme(%d)", uint8(e))
}

func (e Extreme) valid() bool { return e == ExtremeMin || e == ExtremeMax }

// Source is where a reveal takes its card from. The set of implementations
// is closed: PlayerSource and PublicSource.
type Source interface {
	isSource()
	String() string
}

// PlayerSource reveals the current extreme of a seat's hand.
type PlayerSource struct {
	Seat    uint8
	Extreme Extreme
}

// PublicSource reveals one slot of the public area.
type PublicSource struct {
	Slot uint8
}

func (PlayerSource) isSource() {}
func (PublicSource) isSource() {}

func (s PlayerSource) String() string { return fmt.Sprintf("player[%d].%s", s.Seat, s.Extreme) }
func (s PublicSource) String() string { return fmt.Sprintf("public[%d]", s.Slot) }

// NewPlayerSource validates and builds a player source.
func NewPlayerSource(seat uint8, e Extreme) (PlayerSource, error) {
	if !e.valid() {
		return PlayerSource{}, fmt.Errorf("%w: unknown extreme %d", ErrInvalidSource, e)
	}
	if seat >= MaxPlayers {
		return PlayerSource{}, fmt.Errorf("%w: seat %d", ErrInvalidSource, seat)
	}
	return PlayerSource{Seat: seat, Extreme: e}, nil
}

// NewPublicSource validates and builds a public source.
func NewPublicSource(slot int) (PublicSource, error) {
	if slot < 0 || slot > 0xFF {
		return PublicSource{}, fmt.Errorf("%w: slot %d", ErrInvalidSource, slot)
	}
	return PublicSource{Slot: uint8(slot)}, nil
}

// ---------------------------------------------------------------------------
// Serialised form
// ---------------------------------------------------------------------------

// SourceRecord is the flat, serialisable form of a Source.
type SourceRecord struct {
	Kind    string  `json:"kind"` // "player" or "public"
	Seat    uint8   `json:"seat,omitempty"`
	Extreme Extreme `json:"extreme,omitempty"`
	Slot    uint8   `json:"slot,omitempty"`
}

// Source kinds used in SourceRecord.
const (
	SourceKindPlayer = "player"
	SourceKindPublic = "public"
)

// RecordOf flattens src. A nil source yields the zero record.
func RecordOf(src Source) SourceRecord {
	switch s := src.(type) {
	case PlayerSource:
		return SourceRecord{Kind: SourceKindPlayer, Seat: s.Seat, Extreme: s.Extreme}
	case PublicSource:
		return SourceRecord{Kind: SourceKindPublic, Slot: s.Slot}
	}
	return SourceRecord{}
}

// Source rebuilds the typed source.
func (r SourceRecord) Source() (Source, error) {
	switch r.Kind {
	case SourceKindPlayer:
		return NewPlayerSource(r.Seat, r.Extreme)
	case SourceKindPublic:
		return NewPublicSource(int(r.Slot))
	}
	return nil, fmt.Errorf("%w: kind %q", ErrInvalidSource, r.Kind)
}

// MarshalJSON encodes the extreme by name.
func (e Extreme) MarshalJSON() ([]byte, error) { return json.Marshal(e.String()) }

// UnmarshalJSON accepts "min" or "max".
func (e *Extreme) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "min":
		*e = ExtremeMin
	case "max":
		*e = ExtremeMax
	default:
		return fmt.Errorf("%w: unknown extreme %q", ErrInvalidSource, s)
	}
	return nil
}
