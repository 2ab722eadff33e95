package agent

import (
	"errors"
	"fmt"
	"math"
	"sort"

	engine "github.com/Cyronlee/nana-card-game/engine"
)

// ErrNoLegalAction means the agent was asked to move with no face-down card
// left anywhere. The state machine never lets that happen in a live game.
var ErrNoLegalAction = errors.New("agent: no face-down card to reveal")

// Action is a reveal request with the agent's diagnostics attached.
type Action struct {
	Source     engine.Source
	Card       engine.CardID // card the source resolved to when deciding
	Target     uint8         // number the agent is aiming for
	Confidence float64       // estimated chance the card shows Target
}

func (a Action) String() string {
	return fmt.Sprintf("%s target=%d confidence=%.2f", a.Source, a.Target, a.Confidence)
}

// Candidate is one scored option.
type Candidate struct {
	Action
	Score   float64
	Certain bool // the agent knows the card holds Target
}

// Decider chooses reveals. The zero value is not useful; use NewDecider.
type Decider struct {
	Weights Weights
}

// NewDecider returns a decider with the default weights.
func NewDecider() Decider { return Decider{Weights: DefaultWeights()} }

// Decide picks the next reveal with the default weights.
func Decide(m Memory, chain []engine.Card, players []engine.Player, public []engine.PublicSlot) (Action, error) {
	return NewDecider().Decide(m, chain, players, public)
}

// Decide picks the next reveal for the agent owning m. chain is the list of
// cards revealed so far this turn; players and public are the live table,
// from which only card ids, face-up flags and face-up numbers are read.
func (d Decider) Decide(m Memory, chain []engine.Card, players []engine.Player, public []engine.PublicSlot) (Action, error) {
	pos := livePositions(m, players, public)
	if len(pos) == 0 {
		return Action{}, ErrNoLegalAction
	}
	if len(chain) == 0 {
		if a, ok := d.shortcut(m, players, public, pos); ok {
			return a, nil
		}
	}
	if cands := d.evaluate(m, chain, players, public, pos); len(cands) > 0 {
		return cands[0].Action, nil
	}
	return fallback(m, chain, pos), nil
}

// Evaluate returns every scored candidate, best first. Known mismatches and
// sources ruled out by memory are not listed.
func (d Decider) Evaluate(m Memory, chain []engine.Card, players []engine.Player, public []engine.PublicSlot) []Candidate {
	return d.evaluate(m, chain, players, public, livePositions(m, players, public))
}

// PossibleActions lists every source the agent could reveal right now, one
// per distinct card.
func PossibleActions(m Memory, players []engine.Player, public []engine.PublicSlot) []engine.Source {
	pos := livePositions(m, players, public)
	out := make([]engine.Source, len(pos))
	for i, p := range pos {
		out[i] = p.src
	}
	return out
}

// ---------------------------------------------------------------------------
// Positions
// ---------------------------------------------------------------------------

// position is a face-down card the active player may reveal.
type position struct {
	src     engine.Source
	card    engine.CardID
	seat    int // -1 for public
	head    bool
	tail    bool
	handLen int
	value   uint8 // remembered number or engine.Unknown
	order   int
}

func (p position) public() bool { return p.seat < 0 }

func livePositions(m Memory, players []engine.Player, public []engine.PublicSlot) []position {
	var out []position
	add := func(p position) {
		p.order = len(out)
		out = append(out, p)
	}
	for s := range players {
		pl := &players[s]
		hi, ok := pl.ExtremeIndex(engine.ExtremeMin)
		if !ok {
			continue
		}
		ti, _ := pl.ExtremeIndex(engine.ExtremeMax)
		mk := func(idx int, e engine.Extreme) position {
			c := pl.Hand[idx]
			v, known := m.ValueOf(c.ID)
			if !known {
				v = engine.Unknown
				if uint8(s) == m.Self() {
					v = c.Number
				}
			}
			return position{
				src:     engine.PlayerSource{Seat: uint8(s), Extreme: e},
				card:    c.ID,
				seat:    s,
				handLen: len(pl.Hand),
				value:   v,
			}
		}
		head := mk(hi, engine.ExtremeMin)
		head.head = true
		if hi == ti {
			head.tail = true
			add(head)
			continue
		}
		add(head)
		tail := mk(ti, engine.ExtremeMax)
		tail.tail = true
		add(tail)
	}
	for i, slot := range public {
		if !slot.Available() {
			continue
		}
		v, known := m.ValueOf(slot.Card.ID)
		if !known {
			v = engine.Unknown
		}
		add(position{
			src:   engine.PublicSource{Slot: uint8(i)},
			card:  slot.Card.ID,
			seat:  -1,
			value: v,
		})
	}
	return out
}

// ---------------------------------------------------------------------------
// Start mode
// ---------------------------------------------------------------------------

// shortcut finds two known hand extremes holding the same number and flips
// one of them, which guarantees two thirds of a triple. A pair is skipped
// when reachable finds fewer than three copies of its number this turn, as
// when the last copy is buried mid-hand; start mode then picks another number.
func (d Decider) shortcut(m Memory, players []engine.Player, public []engine.PublicSlot, pos []position) (Action, bool) {
	byValue := make(map[uint8][]position)
	for _, p := range pos {
		if p.public() || p.value == engine.Unknown {
			continue
		}
		byValue[p.value] = append(byValue[p.value], p)
	}
	var (
		best      Action
		bestScore float64
		found     bool
	)
	for v, ps := range byValue {
		if len(ps) < 2 || reachable(m, v, players, public) < engine.CopiesPerNumber {
			continue
		}
		score, ok := d.numberScore(m, v)
		if !ok {
			continue
		}
		if found && (score < bestScore || (score == bestScore && v > best.Target)) {
			continue
		}
		sort.SliceStable(ps, func(i, j int) bool { return startLess(m.Self(), ps[i], ps[j]) })
		best = Action{Source: ps[0].src, Card: ps[0].card, Target: v, Confidence: 1}
		bestScore, found = score, true
	}
	return best, found
}

// numberScore rates number v as the opening target. ok is false for numbers
// no longer in play.
func (d Decider) numberScore(m Memory, v uint8) (float64, bool) {
	w := d.Weights
	collected := m.Collected()
	if !m.numbers.Contains(v) || collected.Has(v) {
		return 0, false
	}
	remaining := m.GlobalRemaining(v)
	score := w.PerCopy * float64(remaining)
	if v == 7 {
		score += w.Seven
	}
	own := engine.NumberSetOf(m.CollectedBy(m.Self())...)
	if m.numbers.Complements(v)&own != 0 {
		score += w.Complement
	}
	lo, hi, ok := inPlayExtremes(m.numbers, collected)
	if ok && (v == lo || v == hi) {
		score += w.Extreme
	}
	if remaining <= w.ScarceAt {
		score += w.Scarce
	}
	return score, true
}

func inPlayExtremes(r engine.NumberRange, collected engine.NumberSet) (lo, hi uint8, ok bool) {
	for n := r.Min; n <= r.Max; n++ {
		if collected.Has(n) {
			continue
		}
		if !ok {
			lo, ok = n, true
		}
		hi = n
	}
	return lo, hi, ok
}

// positionScore rates revealing p while aiming for v. ok is false when the
// position is known not to hold v or memory rules v out there.
func (d Decider) positionScore(m Memory, v uint8, p position) (score, prob float64, ok bool) {
	w := d.Weights
	if p.value != engine.Unknown {
		if p.value == v {
			return w.KnownMatch, 1, true
		}
		return 0, 0, false
	}
	if !m.possible(v, p.card) {
		return 0, 0, false
	}
	prob = m.CardProbability(v, p.card)
	if p.public() {
		return w.UnknownPublic * prob, prob, true
	}
	r := m.numbers
	span := float64(r.Max - r.Min)
	low, high := 1.0, 1.0
	if span > 0 {
		low = float64(r.Max-v) / span
		high = float64(v-r.Min) / span
	}
	if p.head {
		score = w.UnknownBase + w.UnknownSlope*low
	}
	if p.tail {
		score = math.Max(score, w.UnknownBase+w.UnknownSlope*high)
	}
	return score, prob, true
}

// reachable counts the copies of v the active player could still turn up
// this turn: known or possible copies in the runs that start at each hand
// extreme, plus the public area. Possible copies are capped by the copies
// still at unknown locations. A target below three cannot be completed.
func reachable(m Memory, v uint8, players []engine.Player, public []engine.PublicSlot) int {
	known, possible := 0, 0
	classify := func(val uint8, id engine.CardID) bool {
		switch {
		case val == v:
			known++
		case val == engine.Unknown && m.possible(v, id):
			possible++
		default:
			return false
		}
		return true
	}
	for s := range players {
		own := uint8(s) == m.Self()
		var down []engine.Card
		for _, c := range players[s].Hand {
			if !c.Revealed {
				down = append(down, c)
			}
		}
		head := 0
		for head < len(down) && classify(liveValue(m, own, down[head]), down[head].ID) {
			head++
		}
		for tail := len(down) - 1; tail >= head; tail-- {
			if !classify(liveValue(m, own, down[tail]), down[tail].ID) {
				break
			}
		}
	}
	for _, slot := range public {
		if slot.Available() {
			classify(liveValue(m, false, slot.Card), slot.Card.ID)
		}
	}
	if rem := m.GlobalRemaining(v); possible > rem {
		possible = rem
	}
	return known + possible
}

// liveValue is what the agent knows about a live card: its memory, or the
// card itself when it is in the agent's own hand or face up.
func liveValue(m Memory, own bool, c engine.Card) uint8 {
	if v, ok := m.ValueOf(c.ID); ok {
		return v
	}
	if own || c.Revealed {
		return c.Number
	}
	return engine.Unknown
}

// startLess orders equal-scoring start candidates: own hand, then players
// with smaller hands, then the public area.
func startLess(self uint8, a, b position) bool {
	ga, gb := group(self, a), group(self, b)
	if ga != gb {
		return ga < gb
	}
	if a.handLen != b.handLen {
		return a.handLen < b.handLen
	}
	return a.order < b.order
}

func group(self uint8, p position) int {
	switch {
	case p.public():
		return 2
	case p.seat == int(self):
		return 0
	}
	return 1
}

// ---------------------------------------------------------------------------
// Evaluation
// ---------------------------------------------------------------------------

type scored struct {
	Candidate
	pos position
}

func (d Decider) evaluate(m Memory, chain []engine.Card, players []engine.Player, public []engine.PublicSlot, pos []position) []Candidate {
	var list []scored
	less := func(a, b scored) bool { return startLess(m.Self(), a.pos, b.pos) }

	if len(chain) == 0 {
		for v := m.numbers.Min; v <= m.numbers.Max; v++ {
			ns, ok := d.numberScore(m, v)
			if !ok || reachable(m, v, players, public) < engine.CopiesPerNumber {
				continue
			}
			for _, p := range pos {
				ps, prob, ok := d.positionScore(m, v, p)
				if !ok {
					continue
				}
				list = append(list, scored{
					Candidate: Candidate{
						Action:  Action{Source: p.src, Card: p.card, Target: v, Confidence: prob},
						Score:   ns + ps,
						Certain: prob == 1 && p.value == v,
					},
					pos: p,
				})
			}
		}
	} else {
		target := chain[0].Number
		ownUsed := contributed(m.Self(), chain, players)
		less = func(a, b scored) bool {
			if ownUsed {
				ao, bo := a.pos.seat == int(m.Self()), b.pos.seat == int(m.Self())
				if ao != bo {
					return bo
				}
			}
			if a.pos.public() != b.pos.public() {
				return b.pos.public()
			}
			return a.pos.order < b.pos.order
		}
		for _, p := range pos {
			c := Candidate{Action: Action{Source: p.src, Card: p.card, Target: target}}
			if p.value != engine.Unknown {
				if p.value != target {
					continue
				}
				c.Confidence, c.Certain, c.Score = 1, true, d.Weights.ChaseCertain
			} else {
				if !m.possible(target, p.card) {
					continue
				}
				prob := m.CardProbability(target, p.card)
				c.Confidence, c.Score = prob, d.Weights.ChaseMultiplier*prob
			}
			list = append(list, scored{Candidate: c, pos: p})
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Score != list[j].Score {
			return list[i].Score > list[j].Score
		}
		if list[i].Certain != list[j].Certain {
			return list[i].Certain
		}
		return less(list[i], list[j])
	})
	out := make([]Candidate, len(list))
	for i, s := range list {
		out[i] = s.Candidate
	}
	return out
}

// contributed reports whether a chain card came from self's hand.
func contributed(self uint8, chain []engine.Card, players []engine.Player) bool {
	if int(self) >= len(players) {
		return false
	}
	for _, c := range chain {
		for _, h := range players[self].Hand {
			if h.ID == c.ID {
				return true
			}
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Fallback
// ---------------------------------------------------------------------------

// fallback reveals the agent's own head, else any public card, else another
// player's head, else whatever is left. pos must not be empty.
func fallback(m Memory, chain []engine.Card, pos []position) Action {
	pick := -1
	for i, p := range pos {
		if p.seat == int(m.Self()) && p.head {
			pick = i
			break
		}
	}
	if pick < 0 {
		for i, p := range pos {
			if p.public() {
				pick = i
				break
			}
		}
	}
	if pick < 0 {
		for i, p := range pos {
			if p.head {
				pick = i
				break
			}
		}
	}
	if pick < 0 {
		pick = 0
	}
	p := pos[pick]
	a := Action{Source: p.src, Card: p.card, Target: p.value}
	if len(chain) > 0 {
		a.Target = chain[0].Number
		a.Confidence = m.CardProbability(a.Target, p.card)
		if p.value == a.Target {
			a.Confidence = 1
		}
	}
	return a
}
