// internal/game/game.go
package game

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	engine "github.com/Cyronlee/nana-card-game/engine"
	"github.com/Cyronlee/nana-card-game/engine/agent"
	"github.com/Cyronlee/nana-card-game/internal/cache"
	"github.com/Cyronlee/nana-card-game/internal/config"
	"github.com/Cyronlee/nana-card-game/internal/database"
	"github.com/Cyronlee/nana-card-game/internal/models"
)

// Service-level errors. Engine errors are returned unwrapped next to these.
var (
	ErrGameStarted      = errors.New("game already started")
	ErrGameNotStarted   = errors.New("game not started")
	ErrGameFull         = errors.New("game is full")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrUnknownPlayer    = errors.New("player not in game")
	ErrInvalidRequest   = errors.New("invalid reveal request")
)

// storeTimeout bounds every Redis and database call made for a game.
const storeTimeout = 2 * time.Second

// OnGameEndFunc is called once when a game finishes. winner is uuid.Nil if
// nobody won.
type OnGameEndFunc func(gameID uuid.UUID, winner uuid.UUID, standings []StandingPayload)

// StateStore keeps the authoritative engine state outside the process.
// *cache.RedisStore implements it.
type StateStore interface {
	Get(ctx context.Context, id uuid.UUID) (engine.GameState, error)
	Replace(ctx context.Context, id uuid.UUID, g engine.GameState) error
	AcquireSettle(ctx context.Context, id uuid.UUID, step int) (bool, error)
}

// Settings are the timing knobs of one game.
type Settings struct {
	SettleDelay  time.Duration // resolved chain stays face up this long
	ConcealDelay time.Duration // added to SettleDelay when the chain failed
	BotDelay     time.Duration // pause before each bot reveal
	Seed         uint64        // 0 draws a seed from the clock on every Start
}

// DefaultSettings returns the standard timings.
func DefaultSettings() Settings {
	return Settings{
		SettleDelay:  1500 * time.Millisecond,
		ConcealDelay: 500 * time.Millisecond,
		BotDelay:     800 * time.Millisecond,
	}
}

// SettingsFromConfig takes the timings from the process configuration.
func SettingsFromConfig(c config.Config) Settings {
	return Settings{
		SettleDelay:  c.SettleDelay,
		ConcealDelay: c.ConcealDelay,
		BotDelay:     c.BotDelay,
	}
}

// NanaGame is one table: the lobby roster, the authoritative engine state
// and the timers that settle chains and drive bots.
type NanaGame struct {
	ID       uuid.UUID
	Settings Settings

	Players []*models.Player // seat order once started

	Engine         engine.GameState    // authoritative state
	Cards          CardUUIDTracker     // client ids of engine cards
	PlayerToEngine map[uuid.UUID]uint8 // service player -> seat
	EngineToPlayer []uuid.UUID         // seat -> service player

	Started  bool
	GameOver bool

	Scheduler Scheduler  // settle and bot timers; RealScheduler by default
	Store     StateStore // optional external copy of Engine

	Mu sync.Mutex // protects everything above

	BroadcastFn         func(ev GameEvent)
	BroadcastToPlayerFn func(playerID uuid.UUID, ev GameEvent)
	OnGameEnd           OnGameEndFunc

	memories    agent.Registry // one per bot seat
	decider     agent.Decider
	deal        func(names []string) (engine.GameState, error)
	step        int // bumped by every accepted transition, start and restart
	actionIndex int
	settleTimer Timer
	botTimer    Timer
}

// NewNanaGame creates an empty lobby.
func NewNanaGame(settings Settings) *NanaGame {
	return &NanaGame{
		ID:             uuid.New(),
		Settings:       settings,
		PlayerToEngine: make(map[uuid.UUID]uint8),
		Scheduler:      RealScheduler{},
		memories:       agent.NewRegistry(),
		decider:        agent.NewDecider(),
	}
}

func (g *NanaGame) logger() *log.Entry { return log.WithField("game", g.ID) }

// AddPlayer seats p in the lobby. The first player becomes the host. A
// player already seated is marked connected again instead.
func (g *NanaGame) AddPlayer(p *models.Player) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()
	return g.addPlayer(p)
}

// addPlayer assumes lock is held by caller.
func (g *NanaGame) addPlayer(p *models.Player) error {
	if existing := g.getPlayerByID(p.ID); existing != nil {
		existing.Connected = true
		g.logger().WithField("player", p.ID).Info("player reconnected")
		g.sendSyncState(p.ID)
		return nil
	}
	if g.Started {
		return ErrGameStarted
	}
	if len(g.Players) >= engine.MaxPlayers {
		return fmt.Errorf("%w: %d seats", ErrGameFull, engine.MaxPlayers)
	}
	p.IsHost = len(g.Players) == 0
	p.Connected = true
	g.Players = append(g.Players, p)

	user := eventUserOf(p)
	g.logger().WithFields(log.Fields{"player": p.ID, "name": p.Name, "bot": p.IsBot}).Info("player joined")
	g.logAction(p.ID, string(EventPlayerJoined), user)
	g.fireEvent(GameEvent{Type: EventPlayerJoined, User: user})
	return nil
}

// Start deals the cards and begins the first turn.
func (g *NanaGame) Start() error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Started {
		return ErrGameStarted
	}
	if len(g.Players) < engine.MinPlayers {
		return fmt.Errorf("%w: %d seated, %d required", ErrNotEnoughPlayers, len(g.Players), engine.MinPlayers)
	}

	names := make([]string, len(g.Players))
	for i, p := range g.Players {
		names[i] = p.Name
	}
	state, err := g.dealGame(names)
	if err != nil {
		return fmt.Errorf("deal game %s: %w", g.ID, err)
	}

	g.Engine = state
	g.Cards = newCardTracker(&g.Engine)
	g.PlayerToEngine = make(map[uuid.UUID]uint8, len(g.Players))
	g.EngineToPlayer = make([]uuid.UUID, len(g.Players))
	g.memories = agent.NewRegistry()
	for i, p := range g.Players {
		seat := uint8(i)
		p.Seat = seat
		g.PlayerToEngine[p.ID] = seat
		g.EngineToPlayer[i] = p.ID
		if p.IsBot {
			g.memories = g.memories.With(seat, agent.ForSeat(&g.Engine, seat))
		}
	}
	g.Started, g.GameOver = true, false
	g.step++

	g.logger().WithField("players", len(g.Players)).Info("game started")
	g.logAction(uuid.Nil, string(EventGameStart), map[string]any{"players": names})
	g.persistInitialGameState()
	g.saveState()

	g.fireEvent(GameEvent{Type: EventGameStart})
	for _, p := range g.Players {
		if !p.IsBot {
			g.fireEventToPlayer(p.ID, GameEvent{Type: EventPrivateHand, Hand: g.handOf(p.Seat)})
		}
	}
	g.broadcastSyncStateToAll()
	g.broadcastPlayerTurn()
	g.scheduleBot()
	return nil
}

// dealGame assumes lock is held by caller.
func (g *NanaGame) dealGame(names []string) (engine.GameState, error) {
	if g.deal != nil {
		return g.deal(names)
	}
	seed := g.Settings.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	state, err := engine.NewGame(seed, names)
	if err != nil {
		return engine.GameState{}, err
	}
	state.Deal()
	return state, nil
}

// HandleReveal applies a reveal requested by playerID. Engine validation
// errors are returned as is and leave the game untouched.
func (g *NanaGame) HandleReveal(playerID uuid.UUID, req RevealRequest) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if !g.Started {
		return ErrGameNotStarted
	}
	seat, ok := g.seatOf(playerID)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	src, err := g.sourceFor(req)
	if err != nil {
		return err
	}
	return g.applyReveal(seat, src)
}

// applyReveal runs one reveal through the engine and publishes the result.
// Assumes lock is held by caller.
func (g *NanaGame) applyReveal(seat uint8, src engine.Source) error {
	next, err := g.Engine.Reveal(seat, src)
	if err != nil {
		g.logger().WithFields(log.Fields{"seat": seat, "source": src.String()}).Debugf("reveal rejected: %v", err)
		return err
	}
	g.Engine = next
	g.step++
	g.memories = g.memories.Observe(&g.Engine)

	actor := g.playerAt(seat)
	payload := RevealPayload{
		Card:   g.Cards.toModelCard(g.Engine.LastAction.Card),
		Chain:  len(g.Engine.Chain),
		Target: int(g.Engine.Chain[0].Number),
	}
	switch s := src.(type) {
	case engine.PlayerSource:
		payload.Owner = g.playerAt(s.Seat)
	case engine.PublicSource:
		slot := int(s.Slot)
		payload.Slot = &slot
	}
	g.fireEvent(GameEvent{Type: EventPlayerReveal, User: g.eventUser(actor), Reveal: &payload})
	g.logAction(actor, string(EventPlayerReveal), payload)
	g.saveState()

	if g.Engine.Phase.Resolving() {
		g.scheduleSettle()
		return nil
	}
	g.scheduleBot()
	return nil
}

// scheduleSettle announces the resolved chain and settles it after the
// configured delay. Assumes lock is held by caller.
func (g *NanaGame) scheduleSettle() {
	success := g.Engine.Phase == engine.PhaseResolvingSuccess
	delay := g.Settings.SettleDelay
	if !success {
		delay += g.Settings.ConcealDelay
	}
	g.fireEvent(GameEvent{
		Type:  EventChainResolved,
		User:  g.eventUser(g.currentPlayerID()),
		Chain: g.chainPayload(success, delay),
	})

	step := g.step
	stopTimer(&g.settleTimer)
	g.settleTimer = g.Scheduler.After(delay, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		g.settle(step)
	})
}

// settle applies the resolved chain scheduled at step. A settle for a step
// the game has moved past is dropped. Assumes lock is held by caller.
func (g *NanaGame) settle(step int) {
	if step != g.step || !g.Engine.Phase.Resolving() {
		g.logger().WithField("step", step).Debug("stale settle ignored")
		return
	}
	g.settleTimer = nil

	actor := g.currentPlayerID()
	success := g.Engine.Phase == engine.PhaseResolvingSuccess
	payload := g.chainPayload(success, 0)

	next, err := g.settledState(step)
	if err != nil {
		g.logger().Errorf("settle failed: %v", err)
		return
	}
	g.Engine = next
	g.step++
	g.memories = g.memories.Observe(&g.Engine)

	evType := EventChainFailed
	if success {
		evType = EventChainCollected
	}
	g.fireEvent(GameEvent{Type: evType, User: g.eventUser(actor), Chain: payload})
	g.logAction(actor, string(evType), payload)
	g.saveState()

	if g.Engine.IsTerminal() {
		g.endGame()
		return
	}
	g.broadcastSyncStateToAll()
	g.broadcastPlayerTurn()
	g.scheduleBot()
}

// settledState returns the state after settlement. With a store, the
// settlement is claimed first; when another process already claimed it the
// stored result is adopted. Assumes lock is held by caller.
func (g *NanaGame) settledState(step int) (engine.GameState, error) {
	if g.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		ok, err := g.Store.AcquireSettle(ctx, g.ID, step)
		switch {
		case err != nil:
			g.logger().Warnf("settle guard unavailable, settling locally: %v", err)
		case !ok:
			stored, err := g.Store.Get(ctx, g.ID)
			if err == nil && !stored.Phase.Resolving() && stored.TurnNumber >= g.Engine.TurnNumber {
				g.logger().WithField("step", step).Info("settle claimed elsewhere, adopting stored state")
				return stored, nil
			}
			g.logger().Warnf("settle claimed elsewhere but stored state unusable, settling locally: %v", err)
		}
	}
	return g.Engine.Settle()
}

// chainPayload describes the current chain. Assumes lock is held by caller.
func (g *NanaGame) chainPayload(success bool, delay time.Duration) *ChainPayload {
	p := &ChainPayload{Success: success, Delay: delay.Milliseconds()}
	if len(g.Engine.Chain) > 0 {
		p.Number = int(g.Engine.Chain[0].Number)
	}
	p.Cards = make([]models.Card, len(g.Engine.Chain))
	for i, c := range g.Engine.Chain {
		p.Cards[i] = g.Cards.toModelCard(c)
	}
	return p
}

// endGame announces the result, persists it and calls OnGameEnd.
// Assumes lock is held by caller.
func (g *NanaGame) endGame() {
	if g.GameOver {
		return
	}
	g.GameOver = true
	g.stopTimers()

	result := EndPayload{Reason: g.Engine.LastAction.Win.String()}
	if seat, ok := g.Engine.WinnerSeat(); ok {
		result.Winner = g.playerAt(seat)
	}
	for _, s := range g.Engine.Standings() {
		result.Standings = append(result.Standings, StandingPayload{
			Player:    g.playerAt(s.Seat),
			Name:      s.Name,
			Sets:      s.Sets,
			Collected: s.Collected.Numbers(),
			Winner:    s.Winner,
		})
	}

	g.logger().WithFields(log.Fields{"winner": result.Winner, "reason": result.Reason, "turns": g.Engine.TurnNumber}).Info("game over")
	g.logAction(uuid.Nil, string(EventGameEnd), result)
	g.persistFinalGameState(result)
	g.fireEvent(GameEvent{Type: EventGameEnd, End: &result})
	g.broadcastSyncStateToAll()

	if g.OnGameEnd != nil {
		g.OnGameEnd(g.ID, result.Winner, result.Standings)
	}
}

// RestartGame returns a started or finished game to the lobby with the same
// roster. Pending settle and bot timers are cancelled.
func (g *NanaGame) RestartGame() error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if !g.Started {
		return ErrGameNotStarted
	}
	g.stopTimers()
	g.step++
	g.Started, g.GameOver = false, false
	g.Engine = engine.GameState{}
	g.Cards = CardUUIDTracker{}
	g.PlayerToEngine = make(map[uuid.UUID]uint8)
	g.EngineToPlayer = nil
	g.memories = agent.NewRegistry()

	g.logger().Info("game restarted")
	g.logAction(uuid.Nil, string(EventGameRestart), nil)
	g.fireEvent(GameEvent{Type: EventGameRestart})
	g.broadcastSyncStateToAll()
	return nil
}

// HandleDisconnect marks a player as disconnected. The seat stays in play.
func (g *NanaGame) HandleDisconnect(playerID uuid.UUID) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.getPlayerByID(playerID)
	if p == nil {
		g.logger().WithField("player", playerID).Warn("disconnect for unknown player")
		return
	}
	if !p.Connected {
		return
	}
	p.Connected = false
	g.logAction(playerID, string(EventPlayerLeft), nil)
	g.fireEvent(GameEvent{Type: EventPlayerLeft, User: eventUserOf(p)})
}

// HandleReconnect marks a player as connected and sends them the state.
func (g *NanaGame) HandleReconnect(playerID uuid.UUID) error {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	p := g.getPlayerByID(playerID)
	if p == nil {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	p.Connected = true
	g.sendSyncState(playerID)
	return nil
}

// stopTimers assumes lock is held by caller.
func (g *NanaGame) stopTimers() {
	stopTimer(&g.settleTimer)
	stopTimer(&g.botTimer)
}

func stopTimer(t *Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

// handOf returns the full hand of seat, numbers included.
// Assumes lock is held by caller.
func (g *NanaGame) handOf(seat uint8) []models.Card {
	hand := g.Engine.Players[seat].Hand
	out := make([]models.Card, len(hand))
	for i, c := range hand {
		out[i] = g.Cards.toModelCard(c)
	}
	return out
}

// getPlayerByID assumes lock is held by caller.
func (g *NanaGame) getPlayerByID(playerID uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func eventUserOf(p *models.Player) *EventUser {
	return &EventUser{ID: p.ID, Name: p.Name, Bot: p.IsBot}
}

// eventUser assumes lock is held by caller.
func (g *NanaGame) eventUser(playerID uuid.UUID) *EventUser {
	if p := g.getPlayerByID(playerID); p != nil {
		return eventUserOf(p)
	}
	return &EventUser{ID: playerID}
}

// fireEvent broadcasts ev to all players. Assumes lock is held by caller.
func (g *NanaGame) fireEvent(ev GameEvent) {
	ev.GameID = g.ID
	if g.BroadcastFn != nil {
		g.BroadcastFn(ev)
	}
}

// fireEventToPlayer sends ev to one connected human player.
// Assumes lock is held by caller.
func (g *NanaGame) fireEventToPlayer(playerID uuid.UUID, ev GameEvent) {
	if g.BroadcastToPlayerFn == nil {
		return
	}
	p := g.getPlayerByID(playerID)
	if p == nil || p.IsBot || !p.Connected {
		return
	}
	ev.GameID = g.ID
	g.BroadcastToPlayerFn(playerID, ev)
}

// broadcastPlayerTurn assumes lock is held by caller.
func (g *NanaGame) broadcastPlayerTurn() {
	if !g.Started || g.GameOver {
		return
	}
	current := g.currentPlayerID()
	g.fireEvent(GameEvent{
		Type: EventGamePlayerTurn,
		User: g.eventUser(current),
		Turn: &TurnPayload{TurnID: int(g.Engine.TurnNumber), Player: current},
	})
}

// logAction appends an entry to the game's action log and publishes it to
// Redis in the background when a client is configured.
// Assumes lock is held by caller.
func (g *NanaGame) logAction(actorID uuid.UUID, actionType string, payload any) {
	g.actionIndex++
	rec := cache.GameActionRecord{
		GameID:      g.ID,
		ActionIndex: g.actionIndex,
		ActorUserID: actorID,
		ActionType:  actionType,
		Timestamp:   time.Now().UnixMilli(),
	}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			g.logger().Errorf("encode payload of action %s: %v", actionType, err)
		} else {
			rec.ActionPayload = b
		}
	}
	rdb := cache.Rdb
	if rdb == nil {
		return
	}
	go func(rec cache.GameActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := cache.Publish(ctx, rdb, rec); err != nil {
			log.WithField("game", rec.GameID).Errorf("publish action %d (%s): %v", rec.ActionIndex, rec.ActionType, err)
		}
	}(rec)
}

// saveState writes the engine state to the store. Assumes lock is held by
// caller so writes are ordered.
func (g *NanaGame) saveState() {
	if g.Store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()
	if err := g.Store.Replace(ctx, g.ID, g.Engine); err != nil {
		g.logger().Errorf("store state: %v", err)
	}
}

// persistInitialGameState saves the dealt layout to the database.
// Assumes lock is held by caller.
func (g *NanaGame) persistInitialGameState() {
	type initialHand struct {
		Player uuid.UUID `json:"player"`
		Name   string    `json:"name"`
		Hand   []int     `json:"hand"`
	}
	type initialState struct {
		Players []initialHand `json:"players"`
		Public  []int         `json:"public"`
	}

	snap := initialState{}
	for seat, p := range g.Engine.Players {
		h := initialHand{Player: g.playerAt(uint8(seat)), Name: p.Name}
		for _, c := range p.Hand {
			h.Hand = append(h.Hand, int(c.Number))
		}
		snap.Players = append(snap.Players, h)
	}
	for _, s := range g.Engine.Public {
		snap.Public = append(snap.Public, int(s.Card.Number))
	}

	if database.DB == nil {
		return
	}
	id, players := g.ID, len(g.Players)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := database.UpsertInitialGameState(ctx, id, players, snap); err != nil {
			log.WithField("game", id).Errorf("persist initial state: %v", err)
		}
	}()
}

// persistFinalGameState saves the result to the database.
// Assumes lock is held by caller.
func (g *NanaGame) persistFinalGameState(result EndPayload) {
	if database.DB == nil {
		return
	}
	res := database.GameResult{
		GameID:     g.ID,
		WinnerID:   result.Winner,
		WinReason:  result.Reason,
		Turns:      int(g.Engine.TurnNumber),
		FinalState: g.Engine.Clone(),
	}
	for _, s := range result.Standings {
		seat, _ := g.seatOf(s.Player)
		res.Standings = append(res.Standings, database.StandingRow{
			PlayerID:  s.Player,
			Seat:      seat,
			Name:      s.Name,
			Sets:      s.Sets,
			Collected: s.Collected,
			Winner:    s.Winner,
		})
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		if err := database.RecordGameResult(ctx, res); err != nil {
			log.WithField("game", res.GameID).Errorf("persist result: %v", err)
		}
	}()
}
