// internal/game/bot.go
package game

import (
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	engine "github.com/Cyronlee/nana-card-game/engine"
	"github.com/Cyronlee/nana-card-game/internal/models"
)

// botNames are handed out in order as bots join a lobby.
var botNames = []string{"Bot Alpha", "Bot Beta", "Bot Gamma", "Bot Delta", "Bot Epsilon"}

// AddBots seats n bots in the lobby. Either all of them fit or none is
// added.
func (g *NanaGame) AddBots(n int) ([]*models.Player, error) {
	g.Mu.Lock()
	defer g.Mu.Unlock()

	if g.Started {
		return nil, ErrGameStarted
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: cannot add %d bots", ErrInvalidRequest, n)
	}
	if len(g.Players)+n > engine.MaxPlayers {
		return nil, fmt.Errorf("%w: %d seated, %d bots requested", ErrGameFull, len(g.Players), n)
	}

	bots := 0
	for _, p := range g.Players {
		if p.IsBot {
			bots++
		}
	}
	added := make([]*models.Player, 0, n)
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("Bot %d", bots+1)
		if bots < len(botNames) {
			name = botNames[bots]
		}
		bots++
		p := &models.Player{ID: uuid.New(), Name: name, IsBot: true}
		if err := g.addPlayer(p); err != nil {
			return added, err
		}
		added = append(added, p)
	}
	return added, nil
}

// isBotSeat assumes lock is held by caller.
func (g *NanaGame) isBotSeat(seat uint8) bool {
	p := g.getPlayerByID(g.playerAt(seat))
	return p != nil && p.IsBot
}

// scheduleBot queues a move for the active seat when it is a bot and the
// game is waiting for a reveal. Assumes lock is held by caller.
func (g *NanaGame) scheduleBot() {
	if !g.Started || g.GameOver || !g.Engine.Phase.Awaiting() || !g.isBotSeat(g.Engine.Current) {
		return
	}
	step := g.step
	stopTimer(&g.botTimer)
	g.botTimer = g.Scheduler.After(g.Settings.BotDelay, func() {
		g.Mu.Lock()
		defer g.Mu.Unlock()
		g.botMove(step)
	})
}

// botMove lets the active bot decide on its redacted view and reveal.
// Assumes lock is held by caller.
func (g *NanaGame) botMove(step int) {
	if step != g.step {
		return
	}
	g.botTimer = nil
	seat := g.Engine.Current
	m, ok := g.memories.Get(seat)
	if !ok {
		g.logger().WithField("seat", seat).Error("bot seat has no memory")
		return
	}

	view := g.Engine.Redacted(seat)
	action, err := g.decider.Decide(m, view.Chain, view.Players, view.Public)
	if err != nil {
		g.logger().WithField("seat", seat).Errorf("bot could not decide: %v", err)
		return
	}
	g.logger().WithFields(log.Fields{
		"seat":       seat,
		"source":     action.Source.String(),
		"target":     action.Target,
		"confidence": action.Confidence,
	}).Debug("bot reveal")

	if err := g.applyReveal(seat, action.Source); err != nil {
		g.logger().WithField("seat", seat).Errorf("bot reveal %s rejected: %v", action, err)
	}
}
