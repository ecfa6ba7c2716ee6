package game

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/will-hanabi-bot/go-bot/engine"
	"github.com/will-hanabi-bot/go-bot/internal/knowledge"
)

// Game is one seat's full picture of a session: the public state, the
// common observer, a knowledge view per seat, and the convention-level card
// annotations.
type Game struct {
	TableID int

	State   *engine.State
	Common  *knowledge.Player
	Players []*knowledge.Player
	Meta    []knowledge.CardMeta
	Notes   []string

	Convention Convention
	Log        *logrus.Entry

	// feedIndex marks how much of a replay feed this snapshot has consumed.
	feedIndex int
}

// New creates a game at the deal, before any draws.
func New(tableID int, playerNames []string, ourIndex int, conv Convention, log *logrus.Entry) *Game {
	g := &Game{
		TableID:    tableID,
		State:      engine.NewState(playerNames, ourIndex),
		Common:     knowledge.NewPlayer(knowledge.Common),
		Players:    make([]*knowledge.Player, len(playerNames)),
		Meta:       make([]knowledge.CardMeta, 0, engine.DeckSize),
		Notes:      make([]string, 0, engine.DeckSize),
		Convention: conv,
		Log:        log,
	}
	for i := range g.Players {
		g.Players[i] = knowledge.NewPlayer(i)
	}
	return g
}

// Clone deep-copies the game, for simulation.
func (g *Game) Clone() *Game {
	c := &Game{
		TableID:    g.TableID,
		State:      g.State.Copy(),
		Common:     g.Common.Clone(),
		Players:    make([]*knowledge.Player, len(g.Players)),
		Meta:       append([]knowledge.CardMeta(nil), g.Meta...),
		Notes:      append([]string(nil), g.Notes...),
		Convention: g.Convention,
		Log:        g.Log,
		feedIndex:  g.feedIndex,
	}
	for i, p := range g.Players {
		c.Players[i] = p.Clone()
	}
	return c
}

// Observers lists every knowledge view: the common observer first, then one
// per seat.
func (g *Game) Observers() []*knowledge.Player {
	return append([]*knowledge.Player{g.Common}, g.Players...)
}

// Us is our own knowledge view.
func (g *Game) Us() *knowledge.Player {
	return g.Players[g.State.OurIndex]
}

// HandleAction applies one feed action to the state and every observer.
// Errors are fatal for the session: the tracked game no longer matches the
// server's.
func (g *Game) HandleAction(action engine.Action) error {
	if g.Log != nil && action.Type != engine.ActionStatus {
		g.Log.WithField("turn", g.State.TurnCount).Debug(action.Format(g.State.PlayerNames))
	}

	if err := g.State.ApplyAction(action); err != nil {
		return err
	}

	switch action.Type {
	case engine.ActionDraw:
		for _, p := range g.Observers() {
			if err := p.OnDraw(*action.Draw); err != nil {
				return err
			}
		}
		g.Meta = append(g.Meta, knowledge.CardMeta{})
		g.Notes = append(g.Notes, "")
	case engine.ActionClue:
		if err := g.Convention.InterpretClue(g, *action.Clue); err != nil {
			return err
		}
	case engine.ActionPlay:
		if err := g.reveal(action.Play.Order, action.Play.SuitIndex, action.Play.Rank); err != nil {
			return err
		}
		g.Meta[action.Play.Order] = knowledge.CardMeta{}
	case engine.ActionDiscard:
		if err := g.reveal(action.Discard.Order, action.Discard.SuitIndex, action.Discard.Rank); err != nil {
			return err
		}
		g.Meta[action.Discard.Order] = knowledge.CardMeta{}
		g.Convention.InterpretDiscard(g, *action.Discard)
	}

	return g.refresh()
}

// Simulate applies action to a copy, leaving the receiver untouched.
func (g *Game) Simulate(action engine.Action) (*Game, error) {
	c := g.Clone()
	if err := c.HandleAction(action); err != nil {
		return nil, fmt.Errorf("simulating %s: %w", action.Type, err)
	}
	return c, nil
}

// Decide delegates to the convention for our seat's move.
func (g *Game) Decide() (engine.PerformAction, string, error) {
	action, rationale, err := g.Convention.Decide(g)
	if err != nil {
		return engine.PerformAction{}, "", err
	}
	action.TableID = g.TableID
	return action, rationale, nil
}

// reveal collapses every observer's thought about a card whose identity
// became public.
func (g *Game) reveal(order, suitIndex, rank int) error {
	if suitIndex == -1 || rank == -1 {
		return fmt.Errorf("%w: card %d left play with no identity", knowledge.ErrContradiction, order)
	}
	id := engine.Identity{Suit: suitIndex, Rank: rank}
	for _, p := range g.Observers() {
		if err := p.Thought(order).Reveal(id); err != nil {
			return err
		}
	}
	return nil
}

// refresh reruns elimination and derived stacks for every observer, then
// regenerates our note texts.
func (g *Game) refresh() error {
	for _, p := range g.Observers() {
		if err := p.CardElim(g.State); err != nil {
			return err
		}
		p.GoodTouchElim(g.State)
		p.UpdateHypoStacks(g.State, g.Meta)
	}
	for _, order := range g.State.Hands[g.State.OurIndex] {
		g.Notes[order] = knowledge.NoteFor(g.Common.Thought(order), g.Meta[order], g.State)
	}
	return nil
}
