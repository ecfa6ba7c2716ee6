// Package reactor implements the convention rulebook: how clues are read
// into shared knowledge, and how the agent picks its own move. Every rule
// reads only public information, so all seats derive the same
// interpretation.
package reactor

import (
	"fmt"

	"github.com/will-hanabi-bot/go-bot/engine"
	"github.com/will-hanabi-bot/go-bot/internal/game"
	"github.com/will-hanabi-bot/go-bot/internal/knowledge"
)

// Reactor is the fixed convention. It is stateless; all derived knowledge
// lives in the game's observers and meta.
type Reactor struct{}

func New() *Reactor { return &Reactor{} }

// Interpretation labels what a clue meant.
type Interpretation int

const (
	InterpPlay Interpretation = iota
	InterpSave
	InterpFillIn
)

func (i Interpretation) String() string {
	switch i {
	case InterpPlay:
		return "play clue"
	case InterpSave:
		return "save clue"
	default:
		return "fill-in"
	}
}

// InterpretClue applies the rulebook to a clue that the state has already
// recorded:
//
//  1. Literal elimination on the touched hand, for every observer.
//  2. Focus: the chop if touched, else the newly touched card nearest the
//     chop. No newly touched cards means a fill-in with no focus.
//  3. The focus is read as a play clue when a clue-consistent identity is
//     currently playable, else as a save when the focus is the chop and a
//     consistent identity needs saving. Other newly touched cards keep only
//     the literal elimination.
func (r *Reactor) InterpretClue(g *game.Game, clue engine.ClueAction) error {
	touchedIDs := clue.Clue.TouchedIdentities()
	inList := make(map[int]bool, len(clue.List))
	for _, order := range clue.List {
		inList[order] = true
	}

	for _, p := range g.Observers() {
		for _, order := range g.State.Hands[clue.Target] {
			t := p.Thought(order)
			var err error
			if inList[order] {
				err = t.Intersect(touchedIDs)
			} else {
				err = t.Subtract(touchedIDs)
			}
			if err != nil {
				return fmt.Errorf("interpreting clue: %w", err)
			}
		}
	}

	focus, ok := r.clueFocus(g, clue)
	if !ok {
		return nil
	}
	g.Meta[focus].Focused = true

	interp, consistent := r.classify(g, clue, focus)
	switch interp {
	case InterpPlay:
		g.Meta[focus].Status = knowledge.StatusCalledToPlay
		g.Meta[focus].Reasoning = fmt.Sprintf("play clue from %s", g.State.PlayerNames[clue.Giver])
	case InterpSave:
		g.Meta[focus].Reasoning = fmt.Sprintf("saved by %s", g.State.PlayerNames[clue.Giver])
	}
	if !consistent.Empty() {
		for _, p := range g.Observers() {
			p.Thought(focus).InferIntersect(consistent)
		}
	}
	return nil
}

// clueFocus finds the focused card. The chop is taken as it stood before
// the clue: a newly clued card was unclued a moment ago.
func (r *Reactor) clueFocus(g *game.Game, clue engine.ClueAction) (int, bool) {
	hand := g.State.Hands[clue.Target]

	for i := len(hand) - 1; i >= 0; i-- {
		order := hand[i]
		card := g.State.Card(order)
		if (card.Clued && !card.NewlyClued) || g.Meta[order].Status != knowledge.StatusNone {
			continue
		}
		// Pre-clue chop. Focus is here only if the clue touched it.
		if card.NewlyClued {
			return order, true
		}
		break
	}

	// Newly touched card nearest the chop.
	for i := len(hand) - 1; i >= 0; i-- {
		if g.State.Card(hand[i]).NewlyClued {
			return hand[i], true
		}
	}
	return 0, false
}

// classify reads the focus, returning the interpretation and the identity
// set the focus narrows to. Play is preferred over save.
func (r *Reactor) classify(g *game.Game, clue engine.ClueAction, focus int) (Interpretation, engine.IdentitySet) {
	possible := g.Common.Thought(focus).Possible

	playable := possible.Filter(func(id engine.Identity) bool {
		return g.Common.HypoStacks[id.Suit]+1 == id.Rank && id.Rank <= g.State.MaxRanks[id.Suit]
	})
	if !playable.Empty() {
		return InterpPlay, playable
	}

	chop, hasChop := preClueChop(g, clue.Target)
	if hasChop && chop == focus {
		saveable := possible.Filter(func(id engine.Identity) bool {
			return saveWorthy(g.State, id)
		})
		if !saveable.Empty() {
			return InterpSave, saveable
		}
	}
	return InterpFillIn, engine.IdentitySet(0)
}

// preClueChop recomputes the chop of the target's hand as it stood before
// the clue landed.
func preClueChop(g *game.Game, target int) (int, bool) {
	hand := g.State.Hands[target]
	for i := len(hand) - 1; i >= 0; i-- {
		order := hand[i]
		card := g.State.Card(order)
		if (card.Clued && !card.NewlyClued) || g.Meta[order].Status != knowledge.StatusNone {
			continue
		}
		return order, true
	}
	return 0, false
}

// saveWorthy reports whether losing id from the chop would hurt: last copy
// of a needed card, or a not-yet-located 5 or 2.
func saveWorthy(s *engine.State, id engine.Identity) bool {
	if s.IsBasicTrash(id) {
		return false
	}
	if s.IsCritical(id) {
		return true
	}
	switch id.Rank {
	case 5:
		return true
	case 2:
		return s.DiscardStacks[id.Suit][1] == 0
	}
	return false
}

// InterpretDiscard has no extra convention weight: the reveal and the
// good-touch rerun in the game's refresh already cover a discarded
// duplicate or a misread play call.
func (r *Reactor) InterpretDiscard(g *game.Game, discard engine.DiscardAction) {}
