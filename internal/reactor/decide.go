package reactor

import (
	"errors"
	"fmt"

	"github.com/will-hanabi-bot/go-bot/engine"
	"github.com/will-hanabi-bot/go-bot/internal/game"
	"github.com/will-hanabi-bot/go-bot/internal/knowledge"
)

// ErrNoLegalAction reports an empty candidate set. The rules guarantee a
// stall or discard is always available, so this means an invariant broke
// upstream.
var ErrNoLegalAction = errors.New("no legal action")

// Decide walks a fixed priority ladder and returns the first move that
// fires, with a rationale naming the rule. The same game always yields the
// same move.
func (r *Reactor) Decide(g *game.Game) (engine.PerformAction, string, error) {
	s := g.State
	us := s.OurIndex
	hand := s.Hands[us]

	// Urgent standing instructions from earlier interpretations.
	for _, order := range hand {
		m := g.Meta[order]
		if m.Status == knowledge.StatusCalledToPlay && m.Urgent {
			return engine.PerformPlayCard(order), "urgent play: " + m.Reasoning, nil
		}
		if m.Status == knowledge.StatusCalledToDiscard && m.Urgent && s.ClueTokens < engine.MaxClues {
			return engine.PerformDiscardCard(order), "urgent discard: " + m.Reasoning, nil
		}
	}

	// Play a card we believe playable, lowest slot first. Our own view is
	// used here: it carries counting eliminations from the hands we see
	// that the common observer cannot make.
	if playables := g.Us().ThinksPlayables(s, g.Meta, us); len(playables) > 0 {
		order := playables[0]
		for _, o := range playables {
			if slotOf(hand, o) < slotOf(hand, order) {
				order = o
			}
		}
		return engine.PerformPlayCard(order), r.playRationale(g, order), nil
	}

	// Save a teammate's critical chop before it walks off the end.
	if s.ClueTokens > 0 {
		if clue, id, ok := r.criticalSave(g); ok {
			return engine.PerformClue(clue),
				fmt.Sprintf("save clue: %s's chop is %s", s.PlayerNames[clue.Target], id), nil
		}
	}

	// Best prospective play clue.
	if s.ClueTokens > 0 {
		if best, ok := r.bestPlayClue(g); ok {
			return engine.PerformClue(best.clue),
				fmt.Sprintf("play clue (%d new playable, value %d)", best.newPlayables, best.value), nil
		}
	}

	if s.ClueTokens < engine.MaxClues {
		if chop, ok := g.Common.Chop(s, g.Meta, us); ok && !chopLooksCritical(g, chop) {
			return engine.PerformDiscardCard(chop), "discard chop", nil
		}
		if trash := g.Us().ThinksTrash(s, g.Meta, us); len(trash) > 0 {
			return engine.PerformDiscardCard(trash[0]), "discard known trash", nil
		}
	}

	// Stall: a clue that adds no newly touched cards, so it reads as a
	// fill-in rather than a play or save.
	if s.ClueTokens > 0 {
		if clue, ok := r.stallClue(g); ok {
			return engine.PerformClue(clue), "stall clue", nil
		}
	}

	// Last resorts: shed the chop even if it might be critical, or burn any
	// legal clue.
	if s.ClueTokens < engine.MaxClues && len(hand) > 0 {
		if chop, ok := g.Common.Chop(s, g.Meta, us); ok {
			return engine.PerformDiscardCard(chop), "forced discard", nil
		}
	}
	if s.ClueTokens > 0 {
		for offset := 1; offset < s.NumPlayers(); offset++ {
			target := (us + offset) % s.NumPlayers()
			if clues := s.AllValidClues(us, target); len(clues) > 0 {
				return engine.PerformClue(clues[0]), "forced clue", nil
			}
		}
	}
	if s.ClueTokens < engine.MaxClues {
		for i := len(hand) - 1; i >= 0; i-- {
			if g.Meta[hand[i]].Status != knowledge.StatusCalledToPlay {
				return engine.PerformDiscardCard(hand[i]), "sacrifice discard", nil
			}
		}
	}

	return engine.PerformAction{}, "", fmt.Errorf("%w: %d tokens, hand %v", ErrNoLegalAction, s.ClueTokens, hand)
}

// slotOf is the 0-based slot of order in hand (0 = newest).
func slotOf(hand []int, order int) int {
	for i, o := range hand {
		if o == order {
			return i
		}
	}
	return len(hand)
}

func (r *Reactor) playRationale(g *game.Game, order int) string {
	t := g.Us().Thought(order)
	if id, ok := t.Known(); ok {
		return fmt.Sprintf("play known %s", id)
	}
	if m := g.Meta[order]; m.Status == knowledge.StatusCalledToPlay && m.Reasoning != "" {
		return "play: " + m.Reasoning
	}
	return fmt.Sprintf("play inferred %s", t.Inferred)
}

// criticalSave scans the other seats in turn order for a chop we can see is
// critical. Rank clues are used for 5s and 2s, colour clues otherwise.
func (r *Reactor) criticalSave(g *game.Game) (engine.Clue, engine.Identity, bool) {
	s := g.State
	for offset := 1; offset < s.NumPlayers(); offset++ {
		target := (s.OurIndex + offset) % s.NumPlayers()
		chop, ok := g.Common.Chop(s, g.Meta, target)
		if !ok {
			continue
		}
		id, visible := s.Card(chop).ID()
		if !visible || !s.IsCritical(id) {
			continue
		}
		// Skip when the player already has something better to do than
		// discard.
		if len(g.Common.ThinksPlayables(s, g.Meta, target)) > 0 {
			continue
		}
		clue := engine.Clue{Kind: engine.ClueColour, Value: id.Suit, Target: target}
		if id.Rank == 5 || id.Rank == 2 {
			clue = engine.Clue{Kind: engine.ClueRank, Value: id.Rank, Target: target}
		}
		return clue, id, true
	}
	return engine.Clue{}, engine.Identity{}, false
}

// chopLooksCritical reports whether common knowledge alone pins our chop as
// a card that must not be discarded.
func chopLooksCritical(g *game.Game, chop int) bool {
	t := g.Common.Thought(chop)
	if t.Possible == engine.AllIdentities {
		return false
	}
	return t.Possible.All(g.State.IsCritical)
}

// stallClue looks for a clue whose touched set is entirely already-clued
// cards.
func (r *Reactor) stallClue(g *game.Game) (engine.Clue, bool) {
	s := g.State
	for offset := 1; offset < s.NumPlayers(); offset++ {
		target := (s.OurIndex + offset) % s.NumPlayers()
		for _, clue := range s.AllValidClues(s.OurIndex, target) {
			touched := s.ClueTouched(target, clue.Base())
			allClued := true
			for _, order := range touched {
				if !s.Card(order).Clued {
					allClued = false
					break
				}
			}
			if allClued {
				return clue, true
			}
		}
	}
	return engine.Clue{}, false
}
