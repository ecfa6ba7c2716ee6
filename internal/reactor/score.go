package reactor

import (
	"github.com/will-hanabi-bot/go-bot/engine"
	"github.com/will-hanabi-bot/go-bot/internal/game"
	"github.com/will-hanabi-bot/go-bot/internal/knowledge"
)

// Clue value weights. Fixed so that scoring, and therefore play, is
// deterministic.
const (
	weightPlayable = 3
	weightTouch    = 1
	weightFillIn   = 1
	weightBadTouch = -3
)

// scoredClue is a play-clue candidate with its prospective value.
type scoredClue struct {
	clue         engine.Clue
	value        int
	newPlayables int
}

// bestPlayClue simulates every legal clue through the interpretation rules
// and keeps the highest-value one whose focus would really play. Ties break
// on lower target, colour before rank, lower clue value.
func (r *Reactor) bestPlayClue(g *game.Game) (scoredClue, bool) {
	s := g.State
	var best scoredClue
	found := false

	for target := 0; target < s.NumPlayers(); target++ {
		if target == s.OurIndex {
			continue
		}
		for _, clue := range s.AllValidClues(s.OurIndex, target) {
			cand, ok := r.scoreClue(g, clue)
			if !ok {
				continue
			}
			if !found || betterClue(cand, best) {
				best = cand
				found = true
			}
		}
	}
	return best, found
}

// scoreClue runs the clue through a simulated interpretation and values the
// outcome against the real identities we can see. Clues whose focus would
// not actually play, or that touch more trash than they help, are rejected.
func (r *Reactor) scoreClue(g *game.Game, clue engine.Clue) (scoredClue, bool) {
	s := g.State
	touched := s.ClueTouched(clue.Target, clue.Base())
	action := engine.NewClueAction(s.OurIndex, clue.Target, clue.Base(), touched)

	sim, err := g.Simulate(action)
	if err != nil {
		return scoredClue{}, false
	}

	value := 0
	focusPlays := false
	newPlayables := 0
	for _, order := range touched {
		id, visible := s.Card(order).ID()
		if !visible {
			return scoredClue{}, false
		}
		newlyClued := sim.State.Card(order).NewlyClued
		switch {
		case !newlyClued:
			value += weightFillIn
		case s.IsBasicTrash(id) || duplicatesClued(g, order, id):
			value += weightBadTouch
		default:
			value += weightTouch
		}
		if sim.Meta[order].Status == knowledge.StatusCalledToPlay {
			if !s.IsPlayable(id) {
				// The read instructs a misplay; never give this clue.
				return scoredClue{}, false
			}
			focusPlays = true
			newPlayables++
			value += weightPlayable
		}
	}
	if !focusPlays || value <= 0 {
		return scoredClue{}, false
	}
	return scoredClue{clue: clue, value: value, newPlayables: newPlayables}, true
}

// duplicatesClued reports whether another clued card is already known or
// visible as the same identity.
func duplicatesClued(g *game.Game, order int, id engine.Identity) bool {
	s := g.State
	for playerIndex := range s.Hands {
		for _, other := range s.Hands[playerIndex] {
			if other == order || !s.Card(other).Clued {
				continue
			}
			if otherID, ok := s.Card(other).ID(); ok && otherID.Is(id) {
				return true
			}
			if known, ok := g.Common.Thought(other).Known(); ok && known.Is(id) {
				return true
			}
		}
	}
	return false
}

// betterClue orders candidates: higher value wins, then lower target seat,
// colour before rank, lower clue value.
func betterClue(a, b scoredClue) bool {
	if a.value != b.value {
		return a.value > b.value
	}
	if a.clue.Target != b.clue.Target {
		return a.clue.Target < b.clue.Target
	}
	if a.clue.Kind != b.clue.Kind {
		return a.clue.Kind == engine.ClueColour
	}
	return a.clue.Value < b.clue.Value
}
