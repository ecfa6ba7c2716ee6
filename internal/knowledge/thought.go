// Package knowledge tracks what each observer can deduce about every card:
// hard possibilities from visible information and counting, and softer
// inferences from convention reads. Hard knowledge only shrinks; inference
// can be reset when a read turns out wrong.
package knowledge

import (
	"errors"
	"fmt"

	"github.com/will-hanabi-bot/go-bot/engine"
)

// ErrContradiction reports that elimination emptied a card's possible set.
// This means the tracked state has diverged from reality.
var ErrContradiction = errors.New("knowledge contradiction")

// Thought is one observer's knowledge about one card.
//
// Possible is everything the card could be given clues, reveals and
// counting. Inferred additionally applies convention reads and is always a
// subset of Possible.
type Thought struct {
	Order    int
	Possible engine.IdentitySet
	Inferred engine.IdentitySet
}

func newThought(order int) Thought {
	return Thought{Order: order, Possible: engine.AllIdentities, Inferred: engine.AllIdentities}
}

// Known returns the card's identity when hard knowledge has collapsed to a
// single candidate.
func (t *Thought) Known() (engine.Identity, bool) {
	return t.Possible.Single()
}

// Intersect narrows both sets to ids. Emptying Possible is a contradiction;
// emptying only Inferred resets inference back to hard knowledge.
func (t *Thought) Intersect(ids engine.IdentitySet) error {
	possible := t.Possible.Intersect(ids)
	if possible.Empty() {
		return fmt.Errorf("%w: card %d cannot be any of %s", ErrContradiction, t.Order, ids)
	}
	t.Possible = possible
	t.Inferred = t.Inferred.Intersect(ids)
	if t.Inferred.Empty() {
		t.Inferred = t.Possible
	}
	return nil
}

// Subtract removes ids from both sets, with the same emptiness rules as
// Intersect.
func (t *Thought) Subtract(ids engine.IdentitySet) error {
	return t.Intersect(t.Possible.Difference(ids))
}

// InferIntersect narrows only the inference. An empty result resets
// inference to hard knowledge rather than failing: a wrong convention read
// is recoverable, a wrong possibility is not.
func (t *Thought) InferIntersect(ids engine.IdentitySet) {
	t.Inferred = t.Inferred.Intersect(ids)
	if t.Inferred.Empty() {
		t.Inferred = t.Possible
	}
}

// Reveal collapses the thought to the actual identity.
func (t *Thought) Reveal(id engine.Identity) error {
	if !t.Possible.Contains(id) {
		return fmt.Errorf("%w: card %d revealed as %s, thought %s", ErrContradiction, t.Order, id, t.Possible)
	}
	t.Possible = engine.SingleIdentity(id)
	t.Inferred = t.Possible
	return nil
}

// KnownPlayable reports whether every remaining hard candidate is
// immediately playable.
func (t *Thought) KnownPlayable(s *engine.State) bool {
	return t.Possible.All(s.IsPlayable)
}

// InferredPlayable reports whether every inferred candidate plays onto the
// given hypothetical stacks.
func (t *Thought) InferredPlayable(s *engine.State, hypoStacks []int) bool {
	return t.Inferred.All(func(id engine.Identity) bool {
		return hypoStacks[id.Suit]+1 == id.Rank && id.Rank <= s.MaxRanks[id.Suit]
	})
}

// KnownTrash reports whether every remaining hard candidate is useless.
func (t *Thought) KnownTrash(s *engine.State) bool {
	return t.Possible.All(s.IsBasicTrash)
}

// InferredTrash reports whether every inferred candidate is useless.
func (t *Thought) InferredTrash(s *engine.State) bool {
	return t.Inferred.All(s.IsBasicTrash)
}
