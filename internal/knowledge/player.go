package knowledge

import "github.com/will-hanabi-bot/go-bot/engine"

// Common is the PlayerIndex of the shared observer that sees no hand at
// all. Its thoughts are exactly the common knowledge every seat agrees on.
const Common = -1

// Player is one observer's view of the whole arena: a thought per drawn
// card plus the hypothetical stacks reachable if every called-to-play card
// resolves.
type Player struct {
	PlayerIndex int
	Thoughts    []Thought
	HypoStacks  []int
}

// NewPlayer creates an observer with no thoughts yet; draws add them.
func NewPlayer(playerIndex int) *Player {
	return &Player{
		PlayerIndex: playerIndex,
		Thoughts:    make([]Thought, 0, engine.DeckSize),
		HypoStacks:  make([]int, engine.NumSuits),
	}
}

// Clone deep-copies the observer, for simulation.
func (p *Player) Clone() *Player {
	c := &Player{
		PlayerIndex: p.PlayerIndex,
		Thoughts:    append([]Thought(nil), p.Thoughts...),
		HypoStacks:  append([]int(nil), p.HypoStacks...),
	}
	return c
}

// Thought returns the observer's thought about a draw order.
func (p *Player) Thought(order int) *Thought {
	return &p.Thoughts[order]
}

// OnDraw registers a newly drawn card. The observer sees the identity of
// every draw except into a hand it cannot see (its own, or any hand for the
// common observer).
func (p *Player) OnDraw(draw engine.DrawAction) error {
	t := newThought(draw.Order)
	p.Thoughts = append(p.Thoughts, t)
	if draw.PlayerIndex != p.PlayerIndex && p.PlayerIndex != Common && draw.SuitIndex != -1 {
		return p.Thought(draw.Order).Reveal(engine.Identity{Suit: draw.SuitIndex, Rank: draw.Rank})
	}
	return nil
}

// Seen reports whether the observer can see the card's true identity.
func (p *Player) Seen(order int) bool {
	_, known := p.Thought(order).Known()
	return known
}

// ThinksPlayables lists the orders in playerIndex's hand this observer
// believes that player will treat as playable: hard-known playable, or
// called to play, or inferred playable on the hypo stacks.
func (p *Player) ThinksPlayables(s *engine.State, meta []CardMeta, playerIndex int) []int {
	var playables []int
	for _, order := range s.Hands[playerIndex] {
		t := p.Thought(order)
		switch {
		case meta[order].Status == StatusCalledToPlay:
			playables = append(playables, order)
		case t.KnownPlayable(s):
			playables = append(playables, order)
		case t.Inferred != engine.AllIdentities && t.InferredPlayable(s, s.PlayStacks):
			playables = append(playables, order)
		}
	}
	return playables
}

// ThinksTrash lists the orders in playerIndex's hand this observer believes
// are safely discardable.
func (p *Player) ThinksTrash(s *engine.State, meta []CardMeta, playerIndex int) []int {
	var trash []int
	for _, order := range s.Hands[playerIndex] {
		t := p.Thought(order)
		if meta[order].Trash || meta[order].Status == StatusCalledToDiscard || t.KnownTrash(s) {
			trash = append(trash, order)
		}
	}
	return trash
}

// Chop returns the tail-most slot in playerIndex's hand with no
// informational markings, or ok=false when the whole hand is marked.
func (p *Player) Chop(s *engine.State, meta []CardMeta, playerIndex int) (int, bool) {
	hand := s.Hands[playerIndex]
	for i := len(hand) - 1; i >= 0; i-- {
		order := hand[i]
		if s.Card(order).Clued || meta[order].Status != StatusNone {
			continue
		}
		return order, true
	}
	return 0, false
}

// UpdateHypoStacks recomputes the stacks reachable if every card currently
// believed playable resolves, in any order that works. Runs to fixpoint.
func (p *Player) UpdateHypoStacks(s *engine.State, meta []CardMeta) {
	copy(p.HypoStacks, s.PlayStacks)

	played := make(map[int]bool)
	for changed := true; changed; {
		changed = false
		for playerIndex := range s.Hands {
			for _, order := range s.Hands[playerIndex] {
				if played[order] {
					continue
				}
				t := p.Thought(order)
				wanted := meta[order].Status == StatusCalledToPlay ||
					(t.Inferred != engine.AllIdentities && !t.Inferred.Empty())
				if !wanted || !t.InferredPlayable(s, p.HypoStacks) {
					continue
				}
				// Advance by the known rank when collapsed, else by the
				// single suit the inference allows.
				if id, ok := t.Inferred.Single(); ok {
					if p.HypoStacks[id.Suit]+1 == id.Rank {
						p.HypoStacks[id.Suit] = id.Rank
						played[order] = true
						changed = true
					}
				}
			}
		}
	}
}
