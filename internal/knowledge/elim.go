package knowledge

import (
	"sort"

	"github.com/will-hanabi-bot/go-bot/engine"
)

// maxLinkSize bounds the inference sets considered for link elimination.
const maxLinkSize = 3

// CardElim applies counting elimination: once every copy of an identity is
// accounted for (played, discarded, or certainly located in a card this
// observer has collapsed), no other card can be that identity. Runs to
// fixpoint, since each collapse can unlock further eliminations, and folds
// in link elimination across cards sharing an inference set.
func (p *Player) CardElim(s *engine.State) error {
	for changed := true; changed; {
		changed = false
		for ord := 0; ord < engine.NumSuits*engine.NumRanks; ord++ {
			id := engine.IdentityFromOrd(ord)
			located, holders := p.locatedCopies(s, id)
			if located < id.CardCount() {
				continue
			}

			removal := engine.SingleIdentity(id)
			for i := range p.Thoughts {
				t := &p.Thoughts[i]
				if s.HolderOf(t.Order) == -1 || !t.Possible.Contains(id) {
					continue
				}
				if containsOrder(holders, t.Order) {
					continue
				}
				if err := t.Subtract(removal); err != nil {
					return err
				}
				changed = true
			}
		}
		if p.linkElim(s) {
			changed = true
		}
	}
	return nil
}

// locatedCopies counts the copies of id this observer can place: played,
// discarded, or collapsed in a held card. The collapsed holders are
// returned so counting elimination can skip them.
func (p *Player) locatedCopies(s *engine.State, id engine.Identity) (int, []int) {
	located := s.DiscardStacks[id.Suit][id.Rank-1]
	if s.PlayStacks[id.Suit] >= id.Rank {
		located++
	}
	var holders []int
	for i := range p.Thoughts {
		if s.HolderOf(p.Thoughts[i].Order) == -1 {
			continue
		}
		if known, ok := p.Thoughts[i].Known(); ok && known.Is(id) {
			located++
			holders = append(holders, p.Thoughts[i].Order)
		}
	}
	return located, holders
}

// linkElim extends counting to linked cards: when the held cards sharing
// one inference set number at least the unaccounted copies of that set,
// the set is exhausted inside the group and is removed from every card
// outside it. Inference sets are convention-level, so removals are soft.
func (p *Player) linkElim(s *engine.State) bool {
	groups := make(map[engine.IdentitySet][]int)
	for i := range p.Thoughts {
		t := &p.Thoughts[i]
		if s.HolderOf(t.Order) == -1 {
			continue
		}
		if _, collapsed := t.Known(); collapsed {
			continue
		}
		set := t.Inferred
		if set.Len() < 2 || set.Len() > maxLinkSize || set.All(s.IsBasicTrash) {
			continue
		}
		groups[set] = append(groups[set], t.Order)
	}

	sets := make([]engine.IdentitySet, 0, len(groups))
	for set := range groups {
		sets = append(sets, set)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i] < sets[j] })

	changed := false
	for _, set := range sets {
		orders := groups[set]
		copies := 0
		for _, id := range set.Identities() {
			located, _ := p.locatedCopies(s, id)
			copies += id.CardCount() - located
		}
		if len(orders) < copies {
			continue
		}
		for i := range p.Thoughts {
			t := &p.Thoughts[i]
			if s.HolderOf(t.Order) == -1 || containsOrder(orders, t.Order) {
				continue
			}
			// Only ever shrink: a link that would empty an inference is
			// suspect, and strict shrinking keeps the fixpoint finite.
			remaining := t.Inferred.Difference(set)
			if remaining.Empty() || remaining == t.Inferred {
				continue
			}
			t.InferIntersect(remaining)
			changed = true
		}
	}
	return changed
}

// GoodTouchElim assumes clued cards are not trash and not duplicates of
// other collapsed clued cards, and narrows inference accordingly. These are
// convention assumptions, so emptied inferences fall back to hard knowledge
// instead of failing.
func (p *Player) GoodTouchElim(s *engine.State) {
	trash := engine.AllIdentities.Filter(s.IsBasicTrash)

	// Identities certainly accounted for among clued cards.
	claimed := engine.IdentitySet(0)
	for playerIndex := range s.Hands {
		for _, order := range s.Hands[playerIndex] {
			if !s.Card(order).Clued {
				continue
			}
			if id, ok := p.Thought(order).Inferred.Single(); ok {
				claimed = claimed.With(id)
			}
		}
	}

	for playerIndex := range s.Hands {
		for _, order := range s.Hands[playerIndex] {
			if !s.Card(order).Clued {
				continue
			}
			t := p.Thought(order)
			removal := trash
			if _, collapsed := t.Inferred.Single(); !collapsed {
				removal = removal.Union(claimed)
			}
			t.InferIntersect(t.Inferred.Difference(removal))
		}
	}
}

func containsOrder(orders []int, order int) bool {
	for _, o := range orders {
		if o == order {
			return true
		}
	}
	return false
}
