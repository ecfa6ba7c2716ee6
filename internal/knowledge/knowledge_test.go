package knowledge

import (
	"errors"
	"testing"

	"github.com/will-hanabi-bot/go-bot/engine"
)

// fixture holds a dealt state and the common observer plus one seat view.
type fixture struct {
	state  *engine.State
	common *Player
	us     *Player
	meta   []CardMeta
}

// deal builds a two-seat game where seat 0 is us. Hands are slot 0 first
// (newest), chop at the tail.
func deal(t *testing.T, hands [][]string) *fixture {
	t.Helper()

	f := &fixture{
		state:  engine.NewState([]string{"Alice", "Bob", "Cathy"}[:len(hands)], 0),
		common: NewPlayer(Common),
		us:     NewPlayer(0),
	}
	order := 0
	for playerIndex, hand := range hands {
		for i := len(hand) - 1; i >= 0; i-- {
			id, err := engine.ParseIdentity(hand[i])
			if err != nil {
				t.Fatalf("bad identity %q: %v", hand[i], err)
			}
			suit, rank := id.Suit, id.Rank
			if playerIndex == 0 {
				suit, rank = -1, -1
			}
			draw := engine.NewDrawAction(playerIndex, order, suit, rank)
			if err := f.state.ApplyAction(draw); err != nil {
				t.Fatalf("deal draw %d: %v", order, err)
			}
			for _, p := range []*Player{f.common, f.us} {
				if err := p.OnDraw(*draw.Draw); err != nil {
					t.Fatalf("deal thought %d: %v", order, err)
				}
			}
			order++
		}
	}
	f.meta = make([]CardMeta, order)
	return f
}

func TestDrawVisibility(t *testing.T) {
	f := deal(t, [][]string{
		{"r1", "y2", "g3", "b4", "p5"},
		{"r2", "r3", "r4", "r5", "y1"},
	})

	// We see Bob's cards but not our own; the common observer sees nothing.
	if !f.us.Seen(f.state.Hands[1][0]) {
		t.Errorf("we should see Bob's newest card")
	}
	if f.us.Seen(f.state.Hands[0][0]) {
		t.Errorf("we should not see our own cards")
	}
	if f.common.Seen(f.state.Hands[1][0]) {
		t.Errorf("the common observer should see no hand")
	}
}

func TestIntersectMonotone(t *testing.T) {
	f := deal(t, [][]string{
		{"r1", "y2", "g3", "b4", "p5"},
		{"r2", "r3", "r4", "r5", "y1"},
	})
	order := f.state.Hands[0][0]
	th := f.us.Thought(order)

	reds := engine.AllIdentities.Filter(func(id engine.Identity) bool { return id.Suit == engine.SuitRed })
	if err := th.Intersect(reds); err != nil {
		t.Fatalf("Intersect(red): %v", err)
	}
	before := th.Possible.Len()

	ones := engine.AllIdentities.Filter(func(id engine.Identity) bool { return id.Rank == 1 })
	if err := th.Intersect(ones); err != nil {
		t.Fatalf("Intersect(ones): %v", err)
	}
	if th.Possible.Len() >= before {
		t.Errorf("possible grew from %d to %d", before, th.Possible.Len())
	}
	if id, ok := th.Known(); !ok || id.String() != "r1" {
		t.Errorf("Known() = %v, %v, want r1", id, ok)
	}

	// A disjoint narrowing is a contradiction, not a silent no-op.
	twos := engine.AllIdentities.Filter(func(id engine.Identity) bool { return id.Rank == 2 })
	if err := th.Intersect(twos); !errors.Is(err, ErrContradiction) {
		t.Errorf("Intersect(disjoint) = %v, want ErrContradiction", err)
	}
}

func TestRevealCollapsesOnce(t *testing.T) {
	f := deal(t, [][]string{
		{"r1", "y2", "g3", "b4", "p5"},
		{"r2", "r3", "r4", "r5", "y1"},
	})
	order := f.state.Hands[0][2]
	th := f.common.Thought(order)

	if err := th.Reveal(engine.Identity{Suit: engine.SuitGreen, Rank: 3}); err != nil {
		t.Fatalf("Reveal: %v", err)
	}
	if th.Possible.Len() != 1 || th.Inferred.Len() != 1 {
		t.Errorf("reveal should collapse both sets")
	}
	if err := th.Reveal(engine.Identity{Suit: engine.SuitRed, Rank: 1}); !errors.Is(err, ErrContradiction) {
		t.Errorf("conflicting reveal = %v, want ErrContradiction", err)
	}
}

func TestCountingElimination(t *testing.T) {
	f := deal(t, [][]string{
		{"r5", "y2", "g3", "b4", "p4"},
		{"r2", "r3", "r4", "p5", "y1"},
	})

	// We see Bob's p5; the only other copy is the one we see, so our own
	// cards cannot be p5.
	if err := f.us.CardElim(f.state); err != nil {
		t.Fatalf("CardElim: %v", err)
	}
	p5 := engine.Identity{Suit: engine.SuitPurple, Rank: 5}
	for _, order := range f.state.Hands[0] {
		if f.us.Thought(order).Possible.Contains(p5) {
			t.Errorf("our card %d can still be p5 after elimination", order)
		}
	}
	// Two-copy identities stay open with one visible copy.
	r2 := engine.Identity{Suit: engine.SuitRed, Rank: 2}
	if !f.us.Thought(f.state.Hands[0][0]).Possible.Contains(r2) {
		t.Errorf("one visible r2 should not eliminate the second copy")
	}
}

func TestGoodTouchElim(t *testing.T) {
	f := deal(t, [][]string{
		{"r1", "r3", "g3", "b4", "p5"},
		{"r2", "y3", "r4", "r5", "y1"},
	})

	// Play r1 so that it is trash, then take a red clue on our r3.
	r1Order := f.state.Hands[0][0]
	if err := f.state.ApplyAction(engine.NewPlayAction(0, r1Order, engine.SuitRed, 1)); err != nil {
		t.Fatalf("play r1: %v", err)
	}
	cluedOrder := f.state.Hands[0][0]
	clue := engine.NewClueAction(1, 0, engine.BaseClue{Kind: engine.ClueColour, Value: engine.SuitRed}, []int{cluedOrder})
	if err := f.state.ApplyAction(clue); err != nil {
		t.Fatalf("clue: %v", err)
	}
	th := f.common.Thought(cluedOrder)
	if err := th.Intersect(clue.Clue.Clue.TouchedIdentities()); err != nil {
		t.Fatalf("literal elim: %v", err)
	}

	f.common.GoodTouchElim(f.state)
	r1 := engine.Identity{Suit: engine.SuitRed, Rank: 1}
	if th.Inferred.Contains(r1) {
		t.Errorf("clued card inference should exclude played identities")
	}
	if !th.Possible.Contains(r1) {
		t.Errorf("hard knowledge must be untouched by good-touch assumptions")
	}
}

func TestLinkedCardElimination(t *testing.T) {
	f := deal(t, [][]string{
		{"r5", "b5", "g3", "y2", "p4"},
		{"r2", "r3", "r4", "g5", "y1"},
	})

	// Two of our cards are each inferred to be r5 or b5. Both identities
	// have a single copy, so together the pair exhausts them and nothing
	// else can be either.
	link := engine.IdentitySetOf(
		engine.Identity{Suit: engine.SuitRed, Rank: 5},
		engine.Identity{Suit: engine.SuitBlue, Rank: 5},
	)
	for _, slot := range []int{0, 1} {
		f.common.Thought(f.state.Hands[0][slot]).Inferred = link
	}
	if err := f.common.CardElim(f.state); err != nil {
		t.Fatalf("CardElim: %v", err)
	}

	r5 := engine.Identity{Suit: engine.SuitRed, Rank: 5}
	outside := f.common.Thought(f.state.Hands[1][3])
	if outside.Inferred.Contains(r5) {
		t.Errorf("a card outside the link can still be inferred as r5")
	}
	if !outside.Possible.Contains(r5) {
		t.Errorf("link elimination must not touch hard knowledge")
	}
	for _, slot := range []int{0, 1} {
		if f.common.Thought(f.state.Hands[0][slot]).Inferred != link {
			t.Errorf("linked card %d lost its inference set", slot)
		}
	}
}

func TestChopSelection(t *testing.T) {
	f := deal(t, [][]string{
		{"r1", "y2", "g3", "b4", "p5"},
		{"r2", "r3", "r4", "r5", "y1"},
	})

	chop, ok := f.common.Chop(f.state, f.meta, 1)
	if !ok || chop != f.state.Hands[1][4] {
		t.Fatalf("chop = %d, want tail slot %d", chop, f.state.Hands[1][4])
	}

	// Cluing the tail moves the chop inward.
	clue := engine.NewClueAction(0, 1, engine.BaseClue{Kind: engine.ClueRank, Value: 1}, []int{chop})
	if err := f.state.ApplyAction(clue); err != nil {
		t.Fatalf("clue: %v", err)
	}
	chop, ok = f.common.Chop(f.state, f.meta, 1)
	if !ok || chop != f.state.Hands[1][3] {
		t.Errorf("chop = %d after tail clued, want %d", chop, f.state.Hands[1][3])
	}

	// A standing instruction also shields a slot.
	f.meta[f.state.Hands[1][3]].Status = StatusCalledToDiscard
	chop, ok = f.common.Chop(f.state, f.meta, 1)
	if !ok || chop != f.state.Hands[1][2] {
		t.Errorf("chop = %d with marked slot, want %d", chop, f.state.Hands[1][2])
	}
}

func TestHypoStacks(t *testing.T) {
	f := deal(t, [][]string{
		{"r1", "r2", "g3", "b4", "p5"},
		{"r3", "y3", "r4", "r5", "y1"},
	})

	// Mark a chain r1, r2 in our hand as inferred exactly.
	for i, short := range []string{"r1", "r2"} {
		id, _ := engine.ParseIdentity(short)
		th := f.common.Thought(f.state.Hands[0][i])
		th.Inferred = engine.SingleIdentity(id)
		f.meta[f.state.Hands[0][i]].Status = StatusCalledToPlay
	}
	f.common.UpdateHypoStacks(f.state, f.meta)

	if f.common.HypoStacks[engine.SuitRed] != 2 {
		t.Errorf("hypo red = %d, want 2", f.common.HypoStacks[engine.SuitRed])
	}
	if f.common.HypoStacks[engine.SuitYellow] != 0 {
		t.Errorf("hypo yellow = %d, want 0", f.common.HypoStacks[engine.SuitYellow])
	}

	playables := f.common.ThinksPlayables(f.state, f.meta, 0)
	if len(playables) != 2 {
		t.Errorf("ThinksPlayables = %v, want both chain cards", playables)
	}
}
