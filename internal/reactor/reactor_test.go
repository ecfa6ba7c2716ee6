package reactor

import (
	"testing"

	"github.com/will-hanabi-bot/go-bot/engine"
	"github.com/will-hanabi-bot/go-bot/internal/game"
	"github.com/will-hanabi-bot/go-bot/internal/knowledge"
)

// setup deals a game with seat 0 as the agent. Hands are slot 0 first
// (newest); our own cards are hidden, teammates' are visible.
func setup(t *testing.T, hands [][]string) *game.Game {
	t.Helper()

	names := []string{"Alice", "Bob", "Cathy", "Donald"}[:len(hands)]
	g := game.New(1, names, 0, New(), nil)
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
			if err := g.HandleAction(engine.NewDrawAction(playerIndex, order, suit, rank)); err != nil {
				t.Fatalf("deal draw %d: %v", order, err)
			}
			order++
		}
	}
	if err := g.HandleAction(engine.NewTurnAction(1, 0)); err != nil {
		t.Fatalf("deal turn: %v", err)
	}
	return g
}

// clueUs applies a clue from Bob to our hand, touching the given slots
// (0 = newest).
func clueUs(t *testing.T, g *game.Game, clue engine.BaseClue, slots ...int) {
	t.Helper()
	hand := g.State.Hands[0]
	list := make([]int, len(slots))
	for i, slot := range slots {
		list[i] = hand[slot]
	}
	if err := g.HandleAction(engine.NewClueAction(1, 0, clue, list)); err != nil {
		t.Fatalf("clue: %v", err)
	}
}

func TestFocusChopWhenTouched(t *testing.T) {
	g := setup(t, [][]string{
		{"r1", "y2", "g3", "b4", "p5"},
		{"r3", "y4", "g3", "b2", "p4"},
	})

	// Rank clue touching slot 1 and the chop (slot 4): the chop is focused.
	clueUs(t, g, engine.BaseClue{Kind: engine.ClueRank, Value: 2}, 1, 4)

	hand := g.State.Hands[0]
	if !g.Meta[hand[4]].Focused {
		t.Errorf("chop should be the focus when touched")
	}
	if g.Meta[hand[1]].Focused {
		t.Errorf("non-chop touched card wrongly focused")
	}
}

func TestFocusNearestChop(t *testing.T) {
	g := setup(t, [][]string{
		{"r1", "y2", "g3", "b4", "p5"},
		{"r3", "y4", "g3", "b2", "p4"},
	})

	// Two newly touched cards away from the chop: the one nearer the tail
	// is focused.
	clueUs(t, g, engine.BaseClue{Kind: engine.ClueRank, Value: 1}, 1, 2)

	hand := g.State.Hands[0]
	if !g.Meta[hand[2]].Focused {
		t.Errorf("focus should fall on the touched card nearest the chop")
	}
	if g.Meta[hand[1]].Focused {
		t.Errorf("touched card farther from chop wrongly focused")
	}
}

func TestPlayClueReadAndPlayed(t *testing.T) {
	g := setup(t, [][]string{
		{"r1", "y2", "g3", "b4", "p5"},
		{"r3", "y4", "g3", "b2", "p4"},
	})

	clueUs(t, g, engine.BaseClue{Kind: engine.ClueRank, Value: 1}, 0)
	focus := g.State.Hands[0][0]
	if g.Meta[focus].Status != knowledge.StatusCalledToPlay {
		t.Fatalf("rank-1 clue on empty stacks should be a play clue")
	}
	if !g.Common.Thought(focus).Inferred.All(g.State.IsPlayable) {
		t.Errorf("focus inference = %s, want playable identities only", g.Common.Thought(focus).Inferred)
	}

	action, rationale, err := g.Decide()
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if action.Type != engine.PerformPlay || action.Target != focus {
		t.Errorf("Decide = %+v (%s), want play of %d", action, rationale, focus)
	}
}

func TestSaveClueReadNotPlayed(t *testing.T) {
	g := setup(t, [][]string{
		{"r1", "y2", "g3", "b4", "p5"},
		{"r3", "y4", "g3", "b2", "p4"},
	})

	// A 5 clue on our chop with nothing playable is a save, not a play.
	clueUs(t, g, engine.BaseClue{Kind: engine.ClueRank, Value: 5}, 4)
	saved := g.State.Hands[0][4]
	if g.Meta[saved].Status == knowledge.StatusCalledToPlay {
		t.Fatalf("5 on chop read as a play clue")
	}
	if !g.Meta[saved].Focused {
		t.Errorf("saved chop should still be the focus")
	}

	action, rationale, err := g.Decide()
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if action.Type == engine.PerformPlay {
		t.Errorf("Decide = %+v (%s), saved card must not be played", action, rationale)
	}
	if action.Type == engine.PerformDiscard && action.Target == saved {
		t.Errorf("saved card must not be discarded")
	}
}

func TestNeutralClueReadAsFillIn(t *testing.T) {
	g := setup(t, [][]string{
		{"r1", "y2", "g3", "b4", "p5"},
		{"r3", "y4", "g3", "b2", "p4"},
	})

	// Rank 3 off the chop with empty stacks: not playable, not a save.
	// Only the literal elimination sticks and nothing gets called.
	clueUs(t, g, engine.BaseClue{Kind: engine.ClueRank, Value: 3}, 2)
	focus := g.State.Hands[0][2]
	if !g.Meta[focus].Focused {
		t.Fatalf("touched card should still be the focus")
	}
	if g.Meta[focus].Status != knowledge.StatusNone {
		t.Errorf("neutral focus status = %v, want none", g.Meta[focus].Status)
	}
	threes := engine.AllIdentities.Filter(func(id engine.Identity) bool { return id.Rank == 3 })
	if got := g.Common.Thought(focus).Inferred; got != threes {
		t.Errorf("focus inference = %s, want the literal rank set %s", got, threes)
	}

	action, rationale, err := g.Decide()
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if action.Type == engine.PerformPlay && action.Target == focus {
		t.Errorf("Decide = %+v (%s), neutral focus must not be played", action, rationale)
	}
}

func TestCriticalSaveDecision(t *testing.T) {
	g := setup(t, [][]string{
		{"r1", "y2", "g3", "b4", "p3"},
		{"r3", "y4", "g3", "b2", "p5"},
	})

	// Bob's chop is the only p5 and Bob has nothing to play.
	action, rationale, err := g.Decide()
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if action.Type != engine.PerformRankClue || action.Value != 5 || action.Target != 1 {
		t.Errorf("Decide = %+v (%s), want rank-5 save to Bob", action, rationale)
	}
}

func TestPlaysCardCountedOutByOwnView(t *testing.T) {
	g := setup(t, [][]string{
		{"r1", "y4", "g4", "b4", "r1"},
		{"r2", "r3", "r4", "r5", "y1"},
		{"r2", "r3", "r4", "y2", "y3"},
	})

	// A red clue touching slot 0 and the chop. The chop is the focus; slot
	// 0 only keeps the literal red set. We see every copy of r2 through r5,
	// so in our own view slot 0 counts out to exactly r1. The common
	// observer cannot see that, but the decision is ours to make.
	clueUs(t, g, engine.BaseClue{Kind: engine.ClueColour, Value: engine.SuitRed}, 0, 4)

	newest := g.State.Hands[0][0]
	if id, ok := g.Us().Thought(newest).Known(); !ok || id.String() != "r1" {
		t.Fatalf("our view of slot 0 = %s, want counted out to r1", g.Us().Thought(newest).Possible)
	}
	if _, ok := g.Common.Thought(newest).Known(); ok {
		t.Fatalf("the common observer should not be able to count slot 0 out")
	}

	action, rationale, err := g.Decide()
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if action.Type != engine.PerformPlay || action.Target != newest {
		t.Errorf("Decide = %+v (%s), want play of the counted-out slot 0", action, rationale)
	}
}

func TestDiscardChopWhenIdle(t *testing.T) {
	g := setup(t, [][]string{
		{"r1", "y2", "g3", "b4", "p5"},
		{"r3", "y4", "g3", "b2", "p4"},
	})
	g.State.ClueTokens = 7

	// Nothing playable anywhere, no critical chop: discard our own chop.
	action, rationale, err := g.Decide()
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if action.Type != engine.PerformDiscard || action.Target != g.State.Hands[0][4] {
		t.Errorf("Decide = %+v (%s), want chop discard", action, rationale)
	}
}

func TestPlayCluePreferred(t *testing.T) {
	g := setup(t, [][]string{
		{"r1", "y2", "g3", "b4", "p5"},
		{"y4", "g3", "b2", "p4", "r1"},
	})
	g.State.ClueTokens = 7

	// Bob's chop r1 is playable: clue it rather than discarding.
	action, rationale, err := g.Decide()
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	if action.Type != engine.PerformColourClue && action.Type != engine.PerformRankClue {
		t.Fatalf("Decide = %+v (%s), want a play clue", action, rationale)
	}
	if action.Target != 1 {
		t.Errorf("clue target = %d, want Bob", action.Target)
	}

	// The clue must focus the r1: simulate it and check the read.
	base := engine.BaseClue{Kind: engine.ClueRank, Value: action.Value}
	if action.Type == engine.PerformColourClue {
		base.Kind = engine.ClueColour
	}
	list := g.State.ClueTouched(1, base)
	sim, err := g.Simulate(engine.NewClueAction(0, 1, base, list))
	if err != nil {
		t.Fatalf("simulate chosen clue: %v", err)
	}
	r1 := g.State.Hands[1][4]
	if sim.Meta[r1].Status != knowledge.StatusCalledToPlay {
		t.Errorf("chosen clue does not call Bob's r1 to play")
	}
}

func TestDecisionDeterminism(t *testing.T) {
	build := func() *game.Game {
		return setup(t, [][]string{
			{"r1", "y2", "g3", "b4", "p5"},
			{"y4", "g3", "b2", "p4", "r1"},
			{"r3", "y1", "g4", "b3", "p2"},
		})
	}

	first, firstWhy, err := build().Decide()
	if err != nil {
		t.Fatalf("Decide: %v", err)
	}
	for i := 0; i < 5; i++ {
		action, why, err := build().Decide()
		if err != nil {
			t.Fatalf("Decide: %v", err)
		}
		if action != first || why != firstWhy {
			t.Fatalf("run %d decided %+v (%s), first run %+v (%s)", i, action, why, first, firstWhy)
		}
	}
}
