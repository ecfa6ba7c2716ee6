// Package game aggregates the public state with every observer's knowledge
// and routes the action feed through a convention. It also hosts the replay
// driver that rebuilds a finished game to any turn.
package game

import "github.com/will-hanabi-bot/go-bot/engine"

// Convention is a fixed rulebook. Interpretation updates knowledge and meta
// from public information only, so every seat running the same convention
// derives the same common knowledge. Decide picks the agent's own move.
type Convention interface {
	// InterpretClue runs after the clue has been applied to the state.
	InterpretClue(g *Game, clue engine.ClueAction) error

	// InterpretDiscard runs after a (possibly failed) discard has been
	// applied to the state.
	InterpretDiscard(g *Game, discard engine.DiscardAction)

	// Decide returns the move for the agent's seat plus a rationale naming
	// the rule that fired.
	Decide(g *Game) (engine.PerformAction, string, error)
}
