package engine

import "fmt"

// ClueKind distinguishes the two legal clue values.
type ClueKind uint8

const (
	ClueColour ClueKind = iota
	ClueRank
)

// BaseClue is a clue value without a target: a suit index or a rank.
type BaseClue struct {
	Kind  ClueKind
	Value int
}

// Clue is a clue value aimed at a target player.
type Clue struct {
	Kind   ClueKind
	Value  int
	Target int
}

// Base strips the target from the clue.
func (c Clue) Base() BaseClue { return BaseClue{Kind: c.Kind, Value: c.Value} }

// CardClue records one clue a card has received.
type CardClue struct {
	Kind  ClueKind
	Value int
	Giver int
	Turn  int
}

// Matches reports whether the recorded clue carries the same value as base.
func (c CardClue) Matches(base BaseClue) bool {
	return c.Kind == base.Kind && c.Value == base.Value
}

// Touches reports whether the clue value touches a card of the identity.
// In the base card set a colour clue touches exactly its suit and a rank
// clue exactly its rank.
func (b BaseClue) Touches(id Identity) bool {
	if b.Kind == ClueColour {
		return id.Suit == b.Value
	}
	return id.Rank == b.Value
}

// TouchedIdentities returns the set of identities the clue value touches.
func (b BaseClue) TouchedIdentities() IdentitySet {
	return AllIdentities.Filter(b.Touches)
}

// Format renders the clue for logs, e.g. "(red to Bob)".
func (c Clue) Format(playerNames []string) string {
	value := fmt.Sprintf("%d", c.Value)
	if c.Kind == ClueColour {
		value = SuitNames[c.Value]
	}
	return fmt.Sprintf("(%s to %s)", value, playerNames[c.Target])
}
