// Package engine implements the base Hanabi rules.
//
// This package provides the canonical deck model and a game state tracker
// advanced strictly by validated actions. It is deliberately free of
// convention logic: everything here is public information that every seat
// at the table can verify.
package engine

import "fmt"

const (
	NumSuits   = 5
	NumRanks   = 5
	DeckSize   = 50 // 3+2+2+2+1 copies per suit
	MaxClues   = 8
	MaxStrikes = 3
	MaxPlayers = 6
	MinPlayers = 2
)

// Suit indices for the base card set.
const (
	SuitRed = iota
	SuitYellow
	SuitGreen
	SuitBlue
	SuitPurple
)

// SuitNames holds the log names of the base suits, indexed by suit.
var SuitNames = [NumSuits]string{"red", "yellow", "green", "blue", "purple"}

// ShortForms holds the one-letter suit abbreviations used in logs and notes.
var ShortForms = [NumSuits]string{"r", "y", "g", "b", "p"}

// rankCounts[rank-1] is the number of copies of each rank per suit.
var rankCounts = [NumRanks]int{3, 2, 2, 2, 1}

// Identity is a (suit, rank) pair from the closed base set. Rank is 1-based.
type Identity struct {
	Suit int
	Rank int
}

// Valid reports whether the identity is within the base card set.
func (id Identity) Valid() bool {
	return id.Suit >= 0 && id.Suit < NumSuits && id.Rank >= 1 && id.Rank <= NumRanks
}

// Ord returns the dense ordinal of the identity in [0, NumSuits*NumRanks).
func (id Identity) Ord() int { return id.Suit*NumRanks + (id.Rank - 1) }

// IdentityFromOrd is the inverse of Ord.
func IdentityFromOrd(ord int) Identity {
	return Identity{Suit: ord / NumRanks, Rank: ord%NumRanks + 1}
}

// String renders the identity in short form, e.g. "r3".
func (id Identity) String() string {
	if !id.Valid() {
		return "xx"
	}
	return fmt.Sprintf("%s%d", ShortForms[id.Suit], id.Rank)
}

// CardCount returns the number of copies of the identity in a full deck.
func (id Identity) CardCount() int { return rankCounts[id.Rank-1] }

// Is reports whether two identities are the same card.
func (id Identity) Is(other Identity) bool { return id == other }

// ParseIdentity parses a short-form identity such as "b1".
func ParseIdentity(short string) (Identity, error) {
	if len(short) != 2 {
		return Identity{}, fmt.Errorf("malformed identity %q", short)
	}
	suit := -1
	for i, form := range ShortForms {
		if form == short[0:1] {
			suit = i
			break
		}
	}
	if suit == -1 {
		return Identity{}, fmt.Errorf("unknown suit in identity %q", short)
	}
	rank := int(short[1] - '0')
	id := Identity{Suit: suit, Rank: rank}
	if !id.Valid() {
		return Identity{}, fmt.Errorf("unknown rank in identity %q", short)
	}
	return id, nil
}

// Card is a unique instance in the deck arena, identified by its draw order.
// Base is nil while the card's identity has not been publicly revealed.
type Card struct {
	Base       *Identity
	Order      int
	DrawnTurn  int
	Clued      bool
	NewlyClued bool
	Clues      []CardClue
}

// NewCard constructs a card drawn at the given turn. base may be nil.
func NewCard(base *Identity, order, drawnTurn int) Card {
	return Card{Base: base, Order: order, DrawnTurn: drawnTurn}
}

// ID returns the revealed identity of the card, or ok=false if hidden.
func (c *Card) ID() (Identity, bool) {
	if c.Base == nil {
		return Identity{}, false
	}
	return *c.Base, true
}

// Is reports whether the card's revealed identity matches id.
func (c *Card) Is(id Identity) bool {
	return c.Base != nil && *c.Base == id
}
