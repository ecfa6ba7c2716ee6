package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidAction reports an action that violates the base rules.
var ErrInvalidAction = errors.New("invalid action")

// handSizes[n] is the hand size for an n-player game.
var handSizes = [MaxPlayers + 1]int{0, 0, 5, 5, 4, 4, 3}

// HandSize returns the hand size for a game of numPlayers.
func HandSize(numPlayers int) int {
	return handSizes[numPlayers]
}

// EndCondition values reported in gameOver actions.
const (
	EndInProgress  = 0
	EndNormal      = 1
	EndStrikeout   = 2
	EndTimeout     = 3
	EndTerminated  = 4
	EndSpeedrun    = 5
	EndIdleTimeout = 6
)

// ---------------------------------------------------------
// State
// ---------------------------------------------------------

// State is the public game state from one observer's seat: the facts every
// player at the table agrees on, plus whichever card identities this seat
// can see. Convention reasoning lives elsewhere.
type State struct {
	PlayerNames []string
	OurIndex    int

	// DeckArena holds one entry per drawn card, indexed by draw order.
	// Cards never leave the arena; hands and piles reference orders.
	DeckArena []Card

	// Hands[i] lists card orders, newest first. The chop is the last slot.
	Hands [][]int

	// PlayStacks[suit] is the highest rank played, 0 when empty.
	PlayStacks []int

	// DiscardStacks[suit][rank-1] counts discarded copies.
	DiscardStacks [][]int

	// MaxRanks[suit] is the highest rank still reachable for the suit.
	MaxRanks []int

	ClueTokens int
	Strikes    int

	// Turn 0 is the deal; the first play is turn 1.
	TurnCount          int
	CurrentPlayerIndex int

	CardsLeft  int
	CardOrder  int
	ActionList []Action

	// EndgameTurns counts down once the deck is empty; -1 before then.
	// The game ends when it reaches 0.
	EndgameTurns int

	EndCondition int
}

// NewState creates the state at the deal, before any draw actions.
func NewState(playerNames []string, ourIndex int) *State {
	s := &State{
		PlayerNames:   playerNames,
		OurIndex:      ourIndex,
		DeckArena:     make([]Card, 0, DeckSize),
		Hands:         make([][]int, len(playerNames)),
		PlayStacks:    make([]int, NumSuits),
		DiscardStacks: make([][]int, NumSuits),
		MaxRanks:      make([]int, NumSuits),
		ClueTokens:    MaxClues,
		CardsLeft:     DeckSize,
		EndgameTurns:  -1,
	}
	for suit := 0; suit < NumSuits; suit++ {
		s.DiscardStacks[suit] = make([]int, NumRanks)
		s.MaxRanks[suit] = NumRanks
	}
	for i := range s.Hands {
		s.Hands[i] = make([]int, 0, HandSize(len(playerNames)))
	}
	return s
}

// Copy deep-copies the state.
func (s *State) Copy() *State {
	c := *s
	c.DeckArena = make([]Card, len(s.DeckArena))
	for i, card := range s.DeckArena {
		c.DeckArena[i] = card
		if card.Base != nil {
			base := *card.Base
			c.DeckArena[i].Base = &base
		}
		c.DeckArena[i].Clues = append([]CardClue(nil), card.Clues...)
	}
	c.Hands = make([][]int, len(s.Hands))
	for i, hand := range s.Hands {
		c.Hands[i] = append([]int(nil), hand...)
	}
	c.PlayStacks = append([]int(nil), s.PlayStacks...)
	c.MaxRanks = append([]int(nil), s.MaxRanks...)
	c.DiscardStacks = make([][]int, NumSuits)
	for suit, pile := range s.DiscardStacks {
		c.DiscardStacks[suit] = append([]int(nil), pile...)
	}
	c.ActionList = append([]Action(nil), s.ActionList...)
	return &c
}

func (s *State) NumPlayers() int { return len(s.PlayerNames) }

func (s *State) HandSize() int { return HandSize(s.NumPlayers()) }

// Card returns the arena entry for a draw order.
func (s *State) Card(order int) *Card {
	return &s.DeckArena[order]
}

// HolderOf returns the player currently holding order, or -1.
func (s *State) HolderOf(order int) int {
	for playerIndex, hand := range s.Hands {
		for _, o := range hand {
			if o == order {
				return playerIndex
			}
		}
	}
	return -1
}

func (s *State) NextPlayerIndex(playerIndex int) int {
	return (playerIndex + 1) % s.NumPlayers()
}

// Score is the number of cards played.
func (s *State) Score() int {
	score := 0
	for _, stack := range s.PlayStacks {
		score += stack
	}
	return score
}

// MaxScore is the best score still reachable given the discard piles.
func (s *State) MaxScore() int {
	max := 0
	for _, r := range s.MaxRanks {
		max += r
	}
	return max
}

// Pace is the number of discards the team can afford and still reach max
// score.
func (s *State) Pace() int {
	return s.Score() + s.CardsLeft + s.NumPlayers() - s.MaxScore()
}

func (s *State) InEndgame() bool {
	return s.EndgameTurns != -1
}

func (s *State) Ended() bool {
	return s.EndCondition != EndInProgress
}

// ---------------------------------------------------------
// Identity queries
// ---------------------------------------------------------

// IsPlayable reports whether id can go onto its stack right now.
func (s *State) IsPlayable(id Identity) bool {
	return s.PlayStacks[id.Suit]+1 == id.Rank && id.Rank <= s.MaxRanks[id.Suit]
}

// PlayableAway is the number of cards that must be played before id lands,
// 0 when immediately playable and negative when already played.
func (s *State) PlayableAway(id Identity) int {
	return id.Rank - (s.PlayStacks[id.Suit] + 1)
}

// IsBasicTrash reports whether id can never be usefully played: already on
// the stack, or ranked above the suit's reachable maximum.
func (s *State) IsBasicTrash(id Identity) bool {
	return id.Rank <= s.PlayStacks[id.Suit] || id.Rank > s.MaxRanks[id.Suit]
}

// BaseCount is the number of copies of id in public view: played or
// discarded.
func (s *State) BaseCount(id Identity) int {
	count := s.DiscardStacks[id.Suit][id.Rank-1]
	if s.PlayStacks[id.Suit] >= id.Rank {
		count++
	}
	return count
}

// IsCritical reports whether losing one more copy of id would lower the max
// score.
func (s *State) IsCritical(id Identity) bool {
	if s.IsBasicTrash(id) {
		return false
	}
	return s.BaseCount(id) == id.CardCount()-1
}

// ---------------------------------------------------------
// Clue queries
// ---------------------------------------------------------

// ClueTouched lists the orders in target's hand touched by clue, in hand
// order.
func (s *State) ClueTouched(target int, clue BaseClue) []int {
	var touched []int
	for _, order := range s.Hands[target] {
		if id, ok := s.Card(order).ID(); ok && clue.Touches(id) {
			touched = append(touched, order)
		}
	}
	return touched
}

// AllValidClues lists every clue giver could legally give to target: each
// colour and rank that touches at least one card.
func (s *State) AllValidClues(giver, target int) []Clue {
	var clues []Clue
	if giver == target || s.ClueTokens == 0 {
		return clues
	}
	for suit := 0; suit < NumSuits; suit++ {
		base := BaseClue{Kind: ClueColour, Value: suit}
		if len(s.ClueTouched(target, base)) > 0 {
			clues = append(clues, Clue{Kind: base.Kind, Value: base.Value, Target: target})
		}
	}
	for rank := 1; rank <= NumRanks; rank++ {
		base := BaseClue{Kind: ClueRank, Value: rank}
		if len(s.ClueTouched(target, base)) > 0 {
			clues = append(clues, Clue{Kind: base.Kind, Value: base.Value, Target: target})
		}
	}
	return clues
}

// LastActionOf returns the most recent non-bookkeeping action, or nil.
func (s *State) LastActionOf(types ...ActionType) *Action {
	for i := len(s.ActionList) - 1; i >= 0; i-- {
		for _, t := range types {
			if s.ActionList[i].Type == t {
				return &s.ActionList[i]
			}
		}
	}
	return nil
}

// removeFromHand removes order from playerIndex's hand, preserving order of
// the remaining slots.
func (s *State) removeFromHand(playerIndex, order int) error {
	hand := s.Hands[playerIndex]
	for i, o := range hand {
		if o == order {
			s.Hands[playerIndex] = append(hand[:i], hand[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: card %d not in %s's hand", ErrInvalidAction, order, s.PlayerNames[playerIndex])
}
