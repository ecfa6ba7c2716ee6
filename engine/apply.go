package engine

import "fmt"

// ApplyAction validates the action against the current state and mutates the
// state. The action feed is trusted for card identities but not for shape;
// malformed or out-of-order actions return ErrInvalidAction.
func (s *State) ApplyAction(action Action) error {
	if s.Ended() && action.Type != ActionGameOver {
		return fmt.Errorf("%w: game has ended", ErrInvalidAction)
	}

	var err error
	switch action.Type {
	case ActionClue:
		err = s.applyClue(*action.Clue)
	case ActionDraw:
		err = s.applyDraw(*action.Draw)
	case ActionPlay:
		err = s.applyPlay(*action.Play)
	case ActionDiscard:
		err = s.applyDiscard(*action.Discard)
	case ActionTurn:
		err = s.applyTurn(*action.Turn)
	case ActionStatus, ActionStrike:
		// Server-side checkpoints; the tracker derives these itself.
	case ActionGameOver:
		s.EndCondition = action.GameOver.EndCondition
	default:
		err = fmt.Errorf("%w: unknown action type %q", ErrInvalidAction, action.Type)
	}
	if err != nil {
		return err
	}
	s.ActionList = append(s.ActionList, action)
	return nil
}

func (s *State) applyClue(clue ClueAction) error {
	if s.ClueTokens == 0 {
		return fmt.Errorf("%w: no clue tokens", ErrInvalidAction)
	}
	if clue.Giver == clue.Target {
		return fmt.Errorf("%w: cannot clue own hand", ErrInvalidAction)
	}
	if clue.Target < 0 || clue.Target >= s.NumPlayers() {
		return fmt.Errorf("%w: clue target %d out of range", ErrInvalidAction, clue.Target)
	}
	if len(clue.List) == 0 {
		return fmt.Errorf("%w: clue touches no cards", ErrInvalidAction)
	}
	if clue.Clue.Kind == ClueRank && (clue.Clue.Value < 1 || clue.Clue.Value > NumRanks) {
		return fmt.Errorf("%w: rank clue value %d", ErrInvalidAction, clue.Clue.Value)
	}
	if clue.Clue.Kind == ClueColour && (clue.Clue.Value < 0 || clue.Clue.Value >= NumSuits) {
		return fmt.Errorf("%w: colour clue value %d", ErrInvalidAction, clue.Clue.Value)
	}

	touched := make(map[int]bool, len(clue.List))
	for _, order := range clue.List {
		if s.HolderOf(order) != clue.Target {
			return fmt.Errorf("%w: clued card %d not in %s's hand", ErrInvalidAction, order, s.PlayerNames[clue.Target])
		}
		touched[order] = true
	}

	for _, order := range s.Hands[clue.Target] {
		card := s.Card(order)
		if touched[order] {
			card.NewlyClued = !card.Clued
			card.Clued = true
			card.Clues = append(card.Clues, CardClue{
				Kind:  clue.Clue.Kind,
				Value: clue.Clue.Value,
				Giver: clue.Giver,
				Turn:  s.TurnCount,
			})
		} else {
			card.NewlyClued = false
		}
	}
	s.ClueTokens--
	return nil
}

func (s *State) applyDraw(draw DrawAction) error {
	if draw.Order != s.CardOrder {
		return fmt.Errorf("%w: drew card %d, expected %d", ErrInvalidAction, draw.Order, s.CardOrder)
	}
	if s.CardsLeft == 0 {
		return fmt.Errorf("%w: deck is empty", ErrInvalidAction)
	}
	if len(s.Hands[draw.PlayerIndex]) >= s.HandSize() {
		return fmt.Errorf("%w: %s's hand is full", ErrInvalidAction, s.PlayerNames[draw.PlayerIndex])
	}

	var base *Identity
	if id, ok := identityOf(draw.SuitIndex, draw.Rank); ok {
		base = &id
	}
	s.DeckArena = append(s.DeckArena, NewCard(base, draw.Order, s.TurnCount))
	s.Hands[draw.PlayerIndex] = append([]int{draw.Order}, s.Hands[draw.PlayerIndex]...)
	s.CardOrder++
	s.CardsLeft--

	// One more turn per player once the last card is drawn.
	if s.CardsLeft == 0 {
		s.EndgameTurns = s.NumPlayers() + 1
	}
	return nil
}

func (s *State) applyPlay(play PlayAction) error {
	if s.HolderOf(play.Order) != play.PlayerIndex {
		return fmt.Errorf("%w: played card %d not in %s's hand", ErrInvalidAction, play.Order, s.PlayerNames[play.PlayerIndex])
	}
	id, ok := identityOf(play.SuitIndex, play.Rank)
	if !ok {
		return fmt.Errorf("%w: played card %d has no identity", ErrInvalidAction, play.Order)
	}
	if !s.IsPlayable(id) {
		return fmt.Errorf("%w: %s is not playable", ErrInvalidAction, id)
	}
	if err := s.removeFromHand(play.PlayerIndex, play.Order); err != nil {
		return err
	}
	s.Card(play.Order).Base = &id
	s.PlayStacks[id.Suit] = id.Rank

	// Completing a suit refunds a clue token.
	if id.Rank == NumRanks && s.ClueTokens < MaxClues {
		s.ClueTokens++
	}
	return nil
}

func (s *State) applyDiscard(discard DiscardAction) error {
	if s.HolderOf(discard.Order) != discard.PlayerIndex {
		return fmt.Errorf("%w: discarded card %d not in %s's hand", ErrInvalidAction, discard.Order, s.PlayerNames[discard.PlayerIndex])
	}
	id, ok := identityOf(discard.SuitIndex, discard.Rank)
	if !ok {
		return fmt.Errorf("%w: discarded card %d has no identity", ErrInvalidAction, discard.Order)
	}
	if !discard.Failed && s.ClueTokens == MaxClues {
		return fmt.Errorf("%w: cannot discard at %d clue tokens", ErrInvalidAction, MaxClues)
	}
	if err := s.removeFromHand(discard.PlayerIndex, discard.Order); err != nil {
		return err
	}
	s.Card(discard.Order).Base = &id
	s.DiscardStacks[id.Suit][id.Rank-1]++

	if discard.Failed {
		s.Strikes++
		if s.Strikes >= MaxStrikes {
			s.EndCondition = EndStrikeout
		}
	} else {
		s.ClueTokens++
	}

	// Losing the last copy caps the suit below that rank.
	if s.DiscardStacks[id.Suit][id.Rank-1] == id.CardCount() && id.Rank <= s.MaxRanks[id.Suit] {
		s.MaxRanks[id.Suit] = id.Rank - 1
	}
	return nil
}

func (s *State) applyTurn(turn TurnAction) error {
	if turn.Num != s.TurnCount+1 {
		return fmt.Errorf("%w: turn %d out of sequence (at %d)", ErrInvalidAction, turn.Num, s.TurnCount)
	}
	s.TurnCount = turn.Num
	s.CurrentPlayerIndex = turn.CurrentPlayerIndex

	if s.EndgameTurns > 0 {
		s.EndgameTurns--
		if s.EndgameTurns == 0 && !s.Ended() {
			s.EndCondition = EndNormal
		}
	}
	if s.Score() == s.MaxScore() && !s.Ended() {
		s.EndCondition = EndNormal
	}
	return nil
}
