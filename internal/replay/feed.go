package replay

import (
	"fmt"

	"github.com/will-hanabi-bot/go-bot/engine"
)

// Feed reconstructs the action feed a spectator would have received: draws
// with full identities, clue touch lists, misplays routed to failed
// discards, and turn bookkeeping. The feed is validated by playing it
// through a state tracker as it is built; an export that cannot be replayed
// is malformed.
func (gd *GameData) Feed() ([]engine.Action, error) {
	s := engine.NewState(gd.Players, -1)
	var feed []engine.Action

	push := func(a engine.Action) error {
		if err := s.ApplyAction(a); err != nil {
			return fmt.Errorf("%w: %v", ErrParse, err)
		}
		feed = append(feed, a)
		return nil
	}

	// Targets name deck orders; an order past the draw pointer was never
	// dealt, so the script cannot be replayed.
	drawnID := func(order int) (engine.Identity, bool) {
		if order < 0 || order >= len(s.DeckArena) {
			return engine.Identity{}, false
		}
		return s.Card(order).ID()
	}

	draw := func(playerIndex int) error {
		if s.CardsLeft == 0 {
			return nil
		}
		order := s.CardOrder
		c := gd.Deck[order]
		return push(engine.NewDrawAction(playerIndex, order, c.SuitIndex, c.Rank))
	}

	for playerIndex := range gd.Players {
		for i := 0; i < engine.HandSize(len(gd.Players)); i++ {
			if err := draw(playerIndex); err != nil {
				return nil, err
			}
		}
	}

	current := gd.startingPlayer()
	if err := push(engine.NewTurnAction(1, current)); err != nil {
		return nil, err
	}

	for i, move := range gd.Actions {
		if s.Ended() {
			return nil, fmt.Errorf("%w: action %d after game end", ErrParse, i)
		}

		switch move.Type {
		case engine.PerformPlay:
			id, ok := drawnID(move.Target)
			if !ok {
				return nil, fmt.Errorf("%w: action %d plays an undrawn card", ErrParse, i)
			}
			var err error
			if s.IsPlayable(id) {
				err = push(engine.NewPlayAction(current, move.Target, id.Suit, id.Rank))
			} else {
				err = push(engine.NewDiscardAction(current, move.Target, id.Suit, id.Rank, true))
			}
			if err != nil {
				return nil, err
			}
			if err := draw(current); err != nil {
				return nil, err
			}
		case engine.PerformDiscard:
			id, ok := drawnID(move.Target)
			if !ok {
				return nil, fmt.Errorf("%w: action %d discards an undrawn card", ErrParse, i)
			}
			if err := push(engine.NewDiscardAction(current, move.Target, id.Suit, id.Rank, false)); err != nil {
				return nil, err
			}
			if err := draw(current); err != nil {
				return nil, err
			}
		case engine.PerformColourClue, engine.PerformRankClue:
			base := engine.BaseClue{Kind: engine.ClueRank, Value: move.Value}
			if move.Type == engine.PerformColourClue {
				base.Kind = engine.ClueColour
			}
			list := s.ClueTouched(move.Target, base)
			if err := push(engine.NewClueAction(current, move.Target, base, list)); err != nil {
				return nil, err
			}
		case engine.PerformEndGame:
			if err := push(engine.NewGameOverAction(engine.EndTerminated, current)); err != nil {
				return nil, err
			}
			return feed, nil
		}

		if s.Ended() {
			break
		}
		current = s.NextPlayerIndex(current)
		if err := push(engine.NewTurnAction(s.TurnCount+1, current)); err != nil {
			return nil, err
		}
	}
	return feed, nil
}
