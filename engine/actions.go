package engine

import (
	"encoding/json"
	"fmt"
)

// ActionType tags the variants of Action.
type ActionType string

const (
	ActionClue     ActionType = "clue"
	ActionDraw     ActionType = "draw"
	ActionPlay     ActionType = "play"
	ActionDiscard  ActionType = "discard"
	ActionTurn     ActionType = "turn"
	ActionStatus   ActionType = "status"
	ActionStrike   ActionType = "strike"
	ActionGameOver ActionType = "gameOver"
)

// ClueAction reveals a clue value to every card in List of Target's hand.
type ClueAction struct {
	Giver  int      `json:"giver"`
	Target int      `json:"target"`
	List   []int    `json:"list"`
	Clue   BaseClue `json:"clue"`
}

// DrawAction adds card Order to PlayerIndex's hand. SuitIndex/Rank are -1
// when the drawing observer cannot see the card (their own draw).
type DrawAction struct {
	PlayerIndex int `json:"playerIndex"`
	Order       int `json:"order"`
	SuitIndex   int `json:"suitIndex"`
	Rank        int `json:"rank"`
}

// PlayAction resolves card Order from PlayerIndex's hand onto the stacks.
type PlayAction struct {
	PlayerIndex int `json:"playerIndex"`
	Order       int `json:"order"`
	SuitIndex   int `json:"suitIndex"`
	Rank        int `json:"rank"`
}

// DiscardAction moves card Order to the discard pile. Failed marks a
// misplay that was routed to the discard pile by the server.
type DiscardAction struct {
	PlayerIndex int  `json:"playerIndex"`
	Order       int  `json:"order"`
	SuitIndex   int  `json:"suitIndex"`
	Rank        int  `json:"rank"`
	Failed      bool `json:"failed"`
}

// TurnAction advances the turn counter and the active player.
type TurnAction struct {
	Num                int `json:"num"`
	CurrentPlayerIndex int `json:"currentPlayerIndex"`
}

// StatusAction is a server-side checkpoint of public counters.
type StatusAction struct {
	Clues    int `json:"clues"`
	Score    int `json:"score"`
	MaxScore int `json:"maxScore"`
}

// StrikeAction reports a strike; the state tracker derives strikes from
// failed discards, so this is informational.
type StrikeAction struct {
	Num   int `json:"num"`
	Turn  int `json:"turn"`
	Order int `json:"order"`
}

// GameOverAction terminates the game.
type GameOverAction struct {
	EndCondition int `json:"endCondition"`
	PlayerIndex  int `json:"playerIndex"`
}

// Action is the tagged variant carried by the session action feed. Exactly
// one of the pointer fields matching Type is non-nil.
type Action struct {
	Type     ActionType
	Clue     *ClueAction
	Draw     *DrawAction
	Play     *PlayAction
	Discard  *DiscardAction
	Turn     *TurnAction
	Status   *StatusAction
	Strike   *StrikeAction
	GameOver *GameOverAction
}

// Constructors mirroring the wire variants.

func NewClueAction(giver, target int, clue BaseClue, list []int) Action {
	return Action{Type: ActionClue, Clue: &ClueAction{Giver: giver, Target: target, Clue: clue, List: list}}
}

func NewDrawAction(playerIndex, order, suitIndex, rank int) Action {
	return Action{Type: ActionDraw, Draw: &DrawAction{PlayerIndex: playerIndex, Order: order, SuitIndex: suitIndex, Rank: rank}}
}

func NewPlayAction(playerIndex, order, suitIndex, rank int) Action {
	return Action{Type: ActionPlay, Play: &PlayAction{PlayerIndex: playerIndex, Order: order, SuitIndex: suitIndex, Rank: rank}}
}

func NewDiscardAction(playerIndex, order, suitIndex, rank int, failed bool) Action {
	return Action{Type: ActionDiscard, Discard: &DiscardAction{PlayerIndex: playerIndex, Order: order, SuitIndex: suitIndex, Rank: rank, Failed: failed}}
}

func NewTurnAction(num, currentPlayerIndex int) Action {
	return Action{Type: ActionTurn, Turn: &TurnAction{Num: num, CurrentPlayerIndex: currentPlayerIndex}}
}

func NewGameOverAction(endCondition, playerIndex int) Action {
	return Action{Type: ActionGameOver, GameOver: &GameOverAction{EndCondition: endCondition, PlayerIndex: playerIndex}}
}

// wireAction is the flat JSON shape of the action feed: a type tag plus the
// union of all variant fields.
type wireAction struct {
	Type ActionType `json:"type"`

	Giver  *int      `json:"giver,omitempty"`
	Target *int      `json:"target,omitempty"`
	List   []int     `json:"list,omitempty"`
	Clue   *BaseClue `json:"clue,omitempty"`

	PlayerIndex *int  `json:"playerIndex,omitempty"`
	Order       *int  `json:"order,omitempty"`
	SuitIndex   *int  `json:"suitIndex,omitempty"`
	Rank        *int  `json:"rank,omitempty"`
	Failed      *bool `json:"failed,omitempty"`

	Num                *int `json:"num,omitempty"`
	CurrentPlayerIndex *int `json:"currentPlayerIndex,omitempty"`
	Turn               *int `json:"turn,omitempty"`

	Clues    *int `json:"clues,omitempty"`
	Score    *int `json:"score,omitempty"`
	MaxScore *int `json:"maxScore,omitempty"`

	EndCondition *int `json:"endCondition,omitempty"`
}

func deref(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// UnmarshalJSON decodes the tagged wire representation.
func (a *Action) UnmarshalJSON(data []byte) error {
	var w wireAction
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	*a = Action{Type: w.Type}
	switch w.Type {
	case ActionClue:
		if w.Clue == nil {
			return fmt.Errorf("clue action missing clue value")
		}
		a.Clue = &ClueAction{Giver: deref(w.Giver), Target: deref(w.Target), List: w.List, Clue: *w.Clue}
	case ActionDraw:
		a.Draw = &DrawAction{PlayerIndex: deref(w.PlayerIndex), Order: deref(w.Order), SuitIndex: deref(w.SuitIndex), Rank: deref(w.Rank)}
	case ActionPlay:
		a.Play = &PlayAction{PlayerIndex: deref(w.PlayerIndex), Order: deref(w.Order), SuitIndex: deref(w.SuitIndex), Rank: deref(w.Rank)}
	case ActionDiscard:
		failed := w.Failed != nil && *w.Failed
		a.Discard = &DiscardAction{PlayerIndex: deref(w.PlayerIndex), Order: deref(w.Order), SuitIndex: deref(w.SuitIndex), Rank: deref(w.Rank), Failed: failed}
	case ActionTurn:
		a.Turn = &TurnAction{Num: deref(w.Num), CurrentPlayerIndex: deref(w.CurrentPlayerIndex)}
	case ActionStatus:
		a.Status = &StatusAction{Clues: deref(w.Clues), Score: deref(w.Score), MaxScore: deref(w.MaxScore)}
	case ActionStrike:
		a.Strike = &StrikeAction{Num: deref(w.Num), Turn: deref(w.Turn), Order: deref(w.Order)}
	case ActionGameOver:
		a.GameOver = &GameOverAction{EndCondition: deref(w.EndCondition), PlayerIndex: deref(w.PlayerIndex)}
	default:
		return fmt.Errorf("unknown action type %q", w.Type)
	}
	return nil
}

// MarshalJSON encodes the tagged wire representation.
func (a Action) MarshalJSON() ([]byte, error) {
	w := wireAction{Type: a.Type}
	switch a.Type {
	case ActionClue:
		w.Giver, w.Target, w.List = &a.Clue.Giver, &a.Clue.Target, a.Clue.List
		w.Clue = &a.Clue.Clue
	case ActionDraw:
		w.PlayerIndex, w.Order, w.SuitIndex, w.Rank = &a.Draw.PlayerIndex, &a.Draw.Order, &a.Draw.SuitIndex, &a.Draw.Rank
	case ActionPlay:
		w.PlayerIndex, w.Order, w.SuitIndex, w.Rank = &a.Play.PlayerIndex, &a.Play.Order, &a.Play.SuitIndex, &a.Play.Rank
	case ActionDiscard:
		w.PlayerIndex, w.Order, w.SuitIndex, w.Rank = &a.Discard.PlayerIndex, &a.Discard.Order, &a.Discard.SuitIndex, &a.Discard.Rank
		w.Failed = &a.Discard.Failed
	case ActionTurn:
		w.Num, w.CurrentPlayerIndex = &a.Turn.Num, &a.Turn.CurrentPlayerIndex
	case ActionStatus:
		w.Clues, w.Score, w.MaxScore = &a.Status.Clues, &a.Status.Score, &a.Status.MaxScore
	case ActionStrike:
		w.Num, w.Turn, w.Order = &a.Strike.Num, &a.Strike.Turn, &a.Strike.Order
	case ActionGameOver:
		w.EndCondition, w.PlayerIndex = &a.GameOver.EndCondition, &a.GameOver.PlayerIndex
	default:
		return nil, fmt.Errorf("unknown action type %q", a.Type)
	}
	return json.Marshal(w)
}

// MarshalJSON encodes the clue kind as the server's numeric type tag.
func (b BaseClue) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type  int `json:"type"`
		Value int `json:"value"`
	}{Type: int(b.Kind), Value: b.Value})
}

// UnmarshalJSON decodes the numeric clue kind tag.
func (b *BaseClue) UnmarshalJSON(data []byte) error {
	var w struct {
		Type  int `json:"type"`
		Value int `json:"value"`
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case 0:
		b.Kind = ClueColour
	case 1:
		b.Kind = ClueRank
	default:
		return fmt.Errorf("unknown clue kind %d", w.Type)
	}
	b.Value = w.Value
	return nil
}

// identityOf assembles the wire suit/rank pair, returning ok=false for the
// hidden (-1, -1) encoding.
func identityOf(suitIndex, rank int) (Identity, bool) {
	if suitIndex == -1 || rank == -1 {
		return Identity{}, false
	}
	return Identity{Suit: suitIndex, Rank: rank}, true
}

// Format renders the action for logs, e.g. "Alice clues 2 to Bob".
func (a Action) Format(playerNames []string) string {
	logID := func(suitIndex, rank int) string {
		id, ok := identityOf(suitIndex, rank)
		if !ok {
			return "xx"
		}
		return id.String()
	}

	switch a.Type {
	case ActionClue:
		value := fmt.Sprintf("%d", a.Clue.Clue.Value)
		if a.Clue.Clue.Kind == ClueColour {
			value = SuitNames[a.Clue.Clue.Value]
		}
		return fmt.Sprintf("%s clues %s to %s", playerNames[a.Clue.Giver], value, playerNames[a.Clue.Target])
	case ActionPlay:
		return fmt.Sprintf("%s plays %s", playerNames[a.Play.PlayerIndex], logID(a.Play.SuitIndex, a.Play.Rank))
	case ActionDiscard:
		verb := "discards"
		if a.Discard.Failed {
			verb = "bombs"
		}
		return fmt.Sprintf("%s %s %s", playerNames[a.Discard.PlayerIndex], verb, logID(a.Discard.SuitIndex, a.Discard.Rank))
	case ActionDraw:
		return fmt.Sprintf("%s draws %s", playerNames[a.Draw.PlayerIndex], logID(a.Draw.SuitIndex, a.Draw.Rank))
	case ActionTurn:
		return fmt.Sprintf("turn %d (%s)", a.Turn.Num, playerNames[a.Turn.CurrentPlayerIndex])
	case ActionGameOver:
		return "game over"
	default:
		return string(a.Type)
	}
}
