package engine

import "fmt"

// PerformType is the numeric action tag the server expects on submissions.
type PerformType int

const (
	PerformPlay       PerformType = 0
	PerformDiscard    PerformType = 1
	PerformColourClue PerformType = 2
	PerformRankClue   PerformType = 3
	PerformEndGame    PerformType = 4
)

// PerformAction is an action submission. Target is a card order for
// play/discard and a player index for clues; Value is the clue value.
type PerformAction struct {
	TableID int         `json:"tableID"`
	Type    PerformType `json:"type"`
	Target  int         `json:"target"`
	Value   int         `json:"value,omitempty"`
}

func PerformPlayCard(order int) PerformAction {
	return PerformAction{Type: PerformPlay, Target: order}
}

func PerformDiscardCard(order int) PerformAction {
	return PerformAction{Type: PerformDiscard, Target: order}
}

func PerformClue(clue Clue) PerformAction {
	t := PerformRankClue
	if clue.Kind == ClueColour {
		t = PerformColourClue
	}
	return PerformAction{Type: t, Target: clue.Target, Value: clue.Value}
}

// Format renders the submission for logs.
func (p PerformAction) Format(s *State) string {
	switch p.Type {
	case PerformPlay, PerformDiscard:
		verb := "play"
		if p.Type == PerformDiscard {
			verb = "discard"
		}
		label := "xx"
		if p.Target < len(s.DeckArena) {
			if id, ok := s.Card(p.Target).ID(); ok {
				label = id.String()
			}
		}
		return fmt.Sprintf("%s %s (order %d)", verb, label, p.Target)
	case PerformColourClue:
		return fmt.Sprintf("clue %s to %s", SuitNames[p.Value], s.PlayerNames[p.Target])
	case PerformRankClue:
		return fmt.Sprintf("clue %d to %s", p.Value, s.PlayerNames[p.Target])
	default:
		return "end game"
	}
}
