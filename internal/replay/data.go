// Package replay loads finished games from a local export file or the
// remote export endpoint and reconstructs the action feed a live session
// would have seen.
package replay

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/will-hanabi-bot/go-bot/engine"
)

// ErrParse reports a malformed or inconsistent export. It always fires
// before any game state is constructed.
var ErrParse = errors.New("malformed replay")

// GameData is the export format of a finished game: the full deck in draw
// order plus the moves each player performed.
type GameData struct {
	ID      int          `json:"id"`
	Players []string     `json:"players"`
	Deck    []deckCard   `json:"deck"`
	Actions []performed  `json:"actions"`
	Options *gameOptions `json:"options,omitempty"`
	Notes   [][]string   `json:"notes,omitempty"`
}

type deckCard struct {
	SuitIndex int `json:"suitIndex"`
	Rank      int `json:"rank"`
}

// performed is one submitted move, in the numeric submission encoding.
type performed struct {
	Type   engine.PerformType `json:"type"`
	Target int                `json:"target"`
	Value  int                `json:"value"`
}

type gameOptions struct {
	Variant        string `json:"variant,omitempty"`
	StartingPlayer int    `json:"startingPlayer,omitempty"`
}

// Parse decodes and validates an export.
func Parse(data []byte) (*GameData, error) {
	var gd GameData
	if err := json.Unmarshal(data, &gd); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if err := gd.validate(); err != nil {
		return nil, err
	}
	return &gd, nil
}

// FromFile loads an export from a local JSON file.
func FromFile(path string) (*GameData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading replay file: %w", err)
	}
	return Parse(data)
}

func (gd *GameData) validate() error {
	if n := len(gd.Players); n < engine.MinPlayers || n > engine.MaxPlayers {
		return fmt.Errorf("%w: %d players", ErrParse, len(gd.Players))
	}
	if gd.Options != nil && gd.Options.Variant != "" && gd.Options.Variant != "No Variant" {
		return fmt.Errorf("%w: unsupported variant %q", ErrParse, gd.Options.Variant)
	}
	if len(gd.Deck) != engine.DeckSize {
		return fmt.Errorf("%w: deck has %d cards", ErrParse, len(gd.Deck))
	}

	counts := make(map[engine.Identity]int)
	for i, c := range gd.Deck {
		id := engine.Identity{Suit: c.SuitIndex, Rank: c.Rank}
		if !id.Valid() {
			return fmt.Errorf("%w: deck card %d is (%d,%d)", ErrParse, i, c.SuitIndex, c.Rank)
		}
		counts[id]++
		if counts[id] > id.CardCount() {
			return fmt.Errorf("%w: too many copies of %s", ErrParse, id)
		}
	}

	if len(gd.Actions) == 0 {
		return fmt.Errorf("%w: no actions", ErrParse)
	}
	for i, a := range gd.Actions {
		switch a.Type {
		case engine.PerformPlay, engine.PerformDiscard:
			if a.Target < 0 || a.Target >= engine.DeckSize {
				return fmt.Errorf("%w: action %d targets card %d", ErrParse, i, a.Target)
			}
		case engine.PerformColourClue:
			if a.Target < 0 || a.Target >= len(gd.Players) || a.Value < 0 || a.Value >= engine.NumSuits {
				return fmt.Errorf("%w: action %d is a bad colour clue", ErrParse, i)
			}
		case engine.PerformRankClue:
			if a.Target < 0 || a.Target >= len(gd.Players) || a.Value < 1 || a.Value > engine.NumRanks {
				return fmt.Errorf("%w: action %d is a bad rank clue", ErrParse, i)
			}
		case engine.PerformEndGame:
		default:
			return fmt.Errorf("%w: action %d has unknown type %d", ErrParse, i, a.Type)
		}
	}

	if gd.Options != nil {
		if sp := gd.Options.StartingPlayer; sp < 0 || sp >= len(gd.Players) {
			return fmt.Errorf("%w: starting player %d", ErrParse, gd.Options.StartingPlayer)
		}
	}
	return nil
}

func (gd *GameData) startingPlayer() int {
	if gd.Options != nil {
		return gd.Options.StartingPlayer
	}
	return 0
}
