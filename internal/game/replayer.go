package game

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/will-hanabi-bot/go-bot/engine"
)

// checkpointStride is the turn interval between cached rebuild points.
const checkpointStride = 10

// Replayer walks a finished game's action feed and answers what the agent
// would do at any turn. It never mutates the history: every position is a
// fresh rebuild from the deal or the nearest earlier checkpoint.
type Replayer struct {
	playerNames []string
	ourIndex    int
	feed        []engine.Action
	convention  Convention
	log         *logrus.Entry

	checkpoints map[int]*Game
}

// NewReplayer prepares a replay over the given feed, simulating seat
// ourIndex.
func NewReplayer(playerNames []string, ourIndex int, feed []engine.Action, conv Convention, log *logrus.Entry) *Replayer {
	return &Replayer{
		playerNames: playerNames,
		ourIndex:    ourIndex,
		feed:        feed,
		convention:  conv,
		log:         log,
		checkpoints: make(map[int]*Game),
	}
}

// Navigate rebuilds the game as it stood at the start of the given turn.
func (r *Replayer) Navigate(turn int) (*Game, error) {
	if turn < 1 {
		return nil, fmt.Errorf("turn %d out of range", turn)
	}

	g, fed := r.nearestCheckpoint(turn)
	for ; fed < len(r.feed); fed++ {
		if g.State.TurnCount >= turn {
			break
		}
		if err := g.HandleAction(r.feed[fed]); err != nil {
			return nil, fmt.Errorf("rebuilding turn %d: %w", g.State.TurnCount, err)
		}
		if t := g.State.TurnCount; t > 0 && t%checkpointStride == 0 {
			if _, ok := r.checkpoints[t]; !ok {
				r.checkpoints[t] = snapshot(g, fed+1)
			}
		}
	}
	if g.State.TurnCount < turn {
		return nil, fmt.Errorf("turn %d out of range: game ended at turn %d", turn, g.State.TurnCount)
	}
	return g, nil
}

// Suggest returns the move the agent would make at the given turn. Asking
// about a turn that is not the simulated seat's is an error.
func (r *Replayer) Suggest(turn int) (engine.PerformAction, string, error) {
	g, err := r.Navigate(turn)
	if err != nil {
		return engine.PerformAction{}, "", err
	}
	if g.State.CurrentPlayerIndex != r.ourIndex {
		return engine.PerformAction{}, "", fmt.Errorf(
			"turn %d belongs to %s, not %s",
			turn, r.playerNames[g.State.CurrentPlayerIndex], r.playerNames[r.ourIndex])
	}
	return g.Decide()
}

// nearestCheckpoint returns a clone of the best cached position at or below
// turn, plus the feed index to resume from.
func (r *Replayer) nearestCheckpoint(turn int) (*Game, int) {
	best := -1
	for t := range r.checkpoints {
		if t <= turn && t > best {
			best = t
		}
	}
	if best == -1 {
		return New(0, r.playerNames, r.ourIndex, r.convention, r.log), 0
	}
	cp := r.checkpoints[best]
	return cp.Clone(), cp.feedIndex
}

// feedIndex rides along on checkpoint games only.
func snapshot(g *Game, feedIndex int) *Game {
	c := g.Clone()
	c.feedIndex = feedIndex
	return c
}
