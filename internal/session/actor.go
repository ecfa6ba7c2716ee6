package session

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/will-hanabi-bot/go-bot/engine"
	"github.com/will-hanabi-bot/go-bot/internal/game"
)

// event is one feed action for an actor, or a closure to run on the actor's
// goroutine. decide is set on live actions and on the last entry of a
// catch-up list, so the actor only considers moving once its picture is
// current.
type event struct {
	action engine.Action
	decide bool
	do     func(*actor)
}

// actor owns one running game. All game state is touched only from its own
// goroutine; the read loop just enqueues.
type actor struct {
	s   *Session
	g   *game.Game
	log *logrus.Entry

	in chan event
	// stop is closed by leaveTable; run exits without draining further.
	stop    chan struct{}
	history []engine.Action

	// lastDecidedTurn stops a second submission while our own echo is
	// still in flight.
	lastDecidedTurn int

	sentNotes []string
}

func newActor(s *Session, g *game.Game, log *logrus.Entry) *actor {
	return &actor{
		s:               s,
		g:               g,
		log:             log,
		in:              make(chan event, 256),
		stop:            make(chan struct{}),
		lastDecidedTurn: -1,
		sentNotes:       make([]string, engine.DeckSize),
	}
}

func (a *actor) enqueue(ev event) {
	select {
	case a.in <- ev:
	default:
		// A full queue means the game loop is stuck; treat as desync.
		a.log.Error("actor queue full, abandoning table")
		a.s.leaveTable(a.g.TableID)
	}
}

func (a *actor) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-a.stop:
			return
		case ev := <-a.in:
			if ev.do != nil {
				ev.do(a)
				continue
			}
			a.history = append(a.history, ev.action)
			if err := a.g.HandleAction(ev.action); err != nil {
				a.log.WithError(err).Error("desync, abandoning table")
				a.s.leaveTable(a.g.TableID)
				return
			}
			if a.g.State.Ended() {
				a.finish()
				return
			}
			if ev.decide {
				a.pushNotes()
				a.maybeAct()
			}
		}
	}
}

// maybeAct submits our move when it is our turn and we have not already
// answered this turn.
func (a *actor) maybeAct() {
	s := a.g.State
	if s.CurrentPlayerIndex != s.OurIndex || s.TurnCount == a.lastDecidedTurn {
		return
	}
	action, rationale, err := a.g.Decide()
	if err != nil {
		a.log.WithError(err).Error("no legal action, abandoning table")
		a.s.leaveTable(a.g.TableID)
		return
	}
	a.lastDecidedTurn = s.TurnCount
	a.log.WithFields(logrus.Fields{
		"turn": s.TurnCount,
		"move": action.Format(s),
	}).Info(rationale)
	a.s.send("action", action)
}

// pushNotes uploads any note text that changed since the last push.
func (a *actor) pushNotes() {
	for order, note := range a.g.Notes {
		if note == a.sentNotes[order] {
			continue
		}
		a.sentNotes[order] = note
		a.s.send("note", noteData{
			TableID: a.g.TableID,
			Order:   order,
			Note:    note,
		})
	}
}

type noteData struct {
	TableID int    `json:"tableID"`
	Order   int    `json:"order"`
	Note    string `json:"note"`
}

// finish logs the result, archives it when an archive is configured, and
// leaves the table.
func (a *actor) finish() {
	s := a.g.State
	a.log.WithFields(logrus.Fields{
		"score":   s.Score(),
		"strikes": s.Strikes,
		"turns":   s.TurnCount,
	}).Info("game over")

	if a.s.archive != nil {
		if err := a.s.archive.SaveGame(context.Background(), a.g, a.history); err != nil {
			a.log.WithError(err).Error("archiving game failed")
		}
	}
	a.s.leaveTable(a.g.TableID)
}
