package session

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/will-hanabi-bot/go-bot/internal/game"
	"github.com/will-hanabi-bot/go-bot/internal/knowledge"
)

const usageHint = "commands: /join [password], /rejoin, /leave, /leaveall, /version, /hand <player>, /navigate <turn>, /results"

type chatPMData struct {
	Msg       string `json:"msg"`
	Recipient string `json:"recipient"`
	Room      string `json:"room"`
}

type tableJoinData struct {
	TableID  int    `json:"tableID"`
	Password string `json:"password,omitempty"`
}

// handleChat routes private messages. Anything that is not a known command
// gets the usage hint; nothing here ever touches game state directly.
func (s *Session) handleChat(c chatData) {
	if c.Recipient != s.username || !strings.HasPrefix(c.Msg, "/") {
		return
	}
	fields := strings.Fields(c.Msg)
	command, args := fields[0], fields[1:]

	switch command {
	case "/join":
		password := ""
		if len(args) > 0 {
			password = args[0]
		}
		s.joinSender(c.Who, password)

	case "/rejoin":
		tableID, ok := s.findTableWith(s.username)
		if !ok {
			s.sendPM(c.Who, "I am not part of any table.")
			return
		}
		s.send("tableReattend", tableIDData{TableID: tableID})

	case "/leave":
		if s.joinedTable == -1 {
			s.sendPM(c.Who, "I am not at a table.")
			return
		}
		s.send("tableLeave", tableIDData{TableID: s.joinedTable})

	case "/leaveall":
		if s.joinedTable != -1 {
			s.send("tableLeave", tableIDData{TableID: s.joinedTable})
		}
		s.actorsMu.Lock()
		for tableID := range s.actors {
			s.send("tableUnattend", tableIDData{TableID: tableID})
		}
		s.actorsMu.Unlock()

	case "/version":
		s.sendPM(c.Who, "hanabi bot v"+clientVersion)

	case "/hand":
		if len(args) != 1 {
			s.sendPM(c.Who, "usage: /hand <player>")
			return
		}
		s.askActor(c.Who, func(a *actor) string { return describeHand(a.g, args[0]) })

	case "/navigate":
		if len(args) != 1 {
			s.sendPM(c.Who, "usage: /navigate <turn>")
			return
		}
		turn, err := strconv.Atoi(args[0])
		if err != nil {
			s.sendPM(c.Who, "usage: /navigate <turn>")
			return
		}
		s.askActor(c.Who, func(a *actor) string { return describeTurn(a, turn) })

	case "/results":
		s.sendPM(c.Who, s.describeResults())

	default:
		s.sendPM(c.Who, usageHint)
	}
}

// describeResults lists the latest archived games.
func (s *Session) describeResults() string {
	if s.archive == nil {
		return "no game archive is configured."
	}
	results, err := s.archive.Recent(context.Background(), 5)
	if err != nil {
		s.log.WithError(err).Error("listing archive")
		return "the archive is not answering."
	}
	if len(results) == 0 {
		return "no archived games yet."
	}
	var lines []string
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("%d points with %s, %d strikes",
			r.Score, strings.Join(r.Players, ", "), r.Strikes))
	}
	return strings.Join(lines, " | ")
}

func (s *Session) sendPM(to, msg string) {
	s.send("chatPM", chatPMData{Msg: msg, Recipient: to, Room: "lobby"})
}

// joinSender joins the pre-game table the requesting player sits at.
func (s *Session) joinSender(who, password string) {
	for _, t := range s.tables {
		if t.Running {
			continue
		}
		for _, p := range t.Players {
			if strings.EqualFold(p, who) {
				s.send("tableJoin", tableJoinData{TableID: t.ID, Password: password})
				return
			}
		}
	}
	s.sendPM(who, "I cannot find your table.")
}

func (s *Session) findTableWith(name string) (int, bool) {
	for _, t := range s.tables {
		for _, p := range t.Players {
			if strings.EqualFold(p, name) {
				return t.ID, true
			}
		}
	}
	return 0, false
}

// askActor runs a query on a running game's own goroutine and PMs the
// answer. With several running tables the first one answers.
func (s *Session) askActor(who string, query func(*actor) string) {
	s.actorsMu.Lock()
	var target *actor
	for _, a := range s.actors {
		target = a
		break
	}
	s.actorsMu.Unlock()

	if target == nil {
		s.sendPM(who, "I am not in a game.")
		return
	}
	target.enqueue(event{do: func(a *actor) {
		s.sendPM(who, query(a))
	}})
}

// describeHand renders our beliefs about one player's hand, newest first.
func describeHand(g *game.Game, name string) string {
	playerIndex := -1
	for i, n := range g.State.PlayerNames {
		if strings.EqualFold(n, name) {
			playerIndex = i
		}
	}
	if playerIndex == -1 {
		return fmt.Sprintf("nobody called %s here", name)
	}

	var parts []string
	for _, order := range g.State.Hands[playerIndex] {
		t := g.Common.Thought(order)
		label := t.Inferred.String()
		if id, ok := t.Known(); ok {
			label = id.String()
		} else if t.Inferred == t.Possible && t.Possible.Len() > 5 {
			label = "?"
		}
		if note := knowledge.NoteFor(t, g.Meta[order], g.State); note != "" {
			label += " " + note
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, ", ")
}

// describeTurn replays the game so far and reports what we would do at the
// given turn.
func describeTurn(a *actor, turn int) string {
	r := game.NewReplayer(a.g.State.PlayerNames, a.g.State.OurIndex, a.history, a.g.Convention, a.log)
	g, err := r.Navigate(turn)
	if err != nil {
		return err.Error()
	}
	if g.State.CurrentPlayerIndex != g.State.OurIndex {
		return fmt.Sprintf("turn %d is %s's, not mine", turn, g.State.PlayerNames[g.State.CurrentPlayerIndex])
	}
	action, rationale, err := g.Decide()
	if err != nil {
		return err.Error()
	}
	return fmt.Sprintf("turn %d: %s (%s)", turn, action.Format(g.State), rationale)
}
