package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/will-hanabi-bot/go-bot/engine"
	"github.com/will-hanabi-bot/go-bot/internal/archive"
	"github.com/will-hanabi-bot/go-bot/internal/config"
	"github.com/will-hanabi-bot/go-bot/internal/game"
)

// Session is one bot's connection to the server. The read loop only decodes
// and enqueues; each running table has its own actor goroutine, so games
// never block each other.
type Session struct {
	cfg  *config.Config
	conv game.Convention
	log  *logrus.Entry

	out    chan outMsg
	tables map[int]tableData

	// actorsMu guards actors: the read loop adds, actor goroutines remove.
	actorsMu sync.Mutex
	actors   map[int]*actor

	archive *archive.Store

	username string
	// joinedTable is the pre-game table we currently sit at, or -1.
	joinedTable int
}

// New creates a session. store may be nil to disable archiving.
func New(cfg *config.Config, conv game.Convention, store *archive.Store, log *logrus.Entry) *Session {
	return &Session{
		cfg:         cfg,
		conv:        conv,
		log:         log,
		out:         make(chan outMsg, 64),
		tables:      make(map[int]tableData),
		actors:      make(map[int]*actor),
		archive:     store,
		joinedTable: -1,
	}
}

// Run logs in, connects, and serves until the connection drops or ctx ends.
// Every goroutine the session spawns (sender, table actors) lives on the
// session-scoped context, so a connection drop tears them all down with it.
func (s *Session) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cookie, err := login(ctx, s.cfg)
	if err != nil {
		return err
	}
	conn, err := dial(ctx, s.cfg, cookie)
	if err != nil {
		return err
	}
	defer conn.Close(websocket.StatusNormalClosure, "shutting down")
	s.log.WithField("server", s.cfg.ServerURL).Info("connected")

	go sender(ctx, conn, s.out, s.log)

	for {
		_, frame, err := conn.Read(ctx)
		if err != nil {
			return fmt.Errorf("websocket read: %w", err)
		}
		command, args := decodeFrame(frame)
		s.dispatch(ctx, command, args)
	}
}

// send enqueues one outbound command.
func (s *Session) send(command string, payload any) {
	select {
	case s.out <- outMsg{command: command, payload: payload}:
	default:
		s.log.WithField("command", command).Error("outbound queue full, dropping")
	}
}

// ---------------------------------------------------------
// Inbound message shapes
// ---------------------------------------------------------

type welcomeData struct {
	Username        string `json:"username"`
	PlayingAtTables []int  `json:"playingAtTables"`
}

type tableData struct {
	ID                int      `json:"id"`
	Name              string   `json:"name"`
	PasswordProtected bool     `json:"passwordProtected"`
	Running           bool     `json:"running"`
	Joined            bool     `json:"joined"`
	NumPlayers        int      `json:"numPlayers"`
	Players           []string `json:"players"`
}

type tableIDData struct {
	TableID int `json:"tableID"`
}

type initData struct {
	TableID        int      `json:"tableID"`
	PlayerNames    []string `json:"playerNames"`
	OurPlayerIndex int      `json:"ourPlayerIndex"`
	Spectating     bool     `json:"spectating"`
	Replay         bool     `json:"replay"`
}

type gameActionData struct {
	TableID int           `json:"tableID"`
	Action  engine.Action `json:"action"`
}

type gameActionListData struct {
	TableID int             `json:"tableID"`
	List    []engine.Action `json:"list"`
}

type chatData struct {
	Msg       string `json:"msg"`
	Who       string `json:"who"`
	Recipient string `json:"recipient"`
	Room      string `json:"room"`
}

type warningData struct {
	Warning string `json:"warning"`
}

// ---------------------------------------------------------
// Dispatch
// ---------------------------------------------------------

func (s *Session) dispatch(ctx context.Context, command string, args json.RawMessage) {
	decode := func(v any) bool {
		if err := json.Unmarshal(args, v); err != nil {
			s.log.WithError(err).WithField("command", command).Warn("undecodable message")
			return false
		}
		return true
	}

	switch command {
	case "welcome":
		var w welcomeData
		if !decode(&w) {
			return
		}
		s.username = w.Username
		for _, tableID := range w.PlayingAtTables {
			s.send("tableReattend", tableIDData{TableID: tableID})
		}

	case "table":
		var t tableData
		if decode(&t) {
			s.tables[t.ID] = t
		}
	case "tableList":
		var list []tableData
		if decode(&list) {
			for _, t := range list {
				s.tables[t.ID] = t
			}
		}
	case "tableGone":
		var t tableIDData
		if decode(&t) {
			delete(s.tables, t.TableID)
		}

	case "joined":
		var t tableIDData
		if decode(&t) {
			s.joinedTable = t.TableID
		}
	case "left":
		s.joinedTable = -1

	case "tableStart":
		var t tableIDData
		if decode(&t) {
			s.send("getGameInfo1", tableIDData{TableID: t.TableID})
		}

	case "init":
		var init initData
		if !decode(&init) {
			return
		}
		if init.Spectating || init.Replay {
			s.log.WithField("table", init.TableID).Info("ignoring spectator seat")
			return
		}
		s.startActor(ctx, init)
		s.send("getGameInfo2", tableIDData{TableID: init.TableID})

	case "gameAction":
		var ga gameActionData
		if !decode(&ga) {
			return
		}
		if a, ok := s.actor(ga.TableID); ok {
			a.enqueue(event{action: ga.Action, decide: true})
		}
	case "gameActionList":
		var gal gameActionListData
		if !decode(&gal) {
			return
		}
		a, ok := s.actor(gal.TableID)
		if !ok {
			return
		}
		for i, action := range gal.List {
			a.enqueue(event{action: action, decide: i == len(gal.List)-1})
		}
		s.send("loaded", tableIDData{TableID: gal.TableID})

	case "chat":
		var c chatData
		if decode(&c) {
			s.handleChat(c)
		}

	case "warning":
		var w warningData
		if decode(&w) {
			s.log.WithField("warning", w.Warning).Warn("server warning")
		}
	case "error":
		s.log.WithField("args", string(args)).Error("server error")
	}
}

// startActor creates the per-table game goroutine.
func (s *Session) startActor(ctx context.Context, init initData) {
	log := s.log.WithField("table", init.TableID)
	g := game.New(init.TableID, init.PlayerNames, init.OurPlayerIndex, s.conv, log)
	a := newActor(s, g, log)
	s.actorsMu.Lock()
	s.actors[init.TableID] = a
	s.actorsMu.Unlock()
	go a.run(ctx)
	log.WithField("players", init.PlayerNames).Info("game started")
}

func (s *Session) actor(tableID int) (*actor, bool) {
	s.actorsMu.Lock()
	defer s.actorsMu.Unlock()
	a, ok := s.actors[tableID]
	return a, ok
}

// leaveTable abandons a table after a fatal desync or game end, stopping
// its actor goroutine. The map guard makes the stop close happen at most
// once even when the actor and the read loop race to leave.
func (s *Session) leaveTable(tableID int) {
	s.actorsMu.Lock()
	if a, ok := s.actors[tableID]; ok {
		delete(s.actors, tableID)
		close(a.stop)
	}
	s.actorsMu.Unlock()
	s.send("tableUnattend", tableIDData{TableID: tableID})
}
