// Package session runs the live connection to the game server: login,
// websocket transport, table bookkeeping, chat commands, and one actor per
// running game.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"

	"github.com/will-hanabi-bot/go-bot/internal/config"
)

// sendDelay spaces outbound commands to stay under the server rate limit.
const sendDelay = 500 * time.Millisecond

const clientVersion = "5.1.0"

// outMsg is one queued outbound command.
type outMsg struct {
	command string
	payload any
}

// login performs the form POST that yields the session cookie.
func login(ctx context.Context, cfg *config.Config) (string, error) {
	form := url.Values{
		"username": {cfg.Username},
		"password": {cfg.Password},
		"version":  {"bot"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		cfg.ServerURL+"/login", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("logging in: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("logging in: status %s", resp.Status)
	}
	for _, c := range resp.Cookies() {
		if c.Name == "hanabi.sid" {
			return c.String(), nil
		}
	}
	return "", fmt.Errorf("logging in: no session cookie in response")
}

// dial opens the websocket with the session cookie attached.
func dial(ctx context.Context, cfg *config.Config, cookie string) (*websocket.Conn, error) {
	conn, _, err := websocket.Dial(ctx, cfg.WebsocketURL(), &websocket.DialOptions{
		HTTPHeader: http.Header{"Cookie": {cookie}},
	})
	if err != nil {
		return nil, fmt.Errorf("dialing %s: %w", cfg.WebsocketURL(), err)
	}
	conn.SetReadLimit(1 << 22)
	return conn, nil
}

// encodeFrame renders "command json-args". Commands without a payload are
// sent bare.
func encodeFrame(msg outMsg) ([]byte, error) {
	if msg.payload == nil {
		return []byte(msg.command), nil
	}
	args, err := json.Marshal(msg.payload)
	if err != nil {
		return nil, err
	}
	return []byte(msg.command + " " + string(args)), nil
}

// decodeFrame splits an inbound frame into its command and raw arguments.
func decodeFrame(frame []byte) (string, json.RawMessage) {
	text := string(frame)
	if i := strings.IndexByte(text, ' '); i >= 0 {
		return text[:i], json.RawMessage(text[i+1:])
	}
	return text, nil
}

// sender drains the outbound queue with the mandated spacing. It exits when
// the session context ends or a write fails.
func sender(ctx context.Context, conn *websocket.Conn, out <-chan outMsg, log *logrus.Entry) {
	for {
		var msg outMsg
		select {
		case <-ctx.Done():
			return
		case msg = <-out:
		}
		frame, err := encodeFrame(msg)
		if err != nil {
			log.WithError(err).WithField("command", msg.command).Error("encoding command")
			continue
		}
		if err := conn.Write(ctx, websocket.MessageText, frame); err != nil {
			log.WithError(err).Error("websocket write failed")
			return
		}
		select {
		case <-time.After(sendDelay):
		case <-ctx.Done():
			return
		}
	}
}
