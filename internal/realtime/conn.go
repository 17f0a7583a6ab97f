package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/coder/websocket"
	"github.com/goccy/go-json"
)

// Status is the state of the realtime connection.
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusReconnecting Status = "reconnecting"
	StatusStopped      Status = "stopped"
)

// StatusFunc receives connection state changes. err is set when the change
// was caused by a failure.
type StatusFunc func(status Status, err error)

// TokenSource yields the bearer token for the websocket handshake.
type TokenSource interface {
	AccessToken() string
}

const (
	controlTimeout = 5 * time.Second
	maxReconnect   = 30 * time.Second
	readLimit      = 1 << 20
)

type controlMessage struct {
	Action string `json:"action"`
	Topic  string `json:"topic"`
}

type connection struct {
	ctx    context.Context
	ws     *websocket.Conn
	bridge *Bridge
}

func (c *connection) control(action, topic string) {
	data, err := json.Marshal(controlMessage{Action: action, Topic: topic})
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(c.ctx, controlTimeout)
	defer cancel()
	if err := c.ws.Write(ctx, websocket.MessageText, data); err != nil {
		c.bridge.logger.Warn("realtime control write failed", "action", action, "topic", topic, "err", err)
	}
}

// Connect keeps a websocket to rawURL open until ctx is cancelled, feeding
// received events into the bridge. Failed dials and dropped connections are
// retried with exponential backoff, reset after every successful connect.
func (b *Bridge) Connect(ctx context.Context, rawURL string, tokens TokenSource, report StatusFunc) error {
	if report == nil {
		report = func(Status, error) {}
	}
	defer report(StatusStopped, nil)

	bo := backoff.NewExponentialBackOff()
	bo.MaxInterval = maxReconnect

	report(StatusConnecting, nil)
	for {
		if ctx.Err() != nil {
			return nil
		}
		ws, err := dial(ctx, rawURL, tokens)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			b.logger.Warn("realtime dial failed", "url", redact(rawURL), "err", err)
			report(StatusReconnecting, err)
			if !sleep(ctx, bo.NextBackOff()) {
				return nil
			}
			continue
		}
		bo.Reset()
		ws.SetReadLimit(readLimit)

		conn := &connection{ctx: ctx, ws: ws, bridge: b}
		b.setConn(conn)
		for _, topic := range b.activeTopics() {
			conn.control("subscribe", topic)
		}
		report(StatusConnected, nil)
		b.logger.Info("realtime connected", "url", redact(rawURL))

		err = b.readLoop(ctx, ws)
		b.setConn(nil)
		_ = ws.CloseNow()
		if ctx.Err() != nil {
			return nil
		}
		if IsClosed(err) {
			b.logger.Info("realtime connection closed by server")
		} else {
			b.logger.Warn("realtime connection lost", "err", err)
		}
		report(StatusReconnecting, err)
		if !sleep(ctx, bo.NextBackOff()) {
			return nil
		}
	}
}

func (b *Bridge) readLoop(ctx context.Context, ws *websocket.Conn) error {
	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if typ != websocket.MessageText {
			continue
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			b.logger.Warn("undecodable realtime message", "err", err)
			continue
		}
		if ev.Name == "" {
			continue
		}
		b.Deliver(ev)
	}
}

func dial(ctx context.Context, rawURL string, tokens TokenSource) (*websocket.Conn, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse realtime url: %w", err)
	}
	header := http.Header{}
	if tokens != nil {
		if token := tokens.AccessToken(); token != "" {
			q := u.Query()
			q.Set("token", token)
			u.RawQuery = q.Encode()
			header.Set("Authorization", "Bearer "+token)
		}
	}
	ws, _, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{HTTPHeader: header})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", redact(rawURL), err)
	}
	return ws, nil
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.RawQuery = ""
	return u.String()
}

// IsClosed reports whether err is a normal websocket closure.
func IsClosed(err error) bool {
	return errors.Is(err, context.Canceled) || websocket.CloseStatus(err) == websocket.StatusNormalClosure
}
