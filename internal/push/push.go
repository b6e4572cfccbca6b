// Package push carries preference updates between a user's sessions. The
// engine consumes it through the Channel interface; the websocket client
// below is the production transport. Connection lifetime is scoped to the
// authenticated session: connect on login, disconnect on logout. There is no
// reconnection backoff here.
package push

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/momentfin/ledgersync/internal/logging"
)

// Message is the inbound wire shape: {preference, value}.
type Message struct {
	Preference string `json:"preference"`
	Value      string `json:"value"`
}

type Handler func(Message)

type Channel interface {
	Connect(ctx context.Context, userID string, h Handler) error
	Disconnect() error
}

// WebsocketChannel is the websocket-backed Channel.
type WebsocketChannel struct {
	baseURL string
	dialer  *websocket.Dialer

	mu   sync.Mutex
	conn *websocket.Conn
	done chan struct{}
}

func NewWebsocketChannel(baseURL string) *WebsocketChannel {
	return &WebsocketChannel{
		baseURL: baseURL,
		dialer:  websocket.DefaultDialer,
	}
}

// Connect dials the hub for the given user and starts one reader goroutine
// that decodes frames into h. Connecting while connected is an error.
func (c *WebsocketChannel) Connect(ctx context.Context, userID string, h Handler) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil {
		return errors.New("Connect: already connected")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return fmt.Errorf("Connect: %w", err)
	}
	q := u.Query()
	q.Set("user", userID)
	u.RawQuery = q.Encode()

	conn, _, err := c.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("Connect: dial: %w", err)
	}

	c.conn = conn
	c.done = make(chan struct{})
	go c.readLoop(ctx, conn, c.done, h)

	logging.FromContext(ctx).Info("push channel connected", "user", userID)
	return nil
}

// Disconnect closes the connection and stops the reader. Safe to call when
// not connected.
func (c *WebsocketChannel) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	<-c.done
	c.conn = nil
	c.done = nil
	if err != nil {
		return fmt.Errorf("Disconnect: %w", err)
	}
	return nil
}

func (c *WebsocketChannel) readLoop(ctx context.Context, conn *websocket.Conn, done chan struct{}, h Handler) {
	defer close(done)
	log := logging.FromContext(ctx)

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("push channel closed", "error", err)
			}
			return
		}
		h(msg)
	}
}
