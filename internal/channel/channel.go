// Package channel provides the single full-duplex connection a client holds
// to the game server. Game events and call signaling share this one channel.
// The Conn interface allows swapping a mock implementation in tests without
// changing room logic.
package channel

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Conn is the interface room logic uses to talk to the server.
type Conn interface {
	// Receive blocks until the next raw frame arrives. An error means the
	// channel is gone; there is no reconnect.
	Receive() ([]byte, error)

	// Send serializes v as JSON and writes it to the channel. Safe for
	// concurrent use.
	Send(v any) error

	// Close tears the channel down.
	Close() error
}

// Config holds channel settings.
type Config struct {
	HandshakeTimeout time.Duration
	WriteTimeout     time.Duration
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HandshakeTimeout: 10 * time.Second,
		WriteTimeout:     5 * time.Second,
	}
}

// Channel is the websocket-backed Conn implementation.
type Channel struct {
	ws   *websocket.Conn
	cfg  Config
	wmu  sync.Mutex
	once sync.Once
}

// Dial connects to the server's room endpoint. The token authenticates the
// session and carries the local participant id; the server closes the socket
// immediately if either the token or the room membership is invalid.
func Dial(ctx context.Context, baseURL, roomCode, token string, cfg Config) (*Channel, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = fmt.Sprintf("/ws/%s/%s", roomCode, token)

	dialer := websocket.Dialer{HandshakeTimeout: cfg.HandshakeTimeout}
	ws, _, err := dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", u.Host, err)
	}
	return &Channel{ws: ws, cfg: cfg}, nil
}

// Receive returns the next frame from the server.
func (c *Channel) Receive() ([]byte, error) {
	_, data, err := c.ws.ReadMessage()
	if err != nil {
		return nil, fmt.Errorf("read channel: %w", err)
	}
	return data, nil
}

// Send writes one JSON message. Writers serialize on an internal mutex
// because gorilla connections allow only one concurrent writer.
func (c *Channel) Send(v any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	c.ws.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	if err := c.ws.WriteJSON(v); err != nil {
		return fmt.Errorf("write channel: %w", err)
	}
	return nil
}

// Close sends a best-effort close frame and shuts the socket. Safe to call
// more than once.
func (c *Channel) Close() error {
	var err error
	c.once.Do(func() {
		c.wmu.Lock()
		c.ws.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		c.wmu.Unlock()
		err = c.ws.Close()
	})
	return err
}
