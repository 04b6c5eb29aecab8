package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/voxhull/collider-uploader/pkg/geom"
)

var (
	ErrAlreadyConnected = errors.New("already connected")
	ErrNotConnected     = errors.New("not connected")
)

// Client delivers bodies over a websocket connection. Each Upload sends
// one frame and waits for the sink's ack, so calls are strictly
// sequential; the mutex protects the connection from concurrent use.
type Client struct {
	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
}

// NewClient creates an unconnected client.
func NewClient() *Client {
	return &Client{}
}

// Connect dials the sink endpoint (a ws:// or wss:// URL).
func (c *Client) Connect(ctx context.Context, endpoint string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return ErrAlreadyConnected
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", endpoint, err)
	}

	c.conn = conn
	c.connected = true
	return nil
}

// Upload implements Sink: it sends one body frame and waits for the ack.
// Cancelling ctx unblocks an in-flight write or read by forcing an
// immediate deadline on the connection.
func (c *Client) Upload(ctx context.Context, body geom.NamedBody) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return ErrNotConnected
	}

	// The zero time clears any deadline left by a previous call.
	deadline, _ := ctx.Deadline()
	_ = c.conn.SetWriteDeadline(deadline)
	_ = c.conn.SetReadDeadline(deadline)

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			now := time.Now()
			_ = c.conn.SetWriteDeadline(now)
			_ = c.conn.SetReadDeadline(now)
		case <-done:
		}
	}()

	frame := frameFromBody(body)
	if err := c.conn.WriteJSON(frame); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("sending body %q: %w", body.Name, ctxErr)
		}
		return fmt.Errorf("sending body %q: %w", body.Name, err)
	}

	var ack ackFrame
	if err := c.conn.ReadJSON(&ack); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("reading ack for body %q: %w", body.Name, ctxErr)
		}
		return fmt.Errorf("reading ack for body %q: %w", body.Name, err)
	}
	if !ack.OK {
		return fmt.Errorf("sink rejected body %q: %s", body.Name, ack.Error)
	}
	return nil
}

// Close shuts the connection down.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}
	c.connected = false
	err := c.conn.Close()
	c.conn = nil
	return err
}
