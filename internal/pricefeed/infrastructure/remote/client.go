package remote

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const handshakeTimeout = 10 * time.Second

// Client is a websocket connection to an upstream price-feed service.
// Messages are relayed verbatim; the first read failure is reported on
// Errs and ends the connection.
type Client struct {
	conn *websocket.Conn

	messages chan []byte
	errs     chan error

	closeOnce sync.Once
	done      chan struct{}
}

// Dial connects to the upstream price stream.
func Dial(ctx context.Context, url string) (*Client, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		conn:     conn,
		messages: make(chan []byte, 16),
		errs:     make(chan error, 1),
		done:     make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

// Messages returns the channel of upstream payloads.
func (c *Client) Messages() <-chan []byte {
	return c.messages
}

// Errs returns the channel carrying the terminal upstream error.
func (c *Client) Errs() <-chan error {
	return c.errs
}

// Close releases the upstream connection.
func (c *Client) Close() {
	if c == nil {
		return
	}
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) readLoop() {
	defer close(c.messages)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case c.errs <- err:
			default:
			}
			return
		}
		select {
		case c.messages <- data:
		case <-c.done:
			return
		}
	}
}
