package network

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"TwistedChess/game/core"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

var (
	ErrNotConnected = errors.New("not connected")
	ErrBadHandshake = errors.New("bad handshake reply")
)

// Client is a peer's connection to the relay. After Dial it knows which
// color the relay assigned; moves are then exchanged as text messages.
type Client struct {
	conn    *websocket.Conn
	index   int
	writeMu sync.Mutex
	timeout time.Duration
}

type DialOption func(*dialOptions)

type dialOptions struct {
	dialer  *websocket.Dialer
	header  http.Header
	timeout time.Duration
}

// WithDialer overrides websocket.DefaultDialer.
func WithDialer(d *websocket.Dialer) DialOption {
	return func(o *dialOptions) {
		o.dialer = d
	}
}

// WithWriteTimeout bounds each write when the context has no deadline.
func WithWriteTimeout(d time.Duration) DialOption {
	return func(o *dialOptions) {
		o.timeout = d
	}
}

// Dial connects to the relay at url, joins room and waits for the relay to
// answer with the player index: 0 plays White, 1 plays Black.
func Dial(ctx context.Context, url, room string, opts ...DialOption) (*Client, error) {
	o := dialOptions{dialer: websocket.DefaultDialer, timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	conn, _, err := o.dialer.DialContext(ctx, url, o.header)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}
	c := &Client{conn: conn, timeout: o.timeout}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	}
	if err := c.write(ctx, []byte(room)); err != nil {
		conn.Close()
		return nil, errors.WithMessage(err, "send room code")
	}
	_, reply, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, errors.Wrap(err, "read handshake")
	}
	conn.SetReadDeadline(time.Time{})

	idx, err := strconv.Atoi(strings.TrimSpace(string(reply)))
	if err != nil || (idx != 0 && idx != 1) {
		conn.Close()
		return nil, errors.Wrapf(ErrBadHandshake, "%q", reply)
	}
	c.index = idx
	log.Info("joined room", "room", room, "index", idx)
	return c, nil
}

// Index returns the player index assigned by the relay.
func (c *Client) Index() int {
	return c.index
}

// Color returns White for index 0 and Black for index 1.
func (c *Client) Color() core.Color {
	if c.index == 0 {
		return core.White
	}
	return core.Black
}

// Send writes one move descriptor.
func (c *Client) Send(ctx context.Context, m MoveDescriptor) error {
	if c == nil || c.conn == nil {
		return ErrNotConnected
	}
	data, err := m.Encode()
	if err != nil {
		return errors.Wrap(err, "encode move")
	}
	return c.write(ctx, data)
}

func (c *Client) write(ctx context.Context, data []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	c.conn.SetWriteDeadline(deadline)
	return errors.Wrap(c.conn.WriteMessage(websocket.TextMessage, data), "write")
}

// Listen reads messages until the connection closes or ctx is done, passing
// each non-blank message to handle in arrival order. A normal close returns
// nil.
func (c *Client) Listen(ctx context.Context, handle func([]byte)) error {
	stop := context.AfterFunc(ctx, func() {
		c.conn.SetReadDeadline(time.Now())
	})
	defer stop()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return errors.Wrap(err, "read")
		}
		for _, line := range strings.Split(string(msg), "\n") {
			if line = strings.TrimSpace(line); line != "" {
				handle([]byte(line))
			}
		}
	}
}

// Close sends a close frame and closes the connection.
func (c *Client) Close() error {
	c.writeMu.Lock()
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()
	return c.conn.Close()
}
