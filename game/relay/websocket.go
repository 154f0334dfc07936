package relay

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

// WebSocketConn adapts a gorilla websocket connection to Conn. Every
// payload is one text message.
type WebSocketConn struct {
	id           string
	conn         *websocket.Conn
	writeMu      sync.Mutex
	writeTimeout time.Duration
}

func NewWebSocketConn(conn *websocket.Conn, writeTimeout time.Duration, maxMessageBytes int64) *WebSocketConn {
	if maxMessageBytes > 0 {
		conn.SetReadLimit(maxMessageBytes)
	}
	return &WebSocketConn{
		id:           "ws-" + uuid.NewString(),
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

func (c *WebSocketConn) ID() string {
	return c.id
}

func (c *WebSocketConn) Receive() ([]byte, error) {
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		var closeErr *websocket.CloseError
		if errors.As(err, &closeErr) {
			return nil, io.EOF
		}
		return nil, err
	}
	return msg, nil
}

func (c *WebSocketConn) Send(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.writeTimeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.conn.WriteMessage(websocket.TextMessage, payload)
}

func (c *WebSocketConn) Close() error {
	return c.conn.Close()
}

// ReadRoomCode returns the room code of a freshly upgraded connection: the
// query value when one was given, otherwise the first message.
func ReadRoomCode(c *WebSocketConn, r *http.Request, timeout time.Duration) (string, error) {
	if code := r.URL.Query().Get("room"); code != "" {
		return code, nil
	}
	if timeout > 0 {
		c.conn.SetReadDeadline(time.Now().Add(timeout))
		defer c.conn.SetReadDeadline(time.Time{})
	}
	_, msg, err := c.conn.ReadMessage()
	if err != nil {
		return "", errors.Wrap(err, "read room code")
	}
	return string(msg), nil
}
