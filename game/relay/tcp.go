package relay

import (
	"bufio"
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const tcpReadBuffer = 4096

// tcpConn adapts a raw TCP connection to Conn. Bytes are forwarded in
// whatever chunks they arrive.
type tcpConn struct {
	id      string
	conn    net.Conn
	r       *bufio.Reader
	writeMu sync.Mutex
	timeout time.Duration
}

func (c *tcpConn) ID() string {
	return c.id
}

func (c *tcpConn) Receive() ([]byte, error) {
	buf := make([]byte, tcpReadBuffer)
	n, err := c.r.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	return nil, err
}

func (c *tcpConn) Send(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if c.timeout > 0 {
		c.conn.SetWriteDeadline(time.Now().Add(c.timeout))
	}
	_, err := c.conn.Write(payload)
	return err
}

func (c *tcpConn) Close() error {
	return c.conn.Close()
}

// TCPServer speaks the relay protocol over plain TCP: the first line a
// client sends is its room code.
type TCPServer struct {
	hub              *Hub
	handshakeTimeout time.Duration
	writeTimeout     time.Duration

	mu    sync.Mutex
	ln    net.Listener
	conns map[net.Conn]struct{}
	wg    sync.WaitGroup
}

func NewTCPServer(hub *Hub, handshakeTimeout, writeTimeout time.Duration) *TCPServer {
	return &TCPServer{
		hub:              hub,
		handshakeTimeout: handshakeTimeout,
		writeTimeout:     writeTimeout,
		conns:            make(map[net.Conn]struct{}),
	}
}

// Listen binds addr. Serve must be called afterwards.
func (s *TCPServer) Listen(addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "listen %s", addr)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	log.Info("TCP relay listening", "addr", ln.Addr().String())
	return ln.Addr(), nil
}

// Serve accepts connections until ctx is done or Close is called.
func (s *TCPServer) Serve(ctx context.Context) error {
	s.mu.Lock()
	ln := s.ln
	s.mu.Unlock()
	if ln == nil {
		return errors.New("tcp relay: Serve called before Listen")
	}

	stop := context.AfterFunc(ctx, func() { ln.Close() })
	defer stop()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.closeConns()
				s.wg.Wait()
				return nil
			}
			return errors.Wrap(err, "accept")
		}
		s.track(conn, true)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handle(conn)
		}()
	}
}

func (s *TCPServer) track(conn net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

func (s *TCPServer) closeConns() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.conns {
		conn.Close()
	}
}

func (s *TCPServer) handle(conn net.Conn) {
	defer s.track(conn, false)

	c := &tcpConn{
		id:      "tcp-" + uuid.NewString(),
		conn:    conn,
		r:       bufio.NewReaderSize(conn, tcpReadBuffer),
		timeout: s.writeTimeout,
	}

	if s.handshakeTimeout > 0 {
		conn.SetReadDeadline(time.Now().Add(s.handshakeTimeout))
	}
	code, err := c.r.ReadString('\n')
	if err != nil {
		log.Warn("connection failed before room code", "addr", conn.RemoteAddr().String(), "error", err)
		conn.Close()
		return
	}
	conn.SetReadDeadline(time.Time{})
	log.Info("connection", "addr", conn.RemoteAddr().String(), "conn", c.id, "room", code)

	if err := s.hub.Serve(c, code); err != nil {
		log.Warn("connection ended", "conn", c.id, "error", err)
	}
}

// Close stops accepting new connections. Serve then closes the connections
// still open and returns.
func (s *TCPServer) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	err := s.ln.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
