package main

import (
	"net/http"
	"time"

	"TwistedChess/game/relay"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type relayServer struct {
	hub              *relay.Hub
	upgrader         websocket.Upgrader
	writeTimeout     time.Duration
	handshakeTimeout time.Duration
	maxMessageBytes  int64
}

func newRelayServer(hub *relay.Hub, writeTimeout, handshakeTimeout time.Duration, maxMessageBytes int64) *relayServer {
	return &relayServer{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		writeTimeout:     writeTimeout,
		handshakeTimeout: handshakeTimeout,
		maxMessageBytes:  maxMessageBytes,
	}
}

func (s *relayServer) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/ws", s.handleWebSocket)
	r.GET("/rooms", s.handleRooms)
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	return r
}

func (s *relayServer) handleWebSocket(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err)
		return
	}
	wc := relay.NewWebSocketConn(conn, s.writeTimeout, s.maxMessageBytes)

	code, err := relay.ReadRoomCode(wc, c.Request, s.handshakeTimeout)
	if err != nil {
		log.Warn("connection failed before room code", "addr", c.ClientIP(), "error", err)
		wc.Close()
		return
	}
	log.Info("connection", "addr", c.ClientIP(), "conn", wc.ID(), "room", code)

	if err := s.hub.Serve(wc, code); err != nil {
		log.Warn("connection ended", "conn", wc.ID(), "error", err)
	}
}

func (s *relayServer) handleRooms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"rooms": s.hub.Rooms(),
	})
}
