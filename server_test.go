package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"TwistedChess/game/core"
	"TwistedChess/game/network"
	"TwistedChess/game/relay"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*relay.Hub, *httptest.Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := relay.NewHub()
	ts := httptest.NewServer(newRelayServer(hub, time.Second, time.Second, 4096).routes())
	t.Cleanup(ts.Close)
	return hub, ts, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

func dial(t *testing.T, url, room string) *network.Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := network.Dial(ctx, url, room)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestHealthz(t *testing.T) {
	_, ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPairing(t *testing.T) {
	_, ts, url := newTestServer(t)

	white := dial(t, url, "chessy")
	assert.Equal(t, 0, white.Index())
	assert.Equal(t, core.White, white.Color())
	black := dial(t, url, "CHESSY")
	assert.Equal(t, 1, black.Index())
	assert.Equal(t, core.Black, black.Color())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := network.Dial(ctx, url, "CHESSY")
	assert.Error(t, err, "third player is turned away")

	resp, err := http.Get(ts.URL + "/rooms")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body struct {
		Rooms []relay.RoomInfo `json:"rooms"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []relay.RoomInfo{{Code: "CHESSY", Occupants: 2}}, body.Rooms)
}

func TestRoomFromQuery(t *testing.T) {
	_, _, url := newTestServer(t)

	conn, _, err := websocket.DefaultDialer.Dial(url+"?room=query", nil)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "0\n", string(msg))
}

func TestInvalidRoomCode(t *testing.T) {
	_, _, url := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := network.Dial(ctx, url, "a1")
	assert.Error(t, err)
}

func TestForwarding(t *testing.T) {
	_, _, url := newTestServer(t)
	white := dial(t, url, "RELAY")
	black := dial(t, url, "RELAY")

	got := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go black.Listen(ctx, func(b []byte) { got <- string(b) })

	m := network.NewMoveDescriptor(core.Sq(6, 4), core.Sq(4, 4), "")
	require.NoError(t, white.Send(ctx, m))

	select {
	case payload := <-got:
		assert.JSONEq(t, `{"from":[6,4],"to":[4,4]}`, payload)
	case <-time.After(5 * time.Second):
		t.Fatal("payload was not forwarded")
	}
}

// anyMove returns the first legal move for the session's player.
func anyMove(s *network.Session) (from, to core.Square, ok bool) {
	for r := 0; r < core.Size; r++ {
		for c := 0; c < core.Size; c++ {
			sq := core.Sq(r, c)
			if moves := s.Select(sq); len(moves) > 0 {
				return sq, moves[0], true
			}
		}
	}
	return core.Square{}, core.Square{}, false
}

func TestPlayOverRelay(t *testing.T) {
	_, _, url := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var sessions [2]*network.Session
	for range sessions {
		c := dial(t, url, "MATCH")
		s := network.NewSession(c.Color(), network.WithSender(c))
		go c.Listen(ctx, s.HandlePayload)
		sessions[c.Index()] = s
	}

	const plies = 8
	for ply := 0; ply < plies; ply++ {
		mover, waiter := sessions[ply%2], sessions[(ply+1)%2]
		require.True(t, mover.MyTurn())
		from, to, ok := anyMove(mover)
		require.True(t, ok, "ply %d has a legal move", ply)
		require.NoError(t, mover.Play(ctx, from, to, ""))
		require.Eventually(t, waiter.MyTurn, 5*time.Second, 10*time.Millisecond, "ply %d reaches the peer", ply)
	}

	white, black := sessions[0].Board(), sessions[1].Board()
	assert.Equal(t, 0, white.Rotation(), "four rounds make a full turn")
	if diff := cmp.Diff(white, black, cmp.AllowUnexported(core.Board{}, core.RookSlot{})); diff != "" {
		t.Errorf("boards diverged (-white +black):\n%s", diff)
	}
	assert.Equal(t, sessions[0].LastMove(), sessions[1].LastMove())
}
