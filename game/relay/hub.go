// Package relay pairs two peers under a room code and forwards their
// payloads to each other unchanged. It knows nothing about chess.
package relay

import (
	"crypto/rand"
	"io"
	"log/slog"
	"math/big"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

var log = slog.Default().With("package", "relay")

var validate = validator.New()

var (
	ErrRoomFull        = errors.New("room is full")
	ErrEmptyRoomCode   = errors.New("empty room code")
	ErrInvalidRoomCode = errors.New("invalid room code")
)

const (
	MinCodeLength = 4
	MaxCodeLength = 8
)

// Conn is one accepted peer connection, whatever the transport.
type Conn interface {
	// ID identifies the connection in logs.
	ID() string
	// Receive blocks for the next payload. It returns io.EOF once the peer
	// has gone away.
	Receive() ([]byte, error)
	// Send delivers a payload to the peer. It may be called from another
	// connection's goroutine.
	Send(payload []byte) error
	Close() error
}

// NormalizeCode trims and upper-cases a room code and checks it is 4 to 8
// letters.
func NormalizeCode(code string) (string, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "", ErrEmptyRoomCode
	}
	if err := validate.Var(code, "alpha,min=4,max=8"); err != nil {
		return "", errors.Wrapf(ErrInvalidRoomCode, "%q", code)
	}
	return code, nil
}

// NewRoomCode returns n random upper-case letters, n clamped to 4..8.
func NewRoomCode(n int) string {
	n = min(max(n, MinCodeLength), MaxCodeLength)
	letters := big.NewInt(26)
	buf := make([]byte, n)
	for i := range buf {
		v, err := rand.Int(rand.Reader, letters)
		if err != nil {
			panic(err)
		}
		buf[i] = 'A' + byte(v.Int64())
	}
	return string(buf)
}

// Room holds up to two connections. Slot 0 plays White, slot 1 Black.
type Room struct {
	code  string
	mu    sync.Mutex
	slots [2]Conn
}

func (r *Room) Code() string {
	return r.code
}

// Occupants returns how many slots are taken.
func (r *Room) Occupants() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.slots {
		if c != nil {
			n++
		}
	}
	return n
}

// Forward sends payload to the occupant of the slot other than from. A
// payload sent while alone in the room is dropped.
func (r *Room) Forward(from int, payload []byte) error {
	r.mu.Lock()
	other := r.slots[1-from]
	r.mu.Unlock()
	if other == nil {
		return nil
	}
	return errors.Wrapf(other.Send(payload), "forward to %s", other.ID())
}

// RoomInfo describes an open room.
type RoomInfo struct {
	Code      string `json:"code"`
	Occupants int    `json:"occupants"`
}

// Hub is the registry of open rooms.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]*Room
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]*Room)}
}

// Join puts c in the first free slot of the room named code, creating the
// room on first arrival. It returns the slot index.
func (h *Hub) Join(code string, c Conn) (*Room, int, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[code]
	if !ok {
		room = &Room{code: code}
		h.rooms[code] = room
		log.Info("room created", "room", code)
	}

	room.mu.Lock()
	defer room.mu.Unlock()
	for i, slot := range room.slots {
		if slot == nil {
			room.slots[i] = c
			if room.slots[0] != nil && room.slots[1] != nil {
				log.Info("room full, game starting", "room", code)
			}
			return room, i, nil
		}
	}
	return nil, 0, ErrRoomFull
}

// Leave frees slot idx of room and deletes the room once it is empty.
func (h *Hub) Leave(room *Room, idx int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room.mu.Lock()
	room.slots[idx] = nil
	empty := room.slots[0] == nil && room.slots[1] == nil
	room.mu.Unlock()

	if empty && h.rooms[room.code] == room {
		delete(h.rooms, room.code)
		log.Info("room closed", "room", room.code)
	}
}

// Rooms lists the open rooms sorted by code.
func (h *Hub) Rooms() []RoomInfo {
	h.mu.Lock()
	rooms := make([]*Room, 0, len(h.rooms))
	for _, r := range h.rooms {
		rooms = append(rooms, r)
	}
	h.mu.Unlock()

	out := make([]RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, RoomInfo{Code: r.code, Occupants: r.Occupants()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Serve runs the relay protocol on c once its room code is known: join,
// reply with the slot index, then forward every payload to the other
// occupant until c goes away. Serve closes c.
func (h *Hub) Serve(c Conn, code string) error {
	defer c.Close()

	code, err := NormalizeCode(code)
	if err != nil {
		return err
	}
	room, idx, err := h.Join(code, c)
	if err != nil {
		log.Warn("rejecting connection", "conn", c.ID(), "room", code, "error", err)
		return err
	}
	defer func() {
		h.Leave(room, idx)
		log.Info("player disconnected", "conn", c.ID(), "room", code, "index", idx)
	}()

	if err := c.Send([]byte{byte('0' + idx), '\n'}); err != nil {
		return errors.Wrap(err, "send index")
	}
	log.Info("player joined", "conn", c.ID(), "room", code, "index", idx)

	for {
		payload, err := c.Receive()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return errors.Wrap(err, "receive")
		}
		if err := room.Forward(idx, payload); err != nil {
			log.Warn("forward failed", "conn", c.ID(), "room", code, "error", err)
		}
	}
}
