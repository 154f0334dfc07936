package network

import (
	"context"
	"sync"
	"testing"

	"TwistedChess/game/core"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu    sync.Mutex
	moves []MoveDescriptor
	err   error
}

func (r *recordingSender) Send(_ context.Context, m MoveDescriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves = append(r.moves, m)
	return r.err
}

func payload(t *testing.T, from, to core.Square, promotion string) []byte {
	t.Helper()
	data, err := NewMoveDescriptor(from, to, promotion).Encode()
	require.NoError(t, err)
	return data
}

var boardCmp = cmp.AllowUnexported(core.Board{}, core.RookSlot{})

// backRank sets up a position where White mates with Ra1-a8.
func backRank() *core.Board {
	b := core.NewEmptyBoard()
	b.Put(core.Sq(0, 6), core.NewPiece(core.King, core.Black, core.NoInstance))
	b.Put(core.Sq(1, 5), core.NewPiece(core.Pawn, core.Black, 5))
	b.Put(core.Sq(1, 6), core.NewPiece(core.Pawn, core.Black, 6))
	b.Put(core.Sq(1, 7), core.NewPiece(core.Pawn, core.Black, 7))
	b.Put(core.Sq(7, 0), core.NewPiece(core.Rook, core.White, 0))
	b.Put(core.Sq(7, 6), core.NewPiece(core.King, core.White, core.NoInstance))
	return b
}

func TestNewSession(t *testing.T) {
	white := NewSession(core.White)
	assert.True(t, white.MyTurn())
	assert.Equal(t, Ongoing, white.Outcome())
	assert.Nil(t, white.LastMove())

	black := NewSession(core.Black)
	assert.False(t, black.MyTurn())
	assert.Nil(t, black.Select(core.Sq(1, 4)), "not black's turn")
}

func TestSelect(t *testing.T) {
	s := NewSession(core.White)
	assert.ElementsMatch(t, []core.Square{core.Sq(5, 4), core.Sq(4, 4)}, s.Select(core.Sq(6, 4)))
	assert.Nil(t, s.Select(core.Sq(1, 4)), "opponent piece")
	assert.Nil(t, s.Select(core.Sq(4, 4)), "empty square")
	assert.Nil(t, s.Select(core.Sq(9, 9)), "off board")
}

func TestPlayAndRotate(t *testing.T) {
	sender := &recordingSender{}
	changes := 0
	white := NewSession(core.White, WithSender(sender), WithOnChange(func() { changes++ }))
	black := NewSession(core.Black)
	ctx := context.Background()

	require.NoError(t, white.Play(ctx, core.Sq(6, 4), core.Sq(4, 4), ""))
	assert.False(t, white.MyTurn())
	assert.Equal(t, 0, white.Board().Rotation())
	require.Len(t, sender.moves, 1)
	assert.Equal(t, []int{6, 4}, sender.moves[0].From)
	assert.Equal(t, "", sender.moves[0].Promotion)

	data, err := sender.moves[0].Encode()
	require.NoError(t, err)
	black.HandlePayload(data)
	assert.True(t, black.MyTurn())

	require.NoError(t, black.Play(ctx, core.Sq(1, 4), core.Sq(3, 4), ""))
	white.HandlePayload(payload(t, core.Sq(1, 4), core.Sq(3, 4), ""))

	for _, s := range []*Session{white, black} {
		assert.Equal(t, 1, s.Board().Rotation(), "%s rotates after the round", s.Color())
		assert.Equal(t, &LastMove{From: core.Sq(4, 6), To: core.Sq(4, 4)}, s.LastMove())
	}
	assert.True(t, white.MyTurn())
	assert.Equal(t, 2, changes)

	if diff := cmp.Diff(white.Board(), black.Board(), boardCmp); diff != "" {
		t.Errorf("boards diverged (-white +black):\n%s", diff)
	}

	p, ok := white.Board().Get(core.Sq(4, 0))
	require.True(t, ok)
	assert.Equal(t, core.King, p.Kind, "white king after a quarter-turn")
}

func TestPlayErrors(t *testing.T) {
	ctx := context.Background()

	t.Run("not your turn", func(t *testing.T) {
		s := NewSession(core.Black)
		err := s.Play(ctx, core.Sq(1, 4), core.Sq(3, 4), "")
		assert.True(t, errors.Is(err, ErrNotYourTurn))
	})

	t.Run("illegal", func(t *testing.T) {
		s := NewSession(core.White)
		err := s.Play(ctx, core.Sq(6, 4), core.Sq(3, 4), "")
		assert.True(t, errors.Is(err, ErrIllegalMove))
		err = s.Play(ctx, core.Sq(1, 4), core.Sq(2, 4), "")
		assert.True(t, errors.Is(err, ErrIllegalMove), "opponent piece")
		assert.True(t, s.MyTurn())
	})

	t.Run("send failure is reported after applying", func(t *testing.T) {
		sender := &recordingSender{err: errors.New("connection lost")}
		s := NewSession(core.White, WithSender(sender))
		err := s.Play(ctx, core.Sq(6, 4), core.Sq(4, 4), "")
		assert.ErrorContains(t, err, "connection lost")
		assert.False(t, s.MyTurn())
	})
}

func TestAutoQueen(t *testing.T) {
	b := core.NewEmptyBoard()
	b.Put(core.Sq(1, 0), core.NewPiece(core.Pawn, core.White, 0))
	b.Put(core.Sq(7, 7), core.NewPiece(core.King, core.White, core.NoInstance))
	b.Put(core.Sq(3, 5), core.NewPiece(core.King, core.Black, core.NoInstance))
	sender := &recordingSender{}
	s := NewSession(core.White, WithBoard(b), WithSender(sender))

	require.NoError(t, s.Play(context.Background(), core.Sq(1, 0), core.Sq(0, 0), ""))
	require.Len(t, sender.moves, 1)
	assert.Equal(t, "Q", sender.moves[0].Promotion)
	p, _ := s.Board().Get(core.Sq(0, 0))
	assert.Equal(t, core.Queen, p.Kind)
}

func TestHandlePayloadDrops(t *testing.T) {
	s := NewSession(core.White)
	before := s.Board()

	for _, data := range [][]byte{
		[]byte("garbage"),
		[]byte(`{"from":[9,0],"to":[1,1]}`),
		[]byte(`{"from":[1],"to":[2,2]}`),
		payload(t, core.Sq(6, 4), core.Sq(4, 4), ""),
		payload(t, core.Sq(4, 4), core.Sq(3, 4), ""),
	} {
		s.HandlePayload(data)
	}

	assert.True(t, s.MyTurn())
	assert.Nil(t, s.LastMove())
	if diff := cmp.Diff(before, s.Board(), boardCmp); diff != "" {
		t.Errorf("board changed (-want +got):\n%s", diff)
	}
}

func TestCheckmateOutcome(t *testing.T) {
	ctx := context.Background()
	sender := &recordingSender{}
	white := NewSession(core.White, WithBoard(backRank()), WithSender(sender))
	black := NewSession(core.Black, WithBoard(backRank()))

	require.NoError(t, white.Play(ctx, core.Sq(7, 0), core.Sq(0, 0), ""))
	assert.Equal(t, Won, white.Outcome())

	data, err := sender.moves[0].Encode()
	require.NoError(t, err)
	black.HandlePayload(data)
	assert.Equal(t, Lost, black.Outcome())
	assert.Nil(t, black.Select(core.Sq(0, 6)))

	err = white.Play(ctx, core.Sq(7, 6), core.Sq(7, 5), "")
	assert.True(t, errors.Is(err, ErrGameOver))
}

func TestMateDeliveredByRotation(t *testing.T) {
	// Black pawns sit behind the white king; after the quarter turn they
	// face it and cover every flight square.
	b := core.NewEmptyBoard()
	b.Put(core.Sq(0, 6), core.NewPiece(core.King, core.White, core.NoInstance))
	b.Put(core.Sq(7, 0), core.NewPiece(core.King, core.Black, core.NoInstance))
	for i, sq := range []core.Square{core.Sq(1, 5), core.Sq(1, 6), core.Sq(2, 5), core.Sq(2, 6)} {
		b.Put(sq, core.NewPiece(core.Pawn, core.Black, int8(i)))
	}
	ctx := context.Background()
	whiteSender, blackSender := &recordingSender{}, &recordingSender{}
	white := NewSession(core.White, WithBoard(b.Clone()), WithSender(whiteSender))
	black := NewSession(core.Black, WithBoard(b.Clone()), WithSender(blackSender))

	require.NoError(t, white.Play(ctx, core.Sq(0, 6), core.Sq(0, 7), ""))
	data, err := whiteSender.moves[0].Encode()
	require.NoError(t, err)
	black.HandlePayload(data)
	assert.Equal(t, Ongoing, black.Outcome())

	require.NoError(t, black.Play(ctx, core.Sq(7, 0), core.Sq(7, 1), ""))
	data, err = blackSender.moves[0].Encode()
	require.NoError(t, err)
	white.HandlePayload(data)

	for _, s := range []*Session{white, black} {
		board := s.Board()
		require.Equal(t, 1, board.Rotation())
		assert.True(t, board.IsCheckmate(core.White), "%s sees white mated", s.Color())
	}
	assert.Equal(t, Lost, white.Outcome())
	assert.Equal(t, Won, black.Outcome())
	assert.Nil(t, white.Select(core.Sq(7, 7)))
	assert.True(t, errors.Is(white.Play(ctx, core.Sq(7, 7), core.Sq(7, 6), ""), ErrGameOver))
}

func TestKingCaptureEndsGame(t *testing.T) {
	b := core.NewEmptyBoard()
	b.Put(core.Sq(4, 4), core.NewPiece(core.Pawn, core.White, 4))
	b.Put(core.Sq(3, 3), core.NewPiece(core.King, core.Black, core.NoInstance))
	b.Put(core.Sq(7, 7), core.NewPiece(core.King, core.White, core.NoInstance))
	sender := &recordingSender{}
	white := NewSession(core.White, WithBoard(b.Clone()), WithSender(sender))
	black := NewSession(core.Black, WithBoard(b.Clone()))

	require.Contains(t, white.Select(core.Sq(4, 4)), core.Sq(3, 3))
	require.NoError(t, white.Play(context.Background(), core.Sq(4, 4), core.Sq(3, 3), ""))
	assert.Equal(t, Won, white.Outcome())

	data, err := sender.moves[0].Encode()
	require.NoError(t, err)
	black.HandlePayload(data)
	_, ok := black.Board().FindPiece(core.King, core.Black)
	require.False(t, ok)
	assert.Equal(t, Lost, black.Outcome())
}
