package network

import (
	"context"
	"slices"
	"sync"

	"TwistedChess/game/core"

	"github.com/pkg/errors"
)

var (
	ErrNotYourTurn = errors.New("not your turn")
	ErrIllegalMove = errors.New("illegal move")
	ErrGameOver    = errors.New("game is over")
)

// MovesPerRound is the number of half-moves after which the board rotates.
const MovesPerRound = 2

type Outcome int

const (
	Ongoing Outcome = iota
	Won
	Lost
)

func (o Outcome) String() string {
	switch o {
	case Won:
		return "won"
	case Lost:
		return "lost"
	}
	return "ongoing"
}

// Sender delivers a locally played move to the peer.
type Sender interface {
	Send(ctx context.Context, m MoveDescriptor) error
}

// LastMove is the most recent move, kept in the current coordinate frame.
type LastMove struct {
	From, To core.Square
}

// Session is one player's side of a game. It owns the board and applies
// local and remote moves in the order they happen, rotating the board after
// every round. All methods are safe for concurrent use.
type Session struct {
	mu             sync.Mutex
	board          *core.Board
	color          core.Color
	myTurn         bool
	movesThisRound int
	lastMove       *LastMove
	outcome        Outcome

	sender   Sender
	onChange func()
}

type SessionOption func(*Session)

// WithBoard starts the session from b instead of the initial position.
func WithBoard(b *core.Board) SessionOption {
	return func(s *Session) {
		s.board = b
	}
}

// WithSender sets where local moves are sent.
func WithSender(sender Sender) SessionOption {
	return func(s *Session) {
		s.sender = sender
	}
}

// WithOnChange registers a callback run after every applied move, outside
// the session lock.
func WithOnChange(fn func()) SessionOption {
	return func(s *Session) {
		s.onChange = fn
	}
}

// NewSession returns a session for the player of the given color. White
// moves first.
func NewSession(color core.Color, opts ...SessionOption) *Session {
	s := &Session{
		color:  color,
		myTurn: color == core.White,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.board == nil {
		s.board = core.NewBoard()
	}
	return s
}

func (s *Session) Color() core.Color {
	return s.color
}

func (s *Session) MyTurn() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.myTurn
}

func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// LastMove returns the most recent move, or nil before the first one.
func (s *Session) LastMove() *LastMove {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastMove == nil {
		return nil
	}
	lm := *s.lastMove
	return &lm
}

// Board returns a copy of the current position.
func (s *Session) Board() *core.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.board.Clone()
}

// Select returns the legal destinations of the piece on sq, or nil when the
// player may not move it now.
func (s *Session) Select(sq core.Square) []core.Square {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.myTurn || s.outcome != Ongoing {
		return nil
	}
	p, ok := s.board.Get(sq)
	if !ok || p.Color != s.color {
		return nil
	}
	return s.board.LegalMoves(sq)
}

// Play applies a local move and sends it to the peer. An empty promotion
// becomes "Q" when the move promotes.
func (s *Session) Play(ctx context.Context, from, to core.Square, promotion string) error {
	s.mu.Lock()
	switch {
	case s.outcome != Ongoing:
		s.mu.Unlock()
		return ErrGameOver
	case !s.myTurn:
		s.mu.Unlock()
		return ErrNotYourTurn
	}
	p, ok := s.board.Get(from)
	if !ok || p.Color != s.color || !slices.Contains(s.board.LegalMoves(from), to) {
		s.mu.Unlock()
		return errors.Wrapf(ErrIllegalMove, "%v to %v", from, to)
	}
	if promotion == "" && p.Kind == core.Pawn && s.board.IsPromotionSquare(to, p.Color) {
		promotion = "Q"
	}

	m := NewMoveDescriptor(from, to, promotion)
	s.applyLocked(m)
	s.mu.Unlock()
	s.changed()

	if s.sender == nil {
		return nil
	}
	return errors.WithMessage(s.sender.Send(ctx, m), "send move")
}

// HandlePayload applies a move received from the peer. Payloads that do not
// decode, are out of range, or do not move one of the opponent's pieces are
// dropped.
func (s *Session) HandlePayload(data []byte) {
	m, ok := DecodeMove(data)
	if !ok {
		return
	}

	s.mu.Lock()
	from, _ := m.Squares()
	p, ok := s.board.Get(from)
	if !ok || p.Color == s.color || s.outcome != Ongoing {
		s.mu.Unlock()
		log.Debug("dropping remote move", "from", from, "occupied", ok)
		return
	}
	s.applyLocked(m)
	s.mu.Unlock()
	s.changed()
}

func (s *Session) applyLocked(m MoveDescriptor) {
	from, to := m.Squares()
	if !s.board.Move(from, to, m.PromotionKind()) {
		return
	}
	s.lastMove = &LastMove{From: from, To: to}
	s.myTurn = !s.myTurn

	s.updateOutcome()

	s.movesThisRound++
	if s.movesThisRound >= MovesPerRound {
		s.movesThisRound = 0
		s.board.Rotate()
		s.lastMove.From = s.lastMove.From.Rotated()
		s.lastMove.To = s.lastMove.To.Rotated()
		// Pawn attacks keep their row direction, so a quarter turn can
		// deliver mate on its own.
		s.updateOutcome()
	}
	log.Debug("move applied", "from", from, "to", to, "rotation", s.board.Rotation(), "outcome", s.outcome)
}

// updateOutcome ends the game when a king has been captured or is mated.
func (s *Session) updateOutcome() {
	if s.outcome != Ongoing {
		return
	}
	opp := s.color.Opponent()
	switch {
	case s.defeated(opp):
		s.outcome = Won
	case s.defeated(s.color):
		s.outcome = Lost
	}
}

func (s *Session) defeated(c core.Color) bool {
	if _, ok := s.board.FindPiece(core.King, c); !ok {
		return true
	}
	return s.board.IsCheckmate(c)
}

func (s *Session) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}
