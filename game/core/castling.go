package core

// Side names one of the two castling directions.
type Side uint8

const (
	Kingside Side = iota
	Queenside
)

func (s Side) String() string {
	if s == Kingside {
		return "kingside"
	}
	return "queenside"
}

var sides = [...]Side{Kingside, Queenside}

// RookSlot is the castling origin of one rook: either Available at a square
// or Forfeited. The zero value is Forfeited, and nothing turns a forfeited
// slot back into an available one.
type RookSlot struct {
	sq        Square
	available bool
}

// Available returns a slot for a rook still standing on its origin square.
func Available(sq Square) RookSlot {
	return RookSlot{sq: sq, available: true}
}

// Forfeited is the permanent state of a slot whose rook has moved or been captured.
var Forfeited = RookSlot{}

// Square returns the origin square and whether the slot is still available.
func (s RookSlot) Square() (Square, bool) {
	return s.sq, s.available
}

func (s RookSlot) rotated() RookSlot {
	if !s.available {
		return Forfeited
	}
	return Available(s.sq.Rotated())
}

// CastlingRights holds, for one color, the current coordinates of the king
// and of both rook origins.
type CastlingRights struct {
	King      Square
	Kingside  RookSlot
	Queenside RookSlot
}

func (c CastlingRights) rook(side Side) RookSlot {
	if side == Kingside {
		return c.Kingside
	}
	return c.Queenside
}

// forfeitAt forfeits whichever rook slot sits on sq.
func (c *CastlingRights) forfeitAt(sq Square) {
	if s, ok := c.Kingside.Square(); ok && s == sq {
		c.Kingside = Forfeited
	}
	if s, ok := c.Queenside.Square(); ok && s == sq {
		c.Queenside = Forfeited
	}
}

func (c *CastlingRights) forfeit(side Side) {
	if side == Kingside {
		c.Kingside = Forfeited
	} else {
		c.Queenside = Forfeited
	}
}

func (c CastlingRights) rotated() CastlingRights {
	return CastlingRights{
		King:      c.King.Rotated(),
		Kingside:  c.Kingside.rotated(),
		Queenside: c.Queenside.rotated(),
	}
}
