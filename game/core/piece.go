package core

// Kind is the movement class of a piece. The zero value marks an empty square.
type Kind uint8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindLetters = [...]byte{NoKind: ' ', Pawn: 'P', Knight: 'N', Bishop: 'B', Rook: 'R', Queen: 'Q', King: 'K'}

// Letter returns the one-letter code of the kind ('P', 'N', ...), or a space for NoKind.
func (k Kind) Letter() byte {
	if int(k) >= len(kindLetters) {
		return '?'
	}
	return kindLetters[k]
}

func (k Kind) String() string {
	switch k {
	case Pawn:
		return "pawn"
	case Knight:
		return "knight"
	case Bishop:
		return "bishop"
	case Rook:
		return "rook"
	case Queen:
		return "queen"
	case King:
		return "king"
	}
	return "none"
}

// ParsePromotion maps a promotion letter to the kind a pawn becomes.
// Anything other than Q, R, N or B yields Queen.
func ParsePromotion(letter string) Kind {
	switch letter {
	case "R":
		return Rook
	case "N":
		return Knight
	case "B":
		return Bishop
	}
	return Queen
}

func promotionKind(k Kind) Kind {
	switch k {
	case Queen, Rook, Knight, Bishop:
		return k
	}
	return Queen
}

type Color uint8

const (
	White Color = iota
	Black
)

// Opponent returns the other color.
func (c Color) Opponent() Color {
	if c == White {
		return Black
	}
	return White
}

// Letter returns "w" or "b".
func (c Color) Letter() string {
	if c == White {
		return "w"
	}
	return "b"
}

func (c Color) String() string {
	if c == White {
		return "white"
	}
	return "black"
}

// Forward is the row delta a pawn of this color advances by. It never
// depends on the rotation state.
func (c Color) Forward() int {
	if c == White {
		return -1
	}
	return 1
}

// pawnRow is the row from which a pawn of this color may advance two squares.
func (c Color) pawnRow() int {
	if c == White {
		return 6
	}
	return 1
}

// NoInstance is the instance number of kings, queens and promoted pieces.
const NoInstance int8 = -1

// Piece is a chess piece. Kind, Color and Instance identify it for the whole
// game; the remaining fields are per-piece state.
type Piece struct {
	Kind     Kind
	Color    Color
	Instance int8

	Moved              bool
	CanCastleKingside  bool
	CanCastleQueenside bool
}

// NewPiece returns an unmoved piece. Kings start with both castling flags set.
func NewPiece(kind Kind, color Color, instance int8) Piece {
	p := Piece{Kind: kind, Color: color, Instance: instance}
	if kind == King {
		p.CanCastleKingside = true
		p.CanCastleQueenside = true
	}
	return p
}

// IsEmpty reports whether p is the zero piece of an empty square.
func (p Piece) IsEmpty() bool {
	return p.Kind == NoKind
}

func (p Piece) canCastle(side Side) bool {
	if side == Kingside {
		return p.CanCastleKingside
	}
	return p.CanCastleQueenside
}

// String renders the piece as kind letter plus color letter, e.g. "Kw".
func (p Piece) String() string {
	if p.IsEmpty() {
		return "  "
	}
	return string(p.Kind.Letter()) + p.Color.Letter()
}
