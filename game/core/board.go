package core

import "strings"

// Board is the twisted-chess position: the grid, the castling table and the
// number of quarter-turns applied so far. A Board is a plain value; copying
// it copies the whole position.
type Board struct {
	grid     [Size][Size]Piece
	castling [2]CastlingRights
	rotation int
}

var backRank = [Size]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewBoard returns the standard starting position with Black on rows 0-1
// and White on rows 6-7.
func NewBoard() *Board {
	b := &Board{}
	b.initializePieces()
	return b
}

// NewEmptyBoard returns a board with no pieces and every rook slot forfeited.
// Positions are then set up with Put and SetCastling.
func NewEmptyBoard() *Board {
	return &Board{}
}

func (b *Board) initializePieces() {
	for _, color := range [...]Color{White, Black} {
		back, pawns := 7, 6
		if color == Black {
			back, pawns = 0, 1
		}
		minor := map[Kind]int8{}
		for col, kind := range backRank {
			inst := NoInstance
			if kind != King && kind != Queen {
				inst = minor[kind]
				minor[kind]++
			}
			b.grid[back][col] = NewPiece(kind, color, inst)
			b.grid[pawns][col] = NewPiece(Pawn, color, int8(col))
		}
		b.castling[color] = CastlingRights{
			King:      Sq(back, 4),
			Kingside:  Available(Sq(back, 7)),
			Queenside: Available(Sq(back, 0)),
		}
	}
}

// Get returns the piece on sq. ok is false for empty or off-board squares.
func (b *Board) Get(sq Square) (p Piece, ok bool) {
	if !sq.OnBoard() {
		return Piece{}, false
	}
	p = b.grid[sq.Row][sq.Col]
	return p, !p.IsEmpty()
}

func (b *Board) at(sq Square) Piece {
	return b.grid[sq.Row][sq.Col]
}

func (b *Board) set(sq Square, p Piece) {
	b.grid[sq.Row][sq.Col] = p
}

// Put places p on sq, replacing any occupant. Off-board squares are ignored.
func (b *Board) Put(sq Square, p Piece) {
	if sq.OnBoard() {
		b.set(sq, p)
	}
}

// Clear empties sq.
func (b *Board) Clear(sq Square) {
	b.Put(sq, Piece{})
}

// Rotation returns the number of quarter-turns applied, modulo 4.
func (b *Board) Rotation() int {
	return b.rotation
}

// Castling returns the castling table entry of color.
func (b *Board) Castling(color Color) CastlingRights {
	return b.castling[color]
}

// SetCastling overwrites the castling table entry of color.
func (b *Board) SetCastling(color Color, rights CastlingRights) {
	b.castling[color] = rights
}

// FindPiece returns the first square, scanning row by row, holding a piece
// of the given kind and color.
func (b *Board) FindPiece(kind Kind, color Color) (Square, bool) {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			p := b.grid[r][c]
			if p.Kind == kind && p.Color == color {
				return Sq(r, c), true
			}
		}
	}
	return Square{}, false
}

// Clone returns an independent copy of the board.
func (b *Board) Clone() *Board {
	nb := *b
	return &nb
}

// String renders the grid row by row, empty squares as "..".
func (b *Board) String() string {
	var sb strings.Builder
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			if c > 0 {
				sb.WriteByte(' ')
			}
			if p := b.grid[r][c]; p.IsEmpty() {
				sb.WriteString("..")
			} else {
				sb.WriteString(p.String())
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
