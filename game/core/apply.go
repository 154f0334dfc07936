package core

// undo records everything apply changed so revert can restore the board
// exactly.
type undo struct {
	from, to Square
	moved    Piece
	captured Piece

	castled          bool
	rookFrom, rookTo Square
	rook             Piece

	castling [2]CastlingRights
}

// Move plays from→to. A pawn reaching its promotion square becomes promotion,
// which falls back to Queen unless it is Queen, Rook, Knight or Bishop.
//
// Move does not check legality; callers pass destinations obtained from
// LegalMoves. Off-board coordinates or an empty origin make it a no-op, which
// is reported by returning false.
func (b *Board) Move(from, to Square, promotion Kind) bool {
	if !from.OnBoard() || !to.OnBoard() || b.at(from).IsEmpty() {
		return false
	}
	b.apply(from, to, promotion)
	return true
}

func (b *Board) apply(from, to Square, promotion Kind) undo {
	p := b.at(from)
	u := undo{
		from:     from,
		to:       to,
		moved:    p,
		captured: b.at(to),
		castling: b.castling,
	}
	rights := &b.castling[p.Color]

	if p.Kind == King {
		if side, rookFrom, ok := b.castlingSide(from, to, p.Color); ok {
			dr, dc, _ := lineStep(from, to)
			u.castled = true
			u.rookFrom = rookFrom
			u.rookTo = to.add(-dr, -dc)
			u.rook = b.at(rookFrom)

			rook := u.rook
			rook.Moved = true
			b.set(rookFrom, Piece{})
			b.set(u.rookTo, rook)
			rights.forfeit(side)
		}
	}

	p.Moved = true

	switch p.Kind {
	case King:
		rights.King = to
		p.CanCastleKingside = false
		p.CanCastleQueenside = false
	case Rook:
		rights.forfeitAt(from)
	case Pawn, Knight, Bishop, Queen, NoKind:
	}

	if c := u.captured; c.Kind == Rook {
		b.castling[c.Color].forfeitAt(to)
	}

	b.set(from, Piece{})
	b.set(to, p)

	if p.Kind == Pawn && b.IsPromotionSquare(to, p.Color) {
		b.set(to, NewPiece(promotionKind(promotion), p.Color, NoInstance))
	}
	return u
}

// castlingSide reports whether a king step from→to is a castling move: two
// squares along a line toward one of the color's available rook origins.
func (b *Board) castlingSide(from, to Square, color Color) (Side, Square, bool) {
	dr, dc, ok := lineStep(from, to)
	if !ok || abs(to.Row-from.Row)+abs(to.Col-from.Col) != 2 {
		return 0, Square{}, false
	}
	rights := b.castling[color]
	if from != rights.King {
		return 0, Square{}, false
	}
	for _, side := range sides {
		rookSq, ok := rights.rook(side).Square()
		if !ok {
			continue
		}
		if rdr, rdc, ok := lineStep(from, rookSq); ok && rdr == dr && rdc == dc && b.holds(rookSq, Rook, color) {
			return side, rookSq, true
		}
	}
	return 0, Square{}, false
}

// revert undoes an apply. Reverts must happen in reverse order of applies.
func (b *Board) revert(u undo) {
	if u.castled {
		b.set(u.rookTo, Piece{})
		b.set(u.rookFrom, u.rook)
	}
	b.set(u.to, u.captured)
	b.set(u.from, u.moved)
	b.castling = u.castling
}
