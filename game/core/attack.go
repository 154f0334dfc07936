package core

type offset struct{ dr, dc int }

var (
	knightOffsets = [...]offset{{-2, -1}, {-2, 1}, {-1, -2}, {-1, 2}, {1, -2}, {1, 2}, {2, -1}, {2, 1}}
	kingOffsets   = [...]offset{{-1, -1}, {-1, 0}, {-1, 1}, {0, -1}, {0, 1}, {1, -1}, {1, 0}, {1, 1}}
	rookRays      = [...]offset{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	bishopRays    = [...]offset{{-1, -1}, {-1, 1}, {1, -1}, {1, 1}}
)

// IsSquareAttacked reports whether any piece of byColor threatens sq. It is a
// raw threat test: whose turn it is and pins play no part.
func (b *Board) IsSquareAttacked(sq Square, byColor Color) bool {
	if !sq.OnBoard() {
		return false
	}

	// A pawn attacks diagonally forward, so look one row behind sq.
	back := -byColor.Forward()
	for _, dc := range [...]int{-1, 1} {
		if b.holds(sq.add(back, dc), Pawn, byColor) {
			return true
		}
	}

	for _, o := range knightOffsets {
		if b.holds(sq.add(o.dr, o.dc), Knight, byColor) {
			return true
		}
	}
	for _, o := range kingOffsets {
		if b.holds(sq.add(o.dr, o.dc), King, byColor) {
			return true
		}
	}

	for _, o := range rookRays {
		if p, ok := b.firstOnRay(sq, o); ok && p.Color == byColor && (p.Kind == Rook || p.Kind == Queen) {
			return true
		}
	}
	for _, o := range bishopRays {
		if p, ok := b.firstOnRay(sq, o); ok && p.Color == byColor && (p.Kind == Bishop || p.Kind == Queen) {
			return true
		}
	}
	return false
}

func (b *Board) holds(sq Square, kind Kind, color Color) bool {
	p, ok := b.Get(sq)
	return ok && p.Kind == kind && p.Color == color
}

// firstOnRay returns the first piece met walking from sq (exclusive) in
// direction o.
func (b *Board) firstOnRay(sq Square, o offset) (Piece, bool) {
	for cur := sq.add(o.dr, o.dc); cur.OnBoard(); cur = cur.add(o.dr, o.dc) {
		if p := b.at(cur); !p.IsEmpty() {
			return p, true
		}
	}
	return Piece{}, false
}

// InCheck reports whether color's king is attacked. A board without such a
// king is never in check.
func (b *Board) InCheck(color Color) bool {
	king, ok := b.FindPiece(King, color)
	if !ok {
		return false
	}
	return b.IsSquareAttacked(king, color.Opponent())
}

// IsCheckmate reports whether color is in check and has no legal move.
// A side with no legal move that is not in check is not reported; there is
// no stalemate rule.
func (b *Board) IsCheckmate(color Color) bool {
	return b.InCheck(color) && !b.HasLegalMoves(color)
}
