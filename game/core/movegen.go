package core

// rawMoves returns the pseudo-legal destinations of the piece on from,
// ignoring whether its own king would be left in check.
func (b *Board) rawMoves(from Square) []Square {
	p, ok := b.Get(from)
	if !ok {
		return nil
	}

	switch p.Kind {
	case Pawn:
		return b.pawnMoves(from, p.Color)
	case Knight:
		return b.stepMoves(from, p.Color, knightOffsets[:])
	case Bishop:
		return b.slideMoves(from, p.Color, bishopRays[:])
	case Rook:
		return b.slideMoves(from, p.Color, rookRays[:])
	case Queen:
		return append(b.slideMoves(from, p.Color, rookRays[:]), b.slideMoves(from, p.Color, bishopRays[:])...)
	case King:
		return append(b.stepMoves(from, p.Color, kingOffsets[:]), b.castleMoves(from, p)...)
	case NoKind:
	}
	return nil
}

func (b *Board) pawnMoves(from Square, color Color) []Square {
	var moves []Square
	dir := color.Forward()

	one := from.add(dir, 0)
	if one.OnBoard() && b.at(one).IsEmpty() {
		moves = append(moves, one)
		two := one.add(dir, 0)
		if from.Row == color.pawnRow() && two.OnBoard() && b.at(two).IsEmpty() {
			moves = append(moves, two)
		}
	}

	for _, dc := range [...]int{-1, 1} {
		diag := from.add(dir, dc)
		if q, ok := b.Get(diag); ok && q.Color != color {
			moves = append(moves, diag)
		}
	}
	return moves
}

func (b *Board) stepMoves(from Square, color Color, offsets []offset) []Square {
	var moves []Square
	for _, o := range offsets {
		to := from.add(o.dr, o.dc)
		if !to.OnBoard() {
			continue
		}
		if q := b.at(to); q.IsEmpty() || q.Color != color {
			moves = append(moves, to)
		}
	}
	return moves
}

func (b *Board) slideMoves(from Square, color Color, rays []offset) []Square {
	var moves []Square
	for _, o := range rays {
		for to := from.add(o.dr, o.dc); to.OnBoard(); to = to.add(o.dr, o.dc) {
			q := b.at(to)
			if q.IsEmpty() {
				moves = append(moves, to)
				continue
			}
			if q.Color != color {
				moves = append(moves, to)
			}
			break
		}
	}
	return moves
}

// castleMoves returns the king destinations of every castling currently
// available to the king standing on from.
func (b *Board) castleMoves(from Square, king Piece) []Square {
	rights := b.castling[king.Color]
	if from != rights.King {
		return nil
	}

	var moves []Square
	for _, side := range sides {
		if to, ok := b.castleTarget(from, king, side); ok {
			moves = append(moves, to)
		}
	}
	return moves
}

// castleTarget checks one castling side and returns the king's destination.
// The path runs from the king toward the rook along whichever row or column
// the two share in the current frame.
func (b *Board) castleTarget(from Square, king Piece, side Side) (Square, bool) {
	if !king.canCastle(side) {
		return Square{}, false
	}
	rookSq, ok := b.castling[king.Color].rook(side).Square()
	if !ok || !b.holds(rookSq, Rook, king.Color) {
		return Square{}, false
	}
	dr, dc, ok := lineStep(from, rookSq)
	if !ok {
		return Square{}, false
	}
	if abs(rookSq.Row-from.Row)+abs(rookSq.Col-from.Col) < 3 {
		return Square{}, false
	}

	for sq := from.add(dr, dc); sq != rookSq; sq = sq.add(dr, dc) {
		if !b.at(sq).IsEmpty() {
			return Square{}, false
		}
	}

	opp := king.Color.Opponent()
	for i := 0; i <= 2; i++ {
		if b.IsSquareAttacked(from.add(i*dr, i*dc), opp) {
			return Square{}, false
		}
	}
	return from.add(2*dr, 2*dc), true
}

// LegalMoves returns every destination the piece on from can move to without
// leaving its own king in check. Empty and off-board squares have none.
func (b *Board) LegalMoves(from Square) []Square {
	p, ok := b.Get(from)
	if !ok {
		return nil
	}

	var legal []Square
	for _, to := range b.rawMoves(from) {
		u := b.apply(from, to, Queen)
		if !b.InCheck(p.Color) {
			legal = append(legal, to)
		}
		b.revert(u)
	}
	return legal
}

// HasLegalMoves reports whether any piece of color has a legal destination.
func (b *Board) HasLegalMoves(color Color) bool {
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			p := b.grid[r][c]
			if p.IsEmpty() || p.Color != color {
				continue
			}
			if len(b.LegalMoves(Sq(r, c))) > 0 {
				return true
			}
		}
	}
	return false
}
