package core

// edge is one border line of the grid: a row, or a column when byCol is set.
type edge struct {
	byCol bool
	index int
}

func (e edge) contains(sq Square) bool {
	if e.byCol {
		return sq.Col == e.index
	}
	return sq.Row == e.index
}

// promotionEdges lists, per rotation state, the edge on which each color
// promotes. Pawns keep advancing along the row axis for their color while
// the grid turns under them, so the far edge cycles through all four sides.
var promotionEdges = [4][2]edge{
	0: {White: {index: 0}, Black: {index: 7}},
	1: {White: {byCol: true, index: 7}, Black: {byCol: true, index: 0}},
	2: {White: {index: 7}, Black: {index: 0}},
	3: {White: {byCol: true, index: 0}, Black: {byCol: true, index: 7}},
}

// IsPromotionSquare reports whether a pawn of color landing on sq promotes
// under the current rotation state.
func (b *Board) IsPromotionSquare(sq Square, color Color) bool {
	if !sq.OnBoard() {
		return false
	}
	return promotionEdges[b.rotation][color].contains(sq)
}
