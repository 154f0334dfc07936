package core

// Rotate turns the board a quarter: the piece on (r,c) moves to (c,7-r).
// The rotation counter advances mod 4 and the castling table is remapped in
// the same way. Piece flags are left alone.
func (b *Board) Rotate() {
	var next [Size][Size]Piece
	for r := 0; r < Size; r++ {
		for c := 0; c < Size; c++ {
			to := Sq(r, c).Rotated()
			next[to.Row][to.Col] = b.grid[r][c]
		}
	}
	b.grid = next
	b.rotation = (b.rotation + 1) % 4
	for i := range b.castling {
		b.castling[i] = b.castling[i].rotated()
	}
}
