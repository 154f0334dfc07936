package core

import "fmt"

// Size is the number of rows and columns of the board.
const Size = 8

// Square is a board coordinate. Row 0 and row 7 hold the starting back ranks.
type Square struct {
	Row, Col int
}

// Sq is shorthand for Square{Row: row, Col: col}.
func Sq(row, col int) Square {
	return Square{Row: row, Col: col}
}

// OnBoard reports whether both coordinates are within 0..7.
func (s Square) OnBoard() bool {
	return s.Row >= 0 && s.Row < Size && s.Col >= 0 && s.Col < Size
}

func (s Square) add(dr, dc int) Square {
	return Square{Row: s.Row + dr, Col: s.Col + dc}
}

// Rotated returns where s ends up after one quarter-turn of the board.
func (s Square) Rotated() Square {
	return Square{Row: s.Col, Col: Size - 1 - s.Row}
}

func (s Square) String() string {
	return fmt.Sprintf("(%d,%d)", s.Row, s.Col)
}

// lineStep returns the unit step leading from a to b when both share a row
// or a column.
func lineStep(a, b Square) (dr, dc int, ok bool) {
	switch {
	case a == b:
		return 0, 0, false
	case a.Row == b.Row:
		return 0, sign(b.Col - a.Col), true
	case a.Col == b.Col:
		return sign(b.Row - a.Row), 0, true
	}
	return 0, 0, false
}

func sign(x int) int {
	switch {
	case x < 0:
		return -1
	case x > 0:
		return 1
	}
	return 0
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
