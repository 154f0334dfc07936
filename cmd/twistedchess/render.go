package main

import (
	"fmt"
	"io"
	"strings"

	"TwistedChess/game/core"
	"TwistedChess/game/network"
)

// view is what the terminal shows after every change.
type view struct {
	board   *core.Board
	color   core.Color
	myTurn  bool
	last    *network.LastMove
	outcome network.Outcome
}

func snapshot(s *network.Session) view {
	return view{
		board:   s.Board(),
		color:   s.Color(),
		myTurn:  s.MyTurn(),
		last:    s.LastMove(),
		outcome: s.Outcome(),
	}
}

// pieceSymbol is upper case for White and lower case for Black.
func pieceSymbol(p core.Piece) string {
	if p.IsEmpty() {
		return "."
	}
	l := string(p.Kind.Letter())
	if p.Color == core.Black {
		return strings.ToLower(l)
	}
	return l
}

// render prints the board from the player's side: Black sees it turned
// 180°. Row and column labels are board coordinates, which is what moves are
// typed in.
func render(w io.Writer, v view) {
	order := [core.Size]int{0, 1, 2, 3, 4, 5, 6, 7}
	if v.color == core.Black {
		order = [core.Size]int{7, 6, 5, 4, 3, 2, 1, 0}
	}

	var sb strings.Builder
	sb.WriteString("   ")
	for _, c := range order {
		fmt.Fprintf(&sb, " %d ", c)
	}
	sb.WriteByte('\n')
	for _, r := range order {
		fmt.Fprintf(&sb, " %d ", r)
		for _, c := range order {
			sq := core.Sq(r, c)
			p, _ := v.board.Get(sq)
			if v.last != nil && (sq == v.last.From || sq == v.last.To) {
				fmt.Fprintf(&sb, "[%s]", pieceSymbol(p))
			} else {
				fmt.Fprintf(&sb, " %s ", pieceSymbol(p))
			}
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(status(v))
	sb.WriteByte('\n')
	io.WriteString(w, sb.String())
}

func status(v view) string {
	parts := []string{
		fmt.Sprintf("you play %s", v.color),
		fmt.Sprintf("rotation %d°", v.board.Rotation()*90),
		fmt.Sprintf("your pawns advance toward row %d, promote on %s", pawnGoal(v.color), promotionEdge(v.board, v.color)),
	}
	switch {
	case v.outcome == network.Won:
		parts = append(parts, "checkmate, you won")
	case v.outcome == network.Lost:
		parts = append(parts, "checkmate, you lost")
	case v.board.InCheck(v.color):
		parts = append(parts, "you are in check")
	}
	if v.outcome == network.Ongoing {
		if v.myTurn {
			parts = append(parts, "your move")
		} else {
			parts = append(parts, "waiting for opponent")
		}
	}
	return strings.Join(parts, " | ")
}

func pawnGoal(c core.Color) int {
	if c.Forward() < 0 {
		return 0
	}
	return core.Size - 1
}

// promotionEdge names the board edge where color's pawns promote right now.
func promotionEdge(b *core.Board, color core.Color) string {
	probes := []struct {
		sq   core.Square
		name string
	}{
		{core.Sq(0, 3), "row 0"},
		{core.Sq(7, 3), "row 7"},
		{core.Sq(3, 0), "col 0"},
		{core.Sq(3, 7), "col 7"},
	}
	for _, p := range probes {
		if b.IsPromotionSquare(p.sq, color) {
			return p.name
		}
	}
	return "no edge"
}
