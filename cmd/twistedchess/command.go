package main

import (
	"strconv"
	"strings"

	"TwistedChess/game/core"

	"github.com/pkg/errors"
)

var errUsage = errors.New("usage: <row> <col> <row> <col> [Q|R|N|B], moves <row> <col>, board, quit")

type commandKind int

const (
	cmdMove commandKind = iota
	cmdMoves
	cmdBoard
	cmdQuit
)

type command struct {
	kind      commandKind
	from, to  core.Square
	promotion string
}

// parseCommand reads one input line. Coordinates are board rows and
// columns, 0 through 7.
func parseCommand(line string) (command, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, errUsage
	}
	switch strings.ToLower(fields[0]) {
	case "quit", "q", "exit":
		return command{kind: cmdQuit}, nil
	case "board", "b":
		return command{kind: cmdBoard}, nil
	case "moves", "m":
		sqs, err := parseSquares(fields[1:])
		if err != nil || len(sqs) != 1 {
			return command{}, errUsage
		}
		return command{kind: cmdMoves, from: sqs[0]}, nil
	}

	var promotion string
	if n := len(fields); n == 5 {
		promotion = strings.ToUpper(fields[4])
		fields = fields[:4]
	}
	sqs, err := parseSquares(fields)
	if err != nil || len(sqs) != 2 {
		return command{}, errUsage
	}
	return command{kind: cmdMove, from: sqs[0], to: sqs[1], promotion: promotion}, nil
}

func parseSquares(fields []string) ([]core.Square, error) {
	if len(fields) == 0 || len(fields)%2 != 0 {
		return nil, errUsage
	}
	sqs := make([]core.Square, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		r, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, errors.Wrapf(errUsage, "row %q", fields[i])
		}
		c, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return nil, errors.Wrapf(errUsage, "col %q", fields[i+1])
		}
		sq := core.Sq(r, c)
		if !sq.OnBoard() {
			return nil, errors.Wrapf(errUsage, "%v is off the board", sq)
		}
		sqs = append(sqs, sq)
	}
	return sqs, nil
}
