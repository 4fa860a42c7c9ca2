package game

import (
	"fmt"
	"strconv"
	"strings"
)

// Coord is a point index on a square board, row-major from the lower
// left corner. Pass and Resign are virtual moves and sort before any
// board point, which keeps sibling lists ordered when they lead.
type Coord int

const (
	Pass   Coord = -1
	Resign Coord = -2
)

// Column letters skip I, as the text protocol demands.
const columns = "ABCDEFGHJKLMNOPQRSTUVWXYZ"

func CoordXY(x, y, size int) Coord {
	return Coord(y*size + x)
}

func (c Coord) X(size int) int { return int(c) % size }
func (c Coord) Y(size int) int { return int(c) / size }

func (c Coord) IsPass() bool { return c == Pass }

// Text renders the coordinate in board notation, e.g. "C3".
func (c Coord) Text(size int) string {
	switch c {
	case Pass:
		return "pass"
	case Resign:
		return "resign"
	}
	return fmt.Sprintf("%c%d", columns[c.X(size)], c.Y(size)+1)
}

// ParseCoord is the inverse of Text. The boolean reports whether the
// input was a well-formed coordinate for the given board size.
func ParseCoord(s string, size int) (Coord, bool) {
	switch strings.ToLower(s) {
	case "pass":
		return Pass, true
	case "resign":
		return Resign, true
	}
	if len(s) < 2 {
		return Pass, false
	}
	x := strings.IndexByte(columns, byte(strings.ToUpper(s)[0]))
	if x < 0 || x >= size {
		return Pass, false
	}
	row, err := strconv.Atoi(s[1:])
	if err != nil || row < 1 || row > size {
		return Pass, false
	}
	return CoordXY(x, row-1, size), true
}
