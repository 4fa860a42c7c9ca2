package coordinator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DanielBremont/pachi/game"
)

// MoveStats is one candidate line of a statistics reply: the raw and
// all-moves-as-first numbers a worker produced for one coordinate since
// its last sync point.
type MoveStats struct {
	Coord        game.Coord
	Playouts     int
	Value        float64
	AmafPlayouts int
	AmafValue    float64
}

// Reply is one worker's parsed statistics reply.
type Reply struct {
	ID          int
	Played      int
	Playouts    int
	Threads     int
	KeepLooking bool
	Moves       []MoveStats
}

// ParseReply parses "=<id> <played> <playouts> <threads> <keep>" plus
// candidate lines "<coord> <playouts> <value> <amaf_playouts>
// <amaf_value>". Trailing header fields are reserved and ignored.
// Malformed candidate lines are skipped so one bad line cannot void a
// worker's whole contribution; a malformed header voids the reply.
func ParseReply(text string, size int) (Reply, error) {
	lines := strings.Split(text, "\n")
	if len(lines) == 0 {
		return Reply{}, fmt.Errorf("reply: empty")
	}

	var r Reply
	var keep int
	n, err := fmt.Sscanf(lines[0], "=%d %d %d %d %d",
		&r.ID, &r.Played, &r.Playouts, &r.Threads, &keep)
	if err != nil || n != 5 {
		return Reply{}, fmt.Errorf("reply: bad header %q", lines[0])
	}
	r.KeepLooking = keep != 0

	for _, line := range lines[1:] {
		if line == "" {
			break
		}
		m, ok := parseMoveLine(line, size)
		if !ok {
			continue
		}
		r.Moves = append(r.Moves, m)
	}
	return r, nil
}

func parseMoveLine(line string, size int) (MoveStats, bool) {
	fields := strings.Fields(line)
	if len(fields) < 5 {
		return MoveStats{}, false
	}
	c, ok := game.ParseCoord(fields[0], size)
	if !ok {
		return MoveStats{}, false
	}
	playouts, err1 := strconv.Atoi(fields[1])
	value, err2 := strconv.ParseFloat(fields[2], 64)
	amafPlayouts, err3 := strconv.Atoi(fields[3])
	amafValue, err4 := strconv.ParseFloat(fields[4], 64)
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return MoveStats{}, false
	}
	return MoveStats{
		Coord:        c,
		Playouts:     playouts,
		Value:        value,
		AmafPlayouts: amafPlayouts,
		AmafValue:    amafValue,
	}, true
}
