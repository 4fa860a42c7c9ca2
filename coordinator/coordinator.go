package coordinator

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/slices"

	"github.com/DanielBremont/pachi/game"
	"github.com/DanielBremont/pachi/meta"
	"github.com/DanielBremont/pachi/tree"
)

// Coordinator aggregates worker statistics into decisions. One mutex
// serializes the journal, the aggregator and session bookkeeping; it is
// held only around short metadata operations, never across network IO.
type Coordinator struct {
	mu   sync.Mutex
	cond *sync.Cond

	journal  *Journal
	agg      *Aggregator
	sessions map[int]*Session
	nextID   int
	closed   bool

	size        int
	maxWorkers  int
	workersQuit bool

	book          *tree.Tree
	pos           game.Position
	priors        game.PriorEvaluator
	bookThreshold int

	lastColor   game.Color
	lastMove    game.Coord
	lastStats   tree.Stats
	lastWorkers int
	lastMetric  DecisionMetric
}

type Option func(*Coordinator)

// WithBook attaches a local tree mirror: committed statistics are
// absorbed into it, the root follows committed moves, and the book
// verbs are serviced from it.
func WithBook(t *tree.Tree, pos game.Position, priors game.PriorEvaluator, threshold int) Option {
	return func(c *Coordinator) {
		c.book = t
		c.pos = pos
		c.priors = priors
		c.bookThreshold = threshold
	}
}

func WithMaxWorkers(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxWorkers = n
		}
	}
}

// WithWorkersQuit forwards the quit command to workers on shutdown.
func WithWorkersQuit() Option {
	return func(c *Coordinator) { c.workersQuit = true }
}

func New(size int, options ...Option) *Coordinator {
	c := &Coordinator{
		journal:    NewJournal(),
		agg:        &Aggregator{},
		sessions:   map[int]*Session{},
		nextID:     1,
		size:       size,
		maxWorkers: meta.DefaultMaxWorkers,
	}
	c.cond = sync.NewCond(&c.mu)
	for _, option := range options {
		option(c)
	}
	return c
}

// AddWorker registers a connection and starts its session loop. The
// new worker immediately receives the full journal, reconstructing
// shared state before it sees the in-flight command.
func (c *Coordinator) AddWorker(conn io.ReadWriteCloser) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("coordinator: closed")
	}
	if len(c.sessions) >= c.maxWorkers {
		return fmt.Errorf("coordinator: worker limit %d reached", c.maxWorkers)
	}
	s := &Session{id: c.nextID, conn: conn, r: bufio.NewReader(conn)}
	c.nextID++
	c.sessions[s.id] = s
	log.Info().Int("worker", s.id).Int("workers", len(c.sessions)).Msg("coordinator: worker connected")
	go c.serveWorker(s)
	return nil
}

func (c *Coordinator) dropWorker(s *Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions[s.id]; !ok {
		return
	}
	delete(c.sessions, s.id)
	s.conn.Close()
	c.cond.Broadcast()
	log.Info().Int("worker", s.id).Int("workers", len(c.sessions)).Msg("coordinator: worker gone")
}

// Workers is the number of connected workers.
func (c *Coordinator) Workers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// Close tears down every worker connection.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	sessions := make([]*Session, 0, len(c.sessions))
	for _, s := range c.sessions {
		sessions = append(sessions, s)
	}
	c.cond.Broadcast()
	c.mu.Unlock()

	var errs error
	for _, s := range sessions {
		if err := s.conn.Close(); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs
}

// newCommand journals a fresh command and wakes the sessions. Caller
// holds the lock.
func (c *Coordinator) newCommand(verb, args string) Entry {
	c.agg.Clear()
	e := c.journal.Append(verb, args)
	c.cond.Broadcast()
	return e
}

// waitReplies blocks until every connected worker has replied or the
// deadline passes, whichever first. Caller holds the lock; silence is
// no contribution, never failure.
func (c *Coordinator) waitReplies(deadline time.Time) {
	timer := time.AfterFunc(time.Until(deadline), func() {
		c.mu.Lock()
		c.cond.Broadcast()
		c.mu.Unlock()
	})
	defer timer.Stop()

	for c.agg.Count() < len(c.sessions) && time.Now().Before(deadline) && !c.closed {
		c.cond.Wait()
	}
}

// roundResult is one collection round's folded view of all replies.
type roundResult struct {
	stats        map[game.Coord]*tree.Stats2
	best         game.Coord
	bestPlayouts int
	played       int
	playouts     int
	threads      int
	replies      int
	keepLooking  bool
}

// foldReplies recomputes the combined per-coordinate statistics from
// the replies on hand, picking as best the coordinate with the most
// combined raw playouts. Ties keep the first encountered in reply then
// line order - incidental, but deliberately preserved. Caller holds the
// lock.
func (c *Coordinator) foldReplies() roundResult {
	round := roundResult{
		stats:        map[game.Coord]*tree.Stats2{},
		best:         game.Pass,
		bestPlayouts: -1,
	}
	keep := 0
	for _, text := range c.agg.Texts() {
		r, err := ParseReply(text, c.size)
		if err != nil {
			log.Debug().Err(err).Msg("coordinator: skipping unparseable reply")
			continue
		}
		round.replies++
		round.played += r.Played
		round.playouts += r.Playouts
		round.threads += r.Threads
		if r.KeepLooking {
			keep++
		}
		for _, m := range r.Moves {
			s := round.stats[m.Coord]
			if s == nil {
				s = &tree.Stats2{}
				round.stats[m.Coord] = s
			}
			s.U.Add(m.Value, m.Playouts)
			s.AMAF.Add(m.AmafValue, m.AmafPlayouts)
			if s.U.Playouts > round.bestPlayouts {
				round.bestPlayouts = s.U.Playouts
				round.best = m.Coord
			}
		}
	}
	round.keepLooking = keep > round.replies/2
	return round
}

// genmovesArgs builds the statistics-round body: the requesting color
// and cumulative sample count, optional clock state, then one line per
// combined candidate above minPlayouts so workers fold the global
// consensus back into their local search.
func genmovesArgs(color game.Color, played int, ti game.TimeInfo, stats map[game.Coord]*tree.Stats2, minPlayouts, size int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %d", color, played)
	if ti.Walltime() {
		fmt.Fprintf(&b, " %.3f %.3f %d %d",
			ti.Main.Seconds(), ti.Byoyomi.Seconds(), ti.Periods, ti.Stones)
	}
	b.WriteByte('\n')

	coords := make([]game.Coord, 0, len(stats))
	for coord := range stats {
		if coord == game.Pass || coord == game.Resign {
			continue
		}
		coords = append(coords, coord)
	}
	slices.Sort(coords)
	for _, coord := range coords {
		s := stats[coord]
		if s.U.Playouts <= minPlayouts {
			continue
		}
		fmt.Fprintf(&b, "%s %d %.7f %d %.7f\n", coord.Text(size),
			s.U.Playouts, s.U.Value, s.AMAF.Playouts, s.AMAF.Value)
	}
	b.WriteByte('\n')
	return b.String()
}

// Genmove runs one decision: dispatch a statistics request, collect and
// fold replies in short rounds, push the refreshed consensus back into
// the in-flight command, and commit the most played move once the
// budget runs out or the workers vote to stop.
func (c *Coordinator) Genmove(color game.Color, ti game.TimeInfo) game.Coord {
	start := time.Now()
	budget := ti.Budget()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.book != nil && len(c.book.Root().Children()) == 0 && c.priors != nil {
		c.book.Expand(c.book.Root(), c.pos, color, 0, c.priors)
	}

	c.newCommand("genmoves", genmovesArgs(color, 0, ti, nil, 0, c.size))

	var round roundResult
	round.best = game.Pass
	rounds := 0
	for {
		c.waitReplies(time.Now().Add(meta.StatsUpdateInterval))
		rounds++
		// A silent collection round must not discard statistics
		// already on hand: the decision degrades to older numbers,
		// never to an empty one.
		if fold := c.foldReplies(); fold.replies > 0 {
			round = fold
		}
		elapsed := time.Since(start)

		if round.replies == 0 {
			// No statistics from anyone yet: keep waiting for the
			// first reply as long as somebody could still send one.
			if len(c.sessions) == 0 {
				log.Warn().Msg("coordinator: no workers, passing")
				break
			}
			continue
		}
		if len(c.sessions) == 0 {
			// Nobody left to improve the numbers.
			break
		}

		if !round.keepLooking {
			break
		}
		if budget.Time > 0 {
			if elapsed >= budget.Time {
				break
			}
		} else if round.played >= budget.Games {
			break
		}

		// Same journal id on purpose: workers must not mistake the
		// refreshed request for a new command and discard their
		// in-flight reply as stale.
		remaining := ti
		if remaining.Main > elapsed {
			remaining.Main -= elapsed
		} else if remaining.Main > 0 {
			remaining.Main = 0
		}
		args := genmovesArgs(color, round.played, remaining, round.stats,
			round.bestPlayouts/meta.CandidateDivisor, c.size)
		c.agg.Clear()
		c.journal.Rewrite("genmoves", args, false)
		c.cond.Broadcast()

		if s := round.stats[round.best]; s != nil {
			log.Debug().Msgf("coordinator: temp winner is %s %s with score %.4f (%d/%d games) %d workers %d threads",
				color, round.best.Text(c.size), valueFor(s.U.Value, color),
				round.bestPlayouts, round.playouts, round.replies, round.threads)
		}
	}

	c.commit(color, round, rounds, time.Since(start))
	return round.best
}

// commit caches the decision, advances the local tree, and overwrites
// the in-flight request with the definitive play command so replayed
// history tells the same story. Caller holds the lock.
func (c *Coordinator) commit(color game.Color, round roundResult, rounds int, elapsed time.Duration) {
	c.lastColor = color
	c.lastMove = round.best
	c.lastStats = tree.Stats{}
	if s, ok := round.stats[round.best]; ok {
		c.lastStats = s.U
	}
	c.lastWorkers = round.replies

	if c.book != nil {
		c.book.AbsorbStats(round.stats)
		c.advanceBook(color, round.best)
	}

	c.agg.Clear()
	c.journal.Rewrite("play", fmt.Sprintf("%s %s\n", color, round.best.Text(c.size)), true)
	c.cond.Broadcast()

	c.lastMetric = DecisionMetric{
		Color:    color,
		Move:     round.best,
		Value:    valueFor(c.lastStats.Value, color),
		Played:   round.played,
		Playouts: round.playouts,
		Workers:  round.replies,
		Threads:  round.threads,
		Rounds:   rounds,
		Duration: elapsed,
	}
	log.Info().Msgf("coordinator: winner is %s %s with score %.4f (%d/%d games), %d games in %v, %d workers %d threads (%.0f games/s)",
		color, round.best.Text(c.size), c.lastMetric.Value,
		c.lastStats.Playouts, round.playouts, round.played, elapsed,
		round.replies, round.threads, c.lastMetric.GamesPerSecond())
}

// advanceBook follows a played move in the local tree mirror, whichever
// side played it, keeping the root at the current position with its
// color the mover's. An unexplored move restarts the mirror. Caller
// holds the lock.
func (c *Coordinator) advanceBook(color game.Color, move game.Coord) {
	if c.book == nil {
		return
	}
	if c.book.PromoteAt(move) {
		return
	}
	log.Debug().Msgf("coordinator: move %s not in tree, starting fresh", move.Text(c.size))
	sym := c.book.Symmetry()
	sym.Update(c.size, move)
	c.book = tree.New(c.size, color.Other(), sym)
}

// followPlay advances the local tree mirror past a play command issued
// from outside, typically the opponent's move. Caller holds the lock.
func (c *Coordinator) followPlay(args string) {
	fields := strings.Fields(args)
	if len(fields) < 2 {
		return
	}
	color, ok := game.ParseColor(fields[0])
	if !ok {
		return
	}
	move, ok := game.ParseCoord(fields[1], c.size)
	if !ok {
		return
	}
	c.advanceBook(color, move)
}

// valueFor flips a [0,1] black-win value to the given color's view.
func valueFor(value float64, color game.Color) float64 {
	if color == game.Black {
		return value
	}
	return 1 - value
}

// DeadGroups asks the workers which stones are dead and returns the
// single most repeated entire answer. Partial agreement never blends
// replies: one worker's full list wins.
func (c *Coordinator) DeadGroups() []game.Coord {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.newCommand("final_status_list", "dead\n")
	c.waitReplies(time.Now().Add(meta.MaxCmdWait))

	text, ok := c.agg.MostCommon()
	if !ok {
		return nil
	}

	var dead []game.Coord
	for i, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if i == 0 && len(fields) > 0 && strings.HasPrefix(fields[0], "=") {
			fields = fields[1:]
		}
		if len(fields) == 0 {
			continue
		}
		// The first coordinate of each line names the group.
		if coord, ok := game.ParseCoord(fields[0], c.size); ok {
			dead = append(dead, coord)
		}
	}
	return dead
}

// Notify forwards an ordinary command to the workers, waiting briefly
// for replies so sessions do not drift apart. Commands the coordinator
// services itself, and ones folded into the genmoves pipeline instead
// of sent immediately, are filtered out.
func (c *Coordinator) Notify(verb, args string) {
	switch verb {
	case "quit":
		if !c.workersQuit {
			return
		}
	case "time_left", "chat",
		"genmove", "genmove_cleanup", "final_score", "final_status_list":
		// time_left rides along with the next genmoves payload; the
		// rest run through their dedicated entry points.
		return
	case "book_save", "book_load":
		c.handleBook(verb)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if verb == "play" {
		c.followPlay(args)
	}
	c.newCommand(verb, args)
	c.waitReplies(time.Now().Add(meta.MaxCmdWait))
}

func (c *Coordinator) handleBook(verb string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.book == nil || c.pos == nil {
		return
	}
	path := tree.BookName(c.pos)
	var err error
	if verb == "book_save" {
		err = c.book.Save(path, c.bookThreshold)
	} else {
		err = c.book.Load(path)
	}
	if err != nil {
		log.Error().Err(err).Str("book", path).Msg("coordinator: book operation failed")
	}
}

// Chat answers free-text admin queries from the cached last decision.
func (c *Coordinator) Chat(cmd string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if strings.HasPrefix(strings.TrimSpace(cmd), "winrate") {
		return fmt.Sprintf("In %d playouts at %d machines, %s %s can win with %.2f%% probability.",
			c.lastStats.Playouts, c.lastWorkers, c.lastColor,
			c.lastMove.Text(c.size), 100*valueFor(c.lastStats.Value, c.lastColor))
	}
	return ""
}

// LastMetric reports the most recent committed decision.
func (c *Coordinator) LastMetric() DecisionMetric {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastMetric
}
