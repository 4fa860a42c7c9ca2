package coordinator

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

// Session is the coordinator-side state of one worker connection. The
// journal id last forwarded to the worker decides how much history must
// be replayed to keep it in sync.
type Session struct {
	id   int
	conn io.ReadWriteCloser
	r    *bufio.Reader

	sentID      int
	sentVersion int
}

// serveWorker runs one worker's forward/collect loop. The lock is never
// held across network IO; a silent worker stalls only its own session.
func (c *Coordinator) serveWorker(s *Session) {
	defer c.dropWorker(s)
	for {
		entries, ok := c.pendingFor(s)
		if !ok {
			return
		}
		// One reply per forwarded command, in lockstep.
		for _, e := range entries {
			if _, err := io.WriteString(s.conn, e.wire()); err != nil {
				log.Warn().Int("worker", s.id).Err(err).Msg("coordinator: send failed")
				return
			}
			text, err := readReplyBlock(s.r)
			if err != nil {
				log.Warn().Int("worker", s.id).Err(err).Msg("coordinator: worker lost")
				return
			}
			c.acceptReply(s, text)
		}
	}
}

// pendingFor blocks until the worker owes the journal something, then
// returns the suffix to forward: all missed entries in original order,
// or just the rewritten head when only its body changed.
func (c *Coordinator) pendingFor(s *Session) ([]Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		if c.closed {
			return nil, false
		}
		if s.sentVersion != c.journal.version {
			entries := c.journal.Since(s.sentID)
			if len(entries) == 0 {
				if head, ok := c.journal.Head(); ok {
					entries = []Entry{head}
				}
			}
			s.sentVersion = c.journal.version
			if len(entries) > 0 {
				if len(entries) > 1 {
					log.Debug().Int("worker", s.id).Int("commands", len(entries)).
						Msg("coordinator: replaying history to lagging worker")
				}
				s.sentID = entries[len(entries)-1].ID
				return entries, true
			}
		}
		c.cond.Wait()
	}
}

// acceptReply files a reply under the in-flight command. Replies to
// anything else are stale and dropped.
func (c *Coordinator) acceptReply(s *Session, text string) {
	id, ok := replyID(text)
	if !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	head, exists := c.journal.Head()
	if !exists || id != head.ID {
		log.Debug().Int("worker", s.id).Int("reply", id).
			Msg("coordinator: discarding stale reply")
		return
	}
	c.agg.Add(s.id, text)
	c.cond.Broadcast()
}

// readReplyBlock reads one reply: lines up to a blank line.
func readReplyBlock(r *bufio.Reader) (string, error) {
	var lines []string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return "", err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			return strings.Join(lines, "\n"), nil
		}
		lines = append(lines, line)
	}
}

// replyID extracts the command id from a reply header "=<id> ...".
func replyID(text string) (int, bool) {
	if !strings.HasPrefix(text, "=") {
		return 0, false
	}
	header := text
	if i := strings.IndexByte(header, '\n'); i >= 0 {
		header = header[:i]
	}
	fields := strings.Fields(header[1:])
	if len(fields) == 0 {
		return 0, false
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	return id, true
}
