// Package coordinator drives the distributed search protocol: it
// journals commands to workers, aggregates their statistical replies,
// resynchronizes lagging workers by replaying command history, and
// folds the combined statistics into one committed decision per move.
package coordinator

import "fmt"

// Entry is one command issued to the workers, identified by a
// monotonically increasing id.
type Entry struct {
	ID   int
	Verb string

	// Args is empty or ends with a newline; multi-line bodies carry
	// their own blank-line terminator.
	Args string
}

// wire renders the entry as sent to a worker.
func (e Entry) wire() string {
	if e.Args == "" {
		return fmt.Sprintf("%d %s\n", e.ID, e.Verb)
	}
	return fmt.Sprintf("%d %s %s", e.ID, e.Verb, e.Args)
}

// Journal is the ordered, replayable history of commands. A worker that
// fell behind is brought back in sync by replaying the suffix it has
// not seen instead of being dropped.
type Journal struct {
	entries []Entry
	nextID  int

	// version bumps on every append or rewrite; sessions compare it
	// against what they last forwarded.
	version int
}

func NewJournal() *Journal {
	return &Journal{nextID: 1}
}

// Append records a new command under a fresh id.
func (j *Journal) Append(verb, args string) Entry {
	e := Entry{ID: j.nextID, Verb: verb, Args: args}
	j.nextID++
	j.version++
	j.entries = append(j.entries, e)
	return e
}

// Rewrite replaces the most recent entry's body in place, so workers
// recognize it as the same in-flight request. With advance set it also
// takes a fresh id, turning the entry into a new command that still
// overwrites the stale one in any replayed history.
func (j *Journal) Rewrite(verb, args string, advance bool) Entry {
	if len(j.entries) == 0 {
		panic("journal: rewrite without a command")
	}
	e := &j.entries[len(j.entries)-1]
	e.Verb, e.Args = verb, args
	if advance {
		e.ID = j.nextID
		j.nextID++
	}
	j.version++
	return *e
}

// Head returns the current in-flight command.
func (j *Journal) Head() (Entry, bool) {
	if len(j.entries) == 0 {
		return Entry{}, false
	}
	return j.entries[len(j.entries)-1], true
}

// Since returns, in original order, every entry a worker holding
// lastID still needs to reconstruct shared state.
func (j *Journal) Since(lastID int) []Entry {
	for i, e := range j.entries {
		if e.ID > lastID {
			out := make([]Entry, len(j.entries)-i)
			copy(out, j.entries[i:])
			return out
		}
	}
	return nil
}

func (j *Journal) Len() int { return len(j.entries) }
