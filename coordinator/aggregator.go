package coordinator

import "golang.org/x/exp/slices"

// Aggregator buffers one textual reply per worker for the in-flight
// command. It is cleared before every new command or statistics round.
type Aggregator struct {
	replies []workerReply
}

type workerReply struct {
	worker int
	text   string
}

func (a *Aggregator) Clear() {
	a.replies = a.replies[:0]
}

// Add records a worker's reply, replacing any earlier reply from the
// same worker for this command.
func (a *Aggregator) Add(worker int, text string) {
	for i := range a.replies {
		if a.replies[i].worker == worker {
			a.replies[i].text = text
			return
		}
	}
	a.replies = append(a.replies, workerReply{worker: worker, text: text})
}

func (a *Aggregator) Count() int { return len(a.replies) }

// Texts returns the reply bodies in arrival order.
func (a *Aggregator) Texts() []string {
	out := make([]string, len(a.replies))
	for i, r := range a.replies {
		out[i] = r.text
	}
	return out
}

// MostCommon returns the reply text repeated by the most workers. The
// vote is over entire reply strings; ties go to the first candidate in
// sorted order.
func (a *Aggregator) MostCommon() (string, bool) {
	if len(a.replies) == 0 {
		return "", false
	}
	texts := a.Texts()
	slices.Sort(texts)

	best, bestCount := 0, 1
	count := 1
	for i := 1; i < len(texts); i++ {
		if texts[i] == texts[i-1] {
			count++
		} else {
			count = 1
		}
		if count > bestCount {
			bestCount = count
			best = i
		}
	}
	return texts[best], true
}
