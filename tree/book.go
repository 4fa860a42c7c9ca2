package tree

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/DanielBremont/pachi/game"
)

// MaxBookPlayouts caps per-node playout counts when loading a saved
// book, keeping accumulated integers in a sane scale.
const MaxBookPlayouts = 10000000

// nodeRecord is the fixed-size statistics payload written per node.
type nodeRecord struct {
	Coord int32
	Depth int32
	Hints uint32

	UPlayouts     uint32
	AmafPlayouts  uint32
	PriorPlayouts uint32

	UWins     float64
	AmafWins  float64
	PriorWins float64
}

// BookName derives the opening book filename from the board geometry.
func BookName(pos game.Position) string {
	if pos.Handicap() > 0 {
		return fmt.Sprintf("book-%d-%.1f-h%d.tree", pos.Size(), pos.Komi(), pos.Handicap())
	}
	return fmt.Sprintf("book-%d-%.1f.tree", pos.Size(), pos.Komi())
}

// Save writes the tree depth-first: a presence marker, the node's
// statistics payload, then its children - but only for nodes with at
// least threshold raw playouts, which bounds the file size. A zero
// marker terminates each sibling list.
func (t *Tree) Save(path string, threshold int) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "tree: creating book")
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if err := saveNode(w, t.root, threshold); err != nil {
		return errors.Wrap(err, "tree: writing book")
	}
	if err := w.WriteByte(0); err != nil {
		return errors.Wrap(err, "tree: writing book")
	}
	if err := w.Flush(); err != nil {
		return errors.Wrap(err, "tree: writing book")
	}
	return errors.Wrap(f.Sync(), "tree: writing book")
}

func saveNode(w *bufio.Writer, n *Node, threshold int) error {
	if err := w.WriteByte(1); err != nil {
		return err
	}
	rec := nodeRecord{
		Coord:         int32(n.Coord),
		Depth:         int32(n.Depth),
		Hints:         n.Hints,
		UPlayouts:     uint32(n.U.Playouts),
		AmafPlayouts:  uint32(n.AMAF.Playouts),
		PriorPlayouts: uint32(n.Prior.Playouts),
		UWins:         n.U.Wins,
		AmafWins:      n.AMAF.Wins,
		PriorWins:     n.Prior.Wins,
	}
	if err := binary.Write(w, binary.LittleEndian, &rec); err != nil {
		return err
	}

	if n.U.Playouts >= threshold {
		for _, ni := range n.children {
			if err := saveNode(w, ni, threshold); err != nil {
				return err
			}
		}
	}
	return w.WriteByte(0)
}

// Load replaces the tree contents with a saved book. A missing file is
// a no-op: the fresh empty tree stands. Counts beyond MaxBookPlayouts
// are clamped with their win sums rescaled so the mean value survives,
// and baselines start at the loaded values so the next merge or
// normalize treats them as old evidence.
func (t *Tree) Load(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return errors.Wrap(err, "tree: opening book")
	}
	defer f.Close()

	log.Info().Msgf("tree: loading opening book %s", path)

	r := bufio.NewReader(f)
	marker, err := r.ReadByte()
	if err != nil || marker == 0 {
		return errors.Wrap(err, "tree: reading book")
	}

	num := 0
	if err := t.loadNode(r, t.root, &num); err != nil {
		return errors.Wrap(err, "tree: reading book")
	}
	log.Info().Msgf("tree: loaded %d nodes", num)
	return nil
}

func (t *Tree) loadNode(r *bufio.Reader, n *Node, num *int) error {
	*num++

	var rec nodeRecord
	if err := binary.Read(r, binary.LittleEndian, &rec); err != nil {
		return err
	}
	n.Coord = game.Coord(rec.Coord)
	n.Depth = int(rec.Depth)
	n.Hints = rec.Hints
	n.U = Stats{Playouts: int(rec.UPlayouts), Wins: rec.UWins}
	n.AMAF = Stats{Playouts: int(rec.AmafPlayouts), Wins: rec.AmafWins}
	n.Prior = Stats{Playouts: int(rec.PriorPlayouts), Wins: rec.PriorWins}
	clampPlayouts(&n.U)
	clampPlayouts(&n.AMAF)
	n.Prior.update()
	n.snapshot()
	if n.Depth > t.maxDepth {
		t.maxDepth = n.Depth
	}

	for {
		marker, err := r.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if marker == 0 {
			return nil
		}
		ni := &Node{parent: n, ID: nodeSeq.Add(1)}
		n.children = append(n.children, ni)
		if err := t.loadNode(r, ni, num); err != nil {
			return err
		}
	}
}

func clampPlayouts(s *Stats) {
	if s.Playouts > MaxBookPlayouts {
		over := s.Playouts - MaxBookPlayouts
		s.Wins -= s.Wins / float64(s.Playouts) * float64(over)
		s.Playouts = MaxBookPlayouts
	}
	s.update()
}
