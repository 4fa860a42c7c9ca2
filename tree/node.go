package tree

import (
	"sync/atomic"

	"github.com/DanielBremont/pachi/game"
)

// Node is one search-tree vertex. Children are kept sorted ascending by
// coordinate (Pass leads); merge depends on that ordering. The parent
// pointer is a non-owning back-reference used only for unlinking.
type Node struct {
	Coord game.Coord
	Depth int

	U     Stats
	AMAF  Stats
	Prior Stats

	// Baselines mark the last synchronization point. Merge and
	// normalize operate only on the delta accumulated since; the
	// prior channel is immutable after creation and needs none.
	BaseU    Stats
	BaseAMAF Stats

	Hints uint32
	ID    int64

	parent   *Node
	children []*Node
}

// nodeSeq hands out diagnostic ids; the offset keeps them visually
// apart from playout counts in dumps.
var nodeSeq atomic.Int64

func init() { nodeSeq.Store(1000000) }

func newNode(c game.Coord, depth int) *Node {
	return &Node{Coord: c, Depth: depth, ID: nodeSeq.Add(1)}
}

func (n *Node) Parent() *Node     { return n.parent }
func (n *Node) Children() []*Node { return n.children }

// Child returns the child playing c, or nil.
func (n *Node) Child(c game.Coord) *Node {
	for _, ni := range n.children {
		if ni.Coord == c {
			return ni
		}
	}
	return nil
}

// Value is the node's derived value: the raw channel blended with the
// immutable prior weight.
func (n *Node) Value() float64 {
	playouts := n.U.Playouts + n.Prior.Playouts
	if playouts == 0 {
		return 0
	}
	return (n.U.Wins + n.Prior.Wins) / float64(playouts)
}

// snapshot re-marks the synchronization point at the current totals.
func (n *Node) snapshot() {
	n.BaseU = n.U
	n.BaseAMAF = n.AMAF
}

// unlink removes the node from its parent's sibling list, an
// O(children) scan. The subtree below stays intact.
func (n *Node) unlink() {
	p := n.parent
	if p == nil {
		return
	}
	for i, ni := range p.children {
		if ni == n {
			p.children = append(p.children[:i], p.children[i+1:]...)
			break
		}
	}
	n.parent = nil
}

// size counts the nodes of the subtree rooted here.
func (n *Node) size() int {
	total := 1
	for _, ni := range n.children {
		total += ni.size()
	}
	return total
}
