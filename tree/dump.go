package tree

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/slices"
)

// Dump writes a diagnostic rendering of the tree: pre-order, children
// above the playout threshold sorted by descending playouts.
func (t *Tree) Dump(w io.Writer, threshold int) {
	if threshold > 0 && t.root.U.Playouts/threshold > 100 {
		// A loaded book can make the root enormous; temper the
		// threshold so the dump stays readable.
		scale := 1
		if threshold >= 1000 {
			scale = threshold / 1000
		}
		threshold = t.root.U.Playouts / 100 * scale
	}
	dumpNode(w, t, t.root, 0, threshold)
}

func dumpNode(w io.Writer, t *Tree, n *Node, level, threshold int) {
	fmt.Fprintf(w, "%s[%s] %f (%d/%d playouts [prior %.1f/%d amaf %.1f/%d]; hints %x; %d children) <%d>\n",
		strings.Repeat(" ", level),
		n.Coord.Text(t.size), n.Value(),
		int(n.U.Wins+0.5), n.U.Playouts,
		n.Prior.Wins, n.Prior.Playouts,
		n.AMAF.Wins, n.AMAF.Playouts,
		n.Hints, len(n.children), n.ID)

	shown := make([]*Node, 0, len(n.children))
	for _, ni := range n.children {
		if ni.U.Playouts > threshold {
			shown = append(shown, ni)
		}
	}
	slices.SortFunc(shown, func(a, b *Node) int {
		return b.U.Playouts - a.U.Playouts
	})
	for _, ni := range shown {
		dumpNode(w, t, ni, level+1, threshold)
	}
}
