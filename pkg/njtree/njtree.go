// Package njtree builds neighbor-joining trees from pairwise distance
// matrices and lays them out on a cartesian plane for plotting.
//
// The tree element consumes this package opaquely: it needs the ordered
// leaf sequence (which becomes the authoritative genome axis order), the
// 2-D node coordinates for the dendrogram panel, dotted tip-extension
// segments, and hover text. The same tree can also be exported to Graphviz
// DOT and rendered standalone, see dot.go.
package njtree

import (
	"fmt"
	"math"

	"github.com/genemap/genemap/pkg/errors"
	"github.com/genemap/genemap/pkg/table"
)

// Tree is a rooted neighbor-joining tree with a computed planar layout.
// Leaves sit at integer y positions matching their order; x positions are
// cumulative branch lengths from the root.
type Tree struct {
	root      *tnode
	leafOrder []string
	maxX      float64
}

type tnode struct {
	name     string // leaf name, empty for internal nodes
	children []*tnode
	length   float64 // branch length to parent
	x, y     float64
}

func (n *tnode) isLeaf() bool { return len(n.children) == 0 }

// Build constructs a neighbor-joining tree over the given member IDs using
// the square distance matrix dm. Every ID must name both a row and a
// column of dm. Fewer than two members is an error.
func Build(ids []string, dm *table.Matrix) (*Tree, error) {
	if len(ids) < 2 {
		return nil, errors.New(errors.ErrCodeTooFewMembers,
			"neighbor joining requires at least two members, have %d", len(ids))
	}
	for _, id := range ids {
		if !dm.HasRow(id) {
			return nil, errors.New(errors.ErrCodeUnknownMember,
				"distance matrix has no row for %q", id)
		}
	}

	root := join(ids, dm)
	t := &Tree{root: root}
	t.layout()
	return t, nil
}

// join runs the neighbor-joining agglomeration and returns the root.
// The final two nodes are joined at a root placed midway between them.
func join(ids []string, dm *table.Matrix) *tnode {
	nodes := map[int]*tnode{}
	d := map[int]map[int]float64{}
	for i, id := range ids {
		nodes[i] = &tnode{name: id}
		d[i] = map[int]float64{}
	}
	for i := range ids {
		for j := range ids {
			if i != j {
				d[i][j] = dm.At(ids[i], ids[j])
			}
		}
	}

	nextID := len(ids)
	for len(nodes) > 2 {
		r := float64(len(nodes))

		// Net divergence per node.
		rowSum := map[int]float64{}
		for i := range nodes {
			for j := range nodes {
				if i != j {
					rowSum[i] += d[i][j]
				}
			}
		}

		// Minimize the Q criterion; ties broken by the lower index pair
		// so the tree is deterministic.
		best := math.Inf(1)
		bi, bj := -1, -1
		for i := range nodes {
			for j := range nodes {
				if i >= j {
					continue
				}
				q := (r-2)*d[i][j] - rowSum[i] - rowSum[j]
				if q < best || (q == best && (i < bi || (i == bi && j < bj))) {
					best = q
					bi, bj = i, j
				}
			}
		}

		li := d[bi][bj]/2 + (rowSum[bi]-rowSum[bj])/(2*(r-2))
		lj := d[bi][bj] - li
		// Negative branch lengths are an artifact of non-additive
		// distances; clamp to zero as usual.
		li = math.Max(li, 0)
		lj = math.Max(lj, 0)

		a, b := nodes[bi], nodes[bj]
		a.length = li
		b.length = lj
		u := &tnode{children: []*tnode{a, b}}

		d[nextID] = map[int]float64{}
		for k := range nodes {
			if k == bi || k == bj {
				continue
			}
			v := (d[bi][k] + d[bj][k] - d[bi][bj]) / 2
			d[nextID][k] = math.Max(v, 0)
			d[k][nextID] = d[nextID][k]
		}

		delete(nodes, bi)
		delete(nodes, bj)
		delete(d, bi)
		delete(d, bj)
		for k := range d {
			delete(d[k], bi)
			delete(d[k], bj)
		}
		nodes[nextID] = u
		nextID++
	}

	// Two nodes remain: root midway along the final edge.
	var ka, kb = -1, -1
	for k := range nodes {
		if ka == -1 || k < ka {
			kb = ka
			ka = k
		} else if kb == -1 || k < kb {
			kb = k
		}
	}
	a, b := nodes[ka], nodes[kb]
	half := d[ka][kb] / 2
	a.length = half
	b.length = half
	return &tnode{children: []*tnode{a, b}}
}

// layout assigns x positions as cumulative branch length from the root and
// y positions so leaves occupy 0..n-1 in traversal order, with internal
// nodes centered on their children.
func (t *Tree) layout() {
	t.leafOrder = t.leafOrder[:0]
	t.maxX = 0

	var place func(n *tnode, x float64)
	place = func(n *tnode, x float64) {
		n.x = x
		if n.isLeaf() {
			n.y = float64(len(t.leafOrder))
			t.leafOrder = append(t.leafOrder, n.name)
			if x > t.maxX {
				t.maxX = x
			}
			return
		}
		var sum float64
		for _, c := range n.children {
			place(c, x+c.length)
			sum += c.y
		}
		n.y = sum / float64(len(n.children))
	}
	place(t.root, 0)
}

// LeafOrder returns the leaf names in layout order, top to bottom.
// This is the sequence the tree element fixes onto the genome axis.
func (t *Tree) LeafOrder() []string {
	return append([]string(nil), t.leafOrder...)
}

// MaxDepth returns the largest root-to-tip distance, the x extent of the
// layout.
func (t *Tree) MaxDepth() float64 {
	return t.maxX
}

// Segments returns the x and y coordinates of the dendrogram line trace.
// Each elbow (vertical connector plus horizontal branches) is separated by
// NaN coordinates, matching the pen-up convention of the line trace.
// The returned text slice is aligned with the coordinates and carries hover
// text at branch tips.
func (t *Tree) Segments() (xs, ys []float64, text []string) {
	var walk func(n *tnode)
	walk = func(n *tnode) {
		if n.isLeaf() {
			return
		}
		first := n.children[0]
		last := n.children[len(n.children)-1]

		// Vertical connector spanning the children.
		xs = append(xs, n.x, n.x, math.NaN())
		ys = append(ys, first.y, last.y, math.NaN())
		text = append(text, "", "", "")

		// Horizontal branch to each child.
		for _, c := range n.children {
			xs = append(xs, n.x, c.x, math.NaN())
			ys = append(ys, c.y, c.y, math.NaN())
			text = append(text, "", c.hover(), "")
			walk(c)
		}
	}
	walk(t.root)
	return xs, ys, text
}

// Extensions returns dotted segments extending every leaf tip out to the
// maximum depth, so tip labels line up with the heatmap rows.
func (t *Tree) Extensions() (xs, ys []float64) {
	var walk func(n *tnode)
	walk = func(n *tnode) {
		if n.isLeaf() {
			if n.x < t.maxX {
				xs = append(xs, n.x, t.maxX, math.NaN())
				ys = append(ys, n.y, n.y, math.NaN())
			}
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(t.root)
	return xs, ys
}

func (n *tnode) hover() string {
	if n.isLeaf() {
		return fmt.Sprintf("%s<br>branch length: %.4g", n.name, n.length)
	}
	return fmt.Sprintf("internal node<br>branch length: %.4g", n.length)
}
