// Package cluster orders the rows of a numeric matrix by similarity.
//
// The resolver performs agglomerative hierarchical clustering over the rows
// and returns the dendrogram's leaves in optimal order: the ordering, among
// all orderings reachable by flipping dendrogram branches, that minimizes
// the total dissimilarity between adjacent rows. This is the fallback axis
// order used when no authoritative source (an explicit order file or a
// phylogenetic tree) has fixed the axis.
//
// Ordering is a pure function of the matrix and parameters: the same input
// always produces the same order, and nothing here performs I/O.
package cluster

import (
	"math"

	"github.com/genemap/genemap/pkg/errors"
	"github.com/genemap/genemap/pkg/table"
)

// Linkage selects the inter-cluster distance update rule.
type Linkage string

// Supported linkage methods. LinkageWard is the minimum-variance criterion
// and the default used for axis ordering.
const (
	LinkageWard     Linkage = "ward"
	LinkageSingle   Linkage = "single"
	LinkageComplete Linkage = "complete"
	LinkageAverage  Linkage = "average"
)

// Metric selects the pairwise row distance.
type Metric string

// Supported distance metrics.
const (
	MetricEuclidean Metric = "euclidean"
	MetricCityblock Metric = "cityblock"
)

// Options configures the resolver. Zero values select the defaults
// (ward linkage, Euclidean distance).
type Options struct {
	Linkage Linkage
	Metric  Metric
}

func (o *Options) setDefaults() {
	if o.Linkage == "" {
		o.Linkage = LinkageWard
	}
	if o.Metric == "" {
		o.Metric = MetricEuclidean
	}
}

// Leaves clusters the rows of m and returns the row IDs in optimal leaf
// order. It returns an error when fewer than two rows are present, since
// clustering is undefined for a single observation.
func Leaves(m *table.Matrix, opts Options) ([]string, error) {
	opts.setDefaults()

	n := len(m.RowIDs)
	if n < 2 {
		return nil, errors.New(errors.ErrCodeTooFewMembers,
			"clustering requires at least two rows, have %d", n)
	}

	dist, err := pairwise(m.Values, opts.Metric)
	if err != nil {
		return nil, err
	}

	root := agglomerate(n, dist, opts.Linkage)
	order := optimalOrder(root, dist)

	ids := make([]string, n)
	for i, leaf := range order {
		ids[i] = m.RowIDs[leaf]
	}
	return ids, nil
}

// pairwise computes the full symmetric distance matrix between rows.
func pairwise(rows [][]float64, metric Metric) ([][]float64, error) {
	n := len(rows)
	d := make([][]float64, n)
	for i := range d {
		d[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var v float64
			switch metric {
			case MetricEuclidean:
				var sum float64
				for k := range rows[i] {
					diff := rows[i][k] - rows[j][k]
					sum += diff * diff
				}
				v = math.Sqrt(sum)
			case MetricCityblock:
				for k := range rows[i] {
					v += math.Abs(rows[i][k] - rows[j][k])
				}
			default:
				return nil, errors.New(errors.ErrCodeInvalidArgument,
					"unknown distance metric %q", metric)
			}
			d[i][j] = v
			d[j][i] = v
		}
	}
	return d, nil
}

// node is a dendrogram node. Leaves have left == right == nil.
type node struct {
	leaf        int
	left, right *node
	leaves      []int
}

// agglomerate merges clusters pairwise until one remains, using the
// Lance-Williams recurrence to update inter-cluster distances.
// Ties are broken by the lower cluster index, keeping the result
// deterministic for a given input.
func agglomerate(n int, dist [][]float64, linkage Linkage) *node {
	type cluster struct {
		node *node
		size int
	}

	clusters := make(map[int]*cluster, n)
	for i := 0; i < n; i++ {
		clusters[i] = &cluster{
			node: &node{leaf: i, leaves: []int{i}},
			size: 1,
		}
	}

	// Working copy of inter-cluster distances, indexed by cluster ID.
	// New clusters take IDs n, n+1, ...
	d := make(map[int]map[int]float64, n)
	for i := 0; i < n; i++ {
		d[i] = make(map[int]float64, n)
		for j := 0; j < n; j++ {
			if i != j {
				d[i][j] = dist[i][j]
			}
		}
	}

	nextID := n
	for len(clusters) > 1 {
		// Find the closest pair.
		best := math.Inf(1)
		bi, bj := -1, -1
		for i := range clusters {
			for j := range clusters {
				if i >= j {
					continue
				}
				v := d[i][j]
				if v < best || (v == best && (i < bi || (i == bi && j < bj))) {
					best = v
					bi, bj = i, j
				}
			}
		}

		a, b := clusters[bi], clusters[bj]
		merged := &cluster{
			node: &node{
				left:   a.node,
				right:  b.node,
				leaves: append(append([]int(nil), a.node.leaves...), b.node.leaves...),
			},
			size: a.size + b.size,
		}

		// Lance-Williams update of distances to every remaining cluster.
		d[nextID] = make(map[int]float64, len(clusters))
		for k, c := range clusters {
			if k == bi || k == bj {
				continue
			}
			dak, dbk, dab := d[bi][k], d[bj][k], d[bi][bj]
			var v float64
			switch linkage {
			case LinkageSingle:
				v = math.Min(dak, dbk)
			case LinkageComplete:
				v = math.Max(dak, dbk)
			case LinkageAverage:
				na, nb := float64(a.size), float64(b.size)
				v = (na*dak + nb*dbk) / (na + nb)
			default: // ward
				na, nb, nk := float64(a.size), float64(b.size), float64(c.size)
				t := na + nb + nk
				v = math.Sqrt(((na+nk)*dak*dak + (nb+nk)*dbk*dbk - nk*dab*dab) / t)
			}
			d[nextID][k] = v
			d[k][nextID] = v
		}

		delete(clusters, bi)
		delete(clusters, bj)
		delete(d, bi)
		delete(d, bj)
		for k := range d {
			delete(d[k], bi)
			delete(d[k], bj)
		}
		clusters[nextID] = merged
		nextID++
	}

	for _, c := range clusters {
		return c.node
	}
	return nil
}
