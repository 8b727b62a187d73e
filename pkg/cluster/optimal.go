package cluster

import "math"

// optimalOrder computes the optimal leaf ordering of a dendrogram: among
// the 2^(n-1) orderings reachable by flipping internal branches, the one
// minimizing the summed distance between adjacent leaves. This is the
// dynamic program of Bar-Joseph et al., keyed on the (leftmost, rightmost)
// leaf pair of each subtree.
func optimalOrder(root *node, dist [][]float64) []int {
	costs := map[*node]map[[2]int]float64{}
	splits := map[*node]map[[2]int][2]int{}

	var fill func(v *node)
	fill = func(v *node) {
		if v.left == nil {
			costs[v] = map[[2]int]float64{{v.leaf, v.leaf}: 0}
			return
		}
		fill(v.left)
		fill(v.right)

		cost := map[[2]int]float64{}
		split := map[[2]int][2]int{}
		for _, u := range v.left.leaves {
			for _, w := range v.right.leaves {
				best := math.Inf(1)
				var bestMK [2]int
				for _, m := range v.left.leaves {
					cl, ok := costs[v.left][pairKey(u, m)]
					if !ok {
						continue
					}
					for _, k := range v.right.leaves {
						cr, ok := costs[v.right][pairKey(k, w)]
						if !ok {
							continue
						}
						if c := cl + dist[m][k] + cr; c < best {
							best = c
							bestMK = [2]int{m, k}
						}
					}
				}
				// An ordering and its reversal have equal cost, so the
				// table is stored under a canonical key.
				cost[pairKey(u, w)] = best
				split[pairKey(u, w)] = bestMK
			}
		}
		costs[v] = cost
		splits[v] = split
	}
	fill(root)

	if root.left == nil {
		return []int{root.leaf}
	}

	// Pick the cheapest endpoint pair at the root.
	best := math.Inf(1)
	var bestUW [2]int
	for _, u := range root.left.leaves {
		for _, w := range root.right.leaves {
			if c := costs[root][pairKey(u, w)]; c < best {
				best = c
				bestUW = [2]int{u, w}
			}
		}
	}

	var build func(v *node, u, w int) []int
	build = func(v *node, u, w int) []int {
		if v.left == nil {
			return []int{v.leaf}
		}
		if !contains(v.left.leaves, u) {
			// u belongs to the right subtree: build the reversed ordering
			// and flip it, using the cost symmetry under reversal.
			return reverse(build(v, w, u))
		}
		mk := splits[v][pairKey(u, w)]
		left := build(v.left, u, mk[0])
		right := build(v.right, mk[1], w)
		return append(left, right...)
	}

	return build(root, bestUW[0], bestUW[1])
}

// pairKey canonicalizes an unordered leaf pair.
func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func reverse(s []int) []int {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
	return s
}
