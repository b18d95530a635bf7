package physics

import (
	"cmp"
	"slices"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"
)

// Pair is an unordered pair of snapshot indices in canonical form, I < J.
type Pair struct {
	I, J int
}

func makePair(a, b int) Pair {
	if a < b {
		return Pair{a, b}
	}
	return Pair{b, a}
}

// NeighborFinder builds the deduplicated k-nearest-neighbor pair set: (i,j)
// is present when j is among i's k nearest, or i is among j's.
type NeighborFinder interface {
	Pairs(pos []Vec2, k int) []Pair
}

// NewNeighborFinder returns the strategy registered under name ("brute" or
// "kdtree"); anything else falls back to brute force.
func NewNeighborFinder(name string) NeighborFinder {
	if name == "kdtree" {
		return KDTree{}
	}
	return BruteForce{}
}

// effectiveK clamps k to the number of other bodies.
func effectiveK(n, k int) int {
	if k > n-1 {
		k = n - 1
	}
	if k < 0 {
		k = 0
	}
	return k
}

type pairSet map[Pair]struct{}

func (s pairSet) add(i, j int) {
	s[makePair(i, j)] = struct{}{}
}

// sorted returns the pairs ordered by (I, J) so callers see a stable order.
func (s pairSet) sorted() []Pair {
	out := make([]Pair, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	slices.SortFunc(out, func(a, b Pair) int {
		if c := cmp.Compare(a.I, b.I); c != 0 {
			return c
		}
		return cmp.Compare(a.J, b.J)
	})
	return out
}

// --- Brute force ---

// BruteForce ranks every other body per body by squared distance.
// O(N^2 log N); fine for a few hundred bodies.
type BruteForce struct{}

type rankedNeighbor struct {
	d2  float64
	idx int
}

func (BruteForce) Pairs(pos []Vec2, k int) []Pair {
	n := len(pos)
	if n < 2 || k <= 0 {
		return nil
	}
	k = effectiveK(n, k)

	set := make(pairSet, n*k)
	dists := make([]rankedNeighbor, 0, n-1)
	for i := range pos {
		dists = dists[:0]
		for j := range pos {
			if i == j {
				continue
			}
			dists = append(dists, rankedNeighbor{pos[i].DistSq(pos[j]), j})
		}
		slices.SortStableFunc(dists, func(a, b rankedNeighbor) int {
			return cmp.Compare(a.d2, b.d2)
		})
		for _, nb := range dists[:k] {
			set.add(i, nb.idx)
		}
	}
	return set.sorted()
}

// --- kd-tree ---

// KDTree answers the same query through a gonum kd-tree. For point sets
// without distance ties it yields exactly the BruteForce pair set.
type KDTree struct{}

func (KDTree) Pairs(pos []Vec2, k int) []Pair {
	n := len(pos)
	if n < 2 || k <= 0 {
		return nil
	}
	k = effectiveK(n, k)

	pts := make(kdPoints, n)
	for i, p := range pos {
		pts[i] = kdPoint{p: p, idx: i}
	}
	tree := kdtree.New(slices.Clone(pts), false)

	set := make(pairSet, n*k)
	found := make([]rankedNeighbor, 0, k+1)
	for i, q := range pts {
		// k+1 because the query point finds itself
		keeper := kdtree.NewNKeeper(k + 1)
		tree.NearestSet(keeper, q)

		found = found[:0]
		for _, c := range keeper.Heap {
			if c.Comparable == nil {
				continue
			}
			nb := c.Comparable.(kdPoint)
			if nb.idx == i {
				continue
			}
			found = append(found, rankedNeighbor{c.Dist, nb.idx})
		}
		slices.SortFunc(found, func(a, b rankedNeighbor) int {
			if c := cmp.Compare(a.d2, b.d2); c != 0 {
				return c
			}
			return cmp.Compare(a.idx, b.idx)
		})
		if len(found) > k {
			found = found[:k]
		}
		for _, nb := range found {
			set.add(i, nb.idx)
		}
	}
	return set.sorted()
}

type kdPoint struct {
	p   Vec2
	idx int
}

func (a kdPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	b := c.(kdPoint)
	switch d {
	case 0:
		return a.p.X - b.p.X
	case 1:
		return a.p.Y - b.p.Y
	default:
		panic("illegal dimension")
	}
}

func (a kdPoint) Dims() int { return 2 }

// Distance is squared Euclidean, as the tree expects.
func (a kdPoint) Distance(c kdtree.Comparable) float64 {
	return a.p.DistSq(c.(kdPoint).p)
}

type kdPoints []kdPoint

func (p kdPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p kdPoints) Len() int                      { return len(p) }
func (p kdPoints) Slice(start, end int) kdtree.Interface {
	return p[start:end]
}

// Pivot orders the points along d and returns the median index.
func (p kdPoints) Pivot(d kdtree.Dim) int {
	sort.Slice(p, func(i, j int) bool {
		return p[i].Compare(p[j], d) < 0
	})
	return len(p) / 2
}
