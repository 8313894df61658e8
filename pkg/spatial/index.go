// Package spatial provides the neighbor-query index used by the flock.
//
// The index is a balanced k-d partition encoded in flat arrays: for any sub-range
// [s, e] of the order permutation, the tree node is order[(s+e)/2], its left subtree
// is order[s:mid] and its right subtree order[mid+1:e+1]. It is meant to be rebuilt
// from a position snapshot every tick and is never updated incrementally.
package spatial

import (
	"errors"
	"fmt"

	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/geometry"
)

var (
	ErrEmpty          = errors.New("spatial: cannot build an index over zero points")
	ErrLengthMismatch = errors.New("spatial: coordinate and id slices differ in length")
	ErrNegativeRadius = errors.New("spatial: query radius must be a non-negative number")
)

// Axis identifies the coordinate a node splits its sub-range on.
type Axis int8

const (
	AxisNone Axis = iota - 1 // leaf
	AxisX
	AxisY
	AxisZ
)

func (a Axis) String() string {
	switch a {
	case AxisX:
		return "X"
	case AxisY:
		return "Y"
	case AxisZ:
		return "Z"
	case AxisNone:
		return "none"
	}
	return fmt.Sprintf("Axis(%d)", int8(a))
}

// Index answers fixed-radius range queries over a frozen set of points.
// It is immutable once built and safe for concurrent queries.
type Index struct {
	xs, ys, zs []float64
	ids        []int
	order      []int
	split      []Axis
}

// Build creates an index over the points (xs[i], ys[i], zs[i]) identified by ids[i].
// The slices are retained, not copied: callers must not modify them while the index is in use.
func Build(xs, ys, zs []float64, ids []int) (*Index, error) {
	n := len(xs)
	if len(ys) != n || len(zs) != n || len(ids) != n {
		return nil, fmt.Errorf("%w: xs=%d ys=%d zs=%d ids=%d", ErrLengthMismatch, len(xs), len(ys), len(zs), len(ids))
	}
	if n == 0 {
		return nil, ErrEmpty
	}

	idx := &Index{
		xs:    xs,
		ys:    ys,
		zs:    zs,
		ids:   ids,
		order: make([]int, n),
		split: make([]Axis, n),
	}
	for i := range idx.order {
		idx.order[i] = i
		idx.split[i] = AxisNone
	}
	idx.build(0, n-1)
	return idx, nil
}

// BuildPoints is a convenience wrapper around Build for a slice of vectors.
func BuildPoints(points []geometry.Vector3, ids []int) (*Index, error) {
	if len(points) != len(ids) {
		return nil, fmt.Errorf("%w: points=%d ids=%d", ErrLengthMismatch, len(points), len(ids))
	}
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	zs := make([]float64, len(points))
	for i, p := range points {
		xs[i], ys[i], zs[i] = p[0], p[1], p[2]
	}
	return Build(xs, ys, zs, ids)
}

// Len returns the number of indexed points.
func (idx *Index) Len() int {
	return len(idx.order)
}

func (idx *Index) coords(axis Axis) []float64 {
	switch axis {
	case AxisX:
		return idx.xs
	case AxisY:
		return idx.ys
	default:
		return idx.zs
	}
}

// build partitions order[s..e] around its median on the axis of largest spread,
// then recurses into both halves. Sub-ranges of length one stay leaves.
func (idx *Index) build(s, e int) {
	if s >= e {
		return
	}

	axis := idx.dominantAxis(s, e)
	idx.partition(idx.coords(axis), s, e)

	m := (s + e) / 2
	idx.split[idx.order[m]] = axis

	idx.build(s, m-1)
	idx.build(m+1, e)
}

// dominantAxis returns the axis with the largest (max - min) span over order[s..e].
// Ties resolve in a fixed order that depends only on the three spans.
func (idx *Index) dominantAxis(s, e int) Axis {
	node := idx.order[s]
	minX, maxX := idx.xs[node], idx.xs[node]
	minY, maxY := idx.ys[node], idx.ys[node]
	minZ, maxZ := idx.zs[node], idx.zs[node]

	for _, p := range idx.order[s+1 : e+1] {
		x, y, z := idx.xs[p], idx.ys[p], idx.zs[p]
		minX, maxX = min(minX, x), max(maxX, x)
		minY, maxY = min(minY, y), max(maxY, y)
		minZ, maxZ = min(minZ, z), max(maxZ, z)
	}

	spanX, spanY, spanZ := maxX-minX, maxY-minY, maxZ-minZ
	if spanX > spanY {
		if spanY > spanZ || spanX > spanZ {
			return AxisX
		}
		return AxisZ
	}
	if spanX > spanZ || spanY > spanZ {
		return AxisY
	}
	return AxisZ
}

// partition is a quickselect over order[s..e] keyed by v: it repeats a single-pivot
// partition (pivot = first element of the current window) until the pivot lands on
// the middle slot. Afterwards every element left of the middle is <= it and every
// element right of it is >= it.
//
// The window shrinks by at least the pivot on every pass, so the loop ends once the
// pivot hits the middle or the window is the middle slot alone.
func (idx *Index) partition(v []float64, s, e int) {
	order := idx.order
	m := (s + e) / 2

	for s < e {
		pivot := v[order[s]]
		left := s
		for i := s + 1; i <= e; i++ {
			if v[order[i]] < pivot {
				left++
				order[i], order[left] = order[left], order[i]
			}
		}
		order[s], order[left] = order[left], order[s]

		switch {
		case m < left:
			e = left - 1
		case left < m:
			s = left + 1
		default:
			return
		}
	}
}

// Query returns the ids of every point strictly within radius of center.
// The order of the result is unspecified.
func (idx *Index) Query(center geometry.Vector3, radius float64) ([]int, error) {
	return idx.AppendQuery(nil, center, radius)
}

// AppendQuery is like Query but appends the ids to dst, so callers can reuse a buffer across queries.
func (idx *Index) AppendQuery(dst []int, center geometry.Vector3, radius float64) ([]int, error) {
	if !(radius >= 0) {
		return dst, fmt.Errorf("%w: got %v", ErrNegativeRadius, radius)
	}
	q := query{idx: idx, center: center, radius: radius, radiusSq: radius * radius, out: dst}
	q.search(0, len(idx.order)-1)
	return q.out, nil
}

type query struct {
	idx      *Index
	center   geometry.Vector3
	radius   float64
	radiusSq float64
	out      []int
}

func (q *query) search(s, e int) {
	idx := q.idx
	m := (s + e) / 2
	node := idx.order[m]

	nodePos := geometry.Vector3{idx.xs[node], idx.ys[node], idx.zs[node]}
	if geometry.DistanceSquared(nodePos, q.center) < q.radiusSq {
		q.out = append(q.out, idx.ids[node])
	}

	axis := idx.split[node]
	if axis == AxisNone {
		return
	}

	plane := nodePos[axis]
	c := q.center[axis]

	// Descend into a half whenever the query sphere reaches past the splitting plane on that side.
	if c-q.radius < plane && s <= m-1 {
		q.search(s, m-1)
	}
	if c+q.radius > plane && m+1 <= e {
		q.search(m+1, e)
	}
}

// Validate walks the whole tree and checks the partition invariants: every node splits
// on the axis of largest spread of its sub-range, its left subtree holds values <= the
// node's on that axis and its right subtree values >= it. A non-nil error means the index is corrupt.
func (idx *Index) Validate() error {
	return idx.validate(0, len(idx.order)-1)
}

func (idx *Index) validate(s, e int) error {
	if s > e {
		return nil
	}
	m := (s + e) / 2
	node := idx.order[m]
	axis := idx.split[node]

	if s == e {
		if axis != AxisNone {
			return fmt.Errorf("leaf %d at slot %d has split axis %s", node, m, axis)
		}
		return nil
	}
	if axis == AxisNone {
		return fmt.Errorf("inner node %d at slot %d is marked as leaf", node, m)
	}
	if want := idx.dominantAxis(s, e); want != axis {
		return fmt.Errorf("node %d splits on %s, largest spread is on %s", node, axis, want)
	}

	v := idx.coords(axis)
	for _, p := range idx.order[s:m] {
		if v[p] > v[node] {
			return fmt.Errorf("point %d left of node %d has %s=%v > %v", p, node, axis, v[p], v[node])
		}
	}
	for _, p := range idx.order[m+1 : e+1] {
		if v[p] < v[node] {
			return fmt.Errorf("point %d right of node %d has %s=%v < %v", p, node, axis, v[p], v[node])
		}
	}

	if err := idx.validate(s, m-1); err != nil {
		return err
	}
	return idx.validate(m+1, e)
}
