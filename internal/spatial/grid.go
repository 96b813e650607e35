// Package spatial provides a uniform-grid candidate index for
// nearest-neighbor lookups during reconciliation. The grid only narrows
// the candidate set; callers must still do an exact distance check.
package spatial

import "math"

// Entry is one indexed element.
type Entry struct {
	ID string
	X  float64
	Y  float64
}

// Grid buckets entries by cell. Query returns the 3x3 neighborhood of
// the query point's cell, so correctness requires the cell size to
// exceed the caller's match tolerance by a safe margin. That is a caller
// convention, not enforced here.
type Grid struct {
	cell    float64
	buckets map[cellKey][]Entry
}

type cellKey struct {
	cx int
	cy int
}

// NewGrid creates a grid with the given cell size (same units as the
// inserted coordinates). Non-positive sizes fall back to 1.
func NewGrid(cell float64) *Grid {
	if cell <= 0 {
		cell = 1
	}
	return &Grid{cell: cell, buckets: make(map[cellKey][]Entry)}
}

func (g *Grid) keyFor(x, y float64) cellKey {
	return cellKey{
		cx: int(math.Floor(x / g.cell)),
		cy: int(math.Floor(y / g.cell)),
	}
}

// Insert adds an entry to its cell bucket.
func (g *Grid) Insert(id string, x, y float64) {
	k := g.keyFor(x, y)
	g.buckets[k] = append(g.buckets[k], Entry{ID: id, X: x, Y: y})
}

// Query returns every entry in the 3x3 neighborhood around the query
// point's cell. Entries are returned in bucket order; the caller filters
// by exact distance.
func (g *Grid) Query(x, y float64) []Entry {
	center := g.keyFor(x, y)
	var out []Entry
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			k := cellKey{cx: center.cx + dx, cy: center.cy + dy}
			out = append(out, g.buckets[k]...)
		}
	}
	return out
}

// Len returns the number of indexed entries.
func (g *Grid) Len() int {
	n := 0
	for _, b := range g.buckets {
		n += len(b)
	}
	return n
}
