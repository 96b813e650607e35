package spatial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ID)
	}
	return out
}

func TestGridQueryNeighborhood(t *testing.T) {
	g := NewGrid(10)
	g.Insert("near", 12, 12)
	g.Insert("edge", 19.9, 19.9)
	g.Insert("far", 55, 55)

	got := ids(g.Query(11, 11))
	assert.Contains(t, got, "near")
	assert.Contains(t, got, "edge")
	assert.NotContains(t, got, "far")
}

func TestGridQueryCrossesCellBoundary(t *testing.T) {
	g := NewGrid(10)
	// Just across the boundary from the query point's cell.
	g.Insert("a", 10.1, 0)

	got := ids(g.Query(9.9, 0))
	require.Contains(t, got, "a")
}

func TestGridNegativeCoordinates(t *testing.T) {
	g := NewGrid(10)
	g.Insert("neg", -5, -5)

	got := ids(g.Query(-1, -1))
	assert.Contains(t, got, "neg")
}

func TestGridNonPositiveCellFallsBack(t *testing.T) {
	g := NewGrid(0)
	g.Insert("a", 0.5, 0.5)
	assert.Contains(t, ids(g.Query(0.4, 0.4)), "a")
}

func TestGridLen(t *testing.T) {
	g := NewGrid(10)
	assert.Equal(t, 0, g.Len())
	g.Insert("a", 0, 0)
	g.Insert("b", 100, 100)
	assert.Equal(t, 2, g.Len())
}
