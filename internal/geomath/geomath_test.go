package geomath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistM(t *testing.T) {
	// 3-4-5 triangle in feet.
	a := Point{X: 0, Y: 0}
	b := Point{X: 3, Y: 4}
	assert.InDelta(t, 5*FeetToMeters, DistM(a, b), 1e-12)
	assert.Zero(t, DistM(a, a))
}

func TestPolylineLengthM(t *testing.T) {
	pts := []Point{{0, 0}, {10, 0}, {10, 10}}
	assert.InDelta(t, 20*FeetToMeters, PolylineLengthM(pts), 1e-12)

	assert.Zero(t, PolylineLengthM(nil))
	assert.Zero(t, PolylineLengthM([]Point{{1, 1}}))
}

func TestCentroid(t *testing.T) {
	c, ok := Centroid([]Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}})
	require.True(t, ok)
	assert.Equal(t, Point{X: 5, Y: 5}, c)

	_, ok = Centroid(nil)
	assert.False(t, ok)
}

func TestBBoxAreaM2(t *testing.T) {
	pts := []Point{{0, 0}, {10, 0}, {10, 20}, {0, 20}}
	want := 10 * FeetToMeters * 20 * FeetToMeters
	assert.InDelta(t, want, BBoxAreaM2(pts), 1e-12)

	assert.Zero(t, BBoxAreaM2(nil))
	// Degenerate (collinear) box has zero area.
	assert.Zero(t, BBoxAreaM2([]Point{{0, 0}, {5, 0}}))
}

func TestRatioClose(t *testing.T) {
	assert.True(t, RatioClose(100, 104, 0.05))
	assert.True(t, RatioClose(104, 100, 0.05))
	assert.False(t, RatioClose(100, 110, 0.05))

	// Zero on either side never matches.
	assert.False(t, RatioClose(0, 100, 0.05))
	assert.False(t, RatioClose(100, 0, 0.05))
	assert.False(t, RatioClose(0, 0, 0.05))
}
