package inp

import "inpdiff/internal/geomath"

// ringAccumulator collects polygon points and splits them into rings.
// A ring closes (and a new one starts) once it holds at least three
// points and its first point equals its last. Both the text parser and
// the geometry extractor share this rule.
type ringAccumulator struct {
	rings   [][]geomath.Point
	current []geomath.Point
}

func (r *ringAccumulator) add(p geomath.Point) {
	r.current = append(r.current, p)
	if len(r.current) >= 3 && r.current[0] == r.current[len(r.current)-1] {
		r.rings = append(r.rings, r.current)
		r.current = nil
	}
}

// finish returns all rings, including a trailing unclosed ring when one
// is open. Best-effort: files sometimes omit the closing point.
func (r *ringAccumulator) finish() [][]geomath.Point {
	if len(r.current) > 0 {
		r.rings = append(r.rings, r.current)
		r.current = nil
	}
	return r.rings
}
