package inp

import (
	"strings"

	"go.uber.org/zap"

	"inpdiff/internal/geomath"
)

// Geometry holds the spatial view of one model file, scoped to a single
// comparison run. Coordinates stay in source units (feet).
type Geometry struct {
	// Nodes maps node id -> coordinate.
	Nodes map[string]geomath.Point
	// Links maps link id -> polyline: start node, vertices in file
	// order, end node. Materialized only when both endpoints resolve and
	// at least two points result.
	Links map[string][]geomath.Point
	// Polygons maps subcatchment id -> ordered rings.
	Polygons map[string][][]geomath.Point
}

// NewGeometry returns an empty Geometry with maps allocated.
func NewGeometry() *Geometry {
	return &Geometry{
		Nodes:    make(map[string]geomath.Point),
		Links:    make(map[string][]geomath.Point),
		Polygons: make(map[string][][]geomath.Point),
	}
}

// Clone returns a deep copy.
func (g *Geometry) Clone() *Geometry {
	out := NewGeometry()
	for id, p := range g.Nodes {
		out.Nodes[id] = p
	}
	for id, pts := range g.Links {
		out.Links[id] = append([]geomath.Point(nil), pts...)
	}
	for id, rings := range g.Polygons {
		cp := make([][]geomath.Point, len(rings))
		for i, ring := range rings {
			cp[i] = append([]geomath.Point(nil), ring...)
		}
		out.Polygons[id] = cp
	}
	return out
}

// RingPoints returns every polygon point for an id, rings flattened in
// order. Used by the reconciler for centroid and bounding-box checks.
func (g *Geometry) RingPoints(id string) []geomath.Point {
	rings, ok := g.Polygons[id]
	if !ok {
		return nil
	}
	var pts []geomath.Point
	for _, ring := range rings {
		pts = append(pts, ring...)
	}
	return pts
}

// linkSections are the conduit-like sections whose first two value
// tokens name the endpoints.
var linkSections = map[string]bool{
	"CONDUITS": true,
	"PUMPS":    true,
	"ORIFICES": true,
	"WEIRS":    true,
	"OUTLETS":  true,
}

// ExtractGeometry runs an independent pass over the raw text, tracking
// only the current bracketed section. Link polylines are assembled after
// the pass so the endpoint table is whole.
func ExtractGeometry(text string) *Geometry {
	return NewParser(nil).ExtractGeometry(text)
}

// ExtractGeometry is the logger-carrying form of the package function.
func (p *Parser) ExtractGeometry(text string) *Geometry {
	nodes := make(map[string]geomath.Point)
	vertices := make(map[string][]geomath.Point)
	endpoints := make(map[string][2]string)
	var endpointOrder []string
	polygons := make(map[string]*ringAccumulator)
	var polygonOrder []string

	section := ""
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToUpper(strings.Trim(line, "[]"))
			continue
		}
		parts := wsSplit.Split(line, -1)
		if len(parts) < 3 {
			continue
		}

		switch {
		case section == "COORDINATES":
			if pt, ok := parsePoint(parts[1], parts[2]); ok {
				nodes[parts[0]] = pt
			}
		case section == "VERTICES":
			if pt, ok := parsePoint(parts[1], parts[2]); ok {
				vertices[parts[0]] = append(vertices[parts[0]], pt)
			}
		case linkSections[section]:
			if _, seen := endpoints[parts[0]]; !seen {
				endpointOrder = append(endpointOrder, parts[0])
			}
			endpoints[parts[0]] = [2]string{parts[1], parts[2]}
		case section == "POLYGONS":
			if pt, ok := parsePoint(parts[1], parts[2]); ok {
				acc, exists := polygons[parts[0]]
				if !exists {
					acc = &ringAccumulator{}
					polygons[parts[0]] = acc
					polygonOrder = append(polygonOrder, parts[0])
				}
				acc.add(pt)
			}
		}
	}

	g := NewGeometry()
	g.Nodes = nodes
	for _, lid := range endpointOrder {
		ep := endpoints[lid]
		start, ok1 := nodes[ep[0]]
		end, ok2 := nodes[ep[1]]
		if !ok1 || !ok2 {
			continue
		}
		coords := append([]geomath.Point{start}, vertices[lid]...)
		coords = append(coords, end)
		g.Links[lid] = coords
	}
	for _, sid := range polygonOrder {
		g.Polygons[sid] = polygons[sid].finish()
	}

	p.logger.Debug("extracted geometry",
		zap.Int("nodes", len(g.Nodes)),
		zap.Int("links", len(g.Links)),
		zap.Int("polygons", len(g.Polygons)))
	return g
}
