// Package reconcile matches elements across two model files by spatial
// proximity rather than id equality, detecting renames. The second
// file's Document and Geometry are normalized to first-file ids so all
// later comparison runs on a single id space.
package reconcile

import (
	"sort"

	"go.uber.org/zap"

	"inpdiff/internal/geomath"
	"inpdiff/internal/inp"
	"inpdiff/internal/spatial"
)

// Match tolerances. Coordinates are feet; comparisons run in meters.
const (
	nodeEpsM         = 0.5 * geomath.FeetToMeters
	linkCentroidEpsM = 5 * geomath.FeetToMeters
	linkLengthTol    = 0.05
	subCentroidEpsM  = 10 * geomath.FeetToMeters
	subAreaTol       = 0.10

	// Grid cell for node candidate lookup, in feet. Must exceed the node
	// match tolerance (0.5 ft) by a safe margin so the 3x3 neighborhood
	// always covers it.
	nodeGridCellFt = 10.0
)

// NodeSections are the sections whose element ids name nodes.
var NodeSections = []string{"JUNCTIONS", "OUTFALLS", "DIVIDERS", "STORAGE"}

// LinkSections are the conduit-like sections; the first two value fields
// of each row are the endpoint node ids.
var LinkSections = []string{"CONDUITS", "PUMPS", "ORIFICES", "WEIRS", "OUTLETS"}

// RenameMap groups detected renames by the section the old id belonged
// to in the first file: section -> old id -> new id.
type RenameMap map[string]map[string]string

// Renamed reports whether the id was renamed within the section.
func (m RenameMap) Renamed(section, id string) bool {
	sec, ok := m[section]
	if !ok {
		return false
	}
	_, ok = sec[id]
	return ok
}

// Result carries the rename map plus the normalized copies of the second
// file's Document and Geometry. The inputs are never mutated.
type Result struct {
	Renames RenameMap
	Doc2    *inp.Document
	Geom2   *inp.Geometry
}

// Reconcile runs the three ordered matching passes (nodes first, since
// link and subcatchment matching consult node renames) and applies the
// detected renames to copies of doc2/geom2.
func Reconcile(doc1, doc2 *inp.Document, g1, g2 *inp.Geometry, logger *zap.Logger) *Result {
	if logger == nil {
		logger = zap.NewNop()
	}

	nodeRen := matchNodes(doc1, doc2, g1, g2)
	linkRen := matchLinks(doc1, doc2, g1, g2, nodeRen)
	subRen := matchSubcatchments(doc1, doc2, g1, g2)

	logger.Debug("reconciliation matched",
		zap.Int("nodes", len(nodeRen)),
		zap.Int("links", len(linkRen)),
		zap.Int("subcatchments", len(subRen)))

	doc2c := doc2.Clone()
	g2c := g2.Clone()
	applyRenames(doc2c, g2c, nodeRen, linkRen, subRen)

	return &Result{
		Renames: groupBySection(doc1, nodeRen, linkRen, subRen),
		Doc2:    doc2c,
		Geom2:   g2c,
	}
}

// sectionIDs returns the ids of the given sections in first-seen input
// order, plus a membership set.
func sectionIDs(doc *inp.Document, sections []string) ([]string, map[string]bool) {
	var order []string
	seen := make(map[string]bool)
	for _, sec := range sections {
		for _, id := range doc.Order[sec] {
			if !seen[id] {
				seen[id] = true
				order = append(order, id)
			}
		}
		// Rows that predate order tracking (hand-built documents) still
		// count for membership.
		for id := range doc.Sections[sec] {
			if !seen[id] {
				seen[id] = true
				order = append(order, id)
			}
		}
	}
	return order, seen
}

// uniqueIDs filters ids down to those absent from the other side.
func uniqueIDs(order []string, other map[string]bool) []string {
	var out []string
	for _, id := range order {
		if !other[id] {
			out = append(out, id)
		}
	}
	return out
}

type nodePair struct {
	old  string
	new  string
	dist float64
}

// matchNodes pairs unmatched nodes within nodeEpsM. For each old id the
// nearest new-side candidate is proposed; proposals are then sorted
// globally by distance and assigned greedily with claim-and-remove, so
// cross-conflicts resolve toward the globally closest matches.
func matchNodes(doc1, doc2 *inp.Document, g1, g2 *inp.Geometry) map[string]string {
	order1, set1 := sectionIDs(doc1, NodeSections)
	order2, set2 := sectionIDs(doc2, NodeSections)
	u1 := uniqueIDs(order1, set2)
	u2 := uniqueIDs(order2, set1)

	grid := spatial.NewGrid(nodeGridCellFt)
	for _, id := range u2 {
		if p, ok := g2.Nodes[id]; ok {
			grid.Insert(id, p.X, p.Y)
		}
	}

	var pairs []nodePair
	for _, oldID := range u1 {
		p1, ok := g1.Nodes[oldID]
		if !ok {
			continue
		}
		best := ""
		bestD := nodeEpsM
		for _, cand := range grid.Query(p1.X, p1.Y) {
			d := geomath.DistM(p1, geomath.Point{X: cand.X, Y: cand.Y})
			if d < bestD {
				best, bestD = cand.ID, d
			}
		}
		if best != "" {
			pairs = append(pairs, nodePair{old: oldID, new: best, dist: bestD})
		}
	}

	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].dist < pairs[j].dist })

	renames := make(map[string]string)
	usedNew := make(map[string]bool)
	for _, pr := range pairs {
		if usedNew[pr.new] {
			continue
		}
		renames[pr.old] = pr.new
		usedNew[pr.new] = true
	}
	return renames
}

// endpoints returns the first two value fields of a link row, searching
// the conduit-like sections in order.
func endpoints(doc *inp.Document, id string) (string, string, bool) {
	for _, sec := range LinkSections {
		if vals, ok := doc.Sections[sec][id]; ok && len(vals) >= 2 {
			return vals[0], vals[1], true
		}
	}
	return "", "", false
}

// matchLinks pairs unmatched conduit-like elements. A candidate is
// eligible when its mapped-back endpoints equal the old endpoints as an
// unordered pair, or its polyline length is within 5% and its centroid
// within linkCentroidEpsM. Endpoint matches dominate the score. Old ids
// are walked in input order with immediate claim-and-remove; unlike the
// node pass there is no global sort.
func matchLinks(doc1, doc2 *inp.Document, g1, g2 *inp.Geometry, nodeRen map[string]string) map[string]string {
	order1, set1 := sectionIDs(doc1, LinkSections)
	order2, set2 := sectionIDs(doc2, LinkSections)
	u1 := uniqueIDs(order1, set2)
	u2 := uniqueIDs(order2, set1)

	nodeInv := invert(nodeRen)

	renames := make(map[string]string)
	usedNew := make(map[string]bool)

	for _, oldID := range u1 {
		coords1 := g1.Links[oldID]
		if len(coords1) < 2 {
			continue
		}
		from1, to1, hasEnds1 := endpoints(doc1, oldID)
		len1 := geomath.PolylineLengthM(coords1)
		c1, _ := geomath.Centroid(coords1)

		best := ""
		bestScore := 0.0
		for _, newID := range u2 {
			if usedNew[newID] {
				continue
			}
			coords2 := g2.Links[newID]
			if len(coords2) < 2 {
				continue
			}

			endpointOK := false
			if from2, to2, hasEnds2 := endpoints(doc2, newID); hasEnds1 && hasEnds2 {
				mf := mapBack(nodeInv, from2)
				mt := mapBack(nodeInv, to2)
				endpointOK = (mf == from1 && mt == to1) || (mf == to1 && mt == from1)
			}

			len2 := geomath.PolylineLengthM(coords2)
			if !geomath.RatioClose(max(len1, 1e-6), max(len2, 1e-6), linkLengthTol) && !endpointOK {
				continue
			}
			c2, _ := geomath.Centroid(coords2)
			dcent := geomath.DistM(c1, c2)
			if dcent > linkCentroidEpsM && !endpointOK {
				continue
			}

			score := dcent
			if !endpointOK {
				score += 1000
			}
			if best == "" || score < bestScore {
				best, bestScore = newID, score
			}
		}
		if best != "" {
			renames[oldID] = best
			usedNew[best] = true
		}
	}
	return renames
}

// matchSubcatchments pairs unmatched polygon-bearing subcatchments whose
// bounding-box areas agree within 10% and centroids within
// subCentroidEpsM, closest first per old id, input order.
func matchSubcatchments(doc1, doc2 *inp.Document, g1, g2 *inp.Geometry) map[string]string {
	order1, set1 := sectionIDs(doc1, []string{"SUBCATCHMENTS"})
	order2, set2 := sectionIDs(doc2, []string{"SUBCATCHMENTS"})
	u1 := uniqueIDs(order1, set2)
	u2 := uniqueIDs(order2, set1)

	renames := make(map[string]string)
	usedNew := make(map[string]bool)

	for _, oldID := range u1 {
		pts1 := g1.RingPoints(oldID)
		if len(pts1) < 3 {
			continue
		}
		c1, _ := geomath.Centroid(pts1)
		a1 := geomath.BBoxAreaM2(pts1)
		if a1 == 0 {
			a1 = 1
		}

		best := ""
		bestD := 0.0
		for _, newID := range u2 {
			if usedNew[newID] {
				continue
			}
			pts2 := g2.RingPoints(newID)
			if len(pts2) < 3 {
				continue
			}
			a2 := geomath.BBoxAreaM2(pts2)
			if a2 == 0 {
				a2 = 1
			}
			if !geomath.RatioClose(a1, a2, subAreaTol) {
				continue
			}
			c2, _ := geomath.Centroid(pts2)
			d := geomath.DistM(c1, c2)
			if d > subCentroidEpsM {
				continue
			}
			if best == "" || d < bestD {
				best, bestD = newID, d
			}
		}
		if best != "" {
			renames[oldID] = best
			usedNew[best] = true
		}
	}
	return renames
}

func invert(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

func mapBack(inv map[string]string, id string) string {
	if old, ok := inv[id]; ok {
		return old
	}
	return id
}

// applyRenames rewrites the normalized copy: rows rekeyed to old ids,
// link endpoint fields remapped, tags and geometry keys moved.
func applyRenames(doc *inp.Document, g *inp.Geometry, nodeRen, linkRen, subRen map[string]string) {
	nodeInv := invert(nodeRen)
	linkInv := invert(linkRen)
	subInv := invert(subRen)

	for _, sec := range NodeSections {
		rekeySection(doc, sec, nodeInv)
	}
	for _, sec := range LinkSections {
		rows := doc.Sections[sec]
		for id, vals := range rows {
			if len(vals) >= 2 {
				vals[0] = mapBack(nodeInv, vals[0])
				vals[1] = mapBack(nodeInv, vals[1])
				rows[id] = vals
			}
		}
		rekeySection(doc, sec, linkInv)
	}
	rekeySection(doc, "SUBCATCHMENTS", subInv)

	for _, inv := range []map[string]string{nodeInv, linkInv, subInv} {
		for newID, oldID := range inv {
			if tag, ok := doc.Tags[newID]; ok {
				if _, exists := doc.Tags[oldID]; !exists {
					doc.Tags[oldID] = tag
					delete(doc.Tags, newID)
				}
			}
		}
	}

	for newID, oldID := range nodeInv {
		if p, ok := g.Nodes[newID]; ok {
			if _, exists := g.Nodes[oldID]; !exists {
				g.Nodes[oldID] = p
				delete(g.Nodes, newID)
			}
		}
	}
	for newID, oldID := range linkInv {
		if pts, ok := g.Links[newID]; ok {
			if _, exists := g.Links[oldID]; !exists {
				g.Links[oldID] = pts
				delete(g.Links, newID)
			}
		}
	}
	for newID, oldID := range subInv {
		if rings, ok := g.Polygons[newID]; ok {
			if _, exists := g.Polygons[oldID]; !exists {
				g.Polygons[oldID] = rings
				delete(g.Polygons, newID)
			}
		}
	}
}

// rekeySection moves rows from new ids to old ids and fixes the
// section's input-order record.
func rekeySection(doc *inp.Document, sec string, inv map[string]string) {
	rows, ok := doc.Sections[sec]
	if !ok {
		return
	}
	for newID, oldID := range inv {
		vals, exists := rows[newID]
		if !exists {
			continue
		}
		if _, taken := rows[oldID]; taken {
			continue
		}
		rows[oldID] = vals
		delete(rows, newID)
		for i, id := range doc.Order[sec] {
			if id == newID {
				doc.Order[sec][i] = oldID
				break
			}
		}
	}
}

// groupBySection keys each rename by the section its old id occupied in
// the first file.
func groupBySection(doc1 *inp.Document, nodeRen, linkRen, subRen map[string]string) RenameMap {
	out := make(RenameMap)
	add := func(sec, oldID, newID string) {
		if out[sec] == nil {
			out[sec] = make(map[string]string)
		}
		out[sec][oldID] = newID
	}
	for oldID, newID := range nodeRen {
		for _, sec := range NodeSections {
			if _, ok := doc1.Sections[sec][oldID]; ok {
				add(sec, oldID, newID)
				break
			}
		}
	}
	for oldID, newID := range linkRen {
		for _, sec := range LinkSections {
			if _, ok := doc1.Sections[sec][oldID]; ok {
				add(sec, oldID, newID)
				break
			}
		}
	}
	for oldID, newID := range subRen {
		add("SUBCATCHMENTS", oldID, newID)
	}
	return out
}
