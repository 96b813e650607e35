// Package compare computes per-section differences between two
// normalized Documents, derives numeric deltas for engineering fields,
// and filters changes against caller-supplied tolerances.
package compare

import (
	"sort"
	"strconv"

	"go.uber.org/zap"

	"inpdiff/internal/inp"
	"inpdiff/internal/reconcile"
)

// Change is one changed row: both field sequences plus derived deltas.
type Change struct {
	Old        []string
	New        []string
	DiffValues map[string]float64
}

// DiffSection holds the differences for one section. The three id sets
// are disjoint.
type DiffSection struct {
	Added   []string
	Removed []string
	Changed map[string]Change
}

// Engine compares two post-reconciliation Documents. OnSection, when
// set, is invoked once per section as it is diffed.
type Engine struct {
	Logger    *zap.Logger
	OnSection func(section string)
}

// NewEngine returns an Engine with a no-op logger when nil is passed.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{Logger: logger}
}

// Compare walks every section present in either document and reports
// added (only in doc2), removed (only in doc1), and changed (both
// present, unequal field sequences; exact string comparison). The second
// return is the effective header per differing section, preferring the
// first file's.
func (e *Engine) Compare(doc1, doc2 *inp.Document) (map[string]*DiffSection, map[string][]string) {
	names := map[string]bool{}
	for sec := range doc1.Sections {
		names[sec] = true
	}
	for sec := range doc2.Sections {
		names[sec] = true
	}
	order := make([]string, 0, len(names))
	for sec := range names {
		order = append(order, sec)
	}
	sort.Strings(order)

	diffs := make(map[string]*DiffSection)
	headers := make(map[string][]string)
	for _, sec := range order {
		if e.OnSection != nil {
			e.OnSection(sec)
		}
		recs1 := doc1.Sections[sec]
		recs2 := doc2.Sections[sec]

		d := &DiffSection{Changed: make(map[string]Change)}
		for id := range recs2 {
			if _, ok := recs1[id]; !ok {
				d.Added = append(d.Added, id)
			}
		}
		for id, vals1 := range recs1 {
			vals2, ok := recs2[id]
			if !ok {
				d.Removed = append(d.Removed, id)
				continue
			}
			if !stringsEqual(vals1, vals2) {
				d.Changed[id] = Change{
					Old:        vals1,
					New:        vals2,
					DiffValues: FieldDiffs(sec, vals1, vals2),
				}
			}
		}
		sort.Strings(d.Added)
		sort.Strings(d.Removed)

		if len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Changed) > 0 {
			diffs[sec] = d
			headers[sec] = effectiveHeader(doc1, doc2, sec)
		}
	}
	e.Logger.Debug("compared documents", zap.Int("differing_sections", len(diffs)))
	return diffs, headers
}

// ForceRenamedChanged moves every renamed element into its section's
// changed set regardless of field equality: a rename is always a
// semantic change. Sections absent from the diff gain an entry.
func ForceRenamedChanged(diffs map[string]*DiffSection, headers map[string][]string,
	renames reconcile.RenameMap, doc1, doc2 *inp.Document) {
	for sec, mapping := range renames {
		d, ok := diffs[sec]
		if !ok {
			d = &DiffSection{Changed: make(map[string]Change)}
			diffs[sec] = d
			headers[sec] = effectiveHeader(doc1, doc2, sec)
		}
		for oldID := range mapping {
			if _, present := d.Changed[oldID]; present {
				continue
			}
			v1 := doc1.Sections[sec][oldID]
			v2 := doc2.Sections[sec][oldID]
			d.Changed[oldID] = Change{
				Old:        v1,
				New:        v2,
				DiffValues: FieldDiffs(sec, v1, v2),
			}
		}
	}
}

func effectiveHeader(doc1, doc2 *inp.Document, sec string) []string {
	if h := doc1.Headers[sec]; len(h) > 0 {
		return append([]string(nil), h...)
	}
	return append([]string(nil), doc2.Headers[sec]...)
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Value field indices within conduit rows (id excluded).
const (
	conduitLengthIdx    = 2
	conduitRoughnessIdx = 3
	conduitInOffsetIdx  = 4
	conduitOutOffsetIdx = 5
)

// Value field indices within junction-like rows.
const (
	junctionInvertIdx   = 0
	junctionMaxDepthIdx = 1
)

func numAt(vals []string, idx int) (float64, bool) {
	if idx >= len(vals) {
		return 0, false
	}
	v, err := strconv.ParseFloat(vals[idx], 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// Slope computes (inOffset - outOffset) / length, returning 0 when the
// length is non-positive. The second return is false when any input is
// non-numeric or missing.
func Slope(vals []string) (float64, bool) {
	length, ok1 := numAt(vals, conduitLengthIdx)
	in, ok2 := numAt(vals, conduitInOffsetIdx)
	out, ok3 := numAt(vals, conduitOutOffsetIdx)
	if !ok1 || !ok2 || !ok3 {
		return 0, false
	}
	if length <= 0 {
		return 0, true
	}
	return (in - out) / length, true
}

// FieldDiffs derives numeric deltas for a changed row. Conduit-like
// sections get length/roughness/offset deltas plus a slope delta;
// junction-like sections get invert and max-depth deltas plus both rim
// elevations and their delta. Non-numeric inputs are simply omitted.
func FieldDiffs(section string, oldVals, newVals []string) map[string]float64 {
	diffs := make(map[string]float64)
	switch section {
	case "CONDUITS":
		for name, idx := range map[string]int{
			"Length":    conduitLengthIdx,
			"Roughness": conduitRoughnessIdx,
			"InOffset":  conduitInOffsetIdx,
			"OutOffset": conduitOutOffsetIdx,
		} {
			ov, ok1 := numAt(oldVals, idx)
			nv, ok2 := numAt(newVals, idx)
			if ok1 && ok2 {
				diffs[name] = nv - ov
			}
		}
		oldSlope, ok1 := Slope(oldVals)
		newSlope, ok2 := Slope(newVals)
		if ok1 {
			diffs["Slope_old"] = oldSlope
		}
		if ok2 {
			diffs["Slope_new"] = newSlope
		}
		if ok1 && ok2 {
			diffs["Slope_diff"] = newSlope - oldSlope
		}

	case "JUNCTIONS", "STORAGE":
		oldInv, okOI := numAt(oldVals, junctionInvertIdx)
		newInv, okNI := numAt(newVals, junctionInvertIdx)
		if okOI && okNI {
			diffs["InvertElev"] = newInv - oldInv
		}
		oldDepth, okOD := numAt(oldVals, junctionMaxDepthIdx)
		newDepth, okND := numAt(newVals, junctionMaxDepthIdx)
		if okOD && okND {
			diffs["MaxDepth"] = newDepth - oldDepth
		}
		if okOI && okOD {
			diffs["RimElevation_old"] = oldInv + oldDepth
		}
		if okNI && okND {
			diffs["RimElevation_new"] = newInv + newDepth
		}
		if okOI && okOD && okNI && okND {
			diffs["RimElevation_diff"] = (newInv + newDepth) - (oldInv + oldDepth)
		}
	}
	if len(diffs) == 0 {
		return nil
	}
	return diffs
}
