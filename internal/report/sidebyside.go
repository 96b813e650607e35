package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Numeric-tolerant equality bounds for cell comparison.
const (
	absTol = 1e-6
	relTol = 1e-6
)

// Row statuses in a side-by-side table.
const (
	StatusOnlyInA = "ONLY_IN_A"
	StatusOnlyInB = "ONLY_IN_B"
	StatusChanged = "CHANGED"
	StatusSame    = "SAME"
)

// SectionSideBySide joins one section's rows from reports A and B.
type SectionSideBySide struct {
	Section    string              `json:"section"`
	IDCol      string              `json:"id_col"`
	OutColumns []string            `json:"out_columns"`
	Rows       []map[string]string `json:"rows"`
	Counts     SideBySideCounts    `json:"counts"`
}

// SideBySideCounts summarizes one joined section.
type SideBySideCounts struct {
	Rows    int `json:"rows"`
	OnlyInA int `json:"only_in_a"`
	OnlyInB int `json:"only_in_b"`
	Changed int `json:"changed"`
	Same    int `json:"same"`
}

// BlockPair carries both sides of an opaque text block.
type BlockPair struct {
	A string `json:"a,omitempty"`
	B string `json:"b,omitempty"`
}

// SideBySideResult is the full comparison of two parsed reports.
type SideBySideResult struct {
	Blocks   map[string]BlockPair `json:"blocks_side_by_side"`
	Sections []SectionSideBySide  `json:"sections"`
}

// Compare joins two parsed reports section by section.
func Compare(a, b *ParseResult, logger *zap.Logger) *SideBySideResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	out := &SideBySideResult{Blocks: make(map[string]BlockPair)}

	blockNames := map[string]bool{}
	for name := range a.Blocks {
		blockNames[name] = true
	}
	for name := range b.Blocks {
		blockNames[name] = true
	}
	for name := range blockNames {
		out.Blocks[name] = BlockPair{A: a.Blocks[name], B: b.Blocks[name]}
	}

	sectionNames := map[string]bool{}
	for name := range a.Sections {
		sectionNames[name] = true
	}
	for name := range b.Sections {
		sectionNames[name] = true
	}
	ordered := make([]string, 0, len(sectionNames))
	for name := range sectionNames {
		ordered = append(ordered, name)
	}
	sort.Strings(ordered)

	for _, name := range ordered {
		s := buildSectionSideBySide(a.Sections[name], b.Sections[name], name)
		out.Sections = append(out.Sections, s)
		logger.Debug("joined report section",
			zap.String("section", name),
			zap.Int("rows", s.Counts.Rows),
			zap.Int("changed", s.Counts.Changed))
	}
	return out
}

// CompareTexts parses both texts and joins them.
func CompareTexts(aText, bText string, logger *zap.Logger) *SideBySideResult {
	return Compare(Parse(aText, logger), Parse(bText, logger), logger)
}

// valuesEqual applies numeric-tolerant equality when both cells parse as
// numbers, exact trimmed-string equality otherwise.
func valuesEqual(va, vb string) bool {
	fa, okA := asNumber(va)
	fb, okB := asNumber(vb)
	if okA && okB {
		diff := math.Abs(fa - fb)
		tol := math.Max(absTol, relTol*math.Max(math.Abs(fa), math.Abs(fb)))
		return diff <= tol
	}
	return strings.TrimSpace(va) == strings.TrimSpace(vb)
}

func buildSectionSideBySide(sa, sb *ParsedSection, name string) SectionSideBySide {
	var idCol string
	var cols []string
	switch {
	case sa != nil:
		idCol, cols = sa.IDCol, sa.Columns
	case sb != nil:
		idCol, cols = sb.IDCol, sb.Columns
	default:
		spec := SectionSpecs[name]
		idCol, cols = spec.IDCol, spec.Columns
	}

	var baseCols []string
	for _, c := range cols {
		if c != idCol {
			baseCols = append(baseCols, c)
		}
	}

	metric, hasMetric := Metrics[name]

	outCols := []string{idCol}
	for _, c := range baseCols {
		outCols = append(outCols, c+" (A)")
	}
	for _, c := range baseCols {
		outCols = append(outCols, c+" (B)")
	}
	outCols = append(outCols, "Status")
	if hasMetric {
		outCols = append(outCols, metric.Dest)
	}

	rowsA := map[string]map[string]string{}
	if sa != nil {
		rowsA = sa.Rows
	}
	rowsB := map[string]map[string]string{}
	if sb != nil {
		rowsB = sb.Rows
	}

	idSet := map[string]bool{}
	for id := range rowsA {
		idSet[id] = true
	}
	for id := range rowsB {
		idSet[id] = true
	}
	ids := make([]string, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	counts := SideBySideCounts{}
	var outRows []map[string]string
	for _, id := range ids {
		ra, hasA := rowsA[id]
		rb, hasB := rowsB[id]
		row := map[string]string{idCol: id}

		switch {
		case !hasA && hasB:
			for _, c := range baseCols {
				row[c+" (A)"] = na
				row[c+" (B)"] = cellOr(rb, c)
			}
			row["Status"] = StatusOnlyInB
			counts.OnlyInB++
		case hasA && !hasB:
			for _, c := range baseCols {
				row[c+" (A)"] = cellOr(ra, c)
				row[c+" (B)"] = na
			}
			row["Status"] = StatusOnlyInA
			counts.OnlyInA++
		default:
			changed := false
			for _, c := range baseCols {
				va := cellOr(ra, c)
				vb := cellOr(rb, c)
				row[c+" (A)"] = va
				row[c+" (B)"] = vb
				if !valuesEqual(va, vb) {
					changed = true
				}
			}
			if changed {
				row["Status"] = StatusChanged
				counts.Changed++
			} else {
				row["Status"] = StatusSame
				counts.Same++
			}
		}

		if hasMetric {
			row[metric.Dest] = computeMetric(metric, ra, rb)
		}
		outRows = append(outRows, row)
	}
	counts.Rows = len(outRows)

	return SectionSideBySide{
		Section:    name,
		IDCol:      idCol,
		OutColumns: outCols,
		Rows:       outRows,
		Counts:     counts,
	}
}

func cellOr(row map[string]string, col string) string {
	if row == nil {
		return na
	}
	if v, ok := row[col]; ok {
		return v
	}
	return na
}

// computeMetric derives the section's configured difference column.
// Missing or non-numeric source cells count as zero, matching the
// join's permissive row handling.
func computeMetric(m MetricSpec, ra, rb map[string]string) string {
	valA := 0.0
	if ra != nil {
		if v, ok := asNumber(cellOr(ra, m.Source)); ok {
			valA = v
		}
	}
	valB := 0.0
	if rb != nil {
		if v, ok := asNumber(cellOr(rb, m.Source)); ok {
			valB = v
		}
	}

	switch m.Mode {
	case MetricAbsolute:
		return fmt.Sprintf("%.4f", valB-valA)
	case MetricPercent:
		switch {
		case math.Abs(valA) > 1e-9:
			return fmt.Sprintf("%.2f", (valB-valA)/math.Abs(valA)*100)
		case math.Abs(valB) > 1e-9:
			return "100.00"
		default:
			return "0.00"
		}
	}
	return ""
}
