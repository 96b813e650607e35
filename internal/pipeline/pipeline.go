// Package pipeline wires the full comparison run: decode both payloads,
// parse text and geometry, reconcile ids spatially, diff, filter by
// tolerance, and assemble the exportable result.
package pipeline

import (
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"inpdiff/internal/compare"
	"inpdiff/internal/inp"
	"inpdiff/internal/reconcile"
)

// Stage names passed to the progress callback, in pipeline order. The
// diff stage fires once per section with the section name appended.
const (
	StageParseFile1 = "parse file 1"
	StageParseFile2 = "parse file 2"
	StageGeometry   = "extract geometry"
	StageReconcile  = "reconcile"
	StageDiff       = "diff"
	StageFilter     = "filter tolerances"
	StageAssemble   = "assemble output"
)

// ProgressFunc receives stage milestones. Calls are synchronous; a
// panicking callback is recovered and logged, never aborting the run.
type ProgressFunc func(stage, detail string)

// Options configures one comparison run. All fields are optional.
type Options struct {
	Tolerances compare.Tolerances
	Progress   ProgressFunc
	Logger     *zap.Logger
}

// SummaryRow is one section's counts for the summary panel.
type SummaryRow struct {
	Section      string `json:"Section"`
	AddedCount   int    `json:"AddedCount"`
	RemovedCount int    `json:"RemovedCount"`
	ChangedCount int    `json:"ChangedCount"`
}

// ChangedRow carries both display value lists plus derived deltas.
type ChangedRow struct {
	Values     [2][]string        `json:"values"`
	DiffValues map[string]float64 `json:"diff_values,omitempty"`
}

// SectionDiff is the exportable diff of one section. Added rows carry
// file-2 values, removed rows file-1 values.
type SectionDiff struct {
	Added   map[string][]string   `json:"added"`
	Removed map[string][]string   `json:"removed"`
	Changed map[string]ChangedRow `json:"changed"`
}

// GeometryOut bundles both sides' geometry under a declared CRS.
type GeometryOut struct {
	CRS    string                         `json:"crs"`
	Nodes1 map[string]geomPoint           `json:"nodes1"`
	Links1 map[string][]geomPoint         `json:"links1"`
	Subs1  map[string][][]geomPoint       `json:"subs1"`
	Nodes2 map[string]geomPoint           `json:"nodes2"`
	Links2 map[string][]geomPoint         `json:"links2"`
	Subs2  map[string][][]geomPoint       `json:"subs2"`
}

type geomPoint = [2]float64

// Hydrographs exposes both sides' raw hydrograph rows for drill-down.
type Hydrographs struct {
	File1 map[string][]string `json:"file1"`
	File2 map[string][]string `json:"file2"`
}

// Result is the assembled comparison output.
type Result struct {
	RunID      string                         `json:"run_id"`
	Summary    []SummaryRow                   `json:"summary"`
	Diffs      map[string]*SectionDiff        `json:"diffs"`
	Headers    map[string][]string            `json:"headers"`
	Renames    reconcile.RenameMap            `json:"renames"`
	Geometry   GeometryOut                    `json:"geometry"`
	Sections1  map[string]map[string][]string `json:"sections1"`
	Sections2  map[string]map[string][]string `json:"sections2"`
	Hydro      Hydrographs                    `json:"hydrographs"`
	Tolerances compare.Tolerances             `json:"tolerances"`
	Warnings   []string                       `json:"warnings"`
}

// Raw XY is feet in a state-plane grid; consumers reproject downstream.
const mapSourceCRS = "EPSG:3735"

// Run executes one full comparison. Each payload may be a string or a
// []byte; anything else is a hard error. Malformed content never fails:
// the parsers are best-effort and structural problems surface as
// warnings in the result.
func Run(payload1, payload2 any, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	progress := safeProgress(opts.Progress, logger)

	text1, err := inp.DecodePayload(payload1)
	if err != nil {
		return nil, err
	}
	text2, err := inp.DecodePayload(payload2)
	if err != nil {
		return nil, err
	}

	parser := inp.NewParser(logger)

	doc1 := parser.Parse(text1)
	progress(StageParseFile1, "")
	doc2 := parser.Parse(text2)
	progress(StageParseFile2, "")

	g1 := parser.ExtractGeometry(text1)
	g2 := parser.ExtractGeometry(text2)
	progress(StageGeometry, "")

	var warnings []string
	m1 := inp.InfiltrationMethod(doc1)
	m2 := inp.InfiltrationMethod(doc2)
	if m1 != m2 {
		warnings = append(warnings,
			"infiltration methods differ ("+m1+" vs "+m2+"); INFILTRATION section not compared")
		delete(doc1.Sections, "INFILTRATION")
		delete(doc2.Sections, "INFILTRATION")
		logger.Warn("infiltration method mismatch",
			zap.String("file1", m1), zap.String("file2", m2))
	}

	rec := reconcile.Reconcile(doc1, doc2, g1, g2, logger)
	progress(StageReconcile, "")

	engine := compare.NewEngine(logger)
	engine.OnSection = func(sec string) { progress(StageDiff, sec) }
	diffs, headers := engine.Compare(doc1, rec.Doc2)
	compare.ForceRenamedChanged(diffs, headers, rec.Renames, doc1, rec.Doc2)

	compare.FilterByTolerance(diffs, opts.Tolerances, rec.Renames, logger)
	progress(StageFilter, "")

	res := assemble(doc1, rec.Doc2, g1, rec.Geom2, diffs, headers, rec.Renames, opts.Tolerances, warnings)
	progress(StageAssemble, "")
	return res, nil
}

// safeProgress wraps the callback so a panic inside it cannot abort the
// pipeline.
func safeProgress(fn ProgressFunc, logger *zap.Logger) ProgressFunc {
	if fn == nil {
		return func(string, string) {}
	}
	return func(stage, detail string) {
		defer func() {
			if r := recover(); r != nil {
				logger.Warn("progress callback panicked",
					zap.String("stage", stage), zap.Any("panic", r))
			}
		}()
		fn(stage, detail)
	}
}

func assemble(doc1, doc2 *inp.Document, g1, g2 *inp.Geometry,
	diffs map[string]*compare.DiffSection, headers map[string][]string,
	renames reconcile.RenameMap, tol compare.Tolerances, warnings []string) *Result {

	// Sections with any rename gain a "New Name" column right after the
	// id column. Added/removed rows pad it with "NA"; changed rows show
	// the new id identically on both sides so viewers draw no diff arrow.
	hasNewName := make(map[string]bool)
	for sec := range diffs {
		if len(renames[sec]) > 0 {
			hasNewName[sec] = true
			hdr := headers[sec]
			if !containsCol(hdr, "New Name") {
				out := make([]string, 0, len(hdr)+1)
				if len(hdr) > 0 {
					out = append(out, hdr[0])
					out = append(out, "New Name")
					out = append(out, hdr[1:]...)
				} else {
					out = append(out, "New Name")
				}
				headers[sec] = out
			}
		}
	}

	outDiffs := make(map[string]*SectionDiff, len(diffs))
	summary := make([]SummaryRow, 0, len(diffs))
	for sec, d := range diffs {
		sd := &SectionDiff{
			Added:   make(map[string][]string, len(d.Added)),
			Removed: make(map[string][]string, len(d.Removed)),
			Changed: make(map[string]ChangedRow, len(d.Changed)),
		}
		pad := hasNewName[sec]
		for _, id := range d.Added {
			sd.Added[id] = padRow(doc2.Sections[sec][id], pad, "NA")
		}
		for _, id := range d.Removed {
			sd.Removed[id] = padRow(doc1.Sections[sec][id], pad, "NA")
		}
		for id, ch := range d.Changed {
			oldVals, newVals := ch.Old, ch.New
			if pad {
				newName := "NA"
				if mapped, ok := renames[sec][id]; ok {
					newName = mapped
				}
				oldVals = padRow(oldVals, true, newName)
				newVals = padRow(newVals, true, newName)
			} else {
				oldVals = append([]string(nil), oldVals...)
				newVals = append([]string(nil), newVals...)
			}
			sd.Changed[id] = ChangedRow{
				Values:     [2][]string{oldVals, newVals},
				DiffValues: ch.DiffValues,
			}
		}
		outDiffs[sec] = sd
		summary = append(summary, SummaryRow{
			Section:      sec,
			AddedCount:   len(d.Added),
			RemovedCount: len(d.Removed),
			ChangedCount: len(d.Changed),
		})
	}
	sortSummary(summary)

	return &Result{
		RunID:   uuid.NewString(),
		Summary: summary,
		Diffs:   outDiffs,
		Headers: headers,
		Renames: renames,
		Geometry: GeometryOut{
			CRS:    mapSourceCRS,
			Nodes1: pointMap(g1), Links1: lineMap(g1), Subs1: ringMap(g1),
			Nodes2: pointMap(g2), Links2: lineMap(g2), Subs2: ringMap(g2),
		},
		Sections1: doc1.Sections,
		Sections2: doc2.Sections,
		Hydro: Hydrographs{
			File1: hydrographRows(doc1),
			File2: hydrographRows(doc2),
		},
		Tolerances: tol,
		Warnings:   warnings,
	}
}

func containsCol(hdr []string, col string) bool {
	for _, h := range hdr {
		if h == col {
			return true
		}
	}
	return false
}

// padRow copies vals, optionally prepending the new-name cell.
func padRow(vals []string, pad bool, cell string) []string {
	if !pad {
		return append([]string(nil), vals...)
	}
	out := make([]string, 0, len(vals)+1)
	out = append(out, cell)
	return append(out, vals...)
}

func sortSummary(rows []SummaryRow) {
	sort.Slice(rows, func(i, j int) bool { return rows[i].Section < rows[j].Section })
}

func hydrographRows(doc *inp.Document) map[string][]string {
	rows := doc.Sections["HYDROGRAPHS"]
	if rows == nil {
		return map[string][]string{}
	}
	return rows
}

func pointMap(g *inp.Geometry) map[string]geomPoint {
	out := make(map[string]geomPoint, len(g.Nodes))
	for id, p := range g.Nodes {
		out[id] = geomPoint{p.X, p.Y}
	}
	return out
}

func lineMap(g *inp.Geometry) map[string][]geomPoint {
	out := make(map[string][]geomPoint, len(g.Links))
	for id, pts := range g.Links {
		line := make([]geomPoint, len(pts))
		for i, p := range pts {
			line[i] = geomPoint{p.X, p.Y}
		}
		out[id] = line
	}
	return out
}

func ringMap(g *inp.Geometry) map[string][][]geomPoint {
	out := make(map[string][][]geomPoint, len(g.Polygons))
	for id, rings := range g.Polygons {
		rr := make([][]geomPoint, len(rings))
		for i, ring := range rings {
			line := make([]geomPoint, len(ring))
			for j, p := range ring {
				line[j] = geomPoint{p.X, p.Y}
			}
			rr[i] = line
		}
		out[id] = rr
	}
	return out
}
