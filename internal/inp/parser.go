package inp

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"inpdiff/internal/geomath"
)

var (
	sectionRe   = regexp.MustCompile(`^\s*\[([^\]]+)\]\s*$`)
	headerSplit = regexp.MustCompile(`\s{2,}`)
	wsSplit     = regexp.MustCompile(`\s+`)
)

// hydrographGagesSection is the synthetic side table holding the
// hydrograph -> rain gage mapping parsed out of [HYDROGRAPHS].
const hydrographGagesSection = "HYDROGRAPH_GAGES"

// Parser turns raw model text into a Document. The zero value is usable;
// NewParser attaches a logger.
type Parser struct {
	logger *zap.Logger
}

// NewParser returns a Parser logging through the given logger. A nil
// logger is replaced with a no-op one.
func NewParser(logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Parser{logger: logger}
}

// Parse is a convenience wrapper around NewParser(nil).Parse.
func Parse(text string) *Document {
	return NewParser(nil).Parse(text)
}

// curveAccum collects CURVES points for one id; rows without a type
// token inherit the last seen type for that id.
type curveAccum struct {
	typ    string
	points []string
}

// parseState carries the per-pass accumulators. Section handlers are
// dispatched through a closed table built once per pass, with a generic
// fallback for sections without a special grammar.
type parseState struct {
	doc *Document

	current     string
	afterHeader bool

	// CONTROLS open-rule accumulator.
	ruleID    string
	ruleLines []string

	curves     map[string]*curveAccum
	curveOrder []string

	vertices    map[string][]string
	vertexOrder []string

	polygons     map[string]*ringAccumulator
	polygonOrder []string
}

// rowHandler consumes one tokenized data line of its section.
type rowHandler func(st *parseState, tokens []string)

// Parse runs the single forward pass plus the post-pass fixups
// (hydrograph gage back-fill, infiltration method swap, accumulator
// finalization). It never fails: unrecognized lines are skipped.
func (p *Parser) Parse(text string) *Document {
	st := &parseState{
		doc:      NewDocument(),
		curves:   make(map[string]*curveAccum),
		vertices: make(map[string][]string),
		polygons: make(map[string]*ringAccumulator),
	}

	handlers := map[string]rowHandler{
		"TAGS":        handleTags,
		"HYDROGRAPHS": handleHydrographs,
		"CURVES":      handleCurves,
		"VERTICES":    handleVertices,
		"POLYGONS":    handlePolygons,
		"OPTIONS":     handleOptions,
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimRight(raw, "\r")
		p.consumeLine(st, line, handlers)
	}
	st.flushRule()

	st.finalizeCurves()
	st.finalizeVertices()
	st.finalizePolygons()
	st.backfillHydrographGages()
	p.applyInfiltrationMethod(st.doc)

	p.logger.Debug("parsed model text",
		zap.Int("sections", len(st.doc.Sections)),
		zap.Int("tags", len(st.doc.Tags)))
	return st.doc
}

func (p *Parser) consumeLine(st *parseState, line string, handlers map[string]rowHandler) {
	doc := st.doc

	if m := sectionRe.FindStringSubmatch(line); m != nil {
		st.flushRule()
		st.current = strings.ToUpper(m[1])
		if _, ok := doc.Headers[st.current]; !ok {
			h := DefaultHeader(st.current)
			if h == nil {
				h = []string{}
			}
			doc.Headers[st.current] = h
		}
		if _, ok := doc.Descriptions[st.current]; !ok {
			doc.Descriptions[st.current] = ""
		}
		st.afterHeader = true
		return
	}
	if st.current == "" {
		return
	}

	trimmed := strings.TrimSpace(line)
	lstripped := strings.TrimLeft(line, " \t")

	// Inside an open CONTROLS rule every line is consumed verbatim until
	// the next RULE line or section end.
	if st.current == "CONTROLS" && st.ruleID != "" {
		if rest, ok := ruleRemainder(trimmed); ok {
			st.flushRule()
			st.ruleID = rest
			return
		}
		st.ruleLines = append(st.ruleLines, line)
		return
	}

	// Section description: first single-; comment after the section open.
	if st.afterHeader {
		if isComment(lstripped) {
			doc.Descriptions[st.current] = strings.TrimSpace(strings.TrimLeft(lstripped, "; "))
			st.afterHeader = false
			return
		}
		if trimmed != "" {
			st.afterHeader = false
		}
	}

	if trimmed == "" {
		return
	}
	if isComment(lstripped) {
		return
	}

	// ;; lines that are not pure dashes define an explicit header
	// override, applied only when no header exists yet.
	if strings.HasPrefix(trimmed, ";;") {
		content := strings.TrimSpace(trimmed[2:])
		if content != "" && !isDashRun(content) && len(doc.Headers[st.current]) == 0 {
			doc.Headers[st.current] = headerSplit.Split(content, -1)
		}
		return
	}

	if st.current == "CONTROLS" {
		if rest, ok := ruleRemainder(trimmed); ok {
			st.ruleID = rest
			return
		}
		return
	}
	if st.current == "TITLE" {
		rows := doc.section("TITLE")
		if _, seen := rows[TitleKey]; !seen {
			doc.Order["TITLE"] = append(doc.Order["TITLE"], TitleKey)
		}
		rows[TitleKey] = append(rows[TitleKey], trimmed)
		return
	}

	tokens := wsSplit.Split(trimmed, -1)
	if len(tokens) == 0 {
		return
	}
	if h, ok := handlers[st.current]; ok {
		h(st, tokens)
		return
	}
	st.doc.setRow(st.current, tokens[0], tokens[1:])
}

// isComment reports a single-; comment (not the ;; header form).
func isComment(lstripped string) bool {
	return strings.HasPrefix(lstripped, ";") && !strings.HasPrefix(lstripped, ";;")
}

func isDashRun(s string) bool {
	for _, c := range s {
		if c != '-' && c != ' ' {
			return false
		}
	}
	return true
}

// ruleRemainder matches a CONTROLS "RULE <name>" opener, case-insensitively.
func ruleRemainder(trimmed string) (string, bool) {
	if len(trimmed) < 5 || !strings.EqualFold(trimmed[:5], "RULE ") {
		return "", false
	}
	return strings.TrimSpace(trimmed[5:]), true
}

// flushRule closes the open CONTROLS rule, newline-joining its body with
// trailing whitespace trimmed. Re-opened rule names accumulate.
func (st *parseState) flushRule() {
	if st.ruleID == "" {
		return
	}
	body := strings.TrimRight(strings.Join(st.ruleLines, "\n"), " \t\n\r")
	rows := st.doc.section("CONTROLS")
	if prev, ok := rows[st.ruleID]; ok && len(prev) > 0 {
		rows[st.ruleID] = []string{prev[0] + "\n" + body}
	} else {
		st.doc.setRow("CONTROLS", st.ruleID, []string{body})
	}
	st.ruleID = ""
	st.ruleLines = nil
}

func handleTags(st *parseState, tokens []string) {
	if len(tokens) >= 3 {
		st.doc.Tags[tokens[1]] = strings.Join(tokens[2:], " ")
	}
}

func handleHydrographs(st *parseState, tokens []string) {
	doc := st.doc
	switch {
	case len(tokens) == 2:
		// Hydrograph -> rain gage mapping, kept in a side table.
		if _, ok := doc.Headers[hydrographGagesSection]; !ok {
			doc.Headers[hydrographGagesSection] = []string{"Hydrograph", "Gage"}
		}
		if _, ok := doc.Descriptions[hydrographGagesSection]; !ok {
			doc.Descriptions[hydrographGagesSection] = "Hydrograph to Rain Gage Mapping"
		}
		doc.setRow(hydrographGagesSection, tokens[0], []string{tokens[1]})
	case len(tokens) >= 9:
		key := fmt.Sprintf("%s %s %s", tokens[0], tokens[1], tokens[2])
		doc.setRow("HYDROGRAPHS", key, tokens[3:9])
		doc.Headers["HYDROGRAPHS"] = []string{
			"Hydrograph", "Month", "Response",
			"R", "T", "K", "Dmax", "Drecov", "Dinit",
		}
	}
}

func handleCurves(st *parseState, tokens []string) {
	var id, typ, x, y string
	switch {
	case len(tokens) >= 4:
		id, typ, x, y = tokens[0], tokens[1], tokens[2], tokens[3]
	case len(tokens) == 3:
		id, x, y = tokens[0], tokens[1], tokens[2]
	default:
		return
	}
	acc, ok := st.curves[id]
	if !ok {
		acc = &curveAccum{}
		st.curves[id] = acc
		st.curveOrder = append(st.curveOrder, id)
	}
	if typ != "" {
		acc.typ = typ
	}
	acc.points = append(acc.points, x+" "+y)
}

func handleVertices(st *parseState, tokens []string) {
	if len(tokens) < 3 {
		return
	}
	id := tokens[0]
	if _, ok := st.vertices[id]; !ok {
		st.vertexOrder = append(st.vertexOrder, id)
	}
	st.vertices[id] = append(st.vertices[id], tokens[1]+" "+tokens[2])
}

func handlePolygons(st *parseState, tokens []string) {
	if len(tokens) < 3 {
		return
	}
	p, ok := parsePoint(tokens[1], tokens[2])
	if !ok {
		return
	}
	id := tokens[0]
	acc, exists := st.polygons[id]
	if !exists {
		acc = &ringAccumulator{}
		st.polygons[id] = acc
		st.polygonOrder = append(st.polygonOrder, id)
	}
	acc.add(p)
}

func handleOptions(st *parseState, tokens []string) {
	st.doc.setRow("OPTIONS", tokens[0], []string{strings.Join(tokens[1:], " ")})
}

func parsePoint(xs, ys string) (geomath.Point, bool) {
	x, err1 := strconv.ParseFloat(xs, 64)
	y, err2 := strconv.ParseFloat(ys, 64)
	if err1 != nil || err2 != nil {
		return geomath.Point{}, false
	}
	return geomath.Point{X: x, Y: y}, true
}

func (st *parseState) finalizeCurves() {
	for _, id := range st.curveOrder {
		acc := st.curves[id]
		st.doc.setRow("CURVES", id, []string{acc.typ, strings.Join(acc.points, "; ")})
	}
}

func (st *parseState) finalizeVertices() {
	for _, id := range st.vertexOrder {
		st.doc.setRow("VERTICES", id, []string{strings.Join(st.vertices[id], "; ")})
	}
}

func (st *parseState) finalizePolygons() {
	for _, id := range st.polygonOrder {
		var rings []string
		for _, ring := range st.polygons[id].finish() {
			rings = append(rings, encodeRing(ring))
		}
		st.doc.setRow("POLYGONS", id, rings)
	}
}

func encodeRing(ring []geomath.Point) string {
	parts := make([]string, 0, len(ring))
	for _, p := range ring {
		parts = append(parts, formatCoord(p.X)+" "+formatCoord(p.Y))
	}
	return strings.Join(parts, "; ")
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// backfillHydrographGages appends the mapped rain gage to every
// hydrograph parameter row once the mapping table is complete.
func (st *parseState) backfillHydrographGages() {
	gages, ok := st.doc.Sections[hydrographGagesSection]
	if !ok || len(gages) == 0 {
		return
	}
	params, ok := st.doc.Sections["HYDROGRAPHS"]
	if !ok {
		return
	}
	for key, vals := range params {
		hydro, _, _ := strings.Cut(key, " ")
		gage := ""
		if g, found := gages[hydro]; found && len(g) > 0 {
			gage = g[0]
		}
		params[key] = append(vals, gage)
	}
	hdr := st.doc.Headers["HYDROGRAPHS"]
	if len(hdr) > 0 && hdr[len(hdr)-1] != "Gage" {
		st.doc.Headers["HYDROGRAPHS"] = append(hdr, "Gage")
	}
}

// InfiltrationMethod returns the effective infiltration method named by
// OPTIONS, upper-cased, or "HORTON" when unset.
func InfiltrationMethod(doc *Document) string {
	opts, ok := doc.Sections["OPTIONS"]
	if !ok {
		return "HORTON"
	}
	vals, ok := opts["INFILTRATION"]
	if !ok || len(vals) == 0 || strings.TrimSpace(vals[0]) == "" {
		return "HORTON"
	}
	return strings.ToUpper(strings.TrimSpace(vals[0]))
}

// applyInfiltrationMethod swaps the INFILTRATION header set and truncates
// rows to three value fields when OPTIONS names an alternate method.
// Horton rows are kept as parsed.
func (p *Parser) applyInfiltrationMethod(doc *Document) {
	method := InfiltrationMethod(doc)
	alt, ok := infiltrationAltHeaders[method]
	if !ok {
		return
	}
	doc.Headers["INFILTRATION"] = append([]string(nil), alt...)
	rows, ok := doc.Sections["INFILTRATION"]
	if !ok {
		return
	}
	for id, vals := range rows {
		if len(vals) > 3 {
			rows[id] = vals[:3]
		}
	}
	p.logger.Debug("applied alternate infiltration layout", zap.String("method", method))
}
