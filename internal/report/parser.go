package report

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const na = "NA"

var (
	starsRe   = regexp.MustCompile(`^\s*\*{3,}\s*$`)
	dashRe    = regexp.MustCompile(`^\s*-{5,}\s*$`)
	warningRe = regexp.MustCompile(`(?i)^\s*WARNING\s+\d+:`)
)

// UnparsedRow records a data row whose token count mismatched the
// section schema. The row is still best-effort mapped; this is a
// diagnostic, not an error.
type UnparsedRow struct {
	Raw            string `json:"raw"`
	ExpectedTokens int    `json:"expected_tokens"`
	ActualTokens   int    `json:"actual_tokens"`
}

// ParsedSection is one known report table.
type ParsedSection struct {
	Name     string                       `json:"name"`
	IDCol    string                       `json:"id_col"`
	Columns  []string                     `json:"columns"`
	Schema   []ColumnType                 `json:"schema"`
	Rows     map[string]map[string]string `json:"rows"`
	RowOrder []string                     `json:"row_order"`
	Unparsed []UnparsedRow                `json:"unparsed_rows,omitempty"`
}

// ParseResult is one parsed report: leading header lines, WARNING lines,
// opaque text blocks for unknown sections, and structured tables for
// known ones.
type ParseResult struct {
	HeaderLines []string                  `json:"header_lines"`
	Warnings    []string                  `json:"warnings"`
	Blocks      map[string]string         `json:"blocks"`
	Sections    map[string]*ParsedSection `json:"sections"`
}

// starHeader is one ***-delimited title block.
type starHeader struct {
	title     string
	titleLine int
	bodyStart int
}

// findStarHeaders locates ***/title/*** blocks.
func findStarHeaders(lines []string) []starHeader {
	var out []starHeader
	for i := 0; i+2 < len(lines); {
		if starsRe.MatchString(lines[i]) && starsRe.MatchString(lines[i+2]) {
			out = append(out, starHeader{
				title:     strings.TrimSpace(lines[i+1]),
				titleLine: i + 1,
				bodyStart: i + 3,
			})
			i += 3
			continue
		}
		i++
	}
	return out
}

// Parse reads a full report text.
func Parse(text string, logger *zap.Logger) *ParseResult {
	if logger == nil {
		logger = zap.NewNop()
	}
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	res := &ParseResult{
		Blocks:   make(map[string]string),
		Sections: make(map[string]*ParsedSection),
	}

	// Header-ish lines and WARNINGs run until the first stars divider.
	for _, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		if warningRe.MatchString(line) {
			res.Warnings = append(res.Warnings, strings.TrimSpace(line))
			continue
		}
		if starsRe.MatchString(line) {
			break
		}
		if strings.TrimSpace(line) != "" {
			res.HeaderLines = append(res.HeaderLines, line)
		}
	}

	headers := findStarHeaders(lines)
	for idx, h := range headers {
		end := len(lines)
		if idx+1 < len(headers) {
			end = headers[idx+1].titleLine - 1
		}
		if h.bodyStart > end {
			continue
		}
		body := lines[h.bodyStart:end]

		if spec, known := SectionSpecs[h.title]; known {
			res.Sections[h.title] = parseTableSection(h.title, spec, body)
		} else {
			var cleaned []string
			for _, l := range body {
				cleaned = append(cleaned, strings.TrimRight(l, "\r"))
			}
			block := strings.TrimSpace(strings.Join(cleaned, "\n"))
			if block != "" {
				res.Blocks[h.title] = block
			}
		}
	}

	logger.Debug("parsed report",
		zap.Int("sections", len(res.Sections)),
		zap.Int("blocks", len(res.Blocks)),
		zap.Int("warnings", len(res.Warnings)))
	return res
}

// parseTableSection locates the two ----- divider lines bracketing the
// column header, then reads data rows until a blank line, stars divider,
// or another dash run.
func parseTableSection(name string, spec SectionSpec, lines []string) *ParsedSection {
	ps := &ParsedSection{
		Name:    name,
		IDCol:   spec.IDCol,
		Columns: append([]string(nil), spec.Columns...),
		Schema:  append([]ColumnType(nil), spec.Schema...),
		Rows:    make(map[string]map[string]string),
	}

	i := 0
	for i < len(lines) && !dashRe.MatchString(lines[i]) {
		i++
	}
	if i >= len(lines) {
		return ps
	}
	j := i + 1
	for j < len(lines) && !dashRe.MatchString(lines[j]) {
		j++
	}
	if j >= len(lines) {
		return ps
	}

	exp := expectedTokenCount(spec.Schema)
	for k := j + 1; k < len(lines); k++ {
		line := strings.TrimRight(lines[k], "\r")
		if strings.TrimSpace(line) == "" || starsRe.MatchString(line) {
			break
		}
		if dashRe.MatchString(line) {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) < 2 {
			continue
		}
		if len(tokens) != exp {
			ps.Unparsed = append(ps.Unparsed, UnparsedRow{
				Raw:            line,
				ExpectedTokens: exp,
				ActualTokens:   len(tokens),
			})
		}
		row := parseRowBySchema(tokens, spec.Columns, spec.Schema)
		id := strings.TrimSpace(row[spec.IDCol])
		if id != "" {
			if _, seen := ps.Rows[id]; !seen {
				ps.RowOrder = append(ps.RowOrder, id)
			}
			ps.Rows[id] = row
		}
	}
	return ps
}

// parseRowBySchema maps tokens onto columns; a time column consumes two
// tokens joined by one space. Short rows pad with empty strings.
func parseRowBySchema(tokens []string, columns []string, schema []ColumnType) map[string]string {
	out := make(map[string]string, len(columns))
	i := 0
	for c, col := range columns {
		typ := schema[c]
		if typ == TypeTime {
			switch {
			case i+1 < len(tokens):
				out[col] = tokens[i] + " " + tokens[i+1]
			case i < len(tokens):
				out[col] = tokens[i]
			default:
				out[col] = ""
			}
			i += 2
			continue
		}
		if i < len(tokens) {
			out[col] = tokens[i]
		} else {
			out[col] = ""
		}
		i++
	}
	return out
}

// asNumber coerces a report cell to a float. Commas are stripped and a
// trailing % removed. Empty, "-", "NaN" and NA cells are non-numeric.
func asNumber(s string) (float64, bool) {
	t := strings.TrimSpace(s)
	if t == "" || t == "-" || strings.EqualFold(t, "nan") || t == na {
		return 0, false
	}
	t = strings.ReplaceAll(t, ",", "")
	t = strings.TrimSpace(strings.TrimSuffix(t, "%"))
	v, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
