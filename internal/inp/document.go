// Package inp parses SWMM-style section-based model definition files
// into a canonical Document plus a derived Geometry. Parsing is
// best-effort: malformed lines are tokenized as far as possible or
// skipped, never fatal.
package inp

// TitleKey is the synthetic element id that TITLE lines accumulate under.
const TitleKey = "TITLE"

// Document is the canonical parsed form of a model definition file.
//
// Element ids are unique within a section except where a section
// explicitly accumulates (TITLE, CONTROLS rule bodies). Rows are kept as
// ordered raw strings; numeric coercion happens lazily at comparison
// time.
type Document struct {
	// Sections maps section name -> element id -> ordered field values.
	Sections map[string]map[string][]string
	// Headers maps section name -> ordered column names. Seeded from the
	// default table, overridable once by an in-file ;; header comment.
	Headers map[string][]string
	// Tags maps element id -> tag string (flat namespace across sections).
	Tags map[string]string
	// Descriptions maps section name -> one free-text description line.
	Descriptions map[string]string
	// Order records first-seen element id order per section. The link and
	// subcatchment reconciliation passes iterate in input order, so the
	// parser keeps it.
	Order map[string][]string
}

// NewDocument returns an empty Document with all maps allocated.
func NewDocument() *Document {
	return &Document{
		Sections:     make(map[string]map[string][]string),
		Headers:      make(map[string][]string),
		Tags:         make(map[string]string),
		Descriptions: make(map[string]string),
		Order:        make(map[string][]string),
	}
}

// section returns the row map for a section, creating it on first use.
func (d *Document) section(name string) map[string][]string {
	m, ok := d.Sections[name]
	if !ok {
		m = make(map[string][]string)
		d.Sections[name] = m
	}
	return m
}

// setRow stores a row and records first-seen order for the id.
func (d *Document) setRow(section, id string, values []string) {
	m := d.section(section)
	if _, seen := m[id]; !seen {
		d.Order[section] = append(d.Order[section], id)
	}
	m[id] = values
}

// Clone returns a deep copy. The reconciler normalizes a copy of the
// second file's Document instead of mutating the caller's.
func (d *Document) Clone() *Document {
	out := NewDocument()
	for sec, rows := range d.Sections {
		m := make(map[string][]string, len(rows))
		for id, vals := range rows {
			m[id] = append([]string(nil), vals...)
		}
		out.Sections[sec] = m
	}
	for sec, hdr := range d.Headers {
		out.Headers[sec] = append([]string(nil), hdr...)
	}
	for id, tag := range d.Tags {
		out.Tags[id] = tag
	}
	for sec, desc := range d.Descriptions {
		out.Descriptions[sec] = desc
	}
	for sec, ids := range d.Order {
		out.Order[sec] = append([]string(nil), ids...)
	}
	return out
}
