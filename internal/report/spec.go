// Package report parses fixed-format simulation report text and joins
// two parsed reports into side-by-side comparison tables.
package report

// ColumnType describes how a declared column consumes row tokens.
// TypeTime consumes exactly two tokens joined by one space
// (e.g. "0 11:55"); every other type consumes one.
type ColumnType string

const (
	TypeString  ColumnType = "str"
	TypeNumeric ColumnType = "num"
	TypePercent ColumnType = "pct"
	TypeTime    ColumnType = "time"
)

// SectionSpec declares the columns and per-column types of one known
// report table. Sections without a spec pass through as opaque blocks.
type SectionSpec struct {
	IDCol   string
	Columns []string
	Schema  []ColumnType
}

// SectionSpecs holds the known report tables.
var SectionSpecs = map[string]SectionSpec{
	"Node Depth Summary": {
		IDCol: "Node",
		Columns: []string{
			"Node", "Type",
			"Average Depth feet", "Maximum Depth feet", "Maximum HGL feet",
			"Time of Max Occurrence", "Reported Max Depth feet",
		},
		Schema: []ColumnType{TypeString, TypeString, TypeNumeric, TypeNumeric, TypeNumeric, TypeTime, TypeNumeric},
	},

	"Node Inflow Summary": {
		IDCol: "Node",
		Columns: []string{
			"Node", "Type",
			"Maximum Lateral Inflow CFS", "Maximum Total Inflow CFS",
			"Time of Max Occurrence",
			"Lateral Inflow Volume 10^6 gal", "Total Inflow Volume 10^6 gal",
			"Flow Balance Error Percent",
		},
		Schema: []ColumnType{TypeString, TypeString, TypeNumeric, TypeNumeric, TypeTime, TypeNumeric, TypeNumeric, TypePercent},
	},

	"Link Flow Summary": {
		IDCol: "Link",
		Columns: []string{
			"Link", "Type",
			"Maximum |Flow| CFS", "Time of Max Occurrence",
			"Maximum |Veloc| ft/sec", "Max/Full Flow", "Max/Full Depth",
		},
		Schema: []ColumnType{TypeString, TypeString, TypeNumeric, TypeTime, TypeNumeric, TypeNumeric, TypeNumeric},
	},

	"Subcatchment Runoff Summary": {
		IDCol: "Subcatchment",
		Columns: []string{
			"Subcatchment",
			"Total Precip in", "Total Runon in", "Total Evap in",
			"Total Infil in", "Total Runoff in", "Total Runoff 10^6 gal",
			"Peak Runoff CFS", "Runoff Coeff",
		},
		Schema: []ColumnType{TypeString, TypeNumeric, TypeNumeric, TypeNumeric, TypeNumeric, TypeNumeric, TypeNumeric, TypeNumeric, TypeNumeric},
	},

	"Outfall Loading Summary": {
		// Some reports append pollutant columns after Total Volume; this
		// covers the hydraulic-only layout.
		IDCol: "Outfall",
		Columns: []string{
			"Outfall", "Flow Frequency",
			"Avg Flow CFS", "Max Flow CFS", "Total Volume 10^6 gal",
		},
		Schema: []ColumnType{TypeString, TypeString, TypeNumeric, TypeNumeric, TypeNumeric},
	},

	"Node Flooding Summary": {
		IDCol: "Node",
		Columns: []string{
			"Node", "Hours Flooded", "Maximum Rate CFS",
			"Time of Max Occurrence",
			"Total Flood Volume 10^6 gal", "Maximum Ponded Depth Feet",
		},
		Schema: []ColumnType{TypeString, TypeNumeric, TypeNumeric, TypeTime, TypeNumeric, TypeNumeric},
	},

	"Node Surcharge Summary": {
		IDCol: "Node",
		Columns: []string{
			"Node", "Type", "Hours Surcharged",
			"Max Height Above Crown Feet", "Min Depth Below Rim Feet",
		},
		Schema: []ColumnType{TypeString, TypeString, TypeNumeric, TypeNumeric, TypeNumeric},
	},

	"Pump Summary": {
		IDCol: "Pump",
		Columns: []string{
			"Pump", "Percent Utilized", "Number of Start-Ups",
			"Min Flow CFS", "Avg Flow CFS", "Max Flow CFS",
			"Total Volume 10^6 gal", "Power Usage Kw-hr",
			"% Time Off Pump Curve Low", "% Time Off Pump Curve High",
		},
		Schema: []ColumnType{TypeString, TypeNumeric, TypeNumeric, TypeNumeric, TypeNumeric, TypeNumeric, TypeNumeric, TypeNumeric, TypeNumeric, TypeNumeric},
	},

	"Storage Unit Summary": {
		IDCol: "Storage Unit",
		Columns: []string{
			"Storage Unit",
			"Average Volume 1000 ft^3", "Avg Pcnt Full",
			"Evap Loss Pcnt", "Exfil Loss Pcnt",
			"Maximum Volume 1000 ft^3", "Max Pcnt Full",
			"Time of Max Occurrence", "Maximum Outflow CFS",
		},
		Schema: []ColumnType{TypeString, TypeNumeric, TypeNumeric, TypeNumeric, TypeNumeric, TypeNumeric, TypeNumeric, TypeTime, TypeNumeric},
	},
}

// MetricMode selects how a computed difference column is derived.
type MetricMode string

const (
	MetricAbsolute MetricMode = "abs"
	MetricPercent  MetricMode = "pct"
)

// MetricSpec configures the one computed column a section's side-by-side
// table can carry.
type MetricSpec struct {
	Source string
	Mode   MetricMode
	Dest   string
}

// Metrics maps section name to its computed-column configuration.
var Metrics = map[string]MetricSpec{
	"Link Flow Summary":           {Source: "Maximum |Flow| CFS", Mode: MetricPercent, Dest: "% Diff Max Flow"},
	"Node Depth Summary":          {Source: "Reported Max Depth feet", Mode: MetricAbsolute, Dest: "Diff Max Depth"},
	"Node Flooding Summary":       {Source: "Hours Flooded", Mode: MetricAbsolute, Dest: "Diff Hours Flooded"},
	"Node Inflow Summary":         {Source: "Total Inflow Volume 10^6 gal", Mode: MetricPercent, Dest: "% Diff Total Inflow"},
	"Node Surcharge Summary":      {Source: "Hours Surcharged", Mode: MetricAbsolute, Dest: "Diff Hours Surcharged"},
	"Outfall Loading Summary":     {Source: "Total Volume 10^6 gal", Mode: MetricPercent, Dest: "% Diff Total Volume"},
	"Subcatchment Runoff Summary": {Source: "Total Runoff 10^6 gal", Mode: MetricPercent, Dest: "% Diff Total Runoff"},
}

func expectedTokenCount(schema []ColumnType) int {
	n := 0
	for _, t := range schema {
		if t == TypeTime {
			n += 2
		} else {
			n++
		}
	}
	return n
}
