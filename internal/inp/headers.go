package inp

// defaultHeaders is the static column-name table for known sections.
// Section opens seed Headers from here; an in-file ;; header comment can
// override a section whose default is empty. Unknown sections pass
// through with whatever header the file declares.
var defaultHeaders = map[string][]string{
	// Project-level / config sections.
	"TITLE": {},

	"OPTIONS": {"Option", "Value"},

	"REPORT": {"Keyword", "Value1", "Value2", "Value3"},

	"FILES": {"Action", "FileType", "FileName"},

	"RAINGAGES": {
		"Name", "Format", "Interval", "SCF",
		"Source", "SourceName", "Station", "Units",
	},

	"EVAPORATION": {
		"Keyword",
		"Value1", "Value2", "Value3", "Value4", "Value5", "Value6",
		"Value7", "Value8", "Value9", "Value10", "Value11", "Value12",
	},

	"TEMPERATURE": {
		"Keyword",
		"Arg1", "Arg2", "Arg3", "Arg4", "Arg5", "Arg6",
		"Arg7", "Arg8", "Arg9", "Arg10", "Arg11", "Arg12",
	},

	"ADJUSTMENTS": {
		"Variable",
		"Jan", "Feb", "Mar", "Apr", "May", "Jun",
		"Jul", "Aug", "Sep", "Oct", "Nov", "Dec",
	},

	// Runoff / hydrology.
	"SUBCATCHMENTS": {
		"Name", "RainGage", "Outlet", "Area", "PctImperv",
		"Width", "Slope", "CurbLength", "SnowPack",
	},

	"SUBAREAS": {
		"Subcatch", "N_Imperv", "N_Perv", "S_Imperv", "S_Perv",
		"PctZeroStor", "RouteTo", "PctRouted",
	},

	// Horton layout; swapped when OPTIONS names an alternate method.
	"INFILTRATION": {
		"Subcatch", "MaxRate", "MinRate", "Decay", "DryTime", "MaxInfil",
	},

	"LID_CONTROLS": {"Name", "Type"},

	"LID_USAGE": {
		"Subcatch", "LID", "Number", "Area", "Width", "InitSat",
		"FromImp", "ToPerv", "RptFile", "DrainTo", "FromPerv",
	},

	"AQUIFERS": {
		"Name", "Porosity", "WiltPoint", "FieldCap", "Ks", "Kslope",
		"Tslope", "ETu", "ETs", "Seep", "BottomElev", "InitGWTable",
		"InitUmc", "EvapPattern",
	},

	"GROUNDWATER": {
		"Subcatch", "Aquifer", "Node", "SurfElev", "A1", "B1",
		"A2", "B2", "A3", "Dsw", "Egwt", "Ebot", "Egw", "Umc",
	},

	"GWF": {"Subcatch", "Expression"},

	"SNOWPACKS": {
		"Name", "Subcatch", "Pliquid", "Plimit", "Sdmelt", "Fwfrac",
		"Sfw0", "Sfwmax", "Farea", "Tbase", "Fmf", "Umlt", "FImin", "FImax",
	},

	// Nodes / links / conveyance.
	"JUNCTIONS": {
		"Name", "InvertElev", "MaxDepth", "InitDepth",
		"SurchargeDepth", "PondedArea",
	},

	"OUTFALLS": {
		"Name", "InvertElev", "Type", "StageData", "TideGate", "RouteTo",
	},

	"DIVIDERS": {
		"Name", "Node", "Link", "Type", "Qmin", "Qmax", "P1", "P2", "P3",
	},

	"STORAGE": {
		"Name", "InvertElev", "MaxDepth", "InitDepth", "Shape",
		"Coeff1", "Coeff2", "Coeff3", "SurfArea", "EvapFactor",
		"SeepageRate", "Fevap",
	},

	"CONDUITS": {
		"Name", "FromNode", "ToNode", "Length", "Roughness",
		"InOffset", "OutOffset", "InitFlow", "MaxFlow",
	},

	"PUMPS": {
		"Name", "FromNode", "ToNode", "PumpCurve", "Status",
		"StartupDepth", "ShutoffDepth",
	},

	"ORIFICES": {
		"Name", "FromNode", "ToNode", "Type", "Offset",
		"OrificeCoeff", "FlapGate", "OpenCloseTime",
	},

	"WEIRS": {
		"Name", "FromNode", "ToNode", "Type", "CrestElev",
		"WeirCoeff", "FlapGate", "EndCon", "CdDischarge",
	},

	"OUTLETS": {
		"Name", "FromNode", "ToNode", "Type", "Curve", "FlapGate", "Seepage",
	},

	"XSECTIONS": {
		"Link", "Shape", "Geom1", "Geom2", "Geom3", "Geom4",
		"Barrels", "CulvertCode",
	},

	"TRANSECTS": {
		"TransectID", "RecordType",
		"Value1", "Value2", "Value3", "Value4", "Value5", "Value6",
	},

	"STREETS": {
		"Name", "Tcrown", "Sx", "Wcurb", "Wstreet", "Nstreet",
		"Ncurb", "Soffset",
	},

	"INLETS": {
		"Name", "Type",
		"Param1", "Param2", "Param3", "Param4",
		"Param5", "Param6", "Param7", "Param8",
	},

	"INLET_USAGE": {
		"Inlet", "NodeOrLink", "Placement", "Number",
		"CloggingFactor", "LocalDepression", "Qmax",
	},

	"LOSSES": {"Link", "Kentry", "Kexit", "Kavg", "FlapGate", "Seepage"},

	// Water quality / land use.
	"POLLUTANTS": {
		"Name", "Units", "Crdc", "Cgw", "Crdii", "Cinit",
		"Kdecay", "SnowOnly", "CoPollut", "CoFrac",
	},

	"LANDUSES": {
		"Name", "SweepInterval", "Availability", "LastSweepDays",
		"StreetSweepEff",
	},

	"COVERAGES": {"Subcatch", "LandUse", "Percent"},

	"BUILDUP": {
		"LandUse", "Pollutant", "FuncType",
		"Coeff1", "Coeff2", "Coeff3", "PerUnit",
	},

	"WASHOFF": {
		"LandUse", "Pollutant", "FuncType",
		"Coeff1", "Coeff2", "CleanEffic", "BMPRemoval",
	},

	"TREATMENT": {"NodeOrOutfall", "Pollutant", "Expression"},

	// External inflows / DWF / RDII / unit hydrographs.
	"INFLOWS": {
		"Node", "Constituent", "TimeSeries", "Type",
		"Mfactor", "Sfactor", "Baseline", "Pattern",
	},

	"DWF": {
		"Node", "Constituent", "Average Value",
		"Time Pattern 1", "Time Pattern 2", "Time Pattern 3", "Time Pattern 4",
	},

	"RDII": {"Node", "UnitHyd", "SewerArea"},

	"UNITHYD": {
		"Name", "RainGage", "Month", "Response", "R", "T", "K",
	},

	"HYDROGRAPHS": {
		"Hydrograph", "Month", "Response",
		"R", "T", "K", "Dmax", "Drecov", "Dinit",
	},

	"LOADINGS": {"Subcatch", "Pollutant", "InitBuildup"},

	// Curves, patterns, time series.
	"CURVES": {"CurveID", "X", "Y"},

	"TIMESERIES": {"Name", "Date", "Time", "Value", "FileName"},

	"PATTERNS": {
		"PatternID", "Type",
		"Factor1", "Factor2", "Factor3", "Factor4",
		"Factor5", "Factor6", "Factor7", "Factor8",
		"Factor9", "Factor10", "Factor11", "Factor12",
	},

	// Controls, tags, map geometry.
	"CONTROLS": {"RuleText"},

	"TAGS": {"Type", "ID", "Tag"},

	"COORDINATES": {"Node", "X", "Y"},

	"VERTICES": {"Link", "X", "Y"},

	"POLYGONS": {"Subcatch", "X", "Y"},

	"LABELS": {"X", "Y", "Label", "Anchor"},
}

// Alternate infiltration layouts keyed by the OPTIONS method name.
// Rows parsed under an alternate method carry three value fields.
var infiltrationAltHeaders = map[string][]string{
	"GREEN_AMPT":          {"Subcatch", "Suction", "Ksat", "IMD"},
	"MODIFIED_GREEN_AMPT": {"Subcatch", "Suction", "Ksat", "IMD"},
	"CURVE_NUMBER":        {"Subcatch", "CurveNum", "Ksat", "DryTime"},
}

// DefaultHeader returns a copy of the default column names for a
// section, or nil when the section is unknown.
func DefaultHeader(section string) []string {
	h, ok := defaultHeaders[section]
	if !ok {
		return nil
	}
	return append([]string(nil), h...)
}
