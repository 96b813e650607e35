package compare

import (
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"inpdiff/internal/reconcile"
)

// Tolerance keys accepted from callers. Unknown keys are ignored;
// non-positive values disable a threshold.
const (
	TolConduitLength    = "CONDUIT_LENGTH"
	TolConduitRoughness = "CONDUIT_ROUGHNESS"
	TolConduitOffset    = "CONDUIT_OFFSET"
	TolConduitSlope     = "CONDUIT_SLOPE"
	TolJunctionInvert   = "JUNCTION_INVERT"
	TolJunctionDepth    = "JUNCTION_DEPTH"
)

// Tolerances maps tolerance keys to nonnegative thresholds.
type Tolerances map[string]float64

// Enabled reports whether any threshold is positive; filtering is a
// no-op otherwise.
func (t Tolerances) Enabled() bool {
	for _, v := range t {
		if v > 0 {
			return true
		}
	}
	return false
}

// LoadTolerances reads a flat YAML mapping of tolerance keys to numeric
// thresholds.
func LoadTolerances(path string) (Tolerances, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tolerances: %w", err)
	}
	var t Tolerances
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("parse tolerances %s: %w", path, err)
	}
	return t, nil
}

// positionalKey returns the tolerance key governing a value-field index
// of a section, or "" when the field has no threshold.
func positionalKey(section string, idx int) string {
	switch section {
	case "CONDUITS":
		switch idx {
		case conduitLengthIdx:
			return TolConduitLength
		case conduitRoughnessIdx:
			return TolConduitRoughness
		case conduitInOffsetIdx, conduitOutOffsetIdx:
			return TolConduitOffset
		}
	case "JUNCTIONS":
		switch idx {
		case junctionInvertIdx:
			return TolJunctionInvert
		case junctionMaxDepthIdx:
			return TolJunctionDepth
		}
	}
	return ""
}

// FilterByTolerance removes changed rows whose every positionally
// differing field is either identical or numeric and within its
// threshold. Renamed rows are exempt: a rename is retained regardless of
// values. For conduits, a slope delta exceeding a positive CONDUIT_SLOPE
// threshold keeps the row even when each raw field passed its own
// tolerance, since offsets drifting in opposite directions can pass
// per-field checks while changing the grade.
func FilterByTolerance(diffs map[string]*DiffSection, tol Tolerances,
	renames reconcile.RenameMap, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !tol.Enabled() {
		logger.Debug("no positive tolerance thresholds; filter skipped")
		return
	}

	for sec, d := range diffs {
		var drop []string
		for id, ch := range d.Changed {
			if renames.Renamed(sec, id) {
				continue
			}
			if withinTolerance(sec, ch, tol) {
				drop = append(drop, id)
			}
		}
		for _, id := range drop {
			delete(d.Changed, id)
		}
		if len(drop) > 0 {
			logger.Debug("tolerance filter removed rows",
				zap.String("section", sec), zap.Int("count", len(drop)))
		}
	}
}

func withinTolerance(section string, ch Change, tol Tolerances) bool {
	n := len(ch.Old)
	if len(ch.New) > n {
		n = len(ch.New)
	}
	for i := 0; i < n; i++ {
		v1 := fieldAt(ch.Old, i)
		v2 := fieldAt(ch.New, i)
		if v1 == v2 {
			continue
		}
		f1, err1 := strconv.ParseFloat(v1, 64)
		f2, err2 := strconv.ParseFloat(v2, 64)
		if err1 != nil || err2 != nil {
			return false
		}
		key := positionalKey(section, i)
		if key == "" {
			return false
		}
		threshold := tol[key]
		if threshold <= 0 || abs(f1-f2) > threshold {
			return false
		}
	}

	if section == "CONDUITS" {
		if slopeTol := tol[TolConduitSlope]; slopeTol > 0 {
			s1, ok1 := Slope(ch.Old)
			s2, ok2 := Slope(ch.New)
			if ok1 && ok2 && abs(s2-s1) > slopeTol {
				return false
			}
		}
	}
	return true
}

func fieldAt(vals []string, i int) string {
	if i < len(vals) {
		return vals[i]
	}
	return ""
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
