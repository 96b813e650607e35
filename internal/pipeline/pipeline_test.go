package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"inpdiff/internal/compare"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const runModel1 = `
[JUNCTIONS]
J1  100.0  2.0
JX  50.0  3.0

[CONDUITS]
C1  J1  JX  400  0.013  0  0

[COORDINATES]
J1  1000  1000
JX  1400  1000
`

// J1 renamed to J5, its max depth deepened by 0.5.
const runModel2 = `
[JUNCTIONS]
J5  100.0  2.5
JX  50.0  3.0

[CONDUITS]
C1  J5  JX  400  0.013  0  0

[COORDINATES]
J5  1000  1000
JX  1400  1000
`

func TestRunEndToEnd(t *testing.T) {
	res, err := Run(runModel1, []byte(runModel2), Options{})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "EPSG:3735", res.Geometry.CRS)

	// The rename was detected and the changed row keyed by the old id.
	require.Contains(t, res.Renames, "JUNCTIONS")
	assert.Equal(t, "J5", res.Renames["JUNCTIONS"]["J1"])

	d := res.Diffs["JUNCTIONS"]
	require.NotNil(t, d)
	ch, ok := d.Changed["J1"]
	require.True(t, ok)
	assert.InDelta(t, 0.5, ch.DiffValues["MaxDepth"], 1e-9)

	// "New Name" sits right after the id column and shows on both sides.
	hdr := res.Headers["JUNCTIONS"]
	require.GreaterOrEqual(t, len(hdr), 2)
	assert.Equal(t, "New Name", hdr[1])
	assert.Equal(t, "J5", ch.Values[0][0])
	assert.Equal(t, "J5", ch.Values[1][0])

	var row SummaryRow
	for _, r := range res.Summary {
		if r.Section == "JUNCTIONS" {
			row = r
		}
	}
	assert.Equal(t, 1, row.ChangedCount)
	assert.Zero(t, row.AddedCount)
	assert.Zero(t, row.RemovedCount)

	// Raw sections from both files ride along for the exporter.
	assert.Contains(t, res.Sections1["JUNCTIONS"], "J1")
	assert.Contains(t, res.Sections2["JUNCTIONS"], "J1")
	assert.Contains(t, res.Geometry.Nodes1, "J1")
	assert.Contains(t, res.Geometry.Nodes2, "J1")
}

func TestRunIdenticalFiles(t *testing.T) {
	res, err := Run(runModel1, runModel1, Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Diffs)
	assert.Empty(t, res.Summary)
	assert.Empty(t, res.Renames)
	assert.Empty(t, res.Warnings)
}

func TestRunAddedRowsPadNewNameColumn(t *testing.T) {
	// J5 matches J1 spatially; J9 is genuinely new.
	m2 := runModel2 + "\n[JUNCTIONS]\nJ9  10  1\n"
	res, err := Run(runModel1, m2, Options{})
	require.NoError(t, err)

	d := res.Diffs["JUNCTIONS"]
	require.NotNil(t, d)
	added, ok := d.Added["J9"]
	require.True(t, ok)
	assert.Equal(t, "NA", added[0])
}

func TestRunInvalidPayloadType(t *testing.T) {
	_, err := Run(42, runModel2, Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "int")

	_, err = Run(runModel1, 3.14, Options{})
	require.Error(t, err)
}

func TestRunInfiltrationMismatchWarning(t *testing.T) {
	m1 := `
[OPTIONS]
INFILTRATION  HORTON

[INFILTRATION]
S1  3.0  0.5  4  7  0
`
	m2 := `
[OPTIONS]
INFILTRATION  GREEN_AMPT

[INFILTRATION]
S1  3.5  0.5  0.26
`
	res, err := Run(m1, m2, Options{})
	require.NoError(t, err)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "HORTON")
	assert.Contains(t, res.Warnings[0], "GREEN_AMPT")

	// The section is cleared on both sides instead of compared.
	assert.NotContains(t, res.Diffs, "INFILTRATION")
	assert.NotContains(t, res.Sections1, "INFILTRATION")
	assert.NotContains(t, res.Sections2, "INFILTRATION")
}

func TestRunProgressMilestones(t *testing.T) {
	var stages []string
	opts := Options{Progress: func(stage, detail string) { stages = append(stages, stage) }}
	_, err := Run(runModel1, runModel2, opts)
	require.NoError(t, err)

	for _, want := range []string{
		StageParseFile1, StageParseFile2, StageGeometry,
		StageReconcile, StageDiff, StageFilter, StageAssemble,
	} {
		assert.Contains(t, stages, want)
	}
}

func TestRunProgressPanicIsRecovered(t *testing.T) {
	opts := Options{Progress: func(stage, detail string) { panic("callback bug") }}
	res, err := Run(runModel1, runModel2, opts)
	require.NoError(t, err)
	assert.NotNil(t, res)
}

func TestRunWithTolerances(t *testing.T) {
	m1 := `
[CONDUITS]
C1  J1  J2  100.00  0.013  0  0
[JUNCTIONS]
J1  100  5
J2  99  5
[COORDINATES]
J1  0  0
J2  100  0
`
	m2 := `
[CONDUITS]
C1  J1  J2  100.05  0.013  0  0
[JUNCTIONS]
J1  100  5
J2  99  5
[COORDINATES]
J1  0  0
J2  100  0
`
	res, err := Run(m1, m2, Options{Tolerances: compare.Tolerances{compare.TolConduitLength: 0.1}})
	require.NoError(t, err)
	// The section entry survives with the filtered row removed.
	require.Contains(t, res.Diffs, "CONDUITS")
	assert.Empty(t, res.Diffs["CONDUITS"].Changed)
	assert.InDelta(t, 0.1, res.Tolerances[compare.TolConduitLength], 1e-12)

	res, err = Run(m1, m2, Options{Tolerances: compare.Tolerances{compare.TolConduitLength: 0.01}})
	require.NoError(t, err)
	require.Contains(t, res.Diffs, "CONDUITS")
	ch := res.Diffs["CONDUITS"].Changed["C1"]
	assert.InDelta(t, 0.05, ch.DiffValues["Length"], 1e-9)
}
