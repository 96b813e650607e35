package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inpdiff/internal/inp"
)

const model1 = `
[JUNCTIONS]
J1  100  5
JX  50  3

[CONDUITS]
C1  J1  JX  400  0.013  0  0

[SUBCATCHMENTS]
S1  RG1  J1  5  25  500  0.5

[TAGS]
Node  J1  trunk

[COORDINATES]
J1  1000  1000
JX  1400  1000

[POLYGONS]
S1  0  0
S1  100  0
S1  100  100
S1  0  100
S1  0  0
`

// Same network with J1, C1 and S1 renamed and J2 nudged 0.2 ft east.
const model2 = `
[JUNCTIONS]
J2  100  5
JX  50  3

[CONDUITS]
C9  J2  JX  400  0.013  0  0

[SUBCATCHMENTS]
S7  RG1  J2  5  25  500  0.5

[TAGS]
Node  J2  trunk

[COORDINATES]
J2  1000.2  1000
JX  1400  1000

[POLYGONS]
S7  0  0
S7  100  0
S7  100  100
S7  0  100
S7  0  0
`

func reconcileFixture(t *testing.T) (*inp.Document, *inp.Document, *Result) {
	t.Helper()
	doc1 := inp.Parse(model1)
	doc2 := inp.Parse(model2)
	g1 := inp.ExtractGeometry(model1)
	g2 := inp.ExtractGeometry(model2)
	return doc1, doc2, Reconcile(doc1, doc2, g1, g2, nil)
}

func TestReconcileDetectsRenames(t *testing.T) {
	_, _, res := reconcileFixture(t)

	assert.Equal(t, map[string]string{"J1": "J2"}, res.Renames["JUNCTIONS"])
	assert.Equal(t, map[string]string{"C1": "C9"}, res.Renames["CONDUITS"])
	assert.Equal(t, map[string]string{"S1": "S7"}, res.Renames["SUBCATCHMENTS"])
}

func TestReconcileNormalizesSecondDocument(t *testing.T) {
	_, doc2, res := reconcileFixture(t)

	// Rows rekeyed to first-file ids, endpoint fields rewritten.
	require.Contains(t, res.Doc2.Sections["JUNCTIONS"], "J1")
	assert.NotContains(t, res.Doc2.Sections["JUNCTIONS"], "J2")

	c1 := res.Doc2.Sections["CONDUITS"]["C1"]
	require.NotEmpty(t, c1)
	assert.Equal(t, "J1", c1[0])
	assert.Equal(t, "JX", c1[1])

	require.Contains(t, res.Doc2.Sections["SUBCATCHMENTS"], "S1")

	// Tags and geometry follow.
	assert.Equal(t, "trunk", res.Doc2.Tags["J1"])
	assert.Contains(t, res.Geom2.Nodes, "J1")
	assert.Contains(t, res.Geom2.Links, "C1")
	assert.Contains(t, res.Geom2.Polygons, "S1")

	// The caller's document is untouched.
	assert.Contains(t, doc2.Sections["JUNCTIONS"], "J2")
	assert.NotContains(t, doc2.Sections["JUNCTIONS"], "J1")
	assert.Equal(t, "J2", doc2.Sections["CONDUITS"]["C9"][0])
}

func TestReconcileNodeBeyondTolerance(t *testing.T) {
	m1 := `
[JUNCTIONS]
J1  100  5
[COORDINATES]
J1  0  0
`
	m2 := `
[JUNCTIONS]
J9  100  5
[COORDINATES]
J9  0  1
`
	// 1 ft apart: over the 0.5 ft node tolerance.
	res := Reconcile(inp.Parse(m1), inp.Parse(m2), inp.ExtractGeometry(m1), inp.ExtractGeometry(m2), nil)
	assert.Empty(t, res.Renames)
}

func TestReconcileClosestNodeWins(t *testing.T) {
	m1 := `
[JUNCTIONS]
A1  100  5
A2  100  5
[COORDINATES]
A1  0  0
A2  0.3  0
`
	m2 := `
[JUNCTIONS]
B1  100  5
[COORDINATES]
B1  0.05  0
`
	res := Reconcile(inp.Parse(m1), inp.Parse(m2), inp.ExtractGeometry(m1), inp.ExtractGeometry(m2), nil)
	require.Contains(t, res.Renames, "JUNCTIONS")
	assert.Equal(t, map[string]string{"A1": "B1"}, res.Renames["JUNCTIONS"])
}

func TestReconcileSharedIDsAreNotCandidates(t *testing.T) {
	m := `
[JUNCTIONS]
J1  100  5
[COORDINATES]
J1  0  0
`
	res := Reconcile(inp.Parse(m), inp.Parse(m), inp.ExtractGeometry(m), inp.ExtractGeometry(m), nil)
	assert.Empty(t, res.Renames)
}

func TestReconcileLinkByShapeWithoutEndpointMatch(t *testing.T) {
	// Endpoint ids differ and the nodes sit 1 ft apart, too far for a
	// node rename, but link length and centroid agree.
	m1 := `
[JUNCTIONS]
N1  100  5
N2  100  5
[CONDUITS]
L1  N1  N2  400  0.013  0  0
[COORDINATES]
N1  0  0
N2  400  0
`
	m2 := `
[JUNCTIONS]
M1  100  5
M2  100  5
[CONDUITS]
L2  M1  M2  400  0.013  0  0
[COORDINATES]
M1  0  1
M2  400  1
`
	res := Reconcile(inp.Parse(m1), inp.Parse(m2), inp.ExtractGeometry(m1), inp.ExtractGeometry(m2), nil)
	require.Contains(t, res.Renames, "CONDUITS")
	assert.Equal(t, "L2", res.Renames["CONDUITS"]["L1"])
}

func TestReconcileSubcatchmentAreaMismatch(t *testing.T) {
	m1 := `
[SUBCATCHMENTS]
S1  RG1  J1  5  25  500  0.5
[POLYGONS]
S1  0  0
S1  100  0
S1  100  100
S1  0  100
S1  0  0
`
	// Twice the bounding box: outside the 10% area ratio.
	m2 := `
[SUBCATCHMENTS]
S9  RG1  J1  5  25  500  0.5
[POLYGONS]
S9  0  0
S9  200  0
S9  200  100
S9  0  100
S9  0  0
`
	res := Reconcile(inp.Parse(m1), inp.Parse(m2), inp.ExtractGeometry(m1), inp.ExtractGeometry(m2), nil)
	assert.Empty(t, res.Renames)
}

func TestRenameMapRenamed(t *testing.T) {
	m := RenameMap{"JUNCTIONS": {"J1": "J2"}}
	assert.True(t, m.Renamed("JUNCTIONS", "J1"))
	assert.False(t, m.Renamed("JUNCTIONS", "J2"))
	assert.False(t, m.Renamed("CONDUITS", "J1"))
}
