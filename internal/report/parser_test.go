package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportFixture = `
  EPA STORM WATER MANAGEMENT MODEL - VERSION 5.2
  WARNING 03: negative offset ignored for Link C1

  ****************
  Analysis Options
  ****************
  Flow Units ............... CFS
  Infiltration Method ...... HORTON

  ******************
  Node Depth Summary
  ******************

  ---------------------------------------------------------------------------------------
                                 Average  Maximum  Maximum  Time of Max    Reported
                                   Depth    Depth      HGL   Occurrence   Max Depth
  Node                 Type         Feet     Feet     Feet  days hr:min        Feet
  ---------------------------------------------------------------------------------------
  J1                   JUNCTION     1.00     2.00   102.00     0  11:55        2.50
  J2                   JUNCTION     0.50     1.25   101.25     0  12:10        1.30

  *****************
  Link Flow Summary
  *****************

  -----------------------------------------------------------------------------
                                 Maximum  Time of Max   Maximum    Max/    Max/
                                  |Flow|   Occurrence   |Veloc|    Full    Full
  Link                 Type          CFS  days hr:min    ft/sec    Flow   Depth
  -----------------------------------------------------------------------------
  C1                   CONDUIT     12.50     0  11:50      4.10    0.85    0.90
`

func TestParseHeaderAndWarnings(t *testing.T) {
	res := Parse(reportFixture, nil)

	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "WARNING 03:")
	require.NotEmpty(t, res.HeaderLines)
	assert.Contains(t, res.HeaderLines[0], "EPA STORM WATER MANAGEMENT MODEL")
}

func TestParseUnknownSectionIsOpaqueBlock(t *testing.T) {
	res := Parse(reportFixture, nil)

	require.Contains(t, res.Blocks, "Analysis Options")
	assert.Contains(t, res.Blocks["Analysis Options"], "Flow Units")
	assert.NotContains(t, res.Sections, "Analysis Options")
}

func TestParseNodeDepthSummary(t *testing.T) {
	res := Parse(reportFixture, nil)

	sec, ok := res.Sections["Node Depth Summary"]
	require.True(t, ok)
	assert.Equal(t, "Node", sec.IDCol)
	assert.Equal(t, []string{"J1", "J2"}, sec.RowOrder)

	row := sec.Rows["J1"]
	require.NotNil(t, row)
	assert.Equal(t, "JUNCTION", row["Type"])
	assert.Equal(t, "1.00", row["Average Depth feet"])
	assert.Equal(t, "2.00", row["Maximum Depth feet"])
	// A time column consumes two tokens.
	assert.Equal(t, "0 11:55", row["Time of Max Occurrence"])
	assert.Equal(t, "2.50", row["Reported Max Depth feet"])
	assert.Empty(t, sec.Unparsed)
}

func TestParseLinkFlowSummary(t *testing.T) {
	res := Parse(reportFixture, nil)

	sec := res.Sections["Link Flow Summary"]
	require.NotNil(t, sec)
	row := sec.Rows["C1"]
	require.NotNil(t, row)
	assert.Equal(t, "12.50", row["Maximum |Flow| CFS"])
	assert.Equal(t, "0 11:50", row["Time of Max Occurrence"])
	assert.Equal(t, "0.90", row["Max/Full Depth"])
}

func TestParseMismatchedRowStillMapped(t *testing.T) {
	res := Parse(`
  ******************
  Node Depth Summary
  ******************

  -------------------------------
  Node   Type   ...
  -------------------------------
  J1     JUNCTION   1.00   2.00
`, nil)

	sec := res.Sections["Node Depth Summary"]
	require.NotNil(t, sec)
	require.Len(t, sec.Unparsed, 1)
	assert.Equal(t, 4, sec.Unparsed[0].ActualTokens)
	// Short rows pad missing cells with empty strings.
	assert.Equal(t, "1.00", sec.Rows["J1"]["Average Depth feet"])
	assert.Equal(t, "2.00", sec.Rows["J1"]["Maximum Depth feet"])
	assert.Equal(t, "", sec.Rows["J1"]["Reported Max Depth feet"])
}

func TestParseSectionWithoutDividersIsEmpty(t *testing.T) {
	res := Parse(`
  ******************
  Node Depth Summary
  ******************

  No nodes were reported.
`, nil)
	sec := res.Sections["Node Depth Summary"]
	require.NotNil(t, sec)
	assert.Empty(t, sec.Rows)
}

func TestAsNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1.5", 1.5, true},
		{"  -2.25 ", -2.25, true},
		{"1,234.5", 1234.5, true},
		{"45%", 45, true},
		{"", 0, false},
		{"-", 0, false},
		{"NaN", 0, false},
		{"NA", 0, false},
		{"JUNCTION", 0, false},
	}
	for _, c := range cases {
		got, ok := asNumber(c.in)
		assert.Equal(t, c.ok, ok, "asNumber(%q)", c.in)
		if c.ok {
			assert.InDelta(t, c.want, got, 1e-12, "asNumber(%q)", c.in)
		}
	}
}
