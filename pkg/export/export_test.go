package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() Table {
	return Table{
		Title:   "Academic Transcript",
		Fields:  []Field{{Label: "Student", Value: "Ada Lovelace"}, {Label: "GPA", Value: "3.14"}},
		Columns: []string{"Code", "Course", "Grade"},
		Widths:  []float64{1, 3, 1},
		Rows: [][]string{
			{"CS101", "Intro, Programming", "80.00"},
			{"MA201", "Linear Algebra", "60.00"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleTable())
	require.NoError(t, err)

	expected := "Student,Ada Lovelace\nGPA,3.14\n\nCode,Course,Grade\nCS101,\"Intro, Programming\",80.00\nMA201,Linear Algebra,60.00\n"
	assert.Equal(t, expected, string(out))
}

func TestCSVExporterWithoutFields(t *testing.T) {
	table := sampleTable()
	table.Fields = nil

	out, err := NewCSVExporter().Render(table)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("Code,Course,Grade\n")))
}

func TestPDFExporterRender(t *testing.T) {
	exporter := NewPDFExporter("University Portal")
	out, err := exporter.Render(sampleTable())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "application/pdf", exporter.ContentType())
}

func TestRenderRejectsMalformedTables(t *testing.T) {
	_, err := NewCSVExporter().Render(Table{})
	assert.Error(t, err)

	table := sampleTable()
	table.Rows = append(table.Rows, []string{"only one"})
	_, err = NewPDFExporter("").Render(table)
	assert.Error(t, err)

	table = sampleTable()
	table.Widths = []float64{1}
	_, err = NewPDFExporter("").Render(table)
	assert.Error(t, err)
}
