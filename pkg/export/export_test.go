package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Library payments",
		Headers: []string{"Date", "Student", "Amount"},
		Rows: [][]string{
			{"2026-10-01", "Asha Verma", "800.00"},
			{"2026-10-02", "Ravi, Kumar", "500.00"},
		},
		Numeric: []int{2},
		Footer:  []string{"Total: 1300.00"},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("Date,Student,Amount\n2026-10-01,Asha Verma,800.00\n2026-10-02,\"Ravi, Kumar\",500.00\n")))
	assert.True(t, bytes.HasSuffix(out, []byte("Total: 1300.00\n")))
}

func TestCSVExporterRejectsRaggedRows(t *testing.T) {
	data := sampleDataset()
	data.Rows = append(data.Rows, []string{"only-one"})
	_, err := NewCSVExporter().Render(data)
	require.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, format)

	format, err = ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", RendererFor(format).ContentType())

	_, err = ParseFormat("xlsx")
	require.Error(t, err)
}
