package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFileExt(t *testing.T) {
	assert.Equal(t, ".csv", getFileExt("portfolio.csv"))
	assert.Equal(t, ".xlsx", getFileExt("Portfolio.XLSX"))
	assert.Equal(t, ".xls", getFileExt("legacy.export.xls"))
	assert.Equal(t, "", getFileExt("noext"))
}

func TestParseUploadFileCSV(t *testing.T) {
	data := []byte("Loan Number,SEGMENT,EMI\nLN-1,Rural,9000\nLN-2,Urban,\n")
	rows, err := parseUploadFile(data, ".csv")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Loan Number", "SEGMENT", "EMI"}, rows[0])
	assert.Equal(t, []string{"LN-2", "Urban", ""}, rows[2])
}

func TestParseUploadFileRaggedCSV(t *testing.T) {
	// Bank exports routinely drop trailing cells.
	data := []byte("Loan Number,SEGMENT,EMI\nLN-1,Rural\n")
	rows, err := parseUploadFile(data, ".csv")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"LN-1", "Rural"}, rows[1])
}

func TestParseUploadFileUnsupported(t *testing.T) {
	_, err := parseUploadFile([]byte("whatever"), ".pdf")
	assert.Error(t, err)
}

func TestFileChecksumStable(t *testing.T) {
	a := fileChecksum([]byte("same bytes"))
	b := fileChecksum([]byte("same bytes"))
	c := fileChecksum([]byte("other bytes"))
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
