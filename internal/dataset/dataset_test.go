package dataset

import (
	"encoding/json"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/errors"
)

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"a.csv":      FormatCSV,
		"dir/B.XLSX": FormatXLSX,
		"c.json":     FormatJSON,
		"d.yml":      FormatYAML,
		"e.yaml":     FormatYAML,
	}
	for path, want := range tests {
		got, ok := FormatOf(path)
		assert.True(t, ok, path)
		assert.Equal(t, want, got, path)
	}
	_, ok := FormatOf("f.txt")
	assert.False(t, ok)
}

func TestLoadCSV(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "sales.csv", []byte("month,revenue,cost,note\nJan,10,20,\nFeb, 15,5,late\n,,,\n"), 0o644))

	records, err := Load(fs, "sales.csv", Options{})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, chart.Record{"month": "Jan", "revenue": 10.0, "cost": 20.0}, records[0])
	assert.Equal(t, chart.Record{"month": "Feb", "revenue": 15.0, "cost": 5.0, "note": "late"}, records[1])
}

func TestLoadXLSX(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet("Data")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]any{"ignored"}))
	require.NoError(t, f.SetSheetRow("Data", "A1", &[]any{"m", "a", ""}))
	require.NoError(t, f.SetSheetRow("Data", "A2", &[]any{"Jan", 10, "x"}))
	require.NoError(t, f.SetSheetRow("Data", "A3", &[]any{"Feb", 15.5}))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "book.xlsx", buf.Bytes(), 0o644))

	records, err := Load(fs, "book.xlsx", Options{Sheet: "Data"})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, chart.Record{"m": "Jan", "a": 10.0, "C": "x"}, records[0])
	assert.Equal(t, chart.Record{"m": "Feb", "a": 15.5}, records[1])

	first, err := Load(fs, "book.xlsx", Options{})
	require.NoError(t, err)
	assert.Empty(t, first, "the first sheet only has a header")
}

func TestLoadJSONAndYAML(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "d.json", []byte(`[{"m":"Jan","a":10},{"m":"Feb","a":1.5}]`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "d.yaml", []byte("- m: Jan\n  a: 10\n- m: 2024-02-01\n  a: 1.5\n"), 0o644))

	j, err := Load(fs, "d.json", Options{})
	require.NoError(t, err)
	require.Len(t, j, 2)
	assert.Equal(t, json.Number("10"), j[0]["a"])
	assert.Equal(t, 1.5, chart.Number(j[1]["a"]))

	y, err := Load(fs, "d.yaml", Options{})
	require.NoError(t, err)
	require.Len(t, y, 2)
	assert.Equal(t, 10, y[0]["a"])
	_, isTime := chart.Time(y[1]["m"])
	assert.True(t, isTime)
}

func TestLoadErrors(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "bad.json", []byte(`{"not":"a list"}`), 0o644))

	_, err := Load(fs, "missing.csv", Options{})
	assert.True(t, errors.IsIOError(err))
	assert.ErrorIs(t, err, &errors.ChartError{Type: errors.ErrorTypeIO, Code: errors.ErrCodeFileNotFound})

	_, err = Load(fs, "bad.json", Options{})
	assert.True(t, errors.IsValidationError(err))
	assert.Contains(t, err.Error(), "bad.json")

	_, err = Load(fs, "data.txt", Options{})
	assert.ErrorIs(t, err, &errors.ChartError{Type: errors.ErrorTypeValidation, Code: errors.ErrCodeUnsupportedFormat})
}

func TestCell(t *testing.T) {
	assert.Nil(t, Cell("  "))
	assert.Equal(t, 3.25, Cell("3.25"))
	assert.Equal(t, true, Cell("TRUE"))
	assert.Equal(t, "Jan", Cell("Jan"))
}

func TestRecordsRejectsScalars(t *testing.T) {
	_, err := Records([]any{1})
	assert.Error(t, err)
	r, err := Records(nil)
	assert.NoError(t, err)
	assert.Nil(t, r)
}
