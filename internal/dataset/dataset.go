// Package dataset loads chart records from CSV, XLSX, JSON and YAML files.
package dataset

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cast"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/combochart/internal/chart"
	"github.com/conneroisu/combochart/internal/errors"
)

// Format names a supported file format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// Options tunes loading.
type Options struct {
	// Sheet selects the worksheet of an XLSX file; empty means the first.
	Sheet string
}

// FormatOf maps a file extension to its format.
func FormatOf(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, true
	case ".xlsx", ".xlsm":
		return FormatXLSX, true
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return "", false
}

// Load reads the records stored at path.
func Load(fs afero.Fs, path string, opts Options) ([]chart.Record, error) {
	format, ok := FormatOf(path)
	if !ok {
		return nil, errors.ErrUnsupportedFormat(path, filepath.Ext(path))
	}
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.WrapRead(err, "cannot read dataset", path)
	}

	var records []chart.Record
	switch format {
	case FormatCSV:
		records, err = ParseCSV(bytes.NewReader(b))
	case FormatXLSX:
		records, err = ParseXLSX(bytes.NewReader(b), opts.Sheet)
	case FormatJSON:
		records, err = ParseJSON(b)
	case FormatYAML:
		records, err = ParseYAML(b)
	}
	if err != nil {
		return nil, errors.WrapValidation(err, errors.ErrCodeDecode, "cannot decode dataset").WithLocation(path, 0)
	}
	return records, nil
}

// ParseCSV reads a header row followed by data rows.
func ParseCSV(r io.Reader) ([]chart.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	return table(rows)
}

// ParseXLSX reads a header row followed by data rows from one worksheet.
func ParseXLSX(r io.Reader, sheet string) ([]chart.Record, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, nil
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, err
	}
	return table(rows)
}

// table turns header-plus-rows cells into records. Missing or blank header
// cells fall back to the column letter; short rows leave their trailing
// fields unset.
func table(rows [][]string) ([]chart.Record, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	header := make([]string, width)
	for i := range header {
		var h string
		if i < len(rows[0]) {
			h = strings.TrimSpace(rows[0][i])
		}
		if h == "" {
			name, err := excelize.ColumnNumberToName(i + 1)
			if err != nil {
				return nil, err
			}
			h = name
		}
		header[i] = h
	}

	records := make([]chart.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		r := make(chart.Record, len(header))
		for i, cell := range row {
			if v := Cell(cell); v != nil {
				r[header[i]] = v
			}
		}
		records = append(records, r)
	}
	return records, nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Cell converts a text cell: numbers become float64, booleans bool, blanks
// nil, and anything else stays a string.
func Cell(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if f, err := cast.ToFloat64E(s); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// ParseJSON reads an array of objects.
func ParseJSON(b []byte) ([]chart.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return Records(v)
}

// ParseYAML reads a sequence of mappings.
func ParseYAML(b []byte) ([]chart.Record, error) {
	var v any
	if err := yaml.Unmarshal(b, &v); err != nil {
		return nil, err
	}
	return Records(v)
}

// Records converts a decoded document, a list of maps, into records.
func Records(v any) ([]chart.Record, error) {
	if v == nil {
		return nil, nil
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a list of records, got %T", v)
	}
	out := make([]chart.Record, 0, len(list))
	for i, item := range list {
		m, err := cast.ToStringMapE(item)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		out = append(out, chart.Record(m))
	}
	return out, nil
}
