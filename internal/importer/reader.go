package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported import file format")
	ErrEmptyFile         = errors.New("import file has no header row")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadCSV reads a header row followed by records. Records may be shorter or
// longer than the header; missing cells read as empty.
func ReadCSV(r io.Reader) ([]Row, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	content = bytes.TrimPrefix(content, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(content))
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return buildRows(records)
}

// ReadXLSX reads the first sheet of a workbook. Cells are read raw so that
// date cells arrive as serial numbers.
func ReadXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	records, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return buildRows(records)
}

// ReadFile picks a reader from the file extension.
func ReadFile(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return ReadCSV(f)
	case ".xlsx", ".xlsm":
		return ReadXLSX(f)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// SupportedExtension reports whether ReadFile can read files named like name.
func SupportedExtension(name string) bool {
	return lo.Contains([]string{".csv", ".txt", ".xlsx", ".xlsm"}, strings.ToLower(filepath.Ext(name)))
}

func buildRows(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	header := lo.Map(records[0], func(h string, _ int) string {
		return NormalizeHeader(h)
	})

	rows := make([]Row, 0, len(records)-1)
	for _, rec := range records[1:] {
		row := make(Row, len(header))
		for i, key := range header {
			if key == "" {
				continue
			}
			if i < len(rec) {
				row[key] = rec[i]
			} else {
				row[key] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
