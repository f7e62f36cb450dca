// Package matchlog loads the match log from CSV and XLSX files, CSV exports
// served over HTTP, and SQLite tables.
package matchlog

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/okian/rally/internal/domain/model"
	"github.com/xuri/excelize/v2"
)

// Parser turns raw bytes into matches.
type Parser interface {
	Parse(data []byte) ([]model.Match, Report, error)
}

// Factory creates the appropriate parser based on file extension.
type Factory struct {
	dateLayout string
}

// NewFactory creates a parser factory for the given date layout.
func NewFactory(dateLayout string) *Factory {
	return &Factory{dateLayout: dateLayout}
}

// GetParser returns the parser for filename.
func (f *Factory) GetParser(filename string) (Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return NewCSVParser(f.dateLayout), nil
	case ".xlsx":
		return NewXLSXParser(f.dateLayout), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// CSVParser parses comma-separated match logs.
type CSVParser struct {
	dec decoder
}

// NewCSVParser creates a CSV parser.
func NewCSVParser(dateLayout string) *CSVParser {
	return &CSVParser{dec: decoder{dateLayout: dateLayout}}
}

// Parse reads every record; rows may have fewer fields than the header.
func (p *CSVParser) Parse(data []byte) ([]model.Match, Report, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, Report{}, fmt.Errorf("read csv: %w", err)
	}
	return p.dec.decode(records)
}

// XLSXParser parses the first sheet of a workbook.
type XLSXParser struct {
	dec decoder
}

// NewXLSXParser creates an XLSX parser.
func NewXLSXParser(dateLayout string) *XLSXParser {
	return &XLSXParser{dec: decoder{dateLayout: dateLayout}}
}

// Parse reads the first sheet's raw cell values. Date cells hold Excel
// serial numbers and are converted using the workbook's date system.
func (p *XLSXParser) Parse(data []byte) ([]model.Match, Report, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, Report{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, Report{}, ErrEmpty
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, Report{}, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}

	dec := p.dec
	dec.serialDates = true
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		dec.date1904 = *props.Date1904
	}
	return dec.decode(rows)
}
