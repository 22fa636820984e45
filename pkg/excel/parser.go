package excel

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/excelq/excelq-engine/pkg/apperrors"
	"github.com/excelq/excelq-engine/pkg/models"
)

// ParsedSheet is one tab of a workbook after header extraction. Headers come
// from the first line in source order; Rows hold one key/value map per data
// line, shaped by the header list.
type ParsedSheet struct {
	Name    string
	Headers []string
	Rows    []models.RowData
}

// Workbook is the parse result for a whole spreadsheet document, sheets in
// source order.
type Workbook struct {
	Sheets []ParsedSheet
}

// TotalRows sums data rows across all sheets.
func (w *Workbook) TotalRows() int {
	total := 0
	for _, s := range w.Sheets {
		total += len(s.Rows)
	}
	return total
}

// SheetNames returns sheet names in source order.
func (w *Workbook) SheetNames() []string {
	names := make([]string, len(w.Sheets))
	for i, s := range w.Sheets {
		names[i] = s.Name
	}
	return names
}

// Parse reads an xlsx/xls document and converts every sheet into header-keyed
// row maps. The first line of a sheet is its header row; data cells missing
// at the end of a line map to nil, and cells beyond the header length are
// dropped (header length governs row shape). A sheet with no header line
// yields empty headers and zero rows, which is not an error.
func Parse(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnprocessableInput, err)
	}
	defer f.Close()

	wb := &Workbook{}
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("%w: reading sheet %q: %v", apperrors.ErrUnprocessableInput, name, err)
		}
		wb.Sheets = append(wb.Sheets, parseSheet(name, rows))
	}

	return wb, nil
}

func parseSheet(name string, lines [][]string) ParsedSheet {
	sheet := ParsedSheet{Name: name, Headers: []string{}, Rows: []models.RowData{}}
	if len(lines) == 0 {
		return sheet
	}

	headers := make([]string, len(lines[0]))
	empty := true
	for i, h := range lines[0] {
		headers[i] = strings.TrimSpace(h)
		if headers[i] != "" {
			empty = false
		}
	}
	if empty {
		// Header row with no usable column names: persist the sheet with
		// zero rows rather than guessing a shape.
		return sheet
	}
	sheet.Headers = headers

	for _, line := range lines[1:] {
		row := make(models.RowData, len(headers))
		for i, header := range headers {
			if i < len(line) && strings.TrimSpace(line[i]) != "" {
				row[header] = line[i]
			} else {
				row[header] = nil
			}
		}
		sheet.Rows = append(sheet.Rows, row)
	}

	return sheet
}
