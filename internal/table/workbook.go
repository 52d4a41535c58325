package table

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ReadWorkbook reads one sheet of a spreadsheet workbook into a table.
// The first row of the sheet is taken as the header. Short rows are
// padded with empty cells to the header width, matching the way
// spreadsheet software omits trailing empty cells.
func ReadWorkbook(path, sheet string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("table: opening workbook %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("table: reading sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, ErrNoHeader
	}

	t := New(rows[0])
	for _, row := range rows[1:] {
		if len(row) < len(rows[0]) {
			padded := make([]string, len(rows[0]))
			copy(padded, row)
			row = padded
		}
		if err := t.Append(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}
