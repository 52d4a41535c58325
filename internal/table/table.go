// Package table holds the transient in-memory tables the preparation
// steps work on: rows are field samples, columns are measured traits.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
)

var (
	// ErrUnknownColumn indicates a column name not present in the table.
	ErrUnknownColumn = errors.New("table: unknown column")

	// ErrRaggedRow indicates a row whose length differs from the header.
	ErrRaggedRow = errors.New("table: ragged row")

	// ErrNoHeader indicates an input with no header row.
	ErrNoHeader = errors.New("table: missing header row")
)

// Table is an ordered set of named string columns.
type Table struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

// New creates an empty table with the given column names.
func New(columns []string) *Table {
	t := &Table{columns: columns, index: make(map[string]int, len(columns))}
	for i, c := range columns {
		t.index[c] = i
	}
	return t
}

// Columns returns the column names in declaration order.
func (t *Table) Columns() []string { return t.columns }

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Append adds a row. The row length must match the header.
func (t *Table) Append(row []string) error {
	if len(row) != len(t.columns) {
		return fmt.Errorf("%w: got %d cells, header has %d", ErrRaggedRow, len(row), len(t.columns))
	}
	t.rows = append(t.rows, row)
	return nil
}

// Cell returns the value at (row, column name).
func (t *Table) Cell(row int, column string) (string, error) {
	i, ok := t.index[column]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	return t.rows[row][i], nil
}

// StringColumn returns a copy of a column's values.
func (t *Table) StringColumn(column string) ([]string, error) {
	i, ok := t.index[column]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	out := make([]string, len(t.rows))
	for r, row := range t.rows {
		out[r] = row[i]
	}
	return out, nil
}

// Float64Column parses a column as float64 values.
func (t *Table) Float64Column(column string) ([]float64, error) {
	raw, err := t.StringColumn(column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(raw))
	for r, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("table: column %q row %d: %w", column, r, err)
		}
		out[r] = v
	}
	return out, nil
}

// HasColumn reports whether the table has a column with the given name.
func (t *Table) HasColumn(column string) bool {
	_, ok := t.index[column]
	return ok
}

// ReadCSV reads a delimited text table with a header row. An input with
// a header and no data rows yields an empty table, not an error.
func ReadCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, err
	}

	t := New(header)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if err := t.Append(row); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadCSVFile reads a delimited text table from a file path.
func ReadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	t, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("table: reading %s: %w", path, err)
	}
	return t, nil
}

// WriteCSV writes the table as delimited text with a header row.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.columns); err != nil {
		return err
	}
	for _, row := range t.rows {
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteCSVFile writes the table to a file path.
func (t *Table) WriteCSVFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := t.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FormatFloat renders a float cell the way derived parameter tables are
// written: plain decimal notation, six digit precision.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}
