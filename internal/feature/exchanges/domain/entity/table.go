package entity

import (
	"fmt"
	"strconv"
	"time"

	"symbol_backend/internal/feature/exchanges/domain"
)

// ValidityColumn is appended to a cached table to record the validation outcome of each row.
const ValidityColumn = "_ticker_valid"

// SymbolTable is the tabular data extracted from an exchange's source page.
// Every row holds exactly one cell per column, in column order.
type SymbolTable struct {
	Columns []string
	Rows    [][]string
}

// NewSymbolTable builds a table, padding short rows and truncating long ones to the column count.
func NewSymbolTable(columns []string, rows [][]string) SymbolTable {
	t := SymbolTable{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, r := range rows {
		row := make([]string, len(columns))
		copy(row, r)
		t.Rows = append(t.Rows, row)
	}
	return t
}

// Len returns the number of data rows.
func (t SymbolTable) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of column name.
func (t SymbolTable) ColumnIndex(name string) (int, bool) {
	for i, c := range t.Columns {
		if c == name {
			return i, true
		}
	}
	return -1, false
}

// Validate reports domain.ErrDataFormat when a row does not hold exactly one cell per column.
func (t SymbolTable) Validate() error {
	for i, r := range t.Rows {
		if len(r) != len(t.Columns) {
			return fmt.Errorf("%w: row %d has %d cells, want %d", domain.ErrDataFormat, i, len(r), len(t.Columns))
		}
	}
	return nil
}

// Column returns the cells of column name in row order.
func (t SymbolTable) Column(name string) ([]string, error) {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q (columns: %v)", domain.ErrColumnNotFound, name, t.Columns)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		out = append(out, r[idx])
	}
	return out, nil
}

// MapColumn rewrites every cell of column name in place.
func (t SymbolTable) MapColumn(name string, fn func(string) string) error {
	idx, ok := t.ColumnIndex(name)
	if !ok {
		return fmt.Errorf("%w: %q (columns: %v)", domain.ErrColumnNotFound, name, t.Columns)
	}
	if err := t.Validate(); err != nil {
		return err
	}
	for _, r := range t.Rows {
		r[idx] = fn(r[idx])
	}
	return nil
}

// Row returns row i as a column-name to cell mapping.
func (t SymbolTable) Row(i int) (map[string]string, error) {
	if i < 0 || i >= len(t.Rows) {
		return nil, fmt.Errorf("%w: row %d out of range (%d rows)", domain.ErrDataFormat, i, len(t.Rows))
	}
	if len(t.Rows[i]) != len(t.Columns) {
		return nil, fmt.Errorf("%w: row %d has %d cells, want %d", domain.ErrDataFormat, i, len(t.Rows[i]), len(t.Columns))
	}
	out := make(map[string]string, len(t.Columns))
	for j, c := range t.Columns {
		out[c] = t.Rows[i][j]
	}
	return out, nil
}

// Clone returns a deep copy of t.
func (t SymbolTable) Clone() SymbolTable {
	return NewSymbolTable(t.Columns, t.Rows)
}

// WithValidity returns a copy of t whose ValidityColumn records, per row, whether
// list holds a ticker rather than InvalidTicker. list must align with t.Rows.
func (t SymbolTable) WithValidity(list SymbolList) (SymbolTable, error) {
	if len(list) != len(t.Rows) {
		return SymbolTable{}, fmt.Errorf("%w: %d results for %d rows", domain.ErrDataFormat, len(list), len(t.Rows))
	}
	out := t.Clone()
	idx, ok := out.ColumnIndex(ValidityColumn)
	if !ok {
		out.Columns = append(out.Columns, ValidityColumn)
		for i := range out.Rows {
			out.Rows[i] = append(out.Rows[i], "")
		}
		idx = len(out.Columns) - 1
	}
	for i, r := range out.Rows {
		r[idx] = strconv.FormatBool(list[i] != InvalidTicker)
	}
	return out, nil
}

// Validity returns the outcomes recorded by WithValidity. ok is false when the
// table carries no record; an unreadable cell is domain.ErrDataFormat.
func (t SymbolTable) Validity() (marks []bool, ok bool, err error) {
	cells, err := t.Column(ValidityColumn)
	if err != nil {
		if _, found := t.ColumnIndex(ValidityColumn); !found {
			return nil, false, nil
		}
		return nil, false, err
	}
	marks = make([]bool, len(cells))
	for i, c := range cells {
		v, perr := strconv.ParseBool(c)
		if perr != nil {
			return nil, false, fmt.Errorf("%w: %s row %d: %q", domain.ErrDataFormat, ValidityColumn, i, c)
		}
		marks[i] = v
	}
	return marks, true, nil
}

// CacheStamp identifies one version of a cached table's backing file.
type CacheStamp struct {
	ModTime time.Time `json:"mod_time"`
	Size    int64     `json:"size"`
}

// Same reports whether s and o describe the same file version.
func (s CacheStamp) Same(o CacheStamp) bool {
	return s.Size == o.Size && s.ModTime.Equal(o.ModTime)
}
