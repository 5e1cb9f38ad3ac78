package survey

// Table is an uploaded table kept as text so that every column the user
// sent, including ones the model ignores, is written back verbatim.
type Table struct {
	Header []string
	Rows   [][]string
}

// Frame is model input: rows of the required columns in canonical order.
type Frame struct {
	Rows [][]float64
}

func (f Frame) Len() int {
	return len(f.Rows)
}

func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of the first column called name, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Column returns the values of the named column, or nil if it is absent.
func (t *Table) Column(name string) []string {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil
	}
	values := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if idx < len(row) {
			values[i] = row[idx]
		}
	}
	return values
}

// SetColumn overwrites the named column in place, or appends it when the
// table has no such column. values must have one entry per row.
func (t *Table) SetColumn(name string, values []string) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		t.Header = append(t.Header, name)
		idx = len(t.Header) - 1
	}
	for i := range t.Rows {
		for len(t.Rows[i]) <= idx {
			t.Rows[i] = append(t.Rows[i], "")
		}
		t.Rows[i][idx] = values[i]
	}
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := &Table{
		Header: append([]string(nil), t.Header...),
		Rows:   make([][]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		out.Rows[i] = append([]string(nil), row...)
	}
	return out
}

// Select returns a new table with only the named columns of the first n rows
// (all rows when n < 0). Absent columns are skipped.
func (t *Table) Select(n int, names ...string) *Table {
	if n < 0 || n > len(t.Rows) {
		n = len(t.Rows)
	}
	out := &Table{}
	var idx []int
	for _, name := range names {
		if i := t.ColumnIndex(name); i >= 0 {
			out.Header = append(out.Header, name)
			idx = append(idx, i)
		}
	}
	out.Rows = make([][]string, n)
	for r := 0; r < n; r++ {
		row := make([]string, len(idx))
		for j, i := range idx {
			if i < len(t.Rows[r]) {
				row[j] = t.Rows[r][i]
			}
		}
		out.Rows[r] = row
	}
	return out
}
