package survey

import (
	"go.uber.org/multierr"
)

// maxCellErrors bounds how many bad cells one rejected batch reports.
const maxCellErrors = 20

type NormalizeOptions struct {
	// StrictRanges validates every row against the declared ranges. Off by
	// default: batch values go to the model as uploaded.
	StrictRanges bool
}

// NormalizeTable selects the required columns from t, in canonical order,
// and parses them as numbers. If any required column is missing the whole
// table is rejected with a *MissingColumnsError naming all of them.
func NormalizeTable(t *Table, opts NormalizeOptions) (Frame, error) {
	if err := CheckColumns(t.Header).Err(); err != nil {
		return Frame{}, err
	}
	if t.Len() == 0 {
		return Frame{}, ErrEmptyTable
	}

	columns := RequiredColumns()
	idx := make([]int, len(columns))
	for i, name := range columns {
		idx[i] = t.ColumnIndex(name)
	}

	var errs error
	count := 0
	frame := Frame{Rows: make([][]float64, t.Len())}
	for r, row := range t.Rows {
		values := make([]float64, len(columns))
		rowOK := true
		for c, i := range idx {
			raw := ""
			if i < len(row) {
				raw = row[i]
			}
			v, err := parseCell(raw)
			if err != nil {
				rowOK = false
				if count < maxCellErrors {
					errs = multierr.Append(errs, &CellError{Row: r, Column: columns[c], Value: raw, Err: err})
				}
				count++
				continue
			}
			values[c] = v
		}
		if rowOK && opts.StrictRanges {
			if err := validateRow(values, r); err != nil {
				if count < maxCellErrors {
					errs = multierr.Append(errs, err)
				}
				count++
			}
		}
		frame.Rows[r] = values
	}
	if errs != nil {
		return Frame{}, errs
	}
	return frame, nil
}

func validateRow(values []float64, row int) error {
	rec, err := recordFromValues(values, row)
	if err != nil {
		return err
	}
	return validateRecord(rec, row)
}
