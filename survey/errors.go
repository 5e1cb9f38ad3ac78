package survey

import (
	"encoding/csv"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyTable      = errors.New("table has no data rows")
	ErrEmptyFile       = errors.New("file is empty")
	ErrUnknownEncoding = errors.New("unknown encoding")
)

// MissingColumnsError names every required column absent from an input.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "missing required columns: " + strings.Join(e.Columns, ", ")
}

// CellError is a value that could not be read as a number. Row is the
// zero-based data row, not counting the header.
type CellError struct {
	Row    int
	Column string
	Value  string
	Err    error
}

func (e *CellError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("field %s: invalid value %q: %v", e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("row %d, column %s: invalid value %q: %v", e.Row+1, e.Column, e.Value, e.Err)
}

func (e *CellError) Unwrap() error {
	return e.Err
}

// InvalidRecordError wraps range and enumeration failures for one record.
type InvalidRecordError struct {
	Row    int
	Fields []FieldError
}

type FieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

func (e *InvalidRecordError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		if f.Param != "" {
			parts[i] = fmt.Sprintf("%s fails %s=%s", f.Field, f.Rule, f.Param)
		} else {
			parts[i] = fmt.Sprintf("%s fails %s", f.Field, f.Rule)
		}
	}
	msg := "invalid record: " + strings.Join(parts, "; ")
	if e.Row >= 0 {
		msg = fmt.Sprintf("row %d: %s", e.Row+1, msg)
	}
	return msg
}

// IsUserError reports whether err was caused by the submitted input rather
// than by the model or the server.
func IsUserError(err error) bool {
	var missing *MissingColumnsError
	var cell *CellError
	var invalid *InvalidRecordError
	var parse *csv.ParseError
	return errors.As(err, &missing) || errors.As(err, &cell) || errors.As(err, &invalid) || errors.As(err, &parse) ||
		errors.Is(err, ErrEmptyTable) || errors.Is(err, ErrEmptyFile) || errors.Is(err, ErrUnknownEncoding)
}
