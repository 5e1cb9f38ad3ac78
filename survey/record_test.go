package survey

import (
	"encoding/json"
	"errors"
	"slices"
	"testing"
)

func scenarioFields() map[string]string {
	return map[string]string{
		"RIDAGEYR": "30",
		"RIAGENDR": "1.0",
		"PAQ605":   "2.0",
		"BMXBMI":   "25.0",
		"LBXGLU":   "100.0",
		"DIQ010":   "1",
		"LBXGLT":   "100.0",
		"LBXIN":    "10.0",
	}
}

func TestRecordFromFields(t *testing.T) {
	rec, err := RecordFromFields(scenarioFields())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := rec.Validate(); err != nil {
		t.Fatalf("unexpected validation error: %v", err)
	}
	want := []float64{30, 1, 2, 25, 100, 1, 100, 10}
	if !slices.Equal(rec.Values(), want) {
		t.Fatalf("values = %v, want %v", rec.Values(), want)
	}
	frame := rec.Frame()
	if frame.Len() != 1 || !slices.Equal(frame.Rows[0], want) {
		t.Fatalf("unexpected frame: %+v", frame)
	}
}

func TestRecordFromFieldsMissing(t *testing.T) {
	fields := scenarioFields()
	delete(fields, "LBXIN")
	delete(fields, "PAQ605")
	_, err := RecordFromFields(fields)
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if !slices.Equal(missing.Columns, []string{"PAQ605", "LBXIN"}) {
		t.Fatalf("unexpected missing columns: %v", missing.Columns)
	}
}

func TestRecordFromFieldsBadValues(t *testing.T) {
	cases := map[string]string{
		"LBXGLU":   "abc",
		"BMXBMI":   "",
		"RIDAGEYR": "30.5",
		"LBXIN":    "NaN",
	}
	for column, value := range cases {
		fields := scenarioFields()
		fields[column] = value
		_, err := RecordFromFields(fields)
		var cell *CellError
		if !errors.As(err, &cell) {
			t.Errorf("%s=%q: expected CellError, got %v", column, value, err)
			continue
		}
		if cell.Column != column {
			t.Errorf("%s=%q: error names column %s", column, value, cell.Column)
		}
	}
}

func TestRecordValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Record)
		field  string
	}{
		{"age too high", func(r *Record) { r.RIDAGEYR = 121 }, "RIDAGEYR"},
		{"age negative", func(r *Record) { r.RIDAGEYR = -1 }, "RIDAGEYR"},
		{"gender", func(r *Record) { r.RIAGENDR = 3 }, "RIAGENDR"},
		{"activity", func(r *Record) { r.PAQ605 = 10.5 }, "PAQ605"},
		{"bmi", func(r *Record) { r.BMXBMI = 101 }, "BMXBMI"},
		{"diabetes", func(r *Record) { r.DIQ010 = 3 }, "DIQ010"},
		{"insulin", func(r *Record) { r.LBXIN = 500.1 }, "LBXIN"},
	}
	for _, tc := range cases {
		rec, err := RecordFromFields(scenarioFields())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		tc.mutate(&rec)
		err = rec.Validate()
		var invalid *InvalidRecordError
		if !errors.As(err, &invalid) {
			t.Errorf("%s: expected InvalidRecordError, got %v", tc.name, err)
			continue
		}
		if len(invalid.Fields) != 1 || invalid.Fields[0].Field != tc.field {
			t.Errorf("%s: unexpected fields %+v", tc.name, invalid.Fields)
		}
	}
}

func TestRecordValidateBounds(t *testing.T) {
	rec := Record{RIDAGEYR: 0, RIAGENDR: 2, PAQ605: 10, BMXBMI: 0, LBXGLU: 500, DIQ010: 2, LBXGLT: 0, LBXIN: 500}
	if err := rec.Validate(); err != nil {
		t.Fatalf("bounds should be inclusive: %v", err)
	}
}

func TestRecordUnmarshalJSON(t *testing.T) {
	body := `{"RIDAGEYR":30,"RIAGENDR":1.0,"PAQ605":"2.0","BMXBMI":25,"LBXGLU":100,"DIQ010":1,"LBXGLT":100,"LBXIN":10,"note":"ignored"}`
	var rec Record
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.RIDAGEYR != 30 || rec.PAQ605 != 2 || rec.LBXIN != 10 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	err := json.Unmarshal([]byte(`{"RIDAGEYR":30}`), &rec)
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
}
