package survey

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func mustReadCSV(t *testing.T, body string) *Table {
	t.Helper()
	table, err := ReadCSV(strings.NewReader(body), "")
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	return table
}

func TestNormalizeTableReordersColumns(t *testing.T) {
	table := mustReadCSV(t, "extra_col,LBXIN,LBXGLT,DIQ010,LBXGLU,BMXBMI,PAQ605,RIAGENDR,RIDAGEYR\n"+
		"x,10,100,1,100,25,2,1,30\n"+
		"y,20,140,2,110,31,0,2,70\n")
	frame, err := NormalizeTable(table, NormalizeOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", frame.Len())
	}
	if !slices.Equal(frame.Rows[0], []float64{30, 1, 2, 25, 100, 1, 100, 10}) {
		t.Fatalf("unexpected row 0: %v", frame.Rows[0])
	}
	if !slices.Equal(frame.Rows[1], []float64{70, 2, 0, 31, 110, 2, 140, 20}) {
		t.Fatalf("unexpected row 1: %v", frame.Rows[1])
	}
}

func TestNormalizeTableMissingColumns(t *testing.T) {
	table := mustReadCSV(t, "RIDAGEYR,RIAGENDR,PAQ605,BMXBMI,LBXGLU,DIQ010\n30,1,2,25,100,1\n")
	_, err := NormalizeTable(table, NormalizeOptions{})
	var missing *MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingColumnsError, got %v", err)
	}
	if !slices.Equal(missing.Columns, []string{"LBXGLT", "LBXIN"}) {
		t.Fatalf("unexpected missing columns: %v", missing.Columns)
	}
}

func TestNormalizeTableEmpty(t *testing.T) {
	table := mustReadCSV(t, strings.Join(RequiredColumns(), ",")+"\n")
	if _, err := NormalizeTable(table, NormalizeOptions{}); !errors.Is(err, ErrEmptyTable) {
		t.Fatalf("expected ErrEmptyTable, got %v", err)
	}
}

func TestNormalizeTablePassesOutOfRange(t *testing.T) {
	table := mustReadCSV(t, strings.Join(RequiredColumns(), ",")+"\n200,3,-1,25,900,7,100,10\n")
	frame, err := NormalizeTable(table, NormalizeOptions{})
	if err != nil {
		t.Fatalf("out of range values should pass through: %v", err)
	}
	if frame.Rows[0][0] != 200 {
		t.Fatalf("unexpected value: %v", frame.Rows[0])
	}

	_, err = NormalizeTable(table, NormalizeOptions{StrictRanges: true})
	var invalid *InvalidRecordError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidRecordError in strict mode, got %v", err)
	}
	if invalid.Row != 0 {
		t.Fatalf("expected row 0, got %d", invalid.Row)
	}
}

func TestNormalizeTableBadCells(t *testing.T) {
	table := mustReadCSV(t, strings.Join(RequiredColumns(), ",")+"\n30,1,2,,100,1,100,10\n40,1,2,25,high,1,100,10\n")
	_, err := NormalizeTable(table, NormalizeOptions{})
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsUserError(err) {
		t.Fatalf("expected user error, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "row 1, column BMXBMI") || !strings.Contains(msg, "row 2, column LBXGLU") {
		t.Fatalf("unexpected message: %s", msg)
	}
}
