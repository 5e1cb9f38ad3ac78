package survey

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"golang.org/x/text/encoding/charmap"
)

func TestReadCSVStripsBOM(t *testing.T) {
	table := mustReadCSV(t, "\ufeffRIDAGEYR,extra\n30,a\n")
	if table.Header[0] != "RIDAGEYR" {
		t.Fatalf("BOM not stripped: %q", table.Header[0])
	}
}

func TestReadCSVLatin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String("name\nJosé\n")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	table, err := ReadCSV(strings.NewReader(encoded), "latin1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table.Rows[0][0] != "José" {
		t.Fatalf("unexpected value %q", table.Rows[0][0])
	}
}

func TestReadCSVErrors(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader(""), ""); !errors.Is(err, ErrEmptyFile) {
		t.Fatalf("expected ErrEmptyFile, got %v", err)
	}
	if _, err := ReadCSV(strings.NewReader("a\n1\n"), "ebcdic"); !errors.Is(err, ErrUnknownEncoding) {
		t.Fatalf("expected ErrUnknownEncoding, got %v", err)
	}
	_, err := ReadCSV(strings.NewReader("a,b\n1,2,3\n"), "")
	if err == nil || !IsUserError(err) {
		t.Fatalf("expected ragged row to be a user error, got %v", err)
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	in := &Table{
		Header: []string{"a", "b"},
		Rows:   [][]string{{"1", "x,y"}, {"2", `say "hi"`}},
	}
	var buf bytes.Buffer
	if err := WriteCSV(&buf, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := mustReadCSV(t, buf.String())
	if !slices.Equal(out.Header, in.Header) || !slices.Equal(out.Rows[1], in.Rows[1]) {
		t.Fatalf("round trip mismatch: %+v", out)
	}
}

func TestTableSetColumn(t *testing.T) {
	table := &Table{Header: []string{"a", "Predicted_Label"}, Rows: [][]string{{"1", "old"}, {"2", "old"}}}
	table.SetColumn("Predicted_Label", []string{"0", "1"})
	table.SetColumn("Age_Group", []string{"Adult", "Senior"})
	if !slices.Equal(table.Header, []string{"a", "Predicted_Label", "Age_Group"}) {
		t.Fatalf("unexpected header: %v", table.Header)
	}
	if !slices.Equal(table.Rows[1], []string{"2", "1", "Senior"}) {
		t.Fatalf("unexpected row: %v", table.Rows[1])
	}
	head := table.Select(1, "Age_Group", "missing")
	if !slices.Equal(head.Header, []string{"Age_Group"}) || len(head.Rows) != 1 || head.Rows[0][0] != "Adult" {
		t.Fatalf("unexpected selection: %+v", head)
	}
}
