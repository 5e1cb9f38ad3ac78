package pipeline

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"agegroup/survey"
)

// ageModel labels a row Senior when its age column is 65 or more.
type ageModel struct{}

func (ageModel) Features() []string { return survey.RequiredColumns() }

func (ageModel) Predict(rows [][]float64) ([]int, error) {
	labels := make([]int, len(rows))
	for i, row := range rows {
		if row[0] >= 65 {
			labels[i] = 1
		}
	}
	return labels, nil
}

const surveyCSV = "SEQN,RIDAGEYR,RIAGENDR,PAQ605,BMXBMI,LBXGLU,DIQ010,LBXGLT,LBXIN\n" +
	"73564,61,2.0,2.0,35.7,110.0,2,150.0,14.91\n" +
	"73568,66,2.0,2.0,20.3,89.0,2,80.0,3.85\n"

func TestPredictReader(t *testing.T) {
	var out bytes.Buffer
	batch, err := PredictReader(ageModel{}, strings.NewReader(surveyCSV), &out, BatchOptions{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if batch.Table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", batch.Table.Len())
	}
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if lines[0] != "SEQN,RIDAGEYR,RIAGENDR,PAQ605,BMXBMI,LBXGLU,DIQ010,LBXGLT,LBXIN,Predicted_Label,Age_Group" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if lines[2] != "73568,66,2.0,2.0,20.3,89.0,2,80.0,3.85,1,Senior" {
		t.Fatalf("original values must be kept verbatim: %s", lines[2])
	}
}

func TestPredictFileRejectedLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "survey.csv")
	body := "RIDAGEYR,RIAGENDR\n30,1\n"
	if err := os.WriteFile(in, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	out := OutputPath(in, filepath.Join(dir, "out"))
	_, err := PredictFile(ageModel{}, in, out, BatchOptions{})
	var missing *survey.MissingColumnsError
	if !errors.As(err, &missing) {
		t.Fatalf("expected missing columns error, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatal("no output file expected")
	}
	entries, _ := os.ReadDir(filepath.Join(dir, "out"))
	if len(entries) != 0 {
		t.Fatalf("temporary files left behind: %v", entries)
	}
}

func TestPredictFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "survey.csv")
	if err := os.WriteFile(in, []byte(surveyCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	out := OutputPath(in, dir)
	if filepath.Base(out) != "survey_predictions.csv" {
		t.Fatalf("unexpected output path %s", out)
	}
	if _, err := PredictFile(ageModel{}, in, out, BatchOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f, err := os.Open(out)
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	table, err := survey.ReadCSV(f, "")
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !slices.Equal(table.Column("Age_Group"), []string{"Adult", "Senior"}) {
		t.Fatalf("unexpected groups: %v", table.Column("Age_Group"))
	}
}
