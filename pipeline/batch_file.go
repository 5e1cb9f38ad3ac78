// Package pipeline runs batch predictions over CSV files, one file at a
// time or by watching a drop folder.
package pipeline

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"agegroup/inference"
	"agegroup/ml"
	"agegroup/survey"
)

const outputSuffix = "_predictions.csv"

// BatchOptions configures how files are read and validated.
type BatchOptions struct {
	Encoding  string
	Normalize survey.NormalizeOptions
}

// OutputPath is where the predictions for in are written inside outDir.
func OutputPath(in, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
	return filepath.Join(outDir, base+outputSuffix)
}

// PredictReader predicts a CSV stream and writes the augmented CSV to w.
// Nothing is written when the input is rejected.
func PredictReader(model ml.Classifier, r io.Reader, w io.Writer, opts BatchOptions) (*inference.BatchResult, error) {
	table, err := survey.ReadCSV(r, opts.Encoding)
	if err != nil {
		return nil, err
	}
	return PredictTableTo(model, table, w, opts)
}

// PredictTableTo predicts an already loaded table and writes the result.
func PredictTableTo(model ml.Classifier, table *survey.Table, w io.Writer, opts BatchOptions) (*inference.BatchResult, error) {
	batch, err := inference.PredictTable(model, table, opts.Normalize)
	if err != nil {
		return nil, err
	}
	if err := survey.WriteCSV(w, batch.Table); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return batch, nil
}

// PredictFile predicts the CSV at in and writes out atomically: a rejected
// input leaves no output file behind.
func PredictFile(model ml.Classifier, in, out string, opts BatchOptions) (*inference.BatchResult, error) {
	src, err := os.Open(in)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return nil, err
	}
	tmp, err := os.CreateTemp(filepath.Dir(out), ".predict-*.csv")
	if err != nil {
		return nil, err
	}
	defer os.Remove(tmp.Name())

	batch, err := PredictReader(model, src, tmp, opts)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, err
	}
	if err := os.Rename(tmp.Name(), out); err != nil {
		return nil, err
	}
	return batch, nil
}
