// Package inference runs a loaded classifier over normalized survey input
// and names the predicted age group.
package inference

import (
	"fmt"
	"strconv"

	"agegroup/ml"
	"agegroup/survey"
)

// Output columns appended to batch tables.
const (
	ColPredictedLabel = "Predicted_Label"
	ColAgeGroup       = "Age_Group"
)

const DefaultPreviewRows = 10

type Result struct {
	Label    int      `json:"label"`
	AgeGroup Category `json:"age_group"`
}

// Message is the text shown for a single prediction.
func (r Result) Message() string {
	return fmt.Sprintf("Predicted Age Group: %s (Label: %d)", r.AgeGroup, r.Label)
}

// LabelCountError is returned when a model answers with a different number
// of labels than rows it was given.
type LabelCountError struct {
	Rows   int
	Labels int
}

func (e *LabelCountError) Error() string {
	return fmt.Sprintf("model returned %d labels for %d rows", e.Labels, e.Rows)
}

// Invoke calls model.Predict once for the whole frame and maps every label.
// Result i belongs to row i.
func Invoke(model ml.Classifier, frame survey.Frame) ([]Result, error) {
	if frame.Len() == 0 {
		return nil, survey.ErrEmptyTable
	}
	labels, err := model.Predict(frame.Rows)
	if err != nil {
		return nil, fmt.Errorf("predict: %w", err)
	}
	if len(labels) != frame.Len() {
		return nil, &LabelCountError{Rows: frame.Len(), Labels: len(labels)}
	}
	results := make([]Result, len(labels))
	for i, label := range labels {
		results[i] = Result{Label: label, AgeGroup: CategoryFor(label)}
	}
	return results, nil
}

// PredictRecord validates one record and predicts its age group.
func PredictRecord(model ml.Classifier, rec survey.Record) (Result, error) {
	if err := rec.Validate(); err != nil {
		return Result{}, err
	}
	results, err := Invoke(model, rec.Frame())
	if err != nil {
		return Result{}, err
	}
	return results[0], nil
}

// BatchResult holds a predicted table until it is previewed or downloaded.
type BatchResult struct {
	// Table is the upload with Predicted_Label and Age_Group set on every row.
	Table   *survey.Table
	Results []Result
}

// Preview returns the first n rows of the two prediction columns.
func (b *BatchResult) Preview(n int) *survey.Table {
	return b.Table.Select(n, ColPredictedLabel, ColAgeGroup)
}

// PredictTable predicts every row of an uploaded table. The upload is not
// modified; on any error no partial result is returned.
func PredictTable(model ml.Classifier, table *survey.Table, opts survey.NormalizeOptions) (*BatchResult, error) {
	frame, err := survey.NormalizeTable(table, opts)
	if err != nil {
		return nil, err
	}
	results, err := Invoke(model, frame)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(results))
	groups := make([]string, len(results))
	for i, res := range results {
		labels[i] = strconv.Itoa(res.Label)
		groups[i] = string(res.AgeGroup)
	}
	out := table.Clone()
	out.SetColumn(ColPredictedLabel, labels)
	out.SetColumn(ColAgeGroup, groups)
	return &BatchResult{Table: out, Results: results}, nil
}
