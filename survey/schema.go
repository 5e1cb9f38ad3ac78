// Package survey turns NHANES survey input, a single form record or an
// uploaded table, into the fixed column layout the classifier expects.
package survey

// Required columns in the order the model was fitted with.
const (
	ColAge        = "RIDAGEYR"
	ColGender     = "RIAGENDR"
	ColActivity   = "PAQ605"
	ColBMI        = "BMXBMI"
	ColGlucose    = "LBXGLU"
	ColDiabetes   = "DIQ010"
	ColGlucoseTol = "LBXGLT"
	ColInsulin    = "LBXIN"
)

// RequiredColumns returns the canonical column order. The slice is a copy.
func RequiredColumns() []string {
	return []string{ColAge, ColGender, ColActivity, ColBMI, ColGlucose, ColDiabetes, ColGlucoseTol, ColInsulin}
}

// FieldSpec describes one input field for form builders.
type FieldSpec struct {
	Name    string    `json:"name"`
	Label   string    `json:"label"`
	Kind    string    `json:"kind"`
	Min     float64   `json:"min"`
	Max     float64   `json:"max"`
	Options []float64 `json:"options,omitempty"`
	Default float64   `json:"default"`
}

// Schema lists the required fields with their declared ranges and the
// defaults the input form starts from.
func Schema() []FieldSpec {
	return []FieldSpec{
		{Name: ColAge, Label: "Age in Years", Kind: "integer", Min: 0, Max: 120, Default: 30},
		{Name: ColGender, Label: "Gender", Kind: "enum", Min: 1, Max: 2, Options: []float64{1, 2}, Default: 1},
		{Name: ColActivity, Label: "Physical Activity", Kind: "real", Min: 0, Max: 10, Default: 2},
		{Name: ColBMI, Label: "BMI", Kind: "real", Min: 0, Max: 100, Default: 25},
		{Name: ColGlucose, Label: "Glucose Level", Kind: "real", Min: 0, Max: 500, Default: 100},
		{Name: ColDiabetes, Label: "Diabetes Status", Kind: "enum", Min: 1, Max: 2, Options: []float64{1, 2}, Default: 1},
		{Name: ColGlucoseTol, Label: "Glucose Tolerance", Kind: "real", Min: 0, Max: 500, Default: 100},
		{Name: ColInsulin, Label: "Insulin Level", Kind: "real", Min: 0, Max: 500, Default: 10},
	}
}

// SchemaCheck is the outcome of checking a header against the required
// columns. Missing is in canonical order and empty when the header is usable.
type SchemaCheck struct {
	Missing []string
}

func (c SchemaCheck) OK() bool {
	return len(c.Missing) == 0
}

// Err returns a *MissingColumnsError, or nil when nothing is missing.
func (c SchemaCheck) Err() error {
	if c.OK() {
		return nil
	}
	return &MissingColumnsError{Columns: c.Missing}
}

// CheckColumns reports which required columns are absent from header.
// Matching is exact and case-sensitive; order and extra columns do not matter.
func CheckColumns(header []string) SchemaCheck {
	present := make(map[string]struct{}, len(header))
	for _, name := range header {
		present[name] = struct{}{}
	}
	var check SchemaCheck
	for _, name := range RequiredColumns() {
		if _, ok := present[name]; !ok {
			check.Missing = append(check.Missing, name)
		}
	}
	return check
}
