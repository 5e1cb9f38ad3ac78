package survey

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Record is one set of the eight required survey fields.
type Record struct {
	RIDAGEYR int     `json:"RIDAGEYR" validate:"gte=0,lte=120"`
	RIAGENDR float64 `json:"RIAGENDR" validate:"gender"`
	PAQ605   float64 `json:"PAQ605" validate:"gte=0,lte=10"`
	BMXBMI   float64 `json:"BMXBMI" validate:"gte=0,lte=100"`
	LBXGLU   float64 `json:"LBXGLU" validate:"gte=0,lte=500"`
	DIQ010   int     `json:"DIQ010" validate:"oneof=1 2"`
	LBXGLT   float64 `json:"LBXGLT" validate:"gte=0,lte=500"`
	LBXIN    float64 `json:"LBXIN" validate:"gte=0,lte=500"`
}

var (
	errEmptyValue  = errors.New("value is empty")
	errNotFinite   = errors.New("value is not a finite number")
	errNotInteger  = errors.New("value is not an integer")
	recordValidate = newValidator()
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		return name
	})
	// RIAGENDR is coded as 1.0 or 2.0; oneof does not accept floats.
	_ = v.RegisterValidation("gender", func(fl validator.FieldLevel) bool {
		g := fl.Field().Float()
		return g == 1 || g == 2
	})
	return v
}

// Validate checks every field against its declared range or enumeration.
func (r Record) Validate() error {
	return validateRecord(r, -1)
}

func validateRecord(r Record, row int) error {
	err := recordValidate.Struct(r)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	invalid := &InvalidRecordError{Row: row}
	for _, fe := range verrs {
		invalid.Fields = append(invalid.Fields, FieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
	}
	return invalid
}

// Values returns the fields in canonical column order.
func (r Record) Values() []float64 {
	return []float64{
		float64(r.RIDAGEYR),
		r.RIAGENDR,
		r.PAQ605,
		r.BMXBMI,
		r.LBXGLU,
		float64(r.DIQ010),
		r.LBXGLT,
		r.LBXIN,
	}
}

// Frame builds the one-row model input for this record.
func (r Record) Frame() Frame {
	return Frame{Rows: [][]float64{r.Values()}}
}

// RecordFromFields reads a record from named string values, as submitted by
// a form. All eight names must be present; others are ignored.
func RecordFromFields(fields map[string]string) (Record, error) {
	header := make([]string, 0, len(fields))
	for name := range fields {
		header = append(header, name)
	}
	if err := CheckColumns(header).Err(); err != nil {
		return Record{}, err
	}
	values := make([]float64, 0, len(RequiredColumns()))
	for _, name := range RequiredColumns() {
		v, err := parseCell(fields[name])
		if err != nil {
			return Record{}, &CellError{Row: -1, Column: name, Value: fields[name], Err: err}
		}
		values = append(values, v)
	}
	return recordFromValues(values, -1)
}

func recordFromValues(values []float64, row int) (Record, error) {
	for _, i := range []int{0, 5} {
		if values[i] != math.Trunc(values[i]) {
			name := RequiredColumns()[i]
			return Record{}, &CellError{Row: row, Column: name, Value: strconv.FormatFloat(values[i], 'f', -1, 64), Err: errNotInteger}
		}
	}
	return Record{
		RIDAGEYR: int(values[0]),
		RIAGENDR: values[1],
		PAQ605:   values[2],
		BMXBMI:   values[3],
		LBXGLU:   values[4],
		DIQ010:   int(values[5]),
		LBXGLT:   values[6],
		LBXIN:    values[7],
	}, nil
}

// UnmarshalJSON requires all eight fields. Numbers may be sent as JSON
// numbers or numeric strings.
func (r *Record) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	fields := make(map[string]string, len(raw))
	for name, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err == nil {
			fields[name] = s
			continue
		}
		if string(value) == "null" {
			fields[name] = ""
			continue
		}
		fields[name] = string(value)
	}
	rec, err := RecordFromFields(fields)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}

func parseCell(raw string) (float64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, errEmptyValue
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.Unwrap(err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}
