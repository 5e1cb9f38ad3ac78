package inference

// Category is the human-readable age group for a raw model label.
type Category string

const (
	Senior Category = "Senior"
	Adult  Category = "Adult"
)

// SeniorLabel is the only raw label that maps to Senior.
const SeniorLabel = 1

// CategoryFor maps any raw label to a category. It never fails.
func CategoryFor(label int) Category {
	if label == SeniorLabel {
		return Senior
	}
	return Adult
}
