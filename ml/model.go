package ml

// Classifier is a loaded, read-only model. Predict returns one raw label per
// row, in row order. Rows must follow the column order the artifact declares.
type Classifier interface {
	Predict(rows [][]float64) ([]int, error)
	Features() []string
}
