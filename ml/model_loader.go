package ml

import (
	"fmt"
	"slices"
)

// LoadModel reads a serialized classifier from path. When want is non-empty
// the artifact's declared feature order must match it exactly.
func LoadModel(modelType, path string, want []string) (Classifier, error) {
	var model interface {
		Classifier
		Load(path string) error
	}
	switch modelType {
	case "decision_tree":
		model = &DecisionTree{}
	case "random_forest":
		model = &RandomForest{}
	default:
		return nil, fmt.Errorf("unsupported model type %q", modelType)
	}
	if err := model.Load(path); err != nil {
		return nil, fmt.Errorf("load %s from %s: %w", modelType, path, err)
	}
	if len(want) > 0 && !slices.Equal(model.Features(), want) {
		return nil, fmt.Errorf("artifact features %v do not match required columns %v", model.Features(), want)
	}
	return model, nil
}
