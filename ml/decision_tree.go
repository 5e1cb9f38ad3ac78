package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type DecisionTree struct {
	features []string
	nodes    []TreeNode
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

type treeArtifact struct {
	Features []string   `json:"features"`
	Nodes    []TreeNode `json:"nodes"`
}

// NewDecisionTree builds a tree from an in-memory node list. The nodes are
// checked the same way Load checks them.
func NewDecisionTree(features []string, nodes []TreeNode) (*DecisionTree, error) {
	if err := validateNodes(nodes, len(features)); err != nil {
		return nil, err
	}
	return &DecisionTree{
		features: append([]string(nil), features...),
		nodes:    append([]TreeNode(nil), nodes...),
	}, nil
}

func (dt *DecisionTree) Features() []string {
	return append([]string(nil), dt.features...)
}

func (dt *DecisionTree) Predict(rows [][]float64) ([]int, error) {
	labels := make([]int, len(rows))
	for i, row := range rows {
		label, err := dt.predictRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		labels[i] = label
	}
	return labels, nil
}

func (dt *DecisionTree) predictRow(features []float64) (int, error) {
	if len(dt.nodes) == 0 {
		return 0, errors.New("model not loaded")
	}
	if len(features) != len(dt.features) {
		return 0, fmt.Errorf("expected %d features, got %d", len(dt.features), len(features))
	}
	idx := 0
	for steps := 0; steps <= len(dt.nodes); steps++ {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
	return 0, errors.New("invalid tree state")
}

func (dt *DecisionTree) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var artifact treeArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return fmt.Errorf("decode decision tree: %w", err)
	}
	if len(artifact.Features) == 0 {
		return errors.New("artifact declares no features")
	}
	if err := validateNodes(artifact.Nodes, len(artifact.Features)); err != nil {
		return err
	}
	dt.features = artifact.Features
	dt.nodes = artifact.Nodes
	return nil
}

// validateNodes rejects trees that could index out of range or loop.
// Children must point forward, which is how flattened trees are laid out.
func validateNodes(nodes []TreeNode, featureCount int) error {
	if len(nodes) == 0 {
		return errors.New("tree has no nodes")
	}
	for i, node := range nodes {
		if node.IsLeaf {
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= featureCount {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(nodes) {
				return fmt.Errorf("node %d: invalid child %d", i, child)
			}
		}
	}
	return nil
}
