package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// RandomForest predicts the majority label across its trees. Ties go to the
// smaller label.
type RandomForest struct {
	features []string
	trees    []*DecisionTree
}

type forestArtifact struct {
	Features []string `json:"features"`
	Trees    []struct {
		Nodes []TreeNode `json:"nodes"`
	} `json:"trees"`
}

func NewRandomForest(features []string, trees [][]TreeNode) (*RandomForest, error) {
	if len(trees) == 0 {
		return nil, errors.New("forest has no trees")
	}
	rf := &RandomForest{features: append([]string(nil), features...)}
	for i, nodes := range trees {
		tree, err := NewDecisionTree(features, nodes)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", i, err)
		}
		rf.trees = append(rf.trees, tree)
	}
	return rf, nil
}

func (rf *RandomForest) Features() []string {
	return append([]string(nil), rf.features...)
}

func (rf *RandomForest) Predict(rows [][]float64) ([]int, error) {
	if len(rf.trees) == 0 {
		return nil, errors.New("model not loaded")
	}
	labels := make([]int, len(rows))
	for i, row := range rows {
		votes := make(map[int]int)
		for _, tree := range rf.trees {
			label, err := tree.predictRow(row)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			votes[label]++
		}
		labels[i] = majorityVote(votes)
	}
	return labels, nil
}

func (rf *RandomForest) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var artifact forestArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return fmt.Errorf("decode random forest: %w", err)
	}
	if len(artifact.Features) == 0 {
		return errors.New("artifact declares no features")
	}
	trees := make([][]TreeNode, len(artifact.Trees))
	for i, t := range artifact.Trees {
		trees[i] = t.Nodes
	}
	loaded, err := NewRandomForest(artifact.Features, trees)
	if err != nil {
		return err
	}
	*rf = *loaded
	return nil
}

func majorityVote(votes map[int]int) int {
	bestLabel := 0
	bestCount := -1
	for label, count := range votes {
		if count > bestCount || (count == bestCount && label < bestLabel) {
			bestLabel = label
			bestCount = count
		}
	}
	return bestLabel
}
