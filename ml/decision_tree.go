package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

// DecisionTree is a classification tree stored as a flat, pre-ordered node
// array. It is read-only once loaded.
type DecisionTree struct {
	schemaVersion string
	featureNames  []string
	classes       []int
	nodes         []TreeNode
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
	Confidence float64 `json:"confidence,omitempty"`
}

type treeArtifact struct {
	SchemaVersion string     `json:"schema_version"`
	FeatureNames  []string   `json:"feature_names"`
	Classes       []int      `json:"classes"`
	Nodes         []TreeNode `json:"nodes"`
}

// NewDecisionTree builds a tree over the current schema.
func NewDecisionTree(classes []int, nodes []TreeNode) (*DecisionTree, error) {
	dt := &DecisionTree{
		schemaVersion: SchemaVersion,
		featureNames:  FeatureNames(),
		classes:       append([]int(nil), classes...),
		nodes:         append([]TreeNode(nil), nodes...),
	}
	if err := dt.check(); err != nil {
		return nil, err
	}
	return dt, nil
}

func (dt *DecisionTree) Predict(features []float64) (int, float64, error) {
	if len(dt.nodes) == 0 {
		return 0, 0, errors.New("model not loaded")
	}
	if len(features) != len(dt.featureNames) {
		return 0, 0, fmt.Errorf("%w: got %d features, want %d", ErrSchemaMismatch, len(features), len(dt.featureNames))
	}
	idx := 0
	for steps := 0; steps <= len(dt.nodes); steps++ {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, leafConfidence(node), nil
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
	}
	return 0, 0, errors.New("invalid tree state")
}

func (dt *DecisionTree) FeatureNames() []string {
	return append([]string(nil), dt.featureNames...)
}

func (dt *DecisionTree) SchemaVersion() string {
	return dt.schemaVersion
}

func (dt *DecisionTree) Classes() []int {
	return append([]int(nil), dt.classes...)
}

func (dt *DecisionTree) Save(path string) error {
	if len(dt.nodes) == 0 {
		return errors.New("model not loaded")
	}
	payload, err := json.MarshalIndent(treeArtifact{
		SchemaVersion: dt.schemaVersion,
		FeatureNames:  dt.featureNames,
		Classes:       dt.classes,
		Nodes:         dt.nodes,
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (dt *DecisionTree) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var artifact treeArtifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return fmt.Errorf("decode artifact: %w", err)
	}
	loaded := &DecisionTree{
		schemaVersion: artifact.SchemaVersion,
		featureNames:  artifact.FeatureNames,
		classes:       artifact.Classes,
		nodes:         artifact.Nodes,
	}
	if err := loaded.check(); err != nil {
		return err
	}
	*dt = *loaded
	return nil
}

// check enforces the structural invariants Predict relies on: children come
// after their parent, split features exist and leaves name a declared class.
func (dt *DecisionTree) check() error {
	if len(dt.nodes) == 0 {
		return errors.New("artifact has no nodes")
	}
	if len(dt.featureNames) == 0 {
		return errors.New("artifact has no feature names")
	}
	declared := make(map[int]bool, len(dt.classes))
	for _, class := range dt.classes {
		declared[class] = true
	}
	for i, node := range dt.nodes {
		if node.IsLeaf {
			if !declared[node.ClassLabel] {
				return fmt.Errorf("node %d: class %d not declared", i, node.ClassLabel)
			}
			if node.Confidence < 0 || node.Confidence > 1 {
				return fmt.Errorf("node %d: confidence %v outside [0,1]", i, node.Confidence)
			}
			continue
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= len(dt.featureNames) {
			return fmt.Errorf("node %d: feature index %d out of range", i, node.FeatureIdx)
		}
		for _, child := range []int{node.LeftChild, node.RightChild} {
			if child <= i || child >= len(dt.nodes) {
				return fmt.Errorf("node %d: child index %d out of range", i, child)
			}
		}
	}
	return nil
}

func leafConfidence(node TreeNode) float64 {
	if node.Confidence == 0 {
		return 1
	}
	return node.Confidence
}
