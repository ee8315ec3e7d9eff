package ml

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const shippedModel = "../models/price_tree.json"

func leaf(class int) TreeNode {
	return TreeNode{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: class, IsLeaf: true}
}

// ramTree splits on RAM only: <= 2048 MB is class 0, otherwise class 3.
func ramTree(t *testing.T) *DecisionTree {
	t.Helper()
	tree, err := NewDecisionTree([]int{0, 3}, []TreeNode{
		{FeatureIdx: 13, Threshold: 2048, LeftChild: 1, RightChild: 2},
		leaf(0),
		leaf(3),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tree
}

func writeTree(t *testing.T, path string, tree *DecisionTree) {
	t.Helper()
	if err := tree.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDecisionTreePredict(t *testing.T) {
	tree := ramTree(t)

	low := scenarioFeatures()
	low.RAM = 1024
	label, confidence, err := tree.Predict(low.Vector())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 0 {
		t.Fatalf("expected label 0, got %d", label)
	}
	if confidence <= 0 {
		t.Fatalf("expected confidence > 0")
	}

	label, _, err = tree.Predict(scenarioFeatures().Vector())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 3 {
		t.Fatalf("expected label 3, got %d", label)
	}
}

func TestDecisionTreePredictRejectsWrongLength(t *testing.T) {
	tree := ramTree(t)
	if _, _, err := tree.Predict(make([]float64, 16)); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch, got %v", err)
	}
}

func TestDecisionTreeSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.json")
	writeTree(t, path, ramTree(t))

	loaded := &DecisionTree{}
	if err := loaded.Load(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.SchemaVersion() != SchemaVersion {
		t.Fatalf("expected schema %s, got %s", SchemaVersion, loaded.SchemaVersion())
	}
	label, _, err := loaded.Predict(scenarioFeatures().Vector())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if label != 3 {
		t.Fatalf("expected label 3, got %d", label)
	}
}

func TestNewDecisionTreeRejectsBrokenStructure(t *testing.T) {
	cases := map[string][]TreeNode{
		"empty":            nil,
		"child before":     {{FeatureIdx: 0, Threshold: 1, LeftChild: 0, RightChild: 1}, leaf(0)},
		"child past end":   {{FeatureIdx: 0, Threshold: 1, LeftChild: 1, RightChild: 5}, leaf(0)},
		"feature too high": {{FeatureIdx: 20, Threshold: 1, LeftChild: 1, RightChild: 2}, leaf(0), leaf(0)},
		"undeclared class": {leaf(7)},
	}
	for name, nodes := range cases {
		if _, err := NewDecisionTree([]int{0}, nodes); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestLoadModelShippedArtifact(t *testing.T) {
	model, err := LoadModel(shippedModel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CheckSchema(SchemaVersion, model.FeatureNames()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLoadModelFailures(t *testing.T) {
	dir := t.TempDir()

	corrupt := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corrupt, []byte{0x80, 0x04, 0x95, 'p', 'i', 'c', 'k'}, 0o600); err != nil {
		t.Fatal(err)
	}
	truncated := filepath.Join(dir, "truncated.json")
	if err := os.WriteFile(truncated, []byte(`{"schema_version":"v2","nodes":[`), 0o600); err != nil {
		t.Fatal(err)
	}
	legacy := filepath.Join(dir, "legacy.json")
	if err := os.WriteFile(legacy, []byte(`{
		"schema_version": "v1",
		"feature_names": ["battery_power","blue","clock_speed","dual_sim","fc","four_g","int_memory","mobile_wt","pc","px_height","px_width","ram","talk_time","three_g","touch_screen","wifi"],
		"classes": [0],
		"nodes": [{"feature_idx":-1,"left_child":-1,"right_child":-1,"class_label":0,"is_leaf":true}]
	}`), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, path := range []string{filepath.Join(dir, "missing.json"), corrupt, truncated, legacy} {
		model, err := LoadModel(path)
		if model != nil {
			t.Fatalf("%s: expected no model", path)
		}
		if !errors.Is(err, ErrModelLoad) {
			t.Fatalf("%s: expected ErrModelLoad, got %v", path, err)
		}
		var loadErr *ModelLoadError
		if !errors.As(err, &loadErr) || loadErr.Path != path {
			t.Fatalf("%s: expected *ModelLoadError with path, got %v", path, err)
		}
	}

	if _, err := LoadModel(legacy); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected schema mismatch for legacy artifact, got %v", err)
	}
}
